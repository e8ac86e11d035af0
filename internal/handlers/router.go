package handlers

import (
	"github.com/classmark/testing-service/internal/middleware"
	"github.com/classmark/testing-service/internal/models"
	"github.com/classmark/testing-service/internal/services"
	"github.com/classmark/testing-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type HandlerManager struct {
	authHandler    *AuthHandler
	groupHandler   *GroupHandler
	testHandler    *TestHandler
	studentHandler *StudentHandler
	teacherHandler *TeacherHandler

	authService services.AuthService
	uploadDir   string
}

func NewHandlerManager(
	authService services.AuthService,
	groupService services.GroupService,
	testService services.TestService,
	scoringService services.ScoringService,
	resultService services.ResultService,
	attemptService services.AttemptService,
	uploadDir string,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		authHandler:    NewAuthHandler(authService, logger),
		groupHandler:   NewGroupHandler(groupService, logger),
		testHandler:    NewTestHandler(testService, scoringService, logger),
		studentHandler: NewStudentHandler(testService, resultService, attemptService, logger),
		teacherHandler: NewTeacherHandler(testService, resultService, uploadDir, logger),
		authService:    authService,
		uploadDir:      uploadDir,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "testing-service",
		})
	})

	// Question images are served as plain static files
	router.Static("/uploads", hm.uploadDir)

	api := router.Group("/api")
	{
		// Public routes; the group list backs the registration form,
		// so it stays reachable without a token.
		api.POST("/register", hm.authHandler.Register)
		api.POST("/login", hm.authHandler.Login)
		api.GET("/groups", hm.groupHandler.ListGroups)

		authed := api.Group("", middleware.Auth(hm.authService))
		{
			// Group routes
			authed.POST("/groups", middleware.RequireRole(models.RoleTeacher), hm.groupHandler.CreateGroup)

			// Test routes shared by both roles
			authed.GET("/test/:testId", hm.testHandler.GetQuestions)
			authed.POST("/test/score", hm.testHandler.Score)

			// Student routes
			student := authed.Group("/student", middleware.RequireRole(models.RoleStudent))
			{
				student.GET("/:studentId/tests", hm.studentHandler.AvailableTests)
				student.POST("/submit-test", hm.studentHandler.SubmitTest)
				student.GET("/:studentId/results", hm.studentHandler.Results)
				student.GET("/results/:resultId", hm.studentHandler.ResultDetails)

				// Attempt lifecycle; the student's identity comes from the token
				student.POST("/attempts/:testId", hm.studentHandler.StartAttempt)
				student.PUT("/attempts/:testId/checkpoint", hm.studentHandler.Checkpoint)
				student.GET("/attempts/:testId", hm.studentHandler.ResumeAttempt)
				student.DELETE("/attempts/:testId", hm.studentHandler.AbandonAttempt)
			}

			// Teacher routes
			teacher := authed.Group("/teacher", middleware.RequireRole(models.RoleTeacher))
			{
				teacher.POST("/create-test", hm.teacherHandler.CreateTest)
				teacher.GET("/:teacherId/tests", hm.teacherHandler.Tests)
				teacher.DELETE("/delete-test/:testId", hm.teacherHandler.DeleteTest)

				teacher.POST("/add-question", hm.teacherHandler.AddQuestion)
				teacher.GET("/question/:questionId", hm.teacherHandler.GetQuestion)
				teacher.PUT("/edit-question/:questionId", hm.teacherHandler.EditQuestion)
				teacher.DELETE("/delete-question/:questionId", hm.teacherHandler.DeleteQuestion)

				teacher.GET("/:teacherId/results", hm.teacherHandler.Results)
				teacher.GET("/result/:resultId/details", hm.teacherHandler.ResultDetails)
				teacher.GET("/:teacherId/results/export", hm.teacherHandler.ExportResults)
				teacher.DELETE("/reset-test/:studentId/:testId", hm.teacherHandler.ResetTest)
			}
		}
	}
}
