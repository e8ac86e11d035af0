package handlers

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/classmark/testing-service/internal/middleware"
	"github.com/classmark/testing-service/internal/models"
	"github.com/classmark/testing-service/internal/services"
	"github.com/classmark/testing-service/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type TeacherHandler struct {
	BaseHandler
	testService   services.TestService
	resultService services.ResultService
	uploadDir     string
}

func NewTeacherHandler(
	testService services.TestService,
	resultService services.ResultService,
	uploadDir string,
	logger utils.Logger,
) *TeacherHandler {
	return &TeacherHandler{
		BaseHandler:   NewBaseHandler(logger),
		testService:   testService,
		resultService: resultService,
		uploadDir:     uploadDir,
	}
}

// CreateTest creates a test and assigns it to a group
func (h *TeacherHandler) CreateTest(c *gin.Context) {
	var req services.CreateTestRequest
	if !h.bindJSON(c, &req) {
		return
	}

	teacherID := middleware.UserID(c)
	h.LogRequest(c, "Creating test", "teacher_id", teacherID, "group_id", req.GroupID)

	test, err := h.testService.Create(c.Request.Context(), &req, teacherID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Test created successfully",
		"test_id": test.ID,
	})
}

// Tests lists the teacher's own tests
func (h *TeacherHandler) Tests(c *gin.Context) {
	teacherID := h.parseIDParam(c, "teacherId")
	if teacherID == 0 {
		return
	}
	if !h.requireSelf(c, teacherID) {
		return
	}

	tests, err := h.testService.GetByTeacher(c.Request.Context(), teacherID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, tests)
}

// DeleteTest removes a test with its questions, results and group links
func (h *TeacherHandler) DeleteTest(c *gin.Context) {
	testID := h.parseIDParam(c, "testId")
	if testID == 0 {
		return
	}

	if err := h.testService.Delete(c.Request.Context(), testID, middleware.UserID(c)); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Test and all its questions deleted"})
}

// AddQuestion accepts a multipart form with the question fields and an
// optional image file
func (h *TeacherHandler) AddQuestion(c *gin.Context) {
	testID, err := strconv.ParseUint(c.PostForm("test_id"), 10, 32)
	if err != nil || testID == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid test_id",
			Details: "must be a positive integer",
		})
		return
	}

	req := services.QuestionRequest{
		TestID:        uint(testID),
		QuestionText:  c.PostForm("question_text"),
		OptionA:       c.PostForm("option_a"),
		OptionB:       c.PostForm("option_b"),
		OptionC:       c.PostForm("option_c"),
		OptionD:       c.PostForm("option_d"),
		CorrectAnswer: models.OptionTag(c.PostForm("correct_answer")),
	}

	if file, err := c.FormFile("image"); err == nil {
		imageURL, err := h.saveImage(c, file)
		if err != nil {
			h.LogError(c, err, "Failed to store question image")
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Message: "Failed to store image",
			})
			return
		}
		req.ImageURL = &imageURL
	}

	question, err := h.testService.AddQuestion(c.Request.Context(), &req, middleware.UserID(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":     "Question added successfully",
		"question_id": question.ID,
	})
}

// GetQuestion returns one question including its correct answer
func (h *TeacherHandler) GetQuestion(c *gin.Context) {
	questionID := h.parseIDParam(c, "questionId")
	if questionID == 0 {
		return
	}

	question, err := h.testService.GetQuestion(c.Request.Context(), questionID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, question)
}

// EditQuestion updates a question's text, options and correct answer
func (h *TeacherHandler) EditQuestion(c *gin.Context) {
	questionID := h.parseIDParam(c, "questionId")
	if questionID == 0 {
		return
	}

	var req services.UpdateQuestionRequest
	if !h.bindJSON(c, &req) {
		return
	}

	if err := h.testService.UpdateQuestion(c.Request.Context(), questionID, &req, middleware.UserID(c)); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Question updated successfully"})
}

// DeleteQuestion removes one question
func (h *TeacherHandler) DeleteQuestion(c *gin.Context) {
	questionID := h.parseIDParam(c, "questionId")
	if questionID == 0 {
		return
	}

	if err := h.testService.DeleteQuestion(c.Request.Context(), questionID, middleware.UserID(c)); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Question deleted successfully"})
}

// Results lists results for all of the teacher's tests
func (h *TeacherHandler) Results(c *gin.Context) {
	teacherID := h.parseIDParam(c, "teacherId")
	if teacherID == 0 {
		return
	}
	if !h.requireSelf(c, teacherID) {
		return
	}

	rows, err := h.resultService.TeacherResults(c.Request.Context(), teacherID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, rows)
}

// ResultDetails returns the per-question breakdown of one result
func (h *TeacherHandler) ResultDetails(c *gin.Context) {
	resultID := h.parseIDParam(c, "resultId")
	if resultID == 0 {
		return
	}

	details, err := h.resultService.TeacherResultDetails(c.Request.Context(), resultID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, details)
}

// ResetTest deletes a student's result so the test can be retaken
func (h *TeacherHandler) ResetTest(c *gin.Context) {
	studentID := h.parseIDParam(c, "studentId")
	if studentID == 0 {
		return
	}
	testID := h.parseIDParam(c, "testId")
	if testID == 0 {
		return
	}

	h.LogRequest(c, "Resetting test", "student_id", studentID, "test_id", testID)

	if err := h.resultService.Reset(c.Request.Context(), studentID, testID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Retake permission granted"})
}

// ExportResults streams the teacher's result table as an .xlsx workbook
func (h *TeacherHandler) ExportResults(c *gin.Context) {
	teacherID := h.parseIDParam(c, "teacherId")
	if teacherID == 0 {
		return
	}
	if !h.requireSelf(c, teacherID) {
		return
	}

	workbook, err := h.resultService.ExportByTeacher(c.Request.Context(), teacherID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="results.xlsx"`)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := workbook.Write(c.Writer); err != nil {
		h.LogError(c, err, "Failed to stream results export")
	}
}

// saveImage stores an uploaded file under the upload directory with a
// generated name so concurrent uploads never collide.
func (h *TeacherHandler) saveImage(c *gin.Context, file *multipart.FileHeader) (string, error) {
	name := uuid.NewString() + filepath.Ext(file.Filename)
	dst := filepath.Join(h.uploadDir, name)
	if err := c.SaveUploadedFile(file, dst); err != nil {
		return "", fmt.Errorf("saving uploaded file: %w", err)
	}
	return "/uploads/" + name, nil
}

func (h *TeacherHandler) requireSelf(c *gin.Context, teacherID uint) bool {
	if middleware.UserID(c) != teacherID {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Cannot access another teacher's data",
		})
		return false
	}
	return true
}
