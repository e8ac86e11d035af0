package handlers

import (
	"net/http"

	"github.com/classmark/testing-service/internal/models"
	"github.com/classmark/testing-service/internal/services"
	"github.com/classmark/testing-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type TestHandler struct {
	BaseHandler
	testService    services.TestService
	scoringService services.ScoringService
}

type ScoreRequest struct {
	TestID  uint             `json:"test_id"`
	Answers models.AnswerMap `json:"answers"`
}

func NewTestHandler(testService services.TestService, scoringService services.ScoringService, logger utils.Logger) *TestHandler {
	return &TestHandler{
		BaseHandler:    NewBaseHandler(logger),
		testService:    testService,
		scoringService: scoringService,
	}
}

// GetQuestions returns a test's questions for the student view; the
// correct answers never leave the server here.
func (h *TestHandler) GetQuestions(c *gin.Context) {
	testID := h.parseIDParam(c, "testId")
	if testID == 0 {
		return
	}

	questions, err := h.testService.StudentQuestions(c.Request.Context(), testID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, questions)
}

// Score computes a submission's score without recording anything
func (h *TestHandler) Score(c *gin.Context) {
	var req ScoreRequest
	if !h.bindJSON(c, &req) {
		return
	}

	score, err := h.scoringService.Score(c.Request.Context(), req.TestID, req.Answers)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"score": score})
}
