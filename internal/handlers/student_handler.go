package handlers

import (
	"net/http"

	"github.com/classmark/testing-service/internal/middleware"
	"github.com/classmark/testing-service/internal/services"
	"github.com/classmark/testing-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type StudentHandler struct {
	BaseHandler
	testService    services.TestService
	resultService  services.ResultService
	attemptService services.AttemptService
}

func NewStudentHandler(
	testService services.TestService,
	resultService services.ResultService,
	attemptService services.AttemptService,
	logger utils.Logger,
) *StudentHandler {
	return &StudentHandler{
		BaseHandler:    NewBaseHandler(logger),
		testService:    testService,
		resultService:  resultService,
		attemptService: attemptService,
	}
}

// AvailableTests lists tests assigned to the student's group that they
// have not completed yet
func (h *StudentHandler) AvailableTests(c *gin.Context) {
	studentID := h.parseIDParam(c, "studentId")
	if studentID == 0 {
		return
	}
	if !h.requireSelf(c, studentID) {
		return
	}

	tests, err := h.testService.AvailableTests(c.Request.Context(), studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, tests)
}

// SubmitTest scores and records a finished attempt
func (h *StudentHandler) SubmitTest(c *gin.Context) {
	var req services.SubmitTestRequest
	if !h.bindJSON(c, &req) {
		return
	}

	// The identity comes from the verified token; a body that names
	// another student is rejected outright.
	callerID := middleware.UserID(c)
	if req.StudentID == 0 {
		req.StudentID = callerID
	} else if req.StudentID != callerID {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Cannot submit a test for another student",
		})
		return
	}

	h.LogRequest(c, "Submitting test",
		"student_id", req.StudentID,
		"test_id", req.TestID,
		"time_expired", req.TimeExpired)

	resp, err := h.resultService.Submit(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":   "Result recorded successfully",
		"result_id": resp.ResultID,
		"score":     resp.Score,
	})
}

// Results lists the student's own results
func (h *StudentHandler) Results(c *gin.Context) {
	studentID := h.parseIDParam(c, "studentId")
	if studentID == 0 {
		return
	}
	if !h.requireSelf(c, studentID) {
		return
	}

	rows, err := h.resultService.StudentResults(c.Request.Context(), studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, rows)
}

// ResultDetails shows one of the student's results with full review data
func (h *StudentHandler) ResultDetails(c *gin.Context) {
	resultID := h.parseIDParam(c, "resultId")
	if resultID == 0 {
		return
	}

	details, err := h.resultService.StudentResultDetails(c.Request.Context(), resultID, middleware.UserID(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, details)
}

// ===== ATTEMPT PROGRESS =====

// StartAttempt seeds a fresh attempt snapshot or resumes a stored one
func (h *StudentHandler) StartAttempt(c *gin.Context) {
	testID := h.parseIDParam(c, "testId")
	if testID == 0 {
		return
	}

	snapshot, err := h.attemptService.Start(c.Request.Context(), middleware.UserID(c), testID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

// Checkpoint persists in-progress answers, position and remaining time
func (h *StudentHandler) Checkpoint(c *gin.Context) {
	testID := h.parseIDParam(c, "testId")
	if testID == 0 {
		return
	}

	var req services.CheckpointRequest
	if !h.bindJSON(c, &req) {
		return
	}

	snapshot, err := h.attemptService.Checkpoint(c.Request.Context(), middleware.UserID(c), testID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

// ResumeAttempt restores the last checkpoint verbatim
func (h *StudentHandler) ResumeAttempt(c *gin.Context) {
	testID := h.parseIDParam(c, "testId")
	if testID == 0 {
		return
	}

	snapshot, err := h.attemptService.Resume(c.Request.Context(), middleware.UserID(c), testID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

// AbandonAttempt drops the stored snapshot without recording a result
func (h *StudentHandler) AbandonAttempt(c *gin.Context) {
	testID := h.parseIDParam(c, "testId")
	if testID == 0 {
		return
	}

	if err := h.attemptService.Clear(c.Request.Context(), middleware.UserID(c), testID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Attempt cleared"})
}

// requireSelf rejects a student path that names someone other than the
// authenticated caller.
func (h *StudentHandler) requireSelf(c *gin.Context, studentID uint) bool {
	if middleware.UserID(c) != studentID {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Cannot access another student's data",
		})
		return false
	}
	return true
}
