package services

import (
	"context"
	"fmt"
	"time"

	"github.com/classmark/testing-service/internal/cache"
	"github.com/classmark/testing-service/internal/events"
	"github.com/classmark/testing-service/internal/models"
	"github.com/classmark/testing-service/internal/repositories"
	"github.com/classmark/testing-service/internal/utils"
	"github.com/xuri/excelize/v2"
)

type SubmitTestRequest struct {
	StudentID   uint             `json:"student_id" validate:"required"`
	TestID      uint             `json:"test_id" validate:"required"`
	Answers     models.AnswerMap `json:"answers" validate:"required"`
	TimeExpired bool             `json:"time_expired"`
}

type SubmitTestResponse struct {
	ResultID uint `json:"result_id"`
	Score    int  `json:"score"`
}

// StudentResultDetails is the student-facing review of one completed test.
type StudentResultDetails struct {
	TestTitle string             `json:"test_title"`
	Score     int                `json:"score"`
	Answers   models.AnswerMap   `json:"answers"`
	Questions []*models.Question `json:"questions"`
}

// ReviewedQuestion is one line of the teacher's per-question breakdown.
type ReviewedQuestion struct {
	ID            uint              `json:"id"`
	QuestionText  string            `json:"question_text"`
	Options       map[string]string `json:"options"`
	CorrectAnswer models.OptionTag  `json:"correct_answer"`
	StudentAnswer *models.OptionTag `json:"student_answer"`
	IsCorrect     bool              `json:"is_correct"`
}

type TeacherResultDetails struct {
	ID        uint               `json:"id"`
	StudentID uint               `json:"student_id"`
	TestID    uint               `json:"test_id"`
	Score     int                `json:"score"`
	Timestamp time.Time          `json:"timestamp"`
	TestTitle string             `json:"test_title"`
	FirstName string             `json:"first_name"`
	LastName  string             `json:"last_name"`
	Answers   models.AnswerMap   `json:"student_answers"`
	Questions []ReviewedQuestion `json:"questions"`
}

type ResultService interface {
	// Submit scores the submission server-side, records the result with an
	// atomic insert-or-replace, clears the attempt snapshot and publishes a
	// ResultRecorded event.
	Submit(ctx context.Context, req *SubmitTestRequest) (*SubmitTestResponse, error)
	StudentResults(ctx context.Context, studentID uint) ([]repositories.StudentResultRow, error)
	// StudentResultDetails returns the review for one result; students can
	// only open their own results.
	StudentResultDetails(ctx context.Context, resultID, callerID uint) (*StudentResultDetails, error)
	TeacherResults(ctx context.Context, teacherID uint) ([]repositories.TeacherResultRow, error)
	TeacherResultDetails(ctx context.Context, resultID uint) (*TeacherResultDetails, error)
	// Reset deletes the stored result for (student, test), allowing a retake.
	Reset(ctx context.Context, studentID, testID uint) error
	// ExportByTeacher renders the teacher's result table as an .xlsx workbook.
	ExportByTeacher(ctx context.Context, teacherID uint) (*excelize.File, error)
}

type resultService struct {
	repo      repositories.Repository
	scorer    ScoringService
	progress  cache.ProgressStore
	publisher events.EventPublisher
	logger    utils.Logger
	validator *utils.Validator
}

func NewResultService(
	repo repositories.Repository,
	scorer ScoringService,
	progress cache.ProgressStore,
	publisher events.EventPublisher,
	logger utils.Logger,
	validator *utils.Validator,
) ResultService {
	return &resultService{
		repo:      repo,
		scorer:    scorer,
		progress:  progress,
		publisher: publisher,
		logger:    logger,
		validator: validator,
	}
}

func (s *resultService) Submit(ctx context.Context, req *SubmitTestRequest) (*SubmitTestResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	// The client never supplies the score; it is recomputed here.
	score, err := s.scorer.Score(ctx, req.TestID, req.Answers)
	if err != nil {
		return nil, err
	}

	answersJSON, err := req.Answers.ToJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize answers: %w", err)
	}

	result := &models.Result{
		StudentID: req.StudentID,
		TestID:    req.TestID,
		Score:     score,
		Answers:   answersJSON,
		Timestamp: time.Now(),
	}
	if err := s.repo.Result().Upsert(ctx, result); err != nil {
		return nil, fmt.Errorf("failed to record result: %w", err)
	}

	// Best effort: a stale snapshot expires on its own if the delete fails.
	if err := s.progress.Clear(ctx, req.StudentID, req.TestID); err != nil {
		s.logger.Warn("Failed to clear attempt snapshot",
			"student_id", req.StudentID,
			"test_id", req.TestID,
			"error", err)
	}

	event := events.NewResultRecorded(result.ID, req.StudentID, req.TestID, score, req.TimeExpired)
	if err := s.publisher.PublishResultRecorded(ctx, event); err != nil {
		s.logger.Error("Failed to publish result event", "result_id", result.ID, "error", err)
	}

	s.logger.Info("Result recorded",
		"result_id", result.ID,
		"student_id", req.StudentID,
		"test_id", req.TestID,
		"score", score,
		"time_expired", req.TimeExpired)

	return &SubmitTestResponse{ResultID: result.ID, Score: score}, nil
}

func (s *resultService) StudentResults(ctx context.Context, studentID uint) ([]repositories.StudentResultRow, error) {
	rows, err := s.repo.Result().GetByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get results: %w", err)
	}
	return rows, nil
}

func (s *resultService) StudentResultDetails(ctx context.Context, resultID, callerID uint) (*StudentResultDetails, error) {
	result, err := s.repo.Result().GetByIDWithDetails(ctx, resultID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrResultNotFound
		}
		return nil, fmt.Errorf("failed to get result: %w", err)
	}

	if result.StudentID != callerID {
		return nil, NewPermissionError(callerID, resultID, "result", "read", "not owned by student")
	}

	answers, err := models.AnswerMapFromJSON(result.Answers)
	if err != nil {
		return nil, fmt.Errorf("failed to decode stored answers: %w", err)
	}

	questions, err := s.repo.Question().GetByTest(ctx, result.TestID)
	if err != nil {
		return nil, fmt.Errorf("failed to get questions: %w", err)
	}

	return &StudentResultDetails{
		TestTitle: result.Test.Title,
		Score:     result.Score,
		Answers:   answers,
		Questions: questions,
	}, nil
}

func (s *resultService) TeacherResults(ctx context.Context, teacherID uint) ([]repositories.TeacherResultRow, error) {
	rows, err := s.repo.Result().GetByTeacher(ctx, teacherID)
	if err != nil {
		return nil, fmt.Errorf("failed to get results: %w", err)
	}
	return rows, nil
}

func (s *resultService) TeacherResultDetails(ctx context.Context, resultID uint) (*TeacherResultDetails, error) {
	result, err := s.repo.Result().GetByIDWithDetails(ctx, resultID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrResultNotFound
		}
		return nil, fmt.Errorf("failed to get result: %w", err)
	}

	answers, err := models.AnswerMapFromJSON(result.Answers)
	if err != nil {
		return nil, fmt.Errorf("failed to decode stored answers: %w", err)
	}

	questions, err := s.repo.Question().GetByTest(ctx, result.TestID)
	if err != nil {
		return nil, fmt.Errorf("failed to get questions: %w", err)
	}

	reviewed := make([]ReviewedQuestion, len(questions))
	for i, q := range questions {
		studentAnswer := answers.Get(q.ID)
		reviewed[i] = ReviewedQuestion{
			ID:           q.ID,
			QuestionText: q.QuestionText,
			Options: map[string]string{
				"a": q.OptionA,
				"b": q.OptionB,
				"c": q.OptionC,
				"d": q.OptionD,
			},
			CorrectAnswer: q.CorrectAnswer,
			StudentAnswer: studentAnswer,
			IsCorrect:     studentAnswer != nil && *studentAnswer == q.CorrectAnswer,
		}
	}

	return &TeacherResultDetails{
		ID:        result.ID,
		StudentID: result.StudentID,
		TestID:    result.TestID,
		Score:     result.Score,
		Timestamp: result.Timestamp,
		TestTitle: result.Test.Title,
		FirstName: result.Student.FirstName,
		LastName:  result.Student.LastName,
		Answers:   answers,
		Questions: reviewed,
	}, nil
}

func (s *resultService) Reset(ctx context.Context, studentID, testID uint) error {
	deleted, err := s.repo.Result().DeleteByStudentAndTest(ctx, studentID, testID)
	if err != nil {
		return fmt.Errorf("failed to reset result: %w", err)
	}
	if deleted == 0 {
		return ErrResultNotFound
	}

	if err := s.progress.Clear(ctx, studentID, testID); err != nil {
		s.logger.Warn("Failed to clear attempt snapshot on reset",
			"student_id", studentID,
			"test_id", testID,
			"error", err)
	}

	s.logger.Info("Result reset", "student_id", studentID, "test_id", testID)
	return nil
}

func (s *resultService) ExportByTeacher(ctx context.Context, teacherID uint) (*excelize.File, error) {
	rows, err := s.repo.Result().GetByTeacher(ctx, teacherID)
	if err != nil {
		return nil, fmt.Errorf("failed to get results: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Results"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Result ID", "First Name", "Last Name", "Test", "Score", "Submitted At"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, header)
	}

	for i, row := range rows {
		values := []interface{}{
			row.ID,
			row.FirstName,
			row.LastName,
			row.TestTitle,
			row.Score,
			row.Timestamp.Format(time.RFC3339),
		}
		for j, value := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+2)
			f.SetCellValue(sheet, cell, value)
		}
	}

	return f, nil
}
