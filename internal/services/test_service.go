package services

import (
	"context"
	"fmt"

	"github.com/classmark/testing-service/internal/models"
	"github.com/classmark/testing-service/internal/repositories"
	"github.com/classmark/testing-service/internal/utils"
)

type CreateTestRequest struct {
	Title       string `json:"title" validate:"required,min=1,max=200"`
	Description string `json:"description" validate:"required,max=1000"`
	GroupID     uint   `json:"group_id" validate:"required"`
}

type QuestionRequest struct {
	TestID        uint             `json:"test_id" validate:"required"`
	QuestionText  string           `json:"question_text" validate:"required"`
	ImageURL      *string          `json:"image_url"`
	OptionA       string           `json:"option_a" validate:"required"`
	OptionB       string           `json:"option_b" validate:"required"`
	OptionC       string           `json:"option_c" validate:"required"`
	OptionD       string           `json:"option_d" validate:"required"`
	CorrectAnswer models.OptionTag `json:"correct_answer" validate:"required,option_tag"`
}

type UpdateQuestionRequest struct {
	QuestionText  string           `json:"question_text" validate:"required"`
	OptionA       string           `json:"option_a" validate:"required"`
	OptionB       string           `json:"option_b" validate:"required"`
	OptionC       string           `json:"option_c" validate:"required"`
	OptionD       string           `json:"option_d" validate:"required"`
	CorrectAnswer models.OptionTag `json:"correct_answer" validate:"required,option_tag"`
}

type TestService interface {
	Create(ctx context.Context, req *CreateTestRequest, teacherID uint) (*models.Test, error)
	GetByTeacher(ctx context.Context, teacherID uint) ([]*models.Test, error)
	Delete(ctx context.Context, testID, teacherID uint) error

	AddQuestion(ctx context.Context, req *QuestionRequest, teacherID uint) (*models.Question, error)
	GetQuestion(ctx context.Context, questionID uint) (*models.Question, error)
	UpdateQuestion(ctx context.Context, questionID uint, req *UpdateQuestionRequest, teacherID uint) error
	DeleteQuestion(ctx context.Context, questionID, teacherID uint) error

	// StudentQuestions returns the test's questions without correct answers.
	StudentQuestions(ctx context.Context, testID uint) ([]models.StudentQuestion, error)
	// AvailableTests returns tests assigned to the student's group that the
	// student has not completed yet. A student without a group has none.
	AvailableTests(ctx context.Context, studentID uint) ([]*models.Test, error)
}

type testService struct {
	repo      repositories.Repository
	logger    utils.Logger
	validator *utils.Validator
}

func NewTestService(repo repositories.Repository, logger utils.Logger, validator *utils.Validator) TestService {
	return &testService{
		repo:      repo,
		logger:    logger,
		validator: validator,
	}
}

// ===== TEST OPERATIONS =====

func (s *testService) Create(ctx context.Context, req *CreateTestRequest, teacherID uint) (*models.Test, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	if _, err := s.repo.Group().GetByID(ctx, req.GroupID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrGroupNotFound
		}
		return nil, fmt.Errorf("failed to get group: %w", err)
	}

	test := &models.Test{
		Title:       req.Title,
		Description: req.Description,
		TeacherID:   teacherID,
	}
	if err := s.repo.Test().Create(ctx, test, []uint{req.GroupID}); err != nil {
		return nil, fmt.Errorf("failed to create test: %w", err)
	}

	s.logger.Info("Test created",
		"test_id", test.ID,
		"teacher_id", teacherID,
		"group_id", req.GroupID)
	return test, nil
}

func (s *testService) GetByTeacher(ctx context.Context, teacherID uint) ([]*models.Test, error) {
	tests, err := s.repo.Test().GetByTeacher(ctx, teacherID)
	if err != nil {
		return nil, fmt.Errorf("failed to get tests: %w", err)
	}
	return tests, nil
}

func (s *testService) Delete(ctx context.Context, testID, teacherID uint) error {
	if err := s.checkTestOwnership(ctx, testID, teacherID, "delete"); err != nil {
		return err
	}

	if err := s.repo.Test().DeleteCascade(ctx, testID); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrTestNotFound
		}
		return fmt.Errorf("failed to delete test: %w", err)
	}

	s.logger.Info("Test deleted", "test_id", testID, "teacher_id", teacherID)
	return nil
}

// ===== QUESTION OPERATIONS =====

func (s *testService) AddQuestion(ctx context.Context, req *QuestionRequest, teacherID uint) (*models.Question, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	if err := s.checkTestOwnership(ctx, req.TestID, teacherID, "add_question"); err != nil {
		return nil, err
	}

	question := &models.Question{
		TestID:        req.TestID,
		QuestionText:  req.QuestionText,
		ImageURL:      req.ImageURL,
		OptionA:       req.OptionA,
		OptionB:       req.OptionB,
		OptionC:       req.OptionC,
		OptionD:       req.OptionD,
		CorrectAnswer: req.CorrectAnswer,
	}
	if err := s.repo.Question().Create(ctx, question); err != nil {
		return nil, fmt.Errorf("failed to create question: %w", err)
	}

	s.logger.Info("Question added", "question_id", question.ID, "test_id", req.TestID)
	return question, nil
}

func (s *testService) GetQuestion(ctx context.Context, questionID uint) (*models.Question, error) {
	question, err := s.repo.Question().GetByID(ctx, questionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	return question, nil
}

func (s *testService) UpdateQuestion(ctx context.Context, questionID uint, req *UpdateQuestionRequest, teacherID uint) error {
	if err := s.validator.Validate(req); err != nil {
		return err
	}

	question, err := s.GetQuestion(ctx, questionID)
	if err != nil {
		return err
	}
	if err := s.checkTestOwnership(ctx, question.TestID, teacherID, "edit_question"); err != nil {
		return err
	}

	question.QuestionText = req.QuestionText
	question.OptionA = req.OptionA
	question.OptionB = req.OptionB
	question.OptionC = req.OptionC
	question.OptionD = req.OptionD
	question.CorrectAnswer = req.CorrectAnswer

	if err := s.repo.Question().Update(ctx, question); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrQuestionNotFound
		}
		return fmt.Errorf("failed to update question: %w", err)
	}

	s.logger.Info("Question updated", "question_id", questionID)
	return nil
}

func (s *testService) DeleteQuestion(ctx context.Context, questionID, teacherID uint) error {
	question, err := s.GetQuestion(ctx, questionID)
	if err != nil {
		return err
	}
	if err := s.checkTestOwnership(ctx, question.TestID, teacherID, "delete_question"); err != nil {
		return err
	}

	if err := s.repo.Question().Delete(ctx, questionID); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrQuestionNotFound
		}
		return fmt.Errorf("failed to delete question: %w", err)
	}

	s.logger.Info("Question deleted", "question_id", questionID)
	return nil
}

// ===== STUDENT-FACING OPERATIONS =====

func (s *testService) StudentQuestions(ctx context.Context, testID uint) ([]models.StudentQuestion, error) {
	questions, err := s.repo.Question().GetByTest(ctx, testID)
	if err != nil {
		return nil, fmt.Errorf("failed to get questions: %w", err)
	}
	if len(questions) == 0 {
		return nil, ErrTestHasNoQuestions
	}

	views := make([]models.StudentQuestion, len(questions))
	for i, q := range questions {
		views[i] = q.StudentView()
	}
	return views, nil
}

func (s *testService) AvailableTests(ctx context.Context, studentID uint) ([]*models.Test, error) {
	student, err := s.repo.User().GetByID(ctx, studentID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrStudentNotFound
		}
		return nil, fmt.Errorf("failed to get student: %w", err)
	}

	if student.GroupID == nil {
		return []*models.Test{}, nil
	}

	tests, err := s.repo.Test().GetAvailableForGroup(ctx, *student.GroupID, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get available tests: %w", err)
	}
	return tests, nil
}

func (s *testService) checkTestOwnership(ctx context.Context, testID, teacherID uint, action string) error {
	test, err := s.repo.Test().GetByID(ctx, testID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrTestNotFound
		}
		return fmt.Errorf("failed to get test: %w", err)
	}
	if test.TeacherID != teacherID {
		return NewPermissionError(teacherID, testID, "test", action, "not owned by teacher")
	}
	return nil
}
