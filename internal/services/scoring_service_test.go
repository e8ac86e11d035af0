package services

import (
	"context"
	"testing"

	"github.com/classmark/testing-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func tag(t models.OptionTag) *models.OptionTag {
	return &t
}

func sampleQuestions() []*models.Question {
	return []*models.Question{
		{ID: 1, TestID: 7, QuestionText: "Q1", CorrectAnswer: models.OptionA},
		{ID: 2, TestID: 7, QuestionText: "Q2", CorrectAnswer: models.OptionB},
		{ID: 3, TestID: 7, QuestionText: "Q3", CorrectAnswer: models.OptionC},
	}
}

func TestScoringService_Score(t *testing.T) {
	tests := []struct {
		name      string
		questions []*models.Question
		answers   models.AnswerMap
		expected  int
	}{
		{
			name:      "all correct",
			questions: sampleQuestions(),
			answers: models.AnswerMap{
				"1": tag(models.OptionA),
				"2": tag(models.OptionB),
				"3": tag(models.OptionC),
			},
			expected: 3,
		},
		{
			name:      "partially correct",
			questions: sampleQuestions(),
			answers: models.AnswerMap{
				"1": tag(models.OptionA),
				"2": tag(models.OptionD),
				"3": tag(models.OptionC),
			},
			expected: 2,
		},
		{
			name:      "unanswered questions score zero",
			questions: sampleQuestions(),
			answers: models.AnswerMap{
				"1": tag(models.OptionA),
				"2": nil,
				"3": nil,
			},
			expected: 1,
		},
		{
			name:      "answers for unknown question ids are ignored",
			questions: sampleQuestions(),
			answers: models.AnswerMap{
				"1":   tag(models.OptionA),
				"999": tag(models.OptionB),
			},
			expected: 1,
		},
		{
			name:      "empty answer map",
			questions: sampleQuestions(),
			answers:   models.AnswerMap{},
			expected:  0,
		},
		{
			name:      "test without questions",
			questions: []*models.Question{},
			answers:   models.AnswerMap{"1": tag(models.OptionA)},
			expected:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := newMockRepository()
			mockRepo.questionRepo.On("GetByTest", mock.Anything, uint(7)).Return(tt.questions, nil)

			service := NewScoringService(mockRepo, testLogger())
			score, err := service.Score(context.Background(), 7, tt.answers)

			assert.NoError(t, err)
			assert.Equal(t, tt.expected, score)
			mockRepo.questionRepo.AssertExpectations(t)
		})
	}
}

func TestScoringService_Score_MissingTestID(t *testing.T) {
	service := NewScoringService(newMockRepository(), testLogger())

	score, err := service.Score(context.Background(), 0, models.AnswerMap{"1": tag(models.OptionA)})

	assert.ErrorIs(t, err, ErrTestIDRequired)
	assert.Zero(t, score)
}

// Scoring is pure; repeating the call changes nothing and hits no writes.
func TestScoringService_Score_Idempotent(t *testing.T) {
	mockRepo := newMockRepository()
	mockRepo.questionRepo.On("GetByTest", mock.Anything, uint(7)).Return(sampleQuestions(), nil)

	service := NewScoringService(mockRepo, testLogger())
	answers := models.AnswerMap{
		"1": tag(models.OptionA),
		"2": tag(models.OptionB),
		"3": tag(models.OptionD),
	}

	first, err := service.Score(context.Background(), 7, answers)
	assert.NoError(t, err)
	second, err := service.Score(context.Background(), 7, answers)
	assert.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 2, first)
}
