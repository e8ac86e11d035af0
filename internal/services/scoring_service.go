package services

import (
	"context"
	"fmt"

	"github.com/classmark/testing-service/internal/models"
	"github.com/classmark/testing-service/internal/repositories"
	"github.com/classmark/testing-service/internal/utils"
)

// ScoringService computes the score of a submitted answer mapping. It is
// stateless and never writes: calling it twice with the same input yields
// the same count and no storage mutation.
type ScoringService interface {
	Score(ctx context.Context, testID uint, answers models.AnswerMap) (int, error)
}

type scoringService struct {
	repo   repositories.Repository
	logger utils.Logger
}

func NewScoringService(repo repositories.Repository, logger utils.Logger) ScoringService {
	return &scoringService{
		repo:   repo,
		logger: logger,
	}
}

// Score counts the questions of the test whose stored correct tag matches
// the submitted tag. Unanswered questions (nil tag) and question ids that
// do not belong to the test contribute nothing and raise no error.
func (s *scoringService) Score(ctx context.Context, testID uint, answers models.AnswerMap) (int, error) {
	if testID == 0 {
		return 0, ErrTestIDRequired
	}

	questions, err := s.repo.Question().GetByTest(ctx, testID)
	if err != nil {
		return 0, fmt.Errorf("failed to get questions: %w", err)
	}

	score := 0
	for _, q := range questions {
		selected := answers.Get(q.ID)
		if selected != nil && *selected == q.CorrectAnswer {
			score++
		}
	}

	s.logger.Debug("Submission scored",
		"test_id", testID,
		"answered", len(answers),
		"score", score)
	return score, nil
}
