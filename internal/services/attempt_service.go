package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/classmark/testing-service/internal/cache"
	apperrors "github.com/classmark/testing-service/internal/errors"
	"github.com/classmark/testing-service/internal/models"
	"github.com/classmark/testing-service/internal/utils"
)

type CheckpointRequest struct {
	Answers      models.AnswerMap `json:"answers" validate:"required"`
	CurrentIndex int              `json:"current_index" validate:"min=0"`
	TimeLeft     int              `json:"time_left" validate:"min=0"`
}

// AttemptService owns the in-progress attempt lifecycle: seeding a fresh
// snapshot with a one-time question shuffle, checkpointing progress, and
// restoring it verbatim on resume. The shuffled order is frozen for the
// life of the attempt so a reload cannot deal a new hand.
type AttemptService interface {
	// Start resumes an existing snapshot if one is stored, otherwise loads
	// the questions, shuffles them and seeds a snapshot with the full
	// time budget.
	Start(ctx context.Context, studentID, testID uint) (*models.AttemptSnapshot, error)
	// Checkpoint merges client progress into the stored snapshot. It fails
	// with ErrSnapshotStale when the test's question set has changed since
	// the attempt started, clearing the snapshot so the next Start reseeds.
	Checkpoint(ctx context.Context, studentID, testID uint, req *CheckpointRequest) (*models.AttemptSnapshot, error)
	// Resume returns the stored snapshot or ErrAttemptNotFound.
	Resume(ctx context.Context, studentID, testID uint) (*models.AttemptSnapshot, error)
	Clear(ctx context.Context, studentID, testID uint) error
}

type attemptService struct {
	tests     TestService
	progress  cache.ProgressStore
	logger    utils.Logger
	validator *utils.Validator
	budget    time.Duration
	grace     time.Duration
}

func NewAttemptService(
	tests TestService,
	progress cache.ProgressStore,
	logger utils.Logger,
	validator *utils.Validator,
	budget, grace time.Duration,
) AttemptService {
	return &attemptService{
		tests:     tests,
		progress:  progress,
		logger:    logger,
		validator: validator,
		budget:    budget,
		grace:     grace,
	}
}

func (s *attemptService) Start(ctx context.Context, studentID, testID uint) (*models.AttemptSnapshot, error) {
	existing, err := s.progress.Load(ctx, studentID, testID)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	if existing != nil && existing.Version == models.SnapshotSchemaVersion {
		// A stored snapshot is only resumable while its question set still
		// matches the test; otherwise it was cleared and we reseed below.
		switch err := s.checkFreshness(ctx, existing); {
		case err == nil:
			s.logger.Info("Resuming existing attempt",
				"student_id", studentID,
				"test_id", testID,
				"time_left", existing.TimeLeft)
			return existing, nil
		case !errors.Is(err, ErrSnapshotStale):
			return nil, err
		}
	}

	questions, err := s.tests.StudentQuestions(ctx, testID)
	if err != nil {
		return nil, err
	}

	// Shuffle once per fresh attempt; resumes keep this order.
	rand.Shuffle(len(questions), func(i, j int) {
		questions[i], questions[j] = questions[j], questions[i]
	})

	snapshot := &models.AttemptSnapshot{
		Version:      models.SnapshotSchemaVersion,
		TestID:       testID,
		StudentID:    studentID,
		Questions:    questions,
		Answers:      models.AnswerMap{},
		CurrentIndex: 0,
		TimeLeft:     int(s.budget.Seconds()),
		SavedAt:      time.Now(),
	}
	if err := s.progress.Save(ctx, snapshot, s.snapshotTTL()); err != nil {
		return nil, err
	}

	s.logger.Info("Attempt started",
		"student_id", studentID,
		"test_id", testID,
		"questions", len(questions))
	return snapshot, nil
}

func (s *attemptService) Checkpoint(ctx context.Context, studentID, testID uint, req *CheckpointRequest) (*models.AttemptSnapshot, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	snapshot, err := s.progress.Load(ctx, studentID, testID)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	if snapshot == nil || snapshot.Version != models.SnapshotSchemaVersion {
		return nil, ErrAttemptNotFound
	}

	if err := s.checkFreshness(ctx, snapshot); err != nil {
		return nil, err
	}

	// Answers for ids outside the question set are harmless; the scorer
	// ignores them. Invalid tags are rejected outright.
	answers := models.AnswerMap{}
	for key, tag := range req.Answers {
		if tag != nil && !tag.Valid() {
			return nil, apperrorInvalidTag(key)
		}
		answers[key] = tag
	}

	snapshot.Answers = answers
	snapshot.CurrentIndex = clamp(req.CurrentIndex, 0, len(snapshot.Questions)-1)
	// Time only runs down; a client cannot win time back by replaying
	// an older checkpoint.
	snapshot.TimeLeft = clamp(req.TimeLeft, 0, snapshot.TimeLeft)
	snapshot.SavedAt = time.Now()

	if err := s.progress.Save(ctx, snapshot, s.snapshotTTL()); err != nil {
		return nil, err
	}
	return snapshot, nil
}

func (s *attemptService) Resume(ctx context.Context, studentID, testID uint) (*models.AttemptSnapshot, error) {
	snapshot, err := s.progress.Load(ctx, studentID, testID)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	if snapshot == nil || snapshot.Version != models.SnapshotSchemaVersion {
		return nil, ErrAttemptNotFound
	}

	if err := s.checkFreshness(ctx, snapshot); err != nil {
		return nil, err
	}
	return snapshot, nil
}

func (s *attemptService) Clear(ctx context.Context, studentID, testID uint) error {
	return s.progress.Clear(ctx, studentID, testID)
}

// checkFreshness rejects a snapshot whose question set no longer matches
// the server's current set for the test (the teacher edited the test
// mid-attempt). The stale snapshot is cleared so the student restarts.
func (s *attemptService) checkFreshness(ctx context.Context, snapshot *models.AttemptSnapshot) error {
	current, err := s.tests.StudentQuestions(ctx, snapshot.TestID)
	if err != nil {
		if IsNotFound(err) {
			s.clearStale(ctx, snapshot)
			return ErrSnapshotStale
		}
		return err
	}

	if len(current) != len(snapshot.Questions) {
		s.clearStale(ctx, snapshot)
		return ErrSnapshotStale
	}
	known := snapshot.QuestionIDSet()
	for _, q := range current {
		if _, ok := known[q.ID]; !ok {
			s.clearStale(ctx, snapshot)
			return ErrSnapshotStale
		}
	}
	return nil
}

func (s *attemptService) clearStale(ctx context.Context, snapshot *models.AttemptSnapshot) {
	if err := s.progress.Clear(ctx, snapshot.StudentID, snapshot.TestID); err != nil {
		s.logger.Warn("Failed to clear stale snapshot",
			"student_id", snapshot.StudentID,
			"test_id", snapshot.TestID,
			"error", err)
	}
	s.logger.Info("Stale attempt snapshot rejected",
		"student_id", snapshot.StudentID,
		"test_id", snapshot.TestID)
}

// snapshotTTL bounds an abandoned attempt's wall-clock life: the full
// budget plus a grace window, after which Redis drops it.
func (s *attemptService) snapshotTTL() time.Duration {
	return s.budget + s.grace
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func apperrorInvalidTag(key string) error {
	ve := apperrors.NewValidationError("answers", "must use option tags a, b, c or d", key)
	ve.Rule = "option_tag"
	return ValidationErrors{*ve}
}
