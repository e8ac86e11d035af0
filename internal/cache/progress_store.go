package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/classmark/testing-service/internal/models"
	"github.com/classmark/testing-service/internal/utils"
	"github.com/redis/go-redis/v9"
)

// ProgressStore keeps in-progress attempt snapshots so a student can resume
// an interrupted attempt with the same question order, answers and clock.
type ProgressStore interface {
	// Save stores the snapshot under the (student, test) key with a TTL.
	Save(ctx context.Context, snapshot *models.AttemptSnapshot, ttl time.Duration) error
	// Load returns the stored snapshot, or nil when none exists.
	Load(ctx context.Context, studentID, testID uint) (*models.AttemptSnapshot, error)
	Clear(ctx context.Context, studentID, testID uint) error
}

type redisProgressStore struct {
	client *redis.Client
	logger utils.Logger
}

func NewRedisProgressStore(client *redis.Client, logger utils.Logger) ProgressStore {
	return &redisProgressStore{
		client: client,
		logger: logger,
	}
}

// The schema version is part of the key, so a layout change simply orphans
// old snapshots until their TTL drops them.
func progressKey(studentID, testID uint) string {
	return fmt.Sprintf("attempt:v%d:%d:%d", models.SnapshotSchemaVersion, studentID, testID)
}

func (s *redisProgressStore) Save(ctx context.Context, snapshot *models.AttemptSnapshot, ttl time.Duration) error {
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	key := progressKey(snapshot.StudentID, snapshot.TestID)
	if err := s.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store snapshot: %w", err)
	}

	s.logger.Debug("Attempt snapshot saved",
		"student_id", snapshot.StudentID,
		"test_id", snapshot.TestID,
		"time_left", snapshot.TimeLeft)
	return nil
}

func (s *redisProgressStore) Load(ctx context.Context, studentID, testID uint) (*models.AttemptSnapshot, error) {
	raw, err := s.client.Get(ctx, progressKey(studentID, testID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	var snapshot models.AttemptSnapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return &snapshot, nil
}

func (s *redisProgressStore) Clear(ctx context.Context, studentID, testID uint) error {
	return s.client.Del(ctx, progressKey(studentID, testID)).Err()
}
