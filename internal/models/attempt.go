package models

import "time"

// SnapshotSchemaVersion is bumped whenever the snapshot layout changes;
// stored snapshots with an older version are rejected and cleared.
const SnapshotSchemaVersion = 1

// AttemptSnapshot is the checkpointed state of an in-progress attempt.
// The question slice keeps the shuffled order fixed at attempt start, so
// a resume restores exactly what the student saw.
type AttemptSnapshot struct {
	Version      int               `json:"version"`
	TestID       uint              `json:"test_id"`
	StudentID    uint              `json:"student_id"`
	Questions    []StudentQuestion `json:"questions"`
	Answers      AnswerMap         `json:"answers"`
	CurrentIndex int               `json:"current_index"`
	TimeLeft     int               `json:"time_left"` // seconds
	SavedAt      time.Time         `json:"saved_at"`
}

// QuestionIDSet reports the ids the snapshot was taken against, used to
// detect that the teacher has since edited the test.
func (s *AttemptSnapshot) QuestionIDSet() map[uint]struct{} {
	ids := make(map[uint]struct{}, len(s.Questions))
	for _, q := range s.Questions {
		ids[q.ID] = struct{}{}
	}
	return ids
}
