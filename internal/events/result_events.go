package events

import (
	"time"

	"github.com/google/uuid"
)

const ResultRecordedTopic = "results.recorded"

// ResultRecorded is emitted after a submission has been scored and its
// result row written. Consumers must tolerate repeated delivery for the
// same (student, test) pair: a retake replaces the row and emits again.
type ResultRecorded struct {
	ID          string    `json:"id"`
	ResultID    uint      `json:"result_id"`
	StudentID   uint      `json:"student_id"`
	TestID      uint      `json:"test_id"`
	Score       int       `json:"score"`
	TimeExpired bool      `json:"time_expired"`
	Timestamp   time.Time `json:"timestamp"`
}

func NewResultRecorded(resultID, studentID, testID uint, score int, timeExpired bool) *ResultRecorded {
	return &ResultRecorded{
		ID:          uuid.NewString(),
		ResultID:    resultID,
		StudentID:   studentID,
		TestID:      testID,
		Score:       score,
		TimeExpired: timeExpired,
		Timestamp:   time.Now(),
	}
}
