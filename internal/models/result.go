package models

import (
	"encoding/json"
	"strconv"
	"time"

	"gorm.io/datatypes"
)

// AnswerMap maps a question id (stringified, matching the JSON wire form)
// to the selected option tag, or nil for an unanswered question.
type AnswerMap map[string]*OptionTag

// Get returns the tag selected for a question id, or nil.
func (m AnswerMap) Get(questionID uint) *OptionTag {
	return m[strconv.FormatUint(uint64(questionID), 10)]
}

func (m AnswerMap) Set(questionID uint, tag *OptionTag) {
	m[strconv.FormatUint(uint64(questionID), 10)] = tag
}

// ToJSON serializes the mapping for storage inside Result.Answers.
func (m AnswerMap) ToJSON() (datatypes.JSON, error) {
	raw, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

// AnswerMapFromJSON restores a stored mapping. The round trip is exact:
// tags come back as the same strings, unanswered questions as nulls.
func AnswerMapFromJSON(raw datatypes.JSON) (AnswerMap, error) {
	m := AnswerMap{}
	if len(raw) == 0 {
		return m, nil
	}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// Result is the persisted outcome of a completed attempt. The composite
// unique index makes the insert-or-replace upsert atomic: two racing
// submissions for the same (student, test) pair cannot leave duplicates
// or lose both rows.
type Result struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	StudentID uint           `json:"student_id" gorm:"not null;uniqueIndex:idx_results_student_test"`
	TestID    uint           `json:"test_id" gorm:"not null;uniqueIndex:idx_results_student_test;index"`
	Score     int            `json:"score" gorm:"not null"`
	Answers   datatypes.JSON `json:"answers" gorm:"type:jsonb"`
	Timestamp time.Time      `json:"timestamp" gorm:"not null;autoCreateTime"`

	Student User `json:"student,omitempty" gorm:"foreignKey:StudentID"`
	Test    Test `json:"test,omitempty" gorm:"foreignKey:TestID"`
}

func (Result) TableName() string {
	return "results"
}
