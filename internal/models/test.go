package models

import "time"

type Test struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	Title       string `json:"title" gorm:"not null;size:200;index" validate:"required,min=1,max=200"`
	Description string `json:"description" gorm:"type:text" validate:"required,max=1000"`
	TeacherID   uint   `json:"teacher_id" gorm:"not null;index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Teacher   User       `json:"teacher,omitempty" gorm:"foreignKey:TeacherID"`
	Questions []Question `json:"questions,omitempty" gorm:"foreignKey:TestID"`
	Groups    []Group    `json:"groups,omitempty" gorm:"many2many:group_test_relations"`
}

func (Test) TableName() string {
	return "tests"
}

// OptionTag identifies one of the four multiple-choice options.
type OptionTag string

const (
	OptionA OptionTag = "a"
	OptionB OptionTag = "b"
	OptionC OptionTag = "c"
	OptionD OptionTag = "d"
)

func (t OptionTag) Valid() bool {
	switch t {
	case OptionA, OptionB, OptionC, OptionD:
		return true
	}
	return false
}

type Question struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	TestID        uint      `json:"test_id" gorm:"not null;index"`
	QuestionText  string    `json:"question_text" gorm:"not null;type:text" validate:"required"`
	ImageURL      *string   `json:"image_url" gorm:"size:500"`
	OptionA       string    `json:"option_a" gorm:"not null;type:text" validate:"required"`
	OptionB       string    `json:"option_b" gorm:"not null;type:text" validate:"required"`
	OptionC       string    `json:"option_c" gorm:"not null;type:text" validate:"required"`
	OptionD       string    `json:"option_d" gorm:"not null;type:text" validate:"required"`
	CorrectAnswer OptionTag `json:"correct_answer" gorm:"not null;size:1" validate:"required,option_tag"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Question) TableName() string {
	return "questions"
}

// StudentQuestion is the student-facing projection of a Question.
// It never carries the correct answer.
type StudentQuestion struct {
	ID           uint    `json:"id"`
	QuestionText string  `json:"question_text"`
	ImageURL     *string `json:"image_url"`
	OptionA      string  `json:"option_a"`
	OptionB      string  `json:"option_b"`
	OptionC      string  `json:"option_c"`
	OptionD      string  `json:"option_d"`
}

func (q *Question) StudentView() StudentQuestion {
	return StudentQuestion{
		ID:           q.ID,
		QuestionText: q.QuestionText,
		ImageURL:     q.ImageURL,
		OptionA:      q.OptionA,
		OptionB:      q.OptionB,
		OptionC:      q.OptionC,
		OptionD:      q.OptionD,
	}
}
