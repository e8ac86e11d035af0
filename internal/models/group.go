package models

import "time"

type Group struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"uniqueIndex;not null;size:100" validate:"required,min=1,max=100"`

	CreatedAt time.Time `json:"created_at"`

	Students []User `json:"students,omitempty" gorm:"foreignKey:GroupID"`
	Tests    []Test `json:"tests,omitempty" gorm:"many2many:group_test_relations"`
}

func (Group) TableName() string {
	return "groups"
}
