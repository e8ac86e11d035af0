package models

import (
	"time"
)

type UserRole string

const (
	RoleStudent UserRole = "student"
	RoleTeacher UserRole = "teacher"
)

type User struct {
	ID       uint     `json:"id" gorm:"primaryKey"`
	Username string   `json:"username" gorm:"uniqueIndex;not null;size:100" validate:"required,min=3,max=100"`
	Password string   `json:"-" gorm:"not null;size:255"`
	Role     UserRole `json:"role" gorm:"not null;size:20;index" validate:"required,user_role"`

	FirstName string `json:"first_name" gorm:"not null;size:100" validate:"required,max=100"`
	LastName  string `json:"last_name" gorm:"not null;size:100" validate:"required,max=100"`

	// Students belong to at most one group; teachers carry no group.
	GroupID *uint  `json:"group_id" gorm:"index"`
	Group   *Group `json:"group,omitempty" gorm:"foreignKey:GroupID"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
