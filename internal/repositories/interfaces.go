package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/classmark/testing-service/internal/models"
	"gorm.io/gorm"
)

// ===== ROW PROJECTIONS =====

// StudentResultRow is one line of a student's own result list.
type StudentResultRow struct {
	ID        uint      `json:"id"`
	Title     string    `json:"title"`
	Score     int       `json:"score"`
	Timestamp time.Time `json:"timestamp"`
}

// TeacherResultRow is one line of the teacher-facing results table.
type TeacherResultRow struct {
	ID        uint      `json:"id"`
	StudentID uint      `json:"student_id"`
	TestID    uint      `json:"test_id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	TestTitle string    `json:"test_title"`
	Score     int       `json:"score"`
	Timestamp time.Time `json:"timestamp"`
}

// ===== REPOSITORY INTERFACES =====

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
}

type GroupRepository interface {
	Create(ctx context.Context, group *models.Group) error
	List(ctx context.Context) ([]*models.Group, error)
	GetByID(ctx context.Context, id uint) (*models.Group, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
}

type TestRepository interface {
	Create(ctx context.Context, test *models.Test, groupIDs []uint) error
	GetByID(ctx context.Context, id uint) (*models.Test, error)
	GetByTeacher(ctx context.Context, teacherID uint) ([]*models.Test, error)
	// GetAvailableForGroup returns the tests assigned to a group that the
	// given student has no recorded result for.
	GetAvailableForGroup(ctx context.Context, groupID, studentID uint) ([]*models.Test, error)
	// DeleteCascade removes the test together with its group relations,
	// questions and results in a single transaction.
	DeleteCascade(ctx context.Context, id uint) error
}

type QuestionRepository interface {
	Create(ctx context.Context, question *models.Question) error
	GetByID(ctx context.Context, id uint) (*models.Question, error)
	GetByTest(ctx context.Context, testID uint) ([]*models.Question, error)
	GetByIDs(ctx context.Context, ids []uint) ([]*models.Question, error)
	Update(ctx context.Context, question *models.Question) error
	Delete(ctx context.Context, id uint) error
}

type ResultRepository interface {
	// Upsert atomically inserts the result or replaces the existing row
	// for the same (student_id, test_id) pair.
	Upsert(ctx context.Context, result *models.Result) error
	GetByID(ctx context.Context, id uint) (*models.Result, error)
	GetByStudent(ctx context.Context, studentID uint) ([]StudentResultRow, error)
	GetByTeacher(ctx context.Context, teacherID uint) ([]TeacherResultRow, error)
	GetByIDWithDetails(ctx context.Context, id uint) (*models.Result, error)
	DeleteByStudentAndTest(ctx context.Context, studentID, testID uint) (int64, error)
}

// Repository aggregates all entity repositories behind one dependency.
type Repository interface {
	User() UserRepository
	Group() GroupRepository
	Test() TestRepository
	Question() QuestionRepository
	Result() ResultRepository
}

// IsNotFoundError reports whether err is the storage-level "no rows" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
