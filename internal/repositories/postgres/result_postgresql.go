package postgres

import (
	"context"

	"github.com/classmark/testing-service/internal/models"
	"github.com/classmark/testing-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ResultPostgreSQL struct {
	db *gorm.DB
}

func NewResultPostgreSQL(db *gorm.DB) repositories.ResultRepository {
	return &ResultPostgreSQL{db: db}
}

// Upsert relies on the unique index on (student_id, test_id): a resubmission
// replaces the previous score, answers and timestamp in one statement, so
// concurrent submissions can never duplicate or lose the row.
func (r ResultPostgreSQL) Upsert(ctx context.Context, result *models.Result) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "student_id"}, {Name: "test_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"score", "answers", "timestamp"}),
		}).
		Create(result).Error
}

func (r ResultPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Result, error) {
	var result models.Result
	if err := r.db.WithContext(ctx).First(&result, id).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r ResultPostgreSQL) GetByIDWithDetails(ctx context.Context, id uint) (*models.Result, error) {
	var result models.Result
	if err := r.db.WithContext(ctx).
		Preload("Student").
		Preload("Test").
		First(&result, id).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r ResultPostgreSQL) GetByStudent(ctx context.Context, studentID uint) ([]repositories.StudentResultRow, error) {
	var rows []repositories.StudentResultRow
	if err := r.db.WithContext(ctx).
		Model(&models.Result{}).
		Select("results.id, tests.title AS title, results.score, results.timestamp").
		Joins("JOIN tests ON tests.id = results.test_id").
		Where("results.student_id = ?", studentID).
		Order("results.timestamp DESC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r ResultPostgreSQL) GetByTeacher(ctx context.Context, teacherID uint) ([]repositories.TeacherResultRow, error) {
	var rows []repositories.TeacherResultRow
	if err := r.db.WithContext(ctx).
		Model(&models.Result{}).
		Select(`results.id, results.student_id, results.test_id,
			users.first_name, users.last_name,
			tests.title AS test_title, results.score, results.timestamp`).
		Joins("JOIN users ON users.id = results.student_id").
		Joins("JOIN tests ON tests.id = results.test_id").
		Where("tests.teacher_id = ?", teacherID).
		Order("results.timestamp DESC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r ResultPostgreSQL) DeleteByStudentAndTest(ctx context.Context, studentID, testID uint) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("student_id = ? AND test_id = ?", studentID, testID).
		Delete(&models.Result{})
	return res.RowsAffected, res.Error
}
