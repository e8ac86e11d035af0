package postgres

import (
	"context"

	"github.com/classmark/testing-service/internal/models"
	"github.com/classmark/testing-service/internal/repositories"
	"gorm.io/gorm"
)

type TestPostgreSQL struct {
	db *gorm.DB
}

func NewTestPostgreSQL(db *gorm.DB) repositories.TestRepository {
	return &TestPostgreSQL{db: db}
}

func (t TestPostgreSQL) Create(ctx context.Context, test *models.Test, groupIDs []uint) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(test).Error; err != nil {
			return err
		}
		for _, groupID := range groupIDs {
			relation := map[string]interface{}{
				"test_id":  test.ID,
				"group_id": groupID,
			}
			if err := tx.Table("group_test_relations").Create(relation).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (t TestPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Test, error) {
	var test models.Test
	if err := t.db.WithContext(ctx).First(&test, id).Error; err != nil {
		return nil, err
	}
	return &test, nil
}

func (t TestPostgreSQL) GetByTeacher(ctx context.Context, teacherID uint) ([]*models.Test, error) {
	var tests []*models.Test
	if err := t.db.WithContext(ctx).
		Where("teacher_id = ?", teacherID).
		Order("created_at DESC").
		Find(&tests).Error; err != nil {
		return nil, err
	}
	return tests, nil
}

func (t TestPostgreSQL) GetAvailableForGroup(ctx context.Context, groupID, studentID uint) ([]*models.Test, error) {
	var tests []*models.Test
	if err := t.db.WithContext(ctx).
		Joins("JOIN group_test_relations gtr ON gtr.test_id = tests.id").
		Where("gtr.group_id = ?", groupID).
		Where("tests.id NOT IN (?)",
			t.db.Model(&models.Result{}).Select("test_id").Where("student_id = ?", studentID)).
		Find(&tests).Error; err != nil {
		return nil, err
	}
	return tests, nil
}

// DeleteCascade removes relations, questions and results together with
// the test itself; a failure anywhere rolls the whole deletion back.
func (t TestPostgreSQL) DeleteCascade(ctx context.Context, id uint) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM group_test_relations WHERE test_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Where("test_id = ?", id).Delete(&models.Question{}).Error; err != nil {
			return err
		}
		if err := tx.Where("test_id = ?", id).Delete(&models.Result{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Test{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
