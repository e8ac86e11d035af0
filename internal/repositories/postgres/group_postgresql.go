package postgres

import (
	"context"

	"github.com/classmark/testing-service/internal/models"
	"github.com/classmark/testing-service/internal/repositories"
	"gorm.io/gorm"
)

type GroupPostgreSQL struct {
	db *gorm.DB
}

func NewGroupPostgreSQL(db *gorm.DB) repositories.GroupRepository {
	return &GroupPostgreSQL{db: db}
}

func (g GroupPostgreSQL) Create(ctx context.Context, group *models.Group) error {
	return g.db.WithContext(ctx).Create(group).Error
}

func (g GroupPostgreSQL) List(ctx context.Context) ([]*models.Group, error) {
	var groups []*models.Group
	if err := g.db.WithContext(ctx).Order("name").Find(&groups).Error; err != nil {
		return nil, err
	}
	return groups, nil
}

func (g GroupPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Group, error) {
	var group models.Group
	if err := g.db.WithContext(ctx).First(&group, id).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

func (g GroupPostgreSQL) ExistsByName(ctx context.Context, name string) (bool, error) {
	var count int64
	if err := g.db.WithContext(ctx).
		Model(&models.Group{}).
		Where("name = ?", name).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
