package services

import (
	"context"
	"testing"

	"github.com/classmark/testing-service/internal/models"
	"github.com/classmark/testing-service/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestGroupService_Create(t *testing.T) {
	t.Run("successful creation", func(t *testing.T) {
		mockRepo := newMockRepository()
		mockRepo.groupRepo.On("ExistsByName", mock.Anything, "10-A").Return(false, nil)
		mockRepo.groupRepo.On("Create", mock.Anything, mock.MatchedBy(func(g *models.Group) bool {
			return g.Name == "10-A"
		})).Run(func(args mock.Arguments) {
			args.Get(1).(*models.Group).ID = 2
		}).Return(nil)

		service := NewGroupService(mockRepo, testLogger(), utils.NewValidator())
		group, err := service.Create(context.Background(), &CreateGroupRequest{Name: "10-A"})

		require.NoError(t, err)
		assert.Equal(t, uint(2), group.ID)
		mockRepo.groupRepo.AssertExpectations(t)
	})

	t.Run("duplicate name", func(t *testing.T) {
		mockRepo := newMockRepository()
		mockRepo.groupRepo.On("ExistsByName", mock.Anything, "10-A").Return(true, nil)

		service := NewGroupService(mockRepo, testLogger(), utils.NewValidator())
		_, err := service.Create(context.Background(), &CreateGroupRequest{Name: "10-A"})

		assert.ErrorIs(t, err, ErrGroupNameTaken)
	})

	t.Run("missing name", func(t *testing.T) {
		service := NewGroupService(newMockRepository(), testLogger(), utils.NewValidator())
		_, err := service.Create(context.Background(), &CreateGroupRequest{})

		assert.True(t, IsValidation(err))
	})
}

func TestGroupService_List(t *testing.T) {
	mockRepo := newMockRepository()
	mockRepo.groupRepo.On("List", mock.Anything).Return([]*models.Group{
		{ID: 1, Name: "10-A"},
		{ID: 2, Name: "10-B"},
	}, nil)

	service := NewGroupService(mockRepo, testLogger(), utils.NewValidator())
	groups, err := service.List(context.Background())

	require.NoError(t, err)
	assert.Len(t, groups, 2)
}
