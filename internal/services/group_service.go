package services

import (
	"context"
	"fmt"

	"github.com/classmark/testing-service/internal/models"
	"github.com/classmark/testing-service/internal/repositories"
	"github.com/classmark/testing-service/internal/utils"
)

type CreateGroupRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
}

type GroupService interface {
	Create(ctx context.Context, req *CreateGroupRequest) (*models.Group, error)
	List(ctx context.Context) ([]*models.Group, error)
}

type groupService struct {
	repo      repositories.Repository
	logger    utils.Logger
	validator *utils.Validator
}

func NewGroupService(repo repositories.Repository, logger utils.Logger, validator *utils.Validator) GroupService {
	return &groupService{
		repo:      repo,
		logger:    logger,
		validator: validator,
	}
}

func (s *groupService) Create(ctx context.Context, req *CreateGroupRequest) (*models.Group, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	taken, err := s.repo.Group().ExistsByName(ctx, req.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to check group name: %w", err)
	}
	if taken {
		return nil, ErrGroupNameTaken
	}

	group := &models.Group{Name: req.Name}
	if err := s.repo.Group().Create(ctx, group); err != nil {
		return nil, fmt.Errorf("failed to create group: %w", err)
	}

	s.logger.Info("Group created", "group_id", group.ID, "name", group.Name)
	return group, nil
}

func (s *groupService) List(ctx context.Context) ([]*models.Group, error) {
	groups, err := s.repo.Group().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	return groups, nil
}
