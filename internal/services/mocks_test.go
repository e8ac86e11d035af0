package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/classmark/testing-service/internal/models"
	"github.com/classmark/testing-service/internal/repositories"
	"github.com/classmark/testing-service/internal/utils"
	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

// MockGroupRepository is a mock implementation of GroupRepository
type MockGroupRepository struct {
	mock.Mock
}

func (m *MockGroupRepository) Create(ctx context.Context, group *models.Group) error {
	args := m.Called(ctx, group)
	return args.Error(0)
}

func (m *MockGroupRepository) List(ctx context.Context) ([]*models.Group, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Group), args.Error(1)
}

func (m *MockGroupRepository) GetByID(ctx context.Context, id uint) (*models.Group, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Group), args.Error(1)
}

func (m *MockGroupRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	args := m.Called(ctx, name)
	return args.Bool(0), args.Error(1)
}

// MockTestRepository is a mock implementation of TestRepository
type MockTestRepository struct {
	mock.Mock
}

func (m *MockTestRepository) Create(ctx context.Context, test *models.Test, groupIDs []uint) error {
	args := m.Called(ctx, test, groupIDs)
	return args.Error(0)
}

func (m *MockTestRepository) GetByID(ctx context.Context, id uint) (*models.Test, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Test), args.Error(1)
}

func (m *MockTestRepository) GetByTeacher(ctx context.Context, teacherID uint) ([]*models.Test, error) {
	args := m.Called(ctx, teacherID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Test), args.Error(1)
}

func (m *MockTestRepository) GetAvailableForGroup(ctx context.Context, groupID, studentID uint) ([]*models.Test, error) {
	args := m.Called(ctx, groupID, studentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Test), args.Error(1)
}

func (m *MockTestRepository) DeleteCascade(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockQuestionRepository is a mock implementation of QuestionRepository
type MockQuestionRepository struct {
	mock.Mock
}

func (m *MockQuestionRepository) Create(ctx context.Context, question *models.Question) error {
	args := m.Called(ctx, question)
	return args.Error(0)
}

func (m *MockQuestionRepository) GetByID(ctx context.Context, id uint) (*models.Question, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Question), args.Error(1)
}

func (m *MockQuestionRepository) GetByTest(ctx context.Context, testID uint) ([]*models.Question, error) {
	args := m.Called(ctx, testID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Question), args.Error(1)
}

func (m *MockQuestionRepository) GetByIDs(ctx context.Context, ids []uint) ([]*models.Question, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Question), args.Error(1)
}

func (m *MockQuestionRepository) Update(ctx context.Context, question *models.Question) error {
	args := m.Called(ctx, question)
	return args.Error(0)
}

func (m *MockQuestionRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockResultRepository is a mock implementation of ResultRepository
type MockResultRepository struct {
	mock.Mock
}

func (m *MockResultRepository) Upsert(ctx context.Context, result *models.Result) error {
	args := m.Called(ctx, result)
	return args.Error(0)
}

func (m *MockResultRepository) GetByID(ctx context.Context, id uint) (*models.Result, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Result), args.Error(1)
}

func (m *MockResultRepository) GetByStudent(ctx context.Context, studentID uint) ([]repositories.StudentResultRow, error) {
	args := m.Called(ctx, studentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repositories.StudentResultRow), args.Error(1)
}

func (m *MockResultRepository) GetByTeacher(ctx context.Context, teacherID uint) ([]repositories.TeacherResultRow, error) {
	args := m.Called(ctx, teacherID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repositories.TeacherResultRow), args.Error(1)
}

func (m *MockResultRepository) GetByIDWithDetails(ctx context.Context, id uint) (*models.Result, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Result), args.Error(1)
}

func (m *MockResultRepository) DeleteByStudentAndTest(ctx context.Context, studentID, testID uint) (int64, error) {
	args := m.Called(ctx, studentID, testID)
	return args.Get(0).(int64), args.Error(1)
}

// MockRepository aggregates the entity mocks behind the Repository interface
type MockRepository struct {
	userRepo     *MockUserRepository
	groupRepo    *MockGroupRepository
	testRepo     *MockTestRepository
	questionRepo *MockQuestionRepository
	resultRepo   *MockResultRepository
}

func newMockRepository() *MockRepository {
	return &MockRepository{
		userRepo:     &MockUserRepository{},
		groupRepo:    &MockGroupRepository{},
		testRepo:     &MockTestRepository{},
		questionRepo: &MockQuestionRepository{},
		resultRepo:   &MockResultRepository{},
	}
}

func (m *MockRepository) User() repositories.UserRepository         { return m.userRepo }
func (m *MockRepository) Group() repositories.GroupRepository       { return m.groupRepo }
func (m *MockRepository) Test() repositories.TestRepository         { return m.testRepo }
func (m *MockRepository) Question() repositories.QuestionRepository { return m.questionRepo }
func (m *MockRepository) Result() repositories.ResultRepository     { return m.resultRepo }

// memoryProgressStore is an in-memory ProgressStore for exercising the
// attempt lifecycle without Redis.
type memoryProgressStore struct {
	mu        sync.Mutex
	snapshots map[string]*models.AttemptSnapshot
}

func newMemoryProgressStore() *memoryProgressStore {
	return &memoryProgressStore{snapshots: make(map[string]*models.AttemptSnapshot)}
}

func memoryKey(studentID, testID uint) string {
	return fmt.Sprintf("%d:%d", studentID, testID)
}

func (s *memoryProgressStore) Save(_ context.Context, snapshot *models.AttemptSnapshot, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *snapshot
	s.snapshots[memoryKey(snapshot.StudentID, snapshot.TestID)] = &copied
	return nil
}

func (s *memoryProgressStore) Load(_ context.Context, studentID, testID uint) (*models.AttemptSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot, ok := s.snapshots[memoryKey(studentID, testID)]
	if !ok {
		return nil, nil
	}
	copied := *snapshot
	return &copied, nil
}

func (s *memoryProgressStore) Clear(_ context.Context, studentID, testID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.snapshots, memoryKey(studentID, testID))
	return nil
}

// testLogger discards output so test runs stay quiet.
func testLogger() utils.Logger {
	return utils.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}
