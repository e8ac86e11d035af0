package services

import (
	"context"
	"testing"

	"github.com/classmark/testing-service/internal/models"
	"github.com/classmark/testing-service/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func newAuthServiceForTest(repo *MockRepository) AuthService {
	return NewAuthService(repo, testLogger(), utils.NewValidator(), "test-secret")
}

func TestAuthService_Register(t *testing.T) {
	t.Run("successful registration", func(t *testing.T) {
		mockRepo := newMockRepository()
		mockRepo.userRepo.On("ExistsByUsername", mock.Anything, "ivanov").Return(false, nil)
		mockRepo.userRepo.On("Create", mock.Anything, mock.MatchedBy(func(u *models.User) bool {
			// The password is stored hashed, never plain.
			return u.Username == "ivanov" && u.Password != "secret123" &&
				bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("secret123")) == nil
		})).Run(func(args mock.Arguments) {
			args.Get(1).(*models.User).ID = 10
		}).Return(nil)

		service := newAuthServiceForTest(mockRepo)
		id, err := service.Register(context.Background(), &RegisterRequest{
			Username:  "ivanov",
			Password:  "secret123",
			Role:      models.RoleStudent,
			FirstName: "Ivan",
			LastName:  "Ivanov",
		})

		require.NoError(t, err)
		assert.Equal(t, uint(10), id)
		mockRepo.userRepo.AssertExpectations(t)
	})

	t.Run("duplicate username", func(t *testing.T) {
		mockRepo := newMockRepository()
		mockRepo.userRepo.On("ExistsByUsername", mock.Anything, "ivanov").Return(true, nil)

		service := newAuthServiceForTest(mockRepo)
		_, err := service.Register(context.Background(), &RegisterRequest{
			Username:  "ivanov",
			Password:  "secret123",
			Role:      models.RoleStudent,
			FirstName: "Ivan",
			LastName:  "Ivanov",
		})

		assert.ErrorIs(t, err, ErrUsernameTaken)
	})

	t.Run("unknown role is rejected", func(t *testing.T) {
		service := newAuthServiceForTest(newMockRepository())
		_, err := service.Register(context.Background(), &RegisterRequest{
			Username:  "ivanov",
			Password:  "secret123",
			Role:      "admin",
			FirstName: "Ivan",
			LastName:  "Ivanov",
		})

		assert.True(t, IsValidation(err))
	})
}

func TestAuthService_Login(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)

	storedUser := &models.User{
		ID:       10,
		Username: "ivanov",
		Password: string(hash),
		Role:     models.RoleTeacher,
	}

	t.Run("valid credentials", func(t *testing.T) {
		mockRepo := newMockRepository()
		mockRepo.userRepo.On("GetByUsername", mock.Anything, "ivanov").Return(storedUser, nil)

		service := newAuthServiceForTest(mockRepo)
		resp, err := service.Login(context.Background(), &LoginRequest{
			Username: "ivanov",
			Password: "secret123",
		})

		require.NoError(t, err)
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, uint(10), resp.User.ID)

		claims, err := service.ParseToken(resp.Token)
		require.NoError(t, err)
		assert.Equal(t, uint(10), claims.UserID)
		assert.Equal(t, models.RoleTeacher, claims.Role)
	})

	t.Run("wrong password", func(t *testing.T) {
		mockRepo := newMockRepository()
		mockRepo.userRepo.On("GetByUsername", mock.Anything, "ivanov").Return(storedUser, nil)

		service := newAuthServiceForTest(mockRepo)
		_, err := service.Login(context.Background(), &LoginRequest{
			Username: "ivanov",
			Password: "wrong",
		})

		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown username", func(t *testing.T) {
		mockRepo := newMockRepository()
		mockRepo.userRepo.On("GetByUsername", mock.Anything, "ghost").Return(nil, gorm.ErrRecordNotFound)

		service := newAuthServiceForTest(mockRepo)
		_, err := service.Login(context.Background(), &LoginRequest{
			Username: "ghost",
			Password: "secret123",
		})

		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestAuthService_ParseToken_Invalid(t *testing.T) {
	service := newAuthServiceForTest(newMockRepository())

	_, err := service.ParseToken("not-a-token")

	assert.ErrorIs(t, err, ErrUnauthorized)
}

// Tokens signed with a different secret do not verify.
func TestAuthService_ParseToken_WrongSecret(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)

	mockRepo := newMockRepository()
	mockRepo.userRepo.On("GetByUsername", mock.Anything, "ivanov").Return(&models.User{
		ID:       10,
		Username: "ivanov",
		Password: string(hash),
		Role:     models.RoleStudent,
	}, nil)

	issuer := NewAuthService(mockRepo, testLogger(), utils.NewValidator(), "other-secret")
	resp, err := issuer.Login(context.Background(), &LoginRequest{
		Username: "ivanov",
		Password: "secret123",
	})
	require.NoError(t, err)

	verifier := newAuthServiceForTest(newMockRepository())
	_, err = verifier.ParseToken(resp.Token)

	assert.ErrorIs(t, err, ErrUnauthorized)
}
