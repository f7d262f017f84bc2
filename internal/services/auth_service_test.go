package services_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"multistore/internal/events"
	"multistore/internal/models"
	"multistore/internal/repositories"
	"multistore/internal/services"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testJWTSecret = "test_jwt_secret"

func TestAuthService_RegisterCustomer(t *testing.T) {
	mockRepo := new(MockUserRepository)
	pub := new(MockPublisher)
	authService := services.NewAuthService(mockRepo, pub, testJWTSecret)

	user := &models.User{Name: "Test User", Email: " Test@Example.com ", Password: "password123"}

	mockRepo.On("GetByEmail", "store-1", "test@example.com").Return(nil, repositories.ErrNotFound).Once()
	mockRepo.On("Create", mock.MatchedBy(func(u *models.User) bool {
		return u.StoreID == "store-1" && u.Role == models.RoleCustomer &&
			bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("password123")) == nil
	})).Return(nil).Once()
	pub.On("Publish", mock.Anything, eventOfType(events.CustomerRegistered)).Return(nil).Once()

	err := authService.RegisterCustomer(context.Background(), "store-1", user)
	assert.NoError(t, err)
	assert.Equal(t, "test@example.com", user.Email)
	mockRepo.AssertExpectations(t)
	pub.AssertExpectations(t)

	// Test email already registered
	mockRepo.On("GetByEmail", "store-1", "test@example.com").Return(&models.User{Base: models.Base{ID: "1"}}, nil).Once()
	err = authService.RegisterCustomer(context.Background(), "store-1", &models.User{Email: "test@example.com", Password: "x"})
	assert.ErrorIs(t, err, services.ErrEmailTaken)
	mockRepo.AssertExpectations(t)
}

func TestAuthService_Login(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, nil, testJWTSecret)

	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	user := &models.User{
		Base:     models.Base{ID: "user-123"},
		StoreID:  "store-1",
		Email:    "test@example.com",
		Password: string(hashedPassword),
		Role:     models.RoleCustomer,
	}

	// Test successful login
	mockRepo.On("GetByEmail", "store-1", user.Email).Return(user, nil).Once()
	token, got, err := authService.Login("store-1", "test@example.com", "password123", models.RoleCustomer)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, user, got)

	parsedToken, err := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(testJWTSecret), nil
	})
	require.NoError(t, err)
	claims, ok := parsedToken.Claims.(jwt.MapClaims)
	assert.True(t, ok)
	assert.Equal(t, user.ID, claims["user_id"])
	assert.Equal(t, "store-1", claims["store_id"])
	assert.Equal(t, models.RoleCustomer, claims["role"])
	assert.Contains(t, claims, "iat")
	mockRepo.AssertExpectations(t)

	// Test invalid credentials (wrong password)
	mockRepo.On("GetByEmail", "store-1", user.Email).Return(user, nil).Once()
	_, _, err = authService.Login("store-1", "test@example.com", "wrongpassword")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)

	// Customers cannot use the back office login
	mockRepo.On("GetByEmail", "store-1", user.Email).Return(user, nil).Once()
	_, _, err = authService.Login("store-1", "test@example.com", "password123", models.RoleAdmin)
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)

	// Test invalid credentials (user not found)
	mockRepo.On("GetByEmail", "store-1", "nobody@example.com").Return(nil, repositories.ErrNotFound).Once()
	_, _, err = authService.Login("store-1", "nobody@example.com", "password123")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials) // Should return generic invalid credentials error
	mockRepo.AssertExpectations(t)
}

func TestAuthService_ValidateToken(t *testing.T) {
	authService := services.NewAuthService(new(MockUserRepository), nil, testJWTSecret)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  "user-123",
		"email":    "a@b.co",
		"role":     models.RoleAdmin,
		"store_id": "store-1",
		"exp":      jwt.TimeFunc().Add(time.Hour).Unix(),
	})
	validTokenString, _ := token.SignedString([]byte(testJWTSecret))

	claims, err := authService.ValidateToken(validTokenString)
	require.NoError(t, err)
	id := services.IdentityFromClaims(claims)
	assert.Equal(t, services.Identity{UserID: "user-123", Email: "a@b.co", Role: models.RoleAdmin, StoreID: "store-1"}, id)

	_, err = authService.ValidateToken("invalid.token.string")
	assert.ErrorIs(t, err, services.ErrInvalidToken)

	expiredToken := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "user-123",
		"exp":     jwt.TimeFunc().Add(-time.Hour).Unix(),
	})
	expiredTokenString, _ := expiredToken.SignedString([]byte(testJWTSecret))
	_, err = authService.ValidateToken(expiredTokenString)
	assert.ErrorIs(t, err, services.ErrInvalidToken)

	otherSecret, _ := token.SignedString([]byte("another secret"))
	_, err = authService.ValidateToken(otherSecret)
	assert.ErrorIs(t, err, services.ErrInvalidToken)
}

func TestAuthService_PasswordReset(t *testing.T) {
	mockRepo := new(MockUserRepository)
	pub := new(MockPublisher)
	authService := services.NewAuthService(mockRepo, pub, testJWTSecret)
	user := &models.User{Base: models.Base{ID: "user-1"}, StoreID: "s", Email: "jo@example.com"}

	var issued *models.PasswordReset
	mockRepo.On("GetByEmail", "s", "jo@example.com").Return(user, nil).Once()
	mockRepo.On("CreateReset", mock.AnythingOfType("*models.PasswordReset")).
		Run(func(args mock.Arguments) { issued = args.Get(0).(*models.PasswordReset) }).
		Return(nil).Once()
	pub.On("Publish", mock.Anything, mock.MatchedBy(func(e events.Event) bool {
		// the token is delivered by email only, never inside the event
		return e.Type == events.PasswordResetRequested &&
			issued != nil && !strings.Contains(string(e.Payload), issued.Token)
	})).Return(nil).Once()

	token, err := authService.ForgotPassword(context.Background(), "s", "JO@example.com")
	require.NoError(t, err)
	require.NotNil(t, issued)
	assert.Equal(t, issued.Token, token)
	assert.Equal(t, "user-1", issued.UserID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), issued.ExpiresAt, time.Minute)

	// unknown emails are not revealed
	mockRepo.On("GetByEmail", "s", "ghost@example.com").Return(nil, repositories.ErrNotFound).Once()
	token, err = authService.ForgotPassword(context.Background(), "s", "ghost@example.com")
	assert.NoError(t, err)
	assert.Empty(t, token)

	mockRepo.On("ConsumeReset", issued.Token, mock.AnythingOfType("time.Time")).Return(issued, nil).Once()
	mockRepo.On("UpdatePassword", "user-1", mock.MatchedBy(func(hash string) bool {
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte("new-secret")) == nil
	})).Return(nil).Once()
	require.NoError(t, authService.ResetPassword(issued.Token, "new-secret"))

	// a consumed token cannot be used again
	mockRepo.On("ConsumeReset", issued.Token, mock.AnythingOfType("time.Time")).
		Return(nil, fmt.Errorf("password reset: %w", repositories.ErrNotFound)).Once()
	err = authService.ResetPassword(issued.Token, "again")
	assert.True(t, errors.Is(err, services.ErrInvalidToken))

	mockRepo.AssertExpectations(t)
	pub.AssertExpectations(t)
}
