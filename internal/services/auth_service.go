package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"multistore/internal/events"
	"multistore/internal/models"
	"multistore/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Identity is the authenticated principal carried by a JWT.
type Identity struct {
	UserID  string `json:"user_id"`
	Email   string `json:"email"`
	Role    string `json:"role"`
	StoreID string `json:"store_id"`
}

// IdentityFromClaims reads an Identity out of validated token claims.
func IdentityFromClaims(claims jwt.MapClaims) Identity {
	str := func(k string) string {
		v, _ := claims[k].(string)
		return v
	}
	return Identity{
		UserID:  str("user_id"),
		Email:   str("email"),
		Role:    str("role"),
		StoreID: str("store_id"),
	}
}

// AuthService handles business logic for authentication and authorization.
type AuthService struct {
	userRepo   repositories.UserRepository
	publisher  events.Publisher
	jwtSecret  []byte
	tokenDurat time.Duration // Duration for which JWT is valid
	resetTTL   time.Duration
	now        func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, publisher events.Publisher, jwtSecret string) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		publisher:  publisher,
		jwtSecret:  []byte(jwtSecret),
		tokenDurat: 24 * time.Hour, // Token valid for 24 hours
		resetTTL:   time.Hour,
		now:        time.Now,
	}
}

// RegisterCustomer registers a customer of a store and hashes their password.
func (s *AuthService) RegisterCustomer(ctx context.Context, storeID string, user *models.User) error {
	user.StoreID = storeID
	user.Role = models.RoleCustomer
	user.Email = normalizeEmail(user.Email)
	if err := s.createUser(user); err != nil {
		return err
	}
	events.Emit(ctx, s.publisher, events.CustomerRegistered, storeID, events.CustomerPayload{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
	})
	return nil
}

// CreateUser stores a user of any role with a hashed password.
func (s *AuthService) CreateUser(user *models.User) error {
	user.Email = normalizeEmail(user.Email)
	return s.createUser(user)
}

func (s *AuthService) createUser(user *models.User) error {
	if existingUser, err := s.userRepo.GetByEmail(user.StoreID, user.Email); err == nil && existingUser != nil {
		return fmt.Errorf("email '%s': %w", user.Email, ErrEmailTaken)
	}

	// Hash the password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = string(hashedPassword)

	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			return fmt.Errorf("email '%s': %w", user.Email, ErrEmailTaken)
		}
		return fmt.Errorf("failed to register user: %w", err)
	}
	return nil
}

// Login authenticates a user of a store holding one of roles and returns a
// signed JWT along with the user.
func (s *AuthService) Login(storeID, email, password string, roles ...string) (string, *models.User, error) {
	user, err := s.userRepo.GetByEmail(storeID, normalizeEmail(email))
	if err != nil {
		return "", nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}
	if !hasRole(user.Role, roles) {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// IssueToken signs a JWT for user.
func (s *AuthService) IssueToken(user *models.User) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  user.ID,
		"email":    user.Email,
		"role":     user.Role,
		"store_id": user.StoreID,
		"exp":      now.Add(s.tokenDurat).Unix(),
		"iat":      now.Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken parses and validates a JWT token, returning the claims if valid.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		log.Printf("Token validation error: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, ErrInvalidToken
}

// GetUser loads a user by ID.
func (s *AuthService) GetUser(id string) (*models.User, error) {
	return s.userRepo.GetByID(id)
}

// ListCustomers lists the customers of a store.
func (s *AuthService) ListCustomers(storeID string) ([]models.User, error) {
	return s.userRepo.ListByRole(storeID, models.RoleCustomer)
}

// ForgotPassword issues a one-hour reset token for the customer with email.
// An unknown email yields an empty token and no error so callers cannot
// probe which addresses are registered.
func (s *AuthService) ForgotPassword(ctx context.Context, storeID, email string) (string, error) {
	user, err := s.userRepo.GetByEmail(storeID, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return "", nil
		}
		return "", err
	}

	reset := &models.PasswordReset{
		Token:     uuid.New().String(),
		UserID:    user.ID,
		ExpiresAt: s.now().Add(s.resetTTL),
	}
	if err := s.userRepo.CreateReset(reset); err != nil {
		return "", err
	}
	events.Emit(ctx, s.publisher, events.PasswordResetRequested, storeID, events.CustomerPayload{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
	})
	return reset.Token, nil
}

// ResetPassword consumes a reset token and sets a new password.
func (s *AuthService) ResetPassword(token, password string) error {
	reset, err := s.userRepo.ConsumeReset(token, s.now())
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrInvalidToken
		}
		return err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return s.userRepo.UpdatePassword(reset.UserID, string(hashed))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func hasRole(role string, roles []string) bool {
	if len(roles) == 0 {
		return true
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
