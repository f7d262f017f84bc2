package repositories

import (
	"fmt"
	"time"

	"multistore/internal/models"

	"gorm.io/gorm"
)

// UserRepository defines the interface for user data access.
type UserRepository interface {
	Create(user *models.User) error
	GetByEmail(storeID, email string) (*models.User, error)
	GetByID(id string) (*models.User, error)
	ListByRole(storeID, role string) ([]models.User, error)
	UpdatePassword(userID, hash string) error
	CreateReset(reset *models.PasswordReset) error
	ConsumeReset(token string, now time.Time) (*models.PasswordReset, error)
	LatestReset(userID string, now time.Time) (*models.PasswordReset, error)
}

// GORMUserRepository is a GORM implementation of UserRepository.
type GORMUserRepository struct {
	db *gorm.DB
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{db: db}
}

// Create creates a new user in the database.
func (r *GORMUserRepository) Create(user *models.User) error {
	return wrap(r.db.Create(user).Error, "failed to create user")
}

// GetByEmail retrieves a user of a store by email. Superadmins have an empty store ID.
func (r *GORMUserRepository) GetByEmail(storeID, email string) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, "store_id = ? AND email = ?", storeID, email).Error; err != nil {
		return nil, wrap(err, "user with email %s", email)
	}
	return &user, nil
}

// GetByID retrieves a user by their ID from the database.
func (r *GORMUserRepository) GetByID(id string) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, "id = ?", id).Error; err != nil {
		return nil, wrap(err, "user with ID %s", id)
	}
	return &user, nil
}

// ListByRole lists the users of a store holding a role, newest first.
func (r *GORMUserRepository) ListByRole(storeID, role string) ([]models.User, error) {
	var users []models.User
	if err := r.db.Where("store_id = ? AND role = ?", storeID, role).Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// UpdatePassword replaces the stored password hash of a user.
func (r *GORMUserRepository) UpdatePassword(userID, hash string) error {
	res := r.db.Model(&models.User{}).Where("id = ?", userID).Update("password", hash)
	if res.Error != nil {
		return fmt.Errorf("failed to update password: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user with ID %s not found: %w", userID, ErrNotFound)
	}
	return nil
}

// CreateReset stores a password reset token.
func (r *GORMUserRepository) CreateReset(reset *models.PasswordReset) error {
	return wrap(r.db.Create(reset).Error, "failed to create password reset")
}

// LatestReset returns the newest unused, unexpired token of a user.
func (r *GORMUserRepository) LatestReset(userID string, now time.Time) (*models.PasswordReset, error) {
	var reset models.PasswordReset
	err := r.db.Where("user_id = ? AND used = ? AND expires_at > ?", userID, false, now).
		Order("created_at DESC").First(&reset).Error
	if err != nil {
		return nil, wrap(err, "password reset of user %s", userID)
	}
	return &reset, nil
}

// ConsumeReset marks an unused, unexpired token as used and returns it.
func (r *GORMUserRepository) ConsumeReset(token string, now time.Time) (*models.PasswordReset, error) {
	var reset models.PasswordReset
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&reset, "token = ? AND used = ? AND expires_at > ?", token, false, now).Error; err != nil {
			return err
		}
		return tx.Model(&reset).Update("used", true).Error
	})
	if err != nil {
		return nil, wrap(err, "password reset token")
	}
	return &reset, nil
}
