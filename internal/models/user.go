package models

import "time"

// Roles a user can hold.
const (
	RoleSuperAdmin = "superadmin"
	RoleAdmin      = "admin"
	RoleCustomer   = "customer"
)

// User is a platform operator, a store administrator or a store customer.
// Customers and admins belong to exactly one store.
type User struct {
	Base
	StoreID  string `json:"store_id" gorm:"type:varchar(36);uniqueIndex:idx_users_store_email"`
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" gorm:"type:varchar(255);uniqueIndex:idx_users_store_email" validate:"required,email"`
	Password string `json:"-" gorm:"type:varchar(255)" validate:"required,min=6"`
	Role     string `json:"role" gorm:"type:varchar(20);index"`
}

// PasswordReset is a one-time token for resetting a user's password.
type PasswordReset struct {
	Token     string    `gorm:"primaryKey;type:varchar(36)"`
	UserID    string    `gorm:"type:varchar(36);index"`
	ExpiresAt time.Time
	Used      bool
	CreatedAt time.Time
}
