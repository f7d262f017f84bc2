package services

import "errors"

// Domain errors returned by the services. Handlers map them to HTTP statuses.
var (
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrPlanLimitReached   = errors.New("plan product limit reached")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrInvalidStatus      = errors.New("invalid order status")
	ErrPaymentFailed      = errors.New("payment failed")
	ErrInvalidToken       = errors.New("invalid token")
	ErrInvalidTheme       = errors.New("unknown theme")
	ErrEmailTaken         = errors.New("email already registered")
	ErrStoreUnavailable   = errors.New("store unavailable")
	ErrPhoneRequired      = errors.New("phone number required")
)
