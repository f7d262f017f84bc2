// Package payment abstracts the gateways a store can collect payment through.
package payment

import (
	"context"
	"errors"
)

// Status is the settlement state reported by a gateway.
type Status string

const (
	StatusPending Status = "pending"
	StatusPaid    Status = "paid"
	StatusFailed  Status = "failed"
)

// ErrGateway wraps any failure talking to a gateway.
var ErrGateway = errors.New("payment gateway error")

// Customer identifies the payer.
type Customer struct {
	ID    string
	Name  string
	Email string
	Phone string
}

// Session describes an amount to collect for an order.
type Session struct {
	OrderRef  string
	Amount    float64
	Currency  string
	Customer  Customer
	ReturnURL string
}

// SessionResult is what the client needs to open hosted checkout.
type SessionResult struct {
	Ref       string `json:"order_ref"`
	SessionID string `json:"payment_session_id"`
}

// Gateway creates payment sessions and verifies their outcome.
type Gateway interface {
	CreateSession(ctx context.Context, s Session) (SessionResult, error)
	Verify(ctx context.Context, orderRef string) (Status, error)
}

// Manual is the gateway for cash on delivery: there is nothing to open and
// nothing is ever settled online.
type Manual struct{}

// CreateSession returns the order reference without a session id.
func (Manual) CreateSession(_ context.Context, s Session) (SessionResult, error) {
	return SessionResult{Ref: s.OrderRef}, nil
}

// Verify always reports pending.
func (Manual) Verify(context.Context, string) (Status, error) {
	return StatusPending, nil
}
