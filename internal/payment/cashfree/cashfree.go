// Package cashfree talks to the Cashfree PG orders API.
package cashfree

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"multistore/internal/payment"

	"github.com/gofiber/fiber/v2"
)

// APIVersion is sent as x-api-version on every call.
const APIVersion = "2023-08-01"

// Client is a payment.Gateway backed by Cashfree.
type Client struct {
	baseURL string
	appID   string
	secret  string
	timeout time.Duration
}

// NewClient creates a client for baseURL (for example https://sandbox.cashfree.com/pg).
func NewClient(baseURL, appID, secret string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		appID:   appID,
		secret:  secret,
		timeout: 15 * time.Second,
	}
}

type customerDetails struct {
	CustomerID    string `json:"customer_id"`
	CustomerName  string `json:"customer_name,omitempty"`
	CustomerEmail string `json:"customer_email,omitempty"`
	CustomerPhone string `json:"customer_phone"`
}

type orderMeta struct {
	ReturnURL string `json:"return_url,omitempty"`
}

type createOrderRequest struct {
	OrderID         string          `json:"order_id"`
	OrderAmount     float64         `json:"order_amount"`
	OrderCurrency   string          `json:"order_currency"`
	CustomerDetails customerDetails `json:"customer_details"`
	OrderMeta       orderMeta       `json:"order_meta"`
}

type orderResponse struct {
	CFOrderID        json.Number `json:"cf_order_id"`
	OrderID          string      `json:"order_id"`
	OrderStatus      string      `json:"order_status"`
	PaymentSessionID string      `json:"payment_session_id"`
}

type errorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

// CreateSession creates a Cashfree order and returns its payment session id.
func (c *Client) CreateSession(ctx context.Context, s payment.Session) (payment.SessionResult, error) {
	if s.Customer.Phone == "" {
		return payment.SessionResult{}, fmt.Errorf("%w: order %s has no customer phone", payment.ErrGateway, s.OrderRef)
	}
	req := createOrderRequest{
		OrderID:       s.OrderRef,
		OrderAmount:   s.Amount,
		OrderCurrency: s.Currency,
		CustomerDetails: customerDetails{
			CustomerID:    s.Customer.ID,
			CustomerName:  s.Customer.Name,
			CustomerEmail: s.Customer.Email,
			CustomerPhone: s.Customer.Phone,
		},
		OrderMeta: orderMeta{ReturnURL: s.ReturnURL},
	}

	agent := c.agent(ctx, fiber.Post(c.baseURL+"/orders")).JSON(req)
	var res orderResponse
	if err := c.do(agent, &res); err != nil {
		return payment.SessionResult{}, err
	}
	if res.PaymentSessionID == "" {
		return payment.SessionResult{}, fmt.Errorf("%w: no payment session id for order %s", payment.ErrGateway, s.OrderRef)
	}
	log.Printf("Cashfree order %s created (cf_order_id %s)", res.OrderID, res.CFOrderID)
	return payment.SessionResult{Ref: res.OrderID, SessionID: res.PaymentSessionID}, nil
}

// Verify fetches the order and maps its status.
func (c *Client) Verify(ctx context.Context, orderRef string) (payment.Status, error) {
	agent := c.agent(ctx, fiber.Get(c.baseURL+"/orders/"+url.PathEscape(orderRef)))
	var res orderResponse
	if err := c.do(agent, &res); err != nil {
		return payment.StatusFailed, err
	}
	switch strings.ToUpper(res.OrderStatus) {
	case "PAID":
		return payment.StatusPaid, nil
	case "ACTIVE":
		return payment.StatusPending, nil
	default:
		return payment.StatusFailed, nil
	}
}

func (c *Client) agent(ctx context.Context, a *fiber.Agent) *fiber.Agent {
	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < timeout {
			timeout = left
		}
	}
	return a.
		Set("x-client-id", c.appID).
		Set("x-client-secret", c.secret).
		Set("x-api-version", APIVersion).
		Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON).
		Timeout(timeout)
}

func (c *Client) do(a *fiber.Agent, out any) error {
	code, body, errs := a.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("%w: %v", payment.ErrGateway, errs[0])
	}
	if code < 200 || code >= 300 {
		var apiErr errorResponse
		_ = json.Unmarshal(body, &apiErr)
		return fmt.Errorf("%w: status %d: %s", payment.ErrGateway, code, apiErr.Message)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: decode response: %v", payment.ErrGateway, err)
	}
	return nil
}
