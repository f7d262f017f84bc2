// Package webhooks delivers store events to the outside world: signed HTTP
// callbacks to merchant endpoints and templated customer notifications.
package webhooks

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"multistore/internal/events"
	"multistore/internal/models"
	"multistore/internal/repositories"

	"github.com/gofiber/fiber/v2"
)

// Headers set on every delivery.
const (
	SignatureHeader = "X-Multistore-Signature"
	EventHeader     = "X-Multistore-Event"
	DeliveryHeader  = "X-Multistore-Delivery"
)

// Sign returns the signature header value of body: sha256=<hex hmac>.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

// Verify checks a signature header value in constant time.
func Verify(secret string, body []byte, signature string) bool {
	return hmac.Equal([]byte(Sign(secret, body)), []byte(signature))
}

// Dispatcher POSTs events to the webhooks of the store they belong to.
type Dispatcher struct {
	hooks   repositories.WebhookRepository
	timeout time.Duration
}

// NewDispatcher creates a Dispatcher. Each delivery is bounded by timeout.
func NewDispatcher(hooks repositories.WebhookRepository, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Dispatcher{hooks: hooks, timeout: timeout}
}

// Register subscribes the dispatcher to every event.
func (d *Dispatcher) Register(router *events.Router) {
	router.HandleAll(d.Handle)
}

// Handle delivers evt to every active, subscribed webhook of its store.
func (d *Dispatcher) Handle(ctx context.Context, evt events.Event) error {
	hooks, err := d.hooks.List(evt.StoreID, true)
	if err != nil {
		return err
	}
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to marshal event %s: %w", evt.ID, err)
	}

	var errs []error
	for _, hook := range hooks {
		if !hook.Subscribed(evt.Type) {
			continue
		}
		if err := d.deliver(ctx, hook, evt, body); err != nil {
			log.Printf("Webhook %s delivery of %s failed: %v", hook.ID, evt.Type, err)
			errs = append(errs, err)
			continue
		}
		log.Printf("Webhook %s delivered %s", hook.ID, evt.Type)
	}
	return errors.Join(errs...)
}

func (d *Dispatcher) deliver(ctx context.Context, hook models.Webhook, evt events.Event, body []byte) error {
	timeout := d.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < timeout {
			timeout = left
		}
	}
	agent := fiber.Post(hook.URL).
		Body(body).
		ContentType(fiber.MIMEApplicationJSON).
		Set(SignatureHeader, Sign(hook.Secret, body)).
		Set(EventHeader, evt.Type).
		Set(DeliveryHeader, evt.ID).
		Timeout(timeout)

	code, _, errs := agent.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("post %s: %w", hook.URL, errs[0])
	}
	if code < 200 || code >= 300 {
		return fmt.Errorf("post %s: unexpected status %d", hook.URL, code)
	}
	return nil
}
