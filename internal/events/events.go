// Package events carries store domain events from the services that raise
// them to the handlers that react (webhooks, notifications), either through
// RabbitMQ or in-process.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event types.
const (
	OrderPlaced            = "order.placed"
	OrderPaid              = "order.paid"
	OrderStatusChanged     = "order.status_changed"
	CustomerRegistered     = "customer.registered"
	PasswordResetRequested = "customer.password_reset_requested"
	NewsletterSubscribed   = "newsletter.subscribed"
)

// Types lists every event type, used for webhook subscription validation and queue bindings.
var Types = []string{
	OrderPlaced, OrderPaid, OrderStatusChanged,
	CustomerRegistered, PasswordResetRequested, NewsletterSubscribed,
}

// Event is something that happened in a store.
type Event struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	StoreID    string          `json:"store_id"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// New builds an event with a JSON encoded payload.
func New(eventType, storeID string, payload any) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}
	return Event{
		ID:         uuid.New().String(),
		Type:       eventType,
		StoreID:    storeID,
		OccurredAt: time.Now().UTC(),
		Payload:    raw,
	}, nil
}

// Decode unmarshals the payload into v.
func (e Event) Decode(v any) error {
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return fmt.Errorf("failed to decode %s payload: %w", e.Type, err)
	}
	return nil
}

// Publisher publishes events.
type Publisher interface {
	Publish(ctx context.Context, evt Event) error
}

// Emit builds and publishes an event. A failure is logged, never returned:
// the state change that raised the event has already been committed.
func Emit(ctx context.Context, pub Publisher, eventType, storeID string, payload any) {
	if pub == nil {
		return
	}
	evt, err := New(eventType, storeID, payload)
	if err != nil {
		log.Printf("Warning: %v", err)
		return
	}
	if err := pub.Publish(ctx, evt); err != nil {
		log.Printf("Warning: failed to publish %s event for store %s: %v", eventType, storeID, err)
	}
}

// Handler reacts to an event.
type Handler func(ctx context.Context, evt Event) error

// Router fans events out to the handlers registered for their type.
type Router struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	all      []Handler
}

// NewRouter creates an empty Router.
func NewRouter() *Router {
	return &Router{handlers: map[string][]Handler{}}
}

// Handle registers a handler for one event type.
func (r *Router) Handle(eventType string, h Handler) {
	r.mu.Lock()
	r.handlers[eventType] = append(r.handlers[eventType], h)
	r.mu.Unlock()
}

// HandleAll registers a handler for every event type.
func (r *Router) HandleAll(h Handler) {
	r.mu.Lock()
	r.all = append(r.all, h)
	r.mu.Unlock()
}

// Dispatch runs every matching handler and joins their errors.
func (r *Router) Dispatch(ctx context.Context, evt Event) error {
	r.mu.RLock()
	hs := append(append([]Handler{}, r.handlers[evt.Type]...), r.all...)
	r.mu.RUnlock()

	var errs []error
	for _, h := range hs {
		if err := h(ctx, evt); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ErrClosed is returned by Publish after Close.
var ErrClosed = errors.New("publisher closed")

// Inline publishes to a Router in-process when no broker is configured.
// Events are queued and handled in order on one worker goroutine.
type Inline struct {
	router  *Router
	queue   chan queued
	pending sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

type queued struct {
	ctx context.Context
	evt Event
}

// NewInline creates an in-process publisher and starts its worker.
func NewInline(router *Router) *Inline {
	p := &Inline{router: router, queue: make(chan queued, 256)}
	go p.run()
	return p
}

func (p *Inline) run() {
	for q := range p.queue {
		if err := p.router.Dispatch(q.ctx, q.evt); err != nil {
			log.Printf("Error handling %s event %s: %v", q.evt.Type, q.evt.ID, err)
		}
		p.pending.Done()
	}
}

// Publish queues evt for the worker. Handler failures are logged there.
func (p *Inline) Publish(ctx context.Context, evt Event) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}
	p.pending.Add(1)
	select {
	case p.queue <- queued{ctx: context.WithoutCancel(ctx), evt: evt}:
		return nil
	case <-ctx.Done():
		p.pending.Done()
		return ctx.Err()
	}
}

// Flush blocks until every event published so far has been handled.
func (p *Inline) Flush() {
	p.pending.Wait()
}

// Close stops accepting events and waits for the queued ones.
func (p *Inline) Close() {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.queue)
	}
	p.mu.Unlock()
	p.Flush()
}
