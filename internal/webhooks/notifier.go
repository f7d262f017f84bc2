package webhooks

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"multistore/internal/events"
	"multistore/internal/models"
	"multistore/internal/repositories"
	"multistore/internal/services"
)

// Mailer sends a rendered email.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// LogMailer writes outgoing email to the log instead of sending it.
type LogMailer struct{}

// Send logs the message.
func (LogMailer) Send(_ context.Context, to, subject, body string) error {
	log.Printf("Email to %s: %s\n%s", to, subject, body)
	return nil
}

// Notifier renders a store's notification template for an event and mails it.
type Notifier struct {
	templates *services.TemplateService
	stores    repositories.StoreRepository
	users     repositories.UserRepository
	mailer    Mailer
}

// NewNotifier creates a Notifier. A nil mailer logs emails.
func NewNotifier(templates *services.TemplateService, stores repositories.StoreRepository, users repositories.UserRepository, mailer Mailer) *Notifier {
	if mailer == nil {
		mailer = LogMailer{}
	}
	return &Notifier{templates: templates, stores: stores, users: users, mailer: mailer}
}

// Register subscribes the notifier to the events that have a template.
func (n *Notifier) Register(router *events.Router) {
	router.Handle(events.OrderPlaced, n.orderEvent(models.TemplateOrderPlaced))
	router.Handle(events.OrderStatusChanged, n.orderEvent(models.TemplateOrderStatusChanged))
	router.Handle(events.PasswordResetRequested, n.passwordReset)
	router.Handle(events.NewsletterSubscribed, n.newsletterWelcome)
}

func (n *Notifier) orderEvent(key string) events.Handler {
	return func(ctx context.Context, evt events.Event) error {
		var p events.OrderPayload
		if err := evt.Decode(&p); err != nil {
			return err
		}
		store, err := n.stores.GetByID(evt.StoreID)
		if err != nil {
			return err
		}
		if p.CustomerEmail == "" && p.CustomerID != "" {
			customer, err := n.users.GetByID(p.CustomerID)
			if err != nil {
				if errors.Is(err, repositories.ErrNotFound) {
					return nil
				}
				return err
			}
			p.CustomerEmail, p.CustomerName = customer.Email, customer.Name
		}
		if p.CustomerEmail == "" {
			return nil
		}
		return n.send(ctx, store, key, p.CustomerEmail, map[string]string{
			"customer_name": p.CustomerName,
			"email":         p.CustomerEmail,
			"order_number":  p.Number,
			"order_total":   services.Money(store).Format(p.Total),
			"order_status":  p.Status,
		})
	}
}

func (n *Notifier) passwordReset(ctx context.Context, evt events.Event) error {
	var p events.CustomerPayload
	if err := evt.Decode(&p); err != nil {
		return err
	}
	store, err := n.stores.GetByID(evt.StoreID)
	if err != nil {
		return err
	}
	// the token never travels in the event, it is read back here
	reset, err := n.users.LatestReset(p.UserID, time.Now())
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil
		}
		return err
	}
	return n.send(ctx, store, models.TemplatePasswordReset, p.Email, map[string]string{
		"customer_name": p.Name,
		"email":         p.Email,
		"reset_token":   reset.Token,
	})
}

func (n *Notifier) newsletterWelcome(ctx context.Context, evt events.Event) error {
	var p events.NewsletterPayload
	if err := evt.Decode(&p); err != nil {
		return err
	}
	store, err := n.stores.GetByID(evt.StoreID)
	if err != nil {
		return err
	}
	return n.send(ctx, store, models.TemplateNewsletterWelcome, p.Email, map[string]string{"email": p.Email})
}

func (n *Notifier) send(ctx context.Context, store *models.Store, key, to string, vars map[string]string) error {
	vars["store_name"] = store.Name
	msg, err := n.templates.Render(store.ID, key, vars)
	if err != nil {
		return fmt.Errorf("failed to render %s for store %s: %w", key, store.ID, err)
	}
	return n.mailer.Send(ctx, to, msg.Subject, msg.Body)
}
