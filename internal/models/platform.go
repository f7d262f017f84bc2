package models

import (
	"strings"
	"time"
)

// Plan is a subscription tier a store can be placed on.
type Plan struct {
	Base
	Name        string  `json:"name" validate:"required,min=2,max=100"`
	Price       float64 `json:"price" validate:"gte=0"`
	Interval    string  `json:"interval" validate:"omitempty,oneof=monthly yearly"`
	MaxProducts int     `json:"max_products" validate:"gte=0"` // 0 means unlimited
	Active      bool    `json:"active"`
}

// Webhook is an HTTP endpoint notified about store events.
type Webhook struct {
	Base
	StoreID string `json:"store_id" gorm:"type:varchar(36);index"`
	URL     string `json:"url" validate:"required,url"`
	Secret  string `json:"secret,omitempty"`
	Events  string `json:"events" validate:"required"` // comma separated event types, "*" for all
	Active  bool   `json:"active"`
}

// Subscribed reports whether the webhook wants events of the given type.
func (w Webhook) Subscribed(eventType string) bool {
	for _, e := range strings.Split(w.Events, ",") {
		e = strings.TrimSpace(e)
		if e == "*" || e == eventType {
			return true
		}
	}
	return false
}

// Notification template keys.
const (
	TemplateOrderPlaced        = "order_placed"
	TemplateOrderStatusChanged = "order_status_changed"
	TemplatePasswordReset      = "password_reset"
	TemplateNewsletterWelcome  = "newsletter_welcome"
)

// TemplateKeys lists every notification template a store has.
var TemplateKeys = []string{
	TemplateOrderPlaced,
	TemplateOrderStatusChanged,
	TemplatePasswordReset,
	TemplateNewsletterWelcome,
}

// NotificationTemplate is the email content sent for a store event.
type NotificationTemplate struct {
	Base
	StoreID string `json:"store_id" gorm:"type:varchar(36);uniqueIndex:idx_template_key"`
	Key     string `json:"key" gorm:"column:template_key;type:varchar(50);uniqueIndex:idx_template_key"`
	Subject string `json:"subject" validate:"required,max=200"`
	Body    string `json:"body" validate:"required"`
}

// BlogPost is an article on a store's blog.
type BlogPost struct {
	Base
	StoreID     string     `json:"store_id" gorm:"type:varchar(36);index"`
	Title       string     `json:"title" validate:"required,min=3,max=200"`
	Slug        string     `json:"slug" gorm:"type:varchar(200);index" validate:"omitempty,max=200"`
	Excerpt     string     `json:"excerpt" validate:"omitempty,max=500"`
	Body        string     `json:"body" validate:"required"`
	Published   bool       `json:"published"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

// NewsletterSubscriber is an email subscribed to a store's newsletter.
type NewsletterSubscriber struct {
	Base
	StoreID string `json:"store_id" gorm:"type:varchar(36);uniqueIndex:idx_newsletter_email"`
	Email   string `json:"email" gorm:"type:varchar(255);uniqueIndex:idx_newsletter_email" validate:"required,email"`
}

// All returns every model, in migration order.
func All() []any {
	return []any{
		&Plan{}, &Store{}, &User{}, &PasswordReset{}, &Category{}, &Product{},
		&CartItem{}, &WishlistItem{}, &ShippingMethod{}, &Order{}, &OrderItem{},
		&Webhook{}, &NotificationTemplate{}, &BlogPost{}, &NewsletterSubscriber{},
	}
}
