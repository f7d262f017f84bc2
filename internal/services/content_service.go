package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"multistore/internal/events"
	"multistore/internal/models"
	"multistore/internal/repositories"
)

var defaultTemplates = map[string]models.NotificationTemplate{
	models.TemplateOrderPlaced: {
		Subject: "Order {order_number} confirmed",
		Body:    "Hi {customer_name},\n\nThank you for your order {order_number} at {store_name}. Total: {order_total}.",
	},
	models.TemplateOrderStatusChanged: {
		Subject: "Order {order_number} is {order_status}",
		Body:    "Hi {customer_name},\n\nYour order {order_number} at {store_name} is now {order_status}.",
	},
	models.TemplatePasswordReset: {
		Subject: "Reset your {store_name} password",
		Body:    "Hi {customer_name},\n\nUse this code to reset your password: {reset_token}\nIt expires in one hour.",
	},
	models.TemplateNewsletterWelcome: {
		Subject: "Welcome to {store_name}",
		Body:    "Thanks for subscribing to the {store_name} newsletter.",
	},
}

// sampleVars fill template previews.
var sampleVars = map[string]string{
	"customer_name": "Jane Doe",
	"order_number":  "ORD-20260101-a1b2c3",
	"order_total":   "$120.00",
	"order_status":  "shipped",
	"reset_token":   "00000000-0000-0000-0000-000000000000",
	"email":         "jane@example.com",
}

// RenderTemplate replaces {name} placeholders with vars. Unknown placeholders are left as is.
func RenderTemplate(text string, vars map[string]string) string {
	if len(vars) == 0 {
		return text
	}
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(text)
}

// RenderedTemplate is a template with its placeholders filled.
type RenderedTemplate struct {
	Key     string `json:"key"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// TemplateService manages notification templates.
type TemplateService struct {
	repo repositories.TemplateRepository
}

// NewTemplateService creates a new TemplateService.
func NewTemplateService(repo repositories.TemplateRepository) *TemplateService {
	return &TemplateService{repo: repo}
}

// List returns every template of a store, falling back to the defaults for keys never edited.
func (s *TemplateService) List(storeID string) ([]models.NotificationTemplate, error) {
	stored, err := s.repo.List(storeID)
	if err != nil {
		return nil, err
	}
	byKey := map[string]models.NotificationTemplate{}
	for _, t := range stored {
		byKey[t.Key] = t
	}
	out := make([]models.NotificationTemplate, 0, len(models.TemplateKeys))
	for _, key := range models.TemplateKeys {
		if t, ok := byKey[key]; ok {
			out = append(out, t)
			continue
		}
		def := defaultTemplates[key]
		def.StoreID = storeID
		def.Key = key
		out = append(out, def)
	}
	return out, nil
}

// Get returns one template, or its default.
func (s *TemplateService) Get(storeID, key string) (*models.NotificationTemplate, error) {
	def, ok := defaultTemplates[key]
	if !ok {
		return nil, fmt.Errorf("template %s: %w", key, repositories.ErrNotFound)
	}
	tmpl, err := s.repo.Get(storeID, key)
	if errors.Is(err, repositories.ErrNotFound) {
		def.StoreID = storeID
		def.Key = key
		return &def, nil
	}
	return tmpl, err
}

// Update saves the subject and body of a template.
func (s *TemplateService) Update(storeID, key string, tmpl *models.NotificationTemplate) error {
	if _, ok := defaultTemplates[key]; !ok {
		return fmt.Errorf("template %s: %w", key, repositories.ErrNotFound)
	}
	tmpl.StoreID = storeID
	tmpl.Key = key
	return s.repo.Upsert(tmpl)
}

// Render fills a template with vars.
func (s *TemplateService) Render(storeID, key string, vars map[string]string) (*RenderedTemplate, error) {
	tmpl, err := s.Get(storeID, key)
	if err != nil {
		return nil, err
	}
	return &RenderedTemplate{
		Key:     key,
		Subject: RenderTemplate(tmpl.Subject, vars),
		Body:    RenderTemplate(tmpl.Body, vars),
	}, nil
}

// Preview renders a template with sample values and the store name.
func (s *TemplateService) Preview(store *models.Store, key string) (*RenderedTemplate, error) {
	vars := map[string]string{"store_name": store.Name}
	for k, v := range sampleVars {
		vars[k] = v
	}
	return s.Render(store.ID, key, vars)
}

// PlaceholderNames lists the placeholders available to templates.
func PlaceholderNames() []string {
	names := []string{"store_name"}
	for k := range sampleVars {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// BlogService manages store blog posts.
type BlogService struct {
	repo repositories.BlogRepository
	now  func() time.Time
}

// NewBlogService creates a new BlogService.
func NewBlogService(repo repositories.BlogRepository) *BlogService {
	return &BlogService{repo: repo, now: time.Now}
}

// List lists posts, newest first.
func (s *BlogService) List(storeID string, publishedOnly bool) ([]models.BlogPost, error) {
	return s.repo.List(storeID, publishedOnly)
}

// Get retrieves a post by ID.
func (s *BlogService) Get(storeID, id string) (*models.BlogPost, error) {
	return s.repo.GetByID(storeID, id)
}

// GetPublished retrieves a published post by slug.
func (s *BlogService) GetPublished(storeID, slug string) (*models.BlogPost, error) {
	post, err := s.repo.GetBySlug(storeID, slug)
	if err != nil {
		return nil, err
	}
	if !post.Published {
		return nil, fmt.Errorf("blog post %s: %w", slug, repositories.ErrNotFound)
	}
	return post, nil
}

// Create adds a post. Publishing stamps PublishedAt.
func (s *BlogService) Create(storeID string, post *models.BlogPost) error {
	post.StoreID = storeID
	s.prepare(post)
	return s.repo.Create(post)
}

// Update changes a post.
func (s *BlogService) Update(storeID string, post *models.BlogPost) error {
	post.StoreID = storeID
	s.prepare(post)
	return s.repo.Update(post)
}

// Delete removes a post.
func (s *BlogService) Delete(storeID, id string) error {
	return s.repo.Delete(storeID, id)
}

func (s *BlogService) prepare(post *models.BlogPost) {
	if post.Slug == "" {
		post.Slug = Slugify(post.Title)
	}
	switch {
	case post.Published && post.PublishedAt == nil:
		now := s.now().UTC()
		post.PublishedAt = &now
	case !post.Published:
		post.PublishedAt = nil
	}
}

// NewsletterService manages newsletter subscriptions.
type NewsletterService struct {
	repo      repositories.NewsletterRepository
	publisher events.Publisher
}

// NewNewsletterService creates a new NewsletterService.
func NewNewsletterService(repo repositories.NewsletterRepository, publisher events.Publisher) *NewsletterService {
	return &NewsletterService{repo: repo, publisher: publisher}
}

// Subscribe adds an email to the store's list. Subscribing twice is not an
// error; only the first subscription announces itself.
func (s *NewsletterService) Subscribe(ctx context.Context, storeID, email string) (bool, error) {
	email = normalizeEmail(email)
	created, err := s.repo.Subscribe(storeID, email)
	if err != nil {
		return false, err
	}
	if created {
		events.Emit(ctx, s.publisher, events.NewsletterSubscribed, storeID, events.NewsletterPayload{Email: email})
	}
	return created, nil
}

// List lists subscribers.
func (s *NewsletterService) List(storeID string) ([]models.NewsletterSubscriber, error) {
	return s.repo.List(storeID)
}
