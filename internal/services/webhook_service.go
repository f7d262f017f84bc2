package services

import (
	"errors"
	"fmt"
	"strings"

	"multistore/internal/events"
	"multistore/internal/models"
	"multistore/internal/repositories"

	"github.com/google/uuid"
)

// ErrUnknownEvent is returned when a webhook subscribes to an event type that does not exist.
var ErrUnknownEvent = errors.New("unknown event type")

// WebhookService manages the webhooks of a store.
type WebhookService struct {
	repo repositories.WebhookRepository
}

// NewWebhookService creates a new WebhookService.
func NewWebhookService(repo repositories.WebhookRepository) *WebhookService {
	return &WebhookService{repo: repo}
}

func (s *WebhookService) List(storeID string) ([]models.Webhook, error) {
	return s.repo.List(storeID, false)
}

func (s *WebhookService) Get(storeID, id string) (*models.Webhook, error) {
	return s.repo.GetByID(storeID, id)
}

// Create registers a webhook. A signing secret is generated when none is given.
func (s *WebhookService) Create(storeID string, hook *models.Webhook) error {
	if err := normalizeWebhook(hook); err != nil {
		return err
	}
	hook.StoreID = storeID
	return s.repo.Create(hook)
}

func (s *WebhookService) Update(storeID string, hook *models.Webhook) error {
	if err := normalizeWebhook(hook); err != nil {
		return err
	}
	hook.StoreID = storeID
	return s.repo.Update(hook)
}

func (s *WebhookService) Delete(storeID, id string) error {
	return s.repo.Delete(storeID, id)
}

func normalizeWebhook(hook *models.Webhook) error {
	known := map[string]bool{"*": true}
	for _, t := range events.Types {
		known[t] = true
	}
	var kept []string
	for _, e := range strings.Split(hook.Events, ",") {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		if !known[e] {
			return fmt.Errorf("%w: %s", ErrUnknownEvent, e)
		}
		kept = append(kept, e)
	}
	if len(kept) == 0 {
		return fmt.Errorf("%w: no events selected", ErrUnknownEvent)
	}
	hook.Events = strings.Join(kept, ",")
	if hook.Secret == "" {
		hook.Secret = strings.ReplaceAll(uuid.New().String(), "-", "")
	}
	return nil
}
