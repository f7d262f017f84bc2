package repositories

import (
	"fmt"

	"multistore/internal/models"

	"gorm.io/gorm"
)

// WebhookRepository defines the interface for webhook access.
type WebhookRepository interface {
	List(storeID string, activeOnly bool) ([]models.Webhook, error)
	GetByID(storeID, id string) (*models.Webhook, error)
	Create(hook *models.Webhook) error
	Update(hook *models.Webhook) error
	Delete(storeID, id string) error
}

// GORMWebhookRepository is a GORM implementation of WebhookRepository.
type GORMWebhookRepository struct {
	db *gorm.DB
}

// NewGORMWebhookRepository creates a new instance of GORMWebhookRepository.
func NewGORMWebhookRepository(db *gorm.DB) *GORMWebhookRepository {
	return &GORMWebhookRepository{db: db}
}

// List retrieves the webhooks of a store.
func (r *GORMWebhookRepository) List(storeID string, activeOnly bool) ([]models.Webhook, error) {
	q := r.db.Where("store_id = ?", storeID)
	if activeOnly {
		q = q.Where("active = ?", true)
	}
	var hooks []models.Webhook
	if err := q.Order("created_at").Find(&hooks).Error; err != nil {
		return nil, fmt.Errorf("failed to list webhooks: %w", err)
	}
	return hooks, nil
}

// GetByID retrieves a webhook of a store.
func (r *GORMWebhookRepository) GetByID(storeID, id string) (*models.Webhook, error) {
	var hook models.Webhook
	if err := r.db.First(&hook, "store_id = ? AND id = ?", storeID, id).Error; err != nil {
		return nil, wrap(err, "webhook with ID %s", id)
	}
	return &hook, nil
}

// Create inserts a webhook.
func (r *GORMWebhookRepository) Create(hook *models.Webhook) error {
	return wrap(r.db.Create(hook).Error, "failed to create webhook")
}

// Update saves a webhook.
func (r *GORMWebhookRepository) Update(hook *models.Webhook) error {
	return updateScoped(r.db, hook, hook.StoreID, hook.ID, "webhook")
}

// Delete removes a webhook.
func (r *GORMWebhookRepository) Delete(storeID, id string) error {
	return deleteScoped(r.db, &models.Webhook{}, storeID, id, "webhook")
}
