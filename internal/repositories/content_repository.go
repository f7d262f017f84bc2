package repositories

import (
	"errors"
	"fmt"

	"multistore/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TemplateRepository defines the interface for notification template access.
type TemplateRepository interface {
	List(storeID string) ([]models.NotificationTemplate, error)
	Get(storeID, key string) (*models.NotificationTemplate, error)
	Upsert(tmpl *models.NotificationTemplate) error
}

// BlogRepository defines the interface for blog post access.
type BlogRepository interface {
	List(storeID string, publishedOnly bool) ([]models.BlogPost, error)
	GetByID(storeID, id string) (*models.BlogPost, error)
	GetBySlug(storeID, slug string) (*models.BlogPost, error)
	Create(post *models.BlogPost) error
	Update(post *models.BlogPost) error
	Delete(storeID, id string) error
}

// NewsletterRepository defines the interface for newsletter subscriptions.
type NewsletterRepository interface {
	Subscribe(storeID, email string) (created bool, err error)
	List(storeID string) ([]models.NewsletterSubscriber, error)
}

// GORMTemplateRepository is a GORM implementation of TemplateRepository.
type GORMTemplateRepository struct {
	db *gorm.DB
}

// NewGORMTemplateRepository creates a new instance of GORMTemplateRepository.
func NewGORMTemplateRepository(db *gorm.DB) *GORMTemplateRepository {
	return &GORMTemplateRepository{db: db}
}

// List retrieves the customised templates of a store.
func (r *GORMTemplateRepository) List(storeID string) ([]models.NotificationTemplate, error) {
	var templates []models.NotificationTemplate
	if err := r.db.Where("store_id = ?", storeID).Order("template_key").Find(&templates).Error; err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	return templates, nil
}

// Get retrieves the template of a store for a key.
func (r *GORMTemplateRepository) Get(storeID, key string) (*models.NotificationTemplate, error) {
	var tmpl models.NotificationTemplate
	if err := r.db.First(&tmpl, "store_id = ? AND template_key = ?", storeID, key).Error; err != nil {
		return nil, wrap(err, "template %s", key)
	}
	return &tmpl, nil
}

// Upsert creates the template or replaces its subject and body.
func (r *GORMTemplateRepository) Upsert(tmpl *models.NotificationTemplate) error {
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "store_id"}, {Name: "template_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"subject", "body", "updated_at"}),
	}).Create(tmpl).Error
	return wrap(err, "failed to save template %s", tmpl.Key)
}

// GORMBlogRepository is a GORM implementation of BlogRepository.
type GORMBlogRepository struct {
	db *gorm.DB
}

// NewGORMBlogRepository creates a new instance of GORMBlogRepository.
func NewGORMBlogRepository(db *gorm.DB) *GORMBlogRepository {
	return &GORMBlogRepository{db: db}
}

// List retrieves the posts of a store, newest first.
func (r *GORMBlogRepository) List(storeID string, publishedOnly bool) ([]models.BlogPost, error) {
	q := r.db.Where("store_id = ?", storeID)
	if publishedOnly {
		q = q.Where("published = ?", true)
	}
	var posts []models.BlogPost
	if err := q.Order("created_at DESC").Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("failed to list blog posts: %w", err)
	}
	return posts, nil
}

// GetByID retrieves a post of a store.
func (r *GORMBlogRepository) GetByID(storeID, id string) (*models.BlogPost, error) {
	var post models.BlogPost
	if err := r.db.First(&post, "store_id = ? AND id = ?", storeID, id).Error; err != nil {
		return nil, wrap(err, "blog post with ID %s", id)
	}
	return &post, nil
}

// GetBySlug retrieves a post of a store by slug.
func (r *GORMBlogRepository) GetBySlug(storeID, slug string) (*models.BlogPost, error) {
	var post models.BlogPost
	if err := r.db.First(&post, "store_id = ? AND slug = ?", storeID, slug).Error; err != nil {
		return nil, wrap(err, "blog post %s", slug)
	}
	return &post, nil
}

// Create inserts a post.
func (r *GORMBlogRepository) Create(post *models.BlogPost) error {
	return wrap(r.db.Create(post).Error, "failed to create blog post")
}

// Update saves a post.
func (r *GORMBlogRepository) Update(post *models.BlogPost) error {
	return updateScoped(r.db, post, post.StoreID, post.ID, "blog post")
}

// Delete removes a post.
func (r *GORMBlogRepository) Delete(storeID, id string) error {
	return deleteScoped(r.db, &models.BlogPost{}, storeID, id, "blog post")
}

// GORMNewsletterRepository is a GORM implementation of NewsletterRepository.
type GORMNewsletterRepository struct {
	db *gorm.DB
}

// NewGORMNewsletterRepository creates a new instance of GORMNewsletterRepository.
func NewGORMNewsletterRepository(db *gorm.DB) *GORMNewsletterRepository {
	return &GORMNewsletterRepository{db: db}
}

// Subscribe adds an email to a store's list. Subscribing twice is not an error.
func (r *GORMNewsletterRepository) Subscribe(storeID, email string) (bool, error) {
	var existing int64
	if err := r.db.Model(&models.NewsletterSubscriber{}).Where("store_id = ? AND email = ?", storeID, email).Count(&existing).Error; err != nil {
		return false, fmt.Errorf("failed to subscribe %s: %w", email, err)
	}
	if existing > 0 {
		return false, nil
	}
	err := wrap(r.db.Create(&models.NewsletterSubscriber{StoreID: storeID, Email: email}).Error, "failed to subscribe %s", email)
	if errors.Is(err, ErrConflict) {
		return false, nil
	}
	return err == nil, err
}

// List retrieves the subscribers of a store.
func (r *GORMNewsletterRepository) List(storeID string) ([]models.NewsletterSubscriber, error) {
	var subs []models.NewsletterSubscriber
	if err := r.db.Where("store_id = ?", storeID).Order("created_at DESC").Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("failed to list subscribers: %w", err)
	}
	return subs, nil
}
