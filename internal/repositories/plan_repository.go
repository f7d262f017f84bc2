package repositories

import (
	"fmt"

	"multistore/internal/models"

	"gorm.io/gorm"
)

// PlanRepository defines the interface for subscription plan access.
type PlanRepository interface {
	GetAll() ([]models.Plan, error)
	GetByID(id string) (*models.Plan, error)
	Create(plan *models.Plan) error
	Update(plan *models.Plan) error
	Delete(id string) error
}

// GORMPlanRepository is a GORM implementation of PlanRepository.
type GORMPlanRepository struct {
	db *gorm.DB
}

// NewGORMPlanRepository creates a new instance of GORMPlanRepository.
func NewGORMPlanRepository(db *gorm.DB) *GORMPlanRepository {
	return &GORMPlanRepository{db: db}
}

// GetAll retrieves every plan, cheapest first.
func (r *GORMPlanRepository) GetAll() ([]models.Plan, error) {
	var plans []models.Plan
	if err := r.db.Order("price, name").Find(&plans).Error; err != nil {
		return nil, fmt.Errorf("failed to get all plans: %w", err)
	}
	return plans, nil
}

// GetByID retrieves a plan.
func (r *GORMPlanRepository) GetByID(id string) (*models.Plan, error) {
	var plan models.Plan
	if err := r.db.First(&plan, "id = ?", id).Error; err != nil {
		return nil, wrap(err, "plan with ID %s", id)
	}
	return &plan, nil
}

// Create inserts a plan.
func (r *GORMPlanRepository) Create(plan *models.Plan) error {
	return wrap(r.db.Create(plan).Error, "failed to create plan")
}

// Update saves an existing plan.
func (r *GORMPlanRepository) Update(plan *models.Plan) error {
	var count int64
	if err := r.db.Model(&models.Plan{}).Where("id = ?", plan.ID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to update plan: %w", err)
	}
	if count == 0 {
		return fmt.Errorf("plan with ID %s not found for update: %w", plan.ID, ErrNotFound)
	}
	if err := r.db.Omit("created_at").Save(plan).Error; err != nil {
		return wrap(err, "failed to update plan")
	}
	return wrap(r.db.Where("id = ?", plan.ID).First(plan).Error, "failed to reload plan")
}

// Delete removes a plan.
func (r *GORMPlanRepository) Delete(id string) error {
	res := r.db.Delete(&models.Plan{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete plan: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("plan with ID %s not found for deletion: %w", id, ErrNotFound)
	}
	return nil
}
