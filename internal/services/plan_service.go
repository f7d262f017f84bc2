package services

import (
	"multistore/internal/models"
	"multistore/internal/repositories"
)

// PlanService manages subscription plans. Only platform operators use it.
type PlanService struct {
	repo repositories.PlanRepository
}

// NewPlanService creates a new PlanService.
func NewPlanService(repo repositories.PlanRepository) *PlanService {
	return &PlanService{repo: repo}
}

func (s *PlanService) GetAllPlans() ([]models.Plan, error) {
	return s.repo.GetAll()
}

func (s *PlanService) GetPlan(id string) (*models.Plan, error) {
	return s.repo.GetByID(id)
}

func (s *PlanService) CreatePlan(plan *models.Plan) error {
	if plan.Interval == "" {
		plan.Interval = "monthly"
	}
	return s.repo.Create(plan)
}

func (s *PlanService) UpdatePlan(plan *models.Plan) error {
	if plan.Interval == "" {
		plan.Interval = "monthly"
	}
	return s.repo.Update(plan)
}

func (s *PlanService) DeletePlan(id string) error {
	return s.repo.Delete(id)
}
