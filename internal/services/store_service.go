package services

import (
	"fmt"
	"strings"

	"multistore/internal/models"
	"multistore/internal/pricing"
	"multistore/internal/repositories"
	"multistore/internal/theme"
)

// GeneralSettings are the brand settings an admin can change.
type GeneralSettings struct {
	Name         string `json:"name" validate:"required,min=2,max=150"`
	LogoURL      string `json:"logo_url" validate:"omitempty,max=500"`
	FaviconURL   string `json:"favicon_url" validate:"omitempty,max=500"`
	PrimaryColor string `json:"primary_color" validate:"omitempty,hexcolor"`
	Locale       string `json:"locale" validate:"omitempty,bcp47_language_tag"`
}

// CurrencySettings control how prices are displayed.
type CurrencySettings struct {
	Code           string `json:"currency" validate:"required,len=3,alpha"`
	Symbol         string `json:"currency_symbol" validate:"required,max=8"`
	SymbolPosition string `json:"symbol_position" validate:"required,oneof=before after"`
	Decimals       int    `json:"decimals" validate:"gte=0,lte=4"`
}

// StoreService manages tenants and their settings.
type StoreService struct {
	stores repositories.StoreRepository
	plans  repositories.PlanRepository
}

// NewStoreService creates a new StoreService.
func NewStoreService(stores repositories.StoreRepository, plans repositories.PlanRepository) *StoreService {
	return &StoreService{stores: stores, plans: plans}
}

// Resolve returns the enabled store with slug.
func (s *StoreService) Resolve(slug string) (*models.Store, error) {
	store, err := s.stores.GetBySlug(strings.ToLower(slug))
	if err != nil {
		return nil, err
	}
	if !store.Enabled {
		return nil, fmt.Errorf("store %s: %w", slug, ErrStoreUnavailable)
	}
	return store, nil
}

// GetStore retrieves a store by ID.
func (s *StoreService) GetStore(id string) (*models.Store, error) {
	return s.stores.GetByID(id)
}

// ListStores lists every store of the platform.
func (s *StoreService) ListStores() ([]models.Store, error) {
	return s.stores.GetAll()
}

// CreateStore creates a store, filling display defaults.
func (s *StoreService) CreateStore(store *models.Store) error {
	store.Slug = strings.ToLower(strings.TrimSpace(store.Slug))
	if _, ok := theme.Parse(store.Theme); !ok {
		store.Theme = string(theme.Default)
	}
	if store.Currency == "" {
		store.Currency = "USD"
		store.CurrencySymbol = "$"
		store.Decimals = 2
	}
	if store.SymbolPosition == "" {
		store.SymbolPosition = models.SymbolBefore
	}
	if store.Locale == "" {
		store.Locale = "en"
	}
	return s.stores.Create(store)
}

// UpdateGeneral changes the brand settings of a store.
func (s *StoreService) UpdateGeneral(storeID string, in GeneralSettings) (*models.Store, error) {
	return s.update(storeID, func(st *models.Store) error {
		st.Name = in.Name
		st.LogoURL = in.LogoURL
		st.FaviconURL = in.FaviconURL
		st.PrimaryColor = in.PrimaryColor
		if in.Locale != "" {
			st.Locale = in.Locale
		}
		return nil
	})
}

// UpdateCurrency changes how prices of a store are displayed.
func (s *StoreService) UpdateCurrency(storeID string, in CurrencySettings) (*models.Store, error) {
	return s.update(storeID, func(st *models.Store) error {
		st.Currency = strings.ToUpper(in.Code)
		st.CurrencySymbol = in.Symbol
		st.SymbolPosition = in.SymbolPosition
		st.Decimals = in.Decimals
		return nil
	})
}

// UpdateTheme switches the storefront theme. Only known theme keys are accepted.
func (s *StoreService) UpdateTheme(storeID, key string) (*models.Store, error) {
	k, ok := theme.Parse(key)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTheme, key)
	}
	return s.update(storeID, func(st *models.Store) error {
		st.Theme = string(k)
		return nil
	})
}

// AssignPlan places a store on a plan.
func (s *StoreService) AssignPlan(storeID, planID string) (*models.Store, error) {
	if _, err := s.plans.GetByID(planID); err != nil {
		return nil, err
	}
	return s.update(storeID, func(st *models.Store) error {
		st.PlanID = planID
		return nil
	})
}

// SetEnabled opens or closes a storefront.
func (s *StoreService) SetEnabled(storeID string, enabled bool) (*models.Store, error) {
	return s.update(storeID, func(st *models.Store) error {
		st.Enabled = enabled
		return nil
	})
}

func (s *StoreService) update(storeID string, apply func(*models.Store) error) (*models.Store, error) {
	store, err := s.stores.GetByID(storeID)
	if err != nil {
		return nil, err
	}
	if err := apply(store); err != nil {
		return nil, err
	}
	if err := s.stores.Update(store); err != nil {
		return nil, err
	}
	return store, nil
}

// Money returns the price formatter of a store.
func Money(store *models.Store) pricing.Money {
	return pricing.Money{
		Code:     store.Currency,
		Symbol:   store.CurrencySymbol,
		Position: store.SymbolPosition,
		Decimals: store.Decimals,
		Locale:   store.Locale,
	}
}
