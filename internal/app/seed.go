package app

import (
	"fmt"
	"log"

	"multistore/internal/models"
)

// DemoCredentials are the accounts SeedDemo creates.
type DemoCredentials struct {
	StoreSlug     string
	AdminEmail    string
	PlatformEmail string
	Password      string
}

// DefaultDemo is used by SeedDemo.
var DefaultDemo = DemoCredentials{
	StoreSlug:     "demo",
	AdminEmail:    "admin@demo.test",
	PlatformEmail: "owner@multistore.test",
	Password:      "password",
}

// SeedDemo populates an empty platform with a plan, a demo store, its
// administrator, a platform operator and a small catalog. It does nothing
// when any store exists.
func SeedDemo(s *Server, creds DemoCredentials) error {
	existing, err := s.Stores.ListStores()
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	plan := models.Plan{Name: "Starter", Price: 0, Interval: "monthly", MaxProducts: 50, Active: true}
	if err := s.Plans.CreatePlan(&plan); err != nil {
		return fmt.Errorf("seeding plan: %w", err)
	}
	store := models.Store{
		Slug:    creds.StoreSlug,
		Name:    "Demo Store",
		Theme:   "fashion",
		PlanID:  plan.ID,
		IsDemo:  true,
		Enabled: true,
	}
	if err := s.Stores.CreateStore(&store); err != nil {
		return fmt.Errorf("seeding store: %w", err)
	}

	users := []models.User{
		{StoreID: store.ID, Name: "Demo Admin", Email: creds.AdminEmail, Password: creds.Password, Role: models.RoleAdmin},
		{Name: "Platform Owner", Email: creds.PlatformEmail, Password: creds.Password, Role: models.RoleSuperAdmin},
	}
	for i := range users {
		if err := s.Auth.CreateUser(&users[i]); err != nil {
			return fmt.Errorf("seeding user %s: %w", users[i].Email, err)
		}
	}

	category := models.Category{Name: "Essentials"}
	if err := s.Products.CreateCategory(store.ID, &category); err != nil {
		return fmt.Errorf("seeding category: %w", err)
	}
	products := []models.Product{
		{Name: "Linen Shirt", Description: "Breathable summer shirt", Price: 59, SalePrice: 44.25, Stock: 10},
		{Name: "Denim Jacket", Description: "Classic fit", Price: 120, Stock: 5},
		{Name: "Canvas Tote", Description: "Everyday bag", Price: 25, Stock: 40},
	}
	for i := range products {
		products[i].CategoryID = category.ID
		products[i].Active = true
		if err := s.Products.CreateProduct(store.ID, &products[i]); err != nil {
			log.Printf("Error seeding product %s: %v", products[i].Name, err)
			continue
		}
		log.Printf("Seeded product: %s (ID: %s)", products[i].Name, products[i].ID)
	}

	methods := []models.ShippingMethod{
		{Name: "Standard", Cost: 5, FreeOver: 100, Active: true},
		{Name: "Express", Cost: 15, Active: true},
	}
	for i := range methods {
		if err := s.Shipping.Create(store.ID, &methods[i]); err != nil {
			return fmt.Errorf("seeding shipping method: %w", err)
		}
	}

	post := models.BlogPost{Title: "Welcome to our store", Excerpt: "What we are about.", Body: "Hand picked goods, shipped fast.", Published: true}
	if err := s.Blog.Create(store.ID, &post); err != nil {
		return fmt.Errorf("seeding blog post: %w", err)
	}
	log.Printf("Seeded demo store %q", store.Slug)
	return nil
}
