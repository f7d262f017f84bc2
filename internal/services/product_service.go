package services

import (
	"fmt"
	"strings"
	"unicode"

	"multistore/internal/cache"
	"multistore/internal/models"
	"multistore/internal/pricing"
	"multistore/internal/repositories"
)

// DefaultPageSize is the storefront catalog page size.
const DefaultPageSize = 24

// ProductView is a product as a storefront shows it.
type ProductView struct {
	models.Product
	EffectivePrice  float64 `json:"effective_price"`
	DiscountPercent int     `json:"discount_percent"`
	DiscountLabel   string  `json:"discount_label,omitempty"`
	PriceLabel      string  `json:"price_label"`
	ImageSrc        string  `json:"image_src"`
	InStock         bool    `json:"in_stock"`
}

// ProductService handles business logic related to the catalog of a store.
type ProductService struct {
	repo       repositories.ProductRepository
	categories repositories.CategoryRepository
	stores     repositories.StoreRepository
	plans      repositories.PlanRepository
	cache      *cache.TenantCache[[]models.Product]
	images     pricing.Images
}

// NewProductService creates a new ProductService.
func NewProductService(
	repo repositories.ProductRepository,
	categories repositories.CategoryRepository,
	stores repositories.StoreRepository,
	plans repositories.PlanRepository,
	listCache *cache.TenantCache[[]models.Product],
	images pricing.Images,
) *ProductService {
	if listCache == nil {
		listCache = cache.NewTenantCache[[]models.Product](0)
	}
	return &ProductService{
		repo:       repo,
		categories: categories,
		stores:     stores,
		plans:      plans,
		cache:      listCache,
		images:     images,
	}
}

// Storefront lists the active products of a store. The unfiltered first page
// is served from the tenant cache.
func (s *ProductService) Storefront(storeID, categoryID string, limit, offset int) ([]models.Product, error) {
	if limit <= 0 || limit > 100 {
		limit = DefaultPageSize
	}
	if offset < 0 {
		offset = 0
	}
	cacheable := categoryID == "" && offset == 0
	key := fmt.Sprintf("first:%d", limit)
	if cacheable {
		if products, ok := s.cache.Get(storeID, key); ok {
			return products, nil
		}
	}

	products, err := s.repo.List(storeID, repositories.ProductFilter{
		CategoryID: categoryID,
		ActiveOnly: true,
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		return nil, err
	}
	if cacheable {
		s.cache.Set(storeID, key, products)
	}
	return products, nil
}

// GetActiveProduct retrieves a product a storefront may show.
func (s *ProductService) GetActiveProduct(storeID, id string) (*models.Product, error) {
	product, err := s.repo.GetByID(storeID, id)
	if err != nil {
		return nil, err
	}
	if !product.Active {
		return nil, fmt.Errorf("product with ID %s: %w", id, repositories.ErrNotFound)
	}
	return product, nil
}

// GetAllProducts retrieves every product of a store for the back office.
func (s *ProductService) GetAllProducts(storeID string) ([]models.Product, error) {
	return s.repo.List(storeID, repositories.ProductFilter{})
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(storeID, id string) (*models.Product, error) {
	return s.repo.GetByID(storeID, id)
}

// CreateProduct creates a product, enforcing the store's plan product limit.
func (s *ProductService) CreateProduct(storeID string, product *models.Product) error {
	if err := s.checkPlanLimit(storeID); err != nil {
		return err
	}
	if err := s.checkCategory(storeID, product.CategoryID); err != nil {
		return err
	}
	product.StoreID = storeID
	if err := s.repo.Create(product); err != nil {
		return err
	}
	s.cache.Invalidate(storeID)
	return nil
}

// UpdateProduct updates an existing product.
func (s *ProductService) UpdateProduct(storeID string, product *models.Product) error {
	if err := s.checkCategory(storeID, product.CategoryID); err != nil {
		return err
	}
	product.StoreID = storeID
	if err := s.repo.Update(product); err != nil {
		return err
	}
	s.cache.Invalidate(storeID)
	return nil
}

// InvalidateCatalog drops the cached listings of a store, e.g. after checkout
// took stock.
func (s *ProductService) InvalidateCatalog(storeID string) {
	s.cache.Invalidate(storeID)
}

// DeleteProduct deletes a product by its ID.
func (s *ProductService) DeleteProduct(storeID, id string) error {
	if err := s.repo.Delete(storeID, id); err != nil {
		return err
	}
	s.cache.Invalidate(storeID)
	return nil
}

func (s *ProductService) checkPlanLimit(storeID string) error {
	store, err := s.stores.GetByID(storeID)
	if err != nil {
		return err
	}
	if store.PlanID == "" {
		return nil
	}
	plan, err := s.plans.GetByID(store.PlanID)
	if err != nil {
		return fmt.Errorf("failed to load plan of store %s: %w", storeID, err)
	}
	if plan.MaxProducts == 0 {
		return nil
	}
	count, err := s.repo.Count(storeID)
	if err != nil {
		return err
	}
	if count >= int64(plan.MaxProducts) {
		return fmt.Errorf("%w: plan %s allows %d products", ErrPlanLimitReached, plan.Name, plan.MaxProducts)
	}
	return nil
}

func (s *ProductService) checkCategory(storeID, categoryID string) error {
	if categoryID == "" {
		return nil
	}
	if _, err := s.categories.GetByID(storeID, categoryID); err != nil {
		return fmt.Errorf("category %s: %w", categoryID, err)
	}
	return nil
}

// GetCategories lists the categories of a store.
func (s *ProductService) GetCategories(storeID string) ([]models.Category, error) {
	return s.categories.List(storeID)
}

// GetCategory retrieves a category by ID.
func (s *ProductService) GetCategory(storeID, id string) (*models.Category, error) {
	return s.categories.GetByID(storeID, id)
}

// CreateCategory creates a category, deriving its slug from the name when empty.
func (s *ProductService) CreateCategory(storeID string, category *models.Category) error {
	category.StoreID = storeID
	if category.Slug == "" {
		category.Slug = Slugify(category.Name)
	}
	if err := s.categories.Create(category); err != nil {
		return err
	}
	s.cache.Invalidate(storeID)
	return nil
}

// UpdateCategory updates a category.
func (s *ProductService) UpdateCategory(storeID string, category *models.Category) error {
	category.StoreID = storeID
	if category.Slug == "" {
		category.Slug = Slugify(category.Name)
	}
	if err := s.categories.Update(category); err != nil {
		return err
	}
	s.cache.Invalidate(storeID)
	return nil
}

// DeleteCategory deletes a category.
func (s *ProductService) DeleteCategory(storeID, id string) error {
	if err := s.categories.Delete(storeID, id); err != nil {
		return err
	}
	s.cache.Invalidate(storeID)
	return nil
}

// View decorates a product with the store's price presentation.
func (s *ProductService) View(store *models.Store, p models.Product) ProductView {
	effective := pricing.EffectivePrice(p.Price, p.SalePrice)
	return ProductView{
		Product:         p,
		EffectivePrice:  effective,
		DiscountPercent: pricing.DiscountPercent(p.Price, p.SalePrice),
		DiscountLabel:   pricing.DiscountLabel(p.Price, p.SalePrice),
		PriceLabel:      Money(store).Format(effective),
		ImageSrc:        s.images.URL(p.ImageURL),
		InStock:         p.Stock > 0,
	}
}

// Views decorates a list of products.
func (s *ProductService) Views(store *models.Store, products []models.Product) []ProductView {
	out := make([]ProductView, 0, len(products))
	for _, p := range products {
		out = append(out, s.View(store, p))
	}
	return out
}

// Slugify turns a title into a URL segment.
func Slugify(title string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}
