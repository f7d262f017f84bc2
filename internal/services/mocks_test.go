package services_test

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"multistore/internal/events"
	"multistore/internal/models"
	"multistore/internal/payment"
	"multistore/internal/repositories"

	"github.com/stretchr/testify/mock"
)

// TestMain is used to setup test environment
func TestMain(m *testing.M) {
	log.SetOutput(os.Stdout)
	code := m.Run()
	os.Exit(code)
}

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByEmail(storeID, email string) (*models.User, error) {
	args := m.Called(storeID, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(id string) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) ListByRole(storeID, role string) ([]models.User, error) {
	args := m.Called(storeID, role)
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockUserRepository) UpdatePassword(userID, hash string) error {
	args := m.Called(userID, hash)
	return args.Error(0)
}

func (m *MockUserRepository) CreateReset(reset *models.PasswordReset) error {
	args := m.Called(reset)
	return args.Error(0)
}

func (m *MockUserRepository) ConsumeReset(token string, now time.Time) (*models.PasswordReset, error) {
	args := m.Called(token, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PasswordReset), args.Error(1)
}

func (m *MockUserRepository) LatestReset(userID string, now time.Time) (*models.PasswordReset, error) {
	args := m.Called(userID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PasswordReset), args.Error(1)
}

// MockProductRepository is a mock implementation of repositories.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) List(storeID string, filter repositories.ProductFilter) ([]models.Product, error) {
	args := m.Called(storeID, filter)
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockProductRepository) GetByID(storeID, id string) (*models.Product, error) {
	args := m.Called(storeID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) Create(product *models.Product) error {
	args := m.Called(product)
	return args.Error(0)
}

func (m *MockProductRepository) Update(product *models.Product) error {
	args := m.Called(product)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(storeID, id string) error {
	args := m.Called(storeID, id)
	return args.Error(0)
}

func (m *MockProductRepository) Count(storeID string) (int64, error) {
	args := m.Called(storeID)
	return args.Get(0).(int64), args.Error(1)
}

// MockCategoryRepository is a mock implementation of repositories.CategoryRepository
type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) List(storeID string) ([]models.Category, error) {
	args := m.Called(storeID)
	return args.Get(0).([]models.Category), args.Error(1)
}

func (m *MockCategoryRepository) GetByID(storeID, id string) (*models.Category, error) {
	args := m.Called(storeID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *MockCategoryRepository) Create(category *models.Category) error {
	return m.Called(category).Error(0)
}

func (m *MockCategoryRepository) Update(category *models.Category) error {
	return m.Called(category).Error(0)
}

func (m *MockCategoryRepository) Delete(storeID, id string) error {
	return m.Called(storeID, id).Error(0)
}

// MockStoreRepository is a mock implementation of repositories.StoreRepository
type MockStoreRepository struct {
	mock.Mock
}

func (m *MockStoreRepository) GetAll() ([]models.Store, error) {
	args := m.Called()
	return args.Get(0).([]models.Store), args.Error(1)
}

func (m *MockStoreRepository) GetByID(id string) (*models.Store, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Store), args.Error(1)
}

func (m *MockStoreRepository) GetBySlug(slug string) (*models.Store, error) {
	args := m.Called(slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Store), args.Error(1)
}

func (m *MockStoreRepository) Create(store *models.Store) error {
	return m.Called(store).Error(0)
}

func (m *MockStoreRepository) Update(store *models.Store) error {
	return m.Called(store).Error(0)
}

// MockPlanRepository is a mock implementation of repositories.PlanRepository
type MockPlanRepository struct {
	mock.Mock
}

func (m *MockPlanRepository) GetAll() ([]models.Plan, error) {
	args := m.Called()
	return args.Get(0).([]models.Plan), args.Error(1)
}

func (m *MockPlanRepository) GetByID(id string) (*models.Plan, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Plan), args.Error(1)
}

func (m *MockPlanRepository) Create(plan *models.Plan) error { return m.Called(plan).Error(0) }
func (m *MockPlanRepository) Update(plan *models.Plan) error { return m.Called(plan).Error(0) }
func (m *MockPlanRepository) Delete(id string) error         { return m.Called(id).Error(0) }

// MockCartRepository is a mock implementation of repositories.CartRepository
type MockCartRepository struct {
	mock.Mock
}

func (m *MockCartRepository) Items(storeID, ownerKey string) ([]models.CartItem, error) {
	args := m.Called(storeID, ownerKey)
	return args.Get(0).([]models.CartItem), args.Error(1)
}

func (m *MockCartRepository) GetItem(storeID, ownerKey, id string) (*models.CartItem, error) {
	args := m.Called(storeID, ownerKey, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CartItem), args.Error(1)
}

func (m *MockCartRepository) FindByProduct(storeID, ownerKey, productID string) (*models.CartItem, error) {
	args := m.Called(storeID, ownerKey, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CartItem), args.Error(1)
}

func (m *MockCartRepository) Save(item *models.CartItem) error {
	return m.Called(item).Error(0)
}

func (m *MockCartRepository) Delete(storeID, ownerKey, id string) error {
	return m.Called(storeID, ownerKey, id).Error(0)
}

func (m *MockCartRepository) Clear(storeID, ownerKey string) error {
	return m.Called(storeID, ownerKey).Error(0)
}

func (m *MockCartRepository) Count(storeID, ownerKey string) (int, error) {
	args := m.Called(storeID, ownerKey)
	return args.Int(0), args.Error(1)
}

// MockWishlistRepository is a mock implementation of repositories.WishlistRepository
type MockWishlistRepository struct {
	mock.Mock
}

func (m *MockWishlistRepository) Find(storeID, customerID, productID string) (*models.WishlistItem, error) {
	args := m.Called(storeID, customerID, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WishlistItem), args.Error(1)
}

func (m *MockWishlistRepository) Create(item *models.WishlistItem) error {
	return m.Called(item).Error(0)
}

func (m *MockWishlistRepository) Delete(storeID, customerID, productID string) error {
	return m.Called(storeID, customerID, productID).Error(0)
}

func (m *MockWishlistRepository) List(storeID, customerID string) ([]models.WishlistItem, error) {
	args := m.Called(storeID, customerID)
	return args.Get(0).([]models.WishlistItem), args.Error(1)
}

func (m *MockWishlistRepository) Count(storeID, customerID string) (int, error) {
	args := m.Called(storeID, customerID)
	return args.Int(0), args.Error(1)
}

// MockOrderRepository is a mock implementation of repositories.OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Place(order *models.Order, cartOwnerKey string) error {
	return m.Called(order, cartOwnerKey).Error(0)
}

func (m *MockOrderRepository) GetByID(storeID, id string) (*models.Order, error) {
	args := m.Called(storeID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderRepository) List(storeID string, filter repositories.OrderFilter) ([]models.Order, error) {
	args := m.Called(storeID, filter)
	return args.Get(0).([]models.Order), args.Error(1)
}

func (m *MockOrderRepository) UpdateStatus(storeID, id, status string) error {
	return m.Called(storeID, id, status).Error(0)
}

func (m *MockOrderRepository) UpdatePayment(storeID, id, paymentStatus, status, ref string) error {
	return m.Called(storeID, id, paymentStatus, status, ref).Error(0)
}

// MockShippingRepository is a mock implementation of repositories.ShippingRepository
type MockShippingRepository struct {
	mock.Mock
}

func (m *MockShippingRepository) List(storeID string, activeOnly bool) ([]models.ShippingMethod, error) {
	args := m.Called(storeID, activeOnly)
	return args.Get(0).([]models.ShippingMethod), args.Error(1)
}

func (m *MockShippingRepository) GetByID(storeID, id string) (*models.ShippingMethod, error) {
	args := m.Called(storeID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ShippingMethod), args.Error(1)
}

func (m *MockShippingRepository) Create(method *models.ShippingMethod) error {
	return m.Called(method).Error(0)
}

func (m *MockShippingRepository) Update(method *models.ShippingMethod) error {
	return m.Called(method).Error(0)
}

func (m *MockShippingRepository) Delete(storeID, id string) error {
	return m.Called(storeID, id).Error(0)
}

// MockPublisher records published events.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, evt events.Event) error {
	return m.Called(ctx, evt).Error(0)
}

// MockGateway is a mock payment.Gateway.
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) CreateSession(ctx context.Context, s payment.Session) (payment.SessionResult, error) {
	args := m.Called(ctx, s)
	return args.Get(0).(payment.SessionResult), args.Error(1)
}

func (m *MockGateway) Verify(ctx context.Context, orderRef string) (payment.Status, error) {
	args := m.Called(ctx, orderRef)
	return args.Get(0).(payment.Status), args.Error(1)
}

func eventOfType(t string) any {
	return mock.MatchedBy(func(e events.Event) bool { return e.Type == t })
}
