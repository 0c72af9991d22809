package handlers_test

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"

	"github.com/Adham-ELshahed/Memar/internal/api/middleware"
	"github.com/Adham-ELshahed/Memar/internal/config"
	"github.com/Adham-ELshahed/Memar/internal/models"
	"github.com/Adham-ELshahed/Memar/internal/services"
)

// --- Test helpers ---

func testConfig() *config.Config {
	return &config.Config{DefaultLimit: 20, MaxLimit: 100}
}

// asUser stands in for AuthMiddleware so handler tests can pick an identity
// without minting tokens.
func asUser(userID string, role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextKeyUserID, userID)
		c.Set(middleware.ContextKeyRole, role)
		c.Next()
	}
}

// --- Mocks ---

// MockOrganizationService
type MockOrganizationService struct {
	mock.Mock
}

func (m *MockOrganizationService) List(ctx context.Context, filters services.OrganizationFilters) (*services.Page[models.Organization], error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.Page[models.Organization]), args.Error(1)
}
func (m *MockOrganizationService) FindByID(ctx context.Context, orgID string) (*models.Organization, error) {
	args := m.Called(ctx, orgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Organization), args.Error(1)
}
func (m *MockOrganizationService) FindByUserID(ctx context.Context, userID string) (*models.Organization, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Organization), args.Error(1)
}
func (m *MockOrganizationService) Create(ctx context.Context, userID string, input *services.OrganizationInput) (*models.Organization, error) {
	args := m.Called(ctx, userID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Organization), args.Error(1)
}
func (m *MockOrganizationService) Update(ctx context.Context, orgID, userID string, updates map[string]interface{}) (*models.Organization, error) {
	args := m.Called(ctx, orgID, userID, updates)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Organization), args.Error(1)
}
func (m *MockOrganizationService) UpdateStatus(ctx context.Context, orgID string, next models.OrganizationStatus) (*models.Organization, error) {
	args := m.Called(ctx, orgID, next)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Organization), args.Error(1)
}
func (m *MockOrganizationService) SetRating(ctx context.Context, orgID string, rating *float64, reviewCount int) error {
	args := m.Called(ctx, orgID, rating, reviewCount)
	return args.Error(0)
}

// MockProductService
type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) List(ctx context.Context, filters services.ProductFilters) (*services.Page[models.Product], error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.Page[models.Product]), args.Error(1)
}
func (m *MockProductService) FindByID(ctx context.Context, productID string) (*models.Product, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}
func (m *MockProductService) Create(ctx context.Context, organizationID string, input *services.ProductInput) (*models.Product, error) {
	args := m.Called(ctx, organizationID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}
func (m *MockProductService) Update(ctx context.Context, productID, organizationID string, updates map[string]interface{}) (*models.Product, error) {
	args := m.Called(ctx, productID, organizationID, updates)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}
func (m *MockProductService) SetRating(ctx context.Context, productID string, rating *float64, reviewCount int) error {
	args := m.Called(ctx, productID, rating, reviewCount)
	return args.Error(0)
}

// MockOrderService
type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) List(ctx context.Context, filters services.OrderFilters) (*services.Page[models.Order], error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.Page[models.Order]), args.Error(1)
}
func (m *MockOrderService) FindByID(ctx context.Context, orderID string) (*models.Order, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}
func (m *MockOrderService) Create(ctx context.Context, userID string, input *services.OrderInput) (*models.Order, error) {
	args := m.Called(ctx, userID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}
func (m *MockOrderService) UpdateStatus(ctx context.Context, orderID string, next models.OrderStatus) (*models.Order, error) {
	args := m.Called(ctx, orderID, next)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}
func (m *MockOrderService) SetPaymentReference(ctx context.Context, orderID, paymentRef string) error {
	args := m.Called(ctx, orderID, paymentRef)
	return args.Error(0)
}
func (m *MockOrderService) CreateItem(ctx context.Context, orderID string, input *services.OrderItemInput) (*models.OrderItem, error) {
	args := m.Called(ctx, orderID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.OrderItem), args.Error(1)
}
func (m *MockOrderService) ListItems(ctx context.Context, orderID string) ([]models.OrderItem, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.OrderItem), args.Error(1)
}

// MockStatsService
type MockStatsService struct {
	mock.Mock
}

func (m *MockStatsService) GetAdminStats(ctx context.Context) (*services.AdminStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.AdminStats), args.Error(1)
}

// MockRfqService
type MockRfqService struct {
	mock.Mock
}

func (m *MockRfqService) List(ctx context.Context, filters services.RfqFilters) (*services.Page[models.Rfq], error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.Page[models.Rfq]), args.Error(1)
}
func (m *MockRfqService) FindByID(ctx context.Context, rfqID string) (*models.Rfq, error) {
	args := m.Called(ctx, rfqID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Rfq), args.Error(1)
}
func (m *MockRfqService) Create(ctx context.Context, userID string, input *services.RfqInput) (*models.Rfq, error) {
	args := m.Called(ctx, userID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Rfq), args.Error(1)
}
func (m *MockRfqService) Publish(ctx context.Context, rfqID, userID string) (*models.Rfq, error) {
	args := m.Called(ctx, rfqID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Rfq), args.Error(1)
}
func (m *MockRfqService) Cancel(ctx context.Context, rfqID, userID string) (*models.Rfq, error) {
	args := m.Called(ctx, rfqID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Rfq), args.Error(1)
}
func (m *MockRfqService) ListResponses(ctx context.Context, rfqID string) ([]models.RfqResponse, error) {
	args := m.Called(ctx, rfqID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.RfqResponse), args.Error(1)
}
func (m *MockRfqService) FindResponseByID(ctx context.Context, responseID string) (*models.RfqResponse, error) {
	args := m.Called(ctx, responseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RfqResponse), args.Error(1)
}
func (m *MockRfqService) CreateResponse(ctx context.Context, rfqID, organizationID string, input *services.RfqResponseInput) (*models.RfqResponse, error) {
	args := m.Called(ctx, rfqID, organizationID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RfqResponse), args.Error(1)
}
func (m *MockRfqService) AcceptResponse(ctx context.Context, responseID, userID string) (*models.RfqResponse, error) {
	args := m.Called(ctx, responseID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RfqResponse), args.Error(1)
}
