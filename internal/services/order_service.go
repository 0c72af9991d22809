package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Adham-ELshahed/Memar/internal/db"
	"github.com/Adham-ELshahed/Memar/internal/models"
)

// OrderFilters are the optional predicates for listing orders. Handlers scope
// UserID or OrganizationID to the caller before invoking List.
type OrderFilters struct {
	UserID         string
	OrganizationID string
	Status         string
	Limit          int
	Offset         int
}

// OrderInput is the buyer-supplied shape for placing an order. OrderNumber
// and status are server-managed.
type OrderInput struct {
	OrganizationID  string   `json:"organizationId" binding:"required"`
	RfqResponseID   string   `json:"rfqResponseId"`
	TotalAmount     *float64 `json:"totalAmount"`
	Currency        string   `json:"currency"`
	ShippingAddress string   `json:"shippingAddress"`
	BillingAddress  string   `json:"billingAddress"`
	Notes           string   `json:"notes"`
	PaymentMethod   string   `json:"paymentMethod"`
}

// OrderItemInput is a line to add to an order. Unit price defaults to the
// product's current price and is snapshotted into the item.
type OrderItemInput struct {
	ProductID      string                 `json:"productId" binding:"required"`
	Quantity       int                    `json:"quantity" binding:"required"`
	UnitPrice      *float64               `json:"unitPrice"`
	Specifications map[string]interface{} `json:"specifications"`
}

// IOrderService defines the interface for order operations.
type IOrderService interface {
	List(ctx context.Context, filters OrderFilters) (*Page[models.Order], error)
	FindByID(ctx context.Context, orderID string) (*models.Order, error)
	Create(ctx context.Context, userID string, input *OrderInput) (*models.Order, error)
	UpdateStatus(ctx context.Context, orderID string, next models.OrderStatus) (*models.Order, error)
	SetPaymentReference(ctx context.Context, orderID, paymentRef string) error
	CreateItem(ctx context.Context, orderID string, input *OrderItemInput) (*models.OrderItem, error)
	ListItems(ctx context.Context, orderID string) ([]models.OrderItem, error)
}

const (
	ordersCollection     = "orders"
	orderItemsCollection = "order_items"
)

const orderNumberAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

type orderService struct {
	db              *mongo.Database
	productService  IProductService
	rfqService      IRfqService
	defaultCurrency string
}

// NewOrderService creates a new OrderService.
func NewOrderService(database *mongo.Database, productService IProductService, rfqService IRfqService, defaultCurrency string) IOrderService {
	return &orderService{
		db:              database,
		productService:  productService,
		rfqService:      rfqService,
		defaultCurrency: defaultCurrency,
	}
}

// List returns orders matching the filters, newest first.
func (s *orderService) List(ctx context.Context, filters OrderFilters) (*Page[models.Order], error) {
	collection := s.db.Collection(ordersCollection)

	filter := bson.M{}
	if filters.UserID != "" {
		filter["user_id"] = filters.UserID
	}
	if filters.OrganizationID != "" {
		filter["organization_id"] = filters.OrganizationID
	}
	if filters.Status != "" {
		filter["status"] = filters.Status
	}

	total, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(filters.Limit)).
		SetSkip(int64(filters.Offset))

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer cursor.Close(ctx)

	items := []models.Order{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("failed to decode orders: %w", err)
	}

	return &Page[models.Order]{Items: items, Total: total, Limit: filters.Limit, Offset: filters.Offset}, nil
}

// FindByID finds an order by ID.
func (s *orderService) FindByID(ctx context.Context, orderID string) (*models.Order, error) {
	var order models.Order
	err := s.db.Collection(ordersCollection).FindOne(ctx, bson.M{"_id": orderID}).Decode(&order)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error finding order %s: %w", orderID, err)
	}
	return &order, nil
}

// Create places a pending order for the given buyer. When the order
// originates from an RFQ response the response must be accepted and must
// belong to the fulfilling organization.
func (s *orderService) Create(ctx context.Context, userID string, input *OrderInput) (*models.Order, error) {
	totalAmount := input.TotalAmount
	currency := input.Currency
	if currency == "" {
		currency = s.defaultCurrency
	}

	if input.RfqResponseID != "" {
		response, err := s.rfqService.FindResponseByID(ctx, input.RfqResponseID)
		if err != nil {
			return nil, err
		}
		if response.IsAccepted == nil || !*response.IsAccepted {
			return nil, fmt.Errorf("%w: response %s is not accepted", ErrConflict, input.RfqResponseID)
		}
		if response.OrganizationID != input.OrganizationID {
			return nil, fmt.Errorf("%w: response %s belongs to a different organization", ErrConflict, input.RfqResponseID)
		}
		if totalAmount == nil {
			totalAmount = response.Price
		}
		if input.Currency == "" {
			currency = response.Currency
		}
	}

	now := time.Now().UTC()
	order := &models.Order{
		ID:              uuid.NewString(),
		UserID:          userID,
		OrganizationID:  input.OrganizationID,
		RfqResponseID:   input.RfqResponseID,
		TotalAmount:     totalAmount,
		Currency:        currency,
		Status:          models.OrderStatusPending,
		ShippingAddress: input.ShippingAddress,
		BillingAddress:  input.BillingAddress,
		Notes:           input.Notes,
		PaymentMethod:   input.PaymentMethod,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	// The order number carries a millisecond timestamp plus a random suffix.
	// A unique index backs it; on collision Try regenerates and re-inserts.
	err := db.Try(func() error {
		number, genErr := generateOrderNumber()
		if genErr != nil {
			return genErr
		}
		order.OrderNumber = number
		_, insErr := s.db.Collection(ordersCollection).InsertOne(ctx, order)
		return insErr
	})
	if err != nil {
		return nil, fmt.Errorf("failed to insert order for user %s: %w", userID, err)
	}
	return order, nil
}

// UpdateStatus advances an order through the fulfilment state machine.
func (s *orderService) UpdateStatus(ctx context.Context, orderID string, next models.OrderStatus) (*models.Order, error) {
	if !next.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, next)
	}

	order, err := s.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, next)
	}

	filter := bson.M{"_id": orderID, "status": order.Status}
	update := bson.M{"$set": bson.M{"status": next, "updated_at": time.Now().UTC()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.Order
	err = s.db.Collection(ordersCollection).FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: order %s changed state concurrently", ErrConflict, orderID)
		}
		return nil, fmt.Errorf("failed to update status of order %s: %w", orderID, err)
	}
	return &updated, nil
}

// SetPaymentReference stores the payment processor's opaque reference on the
// order after a payment intent is created.
func (s *orderService) SetPaymentReference(ctx context.Context, orderID, paymentRef string) error {
	result, err := s.db.Collection(ordersCollection).UpdateByID(ctx, orderID, bson.M{
		"$set": bson.M{"payment_reference": paymentRef, "updated_at": time.Now().UTC()},
	})
	if err != nil {
		return fmt.Errorf("failed to set payment reference on order %s: %w", orderID, err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateItem adds a line to a pending order, snapshotting the product's
// current price so later catalog edits cannot change it.
func (s *orderService) CreateItem(ctx context.Context, orderID string, input *OrderItemInput) (*models.OrderItem, error) {
	order, err := s.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != models.OrderStatusPending {
		return nil, fmt.Errorf("%w: order %s is %s, items can only be added while pending", ErrConflict, orderID, order.Status)
	}
	if input.Quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive")
	}

	product, err := s.productService.FindByID(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}
	if product.OrganizationID != order.OrganizationID {
		return nil, fmt.Errorf("%w: product %s is sold by a different organization", ErrConflict, input.ProductID)
	}

	unitPrice := input.UnitPrice
	if unitPrice == nil {
		unitPrice = product.Price
	}
	var totalPrice *float64
	if unitPrice != nil {
		t := *unitPrice * float64(input.Quantity)
		totalPrice = &t
	}

	item := &models.OrderItem{
		ID:             uuid.NewString(),
		OrderID:        orderID,
		ProductID:      input.ProductID,
		Quantity:       input.Quantity,
		UnitPrice:      unitPrice,
		TotalPrice:     totalPrice,
		Specifications: input.Specifications,
	}

	if _, err := s.db.Collection(orderItemsCollection).InsertOne(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to insert item for order %s: %w", orderID, err)
	}
	return item, nil
}

// ListItems returns the lines of an order.
func (s *orderService) ListItems(ctx context.Context, orderID string) ([]models.OrderItem, error) {
	cursor, err := s.db.Collection(orderItemsCollection).Find(ctx, bson.M{"order_id": orderID})
	if err != nil {
		return nil, fmt.Errorf("failed to query items for order %s: %w", orderID, err)
	}
	defer cursor.Close(ctx)

	items := []models.OrderItem{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("failed to decode items for order %s: %w", orderID, err)
	}
	return items, nil
}

// generateOrderNumber produces "ORD-<unix millis>-<5 random uppercase
// alphanumerics>". Uniqueness is enforced by an index, not by this function.
func generateOrderNumber() (string, error) {
	buf := make([]byte, 5)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes for order number: %w", err)
	}
	suffix := make([]byte, 5)
	for i, b := range buf {
		suffix[i] = orderNumberAlphabet[int(b)%len(orderNumberAlphabet)]
	}
	return fmt.Sprintf("ORD-%d-%s", time.Now().UnixMilli(), suffix), nil
}
