package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Adham-ELshahed/Memar/internal/models"
)

// RfqFilters are the optional predicates for listing RFQs.
type RfqFilters struct {
	UserID     string
	Status     string
	CategoryID string
	Limit      int
	Offset     int
}

// RfqInput is the buyer-supplied shape for creating an RFQ. New RFQs always
// start as drafts.
type RfqInput struct {
	Title        string                 `json:"title" binding:"required"`
	Description  string                 `json:"description" binding:"required"`
	CategoryID   string                 `json:"categoryId"`
	ProjectType  string                 `json:"projectType"`
	BudgetMin    *float64               `json:"budgetMin"`
	BudgetMax    *float64               `json:"budgetMax"`
	Currency     string                 `json:"currency"`
	Deadline     *time.Time             `json:"deadline"`
	Attachments  []string               `json:"attachments"`
	Requirements map[string]interface{} `json:"requirements"`
	Location     string                 `json:"location"`
}

// RfqResponseInput is the vendor-supplied shape for quoting against an RFQ.
type RfqResponseInput struct {
	Price        *float64   `json:"price" binding:"required"`
	Currency     string     `json:"currency"`
	DeliveryTime string     `json:"deliveryTime"`
	Description  string     `json:"description"`
	Attachments  []string   `json:"attachments"`
	ValidUntil   *time.Time `json:"validUntil"`
}

// IRfqService defines the interface for the RFQ and quote lifecycle.
type IRfqService interface {
	List(ctx context.Context, filters RfqFilters) (*Page[models.Rfq], error)
	FindByID(ctx context.Context, rfqID string) (*models.Rfq, error)
	Create(ctx context.Context, userID string, input *RfqInput) (*models.Rfq, error)
	Publish(ctx context.Context, rfqID, userID string) (*models.Rfq, error)
	Cancel(ctx context.Context, rfqID, userID string) (*models.Rfq, error)
	ListResponses(ctx context.Context, rfqID string) ([]models.RfqResponse, error)
	FindResponseByID(ctx context.Context, responseID string) (*models.RfqResponse, error)
	CreateResponse(ctx context.Context, rfqID, organizationID string, input *RfqResponseInput) (*models.RfqResponse, error)
	AcceptResponse(ctx context.Context, responseID, userID string) (*models.RfqResponse, error)
}

const (
	rfqsCollection         = "rfqs"
	rfqResponsesCollection = "rfq_responses"
)

type rfqService struct {
	db              *mongo.Database
	defaultCurrency string
}

// NewRfqService creates a new RfqService.
func NewRfqService(db *mongo.Database, defaultCurrency string) IRfqService {
	return &rfqService{db: db, defaultCurrency: defaultCurrency}
}

// List returns RFQs matching the filters, newest first.
func (s *rfqService) List(ctx context.Context, filters RfqFilters) (*Page[models.Rfq], error) {
	collection := s.db.Collection(rfqsCollection)

	filter := bson.M{}
	if filters.UserID != "" {
		filter["user_id"] = filters.UserID
	}
	if filters.Status != "" {
		filter["status"] = filters.Status
	}
	if filters.CategoryID != "" {
		filter["category_id"] = filters.CategoryID
	}

	total, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count rfqs: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(filters.Limit)).
		SetSkip(int64(filters.Offset))

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query rfqs: %w", err)
	}
	defer cursor.Close(ctx)

	items := []models.Rfq{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("failed to decode rfqs: %w", err)
	}

	return &Page[models.Rfq]{Items: items, Total: total, Limit: filters.Limit, Offset: filters.Offset}, nil
}

// FindByID finds an RFQ by ID.
func (s *rfqService) FindByID(ctx context.Context, rfqID string) (*models.Rfq, error) {
	var rfq models.Rfq
	err := s.db.Collection(rfqsCollection).FindOne(ctx, bson.M{"_id": rfqID}).Decode(&rfq)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error finding rfq %s: %w", rfqID, err)
	}
	return &rfq, nil
}

// Create inserts a new draft RFQ owned by the given user.
func (s *rfqService) Create(ctx context.Context, userID string, input *RfqInput) (*models.Rfq, error) {
	currency := input.Currency
	if currency == "" {
		currency = s.defaultCurrency
	}

	now := time.Now().UTC()
	rfq := &models.Rfq{
		ID:           uuid.NewString(),
		UserID:       userID,
		Title:        input.Title,
		Description:  input.Description,
		CategoryID:   input.CategoryID,
		ProjectType:  input.ProjectType,
		BudgetMin:    input.BudgetMin,
		BudgetMax:    input.BudgetMax,
		Currency:     currency,
		Deadline:     input.Deadline,
		Attachments:  input.Attachments,
		Status:       models.RfqStatusDraft,
		Requirements: input.Requirements,
		Location:     input.Location,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := s.db.Collection(rfqsCollection).InsertOne(ctx, rfq); err != nil {
		return nil, fmt.Errorf("failed to insert rfq for user %s: %w", userID, err)
	}
	return rfq, nil
}

// Publish moves an owner's draft RFQ to published, making it visible to
// vendors for quoting.
func (s *rfqService) Publish(ctx context.Context, rfqID, userID string) (*models.Rfq, error) {
	return s.transition(ctx, rfqID, userID, models.RfqStatusPublished)
}

// Cancel moves an owner's draft or published RFQ to cancelled.
func (s *rfqService) Cancel(ctx context.Context, rfqID, userID string) (*models.Rfq, error) {
	return s.transition(ctx, rfqID, userID, models.RfqStatusCancelled)
}

func (s *rfqService) transition(ctx context.Context, rfqID, userID string, next models.RfqStatus) (*models.Rfq, error) {
	rfq, err := s.FindByID(ctx, rfqID)
	if err != nil {
		return nil, err
	}
	if rfq.UserID != userID {
		return nil, ErrForbidden
	}
	if !rfq.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, rfq.Status, next)
	}

	filter := bson.M{"_id": rfqID, "status": rfq.Status}
	update := bson.M{"$set": bson.M{"status": next, "updated_at": time.Now().UTC()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.Rfq
	err = s.db.Collection(rfqsCollection).FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: rfq %s changed state concurrently", ErrConflict, rfqID)
		}
		return nil, fmt.Errorf("failed to transition rfq %s to %s: %w", rfqID, next, err)
	}
	return &updated, nil
}

// ListResponses returns all quotes for an RFQ, cheapest first.
func (s *rfqService) ListResponses(ctx context.Context, rfqID string) ([]models.RfqResponse, error) {
	opts := options.Find().SetSort(bson.D{{Key: "price", Value: 1}, {Key: "created_at", Value: 1}})
	cursor, err := s.db.Collection(rfqResponsesCollection).Find(ctx, bson.M{"rfq_id": rfqID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query responses for rfq %s: %w", rfqID, err)
	}
	defer cursor.Close(ctx)

	responses := []models.RfqResponse{}
	if err := cursor.All(ctx, &responses); err != nil {
		return nil, fmt.Errorf("failed to decode responses for rfq %s: %w", rfqID, err)
	}
	return responses, nil
}

// FindResponseByID finds an RFQ response by ID.
func (s *rfqService) FindResponseByID(ctx context.Context, responseID string) (*models.RfqResponse, error) {
	var response models.RfqResponse
	err := s.db.Collection(rfqResponsesCollection).FindOne(ctx, bson.M{"_id": responseID}).Decode(&response)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error finding rfq response %s: %w", responseID, err)
	}
	return &response, nil
}

// CreateResponse records a vendor quote against a published RFQ. Quoting
// against a draft, closed or cancelled RFQ is rejected, and an organization
// may quote each RFQ only once.
func (s *rfqService) CreateResponse(ctx context.Context, rfqID, organizationID string, input *RfqResponseInput) (*models.RfqResponse, error) {
	rfq, err := s.FindByID(ctx, rfqID)
	if err != nil {
		return nil, err
	}
	if rfq.Status != models.RfqStatusPublished {
		return nil, fmt.Errorf("%w: rfq %s is %s, only published rfqs accept responses", ErrConflict, rfqID, rfq.Status)
	}

	count, err := s.db.Collection(rfqResponsesCollection).
		CountDocuments(ctx, bson.M{"rfq_id": rfqID, "organization_id": organizationID})
	if err != nil {
		return nil, fmt.Errorf("failed to check existing responses for rfq %s: %w", rfqID, err)
	}
	if count > 0 {
		return nil, fmt.Errorf("%w: organization %s already responded to rfq %s", ErrConflict, organizationID, rfqID)
	}

	currency := input.Currency
	if currency == "" {
		currency = rfq.Currency
	}

	now := time.Now().UTC()
	response := &models.RfqResponse{
		ID:             uuid.NewString(),
		RfqID:          rfqID,
		OrganizationID: organizationID,
		Price:          input.Price,
		Currency:       currency,
		DeliveryTime:   input.DeliveryTime,
		Description:    input.Description,
		Attachments:    input.Attachments,
		ValidUntil:     input.ValidUntil,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if _, err := s.db.Collection(rfqResponsesCollection).InsertOne(ctx, response); err != nil {
		return nil, fmt.Errorf("failed to insert response for rfq %s: %w", rfqID, err)
	}
	return response, nil
}

// AcceptResponse marks one quote as the winner on behalf of the RFQ owner.
// All sibling quotes are rejected and the RFQ is closed, so at most one
// response per RFQ ever carries isAccepted=true.
func (s *rfqService) AcceptResponse(ctx context.Context, responseID, userID string) (*models.RfqResponse, error) {
	response, err := s.FindResponseByID(ctx, responseID)
	if err != nil {
		return nil, err
	}
	rfq, err := s.FindByID(ctx, response.RfqID)
	if err != nil {
		return nil, err
	}
	if rfq.UserID != userID {
		return nil, ErrForbidden
	}
	if rfq.Status != models.RfqStatusPublished {
		return nil, fmt.Errorf("%w: rfq %s is %s, acceptance requires a published rfq", ErrConflict, rfq.ID, rfq.Status)
	}

	accepted, err := s.db.Collection(rfqResponsesCollection).
		CountDocuments(ctx, bson.M{"rfq_id": rfq.ID, "is_accepted": true})
	if err != nil {
		return nil, fmt.Errorf("failed to check accepted responses for rfq %s: %w", rfq.ID, err)
	}
	if accepted > 0 {
		return nil, fmt.Errorf("%w: rfq %s already has an accepted response", ErrConflict, rfq.ID)
	}

	now := time.Now().UTC()

	// Win the race on the chosen response first; the sibling rejection and
	// the close below are then safe to apply.
	winFilter := bson.M{"_id": responseID, "is_accepted": bson.M{"$ne": true}}
	winUpdate := bson.M{"$set": bson.M{"is_accepted": true, "updated_at": now}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var winner models.RfqResponse
	err = s.db.Collection(rfqResponsesCollection).FindOneAndUpdate(ctx, winFilter, winUpdate, opts).Decode(&winner)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: response %s was accepted concurrently", ErrConflict, responseID)
		}
		return nil, fmt.Errorf("failed to accept response %s: %w", responseID, err)
	}

	_, err = s.db.Collection(rfqResponsesCollection).UpdateMany(ctx,
		bson.M{"rfq_id": rfq.ID, "_id": bson.M{"$ne": responseID}},
		bson.M{"$set": bson.M{"is_accepted": false, "updated_at": now}})
	if err != nil {
		return nil, fmt.Errorf("failed to reject sibling responses for rfq %s: %w", rfq.ID, err)
	}

	_, err = s.db.Collection(rfqsCollection).UpdateByID(ctx, rfq.ID,
		bson.M{"$set": bson.M{"status": models.RfqStatusClosed, "updated_at": now}})
	if err != nil {
		return nil, fmt.Errorf("failed to close rfq %s: %w", rfq.ID, err)
	}

	return &winner, nil
}
