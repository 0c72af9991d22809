package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Adham-ELshahed/Memar/internal/models"
)

// OrganizationFilters are the optional predicates for listing organizations.
// Absent fields impose no constraint; Search matches legal name, trade name
// and description case-insensitively.
type OrganizationFilters struct {
	Status string
	Search string
	Limit  int
	Offset int
}

// OrganizationInput is the caller-supplied shape for create/update. Server
// managed fields (status, rating, review count) are not part of it.
type OrganizationInput struct {
	LegalName              string   `json:"legalName" binding:"required"`
	TradeName              string   `json:"tradeName"`
	Description            string   `json:"description"`
	LogoURL                string   `json:"logoUrl"`
	CommercialRegistration string   `json:"commercialRegistration"`
	TaxNumber              string   `json:"taxNumber"`
	Website                string   `json:"website"`
	Phone                  string   `json:"phone"`
	Email                  string   `json:"email"`
	Address                string   `json:"address"`
	City                   string   `json:"city"`
	Categories             []string `json:"categories"`
}

// IOrganizationService defines the interface for vendor profile operations.
type IOrganizationService interface {
	List(ctx context.Context, filters OrganizationFilters) (*Page[models.Organization], error)
	FindByID(ctx context.Context, orgID string) (*models.Organization, error)
	FindByUserID(ctx context.Context, userID string) (*models.Organization, error)
	Create(ctx context.Context, userID string, input *OrganizationInput) (*models.Organization, error)
	Update(ctx context.Context, orgID, userID string, updates map[string]interface{}) (*models.Organization, error)
	UpdateStatus(ctx context.Context, orgID string, next models.OrganizationStatus) (*models.Organization, error)
	SetRating(ctx context.Context, orgID string, rating *float64, reviewCount int) error
}

const organizationsCollection = "organizations"

// organizationService implements IOrganizationService.
type organizationService struct {
	db          *mongo.Database
	userService IUserService
}

// NewOrganizationService creates a new OrganizationService.
func NewOrganizationService(db *mongo.Database, userService IUserService) IOrganizationService {
	return &organizationService{db: db, userService: userService}
}

// List returns organizations matching the filters, ordered by rating
// descending, with the total count for the same filter.
func (s *organizationService) List(ctx context.Context, filters OrganizationFilters) (*Page[models.Organization], error) {
	collection := s.db.Collection(organizationsCollection)

	filter := bson.M{}
	if filters.Status != "" && filters.Status != "all" {
		filter["status"] = filters.Status
	}
	if filters.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(filters.Search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"legal_name": pattern},
			bson.M{"trade_name": pattern},
			bson.M{"description": pattern},
		}
	}

	total, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count organizations: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "rating", Value: -1}, {Key: "created_at", Value: -1}}).
		SetLimit(int64(filters.Limit)).
		SetSkip(int64(filters.Offset))

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query organizations: %w", err)
	}
	defer cursor.Close(ctx)

	items := []models.Organization{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("failed to decode organizations: %w", err)
	}

	return &Page[models.Organization]{Items: items, Total: total, Limit: filters.Limit, Offset: filters.Offset}, nil
}

// FindByID finds an organization by ID.
func (s *organizationService) FindByID(ctx context.Context, orgID string) (*models.Organization, error) {
	var org models.Organization
	err := s.db.Collection(organizationsCollection).FindOne(ctx, bson.M{"_id": orgID}).Decode(&org)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error finding organization %s: %w", orgID, err)
	}
	return &org, nil
}

// FindByUserID returns the organization owned by the given user, or
// ErrNotFound when the user has none.
func (s *organizationService) FindByUserID(ctx context.Context, userID string) (*models.Organization, error) {
	var org models.Organization
	err := s.db.Collection(organizationsCollection).FindOne(ctx, bson.M{"user_id": userID}).Decode(&org)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error finding organization for user %s: %w", userID, err)
	}
	return &org, nil
}

// Create registers a new vendor organization in the pending state and flags
// the owner as a vendor. Admin review moves it out of pending.
func (s *organizationService) Create(ctx context.Context, userID string, input *OrganizationInput) (*models.Organization, error) {
	now := time.Now().UTC()
	org := &models.Organization{
		ID:                     uuid.NewString(),
		UserID:                 userID,
		LegalName:              input.LegalName,
		TradeName:              input.TradeName,
		Description:            input.Description,
		LogoURL:                input.LogoURL,
		CommercialRegistration: input.CommercialRegistration,
		TaxNumber:              input.TaxNumber,
		Website:                input.Website,
		Phone:                  input.Phone,
		Email:                  input.Email,
		Address:                input.Address,
		City:                   input.City,
		Status:                 models.OrgStatusPending,
		ReviewCount:            0,
		Categories:             input.Categories,
		CreatedAt:              now,
		UpdatedAt:              now,
	}

	if _, err := s.db.Collection(organizationsCollection).InsertOne(ctx, org); err != nil {
		return nil, fmt.Errorf("failed to insert organization for user %s: %w", userID, err)
	}

	if err := s.userService.SetRole(ctx, userID, models.RoleVendor); err != nil {
		// The org exists either way; role elevation is retried on next login.
		log.Printf("Warning: failed to mark user %s as vendor: %v", userID, err)
	}

	return org, nil
}

// Update applies a partial update to an organization owned by the given user.
// Status and the denormalized rating fields cannot be changed here.
func (s *organizationService) Update(ctx context.Context, orgID, userID string, updates map[string]interface{}) (*models.Organization, error) {
	allowed := bson.M{}
	for key, value := range updates {
		switch key {
		case "legal_name", "trade_name", "description", "logo_url", "commercial_registration",
			"tax_number", "website", "phone", "email", "address", "city", "categories":
			allowed[key] = value
		default:
			return nil, fmt.Errorf("field '%s' cannot be updated via Update", key)
		}
	}
	if len(allowed) == 0 {
		return nil, fmt.Errorf("no valid fields provided for update")
	}
	allowed["updated_at"] = time.Now().UTC()

	filter := bson.M{"_id": orgID, "user_id": userID}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.Organization
	err := s.db.Collection(organizationsCollection).
		FindOneAndUpdate(ctx, filter, bson.M{"$set": allowed}, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// Distinguish missing from not-owned for the handler.
			if _, findErr := s.FindByID(ctx, orgID); findErr == nil {
				return nil, ErrForbidden
			}
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update organization %s: %w", orgID, err)
	}
	return &updated, nil
}

// UpdateStatus performs an admin approval-state transition, guarded by the
// organization state machine.
func (s *organizationService) UpdateStatus(ctx context.Context, orgID string, next models.OrganizationStatus) (*models.Organization, error) {
	if !next.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, next)
	}

	org, err := s.FindByID(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if !org.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, org.Status, next)
	}

	// Guard against a concurrent transition by matching the status we read.
	filter := bson.M{"_id": orgID, "status": org.Status}
	update := bson.M{"$set": bson.M{"status": next, "updated_at": time.Now().UTC()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.Organization
	err = s.db.Collection(organizationsCollection).FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: organization %s changed state concurrently", ErrConflict, orgID)
		}
		return nil, fmt.Errorf("failed to update status of organization %s: %w", orgID, err)
	}
	return &updated, nil
}

// SetRating writes the denormalized rating fields. Called by the rating
// recalculation task, not by request handlers.
func (s *organizationService) SetRating(ctx context.Context, orgID string, rating *float64, reviewCount int) error {
	set := bson.M{"review_count": reviewCount, "updated_at": time.Now().UTC()}
	if rating != nil {
		set["rating"] = *rating
	}
	result, err := s.db.Collection(organizationsCollection).UpdateByID(ctx, orgID, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to set rating for organization %s: %w", orgID, err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
