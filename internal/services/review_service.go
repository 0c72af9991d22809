package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Adham-ELshahed/Memar/internal/models"
)

// ReviewFilters are the optional predicates for listing reviews.
type ReviewFilters struct {
	OrganizationID string
	ProductID      string
	UserID         string
	Limit          int
	Offset         int
}

// ReviewInput is the caller-supplied shape for a new review. At least one of
// OrganizationID / ProductID must be set.
type ReviewInput struct {
	OrganizationID string `json:"organizationId"`
	ProductID      string `json:"productId"`
	OrderID        string `json:"orderId"`
	Rating         int    `json:"rating" binding:"required"`
	Title          string `json:"title"`
	Comment        string `json:"comment"`
}

// IReviewService defines the interface for reviews and rating aggregation.
type IReviewService interface {
	List(ctx context.Context, filters ReviewFilters) (*Page[models.Review], error)
	Create(ctx context.Context, userID string, input *ReviewInput) (*models.Review, error)
	RecalculateRatings(ctx context.Context, organizationID, productID string) error
}

const reviewsCollection = "reviews"

type reviewService struct {
	db           *mongo.Database
	orgService   IOrganizationService
	prodService  IProductService
	orderService IOrderService
	scheduler    ITaskScheduler
}

// NewReviewService creates a new ReviewService.
func NewReviewService(db *mongo.Database, orgService IOrganizationService, prodService IProductService, orderService IOrderService, scheduler ITaskScheduler) IReviewService {
	return &reviewService{
		db:           db,
		orgService:   orgService,
		prodService:  prodService,
		orderService: orderService,
		scheduler:    scheduler,
	}
}

// List returns reviews matching the filters, newest first.
func (s *reviewService) List(ctx context.Context, filters ReviewFilters) (*Page[models.Review], error) {
	collection := s.db.Collection(reviewsCollection)

	filter := bson.M{}
	if filters.OrganizationID != "" {
		filter["organization_id"] = filters.OrganizationID
	}
	if filters.ProductID != "" {
		filter["product_id"] = filters.ProductID
	}
	if filters.UserID != "" {
		filter["user_id"] = filters.UserID
	}

	total, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count reviews: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(filters.Limit)).
		SetSkip(int64(filters.Offset))

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query reviews: %w", err)
	}
	defer cursor.Close(ctx)

	items := []models.Review{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("failed to decode reviews: %w", err)
	}

	return &Page[models.Review]{Items: items, Total: total, Limit: filters.Limit, Offset: filters.Offset}, nil
}

// Create stores a review and schedules recalculation of the denormalized
// rating fields on the reviewed organization and/or product. The review is
// verified when it cites an order the reviewer actually placed.
func (s *reviewService) Create(ctx context.Context, userID string, input *ReviewInput) (*models.Review, error) {
	if input.OrganizationID == "" && input.ProductID == "" {
		return nil, fmt.Errorf("a review must target an organization or a product")
	}
	if input.Rating < 1 || input.Rating > 5 {
		return nil, fmt.Errorf("rating must be between 1 and 5")
	}

	if input.OrganizationID != "" {
		if _, err := s.orgService.FindByID(ctx, input.OrganizationID); err != nil {
			return nil, err
		}
	}
	if input.ProductID != "" {
		product, err := s.prodService.FindByID(ctx, input.ProductID)
		if err != nil {
			return nil, err
		}
		// A product review also counts toward its vendor when no explicit
		// organization target was given.
		if input.OrganizationID == "" {
			input.OrganizationID = product.OrganizationID
		}
	}

	isVerified := false
	if input.OrderID != "" {
		order, err := s.orderService.FindByID(ctx, input.OrderID)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return nil, err
		}
		if err == nil && order.UserID == userID {
			isVerified = true
		}
	}

	review := &models.Review{
		ID:             uuid.NewString(),
		UserID:         userID,
		OrganizationID: input.OrganizationID,
		ProductID:      input.ProductID,
		OrderID:        input.OrderID,
		Rating:         input.Rating,
		Title:          input.Title,
		Comment:        input.Comment,
		IsVerified:     isVerified,
		CreatedAt:      time.Now().UTC(),
	}

	if _, err := s.db.Collection(reviewsCollection).InsertOne(ctx, review); err != nil {
		return nil, fmt.Errorf("failed to insert review from user %s: %w", userID, err)
	}

	if err := s.scheduler.EnqueueRatingRecalc(review.OrganizationID, review.ProductID); err != nil {
		log.Printf("Warning: failed to enqueue rating recalc for review %s: %v", review.ID, err)
	}

	return review, nil
}

// RecalculateRatings recomputes the average rating and review count on the
// given targets from the reviews collection. Called by the background worker.
func (s *reviewService) RecalculateRatings(ctx context.Context, organizationID, productID string) error {
	if organizationID != "" {
		rating, count, err := s.aggregate(ctx, bson.M{"organization_id": organizationID})
		if err != nil {
			return err
		}
		if err := s.orgService.SetRating(ctx, organizationID, rating, count); err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
	}
	if productID != "" {
		rating, count, err := s.aggregate(ctx, bson.M{"product_id": productID})
		if err != nil {
			return err
		}
		if err := s.prodService.SetRating(ctx, productID, rating, count); err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
	}
	return nil
}

func (s *reviewService) aggregate(ctx context.Context, match bson.M) (*float64, int, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: match}},
		bson.D{{Key: "$group", Value: bson.M{
			"_id":    nil,
			"rating": bson.M{"$avg": "$rating"},
			"count":  bson.M{"$sum": 1},
		}}},
	}

	cursor, err := s.db.Collection(reviewsCollection).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to aggregate reviews: %w", err)
	}
	defer cursor.Close(ctx)

	var results []struct {
		Rating float64 `bson:"rating"`
		Count  int     `bson:"count"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return nil, 0, fmt.Errorf("failed to decode review aggregation: %w", err)
	}
	if len(results) == 0 {
		return nil, 0, nil
	}
	return &results[0].Rating, results[0].Count, nil
}
