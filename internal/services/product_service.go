package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Adham-ELshahed/Memar/internal/models"
)

// ProductFilters are the optional predicates for listing products. IsActive
// defaults to true at the handler so storefront listings hide retired items.
type ProductFilters struct {
	OrganizationID string
	CategoryID     string
	Search         string
	IsActive       *bool
	Limit          int
	Offset         int
}

// ProductInput is the vendor-supplied shape for creating a product.
type ProductInput struct {
	CategoryID       string                 `json:"categoryId" binding:"required"`
	Name             string                 `json:"name" binding:"required"`
	NameAr           string                 `json:"nameAr"`
	Description      string                 `json:"description"`
	DescriptionAr    string                 `json:"descriptionAr"`
	SKU              string                 `json:"sku"`
	Price            *float64               `json:"price"`
	Currency         string                 `json:"currency"`
	Unit             string                 `json:"unit"`
	Images           []string               `json:"images"`
	Specifications   map[string]interface{} `json:"specifications"`
	StockQuantity    *int                   `json:"stockQuantity"`
	MinOrderQuantity int                    `json:"minOrderQuantity"`
}

// IProductService defines the interface for catalog operations.
type IProductService interface {
	List(ctx context.Context, filters ProductFilters) (*Page[models.Product], error)
	FindByID(ctx context.Context, productID string) (*models.Product, error)
	Create(ctx context.Context, organizationID string, input *ProductInput) (*models.Product, error)
	Update(ctx context.Context, productID, organizationID string, updates map[string]interface{}) (*models.Product, error)
	SetRating(ctx context.Context, productID string, rating *float64, reviewCount int) error
}

const productsCollection = "products"

type productService struct {
	db              *mongo.Database
	categoryService ICategoryService
	defaultCurrency string
}

// NewProductService creates a new ProductService.
func NewProductService(db *mongo.Database, categoryService ICategoryService, defaultCurrency string) IProductService {
	return &productService{db: db, categoryService: categoryService, defaultCurrency: defaultCurrency}
}

// List returns products matching the filters, best rated first, newest
// breaking ties.
func (s *productService) List(ctx context.Context, filters ProductFilters) (*Page[models.Product], error) {
	collection := s.db.Collection(productsCollection)

	filter := bson.M{}
	if filters.OrganizationID != "" {
		filter["organization_id"] = filters.OrganizationID
	}
	if filters.CategoryID != "" {
		filter["category_id"] = filters.CategoryID
	}
	if filters.IsActive != nil {
		filter["is_active"] = *filters.IsActive
	}
	if filters.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(filters.Search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"name": pattern},
			bson.M{"name_ar": pattern},
			bson.M{"description": pattern},
			bson.M{"sku": pattern},
		}
	}

	total, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "rating", Value: -1}, {Key: "created_at", Value: -1}}).
		SetLimit(int64(filters.Limit)).
		SetSkip(int64(filters.Offset))

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer cursor.Close(ctx)

	items := []models.Product{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}

	return &Page[models.Product]{Items: items, Total: total, Limit: filters.Limit, Offset: filters.Offset}, nil
}

// FindByID finds a product by ID.
func (s *productService) FindByID(ctx context.Context, productID string) (*models.Product, error) {
	var product models.Product
	err := s.db.Collection(productsCollection).FindOne(ctx, bson.M{"_id": productID}).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error finding product %s: %w", productID, err)
	}
	return &product, nil
}

// Create inserts a new active product under the vendor's organization.
// A nil price means "contact for price".
func (s *productService) Create(ctx context.Context, organizationID string, input *ProductInput) (*models.Product, error) {
	if _, err := s.categoryService.FindByID(ctx, input.CategoryID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("category %s does not exist", input.CategoryID)
		}
		return nil, err
	}

	currency := input.Currency
	if currency == "" {
		currency = s.defaultCurrency
	}
	minOrder := input.MinOrderQuantity
	if minOrder <= 0 {
		minOrder = 1
	}

	now := time.Now().UTC()
	product := &models.Product{
		ID:               uuid.NewString(),
		OrganizationID:   organizationID,
		CategoryID:       input.CategoryID,
		Name:             input.Name,
		NameAr:           input.NameAr,
		Description:      input.Description,
		DescriptionAr:    input.DescriptionAr,
		SKU:              input.SKU,
		Price:            input.Price,
		Currency:         currency,
		Unit:             input.Unit,
		Images:           input.Images,
		Specifications:   input.Specifications,
		StockQuantity:    input.StockQuantity,
		MinOrderQuantity: minOrder,
		IsActive:         true,
		ReviewCount:      0,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if _, err := s.db.Collection(productsCollection).InsertOne(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to insert product for organization %s: %w", organizationID, err)
	}
	return product, nil
}

// Update applies a partial update to a product owned by the given
// organization. Rating fields are managed by the review recalculation task.
func (s *productService) Update(ctx context.Context, productID, organizationID string, updates map[string]interface{}) (*models.Product, error) {
	allowed := bson.M{}
	for key, value := range updates {
		switch key {
		case "category_id", "name", "name_ar", "description", "description_ar", "sku",
			"price", "currency", "unit", "images", "specifications",
			"stock_quantity", "min_order_quantity", "is_active":
			allowed[key] = value
		default:
			return nil, fmt.Errorf("field '%s' cannot be updated via Update", key)
		}
	}
	if len(allowed) == 0 {
		return nil, fmt.Errorf("no valid fields provided for update")
	}
	allowed["updated_at"] = time.Now().UTC()

	filter := bson.M{"_id": productID, "organization_id": organizationID}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.Product
	err := s.db.Collection(productsCollection).
		FindOneAndUpdate(ctx, filter, bson.M{"$set": allowed}, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			if _, findErr := s.FindByID(ctx, productID); findErr == nil {
				return nil, ErrForbidden
			}
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update product %s: %w", productID, err)
	}
	return &updated, nil
}

// SetRating writes the denormalized rating fields. Called by the rating
// recalculation task.
func (s *productService) SetRating(ctx context.Context, productID string, rating *float64, reviewCount int) error {
	set := bson.M{"review_count": reviewCount, "updated_at": time.Now().UTC()}
	if rating != nil {
		set["rating"] = *rating
	}
	result, err := s.db.Collection(productsCollection).UpdateByID(ctx, productID, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to set rating for product %s: %w", productID, err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
