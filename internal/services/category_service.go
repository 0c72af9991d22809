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

// CategoryInput is the admin-supplied shape for creating a category.
type CategoryInput struct {
	Name          string `json:"name" binding:"required"`
	NameAr        string `json:"nameAr"`
	Description   string `json:"description"`
	DescriptionAr string `json:"descriptionAr"`
	IconURL       string `json:"iconUrl"`
	ParentID      string `json:"parentId"`
	SortOrder     int    `json:"sortOrder"`
}

// ICategoryService defines the interface for the product taxonomy.
type ICategoryService interface {
	List(ctx context.Context, parentID string) ([]models.Category, error)
	FindByID(ctx context.Context, categoryID string) (*models.Category, error)
	Create(ctx context.Context, input *CategoryInput) (*models.Category, error)
}

const categoriesCollection = "categories"

type categoryService struct {
	db *mongo.Database
}

// NewCategoryService creates a new CategoryService.
func NewCategoryService(db *mongo.Database) ICategoryService {
	return &categoryService{db: db}
}

// List returns active categories under the given parent, or the root
// categories when parentID is empty. Ordered by sort order then name.
func (s *categoryService) List(ctx context.Context, parentID string) ([]models.Category, error) {
	filter := bson.M{"is_active": true}
	if parentID == "" {
		filter["parent_id"] = nil
	} else {
		filter["parent_id"] = parentID
	}

	opts := options.Find().SetSort(bson.D{{Key: "sort_order", Value: 1}, {Key: "name", Value: 1}})
	cursor, err := s.db.Collection(categoriesCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer cursor.Close(ctx)

	categories := []models.Category{}
	if err := cursor.All(ctx, &categories); err != nil {
		return nil, fmt.Errorf("failed to decode categories: %w", err)
	}
	return categories, nil
}

// FindByID finds a category by ID.
func (s *categoryService) FindByID(ctx context.Context, categoryID string) (*models.Category, error) {
	var category models.Category
	err := s.db.Collection(categoriesCollection).FindOne(ctx, bson.M{"_id": categoryID}).Decode(&category)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error finding category %s: %w", categoryID, err)
	}
	return &category, nil
}

// Create inserts a new active category. Admin only; the handler enforces that.
func (s *categoryService) Create(ctx context.Context, input *CategoryInput) (*models.Category, error) {
	if input.ParentID != "" {
		if _, err := s.FindByID(ctx, input.ParentID); err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil, fmt.Errorf("parent category %s does not exist", input.ParentID)
			}
			return nil, err
		}
	}

	now := time.Now().UTC()
	category := &models.Category{
		ID:            uuid.NewString(),
		Name:          input.Name,
		NameAr:        input.NameAr,
		Description:   input.Description,
		DescriptionAr: input.DescriptionAr,
		IconURL:       input.IconURL,
		IsActive:      true,
		SortOrder:     input.SortOrder,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if input.ParentID != "" {
		category.ParentID = &input.ParentID
	}

	if _, err := s.db.Collection(categoriesCollection).InsertOne(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to insert category: %w", err)
	}
	return category, nil
}
