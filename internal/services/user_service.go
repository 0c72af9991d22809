package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Adham-ELshahed/Memar/internal/auth"
	"github.com/Adham-ELshahed/Memar/internal/models"
)

// IUserService defines the interface for user operations.
type IUserService interface {
	UpsertFromClaims(ctx context.Context, claims *auth.Claims) (*models.User, error)
	FindByID(ctx context.Context, userID string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID string, updates map[string]interface{}) (*models.User, error)
	SetRole(ctx context.Context, userID string, role models.Role) error
}

const usersCollection = "users"

// userService implements IUserService.
type userService struct {
	db *mongo.Database
}

// NewUserService creates a new UserService.
func NewUserService(db *mongo.Database) IUserService {
	return &userService{db: db}
}

// UpsertFromClaims creates or refreshes the local user record from identity
// provider claims. Idempotent; called on every authenticated request that
// resolves the current user. The role claim never downgrades an existing
// admin (role is managed locally once elevated).
func (s *userService) UpsertFromClaims(ctx context.Context, claims *auth.Claims) (*models.User, error) {
	if claims.UserID == "" {
		return nil, fmt.Errorf("claims carry no user id")
	}
	collection := s.db.Collection(usersCollection)
	now := time.Now().UTC()

	set := bson.M{
		"updated_at": now,
	}
	if claims.Email != "" {
		set["email"] = claims.Email
	}
	if claims.FirstName != "" {
		set["first_name"] = claims.FirstName
	}
	if claims.LastName != "" {
		set["last_name"] = claims.LastName
	}
	if claims.ProfileImageURL != "" {
		set["profile_image_url"] = claims.ProfileImageURL
	}

	setOnInsert := bson.M{
		"role":               models.RoleBuyer,
		"preferred_language": "en",
		"created_at":         now,
	}
	if claims.Role.IsValid() {
		setOnInsert["role"] = claims.Role
	}
	if claims.Locale != "" {
		setOnInsert["preferred_language"] = claims.Locale
	}

	update := bson.M{"$set": set, "$setOnInsert": setOnInsert}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var user models.User
	err := collection.FindOneAndUpdate(ctx, bson.M{"_id": claims.UserID}, update, opts).Decode(&user)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert user %s: %w", claims.UserID, err)
	}
	return &user, nil
}

// FindByID finds a user by ID.
func (s *userService) FindByID(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	err := s.db.Collection(usersCollection).FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error finding user %s: %w", userID, err)
	}
	return &user, nil
}

// UpdateProfile updates the caller-editable profile fields.
func (s *userService) UpdateProfile(ctx context.Context, userID string, updates map[string]interface{}) (*models.User, error) {
	allowed := bson.M{}
	for key, value := range updates {
		switch key {
		case "phone", "preferred_language", "first_name", "last_name", "profile_image_url":
			allowed[key] = value
		default:
			return nil, fmt.Errorf("field '%s' cannot be updated via UpdateProfile", key)
		}
	}
	if len(allowed) == 0 {
		return nil, fmt.Errorf("no valid fields provided for update")
	}
	allowed["updated_at"] = time.Now().UTC()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var user models.User
	err := s.db.Collection(usersCollection).
		FindOneAndUpdate(ctx, bson.M{"_id": userID}, bson.M{"$set": allowed}, opts).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update user %s: %w", userID, err)
	}
	return &user, nil
}

// SetRole changes a user's role. Vendor role is set when the user's first
// organization is created; admin elevation is an operational action.
func (s *userService) SetRole(ctx context.Context, userID string, role models.Role) error {
	if !role.IsValid() {
		return fmt.Errorf("invalid role %q", role)
	}
	result, err := s.db.Collection(usersCollection).UpdateByID(ctx, userID, bson.M{
		"$set": bson.M{"role": role, "updated_at": time.Now().UTC()},
	})
	if err != nil {
		return fmt.Errorf("failed to set role for user %s: %w", userID, err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
