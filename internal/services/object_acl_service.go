package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Adham-ELshahed/Memar/internal/models"
)

// IObjectACLService defines the interface for stored-object access policies.
type IObjectACLService interface {
	SetPolicy(ctx context.Context, objectKey, ownerID string, visibility models.ObjectVisibility) error
	CanRead(ctx context.Context, objectKey, userID string) (bool, error)
}

const objectACLsCollection = "object_acls"

type objectACLService struct {
	db *mongo.Database
}

// NewObjectACLService creates a new ObjectACLService.
func NewObjectACLService(db *mongo.Database) IObjectACLService {
	return &objectACLService{db: db}
}

// SetPolicy upserts the access policy for one object key.
func (s *objectACLService) SetPolicy(ctx context.Context, objectKey, ownerID string, visibility models.ObjectVisibility) error {
	if !visibility.IsValid() {
		return fmt.Errorf("invalid object visibility %q", visibility)
	}
	update := bson.M{"$set": bson.M{
		"owner_id":   ownerID,
		"visibility": visibility,
		"updated_at": time.Now().UTC(),
	}}
	_, err := s.db.Collection(objectACLsCollection).
		UpdateByID(ctx, objectKey, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to set acl for object %s: %w", objectKey, err)
	}
	return nil
}

// CanRead reports whether the given user (empty for anonymous) may read the
// object. Objects without a recorded policy are private to nobody, so reads
// are denied.
func (s *objectACLService) CanRead(ctx context.Context, objectKey, userID string) (bool, error) {
	var acl models.ObjectACL
	err := s.db.Collection(objectACLsCollection).FindOne(ctx, bson.M{"_id": objectKey}).Decode(&acl)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, nil
		}
		return false, fmt.Errorf("error finding acl for object %s: %w", objectKey, err)
	}
	return acl.CanRead(userID), nil
}
