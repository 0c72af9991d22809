package models

import (
	"time"
)

// ObjectVisibility controls who may read a stored object.
type ObjectVisibility string

const (
	ObjectVisibilityPublic  ObjectVisibility = "public"
	ObjectVisibilityPrivate ObjectVisibility = "private"
)

// IsValid reports whether v is a known visibility value.
func (v ObjectVisibility) IsValid() bool {
	return v == ObjectVisibilityPublic || v == ObjectVisibilityPrivate
}

// ObjectACL is the access policy attached to one uploaded object, keyed by its
// storage key. Private objects are readable by their owner only.
type ObjectACL struct {
	ObjectKey  string           `bson:"_id" json:"objectKey"`
	OwnerID    string           `bson:"owner_id" json:"ownerId"`
	Visibility ObjectVisibility `bson:"visibility" json:"visibility"`
	CreatedAt  time.Time        `bson:"created_at" json:"createdAt"`
	UpdatedAt  time.Time        `bson:"updated_at" json:"updatedAt"`
}

// CanRead reports whether the given user may read the object.
func (a *ObjectACL) CanRead(userID string) bool {
	if a.Visibility == ObjectVisibilityPublic {
		return true
	}
	return userID != "" && userID == a.OwnerID
}
