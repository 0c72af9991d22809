package models

import (
	"time"
)

// Role defines the marketplace roles a user can hold.
type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleVendor Role = "vendor"
	RoleAdmin  Role = "admin"
)

// IsValid reports whether r is one of the known roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleBuyer, RoleVendor, RoleAdmin:
		return true
	}
	return false
}

// User is the local record for an identity-provider account. It is upserted
// from token claims on each authenticated request, never created directly,
// and never hard-deleted by the application.
type User struct {
	ID                string    `bson:"_id" json:"id"`
	Email             string    `bson:"email,omitempty" json:"email,omitempty"`
	FirstName         string    `bson:"first_name,omitempty" json:"firstName,omitempty"`
	LastName          string    `bson:"last_name,omitempty" json:"lastName,omitempty"`
	ProfileImageURL   string    `bson:"profile_image_url,omitempty" json:"profileImageUrl,omitempty"`
	Role              Role      `bson:"role" json:"role"`
	Phone             string    `bson:"phone,omitempty" json:"phone,omitempty"`
	PreferredLanguage string    `bson:"preferred_language" json:"preferredLanguage"`
	CreatedAt         time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt         time.Time `bson:"updated_at" json:"updatedAt"`
}

// FullName returns the display name composed from the name parts.
func (u *User) FullName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	default:
		return u.LastName
	}
}
