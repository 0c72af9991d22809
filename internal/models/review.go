package models

import (
	"time"
)

// Review is a user's rating of an organization and/or product, optionally tied
// to an order for verified-purchase badging.
type Review struct {
	ID             string    `bson:"_id" json:"id"`
	UserID         string    `bson:"user_id" json:"userId"`
	OrganizationID string    `bson:"organization_id,omitempty" json:"organizationId,omitempty"`
	ProductID      string    `bson:"product_id,omitempty" json:"productId,omitempty"`
	OrderID        string    `bson:"order_id,omitempty" json:"orderId,omitempty"`
	Rating         int       `bson:"rating" json:"rating"`
	Title          string    `bson:"title,omitempty" json:"title,omitempty"`
	Comment        string    `bson:"comment,omitempty" json:"comment,omitempty"`
	IsVerified     bool      `bson:"is_verified" json:"isVerified"`
	CreatedAt      time.Time `bson:"created_at" json:"createdAt"`
}
