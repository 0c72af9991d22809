package models

import (
	"time"
)

// Product is a catalog item owned by one organization. A nil Price means
// "contact for price". Specifications are free-form vendor-supplied data and
// are not validated against any schema.
type Product struct {
	ID               string                 `bson:"_id" json:"id"`
	OrganizationID   string                 `bson:"organization_id" json:"organizationId"`
	CategoryID       string                 `bson:"category_id,omitempty" json:"categoryId,omitempty"`
	Name             string                 `bson:"name" json:"name"`
	NameAr           string                 `bson:"name_ar,omitempty" json:"nameAr,omitempty"`
	Description      string                 `bson:"description,omitempty" json:"description,omitempty"`
	DescriptionAr    string                 `bson:"description_ar,omitempty" json:"descriptionAr,omitempty"`
	SKU              string                 `bson:"sku,omitempty" json:"sku,omitempty"`
	Price            *float64               `bson:"price,omitempty" json:"price,omitempty"`
	Currency         string                 `bson:"currency" json:"currency"`
	Unit             string                 `bson:"unit,omitempty" json:"unit,omitempty"`
	Images           []string               `bson:"images" json:"images"`
	Specifications   map[string]interface{} `bson:"specifications,omitempty" json:"specifications,omitempty"`
	StockQuantity    *int                   `bson:"stock_quantity,omitempty" json:"stockQuantity,omitempty"`
	MinOrderQuantity int                    `bson:"min_order_quantity" json:"minOrderQuantity"`
	IsActive         bool                   `bson:"is_active" json:"isActive"`
	Rating           *float64               `bson:"rating,omitempty" json:"rating,omitempty"`
	ReviewCount      int                    `bson:"review_count" json:"reviewCount"`
	CreatedAt        time.Time              `bson:"created_at" json:"createdAt"`
	UpdatedAt        time.Time              `bson:"updated_at" json:"updatedAt"`
}
