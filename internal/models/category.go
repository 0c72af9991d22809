package models

import (
	"time"
)

// Category is an admin-managed, optionally hierarchical product grouping with
// bilingual labels. Top-level categories have a nil ParentID.
type Category struct {
	ID            string    `bson:"_id" json:"id"`
	Name          string    `bson:"name" json:"name"`
	NameAr        string    `bson:"name_ar,omitempty" json:"nameAr,omitempty"`
	Description   string    `bson:"description,omitempty" json:"description,omitempty"`
	DescriptionAr string    `bson:"description_ar,omitempty" json:"descriptionAr,omitempty"`
	IconURL       string    `bson:"icon_url,omitempty" json:"iconUrl,omitempty"`
	ParentID      *string   `bson:"parent_id,omitempty" json:"parentId,omitempty"`
	IsActive      bool      `bson:"is_active" json:"isActive"`
	SortOrder     int       `bson:"sort_order" json:"sortOrder"`
	CreatedAt     time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt     time.Time `bson:"updated_at" json:"updatedAt"`
}
