package models

import (
	"time"
)

// OrganizationStatus is the vendor approval state.
type OrganizationStatus string

const (
	OrgStatusPending   OrganizationStatus = "pending"
	OrgStatusActive    OrganizationStatus = "active"
	OrgStatusSuspended OrganizationStatus = "suspended"
	OrgStatusRejected  OrganizationStatus = "rejected"
)

// orgTransitions is the admin approval state machine. A rejected organization
// is terminal; suspension is reversible.
var orgTransitions = map[OrganizationStatus][]OrganizationStatus{
	OrgStatusPending:   {OrgStatusActive, OrgStatusRejected},
	OrgStatusActive:    {OrgStatusSuspended},
	OrgStatusSuspended: {OrgStatusActive},
}

// IsValid reports whether s is a known organization status.
func (s OrganizationStatus) IsValid() bool {
	switch s {
	case OrgStatusPending, OrgStatusActive, OrgStatusSuspended, OrgStatusRejected:
		return true
	}
	return false
}

// CanTransitionTo reports whether the approval state machine permits moving
// from s to next.
func (s OrganizationStatus) CanTransitionTo(next OrganizationStatus) bool {
	for _, allowed := range orgTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Organization is a vendor business profile owned by a single user. New
// organizations always start pending and are reviewed by an admin.
type Organization struct {
	ID                     string             `bson:"_id" json:"id"`
	UserID                 string             `bson:"user_id" json:"userId"`
	LegalName              string             `bson:"legal_name" json:"legalName"`
	TradeName              string             `bson:"trade_name,omitempty" json:"tradeName,omitempty"`
	Description            string             `bson:"description,omitempty" json:"description,omitempty"`
	LogoURL                string             `bson:"logo_url,omitempty" json:"logoUrl,omitempty"`
	CommercialRegistration string             `bson:"commercial_registration,omitempty" json:"commercialRegistration,omitempty"`
	TaxNumber              string             `bson:"tax_number,omitempty" json:"taxNumber,omitempty"`
	Website                string             `bson:"website,omitempty" json:"website,omitempty"`
	Phone                  string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Email                  string             `bson:"email,omitempty" json:"email,omitempty"`
	Address                string             `bson:"address,omitempty" json:"address,omitempty"`
	City                   string             `bson:"city,omitempty" json:"city,omitempty"`
	Status                 OrganizationStatus `bson:"status" json:"status"`
	Rating                 *float64           `bson:"rating,omitempty" json:"rating,omitempty"`
	ReviewCount            int                `bson:"review_count" json:"reviewCount"`
	Categories             []string           `bson:"categories,omitempty" json:"categories,omitempty"`
	CreatedAt              time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt              time.Time          `bson:"updated_at" json:"updatedAt"`
}
