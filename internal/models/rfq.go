package models

import (
	"time"
)

// RfqStatus is the lifecycle state of a request for quote.
type RfqStatus string

const (
	RfqStatusDraft     RfqStatus = "draft"
	RfqStatusPublished RfqStatus = "published"
	RfqStatusClosed    RfqStatus = "closed"
	RfqStatusCancelled RfqStatus = "cancelled"
)

// rfqTransitions: a draft is published by its owner, then closed when a
// response is accepted (or by an admin) or cancelled by the owner. Closed and
// cancelled are terminal.
var rfqTransitions = map[RfqStatus][]RfqStatus{
	RfqStatusDraft:     {RfqStatusPublished, RfqStatusCancelled},
	RfqStatusPublished: {RfqStatusClosed, RfqStatusCancelled},
}

// IsValid reports whether s is a known RFQ status.
func (s RfqStatus) IsValid() bool {
	switch s {
	case RfqStatusDraft, RfqStatusPublished, RfqStatusClosed, RfqStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether the RFQ lifecycle permits moving from s to next.
func (s RfqStatus) CanTransitionTo(next RfqStatus) bool {
	for _, allowed := range rfqTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Rfq is a buyer-authored request for quote. Requirements are free-form data
// supplied by the buyer.
type Rfq struct {
	ID           string                 `bson:"_id" json:"id"`
	UserID       string                 `bson:"user_id" json:"userId"`
	Title        string                 `bson:"title" json:"title"`
	Description  string                 `bson:"description" json:"description"`
	CategoryID   string                 `bson:"category_id,omitempty" json:"categoryId,omitempty"`
	ProjectType  string                 `bson:"project_type,omitempty" json:"projectType,omitempty"`
	BudgetMin    *float64               `bson:"budget_min,omitempty" json:"budgetMin,omitempty"`
	BudgetMax    *float64               `bson:"budget_max,omitempty" json:"budgetMax,omitempty"`
	Currency     string                 `bson:"currency" json:"currency"`
	Deadline     *time.Time             `bson:"deadline,omitempty" json:"deadline,omitempty"`
	Attachments  []string               `bson:"attachments,omitempty" json:"attachments,omitempty"`
	Status       RfqStatus              `bson:"status" json:"status"`
	Requirements map[string]interface{} `bson:"requirements,omitempty" json:"requirements,omitempty"`
	Location     string                 `bson:"location,omitempty" json:"location,omitempty"`
	CreatedAt    time.Time              `bson:"created_at" json:"createdAt"`
	UpdatedAt    time.Time              `bson:"updated_at" json:"updatedAt"`
}

// RfqResponse is a vendor quote against one RFQ. IsAccepted is tri-state:
// nil = pending, true = accepted (at most one per RFQ), false = rejected.
type RfqResponse struct {
	ID             string     `bson:"_id" json:"id"`
	RfqID          string     `bson:"rfq_id" json:"rfqId"`
	OrganizationID string     `bson:"organization_id" json:"organizationId"`
	Price          *float64   `bson:"price,omitempty" json:"price,omitempty"`
	Currency       string     `bson:"currency" json:"currency"`
	DeliveryTime   string     `bson:"delivery_time,omitempty" json:"deliveryTime,omitempty"`
	Description    string     `bson:"description,omitempty" json:"description,omitempty"`
	Attachments    []string   `bson:"attachments,omitempty" json:"attachments,omitempty"`
	ValidUntil     *time.Time `bson:"valid_until,omitempty" json:"validUntil,omitempty"`
	IsAccepted     *bool      `bson:"is_accepted,omitempty" json:"isAccepted,omitempty"`
	CreatedAt      time.Time  `bson:"created_at" json:"createdAt"`
	UpdatedAt      time.Time  `bson:"updated_at" json:"updatedAt"`
}
