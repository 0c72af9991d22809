package models

import (
	"time"
)

// MessageStatus is the delivery state of a direct message.
type MessageStatus string

const (
	MessageStatusSent      MessageStatus = "sent"
	MessageStatusDelivered MessageStatus = "delivered"
	MessageStatusRead      MessageStatus = "read"
)

// messageTransitions: sent→delivered is performed by the background delivery
// worker; the recipient's mark-as-read call moves either state to read.
var messageTransitions = map[MessageStatus][]MessageStatus{
	MessageStatusSent:      {MessageStatusDelivered, MessageStatusRead},
	MessageStatusDelivered: {MessageStatusRead},
}

// IsValid reports whether s is a known message status.
func (s MessageStatus) IsValid() bool {
	switch s {
	case MessageStatusSent, MessageStatusDelivered, MessageStatusRead:
		return true
	}
	return false
}

// CanTransitionTo reports whether the delivery state machine permits moving
// from s to next.
func (s MessageStatus) CanTransitionTo(next MessageStatus) bool {
	for _, allowed := range messageTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Message is a directed message between two users, optionally threaded under
// an order or RFQ. There is no conversation entity; clients group messages by
// counterpart user id.
type Message struct {
	ID          string        `bson:"_id" json:"id"`
	SenderID    string        `bson:"sender_id" json:"senderId"`
	RecipientID string        `bson:"recipient_id" json:"recipientId"`
	OrderID     string        `bson:"order_id,omitempty" json:"orderId,omitempty"`
	RfqID       string        `bson:"rfq_id,omitempty" json:"rfqId,omitempty"`
	Subject     string        `bson:"subject,omitempty" json:"subject,omitempty"`
	Content     string        `bson:"content" json:"content"`
	Attachments []string      `bson:"attachments,omitempty" json:"attachments,omitempty"`
	Status      MessageStatus `bson:"status" json:"status"`
	CreatedAt   time.Time     `bson:"created_at" json:"createdAt"`
	ReadAt      *time.Time    `bson:"read_at,omitempty" json:"readAt,omitempty"`
}
