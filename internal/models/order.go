package models

import (
	"time"
)

// OrderStatus is the fulfilment state of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// orderTransitions: one-way progression pending→confirmed→shipped→delivered,
// with cancellation possible before shipping only.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:   {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:   {OrderStatusDelivered},
}

// IsValid reports whether s is a known order status.
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether the fulfilment state machine permits moving
// from s to next.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Order is a purchase placed by a buyer with one fulfilling organization,
// optionally originating from an accepted RFQ response. OrderNumber is
// server-generated and unique; PaymentReference is the opaque processor id
// set after payment confirmation.
type Order struct {
	ID              string      `bson:"_id" json:"id"`
	UserID          string      `bson:"user_id" json:"userId"`
	OrganizationID  string      `bson:"organization_id" json:"organizationId"`
	RfqResponseID   string      `bson:"rfq_response_id,omitempty" json:"rfqResponseId,omitempty"`
	OrderNumber     string      `bson:"order_number" json:"orderNumber"`
	TotalAmount     *float64    `bson:"total_amount,omitempty" json:"totalAmount,omitempty"`
	Currency        string      `bson:"currency" json:"currency"`
	Status          OrderStatus `bson:"status" json:"status"`
	ShippingAddress string      `bson:"shipping_address,omitempty" json:"shippingAddress,omitempty"`
	BillingAddress  string      `bson:"billing_address,omitempty" json:"billingAddress,omitempty"`
	Notes           string      `bson:"notes,omitempty" json:"notes,omitempty"`
	PaymentMethod   string      `bson:"payment_method,omitempty" json:"paymentMethod,omitempty"`
	PaymentRef      string      `bson:"payment_reference,omitempty" json:"paymentReference,omitempty"`
	CreatedAt       time.Time   `bson:"created_at" json:"createdAt"`
	UpdatedAt       time.Time   `bson:"updated_at" json:"updatedAt"`
}

// OrderItem is a line of an order. Unit price and specifications are copied
// from the product at order time so later catalog edits cannot rewrite
// historical orders.
type OrderItem struct {
	ID             string                 `bson:"_id" json:"id"`
	OrderID        string                 `bson:"order_id" json:"orderId"`
	ProductID      string                 `bson:"product_id" json:"productId"`
	Quantity       int                    `bson:"quantity" json:"quantity"`
	UnitPrice      *float64               `bson:"unit_price,omitempty" json:"unitPrice,omitempty"`
	TotalPrice     *float64               `bson:"total_price,omitempty" json:"totalPrice,omitempty"`
	Specifications map[string]interface{} `bson:"specifications,omitempty" json:"specifications,omitempty"`
}
