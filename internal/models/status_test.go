package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrganizationStatusTransitions(t *testing.T) {
	assert.True(t, OrgStatusPending.CanTransitionTo(OrgStatusActive))
	assert.True(t, OrgStatusPending.CanTransitionTo(OrgStatusRejected))
	assert.True(t, OrgStatusActive.CanTransitionTo(OrgStatusSuspended))
	assert.True(t, OrgStatusSuspended.CanTransitionTo(OrgStatusActive))

	// Rejected is terminal, and no state may loop back to pending.
	assert.False(t, OrgStatusRejected.CanTransitionTo(OrgStatusActive))
	assert.False(t, OrgStatusActive.CanTransitionTo(OrgStatusPending))
	assert.False(t, OrgStatusPending.CanTransitionTo(OrgStatusSuspended))
	assert.False(t, OrgStatusActive.CanTransitionTo(OrgStatusActive))
}

func TestRfqStatusTransitions(t *testing.T) {
	assert.True(t, RfqStatusDraft.CanTransitionTo(RfqStatusPublished))
	assert.True(t, RfqStatusDraft.CanTransitionTo(RfqStatusCancelled))
	assert.True(t, RfqStatusPublished.CanTransitionTo(RfqStatusClosed))
	assert.True(t, RfqStatusPublished.CanTransitionTo(RfqStatusCancelled))

	assert.False(t, RfqStatusDraft.CanTransitionTo(RfqStatusClosed))
	assert.False(t, RfqStatusClosed.CanTransitionTo(RfqStatusPublished))
	assert.False(t, RfqStatusCancelled.CanTransitionTo(RfqStatusDraft))
}

func TestOrderStatusTransitions(t *testing.T) {
	assert.True(t, OrderStatusPending.CanTransitionTo(OrderStatusConfirmed))
	assert.True(t, OrderStatusConfirmed.CanTransitionTo(OrderStatusShipped))
	assert.True(t, OrderStatusShipped.CanTransitionTo(OrderStatusDelivered))
	assert.True(t, OrderStatusPending.CanTransitionTo(OrderStatusCancelled))
	assert.True(t, OrderStatusConfirmed.CanTransitionTo(OrderStatusCancelled))

	// No skipping forward, no cancelling after shipment, no reviving terminals.
	assert.False(t, OrderStatusPending.CanTransitionTo(OrderStatusShipped))
	assert.False(t, OrderStatusShipped.CanTransitionTo(OrderStatusCancelled))
	assert.False(t, OrderStatusDelivered.CanTransitionTo(OrderStatusCancelled))
	assert.False(t, OrderStatusCancelled.CanTransitionTo(OrderStatusPending))
}

func TestMessageStatusTransitions(t *testing.T) {
	assert.True(t, MessageStatusSent.CanTransitionTo(MessageStatusDelivered))
	assert.True(t, MessageStatusSent.CanTransitionTo(MessageStatusRead))
	assert.True(t, MessageStatusDelivered.CanTransitionTo(MessageStatusRead))

	assert.False(t, MessageStatusRead.CanTransitionTo(MessageStatusDelivered))
	assert.False(t, MessageStatusDelivered.CanTransitionTo(MessageStatusSent))
}

func TestStatusValidity(t *testing.T) {
	assert.True(t, RoleBuyer.IsValid())
	assert.True(t, OrgStatusSuspended.IsValid())
	assert.True(t, RfqStatusPublished.IsValid())
	assert.True(t, OrderStatusShipped.IsValid())
	assert.True(t, MessageStatusDelivered.IsValid())

	assert.False(t, Role("owner").IsValid())
	assert.False(t, OrganizationStatus("approved").IsValid())
	assert.False(t, OrderStatus("").IsValid())
}
