package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adham-ELshahed/Memar/internal/models"
)

func TestObjectACLService_PrivateObjectsAreOwnerOnly(t *testing.T) {
	db := setupTestDB(t, "meamar_test_acl_private", objectACLsCollection)
	service := NewObjectACLService(db)
	ctx := context.Background()

	require.NoError(t, service.SetPolicy(ctx, "uploads/user-1/doc.pdf", "user-1", models.ObjectVisibilityPrivate))

	ok, err := service.CanRead(ctx, "uploads/user-1/doc.pdf", "user-1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = service.CanRead(ctx, "uploads/user-1/doc.pdf", "user-2")
	require.NoError(t, err)
	assert.False(t, ok)

	// Anonymous reads of private objects are denied too.
	ok, err = service.CanRead(ctx, "uploads/user-1/doc.pdf", "")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestObjectACLService_PublicObjectsReadableByAnyone(t *testing.T) {
	db := setupTestDB(t, "meamar_test_acl_public", objectACLsCollection)
	service := NewObjectACLService(db)
	ctx := context.Background()

	require.NoError(t, service.SetPolicy(ctx, "uploads/user-1/logo.png", "user-1", models.ObjectVisibilityPrivate))
	// Flipping to public is an upsert of the same key.
	require.NoError(t, service.SetPolicy(ctx, "uploads/user-1/logo.png", "user-1", models.ObjectVisibilityPublic))

	ok, err := service.CanRead(ctx, "uploads/user-1/logo.png", "")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestObjectACLService_UnknownObjectDenied(t *testing.T) {
	db := setupTestDB(t, "meamar_test_acl_unknown", objectACLsCollection)
	service := NewObjectACLService(db)

	ok, err := service.CanRead(context.Background(), "uploads/nobody/ghost.bin", "user-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestObjectACLService_RejectsBogusVisibility(t *testing.T) {
	db := setupTestDB(t, "meamar_test_acl_bogus", objectACLsCollection)
	service := NewObjectACLService(db)

	err := service.SetPolicy(context.Background(), "uploads/user-1/x", "user-1", models.ObjectVisibility("sorta-public"))
	assert.Error(t, err)
}
