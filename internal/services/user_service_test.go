package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adham-ELshahed/Memar/internal/auth"
	"github.com/Adham-ELshahed/Memar/internal/models"
)

func TestUserService_UpsertFromClaims_CreatesThenRefreshes(t *testing.T) {
	db := setupTestDB(t, "meamar_test_user_upsert", usersCollection)
	service := NewUserService(db)
	ctx := context.Background()

	user, err := service.UpsertFromClaims(ctx, &auth.Claims{
		UserID:    "user-1",
		Email:     "khalid@example.com",
		FirstName: "Khalid",
		Locale:    "ar",
	})
	require.NoError(t, err)
	assert.Equal(t, "user-1", user.ID)
	assert.Equal(t, models.RoleBuyer, user.Role)
	assert.Equal(t, "ar", user.PreferredLanguage)

	// A later login with fresher profile data updates the record in place.
	user, err = service.UpsertFromClaims(ctx, &auth.Claims{
		UserID:    "user-1",
		Email:     "khalid@contractor.qa",
		FirstName: "Khalid",
		LastName:  "Al-Thani",
	})
	require.NoError(t, err)
	assert.Equal(t, "khalid@contractor.qa", user.Email)
	assert.Equal(t, "Al-Thani", user.LastName)
	// Insert-time defaults do not change on refresh.
	assert.Equal(t, "ar", user.PreferredLanguage)
}

func TestUserService_UpsertFromClaims_DoesNotDowngradeRole(t *testing.T) {
	db := setupTestDB(t, "meamar_test_user_role", usersCollection)
	service := NewUserService(db)
	ctx := context.Background()

	_, err := service.UpsertFromClaims(ctx, &auth.Claims{UserID: "user-1"})
	require.NoError(t, err)
	require.NoError(t, service.SetRole(ctx, "user-1", models.RoleAdmin))

	// Claims that still say buyer must not strip the elevated role.
	user, err := service.UpsertFromClaims(ctx, &auth.Claims{UserID: "user-1", Role: models.RoleBuyer})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, user.Role)
}

func TestUserService_UpsertFromClaims_RequiresUserID(t *testing.T) {
	db := setupTestDB(t, "meamar_test_user_noid", usersCollection)
	service := NewUserService(db)

	_, err := service.UpsertFromClaims(context.Background(), &auth.Claims{Email: "nobody@example.com"})
	assert.Error(t, err)
}

func TestUserService_UpdateProfile_Whitelist(t *testing.T) {
	db := setupTestDB(t, "meamar_test_user_profile", usersCollection)
	service := NewUserService(db)
	ctx := context.Background()

	_, err := service.UpsertFromClaims(ctx, &auth.Claims{UserID: "user-1"})
	require.NoError(t, err)

	user, err := service.UpdateProfile(ctx, "user-1", map[string]interface{}{
		"phone":              "+97455551234",
		"preferred_language": "ar",
	})
	require.NoError(t, err)
	assert.Equal(t, "+97455551234", user.Phone)
	assert.Equal(t, "ar", user.PreferredLanguage)

	// Role is not caller-editable.
	_, err = service.UpdateProfile(ctx, "user-1", map[string]interface{}{"role": "admin"})
	assert.Error(t, err)
}
