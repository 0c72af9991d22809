package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Adham-ELshahed/Memar/internal/api/middleware"
	"github.com/Adham-ELshahed/Memar/internal/auth"
	"github.com/Adham-ELshahed/Memar/internal/config"
	"github.com/Adham-ELshahed/Memar/internal/services"
)

// AuthHandler resolves the current user and hands off login/logout to the
// external identity provider. Credentials never touch this application.
type AuthHandler struct {
	cfg         *config.Config
	userService services.IUserService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(cfg *config.Config, userService services.IUserService) *AuthHandler {
	return &AuthHandler{cfg: cfg, userService: userService}
}

// GetCurrentUser handles GET /api/auth/user. It upserts the local user record
// from the token claims so profile changes at the identity provider propagate
// on next sight.
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	claimsVal, exists := c.Get(middleware.ContextKeyClaims)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}
	claims, ok := claimsVal.(*auth.Claims)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	user, err := h.userService.UpsertFromClaims(c.Request.Context(), claims)
	if err != nil {
		respondServiceError(c, err, "User not found")
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateProfile handles PUT /api/auth/user.
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	authCtx, ok := middleware.GetAuthContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	var body struct {
		Phone             *string `json:"phone"`
		PreferredLanguage *string `json:"preferredLanguage"`
		FirstName         *string `json:"firstName"`
		LastName          *string `json:"lastName"`
		ProfileImageURL   *string `json:"profileImageUrl"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondValidationError(c, err)
		return
	}

	updates := map[string]interface{}{}
	if body.Phone != nil {
		updates["phone"] = *body.Phone
	}
	if body.PreferredLanguage != nil {
		lang := *body.PreferredLanguage
		if lang != "en" && lang != "ar" {
			c.JSON(http.StatusBadRequest, gin.H{"message": "preferredLanguage must be en or ar"})
			return
		}
		updates["preferred_language"] = lang
	}
	if body.FirstName != nil {
		updates["first_name"] = *body.FirstName
	}
	if body.LastName != nil {
		updates["last_name"] = *body.LastName
	}
	if body.ProfileImageURL != nil {
		updates["profile_image_url"] = *body.ProfileImageURL
	}
	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "No fields to update"})
		return
	}

	user, err := h.userService.UpdateProfile(c.Request.Context(), authCtx.UserID, updates)
	if err != nil {
		respondServiceError(c, err, "User not found")
		return
	}
	c.JSON(http.StatusOK, user)
}

// Login handles GET /api/login by redirecting to the identity provider.
func (h *AuthHandler) Login(c *gin.Context) {
	c.Redirect(http.StatusFound, h.cfg.IdentityLoginURL)
}

// Logout handles GET /api/logout by redirecting to the identity provider.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.Redirect(http.StatusFound, h.cfg.IdentityLogoutURL)
}
