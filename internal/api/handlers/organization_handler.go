package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Adham-ELshahed/Memar/internal/api/middleware"
	"github.com/Adham-ELshahed/Memar/internal/config"
	"github.com/Adham-ELshahed/Memar/internal/models"
	"github.com/Adham-ELshahed/Memar/internal/services"
)

// OrganizationHandler handles REST requests for vendor organizations.
type OrganizationHandler struct {
	cfg        *config.Config
	orgService services.IOrganizationService
}

// NewOrganizationHandler creates a new OrganizationHandler.
func NewOrganizationHandler(cfg *config.Config, orgService services.IOrganizationService) *OrganizationHandler {
	return &OrganizationHandler{cfg: cfg, orgService: orgService}
}

// ListOrganizations handles GET /api/organizations.
func (h *OrganizationHandler) ListOrganizations(c *gin.Context) {
	limit, offset := parsePagination(c, h.cfg.DefaultLimit, h.cfg.MaxLimit)

	status := c.DefaultQuery("status", string(models.OrgStatusActive))
	filters := services.OrganizationFilters{
		Status: status,
		Search: c.Query("search"),
		Limit:  limit,
		Offset: offset,
	}

	page, err := h.orgService.List(c.Request.Context(), filters)
	if err != nil {
		respondServiceError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, page)
}

// GetOrganization handles GET /api/organizations/:id.
func (h *OrganizationHandler) GetOrganization(c *gin.Context) {
	org, err := h.orgService.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err, "Organization not found")
		return
	}
	c.JSON(http.StatusOK, org)
}

// GetMyOrganization handles GET /api/organizations/me.
func (h *OrganizationHandler) GetMyOrganization(c *gin.Context) {
	authCtx, ok := middleware.GetAuthContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	org, err := h.orgService.FindByUserID(c.Request.Context(), authCtx.UserID)
	if err != nil {
		respondServiceError(c, err, "You have no organization")
		return
	}
	c.JSON(http.StatusOK, org)
}

// CreateOrganization handles POST /api/organizations.
func (h *OrganizationHandler) CreateOrganization(c *gin.Context) {
	authCtx, ok := middleware.GetAuthContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	var input services.OrganizationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondValidationError(c, err)
		return
	}

	// One organization per user.
	if _, err := h.orgService.FindByUserID(c.Request.Context(), authCtx.UserID); err == nil {
		c.JSON(http.StatusConflict, gin.H{"message": "You already have an organization"})
		return
	}

	org, err := h.orgService.Create(c.Request.Context(), authCtx.UserID, &input)
	if err != nil {
		respondServiceError(c, err, "")
		return
	}
	c.JSON(http.StatusCreated, org)
}

// UpdateOrganization handles PUT /api/organizations/:id.
func (h *OrganizationHandler) UpdateOrganization(c *gin.Context) {
	authCtx, ok := middleware.GetAuthContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	var body map[string]interface{}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondValidationError(c, err)
		return
	}

	// Translate the camelCase wire fields to storage fields, dropping
	// anything unknown. Omitted fields stay untouched; status changes go
	// through the admin endpoint only.
	fieldMap := map[string]string{
		"legalName":              "legal_name",
		"tradeName":              "trade_name",
		"description":            "description",
		"logoUrl":                "logo_url",
		"commercialRegistration": "commercial_registration",
		"taxNumber":              "tax_number",
		"website":                "website",
		"phone":                  "phone",
		"email":                  "email",
		"address":                "address",
		"city":                   "city",
		"categories":             "categories",
	}
	updates := map[string]interface{}{}
	for key, value := range body {
		if storageKey, known := fieldMap[key]; known {
			updates[storageKey] = value
		}
	}
	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "No fields to update"})
		return
	}

	org, err := h.orgService.Update(c.Request.Context(), c.Param("id"), authCtx.UserID, updates)
	if err != nil {
		respondServiceError(c, err, "Organization not found")
		return
	}
	c.JSON(http.StatusOK, org)
}
