package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Adham-ELshahed/Memar/internal/models"
	"github.com/Adham-ELshahed/Memar/internal/services"
)

// AdminHandler handles the admin-only surface: dashboard stats and vendor
// approval.
type AdminHandler struct {
	statsService services.IStatsService
	orgService   services.IOrganizationService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(statsService services.IStatsService, orgService services.IOrganizationService) *AdminHandler {
	return &AdminHandler{statsService: statsService, orgService: orgService}
}

// GetStats handles GET /api/admin/stats.
func (h *AdminHandler) GetStats(c *gin.Context) {
	stats, err := h.statsService.GetAdminStats(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, stats)
}

// UpdateOrganizationStatus handles PUT /api/organizations/:id/status. This is
// where vendor onboarding decisions happen.
func (h *AdminHandler) UpdateOrganizationStatus(c *gin.Context) {
	var body struct {
		Status models.OrganizationStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondValidationError(c, err)
		return
	}

	org, err := h.orgService.UpdateStatus(c.Request.Context(), c.Param("id"), body.Status)
	if err != nil {
		respondServiceError(c, err, "Organization not found")
		return
	}
	c.JSON(http.StatusOK, org)
}
