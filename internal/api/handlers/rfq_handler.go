package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Adham-ELshahed/Memar/internal/api/middleware"
	"github.com/Adham-ELshahed/Memar/internal/config"
	"github.com/Adham-ELshahed/Memar/internal/models"
	"github.com/Adham-ELshahed/Memar/internal/services"
)

// RfqHandler handles REST requests for RFQs and vendor quotes.
type RfqHandler struct {
	cfg        *config.Config
	rfqService services.IRfqService
	orgService services.IOrganizationService
}

// NewRfqHandler creates a new RfqHandler.
func NewRfqHandler(cfg *config.Config, rfqService services.IRfqService, orgService services.IOrganizationService) *RfqHandler {
	return &RfqHandler{cfg: cfg, rfqService: rfqService, orgService: orgService}
}

// ListRfqs handles GET /api/rfqs. Browsing is public; buyers see their own
// RFQs via mine=true or userId, and drafts never leave their owner.
func (h *RfqHandler) ListRfqs(c *gin.Context) {
	authCtx, authed := middleware.GetAuthContext(c)
	limit, offset := parsePagination(c, h.cfg.DefaultLimit, h.cfg.MaxLimit)

	filters := services.RfqFilters{
		Status:     c.Query("status"),
		CategoryID: c.Query("categoryId"),
		Limit:      limit,
		Offset:     offset,
	}
	if userID := c.Query("userId"); userID != "" {
		filters.UserID = userID
		// Another buyer's drafts stay hidden.
		if !authed || (userID != authCtx.UserID && authCtx.Role != models.RoleAdmin) {
			if filters.Status == "" || filters.Status == string(models.RfqStatusDraft) {
				filters.Status = string(models.RfqStatusPublished)
			}
		}
	} else if authed && c.Query("mine") == "true" {
		filters.UserID = authCtx.UserID
	} else if filters.Status == "" {
		// Browsing someone else's RFQs only makes sense for open ones.
		filters.Status = string(models.RfqStatusPublished)
	} else if filters.Status == string(models.RfqStatusDraft) && (!authed || authCtx.Role != models.RoleAdmin) {
		filters.Status = string(models.RfqStatusPublished)
	}

	page, err := h.rfqService.List(c.Request.Context(), filters)
	if err != nil {
		respondServiceError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, page)
}

// GetRfq handles GET /api/rfqs/:id. Public, but drafts are visible to their
// owner only.
func (h *RfqHandler) GetRfq(c *gin.Context) {
	authCtx, authed := middleware.GetAuthContext(c)

	rfq, err := h.rfqService.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err, "RFQ not found")
		return
	}
	if rfq.Status == models.RfqStatusDraft && (!authed || (rfq.UserID != authCtx.UserID && authCtx.Role != models.RoleAdmin)) {
		c.JSON(http.StatusNotFound, gin.H{"message": "RFQ not found"})
		return
	}
	c.JSON(http.StatusOK, rfq)
}

// CreateRfq handles POST /api/rfqs.
func (h *RfqHandler) CreateRfq(c *gin.Context) {
	authCtx, ok := middleware.GetAuthContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	var input services.RfqInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondValidationError(c, err)
		return
	}
	if input.BudgetMin != nil && input.BudgetMax != nil && *input.BudgetMin > *input.BudgetMax {
		c.JSON(http.StatusBadRequest, gin.H{"message": "budgetMin cannot exceed budgetMax"})
		return
	}

	rfq, err := h.rfqService.Create(c.Request.Context(), authCtx.UserID, &input)
	if err != nil {
		respondServiceError(c, err, "")
		return
	}
	c.JSON(http.StatusCreated, rfq)
}

// PublishRfq handles POST /api/rfqs/:id/publish.
func (h *RfqHandler) PublishRfq(c *gin.Context) {
	authCtx, ok := middleware.GetAuthContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	rfq, err := h.rfqService.Publish(c.Request.Context(), c.Param("id"), authCtx.UserID)
	if err != nil {
		respondServiceError(c, err, "RFQ not found")
		return
	}
	c.JSON(http.StatusOK, rfq)
}

// CancelRfq handles POST /api/rfqs/:id/cancel.
func (h *RfqHandler) CancelRfq(c *gin.Context) {
	authCtx, ok := middleware.GetAuthContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	rfq, err := h.rfqService.Cancel(c.Request.Context(), c.Param("id"), authCtx.UserID)
	if err != nil {
		respondServiceError(c, err, "RFQ not found")
		return
	}
	c.JSON(http.StatusOK, rfq)
}

// ListRfqResponses handles GET /api/rfqs/:id/responses. The RFQ owner and
// admins see every quote; a vendor sees only its own; anyone else gets an
// empty list.
func (h *RfqHandler) ListRfqResponses(c *gin.Context) {
	authCtx, authed := middleware.GetAuthContext(c)

	rfq, err := h.rfqService.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err, "RFQ not found")
		return
	}

	responses, err := h.rfqService.ListResponses(c.Request.Context(), rfq.ID)
	if err != nil {
		respondServiceError(c, err, "")
		return
	}

	if !authed || (rfq.UserID != authCtx.UserID && authCtx.Role != models.RoleAdmin) {
		own := []models.RfqResponse{}
		if authed {
			if org, orgErr := h.orgService.FindByUserID(c.Request.Context(), authCtx.UserID); orgErr == nil {
				for _, response := range responses {
					if response.OrganizationID == org.ID {
						own = append(own, response)
					}
				}
			}
		}
		responses = own
	}

	c.JSON(http.StatusOK, responses)
}

// CreateRfqResponse handles POST /api/rfqs/:id/responses. The caller must own
// a vendor organization.
func (h *RfqHandler) CreateRfqResponse(c *gin.Context) {
	authCtx, ok := middleware.GetAuthContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	org, err := h.orgService.FindByUserID(c.Request.Context(), authCtx.UserID)
	if err != nil {
		c.JSON(http.StatusForbidden, gin.H{"message": "You must have a vendor organization to respond to RFQs"})
		return
	}
	if org.Status != models.OrgStatusActive {
		c.JSON(http.StatusForbidden, gin.H{"message": "Your organization must be approved before quoting"})
		return
	}

	var input services.RfqResponseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondValidationError(c, err)
		return
	}

	response, err := h.rfqService.CreateResponse(c.Request.Context(), c.Param("id"), org.ID, &input)
	if err != nil {
		respondServiceError(c, err, "RFQ not found")
		return
	}
	c.JSON(http.StatusCreated, response)
}

// AcceptRfqResponse handles POST /api/rfq-responses/:id/accept.
func (h *RfqHandler) AcceptRfqResponse(c *gin.Context) {
	authCtx, ok := middleware.GetAuthContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	response, err := h.rfqService.AcceptResponse(c.Request.Context(), c.Param("id"), authCtx.UserID)
	if err != nil {
		respondServiceError(c, err, "RFQ response not found")
		return
	}
	c.JSON(http.StatusOK, response)
}
