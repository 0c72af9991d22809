package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Adham-ELshahed/Memar/internal/api/middleware"
	"github.com/Adham-ELshahed/Memar/internal/config"
	"github.com/Adham-ELshahed/Memar/internal/models"
	"github.com/Adham-ELshahed/Memar/internal/services"
)

// OrderHandler handles REST requests for orders.
type OrderHandler struct {
	cfg          *config.Config
	orderService services.IOrderService
	orgService   services.IOrganizationService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(cfg *config.Config, orderService services.IOrderService, orgService services.IOrganizationService) *OrderHandler {
	return &OrderHandler{cfg: cfg, orderService: orderService, orgService: orgService}
}

// ListOrders handles GET /api/orders. Buyers see their own orders; a vendor
// passing organizationId sees orders against its organization. Admins see
// everything.
func (h *OrderHandler) ListOrders(c *gin.Context) {
	authCtx, ok := middleware.GetAuthContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}
	limit, offset := parsePagination(c, h.cfg.DefaultLimit, h.cfg.MaxLimit)

	filters := services.OrderFilters{
		Status: c.Query("status"),
		Limit:  limit,
		Offset: offset,
	}

	if orgID := c.Query("organizationId"); orgID != "" {
		if authCtx.Role != models.RoleAdmin {
			org, err := h.orgService.FindByUserID(c.Request.Context(), authCtx.UserID)
			if err != nil || org.ID != orgID {
				c.JSON(http.StatusForbidden, gin.H{"message": "You do not have access to this organization's orders"})
				return
			}
		}
		filters.OrganizationID = orgID
	} else if authCtx.Role != models.RoleAdmin {
		filters.UserID = authCtx.UserID
	}

	page, err := h.orderService.List(c.Request.Context(), filters)
	if err != nil {
		respondServiceError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, page)
}

// GetOrder handles GET /api/orders/:id. Visible to the buyer, the fulfilling
// vendor and admins.
func (h *OrderHandler) GetOrder(c *gin.Context) {
	order, ok := h.accessibleOrder(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, order)
}

// CreateOrder handles POST /api/orders.
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	authCtx, ok := middleware.GetAuthContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	var input services.OrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondValidationError(c, err)
		return
	}

	if _, err := h.orgService.FindByID(c.Request.Context(), input.OrganizationID); err != nil {
		respondServiceError(c, err, "Organization not found")
		return
	}

	order, err := h.orderService.Create(c.Request.Context(), authCtx.UserID, &input)
	if err != nil {
		respondServiceError(c, err, "RFQ response not found")
		return
	}
	c.JSON(http.StatusCreated, order)
}

// UpdateOrderStatus handles PUT /api/orders/:id/status. The vendor advances
// fulfilment; the buyer may cancel while that is still allowed.
func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	authCtx, _ := middleware.GetAuthContext(c)
	order, ok := h.accessibleOrder(c)
	if !ok {
		return
	}

	var body struct {
		Status models.OrderStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondValidationError(c, err)
		return
	}

	// Buyers may only cancel; fulfilment progression belongs to the vendor.
	if authCtx.Role != models.RoleAdmin && order.UserID == authCtx.UserID && body.Status != models.OrderStatusCancelled {
		org, err := h.orgService.FindByUserID(c.Request.Context(), authCtx.UserID)
		if err != nil || org.ID != order.OrganizationID {
			c.JSON(http.StatusForbidden, gin.H{"message": "Only the vendor can advance an order"})
			return
		}
	}

	updated, err := h.orderService.UpdateStatus(c.Request.Context(), order.ID, body.Status)
	if err != nil {
		respondServiceError(c, err, "Order not found")
		return
	}
	c.JSON(http.StatusOK, updated)
}

// ListOrderItems handles GET /api/orders/:id/items.
func (h *OrderHandler) ListOrderItems(c *gin.Context) {
	order, ok := h.accessibleOrder(c)
	if !ok {
		return
	}

	items, err := h.orderService.ListItems(c.Request.Context(), order.ID)
	if err != nil {
		respondServiceError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, items)
}

// CreateOrderItem handles POST /api/orders/:id/items. Only the buyer adds
// lines, and only while the order is pending.
func (h *OrderHandler) CreateOrderItem(c *gin.Context) {
	authCtx, _ := middleware.GetAuthContext(c)
	order, ok := h.accessibleOrder(c)
	if !ok {
		return
	}
	if order.UserID != authCtx.UserID && authCtx.Role != models.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"message": "Only the buyer can add items to an order"})
		return
	}

	var input services.OrderItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondValidationError(c, err)
		return
	}

	item, err := h.orderService.CreateItem(c.Request.Context(), order.ID, &input)
	if err != nil {
		respondServiceError(c, err, "Product not found")
		return
	}
	c.JSON(http.StatusCreated, item)
}

// accessibleOrder loads the order and enforces buyer/vendor/admin access,
// writing the error response itself on failure.
func (h *OrderHandler) accessibleOrder(c *gin.Context) (*models.Order, bool) {
	authCtx, ok := middleware.GetAuthContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return nil, false
	}

	order, err := h.orderService.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err, "Order not found")
		return nil, false
	}

	if order.UserID == authCtx.UserID || authCtx.Role == models.RoleAdmin {
		return order, true
	}
	if org, orgErr := h.orgService.FindByUserID(c.Request.Context(), authCtx.UserID); orgErr == nil && org.ID == order.OrganizationID {
		return order, true
	}

	c.JSON(http.StatusForbidden, gin.H{"message": "You do not have access to this order"})
	return nil, false
}
