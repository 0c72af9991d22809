package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Adham-ELshahed/Memar/internal/api/middleware"
	"github.com/Adham-ELshahed/Memar/internal/config"
	"github.com/Adham-ELshahed/Memar/internal/models"
	"github.com/Adham-ELshahed/Memar/internal/services"
)

// ProductHandler handles REST requests for the catalog.
type ProductHandler struct {
	cfg            *config.Config
	productService services.IProductService
	orgService     services.IOrganizationService
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(cfg *config.Config, productService services.IProductService, orgService services.IOrganizationService) *ProductHandler {
	return &ProductHandler{cfg: cfg, productService: productService, orgService: orgService}
}

// ListProducts handles GET /api/products. isActive defaults to true so the
// storefront hides retired items unless explicitly asked.
func (h *ProductHandler) ListProducts(c *gin.Context) {
	limit, offset := parsePagination(c, h.cfg.DefaultLimit, h.cfg.MaxLimit)

	isActive := true
	if v := c.Query("isActive"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "isActive must be a boolean"})
			return
		}
		isActive = parsed
	}

	filters := services.ProductFilters{
		OrganizationID: c.Query("organizationId"),
		CategoryID:     c.Query("categoryId"),
		Search:         c.Query("search"),
		IsActive:       &isActive,
		Limit:          limit,
		Offset:         offset,
	}

	page, err := h.productService.List(c.Request.Context(), filters)
	if err != nil {
		respondServiceError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, page)
}

// GetProduct handles GET /api/products/:id.
func (h *ProductHandler) GetProduct(c *gin.Context) {
	product, err := h.productService.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err, "Product not found")
		return
	}
	c.JSON(http.StatusOK, product)
}

// CreateProduct handles POST /api/products. The caller must own a vendor
// organization; the product is attached to it.
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	org, ok := h.callerOrganization(c)
	if !ok {
		return
	}
	if org.Status != models.OrgStatusActive {
		c.JSON(http.StatusForbidden, gin.H{"message": "Your organization must be approved before listing products"})
		return
	}

	var input services.ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondValidationError(c, err)
		return
	}

	product, err := h.productService.Create(c.Request.Context(), org.ID, &input)
	if err != nil {
		respondServiceError(c, err, "")
		return
	}
	c.JSON(http.StatusCreated, product)
}

// UpdateProduct handles PUT /api/products/:id.
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	org, ok := h.callerOrganization(c)
	if !ok {
		return
	}

	var body map[string]interface{}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondValidationError(c, err)
		return
	}

	// Translate the camelCase wire fields to storage fields, dropping
	// anything unknown.
	fieldMap := map[string]string{
		"categoryId":       "category_id",
		"name":             "name",
		"nameAr":           "name_ar",
		"description":      "description",
		"descriptionAr":    "description_ar",
		"sku":              "sku",
		"price":            "price",
		"currency":         "currency",
		"unit":             "unit",
		"images":           "images",
		"specifications":   "specifications",
		"stockQuantity":    "stock_quantity",
		"minOrderQuantity": "min_order_quantity",
		"isActive":         "is_active",
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

	product, err := h.productService.Update(c.Request.Context(), c.Param("id"), org.ID, updates)
	if err != nil {
		respondServiceError(c, err, "Product not found")
		return
	}
	c.JSON(http.StatusOK, product)
}

// callerOrganization resolves the authenticated caller's organization and
// writes the error response itself when there is none.
func (h *ProductHandler) callerOrganization(c *gin.Context) (*models.Organization, bool) {
	authCtx, ok := middleware.GetAuthContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return nil, false
	}

	org, err := h.orgService.FindByUserID(c.Request.Context(), authCtx.UserID)
	if err != nil {
		c.JSON(http.StatusForbidden, gin.H{"message": "You must have a vendor organization to manage products"})
		return nil, false
	}
	return org, true
}
