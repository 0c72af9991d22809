package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Adham-ELshahed/Memar/internal/services"
)

// CategoryHandler handles REST requests for the product taxonomy.
type CategoryHandler struct {
	categoryService services.ICategoryService
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(categoryService services.ICategoryService) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

// ListCategories handles GET /api/categories. With no parentId it returns the
// root categories.
func (h *CategoryHandler) ListCategories(c *gin.Context) {
	categories, err := h.categoryService.List(c.Request.Context(), c.Query("parentId"))
	if err != nil {
		respondServiceError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, categories)
}

// CreateCategory handles POST /api/categories. Admin only; the router
// enforces that.
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var input services.CategoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondValidationError(c, err)
		return
	}

	category, err := h.categoryService.Create(c.Request.Context(), &input)
	if err != nil {
		respondServiceError(c, err, "")
		return
	}
	c.JSON(http.StatusCreated, category)
}
