package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Adham-ELshahed/Memar/internal/api/middleware"
	"github.com/Adham-ELshahed/Memar/internal/config"
	"github.com/Adham-ELshahed/Memar/internal/services"
)

// ReviewHandler handles REST requests for reviews.
type ReviewHandler struct {
	cfg           *config.Config
	reviewService services.IReviewService
}

// NewReviewHandler creates a new ReviewHandler.
func NewReviewHandler(cfg *config.Config, reviewService services.IReviewService) *ReviewHandler {
	return &ReviewHandler{cfg: cfg, reviewService: reviewService}
}

// ListReviews handles GET /api/reviews.
func (h *ReviewHandler) ListReviews(c *gin.Context) {
	limit, offset := parsePagination(c, h.cfg.DefaultLimit, h.cfg.MaxLimit)

	filters := services.ReviewFilters{
		OrganizationID: c.Query("organizationId"),
		ProductID:      c.Query("productId"),
		UserID:         c.Query("userId"),
		Limit:          limit,
		Offset:         offset,
	}

	page, err := h.reviewService.List(c.Request.Context(), filters)
	if err != nil {
		respondServiceError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, page)
}

// CreateReview handles POST /api/reviews.
func (h *ReviewHandler) CreateReview(c *gin.Context) {
	authCtx, ok := middleware.GetAuthContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	var input services.ReviewInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondValidationError(c, err)
		return
	}
	if input.Rating < 1 || input.Rating > 5 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "rating must be between 1 and 5"})
		return
	}

	review, err := h.reviewService.Create(c.Request.Context(), authCtx.UserID, &input)
	if err != nil {
		respondServiceError(c, err, "Review target not found")
		return
	}
	c.JSON(http.StatusCreated, review)
}
