package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Adham-ELshahed/Memar/internal/api/middleware"
	"github.com/Adham-ELshahed/Memar/internal/config"
	"github.com/Adham-ELshahed/Memar/internal/models"
	"github.com/Adham-ELshahed/Memar/internal/payments"
	"github.com/Adham-ELshahed/Memar/internal/services"
)

// PaymentHandler handles payment intent creation. Card data never touches
// this application; the processor returns an opaque reference that is stored
// on the order.
type PaymentHandler struct {
	cfg           *config.Config
	paymentClient payments.IClient
	orderService  services.IOrderService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(cfg *config.Config, paymentClient payments.IClient, orderService services.IOrderService) *PaymentHandler {
	return &PaymentHandler{cfg: cfg, paymentClient: paymentClient, orderService: orderService}
}

// CreatePaymentIntent handles POST /api/create-payment-intent.
func (h *PaymentHandler) CreatePaymentIntent(c *gin.Context) {
	authCtx, ok := middleware.GetAuthContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	var body struct {
		OrderID  string   `json:"orderId"`
		Amount   *float64 `json:"amount"`
		Currency string   `json:"currency"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondValidationError(c, err)
		return
	}

	amount := 0.0
	currency := body.Currency
	if body.OrderID != "" {
		order, err := h.orderService.FindByID(c.Request.Context(), body.OrderID)
		if err != nil {
			respondServiceError(c, err, "Order not found")
			return
		}
		if order.UserID != authCtx.UserID && authCtx.Role != models.RoleAdmin {
			c.JSON(http.StatusForbidden, gin.H{"message": "You do not have access to this order"})
			return
		}
		if order.TotalAmount == nil {
			c.JSON(http.StatusConflict, gin.H{"message": "Order has no total amount yet"})
			return
		}
		amount = *order.TotalAmount
		currency = order.Currency
	} else if body.Amount != nil {
		amount = *body.Amount
	}

	if amount <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "amount must be positive"})
		return
	}
	if currency == "" {
		currency = h.cfg.DefaultCurrency
	}

	intent, err := h.paymentClient.CreateIntent(c.Request.Context(), &payments.IntentRequest{
		Amount:   amount,
		Currency: currency,
		OrderID:  body.OrderID,
	})
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusBadGateway, gin.H{"message": "Payment processor unavailable"})
		return
	}

	if body.OrderID != "" {
		if err := h.orderService.SetPaymentReference(c.Request.Context(), body.OrderID, intent.Reference); err != nil && !errors.Is(err, services.ErrNotFound) {
			_ = c.Error(err)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"clientSecret": intent.ClientSecret,
		"reference":    intent.Reference,
	})
}
