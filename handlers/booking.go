package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"dakotahome/services/availability"
	"dakotahome/services/checkout"
	"dakotahome/services/pricing"
)

// BookingHandler exposes the three business tools directly, bypassing the
// agent. Useful for the widget front end and for manual testing; the
// workflow guards live in the agent layer, not here.
type BookingHandler struct {
	Availability *availability.Checker
	Pricing      *pricing.Calculator
	Checkout     *checkout.Initiator
	Logger       *zap.Logger
}

func NewBookingHandler(avail *availability.Checker, calc *pricing.Calculator, init *checkout.Initiator, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{
		Availability: avail,
		Pricing:      calc,
		Checkout:     init,
		Logger:       logger,
	}
}

// CheckAvailability validates a date range against the calendar feed.
func (h *BookingHandler) CheckAvailability(c *gin.Context) {
	var input struct {
		StartDate string `json:"start_date" binding:"required"`
		EndDate   string `json:"end_date" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	result := h.Availability.Check(c.Request.Context(), input.StartDate, input.EndDate)
	c.JSON(http.StatusOK, result)
}

// GetQuote prices a stay.
func (h *BookingHandler) GetQuote(c *gin.Context) {
	var input struct {
		StartDate string `json:"start_date" binding:"required"`
		EndDate   string `json:"end_date" binding:"required"`
		Guests    int    `json:"guests" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	result := h.Pricing.Quote(input.StartDate, input.EndDate, input.Guests)
	if !result.OK() {
		c.JSON(http.StatusOK, gin.H{"error": result.Err, "nights": result.Nights, "total": 0})
		return
	}
	c.JSON(http.StatusOK, result.Quote)
}

// CreateCheckout requests a payment session for the given amount.
func (h *BookingHandler) CreateCheckout(c *gin.Context) {
	var input struct {
		AmountCents   int64  `json:"amount_cents" binding:"required"`
		CustomerEmail string `json:"customer_email" binding:"required"`
		StartDate     string `json:"start_date" binding:"required"`
		EndDate       string `json:"end_date" binding:"required"`
		Guests        int    `json:"guests" binding:"required"`
		Description   string `json:"description"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	result := h.Checkout.Create(c.Request.Context(), input.AmountCents, input.CustomerEmail, map[string]string{
		"start_date": input.StartDate,
		"end_date":   input.EndDate,
		"guests":     strconv.Itoa(input.Guests),
	}, input.Description)
	if !result.OK() {
		c.JSON(http.StatusOK, gin.H{"error": result.Err, "session_id": nil})
		return
	}
	c.JSON(http.StatusOK, result.Session)
}

// Health reports service liveness.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "booking-agent"})
}
