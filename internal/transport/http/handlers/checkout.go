package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aidosk/gameverse/internal/transport/http/middleware"
	"github.com/aidosk/gameverse/internal/usecase"
)

// CheckoutHandler exposes checkout and order endpoints for storefront users.
type CheckoutHandler struct {
	checkout *usecase.CheckoutService
}

// NewCheckoutHandler constructs CheckoutHandler.
func NewCheckoutHandler(checkout *usecase.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout}
}

// RegisterRoutes binds checkout and order routes. All require authentication.
func (h *CheckoutHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/checkout", h.checkoutCart)
	r.GET("/orders", h.listOrders)
	r.GET("/orders/:id", h.getOrder)
}

// Checkout godoc
// @Summary Convert the caller's cart into an order
// @Description Atomically re-prices the cart, debits the balance, snapshots line items, and empties the cart.
// @Tags Orders
// @Produce json
// @Success 201 {object} OrderPayload
// @Failure 401 {object} ErrorResponse
// @Failure 402 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/checkout [post]
func (h *CheckoutHandler) checkoutCart(c *gin.Context) {
	userID, ok := middleware.GetSubjectID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	order, err := h.checkout.Checkout(c.Request.Context(), userID)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrCartEmpty, Status: http.StatusConflict, Message: "cart is empty"},
			{Err: usecase.ErrInsufficientFunds, Status: http.StatusPaymentRequired, Message: "insufficient balance"},
			{Err: usecase.ErrGameNotFound, Status: http.StatusConflict, Message: "a cart item is no longer available"},
			{Err: usecase.ErrAccountBanned, Status: http.StatusForbidden, Message: "account banned"},
			{Err: usecase.ErrUserNotFound, Status: http.StatusUnauthorized, Message: "user not found"},
		}, http.StatusInternalServerError, "checkout failed")
		return
	}

	c.JSON(http.StatusCreated, newOrderPayload(*order))
}

func (h *CheckoutHandler) listOrders(c *gin.Context) {
	userID, ok := middleware.GetSubjectID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	limit, offset := pagination(c)
	orders, err := h.checkout.ListOrders(c.Request.Context(), userID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to list orders"))
		return
	}

	c.JSON(http.StatusOK, OrderListResponse{
		Orders: newOrderPayloads(orders),
		Total:  len(orders),
	})
}

func (h *CheckoutHandler) getOrder(c *gin.Context) {
	userID, ok := middleware.GetSubjectID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	order, err := h.checkout.GetOrder(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrOrderNotFound, Status: http.StatusNotFound, Message: "order not found"},
			{Err: usecase.ErrNotOwner, Status: http.StatusForbidden, Message: "order belongs to another user"},
		}, http.StatusInternalServerError, "failed to fetch order")
		return
	}

	c.JSON(http.StatusOK, newOrderPayload(*order))
}
