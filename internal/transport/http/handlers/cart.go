package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aidosk/gameverse/internal/transport/http/middleware"
	"github.com/aidosk/gameverse/internal/usecase"
)

// CartHandler exposes cart endpoints. The cart is scoped by the caller's user
// ID when authenticated, or by the X-Cart-Session header for anonymous
// shoppers.
type CartHandler struct {
	cart *usecase.CartService
}

// NewCartHandler constructs CartHandler.
func NewCartHandler(cart *usecase.CartService) *CartHandler {
	return &CartHandler{cart: cart}
}

// RegisterRoutes binds cart routes.
func (h *CartHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("", h.get)
	r.POST("/items", h.add)
	r.PUT("/items/:gameID", h.setQuantity)
	r.DELETE("/items/:gameID", h.remove)
	r.DELETE("", h.clear)
}

func cartSession(c *gin.Context) (string, bool) {
	session, ok := middleware.CartSessionID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "missing cart session: authenticate or supply X-Cart-Session"))
		return "", false
	}
	return session, true
}

// Get godoc
// @Summary Fetch the materialized cart
// @Tags Cart
// @Produce json
// @Success 200 {object} CartResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/cart [get]
func (h *CartHandler) get(c *gin.Context) {
	session, ok := cartSession(c)
	if !ok {
		return
	}

	cart, err := h.cart.Get(c.Request.Context(), session)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to fetch cart"))
		return
	}

	c.JSON(http.StatusOK, newCartResponse(cart))
}

// Add godoc
// @Summary Add a game to the cart
// @Tags Cart
// @Accept json
// @Produce json
// @Param request body CartItemRequest true "Cart item payload"
// @Success 204 {string} string ""
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/cart/items [post]
func (h *CartHandler) add(c *gin.Context) {
	session, ok := cartSession(c)
	if !ok {
		return
	}

	var req CartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid cart payload"))
		return
	}

	if err := h.cart.Add(c.Request.Context(), session, req.GameID); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrGameNotFound, Status: http.StatusNotFound, Message: "game not found"},
		}, http.StatusInternalServerError, "failed to add to cart")
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *CartHandler) setQuantity(c *gin.Context) {
	session, ok := cartSession(c)
	if !ok {
		return
	}

	var req CartQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid quantity payload"))
		return
	}

	if err := h.cart.SetQuantity(c.Request.Context(), session, c.Param("gameID"), req.Quantity); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrGameNotFound, Status: http.StatusNotFound, Message: "game not found"},
		}, http.StatusInternalServerError, "failed to update cart")
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *CartHandler) remove(c *gin.Context) {
	session, ok := cartSession(c)
	if !ok {
		return
	}

	if err := h.cart.Remove(c.Request.Context(), session, c.Param("gameID")); err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to remove from cart"))
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *CartHandler) clear(c *gin.Context) {
	session, ok := cartSession(c)
	if !ok {
		return
	}

	if err := h.cart.Clear(c.Request.Context(), session); err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to clear cart"))
		return
	}

	c.Status(http.StatusNoContent)
}
