package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/aidosk/gameverse/internal/core/domain"
	"github.com/aidosk/gameverse/internal/core/port"
	"github.com/aidosk/gameverse/internal/transport/http/middleware"
	"github.com/aidosk/gameverse/internal/usecase"
)

// AdminHandler exposes the back-office surface. Every route expects an admin
// session; the audit trail is written by the service layer.
type AdminHandler struct {
	admin *usecase.AdminService
}

// NewAdminHandler constructs AdminHandler.
func NewAdminHandler(admin *usecase.AdminService) *AdminHandler {
	return &AdminHandler{admin: admin}
}

// RegisterRoutes binds the back-office routes.
func (h *AdminHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/dashboard", h.dashboard)

	r.GET("/users", h.listUsers)
	r.PUT("/users/:id", h.updateUser)
	r.POST("/users/:id/ban", h.banUser)
	r.POST("/users/:id/unban", h.unbanUser)
	r.POST("/users/:id/balance", h.adjustBalance)
	r.DELETE("/users/:id", h.deleteUser)

	r.POST("/games", h.createGame)
	r.PUT("/games/:id", h.updateGame)
	r.DELETE("/games/:id", h.deleteGame)

	r.GET("/orders", h.listOrders)
	r.PUT("/orders/:id/status", h.updateOrderStatus)
	r.POST("/orders/:id/cancel", h.cancelOrder)

	r.GET("/activity", h.listActivity)
}

func adminID(c *gin.Context) (string, bool) {
	id, ok := middleware.GetSubjectID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return "", false
	}
	return id, true
}

// Dashboard godoc
// @Summary Back-office landing metrics
// @Tags Admin
// @Produce json
// @Success 200 {object} DashboardResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/admin/dashboard [get]
func (h *AdminHandler) dashboard(c *gin.Context) {
	if _, ok := adminID(c); !ok {
		return
	}

	limit, _ := pagination(c)
	dashboard, err := h.admin.Dashboard(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to build dashboard"))
		return
	}

	c.JSON(http.StatusOK, DashboardResponse{
		UserCount: dashboard.UserCount,
		GameCount: dashboard.GameCount,
		Orders:    newOrderSummaryPayload(dashboard.Orders),
		Recent:    newActivityPayloads(dashboard.Recent),
	})
}

func (h *AdminHandler) listUsers(c *gin.Context) {
	if _, ok := adminID(c); !ok {
		return
	}

	filter := port.UserFilter{
		Search: strings.TrimSpace(c.Query("search")),
		Status: domain.AccountStatus(strings.TrimSpace(c.Query("status"))),
	}
	filter.Limit, filter.Offset = pagination(c)

	users, err := h.admin.ListUsers(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to list users"))
		return
	}

	resp := UserListResponse{Users: make([]UserPayload, 0, len(users)), Total: len(users)}
	for _, user := range users {
		resp.Users = append(resp.Users, newUserPayload(user))
	}

	c.JSON(http.StatusOK, resp)
}

// BanUser godoc
// @Summary Ban a storefront user
// @Tags Admin
// @Produce json
// @Param id path string true "User ID"
// @Success 204 {string} string ""
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/admin/users/{id}/ban [post]
func (h *AdminHandler) banUser(c *gin.Context) {
	actorID, ok := adminID(c)
	if !ok {
		return
	}

	if err := h.admin.BanUser(c.Request.Context(), actorID, c.Param("id")); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrUserNotFound, Status: http.StatusNotFound, Message: "user not found"},
		}, http.StatusInternalServerError, "failed to ban user")
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *AdminHandler) unbanUser(c *gin.Context) {
	actorID, ok := adminID(c)
	if !ok {
		return
	}

	if err := h.admin.UnbanUser(c.Request.Context(), actorID, c.Param("id")); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrUserNotFound, Status: http.StatusNotFound, Message: "user not found"},
		}, http.StatusInternalServerError, "failed to unban user")
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *AdminHandler) updateUser(c *gin.Context) {
	actorID, ok := adminID(c)
	if !ok {
		return
	}

	var req ProfileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid user payload"))
		return
	}

	input := usecase.ProfileUpdateInput{
		Username:     req.Username,
		Email:        req.Email,
		ProfilePhoto: req.ProfilePhoto,
	}

	user, err := h.admin.UpdateUser(c.Request.Context(), actorID, c.Param("id"), input)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrUserNotFound, Status: http.StatusNotFound, Message: "user not found"},
			{Err: usecase.ErrEmailTaken, Status: http.StatusConflict, Message: "email already registered"},
			{Err: usecase.ErrUsernameTaken, Status: http.StatusConflict, Message: "username already taken"},
		}, http.StatusInternalServerError, "failed to update user")
		return
	}

	c.JSON(http.StatusOK, newUserPayload(*user))
}

// AdjustBalance godoc
// @Summary Credit or debit a user's balance
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param request body BalanceAdjustRequest true "Signed decimal delta"
// @Success 204 {string} string ""
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/admin/users/{id}/balance [post]
func (h *AdminHandler) adjustBalance(c *gin.Context) {
	actorID, ok := adminID(c)
	if !ok {
		return
	}

	var req BalanceAdjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid balance payload"))
		return
	}

	delta, err := decimal.NewFromString(strings.TrimSpace(req.Delta))
	if err != nil || delta.IsZero() {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "delta must be a non-zero decimal string"))
		return
	}

	if err := h.admin.AdjustUserBalance(c.Request.Context(), actorID, c.Param("id"), delta); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrUserNotFound, Status: http.StatusNotFound, Message: "user not found"},
		}, http.StatusInternalServerError, "failed to adjust balance")
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *AdminHandler) deleteUser(c *gin.Context) {
	actorID, ok := adminID(c)
	if !ok {
		return
	}

	if err := h.admin.DeleteUser(c.Request.Context(), actorID, c.Param("id")); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrUserNotFound, Status: http.StatusNotFound, Message: "user not found"},
		}, http.StatusInternalServerError, "failed to delete user")
		return
	}

	c.Status(http.StatusNoContent)
}

// CreateGame godoc
// @Summary Add a game to the catalog
// @Tags Admin
// @Accept json
// @Produce json
// @Param request body GameRequest true "Game payload"
// @Success 201 {object} GamePayload
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/admin/games [post]
func (h *AdminHandler) createGame(c *gin.Context) {
	actorID, ok := adminID(c)
	if !ok {
		return
	}

	input, ok := bindGameInput(c)
	if !ok {
		return
	}

	game, err := h.admin.CreateGame(c.Request.Context(), actorID, input)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrGameInvalid, Status: http.StatusBadRequest, Message: "invalid game payload"},
		}, http.StatusInternalServerError, "failed to create game")
		return
	}

	c.JSON(http.StatusCreated, newGamePayload(*game))
}

func (h *AdminHandler) updateGame(c *gin.Context) {
	actorID, ok := adminID(c)
	if !ok {
		return
	}

	input, ok := bindGameInput(c)
	if !ok {
		return
	}

	game, err := h.admin.UpdateGame(c.Request.Context(), actorID, c.Param("id"), input)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrGameNotFound, Status: http.StatusNotFound, Message: "game not found"},
			{Err: usecase.ErrGameInvalid, Status: http.StatusBadRequest, Message: "invalid game payload"},
		}, http.StatusInternalServerError, "failed to update game")
		return
	}

	c.JSON(http.StatusOK, newGamePayload(*game))
}

func (h *AdminHandler) deleteGame(c *gin.Context) {
	actorID, ok := adminID(c)
	if !ok {
		return
	}

	if err := h.admin.DeleteGame(c.Request.Context(), actorID, c.Param("id")); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrGameNotFound, Status: http.StatusNotFound, Message: "game not found"},
		}, http.StatusInternalServerError, "failed to delete game")
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *AdminHandler) listOrders(c *gin.Context) {
	if _, ok := adminID(c); !ok {
		return
	}

	filter := port.OrderFilter{
		UserID: strings.TrimSpace(c.Query("user_id")),
		Status: domain.OrderStatus(strings.TrimSpace(c.Query("status"))),
	}
	filter.Limit, filter.Offset = pagination(c)

	orders, err := h.admin.ListOrders(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to list orders"))
		return
	}

	c.JSON(http.StatusOK, OrderListResponse{
		Orders: newOrderPayloads(orders),
		Total:  len(orders),
	})
}

// UpdateOrderStatus godoc
// @Summary Update an order's fulfillment status
// @Description Cancellation is rejected here; use the cancel endpoint so the refund lands.
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param request body OrderStatusRequest true "Status payload"
// @Success 204 {string} string ""
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/admin/orders/{id}/status [put]
func (h *AdminHandler) updateOrderStatus(c *gin.Context) {
	actorID, ok := adminID(c)
	if !ok {
		return
	}

	var req OrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid status payload"))
		return
	}

	status := domain.OrderStatus(strings.TrimSpace(req.Status))
	switch status {
	case domain.OrderStatusProcessing, domain.OrderStatusPending, domain.OrderStatusCompleted, domain.OrderStatusCancelled:
	default:
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "unknown order status"))
		return
	}

	err := h.admin.UpdateOrderStatus(c.Request.Context(), actorID, c.Param("id"), status)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrOrderNotFound, Status: http.StatusNotFound, Message: "order not found"},
			{Err: usecase.ErrOrderClosed, Status: http.StatusConflict, Message: "order already completed or cancelled"},
			{Err: usecase.ErrStatusTransitionInvalid, Status: http.StatusBadRequest, Message: "use the cancel endpoint to cancel an order"},
		}, http.StatusInternalServerError, "failed to update order status")
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *AdminHandler) cancelOrder(c *gin.Context) {
	actorID, ok := adminID(c)
	if !ok {
		return
	}

	if err := h.admin.CancelOrder(c.Request.Context(), actorID, c.Param("id")); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrOrderNotFound, Status: http.StatusNotFound, Message: "order not found"},
			{Err: usecase.ErrOrderClosed, Status: http.StatusConflict, Message: "order already completed or cancelled"},
		}, http.StatusInternalServerError, "failed to cancel order")
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *AdminHandler) listActivity(c *gin.Context) {
	if _, ok := adminID(c); !ok {
		return
	}

	limit, _ := pagination(c)
	entries, err := h.admin.ListActivity(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to list activity"))
		return
	}

	c.JSON(http.StatusOK, ActivityListResponse{Entries: newActivityPayloads(entries)})
}

func bindGameInput(c *gin.Context) (usecase.GameInput, bool) {
	var req GameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid game payload"))
		return usecase.GameInput{}, false
	}

	price, err := decimal.NewFromString(strings.TrimSpace(req.Price))
	if err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "price must be a decimal string"))
		return usecase.GameInput{}, false
	}

	return usecase.GameInput{
		Title:     strings.TrimSpace(req.Title),
		Category:  strings.TrimSpace(req.Category),
		Price:     price,
		Rating:    req.Rating,
		Downloads: req.Downloads,
		Image:     strings.TrimSpace(req.Image),
	}, true
}
