package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/aidosk/gameverse/internal/core/port"
	"github.com/aidosk/gameverse/internal/transport/http/middleware"
	"github.com/aidosk/gameverse/internal/usecase"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// CatalogHandler exposes catalog browsing and review endpoints.
type CatalogHandler struct {
	catalog *usecase.CatalogService
	reviews *usecase.ReviewService
}

// NewCatalogHandler constructs CatalogHandler.
func NewCatalogHandler(catalog *usecase.CatalogService, reviews *usecase.ReviewService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, reviews: reviews}
}

// RegisterRoutes binds public catalog routes. Review mutations require the
// provided auth middleware.
func (h *CatalogHandler) RegisterRoutes(r *gin.RouterGroup, authMiddleware gin.HandlerFunc) {
	r.GET("", h.list)
	r.GET("/:id", h.get)
	r.GET("/:id/reviews", h.listReviews)
	r.POST("/:id/reviews", authMiddleware, h.submitReview)
	r.PUT("/reviews/:reviewID", authMiddleware, h.updateReview)
	r.DELETE("/reviews/:reviewID", authMiddleware, h.deleteReview)
}

// List godoc
// @Summary Browse the game catalog
// @Tags Catalog
// @Produce json
// @Param search query string false "Title search"
// @Param category query string false "Category filter"
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} GameListResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/games [get]
func (h *CatalogHandler) list(c *gin.Context) {
	filter := port.GameFilter{
		TitleSearch: strings.TrimSpace(c.Query("search")),
		Category:    strings.TrimSpace(c.Query("category")),
	}
	filter.Limit, filter.Offset = pagination(c)

	games, err := h.catalog.Browse(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to list games"))
		return
	}

	c.JSON(http.StatusOK, GameListResponse{
		Games: newGamePayloads(games),
		Total: len(games),
	})
}

// Get godoc
// @Summary Fetch a game with its reviews
// @Tags Catalog
// @Produce json
// @Param id path string true "Game ID"
// @Success 200 {object} GameDetailResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/games/{id} [get]
func (h *CatalogHandler) get(c *gin.Context) {
	detail, err := h.catalog.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrGameNotFound, Status: http.StatusNotFound, Message: "game not found"},
		}, http.StatusInternalServerError, "failed to fetch game")
		return
	}

	c.JSON(http.StatusOK, GameDetailResponse{
		Game:    newGamePayload(detail.Game),
		Reviews: newReviewPayloads(detail.Reviews),
	})
}

func (h *CatalogHandler) listReviews(c *gin.Context) {
	reviews, err := h.reviews.ListByGame(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrGameNotFound, Status: http.StatusNotFound, Message: "game not found"},
		}, http.StatusInternalServerError, "failed to list reviews")
		return
	}

	c.JSON(http.StatusOK, newReviewPayloads(reviews))
}

// SubmitReview godoc
// @Summary Create the caller's review for a game
// @Tags Catalog
// @Accept json
// @Produce json
// @Param id path string true "Game ID"
// @Param request body ReviewRequest true "Review payload"
// @Success 200 {object} ReviewPayload
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/games/{id}/reviews [post]
func (h *CatalogHandler) submitReview(c *gin.Context) {
	userID, ok := middleware.GetSubjectID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid review payload"))
		return
	}

	review, err := h.reviews.Submit(c.Request.Context(), usecase.ReviewInput{
		UserID:  userID,
		GameID:  c.Param("id"),
		Comment: strings.TrimSpace(req.Comment),
		Rating:  req.Rating,
	})
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrGameNotFound, Status: http.StatusNotFound, Message: "game not found"},
			{Err: usecase.ErrReviewInvalid, Status: http.StatusBadRequest, Message: "review needs a comment or a rating between 0 and 5"},
			{Err: usecase.ErrReviewExists, Status: http.StatusConflict, Message: "you already reviewed this game"},
		}, http.StatusInternalServerError, "failed to submit review")
		return
	}

	c.JSON(http.StatusCreated, newReviewPayload(*review))
}

func (h *CatalogHandler) updateReview(c *gin.Context) {
	userID, ok := middleware.GetSubjectID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid review payload"))
		return
	}

	review, err := h.reviews.Update(c.Request.Context(), userID, c.Param("reviewID"), usecase.ReviewInput{
		Comment: strings.TrimSpace(req.Comment),
		Rating:  req.Rating,
	})
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrReviewNotFound, Status: http.StatusNotFound, Message: "review not found"},
			{Err: usecase.ErrNotOwner, Status: http.StatusForbidden, Message: "review belongs to another user"},
			{Err: usecase.ErrReviewInvalid, Status: http.StatusBadRequest, Message: "review needs a comment or a rating between 0 and 5"},
		}, http.StatusInternalServerError, "failed to update review")
		return
	}

	c.JSON(http.StatusOK, newReviewPayload(*review))
}

func (h *CatalogHandler) deleteReview(c *gin.Context) {
	userID, ok := middleware.GetSubjectID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	err := h.reviews.Delete(c.Request.Context(), userID, c.Param("reviewID"))
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrReviewNotFound, Status: http.StatusNotFound, Message: "review not found"},
			{Err: usecase.ErrNotOwner, Status: http.StatusForbidden, Message: "review belongs to another user"},
		}, http.StatusInternalServerError, "failed to delete review")
		return
	}

	c.Status(http.StatusNoContent)
}

func pagination(c *gin.Context) (limit, offset int) {
	limit = defaultPageSize
	if raw := c.Query("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			limit = v
		}
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	if raw := c.Query("offset"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v >= 0 {
			offset = v
		}
	}
	return limit, offset
}
