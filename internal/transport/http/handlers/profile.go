package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/aidosk/gameverse/internal/transport/http/middleware"
	"github.com/aidosk/gameverse/internal/usecase"
)

// ProfileHandler exposes the authenticated user's profile and library.
type ProfileHandler struct {
	profile *usecase.ProfileService
}

// NewProfileHandler constructs ProfileHandler.
func NewProfileHandler(profile *usecase.ProfileService) *ProfileHandler {
	return &ProfileHandler{profile: profile}
}

// RegisterRoutes binds profile routes. All require authentication.
func (h *ProfileHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("", h.get)
	r.PATCH("", h.update)
	r.PUT("/password", h.changePassword)
	r.GET("/library", h.library)
}

// Get godoc
// @Summary Fetch the caller's profile with recent orders
// @Tags Profile
// @Produce json
// @Success 200 {object} ProfileResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/profile [get]
func (h *ProfileHandler) get(c *gin.Context) {
	userID, ok := middleware.GetSubjectID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	profile, err := h.profile.Get(c.Request.Context(), userID)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrUserNotFound, Status: http.StatusNotFound, Message: "user not found"},
		}, http.StatusInternalServerError, "failed to fetch profile")
		return
	}

	c.JSON(http.StatusOK, ProfileResponse{
		User:         newUserPayload(profile.User),
		RecentOrders: newOrderPayloads(profile.RecentOrders),
	})
}

// Update godoc
// @Summary Update the caller's profile
// @Tags Profile
// @Accept json
// @Produce json
// @Param request body ProfileUpdateRequest true "Profile update payload"
// @Success 200 {object} UserPayload
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/profile [patch]
func (h *ProfileHandler) update(c *gin.Context) {
	userID, ok := middleware.GetSubjectID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req ProfileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid profile payload"))
		return
	}

	input := usecase.ProfileUpdateInput{ProfilePhoto: req.ProfilePhoto}
	if req.Username != nil {
		trimmed := strings.TrimSpace(*req.Username)
		input.Username = &trimmed
	}
	if req.Email != nil {
		trimmed := strings.TrimSpace(*req.Email)
		input.Email = &trimmed
	}

	user, err := h.profile.Update(c.Request.Context(), userID, input)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrUserNotFound, Status: http.StatusNotFound, Message: "user not found"},
			{Err: usecase.ErrEmailTaken, Status: http.StatusConflict, Message: "email already registered"},
			{Err: usecase.ErrUsernameTaken, Status: http.StatusConflict, Message: "username already taken"},
		}, http.StatusInternalServerError, "failed to update profile")
		return
	}

	c.JSON(http.StatusOK, newUserPayload(*user))
}

// ChangePassword godoc
// @Summary Change the caller's password
// @Tags Profile
// @Accept json
// @Produce json
// @Param request body ChangePasswordRequest true "Password change payload"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/profile/password [put]
func (h *ProfileHandler) changePassword(c *gin.Context) {
	userID, ok := middleware.GetSubjectID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "new password and confirmation must match"))
		return
	}

	err := h.profile.ChangePassword(c.Request.Context(), userID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		if respondPasswordPolicyViolation(c, err) {
			return
		}
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrUserNotFound, Status: http.StatusNotFound, Message: "user not found"},
			{Err: usecase.ErrInvalidCredentials, Status: http.StatusBadRequest, Message: "current password is incorrect"},
		}, http.StatusInternalServerError, "failed to change password")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "password changed"})
}

// Library godoc
// @Summary List the caller's purchased games
// @Tags Profile
// @Produce json
// @Success 200 {object} LibraryResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/profile/library [get]
func (h *ProfileHandler) library(c *gin.Context) {
	userID, ok := middleware.GetSubjectID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	entries, err := h.profile.Library(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to list library"))
		return
	}

	resp := LibraryResponse{Entries: make([]LibraryEntryPayload, 0, len(entries))}
	for _, entry := range entries {
		resp.Entries = append(resp.Entries, LibraryEntryPayload{
			Game:       newGamePayload(entry.Game),
			AcquiredAt: entry.AcquiredAt,
		})
	}

	c.JSON(http.StatusOK, resp)
}
