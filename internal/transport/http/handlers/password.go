package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/aidosk/gameverse/internal/usecase"
)

// PasswordHandler exposes the three-step password reset flow.
type PasswordHandler struct {
	reset      *usecase.PasswordResetService
	dispatcher NotificationDispatcher
	isDev      bool
}

// NewPasswordHandler constructs PasswordHandler.
func NewPasswordHandler(reset *usecase.PasswordResetService, dispatcher NotificationDispatcher, isDev bool) *PasswordHandler {
	if dispatcher == nil {
		dispatcher = noopDispatcher{}
	}
	return &PasswordHandler{reset: reset, dispatcher: dispatcher, isDev: isDev}
}

// RegisterRoutes binds the reset flow routes, applying optional middleware
// ahead of the request step.
func (h *PasswordHandler) RegisterRoutes(r *gin.RouterGroup, requestMiddlewares ...gin.HandlerFunc) {
	r.POST("/request", append(append([]gin.HandlerFunc{}, requestMiddlewares...), h.requestReset)...)
	r.POST("/verify", h.verifyReset)
	r.POST("/complete", h.completeReset)
}

// resetRequestedMessage is the body returned for every reset request,
// known account or not, so the response never reveals whether the email
// is registered.
const resetRequestedMessage = "If the account exists, a reset code has been sent"

// RequestReset godoc
// @Summary Request a password reset code
// @Description Issues a fresh numeric code and invalidates any prior unused codes for the email. Always returns an accepted response to avoid account enumeration.
// @Tags Password
// @Accept json
// @Produce json
// @Param request body ResetRequestRequest true "Reset request payload"
// @Success 202 {object} ResetRequestResponse
// @Failure 400 {object} ErrorResponse
// @Failure 429 {object} middleware.ProblemDetails
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/password/reset/request [post]
func (h *PasswordHandler) requestReset(c *gin.Context) {
	var req ResetRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid reset payload"))
		return
	}

	result, err := h.reset.Request(c.Request.Context(), strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, usecase.ErrUserNotFound) {
			c.JSON(http.StatusAccepted, ResetRequestResponse{Message: resetRequestedMessage})
			return
		}
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to request password reset"))
		return
	}

	_ = h.dispatcher.SendPasswordResetCode(c.Request.Context(), PasswordResetNotification{
		Email:     result.Email,
		Code:      result.Code,
		ExpiresAt: result.ExpiresAt,
	})

	resp := ResetRequestResponse{Message: resetRequestedMessage}
	if h.isDev {
		code := result.Code
		expires := result.ExpiresAt
		resp.DevCode = &code
		resp.ExpiresAt = &expires
	}

	c.JSON(http.StatusAccepted, resp)
}

// VerifyReset godoc
// @Summary Verify a password reset code
// @Tags Password
// @Accept json
// @Produce json
// @Param request body ResetVerifyRequest true "Reset verify payload"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 410 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/password/reset/verify [post]
func (h *PasswordHandler) verifyReset(c *gin.Context) {
	var req ResetVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid verify payload"))
		return
	}

	err := h.reset.Verify(c.Request.Context(), strings.TrimSpace(req.Email), strings.TrimSpace(req.Code))
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrResetCodeInvalid, Status: http.StatusBadRequest, Message: "invalid reset code"},
			{Err: usecase.ErrResetCodeExpired, Status: http.StatusGone, Message: "reset code expired"},
		}, http.StatusInternalServerError, "failed to verify reset code")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "code verified"})
}

// CompleteReset godoc
// @Summary Complete a verified password reset
// @Tags Password
// @Accept json
// @Produce json
// @Param request body ResetCompleteRequest true "Reset complete payload"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/password/reset/complete [post]
func (h *PasswordHandler) completeReset(c *gin.Context) {
	var req ResetCompleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid reset payload"))
		return
	}

	err := h.reset.Complete(c.Request.Context(), strings.TrimSpace(req.Email), req.NewPassword)
	if err != nil {
		if respondPasswordPolicyViolation(c, err) {
			return
		}
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrResetNotVerified, Status: http.StatusForbidden, Message: "reset code not verified"},
			{Err: usecase.ErrUserNotFound, Status: http.StatusNotFound, Message: "no account for that email"},
		}, http.StatusInternalServerError, "failed to reset password")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "password updated"})
}
