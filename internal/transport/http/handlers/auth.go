package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/aidosk/gameverse/internal/infra/security"
	"github.com/aidosk/gameverse/internal/usecase"
)

// AuthHandler exposes authentication endpoints for storefront users and admins.
type AuthHandler struct {
	auth *usecase.AuthService
}

// NewAuthHandler constructs AuthHandler.
func NewAuthHandler(auth *usecase.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// RegisterRoutes binds authentication routes, applying optional middleware ahead of login handlers.
func (h *AuthHandler) RegisterRoutes(r *gin.RouterGroup, loginMiddlewares ...gin.HandlerFunc) {
	r.POST("/register", h.register)
	r.POST("/login", append(append([]gin.HandlerFunc{}, loginMiddlewares...), h.login)...)
	r.POST("/admin/register", h.registerAdmin)
	r.POST("/admin/login", append(append([]gin.HandlerFunc{}, loginMiddlewares...), h.loginAdmin)...)
}

// Register godoc
// @Summary Register a new storefront account
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration payload"
// @Success 201 {object} UserPayload
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/auth/register [post]
func (h *AuthHandler) register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid registration payload"))
		return
	}

	user, err := h.auth.Register(c.Request.Context(), usecase.RegisterInput{
		Username: strings.TrimSpace(req.Username),
		Email:    strings.TrimSpace(req.Email),
		Password: req.Password,
	})
	if err != nil {
		if respondPasswordPolicyViolation(c, err) {
			return
		}
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrEmailTaken, Status: http.StatusConflict, Message: "email already registered"},
			{Err: usecase.ErrUsernameTaken, Status: http.StatusConflict, Message: "username already taken"},
		}, http.StatusInternalServerError, "failed to register user")
		return
	}

	c.JSON(http.StatusCreated, newUserPayload(*user))
}

// Login godoc
// @Summary Authenticate a storefront user
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login payload"
// @Success 200 {object} LoginResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 429 {object} middleware.ProblemDetails
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid login payload"))
		return
	}

	result, err := h.auth.Login(c.Request.Context(), strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrInvalidCredentials, Status: http.StatusUnauthorized, Message: "invalid credentials"},
			{Err: usecase.ErrAccountBanned, Status: http.StatusForbidden, Message: "account banned"},
		}, http.StatusInternalServerError, "authentication failed")
		return
	}

	c.JSON(http.StatusOK, newLoginResponse(result))
}

// respondPasswordPolicyViolation writes a 400 with the specific rule message
// when the error is a password policy violation.
func respondPasswordPolicyViolation(c *gin.Context, err error) bool {
	var policyErr *security.PasswordValidationError
	if !errors.As(err, &policyErr) {
		return false
	}
	c.JSON(http.StatusBadRequest, NewErrorResponse(c, policyErr.Error()))
	return true
}

// RegisterAdmin godoc
// @Summary Register a back-office admin
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body AdminRegisterRequest true "Admin registration payload"
// @Success 201 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/auth/admin/register [post]
func (h *AuthHandler) registerAdmin(c *gin.Context) {
	var req AdminRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid registration payload"))
		return
	}

	_, err := h.auth.RegisterAdmin(c.Request.Context(),
		strings.TrimSpace(req.Name), strings.TrimSpace(req.Email), req.Password, req.SignupKey)
	if err != nil {
		if respondPasswordPolicyViolation(c, err) {
			return
		}
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrAdminKeyInvalid, Status: http.StatusForbidden, Message: "invalid signup key"},
			{Err: usecase.ErrEmailTaken, Status: http.StatusConflict, Message: "email already registered"},
		}, http.StatusInternalServerError, "failed to register admin")
		return
	}

	c.JSON(http.StatusCreated, MessageResponse{Message: "admin registered"})
}

// LoginAdmin godoc
// @Summary Authenticate a back-office admin
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login payload"
// @Success 200 {object} LoginResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 429 {object} middleware.ProblemDetails
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/auth/admin/login [post]
func (h *AuthHandler) loginAdmin(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid login payload"))
		return
	}

	result, err := h.auth.LoginAdmin(c.Request.Context(), strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrInvalidCredentials, Status: http.StatusUnauthorized, Message: "invalid credentials"},
		}, http.StatusInternalServerError, "authentication failed")
		return
	}

	c.JSON(http.StatusOK, newLoginResponse(result))
}
