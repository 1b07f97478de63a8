package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/aidosk/gameverse/internal/infra/security"
)

// CartSessionHeader carries the anonymous cart session identifier for
// unauthenticated shoppers.
const CartSessionHeader = "X-Cart-Session"

// ErrorResponse matches the handlers.ErrorResponse structure
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// newErrorResponse creates an error response with trace ID
func newErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	return ErrorResponse{
		Error:   errorMsg,
		TraceID: GetTraceID(c),
	}
}

// RequireAuth validates the Authorization header and extracts session claims.
// When roles are given the token's role claim must match one of them.
func RequireAuth(sessions *security.SessionManager, roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				newErrorResponse(c, "missing authorization header"))
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				newErrorResponse(c, "invalid authorization format: expected 'Bearer <token>'"))
			return
		}

		token := strings.TrimSpace(parts[1])
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				newErrorResponse(c, "missing access token"))
			return
		}

		claims, err := sessions.Verify(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				newErrorResponse(c, "invalid or expired token"))
			return
		}

		if len(roles) > 0 && !hasRole(claims.Role, roles) {
			c.AbortWithStatusJSON(http.StatusForbidden,
				newErrorResponse(c, "insufficient permissions"))
			return
		}

		c.Set(SubjectIDKey, claims.Subject)
		c.Set(SubjectRoleKey, claims.Role)
		c.Set("claims", claims)

		if reqCtx := GetRequestContext(c); reqCtx != nil {
			reqCtx.SubjectID = claims.Subject
		}

		c.Next()
	}
}

func hasRole(role string, allowed []string) bool {
	for _, a := range allowed {
		if role == a {
			return true
		}
	}
	return false
}

// GetSubjectID retrieves the authenticated principal's ID from context.
func GetSubjectID(c *gin.Context) (string, bool) {
	raw, exists := c.Get(SubjectIDKey)
	if !exists {
		return "", false
	}

	if id, ok := raw.(string); ok && id != "" {
		return id, true
	}

	return "", false
}

// CartSessionID resolves the identifier that scopes cart state. Authenticated
// shoppers use their user ID so the cart follows them across devices;
// anonymous shoppers supply a session identifier via the X-Cart-Session header.
func CartSessionID(c *gin.Context) (string, bool) {
	if id, ok := GetSubjectID(c); ok {
		return id, true
	}

	session := strings.TrimSpace(c.GetHeader(CartSessionHeader))
	if session == "" {
		return "", false
	}
	return session, true
}
