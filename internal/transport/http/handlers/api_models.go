package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/aidosk/gameverse/internal/core/domain"
	"github.com/aidosk/gameverse/internal/core/port"
	"github.com/aidosk/gameverse/internal/usecase"
)

// ErrorResponse represents a generic error payload with trace ID for debugging.
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// NewErrorResponse creates an error response with trace ID from context
func NewErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	traceID, _ := c.Get("trace_id")
	traceIDStr, _ := traceID.(string)

	return ErrorResponse{
		Error:   errorMsg,
		TraceID: traceIDStr,
	}
}

// MessageResponse represents a simple message payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// RegisterRequest defines the account registration payload.
type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// LoginRequest defines the payload for the login endpoints.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AdminRegisterRequest defines the back-office registration payload.
type AdminRegisterRequest struct {
	Name      string `json:"name" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	SignupKey string `json:"signup_key" binding:"required"`
}

// LoginResponse describes the response returned for a successful login.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	UserID      string `json:"user_id"`
	Username    string `json:"username"`
	Role        string `json:"role"`
}

// UserPayload describes a storefront user in API responses.
type UserPayload struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Status       string    `json:"status"`
	Balance      string    `json:"balance"`
	ProfilePhoto *string   `json:"profile_photo,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// ProfileUpdateRequest carries editable profile fields. Absent fields are left unchanged.
type ProfileUpdateRequest struct {
	Username     *string `json:"username,omitempty"`
	Email        *string `json:"email,omitempty" binding:"omitempty,email"`
	ProfilePhoto *string `json:"profile_photo,omitempty"`
}

// ProfileResponse bundles the user with their most recent orders.
type ProfileResponse struct {
	User         UserPayload    `json:"user"`
	RecentOrders []OrderPayload `json:"recent_orders"`
}

// GamePayload describes a catalog entry in API responses.
type GamePayload struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Category  string    `json:"category"`
	Price     string    `json:"price"`
	Rating    *float64  `json:"rating,omitempty"`
	Downloads int64     `json:"downloads"`
	Image     string    `json:"image,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// GameListResponse wraps a catalog page.
type GameListResponse struct {
	Games []GamePayload `json:"games"`
	Total int           `json:"total"`
}

// GameDetailResponse bundles a game with its reviews.
type GameDetailResponse struct {
	Game    GamePayload     `json:"game"`
	Reviews []ReviewPayload `json:"reviews"`
}

// GameRequest defines the payload for creating or updating a catalog entry.
type GameRequest struct {
	Title     string   `json:"title" binding:"required"`
	Category  string   `json:"category" binding:"required"`
	Price     string   `json:"price" binding:"required"`
	Rating    *float64 `json:"rating,omitempty"`
	Downloads int64    `json:"downloads"`
	Image     string   `json:"image"`
}

// ReviewPayload describes a review in API responses.
type ReviewPayload struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	GameID    string    `json:"game_id"`
	Comment   string    `json:"comment,omitempty"`
	Rating    *float64  `json:"rating,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ReviewRequest defines the payload for submitting a review.
type ReviewRequest struct {
	Comment string   `json:"comment"`
	Rating  *float64 `json:"rating,omitempty"`
}

// CartItemRequest defines the payload for cart mutations.
type CartItemRequest struct {
	GameID string `json:"game_id" binding:"required"`
}

// CartQuantityRequest defines the payload for replacing a line's quantity.
type CartQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// CartLinePayload describes a materialized cart line.
type CartLinePayload struct {
	Game     GamePayload `json:"game"`
	Quantity int         `json:"quantity"`
	Subtotal string      `json:"subtotal"`
}

// CartResponse describes the materialized cart.
type CartResponse struct {
	Lines []CartLinePayload `json:"lines"`
	Total string            `json:"total"`
}

// OrderItemPayload describes a line of an order.
type OrderItemPayload struct {
	ID              string `json:"id"`
	GameID          string `json:"game_id"`
	Quantity        int    `json:"quantity"`
	PriceAtPurchase string `json:"price_at_purchase"`
}

// OrderPayload describes an order in API responses.
type OrderPayload struct {
	ID         string             `json:"id"`
	UserID     string             `json:"user_id"`
	Status     string             `json:"status"`
	TotalPrice string             `json:"total_price"`
	CreatedAt  time.Time          `json:"created_at"`
	Items      []OrderItemPayload `json:"items,omitempty"`
}

// OrderListResponse wraps a page of orders.
type OrderListResponse struct {
	Orders []OrderPayload `json:"orders"`
	Total  int            `json:"total"`
}

// OrderStatusRequest defines the payload for administrative status updates.
type OrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// LibraryEntryPayload describes a purchased game in the user's library.
type LibraryEntryPayload struct {
	Game       GamePayload `json:"game"`
	AcquiredAt time.Time   `json:"acquired_at"`
}

// LibraryResponse wraps the user's library.
type LibraryResponse struct {
	Entries []LibraryEntryPayload `json:"entries"`
}

// NotificationPayload describes a user notification.
type NotificationPayload struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

// NotificationListResponse wraps a user's notifications.
type NotificationListResponse struct {
	Notifications []NotificationPayload `json:"notifications"`
	Unread        int                   `json:"unread"`
}

// ResetRequestRequest defines the password reset initiation payload.
type ResetRequestRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetRequestResponse acknowledges a reset request. The body is identical
// whether or not the account exists.
type ResetRequestResponse struct {
	Message string `json:"message"`
	// SECURITY: ExpiresAt and DevCode are ONLY exposed in development mode
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	DevCode   *string    `json:"dev_code,omitempty"`
}

// ResetVerifyRequest defines the reset code verification payload.
type ResetVerifyRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required"`
}

// ResetCompleteRequest defines the final password reset payload.
type ResetCompleteRequest struct {
	Email           string `json:"email" binding:"required,email"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" binding:"required,eqfield=NewPassword"`
}

// BalanceAdjustRequest carries a signed decimal delta for a balance change.
type BalanceAdjustRequest struct {
	Delta string `json:"delta" binding:"required"`
}

// ChangePasswordRequest defines the authenticated password change payload.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" binding:"required,eqfield=NewPassword"`
}

// ActivityLogPayload describes an audit entry in API responses.
type ActivityLogPayload struct {
	ID         string    `json:"id"`
	AdminID    string    `json:"admin_id"`
	Action     string    `json:"action"`
	TargetType string    `json:"target_type"`
	TargetID   string    `json:"target_id"`
	Details    *string   `json:"details,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// ActivityListResponse wraps recent audit entries.
type ActivityListResponse struct {
	Entries []ActivityLogPayload `json:"entries"`
}

// OrderSummaryPayload aggregates order counts and revenue.
type OrderSummaryPayload struct {
	Total          int    `json:"total"`
	Processing     int    `json:"processing"`
	Pending        int    `json:"pending"`
	Completed      int    `json:"completed"`
	Cancelled      int    `json:"cancelled"`
	CompletedTotal string `json:"completed_total"`
}

// DashboardResponse describes the back-office landing payload.
type DashboardResponse struct {
	UserCount int                  `json:"user_count"`
	GameCount int                  `json:"game_count"`
	Orders    OrderSummaryPayload  `json:"orders"`
	Recent    []ActivityLogPayload `json:"recent_activity"`
}

// UserListResponse wraps an administrative user listing.
type UserListResponse struct {
	Users []UserPayload `json:"users"`
	Total int           `json:"total"`
}

// HealthResponse describes the service health payload.
type HealthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
	Timestamp time.Time `json:"timestamp"`
}

// ReadyResponse describes readiness probe results with dependency checks.
type ReadyResponse struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

func newUserPayload(user domain.User) UserPayload {
	return UserPayload{
		ID:           user.ID,
		Username:     user.Username,
		Email:        user.Email,
		Status:       string(user.Status),
		Balance:      user.Balance.StringFixed(2),
		ProfilePhoto: user.ProfilePhoto,
		CreatedAt:    user.CreatedAt,
	}
}

func newGamePayload(game domain.Game) GamePayload {
	return GamePayload{
		ID:        game.ID,
		Title:     game.Title,
		Category:  game.Category,
		Price:     game.Price.StringFixed(2),
		Rating:    game.Rating,
		Downloads: game.Downloads,
		Image:     game.Image,
		CreatedAt: game.CreatedAt,
	}
}

func newGamePayloads(games []domain.Game) []GamePayload {
	payloads := make([]GamePayload, 0, len(games))
	for _, game := range games {
		payloads = append(payloads, newGamePayload(game))
	}
	return payloads
}

func newReviewPayload(review domain.Review) ReviewPayload {
	return ReviewPayload{
		ID:        review.ID,
		UserID:    review.UserID,
		GameID:    review.GameID,
		Comment:   review.Comment,
		Rating:    review.Rating,
		CreatedAt: review.CreatedAt,
		UpdatedAt: review.UpdatedAt,
	}
}

func newReviewPayloads(reviews []domain.Review) []ReviewPayload {
	payloads := make([]ReviewPayload, 0, len(reviews))
	for _, review := range reviews {
		payloads = append(payloads, newReviewPayload(review))
	}
	return payloads
}

func newCartResponse(cart *domain.Cart) CartResponse {
	resp := CartResponse{
		Lines: make([]CartLinePayload, 0, len(cart.Lines)),
		Total: cart.Total.StringFixed(2),
	}
	for _, line := range cart.Lines {
		resp.Lines = append(resp.Lines, CartLinePayload{
			Game:     newGamePayload(line.Game),
			Quantity: line.Quantity,
			Subtotal: line.Subtotal.StringFixed(2),
		})
	}
	return resp
}

func newOrderPayload(order domain.Order) OrderPayload {
	payload := OrderPayload{
		ID:         order.ID,
		UserID:     order.UserID,
		Status:     string(order.Status),
		TotalPrice: order.TotalPrice.StringFixed(2),
		CreatedAt:  order.CreatedAt,
	}
	for _, item := range order.Items {
		payload.Items = append(payload.Items, OrderItemPayload{
			ID:              item.ID,
			GameID:          item.GameID,
			Quantity:        item.Quantity,
			PriceAtPurchase: item.PriceAtPurchase.StringFixed(2),
		})
	}
	return payload
}

func newOrderPayloads(orders []domain.Order) []OrderPayload {
	payloads := make([]OrderPayload, 0, len(orders))
	for _, order := range orders {
		payloads = append(payloads, newOrderPayload(order))
	}
	return payloads
}

func newNotificationPayloads(notifications []domain.Notification) ([]NotificationPayload, int) {
	payloads := make([]NotificationPayload, 0, len(notifications))
	unread := 0
	for _, n := range notifications {
		if !n.IsRead {
			unread++
		}
		payloads = append(payloads, NotificationPayload{
			ID:        n.ID,
			Message:   n.Message,
			IsRead:    n.IsRead,
			CreatedAt: n.CreatedAt,
		})
	}
	return payloads, unread
}

func newActivityPayloads(entries []domain.ActivityLog) []ActivityLogPayload {
	payloads := make([]ActivityLogPayload, 0, len(entries))
	for _, entry := range entries {
		payloads = append(payloads, ActivityLogPayload{
			ID:         entry.ID,
			AdminID:    entry.AdminID,
			Action:     entry.Action,
			TargetType: entry.TargetType,
			TargetID:   entry.TargetID,
			Details:    entry.Details,
			CreatedAt:  entry.CreatedAt,
		})
	}
	return payloads
}

func newOrderSummaryPayload(summary port.OrderSummary) OrderSummaryPayload {
	return OrderSummaryPayload{
		Total:          summary.Total,
		Processing:     summary.ProcessingCnt,
		Pending:        summary.PendingCnt,
		Completed:      summary.CompletedCnt,
		Cancelled:      summary.CancelledCnt,
		CompletedTotal: summary.CompletedTotal,
	}
}

func newLoginResponse(result *usecase.LoginResult) LoginResponse {
	return LoginResponse{
		AccessToken: result.Token,
		TokenType:   "Bearer",
		UserID:      result.UserID,
		Username:    result.Username,
		Role:        result.Role,
	}
}
