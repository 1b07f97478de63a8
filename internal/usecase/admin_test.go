package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap/zaptest"

	"github.com/aidosk/gameverse/internal/core/domain"
	"github.com/aidosk/gameverse/internal/core/port"
)

type adminFixture struct {
	service  *AdminService
	users    *fakeUserRepo
	games    *fakeGameRepo
	orders   *fakeOrderRepo
	activity *fakeActivityLogRepo
	events   *fakeEventPublisher
	checkout *checkoutFixture
}

func newAdminFixture(t *testing.T) *adminFixture {
	t.Helper()

	checkout := newCheckoutFixture(t)
	f := &adminFixture{
		users:    newFakeUserRepo(),
		games:    newFakeGameRepo(),
		orders:   checkout.orders,
		activity: &fakeActivityLogRepo{},
		events:   &fakeEventPublisher{},
		checkout: checkout,
	}
	profiles := NewProfileService(f.users, f.orders, f.events, nil, 5, zaptest.NewLogger(t))
	f.service = NewAdminService(
		f.users, f.games, f.orders, f.activity,
		checkout.service, profiles, f.events, zaptest.NewLogger(t),
	)
	return f
}

func (f *adminFixture) lastAudit(t *testing.T) domain.ActivityLog {
	t.Helper()
	if len(f.activity.entries) == 0 {
		t.Fatal("no audit entry recorded")
	}
	return f.activity.entries[len(f.activity.entries)-1]
}

func TestAdminServiceBanUnbanUser(t *testing.T) {
	f := newAdminFixture(t)
	f.users.users["user-1"] = domain.User{ID: "user-1", Status: domain.AccountStatusActive}

	if err := f.service.BanUser(context.Background(), "admin-1", "user-1"); err != nil {
		t.Fatalf("ban: %v", err)
	}
	if f.users.users["user-1"].Status != domain.AccountStatusBanned {
		t.Error("user not banned")
	}

	entry := f.lastAudit(t)
	if entry.Action != ActionBanUser || entry.TargetType != domain.TargetUser || entry.TargetID != "user-1" {
		t.Errorf("audit entry = %+v, want ban_user on user-1", entry)
	}
	if entry.AdminID != "admin-1" {
		t.Errorf("audit admin = %q, want admin-1", entry.AdminID)
	}

	if err := f.service.UnbanUser(context.Background(), "admin-1", "user-1"); err != nil {
		t.Fatalf("unban: %v", err)
	}
	if f.users.users["user-1"].Status != domain.AccountStatusActive {
		t.Error("user not restored to active")
	}

	if len(f.events.adminActions) != 2 {
		t.Errorf("admin action events = %d, want 2", len(f.events.adminActions))
	}

	if err := f.service.BanUser(context.Background(), "admin-1", "ghost"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("ban unknown err = %v, want ErrUserNotFound", err)
	}
}

func TestAdminServiceDeleteUserAuditSurvives(t *testing.T) {
	f := newAdminFixture(t)
	f.users.users["user-1"] = domain.User{ID: "user-1", Username: "ada"}

	if err := f.service.DeleteUser(context.Background(), "admin-1", "user-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, ok := f.users.users["user-1"]; ok {
		t.Error("user row must be gone")
	}

	entry := f.lastAudit(t)
	if entry.Action != ActionDeleteUser {
		t.Errorf("audit action = %q, want delete_user", entry.Action)
	}
	if entry.Details == nil || !strings.Contains(*entry.Details, "ada") {
		t.Errorf("audit details = %v, want the deleted username", entry.Details)
	}
}

func TestAdminServiceUpdateUser(t *testing.T) {
	f := newAdminFixture(t)
	f.users.users["user-1"] = domain.User{ID: "user-1", Username: "ada", Email: "ada@example.com"}
	f.users.users["user-2"] = domain.User{ID: "user-2", Username: "grace", Email: "grace@example.com"}

	taken := "grace"
	if _, err := f.service.UpdateUser(context.Background(), "admin-1", "user-1", ProfileUpdateInput{
		Username: &taken,
	}); !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("taken username err = %v, want ErrUsernameTaken", err)
	}

	fresh := "ada.l"
	user, err := f.service.UpdateUser(context.Background(), "admin-1", "user-1", ProfileUpdateInput{
		Username: &fresh,
	})
	if err != nil {
		t.Fatalf("update user: %v", err)
	}
	if user.Username != "ada.l" {
		t.Errorf("username = %q, want ada.l", user.Username)
	}

	entry := f.lastAudit(t)
	if entry.Action != ActionUpdateUser || entry.TargetID != "user-1" {
		t.Errorf("audit = %+v, want update_user on user-1", entry)
	}
	if entry.Details == nil || !strings.Contains(*entry.Details, "ada.l") {
		t.Errorf("audit details = %v, want the new username", entry.Details)
	}
}

func TestAdminServiceAdjustBalance(t *testing.T) {
	f := newAdminFixture(t)
	f.users.users["user-1"] = domain.User{ID: "user-1", Balance: mustDecimal(t, "25.02")}

	if err := f.service.AdjustUserBalance(context.Background(), "admin-1", "user-1", decimal.Zero); err == nil {
		t.Fatal("zero delta must be rejected")
	}
	if err := f.service.AdjustUserBalance(context.Background(), "admin-1", "ghost", mustDecimal(t, "10.00")); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("unknown user err = %v, want ErrUserNotFound", err)
	}

	if err := f.service.AdjustUserBalance(context.Background(), "admin-1", "user-1", mustDecimal(t, "50.00")); err != nil {
		t.Fatalf("credit: %v", err)
	}
	if got := f.users.users["user-1"].Balance; !got.Equal(mustDecimal(t, "75.02")) {
		t.Errorf("balance = %s, want 75.02", got)
	}

	entry := f.lastAudit(t)
	if entry.Action != ActionAdjustBalance {
		t.Errorf("audit action = %q, want adjust_balance", entry.Action)
	}
	if entry.Details == nil || !strings.Contains(*entry.Details, "50.00") {
		t.Errorf("audit details = %v, want the delta", entry.Details)
	}
}

func TestAdminServiceCreateGame(t *testing.T) {
	f := newAdminFixture(t)

	game, err := f.service.CreateGame(context.Background(), "admin-1", GameInput{
		Title:    " Starfall ",
		Category: "rpg",
		Price:    mustDecimal(t, "24.99"),
	})
	if err != nil {
		t.Fatalf("create game: %v", err)
	}
	if game.Title != "Starfall" {
		t.Errorf("title = %q, want trimmed", game.Title)
	}

	entry := f.lastAudit(t)
	if entry.Action != ActionCreateGame || entry.TargetType != domain.TargetGame {
		t.Errorf("audit entry = %+v, want create_game", entry)
	}
	if entry.Details == nil || !strings.Contains(*entry.Details, "24.99") {
		t.Errorf("audit details = %v, want the price", entry.Details)
	}
}

func TestAdminServiceGameValidation(t *testing.T) {
	f := newAdminFixture(t)

	_, err := f.service.CreateGame(context.Background(), "admin-1", GameInput{Price: mustDecimal(t, "9.99")})
	if !errors.Is(err, ErrGameInvalid) {
		t.Errorf("missing title err = %v, want ErrGameInvalid", err)
	}

	_, err = f.service.CreateGame(context.Background(), "admin-1", GameInput{
		Title: "Starfall", Price: mustDecimal(t, "-1"),
	})
	if !errors.Is(err, ErrGameInvalid) {
		t.Errorf("negative price err = %v, want ErrGameInvalid", err)
	}

	bad := 5.5
	_, err = f.service.CreateGame(context.Background(), "admin-1", GameInput{
		Title: "Starfall", Price: mustDecimal(t, "9.99"), Rating: &bad,
	})
	if !errors.Is(err, ErrGameInvalid) {
		t.Errorf("out-of-range rating err = %v, want ErrGameInvalid", err)
	}

	if len(f.games.created) != 0 {
		t.Error("invalid input must not create a game")
	}
}

func TestAdminServiceUpdateOrderStatus(t *testing.T) {
	f := newAdminFixture(t)
	f.orders.orders["order-1"] = domain.Order{ID: "order-1", Status: domain.OrderStatusProcessing}

	if err := f.service.UpdateOrderStatus(context.Background(), "admin-1", "order-1", domain.OrderStatusCompleted); err != nil {
		t.Fatalf("update status: %v", err)
	}
	if f.orders.statusUpdates["order-1"] != domain.OrderStatusCompleted {
		t.Error("status not updated")
	}

	entry := f.lastAudit(t)
	if entry.Details == nil || !strings.Contains(*entry.Details, "from=processing") || !strings.Contains(*entry.Details, "to=completed") {
		t.Errorf("audit details = %v, want the transition", entry.Details)
	}
}

func TestAdminServiceUpdateOrderStatusRejectsCancellation(t *testing.T) {
	f := newAdminFixture(t)
	f.orders.orders["order-1"] = domain.Order{ID: "order-1", Status: domain.OrderStatusProcessing}

	err := f.service.UpdateOrderStatus(context.Background(), "admin-1", "order-1", domain.OrderStatusCancelled)
	if !errors.Is(err, ErrStatusTransitionInvalid) {
		t.Fatalf("err = %v, want ErrStatusTransitionInvalid", err)
	}

	err = f.service.UpdateOrderStatus(context.Background(), "admin-1", "order-1", domain.OrderStatus("shipped"))
	if !errors.Is(err, ErrStatusTransitionInvalid) {
		t.Fatalf("unknown status err = %v, want ErrStatusTransitionInvalid", err)
	}

	if len(f.orders.statusUpdates) != 0 {
		t.Error("rejected transitions must not touch the order")
	}
}

func TestAdminServiceUpdateOrderStatusTerminal(t *testing.T) {
	f := newAdminFixture(t)
	f.orders.orders["order-1"] = domain.Order{ID: "order-1", Status: domain.OrderStatusCompleted}

	err := f.service.UpdateOrderStatus(context.Background(), "admin-1", "order-1", domain.OrderStatusProcessing)
	if !errors.Is(err, ErrOrderClosed) {
		t.Fatalf("err = %v, want ErrOrderClosed", err)
	}
}

func TestAdminServiceCancelOrder(t *testing.T) {
	f := newAdminFixture(t)
	f.orders.orders["order-1"] = domain.Order{ID: "order-1", UserID: "user-1", Status: domain.OrderStatusProcessing}
	f.checkout.purchases.cancelFn = func(context.Context, string) (*domain.Order, error) {
		return &domain.Order{
			ID: "order-1", UserID: "user-1",
			Status: domain.OrderStatusCancelled, TotalPrice: mustDecimal(t, "59.99"),
		}, nil
	}

	if err := f.service.CancelOrder(context.Background(), "admin-1", "order-1"); err != nil {
		t.Fatalf("cancel order: %v", err)
	}

	entry := f.lastAudit(t)
	if entry.Action != ActionCancelOrder {
		t.Errorf("audit action = %q, want cancel_order", entry.Action)
	}
	if entry.Details == nil || !strings.Contains(*entry.Details, "refunded=59.99") {
		t.Errorf("audit details = %v, want the refunded amount", entry.Details)
	}

	// The buyer is told about the refund even when an admin cancels.
	if len(f.checkout.notifications.created) != 1 {
		t.Errorf("notifications = %d, want 1", len(f.checkout.notifications.created))
	}
}

func TestAdminServiceDashboard(t *testing.T) {
	f := newAdminFixture(t)
	f.users.users["user-1"] = domain.User{ID: "user-1"}
	f.users.users["user-2"] = domain.User{ID: "user-2"}
	f.games.games["game-a"] = domain.Game{ID: "game-a"}
	f.orders.summary = port.OrderSummary{Total: 3, CompletedCnt: 2, CompletedTotal: "109.97"}
	f.activity.entries = []domain.ActivityLog{
		{ID: "log-1", Action: ActionBanUser, CreatedAt: time.Now().Add(-time.Hour)},
		{ID: "log-2", Action: ActionCreateGame, CreatedAt: time.Now()},
	}

	dashboard, err := f.service.Dashboard(context.Background(), 10)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}

	if dashboard.UserCount != 2 || dashboard.GameCount != 1 {
		t.Errorf("counts = %d users / %d games, want 2/1", dashboard.UserCount, dashboard.GameCount)
	}
	if dashboard.Orders.CompletedTotal != "109.97" {
		t.Errorf("completed total = %q, want 109.97", dashboard.Orders.CompletedTotal)
	}
	if len(dashboard.Recent) != 2 || dashboard.Recent[0].ID != "log-2" {
		t.Errorf("recent = %+v, want newest first", dashboard.Recent)
	}
}
