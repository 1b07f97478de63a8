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
	"github.com/aidosk/gameverse/internal/repository"
)

func mustDecimal(t *testing.T, v string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(v)
	if err != nil {
		t.Fatalf("parse decimal %q: %v", v, err)
	}
	return d
}

type checkoutFixture struct {
	service       *CheckoutService
	users         *fakeUserRepo
	carts         *fakeCartStore
	games         *fakeGameRepo
	orders        *fakeOrderRepo
	purchases     *fakePurchaseStore
	notifications *fakeNotificationRepo
	events        *fakeEventPublisher
}

func newCheckoutFixture(t *testing.T) *checkoutFixture {
	t.Helper()

	f := &checkoutFixture{
		users:         newFakeUserRepo(),
		carts:         newFakeCartStore(),
		games:         newFakeGameRepo(),
		orders:        newFakeOrderRepo(),
		purchases:     &fakePurchaseStore{},
		notifications: newFakeNotificationRepo(),
		events:        &fakeEventPublisher{},
	}
	f.service = NewCheckoutService(
		f.purchases, f.carts, f.users, f.games, f.orders,
		f.notifications, f.events, zaptest.NewLogger(t),
	)
	return f
}

func TestCheckoutServiceCheckout(t *testing.T) {
	f := newCheckoutFixture(t)

	f.users.users["user-1"] = domain.User{ID: "user-1", Status: domain.AccountStatusActive}
	f.games.games["game-a"] = domain.Game{ID: "game-a", Title: "Starfall", Price: mustDecimal(t, "24.99")}
	f.games.games["game-b"] = domain.Game{ID: "game-b", Title: "Voidrun", Price: mustDecimal(t, "49.99")}
	f.carts.carts["user-1"] = map[string]int{"game-a": 1, "game-b": 1}

	placed := &domain.Order{
		ID:         "order-1",
		UserID:     "user-1",
		Status:     domain.OrderStatusProcessing,
		TotalPrice: mustDecimal(t, "74.98"),
		Items: []domain.OrderItem{
			{ID: "item-1", OrderID: "order-1", GameID: "game-a", Quantity: 1, PriceAtPurchase: mustDecimal(t, "24.99")},
			{ID: "item-2", OrderID: "order-1", GameID: "game-b", Quantity: 1, PriceAtPurchase: mustDecimal(t, "49.99")},
		},
	}
	f.purchases.purchaseFn = func(context.Context, string, map[string]int, time.Time) (*domain.Order, error) {
		return placed, nil
	}

	order, err := f.service.Checkout(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if order.ID != "order-1" {
		t.Errorf("order id = %q, want order-1", order.ID)
	}

	if len(f.purchases.purchaseCalls) != 1 {
		t.Fatalf("purchase calls = %d, want 1", len(f.purchases.purchaseCalls))
	}
	if got := f.purchases.purchaseCalls[0].quantities["game-b"]; got != 1 {
		t.Errorf("purchase quantity for game-b = %d, want 1", got)
	}

	if len(f.carts.cleared) != 1 || f.carts.cleared[0] != "user-1" {
		t.Errorf("cart cleared sessions = %v, want [user-1]", f.carts.cleared)
	}

	if len(f.notifications.created) != 2 {
		t.Fatalf("notifications = %d, want one per line", len(f.notifications.created))
	}
	messages := []string{f.notifications.created[0].Message, f.notifications.created[1].Message}
	joined := strings.Join(messages, " | ")
	if !strings.Contains(joined, "Starfall") || !strings.Contains(joined, "Voidrun") {
		t.Errorf("notification messages missing game titles: %v", messages)
	}
	if !strings.Contains(joined, "49.99") {
		t.Errorf("notification messages missing price: %v", messages)
	}

	if len(f.events.placed) != 1 {
		t.Fatalf("order placed events = %d, want 1", len(f.events.placed))
	}
	event := f.events.placed[0]
	if event.OrderID != "order-1" || event.ItemCount != 2 {
		t.Errorf("event = %+v, want order-1 with 2 items", event)
	}
	if !event.Total.Equal(mustDecimal(t, "74.98")) {
		t.Errorf("event total = %s, want 74.98", event.Total)
	}
}

func TestCheckoutServiceCheckoutEmptyCart(t *testing.T) {
	f := newCheckoutFixture(t)
	f.users.users["user-1"] = domain.User{ID: "user-1", Status: domain.AccountStatusActive}

	_, err := f.service.Checkout(context.Background(), "user-1")
	if !errors.Is(err, ErrCartEmpty) {
		t.Fatalf("err = %v, want ErrCartEmpty", err)
	}
	if len(f.purchases.purchaseCalls) != 0 {
		t.Error("purchase must not run on an empty cart")
	}
}

func TestCheckoutServiceCheckoutBanned(t *testing.T) {
	f := newCheckoutFixture(t)
	f.users.users["user-1"] = domain.User{ID: "user-1", Status: domain.AccountStatusBanned}
	f.carts.carts["user-1"] = map[string]int{"game-a": 1}

	_, err := f.service.Checkout(context.Background(), "user-1")
	if !errors.Is(err, ErrAccountBanned) {
		t.Fatalf("err = %v, want ErrAccountBanned", err)
	}
}

func TestCheckoutServiceCheckoutUnknownUser(t *testing.T) {
	f := newCheckoutFixture(t)

	_, err := f.service.Checkout(context.Background(), "ghost")
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("err = %v, want ErrUserNotFound", err)
	}
}

func TestCheckoutServiceCheckoutInsufficientFunds(t *testing.T) {
	f := newCheckoutFixture(t)
	f.users.users["user-1"] = domain.User{ID: "user-1", Status: domain.AccountStatusActive}
	f.carts.carts["user-1"] = map[string]int{"game-a": 3}
	f.purchases.purchaseFn = func(context.Context, string, map[string]int, time.Time) (*domain.Order, error) {
		return nil, repository.ErrInsufficientFunds
	}

	_, err := f.service.Checkout(context.Background(), "user-1")
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("err = %v, want ErrInsufficientFunds", err)
	}

	if len(f.carts.cleared) != 0 {
		t.Error("cart must survive a failed checkout")
	}
	if len(f.notifications.created) != 0 {
		t.Error("no notifications on a failed checkout")
	}
}

func TestCheckoutServiceCancelAsAdmin(t *testing.T) {
	f := newCheckoutFixture(t)
	f.orders.orders["order-1"] = domain.Order{ID: "order-1", UserID: "user-1", Status: domain.OrderStatusProcessing}

	cancelled := &domain.Order{
		ID:         "order-1",
		UserID:     "user-1",
		Status:     domain.OrderStatusCancelled,
		TotalPrice: mustDecimal(t, "74.98"),
	}
	f.purchases.cancelFn = func(context.Context, string) (*domain.Order, error) {
		return cancelled, nil
	}

	order, err := f.service.CancelAsAdmin(context.Background(), "admin-1", "order-1")
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if order.Status != domain.OrderStatusCancelled {
		t.Errorf("status = %q, want cancelled", order.Status)
	}

	// The refund notification goes to the buyer, not the acting admin.
	if len(f.notifications.created) != 1 {
		t.Fatalf("notifications = %d, want 1", len(f.notifications.created))
	}
	if f.notifications.created[0].UserID != "user-1" {
		t.Errorf("notification user = %q, want user-1", f.notifications.created[0].UserID)
	}
	if !strings.Contains(f.notifications.created[0].Message, "74.98") {
		t.Errorf("refund notification missing amount: %q", f.notifications.created[0].Message)
	}

	if len(f.events.cancelled) != 1 {
		t.Fatalf("cancelled events = %d, want 1", len(f.events.cancelled))
	}
	if f.events.cancelled[0].CancelledBy != "admin-1" {
		t.Errorf("cancelled by = %q, want admin-1", f.events.cancelled[0].CancelledBy)
	}
}

func TestCheckoutServiceCancelClosedOrder(t *testing.T) {
	f := newCheckoutFixture(t)
	f.orders.orders["order-1"] = domain.Order{ID: "order-1", UserID: "user-1", Status: domain.OrderStatusCompleted}
	f.purchases.cancelFn = func(context.Context, string) (*domain.Order, error) {
		return nil, repository.ErrOrderClosed
	}

	_, err := f.service.CancelAsAdmin(context.Background(), "admin-1", "order-1")
	if !errors.Is(err, ErrOrderClosed) {
		t.Fatalf("err = %v, want ErrOrderClosed", err)
	}
}

func TestCheckoutServiceGetOrder(t *testing.T) {
	f := newCheckoutFixture(t)
	f.orders.orders["order-1"] = domain.Order{ID: "order-1", UserID: "user-1"}
	f.orders.items["order-1"] = []domain.OrderItem{
		{ID: "item-1", OrderID: "order-1", GameID: "game-a", Quantity: 2, PriceAtPurchase: mustDecimal(t, "9.99")},
	}

	order, err := f.service.GetOrder(context.Background(), "user-1", "order-1")
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if len(order.Items) != 1 || order.Items[0].GameID != "game-a" {
		t.Errorf("items = %+v, want the game-a line", order.Items)
	}

	if _, err := f.service.GetOrder(context.Background(), "user-2", "order-1"); !errors.Is(err, ErrNotOwner) {
		t.Errorf("foreign order err = %v, want ErrNotOwner", err)
	}
	if _, err := f.service.GetOrder(context.Background(), "user-1", "missing"); !errors.Is(err, ErrOrderNotFound) {
		t.Errorf("missing order err = %v, want ErrOrderNotFound", err)
	}
}
