package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	pgxmock "github.com/pashagolub/pgxmock/v2"
	"github.com/shopspring/decimal"

	"github.com/aidosk/gameverse/internal/core/domain"
	"github.com/aidosk/gameverse/internal/repository"
)

const (
	lockUserSQL    = "SELECT id, username, email, password_hash, status, balance, profile_photo, created_at FROM gameverse.users WHERE id = $1 FOR UPDATE"
	selectGamesSQL = "SELECT id, title, category, price, rating, downloads, image, created_at FROM gameverse.games WHERE id IN ($1,$2)"
	insertOrderSQL = "INSERT INTO gameverse.orders (id,user_id,status,total_price,created_at) VALUES ($1,$2,$3,$4,$5)"
	insertItemsSQL = "INSERT INTO gameverse.order_items (id,order_id,game_id,quantity,price_at_purchase) VALUES ($1,$2,$3,$4,$5),($6,$7,$8,$9,$10)"
	adjustSQL      = "UPDATE gameverse.users SET balance = balance + $1 WHERE id = $2"
	lockOrderSQL   = "SELECT id, user_id, status, total_price, created_at FROM gameverse.orders WHERE id = $1 FOR UPDATE"
	updateOrderSQL = "UPDATE gameverse.orders SET status = $1 WHERE id = $2"
)

// decimalArg matches a decimal argument by numeric value rather than by
// internal representation.
type decimalArg struct {
	want decimal.Decimal
}

func (a decimalArg) Match(v any) bool {
	d, ok := v.(decimal.Decimal)
	return ok && d.Equal(a.want)
}

func money(t *testing.T, v string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(v)
	if err != nil {
		t.Fatalf("parse decimal %q: %v", v, err)
	}
	return d
}

func newPurchaseStoreForTest(t *testing.T) (*PurchaseStore, pgxmock.PgxPoolIface) {
	t.Helper()

	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherEqual))
	if err != nil {
		t.Fatalf("new mock pool: %v", err)
	}
	t.Cleanup(mock.Close)

	builder := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	store := &PurchaseStore{
		store:  &Store{pool: mock},
		users:  &UserRepository{exec: mock, builder: builder},
		games:  &GameRepository{exec: mock, builder: builder},
		orders: &OrderRepository{exec: mock, builder: builder},
	}
	return store, mock
}

func expectLockedUser(mock pgxmock.PgxPoolIface, userID string, balance decimal.Decimal) {
	rows := mock.NewRows([]string{"id", "username", "email", "password_hash", "status", "balance", "profile_photo", "created_at"}).
		AddRow(userID, "ada", "ada@example.com", "hash", domain.AccountStatusActive, balance, nil, time.Now().UTC())
	mock.ExpectQuery(lockUserSQL).WithArgs(userID).WillReturnRows(rows)
}

func TestPurchaseStorePurchase(t *testing.T) {
	store, mock := newPurchaseStoreForTest(t)

	userID := "user-1"
	at := time.Date(2026, time.March, 14, 9, 30, 0, 0, time.UTC)

	mock.ExpectBegin()
	expectLockedUser(mock, userID, money(t, "100.00"))

	gameRows := mock.NewRows([]string{"id", "title", "category", "price", "rating", "downloads", "image", "created_at"}).
		AddRow("game-a", "Starfall", "rpg", money(t, "24.99"), nil, int64(120), nil, time.Now().UTC()).
		AddRow("game-b", "Voidrun", "action", money(t, "49.99"), nil, int64(80), nil, time.Now().UTC())
	mock.ExpectQuery(selectGamesSQL).WithArgs("game-a", "game-b").WillReturnRows(gameRows)

	mock.ExpectExec(insertOrderSQL).
		WithArgs(pgxmock.AnyArg(), userID, domain.OrderStatusProcessing, decimalArg{money(t, "74.98")}, at).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(insertItemsSQL).
		WithArgs(
			pgxmock.AnyArg(), pgxmock.AnyArg(), "game-a", 1, decimalArg{money(t, "24.99")},
			pgxmock.AnyArg(), pgxmock.AnyArg(), "game-b", 1, decimalArg{money(t, "49.99")},
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 2))
	mock.ExpectExec(adjustSQL).
		WithArgs(decimalArg{money(t, "-74.98")}, userID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	order, err := store.Purchase(context.Background(), userID, map[string]int{"game-a": 1, "game-b": 1}, at)
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}

	if order.UserID != userID {
		t.Errorf("order user = %q, want %q", order.UserID, userID)
	}
	if order.Status != domain.OrderStatusProcessing {
		t.Errorf("order status = %q, want %q", order.Status, domain.OrderStatusProcessing)
	}
	if !order.TotalPrice.Equal(money(t, "74.98")) {
		t.Errorf("order total = %s, want 74.98", order.TotalPrice)
	}
	if len(order.Items) != 2 {
		t.Fatalf("order items = %d, want 2", len(order.Items))
	}
	if order.Items[0].GameID != "game-a" || order.Items[1].GameID != "game-b" {
		t.Errorf("items out of order: %q, %q", order.Items[0].GameID, order.Items[1].GameID)
	}
	if !order.Items[1].PriceAtPurchase.Equal(money(t, "49.99")) {
		t.Errorf("price snapshot = %s, want 49.99", order.Items[1].PriceAtPurchase)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPurchaseStorePurchaseInsufficientFunds(t *testing.T) {
	store, mock := newPurchaseStoreForTest(t)

	userID := "user-1"

	mock.ExpectBegin()
	expectLockedUser(mock, userID, money(t, "10.00"))

	gameRows := mock.NewRows([]string{"id", "title", "category", "price", "rating", "downloads", "image", "created_at"}).
		AddRow("game-a", "Starfall", "rpg", money(t, "24.99"), nil, int64(120), nil, time.Now().UTC()).
		AddRow("game-b", "Voidrun", "action", money(t, "49.99"), nil, int64(80), nil, time.Now().UTC())
	mock.ExpectQuery(selectGamesSQL).WithArgs("game-a", "game-b").WillReturnRows(gameRows)
	mock.ExpectRollback()

	_, err := store.Purchase(context.Background(), userID, map[string]int{"game-a": 1, "game-b": 1}, time.Now())
	if !errors.Is(err, repository.ErrInsufficientFunds) {
		t.Fatalf("err = %v, want ErrInsufficientFunds", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPurchaseStorePurchaseMissingGame(t *testing.T) {
	store, mock := newPurchaseStoreForTest(t)

	userID := "user-1"

	mock.ExpectBegin()
	expectLockedUser(mock, userID, money(t, "100.00"))

	gameRows := mock.NewRows([]string{"id", "title", "category", "price", "rating", "downloads", "image", "created_at"}).
		AddRow("game-b", "Voidrun", "action", money(t, "49.99"), nil, int64(80), nil, time.Now().UTC())
	mock.ExpectQuery(selectGamesSQL).WithArgs("game-a", "game-b").WillReturnRows(gameRows)
	mock.ExpectRollback()

	_, err := store.Purchase(context.Background(), userID, map[string]int{"game-a": 1, "game-b": 1}, time.Now())
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPurchaseStorePurchaseRejectsBadQuantities(t *testing.T) {
	store, _ := newPurchaseStoreForTest(t)

	if _, err := store.Purchase(context.Background(), "user-1", nil, time.Now()); err == nil {
		t.Error("expected error for empty cart")
	}
	if _, err := store.Purchase(context.Background(), "user-1", map[string]int{"game-a": 0}, time.Now()); err == nil {
		t.Error("expected error for zero quantity")
	}
}

func TestPurchaseStoreCancelOrder(t *testing.T) {
	store, mock := newPurchaseStoreForTest(t)

	orderID := "order-1"
	total := money(t, "74.98")

	mock.ExpectBegin()
	orderRows := mock.NewRows([]string{"id", "user_id", "status", "total_price", "created_at"}).
		AddRow(orderID, "user-1", domain.OrderStatusProcessing, total, time.Now().UTC())
	mock.ExpectQuery(lockOrderSQL).WithArgs(orderID).WillReturnRows(orderRows)
	mock.ExpectExec(updateOrderSQL).
		WithArgs(domain.OrderStatusCancelled, orderID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(adjustSQL).
		WithArgs(decimalArg{total}, "user-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	cancelled, err := store.CancelOrder(context.Background(), orderID)
	if err != nil {
		t.Fatalf("cancel order: %v", err)
	}
	if cancelled.Status != domain.OrderStatusCancelled {
		t.Errorf("status = %q, want %q", cancelled.Status, domain.OrderStatusCancelled)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPurchaseStoreCancelOrderClosed(t *testing.T) {
	store, mock := newPurchaseStoreForTest(t)

	orderID := "order-1"

	mock.ExpectBegin()
	orderRows := mock.NewRows([]string{"id", "user_id", "status", "total_price", "created_at"}).
		AddRow(orderID, "user-1", domain.OrderStatusCompleted, money(t, "74.98"), time.Now().UTC())
	mock.ExpectQuery(lockOrderSQL).WithArgs(orderID).WillReturnRows(orderRows)
	mock.ExpectRollback()

	_, err := store.CancelOrder(context.Background(), orderID)
	if !errors.Is(err, repository.ErrOrderClosed) {
		t.Fatalf("err = %v, want ErrOrderClosed", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
