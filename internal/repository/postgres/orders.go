package postgres

import (
	"context"
	"database/sql"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aidosk/gameverse/internal/core/domain"
	"github.com/aidosk/gameverse/internal/core/port"
	"github.com/aidosk/gameverse/internal/repository"
)

const orderColumns = "id, user_id, status, total_price, created_at"

// OrderRepository implements port.OrderRepository using PostgreSQL.
type OrderRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewOrderRepository wires a PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{
		pool:    pool,
		exec:    pool,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// WithTx returns a repository instance operating within the supplied transaction.
func (r *OrderRepository) WithTx(tx pgx.Tx) *OrderRepository {
	if tx == nil {
		return r
	}
	return &OrderRepository{
		pool:    r.pool,
		exec:    tx,
		builder: r.builder,
	}
}

// Create inserts a new order row. Line items are inserted separately.
func (r *OrderRepository) Create(ctx context.Context, order domain.Order) error {
	stmt, args, err := r.builder.Insert("gameverse.orders").
		Columns("id", "user_id", "status", "total_price", "created_at").
		Values(order.ID, order.UserID, order.Status, order.TotalPrice, order.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert order sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	return nil
}

// CreateItems inserts order line items in a single statement.
func (r *OrderRepository) CreateItems(ctx context.Context, items []domain.OrderItem) error {
	if len(items) == 0 {
		return nil
	}

	query := r.builder.Insert("gameverse.order_items").
		Columns("id", "order_id", "game_id", "quantity", "price_at_purchase")

	for _, item := range items {
		query = query.Values(item.ID, item.OrderID, item.GameID, item.Quantity, item.PriceAtPurchase)
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build insert order items sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert order items: %w", err)
	}

	return nil
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var order domain.Order
	if err := row.Scan(
		&order.ID,
		&order.UserID,
		&order.Status,
		&order.TotalPrice,
		&order.CreatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan order: %w", err)
	}
	return &order, nil
}

// GetByID retrieves an order by identifier, without its items.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	stmt, args, err := r.builder.Select(orderColumns).
		From("gameverse.orders").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select order sql: %w", err)
	}

	return scanOrder(r.exec.QueryRow(ctx, stmt, args...))
}

// LockByID selects the order row FOR UPDATE inside the current transaction.
func (r *OrderRepository) LockByID(ctx context.Context, id string) (*domain.Order, error) {
	stmt, args, err := r.builder.Select(orderColumns).
		From("gameverse.orders").
		Where(squirrel.Eq{"id": id}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build lock order sql: %w", err)
	}

	return scanOrder(r.exec.QueryRow(ctx, stmt, args...))
}

// ListItems returns the line items of an order.
func (r *OrderRepository) ListItems(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	stmt, args, err := r.builder.Select("id", "order_id", "game_id", "quantity", "price_at_purchase").
		From("gameverse.order_items").
		Where(squirrel.Eq{"order_id": orderID}).
		OrderBy("game_id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list order items sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query order items: %w", err)
	}
	defer rows.Close()

	items := make([]domain.OrderItem, 0)
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.GameID, &item.Quantity, &item.PriceAtPurchase); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order items: %w", err)
	}

	return items, nil
}

// List returns orders with optional filtering and pagination.
func (r *OrderRepository) List(ctx context.Context, filter port.OrderFilter) ([]domain.Order, error) {
	query := r.builder.Select(orderColumns).
		From("gameverse.orders").
		OrderBy("created_at DESC")

	if filter.UserID != "" {
		query = query.Where(squirrel.Eq{"user_id": filter.UserID})
	}

	if filter.Status != "" {
		query = query.Where(squirrel.Eq{"status": filter.Status})
	}

	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}

	if filter.Offset > 0 {
		query = query.Offset(uint64(filter.Offset))
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list orders sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	orders := make([]domain.Order, 0)
	for rows.Next() {
		var order domain.Order
		if err := rows.Scan(
			&order.ID,
			&order.UserID,
			&order.Status,
			&order.TotalPrice,
			&order.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}

	return orders, nil
}

// Count returns the total number of orders.
func (r *OrderRepository) Count(ctx context.Context) (int, error) {
	stmt, args, err := r.builder.Select("COUNT(*)").
		From("gameverse.orders").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count orders sql: %w", err)
	}

	var count int64
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("scan orders count: %w", err)
	}

	return int(count), nil
}

// UpdateStatus updates the status field for an order.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	stmt, args, err := r.builder.Update("gameverse.orders").
		Set("status", status).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update order status sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// ListLibrary returns the purchased games for a user from non-cancelled
// orders, most recently acquired first.
func (r *OrderRepository) ListLibrary(ctx context.Context, userID string) ([]domain.LibraryEntry, error) {
	stmt, args, err := r.builder.Select(
		"g.id", "g.title", "g.category", "g.price", "g.rating", "g.downloads", "g.image", "g.created_at",
		"o.created_at AS acquired_at",
	).
		From("gameverse.order_items oi").
		Join("gameverse.orders o ON o.id = oi.order_id").
		Join("gameverse.games g ON g.id = oi.game_id").
		Where(squirrel.Eq{"o.user_id": userID}).
		Where(squirrel.NotEq{"o.status": domain.OrderStatusCancelled}).
		OrderBy("o.created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list library sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query library: %w", err)
	}
	defer rows.Close()

	entries := make([]domain.LibraryEntry, 0)
	seen := make(map[string]struct{})
	for rows.Next() {
		var (
			entry  domain.LibraryEntry
			rating sql.NullFloat64
			image  sql.NullString
		)

		if err := rows.Scan(
			&entry.Game.ID,
			&entry.Game.Title,
			&entry.Game.Category,
			&entry.Game.Price,
			&rating,
			&entry.Game.Downloads,
			&image,
			&entry.Game.CreatedAt,
			&entry.AcquiredAt,
		); err != nil {
			return nil, fmt.Errorf("scan library entry: %w", err)
		}

		if rating.Valid {
			val := rating.Float64
			entry.Game.Rating = &val
		}
		if image.Valid {
			entry.Game.Image = image.String
		}

		// A game bought in several orders appears once, at its most
		// recent acquisition.
		if _, dup := seen[entry.Game.ID]; dup {
			continue
		}
		seen[entry.Game.ID] = struct{}{}

		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate library: %w", err)
	}

	return entries, nil
}

// Summary aggregates order counts by status and completed revenue for the
// admin dashboard.
func (r *OrderRepository) Summary(ctx context.Context) (*port.OrderSummary, error) {
	stmt := `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'processing'),
		       COUNT(*) FILTER (WHERE status = 'pending'),
		       COUNT(*) FILTER (WHERE status = 'completed'),
		       COUNT(*) FILTER (WHERE status = 'cancelled'),
		       COALESCE(SUM(total_price) FILTER (WHERE status = 'completed'), 0)::text
		  FROM gameverse.orders
	`

	var summary port.OrderSummary
	if err := r.exec.QueryRow(ctx, stmt).Scan(
		&summary.Total,
		&summary.ProcessingCnt,
		&summary.PendingCnt,
		&summary.CompletedCnt,
		&summary.CancelledCnt,
		&summary.CompletedTotal,
	); err != nil {
		return nil, fmt.Errorf("scan orders summary: %w", err)
	}

	return &summary, nil
}

var _ port.OrderRepository = (*OrderRepository)(nil)
