package domain

import "github.com/shopspring/decimal"

// CartLine is a materialized cart entry joined against the live catalog.
type CartLine struct {
	Game     Game
	Quantity int
	Subtotal decimal.Decimal
}

// Cart is the materialized view of a session's cart. Totals are recomputed
// from live catalog prices on every materialization; prices are only
// snapshotted at checkout.
type Cart struct {
	Lines []CartLine
	Total decimal.Decimal
}

// Empty reports whether the cart holds no lines.
func (c Cart) Empty() bool {
	return len(c.Lines) == 0
}
