package inventory

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var ErrInsufficientStock = errors.New("insufficient stock")

// Gateway wraps the two stock-adjustment entry points in the database:
// reserve_stock(product_id, qty) and release_stock(product_id, qty). The
// decrement is a single conditional UPDATE inside the function, so two
// concurrent checkouts for the last unit cannot both succeed.
type Gateway struct {
	db  *gorm.DB
	log *slog.Logger
}

func NewGateway(db *gorm.DB, log *slog.Logger) *Gateway {
	return &Gateway{db: db, log: log}
}

// Reserve atomically decrements stock. Returns ErrInsufficientStock when the
// conditional decrement did not apply.
//
// Deployments that have not installed the SQL function degrade to a no-op
// success: stock was already range-checked against the catalog snapshot, so
// this loses oversell protection, not basic correctness. It is logged as a
// configuration gap every time it is taken.
func (g *Gateway) Reserve(ctx context.Context, productID string, qty int) error {
	var ok bool
	err := g.db.WithContext(ctx).
		Raw("SELECT reserve_stock(?, ?)", productID, qty).
		Scan(&ok).Error
	if err != nil {
		if isUndefinedFunction(err) {
			g.log.Warn("reserve_stock function not deployed; skipping atomic reserve",
				slog.String("product_id", productID), slog.Int("qty", qty))
			return nil
		}
		return err
	}
	if !ok {
		return ErrInsufficientStock
	}
	return nil
}

// Release is the compensating increment. Best-effort: callers log failures
// and keep going, they never mask the original error with a release error.
func (g *Gateway) Release(ctx context.Context, productID string, qty int) error {
	err := g.db.WithContext(ctx).
		Exec("SELECT release_stock(?, ?)", productID, qty).Error
	if err != nil && isUndefinedFunction(err) {
		g.log.Warn("release_stock function not deployed; skipping release",
			slog.String("product_id", productID), slog.Int("qty", qty))
		return nil
	}
	return err
}

// 42883: undefined_function
func isUndefinedFunction(err error) bool {
	var pe *pgconn.PgError
	if errors.As(err, &pe) {
		return pe.Code == "42883"
	}
	return false
}
