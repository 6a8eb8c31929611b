package orders

import (
	"context"
	"time"
)

// Store is the persistence surface the orchestrator runs on. The gorm
// implementation lives in repo.go; tests run against an in-memory one.
type Store interface {
	// CreateOrder persists the order and its items as one unit. Returns
	// ErrOrderNumberTaken when the order_number unique index rejects it.
	CreateOrder(ctx context.Context, o *Order, items []OrderItem) error

	OrderNumberExists(ctx context.Context, number string) (bool, error)
	GetByNumber(ctx context.Context, number string) (Order, bool, error)
	ItemsByOrder(ctx context.Context, orderID string) ([]OrderItem, error)

	// AttachSlip inserts the slip, moves the order out of fromStatus into
	// pending_review/pending_verify and appends the audit event, atomically.
	AttachSlip(ctx context.Context, slip *PaymentSlip, fromStatus string, ev *OrderEvent) error

	SlipByID(ctx context.Context, slipID, orderID string) (PaymentSlip, bool, error)
	LatestPendingSlip(ctx context.Context, orderID string) (PaymentSlip, bool, error)

	// FinalizeReview applies the review verdict to the slip and the order in
	// one unit, guarded on the slip still being pending_review and the order
	// still being in fromStatus. Returns false when the guard did not match.
	FinalizeReview(ctx context.Context, in ReviewUpdate) (bool, error)

	// TransitionOrder is the optimistic status flip: applied only when the
	// order is still in fromStatus. paidAt is set when non-nil.
	TransitionOrder(ctx context.Context, orderID, fromStatus, toStatus, paymentStatus string, paidAt *time.Time) (bool, error)

	AppendEvent(ctx context.Context, ev *OrderEvent) error
}

type ReviewUpdate struct {
	SlipID     string
	OrderID    string
	SlipStatus string // approved|rejected
	ReviewerID string
	Note       *string
	ReviewedAt time.Time

	OrderFromStatus    string
	OrderToStatus      string
	OrderPaymentStatus string
	PaidAt             *time.Time
}
