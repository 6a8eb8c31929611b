package orders

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type Repo struct{ db *gorm.DB }

func NewRepo(db *gorm.DB) *Repo { return &Repo{db: db} }

var errGuardMiss = errors.New("optimistic guard missed")

func (r *Repo) CreateOrder(ctx context.Context, o *Order, items []OrderItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(o).Error; err != nil {
			if isUniqueViolation(err) {
				return ErrOrderNumberTaken
			}
			return err
		}
		if len(items) == 0 {
			return nil
		}
		return tx.Create(&items).Error
	})
}

func (r *Repo) OrderNumberExists(ctx context.Context, number string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&Order{}).
		Where("order_number = ?", number).
		Count(&n).Error
	return n > 0, err
}

func (r *Repo) GetByNumber(ctx context.Context, number string) (Order, bool, error) {
	var o Order
	err := r.db.WithContext(ctx).First(&o, "order_number = ?", number).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Order{}, false, nil
	}
	if err != nil {
		return Order{}, false, err
	}
	return o, true, nil
}

func (r *Repo) ItemsByOrder(ctx context.Context, orderID string) ([]OrderItem, error) {
	var items []OrderItem
	err := r.db.WithContext(ctx).
		Order("created_at ASC").
		Find(&items, "order_id = ?", orderID).Error
	return items, err
}

func (r *Repo) AttachSlip(ctx context.Context, slip *PaymentSlip, fromStatus string, ev *OrderEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(slip).Error; err != nil {
			return err
		}

		res := tx.Model(&Order{}).
			Where("id = ? AND status = ?", slip.OrderID, fromStatus).
			Updates(map[string]any{
				"status":         StatusPendingReview,
				"payment_status": PayPendingVerify,
				"updated_at":     slip.UploadedAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != 1 {
			return ErrNotActionable
		}

		return tx.Create(ev).Error
	})
}

func (r *Repo) SlipByID(ctx context.Context, slipID, orderID string) (PaymentSlip, bool, error) {
	var s PaymentSlip
	err := r.db.WithContext(ctx).
		First(&s, "id = ? AND order_id = ?", slipID, orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return PaymentSlip{}, false, nil
	}
	if err != nil {
		return PaymentSlip{}, false, err
	}
	return s, true, nil
}

func (r *Repo) LatestPendingSlip(ctx context.Context, orderID string) (PaymentSlip, bool, error) {
	var s PaymentSlip
	err := r.db.WithContext(ctx).
		Where("order_id = ? AND status = ?", orderID, SlipPendingReview).
		Order("uploaded_at DESC").
		First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return PaymentSlip{}, false, nil
	}
	if err != nil {
		return PaymentSlip{}, false, err
	}
	return s, true, nil
}

func (r *Repo) FinalizeReview(ctx context.Context, in ReviewUpdate) (bool, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&PaymentSlip{}).
			Where("id = ? AND order_id = ? AND status = ?", in.SlipID, in.OrderID, SlipPendingReview).
			Updates(map[string]any{
				"status":      in.SlipStatus,
				"reviewer_id": in.ReviewerID,
				"note":        in.Note,
				"reviewed_at": in.ReviewedAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != 1 {
			return errGuardMiss
		}

		upd := map[string]any{
			"status":         in.OrderToStatus,
			"payment_status": in.OrderPaymentStatus,
			"updated_at":     in.ReviewedAt,
		}
		if in.PaidAt != nil {
			upd["paid_at"] = in.PaidAt
		}
		res = tx.Model(&Order{}).
			Where("id = ? AND status = ?", in.OrderID, in.OrderFromStatus).
			Updates(upd)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != 1 {
			return errGuardMiss
		}
		return nil
	})
	if errors.Is(err, errGuardMiss) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *Repo) TransitionOrder(ctx context.Context, orderID, fromStatus, toStatus, paymentStatus string, paidAt *time.Time) (bool, error) {
	upd := map[string]any{
		"status":         toStatus,
		"payment_status": paymentStatus,
		"updated_at":     time.Now(),
	}
	if paidAt != nil {
		upd["paid_at"] = paidAt
	}
	res := r.db.WithContext(ctx).Model(&Order{}).
		Where("id = ? AND status = ?", orderID, fromStatus).
		Updates(upd)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *Repo) AppendEvent(ctx context.Context, ev *OrderEvent) error {
	return r.db.WithContext(ctx).Create(ev).Error
}

// --- customer / admin listings ---

type ListByCustomerParams struct {
	CustomerID string
	Page       int
	PageSize   int
	Status     string // optional filter
}

type ListByCustomerItem struct {
	Order Order
	Count int
}

type ListByCustomerResult struct {
	Items []ListByCustomerItem
	Total int64
}

func (r *Repo) ListByCustomer(ctx context.Context, in ListByCustomerParams) (ListByCustomerResult, error) {
	page := in.Page
	if page < 1 {
		page = 1
	}
	size := in.PageSize
	if size < 1 || size > 100 {
		size = 20
	}

	q := r.db.WithContext(ctx).Model(&Order{}).
		Where("customer_id = ?", in.CustomerID)
	if status := strings.TrimSpace(in.Status); status != "" {
		q = q.Where("status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return ListByCustomerResult{}, err
	}

	var rows []Order
	if err := q.
		Order("created_at DESC").
		Limit(size).
		Offset((page - 1) * size).
		Find(&rows).Error; err != nil {
		return ListByCustomerResult{}, err
	}

	items := make([]ListByCustomerItem, len(rows))
	for i, o := range rows {
		var count int64
		if err := r.db.WithContext(ctx).Model(&OrderItem{}).
			Where("order_id = ?", o.ID).Count(&count).Error; err != nil {
			count = 0
		}
		items[i] = ListByCustomerItem{Order: o, Count: int(count)}
	}

	return ListByCustomerResult{Items: items, Total: total}, nil
}

type AdminListParams struct {
	Q        string
	Status   string
	Page     int
	PageSize int
}

type AdminListResult struct {
	Items []Order
	Total int64
}

func (r *Repo) AdminList(ctx context.Context, in AdminListParams) (AdminListResult, error) {
	page := in.Page
	if page < 1 {
		page = 1
	}
	size := in.PageSize
	if size < 1 || size > 100 {
		size = 30
	}

	base := r.db.WithContext(ctx).Model(&Order{})
	if status := strings.TrimSpace(in.Status); status != "" {
		base = base.Where("status = ?", status)
	}
	if q := strings.TrimSpace(in.Q); q != "" {
		like := "%" + q + "%"
		base = base.Where("(order_number LIKE ? OR customer_email LIKE ?)", like, like)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return AdminListResult{}, err
	}

	var items []Order
	if err := base.
		Order("created_at DESC").
		Limit(size).
		Offset((page - 1) * size).
		Find(&items).Error; err != nil {
		return AdminListResult{}, err
	}

	return AdminListResult{Items: items, Total: total}, nil
}

// AdminDetail loads an order with items, slips and its audit trail.
func (r *Repo) AdminDetail(ctx context.Context, orderNumber string) (Order, []OrderItem, []PaymentSlip, []OrderEvent, error) {
	o, ok, err := r.GetByNumber(ctx, orderNumber)
	if err != nil {
		return Order{}, nil, nil, nil, err
	}
	if !ok {
		return Order{}, nil, nil, nil, gorm.ErrRecordNotFound
	}
	items, err := r.ItemsByOrder(ctx, o.ID)
	if err != nil {
		return Order{}, nil, nil, nil, err
	}
	var slips []PaymentSlip
	if err := r.db.WithContext(ctx).
		Order("uploaded_at DESC").
		Find(&slips, "order_id = ?", o.ID).Error; err != nil {
		return Order{}, nil, nil, nil, err
	}
	var events []OrderEvent
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&events, "order_id = ?", o.ID).Error; err != nil {
		return Order{}, nil, nil, nil, err
	}
	return o, items, slips, events, nil
}

// 23505: unique_violation
func isUniqueViolation(err error) bool {
	var pe *pgconn.PgError
	if errors.As(err, &pe) {
		return pe.Code == "23505"
	}
	return false
}
