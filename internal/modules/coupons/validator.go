package coupons

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"gorm.io/gorm"
)

// ErrConfigInvalid: the coupon row itself is broken (unknown type, bad
// value). Operator-actionable, distinct from "not valid for this cart".
var ErrConfigInvalid = errors.New("coupon discount rule invalid")

// rejectedMsg is deliberately generic: we never reveal whether a code
// exists, is expired, or just misses the minimum spend.
const rejectedMsg = "This code cannot be applied to your order."

type Result struct {
	Valid            bool
	Code             string
	DiscountType     string
	DiscountValue    float64
	DiscountSatang   int
	TotalAfterSatang int
	Message          string
}

type Service struct {
	db  *gorm.DB
	now func() time.Time
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db, now: time.Now}
}

// Validate resolves a code against the coupons table and prices it against
// the given subtotal. A missing/ineligible coupon is a Valid:false result,
// not an error; only storage failures and broken rules return errors.
func (s *Service) Validate(ctx context.Context, code string, subtotalSatang int) (Result, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return rejected(code), nil
	}

	var c Coupon
	err := s.db.WithContext(ctx).First(&c, "code = ?", code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return rejected(code), nil
	}
	if err != nil {
		return Result{}, err
	}

	return Apply(c, subtotalSatang, s.now())
}

// Apply prices an already-resolved coupon. Pure; exposed for the order
// orchestrator which validates inside its own flow.
func Apply(c Coupon, subtotalSatang int, now time.Time) (Result, error) {
	code := strings.ToUpper(strings.TrimSpace(c.Code))

	if !c.Active {
		return rejected(code), nil
	}
	if c.ExpiresAt != nil && c.ExpiresAt.Before(now) {
		return rejected(code), nil
	}
	if subtotalSatang < c.MinSpendSatang {
		return rejected(code), nil
	}

	if math.IsNaN(c.DiscountValue) || math.IsInf(c.DiscountValue, 0) || c.DiscountValue < 0 {
		return Result{}, ErrConfigInvalid
	}

	var discount int
	switch c.DiscountType {
	case DiscountPercent:
		discount = int(math.Round(float64(subtotalSatang) * c.DiscountValue / 100))
	case DiscountFixed:
		// fixed value is in baht
		discount = int(math.Round(c.DiscountValue * 100))
	default:
		return Result{}, ErrConfigInvalid
	}

	if discount < 0 {
		discount = 0
	}
	if discount > subtotalSatang {
		discount = subtotalSatang
	}

	return Result{
		Valid:            true,
		Code:             code,
		DiscountType:     c.DiscountType,
		DiscountValue:    c.DiscountValue,
		DiscountSatang:   discount,
		TotalAfterSatang: subtotalSatang - discount,
	}, nil
}

func rejected(code string) Result {
	return Result{Valid: false, Code: code, Message: rejectedMsg}
}
