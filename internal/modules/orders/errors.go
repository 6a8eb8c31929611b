package orders

import "errors"

// Machine-readable codes surfaced through apperr.
const (
	CodeProductNotFound      = "PRODUCT_NOT_FOUND"
	CodeProductInactive      = "PRODUCT_INACTIVE"
	CodeInsufficientStock    = "INSUFFICIENT_STOCK"
	CodeCouponInvalid        = "COUPON_INVALID"
	CodeCouponConfigInvalid  = "COUPON_CONFIG_INVALID"
	CodePaymentConfigMissing = "PAYMENT_CONFIG_MISSING"
	CodeOrderNotFound        = "ORDER_NOT_FOUND"
	CodeOrderNotCancellable  = "ORDER_NOT_CANCELLABLE"
	CodeOrderNotAwaiting     = "ORDER_NOT_AWAITING_PAYMENT"
	CodeSlipNotFound         = "SLIP_NOT_FOUND"
	CodeSlipNotActionable    = "SLIP_NOT_ACTIONABLE"
	CodeSlipEmpty            = "SLIP_EMPTY"
	CodeSlipTooLarge         = "SLIP_TOO_LARGE"
	CodeSlipBadType          = "SLIP_UNSUPPORTED_TYPE"
	CodeInvalidTransition    = "INVALID_TRANSITION"
)

var (
	ErrInvalidTransition = errors.New("invalid order status transition")
	ErrNotActionable     = errors.New("order not actionable")

	// ErrOrderNumberTaken: the unique index on order_number rejected the
	// insert. The orchestrator regenerates the number and retries once.
	ErrOrderNumberTaken = errors.New("order number already taken")
)
