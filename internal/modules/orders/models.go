package orders

import "time"

// Order lifecycle. Forward-only; the only path to paid is slip approval.
const (
	StatusPendingPayment = "pending_payment"
	StatusPendingReview  = "pending_review"
	StatusPaid           = "paid"
	StatusCancelled      = "cancelled"
	StatusProcessing     = "processing"
	StatusShipped        = "shipped"
	StatusCompleted      = "completed"
)

// Payment lifecycle.
const (
	PayUnpaid        = "unpaid"
	PayPendingVerify = "pending_verify"
	PayPaid          = "paid"
	PayFailed        = "failed"
	PayExpired       = "expired"
)

// Slip review states.
const (
	SlipPendingReview = "pending_review"
	SlipApproved      = "approved"
	SlipRejected      = "rejected"
)

type Order struct {
	ID          string `gorm:"type:char(36);primaryKey"`
	OrderNumber string `gorm:"type:varchar(32);not null;uniqueIndex:ux_orders_number"`
	CustomerID  string `gorm:"type:char(36);not null;index:ix_orders_customer"`

	// Customer snapshot, immutable after creation.
	CustomerName  string `gorm:"type:varchar(255);not null"`
	CustomerPhone string `gorm:"type:varchar(32);not null"`
	CustomerEmail string `gorm:"type:varchar(255);not null"`

	SubtotalSatang   int `gorm:"not null"`
	DiscountSatang   int `gorm:"not null;default:0"`
	ShippingSatang   int `gorm:"not null;default:0"`
	GrandTotalSatang int `gorm:"not null"`

	Status        string `gorm:"type:varchar(32);not null;index:ix_orders_status"`
	PaymentStatus string `gorm:"type:varchar(32);not null"`
	PaymentMethod string `gorm:"type:varchar(32);not null"`

	// Snapshotted at creation; merchant config changes never rewrite these.
	PaymentMerchantID string `gorm:"type:varchar(64);not null"`
	PaymentURI        string `gorm:"type:varchar(512);not null"`

	CouponCode *string `gorm:"type:varchar(64)"`

	PaidAt    *time.Time
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (Order) TableName() string { return "orders" }

type OrderItem struct {
	ID      string `gorm:"type:char(36);primaryKey"`
	OrderID string `gorm:"type:char(36);not null;index:ix_order_items_order"`

	ProductID string `gorm:"type:char(36);not null"`

	// Catalog snapshot so later edits don't rewrite order history.
	SKU             string `gorm:"type:varchar(64);not null"`
	Title           string `gorm:"type:varchar(255);not null"`
	UnitPriceSatang int    `gorm:"not null"`

	Qty             int `gorm:"not null"`
	LineTotalSatang int `gorm:"not null"`

	CreatedAt time.Time `gorm:"not null"`
}

func (OrderItem) TableName() string { return "order_items" }

type PaymentSlip struct {
	ID      string `gorm:"type:char(36);primaryKey"`
	OrderID string `gorm:"type:char(36);not null;index:ix_payment_slips_order"`

	FileKey string `gorm:"type:varchar(512);not null"`
	FileURL string `gorm:"type:varchar(512);not null"`

	Status     string  `gorm:"type:varchar(32);not null"`
	Note       *string `gorm:"type:varchar(500)"`
	ReviewerID *string `gorm:"type:char(36)"`

	UploadedAt time.Time `gorm:"not null"`
	ReviewedAt *time.Time
}

func (PaymentSlip) TableName() string { return "payment_slips" }

// OrderEvent is the append-only audit trail for status transitions.
type OrderEvent struct {
	ID          string    `gorm:"type:char(36);primaryKey"`
	OrderID     string    `gorm:"type:char(36);not null;index:ix_order_events_order"`
	ActorID     string    `gorm:"type:char(36);not null"`
	Action      string    `gorm:"type:varchar(32);not null"`
	FromStatus  string    `gorm:"type:varchar(32);not null"`
	ToStatus    string    `gorm:"type:varchar(32);not null"`
	Note        *string   `gorm:"type:varchar(500)"`
	CreatedAt   time.Time `gorm:"not null"`
}

func (OrderEvent) TableName() string { return "order_events" }
