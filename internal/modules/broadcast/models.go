package broadcast

import "time"

const (
	ModeAll    = "all"
	ModeSingle = "single"
)

const (
	RecipientSent   = "sent"
	RecipientFailed = "failed"
)

type BroadcastMessage struct {
	ID       string `gorm:"type:char(36);primaryKey"`
	Mode     string `gorm:"type:varchar(16);not null"`
	Subject  string `gorm:"type:varchar(255);not null"`
	Headline string `gorm:"type:varchar(255);not null"`
	Body     string `gorm:"type:text;not null"`

	SentCount   int `gorm:"not null;default:0"`
	FailedCount int `gorm:"not null;default:0"`

	CreatedAt   time.Time `gorm:"not null"`
	CompletedAt *time.Time
}

func (BroadcastMessage) TableName() string { return "broadcast_messages" }

// BroadcastRecipient rows are append-only, one per attempted send. They are
// the source of truth for the final counts, not the transport call.
type BroadcastRecipient struct {
	ID            string  `gorm:"type:char(36);primaryKey"`
	BroadcastID   string  `gorm:"type:char(36);not null;index:ix_broadcast_recipients_broadcast"`
	SubscriberID  string  `gorm:"type:char(36);not null"`
	EmailSnapshot string  `gorm:"type:varchar(255);not null"`
	Status        string  `gorm:"type:varchar(16);not null"`
	ErrorMessage  *string `gorm:"type:varchar(500)"`

	CreatedAt time.Time `gorm:"not null"`
}

func (BroadcastRecipient) TableName() string { return "broadcast_recipients" }
