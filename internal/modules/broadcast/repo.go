package broadcast

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Repo struct{ db *gorm.DB }

func NewRepo(db *gorm.DB) *Repo { return &Repo{db: db} }

func (r *Repo) CreateMessage(ctx context.Context, msg *BroadcastMessage) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

func (r *Repo) AppendRecipient(ctx context.Context, rec *BroadcastRecipient) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *Repo) FinalizeCounts(ctx context.Context, id string, sent, failed int, at time.Time) error {
	return r.db.WithContext(ctx).Model(&BroadcastMessage{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"sent_count":   sent,
			"failed_count": failed,
			"completed_at": at,
		}).Error
}

func (r *Repo) List(ctx context.Context, limit int) ([]BroadcastMessage, error) {
	if limit < 1 || limit > 100 {
		limit = 30
	}
	var out []BroadcastMessage
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

func (r *Repo) Recipients(ctx context.Context, broadcastID string) ([]BroadcastRecipient, error) {
	var out []BroadcastRecipient
	err := r.db.WithContext(ctx).
		Order("created_at ASC").
		Find(&out, "broadcast_id = ?", broadcastID).Error
	return out, err
}
