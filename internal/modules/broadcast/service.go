package broadcast

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"kittisap.shop/app/internal/modules/subscribers"
	"kittisap.shop/app/internal/shared/apperr"
)

const CodeNoRecipients = "NO_RECIPIENTS"

// Store is the persistence surface for broadcasts.
type Store interface {
	RecipientLog
	CreateMessage(ctx context.Context, msg *BroadcastMessage) error
	FinalizeCounts(ctx context.Context, id string, sent, failed int, at time.Time) error
}

// SubscriberSource resolves the recipient set.
type SubscriberSource interface {
	ListActive(ctx context.Context) ([]subscribers.Subscriber, error)
	ByID(ctx context.Context, id string) (subscribers.Subscriber, bool, error)
}

type Service struct {
	store      Store
	subs       SubscriberSource
	dispatcher *Dispatcher
	log        *slog.Logger
	now        func() time.Time
}

func NewService(store Store, subs SubscriberSource, d *Dispatcher, log *slog.Logger) *Service {
	return &Service{store: store, subs: subs, dispatcher: d, log: log, now: time.Now}
}

type SendInput struct {
	Mode     string // all|single
	TargetID string // required when mode=single
	Subject  string
	Headline string
	Body     string
}

type SendResult struct {
	BroadcastID string
	SentCount   int
	FailedCount int
}

// Send resolves the recipient set, records the broadcast row up front (so a
// log exists even if every send fails), fans out across the worker pool and
// writes the final counts exactly once.
func (s *Service) Send(ctx context.Context, in SendInput) (SendResult, error) {
	if strings.TrimSpace(in.Subject) == "" {
		return SendResult{}, apperr.InvalidErr("EMPTY_SUBJECT", "Subject is required.", nil)
	}

	var recipients []subscribers.Subscriber
	switch in.Mode {
	case ModeAll:
		list, err := s.subs.ListActive(ctx)
		if err != nil {
			return SendResult{}, apperr.Wrap(err)
		}
		recipients = list
	case ModeSingle:
		if in.TargetID == "" {
			return SendResult{}, apperr.InvalidErr("MISSING_TARGET", "A target subscriber is required.", nil)
		}
		sub, ok, err := s.subs.ByID(ctx, in.TargetID)
		if err != nil {
			return SendResult{}, apperr.Wrap(err)
		}
		if ok && sub.IsActive {
			recipients = []subscribers.Subscriber{sub}
		}
	default:
		return SendResult{}, apperr.InvalidErr("BAD_MODE", "Mode must be all or single.", nil)
	}

	if len(recipients) == 0 {
		return SendResult{}, apperr.InvalidErr(CodeNoRecipients, "There is nobody to send to.", nil)
	}

	msg := BroadcastMessage{
		ID:        uuid.NewString(),
		Mode:      in.Mode,
		Subject:   strings.TrimSpace(in.Subject),
		Headline:  strings.TrimSpace(in.Headline),
		Body:      in.Body,
		CreatedAt: s.now(),
	}
	if err := s.store.CreateMessage(ctx, &msg); err != nil {
		return SendResult{}, apperr.Wrap(err)
	}

	out := s.dispatcher.Dispatch(ctx, msg, recipients, s.store)

	if err := s.store.FinalizeCounts(ctx, msg.ID, out.Sent, out.Failed, s.now()); err != nil {
		// Recipient rows already tell the full story; log and keep the result.
		s.log.Error("broadcast finalize counts failed",
			slog.String("broadcast_id", msg.ID), slog.Any("err", err))
	}

	return SendResult{BroadcastID: msg.ID, SentCount: out.Sent, FailedCount: out.Failed}, nil
}
