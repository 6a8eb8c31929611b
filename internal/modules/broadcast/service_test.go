package broadcast

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"kittisap.shop/app/internal/mailer"
	"kittisap.shop/app/internal/modules/subscribers"
	"kittisap.shop/app/internal/shared/apperr"
)

var errSMTPDown = errors.New("smtp dial failed: connection refused")

type memBroadcastStore struct {
	memRecipientLog
	mu        sync.Mutex
	messages  map[string]*BroadcastMessage
	finalized int
}

func newMemBroadcastStore() *memBroadcastStore {
	return &memBroadcastStore{messages: map[string]*BroadcastMessage{}}
}

func (m *memBroadcastStore) CreateMessage(ctx context.Context, msg *BroadcastMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *msg
	m.messages[msg.ID] = &cp
	return nil
}

func (m *memBroadcastStore) FinalizeCounts(ctx context.Context, id string, sent, failed int, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	msg, ok := m.messages[id]
	if !ok {
		return nil
	}
	msg.SentCount = sent
	msg.FailedCount = failed
	msg.CompletedAt = &at
	m.finalized++
	return nil
}

type memSubscriberSource struct {
	subs []subscribers.Subscriber
}

func (m *memSubscriberSource) ListActive(ctx context.Context) ([]subscribers.Subscriber, error) {
	var out []subscribers.Subscriber
	for _, s := range m.subs {
		if s.IsActive {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memSubscriberSource) ByID(ctx context.Context, id string) (subscribers.Subscriber, bool, error) {
	for _, s := range m.subs {
		if s.ID == id {
			return s, true, nil
		}
	}
	return subscribers.Subscriber{}, false, nil
}

func newBroadcastService(store *memBroadcastStore, src *memSubscriberSource, mail mailer.Service) *Service {
	d := NewDispatcher(4, mail, "no-reply@kittisap.shop", "Kittisap Shop", discardLogger())
	return NewService(store, src, d, discardLogger())
}

func TestSendAll(t *testing.T) {
	t.Parallel()

	store := newMemBroadcastStore()
	src := &memSubscriberSource{subs: makeSubscribers(10)}
	svc := newBroadcastService(store, src, &mailer.Mock{})

	res, err := svc.Send(context.Background(), SendInput{
		Mode:    ModeAll,
		Subject: "News",
		Body:    "Hello everyone",
	})
	require.NoError(t, err)
	require.Equal(t, 10, res.SentCount)
	require.Equal(t, 0, res.FailedCount)

	msg := store.messages[res.BroadcastID]
	require.NotNil(t, msg)
	require.Equal(t, 10, msg.SentCount)
	require.NotNil(t, msg.CompletedAt)
	require.Equal(t, 1, store.finalized)
}

func TestSendAllSkipsInactive(t *testing.T) {
	t.Parallel()

	subs := makeSubscribers(5)
	subs[1].IsActive = false
	subs[4].IsActive = false

	store := newMemBroadcastStore()
	svc := newBroadcastService(store, &memSubscriberSource{subs: subs}, &mailer.Mock{})

	res, err := svc.Send(context.Background(), SendInput{Mode: ModeAll, Subject: "S", Body: "B"})
	require.NoError(t, err)
	require.Equal(t, 3, res.SentCount)
}

func TestSendSingle(t *testing.T) {
	t.Parallel()

	subs := makeSubscribers(5)
	store := newMemBroadcastStore()
	svc := newBroadcastService(store, &memSubscriberSource{subs: subs}, &mailer.Mock{})

	res, err := svc.Send(context.Background(), SendInput{
		Mode:     ModeSingle,
		TargetID: "sub-2",
		Subject:  "Just for you",
		Body:     "B",
	})
	require.NoError(t, err)
	require.Equal(t, 1, res.SentCount)

	rows := store.byStatus(RecipientSent)
	require.Len(t, rows, 1)
	require.Equal(t, "sub2@example.com", rows[0].EmailSnapshot)
}

func TestSendSingleInactiveTarget(t *testing.T) {
	t.Parallel()

	subs := makeSubscribers(2)
	subs[0].IsActive = false

	store := newMemBroadcastStore()
	svc := newBroadcastService(store, &memSubscriberSource{subs: subs}, &mailer.Mock{})

	_, err := svc.Send(context.Background(), SendInput{
		Mode: ModeSingle, TargetID: "sub-0", Subject: "S", Body: "B",
	})
	require.Equal(t, CodeNoRecipients, apperr.Code(err))
}

func TestSendNoRecipients(t *testing.T) {
	t.Parallel()

	store := newMemBroadcastStore()
	svc := newBroadcastService(store, &memSubscriberSource{}, &mailer.Mock{})

	_, err := svc.Send(context.Background(), SendInput{Mode: ModeAll, Subject: "S", Body: "B"})
	require.Equal(t, CodeNoRecipients, apperr.Code(err))
	require.Empty(t, store.messages)
}

func TestSendValidation(t *testing.T) {
	t.Parallel()

	store := newMemBroadcastStore()
	svc := newBroadcastService(store, &memSubscriberSource{subs: makeSubscribers(1)}, &mailer.Mock{})

	_, err := svc.Send(context.Background(), SendInput{Mode: ModeAll, Subject: "   ", Body: "B"})
	require.Equal(t, "EMPTY_SUBJECT", apperr.Code(err))

	_, err = svc.Send(context.Background(), SendInput{Mode: "broadcast", Subject: "S", Body: "B"})
	require.Equal(t, "BAD_MODE", apperr.Code(err))

	_, err = svc.Send(context.Background(), SendInput{Mode: ModeSingle, Subject: "S", Body: "B"})
	require.Equal(t, "MISSING_TARGET", apperr.Code(err))
}

func TestSendRecordsRowEvenWhenEverySendFails(t *testing.T) {
	t.Parallel()

	store := newMemBroadcastStore()
	src := &memSubscriberSource{subs: makeSubscribers(4)}
	mock := &mailer.Mock{Err: errSMTPDown}
	svc := newBroadcastService(store, src, mock)

	res, err := svc.Send(context.Background(), SendInput{Mode: ModeAll, Subject: "S", Body: "B"})
	require.NoError(t, err)
	require.Equal(t, 0, res.SentCount)
	require.Equal(t, 4, res.FailedCount)

	// the broadcast row exists with its final (all-failed) counts
	msg := store.messages[res.BroadcastID]
	require.NotNil(t, msg)
	require.Equal(t, 4, msg.FailedCount)
	require.Len(t, store.byStatus(RecipientFailed), 4)
}
