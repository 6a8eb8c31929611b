package broadcast

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"kittisap.shop/app/internal/mailer"
	"kittisap.shop/app/internal/modules/subscribers"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type memRecipientLog struct {
	mu   sync.Mutex
	rows []BroadcastRecipient
	// failFor makes AppendRecipient fail for specific email snapshots.
	failFor map[string]error
}

func (m *memRecipientLog) AppendRecipient(ctx context.Context, rec *BroadcastRecipient) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failFor[rec.EmailSnapshot]; err != nil {
		return err
	}
	m.rows = append(m.rows, *rec)
	return nil
}

func (m *memRecipientLog) byStatus(status string) []BroadcastRecipient {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []BroadcastRecipient
	for _, r := range m.rows {
		if r.Status == status {
			out = append(out, r)
		}
	}
	return out
}

func makeSubscribers(n int) []subscribers.Subscriber {
	out := make([]subscribers.Subscriber, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, subscribers.Subscriber{
			ID:       fmt.Sprintf("sub-%d", i),
			FullName: fmt.Sprintf("Subscriber %d", i),
			Email:    fmt.Sprintf("sub%d@example.com", i),
			IsActive: true,
		})
	}
	return out
}

func testMessage() BroadcastMessage {
	return BroadcastMessage{
		ID:       "bc-1",
		Mode:     ModeAll,
		Subject:  "May promotions",
		Headline: "New teas are in",
		Body:     "Come have a look.",
	}
}

func TestDispatchAllDelivered(t *testing.T) {
	t.Parallel()

	mock := &mailer.Mock{}
	log := &memRecipientLog{}
	d := NewDispatcher(4, mock, "no-reply@kittisap.shop", "Kittisap Shop", discardLogger())

	out := d.Dispatch(context.Background(), testMessage(), makeSubscribers(25), log)

	require.Equal(t, 25, out.Sent)
	require.Equal(t, 0, out.Failed)
	require.Equal(t, 25, mock.SentCount())
	require.Len(t, log.byStatus(RecipientSent), 25)
}

func TestDispatchCountsAlwaysAddUp(t *testing.T) {
	t.Parallel()

	mock := &mailer.Mock{FailFor: map[string]error{
		"sub3@example.com":  errors.New("mailbox full"),
		"sub11@example.com": errors.New("connection refused"),
	}}
	log := &memRecipientLog{}
	d := NewDispatcher(6, mock, "no-reply@kittisap.shop", "Kittisap Shop", discardLogger())

	subs := makeSubscribers(20)
	out := d.Dispatch(context.Background(), testMessage(), subs, log)

	require.Equal(t, len(subs), out.Sent+out.Failed)
	require.Equal(t, 18, out.Sent)
	require.Equal(t, 2, out.Failed)

	failedRows := log.byStatus(RecipientFailed)
	require.Len(t, failedRows, 2)
	for _, r := range failedRows {
		require.NotNil(t, r.ErrorMessage)
		require.NotEmpty(t, *r.ErrorMessage)
	}
}

func TestDispatchLogWriteFailureCountsAsFailure(t *testing.T) {
	t.Parallel()

	mock := &mailer.Mock{}
	log := &memRecipientLog{failFor: map[string]error{
		"sub0@example.com": errors.New("insert failed"),
	}}
	d := NewDispatcher(2, mock, "no-reply@kittisap.shop", "Kittisap Shop", discardLogger())

	out := d.Dispatch(context.Background(), testMessage(), makeSubscribers(3), log)

	// the message went out but we cannot prove it; count it failed
	require.Equal(t, 2, out.Sent)
	require.Equal(t, 1, out.Failed)
	require.Equal(t, 3, mock.SentCount())
}

func TestDispatchSingleRecipient(t *testing.T) {
	t.Parallel()

	mock := &mailer.Mock{}
	log := &memRecipientLog{}
	d := NewDispatcher(6, mock, "no-reply@kittisap.shop", "Kittisap Shop", discardLogger())

	out := d.Dispatch(context.Background(), testMessage(), makeSubscribers(1), log)
	require.Equal(t, 1, out.Sent)
	require.Equal(t, 0, out.Failed)
}

func TestDispatchManyMoreRecipientsThanWorkers(t *testing.T) {
	t.Parallel()

	mock := &mailer.Mock{}
	log := &memRecipientLog{}
	d := NewDispatcher(3, mock, "no-reply@kittisap.shop", "Kittisap Shop", discardLogger())

	out := d.Dispatch(context.Background(), testMessage(), makeSubscribers(200), log)
	require.Equal(t, 200, out.Sent+out.Failed)
	require.Equal(t, 200, out.Sent)
}

func TestNewDispatcherDefaultsWorkers(t *testing.T) {
	t.Parallel()

	d := NewDispatcher(0, &mailer.Mock{}, "a@b.c", "", discardLogger())
	require.Equal(t, DefaultWorkers, d.workers)
}

func TestRenderEscapesHTML(t *testing.T) {
	t.Parallel()

	msg := testMessage()
	msg.Headline = `<script>alert("x")</script>`
	sub := subscribers.Subscriber{FullName: "A & B", Email: "ab@example.com"}

	html := renderHTML(msg, sub)
	require.NotContains(t, html, "<script>")
	require.Contains(t, html, "&lt;script&gt;")
	require.Contains(t, html, "A &amp; B")
}
