package broadcast

import (
	"context"
	"html"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"kittisap.shop/app/internal/mailer"
	"kittisap.shop/app/internal/modules/subscribers"
)

const DefaultWorkers = 6

// RecipientLog records one row per attempted send.
type RecipientLog interface {
	AppendRecipient(ctx context.Context, rec *BroadcastRecipient) error
}

// Dispatcher fans a message out across a fixed-size worker pool. One slow or
// failing recipient only occupies its own worker; there are no retries.
type Dispatcher struct {
	workers int
	mail    mailer.Service
	from    mailer.Email // From/FromName template
	log     *slog.Logger
}

func NewDispatcher(workers int, mail mailer.Service, fromAddr, fromName string, log *slog.Logger) *Dispatcher {
	if workers < 1 {
		workers = DefaultWorkers
	}
	return &Dispatcher{
		workers: workers,
		mail:    mail,
		from:    mailer.Email{From: fromAddr, FromName: fromName},
		log:     log,
	}
}

type Outcome struct {
	Sent   int
	Failed int
}

// Dispatch sends msg to every recipient and logs one BroadcastRecipient row
// per attempt. A transport success whose log write fails is counted as a
// failure: the recipient log is the source of truth, not the send call.
func (d *Dispatcher) Dispatch(ctx context.Context, msg BroadcastMessage, recipients []subscribers.Subscriber, store RecipientLog) Outcome {
	jobs := make(chan subscribers.Subscriber)
	var sent, failed atomic.Int64

	var wg sync.WaitGroup
	for w := 0; w < d.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for sub := range jobs {
				if d.deliver(ctx, msg, sub, store) {
					sent.Add(1)
				} else {
					failed.Add(1)
				}
			}
		}()
	}

	for _, sub := range recipients {
		jobs <- sub
	}
	close(jobs)
	wg.Wait()

	return Outcome{Sent: int(sent.Load()), Failed: int(failed.Load())}
}

func (d *Dispatcher) deliver(ctx context.Context, msg BroadcastMessage, sub subscribers.Subscriber, store RecipientLog) bool {
	e := d.from
	e.To = []string{sub.Email}
	e.Subject = msg.Subject
	e.HTMLBody = renderHTML(msg, sub)
	e.TextBody = renderText(msg, sub)

	sendErr := d.mail.Send(ctx, e)

	rec := BroadcastRecipient{
		ID:            uuid.NewString(),
		BroadcastID:   msg.ID,
		SubscriberID:  sub.ID,
		EmailSnapshot: sub.Email,
		Status:        RecipientSent,
		CreatedAt:     time.Now(),
	}
	if sendErr != nil {
		m := sendErr.Error()
		if len(m) > 500 {
			m = m[:500]
		}
		rec.Status = RecipientFailed
		rec.ErrorMessage = &m
	}

	if err := store.AppendRecipient(ctx, &rec); err != nil {
		d.log.Error("broadcast recipient log write failed",
			slog.String("broadcast_id", msg.ID),
			slog.String("subscriber_id", sub.ID),
			slog.Any("err", err))
		return false
	}
	if sendErr != nil {
		d.log.Warn("broadcast send failed",
			slog.String("broadcast_id", msg.ID),
			slog.String("subscriber_id", sub.ID),
			slog.Any("err", sendErr))
		return false
	}
	return true
}

func renderHTML(msg BroadcastMessage, sub subscribers.Subscriber) string {
	name := sub.FullName
	if name == "" {
		name = "there"
	}
	return `
<html>
  <body style="font-family: sans-serif;">
    <h2>` + html.EscapeString(msg.Headline) + `</h2>
    <p>Hi ` + html.EscapeString(name) + `,</p>
    <p>` + html.EscapeString(msg.Body) + `</p>
    <p>Kittisap Shop</p>
  </body>
</html>
`
}

func renderText(msg BroadcastMessage, sub subscribers.Subscriber) string {
	name := sub.FullName
	if name == "" {
		name = "there"
	}
	return "Hi " + name + ",\n\n" + msg.Headline + "\n\n" + msg.Body + "\n\nKittisap Shop"
}
