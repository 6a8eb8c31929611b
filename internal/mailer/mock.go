package mailer

import (
	"context"
	"sync"
)

// Mock collects sent emails for tests. Err, when set, is returned for every
// send; FailFor rejects specific recipient addresses.
type Mock struct {
	mu      sync.Mutex
	Sent    []Email
	Err     error
	FailFor map[string]error
}

func (m *Mock) Send(ctx context.Context, e Email) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	for _, to := range e.To {
		if err, ok := m.FailFor[to]; ok {
			return err
		}
	}
	m.Sent = append(m.Sent, e)
	return nil
}

func (m *Mock) SentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Sent)
}
