package orders

import (
	"context"
	"crypto/rand"
	"strconv"
	"time"
)

const (
	numberPrefix = "KS-"
	numberLength = 8
	// no 0/O/1/I/L to keep numbers readable over the phone
	numberAlphabet = "23456789ABCDEFGHJKMNPQRSTUVWXYZ"

	numberAttempts = 8
)

type existsFunc func(ctx context.Context, number string) (bool, error)

// generateOrderNumber draws random human-readable codes and collision-checks
// each one, up to numberAttempts tries. After that it falls back to a
// timestamp+random suffix; the unique index on orders.order_number is the
// final guard for the fallback (the insert retries once on violation).
func generateOrderNumber(ctx context.Context, exists existsFunc) (string, error) {
	for i := 0; i < numberAttempts; i++ {
		n := numberPrefix + randomCode(numberLength)
		taken, err := exists(ctx, n)
		if err != nil {
			return "", err
		}
		if !taken {
			return n, nil
		}
	}
	return fallbackOrderNumber(time.Now()), nil
}

func fallbackOrderNumber(now time.Time) string {
	return numberPrefix + strconv.FormatInt(now.UnixMilli(), 10) + randomCode(4)
}

func randomCode(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand never fails on supported platforms; fall back to a
		// time-derived code rather than panicking mid-checkout.
		ts := strconv.FormatInt(time.Now().UnixNano(), 36)
		for len(ts) < n {
			ts += "2"
		}
		return ts[len(ts)-n:]
	}
	out := make([]byte, n)
	for i, v := range b {
		out[i] = numberAlphabet[int(v)%len(numberAlphabet)]
	}
	return string(out)
}
