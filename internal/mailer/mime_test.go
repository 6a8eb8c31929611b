package mailer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func baseEmail() Email {
	return Email{
		From:     "no-reply@kittisap.shop",
		FromName: "Kittisap Shop",
		To:       []string{"somchai@example.com"},
		Subject:  "Order received",
		TextBody: "Thanks for your order.",
	}
}

func TestBuildMIMEMessageHeaders(t *testing.T) {
	t.Parallel()

	raw, err := buildMIMEMessage(baseEmail(), "kittisap.shop")
	require.NoError(t, err)
	require.Contains(t, raw, "From: Kittisap Shop <no-reply@kittisap.shop>\r\n")
	require.Contains(t, raw, "To: somchai@example.com\r\n")
	require.Contains(t, raw, "Subject: Order received\r\n")
	require.Contains(t, raw, "MIME-Version: 1.0\r\n")
	require.Contains(t, raw, "Message-ID: <")
	require.Contains(t, raw, "@kittisap.shop>")
	require.Contains(t, raw, "Thanks for your order.")
}

func TestBuildMIMEMessageMultipart(t *testing.T) {
	t.Parallel()

	e := baseEmail()
	e.HTMLBody = "<p>Thanks!</p>"

	raw, err := buildMIMEMessage(e, "kittisap.shop")
	require.NoError(t, err)
	require.Contains(t, raw, "multipart/alternative")
	require.Contains(t, raw, "Content-Type: text/plain; charset=UTF-8")
	require.Contains(t, raw, "Content-Type: text/html; charset=UTF-8")
	// text part must come before html per RFC 2046 preference order
	require.Less(t, strings.Index(raw, "text/plain"), strings.Index(raw, "text/html"))
}

func TestBuildMIMEMessageEncodesNonASCIISubject(t *testing.T) {
	t.Parallel()

	e := baseEmail()
	e.Subject = "ยืนยันคำสั่งซื้อ"

	raw, err := buildMIMEMessage(e, "kittisap.shop")
	require.NoError(t, err)
	require.Contains(t, raw, "=?utf-8?q?")
	require.NotContains(t, raw, "Subject: ยืนยันคำสั่งซื้อ")
}

func TestBuildMIMEMessageValidation(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		mutate func(*Email)
	}{
		{"no recipients", func(e *Email) { e.To = nil }},
		{"no from", func(e *Email) { e.From = "" }},
		{"no subject", func(e *Email) { e.Subject = "" }},
		{"no body", func(e *Email) { e.TextBody = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := baseEmail()
			tc.mutate(&e)
			_, err := buildMIMEMessage(e, "kittisap.shop")
			require.Error(t, err)
		})
	}
}

func TestAllRecipients(t *testing.T) {
	t.Parallel()

	e := baseEmail()
	e.Cc = []string{"cc@example.com"}
	e.Bcc = []string{"bcc@example.com"}
	require.Equal(t, []string{"somchai@example.com", "cc@example.com", "bcc@example.com"}, e.AllRecipients())
}
