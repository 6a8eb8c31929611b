package promptpay

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPayableAmount(t *testing.T) {
	t.Parallel()

	cases := []struct {
		satang int
		want   string
	}{
		{30000, "300"},
		{30050, "300.5"},
		{30055, "300.55"},
		{5, "0.05"},
		{50, "0.5"},
		{0, "0"},
		{-100, "0"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, PayableAmount(tc.satang), "satang=%d", tc.satang)
	}
}

func TestBuildReference(t *testing.T) {
	t.Parallel()

	got := BuildReference("0812345678", "https://promptpay.io", 30050)
	require.Equal(t, "https://promptpay.io/0812345678/300.5", got)
}

func TestBuildReferenceEscapesAndTrims(t *testing.T) {
	t.Parallel()

	got := BuildReference("08 1234", "https://promptpay.io/", 30000)
	require.Equal(t, "https://promptpay.io/08%201234/300", got)
}
