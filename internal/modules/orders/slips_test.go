package orders

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"kittisap.shop/app/internal/shared/apperr"
)

func uploadInput(orderNumber string) UploadSlipInput {
	return UploadSlipInput{
		OrderNumber: orderNumber,
		OwnerID:     "cust-1",
		Filename:    "slip.jpg",
		ContentType: "image/jpeg",
		Size:        2048,
		Data:        strings.NewReader("fake image bytes"),
	}
}

func createTestOrder(t *testing.T, env *testEnv) string {
	t.Helper()
	res, err := env.svc.Create(context.Background(), validCreateInput())
	require.NoError(t, err)
	return res.OrderNumber
}

func TestUploadSlipMovesOrderToReview(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	number := createTestOrder(t, env)

	res, err := env.svc.UploadSlip(context.Background(), uploadInput(number))
	require.NoError(t, err)
	require.Equal(t, StatusPendingReview, res.Status)
	require.NotEmpty(t, res.SlipID)

	o, ok, err := env.store.GetByNumber(context.Background(), number)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, StatusPendingReview, o.Status)
	require.Equal(t, PayPendingVerify, o.PaymentStatus)

	require.Len(t, env.files.puts, 1)
	require.Equal(t, "slips/"+number, env.files.puts[0].Prefix)
}

func TestUploadSlipValidation(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	number := createTestOrder(t, env)

	cases := []struct {
		name   string
		mutate func(*UploadSlipInput)
		code   string
	}{
		{"empty file", func(in *UploadSlipInput) { in.Size = 0 }, CodeSlipEmpty},
		{"over 10MB", func(in *UploadSlipInput) { in.Size = 10<<20 + 1 }, CodeSlipTooLarge},
		{"bad type", func(in *UploadSlipInput) { in.ContentType = "image/gif" }, CodeSlipBadType},
		{"no type", func(in *UploadSlipInput) { in.ContentType = "" }, CodeSlipBadType},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := uploadInput(number)
			tc.mutate(&in)
			_, err := env.svc.UploadSlip(context.Background(), in)
			require.Equal(t, tc.code, apperr.Code(err))
		})
	}

	// validation failures never reach storage
	require.Empty(t, env.files.puts)
}

func TestUploadSlipAcceptsParameterizedContentType(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	number := createTestOrder(t, env)

	in := uploadInput(number)
	in.ContentType = "image/PNG; charset=binary"

	_, err := env.svc.UploadSlip(context.Background(), in)
	require.NoError(t, err)
}

func TestUploadSlipScopedToOwner(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	number := createTestOrder(t, env)

	in := uploadInput(number)
	in.OwnerID = "stranger"

	_, err := env.svc.UploadSlip(context.Background(), in)
	require.Equal(t, CodeOrderNotFound, apperr.Code(err))
}

func TestUploadSlipRefusedOnPaidOrder(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	number := createTestOrder(t, env)

	o := env.store.firstOrder()
	applied, err := env.store.TransitionOrder(context.Background(), o.ID, StatusPendingPayment, StatusPaid, PayPaid, nil)
	require.NoError(t, err)
	require.True(t, applied)

	_, err = env.svc.UploadSlip(context.Background(), uploadInput(number))
	require.Equal(t, CodeOrderNotAwaiting, apperr.Code(err))
}

func TestUploadSlipAllowedWhileUnderReview(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	number := createTestOrder(t, env)

	_, err := env.svc.UploadSlip(context.Background(), uploadInput(number))
	require.NoError(t, err)

	// a second slip while the first is pending is fine; review acts on the
	// newest one
	res, err := env.svc.UploadSlip(context.Background(), uploadInput(number))
	require.NoError(t, err)
	require.Equal(t, StatusPendingReview, res.Status)
}

func TestReviewApproveMarksPaid(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	number := createTestOrder(t, env)

	up, err := env.svc.UploadSlip(context.Background(), uploadInput(number))
	require.NoError(t, err)

	res, err := env.svc.ReviewSlip(context.Background(), ReviewSlipInput{
		OrderNumber: number,
		SlipID:      up.SlipID,
		ReviewerID:  "admin-1",
		Action:      ReviewApprove,
	})
	require.NoError(t, err)
	require.Equal(t, StatusPaid, res.Status)
	require.Equal(t, PayPaid, res.PaymentStatus)

	o, _, err := env.store.GetByNumber(context.Background(), number)
	require.NoError(t, err)
	require.NotNil(t, o.PaidAt)

	slip, ok, err := env.store.SlipByID(context.Background(), up.SlipID, o.ID)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, SlipApproved, slip.Status)
	require.NotNil(t, slip.ReviewerID)
	require.Equal(t, "admin-1", *slip.ReviewerID)
}

func TestReviewRejectReopensOrder(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	number := createTestOrder(t, env)

	up, err := env.svc.UploadSlip(context.Background(), uploadInput(number))
	require.NoError(t, err)

	res, err := env.svc.ReviewSlip(context.Background(), ReviewSlipInput{
		OrderNumber: number,
		SlipID:      up.SlipID,
		ReviewerID:  "admin-1",
		Action:      ReviewReject,
		Note:        "amount does not match",
	})
	require.NoError(t, err)
	require.Equal(t, StatusPendingPayment, res.Status)
	require.Equal(t, PayFailed, res.PaymentStatus)

	o, _, err := env.store.GetByNumber(context.Background(), number)
	require.NoError(t, err)
	require.Nil(t, o.PaidAt)

	// customer can try again
	again, err := env.svc.UploadSlip(context.Background(), uploadInput(number))
	require.NoError(t, err)
	require.Equal(t, StatusPendingReview, again.Status)
}

func TestReviewTwiceRefused(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	number := createTestOrder(t, env)

	up, err := env.svc.UploadSlip(context.Background(), uploadInput(number))
	require.NoError(t, err)

	in := ReviewSlipInput{OrderNumber: number, SlipID: up.SlipID, ReviewerID: "admin-1", Action: ReviewApprove}
	_, err = env.svc.ReviewSlip(context.Background(), in)
	require.NoError(t, err)

	_, err = env.svc.ReviewSlip(context.Background(), in)
	require.Error(t, err)
	require.Equal(t, CodeSlipNotActionable, apperr.Code(err))
}

func TestReviewStaleSlipRefused(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	// deterministic clock so the second upload is strictly newer
	base := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	tick := 0
	env.svc.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	number := createTestOrder(t, env)

	first, err := env.svc.UploadSlip(context.Background(), uploadInput(number))
	require.NoError(t, err)
	_, err = env.svc.UploadSlip(context.Background(), uploadInput(number))
	require.NoError(t, err)

	// only the newest pending slip is actionable
	_, err = env.svc.ReviewSlip(context.Background(), ReviewSlipInput{
		OrderNumber: number, SlipID: first.SlipID, ReviewerID: "admin-1", Action: ReviewApprove,
	})
	require.Equal(t, CodeSlipNotActionable, apperr.Code(err))
}

func TestReviewUnknownAction(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	number := createTestOrder(t, env)

	up, err := env.svc.UploadSlip(context.Background(), uploadInput(number))
	require.NoError(t, err)

	_, err = env.svc.ReviewSlip(context.Background(), ReviewSlipInput{
		OrderNumber: number, SlipID: up.SlipID, ReviewerID: "admin-1", Action: "maybe",
	})
	require.Equal(t, CodeInvalidTransition, apperr.Code(err))
}

func TestReviewWrongOrderScope(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	numberA := createTestOrder(t, env)

	inB := validCreateInput()
	inB.CustomerID = "cust-2"
	resB, err := env.svc.Create(context.Background(), inB)
	require.NoError(t, err)

	upA, err := env.svc.UploadSlip(context.Background(), uploadInput(numberA))
	require.NoError(t, err)

	upB := uploadInput(resB.OrderNumber)
	upB.OwnerID = "cust-2"
	_, err = env.svc.UploadSlip(context.Background(), upB)
	require.NoError(t, err)

	// slip A cannot be reviewed against order B
	_, err = env.svc.ReviewSlip(context.Background(), ReviewSlipInput{
		OrderNumber: resB.OrderNumber, SlipID: upA.SlipID, ReviewerID: "admin-1", Action: ReviewApprove,
	})
	require.Equal(t, CodeSlipNotFound, apperr.Code(err))
}
