package orders

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/google/uuid"

	"kittisap.shop/app/internal/shared/apperr"
	"kittisap.shop/app/internal/storage"
)

const maxSlipBytes = 10 << 20

// FileStore is the slip storage collaborator.
type FileStore interface {
	Put(ctx context.Context, r io.Reader, in storage.PutInput) (storage.PutResult, error)
}

var slipContentTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/webp":      true,
	"application/pdf": true,
}

type UploadSlipInput struct {
	OrderNumber string
	OwnerID     string

	Filename    string
	ContentType string
	Size        int64
	Data        io.Reader
}

type UploadSlipResult struct {
	OrderNumber string
	SlipID      string
	Status      string
}

// UploadSlip accepts a proof-of-payment file and moves the order into
// review. Re-upload after a rejection simply adds a new slip row; old slips
// are kept for audit.
func (s *Service) UploadSlip(ctx context.Context, in UploadSlipInput) (UploadSlipResult, error) {
	if in.Size <= 0 {
		return UploadSlipResult{}, apperr.InvalidErr(CodeSlipEmpty, "The uploaded file is empty.", nil)
	}
	if in.Size > maxSlipBytes {
		return UploadSlipResult{}, apperr.InvalidErr(CodeSlipTooLarge, "The uploaded file exceeds 10MB.", nil)
	}
	ct := strings.ToLower(strings.TrimSpace(in.ContentType))
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	if !slipContentTypes[ct] {
		return UploadSlipResult{}, apperr.InvalidErr(CodeSlipBadType, "Only JPEG, PNG, WebP or PDF slips are accepted.", nil)
	}

	o, ok, err := s.store.GetByNumber(ctx, in.OrderNumber)
	if err != nil {
		return UploadSlipResult{}, apperr.Wrap(err)
	}
	if !ok || o.CustomerID != in.OwnerID {
		return UploadSlipResult{}, apperr.NotFoundErr(CodeOrderNotFound, "Order not found.")
	}
	if o.Status != StatusPendingPayment && o.Status != StatusPendingReview {
		return UploadSlipResult{}, apperr.ConflictErr(CodeOrderNotAwaiting, "This order is not awaiting payment.")
	}

	put, err := s.files.Put(ctx, in.Data, storage.PutInput{
		Prefix:      "slips/" + o.OrderNumber,
		Filename:    in.Filename,
		ContentType: ct,
		Size:        in.Size,
	})
	if err != nil {
		return UploadSlipResult{}, apperr.UnavailableErr("SLIP_STORAGE_FAILED", err)
	}

	now := s.now()
	slip := PaymentSlip{
		ID:         uuid.NewString(),
		OrderID:    o.ID,
		FileKey:    put.Key,
		FileURL:    put.URL,
		Status:     SlipPendingReview,
		UploadedAt: now,
	}
	ev := OrderEvent{
		ID:         uuid.NewString(),
		OrderID:    o.ID,
		ActorID:    in.OwnerID,
		Action:     "slip_upload",
		FromStatus: o.Status,
		ToStatus:   StatusPendingReview,
		CreatedAt:  now,
	}
	if err := s.store.AttachSlip(ctx, &slip, o.Status, &ev); err != nil {
		if errors.Is(err, ErrNotActionable) {
			return UploadSlipResult{}, apperr.ConflictErr(CodeOrderNotAwaiting, "This order is not awaiting payment.")
		}
		return UploadSlipResult{}, apperr.Wrap(err)
	}

	return UploadSlipResult{OrderNumber: o.OrderNumber, SlipID: slip.ID, Status: StatusPendingReview}, nil
}

const (
	ReviewApprove = "approve"
	ReviewReject  = "reject"
)

type ReviewSlipInput struct {
	OrderNumber string
	SlipID      string
	ReviewerID  string
	Action      string // approve|reject
	Note        string
}

type ReviewSlipResult struct {
	OrderNumber   string
	Status        string
	PaymentStatus string
}

// ReviewSlip is the only mutation path that can move an order to paid.
// The slip update is scoped by (slipID, orderID) so a slip can never be
// reviewed against the wrong order, and only the most recent pending slip
// is actionable.
func (s *Service) ReviewSlip(ctx context.Context, in ReviewSlipInput) (ReviewSlipResult, error) {
	if in.Action != ReviewApprove && in.Action != ReviewReject {
		return ReviewSlipResult{}, apperr.InvalidErr(CodeInvalidTransition, "Unknown review action.", nil)
	}

	o, ok, err := s.store.GetByNumber(ctx, in.OrderNumber)
	if err != nil {
		return ReviewSlipResult{}, apperr.Wrap(err)
	}
	if !ok {
		return ReviewSlipResult{}, apperr.NotFoundErr(CodeOrderNotFound, "Order not found.")
	}
	if o.Status != StatusPendingReview {
		return ReviewSlipResult{}, apperr.ConflictErr(CodeSlipNotActionable, "This order is not under review.")
	}

	slip, ok, err := s.store.SlipByID(ctx, in.SlipID, o.ID)
	if err != nil {
		return ReviewSlipResult{}, apperr.Wrap(err)
	}
	if !ok {
		return ReviewSlipResult{}, apperr.NotFoundErr(CodeSlipNotFound, "Slip not found for this order.")
	}
	if slip.Status != SlipPendingReview {
		return ReviewSlipResult{}, apperr.ConflictErr(CodeSlipNotActionable, "This slip has already been reviewed.")
	}
	latest, ok, err := s.store.LatestPendingSlip(ctx, o.ID)
	if err != nil {
		return ReviewSlipResult{}, apperr.Wrap(err)
	}
	if !ok || latest.ID != slip.ID {
		return ReviewSlipResult{}, apperr.ConflictErr(CodeSlipNotActionable, "A newer slip is awaiting review.")
	}

	now := s.now()
	var note *string
	if n := strings.TrimSpace(in.Note); n != "" {
		note = &n
	}

	upd := ReviewUpdate{
		SlipID:          slip.ID,
		OrderID:         o.ID,
		ReviewerID:      in.ReviewerID,
		Note:            note,
		ReviewedAt:      now,
		OrderFromStatus: StatusPendingReview,
	}
	if in.Action == ReviewApprove {
		upd.SlipStatus = SlipApproved
		upd.OrderToStatus = StatusPaid
		upd.OrderPaymentStatus = PayPaid
		upd.PaidAt = &now
	} else {
		upd.SlipStatus = SlipRejected
		upd.OrderToStatus = StatusPendingPayment
		upd.OrderPaymentStatus = PayFailed
	}

	applied, err := s.store.FinalizeReview(ctx, upd)
	if err != nil {
		return ReviewSlipResult{}, apperr.Wrap(err)
	}
	if !applied {
		return ReviewSlipResult{}, apperr.ConflictErr(CodeSlipNotActionable, "This slip has already been reviewed.")
	}

	s.appendEvent(ctx, &OrderEvent{
		ID:         uuid.NewString(),
		OrderID:    o.ID,
		ActorID:    in.ReviewerID,
		Action:     "slip_" + in.Action,
		FromStatus: StatusPendingReview,
		ToStatus:   upd.OrderToStatus,
		Note:       note,
		CreatedAt:  now,
	})

	return ReviewSlipResult{
		OrderNumber:   o.OrderNumber,
		Status:        upd.OrderToStatus,
		PaymentStatus: upd.OrderPaymentStatus,
	}, nil
}
