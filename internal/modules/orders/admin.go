package orders

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"kittisap.shop/app/internal/shared/apperr"
)

type TransitionInput struct {
	OrderNumber string
	ActorID     string // admin user id
	Action      string // process|ship|complete
	Note        string
}

type TransitionResult struct {
	OrderNumber string
	Status      string
}

// Transition drives the forward fulfillment chain
// paid -> processing -> shipped -> completed. Payment-state changes are not
// reachable from here; those go through slip review only.
func (s *Service) Transition(ctx context.Context, in TransitionInput) (TransitionResult, error) {
	if in.OrderNumber == "" || in.ActorID == "" {
		return TransitionResult{}, apperr.InvalidErr(CodeInvalidTransition, "Missing order or actor.", nil)
	}

	o, ok, err := s.store.GetByNumber(ctx, in.OrderNumber)
	if err != nil {
		return TransitionResult{}, apperr.Wrap(err)
	}
	if !ok {
		return TransitionResult{}, apperr.NotFoundErr(CodeOrderNotFound, "Order not found.")
	}

	to, err := nextStatus(o.Status, in.Action)
	if err != nil {
		return TransitionResult{}, apperr.ConflictErr(CodeInvalidTransition, "This order cannot take that action.")
	}

	applied, err := s.store.TransitionOrder(ctx, o.ID, o.Status, to, o.PaymentStatus, nil)
	if err != nil {
		return TransitionResult{}, apperr.Wrap(err)
	}
	if !applied {
		return TransitionResult{}, apperr.ConflictErr(CodeInvalidTransition, "This order changed while processing; reload and retry.")
	}

	var note *string
	if n := strings.TrimSpace(in.Note); n != "" {
		note = &n
	}
	s.appendEvent(ctx, &OrderEvent{
		ID:         uuid.NewString(),
		OrderID:    o.ID,
		ActorID:    in.ActorID,
		Action:     in.Action,
		FromStatus: o.Status,
		ToStatus:   to,
		Note:       note,
		CreatedAt:  s.now(),
	})

	return TransitionResult{OrderNumber: o.OrderNumber, Status: to}, nil
}

func nextStatus(from, action string) (string, error) {
	switch action {
	case "process":
		if from == StatusPaid {
			return StatusProcessing, nil
		}
		return "", ErrInvalidTransition
	case "ship":
		if from == StatusProcessing {
			return StatusShipped, nil
		}
		return "", ErrInvalidTransition
	case "complete":
		if from == StatusShipped {
			return StatusCompleted, nil
		}
		return "", ErrInvalidTransition
	default:
		return "", ErrInvalidTransition
	}
}
