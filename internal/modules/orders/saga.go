package orders

import (
	"context"
	"log/slog"
)

// step is one unit of work in the order-creation saga. Every step that
// mutates external state carries a compensating action.
type step struct {
	name       string
	run        func(ctx context.Context) error
	compensate func(ctx context.Context) error
}

// runSaga executes steps front-to-back. On the first failure it unwinds the
// already-completed steps back-to-front and returns the original error.
// Compensation failures are logged, never propagated: they must not mask
// the error being reported to the caller.
func runSaga(ctx context.Context, log *slog.Logger, steps []step) error {
	var done []step

	for _, st := range steps {
		if err := st.run(ctx); err != nil {
			unwind(ctx, log, done)
			return err
		}
		done = append(done, st)
	}
	return nil
}

func unwind(ctx context.Context, log *slog.Logger, done []step) {
	for i := len(done) - 1; i >= 0; i-- {
		st := done[i]
		if st.compensate == nil {
			continue
		}
		if err := st.compensate(ctx); err != nil {
			log.Error("saga compensation failed",
				slog.String("step", st.name), slog.Any("err", err))
		}
	}
}
