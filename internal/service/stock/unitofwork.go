package stock

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// UnitOfWork collects the compensations of the adjustments a composite
// workflow has applied so far. When a later step fails, Rollback undoes the
// succeeded steps in reverse order.
type UnitOfWork struct {
	comps  []Compensation
	logger *zap.Logger
}

// NewUnitOfWork starts an empty unit of work.
func NewUnitOfWork(logger *zap.Logger) *UnitOfWork {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UnitOfWork{logger: logger}
}

// Defer records the compensation of a step that just succeeded.
func (u *UnitOfWork) Defer(comp Compensation) {
	if comp != nil {
		u.comps = append(u.comps, comp)
	}
}

// Rollback runs the recorded compensations newest-first. Every compensation is
// attempted even when an earlier one fails; failures are joined and returned
// so the caller can surface the divergence instead of hiding it.
func (u *UnitOfWork) Rollback(ctx context.Context) error {
	var failures []error
	for i := len(u.comps) - 1; i >= 0; i-- {
		if err := u.comps[i](ctx); err != nil {
			failures = append(failures, err)
		}
	}
	u.comps = nil

	if len(failures) > 0 {
		err := errors.Join(failures...)
		u.logger.Error("rollback left the ledger diverged from the event log", zap.Error(err))
		return err
	}
	return nil
}
