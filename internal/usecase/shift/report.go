package shift

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/DrkBotBase/delivery"
	"github.com/DrkBotBase/delivery/internal/entity"
	"github.com/DrkBotBase/delivery/internal/repository/repositories"
)

// CurrentSnapshot reconciles the owner's active shift from its attached
// records. Nothing is cached.
func (uc *ShiftUseCase) CurrentSnapshot(ctx context.Context, ownerID string) (*Snapshot, error) {
	op := "usecase.shift.ShiftUseCase.CurrentSnapshot"

	active, err := uc.ShiftRepo.ActiveByOwner(ctx, ownerID)
	if err != nil {
		return nil, delivery.OpError(op, err)
	}
	if active == nil {
		return nil, delivery.OpError(op, repositories.ErrNoActiveShift(ownerID))
	}

	deliveries, expenses, err := uc.attached(ctx, active.ID)
	if err != nil {
		return nil, delivery.OpError(op, err)
	}

	return &Snapshot{
		Shift:          *active,
		Reconciliation: entity.Reconcile(active.BaseMoney, deliveries, expenses),
	}, nil
}

// ClosedReport builds the public report of the shift behind token. The shift
// may still be active.
func (uc *ShiftUseCase) ClosedReport(ctx context.Context, token string) (*Report, error) {
	op := "usecase.shift.ShiftUseCase.ClosedReport"

	shift, err := uc.ResolveByToken(ctx, token)
	if err != nil {
		return nil, delivery.OpError(op, err)
	}

	deliveries, expenses, err := uc.attached(ctx, shift.ID)
	if err != nil {
		return nil, delivery.OpError(op, err)
	}

	return &Report{
		Shift:          *shift,
		Reconciliation: entity.Reconcile(shift.BaseMoney, deliveries, expenses),
		Entries:        entity.MergeEntries(deliveries, expenses),
	}, nil
}

func (uc *ShiftUseCase) attached(ctx context.Context, shiftID uint64) ([]entity.Delivery, []entity.Expense, error) {
	var (
		deliveries []entity.Delivery
		expenses   []entity.Expense
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		deliveries, err = uc.DeliveryRepo.AllByShift(gctx, shiftID)
		return err
	})

	g.Go(func() error {
		var err error
		expenses, err = uc.ExpenseRepo.AllByShift(gctx, shiftID)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	return deliveries, expenses, nil
}
