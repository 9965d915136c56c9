package shift

import (
	"context"

	"github.com/DrkBotBase/delivery"
)

// AttachmentFor returns the id of the owner's active shift, or nil when no
// shift is open. Records keep the value they were created with. Inside a
// transaction the shift row stays share-locked, so EndShift waits for the
// record to be stored before it freezes the total.
func (uc *ShiftUseCase) AttachmentFor(ctx context.Context, ownerID string) (*uint64, error) {
	op := "usecase.shift.ShiftUseCase.AttachmentFor"

	active, err := uc.ShiftRepo.ShareActiveByOwner(ctx, ownerID)
	if err != nil {
		return nil, delivery.OpError(op, err)
	}
	if active == nil {
		return nil, nil
	}

	id := active.ID
	return &id, nil
}
