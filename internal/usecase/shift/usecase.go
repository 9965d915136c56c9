package shift

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gopkg.in/go-playground/validator.v9"

	"github.com/DrkBotBase/delivery"
	"github.com/DrkBotBase/delivery/config"
	"github.com/DrkBotBase/delivery/internal/entity"
	"github.com/DrkBotBase/delivery/internal/repository/repositories"
	"github.com/DrkBotBase/delivery/pkg/validations"
)

const MaxHistoryLimit = 100

type Repository interface {
	Create(ctx context.Context, dto repositories.ShiftToCreateDTO) (*entity.Shift, error)
	ActiveByOwner(ctx context.Context, ownerID string) (*entity.Shift, error)
	ShareActiveByOwner(ctx context.Context, ownerID string) (*entity.Shift, error)
	LockActiveByOwner(ctx context.Context, ownerID string) (*entity.Shift, error)
	Close(ctx context.Context, shift *entity.Shift) error
	FindByShareToken(ctx context.Context, token string) (*entity.Shift, error)
	HistoryByOwner(ctx context.Context, ownerID string, limit int) ([]entity.Shift, error)
}

type DeliveryReader interface {
	AllByShift(ctx context.Context, shiftID uint64) ([]entity.Delivery, error)
	SumAmountByShift(ctx context.Context, shiftID uint64) (decimal.Decimal, error)
}

type ExpenseReader interface {
	AllByShift(ctx context.Context, shiftID uint64) ([]entity.Expense, error)
}

// TxManager runs fn in a transaction carried by ctx.
type TxManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// OwnerLocker serializes shift mutations of one owner across instances.
type OwnerLocker interface {
	Lock(ctx context.Context, ownerID string) (release func(), err error)
}

type Config struct {
	ShareTokenTTL       time.Duration
	HistoryDefaultLimit int
}

type ShiftUseCase struct {
	trm          TxManager
	validator    *validator.Validate
	locker       OwnerLocker
	logger       *logrus.Logger
	conf         Config
	now          func() time.Time
	ShiftRepo    Repository
	DeliveryRepo DeliveryReader
	ExpenseRepo  ExpenseReader
}

type Option func(uc *ShiftUseCase)

func WithLocker(l OwnerLocker) Option {
	return func(uc *ShiftUseCase) {
		uc.locker = l
	}
}

func WithLogger(l *logrus.Logger) Option {
	return func(uc *ShiftUseCase) {
		uc.logger = l
	}
}

func WithClock(now func() time.Time) Option {
	return func(uc *ShiftUseCase) {
		uc.now = now
	}
}

func New(
	trm TxManager,
	shiftRepo Repository,
	deliveryRepo DeliveryReader,
	expenseRepo ExpenseReader,
	conf Config,
	opts ...Option,
) *ShiftUseCase {

	if conf.HistoryDefaultLimit <= 0 {
		conf.HistoryDefaultLimit = 20
	}

	uc := &ShiftUseCase{
		trm:          trm,
		validator:    validations.New(),
		logger:       config.GetLogger(),
		conf:         conf,
		now:          time.Now,
		ShiftRepo:    shiftRepo,
		DeliveryRepo: deliveryRepo,
		ExpenseRepo:  expenseRepo,
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}

func (uc *ShiftUseCase) StartShift(ctx context.Context, ownerID string, dto StartShiftDTO) (*entity.Shift, error) {
	op := "usecase.shift.ShiftUseCase.StartShift"

	if err := uc.validator.Struct(dto); err != nil {
		return nil, delivery.OpError(op, delivery.ErrorWithCode(err, delivery.EINVALID))
	}

	baseMoney := decimal.Zero
	if dto.BaseMoney != "" {
		var err error
		baseMoney, err = decimal.NewFromString(dto.BaseMoney)
		if err != nil {
			return nil, delivery.OpError(op, delivery.ErrorWithCode(err, delivery.EINVALID))
		}
	}

	release, err := uc.lock(ctx, ownerID)
	if err != nil {
		return nil, delivery.OpError(op, err)
	}
	defer release()

	var created *entity.Shift

	err = uc.trm.Do(ctx, func(ctx context.Context) error {
		active, err := uc.ShiftRepo.ActiveByOwner(ctx, ownerID)
		if err != nil {
			return err
		}
		if active != nil {
			return repositories.ErrShiftAlreadyActive(ownerID, nil)
		}

		created, err = uc.ShiftRepo.Create(ctx, repositories.ShiftToCreateDTO{
			OwnerID:    ownerID,
			StartTime:  uc.now(),
			BaseMoney:  baseMoney,
			ShareToken: uuid.NewString(),
			Note:       dto.Note,
		})
		return err
	})
	if err != nil {
		return nil, delivery.OpError(op, err)
	}

	uc.logger.WithFields(logrus.Fields{
		"owner_id":   ownerID,
		"shift_id":   created.ID,
		"base_money": created.BaseMoney.String(),
	}).Info("shift started")

	return created, nil
}

// EndShift closes the active shift and freezes its delivery total. Expenses
// are not part of the frozen total.
func (uc *ShiftUseCase) EndShift(ctx context.Context, ownerID string) (*entity.Shift, error) {
	op := "usecase.shift.ShiftUseCase.EndShift"

	release, err := uc.lock(ctx, ownerID)
	if err != nil {
		return nil, delivery.OpError(op, err)
	}
	defer release()

	var closed *entity.Shift

	err = uc.trm.Do(ctx, func(ctx context.Context) error {
		active, err := uc.ShiftRepo.LockActiveByOwner(ctx, ownerID)
		if err != nil {
			return err
		}
		if active == nil {
			return repositories.ErrNoActiveShift(ownerID)
		}

		total, err := uc.DeliveryRepo.SumAmountByShift(ctx, active.ID)
		if err != nil {
			return err
		}

		if err := active.Close(uc.now(), total); err != nil {
			return err
		}

		if err := uc.ShiftRepo.Close(ctx, active); err != nil {
			return err
		}

		closed = active
		return nil
	})
	if err != nil {
		return nil, delivery.OpError(op, err)
	}

	uc.logger.WithFields(logrus.Fields{
		"owner_id":              ownerID,
		"shift_id":              closed.ID,
		"total_delivery_amount": closed.TotalDeliveryAmount.String(),
	}).Info("shift closed")

	return closed, nil
}

// ListHistory returns the owner's shifts, newest first, whatever their
// status. A non-positive limit falls back to the configured default.
func (uc *ShiftUseCase) ListHistory(ctx context.Context, ownerID string, limit int) ([]entity.Shift, error) {
	op := "usecase.shift.ShiftUseCase.ListHistory"

	if limit <= 0 {
		limit = uc.conf.HistoryDefaultLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}

	shifts, err := uc.ShiftRepo.HistoryByOwner(ctx, ownerID, limit)
	if err != nil {
		return nil, delivery.OpError(op, err)
	}

	return shifts, nil
}

// ResolveByToken finds a shift by its share token. Ownership is not checked.
func (uc *ShiftUseCase) ResolveByToken(ctx context.Context, token string) (*entity.Shift, error) {
	op := "usecase.shift.ShiftUseCase.ResolveByToken"

	if token == "" {
		return nil, &delivery.Error{
			Op:      op,
			Code:    delivery.ENOTFOUND,
			Message: "Shift not found",
		}
	}

	shift, err := uc.ShiftRepo.FindByShareToken(ctx, token)
	if err != nil {
		return nil, delivery.OpError(op, err)
	}

	if until, ok := shift.SharedUntil(uc.conf.ShareTokenTTL); ok && uc.now().After(until) {
		return nil, &delivery.Error{
			Op:      op,
			Code:    delivery.ENOTFOUND,
			Message: "Shift not found",
			Fields: map[string]interface{}{
				"shift_id":     shift.ID,
				"shared_until": until,
			},
		}
	}

	return shift, nil
}

func (uc *ShiftUseCase) lock(ctx context.Context, ownerID string) (func(), error) {
	if uc.locker == nil {
		return func() {}, nil
	}
	return uc.locker.Lock(ctx, ownerID)
}
