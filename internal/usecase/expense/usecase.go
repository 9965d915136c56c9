package expense

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/go-playground/validator.v9"

	"github.com/DrkBotBase/delivery"
	"github.com/DrkBotBase/delivery/internal/entity"
	"github.com/DrkBotBase/delivery/internal/repository/repositories"
	"github.com/DrkBotBase/delivery/pkg/validations"
)

type Repository interface {
	Create(ctx context.Context, dto repositories.ExpenseToCreateDTO) (*entity.Expense, error)
	AllByOwner(ctx context.Context, ownerID string, shiftID *uint64) ([]entity.Expense, error)
	Delete(ctx context.Context, ownerID string, id uint64) error
}

type AttachmentPolicy interface {
	AttachmentFor(ctx context.Context, ownerID string) (*uint64, error)
}

type TxManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

type ExpenseToCreateDTO struct {
	Description string `validate:"required,max=300"`
	Amount      string `validate:"required,money"`
	// Zero means now.
	Date time.Time
}

type ExpenseUseCase struct {
	trm         TxManager
	validator   *validator.Validate
	attachment  AttachmentPolicy
	now         func() time.Time
	ExpenseRepo Repository
}

func New(trm TxManager, repo Repository, attachment AttachmentPolicy) *ExpenseUseCase {
	return &ExpenseUseCase{
		trm:         trm,
		validator:   validations.New(),
		attachment:  attachment,
		now:         time.Now,
		ExpenseRepo: repo,
	}
}

func (uc *ExpenseUseCase) Create(ctx context.Context, ownerID string, dto ExpenseToCreateDTO) (*entity.Expense, error) {
	op := "usecase.expense.ExpenseUseCase.Create"

	if err := uc.validator.Struct(dto); err != nil {
		return nil, delivery.OpError(op, delivery.ErrorWithCode(err, delivery.EINVALID))
	}

	amount, err := decimal.NewFromString(dto.Amount)
	if err != nil {
		return nil, delivery.OpError(op, delivery.ErrorWithCode(err, delivery.EINVALID))
	}

	date := dto.Date
	if date.IsZero() {
		date = uc.now()
	}

	var created *entity.Expense

	err = uc.trm.Do(ctx, func(ctx context.Context) error {
		shiftID, err := uc.attachment.AttachmentFor(ctx, ownerID)
		if err != nil {
			return err
		}

		created, err = uc.ExpenseRepo.Create(ctx, repositories.ExpenseToCreateDTO{
			OwnerID:     ownerID,
			ShiftID:     shiftID,
			Description: dto.Description,
			Amount:      amount,
			Date:        date,
		})
		return err
	})
	if err != nil {
		return nil, delivery.OpError(op, err)
	}

	return created, nil
}

func (uc *ExpenseUseCase) AllByOwner(ctx context.Context, ownerID string, shiftID *uint64) ([]entity.Expense, error) {
	op := "usecase.expense.ExpenseUseCase.AllByOwner"

	expenses, err := uc.ExpenseRepo.AllByOwner(ctx, ownerID, shiftID)
	if err != nil {
		return nil, delivery.OpError(op, err)
	}

	return expenses, nil
}

func (uc *ExpenseUseCase) Delete(ctx context.Context, ownerID string, id uint64) error {
	op := "usecase.expense.ExpenseUseCase.Delete"

	if err := uc.ExpenseRepo.Delete(ctx, ownerID, id); err != nil {
		return delivery.OpError(op, err)
	}

	return nil
}
