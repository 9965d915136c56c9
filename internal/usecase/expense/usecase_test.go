package expense_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/DrkBotBase/delivery"
	"github.com/DrkBotBase/delivery/internal/testsuite/memory"
	"github.com/DrkBotBase/delivery/internal/usecase/expense"
	"github.com/DrkBotBase/delivery/internal/usecase/shift"
)

const owner = "courier-1"

type ExpenseTestSuite struct {
	suite.Suite
	ctx    context.Context
	shifts *shift.ShiftUseCase
	uc     *expense.ExpenseUseCase
}

func (s *ExpenseTestSuite) SetupTest() {
	s.ctx = context.Background()

	store := memory.NewStore()
	s.shifts = shift.New(memory.TxManager{}, store.Shifts(), store.Deliveries(), store.Expenses(), shift.Config{})
	s.uc = expense.New(memory.TxManager{}, store.Expenses(), s.shifts)
}

func TestExpenseTestSuite(t *testing.T) {
	suite.Run(t, new(ExpenseTestSuite))
}

func (s *ExpenseTestSuite) TestCreateWithoutShift() {
	e, err := s.uc.Create(s.ctx, owner, expense.ExpenseToCreateDTO{
		Description: "gasolina",
		Amount:      "12000.50",
	})
	s.Require().NoError(err)

	s.Require().Nil(e.ShiftID)
	s.Require().False(e.Date.IsZero())
	s.Require().True(decimal.RequireFromString("12000.50").Equal(e.Amount))
}

func (s *ExpenseTestSuite) TestCreateKeepsGivenDate() {
	date := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

	e, err := s.uc.Create(s.ctx, owner, expense.ExpenseToCreateDTO{
		Description: "parqueadero",
		Amount:      "2000",
		Date:        date,
	})
	s.Require().NoError(err)
	s.Require().True(date.Equal(e.Date))
}

func (s *ExpenseTestSuite) TestCreateAttachesAndFilters() {
	loose, err := s.uc.Create(s.ctx, owner, expense.ExpenseToCreateDTO{Description: "almuerzo", Amount: "15000"})
	s.Require().NoError(err)

	sh, err := s.shifts.StartShift(s.ctx, owner, shift.StartShiftDTO{})
	s.Require().NoError(err)

	attached, err := s.uc.Create(s.ctx, owner, expense.ExpenseToCreateDTO{Description: "gasolina", Amount: "10000"})
	s.Require().NoError(err)
	s.Require().NotNil(attached.ShiftID)
	s.Require().Equal(sh.ID, *attached.ShiftID)

	all, err := s.uc.AllByOwner(s.ctx, owner, nil)
	s.Require().NoError(err)
	s.Require().Len(all, 2)

	byShift, err := s.uc.AllByOwner(s.ctx, owner, &sh.ID)
	s.Require().NoError(err)
	s.Require().Len(byShift, 1)
	s.Require().Equal(attached.ID, byShift[0].ID)
	s.Require().NotEqual(loose.ID, byShift[0].ID)
}

func (s *ExpenseTestSuite) TestCreateValidation() {
	bad := []expense.ExpenseToCreateDTO{
		{Description: "", Amount: "1000"},
		{Description: "gasolina", Amount: ""},
		{Description: "gasolina", Amount: "-1000"},
		{Description: "gasolina", Amount: "diez"},
	}

	for _, dto := range bad {
		_, err := s.uc.Create(s.ctx, owner, dto)
		s.Require().True(delivery.IsCode(err, delivery.EINVALID), "%+v: got %v", dto, err)
	}
}

func (s *ExpenseTestSuite) TestDelete() {
	e, err := s.uc.Create(s.ctx, owner, expense.ExpenseToCreateDTO{Description: "gasolina", Amount: "1000"})
	s.Require().NoError(err)

	err = s.uc.Delete(s.ctx, "courier-2", e.ID)
	s.Require().True(delivery.IsCode(err, delivery.ENOTFOUND), "got %v", err)

	s.Require().NoError(s.uc.Delete(s.ctx, owner, e.ID))

	err = s.uc.Delete(s.ctx, owner, e.ID)
	s.Require().True(delivery.IsCode(err, delivery.ENOTFOUND), "got %v", err)
}
