package repositories_test

import (
	"context"
	"errors"
	"sync"
	"time"
	_ "time/tzdata"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/DrkBotBase/delivery"
	"github.com/DrkBotBase/delivery/internal/entity"
	"github.com/DrkBotBase/delivery/internal/repository/repositories"
	"github.com/DrkBotBase/delivery/internal/testsuite/postgres"
	"github.com/DrkBotBase/delivery/internal/usecase/shift"
)

const owner = "courier-1"

func (s *RepositoryTestSuite) startShift(ownerID string) *entity.Shift {
	sh, err := s.shifts.Create(s.ctx, repositories.ShiftToCreateDTO{
		OwnerID:    ownerID,
		StartTime:  time.Now(),
		BaseMoney:  decimal.NewFromInt(50000),
		ShareToken: uuid.NewString(),
	})
	s.Require().NoError(err)
	return sh
}

func (s *RepositoryTestSuite) newShiftUseCase() *shift.ShiftUseCase {
	log, _ := test.NewNullLogger()
	return shift.New(s.trm, s.shifts, s.deliveries, s.expenses, shift.Config{}, shift.WithLogger(log))
}

func (s *RepositoryTestSuite) TestOneActiveShiftPerOwner() {
	s.startShift(owner)

	_, err := s.shifts.Create(s.ctx, repositories.ShiftToCreateDTO{
		OwnerID:    owner,
		StartTime:  time.Now(),
		ShareToken: uuid.NewString(),
	})
	s.Require().True(delivery.IsCode(err, delivery.ECONFLICT), "got %v", err)

	s.startShift("courier-2")

	rows := s.pgSuite.Shifts(owner)
	s.Require().Len(rows, 1)
	s.Require().Equal("active", rows[0].Status)
	s.Require().Equal("50000.00", rows[0].BaseMoney)
}

func (s *RepositoryTestSuite) TestCloseFreezesTotal() {
	sh := s.startShift(owner)

	s.Require().NoError(sh.Close(time.Now(), decimal.NewFromInt(35000)))
	s.Require().NoError(s.shifts.Close(s.ctx, sh))

	err := s.shifts.Close(s.ctx, sh)
	s.Require().True(delivery.IsCode(err, delivery.ENOTFOUND), "got %v", err)

	active, err := s.shifts.ActiveByOwner(s.ctx, owner)
	s.Require().NoError(err)
	s.Require().Nil(active)

	found, err := s.shifts.FindByShareToken(s.ctx, sh.ShareToken)
	s.Require().NoError(err)
	s.Require().Equal(entity.ShiftClosed, found.Status)
	s.Require().True(decimal.NewFromInt(35000).Equal(found.TotalDeliveryAmount))

	// a closed shift frees the owner for a new one
	s.startShift(owner)
}

func (s *RepositoryTestSuite) TestFindByUnknownToken() {
	_, err := s.shifts.FindByShareToken(s.ctx, "missing")
	s.Require().True(delivery.IsCode(err, delivery.ENOTFOUND), "got %v", err)
}

func (s *RepositoryTestSuite) TestConcurrentStartsOpenOneShift() {
	const workers = 16

	uc := s.newShiftUseCase()

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		conflicts int
		others    []error
	)

	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := uc.StartShift(s.ctx, owner, shift.StartShiftDTO{BaseMoney: "100"})

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case delivery.IsCode(err, delivery.ECONFLICT):
				conflicts++
			default:
				others = append(others, err)
			}
		}()
	}
	close(start)
	wg.Wait()

	s.Require().Empty(others)
	s.Require().Equal(1, succeeded)
	s.Require().Equal(workers-1, conflicts)

	rows := s.pgSuite.Shifts(owner)
	s.Require().Len(rows, 1)
	s.Require().Equal("active", rows[0].Status)
}

func (s *RepositoryTestSuite) TestEndShiftWaitsForAttachingRecord() {
	uc := s.newShiftUseCase()

	_, err := uc.StartShift(s.ctx, owner, shift.StartShiftDTO{})
	s.Require().NoError(err)

	attached := make(chan struct{})
	proceed := make(chan struct{})
	created := make(chan error, 1)

	go func() {
		created <- s.trm.Do(s.ctx, func(ctx context.Context) error {
			shiftID, err := uc.AttachmentFor(ctx, owner)
			if err != nil {
				return err
			}
			close(attached)
			<-proceed

			_, err = s.deliveries.Create(ctx, repositories.DeliveryToCreateDTO{
				OwnerID:       owner,
				ShiftID:       shiftID,
				InvoiceNumber: "CM-9",
				Date:          time.Now(),
				PhoneStatus:   entity.PhoneMissing,
				Phone:         entity.UndetectedPhone,
				Address:       "CL 9 # 9-9",
				Amount:        decimal.NewFromInt(4000),
				CustomerName:  entity.DefaultCustomerName,
			})
			return err
		})
	}()

	<-attached

	type result struct {
		shift *entity.Shift
		err   error
	}
	ended := make(chan result, 1)
	go func() {
		sh, err := uc.EndShift(s.ctx, owner)
		ended <- result{sh, err}
	}()

	select {
	case <-ended:
		s.FailNow("shift closed while a record was being attached")
	case <-time.After(300 * time.Millisecond):
	}

	close(proceed)
	s.Require().NoError(<-created)

	res := <-ended
	s.Require().NoError(res.err)
	s.Require().True(decimal.NewFromInt(4000).Equal(res.shift.TotalDeliveryAmount), res.shift.TotalDeliveryAmount.String())

	rows := s.pgSuite.Deliveries(owner)
	s.Require().Len(rows, 1)
	s.Require().NotNil(rows[0].ShiftID)
	s.Require().Equal(res.shift.ID, *rows[0].ShiftID)
}

func (s *RepositoryTestSuite) TestAttachmentAfterCloseIsNil() {
	uc := s.newShiftUseCase()

	_, err := uc.StartShift(s.ctx, owner, shift.StartShiftDTO{})
	s.Require().NoError(err)
	_, err = uc.EndShift(s.ctx, owner)
	s.Require().NoError(err)

	err = s.trm.Do(s.ctx, func(ctx context.Context) error {
		shiftID, err := uc.AttachmentFor(ctx, owner)
		s.Require().Nil(shiftID)
		return err
	})
	s.Require().NoError(err)
}

func (s *RepositoryTestSuite) TestHistoryByOwner() {
	base := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		end := base.Add(time.Duration(i)*24*time.Hour + 8*time.Hour)
		s.pgSuite.InsertShift(postgres.Shift{
			OwnerID:    owner,
			StartTime:  base.Add(time.Duration(i) * 24 * time.Hour),
			EndTime:    &end,
			Status:     "closed",
			ShareToken: uuid.NewString(),
		})
	}

	shifts, err := s.shifts.HistoryByOwner(s.ctx, owner, 2)
	s.Require().NoError(err)
	s.Require().Len(shifts, 2)
	s.Require().True(shifts[0].StartTime.After(shifts[1].StartTime))
}

func (s *RepositoryTestSuite) TestHistoryByOwnerBreaksTiesByID() {
	at := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	end := at.Add(time.Hour)

	var ids []uint64
	for i := 0; i < 3; i++ {
		ids = append(ids, s.pgSuite.InsertShift(postgres.Shift{
			OwnerID:    owner,
			StartTime:  at,
			EndTime:    &end,
			Status:     "closed",
			ShareToken: uuid.NewString(),
		}))
	}

	shifts, err := s.shifts.HistoryByOwner(s.ctx, owner, 10)
	s.Require().NoError(err)
	s.Require().Len(shifts, 3)
	for i, sh := range shifts {
		s.Require().Equal(ids[len(ids)-1-i], sh.ID)
	}
}

func (s *RepositoryTestSuite) TestSumIgnoresMissingAmounts() {
	sh := s.startShift(owner)
	amount := "12000.50"

	s.pgSuite.InsertDelivery(postgres.Delivery{OwnerID: owner, ShiftID: &sh.ID, InvoiceNumber: "1", Date: time.Now(), Address: "CL 1", Amount: &amount})
	s.pgSuite.InsertDelivery(postgres.Delivery{OwnerID: owner, ShiftID: &sh.ID, InvoiceNumber: "2", Date: time.Now(), Address: "CL 2"})
	s.pgSuite.InsertDelivery(postgres.Delivery{OwnerID: owner, InvoiceNumber: "3", Date: time.Now(), Address: "CL 3", Amount: &amount})

	total, err := s.deliveries.SumAmountByShift(s.ctx, sh.ID)
	s.Require().NoError(err)
	s.Require().True(decimal.RequireFromString("12000.50").Equal(total), total.String())

	attached, err := s.deliveries.AllByShift(s.ctx, sh.ID)
	s.Require().NoError(err)
	s.Require().Len(attached, 2)
	for _, d := range attached {
		if d.InvoiceNumber == "2" {
			s.Require().True(d.Amount.IsZero())
		}
	}

	empty, err := s.deliveries.SumAmountByShift(s.ctx, sh.ID+100)
	s.Require().NoError(err)
	s.Require().True(empty.IsZero())
}

func (s *RepositoryTestSuite) TestDeliveryUpdateAndStatus() {
	d, err := s.deliveries.Create(s.ctx, repositories.DeliveryToCreateDTO{
		OwnerID:       owner,
		InvoiceNumber: "CM-1",
		Date:          time.Now(),
		PhoneStatus:   entity.PhoneMissing,
		Phone:         entity.UndetectedPhone,
		Address:       "CL 1 # 2-3",
		Amount:        decimal.NewFromInt(4000),
		CustomerName:  entity.DefaultCustomerName,
	})
	s.Require().NoError(err)
	s.Require().Equal(entity.DeliveryPending, d.Status)

	amount := decimal.NewFromInt(4500)
	updated, err := s.deliveries.Update(s.ctx, owner, d.ID, repositories.DeliveryToUpdateDTO{Amount: &amount})
	s.Require().NoError(err)
	s.Require().True(amount.Equal(updated.Amount))

	_, err = s.deliveries.Update(s.ctx, "courier-2", d.ID, repositories.DeliveryToUpdateDTO{Amount: &amount})
	s.Require().True(delivery.IsCode(err, delivery.ENOTFOUND), "got %v", err)

	at := time.Now().Truncate(time.Second)
	delivered, err := s.deliveries.SetStatus(s.ctx, owner, d.ID, entity.DeliveryDelivered, &at)
	s.Require().NoError(err)
	s.Require().Equal(entity.DeliveryDelivered, delivered.Status)
	s.Require().True(at.Equal(*delivered.DeliveryTime))

	pending, err := s.deliveries.PendingBetween(s.ctx, owner, at.Add(-time.Hour), at.Add(time.Hour))
	s.Require().NoError(err)
	s.Require().Empty(pending)

	s.Require().NoError(s.deliveries.Delete(s.ctx, owner, d.ID))
	err = s.deliveries.Delete(s.ctx, owner, d.ID)
	s.Require().True(delivery.IsCode(err, delivery.ENOTFOUND), "got %v", err)
}

func (s *RepositoryTestSuite) TestDailyStats() {
	bogota, err := time.LoadLocation("America/Bogota")
	s.Require().NoError(err)
	amount := "1000"

	// 23:30 on Feb 29 in Bogota, already Mar 1 in UTC
	s.pgSuite.InsertDelivery(postgres.Delivery{OwnerID: owner, InvoiceNumber: "1", Date: time.Date(2024, 3, 1, 4, 30, 0, 0, time.UTC), Address: "CL 1", Amount: &amount})
	s.pgSuite.InsertDelivery(postgres.Delivery{OwnerID: owner, InvoiceNumber: "2", Date: time.Date(2024, 3, 1, 15, 0, 0, 0, time.UTC), Address: "CL 2", Amount: &amount})
	s.pgSuite.InsertDelivery(postgres.Delivery{OwnerID: owner, InvoiceNumber: "3", Date: time.Date(2024, 3, 1, 16, 0, 0, 0, time.UTC), Address: "CL 3"})

	days, err := s.deliveries.DailyStats(s.ctx, owner, bogota)
	s.Require().NoError(err)
	s.Require().Len(days, 2)

	s.Require().Equal("2024-03-01", days[0].Day)
	s.Require().Equal(int64(2), days[0].Count)
	s.Require().True(decimal.NewFromInt(1000).Equal(days[0].Total))

	s.Require().Equal("2024-02-29", days[1].Day)
	s.Require().Equal(int64(1), days[1].Count)
}

func (s *RepositoryTestSuite) TestTransactionRollsBack() {
	boom := errors.New("boom")

	err := s.trm.Do(s.ctx, func(ctx context.Context) error {
		_, err := s.shifts.Create(ctx, repositories.ShiftToCreateDTO{
			OwnerID:    owner,
			StartTime:  time.Now(),
			ShareToken: uuid.NewString(),
		})
		s.Require().NoError(err)
		return boom
	})
	s.Require().ErrorIs(err, boom)

	s.Require().Empty(s.pgSuite.Shifts(owner))
}

func (s *RepositoryTestSuite) TestExpensesByShift() {
	sh := s.startShift(owner)

	_, err := s.expenses.Create(s.ctx, repositories.ExpenseToCreateDTO{OwnerID: owner, ShiftID: &sh.ID, Description: "gasolina", Amount: decimal.NewFromInt(5000), Date: time.Now()})
	s.Require().NoError(err)
	_, err = s.expenses.Create(s.ctx, repositories.ExpenseToCreateDTO{OwnerID: owner, Description: "almuerzo", Amount: decimal.NewFromInt(15000), Date: time.Now()})
	s.Require().NoError(err)
	s.pgSuite.InsertExpense(postgres.Expense{OwnerID: owner, Description: "parqueadero", Date: time.Now()})

	all, err := s.expenses.AllByOwner(s.ctx, owner, nil)
	s.Require().NoError(err)
	s.Require().Len(all, 3)
	for _, e := range all {
		if e.Description == "parqueadero" {
			s.Require().True(e.Amount.IsZero())
		}
	}

	attached, err := s.expenses.AllByShift(s.ctx, sh.ID)
	s.Require().NoError(err)
	s.Require().Len(attached, 1)
	s.Require().Equal("gasolina", attached[0].Description)

	err = s.expenses.Delete(s.ctx, "courier-2", attached[0].ID)
	s.Require().True(delivery.IsCode(err, delivery.ENOTFOUND), "got %v", err)
}
