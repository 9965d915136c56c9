package repositories_test

import (
	"context"
	"testing"

	trmgorm "github.com/avito-tech/go-transaction-manager/gorm"
	"github.com/avito-tech/go-transaction-manager/trm/manager"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/DrkBotBase/delivery/internal/repository/repositories"
	"github.com/DrkBotBase/delivery/internal/testsuite/postgres"
	"github.com/DrkBotBase/delivery/pkg/db/postgresql"
)

type RepositoryTestSuite struct {
	suite.Suite
	pgSuite    *postgres.Suite
	ctx        context.Context
	ctxCancel  context.CancelFunc
	db         *gorm.DB
	trm        *manager.Manager
	shifts     *repositories.ShiftRepo
	deliveries *repositories.DeliveryRepo
	expenses   *repositories.ExpenseRepo
}

func (s *RepositoryTestSuite) SetupSuite() {
	s.ctx, s.ctxCancel = context.WithCancel(context.Background())
	s.pgSuite = postgres.SetupInstance(s.ctx)

	var err error
	s.db, err = postgresql.Open(s.pgSuite.DSN, logger.Silent)
	s.Require().NoError(err)

	s.trm, err = manager.New(trmgorm.NewDefaultFactory(s.db))
	s.Require().NoError(err)

	s.shifts = repositories.NewShiftRepo(s.db, trmgorm.DefaultCtxGetter)
	s.deliveries = repositories.NewDeliveryRepo(s.db, trmgorm.DefaultCtxGetter)
	s.expenses = repositories.NewExpenseRepo(s.db, trmgorm.DefaultCtxGetter)
}

func (s *RepositoryTestSuite) TearDownSuite() {
	if sqlDB, err := s.db.DB(); err == nil {
		sqlDB.Close()
	}
	s.pgSuite.TearDownInstance()
	s.ctxCancel()
}

func (s *RepositoryTestSuite) TearDownTest() {
	s.pgSuite.TruncateAll()
}

func TestRepositoryTestSuite(t *testing.T) {
	if !postgres.Available() {
		t.Skip("POSTGRES_HOST is not set")
	}
	suite.Run(t, new(RepositoryTestSuite))
}
