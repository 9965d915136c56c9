package main

import (
	"context"
	"errors"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata" // APP_TIMEZONE on images without zoneinfo

	trmgorm "github.com/avito-tech/go-transaction-manager/gorm"
	"github.com/avito-tech/go-transaction-manager/trm/manager"
	"gorm.io/gorm/logger"

	"github.com/DrkBotBase/delivery/config"
	"github.com/DrkBotBase/delivery/internal/http"
	"github.com/DrkBotBase/delivery/internal/http/controller"
	"github.com/DrkBotBase/delivery/internal/repository/repositories"
	"github.com/DrkBotBase/delivery/internal/usecase/expense"
	"github.com/DrkBotBase/delivery/internal/usecase/invoice"
	"github.com/DrkBotBase/delivery/internal/usecase/route"
	"github.com/DrkBotBase/delivery/internal/usecase/shift"
	"github.com/DrkBotBase/delivery/pkg/db/postgresql"
	"github.com/DrkBotBase/delivery/pkg/lock"
)

func main() {

	appConf := config.NewAppConfig()
	config.SetLogLevel(appConf.LogLevel)
	log := config.GetLogger()

	if err := appConf.Validate(); err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}

	dbConf := config.DatabaseConf()
	dsn := dbConf.Pgsql.DSN()

	migrator, err := postgresql.NewMigrator(dsn)
	if err != nil {
		log.WithError(err).Fatal("could not prepare migrations")
	}
	if err := migrator.Up(); err != nil {
		log.WithError(err).Fatal("could not apply migrations")
	}
	migrator.Close()

	gormLevel := logger.Warn
	if appConf.Env == "dev" {
		gormLevel = logger.Info
	}

	db, err := postgresql.GetInstance(dsn, gormLevel, log)
	if err != nil {
		log.WithError(err).Fatal("could not connect to database")
	}

	shiftRepo := repositories.NewShiftRepo(db, trmgorm.DefaultCtxGetter)
	deliveryRepo := repositories.NewDeliveryRepo(db, trmgorm.DefaultCtxGetter)
	expenseRepo := repositories.NewExpenseRepo(db, trmgorm.DefaultCtxGetter)

	m, err := manager.New(trmgorm.NewDefaultFactory(db))
	if err != nil {
		panic(err)
	}

	shiftOpts := []shift.Option{shift.WithLogger(log)}
	if appConf.RedisAddress != "" {
		rdb, err := lock.Connect(context.Background(), appConf.RedisAddress)
		if err != nil {
			log.WithError(err).Warn("redis unavailable, owner lock disabled")
		} else {
			defer rdb.Close()
			shiftOpts = append(shiftOpts, shift.WithLocker(lock.NewRedisLocker(rdb, log)))
		}
	}

	shiftUseCase := shift.New(m, shiftRepo, deliveryRepo, expenseRepo, shift.Config{
		ShareTokenTTL:       appConf.ShareTokenTTL,
		HistoryDefaultLimit: appConf.HistoryDefaultLimit,
	}, shiftOpts...)
	invoiceUseCase := invoice.New(m, deliveryRepo, shiftUseCase, invoice.Config{
		Timezone:    appConf.Timezone,
		PhoneRegion: appConf.PhoneRegion,
		CitySuffix:  appConf.CitySuffix,
	})
	expenseUseCase := expense.New(m, expenseRepo, shiftUseCase)
	routeUseCase := route.New(invoiceUseCase, route.Config{
		RestaurantName:    appConf.RestaurantName,
		RestaurantAddress: appConf.RestaurantAddress,
		CitySuffix:        appConf.CitySuffix,
	})

	cs := http.Controllers{
		ShiftController:    controller.NewShiftController(shiftUseCase),
		DeliveryController: controller.NewDeliveryController(invoiceUseCase),
		ExpenseController:  controller.NewExpenseController(expenseUseCase),
		RouteController:    controller.NewRouteController(routeUseCase),
		ShareController:    controller.NewShareController(shiftUseCase, appConf.Timezone),
	}
	r := http.NewRouter(cs, appConf)

	e := http.NewHttpServer(appConf, log)
	r.SetupRoutes(e)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := e.Start(":" + appConf.Port); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			log.WithError(err).Fatal("server stopped")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("could not shut down gracefully")
	}
}
