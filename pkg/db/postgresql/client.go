package postgresql

import (
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var onceDb sync.Once
var instance *gorm.DB

const (
	connectAttempts = 10
	connectInterval = 2 * time.Second
)

// GetInstance opens the shared gorm connection, retrying while the database
// is still starting up.
func GetInstance(dsn string, logLevel logger.LogLevel, log *logrus.Logger) (*gorm.DB, error) {

	var err error

	onceDb.Do(func() {
		for i := 0; i < connectAttempts; i++ {
			var db *gorm.DB

			db, err = Open(dsn, logLevel)
			if err == nil {
				instance = db
				log.WithField("attempt", i+1).Info("connected to database")
				return
			}

			log.WithError(err).WithField("attempt", i+1).Warn("could not connect to database")
			time.Sleep(connectInterval)
		}
	})

	if instance == nil {
		return nil, fmt.Errorf("could not connect to database: %w", err)
	}

	return instance, nil
}

// Open opens a gorm connection and pings it. Unique violations are translated
// into gorm.ErrDuplicatedKey.
func Open(dsn string, logLevel logger.LogLevel) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, err
	}

	return db, nil
}
