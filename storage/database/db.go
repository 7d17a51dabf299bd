package database

import (
	"time"

	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/school"
	"github.com/trezcool/shule/core/user"
)

// Open connects to the configured Postgres database. Duplicate-key errors are
// translated so services can match on gorm.ErrDuplicatedKey.
func Open(conf *core.Config) (*gorm.DB, error) {
	logLvl := logger.Warn
	if conf.Debug {
		logLvl = logger.Info
	}
	db, err := gorm.Open(postgres.Open(conf.Database.DSN()), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logLvl),
	})
	if err != nil {
		return nil, errors.Wrap(err, "opening DB")
	}
	if err := ping(db); err != nil {
		return nil, err
	}
	return db, nil
}

// ping waits for the database to be ready. Waits 100ms longer between each attempt.
func ping(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return errors.Wrap(err, "getting DB handle")
	}

	maxAttempts := 30
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		err = sqlDB.Ping()
		if err == nil {
			break
		}
		time.Sleep(time.Duration(attempts) * 100 * time.Millisecond)
	}

	if err != nil {
		return errors.Wrap(err, "DB ping timeout")
	}
	return nil
}

// Migrate creates or updates the schema for all known models.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&user.User{},
		&school.StaffMember{},
		&school.Teacher{},
		&school.Guardian{},
		&school.Student{},
		&school.Subject{},
		&school.ClassGroup{},
		&school.Assessment{},
		&school.Grade{},
	)
	return errors.Wrap(err, "migrating DB")
}
