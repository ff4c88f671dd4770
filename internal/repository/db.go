package repository

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/cradoe/verime/assets"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"

	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/lib/pq"
)

const defaultTimeout = 3 * time.Second

// Database interface defines available repositories
type Database interface {
	User() UserRepository
	Verification() VerificationRepository
	Screening() ScreeningRepository
	Otp() OtpRepository
	Activity() ActivityRepository

	Close() error
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

// DatabaseImpl implements the Database interface
type DatabaseImpl struct {
	db               *sqlx.DB
	userRepo         UserRepository
	verificationRepo VerificationRepository
	screeningRepo    ScreeningRepository
	otpRepo          OtpRepository
	activityRepo     ActivityRepository

	mu sync.Mutex
}

// New initializes a database connection and runs migrations if enabled
func New(dsn string, automigrate bool) (Database, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	db, err := sqlx.ConnectContext(ctx, "postgres", "postgres://"+dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(2 * time.Hour)

	// Run migrations if enabled
	if automigrate {
		iofsDriver, err := iofs.New(assets.EmbeddedFiles, "migrations")
		if err != nil {
			return nil, err
		}

		migrator, err := migrate.NewWithSourceInstance("iofs", iofsDriver, "postgres://"+dsn)
		if err != nil {
			return nil, err
		}

		if err := migrator.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return nil, err
		}
	}

	return &DatabaseImpl{db: db}, nil
}

func (d *DatabaseImpl) Close() error {
	return d.db.Close()
}

func (d *DatabaseImpl) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	tx, err := d.db.BeginTxx(ctx, opts)
	if err != nil {
		return nil, err
	}
	return tx, nil
}

func (d *DatabaseImpl) User() UserRepository {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.userRepo == nil {
		d.userRepo = NewUserRepository(d.db)
	}
	return d.userRepo
}

func (d *DatabaseImpl) Verification() VerificationRepository {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.verificationRepo == nil {
		d.verificationRepo = NewVerificationRepository(d.db)
	}
	return d.verificationRepo
}

func (d *DatabaseImpl) Screening() ScreeningRepository {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.screeningRepo == nil {
		d.screeningRepo = NewScreeningRepository(d.db)
	}
	return d.screeningRepo
}

func (d *DatabaseImpl) Otp() OtpRepository {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.otpRepo == nil {
		d.otpRepo = NewOtpRepository(d.db)
	}
	return d.otpRepo
}

func (d *DatabaseImpl) Activity() ActivityRepository {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.activityRepo == nil {
		d.activityRepo = NewActivityRepository(d.db)
	}
	return d.activityRepo
}
