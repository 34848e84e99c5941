package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/royale/pos/internal/domain/shared"
	"github.com/royale/pos/internal/infrastructure/config"
	"github.com/royale/pos/internal/infrastructure/migration"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Database owns the embedded store. It opens lazily: nothing touches the
// disk until Initialize, and every accessor fails with
// shared.ErrNotInitialized before that.
type Database struct {
	cfg    *config.DatabaseConfig
	logger *zap.Logger

	gormLogger gormlogger.Interface
	openHooks  []func(*gorm.DB) error

	mu          sync.RWMutex
	db          *gorm.DB
	initialized bool
}

// Option configures a Database
type Option func(*Database)

// WithLogger sets the GORM logger. Defaults to silent.
func WithLogger(l gormlogger.Interface) Option {
	return func(d *Database) {
		d.gormLogger = l
	}
}

// WithOpenHook runs fn on the fresh connection before migrations, e.g. to
// register tracing plugins
func WithOpenHook(fn func(*gorm.DB) error) Option {
	return func(d *Database) {
		d.openHooks = append(d.openHooks, fn)
	}
}

// NewDatabase creates an uninitialized store handle
func NewDatabase(cfg *config.DatabaseConfig, logger *zap.Logger, opts ...Option) *Database {
	d := &Database{
		cfg:        cfg,
		logger:     logger,
		gormLogger: gormlogger.Default.LogMode(gormlogger.Silent),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Initialize opens the store and brings the schema up to date. Calling it
// again after success is a no-op. Any failure is reported as
// shared.ErrStorageUnavailable and the handle stays uninitialized.
func (d *Database) Initialize(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.initialized {
		return nil
	}

	db, err := d.open(ctx)
	if err != nil {
		d.logger.Error("Failed to initialize store",
			zap.String("path", d.cfg.Path),
			zap.Error(err),
		)
		return fmt.Errorf("%w: %v", shared.ErrStorageUnavailable, err)
	}

	d.db = db
	d.initialized = true
	d.logger.Info("Store initialized",
		zap.String("path", d.cfg.Path),
		zap.Bool("in_memory", d.cfg.IsInMemory()),
	)
	return nil
}

func (d *Database) open(ctx context.Context) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(d.cfg.DSN()), &gorm.Config{
		Logger:                 d.gormLogger,
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
		TranslateError:         true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if d.cfg.IsInMemory() {
		// every new connection would see an empty database
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
		sqlDB.SetConnMaxLifetime(0)
	} else {
		sqlDB.SetMaxOpenConns(d.cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(d.cfg.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(time.Duration(d.cfg.ConnMaxLifetime) * time.Minute)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	for _, hook := range d.openHooks {
		if err := hook(db); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("open hook failed: %w", err)
		}
	}

	if err := d.migrate(sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return db, nil
}

func (d *Database) migrate(sqlDB *sql.DB) error {
	m, err := migration.New(sqlDB, d.logger)
	if err != nil {
		return err
	}
	defer m.Close()
	return m.Up()
}

// Conn returns the GORM handle bound to ctx
func (d *Database) Conn(ctx context.Context) (*gorm.DB, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if !d.initialized {
		return nil, shared.ErrNotInitialized
	}
	return d.db.WithContext(ctx), nil
}

// SQLDB returns the underlying connection pool
func (d *Database) SQLDB() (*sql.DB, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if !d.initialized {
		return nil, shared.ErrNotInitialized
	}
	return d.db.DB()
}

// Initialized reports whether Initialize has succeeded
func (d *Database) Initialized() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.initialized
}

// Transaction executes fn within a database transaction
func (d *Database) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	db, err := d.Conn(ctx)
	if err != nil {
		return err
	}
	return db.Transaction(fn)
}

// Ping checks if the database connection is alive
func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.SQLDB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the database connection. The handle can be initialized again.
func (d *Database) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.initialized {
		return nil
	}
	sqlDB, err := d.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	d.initialized = false
	d.db = nil
	return sqlDB.Close()
}

// Stats returns database connection pool statistics
func (d *Database) Stats() (ConnectionStats, error) {
	sqlDB, err := d.SQLDB()
	if err != nil {
		return ConnectionStats{}, err
	}
	stats := sqlDB.Stats()
	return ConnectionStats{
		MaxOpenConnections: stats.MaxOpenConnections,
		OpenConnections:    stats.OpenConnections,
		InUse:              stats.InUse,
		Idle:               stats.Idle,
		WaitCount:          stats.WaitCount,
		WaitDuration:       stats.WaitDuration,
	}, nil
}

// ConnectionStats holds database connection pool statistics
type ConnectionStats struct {
	MaxOpenConnections int
	OpenConnections    int
	InUse              int
	Idle               int
	WaitCount          int64
	WaitDuration       time.Duration
}
