// Package db owns the shared gorm connection used by the rule, profile and
// unit repositories.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/gsindri/kaupa-skil-sub004/pkg/config"
	"github.com/gsindri/kaupa-skil-sub004/pkg/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Client wraps the shared gorm connection.
type Client struct {
	conn   *gorm.DB
	driver string
}

// Pinger is what the readiness probe needs.
type Pinger interface {
	Ping(ctx context.Context) error
}

// New opens the configured database, applies pool limits and checks it answers.
func New(ctx context.Context, cfg config.DBConfig, logg *logger.Logger) (*Client, error) {
	if cfg.DSN == "" {
		return nil, errors.New("database DSN is required")
	}
	driver, dialector, err := openDialector(cfg)
	if err != nil {
		return nil, err
	}

	conn, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 newQueryLog(logg, cfg.SlowQuery),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	client := &Client{conn: conn, driver: driver}
	pool, err := client.SQL()
	if err != nil {
		return nil, err
	}
	setPool(pool, cfg)

	if err := client.Ping(ctx); err != nil {
		_ = pool.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}

	logg.Info(logg.WithField(ctx, "db_driver", driver), "database connected")
	return client, nil
}

// NewFromGorm wraps an already opened connection, mostly for tests.
func NewFromGorm(conn *gorm.DB) *Client {
	return &Client{conn: conn, driver: conn.Dialector.Name()}
}

func openDialector(cfg config.DBConfig) (string, gorm.Dialector, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", DriverPostgres, "postgresql", "pgx":
		// simple protocol keeps pgbouncer in transaction mode happy
		return DriverPostgres, postgres.New(postgres.Config{DSN: cfg.DSN, PreferSimpleProtocol: true}), nil
	case DriverSQLite, "sqlite3":
		return DriverSQLite, sqlite.Open(cfg.DSN), nil
	}
	return "", nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
}

func setPool(pool *sql.DB, cfg config.DBConfig) {
	if n := cfg.MaxOpenConns; n > 0 {
		pool.SetMaxOpenConns(n)
	}
	if n := cfg.MaxIdleConns; n > 0 {
		pool.SetMaxIdleConns(n)
	}
	if d := cfg.ConnMaxLifetime; d > 0 {
		pool.SetConnMaxLifetime(d)
	}
	if d := cfg.ConnMaxIdleTime; d > 0 {
		pool.SetConnMaxIdleTime(d)
	}
}

func (c *Client) DB() *gorm.DB { return c.conn }

// Driver is "postgres" or "sqlite".
func (c *Client) Driver() string { return c.driver }

// SQL exposes the database/sql pool, which goose needs.
func (c *Client) SQL() (*sql.DB, error) {
	pool, err := c.conn.DB()
	if err != nil {
		return nil, fmt.Errorf("sql pool: %w", err)
	}
	return pool, nil
}

func (c *Client) Ping(ctx context.Context) error {
	pool, err := c.SQL()
	if err != nil {
		return err
	}
	return pool.PingContext(ctx)
}

func (c *Client) Close() error {
	pool, err := c.SQL()
	if err != nil {
		return err
	}
	return pool.Close()
}

// WithTx runs fn in a transaction. It commits when fn returns nil and rolls
// back on an error or a panic.
func (c *Client) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return c.conn.WithContext(ctx).Transaction(fn)
}
