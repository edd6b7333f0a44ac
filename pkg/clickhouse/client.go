package clickhouse

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	"github.com/ClickHouse/clickhouse-go/v2"
)

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Client owns the database/sql pool of the forecast archive.
type Client struct {
	db       *sql.DB
	database string
}

// NewClient opens the pool and pings the server once.
func NewClient(opts ...ClientOption) (*Client, error) {
	cfg := defaultClientConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("clickhouse config: %w", err)
	}

	db := clickhouse.OpenDB(cfg.options())

	ctx, cancel := context.WithTimeout(context.Background(), cfg.PingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("clickhouse ping %s:%d: %w", cfg.Host, cfg.Port, err)
	}

	return &Client{db: db, database: cfg.Database}, nil
}

func (c *Client) DB() *sql.DB {
	return c.db
}

// Database is the database the client was opened against.
func (c *Client) Database() string {
	return c.database
}

func (c *Client) Health(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

func (c *Client) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// InitSchema runs each statement in order and stops at the first failure.
func (c *Client) InitSchema(ctx context.Context, stmts []string) error {
	for i, stmt := range stmts {
		if _, err := c.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema statement %d: %w", i+1, err)
		}
	}
	return nil
}

// ForecastSchema returns the DDL of the forecast archive: one row per
// predicted day, rows of one forecast sharing forecast_id.
func ForecastSchema(database, table string) ([]string, error) {
	for _, name := range []string{database, table} {
		if !identifier.MatchString(name) {
			return nil, fmt.Errorf("invalid identifier %q", name)
		}
	}
	return []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.%s (
	forecast_id String,
	generation UInt64,
	requested_days UInt8,
	base_price Nullable(Float64),
	issued_at DateTime64(3),
	resolved_at DateTime64(3),
	day UInt8,
	target_date Date,
	predicted_price Float64
) ENGINE = MergeTree
ORDER BY (issued_at, forecast_id, day)`, database, table),
	}, nil
}
