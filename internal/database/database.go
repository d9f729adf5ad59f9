package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/GoogleCloudPlatform/db-feedback-report/internal/config"
)

// DBAdapter defines the interface for database operations needed by the
// scanner and the report pipeline.
type DBAdapter interface {
	ListAllColumns(ctx context.Context) ([]ColumnDescriptor, error)
	QuoteIdentifier(name string) (string, error)
	QuoteLiteral(value string) string
	DateExpr(quotedColumn string) string
	DefaultTemporalTypes() []string
	QueryBatch(ctx context.Context, batch string) ([]ReportRow, error)
	Ping(ctx context.Context) error
	Close() error
	GetConfig() config.DatabaseConfig
}

var _ DBAdapter = (*DB)(nil)

// DB holds the database connection pool and dialect handler.
type DB struct {
	Pool    *sql.DB
	Handler DialectHandler
	Config  config.DatabaseConfig
}

// ColumnDescriptor identifies one column in the catalog's column-metadata view.
type ColumnDescriptor struct {
	Schema   string
	Table    string
	Name     string
	DataType string
}

// ReportRow is one row of the combined feedback volume result set.
type ReportRow struct {
	TableName string
	Date      time.Time
	Volume    int64
}

// DialectHandler is implemented once per supported engine. Handlers register
// themselves in init().
type DialectHandler interface {
	CreateCloudSQLPool(cfg config.DatabaseConfig) (*sql.DB, error)
	CreateStandardPool(cfg config.DatabaseConfig) (*sql.DB, error)
	QuoteIdentifier(name string) (string, error)
	QuoteLiteral(value string) string
	DateExpr(quotedColumn string) string
	DefaultTemporalTypes() []string
	ListAllColumns(db *DB) ([]ColumnDescriptor, error)
}

var (
	dialectHandlers = make(map[string]DialectHandler)
	mu              sync.RWMutex
)

func RegisterDialectHandler(dialect string, handler DialectHandler) {
	mu.Lock()
	defer mu.Unlock()
	if _, exists := dialectHandlers[dialect]; exists {
		log.Printf("WARN: Dialect handler for '%s' is being overwritten.", dialect)
	}
	dialectHandlers[dialect] = handler
}

func GetDialectHandler(dialect string) (DialectHandler, error) {
	mu.RLock()
	defer mu.RUnlock()
	handler, ok := dialectHandlers[dialect]
	if !ok {
		return nil, fmt.Errorf("unsupported database dialect: %s", dialect)
	}
	return handler, nil
}

var globalDBConfig *config.DatabaseConfig

// SetConfig stores the connection configuration resolved from flags.
func SetConfig(cfg *config.DatabaseConfig) {
	globalDBConfig = cfg
}

// GetConfig returns the connection configuration resolved from flags.
func GetConfig() *config.DatabaseConfig {
	return globalDBConfig
}

func New(cfg config.DatabaseConfig) (*DB, error) {
	handler, err := GetDialectHandler(cfg.Dialect)
	if err != nil {
		return nil, err
	}

	var pool *sql.DB
	if strings.HasPrefix(cfg.Dialect, "cloudsql") {
		pool, err = handler.CreateCloudSQLPool(cfg)
	} else {
		pool, err = handler.CreateStandardPool(cfg)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create database pool for dialect %s: %w", cfg.Dialect, err)
	}

	ctx := context.Background()
	if err := pool.PingContext(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to database (ping failed) for dialect %s: %w", cfg.Dialect, err)
	}

	return &DB{
		Pool:    pool,
		Handler: handler,
		Config:  cfg,
	}, nil
}

func (db *DB) GetConfig() config.DatabaseConfig {
	return db.Config
}

func (db *DB) Ping(ctx context.Context) error {
	if db.Pool == nil {
		return fmt.Errorf("database connection pool is not initialized")
	}
	return db.Pool.PingContext(ctx)
}

func (db *DB) Close() error {
	if db.Pool != nil {
		return db.Pool.Close()
	}
	log.Println("WARN: Attempted to close a nil database connection pool.")
	return nil
}

// Query and QueryRow expose the pool to dialect handlers.
func (db *DB) Query(query string, args ...interface{}) (*sql.Rows, error) {
	return db.Pool.Query(query, args...)
}

func (db *DB) QueryRow(query string, args ...interface{}) *sql.Row {
	return db.Pool.QueryRow(query, args...)
}

func (db *DB) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return db.Pool.QueryRowContext(ctx, query, args...)
}

func (db *DB) ListAllColumns(ctx context.Context) ([]ColumnDescriptor, error) {
	if db.Handler == nil {
		return nil, fmt.Errorf("dialect handler not initialized")
	}
	return db.Handler.ListAllColumns(db)
}

func (db *DB) QuoteIdentifier(name string) (string, error) {
	if db.Handler == nil {
		return "", fmt.Errorf("dialect handler not initialized")
	}
	return db.Handler.QuoteIdentifier(name)
}

func (db *DB) QuoteLiteral(value string) string {
	if db.Handler == nil {
		return ""
	}
	return db.Handler.QuoteLiteral(value)
}

func (db *DB) DateExpr(quotedColumn string) string {
	if db.Handler == nil {
		return ""
	}
	return db.Handler.DateExpr(quotedColumn)
}

func (db *DB) DefaultTemporalTypes() []string {
	if db.Handler == nil {
		return nil
	}
	return db.Handler.DefaultTemporalTypes()
}

// QueryBatch executes the synthesized statement batch as a single query.
// The engine either returns the full unioned result set or the whole batch
// fails; there is no partial-success state.
func (db *DB) QueryBatch(ctx context.Context, batch string) ([]ReportRow, error) {
	if db.Pool == nil {
		return nil, fmt.Errorf("database connection pool is not initialized")
	}
	if strings.TrimSpace(batch) == "" {
		return nil, fmt.Errorf("refusing to execute an empty statement batch")
	}

	rows, err := db.Pool.QueryContext(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("failed executing statement batch: %w", err)
	}
	defer rows.Close()

	var result []ReportRow
	for rows.Next() {
		var r ReportRow
		if err := rows.Scan(&r.TableName, &r.Date, &r.Volume); err != nil {
			return nil, fmt.Errorf("error scanning report row: %w", err)
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating report rows: %w", err)
	}
	return result, nil
}
