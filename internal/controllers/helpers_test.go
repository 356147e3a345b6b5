package controllers

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/adamanr/shift_console/internal/config"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/mock"
)

// DBInterface defines the interface for database operations.
type DBInterface interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
	Close(ctx context.Context) error
	Ping(ctx context.Context) error
}

// RedisInterface defines the interface for Redis operations.
type RedisInterface interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Close() error
}

// MockDB represents a mock database connection.
type MockDB struct {
	mock.Mock
}

func (m *MockDB) Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	mockArgs := append([]interface{}{ctx, sql}, args...)
	callArgs := m.Called(mockArgs...)
	return callArgs.Get(0).(pgx.Rows), callArgs.Error(1)
}

func (m *MockDB) QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row {
	mockArgs := append([]interface{}{ctx, sql}, args...)
	callArgs := m.Called(mockArgs...)
	return callArgs.Get(0).(pgx.Row)
}

func (m *MockDB) Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	mockArgs := append([]interface{}{ctx, sql}, args...)
	callArgs := m.Called(mockArgs...)
	return callArgs.Get(0).(pgconn.CommandTag), callArgs.Error(1)
}

func (m *MockDB) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	return args.Get(0).(pgx.Tx), args.Error(1)
}

func (m *MockDB) Close(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockDB) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockRow represents a mock database row.
type MockRow struct {
	mock.Mock
	data       []interface{}
	err        error
	fieldDescs []pgconn.FieldDescription
}

// NewMockRow creates a new MockRow instance with custom FieldDescriptions.
func NewMockRow(data []interface{}, err error, fieldDescs []pgconn.FieldDescription) *MockRow {
	if fieldDescs == nil {
		fieldDescs = SwapConfigFieldDescriptions
	}
	return &MockRow{
		data:       data,
		err:        err,
		fieldDescs: fieldDescs,
	}
}

// FieldDescriptions returns the field descriptions for the row.
func (m *MockRow) FieldDescriptions() []pgconn.FieldDescription {
	return m.fieldDescs
}

// Scan scans the row data into the provided destinations.
func (m *MockRow) Scan(dest ...interface{}) error {
	if m.err != nil {
		return m.err
	}

	for i, val := range m.data {
		if i < len(dest) {
			switch d := dest[i].(type) {
			case *uint64:
				if v, ok := val.(uint64); ok {
					*d = v
				} else if v, ok := val.(*uint64); ok && v != nil {
					*d = *v
				}
			case *int64:
				if v, ok := val.(int64); ok {
					*d = v
				}
			case *string:
				if v, ok := val.(string); ok {
					*d = v
				} else if v, ok := val.(*string); ok && v != nil {
					*d = *v
				}
			case *time.Time:
				if v, ok := val.(time.Time); ok {
					*d = v
				} else if v, ok := val.(*time.Time); ok && v != nil {
					*d = *v
				}
			case *bool:
				if v, ok := val.(bool); ok {
					*d = v
				} else if v, ok := val.(*bool); ok && v != nil {
					*d = *v
				}
			case **uint64:
				if v, ok := val.(*uint64); ok {
					*d = v
				}
			case **string:
				if v, ok := val.(*string); ok {
					*d = v
				}
			case **time.Time:
				if v, ok := val.(*time.Time); ok {
					*d = v
				}
			case **bool:
				if v, ok := val.(*bool); ok {
					*d = v
				}
			case *interface{}:
				*d = val
			}
		}
	}
	return nil
}

// MockRows represents mock database rows.
type MockRows struct {
	mock.Mock
	rows       [][]interface{}
	pos        int
	err        error
	fieldDescs []pgconn.FieldDescription
}

func NewMockRows(rows [][]interface{}, err error, fieldDescs []pgconn.FieldDescription) *MockRows {
	if fieldDescs == nil {
		fieldDescs = SwapConfigFieldDescriptions
	}
	return &MockRows{
		rows:       rows,
		pos:        -1,
		err:        err,
		fieldDescs: fieldDescs,
	}
}

func (m *MockRows) FieldDescriptions() []pgconn.FieldDescription {
	return m.fieldDescs
}

func (m *MockRows) Next() bool {
	m.pos++
	return m.pos < len(m.rows)
}

func (m *MockRows) Close() {}

func (m *MockRows) Scan(dest ...interface{}) error {
	if m.err != nil {
		return m.err
	}
	if m.pos >= len(m.rows) {
		return nil
	}

	row := m.rows[m.pos]
	for i, val := range row {
		if i < len(dest) {
			switch d := dest[i].(type) {
			case *uint64:
				if v, ok := val.(uint64); ok {
					*d = v
				}
			case *int64:
				if v, ok := val.(int64); ok {
					*d = v
				}
			case *string:
				if v, ok := val.(string); ok {
					*d = v
				}
			case *time.Time:
				if v, ok := val.(time.Time); ok {
					*d = v
				}
			case *bool:
				if v, ok := val.(bool); ok {
					*d = v
				}
			case *interface{}:
				switch val := val.(type) {
				case uint64:
					*d = val
				case string:
					*d = val
				case time.Time:
					*d = val
				case *uint64:
					*d = val
				}
			}
		}
	}
	return nil
}

func (m *MockRows) Err() error {
	return m.err
}

func (m *MockRows) CommandTag() pgconn.CommandTag {
	return pgconn.NewCommandTag("")
}

func (m *MockRows) Values() ([]interface{}, error) {
	if m.pos >= len(m.rows) {
		return nil, nil
	}
	return m.rows[m.pos], nil
}

func (m *MockRows) RawValues() [][]byte {
	return nil
}

func (m *MockRows) Conn() *pgx.Conn {
	return nil
}

// MockRedis represents a mock Redis client.
type MockRedis struct {
	mock.Mock
}

func (m *MockRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	args := m.Called(ctx, key, value, expiration)

	if statusCmd, ok := args.Get(0).(*redis.StatusCmd); ok {
		return statusCmd
	}

	cmd := redis.NewStatusCmd(ctx)

	if len(args) > 0 {
		if args.Get(0) != nil {
			if err, ok := args.Get(0).(error); ok && err != nil {
				cmd.SetErr(err)
			} else {
				cmd.SetVal("OK")
			}
		} else {
			cmd.SetVal("OK")
		}
	} else {
		cmd.SetVal("OK")
	}

	return cmd
}

func (m *MockRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	args := m.Called(ctx, key)

	if stringCmd, ok := args.Get(0).(*redis.StringCmd); ok {
		return stringCmd
	}

	cmd := redis.NewStringCmd(ctx)

	if len(args) > 0 && args.Get(0) != nil {
		if err, ok := args.Get(0).(error); ok {
			cmd.SetErr(err)
		} else if len(args) > 1 {
			if val, ok := args.Get(1).(string); ok && val != "" {
				cmd.SetVal(val)
			}
		}
	}

	return cmd
}

func (m *MockRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	args := m.Called(ctx, keys)

	if intCmd, ok := args.Get(0).(*redis.IntCmd); ok {
		return intCmd
	}

	cmd := redis.NewIntCmd(ctx)

	if len(args) > 0 {
		if args.Get(0) != nil {
			if err, ok := args.Get(0).(error); ok && err != nil {
				cmd.SetErr(err)
			} else {
				cmd.SetVal(1)
			}
		}
	}

	return cmd
}

func (m *MockRedis) Close() error {
	args := m.Called()
	return args.Error(0)
}

func NewMockCommandTag(tag string, rowsAffected int64) pgconn.CommandTag {
	return pgconn.NewCommandTag(fmt.Sprintf("%s %d", tag, rowsAffected))
}

// Test helper functions.
func CreateTestDependencies(mockDB DBInterface, mockRedis RedisInterface) *Dependens {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	cfg := &config.Config{}
	cfg.Server.JWTSecret = "test-secret-key"
	cfg.Redis.SessionTTL = time.Hour

	return &Dependens{
		DB:     mockDB,
		Redis:  mockRedis,
		Logger: logger,
		Config: cfg,
	}
}

// Test data helpers.
var SwapConfigFieldDescriptions = []pgconn.FieldDescription{
	{Name: "id", DataTypeOID: 20},
	{Name: "department_id", DataTypeOID: 25},
	{Name: "swaps_enabled", DataTypeOID: 16},
	{Name: "requires_approval", DataTypeOID: 16},
	{Name: "min_advance_notice", DataTypeOID: 20},
	{Name: "max_swaps_per_month", DataTypeOID: 20},
	{Name: "created_at", DataTypeOID: 1114},
	{Name: "updated_at", DataTypeOID: 1114},
}

var AuditEventFieldDescriptions = []pgconn.FieldDescription{
	{Name: "id", DataTypeOID: 20},
	{Name: "actor_id", DataTypeOID: 25},
	{Name: "action", DataTypeOID: 25},
	{Name: "resource", DataTypeOID: 25},
	{Name: "details", DataTypeOID: 25},
	{Name: "created_at", DataTypeOID: 1114},
}
