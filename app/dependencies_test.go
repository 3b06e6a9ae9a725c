package app

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upb/newsletter/config"
	"github.com/upb/newsletter/repositories/postgres"
	"go.uber.org/zap/zaptest"
)

func TestNewDependenciesFromDB(t *testing.T) {
	t.Run("wires repositories and initializes schema", func(t *testing.T) {
		ctx := context.Background()
		logger := zaptest.NewLogger(t)
		sqlDB, mock, err := sqlmock.New()
		require.NoError(t, err)

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS subscriptions")).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(regexp.QuoteMeta("CREATE INDEX IF NOT EXISTS")).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()
		mock.ExpectClose()

		deps, err := NewDependenciesFromDB(ctx, testConfig(t), postgres.WrapDB(sqlDB, logger), logger)
		require.NoError(t, err)

		// Verify infrastructure
		assert.NotNil(t, deps.Config)
		assert.NotNil(t, deps.DB)
		require.NotNil(t, deps.Metrics)
		count, err := testutil.GatherAndCount(deps.Metrics.Registry(), "go_sql_open_connections")
		require.NoError(t, err)
		assert.Equal(t, 1, count, "pool statistics are exported")

		// Verify repositories
		assert.NotNil(t, deps.Subscriptions)

		require.NoError(t, deps.Close(ctx))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("schema failure is reported", func(t *testing.T) {
		ctx := context.Background()
		logger := zaptest.NewLogger(t)
		sqlDB, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer sqlDB.Close()

		mock.ExpectBegin().WillReturnError(errors.New("connection refused"))

		deps, err := NewDependenciesFromDB(ctx, testConfig(t), postgres.WrapDB(sqlDB, logger), logger)
		assert.Nil(t, deps)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to initialize database")
	})

	t.Run("schema bootstrap and metrics can be disabled", func(t *testing.T) {
		ctx := context.Background()
		logger := zaptest.NewLogger(t)
		sqlDB, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer sqlDB.Close()

		cfg := testConfig(t)
		cfg.Database.InitSchema = false
		cfg.Observability.MetricsEnabled = false

		deps, err := NewDependenciesFromDB(ctx, cfg, postgres.WrapDB(sqlDB, logger), logger)
		require.NoError(t, err)
		assert.Nil(t, deps.Metrics)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestNewDependencies(t *testing.T) {
	t.Run("database connection failure", func(t *testing.T) {
		ctx := context.Background()
		cfg := testConfig(t)
		cfg.Database.Host = "127.0.0.1"
		cfg.Database.Port = 1
		logger := zaptest.NewLogger(t)

		deps, err := NewDependencies(ctx, cfg, logger)
		assert.Error(t, err)
		assert.Nil(t, deps)
		assert.Contains(t, err.Error(), "failed to initialize database")
	})
}

func TestDependenciesClose(t *testing.T) {
	ctx := context.Background()
	logger := zaptest.NewLogger(t)
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	cfg := testConfig(t)
	cfg.Database.InitSchema = false
	mock.ExpectClose()

	deps, err := NewDependenciesFromDB(ctx, cfg, postgres.WrapDB(sqlDB, logger), logger)
	require.NoError(t, err)

	assert.NoError(t, deps.Close(ctx))
	// Second close is a no-op
	assert.NoError(t, deps.Close(ctx))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Test helpers

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	return &config.Config{
		Environment: "test",
		Server: config.ServerConfig{
			Host:            "127.0.0.1",
			Port:            0,
			ReadTimeout:     5 * time.Second,
			WriteTimeout:    5 * time.Second,
			ShutdownTimeout: 5 * time.Second,
		},
		Database: config.DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			User:            "postgres",
			Password:        "password",
			Database:        "newsletter_test",
			SSLMode:         "disable",
			MaxOpenConns:    5,
			MaxIdleConns:    2,
			ConnMaxLifetime: 5 * time.Minute,
			ConnectTimeout:  time.Second,
			InitSchema:      true,
		},
		Observability: config.ObservabilityConfig{
			ServiceName:       "newsletter-test",
			LogFilter:         "debug",
			TraceExporter:     "none",
			TracingSampleRate: 1,
			MetricsEnabled:    true,
		},
	}
}
