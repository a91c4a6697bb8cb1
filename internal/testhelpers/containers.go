// Package testhelpers manages shared test infrastructure, most notably a
// Postgres container that integration tests run the warehouse against.
package testhelpers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const postgresImage = "postgres:16-alpine"

// TestDB wraps a Postgres container with the raw zone migrated, shared
// across all integration tests in the binary.
type TestDB struct {
	Container testcontainers.Container
	DB        *sqlx.DB
	ConnStr   string
}

var (
	sharedDB  *TestDB
	sharedErr error
	setupOnce sync.Once
)

// GetTestDB returns the shared test database, starting the container on
// first use. Tests running with -short skip instead of requiring Docker.
func GetTestDB(t *testing.T) *TestDB {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode (requires Docker)")
	}

	setupOnce.Do(func() {
		sharedDB, sharedErr = setupTestDB()
	})
	if sharedErr != nil {
		t.Fatalf("failed to set up test database: %v", sharedErr)
	}
	return sharedDB
}

// GetWarehouseDB returns the shared database with any state left behind by
// earlier tests cleared: derived schemas dropped, raw tables truncated.
func GetWarehouseDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db := GetTestDB(t).DB
	reset := []string{
		"DROP SCHEMA IF EXISTS staging CASCADE",
		"DROP SCHEMA IF EXISTS marts CASCADE",
		"TRUNCATE raw.image_detections, raw.telegram_messages",
	}
	for _, stmt := range reset {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("failed to reset warehouse state: %v", err)
		}
	}
	return db
}

func setupTestDB() (*TestDB, error) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        postgresImage,
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_DB":       "telegram_dw_test",
			"POSTGRES_USER":     "telegram",
			"POSTGRES_PASSWORD": "test_password",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start postgres container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get container host: %w", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		return nil, fmt.Errorf("failed to get mapped port: %w", err)
	}

	connStr := fmt.Sprintf("postgres://telegram:test_password@%s:%s/telegram_dw_test?sslmode=disable",
		host, port.Port())

	var db *sqlx.DB
	for attempt := 0; attempt < 10; attempt++ {
		db, err = sqlx.Connect("postgres", connStr)
		if err == nil {
			break
		}
		time.Sleep(500 * time.Millisecond)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to test database: %w", err)
	}

	if err := applyRawZone(db); err != nil {
		return nil, err
	}

	return &TestDB{Container: container, DB: db, ConnStr: connStr}, nil
}

// applyRawZone runs the raw-zone migration so tests start from the same DDL
// the pipeline deploys with.
func applyRawZone(db *sqlx.DB) error {
	_, thisFile, _, _ := runtime.Caller(0)
	path := filepath.Join(filepath.Dir(thisFile), "..", "..", "migrations", "000001_raw_zone.up.sql")

	ddl, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read raw zone migration: %w", err)
	}
	if _, err := db.Exec(string(ddl)); err != nil {
		return fmt.Errorf("failed to apply raw zone migration: %w", err)
	}
	return nil
}
