package database

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gorm.io/gorm"
)

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	_, err := Open(Options{})
	if err == nil {
		t.Fatalf("expected error when no path supplied")
	}
}

func TestOpenAppliesPragmasWithDefaultTimeout(t *testing.T) {
	t.Parallel()

	database := openTestDatabase(t, Options{Path: filepath.Join(t.TempDir(), "playshelf.db")})

	var foreignKeys int
	if queryErr := database.Raw("PRAGMA foreign_keys;").Scan(&foreignKeys).Error; queryErr != nil {
		t.Fatalf("querying foreign_keys pragma failed: %v", queryErr)
	}
	if foreignKeys != 1 {
		t.Fatalf("expected foreign keys pragma to be enabled, got %d", foreignKeys)
	}

	var journalMode string
	if queryErr := database.Raw("PRAGMA journal_mode;").Scan(&journalMode).Error; queryErr != nil {
		t.Fatalf("querying journal_mode pragma failed: %v", queryErr)
	}
	if !strings.EqualFold(strings.TrimSpace(journalMode), "wal") {
		t.Fatalf("expected journal mode WAL, got %q", journalMode)
	}

	var busyTimeout int
	if queryErr := database.Raw("PRAGMA busy_timeout;").Scan(&busyTimeout).Error; queryErr != nil {
		t.Fatalf("querying busy_timeout pragma failed: %v", queryErr)
	}

	expectedTimeout := int((5 * time.Second) / time.Millisecond)
	if busyTimeout != expectedTimeout {
		t.Fatalf("expected busy timeout %d, got %d", expectedTimeout, busyTimeout)
	}
}

func TestOpenHonoursBusyTimeoutAndConnectionLimits(t *testing.T) {
	t.Parallel()

	opts := Options{
		Path:         filepath.Join(t.TempDir(), "playshelf_limits.db"),
		BusyTimeout:  1500 * time.Millisecond,
		MaxOpenConns: 7,
		MaxIdleConns: 3,
		ConnMaxIdle:  2 * time.Second,
		ConnMaxLife:  5 * time.Second,
	}
	database := openTestDatabase(t, opts)

	var busyTimeout int
	if queryErr := database.Raw("PRAGMA busy_timeout;").Scan(&busyTimeout).Error; queryErr != nil {
		t.Fatalf("querying busy_timeout pragma failed: %v", queryErr)
	}
	if expected := int(opts.BusyTimeout / time.Millisecond); busyTimeout != expected {
		t.Fatalf("expected busy timeout %d, got %d", expected, busyTimeout)
	}

	sqlDB, err := SQLDB(database)
	if err != nil {
		t.Fatalf("SQLDB returned error: %v", err)
	}
	if stats := sqlDB.Stats(); stats.MaxOpenConnections != opts.MaxOpenConns {
		t.Fatalf("expected MaxOpenConns %d, got %d", opts.MaxOpenConns, stats.MaxOpenConnections)
	}
}

type uniqueProbe struct {
	ID   uint   `gorm:"primaryKey"`
	Slug string `gorm:"uniqueIndex;not null"`
}

func TestUniqueViolationIsDetected(t *testing.T) {
	t.Parallel()

	database := openTestDatabase(t, Options{Path: filepath.Join(t.TempDir(), "unique.db")})
	if err := database.AutoMigrate(&uniqueProbe{}); err != nil {
		t.Fatalf("AutoMigrate returned error: %v", err)
	}

	if err := database.Create(&uniqueProbe{Slug: "acme"}).Error; err != nil {
		t.Fatalf("first insert returned error: %v", err)
	}
	err := database.Create(&uniqueProbe{Slug: "acme"}).Error
	if err == nil {
		t.Fatalf("expected duplicate insert to fail")
	}
	if !IsUniqueViolation(err) {
		t.Fatalf("expected unique violation, got %v", err)
	}
	if IsUniqueViolation(errors.New("disk I/O error")) {
		t.Fatalf("expected unrelated error not to be a unique violation")
	}
	if IsUniqueViolation(nil) {
		t.Fatalf("expected nil not to be a unique violation")
	}
}

func TestNotFoundIsDetected(t *testing.T) {
	t.Parallel()

	database := openTestDatabase(t, Options{Path: filepath.Join(t.TempDir(), "missing.db")})
	if err := database.AutoMigrate(&uniqueProbe{}); err != nil {
		t.Fatalf("AutoMigrate returned error: %v", err)
	}

	var probe uniqueProbe
	err := database.First(&probe, "slug = ?", "nobody").Error
	if !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if IsNotFound(gorm.ErrDuplicatedKey) {
		t.Fatalf("expected duplicate key not to be treated as missing")
	}
}

func TestPing(t *testing.T) {
	t.Parallel()

	database := openTestDatabase(t, Options{Path: filepath.Join(t.TempDir(), "ping.db")})
	if err := Ping(context.Background(), database); err != nil {
		t.Fatalf("Ping returned error: %v", err)
	}
	if err := Ping(context.Background(), nil); err == nil {
		t.Fatalf("expected error when database is nil")
	}
}

func TestSQLDBWithNilDatabase(t *testing.T) {
	t.Parallel()

	_, err := SQLDB(nil)
	if err == nil {
		t.Fatalf("expected error when database is nil")
	}
}

func openTestDatabase(t *testing.T, opts Options) *gorm.DB {
	t.Helper()

	database, err := Open(opts)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() {
		if closeErr := Close(database); closeErr != nil {
			t.Errorf("closing database failed: %v", closeErr)
		}
	})
	return database
}
