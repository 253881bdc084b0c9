// Package prefs is the local key/value preference store, backed by SQLite.
// Keys are namespaced strings (finanz:ui:*), booleans are encoded "1"/"0",
// structured values are JSON strings.
package prefs

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	applog "github.com/AdriBusse/FinanZApp2025-sub000/internal/log"
)

const uiNamespace = "finanz:ui:"

// ProfileKey stores the cached non-sensitive user profile.
const ProfileKey = uiNamespace + "profile"

// UIKey builds a namespaced preference key.
func UIKey(parts ...string) string {
	return uiNamespace + strings.Join(parts, ":")
}

// DashboardKey is the per-user layout key. Scoping by user id prevents one
// account's widgets from bleeding into another's.
func DashboardKey(userID string) string {
	return UIKey("dashboard", userID)
}

type Store struct {
	db     *sql.DB
	logger *applog.Logger
}

// Open creates or opens the preference database and applies migrations.
func Open(dbPath string, logger *applog.Logger) (*Store, error) {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create prefs directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open prefs database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping prefs database: %w", err)
	}
	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate prefs database: %w", err)
	}

	return &Store{
		db:     db,
		logger: logger.WithComponent(applog.ComponentPrefs),
	}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// GetString returns the raw value for key. The second return is false when
// the key was never set.
func (s *Store) GetString(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM preferences WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get preference %s: %w", key, err)
	}
	return value, true, nil
}

// SetString upserts the raw value for key.
func (s *Store) SetString(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO preferences (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, value)
	if err != nil {
		return fmt.Errorf("set preference %s: %w", key, err)
	}
	return nil
}

// GetBool decodes a "1"/"0" preference. Missing keys return the fallback.
func (s *Store) GetBool(ctx context.Context, key string, fallback bool) (bool, error) {
	value, ok, err := s.GetString(ctx, key)
	if err != nil || !ok {
		return fallback, err
	}
	return value == "1", nil
}

// SetBool stores a boolean as "1"/"0".
func (s *Store) SetBool(ctx context.Context, key string, value bool) error {
	encoded := "0"
	if value {
		encoded = "1"
	}
	return s.SetString(ctx, key, encoded)
}

// GetJSON decodes a JSON-encoded preference into out. The first return is
// false when the key was never set.
func (s *Store) GetJSON(ctx context.Context, key string, out any) (bool, error) {
	value, ok, err := s.GetString(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal([]byte(value), out); err != nil {
		return false, fmt.Errorf("decode preference %s: %w", key, err)
	}
	return true, nil
}

// SetJSON stores value JSON-encoded.
func (s *Store) SetJSON(ctx context.Context, key string, value any) error {
	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode preference %s: %w", key, err)
	}
	return s.SetString(ctx, key, string(encoded))
}

// Delete removes a preference. Missing keys are not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM preferences WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("delete preference %s: %w", key, err)
	}
	return nil
}
