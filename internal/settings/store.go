// Package settings persists small per-application JSON settings, such as
// the notification permission answer, in SQLite.
package settings

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"time"
)

const DefaultMaxSettingsBytes = 64 << 10

// Known setting keys.
const (
	KeyAllowNotification = "allow_notification"
)

type Store struct {
	db       *sql.DB
	maxBytes int
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:       db,
		maxBytes: DefaultMaxSettingsBytes,
	}
}

// Get returns the full settings object for an application identifier, or
// {} if nothing has been stored.
func (s *Store) Get(ctx context.Context, identifier string) (json.RawMessage, error) {
	if identifier == "" {
		return nil, fmt.Errorf("application identifier is empty")
	}

	var raw string
	err := s.db.QueryRowContext(ctx, "SELECT settings FROM app_settings WHERE identifier = ?;", identifier).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return json.RawMessage(`{}`), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}
	if !json.Valid([]byte(raw)) {
		return nil, fmt.Errorf("stored settings are invalid JSON for identifier=%q", identifier)
	}
	return json.RawMessage(raw), nil
}

// ShallowMerge applies updates as a shallow merge (top-level keys replaced).
// The merged settings are persisted and returned.
func (s *Store) ShallowMerge(ctx context.Context, identifier string, updates json.RawMessage) (json.RawMessage, error) {
	if identifier == "" {
		return nil, fmt.Errorf("application identifier is empty")
	}

	upd, err := decodeObjectOrEmpty(updates)
	if err != nil {
		return nil, fmt.Errorf("decode settings update: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var curRaw string
	err = tx.QueryRowContext(ctx, "SELECT settings FROM app_settings WHERE identifier = ?;", identifier).Scan(&curRaw)
	if errors.Is(err, sql.ErrNoRows) {
		curRaw = "{}"
	} else if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	cur, err := decodeObjectOrEmpty(json.RawMessage(curRaw))
	if err != nil {
		return nil, fmt.Errorf("decode stored settings: %w", err)
	}

	maps.Copy(cur, upd)

	merged, err := json.Marshal(cur)
	if err != nil {
		return nil, fmt.Errorf("marshal merged settings: %w", err)
	}
	if len(merged) > s.maxBytes {
		return nil, fmt.Errorf("settings exceed max size (%d bytes)", s.maxBytes)
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err = tx.ExecContext(ctx, `
INSERT INTO app_settings(identifier, settings, updated_at)
VALUES(?, ?, ?)
ON CONFLICT(identifier) DO UPDATE SET
  settings = excluded.settings,
  updated_at = excluded.updated_at;
`, identifier, string(merged), now)
	if err != nil {
		return nil, fmt.Errorf("upsert settings: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return json.RawMessage(merged), nil
}

// Bool reads a boolean setting. ok is false when the key is unset.
func (s *Store) Bool(ctx context.Context, identifier, key string) (value, ok bool, err error) {
	raw, err := s.Get(ctx, identifier)
	if err != nil {
		return false, false, err
	}
	m, err := decodeObjectOrEmpty(raw)
	if err != nil {
		return false, false, err
	}
	v, found := m[key]
	if !found || string(v) == "null" {
		return false, false, nil
	}
	if err := json.Unmarshal(v, &value); err != nil {
		return false, false, fmt.Errorf("setting %q is not a boolean: %w", key, err)
	}
	return value, true, nil
}

// SetBool stores a boolean setting.
func (s *Store) SetBool(ctx context.Context, identifier, key string, value bool) error {
	upd, err := json.Marshal(map[string]bool{key: value})
	if err != nil {
		return err
	}
	_, err = s.ShallowMerge(ctx, identifier, upd)
	return err
}

func decodeObjectOrEmpty(b json.RawMessage) (map[string]json.RawMessage, error) {
	if len(b) == 0 {
		return map[string]json.RawMessage{}, nil
	}
	if !json.Valid(b) {
		return nil, fmt.Errorf("invalid JSON")
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	if m == nil {
		m = map[string]json.RawMessage{}
	}
	return m, nil
}
