package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dukerupert/cadence/internal/model"
)

const (
	keyHorizonDays = "horizon_days"
	keyDateLayout  = "date_layout"
)

// ErrSettingNotFound is returned by Get for unknown keys.
var ErrSettingNotFound = errors.New("setting not found")

type SettingsStore struct {
	db *sql.DB
}

func NewSettingsStore(db *sql.DB) *SettingsStore {
	return &SettingsStore{db: db}
}

func (s *SettingsStore) Get(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("%w: %q", ErrSettingNotFound, key)
	}
	if err != nil {
		return "", fmt.Errorf("get setting %q: %w", key, err)
	}
	return value, nil
}

func (s *SettingsStore) GetAll() (map[string]string, error) {
	rows, err := s.db.Query(`SELECT key, value FROM settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("get all settings: %w", err)
	}
	defer rows.Close()

	settings := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan setting: %w", err)
		}
		settings[key] = value
	}
	return settings, rows.Err()
}

// List returns every setting with its last update time.
func (s *SettingsStore) List() ([]model.Setting, error) {
	rows, err := s.db.Query(`SELECT key, value, updated_at FROM settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	defer rows.Close()

	var settings []model.Setting
	for rows.Next() {
		var st model.Setting
		if err := rows.Scan(&st.Key, &st.Value, &st.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan setting: %w", err)
		}
		settings = append(settings, st)
	}
	return settings, rows.Err()
}

func (s *SettingsStore) Set(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("set setting %q: %w", key, err)
	}
	return nil
}

// GetPreviewSettings reads the preview preferences. Missing or unparseable
// rows fall back to the values in defaults.
func (s *SettingsStore) GetPreviewSettings(defaults model.PreviewSettings) (model.PreviewSettings, error) {
	out := defaults

	for _, key := range []string{keyHorizonDays, keyDateLayout} {
		value, err := s.Get(key)
		if errors.Is(err, ErrSettingNotFound) {
			continue
		}
		if err != nil {
			return defaults, fmt.Errorf("get preview setting: %w", err)
		}

		switch key {
		case keyHorizonDays:
			if n, err := strconv.Atoi(value); err == nil && n > 0 {
				out.HorizonDays = n
			}
		case keyDateLayout:
			if value != "" {
				out.DateLayout = value
			}
		}
	}
	return out, nil
}

// UpdatePreviewSettings validates p and stores both keys in one transaction.
func (s *SettingsStore) UpdatePreviewSettings(p model.PreviewSettings) error {
	if err := p.Validate(); err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	values := map[string]string{
		keyHorizonDays: strconv.Itoa(p.HorizonDays),
		keyDateLayout:  p.DateLayout,
	}
	for key, value := range values {
		_, err := tx.Exec(
			`INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
			key, value, now,
		)
		if err != nil {
			return fmt.Errorf("update preview setting %q: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
