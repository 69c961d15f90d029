package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/desertthunder/audiovault/internal/models"
	"github.com/desertthunder/audiovault/internal/shared"
)

const (
	KeyTheme        = "theme"
	KeyUserSettings = "user-settings"
)

// SettingsRepository stores string values by key in the settings table.
type SettingsRepository struct {
	db *sql.DB
}

// NewSettingsRepository creates a new [SettingsRepository] with the given database connection
func NewSettingsRepository(db *sql.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get returns the value stored under key, or [shared.ErrNotFound].
func (r *SettingsRepository) Get(ctx context.Context, key string) (string, error) {
	query := `SELECT value FROM settings WHERE key = ?`

	var value string
	err := r.db.QueryRowContext(ctx, query, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: setting %q", shared.ErrNotFound, key)
	}
	if err != nil {
		return "", fmt.Errorf("failed to get setting: %w", err)
	}
	return value, nil
}

// Set inserts or replaces the value under key.
func (r *SettingsRepository) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return fmt.Errorf("%w: setting key cannot be empty", shared.ErrValidation)
	}

	query := `
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`

	if _, err := r.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to set setting: %w", err)
	}
	return nil
}

// Delete removes key. Deleting a missing key returns [shared.ErrNotFound].
func (r *SettingsRepository) Delete(ctx context.Context, key string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM settings WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("failed to delete setting: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: setting %q", shared.ErrNotFound, key)
	}
	return nil
}

// Keys lists stored keys in ascending order.
func (r *SettingsRepository) Keys(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT key FROM settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("failed to list settings: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan setting key: %w", err)
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

// Theme returns the stored theme, defaulting to dark.
func (r *SettingsRepository) Theme(ctx context.Context) (models.Theme, error) {
	value, err := r.Get(ctx, KeyTheme)
	if errors.Is(err, shared.ErrNotFound) {
		return models.ThemeDark, nil
	}
	if err != nil {
		return "", err
	}

	theme, err := models.ParseTheme(value)
	if err != nil {
		return models.ThemeDark, nil
	}
	return theme, nil
}

func (r *SettingsRepository) SetTheme(ctx context.Context, theme models.Theme) error {
	return r.Set(ctx, KeyTheme, string(theme))
}

// ToggleTheme flips the stored theme in one transaction and returns the new value.
func (r *SettingsRepository) ToggleTheme(ctx context.Context) (models.Theme, error) {
	var next models.Theme
	err := WithTx(ctx, r.db, func(tx *sql.Tx) error {
		var current string
		err := tx.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, KeyTheme).Scan(&current)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			current = string(models.ThemeDark)
		case err != nil:
			return fmt.Errorf("failed to get theme: %w", err)
		}

		theme, perr := models.ParseTheme(current)
		if perr != nil {
			theme = models.ThemeDark
		}
		next = theme.Toggle()

		_, err = tx.ExecContext(ctx, `
			INSERT INTO settings (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
		`, KeyTheme, string(next))
		if err != nil {
			return fmt.Errorf("failed to set theme: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return next, nil
}

// UserSettings returns the stored preferences, or [models.DefaultSettings] when none are saved.
//
// Fields absent from the stored JSON keep their default values.
func (r *SettingsRepository) UserSettings(ctx context.Context) (models.Settings, error) {
	settings := models.DefaultSettings()

	value, err := r.Get(ctx, KeyUserSettings)
	if errors.Is(err, shared.ErrNotFound) {
		return settings, nil
	}
	if err != nil {
		return settings, err
	}

	if err := json.Unmarshal([]byte(value), &settings); err != nil {
		return models.DefaultSettings(), fmt.Errorf("failed to decode user settings: %w", err)
	}
	return settings, nil
}

func (r *SettingsRepository) SaveUserSettings(ctx context.Context, settings models.Settings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to encode user settings: %w", err)
	}
	return r.Set(ctx, KeyUserSettings, string(data))
}
