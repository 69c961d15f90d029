// Package repositories implements SQLite persistence for user preferences.
//
// The store is a single key-value table created by the embedded migrations in
// [shared.RunMigrations]. Values are plain strings; structured values are
// stored as JSON without a schema version.
//
// Keys:
//   - "theme" : the UI colour scheme, read with [SettingsRepository.Theme]
//   - "user-settings" : [models.Settings] as JSON, read with [SettingsRepository.UserSettings]
//
// Missing keys fall back to defaults rather than failing.
package repositories
