// Package models defines the value types shared by the audiovault packages.
//
// The package contains three groups of types:
//
// 1. Job state: the snapshot the tracker hands out
//   - [ProcessInfo] : status, percent and message for one stage
//   - [Status], [Stage] : stage lifecycle and identity
//   - [Session] : the three stages of one job plus the command being run
//
// 2. Form inputs: user choices validated before any command is synthesized
//   - [SpotifyForm], [YouTubeForm] : download options
//   - [CoverForm], [FolderForm], [TrackTags] : post-processing options
//
// 3. Preferences persisted in the settings store
//   - [Settings] : user preferences, serialized under "user-settings"
//   - [Theme] : dark or light, serialized under "theme"
//
// Validation failures wrap [shared.ErrValidation] so callers can match with errors.Is.
package models
