// Package tasks tracks the three stages of an audio job with real-time progress reporting.
//
// # Stages
//
// A session has one [models.ProcessInfo] per stage:
//
//  1. download : spotdl or yt-dlp fetching audio
//  2. embed : lyrics or thumbnails written into the tracks
//  3. playlist : an m3u file listing the downloaded tracks
//
// [Tracker.StartDownload] opens a new session. It is refused while a download
// is active, stops whatever the previous session left running and resets the
// embed and playlist stages to pending. Embedding requires a completed
// download. [Tracker.CreatePlaylist] validates the name first and returns as
// soon as the work is accepted.
//
// # Progress Sources
//
// Each stage is driven by a [Source] chosen by a [SourceFactory]:
//   - [SimulatedSources] : fixed-step timers, used for demos and tests
//   - [ExecSources] : local processes with progress parsed from their output
//   - [RelaySources] : commands posted to a remote execution relay
//
// Progress is clamped to 0..100, never moves backwards while a stage is
// active, and only reaches 100 when the source finishes successfully.
//
// # Updates
//
// Every mutation is sent as an [Update] on an optional channel. Sends use
// select with default so a slow reader never blocks a stage.
package tasks
