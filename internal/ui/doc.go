// Package ui implements a terminal stage monitor using bubbletea's Elm architecture.
//
// The [Model] shows one progress bar per job stage (download, embed, playlist)
// with its status and message. It listens on the [tasks.Update] channel of a
// tracker and re-reads the authoritative [models.Session] with every update
// and on a short refresh tick, so dropped updates never leave the view stale.
//
// Keys: e starts embedding, p writes the playlist, c cancels every stage,
// t toggles the dark/light [Palette], ? expands help and q quits. Help is
// rendered with charmbracelet/bubbles/help.
package ui
