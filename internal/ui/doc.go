// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for the tracked library:
//  1. [LibraryView] : Browse active entries with progress and bindings
//  2. [ArchiveView] : Browse entries superseded by migration
//  3. [ConfirmView] : Confirm a manual sync of the selected entry
//  4. [ResultView] : Display the sync outcome
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Sync operations run as commands so the interface never blocks on tracker APIs.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, tab, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
