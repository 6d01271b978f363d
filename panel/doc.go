// Package panel is the log viewer that mirrors logger output.
//
// A Panel is a logger.Mirror: attach it with logger.ActivateUI and every
// emitted log, error and info call becomes an Entry. Entries whose
// arguments include maps, slices or structs get a one-line preview and a
// collapsed detail pane with the full pretty-printed text.
//
// The model can be shown two ways. View draws it as a floating widget in a
// tview application (Ctrl+L shows and hides it, Enter expands an entry,
// Ctrl+X clears, Ctrl+E exports). NewRouter serves it over HTTP, including
// a text/plain export download named slog-export-<timestamp>.txt.
package panel
