// Package logger provides a drop-in console logger with level filtering,
// message formatting and truncation, optional structured output, named
// timers and an optional UI mirror.
//
// # Levels
//
// Levels are ordered none < error < info < log < all. A call at level L is
// emitted only while the logger is enabled and L is at or below the current
// level:
//
//	logger.SetLevel(logger.InfoLevel) // error and info pass, log is dropped
//	logger.Disable()                  // everything is dropped
//	logger.Enable()                   // back to level-based filtering
//
// # Formatting
//
// Every argument is annotated with a coarse type name and rendered: strings
// verbatim, everything else as two-space indented JSON. Content longer than
// 100 characters is cut and suffixed with an ellipsis unless truncation is
// switched off. A leading upper-case identifier becomes the line's tag:
//
//	logger.Log("DB", "connected", map[string]any{"host": "localhost"})
//	// [LOG] [DB] [STRING] connected [OBJECT] {
//	//   "host": "localhost"
//	// }
//
// # Structured output
//
// With SetStructured(true) each call produces a record with level, ISO-8601
// timestamp, tag and message, printed as a [STRUCTURED] JSON line.
//
// # Timers
//
//	logger.TimeStart("load")
//	logger.TimeEnd("load") // [TIME] [LOAD] [STRING] Ended at: 12:00:01 (+0.42s)
//
// # UI mirror
//
// ActivateUI attaches a Mirror (see the panel package) that receives the raw
// arguments of every emitted call. Activation is one-way; Reset leaves it in
// place.
//
// Nothing in this package panics or returns an error to the caller:
// unserializable values, missing timers and consoles that cannot be cleared
// are all reported as log output.
package logger
