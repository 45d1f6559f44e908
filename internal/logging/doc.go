// Package logging provides structured logging for skillctx using slog.
//
// Loggers are built on the standard library's [log/slog] package. The text
// format uses a compact, TTY-aware [Handler] that colorizes levels when the
// output is a terminal; the JSON format uses [slog.JSONHandler].
//
// # Basic Usage
//
//	logger := logging.New(logging.Config{
//		Level:  slog.LevelInfo,
//		Format: logging.FormatText,
//		Output: os.Stderr,
//	})
//	logger.Info("registry loaded", "documents", 42)
//
// Library packages never log through the global default. They accept a
// *slog.Logger and fall back to [NewDiscard].
//
// # Testing
//
// [ForTest] routes log output through t.Log so it only shows up for failing
// tests or under -v.
package logging
