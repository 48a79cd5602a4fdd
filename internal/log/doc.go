// Package log provides slog loggers that never print credentials.
//
// SecureHandler wraps any slog.Handler and sanitizes every attribute
// before it reaches the underlying handler:
//   - attributes whose key names a credential (authorization, cookie,
//     token, password, ...) are replaced entirely
//   - string values that are a credential (a "token <t>" or "Bearer <t>"
//     header value, a JWT, a GitHub token) are replaced entirely
//   - GitHub tokens embedded in longer strings and in errors are cut out,
//     leaving the rest of the text readable
//
// harvey sends its GitHub token on every API call and retryablehttp logs
// requests through the same logger, so every logger in the program is
// created here.
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	slog.SetDefault(logger)
package log
