// Package logging configures slog for gmailmcp and defines the attributes its
// log records share.
//
// Handlers always write to stderr. In "run" mode stdout carries the console
// report, and in "serve" mode it carries the JSON-RPC stream of the stdio
// transport.
//
//	logger := logging.Setup(os.Stderr, debug, slog.LevelWarn)
//	logger.Debug("step finished", logging.Step("search_emails"), logging.Err(err))
//
// Access tokens only appear through SanitizeToken. Mail recipients only appear
// through Recipients, hashed unless the audit configuration allows clear text.
package logging
