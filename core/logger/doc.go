// Package logger provides slog attribute helpers shared by the bridge
// packages.
//
// The helpers use the empty Attr pattern for nil safety: a nil error or an
// empty identifier produces an empty attribute that slog drops, so call
// sites never need explicit nil checks:
//
//	log.Error("secret rotation failed",
//		logger.Player(identity),
//		logger.Error(err),
//	)
//
// Components in this module accept a *slog.Logger through functional
// options and default to a discard logger, so logging is always safe to
// call and never mandatory to configure.
package logger
