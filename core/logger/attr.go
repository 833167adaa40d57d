package logger

import (
	"log/slog"
	"strconv"
)

// Attribute helpers use the empty Attr pattern for nil safety.
// This allows calls like log.Info("msg", logger.Error(err)) without explicit
// nil checks, following the principle of making zero values useful.

// Group creates a group of attributes under a single key.
func Group(name string, attrs ...slog.Attr) slog.Attr {
	return slog.Attr{Key: name, Value: slog.GroupValue(attrs...)}
}

// Error creates an attribute for a single error under the key "error".
// Returns empty Attr for nil errors, enabling safe usage without nil checks.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Component creates an attribute for component names.
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Player creates an attribute for the stable player identity.
func Player(identity string) slog.Attr {
	if identity == "" {
		return slog.Attr{}
	}
	return slog.String("player", identity)
}

// Session creates an attribute for a per-player session id.
func Session(id uint64) slog.Attr {
	return slog.String("session_id", strconv.FormatUint(id, 10))
}

// Page creates an attribute locating a page within its application.
func Page(appID, pageID string) slog.Attr {
	if appID == "" && pageID == "" {
		return slog.Attr{}
	}
	return slog.String("page", appID+"/"+pageID)
}

// Conn creates an attribute for a connection identifier.
func Conn(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("conn_id", id)
}

// Action creates an attribute for protocol action names.
func Action(action string) slog.Attr {
	return slog.String("action", action)
}

// Reason creates an attribute for session termination reasons.
func Reason(r interface{ String() string }) slog.Attr {
	if r == nil {
		return slog.Attr{}
	}
	return slog.String("reason", r.String())
}
