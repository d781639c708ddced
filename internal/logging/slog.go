package logging

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Attribute keys shared by the driver, the server and the audit log.
const (
	KeyRunID      = "run_id"
	KeyStep       = "step"
	KeyTool       = "tool"
	KeyStatus     = "status"
	KeyDuration   = "duration"
	KeyError      = "error"
	KeyTraceID    = "trace_id"
	KeyRecipients = "recipients"
)

// RunID identifies one driver run.
func RunID(id string) slog.Attr {
	return slog.String(KeyRunID, id)
}

// Step names a driver interaction step.
func Step(step string) slog.Attr {
	return slog.String(KeyStep, step)
}

// Tool names an MCP tool.
func Tool(tool string) slog.Attr {
	return slog.String(KeyTool, tool)
}

// Status is "success" or "error".
func Status(status string) slog.Attr {
	return slog.String(KeyStatus, status)
}

func Duration(d time.Duration) slog.Attr {
	return slog.Duration(KeyDuration, d)
}

// TraceID returns an empty group, which handlers drop, when id is empty.
func TraceID(id string) slog.Attr {
	if id == "" {
		return slog.Group("")
	}
	return slog.String(KeyTraceID, id)
}

// Err returns an empty group for a nil error, so Err(maybeNil) is always safe to pass.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Group("")
	}
	return slog.String(KeyError, err.Error())
}

// Recipients logs mail recipients. Unless plain is set every address is
// replaced by HashAddress, which keeps records correlatable without exposing them.
func Recipients(addrs []string, plain bool) slog.Attr {
	if len(addrs) == 0 {
		return slog.Group("")
	}
	out := make([]string, len(addrs))
	for i, addr := range addrs {
		if plain {
			out[i] = addr
		} else {
			out[i] = HashAddress(addr)
		}
	}
	return slog.String(KeyRecipients, strings.Join(out, ","))
}

// HashAddress returns a stable pseudonym for an email address. Case and
// surrounding whitespace do not change the result.
func HashAddress(addr string) string {
	addr = strings.ToLower(strings.TrimSpace(addr))
	if addr == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(addr))
	return "addr:" + hex.EncodeToString(sum[:8])
}

// SanitizeToken reports only the length of a token. Even a prefix can help an attacker.
func SanitizeToken(token string) string {
	if token == "" {
		return "<empty>"
	}
	return fmt.Sprintf("[token:%d chars]", len(token))
}
