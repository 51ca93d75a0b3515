// Package svcfields holds the shared log field names used across zscale.
package svcfields

import (
	"strings"

	"pkt.systems/pslog"
)

// SubsystemKey tags every log entry with the component that produced it.
const SubsystemKey = pslog.TrustedString("sys")

// Subsystem joins non-empty parts with dots.
func Subsystem(parts ...string) string {
	filtered := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.Trim(part, ". "); part != "" {
			filtered = append(filtered, part)
		}
	}
	return strings.Join(filtered, ".")
}

// WithSubsystem returns logger tagged with subsystem. A nil logger becomes a
// no-op logger.
func WithSubsystem(logger pslog.Logger, subsystem string) pslog.Logger {
	if logger == nil {
		logger = pslog.NoopLogger()
	}
	if subsystem = Subsystem(subsystem); subsystem == "" {
		return logger
	}
	return logger.With(SubsystemKey, subsystem)
}
