package logging

import "log/slog"

// Common field names for consistent logging across services.
const (
	FieldService   = "service"
	FieldEventID   = "event_id"
	FieldEventType = "event_type"
	FieldSeverity  = "severity"
	FieldStatus    = "status"
	FieldSource    = "source"
	FieldSubject   = "subject"
	FieldMethod    = "method"
	FieldPath      = "path"
	FieldDuration  = "duration_ms"
	FieldError     = "error"
)

// Service returns a slog attribute for the service name.
func Service(name string) slog.Attr {
	return slog.String(FieldService, name)
}

// EventID returns a slog attribute for an event ID.
func EventID(id string) slog.Attr {
	return slog.String(FieldEventID, id)
}

// EventType returns a slog attribute for the event type.
func EventType(t string) slog.Attr {
	return slog.String(FieldEventType, t)
}

// Severity returns a slog attribute for the event severity.
func Severity(s string) slog.Attr {
	return slog.String(FieldSeverity, s)
}

// Status returns a slog attribute for the envelope status.
func Status(s string) slog.Attr {
	return slog.String(FieldStatus, s)
}

// Source returns a slog attribute for the event source.
func Source(s string) slog.Attr {
	return slog.String(FieldSource, s)
}

// Subject returns a slog attribute for a message bus subject.
func Subject(s string) slog.Attr {
	return slog.String(FieldSubject, s)
}

// Method returns a slog attribute for the HTTP method.
func Method(method string) slog.Attr {
	return slog.String(FieldMethod, method)
}

// Path returns a slog attribute for the HTTP path.
func Path(path string) slog.Attr {
	return slog.String(FieldPath, path)
}

// Duration returns a slog attribute for duration in milliseconds.
func Duration(ms int64) slog.Attr {
	return slog.Int64(FieldDuration, ms)
}

// Error returns a slog attribute for an error.
func Error(err error) slog.Attr {
	return slog.String(FieldError, err.Error())
}
