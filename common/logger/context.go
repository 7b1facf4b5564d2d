package logger

import "context"

type contextKey string

const logFieldsKey contextKey = "log_fields"

// LogFields contains structured fields automatically added to all logs within a
// context. Fields flow through context enrichment so business context (user,
// channel, workflow, message) shows up in every log statement without each call
// site repeating it.
type LogFields struct {
	UserID    *int64  // Internal directory user ID
	MessageID *int64  // Inbound message ID
	Channel   *string // Channel identifier (e.g. "whatsapp", "telegram")
	Workflow  *string // Workflow name ("daily_report" or "onboarding")
	ScopeKey  *string // State store scope key
	Component string  // Component name (e.g. "intake.worker", "intake.queue.consumer")
}

// WithLogFields enriches context with structured log fields.
// Multiple calls merge fields, with newer non-nil/non-empty values taking
// precedence. Context timeouts and cancellation are preserved.
func WithLogFields(ctx context.Context, fields LogFields) context.Context {
	existing := GetLogFields(ctx)
	merged := mergeFields(existing, fields)
	return context.WithValue(ctx, logFieldsKey, merged)
}

// GetLogFields retrieves log fields from context.
// Returns empty LogFields if none are set.
func GetLogFields(ctx context.Context) LogFields {
	if fields, ok := ctx.Value(logFieldsKey).(LogFields); ok {
		return fields
	}
	return LogFields{}
}

func mergeFields(existing, next LogFields) LogFields {
	result := existing

	if next.UserID != nil {
		result.UserID = next.UserID
	}
	if next.MessageID != nil {
		result.MessageID = next.MessageID
	}
	if next.Channel != nil {
		result.Channel = next.Channel
	}
	if next.Workflow != nil {
		result.Workflow = next.Workflow
	}
	if next.ScopeKey != nil {
		result.ScopeKey = next.ScopeKey
	}
	if next.Component != "" {
		result.Component = next.Component
	}

	return result
}

// Ptr is a helper to create a pointer from a value.
// Useful for setting LogFields inline: logger.WithLogFields(ctx, logger.LogFields{UserID: logger.Ptr(id)})
func Ptr[T any](v T) *T {
	return &v
}

// Truncate truncates a string to maxLen characters, appending "..." if
// truncated. Useful for logging potentially long strings like message bodies.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
