package services

import "context"

type contextKey string

const (
	activityIDKey contextKey = "activity_id"
	runIDKey      contextKey = "run_id"
)

// WithActivityID annotates context with the activity being processed.
func WithActivityID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, activityIDKey, id)
}

// ActivityIDFromContext extracts the activity identifier if present.
func ActivityIDFromContext(ctx context.Context) (int64, bool) {
	v := ctx.Value(activityIDKey)
	if v == nil {
		return 0, false
	}
	if id, ok := v.(int64); ok {
		return id, true
	}
	return 0, false
}

// WithRunID annotates context with the export run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext returns the run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if id, ok := ctx.Value(runIDKey).(string); ok && id != "" {
		return id, true
	}
	return "", false
}
