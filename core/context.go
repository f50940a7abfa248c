package core

import "context"

// Context keys for values the engine attaches to plugin invocations
type contextKey string

const (
	analysisIDKey contextKey = "analysisID"
	userIDKey     contextKey = "userID"
)

// withAnalysisID tags the plugin context with the owning analysis id
func withAnalysisID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, analysisIDKey, id)
}

// AnalysisIDFrom returns the analysis id attached to a plugin context.
// Custom plugins can use it to correlate their own logs with the
// submission being processed.
func AnalysisIDFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(analysisIDKey).(string)
	return id, ok && id != ""
}

// withUserID tags the plugin context with the submitting user
func withUserID(ctx context.Context, userID string) context.Context {
	if userID == "" {
		return ctx
	}
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFrom returns the submitting user attached to a plugin context
func UserIDFrom(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey).(string)
	return userID, ok && userID != ""
}
