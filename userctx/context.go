package userctx

import "context"

// Context key type
type contextKey string

const (
	actorKey     contextKey = "actor"
	userIDKey    contextKey = "user_id"
	requestIDKey contextKey = "request_id"
)

// Anonymous is the actor recorded for requests without a staff session
const Anonymous = "anonymous"

// SetUser adds the signed-in staff member to the request context
func SetUser(ctx context.Context, id, displayName string) context.Context {
	ctx = context.WithValue(ctx, userIDKey, id)
	return context.WithValue(ctx, actorKey, displayName)
}

// GetUserID retrieves the staff user ID from the request context
func GetUserID(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

// GetActor returns the display name of the caller, or Anonymous
func GetActor(ctx context.Context) string {
	actor, ok := ctx.Value(actorKey).(string)
	if !ok || actor == "" {
		return Anonymous
	}
	return actor
}

// SetRequestID adds the correlation ID of the request to the context
func SetRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// GetRequestID retrieves the correlation ID, or "" outside a request
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
