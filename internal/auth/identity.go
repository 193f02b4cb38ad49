package auth

import "context"

// Identity is the authenticated user behind a request.
type Identity struct {
	UserID    uint
	Username  string
	SessionID string
}

type ctxKey struct{}

func IntoContext(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok
}
