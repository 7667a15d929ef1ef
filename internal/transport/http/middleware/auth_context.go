package middleware

import "context"

type ctxKey int

const (
	ctxKeyUserID ctxKey = iota
	ctxKeyEmail
	ctxKeySuperuser
)

// WithUser stores the authenticated identity on the context.
func WithUser(ctx context.Context, userID, email string, superuser bool) context.Context {
	ctx = context.WithValue(ctx, ctxKeyUserID, userID)
	ctx = context.WithValue(ctx, ctxKeyEmail, email)
	return context.WithValue(ctx, ctxKeySuperuser, superuser)
}

func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ctxKeyUserID).(string)
	return id, ok && id != ""
}

func EmailFromContext(ctx context.Context) (string, bool) {
	e, ok := ctx.Value(ctxKeyEmail).(string)
	return e, ok && e != ""
}

func IsSuperuserFromContext(ctx context.Context) bool {
	su, _ := ctx.Value(ctxKeySuperuser).(bool)
	return su
}
