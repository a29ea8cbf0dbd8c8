package shared

import (
	"context"
	"net/http"
	"strings"
)

// ActorHeader carries the acting principal for service-to-service callers
// that have no browser session.
const ActorHeader = "X-Helios-Actor"

type sessionContextKey struct{}

// ContextWithSession stores the session in context.
func ContextWithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, sess)
}

// SessionFromContext extracts the session from context.
func SessionFromContext(ctx context.Context) *Session {
	sess, _ := ctx.Value(sessionContextKey{}).(*Session)
	return sess
}

// ActorFromRequest resolves the acting principal: the session user when
// present, otherwise the actor header. Empty when neither is set.
func ActorFromRequest(r *http.Request) string {
	if sess := SessionFromContext(r.Context()); sess != nil {
		if user := strings.TrimSpace(sess.User()); user != "" {
			return user
		}
	}
	return strings.TrimSpace(r.Header.Get(ActorHeader))
}
