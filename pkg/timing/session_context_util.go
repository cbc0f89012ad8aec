package timing

import (
	"context"

	log "github.com/sirupsen/logrus"
)

type contextKey string

const SessionKey contextKey = "editorSession"

// SessionHeader names the request header that selects an editor session.
const SessionHeader = "X-Editor-Session"

const DefaultSession = "default"

// CurrentSession returns the editor session stored in ctx, or DefaultSession.
func CurrentSession(ctx context.Context) string {
	session, ok := ctx.Value(SessionKey).(string)
	if !ok || session == "" {
		log.Trace("editor session not found in context")
		return DefaultSession
	}
	return session
}

func WithSession(ctx context.Context, session string) context.Context {
	return context.WithValue(ctx, SessionKey, session)
}
