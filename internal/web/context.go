package web

import (
	"context"
	"net/http"

	"github.com/JonMunkholm/memberdesk/internal/core"
)

// WithRequestMetadata adds IP and User-Agent to context for the import history.
func WithRequestMetadata(ctx context.Context, r *http.Request) context.Context {
	ctx = core.ContextWithIPAddress(ctx, clientIP(r))
	ctx = core.ContextWithUserAgent(ctx, r.UserAgent())
	return ctx
}
