package web

import (
	"context"
	"net/http"

	"github.com/JonMunkholm/cutdesk/internal/core"
)

// WithRequestMetadata adds IP and User-Agent to context for audit logging.
func WithRequestMetadata(ctx context.Context, r *http.Request) context.Context {
	ip := r.RemoteAddr // Already processed by middleware.TrustedRealIP
	ua := r.Header.Get("User-Agent")
	ctx = core.ContextWithIPAddress(ctx, ip)
	ctx = core.ContextWithUserAgent(ctx, ua)
	return ctx
}

// roleOf returns the role the request views data as.
func roleOf(r *http.Request) string {
	return core.GetRoleFromContext(r.Context())
}
