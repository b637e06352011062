package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/JonMunkholm/cutdesk/internal/core"
	"github.com/JonMunkholm/cutdesk/internal/logging"
)

// RoleHeader names the role a client views data as.
const RoleHeader = "X-Role"

// Role stores the X-Role header in the request context, where the service
// reads it to hide columns and to stamp audit entries. Requests without the
// header see every column.
func Role(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role := strings.TrimSpace(r.Header.Get(RoleHeader))
		if role == "" {
			next.ServeHTTP(w, r)
			return
		}
		ctx := core.ContextWithRole(r.Context(), role)
		ctx = logging.AppendCtx(ctx, slog.String("role", role))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
