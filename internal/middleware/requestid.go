package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"imagestudio/internal/infra"
)

const (
	// RequestIDHeader carries the request identifier in both directions.
	RequestIDHeader = "X-Request-ID"

	maxRequestIDLen = 128
)

// RequestID reuses a caller-supplied X-Request-ID or mints a UUID, stores it
// on the context and echoes it on the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := strings.TrimSpace(r.Header.Get(RequestIDHeader))
		if rid == "" || len(rid) > maxRequestIDLen {
			rid = uuid.NewString()
		}
		ctx := WithRequestID(r.Context(), rid)
		w.Header().Set(RequestIDHeader, rid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func WithRequestID(ctx context.Context, rid string) context.Context {
	return infra.WithRequestID(ctx, rid)
}

func RequestIDFromContext(ctx context.Context) string {
	return infra.RequestIDFromContext(ctx)
}
