package httpapi

import (
	"context"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/google/uuid"
)

// RequestIDHeader carries the per-request id, echoed back on the response.
const RequestIDHeader = "X-Request-ID"

type requestIDKey struct{}

// RequestIDFromContext returns the id assigned by the request-id middleware.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

// statusRecorder wraps http.ResponseWriter to remember the status code.
type statusRecorder struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func (sr *statusRecorder) WriteHeader(code int) {
	if !sr.written {
		sr.statusCode = code
		sr.written = true
	}
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	if !sr.written {
		sr.statusCode = http.StatusOK
		sr.written = true
	}
	return sr.ResponseWriter.Write(b)
}

// HTTPRecorder counts responses. *metrics.Collector implements it.
type HTTPRecorder interface {
	RecordHTTPStatus(statusCode int)
}

// loggingMiddleware logs one line per request and feeds rec, which may be nil.
func loggingMiddleware(l logging.Logger, rec HTTPRecorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sr := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(sr, r)

			if rec != nil {
				rec.RecordHTTPStatus(sr.statusCode)
			}

			args := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", sr.statusCode,
				"duration_ms", float64(time.Since(start).Microseconds()) / 1000,
				"request_id", RequestIDFromContext(r.Context()),
			}
			switch {
			case sr.statusCode >= 500:
				l.Error(r.Context(), "http_request", args...)
			case sr.statusCode >= 400:
				l.Warn(r.Context(), "http_request", args...)
			default:
				l.Info(r.Context(), "http_request", args...)
			}
		})
	}
}

func recoveryMiddleware(l logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if p := recover(); p != nil {
					l.Error(r.Context(), "panic recovered",
						"panic", p,
						"method", r.Method,
						"path", r.URL.Path,
						"stack", string(debug.Stack()),
					)
					writeError(w, common.ErrorInternal)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// IdentityResolver is the part of UserService the bearer middleware needs.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, token string) (*models.User, error)
	RequireActive(user *models.User) (*models.User, error)
}

// bearerAuth resolves "Authorization: Bearer <token>" and stores the user in
// the request context. Inactive users pass only when allowInactive is set.
func bearerAuth(users IdentityResolver, allowInactive bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := auth.ParseBearer(r.Header.Get("Authorization"))
			if !ok {
				writeError(w, common.ErrUnauthenticated)
				return
			}

			user, err := users.ResolveIdentity(r.Context(), token)
			if err != nil {
				writeError(w, err)
				return
			}
			if !allowInactive {
				if user, err = users.RequireActive(user); err != nil {
					writeError(w, err)
					return
				}
			}

			next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), user)))
		})
	}
}
