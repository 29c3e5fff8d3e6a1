package httpserver

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"atrium/contexts/identity-access/tenancy-service/application"
	domainerrors "atrium/contexts/identity-access/tenancy-service/domain/errors"
	"atrium/internal/shared/tenantctx"

	"github.com/google/uuid"
)

// Middleware is one stage of the request pipeline.
type Middleware func(http.Handler) http.Handler

// Chain applies stages in order: the first middleware is the outermost.
func Chain(handler http.Handler, stages ...Middleware) http.Handler {
	for i := len(stages) - 1; i >= 0; i-- {
		handler = stages[i](handler)
	}
	return handler
}

// RequestID assigns a request id when the caller did not send one.
func RequestID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("X-Request-Id") == "" {
				r.Header.Set("X-Request-Id", uuid.NewString())
			}
			next.ServeHTTP(w, r)
		})
	}
}

// AccessLog logs one line per request after it completes.
func AccessLog(logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.Info("request handled",
				"event", "http_request_handled",
				"module", "internal/platform/httpserver",
				"layer", "platform",
				"method", r.Method,
				"path", r.URL.Path,
				"request_id", r.Header.Get("X-Request-Id"),
				"duration_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}

// TenantResolution runs the resolver before any handler and binds the
// outcome to the request context. It must be ordered before every
// route that can reach a scoped repository.
//
// overrideEnabled gates the explicit-routing-key header: the value is
// only read in non-production processes.
func TenantResolution(resolver application.Resolver, overrideEnabled bool, logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			overrideKey := ""
			if overrideEnabled && resolver.OverrideHeader != "" {
				overrideKey = r.Header.Get(resolver.OverrideHeader)
			}

			resolution, err := resolver.Resolve(r.Context(), r.Host, overrideKey, r.URL.Path)
			if err != nil {
				switch {
				case errors.Is(err, domainerrors.ErrTenantNotFound):
					// Deliberately generic: do not reveal whether the
					// subdomain exists.
					writeNotFound(w)
				case errors.Is(err, domainerrors.ErrCatalogUnavailable):
					logger.Error("tenant catalog unavailable; failing closed",
						"event", "tenant_catalog_unavailable",
						"module", "internal/platform/httpserver",
						"layer", "platform",
						"request_id", r.Header.Get("X-Request-Id"),
					)
					writeError(w, http.StatusServiceUnavailable, "temporarily_unavailable", "please retry")
				default:
					writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
				}
				return
			}

			next.ServeHTTP(w, r.WithContext(tenantctx.With(r.Context(), resolution.Context)))
		})
	}
}
