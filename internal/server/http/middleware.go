package http

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/securelogin/internal/common"
	"github.com/dmitrijs2005/securelogin/internal/server/access"
	"github.com/dmitrijs2005/securelogin/internal/server/metrics"
	"github.com/dmitrijs2005/securelogin/internal/server/models"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type ctxKey string

const (
	ctxKeyRequestID ctxKey = "request_id"
	ctxKeyPrincipal ctxKey = "principal"
	ctxKeyToken     ctxKey = "token"
)

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get("X-Request-Id")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", reqID)
		ctx := context.WithValue(r.Context(), ctxKeyRequestID, reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func requestIDFromContext(ctx context.Context) string {
	s, _ := ctx.Value(ctxKeyRequestID).(string)
	return s
}

func (h *Handler) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				h.log.Error(r.Context(), "panic recovered",
					"request_id", requestIDFromContext(r.Context()),
					"method", r.Method,
					"path", r.URL.Path,
					"panic", fmt.Sprint(rec),
				)
				writeError(w, http.StatusInternalServerError, CodeInternal, common.ErrorInternal.Error())
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (r *statusRecorder) WriteHeader(statusCode int) {
	r.statusCode = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}

func (r *statusRecorder) Write(payload []byte) (int, error) {
	if r.statusCode == 0 {
		r.statusCode = http.StatusOK
	}
	return r.ResponseWriter.Write(payload)
}

// loggingMiddleware logs every request and counts it by route pattern, so
// ids in paths do not explode the label space.
func (h *Handler) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)

		status := rec.statusCode
		if status == 0 {
			status = http.StatusOK
		}

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		metrics.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()

		fields := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", requestIDFromContext(r.Context()),
		}
		switch {
		case status >= 500:
			h.log.Error(r.Context(), "http request", fields...)
		case status >= 400:
			h.log.Warn(r.Context(), "http request", fields...)
		default:
			h.log.Debug(r.Context(), "http request", fields...)
		}
	})
}

// sessionToken reads the session cookie, falling back to a bearer header.
func sessionToken(r *http.Request) string {
	if c, err := r.Cookie(common.SessionCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	const prefix = "Bearer "
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, prefix) {
		return strings.TrimSpace(strings.TrimPrefix(h, prefix))
	}
	return ""
}

// authenticateMiddleware attaches the principal of a valid session token.
// Requests with a missing, expired or revoked token continue anonymously.
func (h *Handler) authenticateMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := sessionToken(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		principal, err := h.auth.Verify(r.Context(), token)
		if err != nil {
			h.log.Debug(r.Context(), "session rejected", "err", err)
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), ctxKeyPrincipal, principal)
		ctx = context.WithValue(ctx, ctxKeyToken, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// accessMiddleware enforces the route policy.
func (h *Handler) accessMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var authorities []string
		principal := principalFromContext(r.Context())
		if principal != nil {
			authorities = principal.Authorities
			if authorities == nil {
				authorities = []string{}
			}
		}

		switch h.policy.Decide(r.URL.Path, authorities) {
		case access.Allow:
			next.ServeHTTP(w, r)
		case access.Unauthenticated:
			writeError(w, http.StatusUnauthorized, CodeUnauthorized, LoginMessage(CodeUnauthorized))
		default:
			h.log.Warn(r.Context(), "access denied", "username", principal.Username, "path", r.URL.Path)
			writeError(w, http.StatusForbidden, CodeAccessDenied, "access denied")
		}
	})
}

func principalFromContext(ctx context.Context) *models.Principal {
	p, _ := ctx.Value(ctxKeyPrincipal).(*models.Principal)
	return p
}

func tokenFromContext(ctx context.Context) string {
	t, _ := ctx.Value(ctxKeyToken).(string)
	return t
}

// clientAddress returns the peer address unless the peer is a trusted proxy.
// Behind trusted proxies it walks X-Forwarded-For from the right and returns
// the first hop that is not itself trusted.
func (h *Handler) clientAddress(r *http.Request) string {
	addr, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		addr = r.RemoteAddr
	}
	if !h.isTrustedProxy(addr) {
		return addr
	}

	hops := strings.Split(r.Header.Get("X-Forwarded-For"), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		if hop == "" {
			continue
		}
		addr = hop
		if !h.isTrustedProxy(hop) {
			break
		}
	}
	return addr
}

func (h *Handler) isTrustedProxy(address string) bool {
	if len(h.trustedProxies) == 0 {
		return false
	}
	ip, err := netip.ParseAddr(address)
	if err != nil {
		return false
	}
	ip = ip.Unmap()
	for _, p := range h.trustedProxies {
		if p.Contains(ip) {
			return true
		}
	}
	return false
}
