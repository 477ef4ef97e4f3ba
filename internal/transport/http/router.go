package http

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"shopauth/internal/domain"
	"shopauth/internal/dto"
	"shopauth/internal/netutil"
	"shopauth/internal/service"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouterConfig struct {
	AdminToken     string // bearer token for /v1/admin endpoints
	LoginRateLimit int    // requests per minute per IP on the login route
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ip := strings.TrimSpace(strings.Split(xff, ",")[0])
		if normalized, ok := netutil.NormalizeIP(ip); ok {
			return normalized
		}
	}
	if xr := r.Header.Get("X-Real-IP"); xr != "" {
		if normalized, ok := netutil.NormalizeIP(xr); ok {
			return normalized
		}
	}
	if normalized, ok := netutil.NormalizeIP(r.RemoteAddr); ok {
		return normalized
	}
	return r.RemoteAddr
}

func NewRouter(auth service.AuthService, repair service.RepairService, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		limit := cfg.LoginRateLimit
		if limit <= 0 {
			limit = 30
		}
		r.Use(httprate.LimitByIP(limit, 1*time.Minute))

		r.Post("/v1/auth/register", func(w http.ResponseWriter, r *http.Request) {
			var req dto.RegisterRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "bad request", http.StatusBadRequest)
				return
			}
			res, err := auth.Register(r.Context(), req, clientIP(r), r.UserAgent())
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			writeJSON(w, http.StatusOK, res)
		})

		r.Post("/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
			var req dto.LoginRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "bad request", http.StatusBadRequest)
				return
			}
			req.BreakGlassToken = r.Header.Get("X-Break-Glass-Token")

			res, err := auth.Login(r.Context(), req, clientIP(r), r.UserAgent())
			if err != nil {
				writeLoginError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, res)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(requireAdminToken(cfg.AdminToken))

		r.Get("/v1/admin/integrity-scan", func(w http.ResponseWriter, r *http.Request) {
			report, err := repair.IntegrityScan(r.Context())
			if err != nil {
				http.Error(w, "scan failed", http.StatusInternalServerError)
				return
			}
			writeJSON(w, http.StatusOK, report)
		})
	})

	return r
}

// writeLoginError keeps the outward answer uniform: whichever internal
// branch denied the attempt, the caller sees 401 and no diagnosis text.
func writeLoginError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrUserDisabled):
		http.Error(w, "account disabled", http.StatusForbidden)
	case errors.Is(err, domain.ErrAuditWriteFailed):
		// The one loud failure: repair broke after a backup was written.
		http.Error(w, "internal error", http.StatusInternalServerError)
	default:
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
	}
}

func requireAdminToken(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" {
				http.Error(w, "admin endpoints disabled", http.StatusNotFound)
				return
			}
			got := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}
