package handlers

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/pnlboard/leaderboard-api/internal/store"
)

// hashToken creates a SHA256 hash of a token for constant-time comparison
func hashToken(token string) string {
	h := sha256.New()
	h.Write([]byte(token))
	return hex.EncodeToString(h.Sum(nil))
}

// Health check endpoint
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
	})
}

// Ready pings every configured dependency in parallel.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	var mu sync.Mutex
	checks := make(map[string]bool, len(h.checks))

	g, gctx := errgroup.WithContext(ctx)
	for name, ping := range h.checks {
		name, ping := name, ping
		g.Go(func() error {
			err := ping(gctx)
			if err != nil {
				h.logger.Warnw("Readiness check failed", "dependency", name, "error", err)
			}
			mu.Lock()
			checks[name] = err == nil
			mu.Unlock()
			return nil
		})
	}
	g.Wait()

	allHealthy := true
	for _, ok := range checks {
		if !ok {
			allHealthy = false
			break
		}
	}

	status := http.StatusOK
	if !allHealthy {
		status = http.StatusServiceUnavailable
	}
	body := map[string]interface{}{
		"ready":  allHealthy,
		"checks": checks,
	}
	if h.snapshots != nil {
		body["queueDepth"] = h.snapshots.QueueDepth()
	}
	h.jsonResponse(w, status, body)
}

// AdminAuthMiddleware validates the admin token on system routes
func (h *Handler) AdminAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get("X-Admin-Token")
		if token == "" {
			token = strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		}

		if token == "" {
			h.errorResponse(w, http.StatusUnauthorized, "Missing admin token")
			return
		}
		if h.adminHash == "" || subtle.ConstantTimeCompare([]byte(hashToken(token)), []byte(h.adminHash)) != 1 {
			h.logger.Warnw("Rejected admin request", "path", r.URL.Path, "remote", r.RemoteAddr)
			h.errorResponse(w, http.StatusUnauthorized, "Invalid admin token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// AccessLog logs one line per request.
func (h *Handler) AccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		h.logger.Infow("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"requestId", middleware.GetReqID(r.Context()),
		)
	})
}

// allowWrite applies the per-wallet write limit. Limiter failures let the
// write through.
func (h *Handler) allowWrite(w http.ResponseWriter, r *http.Request, address string) bool {
	if h.limiter == nil {
		return true
	}
	ok, err := h.limiter.Allow(r.Context(), address)
	if err != nil {
		h.logger.Warnw("Rate limiter unavailable", "wallet", address, "error", err)
	}
	if !ok {
		w.Header().Set("Retry-After", "60")
		h.errorResponse(w, http.StatusTooManyRequests, "Too many updates, slow down")
		return false
	}
	return true
}

// storeError maps a service error onto an HTTP status.
func (h *Handler) storeError(w http.ResponseWriter, err error, action, address string) {
	if errors.Is(err, store.ErrNotFound) {
		h.errorResponse(w, http.StatusNotFound, "User not found")
		return
	}
	h.logger.Errorw("Request failed", "action", action, "wallet", address, "error", err)
	h.errorResponse(w, http.StatusInternalServerError, "Failed to "+action)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodySize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if err := h.validator.Struct(dst); err != nil {
		h.errorResponse(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

func (h *Handler) jsonResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *Handler) errorResponse(w http.ResponseWriter, status int, message string) {
	h.jsonResponse(w, status, map[string]string{"error": message})
}
