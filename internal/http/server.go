package http

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"butce/internal/middleware/ratelimit"
	"butce/internal/middleware/trace"
	"butce/internal/services"
	"butce/internal/store"
)

// Services bundles the dependencies the handlers need.
type Services struct {
	Users      *services.UserService
	Budgets    *services.BudgetService
	Assets     *services.AssetService
	Expenses   *services.ExpenseService
	Portfolio  *services.PortfolioService
	Dashboards *services.DashboardService
	Store      store.Store
}

type Server struct {
	http.Server
	deps         Services
	rateLimiter  *ratelimit.Limiter
	tracer       *trace.Middleware
	startedAt    time.Time
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(addr string, deps Services) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		deps:        deps,
		rateLimiter: ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		startedAt:   time.Now(),
	}
	s.tracer = trace.NewMiddleware(extractClientIP)
	s.Server.Handler = s.tracer.Middleware(mux)

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("POST /users", s.limited(s.handleCreateUser))
	mux.HandleFunc("GET /users/{username}", s.secured(s.handleGetUser))
	mux.HandleFunc("POST /users/{username}/partner", s.limited(s.handleLinkPartner))
	mux.HandleFunc("PUT /users/{username}/portfolio-in-budget", s.limited(s.handleSetPortfolioInBudget))

	mux.HandleFunc("GET /assets", s.secured(s.handleListAssets))
	mux.HandleFunc("POST /assets", s.limited(s.handleCreateAsset))
	mux.HandleFunc("GET /assets/{id}", s.secured(s.handleGetAsset))
	mux.HandleFunc("PUT /assets/{id}", s.limited(s.handleUpdateAsset))
	mux.HandleFunc("DELETE /assets/{id}", s.limited(s.handleDeleteAsset))

	mux.HandleFunc("GET /budget", s.secured(s.handleGetBudget))
	mux.HandleFunc("PUT /budget", s.limited(s.handleSetBudget))

	mux.HandleFunc("GET /expenses", s.secured(s.handleListExpenses))
	mux.HandleFunc("POST /expenses", s.limited(s.handleCreateExpense))
	mux.HandleFunc("GET /expenses/{id}", s.secured(s.handleGetExpense))
	mux.HandleFunc("PUT /expenses/{id}", s.limited(s.handleUpdateExpense))
	mux.HandleFunc("DELETE /expenses/{id}", s.limited(s.handleDeleteExpense))

	mux.HandleFunc("GET /portfolio", s.secured(s.handleListPortfolio))
	mux.HandleFunc("POST /portfolio", s.limited(s.handleCreatePortfolioItem))
	mux.HandleFunc("GET /portfolio/{id}", s.secured(s.handleGetPortfolioItem))
	mux.HandleFunc("PUT /portfolio/{id}", s.limited(s.handleUpdatePortfolioItem))
	mux.HandleFunc("DELETE /portfolio/{id}", s.limited(s.handleDeletePortfolioItem))

	mux.HandleFunc("GET /dashboard", s.secured(s.handleDashboard))

	mux.HandleFunc("GET /categories", s.secured(s.handleListCategories))
	mux.HandleFunc("GET /vendors", s.secured(s.handleListVendors))

	mux.HandleFunc("GET /notifications", s.secured(s.handleListNotifications))
	mux.HandleFunc("POST /notifications/{id}/read", s.limited(s.handleMarkNotificationRead))

	return s
}

// secured wraps a handler with the security headers.
func (s *Server) secured(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		setSecurityHeaders(w)
		next(w, r)
	}
}

// limited adds rate limiting on top of the security headers; mutations get
// it, reads do not.
func (s *Server) limited(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		setSecurityHeaders(w)
		if !s.rateLimiter.Allow(extractClientIP(r)) {
			writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "rate limit exceeded"})
			return
		}
		next(w, r)
	}
}

func setSecurityHeaders(w http.ResponseWriter) {
	h := w.Header()
	h.Set("X-Content-Type-Options", "nosniff")
	h.Set("X-Frame-Options", "DENY")
	h.Set("Referrer-Policy", "no-referrer")
	h.Set("Cache-Control", "no-store")
}

// trustedProxies defines networks that may set forwarding headers.
var trustedProxies = []*net.IPNet{
	parseCIDR("127.0.0.0/8"),
	parseCIDR("10.0.0.0/8"),
	parseCIDR("172.16.0.0/12"),
	parseCIDR("192.168.0.0/16"),
}

func parseCIDR(cidr string) *net.IPNet {
	_, network, err := net.ParseCIDR(cidr)
	if err != nil {
		panic(fmt.Sprintf("parse trusted proxy CIDR %s: %v", cidr, err))
	}
	return network
}

func isTrustedProxy(ip net.IP) bool {
	for _, network := range trustedProxies {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

// extractClientIP returns the real client IP, honoring X-Forwarded-For only
// when the direct peer is a trusted proxy.
func extractClientIP(r *http.Request) string {
	directIP, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		directIP = r.RemoteAddr
	}

	parsed := net.ParseIP(directIP)
	if parsed == nil {
		return directIP
	}

	if isTrustedProxy(parsed) {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			first := strings.TrimSpace(strings.Split(xff, ",")[0])
			if net.ParseIP(first) != nil {
				return first
			}
		}
	}
	return directIP
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.startedAt).String(),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := map[string]string{}

	// A cheap store round trip verifies the backend is reachable.
	if _, err := s.deps.Store.ListCategories(ctx, ""); err != nil {
		checks["store"] = fmt.Sprintf("failed: %v", err)
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["store"] = "ok"
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": status,
		"checks": checks,
	})
}

// Shutdown stops the HTTP server and background cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
