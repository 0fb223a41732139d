package httpadapter

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"adfleet/internal/core/domain"
	"adfleet/internal/core/port"
)

// Handler contains dependencies and routes. It is an inbound adapter for
// HTTP: it authenticates callers, decodes requests, calls the use cases and
// maps domain errors to status codes.
type Handler struct {
	inventory    port.InventoryUseCase
	verification port.VerificationUseCase
	earnings     port.EarningsUseCase
	auth         *Authenticator
	logger       *slog.Logger
	uploadLimit  int64
	router       chi.Router
}

// Options wires optional infrastructure into the router.
type Options struct {
	// UploadLimitBytes caps verification photo size. Defaults to 5 MiB.
	UploadLimitBytes int64
	// Uploads throttles verification uploads when set.
	Uploads *RateLimiter
	// Instrument wraps every route, e.g. with request metrics.
	Instrument func(http.Handler) http.Handler
	// Metrics is served on GET /metrics when set.
	Metrics http.Handler
}

// NewHandler creates a handler with all routes configured.
func NewHandler(
	inventory port.InventoryUseCase,
	verification port.VerificationUseCase,
	earnings port.EarningsUseCase,
	auth *Authenticator,
	opts Options,
	logger *slog.Logger,
) *Handler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.UploadLimitBytes <= 0 {
		opts.UploadLimitBytes = 5 << 20
	}
	h := &Handler{
		inventory:    inventory,
		verification: verification,
		earnings:     earnings,
		auth:         auth,
		logger:       logger,
		uploadLimit:  opts.UploadLimitBytes,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recoverer)
	if opts.Instrument != nil {
		r.Use(opts.Instrument)
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(auth.Middleware)

		r.Get("/banners/{bannerID}", h.handleGetBanner)

		r.Group(func(r chi.Router) {
			r.Use(requireRole(domain.RoleAdvertiser))
			r.Post("/campaigns", h.handleCreateCampaign)
			r.Post("/campaigns/{campaignID}/banners", h.handleCreateBanners)
			r.Get("/campaigns/{campaignID}/banners", h.handleCampaignBanners)
			r.Post("/campaigns/{campaignID}/cancel", h.handleCancelCampaign)
			r.Post("/campaigns/{campaignID}/complete", h.handleCompleteCampaign)
		})

		r.Group(func(r chi.Router) {
			r.Use(requireRole(domain.RoleDriver))
			r.Get("/banners/available", h.handleListAvailable)
			r.Post("/banners/{bannerID}/claim", h.handleClaim)
			r.With(uploadsMiddleware(opts.Uploads)).Post("/banners/{bannerID}/verifications", h.handleSubmitVerification)
			r.Put("/drivers/me", h.handleRegisterDriver)
			r.Get("/drivers/me/banners", h.handleDriverBanners)
			r.Get("/drivers/me/earnings", h.handleEarnings)
		})
	})
	h.router = r
	return h
}

// Router returns the underlying http.Handler.
func (h *Handler) Router() http.Handler {
	return h.router
}

func uploadsMiddleware(rl *RateLimiter) func(http.Handler) http.Handler {
	if rl == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return rl.Middleware
}
