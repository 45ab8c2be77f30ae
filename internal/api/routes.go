package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// SetupRoutes configures the wizard API routes.
func SetupRoutes(h *Handlers, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	// The SPA sends the wizard's every click here; allow its origins only.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", h.HandleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/session", h.HandleStartSession)
		r.Post("/campaigns/preview", h.HandlePreview)

		r.Route("/wizard/{email}", func(r chi.Router) {
			r.Get("/", h.HandleGetState)
			r.Post("/advance", h.HandleAdvance)
			r.Post("/retreat", h.HandleRetreat)

			r.Post("/files/booking", h.HandleUploadBooking)
			r.Post("/files/finance", h.HandleUploadFinance)
			r.Delete("/files/{kind}", h.HandleRemoveFile)

			r.Post("/segments/generate", h.HandleGenerateSegments)
			r.Get("/segments/profiles", h.HandleSegmentProfiles)

			r.Get("/discounts/config", h.HandleGetDiscountConfig)
			r.Put("/discounts/config", h.HandlePutDiscountConfig)
			r.Post("/discounts/config/update", h.HandleUpdateDiscountField)
			r.Post("/discounts/config/copy-to-all", h.HandleCopyToAll)
			r.Post("/discounts/config/strategy", h.HandleApplyStrategy)
			r.Post("/discounts/config/perks/toggle", h.HandleTogglePerk)
			r.Post("/discounts/config/perks/move", h.HandleMovePerk)
			r.Post("/discounts/generate", h.HandleGenerateDiscounts)
			r.Get("/discounts/summary", h.HandleDiscountSummary)

			r.Get("/campaigns", h.HandleCampaignScope)
			r.Post("/campaigns/generate", h.HandleGenerateEmails)

			r.Get("/launch/defaults", h.HandleLaunchDefaults)
			r.Post("/launch", h.HandleLaunch)
		})
	})

	return r
}

// HandleHealth reports liveness plus the state store connection.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	if err := h.store.Ping(r.Context()); err != nil {
		status = "degraded"
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"` + status + `","service":"direct-boost-wizard"}`))
}
