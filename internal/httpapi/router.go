package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"heimwahl/internal/auth"
	"heimwahl/internal/db"
)

// Routes constructs the chi router containing all endpoints.
func (a *API) Routes() (http.Handler, error) {
	if a == nil {
		return nil, errors.New("nil api")
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	allowed := a.cfg.AllowedOrigins
	if len(allowed) == 0 {
		allowed = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowed,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           int((10 * time.Minute).Seconds()),
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, req *http.Request) {
		if err := db.Ping(req.Context(), a.store.DB); err != nil {
			respondError(w, http.StatusServiceUnavailable, errors.New("database not ready"))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// Public surface, rate limited per client IP.
	r.Group(func(r chi.Router) {
		r.Use(httprate.LimitByIP(a.cfg.PublicRateLimit, a.cfg.PublicRateWindow))

		r.Post("/api/votes/verify", a.handleVerifyCredential)
		r.Post("/api/votes", a.handleSubmitBallot)
		r.Get("/api/candidates", a.handleListCandidates)
		r.Get("/api/candidates/{id}", a.handleGetCandidate)
		r.Get("/api/settings/election-status", a.handleElectionStatus)

		r.Post("/api/newsletter/subscribe", a.handleSubscribe)
		r.Get("/api/newsletter/confirm", a.handleConfirmSubscription)
		r.Post("/api/newsletter/unsubscribe", a.handleUnsubscribe)

		r.Post("/api/auth/login", a.handleLogin)
	})

	// Admin surface behind JWT auth.
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAdmin(a.jwt))

		r.Post("/api/auth/change-password", a.handleChangePassword)

		r.Route("/api/admin", func(r chi.Router) {
			r.Post("/candidates", a.handleCreateCandidate)
			r.Post("/candidates/bulk", a.handleBulkCandidates)
			r.Put("/candidates/{id}", a.handleUpdateCandidate)
			r.Delete("/candidates/{id}", a.handleDeleteCandidate)

			r.Get("/facilities", a.handleListFacilities)
			r.Post("/facilities", a.handleCreateFacility)
			r.Post("/facilities/bulk", a.handleBulkFacilities)
			r.Delete("/facilities/{id}", a.handleDeleteFacility)
			r.Post("/facilities/{id}/resend-token", a.handleResendToken)

			r.Get("/newsletter/subscribers", a.handleListSubscribers)
			r.Delete("/newsletter/subscribers/{id}", a.handleDeleteSubscriber)

			r.Get("/settings/election-status", a.handleGetElectionSetting)
			r.Put("/settings/election-status", a.handlePutElectionSetting)

			r.Get("/results", a.handleResults)
			r.Get("/results/export", a.handleExportResults)

			r.Post("/campaign/voting-start", a.handleCampaignVotingStart)
			r.Post("/campaign/reminders", a.handleCampaignReminders)
			r.Get("/campaign/stats", a.handleSubscriberStats)
			r.Post("/campaign/test", a.handleSendTestMail)

			r.Get("/audit", a.handleListAudit)
		})
	})

	return r, nil
}
