package rosterhandlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes mounts the roster import endpoints under an event scope.
func RegisterRoutes(r chi.Router, h Handlers, limiter *IPRateLimiter) {
	r.Route("/api/events/{eventID}/roster", func(r chi.Router) {
		if limiter != nil {
			r.Use(RateLimitMiddleware(limiter))
		}
		r.Post("/preview", h.HandlePreview)
		r.Post("/plan", h.HandlePlan)
		r.Post("/import", h.HandleImport)
	})
}
