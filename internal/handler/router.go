package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// RouterConfig carries the middleware settings.
type RouterConfig struct {
	CORSOrigins []string
	AuthRPS     float64
	AuthBurst   int
}

// Router builds the app shell's routes and middleware stack.
func (h *Handler) Router(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(Logger(h.log))
	r.Use(chimiddleware.Recoverer)
	r.Use(CORS(cfg.CORSOrigins))

	r.Get("/health", HealthCheck)

	limiter := NewRateLimiter(cfg.AuthRPS, cfg.AuthBurst)
	r.Route("/auth", func(r chi.Router) {
		r.Use(limiter.Limit)
		r.Post("/sign-up", h.SignUp)
		r.Post("/sign-in", h.SignIn)
		r.Post("/sign-out", h.SignOut)
	})

	r.Route("/me", func(r chi.Router) {
		r.Get("/", h.Me)
		r.Put("/", h.UpdateMe)
		r.Get("/bookings", h.MyBookings)
		r.Get("/scores", h.MyScores)
	})

	r.Route("/events", func(r chi.Router) {
		r.Get("/", h.ListEvents)
		r.Post("/", h.CreateEvent)
		r.Get("/registrations", h.RegistrationCounts)
		r.Get("/{id}", h.GetEvent)
		r.Post("/{id}/register", h.Register)
		r.Get("/{id}/scores", h.EventScores)
		r.Post("/{id}/scores", h.SubmitScore)
	})

	r.Delete("/bookings/{id}", h.CancelBooking)
	r.Get("/scoring/events", h.ScoringEvents)
	r.Put("/scores/{id}", h.UpdateScore)
	r.Get("/videos", h.ListVideos)
	r.Get("/files/{bucket}/{id}/view", h.ViewFile)

	return r
}
