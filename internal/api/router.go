package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RouterConfig wires a chi router over a set of running stations.
type RouterConfig struct {
	Stations    map[string]*StationRunner
	WSHub       *WebSocketHub
	RateLimiter *IPRateLimiter
}

// NewRouter builds the HTTP surface: station discovery, now-playing
// status, live audio fan-out, a status WebSocket, and a health check.
// Grounded on the teacher's router.go (chi + middleware.Logger/Recoverer
// + rate-limiter + cors.Handler), generalized from the game's
// player/state endpoints to station mounts.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Middleware)
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   AllowedOrigins,
		AllowedMethods:   []string{"GET", "HEAD", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Get("/stations", func(w http.ResponseWriter, r *http.Request) {
		mounts := make([]string, 0, len(cfg.Stations))
		for m := range cfg.Stations {
			mounts = append(mounts, m)
		}
		writeJSON(w, mounts)
	})

	r.Route("/stations/{mount}", func(sr chi.Router) {
		sr.Get("/status", func(w http.ResponseWriter, r *http.Request) {
			mount := chi.URLParam(r, "mount")
			st, ok := cfg.Stations[mount]
			if !ok {
				http.NotFound(w, r)
				return
			}
			np, since := st.Status()
			writeJSON(w, map[string]interface{}{
				"kind":   np.Kind,
				"path":   np.Path,
				"title":  np.Title,
				"artist": np.Artist,
				"album":  np.Album,
				"since":  since,
			})
		})

		sr.Get("/stream", func(w http.ResponseWriter, r *http.Request) {
			mount := chi.URLParam(r, "mount")
			st, ok := cfg.Stations[mount]
			if !ok {
				http.NotFound(w, r)
				return
			}
			w.Header().Set("Content-Type", "audio/x-wav")
			w.Header().Set("Cache-Control", "no-cache")
			listener := st.Attach()
			w.WriteHeader(http.StatusOK)
			listener.serve(r.Context(), w)
		})
	})

	if cfg.WSHub != nil {
		r.Get("/ws", cfg.WSHub.HandleWebSocket)
	}

	return r
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
