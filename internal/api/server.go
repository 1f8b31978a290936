package api

import (
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/sprunkfm/sprunk/internal/config"
	"github.com/sprunkfm/sprunk/internal/station"
)

// Server hosts every configured station's render loop plus the shared
// HTTP surface (discovery, status, stream fan-out, now-playing
// WebSocket). Background workers (the station render loops, the
// WebSocket hub) do not start until Start is called, matching the
// teacher's server.go testability idiom.
type Server struct {
	stations    map[string]*StationRunner
	router      *chi.Mux
	wsHub       *WebSocketHub
	rateLimiter *IPRateLimiter
	log         *log.Logger
}

// NewServer builds one StationRunner per mount in idx and wires the
// router around them. Stations are constructed (their persistent output
// opened) but not yet rendering.
func NewServer(idx *station.Index, rl *IPRateLimiter, audioCfg config.AudioConfig) (*Server, error) {
	stations := make(map[string]*StationRunner, len(idx.Stations))
	for mount, info := range idx.Stations {
		sr, err := NewStationRunner(mount, info, audioCfg)
		if err != nil {
			for _, running := range stations {
				running.Stop()
			}
			return nil, fmt.Errorf("starting station %q: %w", mount, err)
		}
		stations[mount] = sr
	}

	wsHub := NewWebSocketHub()
	router := NewRouter(RouterConfig{Stations: stations, WSHub: wsHub, RateLimiter: rl})

	return &Server{
		stations:    stations,
		router:      router,
		wsHub:       wsHub,
		rateLimiter: rl,
		log:         log.With("component", "server"),
	}, nil
}

// Router exposes the underlying mux, e.g. for httptest.
func (s *Server) Router() *chi.Mux { return s.router }

// Start begins every station's render loop, the WebSocket hub, and the
// HTTP listener on addr. It blocks until the listener stops.
func (s *Server) Start(addr string) error {
	go s.wsHub.Run()
	s.wsHub.StartBroadcastLoop(s.stations)

	for mount, sr := range s.stations {
		s.log.Info("starting station", "mount", mount)
		sr.Start()
	}
	SetActiveStations(len(s.stations))

	s.log.Info("listening", "addr", addr)
	return http.ListenAndServe(addr, s.router)
}

// Stop halts every station's render loop and the rate limiter's cleanup
// goroutine.
func (s *Server) Stop() {
	for _, sr := range s.stations {
		sr.Stop()
	}
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
}
