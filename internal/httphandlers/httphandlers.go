package httphandlers

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"go2tv.app/trackstate/internal/metrics"
	"go2tv.app/trackstate/tracks"
	"go2tv.app/trackstate/transport"
	"golang.org/x/time/rate"
)

// HTTPserver - new http.Server instance that publishes track snapshots.
type HTTPserver struct {
	http     *http.Server
	Mux      *http.ServeMux
	hub      *snapshotHub
	limiter  *rate.Limiter
	registry *prometheus.Registry
	logger   zerolog.Logger

	mu      sync.RWMutex
	current []byte
	tracks  tracks.Tracks
}

// StartServer listens on the configured address and serves until
// StopServer is called. The listen result is reported on serverStarted.
func (s *HTTPserver) StartServer(serverStarted chan<- error) {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		serverStarted <- fmt.Errorf("server listen error: %w", err)
		return
	}

	s.logger.Info().Str("function", "StartServer").Str("Addr", ln.Addr().String()).Msg("listening")
	serverStarted <- nil
	_ = s.http.Serve(ln)
}

// StopServer disconnects websocket clients and closes the HTTP server.
func (s *HTTPserver) StopServer() {
	s.hub.close()
	s.http.Close()
}

// Handler returns the root handler, for use with httptest.
func (s *HTTPserver) Handler() http.Handler {
	return s.http.Handler
}

// Publish replaces the current snapshot and pushes it to every websocket
// client.
func (s *HTTPserver) Publish(t tracks.Tracks) error {
	payload, err := transport.Encode(t)
	if err != nil {
		metrics.EncodeFailures.Inc()
		s.logger.Error().Str("function", "Publish").Str("Action", "Encode").Err(err).Msg("")
		return fmt.Errorf("Publish: %w", err)
	}

	s.mu.Lock()
	s.current = payload
	s.tracks = t
	s.hub.publish(payload)
	s.mu.Unlock()

	metrics.SnapshotsPublished.Inc()
	metrics.SnapshotGroups.Set(float64(t.Len()))

	s.logger.Debug().Str("function", "Publish").Int("Groups", t.Len()).Msg("published")
	return nil
}

// Current returns the last published Tracks.
func (s *HTTPserver) Current() tracks.Tracks {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tracks
}

func (s *HTTPserver) tracksHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet && req.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}

		s.mu.RLock()
		payload := s.current
		s.mu.RUnlock()

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Length", strconv.Itoa(len(payload)))
		if req.Method == http.MethodHead {
			return
		}
		_, _ = w.Write(payload)
	}
}

func (s *HTTPserver) wsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		conn, err := upgrader.Upgrade(w, req, nil)
		if err != nil {
			s.logger.Error().Str("function", "wsHandler").Str("Action", "Upgrade").Err(err).Msg("")
			return
		}

		v, ok := s.hub.join(conn)
		if !ok {
			conn.Close()
			return
		}
		go s.hub.writeLoop(v)
		go s.hub.readLoop(v)
	}
}

// limit rejects requests beyond the configured rate with 429.
func (s *HTTPserver) limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if !s.limiter.Allow() {
			metrics.RateLimited.Inc()
			w.Header().Set("Retry-After", "1")
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, req)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Hijack passes websocket upgrades through to the underlying writer.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("statusRecorder: %T does not support hijacking", r.ResponseWriter)
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

func countRequests(path string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, req)
		metrics.HTTPRequestsTotal.WithLabelValues(path, strconv.Itoa(rec.status)).Inc()
	})
}

// NewServer constractor generates a new HTTPserver type. requestsPerSecond
// bounds GET /tracks; zero or less disables the limit. Log lines go to
// logOutput when it is not nil.
func NewServer(a string, requestsPerSecond float64, logOutput io.Writer) *HTTPserver {
	limit := rate.Inf
	burst := 1
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
		burst = max(1, int(requestsPerSecond))
	}

	var logger zerolog.Logger
	if logOutput != nil {
		logger = zerolog.New(logOutput).With().Timestamp().Logger()
	} else {
		logger = zerolog.Nop()
	}

	reg := prometheus.NewRegistry()
	metrics.Register(reg)

	mux := http.NewServeMux()
	srv := &HTTPserver{
		http:     &http.Server{Addr: a, Handler: mux},
		Mux:      mux,
		limiter:  rate.NewLimiter(limit, burst),
		registry: reg,
		logger:   logger,
		tracks:   tracks.Empty,
	}

	if payload, err := transport.Encode(tracks.Empty); err == nil {
		srv.current = payload
	}
	srv.hub = newSnapshotHub(logger, srv.current)

	mux.Handle(transport.TracksPath, countRequests(transport.TracksPath, srv.limit(srv.tracksHandler())))
	mux.Handle(transport.WatchPath, countRequests(transport.WatchPath, srv.wsHandler()))
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	return srv
}
