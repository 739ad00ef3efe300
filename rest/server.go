package rest

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/elimelt/ha-redis/lib/keyspace"
	"github.com/elimelt/ha-redis/lib/logger"
	"github.com/elimelt/ha-redis/lib/stats"
)

var log = logger.Get("rest")

// --------------------------------------------------------------------------
// Server configuration
// --------------------------------------------------------------------------

// Config holds the settings for the REST front-end.
type Config struct {
	// Addr is the address the HTTP server listens on (e.g. ":3000").
	Addr string
	// ShutdownGrace bounds how long in-flight requests may drain on shutdown.
	ShutdownGrace time.Duration
}

// String returns a formatted string representation of the configuration
func (c *Config) String() string {
	var sb strings.Builder

	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	addSection("REST Server")
	addField("Listen Address", c.Addr)
	addField("Shutdown Grace", c.ShutdownGrace.String())

	return sb.String()
}

// --------------------------------------------------------------------------
// Server
// --------------------------------------------------------------------------

// Server is the HTTP front-end. Every data route performs exactly one
// keyspace call and feeds the request counters; the hard availability and
// consistency work happens in the backing store.
type Server struct {
	config   Config
	keyspace keyspace.IKeyspace
	recorder *stats.Recorder
	router   *mux.Router
}

// NewServer creates the front-end for the given keyspace.
func NewServer(config Config, ks keyspace.IKeyspace) *Server {
	if config.ShutdownGrace <= 0 {
		config.ShutdownGrace = 5 * time.Second
	}

	s := &Server{
		config:   config,
		keyspace: ks,
		recorder: stats.NewRecorder(),
	}

	r := mux.NewRouter()
	r.Use(loggerMiddleware)

	r.HandleFunc("/health", s.handleHealth).Methods("GET")
	r.HandleFunc("/stats", s.handleStats).Methods("GET")
	r.HandleFunc("/stats/reset", s.handleStatsReset).Methods("POST")
	r.HandleFunc("/metrics", s.handleMetrics).Methods("GET")

	r.HandleFunc("/set", s.handleSet).Methods("POST")
	r.HandleFunc("/incr", s.handleIncr).Methods("POST")
	r.HandleFunc("/lpush", s.handleLPush).Methods("POST")
	r.HandleFunc("/sadd", s.handleSAdd).Methods("POST")
	r.HandleFunc("/hset", s.handleHSet).Methods("POST")
	r.HandleFunc("/del", s.handleDelete).Methods("POST")

	r.HandleFunc("/get/{key}", s.handleGet).Methods("GET")
	r.HandleFunc("/get", s.handleGet).Methods("GET")
	r.HandleFunc("/exists/{key}", s.handleExists).Methods("GET")
	r.HandleFunc("/exists", s.handleExists).Methods("GET")
	r.HandleFunc("/lrange/{key}", s.handleLRange).Methods("GET")
	r.HandleFunc("/lrange", s.handleLRange).Methods("GET")
	r.HandleFunc("/smembers/{key}", s.handleSMembers).Methods("GET")
	r.HandleFunc("/smembers", s.handleSMembers).Methods("GET")
	r.HandleFunc("/hgetall/{key}", s.handleHGetAll).Methods("GET")
	r.HandleFunc("/hgetall", s.handleHGetAll).Methods("GET")

	r.HandleFunc("/load", s.handleLoad).Methods("POST")

	s.router = r
	return s
}

// Handler exposes the routing tree, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves HTTP until the context is canceled, then drains in-flight
// requests for at most ShutdownGrace.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.config.Addr,
		Handler: s.router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("REST server listening on %s", s.config.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down REST server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownGrace)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warnf("REST server forced to shutdown: %v", err)
		return err
	}
	return <-errCh
}

// --------------------------------------------------------------------------
// Middleware (logging)
// --------------------------------------------------------------------------

// responseWriter is a custom ResponseWriter that captures the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

// WriteHeader captures the status code before writing it
func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// loggerMiddleware logs every HTTP request with its status and duration
func loggerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(rw, r)

		log.Debugf("%s %s => %d took %s", r.Method, r.RequestURI, rw.statusCode, time.Since(start))
	})
}
