// Package api exposes the capture session and clip library over HTTP for the
// surrounding application's UI. The motion core itself has no network
// protocol; these endpoints are a thin control surface over it.
package api

import (
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/banshee-data/motion.report/internal/capture"
	"github.com/banshee-data/motion.report/internal/clipstore"
	"github.com/banshee-data/motion.report/internal/config"
	"github.com/banshee-data/motion.report/internal/monitor"
	"github.com/banshee-data/motion.report/internal/rig"
	"github.com/banshee-data/motion.report/internal/scene"
)

// ANSI escape codes for request logging.
const (
	colorCyan      = "\033[36m"
	colorReset     = "\033[0m"
	colorBoldGreen = "\033[1;32m"
	colorBoldRed   = "\033[1;31m"
	colorYellow    = "\033[33m"
)

// Server wires the capture session, synthesiser and clip store behind HTTP
// handlers.
type Server struct {
	stats  *rig.Stats
	store  clipstore.Store
	tuning *config.TuningConfig
	sched  scene.TickScheduler
	rig    scene.RigInstance
	charts *monitor.ClipCharts

	mu      sync.Mutex
	session *capture.Session
}

// NewServer builds a server over the given collaborators.
func NewServer(stats *rig.Stats, store clipstore.Store, tuning *config.TuningConfig,
	sched scene.TickScheduler, rigInst scene.RigInstance) *Server {
	return &Server{
		stats:  stats,
		store:  store,
		tuning: tuning,
		sched:  sched,
		rig:    rigInst,
		charts: monitor.NewClipCharts(store),
	}
}

// Session returns the active capture session, or nil when idle.
func (s *Server) Session() *capture.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

// Handler returns the routed HTTP handler with request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/session/status", s.handleSessionStatus)
	mux.HandleFunc("POST /api/session/start", s.handleSessionStart)
	mux.HandleFunc("POST /api/session/stop", s.handleSessionStop)
	mux.HandleFunc("POST /api/session/calibrate", s.handleCalibrate)
	mux.HandleFunc("POST /api/estimate", s.handleEstimate)

	mux.HandleFunc("POST /api/recording/start", s.handleRecordingStart)
	mux.HandleFunc("POST /api/recording/stop", s.handleRecordingStop)

	mux.HandleFunc("POST /api/synth/generate", s.handleSynthGenerate)

	mux.HandleFunc("GET /api/clips", s.handleListClips)
	mux.HandleFunc("GET /api/clips/{id}", s.handleGetClip)
	mux.HandleFunc("POST /api/clips/{id}/retarget", s.handleRetargetClip)
	mux.HandleFunc("DELETE /api/clips/{id}", s.handleDeleteClip)

	mux.HandleFunc("GET /debug/clip-chart", s.charts.HandleJointAngles)

	return loggingMiddleware(mux)
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func statusCodeColor(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return colorBoldGreen + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 400 && statusCode < 500:
		return colorYellow + strconv.Itoa(statusCode) + colorReset
	default:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	}
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(lrw, r)
		log.Printf("%s%s%s %s %s %s", colorCyan, r.Method, colorReset,
			r.URL.Path, statusCodeColor(lrw.statusCode), time.Since(start))
	})
}
