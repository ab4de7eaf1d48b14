package httpapi

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Router 基于标准库 http.ServeMux
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

func (r *Router) HandleHandler(pattern string, h http.Handler) {
	r.mux.Handle(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	start := time.Now()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	r.mux.ServeHTTP(rec, req)

	r.logger.Debug("HTTP request",
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.Int("status", rec.status),
		zap.Duration("duration", time.Since(start)),
	)
}

// RegisterVitalsRoutes 会话 / 体征 / 报警 路由
func (r *Router) RegisterVitalsRoutes(v *VitalsHandler) {
	r.Handle("/api/v1/session", func(w http.ResponseWriter, req *http.Request) {
		switch req.Method {
		case http.MethodGet:
			v.GetSession(w, req)
		case http.MethodPost:
			v.Register(w, req)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})

	r.Handle("/api/v1/vitals", func(w http.ResponseWriter, req *http.Request) {
		switch req.Method {
		case http.MethodGet:
			v.History(w, req)
		case http.MethodPost:
			v.Submit(w, req)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})

	r.Handle("/api/v1/vitals/series", getOnly(v.Series))
	r.Handle("/api/v1/vitals/export.csv", getOnly(v.ExportCSV))
	r.Handle("/api/v1/vitals/export.xlsx", getOnly(v.ExportXLSX))

	r.Handle("/api/v1/emergency/press", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		v.PressEmergency(w, req)
	})
	r.Handle("/api/v1/emergency/alarms", getOnly(v.RecentAlarms))
}

// RegisterOpsRoutes /metrics 与 /healthz
func (r *Router) RegisterOpsRoutes(gatherer prometheus.Gatherer) {
	r.HandleHandler("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	r.Handle("/healthz", getOnly(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, Ok("healthy"))
	}))
}

func getOnly(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h(w, req)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}
