// Package server is the HTTP + WebSocket API surface over the scan
// orchestrator.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gadsdencode/roboscan/internal/app"
	"github.com/gadsdencode/roboscan/internal/bots"
	"github.com/gadsdencode/roboscan/internal/export"
	"github.com/gadsdencode/roboscan/internal/history"
	"github.com/gadsdencode/roboscan/internal/logging"
	"github.com/gadsdencode/roboscan/internal/scanner"
	"github.com/gadsdencode/roboscan/internal/webclient"
)

// Server wires the orchestrator behind a chi router.
type Server struct {
	cfg          Config
	orchestrator *app.Orchestrator
	wc           webclient.WebClient
	router       chi.Router
	upgrader     websocket.Upgrader
	logger       logging.Logger
}

// NewServer creates a Server over an already-constructed orchestrator.
// wc is used for the bot reachability probe.
func NewServer(cfg Config, orch *app.Orchestrator, wc webclient.WebClient) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewStdoutLogger("Server")
	}

	s := &Server{
		cfg:          cfg,
		orchestrator: orch,
		wc:           wc,
		router:       chi.NewRouter(),
		logger:       logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// TODO: tighten for production
				return true
			},
		},
	}

	s.routes()
	return s
}

func (s *Server) routes() {
	r := s.router

	r.Use(s.corsMiddleware)

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/scans", s.handleCreateScan)
		r.Get("/scans", s.handleListScans)
		r.Get("/scans/{scanID}", s.handleGetScan)
		r.Get("/scans/{scanID}/recommendations", s.handleRecommendations)
		r.Get("/scans/{scanID}/export", s.handleExportScan)
		r.Get("/compare", s.handleCompare)
		r.Get("/compare/export", s.handleExportCompare)
		r.Get("/bots", s.handleListBots)
		r.Post("/bots/test", s.handleTestBot)
		r.Post("/jobs/scan", s.handleStartScanJob)
		r.Get("/jobs/{jobID}", s.handleGetJob)
	})

	// WebSocket for job progress
	r.Get("/ws/jobs/{jobID}", s.handleJobWS)
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "86400")

		next.ServeHTTP(w, r)
	})
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.logger.Info("http_request",
		logging.Field{Key: "method", Value: r.Method},
		logging.Field{Key: "path", Value: r.URL.Path})

	s.router.ServeHTTP(w, r)
}

// HTTPServer creates an *http.Server ready to ListenAndServe.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         s.cfg.ListenAddr,
		Handler:      s,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // allow streaming
	}
}

// --- JSON helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeScanError maps the scan error taxonomy onto HTTP statuses:
// validation failures are the client's fault, connectivity failures are
// the target's.
func (s *Server) writeScanError(w http.ResponseWriter, err error) {
	var scanErr *scanner.ScanError
	switch {
	case errors.Is(err, scanner.ErrInvalidURL):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &scanErr):
		writeJSON(w, http.StatusBadGateway, map[string]string{
			"error": scanErr.Error(),
			"kind":  string(scanErr.Kind),
		})
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// --- HTTP handlers ---

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCreateScan(w http.ResponseWriter, r *http.Request) {
	var body struct {
		URL    string `json:"url"`
		UserID string `json:"user_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	outcome, err := s.orchestrator.RunScan(r.Context(), body.UserID, body.URL)
	if err != nil {
		s.logger.Warn("scan failed",
			logging.Field{Key: "url", Value: body.URL},
			logging.Field{Key: "error", Value: err.Error()})
		s.writeScanError(w, err)
		return
	}

	s.logger.Info("scan created",
		logging.Field{Key: "scan_id", Value: outcome.Scan.ID},
		logging.Field{Key: "domain", Value: outcome.Domain})
	writeJSON(w, http.StatusCreated, outcome)
}

func (s *Server) handleListScans(w http.ResponseWriter, r *http.Request) {
	url := r.URL.Query().Get("url")
	if url == "" {
		writeError(w, http.StatusBadRequest, "missing url query parameter")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	scans, err := s.orchestrator.ListScans(r.Context(), url, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, scans)
}

func (s *Server) handleGetScan(w http.ResponseWriter, r *http.Request) {
	scan, err := s.orchestrator.GetScan(r.Context(), chi.URLParam(r, "scanID"))
	if err != nil {
		if errors.Is(err, history.ErrNotFound) {
			writeError(w, http.StatusNotFound, "scan not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, scan)
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	recs, err := s.orchestrator.Recommendations(r.Context(), chi.URLParam(r, "scanID"))
	if err != nil {
		if errors.Is(err, history.ErrNotFound) {
			writeError(w, http.StatusNotFound, "scan not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	baseID := r.URL.Query().Get("base")
	headID := r.URL.Query().Get("head")
	if baseID == "" || headID == "" {
		writeError(w, http.StatusBadRequest, "base and head query parameters are required")
		return
	}

	diffs, stats, rows, err := s.orchestrator.CompareScans(r.Context(), baseID, headID)
	if err != nil {
		if errors.Is(err, history.ErrNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"differences":    diffs,
		"stats":          stats,
		"botPermissions": rows,
	})
}

func (s *Server) handleExportScan(w http.ResponseWriter, r *http.Request) {
	scanID := chi.URLParam(r, "scanID")
	scan, err := s.orchestrator.GetScan(r.Context(), scanID)
	if err != nil {
		if errors.Is(err, history.ErrNotFound) {
			writeError(w, http.StatusNotFound, "scan not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	workbook, err := export.ScanWorkbook(scan)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer workbook.Close()

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=scan-%s.xlsx", scanID))
	if err := workbook.Write(w); err != nil {
		s.logger.Warn("writing scan export", logging.Field{Key: "error", Value: err.Error()})
	}
}

func (s *Server) handleExportCompare(w http.ResponseWriter, r *http.Request) {
	baseID := r.URL.Query().Get("base")
	headID := r.URL.Query().Get("head")
	if baseID == "" || headID == "" {
		writeError(w, http.StatusBadRequest, "base and head query parameters are required")
		return
	}

	base, err := s.orchestrator.GetScan(r.Context(), baseID)
	if err != nil {
		writeError(w, http.StatusNotFound, "base scan not found")
		return
	}
	head, err := s.orchestrator.GetScan(r.Context(), headID)
	if err != nil {
		writeError(w, http.StatusNotFound, "head scan not found")
		return
	}

	diffs, _, _, err := s.orchestrator.CompareScans(r.Context(), baseID, headID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	workbook, err := export.ComparisonWorkbook(base, head, diffs)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer workbook.Close()

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=compare-%s-%s.xlsx", baseID, headID))
	if err := workbook.Write(w); err != nil {
		s.logger.Warn("writing compare export", logging.Field{Key: "error", Value: err.Error()})
	}
}

func (s *Server) handleListBots(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, bots.Roster)
}

func (s *Server) handleTestBot(w http.ResponseWriter, r *http.Request) {
	var body struct {
		URL string `json:"url"`
		Bot string `json:"bot"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	agent, ok := bots.Lookup(body.Bot)
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown bot %q", body.Bot))
		return
	}

	result := bots.TestAccess(r.Context(), s.wc, body.URL, agent, 8*time.Second)
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleStartScanJob(w http.ResponseWriter, r *http.Request) {
	var body struct {
		URL    string `json:"url"`
		UserID string `json:"user_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	job := s.orchestrator.StartScanJob(r.Context(), body.UserID, body.URL)
	writeJSON(w, http.StatusAccepted, job)
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	job, ok := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if !ok {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// handleJobWS streams job events until the job finishes or the client
// disconnects.
func (s *Server) handleJobWS(w http.ResponseWriter, r *http.Request) {
	job, ok := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if !ok {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", logging.Field{Key: "error", Value: err.Error()})
		return
	}
	defer conn.Close()

	for ev := range job.Events {
		if err := conn.WriteJSON(ev); err != nil {
			return
		}
	}
}
