package server

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/cadence/internal/config"
	"github.com/dukerupert/cadence/internal/editor"
	"github.com/dukerupert/cadence/internal/handler"
	"github.com/dukerupert/cadence/internal/middleware"
	"github.com/dukerupert/cadence/internal/model"
	"github.com/dukerupert/cadence/internal/preview"
	"github.com/dukerupert/cadence/internal/scheduler"
	"github.com/dukerupert/cadence/internal/store"
	ws "github.com/dukerupert/cadence/internal/websocket"
)

const (
	sessionCreateLimit  = 30
	sessionCreatePeriod = time.Minute
)

type Server struct {
	cfg           *config.Config
	hub           *ws.Hub
	sessions      *editor.Manager
	settingsStore *store.SettingsStore
	previewH      *handler.PreviewHandler
	sessionH      *handler.SessionHandler
	exportH       *handler.ExportHandler
	settingsH     *handler.SettingsHandler
	rateLimiter   *middleware.RateLimiter
	refresher     *scheduler.Refresher
	logger        *slog.Logger
}

func New(cfg *config.Config, db *sql.DB, logger *slog.Logger) (*Server, error) {
	hub := ws.NewHub(logger.With("component", "websocket"))
	sessions := editor.NewManager()
	settingsStore := store.NewSettingsStore(db)

	defaults := model.PreviewSettings{HorizonDays: cfg.HorizonDays, DateLayout: cfg.DateLayout}

	s := &Server{
		cfg:           cfg,
		hub:           hub,
		sessions:      sessions,
		settingsStore: settingsStore,
		rateLimiter:   middleware.NewRateLimiter(sessionCreateLimit, sessionCreatePeriod),
		logger:        logger,
	}
	options := s.previewOptions(defaults)

	s.previewH = handler.NewPreviewHandler(options)
	s.sessionH = handler.NewSessionHandler(sessions, hub, options, logger.With("component", "session"))
	s.exportH = handler.NewExportHandler(options, logger.With("component", "export"))
	s.settingsH = handler.NewSettingsHandler(settingsStore, hub, defaults, logger.With("component", "settings"))

	refresher, err := scheduler.New(scheduler.Config{
		Spec:       cfg.RefreshCron,
		Sessions:   sessions,
		Hub:        hub,
		Options:    options,
		SessionTTL: time.Duration(cfg.SessionTTLHours) * time.Hour,
		Logger:     logger.With("component", "scheduler"),
	})
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}
	s.refresher = refresher

	return s, nil
}

// previewOptions reads the stored preview settings on every call so changes
// apply without a restart. Store errors fall back to the configured defaults.
func (s *Server) previewOptions(defaults model.PreviewSettings) handler.OptionsFunc {
	return func() preview.Options {
		p, err := s.settingsStore.GetPreviewSettings(defaults)
		if err != nil {
			s.logger.Warn("read preview settings", "error", err)
			p = defaults
		}
		return preview.Options{HorizonDays: p.HorizonDays, DateLayout: p.DateLayout}
	}
}

// Refresher returns the scheduled preview refresh.
func (s *Server) Refresher() *scheduler.Refresher {
	return s.refresher
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

// Sessions returns the in-memory editing sessions.
func (s *Server) Sessions() *editor.Manager {
	return s.sessions
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthHandler)
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub, s.sessionExists, s.logger.With("component", "websocket")))

	// Stateless rule rendering
	mux.HandleFunc("POST /api/preview", s.previewH.Preview)
	mux.HandleFunc("POST /api/preview/calendar", s.previewH.Calendar)
	mux.HandleFunc("POST /api/describe", s.previewH.Describe)

	// Editing sessions
	mux.Handle("POST /api/sessions", middleware.RateLimit(s.rateLimiter)(http.HandlerFunc(s.sessionH.Create)))
	mux.HandleFunc("GET /api/sessions/{id}", s.sessionH.Get)
	mux.HandleFunc("DELETE /api/sessions/{id}", s.sessionH.Delete)
	mux.HandleFunc("PUT /api/sessions/{id}/type", s.sessionH.SetType)
	mux.HandleFunc("PUT /api/sessions/{id}/interval", s.sessionH.SetInterval)
	mux.HandleFunc("PUT /api/sessions/{id}/dates", s.sessionH.SetDates)
	mux.HandleFunc("PUT /api/sessions/{id}/weekdays", s.sessionH.SetWeekdays)
	mux.HandleFunc("PUT /api/sessions/{id}/weekdays/{day}", s.sessionH.ToggleWeekday)
	mux.HandleFunc("PUT /api/sessions/{id}/monthly-pattern", s.sessionH.SetMonthlyPattern)
	mux.HandleFunc("POST /api/sessions/{id}/reset", s.sessionH.Reset)
	mux.HandleFunc("GET /api/sessions/{id}/calendar", s.sessionH.Calendar)
	mux.HandleFunc("GET /api/sessions/{id}/export", s.sessionH.Export)

	// Export and import
	mux.HandleFunc("POST /api/export/ics", s.exportH.ICS)
	mux.HandleFunc("POST /api/export/xcal", s.exportH.XCal)
	mux.HandleFunc("POST /api/export/rrule", s.exportH.RRule)
	mux.HandleFunc("POST /api/import/rrule", s.exportH.ImportRRule)
	mux.HandleFunc("POST /api/import/ics", s.exportH.ImportICS)

	// Settings
	mux.HandleFunc("GET /api/settings", s.settingsH.Get)
	mux.Handle("PUT /api/settings", s.requireAdmin(http.HandlerFunc(s.settingsH.Update)))

	logged := middleware.RequestLogger(s.logger.With("component", "http"))(mux)
	return middleware.RequestID(logged)
}

func (s *Server) requireAdmin(next http.Handler) http.Handler {
	auth := s.cfg.BasicAuth
	if auth == nil {
		return next
	}
	return middleware.BasicAuth(auth.Username, auth.PasswordHash, "cadence")(next)
}

func (s *Server) sessionExists(id string) bool {
	_, err := s.sessions.Get(id)
	return err == nil
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":   "ok",
		"sessions": s.sessions.Len(),
		"clients":  s.hub.ClientCount(),
	})
}
