// Package scheduler runs the periodic preview refresh. Previews are relative
// to "today", so every open editing session is re-rendered when the day
// turns over, and sessions nobody has touched for a while are dropped.
package scheduler

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dukerupert/cadence/internal/editor"
	"github.com/dukerupert/cadence/internal/preview"
	"github.com/dukerupert/cadence/internal/websocket"
	"github.com/robfig/cron/v3"
)

// Broadcaster delivers live-update messages.
type Broadcaster interface {
	Broadcast(websocket.Message)
}

// Config wires a Refresher.
type Config struct {
	// Spec is a standard five-field cron expression.
	Spec       string
	Sessions   *editor.Manager
	Hub        Broadcaster
	Options    func() preview.Options
	SessionTTL time.Duration
	Logger     *slog.Logger
}

// Refresher re-renders session previews on a cron schedule.
type Refresher struct {
	cfg  Config
	cron *cron.Cron
	now  func() time.Time

	mu      sync.Mutex
	lastRun time.Time
}

// New validates the schedule and registers the refresh job. Call Start to
// begin running it.
func New(cfg Config) (*Refresher, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Options == nil {
		cfg.Options = func() preview.Options { return preview.Options{} }
	}

	r := &Refresher{cfg: cfg, now: time.Now}

	clog := cronLogger{cfg.Logger}
	r.cron = cron.New(
		cron.WithLogger(clog),
		cron.WithChain(cron.Recover(clog), cron.SkipIfStillRunning(clog)),
	)
	if _, err := r.cron.AddFunc(cfg.Spec, r.Refresh); err != nil {
		return nil, fmt.Errorf("schedule %q: %w", cfg.Spec, err)
	}
	return r, nil
}

// Start runs the scheduler in its own goroutine.
func (r *Refresher) Start() {
	r.cron.Start()
	r.cfg.Logger.Info("refresh scheduled", "spec", r.cfg.Spec)
}

// Stop halts the scheduler and waits for a running refresh to finish.
func (r *Refresher) Stop() {
	<-r.cron.Stop().Done()
}

// LastRun returns when Refresh last completed, or the zero time.
func (r *Refresher) LastRun() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastRun
}

// Refresh prunes idle sessions and pushes a fresh preview for every
// remaining one.
func (r *Refresher) Refresh() {
	now := r.now()

	pruned := 0
	if r.cfg.SessionTTL > 0 {
		pruned = r.cfg.Sessions.Prune(now.Add(-r.cfg.SessionTTL))
	}

	opts := r.cfg.Options()
	refreshed := 0
	r.cfg.Sessions.Each(func(s editor.Session) {
		p := preview.Build(s.State.Rule(), now, opts)
		r.cfg.Hub.Broadcast(websocket.NewMessage(websocket.TypePreviewRefreshed, s.ID, p))
		refreshed++
	})

	r.mu.Lock()
	r.lastRun = now
	r.mu.Unlock()

	r.cfg.Logger.Info("previews refreshed", "sessions", refreshed, "pruned", pruned)
}

// cronLogger adapts slog to cron.Logger. Cron's chatty info lines go to
// debug.
type cronLogger struct {
	l *slog.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.l.Debug("cron: "+msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.l.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
