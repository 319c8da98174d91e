package scheduler

import (
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/dukerupert/cadence/internal/editor"
	"github.com/dukerupert/cadence/internal/preview"
	"github.com/dukerupert/cadence/internal/recurrence"
	"github.com/dukerupert/cadence/internal/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHub struct {
	mu   sync.Mutex
	msgs []websocket.Message
}

func (h *recordingHub) Broadcast(m websocket.Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.msgs = append(h.msgs, m)
}

func TestNewRejectsBadSpec(t *testing.T) {
	_, err := New(Config{Spec: "every day", Sessions: editor.NewManager(), Hub: &recordingHub{}})
	assert.Error(t, err)
}

func TestRefresh(t *testing.T) {
	sessions := editor.NewManager()
	hub := &recordingHub{}

	sess := sessions.Create()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err := sessions.Apply(sess.ID, func(s editor.State) editor.State {
		return s.WithKind(recurrence.KindWeekly).WithDateRange(&start, nil)
	})
	require.NoError(t, err)

	r, err := New(Config{
		Spec:     "0 0 * * *",
		Sessions: sessions,
		Hub:      hub,
		Options:  func() preview.Options { return preview.Options{HorizonDays: 14, DateLayout: "2006-01-02"} },
		Logger:   slog.Default(),
	})
	require.NoError(t, err)
	r.now = func() time.Time { return start }

	r.Refresh()

	require.Len(t, hub.msgs, 1)
	msg := hub.msgs[0]
	assert.Equal(t, websocket.TypePreviewRefreshed, msg.Type)
	assert.Equal(t, sess.ID, msg.SessionID)

	p, ok := msg.Data.(preview.Preview)
	require.True(t, ok)
	assert.Equal(t, "Weekly starting 2024-01-01", p.Summary)
	assert.Len(t, p.Occurrences, 3)
	assert.Equal(t, start, r.LastRun())
}

func TestRefreshPrunesIdleSessions(t *testing.T) {
	sessions := editor.NewManager()
	hub := &recordingHub{}
	sessions.Create()

	r, err := New(Config{
		Spec:       "@hourly",
		Sessions:   sessions,
		Hub:        hub,
		SessionTTL: time.Hour,
	})
	require.NoError(t, err)
	r.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	r.Refresh()

	assert.Equal(t, 0, sessions.Len())
	assert.Empty(t, hub.msgs)
}

func TestStartStop(t *testing.T) {
	r, err := New(Config{Spec: "0 0 * * *", Sessions: editor.NewManager(), Hub: &recordingHub{}})
	require.NoError(t, err)

	r.Start()
	r.Stop()
	assert.True(t, r.LastRun().IsZero())
}
