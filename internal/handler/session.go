package handler

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/cadence/internal/editor"
	"github.com/dukerupert/cadence/internal/export"
	"github.com/dukerupert/cadence/internal/preview"
	"github.com/dukerupert/cadence/internal/recurrence"
	"github.com/dukerupert/cadence/internal/websocket"
)

// SessionHandler serves the editing-session API. Every successful edit is
// pushed to websocket clients as session_updated.
type SessionHandler struct {
	sessions *editor.Manager
	hub      *websocket.Hub
	options  OptionsFunc
	logger   *slog.Logger
	now      func() time.Time
}

func NewSessionHandler(sessions *editor.Manager, hub *websocket.Hub, options OptionsFunc, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
		hub:      hub,
		options:  options,
		logger:   logger,
		now:      time.Now,
	}
}

type sessionResponse struct {
	ID        string          `json:"id"`
	Rule      recurrence.Rule `json:"rule"`
	Preview   preview.Preview `json:"preview"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (h *SessionHandler) respond(s editor.Session) sessionResponse {
	return sessionResponse{
		ID:        s.ID,
		Rule:      s.State.Rule(),
		Preview:   preview.Build(s.State.Rule(), h.now(), h.options()),
		UpdatedAt: s.UpdatedAt,
	}
}

func (h *SessionHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

// Create starts a session. An optional rule in the body seeds it; an empty
// body starts from the default rule.
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read body")
		return
	}

	var sess editor.Session
	if len(bytes.TrimSpace(body)) == 0 {
		sess = h.sessions.Create()
	} else {
		var rule recurrence.Rule
		if err := rule.UnmarshalJSON(body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid rule: "+err.Error())
			return
		}
		sess = h.sessions.CreateFrom(editor.FromRule(rule))
	}

	h.logger.Debug("session created", "session", sess.ID)
	writeJSON(w, http.StatusCreated, h.respond(sess))
}

func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessions.Get(r.PathValue("id"))
	if err != nil {
		h.writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.respond(sess))
}

func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.sessions.Delete(id); err != nil {
		h.writeSessionError(w, err)
		return
	}
	h.broadcast(websocket.NewMessage(websocket.TypeSessionDeleted, id, nil))
	w.WriteHeader(http.StatusNoContent)
}

// Calendar renders the session's rule on a ?month=YYYY-MM grid.
func (h *SessionHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessions.Get(r.PathValue("id"))
	if err != nil {
		h.writeSessionError(w, err)
		return
	}
	now := h.now()
	year, month, err := monthParam(r, now)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	occ := monthOccurrences(sess.State.Rule(), now, h.options())
	writeJSON(w, http.StatusOK, preview.MonthGrid(year, month, occ, now))
}

func (h *SessionHandler) SetType(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Type string `json:"type"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	kind, err := recurrence.ParseKind(req.Type)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.apply(w, r, func(s editor.State) (editor.State, error) {
		return s.WithKind(kind), nil
	})
}

func (h *SessionHandler) SetInterval(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Interval int `json:"interval"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	h.apply(w, r, func(s editor.State) (editor.State, error) {
		return s.WithInterval(req.Interval), nil
	})
}

// SetDates updates the start and/or end date. Omitted fields are kept; an
// empty endDate removes the end.
func (h *SessionHandler) SetDates(w http.ResponseWriter, r *http.Request) {
	var req struct {
		StartDate *string `json:"startDate"`
		EndDate   *string `json:"endDate"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	var start, end *time.Time
	clearEnd := false
	if req.StartDate != nil {
		t, err := recurrence.ParseDate(*req.StartDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "startDate: "+err.Error())
			return
		}
		start = &t
	}
	if req.EndDate != nil {
		if *req.EndDate == "" {
			clearEnd = true
		} else {
			t, err := recurrence.ParseDate(*req.EndDate)
			if err != nil {
				writeError(w, http.StatusBadRequest, "endDate: "+err.Error())
				return
			}
			end = &t
		}
	}

	h.apply(w, r, func(s editor.State) (editor.State, error) {
		next := s.WithDateRange(start, end)
		if clearEnd {
			next = next.ClearEnd()
		}
		rule := next.Rule()
		if e, ok := rule.End.Get(); ok && rule.HasStart() && e.Before(rule.Start) {
			return s, errors.New("endDate must not be before startDate")
		}
		return next, nil
	})
}

func (h *SessionHandler) SetWeekdays(w http.ResponseWriter, r *http.Request) {
	var req struct {
		WeekDays []string `json:"weekDays"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	days := make([]time.Weekday, 0, len(req.WeekDays))
	for _, name := range req.WeekDays {
		d, err := recurrence.ParseWeekday(name)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		days = append(days, d)
	}
	h.apply(w, r, func(s editor.State) (editor.State, error) {
		if s.Rule().Kind() != recurrence.KindWeekly {
			return s, errWrongKind("weekdays", recurrence.KindWeekly)
		}
		return s.WithWeekDays(days), nil
	})
}

// ToggleWeekday selects or clears a single weekday: {"selected": true}.
func (h *SessionHandler) ToggleWeekday(w http.ResponseWriter, r *http.Request) {
	day, err := recurrence.ParseWeekday(r.PathValue("day"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req struct {
		Selected bool `json:"selected"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	h.apply(w, r, func(s editor.State) (editor.State, error) {
		if s.Rule().Kind() != recurrence.KindWeekly {
			return s, errWrongKind("weekdays", recurrence.KindWeekly)
		}
		return s.ToggleWeekDay(day, req.Selected), nil
	})
}

func (h *SessionHandler) SetMonthlyPattern(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Type    string `json:"type"`
		Ordinal string `json:"ordinal"`
		WeekDay string `json:"weekDay"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := recurrence.ParseMonthlyPattern(req.Type, req.Ordinal, req.WeekDay)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.apply(w, r, func(s editor.State) (editor.State, error) {
		if s.Rule().Kind() != recurrence.KindMonthly {
			return s, errWrongKind("monthly pattern", recurrence.KindMonthly)
		}
		return s.WithMonthlyPattern(p), nil
	})
}

func (h *SessionHandler) Reset(w http.ResponseWriter, r *http.Request) {
	now := h.now()
	h.apply(w, r, func(s editor.State) (editor.State, error) {
		return s.Reset(now), nil
	})
}

// Export downloads the session's rule as ?format=ics (default), xcal or
// rrule.
func (h *SessionHandler) Export(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessions.Get(r.PathValue("id"))
	if err != nil {
		h.writeSessionError(w, err)
		return
	}
	event := export.Event{
		UID:     sess.ID,
		Summary: r.URL.Query().Get("summary"),
	}
	writeExport(w, r.URL.Query().Get("format"), sess.State.Rule(), event, h.logger)
}

// rejectedEdit is an edit that does not apply to the session's current rule.
type rejectedEdit struct{ msg string }

func (e rejectedEdit) Error() string { return e.msg }

func errWrongKind(what string, want recurrence.Kind) error {
	return rejectedEdit{fmt.Sprintf("%s only apply to %s rules", what, want)}
}

// apply runs edit against the session named in the path, responds with the
// new state and broadcasts it.
func (h *SessionHandler) apply(w http.ResponseWriter, r *http.Request, edit func(editor.State) (editor.State, error)) {
	id := r.PathValue("id")

	var editErr error
	sess, err := h.sessions.Apply(id, func(s editor.State) editor.State {
		next, err := edit(s)
		if err != nil {
			editErr = err
			return s
		}
		return next
	})
	if err != nil {
		h.writeSessionError(w, err)
		return
	}
	if editErr != nil {
		var rejected rejectedEdit
		if errors.As(editErr, &rejected) {
			writeError(w, http.StatusConflict, editErr.Error())
			return
		}
		writeError(w, http.StatusBadRequest, editErr.Error())
		return
	}

	resp := h.respond(sess)
	h.broadcast(websocket.NewMessage(websocket.TypeSessionUpdated, id, resp))
	writeJSON(w, http.StatusOK, resp)
}

func (h *SessionHandler) writeSessionError(w http.ResponseWriter, err error) {
	if errors.Is(err, editor.ErrSessionNotFound) {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	h.logger.Error("session operation", "error", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}
