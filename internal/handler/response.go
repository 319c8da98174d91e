package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/dukerupert/cadence/internal/preview"
	"github.com/dukerupert/cadence/internal/recurrence"
)

// maxBodyBytes bounds request bodies; rules and calendars are small.
const maxBodyBytes = 1 << 20

// OptionsFunc returns the current preview preferences.
type OptionsFunc func() preview.Options

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// decodeJSON reads the request body into v, writing a 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return false
	}
	return true
}

// decodeRule reads a rule in wire form from the request body.
func decodeRule(w http.ResponseWriter, r *http.Request) (recurrence.Rule, bool) {
	var rule recurrence.Rule
	if !decodeJSON(w, r, &rule) {
		return recurrence.Rule{}, false
	}
	return rule, true
}

// monthParam reads ?month=YYYY-MM, defaulting to now's month.
func monthParam(r *http.Request, now time.Time) (int, time.Month, error) {
	s := r.URL.Query().Get("month")
	if s == "" {
		return now.Year(), now.Month(), nil
	}
	return preview.ParseMonth(s)
}

// monthOccurrences expands rule to the same horizon as the preview list, so
// the grid never marks a date the list leaves out.
func monthOccurrences(rule recurrence.Rule, now time.Time, opts preview.Options) []time.Time {
	return recurrence.Generate(rule, preview.Horizon(now, opts))
}
