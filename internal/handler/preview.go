package handler

import (
	"net/http"
	"time"

	"github.com/dukerupert/cadence/internal/preview"
	"github.com/dukerupert/cadence/internal/recurrence"
)

// PreviewHandler renders rules posted in the request body. It keeps no state.
type PreviewHandler struct {
	options OptionsFunc
	now     func() time.Time
}

func NewPreviewHandler(options OptionsFunc) *PreviewHandler {
	return &PreviewHandler{options: options, now: time.Now}
}

// Preview returns {summary, occurrences, upcoming} for the posted rule.
func (h *PreviewHandler) Preview(w http.ResponseWriter, r *http.Request) {
	rule, ok := decodeRule(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, preview.Build(rule, h.now(), h.options()))
}

// Calendar returns the ?month=YYYY-MM grid with the rule's dates marked.
func (h *PreviewHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	now := h.now()
	year, month, err := monthParam(r, now)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	rule, ok := decodeRule(w, r)
	if !ok {
		return
	}

	occ := monthOccurrences(rule, now, h.options())
	writeJSON(w, http.StatusOK, preview.MonthGrid(year, month, occ, now))
}

// Describe returns only the summary sentence.
func (h *PreviewHandler) Describe(w http.ResponseWriter, r *http.Request) {
	rule, ok := decodeRule(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"summary": recurrence.DescribeLayout(rule, h.options().DateLayout),
	})
}
