package handler

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/cadence/internal/export"
	"github.com/dukerupert/cadence/internal/recurrence"
)

// maxICSBytes bounds uploaded calendar files.
const maxICSBytes = 4 << 20

type ExportHandler struct {
	options OptionsFunc
	logger  *slog.Logger
	now     func() time.Time
}

func NewExportHandler(options OptionsFunc, logger *slog.Logger) *ExportHandler {
	return &ExportHandler{options: options, logger: logger, now: time.Now}
}

type exportRequest struct {
	Rule        recurrence.Rule `json:"rule"`
	Summary     string          `json:"summary"`
	Description string          `json:"description"`
}

func (h *ExportHandler) decodeExport(w http.ResponseWriter, r *http.Request) (exportRequest, bool) {
	var req exportRequest
	if !decodeJSON(w, r, &req) {
		return exportRequest{}, false
	}
	return req, true
}

func (h *ExportHandler) ICS(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeExport(w, r)
	if !ok {
		return
	}
	writeExport(w, "ics", req.Rule, export.Event{Summary: req.Summary, Description: req.Description}, h.logger)
}

func (h *ExportHandler) XCal(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeExport(w, r)
	if !ok {
		return
	}
	writeExport(w, "xcal", req.Rule, export.Event{Summary: req.Summary, Description: req.Description}, h.logger)
}

func (h *ExportHandler) RRule(w http.ResponseWriter, r *http.Request) {
	rule, ok := decodeRule(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"rrule": recurrence.ToRRule(rule)})
}

// ImportRRule parses {"rrule", "startDate"} into the editor's rule form. A
// DTSTART line inside rrule wins over startDate.
func (h *ExportHandler) ImportRRule(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RRule     string `json:"rrule"`
		StartDate string `json:"startDate"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.RRule == "" {
		writeError(w, http.StatusBadRequest, "rrule is required")
		return
	}

	var start time.Time
	if req.StartDate != "" {
		t, err := recurrence.ParseDate(req.StartDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "startDate: "+err.Error())
			return
		}
		start = t
	}

	rule, err := recurrence.FromRRule(req.RRule, start)
	if err != nil {
		writeImportError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, importedRule{
		Rule:    rule,
		Summary: recurrence.DescribeLayout(rule, h.options().DateLayout),
	})
}

type importedRule struct {
	UID     string          `json:"uid,omitempty"`
	Title   string          `json:"title,omitempty"`
	Rule    recurrence.Rule `json:"rule"`
	Summary string          `json:"summary"`
}

// ImportICS reads a raw text/calendar body and returns every recurring event
// in it.
func (h *ExportHandler) ImportICS(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, maxICSBytes)
	events, err := export.ReadICS(body, h.now().Location())
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "calendar too large")
			return
		}
		writeImportError(w, err)
		return
	}

	layout := h.options().DateLayout
	out := make([]importedRule, 0, len(events))
	for _, e := range events {
		out = append(out, importedRule{
			UID:     e.UID,
			Title:   e.Summary,
			Rule:    e.Rule,
			Summary: recurrence.DescribeLayout(e.Rule, layout),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func writeImportError(w http.ResponseWriter, err error) {
	if errors.Is(err, recurrence.ErrUnsupportedRRule) {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeError(w, http.StatusBadRequest, err.Error())
}

// writeExport renders rule in format and writes it as a download. Unknown
// formats are a 400; a rule without a start date is a 422.
func writeExport(w http.ResponseWriter, format string, rule recurrence.Rule, event export.Event, logger *slog.Logger) {
	if format == "" {
		format = "ics"
	}

	var (
		buf         bytes.Buffer
		contentType string
		filename    string
		err         error
	)
	switch format {
	case "ics":
		contentType, filename = "text/calendar; charset=utf-8", "recurrence.ics"
		err = export.WriteICS(&buf, rule, event)
	case "xcal":
		contentType, filename = "application/calendar+xml; charset=utf-8", "recurrence.xml"
		err = export.WriteXCal(&buf, rule, event)
	case "rrule":
		writeJSON(w, http.StatusOK, map[string]string{"rrule": recurrence.ToRRule(rule)})
		return
	default:
		writeError(w, http.StatusBadRequest, "format must be ics, xcal or rrule")
		return
	}
	if err != nil {
		if errors.Is(err, export.ErrNoStart) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		logger.Error("export rule", "format", format, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to export")
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
