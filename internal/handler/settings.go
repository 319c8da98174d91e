package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/cadence/internal/model"
	"github.com/dukerupert/cadence/internal/store"
	"github.com/dukerupert/cadence/internal/websocket"
)

type SettingsHandler struct {
	settingsStore *store.SettingsStore
	hub           *websocket.Hub
	defaults      model.PreviewSettings
	logger        *slog.Logger
}

func NewSettingsHandler(ss *store.SettingsStore, hub *websocket.Hub, defaults model.PreviewSettings, logger *slog.Logger) *SettingsHandler {
	return &SettingsHandler{settingsStore: ss, hub: hub, defaults: defaults, logger: logger}
}

func (h *SettingsHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settingsStore.GetPreviewSettings(h.defaults)
	if err != nil {
		h.logger.Error("get settings", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get settings")
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// Update replaces the preview settings. Omitted fields keep their current
// value.
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	current, err := h.settingsStore.GetPreviewSettings(h.defaults)
	if err != nil {
		h.logger.Error("get settings", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get settings")
		return
	}

	next := current
	if !decodeJSON(w, r, &next) {
		return
	}
	if err := next.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.settingsStore.UpdatePreviewSettings(next); err != nil {
		h.logger.Error("update settings", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save settings")
		return
	}

	h.logger.Info("settings updated", "horizon_days", next.HorizonDays, "date_layout", next.DateLayout)
	h.broadcast(websocket.NewMessage(websocket.TypeSettingsUpdated, "", next))
	writeJSON(w, http.StatusOK, next)
}
