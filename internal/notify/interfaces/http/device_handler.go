package http

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/studypulse/notify-engine/internal/gateway/middleware"
	"github.com/studypulse/notify-engine/internal/notify/domain"
)

// DeviceHandler exposes the device token registry: clients register a push
// token after obtaining it from their platform, and drop it on logout.
type DeviceHandler struct {
	registry domain.TokenRegistry
}

func NewDeviceHandler(registry domain.TokenRegistry) *DeviceHandler {
	return &DeviceHandler{registry: registry}
}

type registerDeviceRequest struct {
	Token string `json:"token"`
}

type removeDevicesRequest struct {
	Tokens []string `json:"tokens"`
}

func (h *DeviceHandler) RegisterDevice(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.ContextKeyUserID).(uuid.UUID)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req registerDeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		http.Error(w, "invalid device token payload", http.StatusBadRequest)
		return
	}

	if err := h.registry.Add(r.Context(), userID, req.Token); err != nil {
		http.Error(w, "failed to register device token", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *DeviceHandler) RemoveDevices(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.ContextKeyUserID).(uuid.UUID)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req removeDevicesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Tokens) == 0 {
		http.Error(w, "invalid device token payload", http.StatusBadRequest)
		return
	}

	if err := h.registry.Remove(r.Context(), userID, req.Tokens); err != nil {
		http.Error(w, "failed to remove device tokens", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *DeviceHandler) ListDevices(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.ContextKeyUserID).(uuid.UUID)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	tokens, err := h.registry.List(r.Context(), userID)
	if err != nil {
		http.Error(w, "failed to list device tokens", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"tokens": tokens})
}
