package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
)

// healthCheckTimeout bounds the dependency probes behind /health.
const healthCheckTimeout = 2 * time.Second

// handleHealth reports the server and broker status.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	mqttStatus := "disabled"
	if s.mqtt != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()
		if err := s.mqtt.HealthCheck(ctx); err != nil {
			status = "degraded"
			mqttStatus = err.Error()
		} else {
			mqttStatus = "connected"
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  status,
		"version": s.version,
		"mode":    string(s.show.Mode()),
		"props":   len(s.show.Props()),
		"mqtt":    mqttStatus,
	})
}

// handleListProps returns every prop's live state.
func (s *Server) handleListProps(w http.ResponseWriter, _ *http.Request) {
	props := s.show.Props()
	writeJSON(w, http.StatusOK, map[string]any{
		"mode":  string(s.show.Mode()),
		"props": props,
		"count": len(props),
	})
}

// handleGetProp returns one prop's live state.
func (s *Server) handleGetProp(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	st, ok := s.show.Prop(name)
	if !ok {
		writeNotFound(w, "prop not found")
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// handleListActivations returns a prop's journalled activations, newest
// first. Accepts ?limit=N.
func (s *Server) handleListActivations(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if _, ok := s.show.Prop(name); !ok {
		writeNotFound(w, "prop not found")
		return
	}
	if s.history == nil {
		writeUnavailable(w, "activation journal is disabled")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeBadRequest(w, "limit must be a positive integer")
			return
		}
		limit = n
	}

	activations, err := s.history.History(r.Context(), name, limit)
	if err != nil {
		s.logger.Error("failed to list activations", "prop", name, "error", err)
		writeInternalError(w, "failed to list activations")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"prop":        name,
		"activations": activations,
		"count":       len(activations),
	})
}

// handleAudioDevices lists the audio devices, mirroring what the mixer
// matches the configured device name against.
func (s *Server) handleAudioDevices(w http.ResponseWriter, _ *http.Request) {
	if s.audio == nil {
		writeUnavailable(w, "audio is disabled")
		return
	}
	devices, err := s.audio.Devices()
	if err != nil {
		s.logger.Error("failed to list audio devices", "error", err)
		writeInternalError(w, "failed to list audio devices")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"devices": devices,
		"count":   len(devices),
	})
}
