package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"rpoptimizer/config"
	"rpoptimizer/events"
	"rpoptimizer/model"
	"rpoptimizer/notify"
	"rpoptimizer/optimizer"
)

const version = "0.1.0"

// Pinger is implemented by backends that can report reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler contains shared dependencies for all HTTP handlers.
type Handler struct {
	opt      *optimizer.Optimizer
	chats    model.ChatStore
	settings model.SettingsStore
	bus      *events.Bus
	rec      *notify.Recorder
	backend  Pinger
}

// NewHandler wires the handlers. rec must be one of the optimizer's
// notifiers; responses carry what it recorded during the request.
func NewHandler(opt *optimizer.Optimizer, chats model.ChatStore, settings model.SettingsStore, bus *events.Bus, rec *notify.Recorder, backend Pinger) *Handler {
	return &Handler{opt: opt, chats: chats, settings: settings, bus: bus, rec: rec, backend: backend}
}

// Notification is a user-facing message raised while serving a request.
type Notification struct {
	Level   model.Level `json:"level"`
	Message string      `json:"message"`
}

func (h *Handler) notifications() []Notification {
	if h.rec == nil {
		return []Notification{}
	}
	entries := h.rec.Drain()
	out := make([]Notification, 0, len(entries))
	for _, e := range entries {
		out = append(out, Notification{Level: e.Level, Message: e.Message})
	}
	return out
}

// JSON sends a JSON response with the given status code.
func (h *Handler) JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Error sends a JSON error response with the given status code.
func (h *Handler) Error(w http.ResponseWriter, status int, message string) {
	h.JSON(w, status, map[string]interface{}{
		"error":         message,
		"notifications": h.notifications(),
	})
}

// flowError maps optimizer errors to HTTP statuses.
func (h *Handler) flowError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, optimizer.ErrBusy):
		h.Error(w, http.StatusConflict, err.Error())
	case errors.Is(err, optimizer.ErrNoMessage):
		h.Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, optimizer.ErrAnchorNotFound):
		h.Error(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, optimizer.ErrEmptyRewrite):
		h.Error(w, http.StatusBadGateway, err.Error())
	default:
		h.Error(w, http.StatusInternalServerError, err.Error())
	}
}

// decode reads a JSON body into v. A missing or empty body leaves v as is,
// including chunked requests whose length is unknown.
func decode(r *http.Request, v interface{}) error {
	if r.ContentLength == 0 || r.Body == nil {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Check represents the status of a health check.
type Check struct {
	Status  string `json:"status"`
	Latency string `json:"latency,omitempty"`
	Message string `json:"message,omitempty"`
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status    string           `json:"status"`
	Version   string           `json:"version"`
	Busy      bool             `json:"busy"`
	Checks    map[string]Check `json:"checks"`
	Timestamp string           `json:"timestamp"`
}

// Health reports chat store and backend reachability.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	checks := make(map[string]Check)
	healthy := true

	start := time.Now()
	if _, err := h.chats.LatestMessageID(ctx); err != nil {
		checks["chat"] = Check{Status: "fail", Message: err.Error()}
		healthy = false
	} else {
		checks["chat"] = Check{Status: "pass", Latency: time.Since(start).String()}
	}

	if h.backend != nil {
		start = time.Now()
		if err := h.backend.Ping(ctx); err != nil {
			checks["backend"] = Check{Status: "fail", Message: "backend unreachable"}
			healthy = false
		} else {
			checks["backend"] = Check{Status: "pass", Latency: time.Since(start).String()}
		}
	}

	status, code := "healthy", http.StatusOK
	if !healthy {
		status, code = "degraded", http.StatusServiceUnavailable
	}

	h.JSON(w, code, HealthResponse{
		Status:    status,
		Version:   version,
		Busy:      h.opt.Busy(),
		Checks:    checks,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

type checkRequest struct {
	Text string `json:"text"`
}

// CheckText reports whether text (or the latest message when text is
// empty) contains a disabled word.
func (h *Handler) CheckText(w http.ResponseWriter, r *http.Request) {
	var req checkRequest
	if err := decode(r, &req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	text := req.Text
	if text == "" {
		latest, err := h.opt.LatestText(r.Context())
		if err != nil {
			h.flowError(w, err)
			return
		}
		text = latest
	}

	h.JSON(w, http.StatusOK, map[string]interface{}{
		"matches": h.opt.CheckMessage(r.Context(), text),
	})
}

// Extract returns the numbered block of sentences to rewrite.
func (h *Handler) Extract(w http.ResponseWriter, r *http.Request) {
	block, err := h.opt.Extract(r.Context())
	if err != nil {
		h.flowError(w, err)
		return
	}
	h.JSON(w, http.StatusOK, map[string]interface{}{
		"sentences":     block,
		"notifications": h.notifications(),
	})
}

type rewriteRequest struct {
	Sentences    string `json:"sentences"`
	SystemPrompt string `json:"system_prompt"`
}

// Rewrite sends a numbered block to the model.
func (h *Handler) Rewrite(w http.ResponseWriter, r *http.Request) {
	var req rewriteRequest
	if err := decode(r, &req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Sentences == "" {
		h.Error(w, http.StatusBadRequest, "sentences is required")
		return
	}
	if req.SystemPrompt == "" {
		req.SystemPrompt = h.opt.SystemPrompt(r.Context())
	}

	out := h.opt.RewriteText(r.Context(), req.Sentences, req.SystemPrompt)
	if out == "" {
		h.flowError(w, optimizer.ErrEmptyRewrite)
		return
	}
	h.JSON(w, http.StatusOK, map[string]interface{}{
		"rewritten":     out,
		"notifications": h.notifications(),
	})
}

type replaceRequest struct {
	Original  string `json:"original"`
	Rewritten string `json:"rewritten"`
}

// Replace splices the rewritten block into the latest message.
func (h *Handler) Replace(w http.ResponseWriter, r *http.Request) {
	var req replaceRequest
	if err := decode(r, &req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Original == "" || req.Rewritten == "" {
		h.Error(w, http.StatusBadRequest, "original and rewritten are required")
		return
	}

	var text string
	if err := h.opt.Replace(r.Context(), req.Original, req.Rewritten, func(s string) { text = s }); err != nil {
		h.flowError(w, err)
		return
	}
	h.JSON(w, http.StatusOK, map[string]interface{}{
		"text":          text,
		"notifications": h.notifications(),
	})
}

// Optimize runs extract, rewrite and replace in one request.
func (h *Handler) Optimize(w http.ResponseWriter, r *http.Request) {
	if err := h.opt.RunFull(r.Context()); err != nil {
		h.flowError(w, err)
		return
	}
	h.JSON(w, http.StatusOK, map[string]interface{}{
		"notifications": h.notifications(),
	})
}

type renderedRequest struct {
	ID *int `json:"id"`
}

// Rendered lets the host app report that a message finished rendering.
func (h *Handler) Rendered(w http.ResponseWriter, r *http.Request) {
	var req renderedRequest
	if err := decode(r, &req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.ID == nil {
		h.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	h.bus.Emit(r.Context(), events.MessageRendered{ID: *req.ID})
	h.JSON(w, http.StatusAccepted, map[string]interface{}{
		"notifications": h.notifications(),
	})
}

// GetSettings returns the current settings snapshot.
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	s, err := h.settings.Settings(r.Context())
	if err != nil {
		h.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.JSON(w, http.StatusOK, s)
}

// PatchSettings merges the body over the stored settings.
func (h *Handler) PatchSettings(w http.ResponseWriter, r *http.Request) {
	var patch config.SettingsPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := h.settings.SaveSettings(r.Context(), patch); err != nil {
		h.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.GetSettings(w, r)
}
