package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/rocketscienceinc/irene-skills/internal/apperror"
	"github.com/rocketscienceinc/irene-skills/internal/pkg"
)

const maxRequestBody = 4096

type UtteranceRequest struct {
	SessionID string `json:"session_id,omitempty"`
	Text      string `json:"text"`
}

type UtteranceResponse struct {
	SessionID string   `json:"session_id"`
	Replies   []string `json:"replies"`
	Error     string   `json:"error,omitempty"`
}

type MessagesResponse struct {
	SessionID string   `json:"session_id"`
	Messages  []string `json:"messages"`
}

// collector gathers everything a skill says during one request.
type collector struct {
	mu      sync.Mutex
	replies []string
}

func (that *collector) Say(_ context.Context, text string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.replies = append(that.replies, text)

	return nil
}

func (that *collector) all() []string {
	that.mu.Lock()
	defer that.mu.Unlock()

	return append([]string{}, that.replies...)
}

func (that *Server) handleUtterance(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "handleUtterance")

	var req UtteranceRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil {
		that.writeJSON(w, http.StatusBadRequest, UtteranceResponse{Error: "invalid request body"})
		return
	}

	req.Text = strings.TrimSpace(req.Text)
	if req.Text == "" {
		that.writeJSON(w, http.StatusBadRequest, UtteranceResponse{SessionID: req.SessionID, Error: "text is required"})
		return
	}

	if req.SessionID == "" {
		req.SessionID = pkg.GenerateSessionID()
	}

	speaker := &collector{}
	err := that.dispatcher.Handle(r.Context(), req.SessionID, req.Text, speaker)

	resp := UtteranceResponse{
		SessionID: req.SessionID,
		Replies:   speaker.all(),
	}

	switch {
	case errors.Is(err, apperror.ErrUnknownCommand):
		resp.Error = err.Error()
		that.writeJSON(w, http.StatusUnprocessableEntity, resp)
	case err != nil:
		log.Error("failed to handle utterance", "sessionID", req.SessionID, "error", err)
		resp.Error = "failed to handle utterance"
		that.writeJSON(w, http.StatusInternalServerError, resp)
	default:
		that.writeJSON(w, http.StatusOK, resp)
	}
}

func (that *Server) handleMessages(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "handleMessages")

	sessionID := r.PathValue("id")

	messages, err := that.notifier.Pending(r.Context(), sessionID)
	if err != nil {
		log.Error("failed to read pending messages", "sessionID", sessionID, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)

		return
	}

	if messages == nil {
		messages = []string{}
	}

	that.writeJSON(w, http.StatusOK, MessagesResponse{SessionID: sessionID, Messages: messages})
}

func (that *Server) handleForget(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "handleForget")

	sessionID := r.PathValue("id")

	if err := that.dispatcher.Forget(r.Context(), sessionID); err != nil {
		log.Error("failed to forget session", "sessionID", sessionID, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (that *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		that.logger.Error("failed to write response", "error", err)
	}
}
