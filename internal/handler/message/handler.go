package message

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/whimsylab/couplescourt/internal/analysis/tone"
	"github.com/whimsylab/couplescourt/internal/handler/respond"
	"github.com/whimsylab/couplescourt/internal/model/court"
	messageservice "github.com/whimsylab/couplescourt/internal/service/message"
	"github.com/whimsylab/couplescourt/pkg/utils"
)

// Handler serves the append path and the polling feed.
type Handler struct {
	svc *messageservice.Service
}

// New creates the message handler.
func New(svc *messageservice.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts message routes on the router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/messages", h.handleList)
	r.Post("/messages", h.handleAppend)
}

// feedMessage decorates a message with its display-only tone hint.
type feedMessage struct {
	court.Message
	Tone tone.Label `json:"tone,omitempty"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("sessionId")
	if sessionID == "" {
		utils.RespondError(w, http.StatusBadRequest, "sessionId query parameter is required")
		return
	}

	var since *time.Time
	if raw := r.URL.Query().Get("since"); raw != "" {
		ts, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			utils.RespondError(w, http.StatusBadRequest, "since must be an RFC3339 timestamp")
			return
		}
		since = &ts
	}

	msgs, err := h.svc.ListSince(r.Context(), sessionID, since)
	if err != nil {
		respond.DomainError(w, err)
		return
	}

	feed := make([]feedMessage, len(msgs))
	for i, m := range msgs {
		feed[i] = feedMessage{Message: m, Tone: tone.Hint(m.Content)}
	}
	utils.RespondJSON(w, http.StatusOK, feed)
}

func (h *Handler) handleAppend(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		SessionID        string `json:"sessionId"`
		Sender           string `json:"sender"`
		Content          string `json:"content"`
		ParticipantToken string `json:"participantToken"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.SessionID == "" {
		utils.RespondError(w, http.StatusBadRequest, "sessionId is required")
		return
	}

	msg, err := h.svc.Append(r.Context(), payload.SessionID,
		court.Role(payload.Sender), payload.Content, payload.ParticipantToken)
	if err != nil {
		respond.DomainError(w, err)
		return
	}

	// The persisted message is returned whole so clients can reconcile an
	// optimistic temporary id with the authoritative one.
	utils.RespondJSON(w, http.StatusCreated, msg)
}
