package session

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/whimsylab/couplescourt/internal/handler/respond"
	sessionservice "github.com/whimsylab/couplescourt/internal/service/session"
	"github.com/whimsylab/couplescourt/pkg/utils"
)

// Handler serves session creation, lookup and the join flow.
type Handler struct {
	svc    *sessionservice.Service
	appURL string
}

// New creates the session handler. appURL is the public base used to build
// invite links.
func New(svc *sessionservice.Service, appURL string) *Handler {
	return &Handler{svc: svc, appURL: strings.TrimRight(appURL, "/")}
}

// RegisterRoutes mounts session routes on the router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/session", h.handleCreate)
	r.Get("/session", h.handleGetByInviteToken)
	r.Get("/session/{sessionID}", h.handleGetByID)
	r.Post("/session/{inviteToken}/join", h.handleJoin)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		CreatorName     string `json:"creatorName"`
		ExpirationHours int    `json:"expirationHours"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.svc.CreateAnonymous(r.Context(), payload.CreatorName,
		time.Duration(payload.ExpirationHours)*time.Hour)
	if err != nil {
		respond.DomainError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusCreated, map[string]any{
		"sessionId":        created.Session.ID,
		"inviteToken":      created.Session.InviteToken,
		"inviteUrl":        h.appURL + "/session/" + created.Session.InviteToken,
		"participantToken": created.ParticipantToken,
		"creatorRole":      "A",
		"expiresAt":        created.Session.ExpiresAt,
	})
}

func (h *Handler) handleGetByInviteToken(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("inviteToken")
	if token == "" {
		utils.RespondError(w, http.StatusBadRequest, "inviteToken query parameter is required")
		return
	}

	view, err := h.svc.ViewByInviteToken(r.Context(), token)
	if err != nil {
		respond.DomainError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, view)
}

func (h *Handler) handleGetByID(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.ViewByID(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		respond.DomainError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, view)
}

func (h *Handler) handleJoin(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		PartnerName string `json:"partnerName"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	joined, err := h.svc.Join(r.Context(), chi.URLParam(r, "inviteToken"), payload.PartnerName)
	if err != nil {
		respond.DomainError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"session":          joined.View,
		"partnerRole":      "B",
		"participantToken": joined.ParticipantToken,
	})
}
