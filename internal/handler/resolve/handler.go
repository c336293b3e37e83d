package resolve

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/whimsylab/couplescourt/internal/handler/respond"
	resolveservice "github.com/whimsylab/couplescourt/internal/service/resolve"
	"github.com/whimsylab/couplescourt/pkg/utils"
)

// Handler triggers the resolution pipeline.
type Handler struct {
	svc *resolveservice.Service
}

// New creates the resolve handler.
func New(svc *resolveservice.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the resolve route on the router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/resolve", h.handleResolve)
}

func (h *Handler) handleResolve(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		SessionID string `json:"sessionId"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.SessionID == "" {
		utils.RespondError(w, http.StatusBadRequest, "sessionId is required")
		return
	}

	result, err := h.svc.Resolve(r.Context(), payload.SessionID)
	if err != nil {
		respond.DomainError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, result)
}
