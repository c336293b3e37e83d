package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	messagehandler "github.com/whimsylab/couplescourt/internal/handler/message"
	resolvehandler "github.com/whimsylab/couplescourt/internal/handler/resolve"
	sessionhandler "github.com/whimsylab/couplescourt/internal/handler/session"
	middlewarePkg "github.com/whimsylab/couplescourt/internal/middleware"
	messageservice "github.com/whimsylab/couplescourt/internal/service/message"
	resolveservice "github.com/whimsylab/couplescourt/internal/service/resolve"
	sessionservice "github.com/whimsylab/couplescourt/internal/service/session"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(sessionSvc *sessionservice.Service, messageSvc *messageservice.Service, resolveSvc *resolveservice.Service, appURL string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	sessionHandler := sessionhandler.New(sessionSvc, appURL)
	messageHandler := messagehandler.New(messageSvc)
	resolveHandler := resolvehandler.New(resolveSvc)

	r.Route("/api", func(api chi.Router) {
		sessionHandler.RegisterRoutes(api)
		messageHandler.RegisterRoutes(api)
		resolveHandler.RegisterRoutes(api)
	})

	return r
}
