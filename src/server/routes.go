package server

import (
	"fmt"
	"net/http"

	"inkwell-entitlement/src/ai"
	"inkwell-entitlement/src/feature"
	"inkwell-entitlement/src/license"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// Serve is an instance of the Inkwell entitlement API server.
type Serve struct {
	ctx appContext
}

func NewServe(logger zerolog.Logger, licenseStore license.Store, resolver *license.Resolver, router *ai.Router, meter usageMeter) *Serve {
	return &Serve{
		ctx: appContext{
			logger:       logger,
			licenseStore: licenseStore,
			resolver:     resolver,
			router:       router,
			meter:        meter,
		},
	}
}

// Routes builds the API router.
func (s *Serve) Routes() *mux.Router {
	r := mux.NewRouter()

	r.Use(addCorsHeaders)
	r.HandleFunc("/health", wrapHandler(s.ctx, handleHealth)).Methods("GET", "OPTIONS")
	r.HandleFunc("/entitlement", wrapHandler(s.ctx, handleEntitlement)).Methods("GET")
	r.HandleFunc("/webhook", wrapHandler(s.ctx, handleWebhook)).Methods("POST")
	r.HandleFunc("/usage/{licenseID}", wrapHandler(s.ctx, handleGetUsage)).Methods("GET")
	r.HandleFunc("/usage/{licenseID}/stream", wrapHandler(s.ctx, handleStreamUsage)).Methods("GET")

	// Gated AI routes.
	aiRouter := r.PathPrefix("/ai").Subrouter()
	aiRouter.Use(featureGateMiddleware(s.ctx.resolver, feature.AIWriting))
	aiRouter.HandleFunc("/generate", wrapHandler(s.ctx, handleGenerate)).Methods("POST", "OPTIONS")

	return r
}

// Init exposes the server on the given port and blocks.
func (s *Serve) Init(port int) error {
	listenAddr := fmt.Sprintf(":%d", port)
	s.ctx.logger.Info().Msgf("entitlement API now listening on %s", listenAddr)
	return http.ListenAndServe(listenAddr, s.Routes())
}
