package server

import (
	"context"
	"encoding/json"
	"net/http"

	"inkwell-entitlement/src/ai"
	"inkwell-entitlement/src/license"

	"github.com/rs/zerolog"
)

// usageMeter is the slice of usage.Meter the handlers consume.
type usageMeter interface {
	Total(ctx context.Context, licenseID string) (int64, error)
	Stream(ctx context.Context, licenseID string) (<-chan int64, error)
}

// appContext carries the subsystem's collaborators to every handler.
// Handlers receive it explicitly; nothing is read from package globals.
type appContext struct {
	logger       zerolog.Logger
	licenseStore license.Store
	resolver     *license.Resolver
	router       *ai.Router
	meter        usageMeter
}

// appHandler is the shape of all API handlers: the returned status code and
// error drive the JSON error response.
type appHandler func(ctx appContext, w http.ResponseWriter, req *http.Request) (int, error)

func wrapHandler(ctx appContext, h appHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if code, err := h(ctx, w, req); err != nil {
			writeError(ctx.logger, code, err.Error(), w)
		}
	}
}

// ErrorRes is a JSON response containing an error message from the API.
type ErrorRes struct {
	Message string `json:"message"`
}

func writeError(logger zerolog.Logger, code int, message string, w http.ResponseWriter) {
	logger.Info().Msg(message)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	err := ErrorRes{
		Message: message,
	}
	json.NewEncoder(w).Encode(err)
}
