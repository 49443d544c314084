package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"go.uber.org/zap"

	perrors "github.com/mesh-intelligence/campus/internal/platform/errors"
)

type APIOptFn func(*API)

func WithLog(logger *zap.Logger) APIOptFn {
	return func(api *API) {
		api.logger = logger
	}
}

// API encodes responses and decodes request bodies for handlers.
type API struct {
	logger     *zap.Logger
	errHandler *ErrorHandler
}

func NewAPI(opts ...APIOptFn) *API {
	api := API{
		logger: zap.NewNop(),
	}
	for _, o := range opts {
		o(&api)
	}
	api.errHandler = NewErrorHandler(api.logger)
	return &api
}

// DecodeJSON decodes a JSON request body into v. Malformed bodies are
// EInvalid errors.
func (a *API) DecodeJSON(r io.Reader, v interface{}) error {
	if err := json.NewDecoder(r).Decode(v); err != nil {
		return &perrors.Error{
			Code: perrors.EInvalid,
			Msg:  "malformed JSON body",
			Err:  err,
		}
	}
	return nil
}

// Respond writes v as JSON with the given status.
func (a *API) Respond(w http.ResponseWriter, r *http.Request, status int, v interface{}) {
	if status == http.StatusNoContent {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.logger.Error("Failed to write response", zap.String("path", r.URL.Path), zap.Error(err))
	}
}

// Err writes err as an error response.
func (a *API) Err(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}
	a.errHandler.HandleHTTPError(r.Context(), err, w)
}

// HandleHTTPError lets the API serve as a perrors.HTTPErrorHandler.
func (a *API) HandleHTTPError(ctx context.Context, err error, w http.ResponseWriter) {
	a.errHandler.HandleHTTPError(ctx, err, w)
}
