package http

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	perrors "github.com/mesh-intelligence/campus/internal/platform/errors"
)

// PlatformErrorCodeHeader shows the error code of platform error.
const PlatformErrorCodeHeader = "X-Platform-Error-Code"

// Error body types, one per status family.
const (
	TypeNotFound   = "NotFoundError"
	TypeForbidden  = "ForbiddenError"
	TypeValidation = "ValidationError"
	TypeInternal   = "InternalError"
)

// internalMessage replaces the message of unexpected errors.
const internalMessage = "An internal error has occurred"

// ErrBody is the JSON body of every error response.
type ErrBody struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// ErrorHandler encodes errors as ErrBody responses.
type ErrorHandler struct {
	log *zap.Logger
}

// NewErrorHandler returns an ErrorHandler logging internal errors to log.
func NewErrorHandler(log *zap.Logger) *ErrorHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &ErrorHandler{log: log}
}

// HandleHTTPError encodes err with the appropriate status code and body,
// and sets the X-Platform-Error-Code header on the response.
func (h *ErrorHandler) HandleHTTPError(ctx context.Context, err error, w http.ResponseWriter) {
	if err == nil {
		return
	}

	code := perrors.ErrorCode(err)
	status, ok := statusCodePlatformError[code]
	if !ok {
		status = http.StatusBadRequest
	}

	body := ErrBody{
		Type:    errorType(status),
		Message: perrors.ErrorMessage(err),
	}
	if status >= http.StatusInternalServerError {
		h.log.Error("Internal error encountered",
			zap.String("op", perrors.ErrorOp(err)),
			zap.Error(err))
		body.Message = internalMessage
	}

	w.Header().Set(PlatformErrorCodeHeader, code)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	b, _ := json.Marshal(body)
	_, _ = w.Write(b)
}

func errorType(status int) string {
	switch status {
	case http.StatusNotFound:
		return TypeNotFound
	case http.StatusForbidden, http.StatusUnauthorized:
		return TypeForbidden
	case http.StatusInternalServerError:
		return TypeInternal
	default:
		return TypeValidation
	}
}

// statusCodePlatformError is the map convert platform.Error to error
var statusCodePlatformError = map[string]int{
	perrors.EInternal:     http.StatusInternalServerError,
	perrors.EInvalid:      http.StatusBadRequest,
	perrors.ENotFound:     http.StatusNotFound,
	perrors.EForbidden:    http.StatusForbidden,
	perrors.EUnauthorized: http.StatusUnauthorized,
}
