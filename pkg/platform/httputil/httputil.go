// Package httputil centralizes JSON encoding and error translation for HTTP
// handlers so transport concerns stay out of domain services.
package httputil

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	dErrors "nexolend/pkg/domain-errors"
)

// errorBody is the wire shape for all error responses.
type errorBody struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// WriteJSON encodes v as the response body with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	// Encoding failures after WriteHeader cannot be reported to the client;
	// they surface in server logs via the http package.
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError maps a domain error to its HTTP status and a stable error code.
// Internal errors omit the description so infrastructure details never leak.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	body := errorBody{Error: string(code)}

	var de *dErrors.Error
	if AsDomainError(err, &de) && code != dErrors.CodeInternal {
		body.ErrorDescription = de.Description
	}

	WriteJSON(w, dErrors.HTTPStatus(code), body)
}

// AsDomainError is a thin wrapper so callers don't import errors directly for
// this one assertion.
func AsDomainError(err error, target **dErrors.Error) bool {
	for err != nil {
		if de, ok := err.(*dErrors.Error); ok {
			*target = de
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// Validatable is implemented by request types that validate and normalize
// themselves after decoding.
type Validatable interface {
	Validate() error
}

// DecodeAndPrepare decodes the request body into T, runs validation, and
// writes the error response on failure. Returns the decoded value and whether
// the caller should proceed.
func DecodeAndPrepare[T any, PT interface {
	*T
	Validatable
}](w http.ResponseWriter, r *http.Request, logger *slog.Logger, ctx context.Context, requestID string) (PT, bool) {
	var req T
	pt := PT(&req)
	if err := json.NewDecoder(r.Body).Decode(pt); err != nil {
		if logger != nil {
			logger.WarnContext(ctx, "request decode failed",
				"request_id", requestID,
				"error", err,
			)
		}
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "malformed JSON body"))
		return nil, false
	}
	if err := pt.Validate(); err != nil {
		WriteError(w, err)
		return nil, false
	}
	return pt, true
}
