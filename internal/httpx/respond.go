package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ariefcatur/go-sample-storefront/internal/apperr"
	"github.com/ariefcatur/go-sample-storefront/internal/logger"
)

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type errorEnvelope struct {
	Error apiError `json:"error"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps err to its apperr status. Untyped errors become 500 with the public message only.
func writeError(ctx context.Context, log *logger.Logger, w http.ResponseWriter, err error) {
	if err == nil {
		err = errors.New("unknown error")
	}
	if log == nil {
		log = logger.Nop()
	}
	typed := apperr.As(err)
	if typed == nil {
		typed = apperr.Wrap(apperr.CodeInternal, err, "unexpected error")
	}
	meta := apperr.MetadataFor(typed.Code())

	body := apiError{Code: string(typed.Code()), Message: meta.PublicMessage}
	switch typed.Code() {
	case apperr.CodeValidation, apperr.CodeNotFound, apperr.CodeConflict:
		if m := typed.Message(); m != "" {
			body.Message = m
		}
	}
	if meta.DetailsAllowed {
		body.Details = typed.Details()
	}

	if meta.HTTPStatus >= http.StatusInternalServerError {
		log.Error(ctx, "request.error", err)
	} else {
		log.Debug(log.WithField(ctx, "error", err.Error()), "request.rejected")
	}
	writeJSON(w, meta.HTTPStatus, errorEnvelope{Error: body})
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return apperr.Wrap(apperr.CodeValidation, err, "invalid json")
	}
	return nil
}
