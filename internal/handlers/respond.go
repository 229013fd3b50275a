package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/diewo77/bill-ease/auth"
	"github.com/diewo77/bill-ease/httpx"
	"github.com/diewo77/bill-ease/internal/services"
	"github.com/diewo77/bill-ease/pdf"
	"go.uber.org/zap"
)

const maxJSONBody = 1 << 20

// writeError maps service errors onto status codes. Unexpected failures are
// surfaced with their message and not retried.
func writeError(w http.ResponseWriter, log *zap.Logger, err error) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", verr.Fields)
	case errors.Is(err, httpx.ErrBadBody):
		httpx.JSONError(w, http.StatusBadRequest, "invalid_body", err.Error())
	case errors.Is(err, services.ErrNoSession):
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
	case errors.Is(err, services.ErrBadCredentials):
		httpx.JSONError(w, http.StatusUnauthorized, "invalid_credentials", nil)
	case errors.Is(err, services.ErrNotFound):
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
	case errors.Is(err, services.ErrEmailTaken):
		httpx.JSONError(w, http.StatusConflict, "email_taken", nil)
	case errors.Is(err, pdf.ErrRender):
		log.Error("render failed", zap.Error(err))
		httpx.JSONError(w, http.StatusInternalServerError, "render_failed", err.Error())
	default:
		log.Error("request failed", zap.Error(err))
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

func session(r *http.Request) auth.Session {
	s, _ := auth.SessionFrom(r.Context())
	return s
}

func wantsPDF(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/pdf")
}

// looseString accepts a JSON string or number and keeps its text, so numeric
// fields can be validated per field rather than failing the whole body.
type looseString string

func (s *looseString) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*s = ""
		return nil
	}
	var str string
	if err := json.Unmarshal(b, &str); err == nil {
		*s = looseString(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(b, &num); err != nil {
		return err
	}
	*s = looseString(num.String())
	return nil
}
