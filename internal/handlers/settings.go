package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/diewo77/bill-ease/httpx"
	"github.com/diewo77/bill-ease/internal/invoice"
	"github.com/diewo77/bill-ease/internal/services"
	"go.uber.org/zap"
)

const maxLogoSize = 2 << 20

type SettingsHandler struct {
	settings *services.SettingsService
	logger   *zap.Logger
}

func NewSettingsHandler(settings *services.SettingsService, logger *zap.Logger) *SettingsHandler {
	return &SettingsHandler{settings: settings, logger: logger}
}

func (h *SettingsHandler) Agency(w http.ResponseWriter, r *http.Request) {
	row, err := h.settings.Agency(r.Context(), session(r))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, row)
}

func (h *SettingsHandler) UpdateAgency(w http.ResponseWriter, r *http.Request) {
	var in invoice.Party
	if err := httpx.Decode(w, r, maxJSONBody, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}
	row, err := h.settings.SaveAgency(r.Context(), session(r), in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, row)
}

func (h *SettingsHandler) UploadAgencyLogo(w http.ResponseWriter, r *http.Request) {
	data, err := readLogo(w, r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	row, err := h.settings.UploadAgencyLogo(r.Context(), session(r), data)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, row)
}

func (h *SettingsHandler) Branding(w http.ResponseWriter, r *http.Request) {
	b, err := h.settings.Branding(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, b)
}

type brandingRequest struct {
	DisplayName string `json:"display_name"`
	Slogan      string `json:"slogan"`
	Description string `json:"description"`
}

func (h *SettingsHandler) UpdateBranding(w http.ResponseWriter, r *http.Request) {
	var in brandingRequest
	if err := httpx.Decode(w, r, maxJSONBody, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}
	b, err := h.settings.SaveBranding(r.Context(), session(r), services.BrandingInput(in))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, b)
}

func (h *SettingsHandler) UploadBrandingLogo(w http.ResponseWriter, r *http.Request) {
	data, err := readLogo(w, r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	b, err := h.settings.UploadBrandingLogo(r.Context(), session(r), data)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, b)
}

func (h *SettingsHandler) BrandingLogo(w http.ResponseWriter, r *http.Request) {
	data, contentType, err := h.settings.BrandingLogo(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=300")
	_, _ = w.Write(data)
}

// readLogo returns the "logo" part of a multipart upload.
func readLogo(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxLogoSize+1<<16)
	if err := r.ParseMultipartForm(maxLogoSize); err != nil {
		return nil, &services.ValidationError{Fields: map[string]string{"logo": "invalid_upload"}}
	}
	file, _, err := r.FormFile("logo")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, &services.ValidationError{Fields: map[string]string{"logo": "required"}}
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()
	data, err := io.ReadAll(io.LimitReader(file, maxLogoSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxLogoSize {
		return nil, &services.ValidationError{Fields: map[string]string{"logo": "too_large"}}
	}
	return data, nil
}
