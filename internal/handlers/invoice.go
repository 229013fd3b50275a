package handlers

import (
	"net/http"
	"time"

	"github.com/diewo77/bill-ease/httpx"
	"github.com/diewo77/bill-ease/internal/invoice"
	"github.com/diewo77/bill-ease/internal/services"
	"github.com/diewo77/bill-ease/pdf"
	"go.uber.org/zap"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type InvoiceHandler struct {
	invoices *services.InvoiceService
	logger   *zap.Logger
}

func NewInvoiceHandler(invoices *services.InvoiceService, logger *zap.Logger) *InvoiceHandler {
	return &InvoiceHandler{invoices: invoices, logger: logger}
}

type createInvoiceResponse struct {
	Invoice     invoice.Record `json:"invoice"`
	Rows        []pdf.Row      `json:"rows"`
	PDF         string         `json:"pdf_url,omitempty"`
	RenderError string         `json:"render_error,omitempty"`
}

func pdfURL(id string) string { return "/invoices/" + id + "/pdf" }

// Create submits a draft. With "Accept: application/pdf" the rendered
// document is returned directly; otherwise the stored record as JSON.
func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var draft invoice.Draft
	if err := httpx.Decode(w, r, maxJSONBody, &draft); err != nil {
		writeError(w, h.logger, err)
		return
	}
	res, err := h.invoices.Create(r.Context(), session(r), draft)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	if wantsPDF(r) {
		if res.RenderErr != nil {
			httpx.JSONError(w, http.StatusInternalServerError, "render_failed", map[string]string{
				"invoice_id": res.Record.ID,
				"message":    res.RenderErr.Error(),
			})
			return
		}
		w.Header().Set("Location", "/invoices/"+res.Record.ID)
		httpx.Attachment(w, "application/pdf", res.Document.Filename, res.Document.Bytes)
		return
	}

	out := createInvoiceResponse{Invoice: res.Record, Rows: res.Rows}
	if res.RenderErr != nil {
		out.RenderError = res.RenderErr.Error()
	} else {
		out.PDF = pdfURL(res.Record.ID)
	}
	w.Header().Set("Location", "/invoices/"+res.Record.ID)
	httpx.JSON(w, http.StatusCreated, out)
}

func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	records, err := h.invoices.List(r.Context(), session(r), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, records)
}

func (h *InvoiceHandler) View(w http.ResponseWriter, r *http.Request) {
	rec, err := h.invoices.Get(r.Context(), session(r), r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rec)
}

func (h *InvoiceHandler) PDF(w http.ResponseWriter, r *http.Request) {
	doc, err := h.invoices.Document(r.Context(), session(r), r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	httpx.Attachment(w, "application/pdf", doc.Filename, doc.Bytes)
}

func (h *InvoiceHandler) Export(w http.ResponseWriter, r *http.Request) {
	data, err := h.invoices.Export(r.Context(), session(r), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	name := "invoices_" + time.Now().Format("20060102") + ".xlsx"
	httpx.Attachment(w, xlsxContentType, name, data)
}
