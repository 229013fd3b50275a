package handlers

import (
	"net/http"

	"github.com/diewo77/bill-ease/httpx"
	"github.com/diewo77/bill-ease/internal/services"
	"go.uber.org/zap"
)

type ProductHandler struct {
	inventory *services.InventoryService
	logger    *zap.Logger
}

func NewProductHandler(inventory *services.InventoryService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{inventory: inventory, logger: logger}
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.inventory.List(r.Context(), session(r))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, products)
}

type productRequest struct {
	Name  string      `json:"name"`
	Price looseString `json:"price"`
	Stock looseString `json:"stock"`
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in productRequest
	if err := httpx.Decode(w, r, maxJSONBody, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}
	p, err := h.inventory.Add(r.Context(), session(r), services.ProductInput{
		Name:  in.Name,
		Price: string(in.Price),
		Stock: string(in.Stock),
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, p)
}
