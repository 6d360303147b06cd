package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/ariefcatur/go-marketplace-escrow.git/internal/market"
)

type addProductReq struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	PriceCents  int64  `json:"price_cents"`
	Stock       int    `json:"stock"`
}

func (h *Handler) addProduct(w http.ResponseWriter, r *http.Request) {
	var req addProductReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing name"})
		return
	}
	p, err := h.Service.AddProduct(r.Context(), actorFrom(r), market.ProductInput{
		Name:        req.Name,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		Stock:       req.Stock,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *Handler) sellerProducts(w http.ResponseWriter, r *http.Request) {
	ps, err := h.Service.SellerProducts(r.Context(), actorFrom(r))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

func (h *Handler) sellerOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.Service.SellerOrders(r.Context(), actorFrom(r))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *Handler) acknowledge(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Service.Acknowledge)
}

func (h *Handler) ship(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Service.Ship)
}
