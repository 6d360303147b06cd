package httpx

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ariefcatur/go-marketplace-escrow.git/internal/market"
)

type addBalanceReq struct {
	AmountCents int64 `json:"amount_cents"`
}

func (h *Handler) addBalance(w http.ResponseWriter, r *http.Request) {
	var req addBalanceReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	wallet, err := h.Service.AddBalance(r.Context(), actorFrom(r), req.AmountCents)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, wallet)
}

type addCartItemReq struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

func (h *Handler) addCartItem(w http.ResponseWriter, r *http.Request) {
	var req addCartItemReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	item, err := h.Service.AddCartItem(r.Context(), actorFrom(r), req.ProductID, req.Quantity)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (h *Handler) listCartItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.Service.CartItems(r.Context(), actorFrom(r))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handler) deleteCartItem(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.DeleteCartItem(r.Context(), actorFrom(r), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "cart item deleted"})
}

type createOrderReq struct {
	CartItemID string `json:"cart_item_id"`
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	order, err := h.Service.CreateOrder(r.Context(), actorFrom(r), req.CartItemID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.cacheStatus(r, order)
	publish(h.CreatedProducer, h.envelope(r, market.EventOrderCreated, order.ID, market.OrderCreatedPayload{
		OrderID:    order.ID,
		BuyerID:    order.BuyerID,
		SellerID:   order.SellerID,
		ProductID:  order.ProductID,
		Quantity:   order.Quantity,
		TotalCents: order.TotalCents,
	}))
	writeJSON(w, http.StatusCreated, order)
}

func (h *Handler) buyerOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.Service.BuyerOrders(r.Context(), actorFrom(r))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *Handler) markReceived(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Service.MarkReceived)
}

func (h *Handler) confirm(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Service.Confirm)
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Service.Cancel)
}

// transition runs one state-machine operation and, on success, refreshes
// the status cache and publishes the matching lifecycle event.
func (h *Handler) transition(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, actor market.Actor, orderID string) (market.Order, error)) {
	order, err := op(r.Context(), actorFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.cacheStatus(r, order)
	publish(h.StatusProducer, h.envelope(r, market.StatusEvent(order.Status), order.ID, market.OrderStatusPayload{
		OrderID:    order.ID,
		BuyerID:    order.BuyerID,
		SellerID:   order.SellerID,
		Status:     order.Status,
		TotalCents: order.TotalCents,
	}))
	writeJSON(w, http.StatusOK, order)
}
