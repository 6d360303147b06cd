package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/ariefcatur/go-marketplace-escrow.git/internal/auth"
	kafkax "github.com/ariefcatur/go-marketplace-escrow.git/internal/kafka"
	"github.com/ariefcatur/go-marketplace-escrow.git/internal/market"
	"github.com/ariefcatur/go-marketplace-escrow.git/internal/redisx"
)

// Handler wires the market service to the HTTP surface. Producer and Redis
// may be nil (tests, local dev without brokers); publishing and caching are
// then skipped.
type Handler struct {
	Service         *market.Service
	JWTSecret       []byte
	CreatedProducer *kafkax.Producer
	StatusProducer  *kafkax.Producer
	Redis           *redis.Client
	ServiceName     string
	Log             *slog.Logger
}

func (h *Handler) Register(r *chi.Mux) {
	if h.Log == nil {
		h.Log = slog.Default()
	}
	r.Route("/base", func(r chi.Router) {
		r.Post("/registration", h.registration)
		r.Post("/token", h.login)
		r.Get("/products", h.listProducts)
		r.Get("/products/{id}", h.getProduct)
		r.With(h.authenticate).Get("/me", h.me)
	})
	r.Route("/buyer", func(r chi.Router) {
		r.Use(h.authenticate)
		r.Post("/add_balance", h.addBalance)
		r.Post("/cart_items", h.addCartItem)
		r.Get("/cart_items", h.listCartItems)
		r.Delete("/cart_items/{id}", h.deleteCartItem)
		r.Post("/orders", h.createOrder)
		r.Get("/orders", h.buyerOrders)
		r.Post("/orders/{id}/received", h.markReceived)
		r.Post("/orders/{id}/confirm", h.confirm)
		r.Post("/orders/{id}/cancel", h.cancel)
	})
	r.Route("/seller", func(r chi.Router) {
		r.Use(h.authenticate)
		r.Post("/products", h.addProduct)
		r.Get("/products", h.sellerProducts)
		r.Get("/orders", h.sellerOrders)
		r.Post("/orders/{id}/acknowledge", h.acknowledge)
		r.Post("/orders/{id}/ship", h.ship)
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, market.ErrNotFound), errors.Is(err, market.ErrNotOwner):
		code = http.StatusNotFound
	case errors.Is(err, market.ErrForbidden):
		code = http.StatusForbidden
	case errors.Is(err, market.ErrInvalidTransition):
		code = http.StatusConflict
	case errors.Is(err, market.ErrInsufficientStock),
		errors.Is(err, market.ErrInsufficientFunds),
		errors.Is(err, market.ErrInvalidAmount),
		errors.Is(err, market.ErrInvalidFreezeState),
		errors.Is(err, market.ErrInvalidReservation),
		errors.Is(err, market.ErrAlreadyExists):
		code = http.StatusBadRequest
	}
	if code == http.StatusInternalServerError {
		h.Log.Error("request failed", "err", err)
	}
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

// --- base -----------------------------------------------------------------

type registrationReq struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (h *Handler) registration(w http.ResponseWriter, r *http.Request) {
	var req registrationReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.Email == "" || req.Name == "" || len(req.Password) < 8 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing fields or password too short"})
		return
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.writeError(w, err)
		return
	}
	user, err := h.Service.Register(r.Context(), market.RegisterInput{
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: hash,
		Role:         market.Role(req.Role),
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResp struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	user, err := h.Service.UserByEmail(r.Context(), req.Email)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "incorrect password"})
		return
	}
	token, err := auth.GenerateToken(h.JWTSecret, user.ID, user.Role)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenResp{AccessToken: token, TokenType: "bearer"})
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	ps, err := h.Service.Products(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.Service.Product(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type meResp struct {
	market.User
	Wallet market.Wallet `json:"wallet"`
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	user, wallet, err := h.Service.Me(r.Context(), actorFrom(r))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, meResp{User: user, Wallet: wallet})
}

// --- event publishing -----------------------------------------------------

func (h *Handler) envelope(r *http.Request, eventType, orderID string, payload any) market.Envelope {
	return market.Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.ServiceName,
		TraceID:       middleware.GetReqID(r.Context()),
		CorrelationID: orderID,
		Payload:       kafkax.MustMarshal(payload),
	}
}

func publish(p *kafkax.Producer, ev market.Envelope) {
	if p == nil {
		return
	}
	p.Publish(market.PartitionKey(ev.CorrelationID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(ev.EventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

func (h *Handler) cacheStatus(r *http.Request, o market.Order) {
	if h.Redis == nil {
		return
	}
	key := fmt.Sprintf(redisx.KeyOrderStatus, o.ID)
	val := fmt.Sprintf(`{"status":%q}`, o.Status)
	if err := h.Redis.Set(r.Context(), key, val, redisx.TTLStatusCache).Err(); err != nil {
		h.Log.Warn("status cache set failed", "order_id", o.ID, "err", err)
	}
}
