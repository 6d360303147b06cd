package httpx_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ariefcatur/go-marketplace-escrow.git/internal/httpx"
	"github.com/ariefcatur/go-marketplace-escrow.git/internal/market"
	"github.com/ariefcatur/go-marketplace-escrow.git/internal/memstore"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	h := &httpx.Handler{
		Service:   market.NewService(memstore.New()),
		JWTSecret: []byte("test-secret"),
		Log:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	r := httpx.NewRouter()
	h.Register(r)
	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)
	return ts
}

// do issues one request and decodes the JSON response into out (when non-nil).
func do(t *testing.T, ts *httptest.Server, method, path, token string, body, out any) int {
	t.Helper()
	var buf io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		buf = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, ts.URL+path, buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("%s %s: decode: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

func signup(t *testing.T, ts *httptest.Server, name string, role market.Role) string {
	t.Helper()
	email := name + "@example.com"
	code := do(t, ts, http.MethodPost, "/base/registration", "", map[string]any{
		"email": email, "name": name, "password": "hunter2hunter2", "role": string(role),
	}, nil)
	if code != http.StatusCreated {
		t.Fatalf("registration %s: status %d", name, code)
	}
	var tok struct {
		AccessToken string `json:"access_token"`
	}
	code = do(t, ts, http.MethodPost, "/base/token", "", map[string]any{
		"email": email, "password": "hunter2hunter2",
	}, &tok)
	if code != http.StatusOK {
		t.Fatalf("token %s: status %d", name, code)
	}
	return tok.AccessToken
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)
	if code := do(t, ts, http.MethodGet, "/healthz", "", nil, nil); code != http.StatusOK {
		t.Fatalf("healthz: %d", code)
	}
}

func TestFullLifecycleOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	buyerTok := signup(t, ts, "alice", market.RoleBuyer)
	sellerTok := signup(t, ts, "bob", market.RoleSeller)

	var prod market.Product
	if code := do(t, ts, http.MethodPost, "/seller/products", sellerTok, map[string]any{
		"name": "widget", "price_cents": 1500, "stock": 4,
	}, &prod); code != http.StatusCreated {
		t.Fatalf("add product: %d", code)
	}

	if code := do(t, ts, http.MethodPost, "/buyer/add_balance", buyerTok, map[string]any{
		"amount_cents": 10000,
	}, nil); code != http.StatusOK {
		t.Fatalf("add balance: %d", code)
	}

	var item market.CartItem
	if code := do(t, ts, http.MethodPost, "/buyer/cart_items", buyerTok, map[string]any{
		"product_id": prod.ID, "quantity": 2,
	}, &item); code != http.StatusCreated {
		t.Fatalf("add cart item: %d", code)
	}

	var order market.Order
	if code := do(t, ts, http.MethodPost, "/buyer/orders", buyerTok, map[string]any{
		"cart_item_id": item.ID,
	}, &order); code != http.StatusCreated {
		t.Fatalf("create order: %d", code)
	}
	if order.Status != market.StatusCreated || order.TotalCents != 3000 {
		t.Fatalf("order=%+v", order)
	}

	steps := []struct {
		path  string
		token string
		want  market.Status
	}{
		{"/seller/orders/" + order.ID + "/acknowledge", sellerTok, market.StatusAcknowledged},
		{"/seller/orders/" + order.ID + "/ship", sellerTok, market.StatusShipped},
		{"/buyer/orders/" + order.ID + "/received", buyerTok, market.StatusReceived},
		{"/buyer/orders/" + order.ID + "/confirm", buyerTok, market.StatusConfirmed},
	}
	for _, step := range steps {
		var o market.Order
		if code := do(t, ts, http.MethodPost, step.path, step.token, nil, &o); code != http.StatusOK {
			t.Fatalf("%s: %d", step.path, code)
		}
		if o.Status != step.want {
			t.Fatalf("%s: status=%s want %s", step.path, o.Status, step.want)
		}
	}

	var buyerMe, sellerMe struct {
		Wallet market.Wallet `json:"wallet"`
	}
	do(t, ts, http.MethodGet, "/base/me", buyerTok, nil, &buyerMe)
	do(t, ts, http.MethodGet, "/base/me", sellerTok, nil, &sellerMe)
	if buyerMe.Wallet.BalanceCents != 7000 || buyerMe.Wallet.FrozenCents != 0 {
		t.Fatalf("buyer wallet=%+v", buyerMe.Wallet)
	}
	if sellerMe.Wallet.BalanceCents != 3000 {
		t.Fatalf("seller wallet=%+v", sellerMe.Wallet)
	}

	var p market.Product
	do(t, ts, http.MethodGet, "/base/products/"+prod.ID, "", nil, &p)
	if p.Stock != 2 || p.Reserved != 0 {
		t.Fatalf("product after confirm: stock=%d reserved=%d", p.Stock, p.Reserved)
	}
}

func TestCancelOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	buyerTok := signup(t, ts, "alice", market.RoleBuyer)
	sellerTok := signup(t, ts, "bob", market.RoleSeller)

	var prod market.Product
	do(t, ts, http.MethodPost, "/seller/products", sellerTok, map[string]any{
		"name": "widget", "price_cents": 1000, "stock": 3,
	}, &prod)
	do(t, ts, http.MethodPost, "/buyer/add_balance", buyerTok, map[string]any{"amount_cents": 5000}, nil)
	var item market.CartItem
	do(t, ts, http.MethodPost, "/buyer/cart_items", buyerTok, map[string]any{
		"product_id": prod.ID, "quantity": 1,
	}, &item)
	var order market.Order
	do(t, ts, http.MethodPost, "/buyer/orders", buyerTok, map[string]any{"cart_item_id": item.ID}, &order)

	// seller may not cancel
	if code := do(t, ts, http.MethodPost, "/buyer/orders/"+order.ID+"/cancel", sellerTok, nil, nil); code != http.StatusForbidden {
		t.Fatalf("seller cancel: %d", code)
	}

	var o market.Order
	if code := do(t, ts, http.MethodPost, "/buyer/orders/"+order.ID+"/cancel", buyerTok, nil, &o); code != http.StatusOK {
		t.Fatalf("cancel: %d", code)
	}
	if o.Status != market.StatusCancelled {
		t.Fatalf("status=%s", o.Status)
	}

	var me struct {
		Wallet market.Wallet `json:"wallet"`
	}
	do(t, ts, http.MethodGet, "/base/me", buyerTok, nil, &me)
	if me.Wallet.BalanceCents != 5000 || me.Wallet.FrozenCents != 0 {
		t.Fatalf("wallet after cancel=%+v", me.Wallet)
	}
}

func TestAuthRequired(t *testing.T) {
	ts := newTestServer(t)
	if code := do(t, ts, http.MethodGet, "/buyer/orders", "", nil, nil); code != http.StatusUnauthorized {
		t.Fatalf("no token: %d", code)
	}
	if code := do(t, ts, http.MethodGet, "/buyer/orders", "not.a.token", nil, nil); code != http.StatusUnauthorized {
		t.Fatalf("bad token: %d", code)
	}
}

func TestLoginFailures(t *testing.T) {
	ts := newTestServer(t)
	signup(t, ts, "alice", market.RoleBuyer)

	if code := do(t, ts, http.MethodPost, "/base/token", "", map[string]any{
		"email": "alice@example.com", "password": "wrong-password",
	}, nil); code != http.StatusUnauthorized {
		t.Fatalf("wrong password: %d", code)
	}
	if code := do(t, ts, http.MethodPost, "/base/token", "", map[string]any{
		"email": "ghost@example.com", "password": "whatever1234",
	}, nil); code != http.StatusNotFound {
		t.Fatalf("unknown email: %d", code)
	}
}

func TestErrorStatusCodes(t *testing.T) {
	ts := newTestServer(t)
	buyerTok := signup(t, ts, "alice", market.RoleBuyer)
	sellerTok := signup(t, ts, "bob", market.RoleSeller)

	// duplicate registration
	if code := do(t, ts, http.MethodPost, "/base/registration", "", map[string]any{
		"email": "alice@example.com", "name": "alice2", "password": "hunter2hunter2", "role": "buyer",
	}, nil); code != http.StatusBadRequest {
		t.Fatalf("duplicate email: %d", code)
	}

	// role guards
	if code := do(t, ts, http.MethodPost, "/buyer/add_balance", sellerTok, map[string]any{
		"amount_cents": 100,
	}, nil); code != http.StatusForbidden {
		t.Fatalf("seller add_balance: %d", code)
	}
	if code := do(t, ts, http.MethodPost, "/seller/products", buyerTok, map[string]any{
		"name": "x", "price_cents": 1, "stock": 1,
	}, nil); code != http.StatusForbidden {
		t.Fatalf("buyer add product: %d", code)
	}

	// missing resources
	if code := do(t, ts, http.MethodGet, "/base/products/nope", "", nil, nil); code != http.StatusNotFound {
		t.Fatalf("missing product: %d", code)
	}
	if code := do(t, ts, http.MethodPost, "/buyer/orders/nope/confirm", buyerTok, nil, nil); code != http.StatusNotFound {
		t.Fatalf("missing order: %d", code)
	}

	var prod market.Product
	do(t, ts, http.MethodPost, "/seller/products", sellerTok, map[string]any{
		"name": "widget", "price_cents": 1000, "stock": 2,
	}, &prod)

	// not enough funds
	var item market.CartItem
	do(t, ts, http.MethodPost, "/buyer/cart_items", buyerTok, map[string]any{
		"product_id": prod.ID, "quantity": 1,
	}, &item)
	if code := do(t, ts, http.MethodPost, "/buyer/orders", buyerTok, map[string]any{
		"cart_item_id": item.ID,
	}, nil); code != http.StatusBadRequest {
		t.Fatalf("insufficient funds: %d", code)
	}

	// illegal transition: confirm straight from created
	do(t, ts, http.MethodPost, "/buyer/add_balance", buyerTok, map[string]any{"amount_cents": 5000}, nil)
	var order market.Order
	do(t, ts, http.MethodPost, "/buyer/orders", buyerTok, map[string]any{"cart_item_id": item.ID}, &order)
	if code := do(t, ts, http.MethodPost, "/buyer/orders/"+order.ID+"/confirm", buyerTok, nil, nil); code != http.StatusConflict {
		t.Fatalf("confirm from created: %d", code)
	}

	// ownership: another buyer's order reads as missing
	otherTok := signup(t, ts, "carol", market.RoleBuyer)
	if code := do(t, ts, http.MethodPost, "/buyer/orders/"+order.ID+"/cancel", otherTok, nil, nil); code != http.StatusNotFound {
		t.Fatalf("foreign order cancel: %d", code)
	}
}
