// Package memstore is an in-memory implementation of the market store,
// intended for tests and local development. A single mutex serialises
// transactions; each transaction works on a copy of the state that only
// replaces the live state on commit, so a failed transaction leaves
// nothing behind.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/ariefcatur/go-marketplace-escrow.git/internal/market"
)

type state struct {
	users        map[string]market.User
	usersByEmail map[string]string
	usersByName  map[string]string
	wallets      map[string]market.Wallet
	walletByUser map[string]string
	products     map[string]market.Product
	cartItems    map[string]market.CartItem
	orders       map[string]market.Order
}

func newState() *state {
	return &state{
		users:        make(map[string]market.User),
		usersByEmail: make(map[string]string),
		usersByName:  make(map[string]string),
		wallets:      make(map[string]market.Wallet),
		walletByUser: make(map[string]string),
		products:     make(map[string]market.Product),
		cartItems:    make(map[string]market.CartItem),
		orders:       make(map[string]market.Order),
	}
}

func (st *state) clone() *state {
	return &state{
		users:        cloneMap(st.users),
		usersByEmail: cloneMap(st.usersByEmail),
		usersByName:  cloneMap(st.usersByName),
		wallets:      cloneMap(st.wallets),
		walletByUser: cloneMap(st.walletByUser),
		products:     cloneMap(st.products),
		cartItems:    cloneMap(st.cartItems),
		orders:       cloneMap(st.orders),
	}
}

func cloneMap[V any](m map[string]V) map[string]V {
	out := make(map[string]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

type Store struct {
	mu sync.Mutex
	st *state
}

var _ market.Store = (*Store)(nil)

func New() *Store {
	return &Store{st: newState()}
}

// RunTx holds the store lock for the whole transaction, which makes every
// transaction serialisable. Writes go to a copy and are swapped in on
// commit.
func (s *Store) RunTx(ctx context.Context, fn func(tx market.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	work := s.st.clone()
	if err := fn(&memTx{st: work}); err != nil {
		return err
	}
	s.st = work
	return nil
}

type memTx struct{ st *state }

var _ market.Tx = (*memTx)(nil)

// Users -----------------------------------------------------------------

func (t *memTx) InsertUser(_ context.Context, u market.User) error {
	if _, ok := t.st.users[u.ID]; ok {
		return fmt.Errorf("user %s: %w", u.ID, market.ErrAlreadyExists)
	}
	if _, ok := t.st.usersByEmail[u.Email]; ok {
		return fmt.Errorf("email %s: %w", u.Email, market.ErrAlreadyExists)
	}
	if _, ok := t.st.usersByName[u.Name]; ok {
		return fmt.Errorf("name %s: %w", u.Name, market.ErrAlreadyExists)
	}
	t.st.users[u.ID] = u
	t.st.usersByEmail[u.Email] = u.ID
	t.st.usersByName[u.Name] = u.ID
	return nil
}

func (t *memTx) UserByID(_ context.Context, id string) (market.User, error) {
	u, ok := t.st.users[id]
	if !ok {
		return market.User{}, fmt.Errorf("user %s: %w", id, market.ErrNotFound)
	}
	return u, nil
}

func (t *memTx) UserByEmail(ctx context.Context, email string) (market.User, error) {
	id, ok := t.st.usersByEmail[email]
	if !ok {
		return market.User{}, fmt.Errorf("user %s: %w", email, market.ErrNotFound)
	}
	return t.UserByID(ctx, id)
}

func (t *memTx) UserByName(ctx context.Context, name string) (market.User, error) {
	id, ok := t.st.usersByName[name]
	if !ok {
		return market.User{}, fmt.Errorf("user %s: %w", name, market.ErrNotFound)
	}
	return t.UserByID(ctx, id)
}

// Wallets ---------------------------------------------------------------

func (t *memTx) InsertWallet(_ context.Context, w market.Wallet) error {
	if _, ok := t.st.walletByUser[w.UserID]; ok {
		return fmt.Errorf("wallet for user %s: %w", w.UserID, market.ErrAlreadyExists)
	}
	t.st.wallets[w.ID] = w
	t.st.walletByUser[w.UserID] = w.ID
	return nil
}

func (t *memTx) WalletByUser(_ context.Context, userID string) (market.Wallet, error) {
	id, ok := t.st.walletByUser[userID]
	if !ok {
		return market.Wallet{}, fmt.Errorf("wallet for user %s: %w", userID, market.ErrNotFound)
	}
	return t.st.wallets[id], nil
}

func (t *memTx) UpdateWallet(_ context.Context, w market.Wallet) error {
	if _, ok := t.st.wallets[w.ID]; !ok {
		return fmt.Errorf("wallet %s: %w", w.ID, market.ErrNotFound)
	}
	t.st.wallets[w.ID] = w
	return nil
}

// Products --------------------------------------------------------------

func (t *memTx) InsertProduct(_ context.Context, p market.Product) error {
	if _, ok := t.st.products[p.ID]; ok {
		return fmt.Errorf("product %s: %w", p.ID, market.ErrAlreadyExists)
	}
	t.st.products[p.ID] = p
	return nil
}

func (t *memTx) ProductByID(_ context.Context, id string) (market.Product, error) {
	p, ok := t.st.products[id]
	if !ok {
		return market.Product{}, fmt.Errorf("product %s: %w", id, market.ErrNotFound)
	}
	return p, nil
}

func (t *memTx) Products(_ context.Context) ([]market.Product, error) {
	out := make([]market.Product, 0, len(t.st.products))
	for _, p := range t.st.products {
		out = append(out, p)
	}
	sortProducts(out)
	return out, nil
}

func (t *memTx) ProductsBySeller(_ context.Context, sellerID string) ([]market.Product, error) {
	var out []market.Product
	for _, p := range t.st.products {
		if p.SellerID == sellerID {
			out = append(out, p)
		}
	}
	sortProducts(out)
	return out, nil
}

func (t *memTx) UpdateProduct(_ context.Context, p market.Product) error {
	if _, ok := t.st.products[p.ID]; !ok {
		return fmt.Errorf("product %s: %w", p.ID, market.ErrNotFound)
	}
	t.st.products[p.ID] = p
	return nil
}

// Cart items ------------------------------------------------------------

func (t *memTx) InsertCartItem(_ context.Context, it market.CartItem) error {
	if _, ok := t.st.cartItems[it.ID]; ok {
		return fmt.Errorf("cart item %s: %w", it.ID, market.ErrAlreadyExists)
	}
	t.st.cartItems[it.ID] = it
	return nil
}

func (t *memTx) CartItemByID(_ context.Context, id string) (market.CartItem, error) {
	it, ok := t.st.cartItems[id]
	if !ok {
		return market.CartItem{}, fmt.Errorf("cart item %s: %w", id, market.ErrNotFound)
	}
	return it, nil
}

func (t *memTx) CartItemsByBuyer(_ context.Context, buyerID string) ([]market.CartItem, error) {
	var out []market.CartItem
	for _, it := range t.st.cartItems {
		if it.BuyerID == buyerID {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (t *memTx) DeleteCartItem(_ context.Context, id string) error {
	if _, ok := t.st.cartItems[id]; !ok {
		return fmt.Errorf("cart item %s: %w", id, market.ErrNotFound)
	}
	delete(t.st.cartItems, id)
	return nil
}

// Orders ----------------------------------------------------------------

func (t *memTx) InsertOrder(_ context.Context, o market.Order) error {
	if _, ok := t.st.orders[o.ID]; ok {
		return fmt.Errorf("order %s: %w", o.ID, market.ErrAlreadyExists)
	}
	t.st.orders[o.ID] = o
	return nil
}

func (t *memTx) OrderByID(_ context.Context, id string) (market.Order, error) {
	o, ok := t.st.orders[id]
	if !ok {
		return market.Order{}, fmt.Errorf("order %s: %w", id, market.ErrNotFound)
	}
	return o, nil
}

func (t *memTx) OrdersByBuyer(_ context.Context, buyerID string) ([]market.Order, error) {
	var out []market.Order
	for _, o := range t.st.orders {
		if o.BuyerID == buyerID {
			out = append(out, o)
		}
	}
	sortOrders(out)
	return out, nil
}

func (t *memTx) OrdersBySeller(_ context.Context, sellerID string) ([]market.Order, error) {
	var out []market.Order
	for _, o := range t.st.orders {
		if o.SellerID == sellerID {
			out = append(out, o)
		}
	}
	sortOrders(out)
	return out, nil
}

func (t *memTx) UpdateOrder(_ context.Context, o market.Order) error {
	if _, ok := t.st.orders[o.ID]; !ok {
		return fmt.Errorf("order %s: %w", o.ID, market.ErrNotFound)
	}
	t.st.orders[o.ID] = o
	return nil
}

func sortProducts(ps []market.Product) {
	sort.Slice(ps, func(i, j int) bool {
		if ps[i].Name != ps[j].Name {
			return ps[i].Name < ps[j].Name
		}
		return ps[i].ID < ps[j].ID
	})
}

func sortOrders(os []market.Order) {
	sort.Slice(os, func(i, j int) bool {
		if !os[i].CreatedAt.Equal(os[j].CreatedAt) {
			return os[i].CreatedAt.Before(os[j].CreatedAt)
		}
		return os[i].ID < os[j].ID
	})
}
