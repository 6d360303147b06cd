package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ariefcatur/go-marketplace-escrow.git/internal/market"
)

// Store implements the market store on Postgres. Each RunTx is one database
// transaction; single-row getters on mutable aggregates use FOR UPDATE so
// two transitions on the same order/wallet/product serialise on the row
// lock and the loser re-reads the committed status.
type Store struct{ Pool *pgxpool.Pool }

var _ market.Store = (*Store)(nil)

func NewStore(pool *pgxpool.Pool) *Store { return &Store{Pool: pool} }

func (s *Store) RunTx(ctx context.Context, fn func(tx market.Tx) error) error {
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(&pgTx{tx: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

type pgTx struct{ tx pgx.Tx }

var _ market.Tx = (*pgTx)(nil)

func notFound(err error, kind, id string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", kind, id, market.ErrNotFound)
	}
	return err
}

// Users -----------------------------------------------------------------

func (t *pgTx) InsertUser(ctx context.Context, u market.User) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO users(id, email, name, password_hash, role, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		u.ID, u.Email, u.Name, u.PasswordHash, u.Role, u.CreatedAt)
	return err
}

func (t *pgTx) scanUser(row pgx.Row) (market.User, error) {
	var u market.User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.Role, &u.CreatedAt)
	return u, err
}

func (t *pgTx) UserByID(ctx context.Context, id string) (market.User, error) {
	u, err := t.scanUser(t.tx.QueryRow(ctx, `
		SELECT id, email, name, password_hash, role, created_at
		FROM users WHERE id=$1`, id))
	if err != nil {
		return market.User{}, notFound(err, "user", id)
	}
	return u, nil
}

func (t *pgTx) UserByEmail(ctx context.Context, email string) (market.User, error) {
	u, err := t.scanUser(t.tx.QueryRow(ctx, `
		SELECT id, email, name, password_hash, role, created_at
		FROM users WHERE email=$1`, email))
	if err != nil {
		return market.User{}, notFound(err, "user", email)
	}
	return u, nil
}

func (t *pgTx) UserByName(ctx context.Context, name string) (market.User, error) {
	u, err := t.scanUser(t.tx.QueryRow(ctx, `
		SELECT id, email, name, password_hash, role, created_at
		FROM users WHERE name=$1`, name))
	if err != nil {
		return market.User{}, notFound(err, "user", name)
	}
	return u, nil
}

// Wallets ---------------------------------------------------------------

func (t *pgTx) InsertWallet(ctx context.Context, w market.Wallet) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO wallets(id, user_id, balance_cents, frozen_cents)
		VALUES ($1,$2,$3,$4)`,
		w.ID, w.UserID, w.BalanceCents, w.FrozenCents)
	return err
}

func (t *pgTx) WalletByUser(ctx context.Context, userID string) (market.Wallet, error) {
	var w market.Wallet
	err := t.tx.QueryRow(ctx, `
		SELECT id, user_id, balance_cents, frozen_cents
		FROM wallets WHERE user_id=$1 FOR UPDATE`, userID).
		Scan(&w.ID, &w.UserID, &w.BalanceCents, &w.FrozenCents)
	if err != nil {
		return market.Wallet{}, notFound(err, "wallet for user", userID)
	}
	return w, nil
}

func (t *pgTx) UpdateWallet(ctx context.Context, w market.Wallet) error {
	ct, err := t.tx.Exec(ctx, `
		UPDATE wallets SET balance_cents=$2, frozen_cents=$3 WHERE id=$1`,
		w.ID, w.BalanceCents, w.FrozenCents)
	if err != nil {
		return err
	}
	if ct.RowsAffected() != 1 {
		return fmt.Errorf("wallet %s: %w", w.ID, market.ErrNotFound)
	}
	return nil
}

// Products --------------------------------------------------------------

const productCols = `id, seller_id, name, description, price_cents, stock, reserved, created_at`

func scanProduct(row pgx.Row) (market.Product, error) {
	var p market.Product
	err := row.Scan(&p.ID, &p.SellerID, &p.Name, &p.Description, &p.PriceCents, &p.Stock, &p.Reserved, &p.CreatedAt)
	return p, err
}

func (t *pgTx) InsertProduct(ctx context.Context, p market.Product) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO products(id, seller_id, name, description, price_cents, stock, reserved, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		p.ID, p.SellerID, p.Name, p.Description, p.PriceCents, p.Stock, p.Reserved, p.CreatedAt)
	return err
}

func (t *pgTx) ProductByID(ctx context.Context, id string) (market.Product, error) {
	p, err := scanProduct(t.tx.QueryRow(ctx,
		`SELECT `+productCols+` FROM products WHERE id=$1 FOR UPDATE`, id))
	if err != nil {
		return market.Product{}, notFound(err, "product", id)
	}
	return p, nil
}

func (t *pgTx) Products(ctx context.Context) ([]market.Product, error) {
	rows, err := t.tx.Query(ctx, `SELECT `+productCols+` FROM products ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	return collectProducts(rows)
}

func (t *pgTx) ProductsBySeller(ctx context.Context, sellerID string) ([]market.Product, error) {
	rows, err := t.tx.Query(ctx,
		`SELECT `+productCols+` FROM products WHERE seller_id=$1 ORDER BY name, id`, sellerID)
	if err != nil {
		return nil, err
	}
	return collectProducts(rows)
}

func collectProducts(rows pgx.Rows) ([]market.Product, error) {
	defer rows.Close()
	var out []market.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (t *pgTx) UpdateProduct(ctx context.Context, p market.Product) error {
	ct, err := t.tx.Exec(ctx, `
		UPDATE products SET name=$2, description=$3, price_cents=$4, stock=$5, reserved=$6
		WHERE id=$1`,
		p.ID, p.Name, p.Description, p.PriceCents, p.Stock, p.Reserved)
	if err != nil {
		return err
	}
	if ct.RowsAffected() != 1 {
		return fmt.Errorf("product %s: %w", p.ID, market.ErrNotFound)
	}
	return nil
}

// Cart items ------------------------------------------------------------

func (t *pgTx) InsertCartItem(ctx context.Context, it market.CartItem) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO cart_items(id, buyer_id, product_id, quantity)
		VALUES ($1,$2,$3,$4)`,
		it.ID, it.BuyerID, it.ProductID, it.Quantity)
	return err
}

func (t *pgTx) CartItemByID(ctx context.Context, id string) (market.CartItem, error) {
	var it market.CartItem
	err := t.tx.QueryRow(ctx, `
		SELECT id, buyer_id, product_id, quantity
		FROM cart_items WHERE id=$1 FOR UPDATE`, id).
		Scan(&it.ID, &it.BuyerID, &it.ProductID, &it.Quantity)
	if err != nil {
		return market.CartItem{}, notFound(err, "cart item", id)
	}
	return it, nil
}

func (t *pgTx) CartItemsByBuyer(ctx context.Context, buyerID string) ([]market.CartItem, error) {
	rows, err := t.tx.Query(ctx, `
		SELECT id, buyer_id, product_id, quantity
		FROM cart_items WHERE buyer_id=$1 ORDER BY id`, buyerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []market.CartItem
	for rows.Next() {
		var it market.CartItem
		if err := rows.Scan(&it.ID, &it.BuyerID, &it.ProductID, &it.Quantity); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (t *pgTx) DeleteCartItem(ctx context.Context, id string) error {
	ct, err := t.tx.Exec(ctx, `DELETE FROM cart_items WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() != 1 {
		return fmt.Errorf("cart item %s: %w", id, market.ErrNotFound)
	}
	return nil
}

// Orders ----------------------------------------------------------------

const orderCols = `id, buyer_id, seller_id, product_id, quantity, total_cents, status, created_at, updated_at`

func scanOrder(row pgx.Row) (market.Order, error) {
	var o market.Order
	err := row.Scan(&o.ID, &o.BuyerID, &o.SellerID, &o.ProductID, &o.Quantity, &o.TotalCents, &o.Status, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}

func (t *pgTx) InsertOrder(ctx context.Context, o market.Order) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO orders(id, buyer_id, seller_id, product_id, quantity, total_cents, status, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		o.ID, o.BuyerID, o.SellerID, o.ProductID, o.Quantity, o.TotalCents, o.Status, o.CreatedAt, o.UpdatedAt)
	return err
}

func (t *pgTx) OrderByID(ctx context.Context, id string) (market.Order, error) {
	o, err := scanOrder(t.tx.QueryRow(ctx,
		`SELECT `+orderCols+` FROM orders WHERE id=$1 FOR UPDATE`, id))
	if err != nil {
		return market.Order{}, notFound(err, "order", id)
	}
	return o, nil
}

func (t *pgTx) OrdersByBuyer(ctx context.Context, buyerID string) ([]market.Order, error) {
	rows, err := t.tx.Query(ctx,
		`SELECT `+orderCols+` FROM orders WHERE buyer_id=$1 ORDER BY created_at, id`, buyerID)
	if err != nil {
		return nil, err
	}
	return collectOrders(rows)
}

func (t *pgTx) OrdersBySeller(ctx context.Context, sellerID string) ([]market.Order, error) {
	rows, err := t.tx.Query(ctx,
		`SELECT `+orderCols+` FROM orders WHERE seller_id=$1 ORDER BY created_at, id`, sellerID)
	if err != nil {
		return nil, err
	}
	return collectOrders(rows)
}

func collectOrders(rows pgx.Rows) ([]market.Order, error) {
	defer rows.Close()
	var out []market.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (t *pgTx) UpdateOrder(ctx context.Context, o market.Order) error {
	ct, err := t.tx.Exec(ctx, `
		UPDATE orders SET status=$2, updated_at=$3 WHERE id=$1`,
		o.ID, o.Status, o.UpdatedAt)
	if err != nil {
		return err
	}
	if ct.RowsAffected() != 1 {
		return fmt.Errorf("order %s: %w", o.ID, market.ErrNotFound)
	}
	return nil
}
