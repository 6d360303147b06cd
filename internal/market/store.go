package market

import "context"

// Store is the persistence contract the market core needs: a durable
// key-indexed store whose operations compose into one atomic multi-record
// transaction. RunTx runs fn inside such a transaction; if fn returns an
// error every write made through the Tx is discarded.
//
// Transactions touching the same Order, Wallet or Product must be mutually
// exclusive for their duration (row locks or a coarse mutex both qualify);
// disjoint aggregates may proceed in parallel.
type Store interface {
	RunTx(ctx context.Context, fn func(tx Tx) error) error
}

// Tx is the record-level interface available inside a transaction. ByID
// getters on mutable aggregates (wallet, product, order, cart item) must
// lock the row for the remainder of the transaction.
type Tx interface {
	InsertUser(ctx context.Context, u User) error
	UserByID(ctx context.Context, id string) (User, error)
	UserByEmail(ctx context.Context, email string) (User, error)
	UserByName(ctx context.Context, name string) (User, error)

	InsertWallet(ctx context.Context, w Wallet) error
	WalletByUser(ctx context.Context, userID string) (Wallet, error)
	UpdateWallet(ctx context.Context, w Wallet) error

	InsertProduct(ctx context.Context, p Product) error
	ProductByID(ctx context.Context, id string) (Product, error)
	Products(ctx context.Context) ([]Product, error)
	ProductsBySeller(ctx context.Context, sellerID string) ([]Product, error)
	UpdateProduct(ctx context.Context, p Product) error

	InsertCartItem(ctx context.Context, it CartItem) error
	CartItemByID(ctx context.Context, id string) (CartItem, error)
	CartItemsByBuyer(ctx context.Context, buyerID string) ([]CartItem, error)
	DeleteCartItem(ctx context.Context, id string) error

	InsertOrder(ctx context.Context, o Order) error
	OrderByID(ctx context.Context, id string) (Order, error)
	OrdersByBuyer(ctx context.Context, buyerID string) ([]Order, error)
	OrdersBySeller(ctx context.Context, sellerID string) ([]Order, error)
	UpdateOrder(ctx context.Context, o Order) error
}
