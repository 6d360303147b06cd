package market

import "time"

type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
)

// Actor is the authenticated caller of a market operation, supplied by the
// auth layer. The core trusts the (UserID, Role) pair unconditionally.
type Actor struct {
	UserID string
	Role   Role
}

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// Wallet holds a user's funds in cents. BalanceCents is spendable,
// FrozenCents is escrowed against open orders. Both stay >= 0.
type Wallet struct {
	ID           string `json:"id"`
	UserID       string `json:"user_id"`
	BalanceCents int64  `json:"balance_cents"`
	FrozenCents  int64  `json:"frozen_cents"`
}

// Product stock accounting: Stock is sellable, Reserved is escrowed against
// open orders. Stock+Reserved only shrinks when reserved units are consumed
// at order confirmation.
type Product struct {
	ID          string    `json:"id"`
	SellerID    string    `json:"seller_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	PriceCents  int64     `json:"price_cents"`
	Stock       int       `json:"stock"`
	Reserved    int       `json:"reserved"`
	CreatedAt   time.Time `json:"created_at"`
}

type CartItem struct {
	ID        string `json:"id"`
	BuyerID   string `json:"buyer_id"`
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// Order is created only from a cart item. TotalCents is computed once at
// creation (price * quantity) and never changes after, regardless of later
// price edits. Only Status mutates post-creation.
type Order struct {
	ID         string    `json:"id"`
	BuyerID    string    `json:"buyer_id"`
	SellerID   string    `json:"seller_id"`
	ProductID  string    `json:"product_id"`
	Quantity   int       `json:"quantity"`
	TotalCents int64     `json:"total_cents"`
	Status     Status    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
