package market

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Service owns the order lifecycle and the wallet/inventory bookkeeping that
// must stay consistent with it. Every public operation is one atomic
// transaction: load, validate, mutate, commit — or nothing.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

type RegisterInput struct {
	Email        string
	Name         string
	PasswordHash string
	Role         Role
}

// Register creates a user and its wallet in one transaction. Email and name
// are both unique.
func (s *Service) Register(ctx context.Context, in RegisterInput) (User, error) {
	if in.Role != RoleBuyer && in.Role != RoleSeller {
		return User{}, fmt.Errorf("role %q: %w", in.Role, ErrInvalidAmount)
	}
	user := User{
		ID:           uuid.NewString(),
		Email:        in.Email,
		Name:         in.Name,
		PasswordHash: in.PasswordHash,
		Role:         in.Role,
		CreatedAt:    time.Now().UTC(),
	}
	err := s.store.RunTx(ctx, func(tx Tx) error {
		if _, err := tx.UserByEmail(ctx, in.Email); err == nil {
			return fmt.Errorf("email %s: %w", in.Email, ErrAlreadyExists)
		}
		if _, err := tx.UserByName(ctx, in.Name); err == nil {
			return fmt.Errorf("name %s: %w", in.Name, ErrAlreadyExists)
		}
		if err := tx.InsertUser(ctx, user); err != nil {
			return err
		}
		return tx.InsertWallet(ctx, Wallet{ID: uuid.NewString(), UserID: user.ID})
	})
	if err != nil {
		return User{}, err
	}
	return user, nil
}

func (s *Service) UserByEmail(ctx context.Context, email string) (User, error) {
	var u User
	err := s.store.RunTx(ctx, func(tx Tx) error {
		var err error
		u, err = tx.UserByEmail(ctx, email)
		return err
	})
	return u, err
}

// Me returns the actor's profile and wallet.
func (s *Service) Me(ctx context.Context, actor Actor) (User, Wallet, error) {
	var (
		u User
		w Wallet
	)
	err := s.store.RunTx(ctx, func(tx Tx) error {
		var err error
		if u, err = tx.UserByID(ctx, actor.UserID); err != nil {
			return err
		}
		w, err = tx.WalletByUser(ctx, actor.UserID)
		return err
	})
	return u, w, err
}

// AddBalance funds the buyer's wallet.
func (s *Service) AddBalance(ctx context.Context, actor Actor, amountCents int64) (Wallet, error) {
	var w Wallet
	err := s.store.RunTx(ctx, func(tx Tx) error {
		if actor.Role != RoleBuyer {
			return fmt.Errorf("add balance: %w", ErrForbidden)
		}
		var err error
		if w, err = tx.WalletByUser(ctx, actor.UserID); err != nil {
			return err
		}
		if err := AddBalance(&w, amountCents); err != nil {
			return err
		}
		return tx.UpdateWallet(ctx, w)
	})
	if err != nil {
		return Wallet{}, err
	}
	return w, nil
}

type ProductInput struct {
	Name        string
	Description string
	PriceCents  int64
	Stock       int
}

func (s *Service) AddProduct(ctx context.Context, actor Actor, in ProductInput) (Product, error) {
	if in.PriceCents <= 0 || in.Stock < 0 {
		return Product{}, fmt.Errorf("price %d stock %d: %w", in.PriceCents, in.Stock, ErrInvalidAmount)
	}
	p := Product{
		ID:          uuid.NewString(),
		SellerID:    actor.UserID,
		Name:        in.Name,
		Description: in.Description,
		PriceCents:  in.PriceCents,
		Stock:       in.Stock,
		CreatedAt:   time.Now().UTC(),
	}
	err := s.store.RunTx(ctx, func(tx Tx) error {
		if actor.Role != RoleSeller {
			return fmt.Errorf("add product: %w", ErrForbidden)
		}
		return tx.InsertProduct(ctx, p)
	})
	if err != nil {
		return Product{}, err
	}
	return p, nil
}

func (s *Service) Product(ctx context.Context, id string) (Product, error) {
	var p Product
	err := s.store.RunTx(ctx, func(tx Tx) error {
		var err error
		p, err = tx.ProductByID(ctx, id)
		return err
	})
	return p, err
}

func (s *Service) Products(ctx context.Context) ([]Product, error) {
	var ps []Product
	err := s.store.RunTx(ctx, func(tx Tx) error {
		var err error
		ps, err = tx.Products(ctx)
		return err
	})
	return ps, err
}

func (s *Service) SellerProducts(ctx context.Context, actor Actor) ([]Product, error) {
	var ps []Product
	err := s.store.RunTx(ctx, func(tx Tx) error {
		if actor.Role != RoleSeller {
			return fmt.Errorf("list products: %w", ErrForbidden)
		}
		var err error
		ps, err = tx.ProductsBySeller(ctx, actor.UserID)
		return err
	})
	return ps, err
}

// AddCartItem records a buyer's intent to order. Nothing is reserved yet;
// the stock check here is a courtesy, re-validated at order creation.
func (s *Service) AddCartItem(ctx context.Context, actor Actor, productID string, quantity int) (CartItem, error) {
	if quantity <= 0 {
		return CartItem{}, fmt.Errorf("quantity %d: %w", quantity, ErrInvalidAmount)
	}
	item := CartItem{
		ID:        uuid.NewString(),
		BuyerID:   actor.UserID,
		ProductID: productID,
		Quantity:  quantity,
	}
	err := s.store.RunTx(ctx, func(tx Tx) error {
		if actor.Role != RoleBuyer {
			return fmt.Errorf("add cart item: %w", ErrForbidden)
		}
		p, err := tx.ProductByID(ctx, productID)
		if err != nil {
			return err
		}
		if quantity > p.Stock {
			return fmt.Errorf("quantity %d with stock %d: %w", quantity, p.Stock, ErrInsufficientStock)
		}
		return tx.InsertCartItem(ctx, item)
	})
	if err != nil {
		return CartItem{}, err
	}
	return item, nil
}

func (s *Service) CartItems(ctx context.Context, actor Actor) ([]CartItem, error) {
	var items []CartItem
	err := s.store.RunTx(ctx, func(tx Tx) error {
		if actor.Role != RoleBuyer {
			return fmt.Errorf("list cart items: %w", ErrForbidden)
		}
		var err error
		items, err = tx.CartItemsByBuyer(ctx, actor.UserID)
		return err
	})
	return items, err
}

func (s *Service) DeleteCartItem(ctx context.Context, actor Actor, id string) error {
	return s.store.RunTx(ctx, func(tx Tx) error {
		if actor.Role != RoleBuyer {
			return fmt.Errorf("delete cart item: %w", ErrForbidden)
		}
		item, err := tx.CartItemByID(ctx, id)
		if err != nil {
			return err
		}
		if item.BuyerID != actor.UserID {
			return fmt.Errorf("cart item %s: %w", id, ErrNotOwner)
		}
		return tx.DeleteCartItem(ctx, id)
	})
}

// CreateOrder converts a cart item into an order, the single entry point
// that creates escrow: buyer funds frozen, product units reserved, order
// row inserted, cart item deleted — one all-or-nothing transaction.
func (s *Service) CreateOrder(ctx context.Context, actor Actor, cartItemID string) (Order, error) {
	var out Order
	err := s.store.RunTx(ctx, func(tx Tx) error {
		if actor.Role != RoleBuyer {
			return fmt.Errorf("create order: %w", ErrForbidden)
		}
		item, err := tx.CartItemByID(ctx, cartItemID)
		if err != nil {
			return err
		}
		if item.BuyerID != actor.UserID {
			return fmt.Errorf("cart item %s: %w", cartItemID, ErrNotOwner)
		}
		product, err := tx.ProductByID(ctx, item.ProductID)
		if err != nil {
			return err
		}
		if item.Quantity > product.Stock {
			return fmt.Errorf("quantity %d with stock %d: %w", item.Quantity, product.Stock, ErrInsufficientStock)
		}
		total := product.PriceCents * int64(item.Quantity)
		wallet, err := tx.WalletByUser(ctx, actor.UserID)
		if err != nil {
			return err
		}
		if total > wallet.BalanceCents {
			return fmt.Errorf("total %d with balance %d: %w", total, wallet.BalanceCents, ErrInsufficientFunds)
		}

		if err := Freeze(&wallet, total); err != nil {
			return err
		}
		if err := Reserve(&product, item.Quantity); err != nil {
			return err
		}
		now := time.Now().UTC()
		out = Order{
			ID:         uuid.NewString(),
			BuyerID:    actor.UserID,
			SellerID:   product.SellerID,
			ProductID:  product.ID,
			Quantity:   item.Quantity,
			TotalCents: total,
			Status:     StatusCreated,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := tx.UpdateWallet(ctx, wallet); err != nil {
			return err
		}
		if err := tx.UpdateProduct(ctx, product); err != nil {
			return err
		}
		if err := tx.InsertOrder(ctx, out); err != nil {
			return err
		}
		return tx.DeleteCartItem(ctx, item.ID)
	})
	if err != nil {
		return Order{}, err
	}
	return out, nil
}

func (s *Service) BuyerOrders(ctx context.Context, actor Actor) ([]Order, error) {
	var os []Order
	err := s.store.RunTx(ctx, func(tx Tx) error {
		if actor.Role != RoleBuyer {
			return fmt.Errorf("list orders: %w", ErrForbidden)
		}
		var err error
		os, err = tx.OrdersByBuyer(ctx, actor.UserID)
		return err
	})
	return os, err
}

func (s *Service) SellerOrders(ctx context.Context, actor Actor) ([]Order, error) {
	var os []Order
	err := s.store.RunTx(ctx, func(tx Tx) error {
		if actor.Role != RoleSeller {
			return fmt.Errorf("list orders: %w", ErrForbidden)
		}
		var err error
		os, err = tx.OrdersBySeller(ctx, actor.UserID)
		return err
	})
	return os, err
}

// Acknowledge: seller accepts a freshly created order.
func (s *Service) Acknowledge(ctx context.Context, actor Actor, orderID string) (Order, error) {
	return s.advance(ctx, actor, orderID, RoleSeller, StatusAcknowledged)
}

// Ship: seller hands the goods over for delivery.
func (s *Service) Ship(ctx context.Context, actor Actor, orderID string) (Order, error) {
	return s.advance(ctx, actor, orderID, RoleSeller, StatusShipped)
}

// MarkReceived: buyer acknowledges physical delivery.
func (s *Service) MarkReceived(ctx context.Context, actor Actor, orderID string) (Order, error) {
	return s.advance(ctx, actor, orderID, RoleBuyer, StatusReceived)
}

// Confirm is the escrow payout: reserved units are consumed for good and
// the frozen total moves to the seller's spendable balance, atomically with
// the status write.
func (s *Service) Confirm(ctx context.Context, actor Actor, orderID string) (Order, error) {
	var out Order
	err := s.store.RunTx(ctx, func(tx Tx) error {
		o, err := s.ownedOrder(ctx, tx, actor, orderID, RoleBuyer)
		if err != nil {
			return err
		}
		if !CanTransition(o.Status, StatusConfirmed) {
			return fmt.Errorf("order %s: %s -> %s: %w", o.ID, o.Status, StatusConfirmed, ErrInvalidTransition)
		}
		product, err := tx.ProductByID(ctx, o.ProductID)
		if err != nil {
			return err
		}
		buyerWallet, err := tx.WalletByUser(ctx, o.BuyerID)
		if err != nil {
			return err
		}
		sellerWallet, err := tx.WalletByUser(ctx, o.SellerID)
		if err != nil {
			return err
		}
		if err := Consume(&product, o.Quantity); err != nil {
			return err
		}
		if err := Settle(&buyerWallet, &sellerWallet, o.TotalCents); err != nil {
			return err
		}
		o.Status = StatusConfirmed
		o.UpdatedAt = time.Now().UTC()
		if err := tx.UpdateProduct(ctx, product); err != nil {
			return err
		}
		if err := tx.UpdateWallet(ctx, buyerWallet); err != nil {
			return err
		}
		if err := tx.UpdateWallet(ctx, sellerWallet); err != nil {
			return err
		}
		if err := tx.UpdateOrder(ctx, o); err != nil {
			return err
		}
		out = o
		return nil
	})
	if err != nil {
		return Order{}, err
	}
	return out, nil
}

// Cancel unwinds the escrow: units back to stock, funds back to the buyer's
// balance. Buyer-only by policy — the buyer owns the decision to walk away
// at any point before acceptance; sellers cannot cancel unilaterally.
func (s *Service) Cancel(ctx context.Context, actor Actor, orderID string) (Order, error) {
	var out Order
	err := s.store.RunTx(ctx, func(tx Tx) error {
		o, err := s.ownedOrder(ctx, tx, actor, orderID, RoleBuyer)
		if err != nil {
			return err
		}
		if !CanTransition(o.Status, StatusCancelled) {
			return fmt.Errorf("order %s: %s -> %s: %w", o.ID, o.Status, StatusCancelled, ErrInvalidTransition)
		}
		product, err := tx.ProductByID(ctx, o.ProductID)
		if err != nil {
			return err
		}
		wallet, err := tx.WalletByUser(ctx, o.BuyerID)
		if err != nil {
			return err
		}
		if err := Unreserve(&product, o.Quantity); err != nil {
			return err
		}
		if err := Unfreeze(&wallet, o.TotalCents); err != nil {
			return err
		}
		o.Status = StatusCancelled
		o.UpdatedAt = time.Now().UTC()
		if err := tx.UpdateProduct(ctx, product); err != nil {
			return err
		}
		if err := tx.UpdateWallet(ctx, wallet); err != nil {
			return err
		}
		if err := tx.UpdateOrder(ctx, o); err != nil {
			return err
		}
		out = o
		return nil
	})
	if err != nil {
		return Order{}, err
	}
	return out, nil
}

// advance performs a pure status transition (no ledger effects).
func (s *Service) advance(ctx context.Context, actor Actor, orderID string, side Role, to Status) (Order, error) {
	var out Order
	err := s.store.RunTx(ctx, func(tx Tx) error {
		o, err := s.ownedOrder(ctx, tx, actor, orderID, side)
		if err != nil {
			return err
		}
		if !CanTransition(o.Status, to) {
			return fmt.Errorf("order %s: %s -> %s: %w", o.ID, o.Status, to, ErrInvalidTransition)
		}
		o.Status = to
		o.UpdatedAt = time.Now().UTC()
		if err := tx.UpdateOrder(ctx, o); err != nil {
			return err
		}
		out = o
		return nil
	})
	if err != nil {
		return Order{}, err
	}
	return out, nil
}

// ownedOrder is the guard every transition runs first: role, then
// existence, then ownership of the relevant side of the order.
func (s *Service) ownedOrder(ctx context.Context, tx Tx, actor Actor, orderID string, side Role) (Order, error) {
	if actor.Role != side {
		return Order{}, fmt.Errorf("order %s: %w", orderID, ErrForbidden)
	}
	o, err := tx.OrderByID(ctx, orderID)
	if err != nil {
		return Order{}, err
	}
	owner := o.BuyerID
	if side == RoleSeller {
		owner = o.SellerID
	}
	if owner != actor.UserID {
		return Order{}, fmt.Errorf("order %s: %w", orderID, ErrNotOwner)
	}
	return o, nil
}
