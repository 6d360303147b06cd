package market

import "fmt"

// Reserve moves qty units from sellable stock into escrow.
func Reserve(p *Product, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("reserve %d: %w", qty, ErrInvalidAmount)
	}
	if qty > p.Stock {
		return fmt.Errorf("reserve %d with stock %d: %w", qty, p.Stock, ErrInsufficientStock)
	}
	p.Stock -= qty
	p.Reserved += qty
	return nil
}

// Unreserve returns escrowed units to sellable stock (order cancelled).
func Unreserve(p *Product, qty int) error {
	if qty < 0 || qty > p.Reserved {
		return fmt.Errorf("unreserve %d with reserved %d: %w", qty, p.Reserved, ErrInvalidReservation)
	}
	p.Reserved -= qty
	p.Stock += qty
	return nil
}

// Consume retires escrowed units permanently (order confirmed, goods
// accepted). Stock does not increase.
func Consume(p *Product, qty int) error {
	if qty < 0 || qty > p.Reserved {
		return fmt.Errorf("consume %d with reserved %d: %w", qty, p.Reserved, ErrInvalidReservation)
	}
	p.Reserved -= qty
	return nil
}
