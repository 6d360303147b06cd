package market

import (
	"errors"
	"testing"
)

func TestReserveUnreserve(t *testing.T) {
	p := Product{Stock: 5}

	if err := Reserve(&p, 3); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if p.Stock != 2 || p.Reserved != 3 {
		t.Fatalf("after reserve: stock=%d reserved=%d", p.Stock, p.Reserved)
	}

	if err := Unreserve(&p, 3); err != nil {
		t.Fatalf("unreserve: %v", err)
	}
	if p.Stock != 5 || p.Reserved != 0 {
		t.Fatalf("after unreserve: stock=%d reserved=%d", p.Stock, p.Reserved)
	}
}

func TestReserveInsufficientStock(t *testing.T) {
	p := Product{Stock: 2}
	err := Reserve(&p, 3)
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
	if p.Stock != 2 || p.Reserved != 0 {
		t.Fatalf("product mutated on failed reserve: %+v", p)
	}
}

func TestReserveInvalidQty(t *testing.T) {
	p := Product{Stock: 2}
	if err := Reserve(&p, 0); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestUnreserveExceedsReserved(t *testing.T) {
	p := Product{Stock: 1, Reserved: 2}
	err := Unreserve(&p, 3)
	if !errors.Is(err, ErrInvalidReservation) {
		t.Fatalf("expected ErrInvalidReservation, got %v", err)
	}
}

// Consume retires units for good: reserved drops, stock stays put.
func TestConsume(t *testing.T) {
	p := Product{Stock: 2, Reserved: 3}
	if err := Consume(&p, 3); err != nil {
		t.Fatalf("consume: %v", err)
	}
	if p.Stock != 2 || p.Reserved != 0 {
		t.Fatalf("after consume: stock=%d reserved=%d", p.Stock, p.Reserved)
	}

	if err := Consume(&p, 1); !errors.Is(err, ErrInvalidReservation) {
		t.Fatalf("expected ErrInvalidReservation, got %v", err)
	}
}
