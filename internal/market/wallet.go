package market

import "fmt"

// Wallet operations mutate a loaded record in place; the surrounding
// transaction persists the result. Every precondition is checked before any
// field changes, so a returned error means the wallet is untouched.

// Freeze moves amount from spendable balance into escrow.
func Freeze(w *Wallet, amountCents int64) error {
	if amountCents < 0 {
		return fmt.Errorf("freeze %d: %w", amountCents, ErrInvalidAmount)
	}
	if amountCents > w.BalanceCents {
		return fmt.Errorf("freeze %d exceeds balance %d: %w", amountCents, w.BalanceCents, ErrInsufficientFunds)
	}
	w.BalanceCents -= amountCents
	w.FrozenCents += amountCents
	return nil
}

// Unfreeze returns escrowed funds to the spendable balance.
func Unfreeze(w *Wallet, amountCents int64) error {
	if amountCents < 0 || amountCents > w.FrozenCents {
		return fmt.Errorf("unfreeze %d with frozen %d: %w", amountCents, w.FrozenCents, ErrInvalidFreezeState)
	}
	w.FrozenCents -= amountCents
	w.BalanceCents += amountCents
	return nil
}

// AddBalance is the only funding path into the system.
func AddBalance(w *Wallet, amountCents int64) error {
	if amountCents < 0 {
		return fmt.Errorf("add balance %d: %w", amountCents, ErrInvalidAmount)
	}
	w.BalanceCents += amountCents
	return nil
}

// Settle pays escrowed buyer funds out to the seller's spendable balance.
// The amount never passes through the buyer's own balance.
func Settle(buyer, seller *Wallet, amountCents int64) error {
	if amountCents < 0 || amountCents > buyer.FrozenCents {
		return fmt.Errorf("settle %d with frozen %d: %w", amountCents, buyer.FrozenCents, ErrInvalidFreezeState)
	}
	buyer.FrozenCents -= amountCents
	seller.BalanceCents += amountCents
	return nil
}
