// Package payment provides the charge gateway used at checkout.  The
// offline gateway accepts every well-formed charge without contacting a
// processor, which is what a box-office deployment without card
// acquiring runs with.
package payment

import (
	"context"
	"fmt"
)

// Methods accepted at checkout.
const (
	MethodCash         = "cash"
	MethodCreditCard   = "credit_card"
	MethodBankTransfer = "bank_transfer"
	MethodEWallet      = "e_wallet"
)

// ValidMethod reports whether m is an accepted payment method.
func ValidMethod(m string) bool {
	switch m {
	case MethodCash, MethodCreditCard, MethodBankTransfer, MethodEWallet:
		return true
	}
	return false
}

// Offline approves charges locally.  It still validates the request so
// malformed orders never look paid.
type Offline struct{}

// NewOffline returns the offline gateway.
func NewOffline() *Offline { return &Offline{} }

// Charge validates the charge request and approves it.
func (g *Offline) Charge(ctx context.Context, orderID uint64, amountCents uint32, method string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if amountCents == 0 {
		return fmt.Errorf("charge order %d: zero amount", orderID)
	}
	if !ValidMethod(method) {
		return fmt.Errorf("charge order %d: unknown payment method %q", orderID, method)
	}
	return nil
}

// Refund gives a charge back.  Offline settlement has nothing to
// reverse, so a well-formed refund always succeeds.
func (g *Offline) Refund(ctx context.Context, orderID uint64, amountCents uint32, method string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !ValidMethod(method) {
		return fmt.Errorf("refund order %d: unknown payment method %q", orderID, method)
	}
	return nil
}
