// Package chain holds the settlement verifiers for the supported payment
// rails and the helpers shared between them: correlation reference minting
// and the unsigned Solana transfer builder.
package chain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"lingua-daily/internal/model"
)

var (
	// ErrUnavailable means the chain RPC could not be reached or answered
	// garbage. It is never the same as "not paid"; callers retry later.
	ErrUnavailable = errors.New("verification unavailable")
	// ErrNotConfigured means the merchant address or token identifier for
	// the chain is missing from the environment.
	ErrNotConfigured = errors.New("chain not configured")
	ErrTxNotFound    = errors.New("transaction not found")
	ErrTxFailed      = errors.New("transaction not successful")
)

// Proof carries user-submitted settlement evidence for chains that cannot be
// polled by reference alone.
type Proof struct {
	TxHash string
}

// Receipt is what a verifier learned about settlement of one order.
type Receipt struct {
	Paid      bool
	Signature string
	TxHash    string
	Amount    decimal.Decimal
}

// Verifier answers whether the payment an order requires has settled on its
// chain. RPC trouble surfaces as ErrUnavailable, never as Paid=false.
type Verifier interface {
	Verify(ctx context.Context, order *model.Order, proof Proof) (*Receipt, error)
}
