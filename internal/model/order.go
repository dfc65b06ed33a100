package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusPending = "pending"
	StatusPaid    = "paid"
)

const (
	ChainSolana   = "solana"
	ChainAptos    = "aptos"
	ChainSui      = "sui"
	ChainBase     = "base"
	ChainArbitrum = "arbitrum"
)

// Order is a payment intent. Reference is minted once at creation and never
// changes; status only ever moves pending -> paid.
type Order struct {
	OrderID         string          `json:"orderId"`
	Reference       string          `json:"reference"`
	Status          string          `json:"status"`
	CreatedAt       time.Time       `json:"createdAt"`
	PaidAt          *time.Time      `json:"paidAt,omitempty"`
	Email           string          `json:"email"`
	Plan            string          `json:"plan"`
	Amount          decimal.Decimal `json:"amount"` // whole-USDC units
	Language        string          `json:"language"`
	Level           string          `json:"level"`
	Native          string          `json:"native"`
	Chain           string          `json:"chain"`
	TransactionHash string          `json:"transactionHash,omitempty"`
}

// EVMChain reports whether a chain correlates payments through transaction
// input data rather than an on-chain reference account.
func EVMChain(chain string) bool {
	return chain == ChainBase || chain == ChainArbitrum
}
