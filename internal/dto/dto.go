package dto

import (
	"github.com/shopspring/decimal"

	"lingua-daily/internal/model"
)

type StartOrderRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Plan     string `json:"plan" validate:"omitempty,oneof=month year"`
	Language string `json:"language"`
	Level    string `json:"level"`
	Native   string `json:"native"`
	Chain    string `json:"chain" validate:"omitempty,oneof=solana aptos sui base arbitrum"`
}

type StartOrderResponse struct {
	OrderID   string          `json:"orderId"`
	Reference string          `json:"reference"`
	Amount    decimal.Decimal `json:"amount"`
}

type BuildTxRequest struct {
	Payer     string          `json:"payer" validate:"required"`
	Recipient string          `json:"recipient" validate:"required"`
	Amount    decimal.Decimal `json:"amount" validate:"required"`
	Reference string          `json:"reference"`
}

type BuildTxResponse struct {
	Transaction string `json:"transaction"`
}

type PaymentStatusResponse struct {
	Paid      bool   `json:"paid"`
	Signature string `json:"signature,omitempty"`
	Updated   bool   `json:"updated"`
}

type EVMPaymentStatusResponse struct {
	Paid            bool   `json:"paid"`
	TransactionHash string `json:"transactionHash,omitempty"`
	Updated         bool   `json:"updated"`
}

// VerifyRequest accepts either field name; the Aptos flow submits txHash,
// the Sui flow txDigest.
type VerifyRequest struct {
	TxHash    string `json:"txHash"`
	TxDigest  string `json:"txDigest"`
	Reference string `json:"reference" validate:"required"`
}

func (r *VerifyRequest) TransactionID() string {
	if r.TxHash != "" {
		return r.TxHash
	}
	return r.TxDigest
}

type VerifyResponse struct {
	OK   bool `json:"ok"`
	Paid bool `json:"paid"`
}

type SubscribeRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Language string `json:"language"`
}

type UnsubscribeRequest struct {
	Email string `json:"email" validate:"required"`
}

type OKResponse struct {
	OK bool `json:"ok"`
}

type SentenceResponse struct {
	model.Sentence
	Text string `json:"text"`
}

type SendDailyResponse struct {
	Sent int `json:"sent"`
}

type AdminLoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type AdminLoginResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
}

type AdminStats struct {
	Total   int    `json:"total"`
	Active  int    `json:"active"`
	Expired int    `json:"expired"`
	Revenue string `json:"revenue"`
}

type AdminDashboardResponse struct {
	Stats       AdminStats         `json:"stats"`
	Subscribers []model.Subscriber `json:"subscribers"`
	Orders      []model.Order      `json:"orders"`
}

type AdminCancelRequest struct {
	Email string `json:"email" validate:"required"`
}

type AdminExtendRequest struct {
	Email string `json:"email" validate:"required"`
	Days  int    `json:"days" validate:"required,gt=0"`
}

type AdminExtendResponse struct {
	Success   bool  `json:"success"`
	NewExpiry int64 `json:"newExpiry"`
}

type AdminCleanupResponse struct {
	Success bool `json:"success"`
	Deleted int  `json:"deleted"`
}

type EVMChainConfig struct {
	ChainID     int    `json:"chainId"`
	Name        string `json:"name"`
	RPCURL      string `json:"rpcUrl"`
	USDCAddress string `json:"usdcAddress"`
}

type CoinConfig struct {
	Merchant     string `json:"merchant"`
	USDCCoinType string `json:"usdcCoinType"`
}

type EthConfig struct {
	Merchant string                    `json:"merchant"`
	Chains   map[string]EVMChainConfig `json:"chains"`
}

// ConfigResponse is the public payment configuration the client uses to
// build payment URIs and transactions.
type ConfigResponse struct {
	Recipient     string     `json:"recipient"`
	USDCMint      string     `json:"usdcMint"`
	DefaultAmount int        `json:"defaultAmount"`
	Aptos         CoinConfig `json:"aptos"`
	Sui           CoinConfig `json:"sui"`
	Eth           EthConfig  `json:"eth"`
}
