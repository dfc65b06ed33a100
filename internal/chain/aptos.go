package chain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"lingua-daily/internal/config"
	"lingua-daily/internal/model"
)

const (
	aptosCoinWithdrawEvent = "0x1::coin::CoinWithdraw"
	aptosCoinDepositEvent  = "0x1::coin::CoinDeposit"
)

// AptosVerifier replays the coin events of a user-submitted transaction and
// sums the amounts credited to the merchant account. The transaction must
// have executed successfully on chain.
type AptosVerifier struct {
	httpClient *http.Client
	rpcURL     string
	merchant   string
	coinType   string
	log        *zap.Logger
}

func NewAptosVerifier(cfg *config.Aptos, log *zap.Logger) *AptosVerifier {
	return &AptosVerifier{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		rpcURL:     cfg.RPCURL,
		merchant:   strings.TrimSpace(cfg.MerchantAddress),
		coinType:   strings.TrimSpace(cfg.USDCCoinType),
		log:        log,
	}
}

type aptosEvent struct {
	Type string `json:"type"`
	Data struct {
		Account        string `json:"account"`
		DepositAddress string `json:"deposit_address"`
		Amount         string `json:"amount"`
	} `json:"data"`
}

type aptosTransaction struct {
	Success bool         `json:"success"`
	Events  []aptosEvent `json:"events"`
}

func (v *AptosVerifier) Verify(ctx context.Context, order *model.Order, proof Proof) (*Receipt, error) {
	if v.merchant == "" || v.coinType == "" {
		return nil, ErrNotConfigured
	}

	tx, err := v.getTransaction(ctx, proof.TxHash)
	if err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, ErrTxNotFound
	}
	if !tx.Success {
		return nil, ErrTxFailed
	}

	var received uint64
	for _, ev := range tx.Events {
		if ev.Type != aptosCoinWithdrawEvent && ev.Type != aptosCoinDepositEvent {
			continue
		}
		recipient := ev.Data.Account
		if recipient == "" {
			recipient = ev.Data.DepositAddress
		}
		if !strings.EqualFold(recipient, v.merchant) {
			continue
		}
		units, err := strconv.ParseUint(ev.Data.Amount, 10, 64)
		if err != nil {
			v.log.Warn("skipping aptos event with bad amount", zap.String("amount", ev.Data.Amount))
			continue
		}
		received += units
	}

	required := model.ToBaseUnits(order.Amount, model.USDCDecimals)
	if received < required {
		return &Receipt{}, nil
	}
	return &Receipt{Paid: true, TxHash: proof.TxHash}, nil
}

func (v *AptosVerifier) getTransaction(ctx context.Context, txHash string) (*aptosTransaction, error) {
	payload := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      "1",
		"method":  "get_transaction",
		"params":  []string{txHash},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal rpc payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.rpcURL, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.httpClient.Do(req)
	if err != nil {
		v.log.Error("aptos rpc call failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		v.log.Error("aptos rpc error status", zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("%w: aptos rpc status %d", ErrUnavailable, resp.StatusCode)
	}

	var rpcResp struct {
		Result *aptosTransaction `json:"result"`
		Error  *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return nil, fmt.Errorf("%w: decode aptos response: %v", ErrUnavailable, err)
	}
	if rpcResp.Error != nil {
		v.log.Error("aptos rpc returned error", zap.String("message", rpcResp.Error.Message))
		return nil, fmt.Errorf("%w: aptos rpc: %s", ErrUnavailable, rpcResp.Error.Message)
	}
	return rpcResp.Result, nil
}
