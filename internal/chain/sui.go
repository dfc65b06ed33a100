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

// SuiVerifier checks a user-submitted transaction digest by summing the
// positive balance changes credited to the merchant for the configured coin
// type. Settlement requires the credited total to cover the order amount.
type SuiVerifier struct {
	httpClient *http.Client
	rpcURL     string
	merchant   string
	coinType   string
	log        *zap.Logger
}

func NewSuiVerifier(cfg *config.Sui, log *zap.Logger) *SuiVerifier {
	return &SuiVerifier{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		rpcURL:     cfg.RPCURL,
		merchant:   strings.TrimSpace(cfg.MerchantAddress),
		coinType:   strings.TrimSpace(cfg.USDCCoinType),
		log:        log,
	}
}

type suiBalanceChange struct {
	Owner struct {
		AddressOwner string `json:"AddressOwner"`
	} `json:"owner"`
	CoinType string `json:"coinType"`
	Amount   string `json:"amount"`
}

type suiTransactionBlock struct {
	Digest         string             `json:"digest"`
	BalanceChanges []suiBalanceChange `json:"balanceChanges"`
}

func (v *SuiVerifier) Verify(ctx context.Context, order *model.Order, proof Proof) (*Receipt, error) {
	if v.merchant == "" || v.coinType == "" {
		return nil, ErrNotConfigured
	}

	block, err := v.getTransactionBlock(ctx, proof.TxHash)
	if err != nil {
		return nil, err
	}
	if block == nil {
		return nil, ErrTxNotFound
	}

	var credited uint64
	for _, change := range block.BalanceChanges {
		if !strings.EqualFold(change.Owner.AddressOwner, v.merchant) {
			continue
		}
		if !strings.EqualFold(change.CoinType, v.coinType) {
			continue
		}
		delta, err := strconv.ParseInt(change.Amount, 10, 64)
		if err != nil {
			v.log.Warn("skipping sui balance change with bad amount", zap.String("amount", change.Amount))
			continue
		}
		if delta > 0 {
			credited += uint64(delta)
		}
	}

	required := model.ToBaseUnits(order.Amount, model.USDCDecimals)
	if credited < required {
		return &Receipt{}, nil
	}
	return &Receipt{Paid: true, TxHash: proof.TxHash}, nil
}

func (v *SuiVerifier) getTransactionBlock(ctx context.Context, digest string) (*suiTransactionBlock, error) {
	payload := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "sui_getTransactionBlock",
		"params": []interface{}{
			digest,
			map[string]bool{"showBalanceChanges": true},
		},
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
		v.log.Error("sui rpc call failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		v.log.Error("sui rpc error status", zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("%w: sui rpc status %d", ErrUnavailable, resp.StatusCode)
	}

	var rpcResp struct {
		Result *suiTransactionBlock `json:"result"`
		Error  *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return nil, fmt.Errorf("%w: decode sui response: %v", ErrUnavailable, err)
	}
	if rpcResp.Error != nil {
		// the node answers with an error object for unknown digests
		return nil, fmt.Errorf("%w: %s", ErrTxNotFound, rpcResp.Error.Message)
	}
	return rpcResp.Result, nil
}
