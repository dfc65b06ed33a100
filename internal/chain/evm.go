package chain

import (
	"context"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"lingua-daily/internal/model"
)

// Transfer(address indexed from, address indexed to, uint256 value)
var transferEventTopic = crypto.Keccak256Hash([]byte("Transfer(address,address,uint256)"))

// defaultLookback bounds how many recent blocks a single verification pass
// scans for Transfer logs.
const defaultLookback = 1000

// evmRPC is the subset of ethclient the log-scan verifier uses.
type evmRPC interface {
	BlockNumber(ctx context.Context) (uint64, error)
	FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]types.Log, error)
	TransactionByHash(ctx context.Context, hash common.Hash) (*types.Transaction, bool, error)
}

// EVMVerifier correlates ERC20 Transfer logs to orders. A plain token
// transfer call has no memo field, so the hex reference is matched as a
// substring of the full transaction input data instead.
type EVMVerifier struct {
	client   evmRPC
	merchant common.Address
	token    common.Address
	lookback uint64
	log      *zap.Logger
}

func NewEVMVerifier(rpcURL, merchant, token string, log *zap.Logger) (*EVMVerifier, error) {
	client, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dial evm rpc: %w", err)
	}
	return &EVMVerifier{
		client:   client,
		merchant: common.HexToAddress(merchant),
		token:    common.HexToAddress(token),
		lookback: defaultLookback,
		log:      log,
	}, nil
}

func (v *EVMVerifier) Verify(ctx context.Context, order *model.Order, _ Proof) (*Receipt, error) {
	ref := strings.ToLower(strings.TrimPrefix(order.Reference, "0x"))
	if ref == "" {
		return nil, fmt.Errorf("empty reference")
	}

	latest, err := v.client.BlockNumber(ctx)
	if err != nil {
		v.log.Error("evm blockNumber failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	from := uint64(0)
	if latest > v.lookback {
		from = latest - v.lookback
	}

	logs, err := v.client.FilterLogs(ctx, ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(from),
		Addresses: []common.Address{v.token},
		Topics: [][]common.Hash{
			{transferEventTopic},
			nil,
			{common.BytesToHash(common.LeftPadBytes(v.merchant.Bytes(), 32))},
		},
	})
	if err != nil {
		v.log.Error("evm getLogs failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	for _, lg := range logs {
		tx, _, err := v.client.TransactionByHash(ctx, lg.TxHash)
		if err != nil {
			v.log.Warn("evm transactionByHash failed", zap.String("tx", lg.TxHash.Hex()), zap.Error(err))
			continue
		}
		if tx == nil {
			continue
		}
		input := strings.ToLower(hex.EncodeToString(tx.Data()))
		if !strings.Contains(input, ref) {
			continue
		}
		value := new(big.Int).SetBytes(lg.Data)
		return &Receipt{
			Paid:   true,
			TxHash: lg.TxHash.Hex(),
			Amount: decimal.NewFromBigInt(value, -model.USDCDecimals),
		}, nil
	}
	return &Receipt{}, nil
}
