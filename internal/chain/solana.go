package chain

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"lingua-daily/internal/model"
)

// solanaRPC is the subset of the solana-go RPC client this package uses.
type solanaRPC interface {
	GetSignaturesForAddressWithOpts(ctx context.Context, account solana.PublicKey, opts *rpc.GetSignaturesForAddressOpts) ([]*rpc.TransactionSignature, error)
	GetLatestBlockhash(ctx context.Context, commitment rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error)
}

type SolanaVerifier struct {
	rpc solanaRPC
	log *zap.Logger
}

func NewSolanaVerifier(rpcURL string, log *zap.Logger) *SolanaVerifier {
	return &SolanaVerifier{rpc: rpc.New(rpcURL), log: log}
}

// Verify treats any confirmed signature touching the reference account as
// settlement. The reference account is minted per order and never reused, so
// the only transaction expected to touch it is the matching payment; amount
// and recipient are not re-checked on this path.
func (v *SolanaVerifier) Verify(ctx context.Context, order *model.Order, _ Proof) (*Receipt, error) {
	refPk, err := solana.PublicKeyFromBase58(order.Reference)
	if err != nil {
		return nil, fmt.Errorf("parse reference: %w", err)
	}

	limit := 1
	sigs, err := v.rpc.GetSignaturesForAddressWithOpts(ctx, refPk, &rpc.GetSignaturesForAddressOpts{
		Limit:      &limit,
		Commitment: rpc.CommitmentConfirmed,
	})
	if err != nil {
		v.log.Error("solana getSignaturesForAddress failed", zap.String("reference", order.Reference), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if len(sigs) == 0 {
		return &Receipt{}, nil
	}
	return &Receipt{Paid: true, Signature: sigs[0].Signature.String()}, nil
}

// TxBuilder constructs unsigned USDC transfers for the payer's wallet to
// sign. The server never holds a signing key.
type TxBuilder struct {
	rpc  solanaRPC
	mint solana.PublicKey
}

func NewTxBuilder(rpcURL, usdcMint string) (*TxBuilder, error) {
	mint, err := solana.PublicKeyFromBase58(usdcMint)
	if err != nil {
		return nil, fmt.Errorf("parse usdc mint: %w", err)
	}
	return &TxBuilder{rpc: rpc.New(rpcURL), mint: mint}, nil
}

// BuildUSDCTransfer returns a base64 serialized transaction holding an
// idempotent create-recipient-ATA instruction and a TransferChecked moving
// amount from the payer's token account, with the reference attached as a
// readonly non-signing key so the signature is discoverable by scanning the
// reference account.
func (b *TxBuilder) BuildUSDCTransfer(ctx context.Context, payer, recipient string, amount decimal.Decimal, reference string) (string, error) {
	payerPk, err := solana.PublicKeyFromBase58(payer)
	if err != nil {
		return "", fmt.Errorf("parse payer: %w", err)
	}
	recipientPk, err := solana.PublicKeyFromBase58(recipient)
	if err != nil {
		return "", fmt.Errorf("parse recipient: %w", err)
	}

	payerATA, _, err := solana.FindAssociatedTokenAddress(payerPk, b.mint)
	if err != nil {
		return "", fmt.Errorf("derive payer token account: %w", err)
	}
	recipientATA, _, err := solana.FindAssociatedTokenAddress(recipientPk, b.mint)
	if err != nil {
		return "", fmt.Errorf("derive recipient token account: %w", err)
	}

	recent, err := b.rpc.GetLatestBlockhash(ctx, rpc.CommitmentProcessed)
	if err != nil {
		return "", fmt.Errorf("%w: get latest blockhash: %v", ErrUnavailable, err)
	}

	createIx := solana.NewInstruction(
		solana.SPLAssociatedTokenAccountProgramID,
		solana.AccountMetaSlice{
			solana.Meta(payerPk).SIGNER().WRITE(),
			solana.Meta(recipientATA).WRITE(),
			solana.Meta(recipientPk),
			solana.Meta(b.mint),
			solana.Meta(solana.SystemProgramID),
			solana.Meta(solana.TokenProgramID),
			solana.Meta(solana.SystemProgramID),
		},
		[]byte{1}, // CreateIdempotent
	)

	units := model.ToBaseUnits(amount, model.USDCDecimals)
	data := make([]byte, 10)
	data[0] = 12 // TransferChecked
	binary.LittleEndian.PutUint64(data[1:9], units)
	data[9] = model.USDCDecimals

	transferKeys := solana.AccountMetaSlice{
		solana.Meta(payerATA).WRITE(),
		solana.Meta(b.mint),
		solana.Meta(recipientATA).WRITE(),
		solana.Meta(payerPk).SIGNER(),
	}
	if reference != "" {
		refPk, err := solana.PublicKeyFromBase58(reference)
		if err != nil {
			return "", fmt.Errorf("parse reference: %w", err)
		}
		transferKeys = append(transferKeys, solana.Meta(refPk))
	}
	transferIx := solana.NewInstruction(solana.TokenProgramID, transferKeys, data)

	tx, err := solana.NewTransaction(
		[]solana.Instruction{createIx, transferIx},
		recent.Value.Blockhash,
		solana.TransactionPayer(payerPk),
	)
	if err != nil {
		return "", fmt.Errorf("assemble transaction: %w", err)
	}

	b64, err := tx.ToBase64()
	if err != nil {
		return "", fmt.Errorf("serialize transaction: %w", err)
	}
	return b64, nil
}
