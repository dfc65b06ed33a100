package chain

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"lingua-daily/internal/model"
)

// NewReference mints a fresh correlation token for the chain an order
// targets. EVM-family orders get a random 32-byte hex token matched against
// call input data; everything else gets the public half of a throwaway
// keypair so the token is a syntactically valid account address and can ride
// along in an instruction as a readonly key. The private half is discarded.
func NewReference(chainName string) (string, error) {
	if model.EVMChain(chainName) {
		var buf [32]byte
		if _, err := rand.Read(buf[:]); err != nil {
			return "", fmt.Errorf("read random reference: %w", err)
		}
		return "0x" + hex.EncodeToString(buf[:]), nil
	}
	return solana.NewWallet().PublicKey().String(), nil
}
