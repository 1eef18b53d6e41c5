package pricefeed

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// DeserializePriceAccount deserializes account data into a PriceAccount.
// Data must be exactly PriceAccountSize bytes.
func DeserializePriceAccount(pubkey solana.PublicKey, data []byte) (*PriceAccount, error) {
	if len(data) != PriceAccountSize {
		return nil, fmt.Errorf("unexpected account size: got %d bytes, want %d", len(data), PriceAccountSize)
	}

	account := PriceAccount{PubKey: pubkey}
	if err := account.Deserialize(data); err != nil {
		return nil, fmt.Errorf("failed to deserialize price account: %w", err)
	}
	return &account, nil
}
