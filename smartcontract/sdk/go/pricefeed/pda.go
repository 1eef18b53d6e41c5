package pricefeed

import (
	"github.com/gagliardetto/solana-go"
	"github.com/malbeclabs/pricefeed/smartcontract/programs/pricefeed/processor"
)

// DerivePriceAccountPDA derives the PDA for a feed's price account.
// Seeds: ["price_feed_account", le_u64(feed_id)]
func DerivePriceAccountPDA(programID solana.PublicKey, feedID uint64) (solana.PublicKey, uint8, error) {
	return processor.DerivePriceAccountAddress(programID, feedID)
}
