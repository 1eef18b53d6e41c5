package processor

import (
	"encoding/binary"
	"errors"
	"math"

	"github.com/gagliardetto/solana-go"
)

// PriceAccountSeed namespaces price account addresses.
const PriceAccountSeed = "price_feed_account"

// ErrNoViableBump is returned when every bump in 255..0 yields an on-curve
// candidate for the given seeds.
var ErrNoViableBump = errors.New("no viable bump seed found")

// PriceAccountSeeds returns the seeds for a feed's price account, without the bump.
// Seeds: ["price_feed_account", le_u64(feed_id)]
func PriceAccountSeeds(feedID uint64) [][]byte {
	feedIDBytes := make([]byte, 8)
	binary.LittleEndian.PutUint64(feedIDBytes, feedID)
	return [][]byte{
		[]byte(PriceAccountSeed),
		feedIDBytes,
	}
}

// DerivePriceAccountAddress derives the price account PDA for a feed id.
// Bumps are tried from 255 down to 0 and the first off-curve candidate wins.
func DerivePriceAccountAddress(programID solana.PublicKey, feedID uint64) (solana.PublicKey, uint8, error) {
	seeds := PriceAccountSeeds(feedID)
	n := len(seeds)
	for bump := math.MaxUint8; bump >= 0; bump-- {
		candidate := append(seeds[:n:n], []byte{uint8(bump)})
		address, err := solana.CreateProgramAddress(candidate, programID)
		if err == nil {
			return address, uint8(bump), nil
		}
	}
	return solana.PublicKey{}, 0, ErrNoViableBump
}
