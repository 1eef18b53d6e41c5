package pricefeed

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// ModifyPriceInstructionConfig has the same effect on-chain as SetPrice.
type ModifyPriceInstructionConfig struct {
	Payer  solana.PublicKey
	FeedID uint64
	Price  float64

	// PriceAccountPK is derived from FeedID when zero.
	PriceAccountPK solana.PublicKey
}

func (c *ModifyPriceInstructionConfig) Validate() error {
	return validateUpdatePrice(c.Payer, c.Price)
}

func BuildModifyPriceInstruction(
	programID solana.PublicKey,
	config ModifyPriceInstructionConfig,
) (solana.Instruction, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate config: %w", err)
	}
	return buildUpdatePriceInstruction(programID, ModifyPriceInstructionIndex, config.Payer, config.FeedID, config.Price, config.PriceAccountPK)
}
