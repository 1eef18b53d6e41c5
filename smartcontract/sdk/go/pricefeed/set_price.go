package pricefeed

import (
	"fmt"
	"math"

	"github.com/gagliardetto/solana-go"
	"github.com/near/borsh-go"
)

type SetPriceInstructionConfig struct {
	Payer  solana.PublicKey
	FeedID uint64
	Price  float64

	// PriceAccountPK is derived from FeedID when zero.
	PriceAccountPK solana.PublicKey
}

func (c *SetPriceInstructionConfig) Validate() error {
	return validateUpdatePrice(c.Payer, c.Price)
}

func BuildSetPriceInstruction(
	programID solana.PublicKey,
	config SetPriceInstructionConfig,
) (solana.Instruction, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate config: %w", err)
	}
	return buildUpdatePriceInstruction(programID, SetPriceInstructionIndex, config.Payer, config.FeedID, config.Price, config.PriceAccountPK)
}

func validateUpdatePrice(payer solana.PublicKey, price float64) error {
	if payer.IsZero() {
		return fmt.Errorf("payer public key is required")
	}
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return fmt.Errorf("price must be finite, got %v", price)
	}
	return nil
}

func buildUpdatePriceInstruction(
	programID solana.PublicKey,
	index PriceFeedInstructionType,
	payer solana.PublicKey,
	feedID uint64,
	price float64,
	priceAccountPK solana.PublicKey,
) (solana.Instruction, error) {
	data, err := borsh.Serialize(struct {
		Discriminator uint8
		FeedID        uint64
		Price         float64
	}{
		Discriminator: uint8(index),
		FeedID:        feedID,
		Price:         price,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to serialize args: %w", err)
	}

	priceAccountPK, err = resolvePriceAccountPK(programID, feedID, priceAccountPK)
	if err != nil {
		return nil, err
	}

	accounts := []*solana.AccountMeta{
		{PublicKey: payer, IsSigner: true, IsWritable: true},
		{PublicKey: priceAccountPK, IsSigner: false, IsWritable: true},
		{PublicKey: solana.SystemProgramID, IsSigner: false, IsWritable: false},
	}

	return &solana.GenericInstruction{
		ProgID:        programID,
		AccountValues: accounts,
		DataBytes:     data,
	}, nil
}
