package pricefeed

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/near/borsh-go"
)

type CreatePriceAccountInstructionConfig struct {
	Payer  solana.PublicKey
	FeedID uint64

	// PriceAccountPK is derived from FeedID when zero.
	PriceAccountPK solana.PublicKey
}

func (c *CreatePriceAccountInstructionConfig) Validate() error {
	if c.Payer.IsZero() {
		return fmt.Errorf("payer public key is required")
	}
	return nil
}

func BuildCreatePriceAccountInstruction(
	programID solana.PublicKey,
	config CreatePriceAccountInstructionConfig,
) (solana.Instruction, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate config: %w", err)
	}

	data, err := borsh.Serialize(struct {
		Discriminator uint8
		FeedID        uint64
	}{
		Discriminator: uint8(CreatePriceAccountInstructionIndex),
		FeedID:        config.FeedID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to serialize args: %w", err)
	}

	priceAccountPK, err := resolvePriceAccountPK(programID, config.FeedID, config.PriceAccountPK)
	if err != nil {
		return nil, err
	}

	accounts := []*solana.AccountMeta{
		{PublicKey: config.Payer, IsSigner: true, IsWritable: true},
		{PublicKey: priceAccountPK, IsSigner: false, IsWritable: true},
		{PublicKey: solana.SystemProgramID, IsSigner: false, IsWritable: false},
	}

	return &solana.GenericInstruction{
		ProgID:        programID,
		AccountValues: accounts,
		DataBytes:     data,
	}, nil
}

func resolvePriceAccountPK(programID solana.PublicKey, feedID uint64, pk solana.PublicKey) (solana.PublicKey, error) {
	if !pk.IsZero() {
		return pk, nil
	}
	pda, _, err := DerivePriceAccountPDA(programID, feedID)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to derive price account PDA: %w", err)
	}
	return pda, nil
}
