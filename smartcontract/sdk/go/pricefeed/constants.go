package pricefeed

import (
	"github.com/gagliardetto/solana-go"
	"github.com/malbeclabs/pricefeed/smartcontract/programs/pricefeed/processor"
)

// PriceFeedInstructionType represents the type of price feed instruction
type PriceFeedInstructionType = processor.InstructionType

const (
	CreatePriceAccountInstructionIndex = processor.CreatePriceAccountInstructionIndex
	SetPriceInstructionIndex           = processor.SetPriceInstructionIndex
	ModifyPriceInstructionIndex        = processor.ModifyPriceInstructionIndex
)

// PDA seeds for price feed program
const (
	PriceAccountSeed = processor.PriceAccountSeed
)

const (
	PriceAccountSize = processor.PriceAccountSize
)

// ProgramID is the price feed program deployed on devnet, testnet and mainnet-beta.
var ProgramID = solana.MustPublicKeyFromBase58("4zSrGy87rYtohmWK7PLBsojskZQa38GMwmoQkeK1nJSD")
