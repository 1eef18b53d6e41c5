package processor

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/gagliardetto/solana-go"
	"github.com/jonboulle/clockwork"
)

type Config struct {
	Logger    *slog.Logger
	ProgramID solana.PublicKey
	Clock     clockwork.Clock
	Rent      *Rent
}

func (c *Config) Validate() error {
	if c.Logger == nil {
		return errors.New("logger is required")
	}
	if c.ProgramID.IsZero() {
		return errors.New("program id is required")
	}
	if c.Clock == nil {
		c.Clock = clockwork.NewRealClock()
	}
	if c.Rent == nil {
		rent := DefaultRent
		c.Rent = &rent
	}
	return nil
}

// Processor executes price feed instructions against the accounts passed to
// each call. It holds no account state between calls.
type Processor struct {
	log *slog.Logger
	cfg Config
}

func New(cfg Config) (*Processor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate config: %w", err)
	}
	return &Processor{
		log: cfg.Logger,
		cfg: cfg,
	}, nil
}

func (p *Processor) ProgramID() solana.PublicKey {
	return p.cfg.ProgramID
}

// Process decodes and executes one instruction. Accounts are expected in the
// order [payer, price account, system program]; Set and Modify only read the
// first two. All checks run before the first write, so a returned error
// leaves every account untouched.
func (p *Processor) Process(accounts []*AccountInfo, data []byte) error {
	ix, err := DecodeInstruction(data)
	if err != nil {
		return err
	}
	p.log.Debug("processing instruction", "instruction", ix.Type(), "accounts", len(accounts))

	switch ix := ix.(type) {
	case *CreatePriceAccountInstruction:
		return p.createPriceAccount(accounts, ix.FeedID)
	case *SetPriceInstruction:
		return p.updatePrice(accounts, ix.FeedID, ix.Price)
	case *ModifyPriceInstruction:
		return p.updatePrice(accounts, ix.FeedID, ix.Price)
	default:
		return ErrUnknownInstruction
	}
}

func (p *Processor) createPriceAccount(accounts []*AccountInfo, feedID uint64) error {
	if len(accounts) < 3 {
		return ErrNotEnoughAccountKeys
	}
	payer, priceAccount, systemProgram := accounts[0], accounts[1], accounts[2]

	if !payer.IsSigner {
		return ErrMissingSignature
	}
	address, bump, err := p.verifyPriceAccountAddress(priceAccount, feedID)
	if err != nil {
		return err
	}
	if priceAccount.IsInitialized() {
		return ErrAccountAlreadyExists
	}
	if !systemProgram.Key.Equals(solana.SystemProgramID) {
		return ErrIncorrectSystemProgram
	}
	if !payer.IsWritable || !priceAccount.IsWritable {
		return ErrAccountNotWritable
	}

	var transfer uint64
	if required := p.cfg.Rent.MinimumBalance(PriceAccountSize); priceAccount.Lamports < required {
		transfer = required - priceAccount.Lamports
	}
	if payer.Lamports < transfer {
		return ErrInsufficientFunds
	}

	state := PriceAccount{
		Price:                0,
		LastUpdatedTimestamp: p.cfg.Clock.Now().Unix(),
		Bump:                 bump,
	}
	data, err := state.MarshalBinary()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidAccountData, err)
	}

	payer.Lamports -= transfer
	priceAccount.Lamports += transfer
	priceAccount.Owner = p.cfg.ProgramID
	priceAccount.Data = data

	p.log.Debug("created price account", "feed_id", feedID, "address", address, "bump", bump, "lamports", transfer)
	return nil
}

// updatePrice backs both SetPrice and ModifyPrice.
func (p *Processor) updatePrice(accounts []*AccountInfo, feedID uint64, price float64) error {
	if len(accounts) < 2 {
		return ErrNotEnoughAccountKeys
	}
	payer, priceAccount := accounts[0], accounts[1]

	if !payer.IsSigner {
		return ErrMissingSignature
	}
	address, _, err := p.verifyPriceAccountAddress(priceAccount, feedID)
	if err != nil {
		return err
	}
	if !priceAccount.IsInitialized() {
		return ErrAccountNotInitialized
	}
	if !priceAccount.Owner.Equals(p.cfg.ProgramID) {
		return ErrInvalidAccountOwner
	}
	if !priceAccount.IsWritable {
		return ErrAccountNotWritable
	}

	state, err := UnpackPriceAccount(priceAccount.Data)
	if err != nil {
		return err
	}
	state.Price = price
	state.LastUpdatedTimestamp = p.cfg.Clock.Now().Unix()
	data, err := state.MarshalBinary()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidAccountData, err)
	}
	copy(priceAccount.Data, data)

	p.log.Debug("updated price", "feed_id", feedID, "address", address, "price", price)
	return nil
}

func (p *Processor) verifyPriceAccountAddress(account *AccountInfo, feedID uint64) (solana.PublicKey, uint8, error) {
	address, bump, err := DerivePriceAccountAddress(p.cfg.ProgramID, feedID)
	if err != nil {
		return solana.PublicKey{}, 0, fmt.Errorf("%w: %w", ErrAddressMismatch, err)
	}
	if !account.Key.Equals(address) {
		return solana.PublicKey{}, 0, ErrAddressMismatch
	}
	return address, bump, nil
}
