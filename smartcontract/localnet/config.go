package localnet

import (
	"errors"
	"log/slog"

	"github.com/jonboulle/clockwork"
	"github.com/malbeclabs/pricefeed/smartcontract/programs/pricefeed/processor"
)

const (
	defaultLamportsPerSignature = 5000
	defaultMaxBlockhashAge      = 150
)

type Config struct {
	Logger *slog.Logger
	Clock  clockwork.Clock
	Rent   *processor.Rent

	// LamportsPerSignature is the fee charged to the fee payer per signature.
	LamportsPerSignature uint64

	// MaxBlockhashAge is the number of slots a blockhash stays valid for.
	MaxBlockhashAge uint64
}

func (c *Config) Validate() error {
	if c.Logger == nil {
		return errors.New("logger is required")
	}
	if c.Clock == nil {
		c.Clock = clockwork.NewRealClock()
	}
	if c.Rent == nil {
		rent := processor.DefaultRent
		c.Rent = &rent
	}
	if c.LamportsPerSignature == 0 {
		c.LamportsPerSignature = defaultLamportsPerSignature
	}
	if c.MaxBlockhashAge == 0 {
		c.MaxBlockhashAge = defaultMaxBlockhashAge
	}
	return nil
}
