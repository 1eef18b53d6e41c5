package pricefeed

import (
	"io"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/malbeclabs/pricefeed/smartcontract/programs/pricefeed/processor"
)

type PriceAccount struct {
	PubKey               solana.PublicKey
	Price                float64 // 8 bytes LE
	LastUpdatedTimestamp int64   // 8 bytes LE, unix seconds
	Bump                 uint8   // 1 byte
}

func (p *PriceAccount) LastUpdated() time.Time {
	return time.Unix(p.LastUpdatedTimestamp, 0).UTC()
}

func (p *PriceAccount) Serialize(w io.Writer) error {
	data, err := p.record().MarshalBinary()
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func (p *PriceAccount) Deserialize(data []byte) error {
	var record processor.PriceAccount
	if err := record.UnmarshalBinary(data); err != nil {
		return err
	}
	p.Price = record.Price
	p.LastUpdatedTimestamp = record.LastUpdatedTimestamp
	p.Bump = record.Bump
	return nil
}

func (p *PriceAccount) record() *processor.PriceAccount {
	return &processor.PriceAccount{
		Price:                p.Price,
		LastUpdatedTimestamp: p.LastUpdatedTimestamp,
		Bump:                 p.Bump,
	}
}
