package processor

import (
	"bytes"
	"encoding/binary"
	"fmt"

	bin "github.com/gagliardetto/binary"
)

// PriceAccountSize is the fixed size of a price account's data.
const PriceAccountSize = 17

// PriceAccount is the on-chain record of a single price feed.
type PriceAccount struct {
	Price                float64 // 8 bytes LE, offset 0
	LastUpdatedTimestamp int64   // 8 bytes LE, offset 8, unix seconds
	Bump                 uint8   // 1 byte, offset 16
}

func (p *PriceAccount) MarshalBinary() ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, PriceAccountSize))
	enc := bin.NewBinEncoder(buf)
	if err := enc.WriteFloat64(p.Price, binary.LittleEndian); err != nil {
		return nil, err
	}
	if err := enc.WriteInt64(p.LastUpdatedTimestamp, binary.LittleEndian); err != nil {
		return nil, err
	}
	if err := enc.WriteUint8(p.Bump); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary decodes the first PriceAccountSize bytes of data. Shorter
// input fails with ErrInvalidAccountData.
func (p *PriceAccount) UnmarshalBinary(data []byte) error {
	if len(data) < PriceAccountSize {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidAccountData, len(data), PriceAccountSize)
	}
	dec := bin.NewBinDecoder(data)
	var err error
	if p.Price, err = dec.ReadFloat64(binary.LittleEndian); err != nil {
		return fmt.Errorf("%w: price: %w", ErrInvalidAccountData, err)
	}
	if p.LastUpdatedTimestamp, err = dec.ReadInt64(binary.LittleEndian); err != nil {
		return fmt.Errorf("%w: timestamp: %w", ErrInvalidAccountData, err)
	}
	if p.Bump, err = dec.ReadUint8(); err != nil {
		return fmt.Errorf("%w: bump: %w", ErrInvalidAccountData, err)
	}
	return nil
}

// UnpackPriceAccount decodes a price account from raw account data.
func UnpackPriceAccount(data []byte) (*PriceAccount, error) {
	var account PriceAccount
	if err := account.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	return &account, nil
}
