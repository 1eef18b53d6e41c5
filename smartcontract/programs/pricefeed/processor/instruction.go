package processor

import (
	"bytes"
	"encoding/binary"
	"fmt"

	bin "github.com/gagliardetto/binary"
)

// InstructionType is the leading discriminant byte of instruction data.
type InstructionType uint8

const (
	CreatePriceAccountInstructionIndex InstructionType = 0
	SetPriceInstructionIndex           InstructionType = 1
	ModifyPriceInstructionIndex        InstructionType = 2
)

func (t InstructionType) String() string {
	switch t {
	case CreatePriceAccountInstructionIndex:
		return "CreatePriceAccount"
	case SetPriceInstructionIndex:
		return "SetPrice"
	case ModifyPriceInstructionIndex:
		return "ModifyPrice"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(t))
	}
}

// Instruction is one decoded price feed instruction.
type Instruction interface {
	Type() InstructionType
	MarshalBinary() ([]byte, error)
}

// CreatePriceAccountInstruction: [0x00] ++ le_u64(feed_id)
type CreatePriceAccountInstruction struct {
	FeedID uint64
}

func (i *CreatePriceAccountInstruction) Type() InstructionType {
	return CreatePriceAccountInstructionIndex
}

func (i *CreatePriceAccountInstruction) MarshalBinary() ([]byte, error) {
	return marshalInstruction(i.Type(), i.FeedID, nil)
}

// SetPriceInstruction: [0x01] ++ le_u64(feed_id) ++ le_f64(price)
type SetPriceInstruction struct {
	FeedID uint64
	Price  float64
}

func (i *SetPriceInstruction) Type() InstructionType {
	return SetPriceInstructionIndex
}

func (i *SetPriceInstruction) MarshalBinary() ([]byte, error) {
	return marshalInstruction(i.Type(), i.FeedID, &i.Price)
}

// ModifyPriceInstruction: [0x02] ++ le_u64(feed_id) ++ le_f64(price)
type ModifyPriceInstruction struct {
	FeedID uint64
	Price  float64
}

func (i *ModifyPriceInstruction) Type() InstructionType {
	return ModifyPriceInstructionIndex
}

func (i *ModifyPriceInstruction) MarshalBinary() ([]byte, error) {
	return marshalInstruction(i.Type(), i.FeedID, &i.Price)
}

func marshalInstruction(t InstructionType, feedID uint64, price *float64) ([]byte, error) {
	buf := new(bytes.Buffer)
	enc := bin.NewBinEncoder(buf)
	if err := enc.WriteUint8(uint8(t)); err != nil {
		return nil, err
	}
	if err := enc.WriteUint64(feedID, binary.LittleEndian); err != nil {
		return nil, err
	}
	if price != nil {
		if err := enc.WriteFloat64(*price, binary.LittleEndian); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// DecodeInstruction decodes instruction data by its discriminant. Unknown
// discriminants fail with ErrUnknownInstruction regardless of length; empty
// or short payloads fail with ErrMalformedInstruction. Bytes past the
// required payload are ignored.
func DecodeInstruction(data []byte) (Instruction, error) {
	dec := bin.NewBinDecoder(data)
	tag, err := dec.ReadUint8()
	if err != nil {
		return nil, fmt.Errorf("%w: missing discriminant", ErrMalformedInstruction)
	}

	switch t := InstructionType(tag); t {
	case CreatePriceAccountInstructionIndex:
		feedID, err := dec.ReadUint64(binary.LittleEndian)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrMalformedInstruction, t, err)
		}
		return &CreatePriceAccountInstruction{FeedID: feedID}, nil
	case SetPriceInstructionIndex, ModifyPriceInstructionIndex:
		feedID, err := dec.ReadUint64(binary.LittleEndian)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrMalformedInstruction, t, err)
		}
		price, err := dec.ReadFloat64(binary.LittleEndian)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrMalformedInstruction, t, err)
		}
		if t == SetPriceInstructionIndex {
			return &SetPriceInstruction{FeedID: feedID, Price: price}, nil
		}
		return &ModifyPriceInstruction{FeedID: feedID, Price: price}, nil
	default:
		return nil, fmt.Errorf("%w: discriminant %d", ErrUnknownInstruction, tag)
	}
}
