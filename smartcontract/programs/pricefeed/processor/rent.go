package processor

// AccountStorageOverhead is the per-account metadata size charged for rent.
const AccountStorageOverhead = 128

type Rent struct {
	LamportsPerByteYear uint64
	ExemptionThreshold  uint64 // years
}

// DefaultRent matches mainnet rent parameters.
var DefaultRent = Rent{
	LamportsPerByteYear: 3480,
	ExemptionThreshold:  2,
}

// MinimumBalance returns the lamports needed for an account of dataLen bytes
// to be rent exempt.
func (r Rent) MinimumBalance(dataLen int) uint64 {
	return (AccountStorageOverhead + uint64(dataLen)) * r.LamportsPerByteYear * r.ExemptionThreshold
}
