package types

// Clock carries the host-supplied time values for one invocation.
// It is passed explicitly to the execution context instead of being read
// from an ambient sysvar account, so the engine stays testable in isolation.
type Clock struct {
	UnixTimestamp int64 // Wall clock, Unix seconds
}

// Rent carries the host-supplied rent parameters for one invocation.
type Rent struct {
	LamportsPerByteYear uint64
	ExemptionThreshold  uint64 // years
	AccountOverhead     uint64 // bytes charged on top of account data
}

// DefaultRent returns the mainnet rent parameters.
func DefaultRent() Rent {
	return Rent{
		LamportsPerByteYear: 3480,
		ExemptionThreshold:  2,
		AccountOverhead:     128,
	}
}

// MinimumBalance returns the minimum lamports for an account of the given
// data size to be rent exempt.
func (r Rent) MinimumBalance(dataSize uint64) Lamports {
	return Lamports((dataSize + r.AccountOverhead) * r.LamportsPerByteYear * r.ExemptionThreshold)
}

// IsExempt returns true if the balance clears the rent-exemption threshold
// for the given data size.
func (r Rent) IsExempt(lamports Lamports, dataSize uint64) bool {
	return lamports >= r.MinimumBalance(dataSize)
}
