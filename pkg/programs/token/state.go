package token

import (
	"encoding/binary"
	"fmt"

	"github.com/fgrust/reward-pool/pkg/types"
)

// Account state sizes
const (
	// MintSize is the size of a serialized Mint account (82 bytes).
	MintSize = 82

	// TokenAccountSize is the size of a serialized TokenAccount (165 bytes).
	TokenAccountSize = 165
)

// Token account state enum values
const (
	AccountStateUninitialized uint8 = 0
	AccountStateInitialized   uint8 = 1
	AccountStateFrozen        uint8 = 2
)

// COption represents an optional pubkey: 4-byte tag + 32-byte value.
type COption struct {
	IsSome bool
	Value  types.Pubkey
}

// COptionU64 represents an optional u64: 4-byte tag + 8-byte value.
type COptionU64 struct {
	IsSome bool
	Value  uint64
}

// Mint represents a token mint account.
// Layout (82 bytes): mint_authority COption<Pubkey>(36) | supply u64(8) |
// decimals u8(1) | is_initialized bool(1) | freeze_authority COption<Pubkey>(36)
type Mint struct {
	MintAuthority   COption
	Supply          uint64
	Decimals        uint8
	IsInitialized   bool
	FreezeAuthority COption
}

// TokenAccount represents a token holding account.
// Layout (165 bytes): mint Pubkey(32) | owner Pubkey(32) | amount u64(8) |
// delegate COption<Pubkey>(36) | state u8(1) | is_native COption<u64>(12) |
// delegated_amount u64(8) | close_authority COption<Pubkey>(36)
type TokenAccount struct {
	Mint            types.Pubkey
	Owner           types.Pubkey
	Amount          uint64
	Delegate        COption
	State           uint8
	IsNative        COptionU64
	DelegatedAmount uint64
	CloseAuthority  COption
}

// DeserializeMint decodes a Mint from bytes.
func DeserializeMint(data []byte) (*Mint, error) {
	if len(data) < MintSize {
		return nil, fmt.Errorf("%w: mint data too short, expected %d bytes, got %d",
			ErrInvalidAccountData, MintSize, len(data))
	}

	mint := &Mint{}
	offset := 0
	mint.MintAuthority, offset = decodeCOption(data, offset)
	mint.Supply = binary.LittleEndian.Uint64(data[offset : offset+8])
	offset += 8
	mint.Decimals = data[offset]
	offset++
	mint.IsInitialized = data[offset] != 0
	offset++
	mint.FreezeAuthority, _ = decodeCOption(data, offset)
	return mint, nil
}

// Serialize encodes the Mint to bytes.
func (m *Mint) Serialize() []byte {
	data := make([]byte, MintSize)
	offset := 0
	offset = encodeCOption(data, offset, m.MintAuthority)
	binary.LittleEndian.PutUint64(data[offset:offset+8], m.Supply)
	offset += 8
	data[offset] = m.Decimals
	offset++
	if m.IsInitialized {
		data[offset] = 1
	}
	offset++
	encodeCOption(data, offset, m.FreezeAuthority)
	return data
}

// DeserializeTokenAccount decodes a TokenAccount from bytes.
func DeserializeTokenAccount(data []byte) (*TokenAccount, error) {
	if len(data) < TokenAccountSize {
		return nil, fmt.Errorf("%w: token account data too short, expected %d bytes, got %d",
			ErrInvalidAccountData, TokenAccountSize, len(data))
	}

	account := &TokenAccount{}
	offset := 0
	copy(account.Mint[:], data[offset:offset+32])
	offset += 32
	copy(account.Owner[:], data[offset:offset+32])
	offset += 32
	account.Amount = binary.LittleEndian.Uint64(data[offset : offset+8])
	offset += 8
	account.Delegate, offset = decodeCOption(data, offset)
	account.State = data[offset]
	offset++
	account.IsNative, offset = decodeCOptionU64(data, offset)
	account.DelegatedAmount = binary.LittleEndian.Uint64(data[offset : offset+8])
	offset += 8
	account.CloseAuthority, _ = decodeCOption(data, offset)
	return account, nil
}

// Serialize encodes the TokenAccount to bytes.
func (a *TokenAccount) Serialize() []byte {
	data := make([]byte, TokenAccountSize)
	offset := 0
	copy(data[offset:offset+32], a.Mint[:])
	offset += 32
	copy(data[offset:offset+32], a.Owner[:])
	offset += 32
	binary.LittleEndian.PutUint64(data[offset:offset+8], a.Amount)
	offset += 8
	offset = encodeCOption(data, offset, a.Delegate)
	data[offset] = a.State
	offset++
	offset = encodeCOptionU64(data, offset, a.IsNative)
	binary.LittleEndian.PutUint64(data[offset:offset+8], a.DelegatedAmount)
	offset += 8
	encodeCOption(data, offset, a.CloseAuthority)
	return data
}

// IsFrozen returns true if the account is frozen.
func (a *TokenAccount) IsFrozen() bool {
	return a.State == AccountStateFrozen
}

// NewMint creates an initialized Mint with the given authority.
func NewMint(decimals uint8, mintAuthority *types.Pubkey, freezeAuthority *types.Pubkey) *Mint {
	mint := &Mint{
		Decimals:      decimals,
		IsInitialized: true,
	}
	if mintAuthority != nil {
		mint.MintAuthority = COption{IsSome: true, Value: *mintAuthority}
	}
	if freezeAuthority != nil {
		mint.FreezeAuthority = COption{IsSome: true, Value: *freezeAuthority}
	}
	return mint
}

// NewTokenAccount creates an initialized, empty TokenAccount.
func NewTokenAccount(mint, owner types.Pubkey) *TokenAccount {
	return &TokenAccount{
		Mint:  mint,
		Owner: owner,
		State: AccountStateInitialized,
	}
}

func decodeCOption(data []byte, offset int) (COption, int) {
	opt := COption{}
	tag := binary.LittleEndian.Uint32(data[offset : offset+4])
	offset += 4
	if tag == 1 {
		opt.IsSome = true
		copy(opt.Value[:], data[offset:offset+32])
	}
	offset += 32
	return opt, offset
}

func encodeCOption(data []byte, offset int, opt COption) int {
	if opt.IsSome {
		binary.LittleEndian.PutUint32(data[offset:offset+4], 1)
		copy(data[offset+4:offset+36], opt.Value[:])
	}
	return offset + 36
}

func decodeCOptionU64(data []byte, offset int) (COptionU64, int) {
	opt := COptionU64{}
	tag := binary.LittleEndian.Uint32(data[offset : offset+4])
	offset += 4
	if tag == 1 {
		opt.IsSome = true
		opt.Value = binary.LittleEndian.Uint64(data[offset : offset+8])
	}
	offset += 8
	return opt, offset
}

func encodeCOptionU64(data []byte, offset int, opt COptionU64) int {
	if opt.IsSome {
		binary.LittleEndian.PutUint32(data[offset:offset+4], 1)
		binary.LittleEndian.PutUint64(data[offset+4:offset+12], opt.Value)
	}
	return offset + 12
}
