package token

import (
	"encoding/binary"
	"fmt"

	"github.com/fgrust/reward-pool/pkg/types"
)

// Token Program instruction discriminators (first byte of instruction data)
const (
	InstructionInitializeMint    uint8 = 0
	InstructionInitializeAccount uint8 = 1
	InstructionTransfer          uint8 = 3
	InstructionMintTo            uint8 = 7
)

// InitializeMintInstruction initializes a new mint.
// Accounts:
//
//	[0] mint (writable)
type InitializeMintInstruction struct {
	Decimals        uint8
	MintAuthority   types.Pubkey
	FreezeAuthority *types.Pubkey // nil when no freeze authority
}

// Decode decodes an InitializeMint payload from bytes.
func (inst *InitializeMintInstruction) Decode(data []byte) error {
	if len(data) < 1+32+1 {
		return fmt.Errorf("%w: InitializeMint requires at least 34 bytes, got %d",
			ErrInvalidInstructionData, len(data))
	}
	inst.Decimals = data[0]
	copy(inst.MintAuthority[:], data[1:33])
	if data[33] == 1 {
		if len(data) < 34+32 {
			return fmt.Errorf("%w: InitializeMint freeze authority truncated", ErrInvalidInstructionData)
		}
		var freeze types.Pubkey
		copy(freeze[:], data[34:66])
		inst.FreezeAuthority = &freeze
	}
	return nil
}

// Encode encodes an InitializeMint instruction to bytes.
func (inst *InitializeMintInstruction) Encode() []byte {
	data := make([]byte, 1+1+32+1, 1+1+32+1+32)
	data[0] = InstructionInitializeMint
	data[1] = inst.Decimals
	copy(data[2:34], inst.MintAuthority[:])
	if inst.FreezeAuthority != nil {
		data[34] = 1
		data = append(data, inst.FreezeAuthority[:]...)
	}
	return data
}

// InitializeAccountInstruction initializes a new token account.
// Accounts:
//
//	[0] account (writable)
//	[1] mint
//	[2] owner
type InitializeAccountInstruction struct{}

// Decode decodes an InitializeAccount payload (no data).
func (inst *InitializeAccountInstruction) Decode(data []byte) error {
	return nil
}

// Encode encodes an InitializeAccount instruction to bytes.
func (inst *InitializeAccountInstruction) Encode() []byte {
	return []byte{InstructionInitializeAccount}
}

// TransferInstruction moves tokens between accounts.
// Accounts:
//
//	[0] source (writable)
//	[1] destination (writable)
//	[2] authority (signer)
type TransferInstruction struct {
	Amount uint64
}

// Decode decodes a Transfer payload from bytes.
func (inst *TransferInstruction) Decode(data []byte) error {
	if len(data) < 8 {
		return fmt.Errorf("%w: Transfer requires 8 bytes, got %d", ErrInvalidInstructionData, len(data))
	}
	inst.Amount = binary.LittleEndian.Uint64(data[0:8])
	return nil
}

// Encode encodes a Transfer instruction to bytes.
func (inst *TransferInstruction) Encode() []byte {
	data := make([]byte, 1+8)
	data[0] = InstructionTransfer
	binary.LittleEndian.PutUint64(data[1:9], inst.Amount)
	return data
}

// MintToInstruction mints new tokens to an account.
// Accounts:
//
//	[0] mint (writable)
//	[1] destination (writable)
//	[2] mint authority (signer)
type MintToInstruction struct {
	Amount uint64
}

// Decode decodes a MintTo payload from bytes.
func (inst *MintToInstruction) Decode(data []byte) error {
	if len(data) < 8 {
		return fmt.Errorf("%w: MintTo requires 8 bytes, got %d", ErrInvalidInstructionData, len(data))
	}
	inst.Amount = binary.LittleEndian.Uint64(data[0:8])
	return nil
}

// Encode encodes a MintTo instruction to bytes.
func (inst *MintToInstruction) Encode() []byte {
	data := make([]byte, 1+8)
	data[0] = InstructionMintTo
	binary.LittleEndian.PutUint64(data[1:9], inst.Amount)
	return data
}

// NewInitializeMintInstruction builds an InitializeMint instruction.
func NewInitializeMintInstruction(tokenProgram, mint, mintAuthority types.Pubkey, decimals uint8) types.Instruction {
	inst := InitializeMintInstruction{Decimals: decimals, MintAuthority: mintAuthority}
	return types.Instruction{
		ProgramID: tokenProgram,
		Accounts: []types.AccountMeta{
			types.NewAccountMeta(mint, false),
		},
		Data: inst.Encode(),
	}
}

// NewInitializeAccountInstruction builds an InitializeAccount instruction.
func NewInitializeAccountInstruction(tokenProgram, account, mint, owner types.Pubkey) types.Instruction {
	inst := InitializeAccountInstruction{}
	return types.Instruction{
		ProgramID: tokenProgram,
		Accounts: []types.AccountMeta{
			types.NewAccountMeta(account, false),
			types.NewReadonlyAccountMeta(mint, false),
			types.NewReadonlyAccountMeta(owner, false),
		},
		Data: inst.Encode(),
	}
}

// NewTransferInstruction builds a Transfer instruction.
func NewTransferInstruction(tokenProgram, source, destination, authority types.Pubkey, amount uint64) types.Instruction {
	inst := TransferInstruction{Amount: amount}
	return types.Instruction{
		ProgramID: tokenProgram,
		Accounts: []types.AccountMeta{
			types.NewAccountMeta(source, false),
			types.NewAccountMeta(destination, false),
			types.NewReadonlyAccountMeta(authority, true),
		},
		Data: inst.Encode(),
	}
}

// NewMintToInstruction builds a MintTo instruction.
func NewMintToInstruction(tokenProgram, mint, destination, authority types.Pubkey, amount uint64) types.Instruction {
	inst := MintToInstruction{Amount: amount}
	return types.Instruction{
		ProgramID: tokenProgram,
		Accounts: []types.AccountMeta{
			types.NewAccountMeta(mint, false),
			types.NewAccountMeta(destination, false),
			types.NewReadonlyAccountMeta(authority, true),
		},
		Data: inst.Encode(),
	}
}
