package rewardpool

import (
	"encoding/binary"
	"fmt"

	"github.com/fgrust/reward-pool/pkg/types"
)

// Reward Pool instruction tags (first byte of instruction data)
const (
	InstructionCreatePool      uint8 = 1
	InstructionCreateStakeUser uint8 = 2
	InstructionStake           uint8 = 3
	InstructionUnstake         uint8 = 4
	InstructionClaim           uint8 = 5
	InstructionRefresh         uint8 = 6
)

// CreatePoolInstruction initializes a new pool record.
// Accounts:
//
//	[0] pool account (writable)
//	[1] pool authority derived from (pool, bump seed)
//	[2] stake token mint
//	[3] stake token reserve account (writable)
//	[4] reward token mint (writable)
//	[5] token program
type CreatePoolInstruction struct {
	BumpSeed          uint8  // Seed byte for authority derivation
	RewardNumerator   uint64 // Daily reward ratio numerator
	RewardDenominator uint64 // Daily reward ratio denominator
}

// Decode decodes a CreatePool payload from bytes.
func (inst *CreatePoolInstruction) Decode(data []byte) error {
	if len(data) < 1+8+8 {
		return fmt.Errorf("%w: CreatePool requires 17 bytes, got %d", ErrInstructionUnpack, len(data))
	}
	inst.BumpSeed = data[0]
	inst.RewardNumerator = binary.LittleEndian.Uint64(data[1:9])
	inst.RewardDenominator = binary.LittleEndian.Uint64(data[9:17])
	return nil
}

// Encode encodes a CreatePool instruction to bytes.
func (inst *CreatePoolInstruction) Encode() []byte {
	data := make([]byte, 1+1+8+8)
	data[0] = InstructionCreatePool
	data[1] = inst.BumpSeed
	binary.LittleEndian.PutUint64(data[2:10], inst.RewardNumerator)
	binary.LittleEndian.PutUint64(data[10:18], inst.RewardDenominator)
	return data
}

// CreateStakeUserInstruction initializes a per-owner stake record.
// Accounts:
//
//	[0] pool account
//	[1] stake user account (writable)
//	[2] stake owner (signer)
type CreateStakeUserInstruction struct{}

// Decode decodes a CreateStakeUser payload (no data).
func (inst *CreateStakeUserInstruction) Decode(data []byte) error {
	return nil
}

// Encode encodes a CreateStakeUser instruction to bytes.
func (inst *CreateStakeUserInstruction) Encode() []byte {
	return []byte{InstructionCreateStakeUser}
}

// StakeInstruction moves tokens from the owner into the pool reserve.
// Accounts:
//
//	[0] pool account
//	[1] stake user account (writable)
//	[2] user transfer authority (signer)
//	[3] stake owner (signer)
//	[4] source token account (writable)
//	[5] reserve token account (writable)
//	[6] token program
type StakeInstruction struct {
	Amount uint64 // Amount to stake
}

// Decode decodes a Stake payload from bytes.
func (inst *StakeInstruction) Decode(data []byte) error {
	if len(data) < 8 {
		return fmt.Errorf("%w: Stake requires 8 bytes, got %d", ErrInstructionUnpack, len(data))
	}
	inst.Amount = binary.LittleEndian.Uint64(data[0:8])
	return nil
}

// Encode encodes a Stake instruction to bytes.
func (inst *StakeInstruction) Encode() []byte {
	data := make([]byte, 1+8)
	data[0] = InstructionStake
	binary.LittleEndian.PutUint64(data[1:9], inst.Amount)
	return data
}

// UnstakeInstruction releases tokens from the reserve back to the owner,
// signed by the derived pool authority.
// Accounts:
//
//	[0] pool account
//	[1] stake user account (writable)
//	[2] pool authority derived from (pool, bump seed)
//	[3] stake owner (signer)
//	[4] reserve token account (writable)
//	[5] destination token account (writable)
//	[6] token program
type UnstakeInstruction struct {
	Amount uint64 // Amount to unstake
}

// Decode decodes an Unstake payload from bytes.
func (inst *UnstakeInstruction) Decode(data []byte) error {
	if len(data) < 8 {
		return fmt.Errorf("%w: Unstake requires 8 bytes, got %d", ErrInstructionUnpack, len(data))
	}
	inst.Amount = binary.LittleEndian.Uint64(data[0:8])
	return nil
}

// Encode encodes an Unstake instruction to bytes.
func (inst *UnstakeInstruction) Encode() []byte {
	data := make([]byte, 1+8)
	data[0] = InstructionUnstake
	binary.LittleEndian.PutUint64(data[1:9], inst.Amount)
	return data
}

// ClaimInstruction mints the accrued reward to the owner's token account.
// Accounts:
//
//	[0] pool account
//	[1] stake user account (writable)
//	[2] stake owner (signer)
//	[3] pool authority derived from (pool, bump seed)
//	[4] reward token mint (writable)
//	[5] reward destination token account (writable)
//	[6] token program
type ClaimInstruction struct{}

// Decode decodes a Claim payload (no data).
func (inst *ClaimInstruction) Decode(data []byte) error {
	return nil
}

// Encode encodes a Claim instruction to bytes.
func (inst *ClaimInstruction) Encode() []byte {
	return []byte{InstructionClaim}
}

// RefreshInstruction recomputes reward accrual for a batch of stake users.
// Accounts:
//
//	[0] pool account
//	[1..] stake user accounts (writable)
type RefreshInstruction struct{}

// Decode decodes a Refresh payload (no data).
func (inst *RefreshInstruction) Decode(data []byte) error {
	return nil
}

// Encode encodes a Refresh instruction to bytes.
func (inst *RefreshInstruction) Encode() []byte {
	return []byte{InstructionRefresh}
}

// NewCreatePoolInstruction builds a CreatePool instruction with its
// account list in handler order.
func NewCreatePoolInstruction(programID, pool, authority, stakeMint, reserve, rewardMint types.Pubkey, inst CreatePoolInstruction) types.Instruction {
	return types.Instruction{
		ProgramID: programID,
		Accounts: []types.AccountMeta{
			types.NewAccountMeta(pool, false),
			types.NewReadonlyAccountMeta(authority, false),
			types.NewReadonlyAccountMeta(stakeMint, false),
			types.NewAccountMeta(reserve, false),
			types.NewAccountMeta(rewardMint, false),
			types.NewReadonlyAccountMeta(types.TokenProgramID, false),
		},
		Data: inst.Encode(),
	}
}

// NewCreateStakeUserInstruction builds a CreateStakeUser instruction.
func NewCreateStakeUserInstruction(programID, pool, stakeUser, owner types.Pubkey) types.Instruction {
	inst := CreateStakeUserInstruction{}
	return types.Instruction{
		ProgramID: programID,
		Accounts: []types.AccountMeta{
			types.NewReadonlyAccountMeta(pool, false),
			types.NewAccountMeta(stakeUser, false),
			types.NewReadonlyAccountMeta(owner, true),
		},
		Data: inst.Encode(),
	}
}

// NewStakeInstruction builds a Stake instruction.
func NewStakeInstruction(programID, pool, stakeUser, transferAuthority, owner, source, reserve types.Pubkey, amount uint64) types.Instruction {
	inst := StakeInstruction{Amount: amount}
	return types.Instruction{
		ProgramID: programID,
		Accounts: []types.AccountMeta{
			types.NewReadonlyAccountMeta(pool, false),
			types.NewAccountMeta(stakeUser, false),
			types.NewReadonlyAccountMeta(transferAuthority, true),
			types.NewReadonlyAccountMeta(owner, true),
			types.NewAccountMeta(source, false),
			types.NewAccountMeta(reserve, false),
			types.NewReadonlyAccountMeta(types.TokenProgramID, false),
		},
		Data: inst.Encode(),
	}
}

// NewUnstakeInstruction builds an Unstake instruction.
func NewUnstakeInstruction(programID, pool, stakeUser, authority, owner, reserve, destination types.Pubkey, amount uint64) types.Instruction {
	inst := UnstakeInstruction{Amount: amount}
	return types.Instruction{
		ProgramID: programID,
		Accounts: []types.AccountMeta{
			types.NewReadonlyAccountMeta(pool, false),
			types.NewAccountMeta(stakeUser, false),
			types.NewReadonlyAccountMeta(authority, false),
			types.NewReadonlyAccountMeta(owner, true),
			types.NewAccountMeta(reserve, false),
			types.NewAccountMeta(destination, false),
			types.NewReadonlyAccountMeta(types.TokenProgramID, false),
		},
		Data: inst.Encode(),
	}
}

// NewClaimInstruction builds a Claim instruction.
func NewClaimInstruction(programID, pool, stakeUser, owner, authority, rewardMint, destination types.Pubkey) types.Instruction {
	inst := ClaimInstruction{}
	return types.Instruction{
		ProgramID: programID,
		Accounts: []types.AccountMeta{
			types.NewReadonlyAccountMeta(pool, false),
			types.NewAccountMeta(stakeUser, false),
			types.NewReadonlyAccountMeta(owner, true),
			types.NewReadonlyAccountMeta(authority, false),
			types.NewAccountMeta(rewardMint, false),
			types.NewAccountMeta(destination, false),
			types.NewReadonlyAccountMeta(types.TokenProgramID, false),
		},
		Data: inst.Encode(),
	}
}

// NewRefreshInstruction builds a Refresh instruction over a batch of stake
// user accounts.
func NewRefreshInstruction(programID, pool types.Pubkey, stakeUsers []types.Pubkey) types.Instruction {
	inst := RefreshInstruction{}
	metas := make([]types.AccountMeta, 0, 1+len(stakeUsers))
	metas = append(metas, types.NewReadonlyAccountMeta(pool, false))
	for _, user := range stakeUsers {
		metas = append(metas, types.NewAccountMeta(user, false))
	}
	return types.Instruction{
		ProgramID: programID,
		Accounts:  metas,
		Data:      inst.Encode(),
	}
}
