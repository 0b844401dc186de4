// Package rewardpool implements the staking-pool accounting program.
//
// Users lock a stake token into a pool and accrue a reward token over time
// at the pool's configured daily rate. The program maintains two persistent
// records (Pool and StakeUser), derives the pool's signing authority from
// the pool address and a stored seed byte, and delegates all token movement
// to the token program, presenting the derived authority as a signer where
// the pool itself must authorize the movement.
package rewardpool

import (
	"fmt"

	"github.com/fgrust/reward-pool/pkg/runtime"
	"github.com/fgrust/reward-pool/pkg/types"
)

// Program implements the reward pool as a native program.
type Program struct {
	programID types.Pubkey
}

// New creates the reward pool program under the given address.
func New(programID types.Pubkey) *Program {
	return &Program{programID: programID}
}

// ID returns the program's address.
func (p *Program) ID() types.Pubkey {
	return p.programID
}

// Execute decodes the instruction tag and routes to the matching handler.
func (p *Program) Execute(ctx *runtime.ExecutionContext) error {
	if len(ctx.InstructionData) < 1 {
		return ErrIncorrectInstruction
	}

	tag := ctx.InstructionData[0]
	data := ctx.InstructionData[1:]

	switch tag {
	case InstructionCreatePool:
		var inst CreatePoolInstruction
		if err := inst.Decode(data); err != nil {
			return err
		}
		ctx.Log("Instruction: CreatePool")
		return p.handleCreatePool(ctx, &inst)

	case InstructionCreateStakeUser:
		ctx.Log("Instruction: CreateStakeUser")
		return p.handleCreateStakeUser(ctx)

	case InstructionStake:
		var inst StakeInstruction
		if err := inst.Decode(data); err != nil {
			return err
		}
		ctx.Log("Instruction: Stake")
		return p.handleStake(ctx, inst.Amount)

	case InstructionUnstake:
		var inst UnstakeInstruction
		if err := inst.Decode(data); err != nil {
			return err
		}
		ctx.Log("Instruction: Unstake")
		return p.handleUnstake(ctx, inst.Amount)

	case InstructionClaim:
		ctx.Log("Instruction: Claim")
		return p.handleClaim(ctx)

	case InstructionRefresh:
		ctx.Log("Instruction: Refresh")
		return p.handleRefresh(ctx)

	default:
		return fmt.Errorf("%w: unknown tag %d", ErrIncorrectInstruction, tag)
	}
}

// DeriveAuthority recomputes the pool's signing authority from the pool
// address and its stored seed byte. The result is a program-derived
// address: no private key exists for it, so only program logic can present
// it as a signer.
func DeriveAuthority(pool types.Pubkey, bumpSeed uint8, programID types.Pubkey) (types.Pubkey, bool) {
	return runtime.CreateProgramAddress(authoritySignerSeeds(pool, bumpSeed), programID)
}

// FindAuthority searches for the bump seed that yields a valid authority
// for the pool address. Used by clients before CreatePool.
func FindAuthority(pool types.Pubkey, programID types.Pubkey) (types.Pubkey, uint8, bool) {
	return runtime.FindProgramAddress([][]byte{pool[:]}, programID)
}

// validateAuthority recomputes the authority and compares it against the
// supplied candidate. There is no cached copy to trust: every handler that
// needs the authority recomputes it at the point of use.
func validateAuthority(candidate types.Pubkey, pool types.Pubkey, bumpSeed uint8, programID types.Pubkey) error {
	derived, valid := DeriveAuthority(pool, bumpSeed, programID)
	if !valid || derived != candidate {
		return ErrInvalidPoolAuthority
	}
	return nil
}

func authoritySignerSeeds(pool types.Pubkey, bumpSeed uint8) [][]byte {
	return [][]byte{pool[:], {bumpSeed}}
}
