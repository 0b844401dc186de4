package token

import (
	"fmt"

	"github.com/fgrust/reward-pool/pkg/runtime"
	"github.com/fgrust/reward-pool/pkg/types"
)

// Program implements the token ledger as a native program.
type Program struct {
	programID types.Pubkey
}

// New creates the token program under its well-known ID.
func New() *Program {
	return &Program{programID: types.TokenProgramID}
}

// ID returns the program's address.
func (p *Program) ID() types.Pubkey {
	return p.programID
}

// Execute routes one instruction to its handler. The first byte of the
// instruction data is the discriminator.
func (p *Program) Execute(ctx *runtime.ExecutionContext) error {
	if len(ctx.InstructionData) < 1 {
		return fmt.Errorf("%w: instruction data too short", ErrInvalidInstructionData)
	}

	discriminator := ctx.InstructionData[0]
	data := ctx.InstructionData[1:]

	switch discriminator {
	case InstructionInitializeMint:
		var inst InitializeMintInstruction
		if err := inst.Decode(data); err != nil {
			return err
		}
		return handleInitializeMint(ctx, &inst)

	case InstructionInitializeAccount:
		var inst InitializeAccountInstruction
		if err := inst.Decode(data); err != nil {
			return err
		}
		return handleInitializeAccount(ctx)

	case InstructionTransfer:
		var inst TransferInstruction
		if err := inst.Decode(data); err != nil {
			return err
		}
		return handleTransfer(ctx, &inst)

	case InstructionMintTo:
		var inst MintToInstruction
		if err := inst.Decode(data); err != nil {
			return err
		}
		return handleMintTo(ctx, &inst)

	default:
		return fmt.Errorf("%w: unknown instruction %d", ErrInvalidInstruction, discriminator)
	}
}
