package rewardpool

import (
	"fmt"

	"github.com/fgrust/reward-pool/pkg/programs/token"
	"github.com/fgrust/reward-pool/pkg/runtime"
	"github.com/fgrust/reward-pool/pkg/types"
)

// The token ledger is an external collaborator. Each wrapper builds the
// instruction, invokes it (signed by the derived authority where the pool
// itself authorizes the movement), and maps any failure to the matching
// program error without inspecting the cause.

func tokenInitializeAccount(ctx *runtime.ExecutionContext, tokenProgram, account, mint, owner types.Pubkey) error {
	inst := token.NewInitializeAccountInstruction(tokenProgram, account, mint, owner)
	if err := ctx.InvokeSigned(inst, nil); err != nil {
		return fmt.Errorf("%w: %v", ErrTokenInitializeAccountFailed, err)
	}
	return nil
}

func tokenInitializeMint(ctx *runtime.ExecutionContext, tokenProgram, mint, authority types.Pubkey, decimals uint8) error {
	inst := token.NewInitializeMintInstruction(tokenProgram, mint, authority, decimals)
	if err := ctx.InvokeSigned(inst, nil); err != nil {
		return fmt.Errorf("%w: %v", ErrTokenInitializeMintFailed, err)
	}
	return nil
}

func tokenTransfer(ctx *runtime.ExecutionContext, tokenProgram, source, destination, authority types.Pubkey, amount uint64, signerSeeds [][]byte) error {
	inst := token.NewTransferInstruction(tokenProgram, source, destination, authority, amount)
	if err := invokeOptionallySigned(ctx, inst, signerSeeds); err != nil {
		return fmt.Errorf("%w: %v", ErrTokenTransferFailed, err)
	}
	return nil
}

func tokenMintTo(ctx *runtime.ExecutionContext, tokenProgram, mint, destination, authority types.Pubkey, amount uint64, signerSeeds [][]byte) error {
	inst := token.NewMintToInstruction(tokenProgram, mint, destination, authority, amount)
	if err := invokeOptionallySigned(ctx, inst, signerSeeds); err != nil {
		return fmt.Errorf("%w: %v", ErrTokenMintToFailed, err)
	}
	return nil
}

func invokeOptionallySigned(ctx *runtime.ExecutionContext, inst types.Instruction, signerSeeds [][]byte) error {
	if len(signerSeeds) == 0 {
		return ctx.InvokeSigned(inst, nil)
	}
	return ctx.InvokeSigned(inst, [][][]byte{signerSeeds})
}
