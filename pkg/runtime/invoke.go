package runtime

import (
	"errors"
	"fmt"

	"github.com/fgrust/reward-pool/pkg/types"
)

// CPI errors
var (
	ErrInvokeDepthExceeded = errors.New("invoke depth exceeded")
	ErrProgramNotFound     = errors.New("program not registered")
	ErrAccountNotFound     = errors.New("account not found in caller context")
	ErrWritablePrivilege   = errors.New("writable privilege escalation")
	ErrSignerPrivilege     = errors.New("signer privilege escalation")
	ErrInvalidSignerSeeds  = errors.New("invalid signer seeds")
)

// Registry holds the native programs known to the bank and dispatches
// cross-program invocations between them.
type Registry struct {
	programs map[types.Pubkey]Program
}

// NewRegistry creates an empty program registry.
func NewRegistry() *Registry {
	return &Registry{programs: make(map[types.Pubkey]Program)}
}

// Register adds a program to the registry.
func (r *Registry) Register(p Program) {
	r.programs[p.ID()] = p
}

// Lookup returns the program registered under the given ID.
func (r *Registry) Lookup(programID types.Pubkey) (Program, bool) {
	p, ok := r.programs[programID]
	return p, ok
}

// Invoke implements Invoker. The callee's accounts must be a subset of the
// caller's, with no privilege escalation: a callee-writable account must be
// caller-writable, and a callee-signer must either be a caller-signer or
// match a program address derived from one of signerSeeds under the
// caller's program ID.
func (r *Registry) Invoke(caller *ExecutionContext, inst types.Instruction, signerSeeds [][][]byte) error {
	if caller.Depth+1 > MaxInvokeDepth {
		return ErrInvokeDepthExceeded
	}

	callee, ok := r.programs[inst.ProgramID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrProgramNotFound, inst.ProgramID)
	}

	pdaSigners := make(map[types.Pubkey]struct{}, len(signerSeeds))
	for _, seeds := range signerSeeds {
		pda, valid := CreateProgramAddress(seeds, caller.ProgramID)
		if !valid {
			return ErrInvalidSignerSeeds
		}
		pdaSigners[pda] = struct{}{}
	}

	calleeAccounts := make([]*AccountInfo, len(inst.Accounts))
	for i, meta := range inst.Accounts {
		parent := findAccount(caller.Accounts, meta.Pubkey)
		if parent == nil {
			return fmt.Errorf("%w: %s", ErrAccountNotFound, meta.Pubkey)
		}
		if meta.IsWritable && !parent.IsWritable {
			return fmt.Errorf("%w: %s", ErrWritablePrivilege, meta.Pubkey)
		}
		_, derived := pdaSigners[meta.Pubkey]
		isSigner := parent.IsSigner || derived
		if meta.IsSigner && !isSigner {
			return fmt.Errorf("%w: %s", ErrSignerPrivilege, meta.Pubkey)
		}
		// Share the data buffer so callee writes land in the caller's view.
		calleeAccounts[i] = &AccountInfo{
			Pubkey:     parent.Pubkey,
			Lamports:   parent.Lamports,
			Data:       parent.Data,
			Owner:      parent.Owner,
			Executable: parent.Executable,
			IsSigner:   isSigner,
			IsWritable: meta.IsWritable,
		}
	}

	child := &ExecutionContext{
		ProgramID:       inst.ProgramID,
		Accounts:        calleeAccounts,
		InstructionData: inst.Data,
		Clock:           caller.Clock,
		Rent:            caller.Rent,
		Depth:           caller.Depth + 1,
		invoker:         r,
	}

	err := callee.Execute(child)
	for _, msg := range child.Logs() {
		caller.Log("%s", msg)
	}
	return err
}

func findAccount(accounts []*AccountInfo, pubkey types.Pubkey) *AccountInfo {
	for _, acc := range accounts {
		if acc.Pubkey == pubkey {
			return acc
		}
	}
	return nil
}
