// Package runtime provides the host-side execution model for native
// programs: per-invocation contexts, program-derived addresses,
// cross-program invocation, and the bank that loads and commits accounts.
package runtime

import (
	"errors"
	"fmt"

	"github.com/fgrust/reward-pool/pkg/types"
)

// Context errors
var (
	ErrInvalidAccountIndex = errors.New("invalid account index")
	ErrMaxLogsExceeded     = errors.New("maximum log entries exceeded")
)

// Execution limits
const (
	MaxLogMessages = 64
	MaxInvokeDepth = 4
)

// AccountInfo represents one account as presented to a program for the
// duration of a single invocation. Data is the live buffer: mutations are
// visible to the caller that supplied it.
type AccountInfo struct {
	Pubkey     types.Pubkey
	Lamports   uint64
	Data       []byte
	Owner      types.Pubkey
	Executable bool
	IsSigner   bool
	IsWritable bool
}

// Program is a native program that can be registered with a Registry.
type Program interface {
	// ID returns the program's address.
	ID() types.Pubkey
	// Execute runs one instruction against the supplied context.
	Execute(ctx *ExecutionContext) error
}

// Invoker dispatches a cross-program invocation on behalf of a running
// program, optionally presenting program-derived addresses as signers.
type Invoker interface {
	Invoke(caller *ExecutionContext, inst types.Instruction, signerSeeds [][][]byte) error
}

// ExecutionContext holds everything a program may observe during one
// invocation. Clock and rent are explicit values, not ambient state.
type ExecutionContext struct {
	ProgramID       types.Pubkey
	Accounts        []*AccountInfo
	InstructionData []byte

	Clock types.Clock
	Rent  types.Rent

	Depth   int
	invoker Invoker
	logs    []string
}

// NewExecutionContext creates a context for a top-level invocation.
func NewExecutionContext(programID types.Pubkey, accounts []*AccountInfo, data []byte, clock types.Clock, rent types.Rent) *ExecutionContext {
	return &ExecutionContext{
		ProgramID:       programID,
		Accounts:        accounts,
		InstructionData: data,
		Clock:           clock,
		Rent:            rent,
	}
}

// AccountCount returns the number of accounts supplied to this invocation.
func (ctx *ExecutionContext) AccountCount() int {
	return len(ctx.Accounts)
}

// Account returns the account at the given position.
func (ctx *ExecutionContext) Account(index int) (*AccountInfo, error) {
	if index < 0 || index >= len(ctx.Accounts) {
		return nil, fmt.Errorf("%w: %d of %d", ErrInvalidAccountIndex, index, len(ctx.Accounts))
	}
	return ctx.Accounts[index], nil
}

// RemainingAccounts returns the accounts from the given position onward.
// Used by batch operations that take a variable-length account tail.
func (ctx *ExecutionContext) RemainingAccounts(from int) []*AccountInfo {
	if from < 0 || from >= len(ctx.Accounts) {
		return nil
	}
	return ctx.Accounts[from:]
}

// Log records an operator-readable message for this invocation.
// Messages past the limit are dropped, not an error.
func (ctx *ExecutionContext) Log(format string, args ...interface{}) {
	if len(ctx.logs) >= MaxLogMessages {
		return
	}
	ctx.logs = append(ctx.logs, fmt.Sprintf(format, args...))
}

// Logs returns the messages recorded so far.
func (ctx *ExecutionContext) Logs() []string {
	return ctx.logs
}

// InvokeSigned performs a cross-program invocation. Each entry of
// signerSeeds derives one program address that is treated as a signer for
// the callee.
func (ctx *ExecutionContext) InvokeSigned(inst types.Instruction, signerSeeds [][][]byte) error {
	if ctx.invoker == nil {
		return errors.New("no invoker attached to execution context")
	}
	return ctx.invoker.Invoke(ctx, inst, signerSeeds)
}
