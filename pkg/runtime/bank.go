package runtime

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/fgrust/reward-pool/pkg/accounts"
	"github.com/fgrust/reward-pool/pkg/metrics"
	"github.com/fgrust/reward-pool/pkg/types"
)

// Bank errors
var (
	ErrMissingAccount = errors.New("instruction references a missing account")
)

// Bank executes instructions against an account store. Per invocation it
// loads the referenced accounts into memory buffers, runs the target
// program, and commits the buffers back only if execution succeeded.
// A failed invocation discards every mutation it made.
type Bank struct {
	store    accounts.AccountsDB
	registry *Registry
	logger   *zap.Logger
	metrics  *metrics.BankMetrics
}

// BankOption configures a Bank.
type BankOption func(*Bank)

// WithLogger attaches a structured logger.
func WithLogger(logger *zap.Logger) BankOption {
	return func(b *Bank) { b.logger = logger }
}

// WithMetrics attaches bank metrics.
func WithMetrics(m *metrics.BankMetrics) BankOption {
	return func(b *Bank) { b.metrics = m }
}

// NewBank creates a bank over the given account store.
func NewBank(store accounts.AccountsDB, opts ...BankOption) *Bank {
	b := &Bank{
		store:    store,
		registry: NewRegistry(),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Register adds a native program to the bank.
func (b *Bank) Register(p Program) {
	b.registry.Register(p)
}

// Execute runs one top-level instruction. Clock and rent are supplied by
// the caller for the whole invocation.
func (b *Bank) Execute(inst types.Instruction, clock types.Clock, rent types.Rent) error {
	program, ok := b.registry.Lookup(inst.ProgramID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrProgramNotFound, inst.ProgramID)
	}

	infos := make([]*AccountInfo, len(inst.Accounts))
	for i, meta := range inst.Accounts {
		acct, err := b.store.GetAccount(meta.Pubkey)
		if err != nil {
			return fmt.Errorf("load %s: %w", meta.Pubkey, err)
		}
		if acct == nil {
			return fmt.Errorf("%w: %s", ErrMissingAccount, meta.Pubkey)
		}
		infos[i] = &AccountInfo{
			Pubkey:     meta.Pubkey,
			Lamports:   uint64(acct.Lamports),
			Data:       acct.Data,
			Owner:      acct.Owner,
			Executable: acct.Executable,
			IsSigner:   meta.IsSigner,
			IsWritable: meta.IsWritable,
		}
	}

	ctx := NewExecutionContext(inst.ProgramID, infos, inst.Data, clock, rent)
	ctx.invoker = b.registry

	start := time.Now()
	err := program.Execute(ctx)
	elapsed := time.Since(start)

	for _, msg := range ctx.Logs() {
		b.logger.Debug("program log", zap.String("program", inst.ProgramID.String()), zap.String("msg", msg))
	}
	if b.metrics != nil {
		b.metrics.ObserveExecution(inst.ProgramID.String(), elapsed, err == nil)
	}

	if err != nil {
		b.logger.Warn("instruction failed",
			zap.String("program", inst.ProgramID.String()),
			zap.Error(err))
		return err
	}

	for _, info := range infos {
		if !info.IsWritable {
			continue
		}
		if err := b.store.SetAccount(info.Pubkey, &types.Account{
			Lamports:   types.Lamports(info.Lamports),
			Data:       info.Data,
			Owner:      info.Owner,
			Executable: info.Executable,
		}); err != nil {
			return fmt.Errorf("commit %s: %w", info.Pubkey, err)
		}
	}

	b.logger.Debug("instruction committed",
		zap.String("program", inst.ProgramID.String()),
		zap.Duration("elapsed", elapsed))
	return nil
}
