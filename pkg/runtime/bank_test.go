package runtime

import (
	"errors"
	"testing"

	"github.com/fgrust/reward-pool/pkg/accounts"
	"github.com/fgrust/reward-pool/pkg/types"
)

func TestBankExecuteCommitsWritableAccounts(t *testing.T) {
	store := accounts.NewMemoryDB()
	programID := testPubkey("program")
	target := testPubkey("target")

	if err := store.SetAccount(target, types.NewAccount(1, 4, types.SystemProgramID)); err != nil {
		t.Fatalf("seed: %v", err)
	}

	bank := NewBank(store)
	bank.Register(marker(programID))

	inst := types.Instruction{
		ProgramID: programID,
		Accounts:  []types.AccountMeta{types.NewAccountMeta(target, false)},
	}
	if err := bank.Execute(inst, types.Clock{}, types.DefaultRent()); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	account, err := store.GetAccount(target)
	if err != nil || account == nil {
		t.Fatalf("load target: %v", err)
	}
	if account.Data[0] != 0xAB {
		t.Error("write not committed to store")
	}
}

func TestBankExecuteDiscardsOnFailure(t *testing.T) {
	store := accounts.NewMemoryDB()
	programID := testPubkey("program")
	target := testPubkey("target")

	if err := store.SetAccount(target, types.NewAccount(1, 4, types.SystemProgramID)); err != nil {
		t.Fatalf("seed: %v", err)
	}

	failure := errors.New("deliberate failure")
	bank := NewBank(store)
	bank.Register(&stubProgram{id: programID, fn: func(ctx *ExecutionContext) error {
		acc, err := ctx.Account(0)
		if err != nil {
			return err
		}
		acc.Data[0] = 0xAB
		return failure
	}})

	inst := types.Instruction{
		ProgramID: programID,
		Accounts:  []types.AccountMeta{types.NewAccountMeta(target, false)},
	}
	if err := bank.Execute(inst, types.Clock{}, types.DefaultRent()); !errors.Is(err, failure) {
		t.Fatalf("Execute: got %v, want the program failure", err)
	}

	account, err := store.GetAccount(target)
	if err != nil || account == nil {
		t.Fatalf("load target: %v", err)
	}
	if account.Data[0] != 0 {
		t.Error("failed execution mutated the store")
	}
}

func TestBankExecuteMissingAccount(t *testing.T) {
	store := accounts.NewMemoryDB()
	programID := testPubkey("program")

	bank := NewBank(store)
	bank.Register(marker(programID))

	inst := types.Instruction{
		ProgramID: programID,
		Accounts:  []types.AccountMeta{types.NewAccountMeta(testPubkey("nobody"), false)},
	}
	if err := bank.Execute(inst, types.Clock{}, types.DefaultRent()); !errors.Is(err, ErrMissingAccount) {
		t.Errorf("missing account: got %v, want ErrMissingAccount", err)
	}
}

func TestBankExecuteUnknownProgram(t *testing.T) {
	bank := NewBank(accounts.NewMemoryDB())

	inst := types.Instruction{ProgramID: testPubkey("nobody")}
	if err := bank.Execute(inst, types.Clock{}, types.DefaultRent()); !errors.Is(err, ErrProgramNotFound) {
		t.Errorf("unknown program: got %v, want ErrProgramNotFound", err)
	}
}
