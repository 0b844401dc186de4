package token

import (
	"fmt"

	"github.com/fgrust/reward-pool/pkg/runtime"
)

// handleInitializeMint initializes a new token mint.
// Account layout:
//
//	[0] mint (writable)
func handleInitializeMint(ctx *runtime.ExecutionContext, inst *InitializeMintInstruction) error {
	if ctx.AccountCount() < 1 {
		return fmt.Errorf("%w: InitializeMint requires 1 account, got %d",
			ErrInvalidNumberOfAccounts, ctx.AccountCount())
	}

	mintAcc, err := ctx.Account(0)
	if err != nil {
		return err
	}
	if !mintAcc.IsWritable {
		return fmt.Errorf("%w: mint account", ErrAccountNotWritable)
	}
	if len(mintAcc.Data) < MintSize {
		return fmt.Errorf("%w: mint account data too small, expected %d bytes",
			ErrInvalidAccountData, MintSize)
	}

	if existing, err := DeserializeMint(mintAcc.Data); err == nil && existing.IsInitialized {
		return ErrAlreadyInitialized
	}

	mint := NewMint(inst.Decimals, &inst.MintAuthority, inst.FreezeAuthority)
	copy(mintAcc.Data, mint.Serialize())
	return nil
}

// handleInitializeAccount initializes a new token account.
// Account layout:
//
//	[0] account (writable)
//	[1] mint
//	[2] owner
func handleInitializeAccount(ctx *runtime.ExecutionContext) error {
	if ctx.AccountCount() < 3 {
		return fmt.Errorf("%w: InitializeAccount requires 3 accounts, got %d",
			ErrInvalidNumberOfAccounts, ctx.AccountCount())
	}

	tokenAcc, err := ctx.Account(0)
	if err != nil {
		return err
	}
	if !tokenAcc.IsWritable {
		return fmt.Errorf("%w: token account", ErrAccountNotWritable)
	}
	mintAcc, err := ctx.Account(1)
	if err != nil {
		return err
	}
	ownerAcc, err := ctx.Account(2)
	if err != nil {
		return err
	}

	if len(tokenAcc.Data) < TokenAccountSize {
		return fmt.Errorf("%w: token account data too small, expected %d bytes",
			ErrInvalidAccountData, TokenAccountSize)
	}
	if existing, err := DeserializeTokenAccount(tokenAcc.Data); err == nil && existing.State != AccountStateUninitialized {
		return ErrAlreadyInitialized
	}

	mint, err := DeserializeMint(mintAcc.Data)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidMint, err)
	}
	if !mint.IsInitialized {
		return fmt.Errorf("%w: mint not initialized", ErrInvalidMint)
	}

	account := NewTokenAccount(mintAcc.Pubkey, ownerAcc.Pubkey)
	copy(tokenAcc.Data, account.Serialize())
	return nil
}

// handleTransfer moves tokens between accounts.
// Account layout:
//
//	[0] source (writable)
//	[1] destination (writable)
//	[2] authority (signer) - source owner or delegate
func handleTransfer(ctx *runtime.ExecutionContext, inst *TransferInstruction) error {
	if ctx.AccountCount() < 3 {
		return fmt.Errorf("%w: Transfer requires 3 accounts, got %d",
			ErrInvalidNumberOfAccounts, ctx.AccountCount())
	}

	sourceAcc, err := ctx.Account(0)
	if err != nil {
		return err
	}
	if !sourceAcc.IsWritable {
		return fmt.Errorf("%w: source account", ErrAccountNotWritable)
	}
	destAcc, err := ctx.Account(1)
	if err != nil {
		return err
	}
	if !destAcc.IsWritable {
		return fmt.Errorf("%w: destination account", ErrAccountNotWritable)
	}
	authorityAcc, err := ctx.Account(2)
	if err != nil {
		return err
	}
	if !authorityAcc.IsSigner {
		return fmt.Errorf("%w: authority", ErrAccountNotSigner)
	}

	source, err := DeserializeTokenAccount(sourceAcc.Data)
	if err != nil {
		return fmt.Errorf("source: %w", err)
	}
	dest, err := DeserializeTokenAccount(destAcc.Data)
	if err != nil {
		return fmt.Errorf("destination: %w", err)
	}

	if source.State == AccountStateUninitialized {
		return fmt.Errorf("source: %w", ErrNotInitialized)
	}
	if dest.State == AccountStateUninitialized {
		return fmt.Errorf("destination: %w", ErrNotInitialized)
	}
	if source.IsFrozen() {
		return fmt.Errorf("source: %w", ErrAccountFrozen)
	}
	if dest.IsFrozen() {
		return fmt.Errorf("destination: %w", ErrAccountFrozen)
	}
	if source.Mint != dest.Mint {
		return ErrMintMismatch
	}

	isOwner := source.Owner == authorityAcc.Pubkey
	isDelegate := source.Delegate.IsSome && source.Delegate.Value == authorityAcc.Pubkey
	if !isOwner && !isDelegate {
		return ErrOwnerMismatch
	}

	available := source.Amount
	if isDelegate {
		available = source.DelegatedAmount
	}
	if inst.Amount > available {
		return ErrInsufficientFunds
	}

	source.Amount -= inst.Amount
	dest.Amount += inst.Amount
	if isDelegate {
		source.DelegatedAmount -= inst.Amount
	}

	copy(sourceAcc.Data, source.Serialize())
	copy(destAcc.Data, dest.Serialize())
	return nil
}

// handleMintTo mints new tokens to an account.
// Account layout:
//
//	[0] mint (writable)
//	[1] destination (writable)
//	[2] mint authority (signer)
func handleMintTo(ctx *runtime.ExecutionContext, inst *MintToInstruction) error {
	if ctx.AccountCount() < 3 {
		return fmt.Errorf("%w: MintTo requires 3 accounts, got %d",
			ErrInvalidNumberOfAccounts, ctx.AccountCount())
	}

	mintAcc, err := ctx.Account(0)
	if err != nil {
		return err
	}
	if !mintAcc.IsWritable {
		return fmt.Errorf("%w: mint account", ErrAccountNotWritable)
	}
	destAcc, err := ctx.Account(1)
	if err != nil {
		return err
	}
	if !destAcc.IsWritable {
		return fmt.Errorf("%w: destination account", ErrAccountNotWritable)
	}
	authorityAcc, err := ctx.Account(2)
	if err != nil {
		return err
	}
	if !authorityAcc.IsSigner {
		return fmt.Errorf("%w: mint authority", ErrAccountNotSigner)
	}

	mint, err := DeserializeMint(mintAcc.Data)
	if err != nil {
		return fmt.Errorf("mint: %w", err)
	}
	dest, err := DeserializeTokenAccount(destAcc.Data)
	if err != nil {
		return fmt.Errorf("destination: %w", err)
	}

	if !mint.IsInitialized {
		return fmt.Errorf("mint: %w", ErrNotInitialized)
	}
	if dest.State == AccountStateUninitialized {
		return fmt.Errorf("destination: %w", ErrNotInitialized)
	}
	if dest.IsFrozen() {
		return fmt.Errorf("destination: %w", ErrAccountFrozen)
	}
	if dest.Mint != mintAcc.Pubkey {
		return ErrMintMismatch
	}

	if !mint.MintAuthority.IsSome {
		return ErrFixedSupply
	}
	if mint.MintAuthority.Value != authorityAcc.Pubkey {
		return ErrOwnerMismatch
	}

	supply := mint.Supply + inst.Amount
	if supply < mint.Supply {
		return ErrSupplyOverflow
	}
	mint.Supply = supply
	dest.Amount += inst.Amount

	copy(mintAcc.Data, mint.Serialize())
	copy(destAcc.Data, dest.Serialize())
	return nil
}
