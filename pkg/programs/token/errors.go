// Package token implements the subset of the SPL Token Program the
// reward-pool engine delegates to: initializing mints and token accounts,
// transferring tokens, and minting.
package token

import "errors"

// Token Program errors
var (
	// ErrInvalidInstruction indicates an unknown instruction discriminator.
	ErrInvalidInstruction = errors.New("invalid token instruction")

	// ErrInvalidInstructionData indicates malformed instruction data.
	ErrInvalidInstructionData = errors.New("invalid instruction data")

	// ErrInvalidNumberOfAccounts indicates too few accounts were supplied.
	ErrInvalidNumberOfAccounts = errors.New("invalid number of accounts")

	// ErrInvalidAccountData indicates account data that cannot be decoded.
	ErrInvalidAccountData = errors.New("invalid account data")

	// ErrAccountNotWritable indicates a required writable account is not writable.
	ErrAccountNotWritable = errors.New("account is not writable")

	// ErrAccountNotSigner indicates a required signer is missing.
	ErrAccountNotSigner = errors.New("account is not a signer")

	// ErrAlreadyInitialized indicates the mint or account is already initialized.
	ErrAlreadyInitialized = errors.New("already initialized")

	// ErrNotInitialized indicates the mint or account is not initialized.
	ErrNotInitialized = errors.New("not initialized")

	// ErrAccountFrozen indicates the token account is frozen.
	ErrAccountFrozen = errors.New("account is frozen")

	// ErrMintMismatch indicates source and destination mints differ.
	ErrMintMismatch = errors.New("token mint mismatch")

	// ErrOwnerMismatch indicates the authority does not own the account.
	ErrOwnerMismatch = errors.New("owner does not match")

	// ErrInvalidMint indicates a malformed or uninitialized mint.
	ErrInvalidMint = errors.New("invalid mint")

	// ErrInsufficientFunds indicates the source balance is too small.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrFixedSupply indicates the mint has no minting authority.
	ErrFixedSupply = errors.New("mint has fixed supply")

	// ErrSupplyOverflow indicates minting would overflow the total supply.
	ErrSupplyOverflow = errors.New("mint supply overflow")
)
