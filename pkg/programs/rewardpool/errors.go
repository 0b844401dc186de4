package rewardpool

import "errors"

// Reward Pool Program errors
var (
	// ErrIncorrectInstruction indicates an unknown instruction tag.
	ErrIncorrectInstruction = errors.New("incorrect program instruction")

	// ErrCalculationFailure indicates arithmetic overflow, underflow, or
	// division by zero during accounting.
	ErrCalculationFailure = errors.New("calculation failure")

	// ErrInsufficientLiquidity indicates the reserve cannot cover an unstake.
	ErrInsufficientLiquidity = errors.New("insufficient liquidity available")

	// ErrInsufficientClaimAmount indicates there is no reward to claim.
	ErrInsufficientClaimAmount = errors.New("no rewards to claim")

	// ErrInstructionUnpack indicates a truncated instruction payload.
	ErrInstructionUnpack = errors.New("instruction unpack error")

	// ErrInvalidAccountOwner indicates a record is not owned by the
	// expected program.
	ErrInvalidAccountOwner = errors.New("invalid account owner")

	// ErrNotRentExempt indicates a new record does not carry the minimum
	// rent-exempt balance.
	ErrNotRentExempt = errors.New("account not rent exempt")

	// ErrAlreadyInUse indicates a record is already initialized.
	ErrAlreadyInUse = errors.New("account already in use")

	// ErrInvalidSigner indicates a required signer is missing.
	ErrInvalidSigner = errors.New("required signature missing")

	// ErrInvalidStakeOwner indicates the stake user record does not belong
	// to the claimed owner or pool.
	ErrInvalidStakeOwner = errors.New("invalid stake owner")

	// ErrInvalidTokenMint indicates a token account or mint does not match
	// the pool's configured mint.
	ErrInvalidTokenMint = errors.New("invalid token mint")

	// ErrInvalidTokenAccount indicates a malformed or unexpected token
	// account.
	ErrInvalidTokenAccount = errors.New("invalid token account")

	// ErrInsufficientFunds indicates the source balance cannot cover a
	// stake.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInvalidPoolAuthority indicates the supplied authority does not
	// match the derived pool authority.
	ErrInvalidPoolAuthority = errors.New("invalid pool authority")

	// ErrTokenInitializeAccountFailed indicates the token ledger rejected
	// an account initialization.
	ErrTokenInitializeAccountFailed = errors.New("token initialize account failed")

	// ErrTokenInitializeMintFailed indicates the token ledger rejected a
	// mint initialization.
	ErrTokenInitializeMintFailed = errors.New("token initialize mint failed")

	// ErrTokenTransferFailed indicates the token ledger rejected a transfer.
	ErrTokenTransferFailed = errors.New("token transfer failed")

	// ErrTokenMintToFailed indicates the token ledger rejected a mint-to.
	ErrTokenMintToFailed = errors.New("token mint-to failed")

	// ErrInvalidAccountData indicates a record buffer that cannot be
	// decoded (wrong size or corrupt boolean field).
	ErrInvalidAccountData = errors.New("invalid account data")
)

// errorCodes assigns each error a stable discriminant for external callers.
// The first four match the on-chain enum ordering of the original program.
var errorCodes = map[error]uint32{
	ErrIncorrectInstruction:         0,
	ErrCalculationFailure:           1,
	ErrInsufficientLiquidity:        2,
	ErrInsufficientClaimAmount:      3,
	ErrInstructionUnpack:            4,
	ErrInvalidAccountOwner:          5,
	ErrNotRentExempt:                6,
	ErrAlreadyInUse:                 7,
	ErrInvalidSigner:                8,
	ErrInvalidStakeOwner:            9,
	ErrInvalidTokenMint:             10,
	ErrInvalidTokenAccount:          11,
	ErrInsufficientFunds:            12,
	ErrInvalidPoolAuthority:         13,
	ErrTokenInitializeAccountFailed: 14,
	ErrTokenInitializeMintFailed:    15,
	ErrTokenTransferFailed:          16,
	ErrTokenMintToFailed:            17,
	ErrInvalidAccountData:           18,
}

// Code returns the stable discriminant code for a program error.
// Wrapped errors are unwrapped before lookup.
func Code(err error) (uint32, bool) {
	for e, code := range errorCodes {
		if errors.Is(err, e) {
			return code, true
		}
	}
	return 0, false
}
