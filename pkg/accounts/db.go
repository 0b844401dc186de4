// Package accounts provides account storage for the reward pool runtime:
// an in-memory store for tests and tooling, a BadgerDB-backed persistent
// store, and compressed snapshot export/import between them.
package accounts

import (
	"github.com/fgrust/reward-pool/pkg/types"
)

// AccountsDB is the storage interface the bank executes against.
type AccountsDB interface {
	// GetAccount retrieves an account by pubkey.
	// Returns nil, nil if the account does not exist.
	GetAccount(pubkey types.Pubkey) (*types.Account, error)

	// SetAccount stores an account under the pubkey.
	SetAccount(pubkey types.Pubkey, account *types.Account) error

	// DeleteAccount removes an account. Deleting a missing account is not
	// an error.
	DeleteAccount(pubkey types.Pubkey) error

	// HasAccount reports whether the account exists.
	HasAccount(pubkey types.Pubkey) bool

	// GetAccountsCount returns the number of stored accounts.
	GetAccountsCount() uint64

	// ForEach visits every stored account. Iteration stops at the first
	// error returned by fn.
	ForEach(fn func(pubkey types.Pubkey, account *types.Account) error) error

	// Close releases the store.
	Close() error
}
