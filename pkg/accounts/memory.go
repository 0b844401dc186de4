package accounts

import (
	"sync"

	"github.com/fgrust/reward-pool/pkg/types"
)

// MemoryDB is an in-memory AccountsDB. It backs tests and the demo
// command; nothing survives process exit.
type MemoryDB struct {
	mu       sync.RWMutex
	accounts map[types.Pubkey]*types.Account
}

// NewMemoryDB creates an empty in-memory account store.
func NewMemoryDB() *MemoryDB {
	return &MemoryDB{
		accounts: make(map[types.Pubkey]*types.Account),
	}
}

// GetAccount retrieves an account by pubkey.
// Returns nil, nil if the account does not exist.
func (db *MemoryDB) GetAccount(pubkey types.Pubkey) (*types.Account, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	account, ok := db.accounts[pubkey]
	if !ok {
		return nil, nil
	}
	// Clone so the caller cannot mutate stored state in place.
	return account.Clone(), nil
}

// SetAccount stores an account under the pubkey.
func (db *MemoryDB) SetAccount(pubkey types.Pubkey, account *types.Account) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.accounts[pubkey] = account.Clone()
	return nil
}

// DeleteAccount removes an account.
func (db *MemoryDB) DeleteAccount(pubkey types.Pubkey) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	delete(db.accounts, pubkey)
	return nil
}

// HasAccount reports whether the account exists.
func (db *MemoryDB) HasAccount(pubkey types.Pubkey) bool {
	db.mu.RLock()
	defer db.mu.RUnlock()

	_, ok := db.accounts[pubkey]
	return ok
}

// GetAccountsCount returns the number of stored accounts.
func (db *MemoryDB) GetAccountsCount() uint64 {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return uint64(len(db.accounts))
}

// ForEach visits every stored account in unspecified order.
func (db *MemoryDB) ForEach(fn func(pubkey types.Pubkey, account *types.Account) error) error {
	db.mu.RLock()
	defer db.mu.RUnlock()

	for pubkey, account := range db.accounts {
		if err := fn(pubkey, account.Clone()); err != nil {
			return err
		}
	}
	return nil
}

// Close drops all stored accounts.
func (db *MemoryDB) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.accounts = make(map[types.Pubkey]*types.Account)
	return nil
}

var _ AccountsDB = (*MemoryDB)(nil)
