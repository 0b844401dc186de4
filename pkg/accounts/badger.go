package accounts

import (
	"fmt"
	"sync/atomic"

	"github.com/dgraph-io/badger/v4"

	"github.com/fgrust/reward-pool/pkg/types"
)

// accountKeyPrefix namespaces account records inside the key space so
// other record kinds can share the same database later.
const accountKeyPrefix = "account:"

// BadgerDB is a persistent AccountsDB backed by BadgerDB.
type BadgerDB struct {
	db    *badger.DB
	count atomic.Uint64
}

// NewBadgerDB opens (or creates) a persistent account store at path.
func NewBadgerDB(path string) (*BadgerDB, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db: %w", err)
	}

	bdb := &BadgerDB{db: db}
	count, err := bdb.countAccounts()
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("count accounts: %w", err)
	}
	bdb.count.Store(count)

	return bdb, nil
}

func accountKey(pubkey types.Pubkey) []byte {
	key := make([]byte, len(accountKeyPrefix)+32)
	copy(key, accountKeyPrefix)
	copy(key[len(accountKeyPrefix):], pubkey[:])
	return key
}

// GetAccount retrieves an account by pubkey.
// Returns nil, nil if the account does not exist.
func (db *BadgerDB) GetAccount(pubkey types.Pubkey) (*types.Account, error) {
	var account *types.Account

	err := db.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(accountKey(pubkey))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			var decErr error
			account, decErr = DeserializeAccount(val)
			return decErr
		})
	})
	if err != nil {
		return nil, fmt.Errorf("get account %s: %w", pubkey, err)
	}

	return account, nil
}

// SetAccount stores an account under the pubkey.
func (db *BadgerDB) SetAccount(pubkey types.Pubkey, account *types.Account) error {
	data, err := SerializeAccount(account)
	if err != nil {
		return fmt.Errorf("serialize account %s: %w", pubkey, err)
	}

	key := accountKey(pubkey)
	err = db.db.Update(func(txn *badger.Txn) error {
		_, getErr := txn.Get(key)
		isNew := getErr == badger.ErrKeyNotFound

		if err := txn.Set(key, data); err != nil {
			return err
		}
		if isNew {
			db.count.Add(1)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("set account %s: %w", pubkey, err)
	}

	return nil
}

// DeleteAccount removes an account.
func (db *BadgerDB) DeleteAccount(pubkey types.Pubkey) error {
	key := accountKey(pubkey)

	err := db.db.Update(func(txn *badger.Txn) error {
		_, getErr := txn.Get(key)
		if getErr == badger.ErrKeyNotFound {
			return nil
		}
		if getErr != nil {
			return getErr
		}

		if err := txn.Delete(key); err != nil {
			return err
		}
		db.count.Add(^uint64(0))
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete account %s: %w", pubkey, err)
	}

	return nil
}

// HasAccount reports whether the account exists.
func (db *BadgerDB) HasAccount(pubkey types.Pubkey) bool {
	var exists bool
	db.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(accountKey(pubkey))
		exists = err == nil
		return nil
	})
	return exists
}

// GetAccountsCount returns the number of stored accounts.
func (db *BadgerDB) GetAccountsCount() uint64 {
	return db.count.Load()
}

// ForEach visits every stored account in key order.
func (db *BadgerDB) ForEach(fn func(pubkey types.Pubkey, account *types.Account) error) error {
	prefix := []byte(accountKeyPrefix)

	return db.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			key := item.Key()
			if len(key) != len(accountKeyPrefix)+32 {
				continue
			}

			var pubkey types.Pubkey
			copy(pubkey[:], key[len(accountKeyPrefix):])

			var account *types.Account
			err := item.Value(func(val []byte) error {
				var decErr error
				account, decErr = DeserializeAccount(val)
				return decErr
			})
			if err != nil {
				return err
			}
			if err := fn(pubkey, account); err != nil {
				return err
			}
		}
		return nil
	})
}

// Close closes the underlying database.
func (db *BadgerDB) Close() error {
	return db.db.Close()
}

func (db *BadgerDB) countAccounts() (uint64, error) {
	var count uint64
	prefix := []byte(accountKeyPrefix)

	err := db.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			count++
		}
		return nil
	})

	return count, err
}

var _ AccountsDB = (*BadgerDB)(nil)
