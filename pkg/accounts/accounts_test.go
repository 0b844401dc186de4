package accounts

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"testing"

	"github.com/fgrust/reward-pool/pkg/types"
)

func testPubkey(seed string) types.Pubkey {
	return types.Pubkey(sha256.Sum256([]byte(seed)))
}

func testAccount(lamports types.Lamports, data []byte, owner string) *types.Account {
	return &types.Account{
		Lamports: lamports,
		Data:     data,
		Owner:    testPubkey(owner),
	}
}

// exerciseDB runs the shared AccountsDB contract against an implementation.
func exerciseDB(t *testing.T, db AccountsDB) {
	t.Helper()

	pubkey := testPubkey("account-1")

	got, err := db.GetAccount(pubkey)
	if err != nil {
		t.Fatalf("GetAccount on empty store: %v", err)
	}
	if got != nil {
		t.Fatal("expected nil for missing account")
	}
	if db.HasAccount(pubkey) {
		t.Fatal("HasAccount true for missing account")
	}

	account := testAccount(1000, []byte{1, 2, 3}, "owner")
	if err := db.SetAccount(pubkey, account); err != nil {
		t.Fatalf("SetAccount: %v", err)
	}
	if !db.HasAccount(pubkey) {
		t.Error("HasAccount false after SetAccount")
	}
	if count := db.GetAccountsCount(); count != 1 {
		t.Errorf("count = %d, want 1", count)
	}

	got, err = db.GetAccount(pubkey)
	if err != nil {
		t.Fatalf("GetAccount: %v", err)
	}
	if got.Lamports != 1000 || !bytes.Equal(got.Data, []byte{1, 2, 3}) || got.Owner != account.Owner {
		t.Errorf("loaded account mismatch: %+v", got)
	}

	// Overwriting must not bump the count.
	account.Lamports = 2000
	if err := db.SetAccount(pubkey, account); err != nil {
		t.Fatalf("SetAccount overwrite: %v", err)
	}
	if count := db.GetAccountsCount(); count != 1 {
		t.Errorf("count after overwrite = %d, want 1", count)
	}

	second := testPubkey("account-2")
	if err := db.SetAccount(second, testAccount(5, nil, "owner")); err != nil {
		t.Fatalf("SetAccount second: %v", err)
	}

	visited := 0
	err = db.ForEach(func(pubkey types.Pubkey, account *types.Account) error {
		visited++
		return nil
	})
	if err != nil {
		t.Fatalf("ForEach: %v", err)
	}
	if visited != 2 {
		t.Errorf("ForEach visited %d accounts, want 2", visited)
	}

	if err := db.DeleteAccount(pubkey); err != nil {
		t.Fatalf("DeleteAccount: %v", err)
	}
	if db.HasAccount(pubkey) {
		t.Error("HasAccount true after delete")
	}
	if count := db.GetAccountsCount(); count != 1 {
		t.Errorf("count after delete = %d, want 1", count)
	}

	// Deleting again is a no-op.
	if err := db.DeleteAccount(pubkey); err != nil {
		t.Fatalf("double DeleteAccount: %v", err)
	}
	if count := db.GetAccountsCount(); count != 1 {
		t.Errorf("count after double delete = %d, want 1", count)
	}
}

func TestMemoryDB(t *testing.T) {
	db := NewMemoryDB()
	defer db.Close()
	exerciseDB(t, db)
}

func TestMemoryDBClonesAccounts(t *testing.T) {
	db := NewMemoryDB()
	defer db.Close()

	pubkey := testPubkey("account")
	account := testAccount(1, []byte{1, 2, 3}, "owner")
	if err := db.SetAccount(pubkey, account); err != nil {
		t.Fatalf("SetAccount: %v", err)
	}

	// Mutating the caller's copy must not leak into the store.
	account.Data[0] = 99
	got, err := db.GetAccount(pubkey)
	if err != nil {
		t.Fatalf("GetAccount: %v", err)
	}
	if got.Data[0] != 1 {
		t.Error("store shares the caller's data buffer")
	}

	// Nor the other way around.
	got.Data[1] = 99
	again, err := db.GetAccount(pubkey)
	if err != nil {
		t.Fatalf("GetAccount: %v", err)
	}
	if again.Data[1] != 2 {
		t.Error("loaded account shares the stored buffer")
	}
}

func TestBadgerDB(t *testing.T) {
	db, err := NewBadgerDB(t.TempDir())
	if err != nil {
		t.Fatalf("NewBadgerDB: %v", err)
	}
	defer db.Close()
	exerciseDB(t, db)
}

func TestBadgerDBReopenKeepsAccounts(t *testing.T) {
	dir := t.TempDir()
	pubkey := testPubkey("persistent")

	db, err := NewBadgerDB(dir)
	if err != nil {
		t.Fatalf("NewBadgerDB: %v", err)
	}
	if err := db.SetAccount(pubkey, testAccount(77, []byte{9}, "owner")); err != nil {
		t.Fatalf("SetAccount: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := NewBadgerDB(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	if count := reopened.GetAccountsCount(); count != 1 {
		t.Errorf("count after reopen = %d, want 1", count)
	}
	got, err := reopened.GetAccount(pubkey)
	if err != nil || got == nil {
		t.Fatalf("GetAccount after reopen: %v", err)
	}
	if got.Lamports != 77 || !bytes.Equal(got.Data, []byte{9}) {
		t.Errorf("account after reopen: %+v", got)
	}
}

func TestAccountRecordRoundTrip(t *testing.T) {
	account := &types.Account{
		Lamports:   12345,
		Data:       []byte{10, 20, 30, 40},
		Owner:      testPubkey("owner"),
		Executable: true,
		RentEpoch:  7,
	}

	record, err := SerializeAccount(account)
	if err != nil {
		t.Fatalf("SerializeAccount: %v", err)
	}
	got, err := DeserializeAccount(record)
	if err != nil {
		t.Fatalf("DeserializeAccount: %v", err)
	}

	if got.Lamports != account.Lamports || !bytes.Equal(got.Data, account.Data) ||
		got.Owner != account.Owner || got.Executable != account.Executable ||
		got.RentEpoch != account.RentEpoch {
		t.Errorf("round trip mismatch: got %+v, want %+v", got, account)
	}
}

func TestDeserializeAccountMalformed(t *testing.T) {
	if _, err := DeserializeAccount(make([]byte, recordMinSize-1)); !errors.Is(err, ErrInvalidRecord) {
		t.Errorf("short record: got %v, want ErrInvalidRecord", err)
	}

	account := testAccount(1, []byte{1, 2, 3}, "owner")
	record, err := SerializeAccount(account)
	if err != nil {
		t.Fatalf("SerializeAccount: %v", err)
	}
	if _, err := DeserializeAccount(record[:len(record)-4]); !errors.Is(err, ErrInvalidRecord) {
		t.Errorf("truncated record: got %v, want ErrInvalidRecord", err)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	source := NewMemoryDB()
	defer source.Close()

	for i := 0; i < 10; i++ {
		pubkey := testPubkey(string(rune('a' + i)))
		account := testAccount(types.Lamports(i*100), []byte{byte(i), byte(i + 1)}, "owner")
		account.RentEpoch = types.Epoch(i)
		if err := source.SetAccount(pubkey, account); err != nil {
			t.Fatalf("SetAccount: %v", err)
		}
	}

	var buf bytes.Buffer
	if err := ExportSnapshot(source, &buf); err != nil {
		t.Fatalf("ExportSnapshot: %v", err)
	}

	restored := NewMemoryDB()
	defer restored.Close()

	imported, err := ImportSnapshot(restored, &buf)
	if err != nil {
		t.Fatalf("ImportSnapshot: %v", err)
	}
	if imported != 10 {
		t.Errorf("imported %d accounts, want 10", imported)
	}

	err = source.ForEach(func(pubkey types.Pubkey, want *types.Account) error {
		got, err := restored.GetAccount(pubkey)
		if err != nil || got == nil {
			t.Fatalf("restored account %s missing: %v", pubkey, err)
		}
		if got.Lamports != want.Lamports || !bytes.Equal(got.Data, want.Data) ||
			got.Owner != want.Owner || got.RentEpoch != want.RentEpoch {
			t.Errorf("restored %s mismatch: got %+v, want %+v", pubkey, got, want)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("ForEach: %v", err)
	}
}

func TestImportSnapshotRejectsGarbage(t *testing.T) {
	db := NewMemoryDB()
	defer db.Close()

	if _, err := ImportSnapshot(db, bytes.NewReader([]byte("not a snapshot"))); err == nil {
		t.Error("expected an error importing garbage")
	}
}

func TestSnapshotFileRoundTrip(t *testing.T) {
	source := NewMemoryDB()
	defer source.Close()

	pubkey := testPubkey("only")
	if err := source.SetAccount(pubkey, testAccount(55, []byte{5}, "owner")); err != nil {
		t.Fatalf("SetAccount: %v", err)
	}

	path := t.TempDir() + "/accounts.snap"
	if err := ExportSnapshotFile(source, path); err != nil {
		t.Fatalf("ExportSnapshotFile: %v", err)
	}

	restored := NewMemoryDB()
	defer restored.Close()
	imported, err := ImportSnapshotFile(restored, path)
	if err != nil {
		t.Fatalf("ImportSnapshotFile: %v", err)
	}
	if imported != 1 {
		t.Errorf("imported %d accounts, want 1", imported)
	}
	if !restored.HasAccount(pubkey) {
		t.Error("restored store missing the account")
	}
}
