package token

import (
	"crypto/sha256"
	"errors"
	"math"
	"testing"

	"github.com/fgrust/reward-pool/pkg/runtime"
	"github.com/fgrust/reward-pool/pkg/types"
)

func testPubkey(seed string) types.Pubkey {
	return types.Pubkey(sha256.Sum256([]byte(seed)))
}

// run executes one token instruction against the given account infos.
func run(t *testing.T, infos []*runtime.AccountInfo, inst types.Instruction) error {
	t.Helper()
	ctx := runtime.NewExecutionContext(types.TokenProgramID, infos, inst.Data,
		types.Clock{}, types.DefaultRent())
	return New().Execute(ctx)
}

func mintInfo(pubkey types.Pubkey, mint *Mint) *runtime.AccountInfo {
	data := make([]byte, MintSize)
	if mint != nil {
		copy(data, mint.Serialize())
	}
	return &runtime.AccountInfo{Pubkey: pubkey, Data: data, Owner: types.TokenProgramID, IsWritable: true}
}

func tokenAccountInfo(pubkey types.Pubkey, account *TokenAccount) *runtime.AccountInfo {
	data := make([]byte, TokenAccountSize)
	if account != nil {
		copy(data, account.Serialize())
	}
	return &runtime.AccountInfo{Pubkey: pubkey, Data: data, Owner: types.TokenProgramID, IsWritable: true}
}

func signerInfo(pubkey types.Pubkey) *runtime.AccountInfo {
	return &runtime.AccountInfo{Pubkey: pubkey, IsSigner: true}
}

func TestInitializeMint(t *testing.T) {
	mintKey := testPubkey("mint")
	authority := testPubkey("authority")

	info := mintInfo(mintKey, nil)
	inst := NewInitializeMintInstruction(types.TokenProgramID, mintKey, authority, 6)
	if err := run(t, []*runtime.AccountInfo{info}, inst); err != nil {
		t.Fatalf("InitializeMint: %v", err)
	}

	mint, err := DeserializeMint(info.Data)
	if err != nil {
		t.Fatalf("DeserializeMint: %v", err)
	}
	if !mint.IsInitialized || mint.Decimals != 6 || mint.Supply != 0 {
		t.Errorf("mint = %+v", mint)
	}
	if !mint.MintAuthority.IsSome || mint.MintAuthority.Value != authority {
		t.Error("mint authority not set")
	}

	if err := run(t, []*runtime.AccountInfo{info}, inst); !errors.Is(err, ErrAlreadyInitialized) {
		t.Errorf("second InitializeMint: got %v, want ErrAlreadyInitialized", err)
	}
}

func TestInitializeAccount(t *testing.T) {
	mintKey := testPubkey("mint")
	owner := testPubkey("owner")
	accountKey := testPubkey("account")

	authority := testPubkey("authority")
	mint := mintInfo(mintKey, NewMint(6, &authority, nil))
	account := tokenAccountInfo(accountKey, nil)
	ownerInfo := &runtime.AccountInfo{Pubkey: owner}

	inst := NewInitializeAccountInstruction(types.TokenProgramID, accountKey, mintKey, owner)
	if err := run(t, []*runtime.AccountInfo{account, mint, ownerInfo}, inst); err != nil {
		t.Fatalf("InitializeAccount: %v", err)
	}

	got, err := DeserializeTokenAccount(account.Data)
	if err != nil {
		t.Fatalf("DeserializeTokenAccount: %v", err)
	}
	if got.Mint != mintKey || got.Owner != owner || got.State != AccountStateInitialized {
		t.Errorf("account = %+v", got)
	}
}

func TestInitializeAccountRequiresInitializedMint(t *testing.T) {
	mintKey := testPubkey("mint")
	accountKey := testPubkey("account")
	owner := testPubkey("owner")

	mint := mintInfo(mintKey, nil)
	account := tokenAccountInfo(accountKey, nil)
	ownerInfo := &runtime.AccountInfo{Pubkey: owner}

	inst := NewInitializeAccountInstruction(types.TokenProgramID, accountKey, mintKey, owner)
	err := run(t, []*runtime.AccountInfo{account, mint, ownerInfo}, inst)
	if !errors.Is(err, ErrInvalidMint) {
		t.Errorf("uninitialized mint: got %v, want ErrInvalidMint", err)
	}
}

func TestTransfer(t *testing.T) {
	mintKey := testPubkey("mint")
	owner := testPubkey("owner")

	source := NewTokenAccount(mintKey, owner)
	source.Amount = 100
	sourceInfo := tokenAccountInfo(testPubkey("source"), source)
	destInfo := tokenAccountInfo(testPubkey("dest"), NewTokenAccount(mintKey, testPubkey("other")))

	inst := NewTransferInstruction(types.TokenProgramID, sourceInfo.Pubkey, destInfo.Pubkey, owner, 60)
	if err := run(t, []*runtime.AccountInfo{sourceInfo, destInfo, signerInfo(owner)}, inst); err != nil {
		t.Fatalf("Transfer: %v", err)
	}

	gotSource, _ := DeserializeTokenAccount(sourceInfo.Data)
	gotDest, _ := DeserializeTokenAccount(destInfo.Data)
	if gotSource.Amount != 40 || gotDest.Amount != 60 {
		t.Errorf("balances after transfer: source=%d dest=%d", gotSource.Amount, gotDest.Amount)
	}
}

func TestTransferInsufficientFunds(t *testing.T) {
	mintKey := testPubkey("mint")
	owner := testPubkey("owner")

	source := NewTokenAccount(mintKey, owner)
	source.Amount = 10
	sourceInfo := tokenAccountInfo(testPubkey("source"), source)
	destInfo := tokenAccountInfo(testPubkey("dest"), NewTokenAccount(mintKey, owner))

	inst := NewTransferInstruction(types.TokenProgramID, sourceInfo.Pubkey, destInfo.Pubkey, owner, 11)
	err := run(t, []*runtime.AccountInfo{sourceInfo, destInfo, signerInfo(owner)}, inst)
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Errorf("overdrawn transfer: got %v, want ErrInsufficientFunds", err)
	}
}

func TestTransferRejectsMintMismatch(t *testing.T) {
	owner := testPubkey("owner")

	source := NewTokenAccount(testPubkey("mint-a"), owner)
	source.Amount = 10
	sourceInfo := tokenAccountInfo(testPubkey("source"), source)
	destInfo := tokenAccountInfo(testPubkey("dest"), NewTokenAccount(testPubkey("mint-b"), owner))

	inst := NewTransferInstruction(types.TokenProgramID, sourceInfo.Pubkey, destInfo.Pubkey, owner, 1)
	err := run(t, []*runtime.AccountInfo{sourceInfo, destInfo, signerInfo(owner)}, inst)
	if !errors.Is(err, ErrMintMismatch) {
		t.Errorf("cross-mint transfer: got %v, want ErrMintMismatch", err)
	}
}

func TestTransferRejectsWrongAuthority(t *testing.T) {
	mintKey := testPubkey("mint")
	owner := testPubkey("owner")
	intruder := testPubkey("intruder")

	source := NewTokenAccount(mintKey, owner)
	source.Amount = 10
	sourceInfo := tokenAccountInfo(testPubkey("source"), source)
	destInfo := tokenAccountInfo(testPubkey("dest"), NewTokenAccount(mintKey, owner))

	inst := NewTransferInstruction(types.TokenProgramID, sourceInfo.Pubkey, destInfo.Pubkey, intruder, 1)
	err := run(t, []*runtime.AccountInfo{sourceInfo, destInfo, signerInfo(intruder)}, inst)
	if !errors.Is(err, ErrOwnerMismatch) {
		t.Errorf("wrong authority: got %v, want ErrOwnerMismatch", err)
	}
}

func TestMintTo(t *testing.T) {
	mintKey := testPubkey("mint")
	authority := testPubkey("authority")
	owner := testPubkey("owner")

	mint := mintInfo(mintKey, NewMint(6, &authority, nil))
	destInfo := tokenAccountInfo(testPubkey("dest"), NewTokenAccount(mintKey, owner))

	inst := NewMintToInstruction(types.TokenProgramID, mintKey, destInfo.Pubkey, authority, 500)
	if err := run(t, []*runtime.AccountInfo{mint, destInfo, signerInfo(authority)}, inst); err != nil {
		t.Fatalf("MintTo: %v", err)
	}

	gotMint, _ := DeserializeMint(mint.Data)
	gotDest, _ := DeserializeTokenAccount(destInfo.Data)
	if gotMint.Supply != 500 || gotDest.Amount != 500 {
		t.Errorf("after mint: supply=%d balance=%d", gotMint.Supply, gotDest.Amount)
	}
}

func TestMintToSupplyOverflow(t *testing.T) {
	mintKey := testPubkey("mint")
	authority := testPubkey("authority")

	base := NewMint(6, &authority, nil)
	base.Supply = math.MaxUint64
	mint := mintInfo(mintKey, base)
	destInfo := tokenAccountInfo(testPubkey("dest"), NewTokenAccount(mintKey, testPubkey("owner")))

	inst := NewMintToInstruction(types.TokenProgramID, mintKey, destInfo.Pubkey, authority, 1)
	err := run(t, []*runtime.AccountInfo{mint, destInfo, signerInfo(authority)}, inst)
	if !errors.Is(err, ErrSupplyOverflow) {
		t.Errorf("supply overflow: got %v, want ErrSupplyOverflow", err)
	}
}

func TestMintToRejectsWrongAuthority(t *testing.T) {
	mintKey := testPubkey("mint")
	authority := testPubkey("authority")
	intruder := testPubkey("intruder")

	mint := mintInfo(mintKey, NewMint(6, &authority, nil))
	destInfo := tokenAccountInfo(testPubkey("dest"), NewTokenAccount(mintKey, testPubkey("owner")))

	inst := NewMintToInstruction(types.TokenProgramID, mintKey, destInfo.Pubkey, intruder, 1)
	err := run(t, []*runtime.AccountInfo{mint, destInfo, signerInfo(intruder)}, inst)
	if !errors.Is(err, ErrOwnerMismatch) {
		t.Errorf("wrong mint authority: got %v, want ErrOwnerMismatch", err)
	}
}

func TestMintRoundTrip(t *testing.T) {
	authority := testPubkey("authority")
	freeze := testPubkey("freeze")
	mint := NewMint(9, &authority, &freeze)
	mint.Supply = 42

	got, err := DeserializeMint(mint.Serialize())
	if err != nil {
		t.Fatalf("DeserializeMint: %v", err)
	}
	if *got != *mint {
		t.Errorf("round trip mismatch: got %+v, want %+v", got, mint)
	}
}

func TestTokenAccountRoundTrip(t *testing.T) {
	account := NewTokenAccount(testPubkey("mint"), testPubkey("owner"))
	account.Amount = 77
	account.Delegate = COption{IsSome: true, Value: testPubkey("delegate")}
	account.DelegatedAmount = 7

	got, err := DeserializeTokenAccount(account.Serialize())
	if err != nil {
		t.Fatalf("DeserializeTokenAccount: %v", err)
	}
	if *got != *account {
		t.Errorf("round trip mismatch: got %+v, want %+v", got, account)
	}
}
