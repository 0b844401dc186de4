package runtime

import (
	"crypto/sha256"
	"testing"

	"github.com/fgrust/reward-pool/pkg/types"
)

func testPubkey(seed string) types.Pubkey {
	return types.Pubkey(sha256.Sum256([]byte(seed)))
}

func TestFindProgramAddressDeterministic(t *testing.T) {
	programID := testPubkey("program")
	base := testPubkey("base")
	seeds := [][]byte{base[:]}

	addr1, bump1, ok1 := FindProgramAddress(seeds, programID)
	addr2, bump2, ok2 := FindProgramAddress(seeds, programID)

	if !ok1 || !ok2 {
		t.Fatal("FindProgramAddress found no valid address")
	}
	if addr1 != addr2 || bump1 != bump2 {
		t.Errorf("derivation not deterministic: (%s, %d) vs (%s, %d)", addr1, bump1, addr2, bump2)
	}
}

func TestFindProgramAddressMatchesCreate(t *testing.T) {
	programID := testPubkey("program")
	base := testPubkey("base")

	addr, bump, ok := FindProgramAddress([][]byte{base[:]}, programID)
	if !ok {
		t.Fatal("FindProgramAddress found no valid address")
	}

	recreated, valid := CreateProgramAddress([][]byte{base[:], {bump}}, programID)
	if !valid {
		t.Fatal("CreateProgramAddress rejected the found bump")
	}
	if recreated != addr {
		t.Errorf("recreated %s, want %s", recreated, addr)
	}
}

func TestFindProgramAddressDistinctInputs(t *testing.T) {
	programID := testPubkey("program")
	a := testPubkey("seed-a")
	b := testPubkey("seed-b")

	addrA, _, okA := FindProgramAddress([][]byte{a[:]}, programID)
	addrB, _, okB := FindProgramAddress([][]byte{b[:]}, programID)
	if !okA || !okB {
		t.Fatal("FindProgramAddress found no valid address")
	}
	if addrA == addrB {
		t.Error("distinct seeds derived the same address")
	}

	otherProgram := testPubkey("other-program")
	addrC, _, okC := FindProgramAddress([][]byte{a[:]}, otherProgram)
	if !okC {
		t.Fatal("FindProgramAddress found no valid address")
	}
	if addrA == addrC {
		t.Error("distinct programs derived the same address")
	}
}

func TestCreateProgramAddressSeedLimits(t *testing.T) {
	programID := testPubkey("program")

	long := make([]byte, MaxSeedLen+1)
	if _, ok := CreateProgramAddress([][]byte{long}, programID); ok {
		t.Error("accepted a seed above the length limit")
	}

	many := make([][]byte, MaxSeeds+1)
	for i := range many {
		many[i] = []byte{byte(i)}
	}
	if _, ok := CreateProgramAddress(many, programID); ok {
		t.Error("accepted more seeds than the limit")
	}
}
