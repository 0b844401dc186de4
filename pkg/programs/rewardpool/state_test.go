package rewardpool

import (
	"crypto/sha256"
	"errors"
	"math"
	"testing"

	"github.com/fgrust/reward-pool/pkg/types"
)

// testPubkey creates a deterministic pubkey from a seed string.
func testPubkey(seed string) types.Pubkey {
	return types.Pubkey(sha256.Sum256([]byte(seed)))
}

func TestPoolSerializeRoundTrip(t *testing.T) {
	pool := &Pool{
		Initialized:       true,
		BumpSeed:          254,
		StakeMint:         testPubkey("stake-mint"),
		Reserve:           testPubkey("reserve"),
		RewardMint:        testPubkey("reward-mint"),
		RewardNumerator:   7,
		RewardDenominator: 10_000,
	}

	data := pool.Serialize()
	if len(data) != PoolSize {
		t.Fatalf("serialized pool is %d bytes, want %d", len(data), PoolSize)
	}

	got, err := DeserializePool(data)
	if err != nil {
		t.Fatalf("DeserializePool: %v", err)
	}
	if *got != *pool {
		t.Errorf("round trip mismatch: got %+v, want %+v", got, pool)
	}
}

func TestStakeUserSerializeRoundTrip(t *testing.T) {
	user := &StakeUser{
		Initialized:  true,
		Owner:        testPubkey("owner"),
		Pool:         testPubkey("pool"),
		StakedAmount: 123_456_789,
		RewardOwed:   42,
		LastUpdate:   1_700_000_000,
	}

	data := user.Serialize()
	if len(data) != StakeUserSize {
		t.Fatalf("serialized stake user is %d bytes, want %d", len(data), StakeUserSize)
	}

	got, err := DeserializeStakeUser(data)
	if err != nil {
		t.Fatalf("DeserializeStakeUser: %v", err)
	}
	if *got != *user {
		t.Errorf("round trip mismatch: got %+v, want %+v", got, user)
	}
}

func TestDeserializeShortBuffers(t *testing.T) {
	if _, err := DeserializePool(make([]byte, PoolSize-1)); !errors.Is(err, ErrInvalidAccountData) {
		t.Errorf("short pool buffer: got %v, want ErrInvalidAccountData", err)
	}
	if _, err := DeserializeStakeUser(make([]byte, StakeUserSize-1)); !errors.Is(err, ErrInvalidAccountData) {
		t.Errorf("short stake user buffer: got %v, want ErrInvalidAccountData", err)
	}
}

func TestDeserializeInvalidBoolByte(t *testing.T) {
	data := make([]byte, PoolSize)
	data[0] = 2
	if _, err := DeserializePool(data); !errors.Is(err, ErrInvalidAccountData) {
		t.Errorf("bool byte 2: got %v, want ErrInvalidAccountData", err)
	}
}

func TestUpdateRewardOwedOneDay(t *testing.T) {
	user := &StakeUser{
		Initialized:  true,
		StakedAmount: 10_000_000_000,
		LastUpdate:   0,
	}

	// 1/1000 daily over one full day: 10_000_000_000 / 1000 = 10_000_000.
	if err := user.UpdateRewardOwed(1, 1000, SecondsPerDay); err != nil {
		t.Fatalf("UpdateRewardOwed: %v", err)
	}
	if user.RewardOwed != 10_000_000 {
		t.Errorf("reward owed = %d, want 10_000_000", user.RewardOwed)
	}
	if user.LastUpdate != SecondsPerDay {
		t.Errorf("last update = %d, want %d", user.LastUpdate, SecondsPerDay)
	}
}

func TestUpdateRewardOwedSameTimestamp(t *testing.T) {
	user := &StakeUser{
		Initialized:  true,
		StakedAmount: 10_000_000_000,
		RewardOwed:   5,
		LastUpdate:   1000,
	}

	if err := user.UpdateRewardOwed(1, 1000, 1000); err != nil {
		t.Fatalf("UpdateRewardOwed at same timestamp: %v", err)
	}
	if user.RewardOwed != 5 || user.LastUpdate != 1000 {
		t.Errorf("zero elapsed mutated state: owed=%d last=%d", user.RewardOwed, user.LastUpdate)
	}
}

func TestUpdateRewardOwedClockBehind(t *testing.T) {
	user := &StakeUser{
		Initialized:  true,
		StakedAmount: 10_000_000_000,
		RewardOwed:   5,
		LastUpdate:   1000,
	}

	if err := user.UpdateRewardOwed(1, 1000, 500); err != nil {
		t.Fatalf("UpdateRewardOwed with clock behind: %v", err)
	}
	if user.RewardOwed != 5 || user.LastUpdate != 1000 {
		t.Errorf("negative elapsed mutated state: owed=%d last=%d", user.RewardOwed, user.LastUpdate)
	}
}

func TestUpdateRewardOwedSplitInterval(t *testing.T) {
	// When the per-interval divisions are exact, accruing over two half
	// days must equal accruing over the full day in one step.
	single := &StakeUser{Initialized: true, StakedAmount: 10_000_000_000}
	if err := single.UpdateRewardOwed(1, 1000, SecondsPerDay); err != nil {
		t.Fatalf("single interval: %v", err)
	}

	split := &StakeUser{Initialized: true, StakedAmount: 10_000_000_000}
	if err := split.UpdateRewardOwed(1, 1000, SecondsPerDay/2); err != nil {
		t.Fatalf("first half: %v", err)
	}
	if err := split.UpdateRewardOwed(1, 1000, SecondsPerDay); err != nil {
		t.Fatalf("second half: %v", err)
	}

	if split.RewardOwed != single.RewardOwed {
		t.Errorf("split accrual = %d, single accrual = %d", split.RewardOwed, single.RewardOwed)
	}
}

func TestUpdateRewardOwedOverflow(t *testing.T) {
	user := &StakeUser{
		Initialized:  true,
		StakedAmount: math.MaxUint64,
		RewardOwed:   7,
		LastUpdate:   100,
	}

	err := user.UpdateRewardOwed(2, 1, SecondsPerDay)
	if !errors.Is(err, ErrCalculationFailure) {
		t.Fatalf("overflowing accrual: got %v, want ErrCalculationFailure", err)
	}
	if user.RewardOwed != 7 || user.LastUpdate != 100 {
		t.Errorf("failed accrual mutated state: owed=%d last=%d", user.RewardOwed, user.LastUpdate)
	}
}

func TestUpdateRewardOwedZeroDenominator(t *testing.T) {
	user := &StakeUser{Initialized: true, StakedAmount: 1000}
	if err := user.UpdateRewardOwed(1, 0, SecondsPerDay); !errors.Is(err, ErrCalculationFailure) {
		t.Errorf("zero denominator: got %v, want ErrCalculationFailure", err)
	}
}

func TestStakeOverflow(t *testing.T) {
	user := &StakeUser{Initialized: true, StakedAmount: math.MaxUint64}
	if err := user.Stake(1); !errors.Is(err, ErrCalculationFailure) {
		t.Errorf("stake overflow: got %v, want ErrCalculationFailure", err)
	}
	if user.StakedAmount != math.MaxUint64 {
		t.Errorf("failed stake mutated balance: %d", user.StakedAmount)
	}
}

func TestUnstakeTooMuch(t *testing.T) {
	user := &StakeUser{Initialized: true, StakedAmount: 100}
	if err := user.Unstake(101); !errors.Is(err, ErrInsufficientLiquidity) {
		t.Errorf("unstake above balance: got %v, want ErrInsufficientLiquidity", err)
	}
	if user.StakedAmount != 100 {
		t.Errorf("failed unstake mutated balance: %d", user.StakedAmount)
	}
}

func TestClaim(t *testing.T) {
	user := &StakeUser{Initialized: true, RewardOwed: 12345}

	amount, err := user.Claim()
	if err != nil {
		t.Fatalf("Claim: %v", err)
	}
	if amount != 12345 {
		t.Errorf("claimed %d, want 12345", amount)
	}
	if user.RewardOwed != 0 {
		t.Errorf("reward owed after claim = %d, want 0", user.RewardOwed)
	}

	if _, err := user.Claim(); !errors.Is(err, ErrInsufficientClaimAmount) {
		t.Errorf("second claim: got %v, want ErrInsufficientClaimAmount", err)
	}
}

func TestErrorCodesStable(t *testing.T) {
	cases := []struct {
		err  error
		code uint32
	}{
		{ErrIncorrectInstruction, 0},
		{ErrCalculationFailure, 1},
		{ErrInsufficientLiquidity, 2},
		{ErrInsufficientClaimAmount, 3},
	}
	for _, tc := range cases {
		code, ok := Code(tc.err)
		if !ok {
			t.Errorf("Code(%v): not found", tc.err)
			continue
		}
		if code != tc.code {
			t.Errorf("Code(%v) = %d, want %d", tc.err, code, tc.code)
		}
	}

	if _, ok := Code(errors.New("unrelated")); ok {
		t.Error("Code returned a discriminant for an unrelated error")
	}
}
