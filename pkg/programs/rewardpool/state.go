package rewardpool

import (
	"encoding/binary"
	"fmt"

	"github.com/fgrust/reward-pool/pkg/types"
)

// Record sizes
const (
	// PoolSize is the size of a serialized Pool record (114 bytes).
	PoolSize = 1 + 1 + 32 + 32 + 32 + 8 + 8

	// StakeUserSize is the size of a serialized StakeUser record (89 bytes).
	StakeUserSize = 1 + 32 + 32 + 8 + 8 + 8
)

// SecondsPerDay is the accrual period the daily rate is expressed over.
const SecondsPerDay int64 = 86_400

// RewardMintDecimals is the decimal count of the reward mint created by
// CreatePool.
const RewardMintDecimals uint8 = 9

// Pool is the per-pool configuration record.
// Layout (114 bytes, little-endian, no padding):
//   - initialized: bool (1 byte)
//   - bump_seed: u8 (1 byte)
//   - stake_mint: Pubkey (32 bytes)
//   - reserve: Pubkey (32 bytes)
//   - reward_mint: Pubkey (32 bytes)
//   - reward_numerator: u64 (8 bytes)
//   - reward_denominator: u64 (8 bytes)
type Pool struct {
	Initialized       bool         // Initialization state
	BumpSeed          uint8        // Seed byte for deriving the pool authority
	StakeMint         types.Pubkey // Mint of the token being staked
	Reserve           types.Pubkey // Custodial reserve token account
	RewardMint        types.Pubkey // Mint of the reward token
	RewardNumerator   uint64       // Daily reward ratio numerator
	RewardDenominator uint64       // Daily reward ratio denominator
}

// DeserializePool decodes a Pool record from bytes.
func DeserializePool(data []byte) (*Pool, error) {
	if len(data) < PoolSize {
		return nil, fmt.Errorf("%w: pool record too short, expected %d bytes, got %d",
			ErrInvalidAccountData, PoolSize, len(data))
	}

	initialized, err := decodeBool(data[0])
	if err != nil {
		return nil, err
	}

	pool := &Pool{
		Initialized: initialized,
		BumpSeed:    data[1],
	}
	copy(pool.StakeMint[:], data[2:34])
	copy(pool.Reserve[:], data[34:66])
	copy(pool.RewardMint[:], data[66:98])
	pool.RewardNumerator = binary.LittleEndian.Uint64(data[98:106])
	pool.RewardDenominator = binary.LittleEndian.Uint64(data[106:114])
	return pool, nil
}

// Serialize encodes the Pool record to bytes.
func (p *Pool) Serialize() []byte {
	data := make([]byte, PoolSize)
	data[0] = encodeBool(p.Initialized)
	data[1] = p.BumpSeed
	copy(data[2:34], p.StakeMint[:])
	copy(data[34:66], p.Reserve[:])
	copy(data[66:98], p.RewardMint[:])
	binary.LittleEndian.PutUint64(data[98:106], p.RewardNumerator)
	binary.LittleEndian.PutUint64(data[106:114], p.RewardDenominator)
	return data
}

// StakeUser is the per-(pool, owner) bookkeeping record.
// Layout (89 bytes, little-endian, no padding):
//   - initialized: bool (1 byte)
//   - owner: Pubkey (32 bytes)
//   - pool: Pubkey (32 bytes)
//   - staked_amount: u64 (8 bytes)
//   - reward_owed: u64 (8 bytes)
//   - last_update: i64 (8 bytes)
type StakeUser struct {
	Initialized  bool         // Initialization state
	Owner        types.Pubkey // Wallet that controls this record
	Pool         types.Pubkey // Back-reference to the pool
	StakedAmount uint64       // Amount currently staked
	RewardOwed   uint64       // Reward accrued but not yet claimed
	LastUpdate   int64        // Unix timestamp of the last accrual
}

// DeserializeStakeUser decodes a StakeUser record from bytes.
func DeserializeStakeUser(data []byte) (*StakeUser, error) {
	if len(data) < StakeUserSize {
		return nil, fmt.Errorf("%w: stake user record too short, expected %d bytes, got %d",
			ErrInvalidAccountData, StakeUserSize, len(data))
	}

	initialized, err := decodeBool(data[0])
	if err != nil {
		return nil, err
	}

	user := &StakeUser{
		Initialized: initialized,
	}
	copy(user.Owner[:], data[1:33])
	copy(user.Pool[:], data[33:65])
	user.StakedAmount = binary.LittleEndian.Uint64(data[65:73])
	user.RewardOwed = binary.LittleEndian.Uint64(data[73:81])
	user.LastUpdate = int64(binary.LittleEndian.Uint64(data[81:89]))
	return user, nil
}

// Serialize encodes the StakeUser record to bytes.
func (u *StakeUser) Serialize() []byte {
	data := make([]byte, StakeUserSize)
	data[0] = encodeBool(u.Initialized)
	copy(data[1:33], u.Owner[:])
	copy(data[33:65], u.Pool[:])
	binary.LittleEndian.PutUint64(data[65:73], u.StakedAmount)
	binary.LittleEndian.PutUint64(data[73:81], u.RewardOwed)
	binary.LittleEndian.PutUint64(data[81:89], uint64(u.LastUpdate))
	return data
}

// Init marks the record initialized for the given pool and owner.
// Stake and reward balances start at zero.
func (u *StakeUser) Init(pool, owner types.Pubkey) {
	u.Initialized = true
	u.Pool = pool
	u.Owner = owner
}

// Stake adds amount to the staked balance with overflow checking.
func (u *StakeUser) Stake(amount uint64) error {
	staked, ok := checkedAdd(u.StakedAmount, amount)
	if !ok {
		return ErrCalculationFailure
	}
	u.StakedAmount = staked
	return nil
}

// Unstake removes amount from the staked balance. Amounts above the staked
// balance fail with ErrInsufficientLiquidity and leave state unchanged.
func (u *StakeUser) Unstake(amount uint64) error {
	if amount > u.StakedAmount {
		return ErrInsufficientLiquidity
	}
	u.StakedAmount -= amount
	return nil
}

// UpdateRewardOwed accrues the time-weighted reward since the last update.
//
//	owed += numerator * staked / denominator * elapsed / 86400
//
// evaluated strictly left to right with checked integer operations; the
// multiply-before-divide grouping is a determinism contract and must not be
// reordered. A non-positive elapsed time is skipped without mutation.
func (u *StakeUser) UpdateRewardOwed(numerator, denominator uint64, now int64) error {
	elapsed, ok := checkedSubInt64(now, u.LastUpdate)
	if !ok {
		return ErrCalculationFailure
	}
	if elapsed <= 0 {
		return nil
	}

	v, ok := checkedMul(numerator, u.StakedAmount)
	if !ok {
		return ErrCalculationFailure
	}
	v, ok = checkedDiv(v, denominator)
	if !ok {
		return ErrCalculationFailure
	}
	v, ok = checkedMul(v, uint64(elapsed))
	if !ok {
		return ErrCalculationFailure
	}
	v, ok = checkedDiv(v, uint64(SecondsPerDay))
	if !ok {
		return ErrCalculationFailure
	}
	owed, ok := checkedAdd(v, u.RewardOwed)
	if !ok {
		return ErrCalculationFailure
	}

	u.RewardOwed = owed
	u.LastUpdate = now
	return nil
}

// Claim zeroes the owed reward and returns the claimed amount. A zero
// balance fails with ErrInsufficientClaimAmount.
func (u *StakeUser) Claim() (uint64, error) {
	if u.RewardOwed == 0 {
		return 0, ErrInsufficientClaimAmount
	}
	amount := u.RewardOwed
	u.RewardOwed = 0
	return amount, nil
}

func encodeBool(b bool) byte {
	if b {
		return 1
	}
	return 0
}

func decodeBool(b byte) (bool, error) {
	switch b {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, fmt.Errorf("%w: invalid bool byte %#x", ErrInvalidAccountData, b)
	}
}

func checkedAdd(a, b uint64) (uint64, bool) {
	sum := a + b
	if sum < a {
		return 0, false
	}
	return sum, true
}

func checkedMul(a, b uint64) (uint64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	product := a * b
	if product/a != b {
		return 0, false
	}
	return product, true
}

func checkedDiv(a, b uint64) (uint64, bool) {
	if b == 0 {
		return 0, false
	}
	return a / b, true
}

func checkedSubInt64(a, b int64) (int64, bool) {
	diff := a - b
	// Overflow when the operands have different signs and the result's
	// sign does not match the minuend's.
	if (b < 0 && diff < a) || (b > 0 && diff > a) {
		return 0, false
	}
	return diff, true
}
