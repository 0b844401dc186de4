package rewardpool

import (
	"fmt"

	"github.com/fgrust/reward-pool/pkg/programs/token"
	"github.com/fgrust/reward-pool/pkg/runtime"
	"github.com/fgrust/reward-pool/pkg/types"
)

// handleCreatePool writes the Pool record and initializes the reserve
// token account and reward mint under the derived authority.
// Account layout:
//
//	[0] pool account (writable)
//	[1] pool authority derived from (pool, bump seed)
//	[2] stake token mint
//	[3] stake token reserve account (writable)
//	[4] reward token mint (writable)
//	[5] token program
func (p *Program) handleCreatePool(ctx *runtime.ExecutionContext, inst *CreatePoolInstruction) error {
	poolAcc, err := ctx.Account(0)
	if err != nil {
		return err
	}
	authorityAcc, err := ctx.Account(1)
	if err != nil {
		return err
	}
	stakeMintAcc, err := ctx.Account(2)
	if err != nil {
		return err
	}
	reserveAcc, err := ctx.Account(3)
	if err != nil {
		return err
	}
	rewardMintAcc, err := ctx.Account(4)
	if err != nil {
		return err
	}
	tokenProgramAcc, err := ctx.Account(5)
	if err != nil {
		return err
	}

	if poolAcc.Owner != p.programID {
		return fmt.Errorf("%w: pool record", ErrInvalidAccountOwner)
	}
	if err := assertRentExempt(ctx.Rent, poolAcc); err != nil {
		return err
	}
	pool, err := assertUninitializedPool(poolAcc)
	if err != nil {
		return err
	}
	if err := validateAuthority(authorityAcc.Pubkey, poolAcc.Pubkey, inst.BumpSeed, p.programID); err != nil {
		return err
	}

	pool.Initialized = true
	pool.BumpSeed = inst.BumpSeed
	pool.StakeMint = stakeMintAcc.Pubkey
	pool.Reserve = reserveAcc.Pubkey
	pool.RewardMint = rewardMintAcc.Pubkey
	pool.RewardNumerator = inst.RewardNumerator
	pool.RewardDenominator = inst.RewardDenominator
	copy(poolAcc.Data, pool.Serialize())

	if err := tokenInitializeAccount(ctx, tokenProgramAcc.Pubkey, reserveAcc.Pubkey, stakeMintAcc.Pubkey, authorityAcc.Pubkey); err != nil {
		return err
	}
	return tokenInitializeMint(ctx, tokenProgramAcc.Pubkey, rewardMintAcc.Pubkey, authorityAcc.Pubkey, RewardMintDecimals)
}

// handleCreateStakeUser writes a fresh StakeUser record for (pool, owner).
// Account layout:
//
//	[0] pool account
//	[1] stake user account (writable)
//	[2] stake owner (signer)
func (p *Program) handleCreateStakeUser(ctx *runtime.ExecutionContext) error {
	poolAcc, err := ctx.Account(0)
	if err != nil {
		return err
	}
	userAcc, err := ctx.Account(1)
	if err != nil {
		return err
	}
	ownerAcc, err := ctx.Account(2)
	if err != nil {
		return err
	}

	if poolAcc.Owner != p.programID || userAcc.Owner != p.programID {
		return ErrInvalidAccountOwner
	}
	if err := assertRentExempt(ctx.Rent, userAcc); err != nil {
		return err
	}
	user, err := assertUninitializedStakeUser(userAcc)
	if err != nil {
		return err
	}
	if !ownerAcc.IsSigner {
		return ErrInvalidSigner
	}

	user.Init(poolAcc.Pubkey, ownerAcc.Pubkey)
	copy(userAcc.Data, user.Serialize())
	return nil
}

// handleStake accrues any pending reward, adds the staked amount, and
// moves tokens from the owner's account into the pool reserve. The
// transfer is authorized by the caller-supplied transfer authority, not
// the derived pool authority.
// Account layout:
//
//	[0] pool account
//	[1] stake user account (writable)
//	[2] user transfer authority (signer)
//	[3] stake owner (signer)
//	[4] source token account (writable)
//	[5] reserve token account (writable)
//	[6] token program
func (p *Program) handleStake(ctx *runtime.ExecutionContext, amount uint64) error {
	poolAcc, err := ctx.Account(0)
	if err != nil {
		return err
	}
	userAcc, err := ctx.Account(1)
	if err != nil {
		return err
	}
	transferAuthorityAcc, err := ctx.Account(2)
	if err != nil {
		return err
	}
	ownerAcc, err := ctx.Account(3)
	if err != nil {
		return err
	}
	sourceAcc, err := ctx.Account(4)
	if err != nil {
		return err
	}
	destinationAcc, err := ctx.Account(5)
	if err != nil {
		return err
	}
	tokenProgramAcc, err := ctx.Account(6)
	if err != nil {
		return err
	}

	if poolAcc.Owner != p.programID || userAcc.Owner != p.programID {
		return ErrInvalidAccountOwner
	}

	user, err := unpackStakeUser(userAcc)
	if err != nil {
		return err
	}
	if !ownerAcc.IsSigner {
		return ErrInvalidSigner
	}
	if user.Owner != ownerAcc.Pubkey {
		return ErrInvalidStakeOwner
	}

	pool, err := unpackPool(poolAcc)
	if err != nil {
		return err
	}
	if pool.Reserve != destinationAcc.Pubkey {
		return fmt.Errorf("%w: destination is not the pool reserve", ErrInvalidTokenAccount)
	}
	sourceToken, err := unpackTokenAccount(sourceAcc, tokenProgramAcc.Pubkey)
	if err != nil {
		return err
	}
	destinationToken, err := unpackTokenAccount(destinationAcc, tokenProgramAcc.Pubkey)
	if err != nil {
		return err
	}
	if sourceToken.Mint != destinationToken.Mint {
		return ErrInvalidTokenMint
	}
	if sourceToken.Mint != pool.StakeMint {
		return ErrInvalidTokenMint
	}
	if sourceToken.Amount < amount {
		return ErrInsufficientFunds
	}

	// First stake starts a fresh accrual window; a later stake settles the
	// pending reward before the staked amount changes.
	if user.StakedAmount != 0 {
		if err := user.UpdateRewardOwed(pool.RewardNumerator, pool.RewardDenominator, ctx.Clock.UnixTimestamp); err != nil {
			return err
		}
	} else {
		user.LastUpdate = ctx.Clock.UnixTimestamp
	}

	if err := user.Stake(amount); err != nil {
		return err
	}
	copy(userAcc.Data, user.Serialize())

	return tokenTransfer(ctx, tokenProgramAcc.Pubkey, sourceAcc.Pubkey, destinationAcc.Pubkey, transferAuthorityAcc.Pubkey, amount, nil)
}

// handleUnstake accrues any pending reward, subtracts the amount, and
// releases tokens from the reserve, signed on behalf of the derived
// authority.
// Account layout:
//
//	[0] pool account
//	[1] stake user account (writable)
//	[2] pool authority derived from (pool, bump seed)
//	[3] stake owner (signer)
//	[4] reserve token account (writable)
//	[5] destination token account (writable)
//	[6] token program
func (p *Program) handleUnstake(ctx *runtime.ExecutionContext, amount uint64) error {
	poolAcc, err := ctx.Account(0)
	if err != nil {
		return err
	}
	userAcc, err := ctx.Account(1)
	if err != nil {
		return err
	}
	authorityAcc, err := ctx.Account(2)
	if err != nil {
		return err
	}
	ownerAcc, err := ctx.Account(3)
	if err != nil {
		return err
	}
	sourceAcc, err := ctx.Account(4)
	if err != nil {
		return err
	}
	destinationAcc, err := ctx.Account(5)
	if err != nil {
		return err
	}
	tokenProgramAcc, err := ctx.Account(6)
	if err != nil {
		return err
	}

	if poolAcc.Owner != p.programID || userAcc.Owner != p.programID {
		return ErrInvalidAccountOwner
	}

	user, err := unpackStakeUser(userAcc)
	if err != nil {
		return err
	}
	if !ownerAcc.IsSigner {
		return ErrInvalidSigner
	}
	if user.Owner != ownerAcc.Pubkey {
		return ErrInvalidStakeOwner
	}

	pool, err := unpackPool(poolAcc)
	if err != nil {
		return err
	}
	if err := validateAuthority(authorityAcc.Pubkey, poolAcc.Pubkey, pool.BumpSeed, p.programID); err != nil {
		return err
	}
	sourceToken, err := unpackTokenAccount(sourceAcc, tokenProgramAcc.Pubkey)
	if err != nil {
		return err
	}
	destinationToken, err := unpackTokenAccount(destinationAcc, tokenProgramAcc.Pubkey)
	if err != nil {
		return err
	}
	if sourceToken.Mint != destinationToken.Mint {
		return ErrInvalidTokenMint
	}
	if destinationToken.Mint != pool.StakeMint {
		return ErrInvalidTokenMint
	}
	if sourceToken.Amount < amount {
		return ErrInsufficientLiquidity
	}

	if user.StakedAmount != 0 {
		if err := user.UpdateRewardOwed(pool.RewardNumerator, pool.RewardDenominator, ctx.Clock.UnixTimestamp); err != nil {
			return err
		}
	}

	if err := user.Unstake(amount); err != nil {
		return err
	}
	copy(userAcc.Data, user.Serialize())

	return tokenTransfer(ctx, tokenProgramAcc.Pubkey, sourceAcc.Pubkey, destinationAcc.Pubkey, authorityAcc.Pubkey, amount,
		authoritySignerSeeds(poolAcc.Pubkey, pool.BumpSeed))
}

// handleClaim accrues any pending reward, zeroes the owed balance, and
// mints that amount to the destination, signed on behalf of the derived
// authority.
// Account layout:
//
//	[0] pool account
//	[1] stake user account (writable)
//	[2] stake owner (signer)
//	[3] pool authority derived from (pool, bump seed)
//	[4] reward token mint (writable)
//	[5] reward destination token account (writable)
//	[6] token program
func (p *Program) handleClaim(ctx *runtime.ExecutionContext) error {
	poolAcc, err := ctx.Account(0)
	if err != nil {
		return err
	}
	userAcc, err := ctx.Account(1)
	if err != nil {
		return err
	}
	ownerAcc, err := ctx.Account(2)
	if err != nil {
		return err
	}
	authorityAcc, err := ctx.Account(3)
	if err != nil {
		return err
	}
	rewardMintAcc, err := ctx.Account(4)
	if err != nil {
		return err
	}
	rewardTokenAcc, err := ctx.Account(5)
	if err != nil {
		return err
	}
	tokenProgramAcc, err := ctx.Account(6)
	if err != nil {
		return err
	}

	if poolAcc.Owner != p.programID || userAcc.Owner != p.programID {
		return ErrInvalidAccountOwner
	}

	user, err := unpackStakeUser(userAcc)
	if err != nil {
		return err
	}
	if user.Pool != poolAcc.Pubkey {
		return fmt.Errorf("%w: record belongs to a different pool", ErrInvalidStakeOwner)
	}
	if user.Owner != ownerAcc.Pubkey {
		return ErrInvalidStakeOwner
	}
	if !ownerAcc.IsSigner {
		return ErrInvalidSigner
	}

	pool, err := unpackPool(poolAcc)
	if err != nil {
		return err
	}
	rewardToken, err := unpackTokenAccount(rewardTokenAcc, tokenProgramAcc.Pubkey)
	if err != nil {
		return err
	}
	if pool.RewardMint != rewardMintAcc.Pubkey {
		return ErrInvalidTokenMint
	}
	if rewardTokenAcc.Owner == authorityAcc.Pubkey {
		return fmt.Errorf("%w: reward destination owned by pool authority", ErrInvalidAccountOwner)
	}
	if rewardToken.Mint != rewardMintAcc.Pubkey {
		return ErrInvalidTokenMint
	}
	if err := validateAuthority(authorityAcc.Pubkey, poolAcc.Pubkey, pool.BumpSeed, p.programID); err != nil {
		return err
	}

	if user.StakedAmount != 0 {
		if err := user.UpdateRewardOwed(pool.RewardNumerator, pool.RewardDenominator, ctx.Clock.UnixTimestamp); err != nil {
			return err
		}
	}

	amount, err := user.Claim()
	if err != nil {
		return err
	}
	copy(userAcc.Data, user.Serialize())

	return tokenMintTo(ctx, tokenProgramAcc.Pubkey, rewardMintAcc.Pubkey, rewardTokenAcc.Pubkey, authorityAcc.Pubkey, amount,
		authoritySignerSeeds(poolAcc.Pubkey, pool.BumpSeed))
}

// handleRefresh accrues reward for every supplied stake user record that
// belongs to this program and back-references the pool. Records that fail
// those checks, or that cannot be decoded, are skipped rather than failing
// the batch; only an accrual arithmetic failure aborts. Each record's
// update is committed to its buffer before the next record is visited, so
// a mid-batch failure leaves earlier updates in place.
// Account layout:
//
//	[0] pool account
//	[1..] stake user accounts (writable)
func (p *Program) handleRefresh(ctx *runtime.ExecutionContext) error {
	poolAcc, err := ctx.Account(0)
	if err != nil {
		return err
	}
	if poolAcc.Owner != p.programID {
		return ErrInvalidAccountOwner
	}
	pool, err := unpackPool(poolAcc)
	if err != nil {
		return err
	}

	for _, userAcc := range ctx.RemainingAccounts(1) {
		if userAcc.Owner != p.programID {
			continue
		}
		user, err := DeserializeStakeUser(userAcc.Data)
		if err != nil || !user.Initialized {
			continue
		}
		if user.Pool != poolAcc.Pubkey {
			continue
		}
		if user.StakedAmount == 0 {
			continue
		}
		if err := user.UpdateRewardOwed(pool.RewardNumerator, pool.RewardDenominator, ctx.Clock.UnixTimestamp); err != nil {
			return err
		}
		copy(userAcc.Data, user.Serialize())
	}
	return nil
}

func assertRentExempt(rent types.Rent, acc *runtime.AccountInfo) error {
	if !rent.IsExempt(types.Lamports(acc.Lamports), uint64(len(acc.Data))) {
		return fmt.Errorf("%w: %s", ErrNotRentExempt, acc.Pubkey)
	}
	return nil
}

func assertUninitializedPool(acc *runtime.AccountInfo) (*Pool, error) {
	pool, err := DeserializePool(acc.Data)
	if err != nil {
		return nil, err
	}
	if pool.Initialized {
		return nil, ErrAlreadyInUse
	}
	return pool, nil
}

func assertUninitializedStakeUser(acc *runtime.AccountInfo) (*StakeUser, error) {
	user, err := DeserializeStakeUser(acc.Data)
	if err != nil {
		return nil, err
	}
	if user.Initialized {
		return nil, ErrAlreadyInUse
	}
	return user, nil
}

func unpackPool(acc *runtime.AccountInfo) (*Pool, error) {
	pool, err := DeserializePool(acc.Data)
	if err != nil {
		return nil, err
	}
	if !pool.Initialized {
		return nil, fmt.Errorf("%w: pool not initialized", ErrInvalidAccountData)
	}
	return pool, nil
}

func unpackStakeUser(acc *runtime.AccountInfo) (*StakeUser, error) {
	user, err := DeserializeStakeUser(acc.Data)
	if err != nil {
		return nil, err
	}
	if !user.Initialized {
		return nil, fmt.Errorf("%w: stake user not initialized", ErrInvalidAccountData)
	}
	return user, nil
}

func unpackTokenAccount(acc *runtime.AccountInfo, tokenProgramID types.Pubkey) (*token.TokenAccount, error) {
	if acc.Owner != tokenProgramID {
		return nil, fmt.Errorf("%w: %s is not a token account", ErrInvalidAccountOwner, acc.Pubkey)
	}
	tokenAccount, err := token.DeserializeTokenAccount(acc.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTokenAccount, err)
	}
	return tokenAccount, nil
}
