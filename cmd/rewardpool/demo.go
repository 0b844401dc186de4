package main

import (
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fgrust/reward-pool/pkg/accounts"
	"github.com/fgrust/reward-pool/pkg/metrics"
	"github.com/fgrust/reward-pool/pkg/programs/rewardpool"
	"github.com/fgrust/reward-pool/pkg/programs/token"
	"github.com/fgrust/reward-pool/pkg/runtime"
	"github.com/fgrust/reward-pool/pkg/types"
)

const (
	demoRewardNumerator   = 1
	demoRewardDenominator = 1000
	demoMintAmount        = 50_000_000_000
	demoStakeAmount       = 10_000_000_000
)

func newDemoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Run a full staking lifecycle against the account store",
		Long: `Creates a pool and a stake user, stakes tokens, accrues one day of
reward, claims it, and unstakes. All state lands in the account store
selected by --data-dir.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo()
		},
	}
}

// demoPubkey derives a stable address for a demo participant.
func demoPubkey(label string) types.Pubkey {
	return types.Pubkey(sha256.Sum256([]byte("rewardpool-demo:" + label)))
}

func runDemo() error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	opts := []runtime.BankOption{runtime.WithLogger(logger)}
	if flagMetricsAddr != "" {
		m := metrics.NewBankMetrics()
		go func() {
			if err := m.Serve(flagMetricsAddr); err != nil {
				logger.Warn("metrics server stopped", zap.Error(err))
			}
		}()
		opts = append(opts, runtime.WithMetrics(m))
	}

	programID := demoPubkey("program")
	bank := runtime.NewBank(store, opts...)
	bank.Register(token.New())
	bank.Register(rewardpool.New(programID))

	rent := types.DefaultRent()
	now := time.Now().Unix()

	pool := demoPubkey("pool")
	authority, bumpSeed, ok := rewardpool.FindAuthority(pool, programID)
	if !ok {
		return fmt.Errorf("no valid authority for pool %s", pool)
	}

	stakeMint := demoPubkey("stake-mint")
	mintAuthority := demoPubkey("stake-mint-authority")
	reserve := demoPubkey("reserve")
	rewardMint := demoPubkey("reward-mint")
	staker := demoPubkey("staker")
	stakeSource := demoPubkey("staker-stake-tokens")
	rewardDest := demoPubkey("staker-reward-tokens")
	stakeUser := demoPubkey("stake-user")

	if err := seedDemoAccounts(store, rent, programID, pool, authority, stakeMint, mintAuthority, reserve, rewardMint, staker, stakeSource, rewardDest, stakeUser); err != nil {
		return fmt.Errorf("seed accounts: %w", err)
	}

	clock := types.Clock{UnixTimestamp: now}

	steps := []struct {
		name string
		inst types.Instruction
	}{
		{"fund staker", token.NewMintToInstruction(types.TokenProgramID, stakeMint, stakeSource, mintAuthority, demoMintAmount)},
		{"create pool", rewardpool.NewCreatePoolInstruction(programID, pool, authority, stakeMint, reserve, rewardMint, rewardpool.CreatePoolInstruction{
			BumpSeed:          bumpSeed,
			RewardNumerator:   demoRewardNumerator,
			RewardDenominator: demoRewardDenominator,
		})},
		{"create stake user", rewardpool.NewCreateStakeUserInstruction(programID, pool, stakeUser, staker)},
		{"stake", rewardpool.NewStakeInstruction(programID, pool, stakeUser, staker, staker, stakeSource, reserve, demoStakeAmount)},
	}
	for _, step := range steps {
		logger.Info("executing", zap.String("step", step.name))
		if err := bank.Execute(step.inst, clock, rent); err != nil {
			return fmt.Errorf("%s: %w", step.name, err)
		}
	}

	// One day later the reward has accrued.
	clock.UnixTimestamp += rewardpool.SecondsPerDay

	later := []struct {
		name string
		inst types.Instruction
	}{
		{"refresh", rewardpool.NewRefreshInstruction(programID, pool, []types.Pubkey{stakeUser})},
		{"open reward account", token.NewInitializeAccountInstruction(types.TokenProgramID, rewardDest, rewardMint, staker)},
		{"claim", rewardpool.NewClaimInstruction(programID, pool, stakeUser, staker, authority, rewardMint, rewardDest)},
		{"unstake", rewardpool.NewUnstakeInstruction(programID, pool, stakeUser, authority, staker, reserve, stakeSource, demoStakeAmount)},
	}
	for _, step := range later {
		logger.Info("executing", zap.String("step", step.name))
		if err := bank.Execute(step.inst, clock, rent); err != nil {
			return fmt.Errorf("%s: %w", step.name, err)
		}
	}

	return printDemoSummary(store, stakeUser, stakeSource, rewardDest)
}

// seedDemoAccounts installs the raw accounts the lifecycle operates on:
// the program records (zeroed, rent exempt), the token mints and accounts,
// and the signer placeholders.
func seedDemoAccounts(store accounts.AccountsDB, rent types.Rent, programID, pool, authority, stakeMint, mintAuthority, reserve, rewardMint, staker, stakeSource, rewardDest, stakeUser types.Pubkey) error {
	poolAccount := types.NewAccount(rent.MinimumBalance(rewardpool.PoolSize), rewardpool.PoolSize, programID)
	userAccount := types.NewAccount(rent.MinimumBalance(rewardpool.StakeUserSize), rewardpool.StakeUserSize, programID)

	stakeMintAccount := types.NewAccount(rent.MinimumBalance(token.MintSize), token.MintSize, types.TokenProgramID)
	copy(stakeMintAccount.Data, token.NewMint(9, &mintAuthority, nil).Serialize())

	sourceAccount := types.NewAccount(rent.MinimumBalance(token.TokenAccountSize), token.TokenAccountSize, types.TokenProgramID)
	copy(sourceAccount.Data, token.NewTokenAccount(stakeMint, staker).Serialize())

	reserveAccount := types.NewAccount(rent.MinimumBalance(token.TokenAccountSize), token.TokenAccountSize, types.TokenProgramID)
	rewardMintAccount := types.NewAccount(rent.MinimumBalance(token.MintSize), token.MintSize, types.TokenProgramID)
	rewardDestAccount := types.NewAccount(rent.MinimumBalance(token.TokenAccountSize), token.TokenAccountSize, types.TokenProgramID)

	tokenProgramAccount := types.NewAccount(1, 0, types.SystemProgramID)
	tokenProgramAccount.Executable = true

	seeds := map[types.Pubkey]*types.Account{
		pool:                 poolAccount,
		stakeUser:            userAccount,
		stakeMint:            stakeMintAccount,
		stakeSource:          sourceAccount,
		reserve:              reserveAccount,
		rewardMint:           rewardMintAccount,
		rewardDest:           rewardDestAccount,
		types.TokenProgramID: tokenProgramAccount,
		authority:            types.NewAccount(1, 0, types.SystemProgramID),
		mintAuthority:        types.NewAccount(1, 0, types.SystemProgramID),
		staker:               types.NewAccount(1, 0, types.SystemProgramID),
	}
	for pubkey, account := range seeds {
		if err := store.SetAccount(pubkey, account); err != nil {
			return err
		}
	}
	return nil
}

func printDemoSummary(store accounts.AccountsDB, stakeUser, stakeSource, rewardDest types.Pubkey) error {
	userAccount, err := store.GetAccount(stakeUser)
	if err != nil || userAccount == nil {
		return fmt.Errorf("load stake user: %w", err)
	}
	user, err := rewardpool.DeserializeStakeUser(userAccount.Data)
	if err != nil {
		return err
	}

	sourceAccount, err := store.GetAccount(stakeSource)
	if err != nil || sourceAccount == nil {
		return fmt.Errorf("load stake tokens: %w", err)
	}
	source, err := token.DeserializeTokenAccount(sourceAccount.Data)
	if err != nil {
		return err
	}

	rewardAccount, err := store.GetAccount(rewardDest)
	if err != nil || rewardAccount == nil {
		return fmt.Errorf("load reward tokens: %w", err)
	}
	reward, err := token.DeserializeTokenAccount(rewardAccount.Data)
	if err != nil {
		return err
	}

	fmt.Println("demo complete")
	fmt.Printf("  staked amount:  %d\n", user.StakedAmount)
	fmt.Printf("  reward owed:    %d\n", user.RewardOwed)
	fmt.Printf("  stake balance:  %d\n", source.Amount)
	fmt.Printf("  reward balance: %d\n", reward.Amount)
	return nil
}
