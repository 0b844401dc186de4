package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fgrust/reward-pool/pkg/programs/rewardpool"
	"github.com/fgrust/reward-pool/pkg/programs/token"
	"github.com/fgrust/reward-pool/pkg/types"
)

func newInspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <pubkey>",
		Short: "Print a stored account and decode it where possible",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pubkey, err := types.PubkeyFromBase58(args[0])
			if err != nil {
				return fmt.Errorf("invalid pubkey %q: %w", args[0], err)
			}
			return runInspect(pubkey)
		},
	}
}

func runInspect(pubkey types.Pubkey) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	account, err := store.GetAccount(pubkey)
	if err != nil {
		return err
	}
	if account == nil {
		return fmt.Errorf("account %s not found", pubkey)
	}

	fmt.Printf("account:    %s\n", pubkey)
	fmt.Printf("lamports:   %d\n", account.Lamports)
	fmt.Printf("owner:      %s\n", account.Owner)
	fmt.Printf("executable: %v\n", account.Executable)
	fmt.Printf("data size:  %d\n", len(account.Data))

	printDecoded(account)
	return nil
}

// printDecoded guesses the record kind by its size and prints the decoded
// fields. Sizes are distinct across the record kinds so the guess is
// unambiguous.
func printDecoded(account *types.Account) {
	switch len(account.Data) {
	case rewardpool.PoolSize:
		pool, err := rewardpool.DeserializePool(account.Data)
		if err != nil {
			return
		}
		fmt.Println("decoded as pool:")
		fmt.Printf("  initialized:  %v\n", pool.Initialized)
		fmt.Printf("  bump seed:    %d\n", pool.BumpSeed)
		fmt.Printf("  stake mint:   %s\n", pool.StakeMint)
		fmt.Printf("  reserve:      %s\n", pool.Reserve)
		fmt.Printf("  reward mint:  %s\n", pool.RewardMint)
		fmt.Printf("  daily rate:   %d/%d\n", pool.RewardNumerator, pool.RewardDenominator)

	case rewardpool.StakeUserSize:
		user, err := rewardpool.DeserializeStakeUser(account.Data)
		if err != nil {
			return
		}
		fmt.Println("decoded as stake user:")
		fmt.Printf("  initialized:   %v\n", user.Initialized)
		fmt.Printf("  pool:          %s\n", user.Pool)
		fmt.Printf("  owner:         %s\n", user.Owner)
		fmt.Printf("  staked amount: %d\n", user.StakedAmount)
		fmt.Printf("  reward owed:   %d\n", user.RewardOwed)
		fmt.Printf("  last update:   %d\n", user.LastUpdate)

	case token.MintSize:
		mint, err := token.DeserializeMint(account.Data)
		if err != nil {
			return
		}
		fmt.Println("decoded as mint:")
		fmt.Printf("  initialized: %v\n", mint.IsInitialized)
		fmt.Printf("  supply:      %d\n", mint.Supply)
		fmt.Printf("  decimals:    %d\n", mint.Decimals)
		if mint.MintAuthority.IsSome {
			fmt.Printf("  authority:   %s\n", mint.MintAuthority.Value)
		}

	case token.TokenAccountSize:
		tokenAccount, err := token.DeserializeTokenAccount(account.Data)
		if err != nil {
			return
		}
		fmt.Println("decoded as token account:")
		fmt.Printf("  mint:   %s\n", tokenAccount.Mint)
		fmt.Printf("  owner:  %s\n", tokenAccount.Owner)
		fmt.Printf("  amount: %d\n", tokenAccount.Amount)
		fmt.Printf("  state:  %d\n", tokenAccount.State)
	}
}
