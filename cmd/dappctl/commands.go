package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/bimakw/staking-gateway/internal/app"
	"github.com/bimakw/staking-gateway/internal/application/services"
	"github.com/bimakw/staking-gateway/internal/domain/entities"
)

type runFunc func(ctx context.Context, gw *app.App) (interface{}, error)

// run opens the gateway, applies the command deadline and prints the
// result as JSON.
func run(cmd *cobra.Command, open opener, fn runFunc) error {
	timeout, _ := cmd.Flags().GetDuration("timeout")
	ctx := cmd.Context()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	gw, err := open(cmd)
	if err != nil {
		return err
	}
	defer gw.Close()

	result, err := fn(ctx, gw)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), result)
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parsePoolID(s string) (uint64, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid pool id %q", s)
	}
	return id, nil
}

func flagString(fs *pflag.FlagSet, name string) string {
	v, _ := fs.GetString(name)
	return v
}

func newDashboardCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard <address>",
		Short: "Show pools, positions and notifications for an address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, open, func(ctx context.Context, gw *app.App) (interface{}, error) {
				return gw.Dashboard.LoadDashboard(ctx, args[0])
			})
		},
	}
}

func newTokenCmd(open opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token <address>",
		Short: "Show token metadata and a holder balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			holder := flagString(cmd.Flags(), "holder")
			return run(cmd, open, func(ctx context.Context, gw *app.App) (interface{}, error) {
				return gw.Dashboard.LoadToken(ctx, args[0], holder)
			})
		},
	}
	cmd.Flags().String("holder", "", "balance holder (defaults to the wallet)")
	return cmd
}

func newSaleCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "sale",
		Short: "Show the token sale",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, open, func(ctx context.Context, gw *app.App) (interface{}, error) {
				return gw.Dashboard.LoadSale(ctx)
			})
		},
	}
}

func newDepositCmd(open opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deposit <pool> <amount>",
		Short: "Approve if needed and deposit into a pool",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			poolID, err := parsePoolID(args[0])
			if err != nil {
				return err
			}
			user := flagString(cmd.Flags(), "user")
			return run(cmd, open, func(ctx context.Context, gw *app.App) (interface{}, error) {
				return gw.Transactions.Deposit(ctx, poolID, args[1], user)
			})
		},
	}
	cmd.Flags().String("user", "", "position owner (defaults to the wallet)")
	return cmd
}

func newWithdrawCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "withdraw <pool> <amount>",
		Short: "Withdraw a deposit from a pool",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			poolID, err := parsePoolID(args[0])
			if err != nil {
				return err
			}
			return run(cmd, open, func(ctx context.Context, gw *app.App) (interface{}, error) {
				return gw.Transactions.Withdraw(ctx, poolID, args[1])
			})
		},
	}
}

func newClaimCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "claim <pool>",
		Short: "Claim the reward of a pool",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			poolID, err := parsePoolID(args[0])
			if err != nil {
				return err
			}
			return run(cmd, open, func(ctx context.Context, gw *app.App) (interface{}, error) {
				return gw.Transactions.ClaimReward(ctx, poolID)
			})
		},
	}
}

func newCreatePoolCmd(open opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create-pool",
		Short: "Add a staking pool",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fs := cmd.Flags()
			params := entities.PoolParams{
				DepositToken: flagString(fs, "deposit-token"),
				RewardToken:  flagString(fs, "reward-token"),
				APY:          flagString(fs, "apy"),
				LockDays:     flagString(fs, "lock-days"),
			}
			return run(cmd, open, func(ctx context.Context, gw *app.App) (interface{}, error) {
				return gw.Transactions.CreatePool(ctx, params)
			})
		},
	}
	cmd.Flags().String("deposit-token", "", "deposit token address")
	cmd.Flags().String("reward-token", "", "reward token address")
	cmd.Flags().String("apy", "", "annual percentage yield")
	cmd.Flags().String("lock-days", "", "lock period in days")
	return cmd
}

func newModifyPoolCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "modify-pool <pool> <apy>",
		Short: "Change the APY of a pool",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			poolID, err := parsePoolID(args[0])
			if err != nil {
				return err
			}
			return run(cmd, open, func(ctx context.Context, gw *app.App) (interface{}, error) {
				return gw.Transactions.ModifyPool(ctx, poolID, args[1])
			})
		},
	}
}

func newSweepCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep <token> <amount>",
		Short: "Recover tokens held by the staking contract",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			params := entities.SweepParams{Token: args[0], Amount: args[1]}
			return run(cmd, open, func(ctx context.Context, gw *app.App) (interface{}, error) {
				return gw.Transactions.Sweep(ctx, params)
			})
		},
	}
}

func newTransferCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "transfer <to> <amount>",
		Short: "Transfer deposit tokens",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, open, func(ctx context.Context, gw *app.App) (interface{}, error) {
				return gw.Transactions.TransferToken(ctx, args[1], args[0])
			})
		},
	}
}

func newWatchAssetCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "watch-asset",
		Short: "Ask the wallet to track the deposit token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, open, func(ctx context.Context, gw *app.App) (interface{}, error) {
				return gw.Transactions.AddTokenToWallet(ctx)
			})
		},
	}
}

func newBuyCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "buy <quantity>",
		Short: "Buy whole tokens from the sale",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, open, func(ctx context.Context, gw *app.App) (interface{}, error) {
				return gw.Transactions.BuyToken(ctx, args[0])
			})
		},
	}
}

func newSaleWithdrawCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "sale-withdraw",
		Short: "Withdraw unsold tokens and proceeds from the sale",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, open, func(ctx context.Context, gw *app.App) (interface{}, error) {
				return gw.Transactions.WithdrawAllTokens(ctx)
			})
		},
	}
}

func newUpdateTokenCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "update-token <address>",
		Short: "Change the token offered by the sale",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, open, func(ctx context.Context, gw *app.App) (interface{}, error) {
				return gw.Transactions.UpdateTokenAddress(ctx, args[0])
			})
		},
	}
}

func newUpdatePriceCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "update-price <price>",
		Short: "Change the sale price per token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, open, func(ctx context.Context, gw *app.App) (interface{}, error) {
				return gw.Transactions.UpdateTokenPrice(ctx, args[0])
			})
		},
	}
}

type addressOutput struct {
	Address string `json:"address"`
	Short   string `json:"short"`
}

func newAddressCmd(open opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "address <address>",
		Short: "Print the display form of an address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			copyIt, _ := cmd.Flags().GetBool("copy")
			if !copyIt {
				return printJSON(cmd.OutOrStdout(), addressOutput{
					Address: args[0],
					Short:   services.ShortenAddress(args[0]),
				})
			}

			return run(cmd, open, func(ctx context.Context, gw *app.App) (interface{}, error) {
				checksummed, err := gw.Transactions.CopyAddress(ctx, args[0])
				if err != nil {
					return nil, err
				}
				return addressOutput{Address: checksummed, Short: services.ShortenAddress(checksummed)}, nil
			})
		},
	}
	cmd.Flags().Bool("copy", false, "checksum the address and report it as copied")
	return cmd
}
