package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/bimakw/staking-gateway/internal/app"
	"github.com/bimakw/staking-gateway/internal/application/services"
	"github.com/bimakw/staking-gateway/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd(openGateway)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, services.ReportError(err))
		os.Exit(1)
	}
}

// opener connects the services a command runs against
type opener func(cmd *cobra.Command) (*app.App, error)

func newRootCmd(open opener) *cobra.Command {
	root := &cobra.Command{
		Use:           "dappctl",
		Short:         "Staking and token sale gateway CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String("log-level", "warn", "log level (debug, info, warn, error)")
	root.PersistentFlags().String("rpc-url", "", "override ETH_RPC_URL")
	root.PersistentFlags().Duration("timeout", 5*time.Minute, "deadline for the whole command")

	root.AddCommand(
		newDashboardCmd(open),
		newTokenCmd(open),
		newSaleCmd(open),
		newDepositCmd(open),
		newWithdrawCmd(open),
		newClaimCmd(open),
		newCreatePoolCmd(open),
		newModifyPoolCmd(open),
		newSweepCmd(open),
		newTransferCmd(open),
		newWatchAssetCmd(open),
		newBuyCmd(open),
		newSaleWithdrawCmd(open),
		newUpdateTokenCmd(open),
		newUpdatePriceCmd(open),
		newAddressCmd(open),
	)

	return root
}

func openGateway(cmd *cobra.Command) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if rpcURL, _ := cmd.Flags().GetString("rpc-url"); rpcURL != "" {
		cfg.Ethereum.RPCURL = rpcURL
	}

	level, _ := cmd.Flags().GetString("log-level")
	logger, err := newLogger(level)
	if err != nil {
		return nil, err
	}

	return app.New(cfg, logger)
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	// stdout carries command output
	cfg.OutputPaths = []string{"stderr"}
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
