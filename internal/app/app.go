// Package app wires the chain client, wallet and services shared by the
// API server and the command line tool.
package app

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/bimakw/staking-gateway/internal/application/services"
	"github.com/bimakw/staking-gateway/internal/config"
	"github.com/bimakw/staking-gateway/internal/infrastructure/ethereum"
	"github.com/bimakw/staking-gateway/internal/infrastructure/wallet"
)

// App holds the connected components
type App struct {
	Client       *ethereum.Client
	Provider     *wallet.KeyProvider
	Factory      *ethereum.ContractFactory
	Dashboard    *services.DashboardService
	Transactions *services.TransactionService
}

// New connects to the node and builds the services. Phase events go to the
// log and to every extra notifier.
func New(cfg *config.Config, logger *zap.Logger, notifiers ...services.Notifier) (*App, error) {
	client, err := ethereum.NewClient(cfg.Ethereum, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Ethereum node: %w", err)
	}

	provider, err := wallet.NewKeyProvider(cfg.Wallet, client.ChainID(), client, logger)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to load wallet: %w", err)
	}

	factory, err := ethereum.NewContractFactory(client, cfg.Contracts)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to bind contracts: %w", err)
	}

	notifier := services.MultiNotifier{services.NewLogNotifier(logger)}
	notifier = append(notifier, notifiers...)

	return &App{
		Client:       client,
		Provider:     provider,
		Factory:      factory,
		Dashboard:    services.NewDashboardService(provider, factory, client, cfg.Contracts, cfg.Reader, logger),
		Transactions: services.NewTransactionService(provider, factory, notifier, cfg.Contracts, logger),
	}, nil
}

// Close releases the node connection
func (a *App) Close() {
	if a.Client != nil {
		a.Client.Close()
	}
}
