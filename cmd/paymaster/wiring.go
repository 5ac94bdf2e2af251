package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rpc"
	"go.uber.org/zap"

	"paymasterData/internal/chain"
	"paymasterData/internal/config"
	"paymasterData/internal/dex"
	"paymasterData/internal/permit"
	"paymasterData/internal/router"
	"paymasterData/internal/storage"
	"paymasterData/internal/storage/postgres"
)

// connectChain dials the network RPC and checks that it serves the configured
// chain, that the contracts this tool relies on are deployed, and that Permit2
// reports the domain separator permits will be signed against.
func connectChain(ctx context.Context, cfg config.ChainConfig, logger *zap.Logger) (*chain.Client, error) {
	client, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("connect rpc: %w", err)
	}
	if err := client.VerifyChainID(ctx, cfg.ChainID); err != nil {
		client.Close()
		return nil, err
	}

	contracts := []struct {
		name    string
		address common.Address
	}{
		{"state view", cfg.StateView},
		{"pool manager", cfg.PoolManager},
		{"permit2", cfg.Permit2},
		{"paymaster", cfg.Paymaster},
		{"entry point", cfg.EntryPoint},
	}
	for _, c := range contracts {
		code, err := client.CodeAt(ctx, c.address)
		if err != nil {
			client.Close()
			return nil, fmt.Errorf("read %s code: %w", c.name, err)
		}
		if len(code) == 0 {
			client.Close()
			return nil, fmt.Errorf("%s %s has no code on %s", c.name, c.address.Hex(), cfg.Network)
		}
	}

	if err := verifyPermit2Domain(ctx, permit.NewAllowanceReader(client, cfg.Permit2), permitDomain(cfg.Domain())); err != nil {
		client.Close()
		return nil, err
	}

	logger.Info("chain connected",
		zap.String("network", cfg.Network),
		zap.Uint64("chain_id", cfg.ChainID),
		zap.String("state_view", cfg.StateView.Hex()),
		zap.String("pool_manager", cfg.PoolManager.Hex()),
		zap.String("permit2", cfg.Permit2.Hex()),
		zap.String("paymaster", cfg.Paymaster.Hex()),
		zap.String("entry_point", cfg.EntryPoint.Hex()),
	)
	return client, nil
}

type domainSeparatorReader interface {
	DomainSeparator(ctx context.Context) (common.Hash, error)
}

// verifyPermit2Domain fails when the deployed Permit2 would reject signatures
// made for domain.
func verifyPermit2Domain(ctx context.Context, reader domainSeparatorReader, domain permit.Domain) error {
	onChain, err := reader.DomainSeparator(ctx)
	if err != nil {
		return fmt.Errorf("read permit2 domain separator: %w", err)
	}
	local, err := permit.DomainSeparator(domain)
	if err != nil {
		return err
	}
	if onChain != local {
		return fmt.Errorf("permit2 %s domain separator %s does not match %s for chain id %d",
			domain.Permit2.Hex(), onChain.Hex(), local.Hex(), domain.ChainID)
	}
	return nil
}

func permitDomain(d config.Domain) permit.Domain {
	return permit.Domain{ChainID: d.ChainID, Permit2: d.Permit2}
}

func newRouter(cfg config.Config, reader router.LiquidityReader, logger *zap.Logger) (*router.Router, error) {
	hooks, err := optionalAddress("hooks", cfg.Hooks)
	if err != nil {
		return nil, err
	}

	var strategy router.PoolSelectionStrategy
	switch cfg.Strategy {
	case "best-liquidity":
		tiers := make([]router.Tier, 0, len(cfg.Tiers))
		for _, t := range cfg.Tiers {
			tiers = append(tiers, router.Tier{Fee: t.Fee, TickSpacing: t.TickSpacing})
		}
		strategy = router.NewBestLiquidityStrategy(reader, tiers, hooks, logger)
	default:
		strategy = router.FixedStrategy{Fee: cfg.Fee, TickSpacing: cfg.TickSpacing, Hooks: hooks}
	}
	return router.New(strategy, reader, logger), nil
}

// newSigner returns the signing provider and a close func for any wallet
// connection it opened.
func newSigner(ctx context.Context, cfg config.Config) (permit.SigningProvider, func(), error) {
	switch cfg.Signer {
	case "delegated":
		account, err := optionalAddress("account", cfg.Account)
		if err != nil {
			return nil, nil, err
		}
		walletURL := cfg.WalletURL
		if walletURL == "" {
			walletURL = cfg.Chain.RPCURL
		}
		wallet, err := rpc.DialContext(ctx, walletURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect wallet: %w", err)
		}
		signer, err := permit.NewDelegated(wallet, account)
		if err != nil {
			wallet.Close()
			return nil, nil, err
		}
		return signer, wallet.Close, nil
	default:
		if cfg.PrivateKey == "" {
			return nil, nil, fmt.Errorf("private key is required for the local signer (--private-key or PRIVATE_KEY)")
		}
		signer, err := permit.NewLocalKeyFromHex(cfg.PrivateKey)
		if err != nil {
			return nil, nil, err
		}
		return signer, func() {}, nil
	}
}

// newSink opens the JSONL and Postgres sinks that are configured. The
// returned sink is nil when neither is.
func newSink(ctx context.Context, cfg config.Config, logger *zap.Logger) (storage.Sink, func(), error) {
	var (
		sinks   storage.Multi
		closers []func()
	)
	if cfg.Out != "" {
		sinks = append(sinks, storage.NewJsonlStorage(cfg.Out))
	}
	if cfg.PGDSN != "" {
		store, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := store.EnsureSchema(ctx); err != nil {
			store.Close()
			return nil, nil, err
		}
		sinks = append(sinks, store)
		closers = append(closers, store.Close)
	}
	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}
	logger.Debug("sinks configured", zap.String("out", cfg.Out), zap.Bool("postgres", cfg.PGDSN != ""))
	if len(sinks) == 0 {
		return nil, closeAll, nil
	}
	return sinks, closeAll, nil
}

func optionalAddress(field, value string) (common.Address, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return common.Address{}, nil
	}
	if !common.IsHexAddress(value) {
		return common.Address{}, fmt.Errorf("%s: invalid address %q", field, value)
	}
	return common.HexToAddress(value), nil
}

func tokenOrUSDC(value string, cfg config.ChainConfig) (common.Address, error) {
	token, err := optionalAddress("token", value)
	if err != nil {
		return common.Address{}, err
	}
	if token == (common.Address{}) {
		return cfg.USDC, nil
	}
	return token, nil
}

var (
	_ router.LiquidityReader = (*dex.StateView)(nil)
	_ storage.Sink           = (*postgres.Store)(nil)
)
