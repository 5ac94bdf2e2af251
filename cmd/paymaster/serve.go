package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"paymasterData/internal/api"
	"paymasterData/internal/config"
	"paymasterData/internal/dex"
	"paymasterData/internal/permit"
)

func runServe(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	offline, _ := cmd.Flags().GetBool("offline")
	record, _ := cmd.Flags().GetBool("record")
	listen, _ := cmd.Flags().GetString("listen")
	origins, _ := cmd.Flags().GetStringSlice("cors-origins")
	if err := api.ValidateOrigins(origins); err != nil {
		return err
	}

	load := config.LoadWithChain
	if offline {
		load = config.LoadWithDomain
	}
	cfg, err := load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := commandContext()
	defer stop()

	opts := api.Options{
		Network:   cfg.Network,
		Domain:    permitDomain(cfg.Domain),
		Paymaster: cfg.Domain.Paymaster,
		Logger:    logger,

		AllowedOrigins: origins,
	}
	if !offline {
		chainClient, err := connectChain(ctx, cfg.Chain, logger)
		if err != nil {
			return err
		}
		defer chainClient.Close()

		poolRouter, err := newRouter(cfg, dex.NewStateView(chainClient, cfg.Chain.StateView, logger), logger)
		if err != nil {
			return err
		}
		opts.Selector = poolRouter
		opts.Checker = poolRouter
		opts.Nonces = permit.NewAllowanceReader(chainClient, cfg.Chain.Permit2)
	}

	if record {
		sink, closeSink, err := newSink(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer closeSink()
		if sink != nil {
			opts.Sink = sink
		}
	}

	server := api.NewServer(opts).HTTPServer(listen)
	errCh := make(chan error, 1)
	go func() {
		logger.Info("api listening",
			zap.String("addr", listen),
			zap.Uint64("chain_id", opts.Domain.ChainID),
			zap.String("paymaster", opts.Paymaster.Hex()),
			zap.Bool("offline", offline),
			zap.Bool("record", record),
		)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Info("api shutting down")
	return server.Shutdown(shutdownCtx)
}
