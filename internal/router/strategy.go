package router

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"paymasterData/internal/dex"
	"paymasterData/internal/model"
)

const (
	DefaultFee         uint32 = 1000
	DefaultTickSpacing int32  = 60
)

// PoolSelectionStrategy picks the pool that settles a payment in token.
type PoolSelectionStrategy interface {
	Choose(ctx context.Context, token common.Address, amount *uint256.Int) (model.PoolKey, error)
}

// FixedStrategy always pairs the native currency with token at one fee tier.
type FixedStrategy struct {
	Fee         uint32
	TickSpacing int32
	Hooks       common.Address
}

// NewFixedStrategy returns the native/token pool at fee 1000, tick spacing 60, no hook.
func NewFixedStrategy() FixedStrategy {
	return FixedStrategy{Fee: DefaultFee, TickSpacing: DefaultTickSpacing}
}

func (s FixedStrategy) Choose(_ context.Context, token common.Address, _ *uint256.Int) (model.PoolKey, error) {
	return model.NewPoolKey(model.NativeCurrency, token, s.Fee, s.TickSpacing, s.Hooks), nil
}

// Tier is a fee / tick spacing pair.
type Tier struct {
	Fee         uint32 `json:"fee"`
	TickSpacing int32  `json:"tick_spacing"`
}

// DefaultTiers are the standard v4 fee tiers plus the router's 0.1% pool.
var DefaultTiers = []Tier{
	{Fee: 100, TickSpacing: 1},
	{Fee: 500, TickSpacing: 10},
	{Fee: DefaultFee, TickSpacing: DefaultTickSpacing},
	{Fee: 3000, TickSpacing: 60},
	{Fee: 10000, TickSpacing: 200},
}

// BestLiquidityStrategy reads every tier of the native/token pair and keeps
// the one with the most in-range liquidity. Ties go to the earlier tier.
type BestLiquidityStrategy struct {
	reader LiquidityReader
	tiers  []Tier
	hooks  common.Address
	logger *zap.Logger
}

func NewBestLiquidityStrategy(reader LiquidityReader, tiers []Tier, hooks common.Address, logger *zap.Logger) *BestLiquidityStrategy {
	if len(tiers) == 0 {
		tiers = DefaultTiers
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BestLiquidityStrategy{reader: reader, tiers: tiers, hooks: hooks, logger: logger}
}

func (s *BestLiquidityStrategy) Choose(ctx context.Context, token common.Address, _ *uint256.Int) (model.PoolKey, error) {
	if s.reader == nil {
		return model.PoolKey{}, fmt.Errorf("liquidity reader is nil")
	}

	keys := make([]model.PoolKey, len(s.tiers))
	liquidity := make([]*uint256.Int, len(s.tiers))

	group, groupCtx := errgroup.WithContext(ctx)
	for i, tier := range s.tiers {
		i, tier := i, tier
		keys[i] = model.NewPoolKey(model.NativeCurrency, token, tier.Fee, tier.TickSpacing, s.hooks)
		group.Go(func() error {
			id, err := dex.PoolID(keys[i])
			if err != nil {
				return err
			}
			value, err := s.reader.Liquidity(groupCtx, id)
			if err != nil {
				return fmt.Errorf("tier fee=%d: %w", tier.Fee, err)
			}
			if value == nil {
				value = new(uint256.Int)
			}
			liquidity[i] = value
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return model.PoolKey{}, err
	}

	best := 0
	for i := 1; i < len(keys); i++ {
		if liquidity[i].Gt(liquidity[best]) {
			best = i
		}
	}
	s.logger.Debug("best liquidity tier",
		zap.Uint32("fee", keys[best].Fee),
		zap.Int32("tick_spacing", keys[best].TickSpacing),
		zap.String("liquidity", liquidity[best].Dec()),
	)
	return keys[best], nil
}
