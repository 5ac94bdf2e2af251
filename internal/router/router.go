// Package router selects the Uniswap v4 pool a sponsored operation settles through.
package router

//go:generate mockgen -destination=mock_liquidity_reader_test.go -package=router . LiquidityReader

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"paymasterData/internal/dex"
	"paymasterData/internal/model"
)

// LiquidityReader returns the current in-range liquidity of a pool.
// dex.StateView implements it.
type LiquidityReader interface {
	Liquidity(ctx context.Context, id model.PoolID) (*uint256.Int, error)
}

// Selection is a pool that passed the liquidity check.
type Selection struct {
	Key       model.PoolKey `json:"pool_key"`
	ID        model.PoolID  `json:"pool_id"`
	Liquidity *uint256.Int  `json:"liquidity"`
}

// Router combines a selection strategy with a mandatory liquidity check.
type Router struct {
	strategy PoolSelectionStrategy
	reader   LiquidityReader
	logger   *zap.Logger
}

func New(strategy PoolSelectionStrategy, reader LiquidityReader, logger *zap.Logger) *Router {
	if strategy == nil {
		strategy = NewFixedStrategy()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{strategy: strategy, reader: reader, logger: logger}
}

// SelectPool returns the pool for token. A pool whose liquidity is zero, or
// whose liquidity could not be read, is never returned; the error is then a
// *model.NoLiquidityError.
func (r *Router) SelectPool(ctx context.Context, token common.Address, amount *uint256.Int) (Selection, error) {
	if r.reader == nil {
		return Selection{}, fmt.Errorf("liquidity reader is nil")
	}

	key, err := r.strategy.Choose(ctx, token, amount)
	if err != nil {
		return Selection{}, fmt.Errorf("choose pool: %w", err)
	}
	selection, err := r.CheckPool(ctx, key)
	if err != nil {
		return Selection{}, err
	}

	r.logger.Info("pool selected",
		zap.String("pool_id", selection.ID.Hex()),
		zap.String("currency0", key.Currency0.Hex()),
		zap.String("currency1", key.Currency1.Hex()),
		zap.Uint32("fee", key.Fee),
		zap.Int32("tick_spacing", key.TickSpacing),
		zap.String("liquidity", selection.Liquidity.Dec()),
	)
	return selection, nil
}

// CheckPool runs the liquidity check on a key chosen elsewhere. It applies
// the same rules as SelectPool: unsorted keys are rejected, and a zero or
// unreadable liquidity yields *model.NoLiquidityError.
func (r *Router) CheckPool(ctx context.Context, key model.PoolKey) (Selection, error) {
	if r.reader == nil {
		return Selection{}, fmt.Errorf("liquidity reader is nil")
	}
	if !key.Sorted() {
		return Selection{}, fmt.Errorf("pool %s/%s: %w", key.Currency0.Hex(), key.Currency1.Hex(), model.ErrCurrenciesUnsorted)
	}

	id, err := dex.PoolID(key)
	if err != nil {
		return Selection{}, err
	}

	liquidity, err := r.reader.Liquidity(ctx, id)
	if err != nil {
		r.logger.Warn("liquidity read failed", zap.String("pool_id", id.Hex()), zap.Error(err))
		return Selection{}, &model.NoLiquidityError{PoolID: id, Err: err}
	}
	if liquidity == nil || liquidity.IsZero() {
		r.logger.Warn("pool has no liquidity", zap.String("pool_id", id.Hex()))
		return Selection{}, &model.NoLiquidityError{PoolID: id, Liquidity: "0"}
	}
	return Selection{Key: key, ID: id, Liquidity: liquidity}, nil
}

var _ LiquidityReader = (*dex.StateView)(nil)
