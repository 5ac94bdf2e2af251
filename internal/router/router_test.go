package router

import (
	"context"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"paymasterData/internal/dex"
	"paymasterData/internal/model"
)

var usdc = common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")

func fixedKey() model.PoolKey {
	return model.PoolKey{Currency0: model.NativeCurrency, Currency1: usdc, Fee: 1000, TickSpacing: 60}
}

type staticStrategy struct {
	key model.PoolKey
	err error
}

func (s staticStrategy) Choose(context.Context, common.Address, *uint256.Int) (model.PoolKey, error) {
	return s.key, s.err
}

func TestFixedStrategyDefaults(t *testing.T) {
	key, err := NewFixedStrategy().Choose(context.Background(), usdc, uint256.NewInt(1))
	require.NoError(t, err)
	assert.Equal(t, fixedKey(), key)
}

func TestSelectPoolWithLiquidity(t *testing.T) {
	ctrl := gomock.NewController(t)
	reader := NewMockLiquidityReader(ctrl)
	wantID := dex.MustPoolID(fixedKey())
	reader.EXPECT().Liquidity(gomock.Any(), wantID).Return(uint256.NewInt(42), nil).Times(1)

	selection, err := New(nil, reader, nil).SelectPool(context.Background(), usdc, uint256.NewInt(10))
	require.NoError(t, err)
	assert.Equal(t, fixedKey(), selection.Key)
	assert.Equal(t, wantID, selection.ID)
	assert.Equal(t, uint64(42), selection.Liquidity.Uint64())
}

func TestSelectPoolZeroLiquidity(t *testing.T) {
	ctrl := gomock.NewController(t)
	reader := NewMockLiquidityReader(ctrl)
	reader.EXPECT().Liquidity(gomock.Any(), gomock.Any()).Return(uint256.NewInt(0), nil)

	_, err := New(NewFixedStrategy(), reader, nil).SelectPool(context.Background(), usdc, uint256.NewInt(10))
	var noLiquidity *model.NoLiquidityError
	require.True(t, errors.As(err, &noLiquidity), "got %v", err)
	assert.Equal(t, dex.MustPoolID(fixedKey()), noLiquidity.PoolID)
	assert.NoError(t, noLiquidity.Err)
}

func TestSelectPoolReadFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	reader := NewMockLiquidityReader(ctrl)
	reader.EXPECT().Liquidity(gomock.Any(), gomock.Any()).Return(nil, context.DeadlineExceeded)

	_, err := New(nil, reader, nil).SelectPool(context.Background(), usdc, nil)
	var noLiquidity *model.NoLiquidityError
	require.True(t, errors.As(err, &noLiquidity), "got %v", err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestSelectPoolRejectsUnsortedKey(t *testing.T) {
	ctrl := gomock.NewController(t)
	reader := NewMockLiquidityReader(ctrl)

	unsorted := model.PoolKey{Currency0: usdc, Currency1: model.NativeCurrency, Fee: 1000, TickSpacing: 60}
	_, err := New(staticStrategy{key: unsorted}, reader, nil).SelectPool(context.Background(), usdc, nil)
	assert.True(t, errors.Is(err, model.ErrCurrenciesUnsorted), "got %v", err)
}

func TestSelectPoolStrategyError(t *testing.T) {
	ctrl := gomock.NewController(t)
	reader := NewMockLiquidityReader(ctrl)
	boom := errors.New("boom")

	_, err := New(staticStrategy{err: boom}, reader, nil).SelectPool(context.Background(), usdc, nil)
	assert.True(t, errors.Is(err, boom))
}

func TestBestLiquidityStrategyPicksDeepestTier(t *testing.T) {
	ctrl := gomock.NewController(t)
	reader := NewMockLiquidityReader(ctrl)

	tiers := []Tier{{Fee: 500, TickSpacing: 10}, {Fee: 3000, TickSpacing: 60}, {Fee: 10000, TickSpacing: 200}}
	depth := map[model.PoolID]uint64{}
	for i, tier := range tiers {
		key := model.NewPoolKey(model.NativeCurrency, usdc, tier.Fee, tier.TickSpacing, common.Address{})
		depth[dex.MustPoolID(key)] = []uint64{5, 900, 900}[i]
	}
	reader.EXPECT().Liquidity(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, id model.PoolID) (*uint256.Int, error) {
			return uint256.NewInt(depth[id]), nil
		},
	).Times(len(tiers))

	key, err := NewBestLiquidityStrategy(reader, tiers, common.Address{}, nil).Choose(context.Background(), usdc, nil)
	require.NoError(t, err)
	assert.Equal(t, uint32(3000), key.Fee)
	assert.Equal(t, int32(60), key.TickSpacing)
	assert.True(t, key.Sorted())
}

func TestBestLiquidityStrategyReadError(t *testing.T) {
	ctrl := gomock.NewController(t)
	reader := NewMockLiquidityReader(ctrl)
	reader.EXPECT().Liquidity(gomock.Any(), gomock.Any()).Return(nil, errors.New("rpc down")).AnyTimes()

	_, err := NewBestLiquidityStrategy(reader, nil, common.Address{}, nil).Choose(context.Background(), usdc, nil)
	require.Error(t, err)
}

func TestBestLiquidityStrategyNilLiquidityIsZero(t *testing.T) {
	ctrl := gomock.NewController(t)
	reader := NewMockLiquidityReader(ctrl)

	tiers := []Tier{{Fee: 500, TickSpacing: 10}, {Fee: 3000, TickSpacing: 60}}
	deep := dex.MustPoolID(model.NewPoolKey(model.NativeCurrency, usdc, 3000, 60, common.Address{}))
	reader.EXPECT().Liquidity(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, id model.PoolID) (*uint256.Int, error) {
			if id == deep {
				return uint256.NewInt(7), nil
			}
			return nil, nil
		},
	).Times(len(tiers))

	var key model.PoolKey
	require.NotPanics(t, func() {
		var err error
		key, err = NewBestLiquidityStrategy(reader, tiers, common.Address{}, nil).Choose(context.Background(), usdc, nil)
		require.NoError(t, err)
	})
	assert.Equal(t, uint32(3000), key.Fee)
}

func TestCheckPool(t *testing.T) {
	ctrl := gomock.NewController(t)
	reader := NewMockLiquidityReader(ctrl)
	key := fixedKey()
	reader.EXPECT().Liquidity(gomock.Any(), dex.MustPoolID(key)).Return(uint256.NewInt(3), nil)

	selection, err := New(nil, reader, nil).CheckPool(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, key, selection.Key)
	assert.Equal(t, uint64(3), selection.Liquidity.Uint64())
}

func TestCheckPoolNilLiquidity(t *testing.T) {
	ctrl := gomock.NewController(t)
	reader := NewMockLiquidityReader(ctrl)
	reader.EXPECT().Liquidity(gomock.Any(), gomock.Any()).Return(nil, nil)

	_, err := New(nil, reader, nil).CheckPool(context.Background(), fixedKey())
	var noLiquidity *model.NoLiquidityError
	require.True(t, errors.As(err, &noLiquidity), "got %v", err)
	assert.Equal(t, "0", noLiquidity.Liquidity)
}

func TestCheckPoolRejectsUnsortedKey(t *testing.T) {
	ctrl := gomock.NewController(t)
	reader := NewMockLiquidityReader(ctrl)

	unsorted := model.PoolKey{Currency0: usdc, Currency1: model.NativeCurrency, Fee: 1000, TickSpacing: 60}
	_, err := New(nil, reader, nil).CheckPool(context.Background(), unsorted)
	assert.True(t, errors.Is(err, model.ErrCurrenciesUnsorted), "got %v", err)
}
