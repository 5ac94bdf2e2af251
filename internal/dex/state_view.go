package dex

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"paymasterData/internal/model"
)

// ContractCaller performs read-only eth_call requests.
type ContractCaller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// Slot0 holds the StateView getSlot0 fields.
type Slot0 struct {
	SqrtPriceX96 *uint256.Int `json:"sqrt_price_x96"`
	Tick         int32        `json:"tick"`
	ProtocolFee  uint32       `json:"protocol_fee"`
	LPFee        uint32       `json:"lp_fee"`
}

// StateView reads pool state from a Uniswap v4 StateView contract.
type StateView struct {
	caller  ContractCaller
	address common.Address
	logger  *zap.Logger
}

func NewStateView(caller ContractCaller, address common.Address, logger *zap.Logger) *StateView {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StateView{caller: caller, address: address, logger: logger}
}

// Address returns the StateView contract address.
func (s *StateView) Address() common.Address {
	return s.address
}

// Liquidity returns the in-range liquidity of a pool at the latest block.
func (s *StateView) Liquidity(ctx context.Context, id model.PoolID) (*uint256.Int, error) {
	values, err := s.call(ctx, "getLiquidity", id)
	if err != nil {
		return nil, err
	}
	liquidity, err := asUint256(values[0])
	if err != nil {
		return nil, fmt.Errorf("liquidity: %w", err)
	}
	s.logger.Debug("pool liquidity", zap.String("pool_id", id.Hex()), zap.String("liquidity", liquidity.Dec()))
	return liquidity, nil
}

// Slot0 returns the price and fee slot of a pool at the latest block.
func (s *StateView) Slot0(ctx context.Context, id model.PoolID) (Slot0, error) {
	values, err := s.call(ctx, "getSlot0", id)
	if err != nil {
		return Slot0{}, err
	}
	if len(values) < 4 {
		return Slot0{}, fmt.Errorf("getSlot0: expected 4 values, got %d", len(values))
	}

	sqrtPrice, err := asUint256(values[0])
	if err != nil {
		return Slot0{}, fmt.Errorf("sqrt price: %w", err)
	}
	tickInt, err := asBigInt(values[1])
	if err != nil {
		return Slot0{}, fmt.Errorf("tick: %w", err)
	}
	tick, err := int24FromBig(tickInt)
	if err != nil {
		return Slot0{}, fmt.Errorf("tick: %w", err)
	}
	protocolFee, err := asBigInt(values[2])
	if err != nil {
		return Slot0{}, fmt.Errorf("protocol fee: %w", err)
	}
	lpFee, err := asBigInt(values[3])
	if err != nil {
		return Slot0{}, fmt.Errorf("lp fee: %w", err)
	}

	return Slot0{
		SqrtPriceX96: sqrtPrice,
		Tick:         tick,
		ProtocolFee:  uint32(protocolFee.Uint64()),
		LPFee:        uint32(lpFee.Uint64()),
	}, nil
}

func (s *StateView) call(ctx context.Context, method string, id model.PoolID) ([]interface{}, error) {
	if s.caller == nil {
		return nil, fmt.Errorf("chain client is nil")
	}
	parsed, err := StateViewABI()
	if err != nil {
		return nil, fmt.Errorf("parse state view abi: %w", err)
	}
	return callMethod(ctx, s.caller, s.address, parsed, method, [32]byte(id))
}

func callMethod(ctx context.Context, caller ContractCaller, to common.Address, parsed abi.ABI, method string, args ...interface{}) ([]interface{}, error) {
	data, err := parsed.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	msg := ethereum.CallMsg{To: &to, Data: data}
	resp, err := caller.CallContract(ctx, msg, nil)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}
	values, err := parsed.Unpack(method, resp)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("unpack %s: empty result", method)
	}
	return values, nil
}

func asBigInt(value interface{}) (*big.Int, error) {
	switch v := value.(type) {
	case *big.Int:
		return new(big.Int).Set(v), nil
	case big.Int:
		return new(big.Int).Set(&v), nil
	case uint8:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint16:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint32:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint64:
		return new(big.Int).SetUint64(v), nil
	case int8:
		return big.NewInt(int64(v)), nil
	case int16:
		return big.NewInt(int64(v)), nil
	case int32:
		return big.NewInt(int64(v)), nil
	case int64:
		return big.NewInt(v), nil
	default:
		return nil, fmt.Errorf("unsupported int type %T", value)
	}
}

func asUint256(value interface{}) (*uint256.Int, error) {
	b, err := asBigInt(value)
	if err != nil {
		return nil, err
	}
	if b.Sign() < 0 {
		return nil, fmt.Errorf("negative value %s", b.String())
	}
	out, overflow := uint256.FromBig(b)
	if overflow {
		return nil, fmt.Errorf("value overflows uint256: %s", b.String())
	}
	return out, nil
}

func int24FromBig(value *big.Int) (int32, error) {
	min := big.NewInt(model.MinInt24)
	max := big.NewInt(model.MaxInt24)
	if value.Cmp(min) < 0 || value.Cmp(max) > 0 {
		return 0, fmt.Errorf("int24 overflow: %s", value.String())
	}
	return int32(value.Int64()), nil
}
