package permit

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

const permit2ABIJSON = `[
  {
    "inputs": [
      {"internalType": "address", "name": "owner", "type": "address"},
      {"internalType": "address", "name": "token", "type": "address"},
      {"internalType": "address", "name": "spender", "type": "address"}
    ],
    "name": "allowance",
    "outputs": [
      {"internalType": "uint160", "name": "amount", "type": "uint160"},
      {"internalType": "uint48", "name": "expiration", "type": "uint48"},
      {"internalType": "uint48", "name": "nonce", "type": "uint48"}
    ],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [],
    "name": "DOMAIN_SEPARATOR",
    "outputs": [{"internalType": "bytes32", "name": "", "type": "bytes32"}],
    "stateMutability": "view",
    "type": "function"
  }
]`

var (
	permit2ABI     abi.ABI
	permit2ABIOnce sync.Once
	permit2ABIErr  error
)

// Permit2ABI returns the parsed subset of the Permit2 ABI used here.
func Permit2ABI() (abi.ABI, error) {
	permit2ABIOnce.Do(func() {
		permit2ABI, permit2ABIErr = abi.JSON(strings.NewReader(permit2ABIJSON))
	})
	return permit2ABI, permit2ABIErr
}

// ContractCaller performs read-only eth_call requests.
type ContractCaller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// Allowance is the current Permit2 allowance state for (owner, token, spender).
// Nonce is the value the next PermitSingle must carry.
type Allowance struct {
	Amount     *uint256.Int
	Expiration uint64
	Nonce      uint64
}

// AllowanceReader reads allowance state from the Permit2 contract.
type AllowanceReader struct {
	caller  ContractCaller
	permit2 common.Address
}

func NewAllowanceReader(caller ContractCaller, permit2 common.Address) *AllowanceReader {
	return &AllowanceReader{caller: caller, permit2: permit2}
}

// Allowance returns the on-chain allowance. Nothing is cached.
func (r *AllowanceReader) Allowance(ctx context.Context, owner, token, spender common.Address) (Allowance, error) {
	values, err := r.call(ctx, "allowance", owner, token, spender)
	if err != nil {
		return Allowance{}, err
	}
	if len(values) != 3 {
		return Allowance{}, fmt.Errorf("allowance: expected 3 values, got %d", len(values))
	}

	amount, ok := values[0].(*big.Int)
	if !ok {
		return Allowance{}, fmt.Errorf("allowance amount: unsupported type %T", values[0])
	}
	expiration, ok := values[1].(*big.Int)
	if !ok {
		return Allowance{}, fmt.Errorf("allowance expiration: unsupported type %T", values[1])
	}
	nonce, ok := values[2].(*big.Int)
	if !ok {
		return Allowance{}, fmt.Errorf("allowance nonce: unsupported type %T", values[2])
	}

	amountU, _ := uint256.FromBig(amount)
	return Allowance{
		Amount:     amountU,
		Expiration: expiration.Uint64(),
		Nonce:      nonce.Uint64(),
	}, nil
}

// DomainSeparator reads DOMAIN_SEPARATOR() from the contract, for comparing
// against the locally computed separator.
func (r *AllowanceReader) DomainSeparator(ctx context.Context) (common.Hash, error) {
	values, err := r.call(ctx, "DOMAIN_SEPARATOR")
	if err != nil {
		return common.Hash{}, err
	}
	sep, ok := values[0].([32]byte)
	if !ok {
		return common.Hash{}, fmt.Errorf("domain separator: unsupported type %T", values[0])
	}
	return common.Hash(sep), nil
}

func (r *AllowanceReader) call(ctx context.Context, method string, args ...interface{}) ([]interface{}, error) {
	if r.caller == nil {
		return nil, fmt.Errorf("chain client is nil")
	}
	parsed, err := Permit2ABI()
	if err != nil {
		return nil, fmt.Errorf("parse permit2 abi: %w", err)
	}
	data, err := parsed.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	msg := ethereum.CallMsg{To: &r.permit2, Data: data}
	resp, err := r.caller.CallContract(ctx, msg, nil)
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
