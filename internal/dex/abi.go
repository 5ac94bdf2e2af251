package dex

import (
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// poolKeyABIJSON describes PoolIdLibrary.toId's encoding as a pseudo-method so
// its inputs can be packed exactly like abi.encode(PoolKey).
const poolKeyABIJSON = `[
  {
    "inputs": [
      {"internalType": "Currency", "name": "currency0", "type": "address"},
      {"internalType": "Currency", "name": "currency1", "type": "address"},
      {"internalType": "uint24", "name": "fee", "type": "uint24"},
      {"internalType": "int24", "name": "tickSpacing", "type": "int24"},
      {"internalType": "contract IHooks", "name": "hooks", "type": "address"}
    ],
    "name": "toId",
    "outputs": [{"internalType": "PoolId", "name": "", "type": "bytes32"}],
    "stateMutability": "pure",
    "type": "function"
  }
]`

const stateViewABIJSON = `[
  {
    "inputs": [{"internalType": "PoolId", "name": "poolId", "type": "bytes32"}],
    "name": "getLiquidity",
    "outputs": [{"internalType": "uint128", "name": "liquidity", "type": "uint128"}],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [{"internalType": "PoolId", "name": "poolId", "type": "bytes32"}],
    "name": "getSlot0",
    "outputs": [
      {"internalType": "uint160", "name": "sqrtPriceX96", "type": "uint160"},
      {"internalType": "int24", "name": "tick", "type": "int24"},
      {"internalType": "uint24", "name": "protocolFee", "type": "uint24"},
      {"internalType": "uint24", "name": "lpFee", "type": "uint24"}
    ],
    "stateMutability": "view",
    "type": "function"
  }
]`

var (
	poolKeyABI     abi.ABI
	poolKeyABIOnce sync.Once
	poolKeyABIErr  error

	stateViewABI     abi.ABI
	stateViewABIOnce sync.Once
	stateViewABIErr  error
)

// PoolKeyABI returns the parsed pool key encoding ABI.
func PoolKeyABI() (abi.ABI, error) {
	poolKeyABIOnce.Do(func() {
		poolKeyABI, poolKeyABIErr = abi.JSON(strings.NewReader(poolKeyABIJSON))
	})
	return poolKeyABI, poolKeyABIErr
}

// StateViewABI returns the parsed Uniswap v4 StateView ABI.
func StateViewABI() (abi.ABI, error) {
	stateViewABIOnce.Do(func() {
		stateViewABI, stateViewABIErr = abi.JSON(strings.NewReader(stateViewABIJSON))
	})
	return stateViewABI, stateViewABIErr
}
