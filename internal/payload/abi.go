package payload

import (
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// paymasterDataABIJSON mirrors the paymaster's
// abi.decode(data, (PoolKey, IAllowanceTransfer.PermitSingle, bytes)).
const paymasterDataABIJSON = `[
  {
    "inputs": [
      {
        "components": [
          {"internalType": "Currency", "name": "currency0", "type": "address"},
          {"internalType": "Currency", "name": "currency1", "type": "address"},
          {"internalType": "uint24", "name": "fee", "type": "uint24"},
          {"internalType": "int24", "name": "tickSpacing", "type": "int24"},
          {"internalType": "contract IHooks", "name": "hooks", "type": "address"}
        ],
        "internalType": "struct PoolKey",
        "name": "poolKey",
        "type": "tuple"
      },
      {
        "components": [
          {
            "components": [
              {"internalType": "address", "name": "token", "type": "address"},
              {"internalType": "uint160", "name": "amount", "type": "uint160"},
              {"internalType": "uint48", "name": "expiration", "type": "uint48"},
              {"internalType": "uint48", "name": "nonce", "type": "uint48"}
            ],
            "internalType": "struct IAllowanceTransfer.PermitDetails",
            "name": "details",
            "type": "tuple"
          },
          {"internalType": "address", "name": "spender", "type": "address"},
          {"internalType": "uint256", "name": "sigDeadline", "type": "uint256"}
        ],
        "internalType": "struct IAllowanceTransfer.PermitSingle",
        "name": "permit",
        "type": "tuple"
      },
      {"internalType": "bytes", "name": "signature", "type": "bytes"}
    ],
    "name": "paymasterData",
    "outputs": [],
    "stateMutability": "pure",
    "type": "function"
  }
]`

var (
	paymasterDataABI     abi.ABI
	paymasterDataABIOnce sync.Once
	paymasterDataABIErr  error
)

// Arguments returns the (PoolKey, PermitSingle, bytes) argument list.
func Arguments() (abi.Arguments, error) {
	paymasterDataABIOnce.Do(func() {
		paymasterDataABI, paymasterDataABIErr = abi.JSON(strings.NewReader(paymasterDataABIJSON))
	})
	if paymasterDataABIErr != nil {
		return nil, paymasterDataABIErr
	}
	return paymasterDataABI.Methods["paymasterData"].Inputs, nil
}
