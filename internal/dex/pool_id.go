package dex

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/crypto"

	"paymasterData/internal/model"
)

// EncodePoolKey returns abi.encode(currency0, currency1, fee, tickSpacing, hooks).
func EncodePoolKey(key model.PoolKey) ([]byte, error) {
	if err := model.CheckPoolKey(key); err != nil {
		return nil, err
	}

	parsed, err := PoolKeyABI()
	if err != nil {
		return nil, fmt.Errorf("parse pool key abi: %w", err)
	}

	data, err := parsed.Methods["toId"].Inputs.Pack(
		key.Currency0,
		key.Currency1,
		new(big.Int).SetUint64(uint64(key.Fee)),
		big.NewInt(int64(key.TickSpacing)),
		key.Hooks,
	)
	if err != nil {
		return nil, fmt.Errorf("pack pool key: %w", err)
	}
	return data, nil
}

// PoolID computes keccak256(abi.encode(key)), matching PoolIdLibrary.toId.
// The key is hashed as given; currency order is not changed.
func PoolID(key model.PoolKey) (model.PoolID, error) {
	data, err := EncodePoolKey(key)
	if err != nil {
		return model.PoolID{}, err
	}
	return model.PoolID(crypto.Keccak256Hash(data)), nil
}

// MustPoolID is PoolID for keys known to be in range.
func MustPoolID(key model.PoolKey) model.PoolID {
	id, err := PoolID(key)
	if err != nil {
		panic(err)
	}
	return id
}
