// Package payload encodes the paymasterData blob the paymaster decodes on-chain.
package payload

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"paymasterData/internal/model"
)

// Go shapes of the ABI tuples. Field names must match the component names.
type poolKeyTuple struct {
	Currency0   common.Address
	Currency1   common.Address
	Fee         *big.Int
	TickSpacing *big.Int
	Hooks       common.Address
}

type permitDetailsTuple struct {
	Token      common.Address
	Amount     *big.Int
	Expiration *big.Int
	Nonce      *big.Int
}

type permitSingleTuple struct {
	Details     permitDetailsTuple
	Spender     common.Address
	SigDeadline *big.Int
}

// Encode returns abi.encode(poolKey, permit, signature). Out-of-width fields
// fail with *model.EncodingRangeError; nothing is truncated.
func Encode(key model.PoolKey, permit model.PermitSingle, sig model.Signature) ([]byte, error) {
	if err := model.CheckPoolKey(key); err != nil {
		return nil, err
	}
	if err := model.CheckPermit(permit); err != nil {
		return nil, err
	}

	args, err := Arguments()
	if err != nil {
		return nil, fmt.Errorf("parse paymaster data abi: %w", err)
	}

	data, err := args.Pack(
		poolKeyTuple{
			Currency0:   key.Currency0,
			Currency1:   key.Currency1,
			Fee:         new(big.Int).SetUint64(uint64(key.Fee)),
			TickSpacing: big.NewInt(int64(key.TickSpacing)),
			Hooks:       key.Hooks,
		},
		permitSingleTuple{
			Details: permitDetailsTuple{
				Token:      permit.Details.Token,
				Amount:     permit.AmountOrZero().ToBig(),
				Expiration: new(big.Int).SetUint64(permit.Details.Expiration),
				Nonce:      new(big.Int).SetUint64(permit.Details.Nonce),
			},
			Spender:     permit.Spender,
			SigDeadline: permit.SigDeadlineOrZero().ToBig(),
		},
		sig.Bytes(),
	)
	if err != nil {
		return nil, fmt.Errorf("pack paymaster data: %w", err)
	}
	return data, nil
}

// Decode is the inverse of Encode, following the paymaster's abi.decode.
func Decode(data []byte) (model.PoolKey, model.PermitSingle, model.Signature, error) {
	args, err := Arguments()
	if err != nil {
		return model.PoolKey{}, model.PermitSingle{}, model.Signature{}, fmt.Errorf("parse paymaster data abi: %w", err)
	}

	values, err := args.Unpack(data)
	if err != nil {
		return model.PoolKey{}, model.PermitSingle{}, model.Signature{}, fmt.Errorf("unpack paymaster data: %w", err)
	}
	if len(values) != 3 {
		return model.PoolKey{}, model.PermitSingle{}, model.Signature{}, fmt.Errorf("unpack paymaster data: expected 3 values, got %d", len(values))
	}

	keyTuple := *abi.ConvertType(values[0], new(poolKeyTuple)).(*poolKeyTuple)
	permitTuple := *abi.ConvertType(values[1], new(permitSingleTuple)).(*permitSingleTuple)
	sigBytes, ok := values[2].([]byte)
	if !ok {
		return model.PoolKey{}, model.PermitSingle{}, model.Signature{}, fmt.Errorf("signature: unsupported type %T", values[2])
	}

	key, err := poolKeyFromTuple(keyTuple)
	if err != nil {
		return model.PoolKey{}, model.PermitSingle{}, model.Signature{}, err
	}
	permit, err := permitFromTuple(permitTuple)
	if err != nil {
		return model.PoolKey{}, model.PermitSingle{}, model.Signature{}, err
	}
	if len(sigBytes) != model.SignatureLength {
		return model.PoolKey{}, model.PermitSingle{}, model.Signature{}, fmt.Errorf("signature length %d, want %d", len(sigBytes), model.SignatureLength)
	}
	var sig model.Signature
	copy(sig[:], sigBytes)

	return key, permit, sig, nil
}

func poolKeyFromTuple(t poolKeyTuple) (model.PoolKey, error) {
	if !t.Fee.IsUint64() || t.Fee.Uint64() > model.MaxUint24 {
		return model.PoolKey{}, &model.EncodingRangeError{Field: "fee", Type: "uint24", Value: t.Fee.String()}
	}
	if !t.TickSpacing.IsInt64() || t.TickSpacing.Int64() < model.MinInt24 || t.TickSpacing.Int64() > model.MaxInt24 {
		return model.PoolKey{}, &model.EncodingRangeError{Field: "tickSpacing", Type: "int24", Value: t.TickSpacing.String()}
	}
	return model.PoolKey{
		Currency0:   t.Currency0,
		Currency1:   t.Currency1,
		Fee:         uint32(t.Fee.Uint64()),
		TickSpacing: int32(t.TickSpacing.Int64()),
		Hooks:       t.Hooks,
	}, nil
}

func permitFromTuple(t permitSingleTuple) (model.PermitSingle, error) {
	amount, overflow := uint256.FromBig(t.Details.Amount)
	if overflow {
		return model.PermitSingle{}, &model.EncodingRangeError{Field: "amount", Type: "uint160", Value: t.Details.Amount.String()}
	}
	deadline, overflow := uint256.FromBig(t.SigDeadline)
	if overflow {
		return model.PermitSingle{}, &model.EncodingRangeError{Field: "sigDeadline", Type: "uint256", Value: t.SigDeadline.String()}
	}
	permit := model.PermitSingle{
		Details: model.PermitDetails{
			Token:      t.Details.Token,
			Amount:     amount,
			Expiration: t.Details.Expiration.Uint64(),
			Nonce:      t.Details.Nonce.Uint64(),
		},
		Spender:     t.Spender,
		SigDeadline: deadline,
	}
	if err := model.CheckPermit(permit); err != nil {
		return model.PermitSingle{}, err
	}
	return permit, nil
}
