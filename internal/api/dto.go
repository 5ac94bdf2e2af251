package api

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"paymasterData/internal/model"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type poolIDResponse struct {
	PoolID model.PoolID `json:"pool_id"`
	Sorted bool         `json:"sorted"`
}

type selectPoolRequest struct {
	Token  string `json:"token" binding:"required"`
	Amount string `json:"amount"`
}

type selectPoolResponse struct {
	PoolKey   model.PoolKey `json:"pool_key"`
	PoolID    model.PoolID  `json:"pool_id"`
	Liquidity string        `json:"liquidity"`
}

type typedDataRequest struct {
	Owner       string  `json:"owner"`
	Token       string  `json:"token" binding:"required"`
	Amount      string  `json:"amount" binding:"required"`
	Nonce       *uint64 `json:"nonce"`
	SigDeadline string  `json:"sig_deadline"`
	Expiration  uint64  `json:"expiration"`
}

type typedDataResponse struct {
	Permit    model.PermitSingle     `json:"permit"`
	TypedData map[string]interface{} `json:"typed_data"`
	Digest    common.Hash            `json:"digest"`
}

type payloadRequest struct {
	PoolKey   model.PoolKey      `json:"pool_key"`
	Permit    model.PermitSingle `json:"permit"`
	Signature model.Signature    `json:"signature"`

	// Owner, when set, must match the signature's signer.
	Owner string `json:"owner"`

	// SkipLiquidityCheck lets a server without a chain connection encode
	// anyway. It is ignored when the server can read liquidity.
	SkipLiquidityCheck bool `json:"skip_liquidity_check"`
}

type payloadResponse struct {
	PaymasterData string               `json:"paymaster_data"`
	Liquidity     string               `json:"liquidity,omitempty"`
	Record        *model.PayloadRecord `json:"record,omitempty"`
}

type decodeRequest struct {
	PaymasterData string `json:"paymaster_data" binding:"required"`
}

type decodeResponse struct {
	PoolKey   model.PoolKey      `json:"pool_key"`
	PoolID    model.PoolID       `json:"pool_id"`
	Permit    model.PermitSingle `json:"permit"`
	Signature model.Signature    `json:"signature"`
	Signer    *common.Address    `json:"signer,omitempty"`
}

func parseAddress(field, value string) (common.Address, error) {
	if !common.IsHexAddress(value) {
		return common.Address{}, fmt.Errorf("%s: invalid address %q", field, value)
	}
	return common.HexToAddress(value), nil
}

// parseUint256 accepts decimal or 0x-prefixed hex. An empty string is zero.
func parseUint256(field, value string) (*uint256.Int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return new(uint256.Int), nil
	}
	var (
		out *uint256.Int
		err error
	)
	if strings.HasPrefix(value, "0x") || strings.HasPrefix(value, "0X") {
		out, err = uint256.FromHex(value)
	} else {
		out, err = uint256.FromDecimal(value)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: invalid number %q: %w", field, value, err)
	}
	return out, nil
}
