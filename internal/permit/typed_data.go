package permit

import (
	"fmt"
	"math/big"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"

	"paymasterData/internal/model"
)

const (
	DomainName  = "Permit2"
	PrimaryType = "PermitSingle"
)

// Domain is the Permit2 EIP-712 domain. Permit2 has no version field.
type Domain struct {
	ChainID uint64
	Permit2 common.Address
}

var permitTypes = apitypes.Types{
	"EIP712Domain": {
		{Name: "name", Type: "string"},
		{Name: "chainId", Type: "uint256"},
		{Name: "verifyingContract", Type: "address"},
	},
	"PermitDetails": {
		{Name: "token", Type: "address"},
		{Name: "amount", Type: "uint160"},
		{Name: "expiration", Type: "uint48"},
		{Name: "nonce", Type: "uint48"},
	},
	"PermitSingle": {
		{Name: "details", Type: "PermitDetails"},
		{Name: "spender", Type: "address"},
		{Name: "sigDeadline", Type: "uint256"},
	},
}

// TypedData returns the EIP-712 document a wallet signs for record.
// Integers are carried as decimal strings so the same document hashes
// locally and serialises for eth_signTypedData_v4.
func TypedData(record model.PermitSingle, domain Domain) apitypes.TypedData {
	types := make(apitypes.Types, len(permitTypes))
	for name, fields := range permitTypes {
		types[name] = append([]apitypes.Type(nil), fields...)
	}

	return apitypes.TypedData{
		Types:       types,
		PrimaryType: PrimaryType,
		Domain: apitypes.TypedDataDomain{
			Name:              DomainName,
			ChainId:           (*math.HexOrDecimal256)(new(big.Int).SetUint64(domain.ChainID)),
			VerifyingContract: domain.Permit2.Hex(),
		},
		Message: apitypes.TypedDataMessage{
			"details": map[string]interface{}{
				"token":      record.Details.Token.Hex(),
				"amount":     record.AmountOrZero().Dec(),
				"expiration": strconv.FormatUint(record.Details.Expiration, 10),
				"nonce":      strconv.FormatUint(record.Details.Nonce, 10),
			},
			"spender":     record.Spender.Hex(),
			"sigDeadline": record.SigDeadlineOrZero().Dec(),
		},
	}
}

// Digest returns keccak256("\x19\x01" || domainSeparator || hashStruct(record)).
func Digest(record model.PermitSingle, domain Domain) (common.Hash, error) {
	if err := model.CheckPermit(record); err != nil {
		return common.Hash{}, err
	}
	hash, _, err := apitypes.TypedDataAndHash(TypedData(record, domain))
	if err != nil {
		return common.Hash{}, fmt.Errorf("hash permit typed data: %w", err)
	}
	return common.BytesToHash(hash), nil
}

// DomainSeparator returns the EIP-712 domain separator for domain.
func DomainSeparator(domain Domain) (common.Hash, error) {
	typedData := TypedData(model.PermitSingle{}, domain)
	separator, err := typedData.HashStruct("EIP712Domain", typedData.Domain.Map())
	if err != nil {
		return common.Hash{}, fmt.Errorf("hash permit domain: %w", err)
	}
	return common.BytesToHash(separator), nil
}
