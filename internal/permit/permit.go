// Package permit builds and signs Permit2 AllowanceTransfer PermitSingle messages.
package permit

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"paymasterData/internal/model"
)

// CanonicalPermit2Address is the Permit2 deployment shared by most EVM chains.
var CanonicalPermit2Address = common.HexToAddress("0x000000000022D473030F116dDEE9F6B43aC78BA3")

// Build returns a PermitSingle for token/amount granted to spender.
// A nil sigDeadline is encoded as zero. Zero expiration and sigDeadline are
// passed through unchanged; how Permit2 treats them is up to the contract.
func Build(
	token common.Address,
	amount *uint256.Int,
	spender common.Address,
	nonce uint64,
	sigDeadline *uint256.Int,
	expiration uint64,
) (model.PermitSingle, error) {
	if amount == nil {
		amount = new(uint256.Int)
	}
	if sigDeadline == nil {
		sigDeadline = new(uint256.Int)
	}

	record := model.PermitSingle{
		Details: model.PermitDetails{
			Token:      token,
			Amount:     new(uint256.Int).Set(amount),
			Expiration: expiration,
			Nonce:      nonce,
		},
		Spender:     spender,
		SigDeadline: new(uint256.Int).Set(sigDeadline),
	}
	if err := model.CheckPermit(record); err != nil {
		return model.PermitSingle{}, err
	}
	return record, nil
}
