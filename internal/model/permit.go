package model

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// PermitDetails is the Permit2 allowance detail block.
type PermitDetails struct {
	Token      common.Address `json:"token"`
	Amount     *uint256.Int   `json:"amount"`
	Expiration uint64         `json:"expiration"`
	Nonce      uint64         `json:"nonce"`
}

// PermitSingle is a one-time Permit2 allowance for a single token.
type PermitSingle struct {
	Details     PermitDetails  `json:"details"`
	Spender     common.Address `json:"spender"`
	SigDeadline *uint256.Int   `json:"sig_deadline"`
}

// AmountOrZero returns the amount, treating nil as zero.
func (p PermitSingle) AmountOrZero() *uint256.Int {
	if p.Details.Amount == nil {
		return new(uint256.Int)
	}
	return p.Details.Amount
}

// SigDeadlineOrZero returns the signature deadline, treating nil as zero.
func (p PermitSingle) SigDeadlineOrZero() *uint256.Int {
	if p.SigDeadline == nil {
		return new(uint256.Int)
	}
	return p.SigDeadline
}
