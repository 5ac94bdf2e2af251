package model

import (
	"encoding/json"
)

// PayloadRecord is the hand-off record for a built paymaster payload.
type PayloadRecord struct {
	ID            string `json:"id"`
	ChainID       uint64 `json:"chain_id"`
	Network       string `json:"network"`
	Owner         string `json:"owner"`
	Paymaster     string `json:"paymaster"`
	PoolID        string `json:"pool_id"`
	Token         string `json:"token"`
	Amount        string `json:"amount"`
	Nonce         uint64 `json:"nonce"`
	Expiration    uint64 `json:"expiration"`
	SigDeadline   string `json:"sig_deadline"`
	PaymasterData string `json:"paymaster_data"`
	CreatedAt     string `json:"created_at"`
}

// MarshalJSON ensures PayloadRecord is encoded with stable field names.
func (r PayloadRecord) MarshalJSON() ([]byte, error) {
	type Alias PayloadRecord
	return json.Marshal(Alias(r))
}

// UnmarshalJSON decodes a PayloadRecord from JSON.
func (r *PayloadRecord) UnmarshalJSON(data []byte) error {
	type Alias PayloadRecord
	var a Alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*r = PayloadRecord(a)
	return nil
}
