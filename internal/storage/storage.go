package storage

import (
	"context"

	"paymasterData/internal/model"
)

// Sink receives built payloads for the external submission path.
type Sink interface {
	PutPayloadBatch(ctx context.Context, records []model.PayloadRecord) error
}

// Multi writes every batch to each sink in order and stops at the first error.
type Multi []Sink

func (m Multi) PutPayloadBatch(ctx context.Context, records []model.PayloadRecord) error {
	for _, sink := range m {
		if err := sink.PutPayloadBatch(ctx, records); err != nil {
			return err
		}
	}
	return nil
}
