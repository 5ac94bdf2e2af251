package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"paymasterData/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS sponsored_payloads (
	id             BIGSERIAL PRIMARY KEY,
	record_id      UUID        NOT NULL,
	chain_id       BIGINT      NOT NULL,
	network        TEXT        NOT NULL,
	owner          TEXT        NOT NULL,
	paymaster      TEXT        NOT NULL,
	pool_id        TEXT        NOT NULL,
	token          TEXT        NOT NULL,
	amount         NUMERIC(49) NOT NULL,
	nonce          BIGINT      NOT NULL,
	expiration     BIGINT      NOT NULL,
	sig_deadline   NUMERIC(78) NOT NULL,
	paymaster_data TEXT        NOT NULL,
	created_at     TIMESTAMPTZ NOT NULL,
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (chain_id, owner, token, nonce)
)`

// Store persists payload hand-off records in Postgres.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// EnsureSchema creates the sponsored_payloads table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create sponsored_payloads: %w", err)
	}
	return nil
}

// PutPayloadBatch inserts records. A rebuilt payload for the same owner,
// token and nonce replaces the earlier row.
func (s *Store) PutPayloadBatch(ctx context.Context, records []model.PayloadRecord) error {
	if len(records) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, r := range records {
		batch.Queue(`
			INSERT INTO sponsored_payloads (
				record_id, chain_id, network, owner, paymaster, pool_id, token, amount, nonce,
				expiration, sig_deadline, paymaster_data, created_at, updated_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,now())
			ON CONFLICT (chain_id, owner, token, nonce)
			DO UPDATE SET
				record_id = EXCLUDED.record_id,
				paymaster = EXCLUDED.paymaster,
				pool_id = EXCLUDED.pool_id,
				amount = EXCLUDED.amount,
				expiration = EXCLUDED.expiration,
				sig_deadline = EXCLUDED.sig_deadline,
				paymaster_data = EXCLUDED.paymaster_data,
				created_at = EXCLUDED.created_at,
				updated_at = now()
		`,
			r.ID,
			int64(r.ChainID),
			r.Network,
			r.Owner,
			r.Paymaster,
			r.PoolID,
			r.Token,
			r.Amount,
			int64(r.Nonce),
			int64(r.Expiration),
			r.SigDeadline,
			r.PaymasterData,
			r.CreatedAt,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range records {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}
