package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"storefront/internal/repository/blob"

	"github.com/wb-go/wbf/dbpg"
	"github.com/wb-go/wbf/retry"
)

const schema = `
	CREATE TABLE IF NOT EXISTS blobs (
		namespace  TEXT        NOT NULL,
		key        TEXT        NOT NULL,
		value      BYTEA       NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (namespace, key)
	)
`

type BlobRepository struct {
	db      *dbpg.DB
	quota   int64
	retries retry.Strategy
}

func NewBlobRepository(db *dbpg.DB, quota int64, retries retry.Strategy) *BlobRepository {
	return &BlobRepository{
		db:      db,
		quota:   quota,
		retries: retries,
	}
}

func (r *BlobRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecWithRetry(ctx, r.retries, schema); err != nil {
		return fmt.Errorf("failed to create blobs table: %w", err)
	}
	return nil
}

func (r *BlobRepository) Get(ctx context.Context, namespace, key string) ([]byte, error) {
	if err := blob.ValidateKey(namespace, key); err != nil {
		return nil, err
	}

	query := `SELECT value FROM blobs WHERE namespace = $1 AND key = $2`

	row, err := r.db.QueryRowWithRetry(ctx, r.retries, query, namespace, key)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query blob: %v", blob.ErrStorageError, err)
	}

	var value []byte
	err = row.Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, blob.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to scan blob: %v", blob.ErrStorageError, err)
	}

	return value, nil
}

func (r *BlobRepository) Put(ctx context.Context, namespace, key string, value []byte) error {
	if err := blob.ValidateKey(namespace, key); err != nil {
		return err
	}

	if r.quota > 0 {
		used, err := r.usage(ctx, namespace, key)
		if err != nil {
			return err
		}
		if err := blob.CheckQuota(r.quota, used, int64(len(value))); err != nil {
			return err
		}
	}

	query := `
		INSERT INTO blobs (namespace, key, value, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (namespace, key)
		DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`

	if _, err := r.db.ExecWithRetry(ctx, r.retries, query, namespace, key, value, time.Now()); err != nil {
		return fmt.Errorf("%w: failed to save blob: %v", blob.ErrStorageError, err)
	}

	return nil
}

func (r *BlobRepository) Delete(ctx context.Context, namespace, key string) error {
	if err := blob.ValidateKey(namespace, key); err != nil {
		return err
	}

	query := `DELETE FROM blobs WHERE namespace = $1 AND key = $2`

	if _, err := r.db.ExecWithRetry(ctx, r.retries, query, namespace, key); err != nil {
		return fmt.Errorf("%w: failed to delete blob: %v", blob.ErrStorageError, err)
	}

	return nil
}

func (r *BlobRepository) usage(ctx context.Context, namespace, key string) (int64, error) {
	query := `SELECT COALESCE(SUM(octet_length(value)), 0) FROM blobs WHERE namespace = $1 AND key <> $2`

	row, err := r.db.QueryRowWithRetry(ctx, r.retries, query, namespace, key)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to query usage: %v", blob.ErrStorageError, err)
	}

	var used int64
	if err := row.Scan(&used); err != nil {
		return 0, fmt.Errorf("%w: failed to scan usage: %v", blob.ErrStorageError, err)
	}
	return used, nil
}
