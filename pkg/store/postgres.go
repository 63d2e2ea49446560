package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/nimeshabuddhika/gojenga-ledger/pkg/database"
	"github.com/shopspring/decimal"
)

const (
	queryGetItem = `SELECT fields FROM kv_items WHERE namespace = $1 AND item_key = $2`

	queryGetItemForUpdate = `SELECT fields FROM kv_items WHERE namespace = $1 AND item_key = $2 FOR UPDATE`

	queryCreateItem = `INSERT INTO kv_items (namespace, item_key, fields)
		VALUES ($1, $2, $3::jsonb)
		ON CONFLICT (namespace, item_key) DO NOTHING`

	queryMergeItem = `UPDATE kv_items SET fields = fields || $3::jsonb, updated_at = NOW()
		WHERE namespace = $1 AND item_key = $2`

	queryDeleteItem = `DELETE FROM kv_items WHERE namespace = $1 AND item_key = $2`
)

// PostgresStore keeps items in the kv_items table with fields as a jsonb document.
type PostgresStore struct {
	db *database.DB
}

func NewPostgresStore(db *database.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (p *PostgresStore) Get(ctx context.Context, ns Namespace, key string) (Item, error) {
	if err := validateKey(ns, key); err != nil {
		return nil, err
	}
	var raw []byte
	row := p.db.QueryRow
	if IsPrimaryRead(ctx) {
		row = p.db.QueryRowPrimary
	}
	if err := row(ctx, queryGetItem, string(ns), key).Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return decodeFields(raw)
}

func (p *PostgresStore) Create(ctx context.Context, ns Namespace, key string, item Item) error {
	if err := validateKey(ns, key); err != nil {
		return err
	}
	raw, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedItem, err)
	}
	tag, err := p.db.Exec(ctx, queryCreateItem, string(ns), key, raw)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrDuplicate
	}
	return nil
}

func (p *PostgresStore) Update(ctx context.Context, ns Namespace, key string, fields Item) error {
	if err := validateKey(ns, key); err != nil {
		return err
	}
	if fields == nil {
		fields = Item{}
	}
	raw, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedItem, err)
	}
	tag, err := p.db.Exec(ctx, queryMergeItem, string(ns), key, raw)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *PostgresStore) Delete(ctx context.Context, ns Namespace, key string) error {
	if err := validateKey(ns, key); err != nil {
		return err
	}
	_, err := p.db.Exec(ctx, queryDeleteItem, string(ns), key)
	return err
}

// AdjustDecimal locks the row for the duration of the read-modify-write.
func (p *PostgresStore) AdjustDecimal(ctx context.Context, ns Namespace, key string, field string, delta decimal.Decimal) (Item, error) {
	if err := validateKey(ns, key); err != nil {
		return nil, err
	}
	var updated Item
	err := p.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		var raw []byte
		if err := tx.QueryRow(ctx, queryGetItemForUpdate, string(ns), key).Scan(&raw); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}
		item, err := decodeFields(raw)
		if err != nil {
			return err
		}
		if err := addDecimal(item, field, delta); err != nil {
			return err
		}
		patch, err := json.Marshal(Item{field: item[field]})
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, queryMergeItem, string(ns), key, patch); err != nil {
			return err
		}
		updated = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (p *PostgresStore) Ping(ctx context.Context) error {
	return p.db.Ping(ctx)
}

func decodeFields(raw []byte) (Item, error) {
	item := Item{}
	if err := json.Unmarshal(raw, &item); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedItem, err)
	}
	return item, nil
}
