// Package store is the keyed item store the ledger persists into. Items are flat string maps
// addressed by namespace and key. Every implementation guarantees that AdjustDecimal is atomic
// per key; no isolation is offered across keys.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound      = errors.New("item not found")
	ErrDuplicate     = errors.New("item already exists")
	ErrMalformedItem = errors.New("malformed item")
)

// Namespace is a logical table. Production and test data live in different namespaces.
type Namespace string

const (
	NamespaceLedger        Namespace = "ledger"
	NamespaceLedgerTest    Namespace = "ledgerTest"
	NamespaceUsers         Namespace = "users"
	NamespaceUsersTest     Namespace = "usersTest"
	NamespacePortfolio     Namespace = "portfolio"
	NamespacePortfolioTest Namespace = "portfolioTest"
)

// Item is a stored record: attribute name -> value.
type Item map[string]string

// Clone returns a copy that does not share the underlying map.
func (i Item) Clone() Item {
	out := make(Item, len(i))
	for k, v := range i {
		out[k] = v
	}
	return out
}

// Store is implemented by the memory, redis and postgres backends.
type Store interface {
	// Get returns the item or ErrNotFound.
	Get(ctx context.Context, ns Namespace, key string) (Item, error)
	// Create inserts a new item; ErrDuplicate if the key exists.
	Create(ctx context.Context, ns Namespace, key string, item Item) error
	// Update merges fields into an existing item; ErrNotFound if absent.
	Update(ctx context.Context, ns Namespace, key string, fields Item) error
	// Delete removes the item. Deleting a missing key is not an error.
	Delete(ctx context.Context, ns Namespace, key string) error
	// AdjustDecimal atomically adds delta to a decimal field and returns the updated item.
	AdjustDecimal(ctx context.Context, ns Namespace, key string, field string, delta decimal.Decimal) (Item, error)
	// Ping checks connectivity.
	Ping(ctx context.Context) error
}

// addDecimal parses item[field], adds delta and writes the result back into item.
func addDecimal(item Item, field string, delta decimal.Decimal) error {
	current, err := decimal.NewFromString(item[field])
	if err != nil {
		return fmt.Errorf("%w: field %q: %v", ErrMalformedItem, field, err)
	}
	item[field] = current.Add(delta).String()
	return nil
}

func validateKey(ns Namespace, key string) error {
	if ns == "" || key == "" {
		return fmt.Errorf("%w: empty namespace or key", ErrMalformedItem)
	}
	return nil
}
