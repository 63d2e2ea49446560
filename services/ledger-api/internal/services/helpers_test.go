package services

import (
	"context"
	"sync"
	"time"

	"github.com/nimeshabuddhika/gojenga-ledger/pkg/store"
	"github.com/nimeshabuddhika/gojenga-ledger/pkg/views"
	"github.com/shopspring/decimal"
)

// faultyStore wraps a store and lets a test fail or observe chosen calls.
type faultyStore struct {
	store.Store
	mu          sync.Mutex
	adjustCalls int
	failAdjust  func(call int, key string, delta decimal.Decimal) error
	failDelete  func(ns store.Namespace, key string) error
	onGet       func(ctx context.Context, ns store.Namespace, key string) error
}

func (f *faultyStore) Get(ctx context.Context, ns store.Namespace, key string) (store.Item, error) {
	f.mu.Lock()
	hook := f.onGet
	f.mu.Unlock()
	if hook != nil {
		if err := hook(ctx, ns, key); err != nil {
			return nil, err
		}
	}
	return f.Store.Get(ctx, ns, key)
}

func (f *faultyStore) Delete(ctx context.Context, ns store.Namespace, key string) error {
	f.mu.Lock()
	hook := f.failDelete
	f.mu.Unlock()
	if hook != nil {
		if err := hook(ns, key); err != nil {
			return err
		}
	}
	return f.Store.Delete(ctx, ns, key)
}

func (f *faultyStore) AdjustDecimal(ctx context.Context, ns store.Namespace, key string, field string, delta decimal.Decimal) (store.Item, error) {
	f.mu.Lock()
	f.adjustCalls++
	call := f.adjustCalls
	hook := f.failAdjust
	f.mu.Unlock()
	if hook != nil {
		if err := hook(call, key, delta); err != nil {
			return nil, err
		}
	}
	return f.Store.AdjustDecimal(ctx, ns, key, field, delta)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []views.LedgerEvent
}

func (r *recordingPublisher) Publish(_ context.Context, event views.LedgerEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recordingPublisher) Close() {}

func (r *recordingPublisher) Events() []views.LedgerEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]views.LedgerEvent(nil), r.events...)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
