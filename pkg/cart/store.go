// Package cart implements the persisted cart and its derived views. The
// slot is the sole source of truth: every mutation is a read-modify-write
// of the whole mapping followed by a broadcast signal, and every consumer
// re-derives from the slot instead of holding its own copy.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cloudonauts/storefront/pkg/bus"
	"github.com/cloudonauts/storefront/pkg/storage"
)

// Items maps a product key to its desired quantity. Absence means "not in
// cart"; a quantity is always positive, since decrementing to zero removes
// the key outright.
type Items map[string]int

// ErrInventoryLimit reports a refused increment: the quantity already
// equals the product's inventory, so no mutation happened.
var ErrInventoryLimit = errors.New("cart: quantity already at inventory limit")

// Store is the persisted cart. Mutations are last-write-wins over the
// whole mapping; concurrent writers are accepted as sequential user
// actions, not guarded by a transaction.
type Store struct {
	slots   storage.Store
	signals *bus.Bus
}

func NewStore(slots storage.Store) *Store {
	return &Store{slots: slots, signals: bus.New()}
}

// Subscribe registers a callback fired synchronously after every mutation
// that changed cart state. The callback carries no payload; re-read the
// store instead.
func (s *Store) Subscribe(fn func()) func() {
	return s.signals.Subscribe(fn)
}

// Read deserializes the persisted cart. Absent or malformed payloads come
// back as an empty mapping, never as an error: a corrupt cart must not
// take the page down.
func (s *Store) Read(ctx context.Context) Items {
	raw, ok, err := s.slots.Get(ctx, storage.KeyCart)
	if err != nil || !ok {
		return Items{}
	}

	var items Items
	if err := json.Unmarshal(raw, &items); err != nil {
		return Items{}
	}
	for pid, qty := range items {
		if qty < 1 {
			delete(items, pid)
		}
	}
	if items == nil {
		items = Items{}
	}
	return items
}

// Write persists the whole mapping with the 7-day expiration horizon.
func (s *Store) Write(ctx context.Context, items Items) error {
	if items == nil {
		items = Items{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}
	if err := s.slots.Set(ctx, storage.KeyCart, raw, storage.TTLCart); err != nil {
		return fmt.Errorf("failed to persist cart: %w", err)
	}
	return nil
}

// Clear persists an empty mapping. Used on logout and after a successful
// order.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.Write(ctx, Items{}); err != nil {
		return err
	}
	s.signals.Publish()
	return nil
}

// Add puts the product in the cart at quantity 1. Adding an already
// present product is a no-op, not an additive bump; the return reports
// whether anything changed so the view can warn "already in cart".
func (s *Store) Add(ctx context.Context, pid string) (bool, error) {
	items := s.Read(ctx)
	if _, ok := items[pid]; ok {
		return false, nil
	}

	items[pid] = 1
	if err := s.Write(ctx, items); err != nil {
		return false, err
	}
	s.signals.Publish()
	return true, nil
}

// Increment bumps the quantity by one. The bump is refused outright, with
// no mutation, once the quantity has reached the product's inventory.
func (s *Store) Increment(ctx context.Context, pid string, inventory int) error {
	items := s.Read(ctx)
	qty := items[pid]
	if qty >= inventory {
		return ErrInventoryLimit
	}

	items[pid] = qty + 1
	if err := s.Write(ctx, items); err != nil {
		return err
	}
	s.signals.Publish()
	return nil
}

// Decrement lowers the quantity by one; reaching zero removes the entry
// entirely, so a persisted quantity is never zero or negative.
func (s *Store) Decrement(ctx context.Context, pid string) error {
	items := s.Read(ctx)
	qty, ok := items[pid]
	if !ok {
		return nil
	}

	if qty <= 1 {
		delete(items, pid)
	} else {
		items[pid] = qty - 1
	}
	if err := s.Write(ctx, items); err != nil {
		return err
	}
	s.signals.Publish()
	return nil
}

// Remove deletes the entry unconditionally.
func (s *Store) Remove(ctx context.Context, pid string) error {
	items := s.Read(ctx)
	if _, ok := items[pid]; !ok {
		return nil
	}

	delete(items, pid)
	if err := s.Write(ctx, items); err != nil {
		return err
	}
	s.signals.Publish()
	return nil
}
