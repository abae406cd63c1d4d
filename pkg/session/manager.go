// Package session holds the authenticated identity and its derived
// cart-count summary. State is restored from the profile slot on start,
// re-derived from the cart slot on every cart signal, and kept in step
// across application instances through storage watches.
package session

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/cloudonauts/storefront/pkg/backend"
	"github.com/cloudonauts/storefront/pkg/cart"
	"github.com/cloudonauts/storefront/pkg/identity"
	"github.com/cloudonauts/storefront/pkg/models"
	"github.com/cloudonauts/storefront/pkg/storage"
)

type Manager struct {
	slots storage.Store
	cart  *cart.Store
	api   *backend.Client

	mu    sync.Mutex
	user  *models.Profile
	count int

	stops []func()
}

func NewManager(slots storage.Store, cartStore *cart.Store, api *backend.Client) *Manager {
	m := &Manager{slots: slots, cart: cartStore, api: api}

	// The signal carries no payload; the count always comes from a fresh
	// read of the cart slot.
	m.stops = append(m.stops, cartStore.Subscribe(func() {
		m.recount()
	}))

	// Cart and profile writes from another instance arrive through
	// storage watches, the storage-event analog.
	m.stops = append(m.stops, slots.Watch(storage.KeyCart, func([]byte, bool) {
		m.recount()
	}))
	m.stops = append(m.stops, slots.Watch(storage.KeyUserAttributes, func(raw []byte, ok bool) {
		m.applyProfile(raw, ok)
	}))

	return m
}

// Restore reads the persisted profile on process start. A corrupt payload
// is discarded and the session starts unauthenticated; startup never
// fails on session state.
func (m *Manager) Restore(ctx context.Context) {
	raw, ok, err := m.slots.Get(ctx, storage.KeyUserAttributes)
	if err != nil {
		log.Printf("Warning: failed to read stored profile: %v", err)
		ok = false
	}
	if ok {
		var profile models.Profile
		if err := json.Unmarshal(raw, &profile); err != nil || profile.Sub == "" {
			log.Printf("Warning: discarding corrupt stored profile")
			if err := m.slots.Delete(ctx, storage.KeyUserAttributes); err != nil {
				log.Printf("Warning: failed to remove corrupt profile: %v", err)
			}
			ok = false
		} else {
			m.mu.Lock()
			m.user = &profile
			m.mu.Unlock()
		}
	}
	if !ok {
		m.mu.Lock()
		m.user = nil
		m.mu.Unlock()
	}

	m.recount()
}

// Current returns the authenticated profile, if any.
func (m *Manager) Current() (models.Profile, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return models.Profile{}, false
	}
	return *m.user, true
}

// CartCount is the derived header-badge count: the sum of all persisted
// cart quantities as of the last signal.
func (m *Manager) CartCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.count
}

// Login persists the profile durably and makes it the active session.
// The user-tracking call is fire-and-forget: failures are logged, never
// surfaced.
func (m *Manager) Login(ctx context.Context, profile models.Profile, tokens identity.Tokens) error {
	raw, err := json.Marshal(profile)
	if err != nil {
		return err
	}
	if err := m.slots.Set(ctx, storage.KeyUserAttributes, raw, 0); err != nil {
		return err
	}

	m.mu.Lock()
	m.user = &profile
	m.mu.Unlock()

	go func() {
		trackCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := m.api.TrackUser(trackCtx, profile, tokens.IDToken); err != nil {
			log.Printf("Warning: failed to track user %s: %v", profile.Sub, err)
		}
	}()
	return nil
}

// Logout destroys the session and forgets the cart: the cart is
// session-scoped, not device-scoped. The cart clear goes through the cart
// store so the change signal fires.
func (m *Manager) Logout(ctx context.Context) error {
	if err := m.slots.Delete(ctx, storage.KeyUserAttributes); err != nil {
		return err
	}

	m.mu.Lock()
	m.user = nil
	m.mu.Unlock()

	return m.cart.Clear(ctx)
}

// Close stops the cart subscription and storage watches.
func (m *Manager) Close() {
	for _, stop := range m.stops {
		stop()
	}
	m.stops = nil
}

func (m *Manager) recount() {
	count := cart.TotalItemCount(m.cart.Read(context.Background()))
	m.mu.Lock()
	m.count = count
	m.mu.Unlock()
}

// applyProfile adopts a profile change made by another instance: a write
// becomes the active session here too, a removal drops this instance to
// unauthenticated. Only identity state moves; the other instance's logout
// already cleared the shared cart slot itself.
func (m *Manager) applyProfile(raw []byte, ok bool) {
	if !ok {
		m.mu.Lock()
		m.user = nil
		m.mu.Unlock()
		return
	}

	var profile models.Profile
	if err := json.Unmarshal(raw, &profile); err != nil || profile.Sub == "" {
		log.Printf("Warning: ignoring corrupt profile change")
		return
	}
	m.mu.Lock()
	m.user = &profile
	m.mu.Unlock()
}
