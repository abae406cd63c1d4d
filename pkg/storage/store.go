// Package storage holds the client's persisted key/value slots: the cart,
// the last-fetched catalog listing, and the authenticated profile. Slots
// are plain JSON payloads with an optional expiry; every consumer decodes
// on read rather than holding a replica.
package storage

import (
	"context"
	"time"
)

// Slot keys shared by every component. All access goes through these
// constants so the cart, session and catalog agree on what lives where.
const (
	KeyCart           = "cart"
	KeyUserAttributes = "userAttributes"
	KeyAllProducts    = "allProducts"
)

// TTLCart is the cart slot's expiration horizon, re-applied on every
// write. The profile and catalog slots never expire.
var TTLCart = 7 * 24 * time.Hour

// Store is an expiring key/value slot with cross-instance change
// notification. A ttl of zero means the value never expires.
//
// Watch fires when another instance of the application writes or deletes
// the key. The callback receives the freshly re-read value (nil, false
// for a deletion); it must not trust any payload carried by the
// notification itself. The returned func stops the watch.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Watch(key string, fn func(value []byte, ok bool)) func()
}
