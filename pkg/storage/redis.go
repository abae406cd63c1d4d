package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// channelSlots carries slot-change notifications between application
// instances, the equivalent of the browser's storage event.
const channelSlots = "storefront:slots"

type slotEvent struct {
	Instance string `json:"instance"`
	Key      string `json:"key"`
}

func NewClient(addr, password string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
		Protocol: 2,
	})
}

// Redis persists slots in a Redis instance shared by every running copy of
// the storefront. Expiry rides on Redis TTLs; cross-instance watches ride
// on pub/sub. Each instance tags its own writes with a random id so it
// never reacts to itself, matching the storage event's other-tabs-only
// delivery.
type Redis struct {
	client   *redis.Client
	instance string
	pubsub   *redis.PubSub

	mu       sync.Mutex
	next     int
	watchers map[string]map[int]func([]byte, bool)
}

func NewRedis(client *redis.Client) (*Redis, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to reach redis: %w", err)
	}

	r := &Redis{
		client:   client,
		instance: uuid.NewString(),
		watchers: make(map[string]map[int]func([]byte, bool)),
	}
	r.pubsub = client.Subscribe(context.Background(), channelSlots)
	go r.listen()
	return r, nil
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read slot %q: %w", key, err)
	}
	return value, true, nil
}

func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write slot %q: %w", key, err)
	}
	r.notify(ctx, key)
	return nil
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete slot %q: %w", key, err)
	}
	r.notify(ctx, key)
	return nil
}

func (r *Redis) Watch(key string, fn func([]byte, bool)) func() {
	r.mu.Lock()
	id := r.next
	r.next++
	if r.watchers[key] == nil {
		r.watchers[key] = make(map[int]func([]byte, bool))
	}
	r.watchers[key][id] = fn
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		delete(r.watchers[key], id)
		r.mu.Unlock()
	}
}

func (r *Redis) Close() error {
	return r.pubsub.Close()
}

func (r *Redis) notify(ctx context.Context, key string) {
	payload, err := json.Marshal(slotEvent{Instance: r.instance, Key: key})
	if err != nil {
		return
	}
	// Notification is an optimization only; peers re-derive from the slot
	// on their next read even if this publish is lost.
	if err := r.client.Publish(ctx, channelSlots, payload).Err(); err != nil {
		log.Printf("Warning: failed to publish slot change for %q: %v", key, err)
	}
}

func (r *Redis) listen() {
	for msg := range r.pubsub.Channel() {
		var ev slotEvent
		if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
			log.Printf("Warning: ignoring malformed slot event: %v", err)
			continue
		}
		if ev.Instance == r.instance {
			continue
		}

		// Re-read the slot; the event names the key but never carries the
		// value.
		value, ok, err := r.Get(context.Background(), ev.Key)
		if err != nil {
			log.Printf("Warning: failed to re-read slot %q after change: %v", ev.Key, err)
			continue
		}

		r.mu.Lock()
		fns := make([]func([]byte, bool), 0, len(r.watchers[ev.Key]))
		for _, fn := range r.watchers[ev.Key] {
			fns = append(fns, fn)
		}
		r.mu.Unlock()

		for _, fn := range fns {
			fn(value, ok)
		}
	}
}
