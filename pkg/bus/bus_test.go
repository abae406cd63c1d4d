package bus

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublishReachesAllSubscribers(t *testing.T) {
	b := New()
	first, second := 0, 0
	b.Subscribe(func() { first++ })
	b.Subscribe(func() { second++ })

	b.Publish()
	b.Publish()

	assert.Equal(t, 2, first)
	assert.Equal(t, 2, second)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	b := New()
	calls := 0
	stop := b.Subscribe(func() { calls++ })

	b.Publish()
	stop()
	b.Publish()

	assert.Equal(t, 1, calls)
}

func TestPublishWithNoSubscribers(t *testing.T) {
	b := New()
	assert.NotPanics(t, func() { b.Publish() })
}

func TestDeliveryIsSynchronous(t *testing.T) {
	b := New()
	done := false
	b.Subscribe(func() { done = true })

	b.Publish()
	assert.True(t, done, "subscriber must have run before Publish returns")
}
