package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroker_FansOut(t *testing.T) {
	b := NewBroker()
	a, cancelA := b.Subscribe()
	defer cancelA()
	c, cancelC := b.Subscribe()
	defer cancelC()

	b.Publish(Change{Entity: EntitySale, Op: OpCreated, ID: 7})

	for _, ch := range []<-chan Change{a, c} {
		select {
		case got := <-ch:
			assert.Equal(t, EntitySale, got.Entity)
			assert.Equal(t, int64(7), got.ID)
			assert.False(t, got.At.IsZero())
		case <-time.After(time.Second):
			t.Fatal("subscriber did not receive change")
		}
	}
}

func TestBroker_CancelClosesChannel(t *testing.T) {
	b := NewBroker()
	ch, cancel := b.Subscribe()
	cancel()
	cancel()

	_, ok := <-ch
	assert.False(t, ok)

	b.Publish(Change{Entity: EntityProduct, Op: OpDeleted})
}

func TestBroker_PublishDoesNotBlockOnFullSubscriber(t *testing.T) {
	b := NewBroker()
	ch, cancel := b.Subscribe()
	defer cancel()

	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberBuffer*3; i++ {
			b.Publish(Change{Entity: EntityConfig, Op: OpUpdated})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
	require.Len(t, ch, subscriberBuffer)
}

func TestBroker_Close(t *testing.T) {
	b := NewBroker()
	ch, _ := b.Subscribe()
	b.Close()

	_, ok := <-ch
	assert.False(t, ok)

	late, _ := b.Subscribe()
	_, ok = <-late
	assert.False(t, ok)
}
