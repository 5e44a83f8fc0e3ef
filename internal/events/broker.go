package events

import (
	"sync"
	"time"
)

// Entity names the kind of record a change touched.
type Entity string

const (
	EntityProduct      Entity = "product"
	EntityCostRecord   Entity = "cost_record"
	EntitySale         Entity = "sale"
	EntityFixedExpense Entity = "fixed_expense"
	EntityConfig       Entity = "config"
)

// Op is the mutation applied to the entity.
type Op string

const (
	OpCreated Op = "created"
	OpUpdated Op = "updated"
	OpDeleted Op = "deleted"
)

// Change is published after a mutation commits.
type Change struct {
	Entity Entity    `json:"entity"`
	Op     Op        `json:"op"`
	ID     int64     `json:"id,omitempty"`
	At     time.Time `json:"at"`
}

const subscriberBuffer = 32

// Broker fans changes out to subscribers. Slow subscribers miss events rather
// than blocking publishers.
type Broker struct {
	mu     sync.RWMutex
	subs   map[int]chan Change
	nextID int
	closed bool
}

// NewBroker returns an empty broker.
func NewBroker() *Broker {
	return &Broker{subs: make(map[int]chan Change)}
}

// Subscribe registers a listener. The returned cancel func closes the channel.
func (b *Broker) Subscribe() (<-chan Change, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Change, subscriberBuffer)
	if b.closed {
		close(ch)
		return ch, func() {}
	}

	id := b.nextID
	b.nextID++
	b.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if sub, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(sub)
			}
		})
	}
}

// Publish delivers c to every subscriber with room in its buffer.
func (b *Broker) Publish(c Change) {
	if c.At.IsZero() {
		c.At = time.Now()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs {
		select {
		case ch <- c:
		default:
		}
	}
}

// Close closes every subscriber channel. Later subscriptions receive a closed channel.
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}
