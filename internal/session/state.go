// Package session owns the who-is-logged-in state of the client. The
// Manager is the only writer; everything else observes.
package session

import (
	"context"
	"sync"

	"github.com/eventhive/eventhive-go/internal/apperrors"
	"github.com/eventhive/eventhive-go/internal/models"
)

// State is a closed union: Loading, Unauthenticated, Authenticated or
// Failed, exactly one at a time. The unexported marker keeps the set
// closed to this package.
type State interface {
	sessionState()
}

// Loading is the initial state before the stored session has been checked.
type Loading struct{}

// Unauthenticated means no valid profile and tokens are held.
type Unauthenticated struct{}

// Authenticated holds the profile and tokens of the signed in user.
// Both are always present and came from a successful gateway response.
type Authenticated struct {
	User   models.UserProfile
	Tokens models.TokenPair
}

// Failed means the last session defining operation failed. Message is
// ready to display; gated features should treat this like Unauthenticated.
type Failed struct {
	Message string
	Err     *apperrors.Error
}

func (Loading) sessionState()         {}
func (Unauthenticated) sessionState() {}
func (Authenticated) sessionState()   {}
func (Failed) sessionState()          {}

// subscriberBuffer bounds how far a subscriber may lag before old states
// are dropped in favor of newer ones.
const subscriberBuffer = 8

// broadcaster is a hot, stateful stream of session states: one writer,
// many readers, the latest state immediately visible to new subscribers.
type broadcaster struct {
	mu      sync.Mutex
	current State
	subs    map[uint64]chan State
	nextID  uint64
}

func newBroadcaster(initial State) *broadcaster {
	return &broadcaster{
		current: initial,
		subs:    make(map[uint64]chan State),
	}
}

// Current returns the latest published state.
func (b *broadcaster) Current() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current
}

// Publish makes s the current state and fans it out. A subscriber that
// stopped draining loses its oldest pending state rather than blocking
// the writer.
func (b *broadcaster) Publish(s State) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.current = s
	for _, ch := range b.subs {
		select {
		case ch <- s:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- s
		}
	}
}

// Subscribe returns a channel that yields the current state immediately
// and then every published state in order. The channel closes when ctx is
// done; the stream itself never terminates on its own.
func (b *broadcaster) Subscribe(ctx context.Context) <-chan State {
	ch := make(chan State, subscriberBuffer)

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = ch
	ch <- b.current
	b.mu.Unlock()

	go func() {
		<-ctx.Done()

		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
		close(ch)
	}()

	return ch
}
