package broadcast_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pxc1984/musicclubbot/club"
	"github.com/pxc1984/musicclubbot/club/broadcast"
)

type staticPeople struct {
	people []club.Person
}

func (s *staticPeople) Upsert(_ context.Context, id int64, name string) (club.Person, bool, error) {
	return club.Person{ID: id, Name: name}, false, nil
}

func (s *staticPeople) Get(_ context.Context, id int64) (club.Person, error) {
	for _, p := range s.people {
		if p.ID == id {
			return p, nil
		}
	}
	return club.Person{}, club.ErrNotFound
}

func (s *staticPeople) List(_ context.Context) ([]club.Person, error) {
	return s.people, nil
}

// recordingNotifier fails for the configured ids and records the rest.
type recordingNotifier struct {
	mu      sync.Mutex
	failing map[int64]bool
	sent    []int64
}

func (n *recordingNotifier) Notify(_ context.Context, personID int64, _ string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.failing[personID] {
		return club.ErrDeliveryFailed
	}
	n.sent = append(n.sent, personID)
	return nil
}

func people(ids ...int64) []club.Person {
	out := make([]club.Person, 0, len(ids))
	for _, id := range ids {
		out = append(out, club.Person{ID: id, Name: "p"})
	}
	return out
}

func TestSendAllDeliversToEveryone(t *testing.T) {
	notifier := &recordingNotifier{}
	pool := broadcast.New(&staticPeople{people: people(1, 2, 3, 4, 5)}, notifier, 3)

	delivered, total, err := pool.SendAll(context.Background(), "rehearsal moved")
	require.NoError(t, err)
	require.Equal(t, 5, total)
	require.Equal(t, 5, delivered)
	require.Len(t, notifier.sent, 5)
}

func TestSendAllIsolatesFailures(t *testing.T) {
	notifier := &recordingNotifier{failing: map[int64]bool{2: true, 4: true}}
	pool := broadcast.New(&staticPeople{people: people(1, 2, 3, 4, 5)}, notifier, 2)

	delivered, total, err := pool.SendAll(context.Background(), "hi")
	require.NoError(t, err)
	require.Equal(t, 5, total)
	require.Equal(t, 3, delivered)
}

func TestSendAllEmptyAudience(t *testing.T) {
	notifier := &recordingNotifier{}
	pool := broadcast.New(&staticPeople{}, notifier, 0)

	delivered, total, err := pool.SendAll(context.Background(), "hello?")
	require.NoError(t, err)
	require.Zero(t, total)
	require.Zero(t, delivered)
}

func TestSendAllStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	notifier := &recordingNotifier{}
	pool := broadcast.New(&staticPeople{people: people(1, 2, 3)}, notifier, 1)

	delivered, total, err := pool.SendAll(ctx, "too late")
	require.NoError(t, err)
	require.Equal(t, 3, total)
	require.LessOrEqual(t, delivered, 3)
}
