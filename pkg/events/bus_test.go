package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusDelivers(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	sub, err := bus.Subscribe(context.Background(), TopicAnalysisCompleted)
	require.NoError(t, err)

	e := New(TopicAnalysisCompleted, AnalysisCompleted{Network: "bitcoin", Nakamoto: 3})
	require.NoError(t, bus.Publish(context.Background(), e))

	select {
	case got := <-sub.Events():
		assert.Equal(t, e.ID, got.ID)
		assert.Equal(t, 3, got.Payload.(AnalysisCompleted).Nakamoto)
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
}

func TestBusTopicIsolation(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	sub, err := bus.Subscribe(context.Background(), "other")
	require.NoError(t, err)

	require.NoError(t, bus.Publish(context.Background(), New(TopicAnalysisCompleted, nil)))

	select {
	case e := <-sub.Events():
		t.Fatalf("unexpected event %+v", e)
	case <-time.After(20 * time.Millisecond):
	}
}

func TestBusUnsubscribeOnContextCancel(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	sub, err := bus.Subscribe(ctx, "t")
	require.NoError(t, err)
	assert.Equal(t, 1, bus.SubscriberCount("t"))

	cancel()

	select {
	case _, ok := <-sub.Events():
		assert.False(t, ok, "channel should be closed")
	case <-time.After(time.Second):
		t.Fatal("subscription not closed after cancel")
	}
	assert.Eventually(t, func() bool { return bus.SubscriberCount("t") == 0 }, time.Second, 5*time.Millisecond)
}

func TestBusSlowSubscriberDrops(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	_, err := bus.Subscribe(context.Background(), "t")
	require.NoError(t, err)

	for i := 0; i < subscriptionBuffer+10; i++ {
		require.NoError(t, bus.Publish(context.Background(), New("t", i)))
	}
	assert.Equal(t, uint64(10), bus.Dropped())
}

func TestBusClose(t *testing.T) {
	bus := NewBus()
	sub, err := bus.Subscribe(context.Background(), "t")
	require.NoError(t, err)

	require.NoError(t, bus.Close())
	require.NoError(t, bus.Close())

	_, ok := <-sub.Events()
	assert.False(t, ok)

	assert.ErrorIs(t, bus.Publish(context.Background(), New("t", nil)), ErrClosed)
	_, err = bus.Subscribe(context.Background(), "t")
	assert.True(t, errors.Is(err, ErrClosed))
}

func TestBusConcurrentPublishAndUnsubscribe(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			sub, err := bus.Subscribe(context.Background(), "t")
			if err != nil {
				return
			}
			sub.Unsubscribe()
		}()
		go func(i int) {
			defer wg.Done()
			_ = bus.Publish(context.Background(), New("t", i))
		}(i)
	}
	wg.Wait()
}

type failingPublisher struct{ closed bool }

func (f *failingPublisher) Publish(context.Context, Event) error { return errors.New("unreachable") }
func (f *failingPublisher) Close() error                         { f.closed = true; return nil }

func TestFanout(t *testing.T) {
	bus := NewBus()
	sub, err := bus.Subscribe(context.Background(), "t")
	require.NoError(t, err)

	bad := &failingPublisher{}
	fan := NewFanout(nil, nil, Sink{Name: "broken", Publisher: bad}, Sink{Name: "bus", Publisher: bus})

	err = fan.Publish(context.Background(), New("t", "payload"))
	assert.Error(t, err)

	select {
	case e := <-sub.Events():
		assert.Equal(t, "payload", e.Payload)
	case <-time.After(time.Second):
		t.Fatal("healthy sink skipped after a failing one")
	}

	require.NoError(t, fan.Close())
	assert.True(t, bad.closed)
}
