package visualizer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskstack/hqpik/internal/primitives"
)

func TestPublishFansOutToSubscribers(t *testing.T) {
	s := NewServer()
	a := s.subscribe()
	b := s.subscribe()
	defer s.unsubscribe(a.id)
	defer s.unsubscribe(b.id)

	s.Publish(Snapshot{Tasks: []TaskView{{Name: "t1"}}})

	select {
	case snap := <-a.ch:
		assert.Equal(t, "t1", snap.Tasks[0].Name)
	case <-time.After(time.Second):
		t.Fatal("subscriber a did not receive snapshot")
	}
	select {
	case snap := <-b.ch:
		assert.Equal(t, "t1", snap.Tasks[0].Name)
	case <-time.After(time.Second):
		t.Fatal("subscriber b did not receive snapshot")
	}
}

func TestPublishDropsWhenSubscriberBufferFull(t *testing.T) {
	s := NewServer()
	c := s.subscribe()
	defer s.unsubscribe(c.id)

	for i := 0; i < 100; i++ {
		s.Publish(Snapshot{})
	}
	// Must not block or panic; buffer capacity caps what's queued.
	assert.LessOrEqual(t, len(c.ch), cap(c.ch))
}

func TestBuildSnapshotCollectsPrimitives(t *testing.T) {
	store := primitives.New(nil, nil)
	require.NoError(t, store.SetPrimitive(primitives.Primitive{Name: "A", Kind: primitives.Point, FrameID: "ee"}))

	snap := BuildSnapshot(store, []TaskView{{Name: "t1", Priority: 1, Active: true}})
	require.Len(t, snap.Primitives, 1)
	assert.Equal(t, "A", snap.Primitives[0].Name)
	assert.Equal(t, "point", snap.Primitives[0].Kind)
	require.Len(t, snap.Tasks, 1)
	assert.Equal(t, "t1", snap.Tasks[0].Name)
}
