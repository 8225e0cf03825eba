package session

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamescl604/MSFSVoiceAttackPlugin/datadef"
)

func snapshotOf(t *testing.T, v int32) *datadef.Snapshot {
	t.Helper()
	l := datadef.Layout{ID: 4, Fields: []datadef.FieldSpec{{Name: "A", Type: datadef.Int32}}}
	buf, err := l.Encode([]datadef.Value{datadef.IntValue(v)})
	require.NoError(t, err)
	snap, err := l.Decode(buf)
	require.NoError(t, err)
	return snap
}

func TestStorePendingLifecycle(t *testing.T) {
	s := NewStore()
	req := datadef.RequestID(1)

	assert.False(t, s.Pending(req))
	assert.Nil(t, s.Snapshot(4))

	s.MarkPending(req)
	assert.True(t, s.Pending(req))

	snap := snapshotOf(t, 10)
	s.Resolve(req, snap)
	assert.False(t, s.Pending(req))
	assert.Same(t, snap, s.Snapshot(4))
}

func TestStoreResolvesToLatest(t *testing.T) {
	s := NewStore()
	req := datadef.RequestID(1)

	s.MarkPending(req)
	s.MarkPending(req)

	s.Resolve(req, snapshotOf(t, 1))
	assert.True(t, s.Pending(req), "second submission still outstanding")

	latest := snapshotOf(t, 2)
	s.Resolve(req, latest)
	assert.False(t, s.Pending(req))
	assert.Same(t, latest, s.Snapshot(4))
}

func TestStoreResolveWithoutPending(t *testing.T) {
	s := NewStore()
	s.Resolve(7, nil)
	assert.False(t, s.Pending(7))

	s.MarkPending(7)
	s.Resolve(7, nil)
	assert.False(t, s.Pending(7), "a failed decode still settles the request")
}

func TestStoreUnmark(t *testing.T) {
	s := NewStore()
	req := datadef.RequestID(3)
	snap := snapshotOf(t, 5)
	s.Resolve(req, snap)

	s.MarkPending(req)
	s.MarkPending(req)
	s.Unmark(req)
	assert.True(t, s.Pending(req))
	s.Unmark(req)
	assert.False(t, s.Pending(req))
	assert.Same(t, snap, s.Snapshot(4), "unmark leaves the snapshot alone")

	s.Unmark(req)
	assert.False(t, s.Pending(req))
}

func TestStoreReset(t *testing.T) {
	s := NewStore()
	snap := snapshotOf(t, 3)
	s.Resolve(0, snap)
	s.MarkPending(0)
	s.MarkPending(1)

	s.Reset()
	assert.False(t, s.Pending(0))
	assert.False(t, s.Pending(1))
	assert.Same(t, snap, s.Snapshot(4), "snapshots survive a reset")
}

func TestStoreConcurrentAccess(t *testing.T) {
	s := NewStore()
	req := datadef.RequestID(2)
	const rounds = 500

	snaps := make([]*datadef.Snapshot, rounds+1)
	for i := 1; i <= rounds; i++ {
		snaps[i] = snapshotOf(t, int32(i))
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 1; i <= rounds; i++ {
			s.MarkPending(req)
			s.Resolve(req, snaps[i])
		}
	}()

	lastSeen := int32(0)
	for {
		pending := s.Pending(req)
		if snap := s.Snapshot(4); snap != nil {
			v, _ := snap.Lookup("A")
			assert.GreaterOrEqual(t, v.Int32(), lastSeen, "snapshots only move forward")
			lastSeen = v.Int32()
		}
		if !pending && lastSeen == rounds {
			break
		}
	}
	wg.Wait()
}
