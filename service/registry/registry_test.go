package registry

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	name string
	id   int64
}

func TestRegistry_AddLoadRemove(t *testing.T) {
	reg := New[entry](0)

	id, err := reg.Add(&entry{name: "a"}, func(id int64, e *entry) error {
		e.id = id
		return nil
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, id)

	got, err := reg.Load(id)
	require.NoError(t, err)
	assert.Equal(t, "a", got.name)
	assert.Equal(t, id, got.id)

	removed, err := reg.Remove(id)
	require.NoError(t, err)
	assert.Same(t, got, removed)

	_, err = reg.Load(id)
	assert.ErrorIs(t, err, ErrUnknownID)
	_, err = reg.Remove(id)
	assert.ErrorIs(t, err, ErrUnknownID)
}

func TestRegistry_InvalidIDs(t *testing.T) {
	reg := New[entry](0)
	for _, id := range []int64{0, -1, -100} {
		_, err := reg.Load(id)
		assert.ErrorIs(t, err, ErrInvalidID)
		_, err = reg.Remove(id)
		assert.ErrorIs(t, err, ErrInvalidID)
	}
	_, err := reg.Load(42)
	assert.ErrorIs(t, err, ErrUnknownID)
	_, err = reg.Add(nil, nil)
	assert.ErrorIs(t, err, ErrNilEntity)
}

func TestRegistry_IDsNeverReused(t *testing.T) {
	reg := New[entry](1)
	first, err := reg.Add(&entry{}, nil)
	require.NoError(t, err)

	_, err = reg.Add(&entry{}, nil)
	assert.ErrorIs(t, err, ErrFull)

	_, err = reg.Remove(first)
	require.NoError(t, err)

	second, err := reg.Add(&entry{}, nil)
	require.NoError(t, err)
	assert.Greater(t, second, first)
}

func TestRegistry_InitFailureUnwinds(t *testing.T) {
	reg := New[entry](0)
	boom := errors.New("boom")
	id, err := reg.Add(&entry{}, func(int64, *entry) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, id)
	assert.Equal(t, 0, reg.Len())
	_, err = reg.Load(reg.LastID())
	assert.ErrorIs(t, err, ErrUnknownID)
}

func TestRegistry_RemoveIf(t *testing.T) {
	reg := New[entry](0)
	id, _ := reg.Add(&entry{name: "busy"}, nil)
	busy := errors.New("busy")

	_, err := reg.RemoveIf(id, func(e *entry) error {
		if e.name == "busy" {
			return busy
		}
		return nil
	})
	assert.ErrorIs(t, err, busy)
	assert.Equal(t, 1, reg.Len())

	_, err = reg.RemoveIf(id, func(*entry) error { return nil })
	assert.NoError(t, err)
	assert.Equal(t, 0, reg.Len())
}

func TestRegistry_ConcurrentAdd(t *testing.T) {
	reg := New[entry](0)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_, err := reg.Add(&entry{}, nil)
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1600, reg.Len())
	assert.EqualValues(t, 1600, reg.LastID())

	count := 0
	reg.Range(func(int64, *entry) bool {
		count++
		return true
	})
	assert.Equal(t, 1600, count)
}

func TestRegistry_ReservePublish(t *testing.T) {
	reg := New[entry](2)

	id, err := reg.Reserve()
	require.NoError(t, err)
	_, err = reg.Load(id)
	assert.ErrorIs(t, err, ErrUnknownID, "reserved ids stay invisible")
	assert.Equal(t, 0, reg.Len())

	// a reservation counts toward capacity
	_, err = reg.Add(&entry{}, nil)
	require.NoError(t, err)
	_, err = reg.Reserve()
	assert.ErrorIs(t, err, ErrFull)

	require.NoError(t, reg.Publish(id, &entry{name: "published"}))
	got, err := reg.Load(id)
	require.NoError(t, err)
	assert.Equal(t, "published", got.name)
	assert.ErrorIs(t, reg.Publish(id, &entry{}), ErrUnknownID)
	assert.ErrorIs(t, reg.Publish(id+10, &entry{}), ErrUnknownID)
	assert.ErrorIs(t, reg.Publish(id, nil), ErrNilEntity)
}

func TestRegistry_CancelReleasesSlot(t *testing.T) {
	reg := New[entry](1)
	id, err := reg.Reserve()
	require.NoError(t, err)
	_, err = reg.Reserve()
	assert.ErrorIs(t, err, ErrFull)

	reg.Cancel(id)
	next, err := reg.Reserve()
	require.NoError(t, err)
	assert.Greater(t, next, id, "cancelled ids are not reissued")
	assert.ErrorIs(t, reg.Publish(id, &entry{}), ErrUnknownID)
}

func TestRegistry_LoadDuringReservation(t *testing.T) {
	reg := New[entry](0)
	existing, err := reg.Add(&entry{name: "live"}, nil)
	require.NoError(t, err)

	reserved, err := reg.Reserve()
	require.NoError(t, err)
	// readers are not blocked while a reservation is outstanding
	got, err := reg.Load(existing)
	require.NoError(t, err)
	assert.Equal(t, "live", got.name)
	reg.Cancel(reserved)
}
