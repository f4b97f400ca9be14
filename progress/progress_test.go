package progress

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgress_Update(t *testing.T) {
	tracker := New("fiber")
	var observed []Progress
	var mu sync.Mutex
	tracker.OnChange(func(p Progress) {
		mu.Lock()
		observed = append(observed, p)
		mu.Unlock()
	})

	tracker.Update(Delta{Spawned: 1, Running: 1})
	tracker.Update(Delta{Running: -1, Completed: 1})

	snapshot := tracker.Snapshot()
	assert.Equal(t, "fiber", snapshot.Component)
	assert.Equal(t, 1, snapshot.Spawned)
	assert.Equal(t, 1, snapshot.Completed)
	assert.Equal(t, 0, snapshot.Running)
	assert.Len(t, observed, 2)
	assert.Equal(t, 1, observed[0].Running)
}

func TestProgress_Concurrent(t *testing.T) {
	tracker := New("process")
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tracker.Update(Delta{Spawned: 1, Failed: 1})
		}()
	}
	wg.Wait()
	snapshot := tracker.Snapshot()
	assert.Equal(t, 20, snapshot.Spawned)
	assert.Equal(t, 20, snapshot.Failed)
}

func TestProgress_Nil(t *testing.T) {
	var tracker *Progress
	tracker.Update(Delta{Spawned: 1})
	tracker.OnChange(nil)
	assert.Equal(t, Progress{}, tracker.Snapshot())
}
