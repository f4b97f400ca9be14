package idgen

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSequence_Next(t *testing.T) {
	var seq Sequence
	assert.EqualValues(t, 0, seq.Last())
	assert.EqualValues(t, 1, seq.Next())
	assert.EqualValues(t, 2, seq.Next())
	assert.EqualValues(t, 2, seq.Last())
}

func TestSequence_Concurrent(t *testing.T) {
	var seq Sequence
	const workers, perWorker = 8, 500
	seen := make(chan int64, workers*perWorker)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				seen <- seq.Next()
			}
		}()
	}
	wg.Wait()
	close(seen)
	unique := map[int64]bool{}
	for id := range seen {
		assert.False(t, unique[id], "id %d issued twice", id)
		unique[id] = true
	}
	assert.Len(t, unique, workers*perWorker)
	assert.EqualValues(t, workers*perWorker, seq.Last())
}

func TestNew_Stub(t *testing.T) {
	prev := NewFunc
	defer func() { NewFunc = prev }()
	NewFunc = func() string { return "run-1" }
	assert.Equal(t, "run-1", New())
}
