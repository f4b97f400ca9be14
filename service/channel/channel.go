package channel

import "sync"

// Channel is a bounded FIFO ring buffer of int64 values. Send blocks while
// the buffer is full and Recv blocks while it is empty. Each channel owns its
// lock and condition variables, so independent channels never contend.
type Channel struct {
	id       int64
	capacity int
	buffer   []int64
	head     int
	tail     int
	count    int

	mu       sync.Mutex
	notEmpty *sync.Cond
	notFull  *sync.Cond
}

func newChannel(capacity int) *Channel {
	ret := &Channel{
		capacity: capacity,
		buffer:   make([]int64, capacity),
	}
	ret.notEmpty = sync.NewCond(&ret.mu)
	ret.notFull = sync.NewCond(&ret.mu)
	return ret
}

// ID returns the channel identity.
func (c *Channel) ID() int64 { return c.id }

// Cap returns the fixed capacity.
func (c *Channel) Cap() int { return c.capacity }

// Len returns the number of pending values.
func (c *Channel) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

// Send appends v, blocking while the channel is full.
func (c *Channel) Send(v int64) {
	c.mu.Lock()
	for c.count == c.capacity {
		c.notFull.Wait()
	}
	c.buffer[c.tail] = v
	c.tail = (c.tail + 1) % c.capacity
	c.count++
	c.notEmpty.Signal()
	c.mu.Unlock()
}

// Recv removes and returns the oldest value, blocking while the channel is empty.
func (c *Channel) Recv() int64 {
	c.mu.Lock()
	for c.count == 0 {
		c.notEmpty.Wait()
	}
	v := c.buffer[c.head]
	c.head = (c.head + 1) % c.capacity
	c.count--
	c.notFull.Signal()
	c.mu.Unlock()
	return v
}
