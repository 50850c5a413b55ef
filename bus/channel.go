// Copyright (C) 2024-2026, Hyle Labs. All rights reserved.
// See the file LICENSE for licensing terms.

package bus

import "sync"

// channel is the shared ring buffer backing a single message type. It
// mirrors Tokio's broadcast channel: one write cursor, one read cursor per
// subscriber, lag detection when a subscriber falls behind the ring size.
type channel struct {
	mu sync.Mutex

	capacity          int
	capacityIfWaiting int

	buf      []any
	writeIdx uint64

	cursors   map[uint64]uint64
	nextSubID uint64

	notify chan struct{}

	refs int
}

func newChannel(capacity, capacityIfWaiting int) *channel {
	return &channel{
		capacity:          capacity,
		capacityIfWaiting: capacityIfWaiting,
		buf:               make([]any, capacity),
		cursors:           make(map[uint64]uint64),
		notify:            make(chan struct{}),
	}
}

// subscribe registers a new subscriber starting at the current write
// position: a late subscriber only sees messages sent after it joined.
func (c *channel) subscribe() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextSubID
	c.nextSubID++
	c.cursors[id] = c.writeIdx
	return id
}

func (c *channel) unsubscribe(id uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.cursors, id)
}

func (c *channel) receiverCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.cursors)
}

// send appends msg to the ring, reporting whether anything was enqueued.
// It is a silent no-op (enqueued=false, no error, nothing allocated) when
// there are zero receivers, and fails with ErrChannelFull when the slowest
// subscriber's unread count has reached the soft high-water mark.
func (c *channel) send(msg any) (enqueued bool, err error) {
	c.mu.Lock()
	if len(c.cursors) == 0 {
		c.mu.Unlock()
		return false, nil
	}

	minCursor := c.writeIdx
	for _, cur := range c.cursors {
		if cur < minCursor {
			minCursor = cur
		}
	}
	if c.writeIdx-minCursor >= uint64(c.capacityIfWaiting) {
		c.mu.Unlock()
		return false, ErrChannelFull
	}

	idx := c.writeIdx % uint64(c.capacity)
	c.buf[idx] = msg
	c.writeIdx++

	old := c.notify
	c.notify = make(chan struct{})
	close(old)
	c.mu.Unlock()
	return true, nil
}

// recvWait returns the message at the subscriber's cursor if one is ready,
// along with the notify channel to wait on otherwise.
func (c *channel) recvWait(id uint64) (msg any, ok bool, lag *Lagged, wait <-chan struct{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cursor := c.cursors[id]
	if cursor >= c.writeIdx {
		return nil, false, nil, c.notify
	}

	if c.writeIdx-cursor > uint64(c.capacity) {
		lagged := c.writeIdx - cursor - uint64(c.capacity)
		c.cursors[id] = c.writeIdx - uint64(c.capacity)
		return nil, false, &Lagged{N: lagged}, nil
	}

	idx := cursor % uint64(c.capacity)
	c.cursors[id] = cursor + 1
	return c.buf[idx], true, nil, nil
}
