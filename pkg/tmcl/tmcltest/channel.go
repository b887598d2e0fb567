// Package tmcltest provides in-memory channels and simulated modules
// for testing TMCL code without hardware.
package tmcltest

import (
	"sync"

	"github.com/sius/emotion/pkg/tmcl"
)

// Channel is an in-memory tmcl.Channel.
type Channel struct {
	// WriteLimit cuts every write to at most this many bytes if positive.
	WriteLimit int
	// Err is reported by Available and Read once set.
	Err error

	lock    sync.Mutex
	input   []byte
	written []byte
}

// Feed appends bytes to be read.
func (c *Channel) Feed(p ...byte) {
	c.lock.Lock()
	c.input = append(c.input, p...)
	c.lock.Unlock()
}

// FeedFrame appends a frame to be read.
func (c *Channel) FeedFrame(f tmcl.Frame) {
	c.Feed(f[:]...)
}

// Written returns a copy of all bytes written so far.
func (c *Channel) Written() []byte {
	c.lock.Lock()
	defer c.lock.Unlock()
	return append([]byte(nil), c.written...)
}

// Buffered returns the number of bytes not read yet.
func (c *Channel) Buffered() int {
	c.lock.Lock()
	defer c.lock.Unlock()
	return len(c.input)
}

// Write implements tmcl.Channel.
func (c *Channel) Write(p []byte) (int, error) {
	if c.WriteLimit > 0 && len(p) > c.WriteLimit {
		p = p[:c.WriteLimit]
	}
	c.lock.Lock()
	c.written = append(c.written, p...)
	c.lock.Unlock()
	return len(p), nil
}

// Available implements tmcl.Channel.
func (c *Channel) Available() (int, error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	return len(c.input), c.Err
}

// Read implements tmcl.Channel.
func (c *Channel) Read(p []byte) (int, error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	n := copy(p, c.input)
	c.input = c.input[n:]
	if n == 0 {
		return 0, c.Err
	}
	return n, nil
}
