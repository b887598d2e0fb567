// Package channel provides tmcl.Channel implementations on top of
// blocking byte streams.
package channel

import (
	"errors"
	"io"
	"sync"

	"github.com/golang/glog"
)

// ErrClosed is returned when writing to a closed channel.
var ErrClosed = errors.New("channel closed")

const readBufSize = 256

// Buffered turns a blocking io.ReadWriter into a tmcl.Channel.
// A background loop keeps reading into an internal buffer so
// Available and Read never block.
type Buffered struct {
	rw io.ReadWriter

	lock   sync.Mutex
	buf    []byte
	err    error
	doneCh chan struct{}
	stopCh chan struct{}

	closeOnce sync.Once
}

// NewBuffered starts buffering rw.
func NewBuffered(rw io.ReadWriter) *Buffered {
	b := &Buffered{
		rw:     rw,
		doneCh: make(chan struct{}),
		stopCh: make(chan struct{}),
	}
	go b.readLoop()
	return b
}

func (b *Buffered) readLoop() {
	defer close(b.doneCh)
	buf := make([]byte, readBufSize)
	for {
		n, err := b.rw.Read(buf)
		b.lock.Lock()
		if n > 0 {
			b.buf = append(b.buf, buf[:n]...)
		}
		if err != nil {
			select {
			case <-b.stopCh:
				err = ErrClosed
			default:
			}
			b.err = err
		}
		b.lock.Unlock()
		if err != nil {
			glog.V(3).Infof("read loop stopped: %v", err)
			return
		}
		select {
		case <-b.stopCh:
			b.lock.Lock()
			b.err = ErrClosed
			b.lock.Unlock()
			return
		default:
		}
	}
}

// Write implements tmcl.Channel.
func (b *Buffered) Write(p []byte) (int, error) {
	select {
	case <-b.stopCh:
		return 0, ErrClosed
	default:
	}
	return b.rw.Write(p)
}

// Available implements tmcl.Channel. Once the underlying stream
// failed, the error is reported together with the bytes still
// buffered.
func (b *Buffered) Available() (int, error) {
	b.lock.Lock()
	defer b.lock.Unlock()
	return len(b.buf), b.err
}

// Read implements tmcl.Channel.
func (b *Buffered) Read(p []byte) (int, error) {
	b.lock.Lock()
	defer b.lock.Unlock()
	n := copy(p, b.buf)
	b.buf = b.buf[n:]
	if n == 0 && b.err != nil {
		return 0, b.err
	}
	return n, nil
}

// Flush discards buffered bytes and returns how many were dropped.
// tmcl.Client uses it to drop stale input before an exchange.
func (b *Buffered) Flush() int {
	b.lock.Lock()
	defer b.lock.Unlock()
	n := len(b.buf)
	b.buf = nil
	return n
}

// Done is closed when the read loop stops.
func (b *Buffered) Done() <-chan struct{} {
	return b.doneCh
}

// Close stops buffering and closes the underlying stream if
// it's an io.Closer.
func (b *Buffered) Close() (err error) {
	b.closeOnce.Do(func() {
		close(b.stopCh)
		if c, ok := b.rw.(io.Closer); ok {
			err = c.Close()
		}
	})
	return
}
