package tmcl

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang/glog"
)

// Defaults of Client.
const (
	DefaultPollInterval = 5 * time.Millisecond
	DefaultTimeout      = 500 * time.Millisecond
)

// Client performs command/reply exchanges over a Channel,
// one exchange at a time.
type Client struct {
	Channel      Channel
	PollInterval time.Duration
	// Timeout bounds the wait for a reply, 0 waits until ctx is done.
	Timeout time.Duration

	lock sync.Mutex
}

// NewClient creates a Client with defaults.
func NewClient(ch Channel) *Client {
	return &Client{
		Channel:      ch,
		PollInterval: DefaultPollInterval,
		Timeout:      DefaultTimeout,
	}
}

// Exchange sends cmd and polls until the reply arrives.
// Bytes left over from earlier exchanges are discarded before sending,
// so a reply to an abandoned command can't be taken for this one.
// The reply status is not interpreted, see Reply.Err.
func (c *Client) Exchange(ctx context.Context, cmd Command) (Reply, error) {
	c.lock.Lock()
	defer c.lock.Unlock()

	n, err := c.drain()
	if err != nil {
		return Reply{}, err
	}
	if n > 0 {
		glog.Warningf("discarded %d stale bytes", n)
	}

	if err = Send(c.Channel, cmd); err != nil {
		return Reply{}, fmt.Errorf("send %s: %w", cmd, err)
	}
	glog.V(2).Infof("TX %s", cmd)

	var expire <-chan time.Time
	if c.Timeout > 0 {
		timer := time.NewTimer(c.Timeout)
		defer timer.Stop()
		expire = timer.C
	}
	interval := c.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		reply, err := Receive(c.Channel)
		if !errors.Is(err, ErrNotReady) {
			if err != nil {
				glog.V(2).Infof("RX %s: %v", OpcodeName(cmd.Opcode), err)
				return reply, err
			}
			glog.V(2).Infof("RX %s", reply)
			return reply, nil
		}
		select {
		case <-ctx.Done():
			return Reply{}, ctx.Err()
		case <-expire:
			return Reply{}, fmt.Errorf("%s: %w", OpcodeName(cmd.Opcode), ErrTimeout)
		case <-ticker.C:
		}
	}
}

// Do is a shortcut of Exchange which also turns a non-OK status
// into a *StatusError.
func (c *Client) Do(ctx context.Context, cmd Command) (Reply, error) {
	reply, err := c.Exchange(ctx, cmd)
	if err != nil {
		return reply, err
	}
	return reply, reply.Err()
}

func (c *Client) drain() (int, error) {
	if f, ok := c.Channel.(Flusher); ok {
		n := f.Flush()
		_, err := c.Channel.Available()
		return n, err
	}
	var buf [FrameSize * 4]byte
	total := 0
	for {
		n, err := c.Channel.Available()
		if n == 0 {
			return total, err
		}
		if n > len(buf) {
			n = len(buf)
		}
		m, err := c.Channel.Read(buf[:n])
		total += m
		if err != nil {
			return total, err
		}
		if m == 0 {
			return total, nil
		}
	}
}
