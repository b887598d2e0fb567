package tmcl_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sius/emotion/pkg/channel"
	"github.com/sius/emotion/pkg/tmcl"
	"github.com/sius/emotion/pkg/tmcl/tmcltest"
)

var _ tmcl.Flusher = (*channel.Buffered)(nil)

func newTestClient(ch tmcl.Channel) *tmcl.Client {
	c := tmcl.NewClient(ch)
	c.PollInterval = time.Millisecond
	c.Timeout = 50 * time.Millisecond
	return c
}

func TestClientExchange(t *testing.T) {
	module := tmcltest.NewModule(func(cmd tmcl.Command) tmcl.Reply {
		return tmcltest.ReplyTo(cmd, tmcl.StatusOK, 1234)
	})
	c := newTestClient(module)

	cmd := tmcl.Command{Address: 1, Opcode: tmcl.OpGAP, Type: 1, Motor: 0}
	reply, err := c.Exchange(context.Background(), cmd)
	require.NoError(t, err)
	require.Equal(t, int32(1234), reply.Value)
	require.Equal(t, tmcl.OpGAP, reply.Opcode)
	require.Equal(t, []tmcl.Command{cmd}, module.Commands())
}

func TestClientStatusPassThrough(t *testing.T) {
	module := tmcltest.NewModule(func(cmd tmcl.Command) tmcl.Reply {
		return tmcltest.ReplyTo(cmd, tmcl.StatusInvalidValue, 0)
	})
	c := newTestClient(module)

	reply, err := c.Exchange(context.Background(), tmcl.Command{Address: 1, Opcode: tmcl.OpSAP})
	require.NoError(t, err)
	require.Equal(t, tmcl.StatusInvalidValue, reply.Status)

	_, err = c.Do(context.Background(), tmcl.Command{Address: 1, Opcode: tmcl.OpSAP})
	statusErr, ok := err.(*tmcl.StatusError)
	require.True(t, ok)
	require.Equal(t, tmcl.StatusInvalidValue, statusErr.Status)
}

func TestClientTimeout(t *testing.T) {
	module := tmcltest.NewModule(nil)
	module.Silent = true
	c := newTestClient(module)

	_, err := c.Exchange(context.Background(), tmcl.Command{Address: 1, Opcode: tmcl.OpMST})
	require.True(t, errors.Is(err, tmcl.ErrTimeout))
}

func TestClientContextCanceled(t *testing.T) {
	module := tmcltest.NewModule(nil)
	module.Silent = true
	c := newTestClient(module)
	c.Timeout = 0

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := c.Exchange(ctx, tmcl.Command{Address: 1, Opcode: tmcl.OpMST})
	require.Equal(t, context.DeadlineExceeded, err)
}

func TestClientChecksumError(t *testing.T) {
	module := tmcltest.NewModule(nil)
	module.Tamper = func(f *tmcl.Frame) { f[6] ^= 0x10 }
	c := newTestClient(module)

	_, err := c.Exchange(context.Background(), tmcl.Command{Address: 1, Opcode: tmcl.OpGAP})
	require.True(t, errors.Is(err, tmcl.ErrChecksum))

	module.Tamper = nil
	reply, err := c.Exchange(context.Background(), tmcl.Command{Address: 1, Opcode: tmcl.OpGAP})
	require.NoError(t, err)
	require.True(t, reply.OK())
}

func TestClientDrainsStaleBytes(t *testing.T) {
	module := tmcltest.NewModule(func(cmd tmcl.Command) tmcl.Reply {
		return tmcltest.ReplyTo(cmd, tmcl.StatusOK, cmd.Value)
	})
	// a late reply from an abandoned exchange plus some noise.
	module.FeedFrame(tmcl.Reply{Address: 2, Status: tmcl.StatusOK, Value: -99}.Frame())
	module.Feed(0x01, 0x02, 0x03)
	c := newTestClient(module)

	reply, err := c.Exchange(context.Background(), tmcl.Command{Address: 1, Opcode: tmcl.OpSAP, Value: 42})
	require.NoError(t, err)
	require.Equal(t, int32(42), reply.Value)
	require.Zero(t, module.Buffered())
}

type flushingModule struct {
	*tmcltest.Module
	flushed int
}

func (m *flushingModule) Flush() int {
	buf := make([]byte, m.Buffered())
	n, _ := m.Read(buf)
	m.flushed += n
	return n
}

func TestClientFlushesStaleBytes(t *testing.T) {
	module := &flushingModule{Module: tmcltest.NewModule(func(cmd tmcl.Command) tmcl.Reply {
		return tmcltest.ReplyTo(cmd, tmcl.StatusOK, cmd.Value)
	})}
	module.FeedFrame(tmcl.Reply{Address: 2, Status: tmcl.StatusOK, Value: -99}.Frame())
	module.Feed(0x01, 0x02, 0x03)
	c := newTestClient(module)

	reply, err := c.Exchange(context.Background(), tmcl.Command{Address: 1, Opcode: tmcl.OpSAP, Value: 42})
	require.NoError(t, err)
	require.Equal(t, int32(42), reply.Value)
	require.Equal(t, tmcl.FrameSize+3, module.flushed)

	module.Err = errors.New("port gone")
	_, err = c.Exchange(context.Background(), tmcl.Command{Address: 1, Opcode: tmcl.OpMST})
	require.EqualError(t, err, "port gone")
	require.Len(t, module.Commands(), 1)
}

func TestClientShortWrite(t *testing.T) {
	module := tmcltest.NewModule(nil)
	module.WriteLimit = 4
	c := newTestClient(module)

	_, err := c.Exchange(context.Background(), tmcl.Command{Address: 1, Opcode: tmcl.OpMST})
	require.True(t, errors.Is(err, tmcl.ErrShortWrite))
}

func TestClientDelayedReply(t *testing.T) {
	ch := &tmcltest.Channel{}
	c := newTestClient(ch)
	c.Timeout = time.Second

	reply := tmcl.Reply{Address: 2, Module: 1, Status: tmcl.StatusOK, Opcode: tmcl.OpMVP, Value: 5}.Frame()
	go func() {
		time.Sleep(5 * time.Millisecond)
		ch.Feed(reply[:4]...)
		time.Sleep(5 * time.Millisecond)
		ch.Feed(reply[4:]...)
	}()
	r, err := c.Exchange(context.Background(), tmcl.Command{Address: 1, Opcode: tmcl.OpMVP, Value: 5})
	require.NoError(t, err)
	require.Equal(t, int32(5), r.Value)
}
