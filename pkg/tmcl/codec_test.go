package tmcl_test

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sius/emotion/pkg/tmcl"
	"github.com/sius/emotion/pkg/tmcl/tmcltest"
)

func TestSend(t *testing.T) {
	ch := &tmcltest.Channel{}
	require.NoError(t, tmcl.Send(ch, tmcl.Command{Address: 1, Opcode: tmcl.OpMVP, Motor: 1, Value: 50000}))
	require.Equal(t, []byte{0x01, 0x04, 0x00, 0x01, 0x00, 0x00, 0xc3, 0x50, 0x19}, ch.Written())
}

func TestSendShortWrite(t *testing.T) {
	ch := &tmcltest.Channel{WriteLimit: 5}
	err := tmcl.Send(ch, tmcl.Command{Address: 1, Opcode: tmcl.OpMST})
	require.Error(t, err)
	require.True(t, errors.Is(err, tmcl.ErrShortWrite))
	var shortErr *tmcl.ShortWriteError
	require.True(t, errors.As(err, &shortErr))
	require.Equal(t, 5, shortErr.Written)
}

func TestReceiveNotReady(t *testing.T) {
	reply := tmcl.Reply{Address: 2, Module: 1, Status: tmcl.StatusOK, Opcode: tmcl.OpMVP, Value: 50000}.Frame()
	ch := &tmcltest.Channel{}

	_, err := tmcl.Receive(ch)
	require.Equal(t, tmcl.ErrNotReady, err)

	ch.Feed(reply[:8]...)
	_, err = tmcl.Receive(ch)
	require.Equal(t, tmcl.ErrNotReady, err)
	require.Equal(t, tmcl.ResultNotReady, tmcl.ResultOf(err))
	require.Equal(t, 8, ch.Buffered(), "nothing consumed")

	ch.Feed(reply[8])
	r, err := tmcl.Receive(ch)
	require.NoError(t, err)
	require.Equal(t, tmcl.ResultOK, tmcl.ResultOf(err))
	require.Equal(t, byte(2), r.Address)
	require.Equal(t, tmcl.StatusOK, r.Status)
	require.Equal(t, int32(50000), r.Value)
	require.Zero(t, ch.Buffered())
}

func TestReceiveChecksumError(t *testing.T) {
	f := tmcl.Reply{Address: 2, Module: 1, Status: tmcl.StatusOK, Value: 7}.Frame()
	f[8]++
	ch := &tmcltest.Channel{}
	ch.FeedFrame(f)

	_, err := tmcl.Receive(ch)
	require.True(t, errors.Is(err, tmcl.ErrChecksum))
	var csErr *tmcl.ChecksumError
	require.True(t, errors.As(err, &csErr))
	require.Equal(t, f, csErr.Frame)
	require.Zero(t, ch.Buffered(), "corrupt frame consumed")

	_, err = tmcl.Receive(ch)
	require.Equal(t, tmcl.ErrNotReady, err)
}

func TestReceiveOldestFirst(t *testing.T) {
	first := tmcl.Reply{Address: 2, Status: tmcl.StatusOK, Value: 1}.Frame()
	second := tmcl.Reply{Address: 2, Status: tmcl.StatusInvalidValue, Value: 2}.Frame()
	ch := &tmcltest.Channel{}
	ch.FeedFrame(first)
	ch.FeedFrame(second)
	ch.Feed(0xaa, 0xbb)

	r, err := tmcl.Receive(ch)
	require.NoError(t, err)
	require.Equal(t, int32(1), r.Value)
	r, err = tmcl.Receive(ch)
	require.NoError(t, err)
	require.Equal(t, int32(2), r.Value)
	require.Equal(t, tmcl.StatusInvalidValue, r.Status)
	_, err = tmcl.Receive(ch)
	require.Equal(t, tmcl.ErrNotReady, err)
	require.Equal(t, 2, ch.Buffered())
}

func TestReceiveMisaligned(t *testing.T) {
	reply := tmcl.Reply{Address: 2, Status: tmcl.StatusOK, Value: 1}.Frame()
	ch := &tmcltest.Channel{}
	ch.Feed(0x00)
	ch.FeedFrame(reply)

	// a stray leading byte shifts the frame, the oldest 9 bytes are taken as is.
	_, err := tmcl.Receive(ch)
	require.True(t, errors.Is(err, tmcl.ErrChecksum))
	require.Equal(t, 1, ch.Buffered())
}

func TestReceiveTransportError(t *testing.T) {
	ch := &tmcltest.Channel{Err: io.EOF}
	_, err := tmcl.Receive(ch)
	require.Equal(t, io.EOF, err)
	require.Equal(t, tmcl.ResultTransportError, tmcl.ResultOf(err))

	// buffered data is still delivered.
	ch.FeedFrame(tmcl.Reply{Address: 2, Status: tmcl.StatusOK, Value: 3}.Frame())
	r, err := tmcl.Receive(ch)
	require.NoError(t, err)
	require.Equal(t, int32(3), r.Value)
}

func TestRoundTrip(t *testing.T) {
	module := tmcltest.NewModule(func(cmd tmcl.Command) tmcl.Reply {
		return tmcltest.ReplyTo(cmd, tmcl.StatusOK, cmd.Value)
	})
	for _, value := range []int32{0, -1, 50000, -8388608, 1 << 30} {
		cmd := tmcl.Command{Address: 3, Opcode: tmcl.OpSAP, Type: 4, Motor: 2, Value: value}
		require.NoError(t, tmcl.Send(module, cmd))
		r, err := tmcl.Receive(module)
		require.NoError(t, err)
		require.Equal(t, tmcltest.HostAddress, r.Address)
		require.Equal(t, byte(3), r.Module)
		require.Equal(t, tmcl.StatusOK, r.Status)
		require.Equal(t, value, r.Value)
	}
	require.Len(t, module.Commands(), 5)
}

func TestResultString(t *testing.T) {
	require.Equal(t, "ok", tmcl.ResultOK.String())
	require.Equal(t, "not-ready", tmcl.ResultNotReady.String())
	require.Equal(t, "checksum-error", tmcl.ResultChecksumError.String())
	require.Equal(t, "unknown", tmcl.Result(42).String())
}
