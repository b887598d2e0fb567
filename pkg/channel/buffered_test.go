package channel

import (
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sius/emotion/pkg/tmcl"
)

type pipeRW struct {
	io.Reader
	io.Writer
	closer func() error
}

func (p *pipeRW) Close() error {
	return p.closer()
}

func newPipe() (*Buffered, *io.PipeWriter, *io.PipeReader) {
	inR, inW := io.Pipe()
	outR, outW := io.Pipe()
	rw := &pipeRW{Reader: inR, Writer: outW, closer: func() error {
		inR.Close()
		return outW.Close()
	}}
	return NewBuffered(rw), inW, outR
}

func waitAvailable(t *testing.T, b *Buffered, n int) {
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if avail, _ := b.Available(); avail >= n {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("expect %d bytes available", n)
}

func TestBufferedReceive(t *testing.T) {
	b, in, _ := newPipe()
	defer b.Close()

	_, err := tmcl.Receive(b)
	require.Equal(t, tmcl.ErrNotReady, err)

	f := tmcl.Reply{Address: 2, Module: 1, Status: tmcl.StatusOK, Opcode: tmcl.OpGAP, Value: 77}.Frame()
	go in.Write(f[:])
	waitAvailable(t, b, tmcl.FrameSize)

	reply, err := tmcl.Receive(b)
	require.NoError(t, err)
	require.Equal(t, int32(77), reply.Value)
	n, err := b.Available()
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestBufferedWrite(t *testing.T) {
	b, _, out := newPipe()
	defer b.Close()

	done := make(chan []byte, 1)
	go func() {
		buf := make([]byte, tmcl.FrameSize)
		n, _ := io.ReadFull(out, buf)
		done <- buf[:n]
	}()
	cmd := tmcl.Command{Address: 1, Opcode: tmcl.OpMST}
	require.NoError(t, tmcl.Send(b, cmd))
	f := cmd.Frame()
	require.Equal(t, f[:], <-done)
}

func TestBufferedError(t *testing.T) {
	b, in, _ := newPipe()
	defer b.Close()

	in.Write([]byte{1, 2, 3})
	in.Close()
	<-b.Done()

	n, err := b.Available()
	require.Equal(t, 3, n)
	require.Equal(t, io.EOF, err)

	_, err = tmcl.Receive(b)
	require.Equal(t, io.EOF, err)
	require.Equal(t, tmcl.ResultTransportError, tmcl.ResultOf(err))

	require.Equal(t, 3, b.Flush())
	p := make([]byte, 4)
	n, err = b.Read(p)
	require.Zero(t, n)
	require.Equal(t, io.EOF, err)
}

func TestBufferedClose(t *testing.T) {
	b, _, _ := newPipe()
	require.NoError(t, b.Close())
	<-b.Done()
	_, err := b.Write([]byte{0})
	require.Equal(t, ErrClosed, err)
	_, err = b.Available()
	require.Error(t, err)
	require.NoError(t, b.Close())
}
