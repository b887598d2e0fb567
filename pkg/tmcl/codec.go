package tmcl

import (
	"errors"
	"io"
)

// Channel is the byte transport between host and module.
// It must be opened and configured (8N1, binary, RTS toggled on send)
// before use and is owned by a single caller at a time.
type Channel interface {
	// Write writes p to the module.
	Write(p []byte) (int, error)
	// Available returns the number of bytes which can be read
	// without blocking. The error reports a failed transport and
	// may come with bytes still buffered.
	Available() (int, error)
	// Read reads up to len(p) buffered bytes and never blocks.
	Read(p []byte) (int, error)
}

// Flusher is implemented by channels which can discard their buffered
// input at once. Flush returns the number of bytes dropped.
type Flusher interface {
	Flush() int
}

// Result classifies the outcome of Receive.
type Result int

// Results.
const (
	ResultOK Result = iota
	ResultNotReady
	ResultChecksumError
	ResultTransportError
)

var resultNames = [...]string{
	ResultOK:             "ok",
	ResultNotReady:       "not-ready",
	ResultChecksumError:  "checksum-error",
	ResultTransportError: "transport-error",
}

// String implements fmt.Stringer.
func (r Result) String() string {
	if r >= 0 && int(r) < len(resultNames) {
		return resultNames[r]
	}
	return "unknown"
}

// ResultOf classifies an error returned by Receive.
func ResultOf(err error) Result {
	switch {
	case err == nil:
		return ResultOK
	case errors.Is(err, ErrNotReady):
		return ResultNotReady
	case errors.Is(err, ErrChecksum):
		return ResultChecksumError
	default:
		return ResultTransportError
	}
}

// Send encodes cmd and writes it as a single frame.
func Send(ch Channel, cmd Command) error {
	return SendFrame(ch, cmd.Frame())
}

// SendFrame writes a frame. It doesn't retry: a write accepting
// less than a frame without an error is reported as *ShortWriteError.
func SendFrame(ch Channel, f Frame) error {
	n, err := ch.Write(f[:])
	if err != nil {
		return err
	}
	if n < FrameSize {
		return &ShortWriteError{Written: n}
	}
	return nil
}

// Receive decodes a reply if a full frame is buffered.
// It returns ErrNotReady without consuming anything when less than
// FrameSize bytes are available. Otherwise exactly the oldest FrameSize
// bytes are consumed and a *ChecksumError is returned if they don't
// pass the check.
func Receive(ch Channel) (Reply, error) {
	n, err := ch.Available()
	if n < FrameSize {
		if err != nil {
			return Reply{}, err
		}
		return Reply{}, ErrNotReady
	}
	var f Frame
	if err := readFrame(ch, &f); err != nil {
		return Reply{}, err
	}
	return DecodeReply(f)
}

func readFrame(ch Channel, f *Frame) error {
	for n := 0; n < FrameSize; {
		m, err := ch.Read(f[n:])
		if n += m; n >= FrameSize {
			return nil
		}
		if err != nil {
			return err
		}
		if m == 0 {
			return io.ErrNoProgress
		}
	}
	return nil
}
