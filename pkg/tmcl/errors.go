package tmcl

import (
	"errors"
	"fmt"
)

var (
	// ErrNotReady indicates a full reply is not buffered yet.
	// Nothing is consumed, the caller should poll again.
	ErrNotReady = errors.New("not ready")
	// ErrChecksum indicates a full frame was consumed but the checksum
	// doesn't match. The caller should resynchronize.
	ErrChecksum = errors.New("checksum mismatch")
	// ErrShortWrite indicates the transport accepted less than a frame.
	ErrShortWrite = errors.New("short write")
	// ErrTimeout indicates no reply arrived in time.
	ErrTimeout = errors.New("reply timeout")
)

// ChecksumError carries the frame which failed the check.
type ChecksumError struct {
	Frame Frame
}

// Error implements error.
func (e *ChecksumError) Error() string {
	return fmt.Sprintf("checksum mismatch: got %02x, want %02x (% x)",
		e.Frame[posChecksum], e.Frame.Checksum(), e.Frame[:])
}

// Is matches ErrChecksum.
func (e *ChecksumError) Is(target error) bool {
	return target == ErrChecksum
}

// ShortWriteError reports how many bytes of a frame were written.
type ShortWriteError struct {
	Written int
}

// Error implements error.
func (e *ShortWriteError) Error() string {
	return fmt.Sprintf("short write: %d/%d bytes", e.Written, FrameSize)
}

// Is matches ErrShortWrite.
func (e *ShortWriteError) Is(target error) bool {
	return target == ErrShortWrite
}

// StatusError wraps a status code other than StatusOK from a reply.
type StatusError struct {
	Status byte
	Opcode byte
}

// Error implements error.
func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: status %d: %s", OpcodeName(e.Opcode), e.Status, StatusText(e.Status))
}
