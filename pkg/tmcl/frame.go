package tmcl

import (
	"encoding/binary"
	"fmt"
)

// FrameSize is the size of every TMCL datagram.
const FrameSize = 9

const (
	posValue    = 4
	posChecksum = FrameSize - 1
)

// Frame is a raw TMCL datagram.
type Frame [FrameSize]byte

// Checksum computes the 8-bit truncating sum of b.
func Checksum(b []byte) (sum byte) {
	for _, v := range b {
		sum += v
	}
	return
}

// Checksum computes the checksum of the first 8 bytes.
func (f *Frame) Checksum() byte {
	return Checksum(f[:posChecksum])
}

// Seal stores the checksum into the last byte.
func (f *Frame) Seal() {
	f[posChecksum] = f.Checksum()
}

// Valid checks the stored checksum.
func (f *Frame) Valid() bool {
	return f[posChecksum] == f.Checksum()
}

// Value gets the signed big-endian value.
func (f *Frame) Value() int32 {
	return int32(binary.BigEndian.Uint32(f[posValue:posChecksum]))
}

func (f *Frame) setValue(v int32) {
	binary.BigEndian.PutUint32(f[posValue:posChecksum], uint32(v))
}

// Command is an instruction sent to a module.
type Command struct {
	Address byte
	Opcode  byte
	Type    byte
	Motor   byte
	Value   int32
}

// Encode builds a sealed command frame.
func Encode(address, opcode, typ, motor byte, value int32) Frame {
	return Command{Address: address, Opcode: opcode, Type: typ, Motor: motor, Value: value}.Frame()
}

// Frame encodes the command.
func (c Command) Frame() (f Frame) {
	f[0], f[1], f[2], f[3] = c.Address, c.Opcode, c.Type, c.Motor
	f.setValue(c.Value)
	f.Seal()
	return
}

// String implements fmt.Stringer.
func (c Command) String() string {
	return fmt.Sprintf("%s address=%d type=%d motor=%d value=%d",
		OpcodeName(c.Opcode), c.Address, c.Type, c.Motor, c.Value)
}

// DecodeCommand parses a command frame.
func DecodeCommand(f Frame) (Command, error) {
	if !f.Valid() {
		return Command{}, &ChecksumError{Frame: f}
	}
	return Command{
		Address: f[0],
		Opcode:  f[1],
		Type:    f[2],
		Motor:   f[3],
		Value:   f.Value(),
	}, nil
}

// Reply is the answer of a module.
// Only Address, Status and Value carry meaning for the codec,
// Module and Opcode are reported as received.
type Reply struct {
	Address byte
	Module  byte
	Status  byte
	Opcode  byte
	Value   int32

	// Raw is the datagram the reply was decoded from.
	Raw Frame
}

// DecodeReply parses a reply frame.
func DecodeReply(f Frame) (Reply, error) {
	if !f.Valid() {
		return Reply{}, &ChecksumError{Frame: f}
	}
	return Reply{
		Address: f[0],
		Module:  f[1],
		Status:  f[2],
		Opcode:  f[3],
		Value:   f.Value(),
		Raw:     f,
	}, nil
}

// Frame encodes the reply, as a module would.
func (r Reply) Frame() (f Frame) {
	f[0], f[1], f[2], f[3] = r.Address, r.Module, r.Status, r.Opcode
	f.setValue(r.Value)
	f.Seal()
	return
}

// OK indicates the module executed the command.
func (r Reply) OK() bool {
	return r.Status == StatusOK
}

// Err returns a *StatusError unless the status is OK.
func (r Reply) Err() error {
	if r.OK() {
		return nil
	}
	return &StatusError{Status: r.Status, Opcode: r.Opcode}
}

// String implements fmt.Stringer.
func (r Reply) String() string {
	return fmt.Sprintf("address=%d module=%d status=%d(%s) value=%d",
		r.Address, r.Module, r.Status, StatusText(r.Status), r.Value)
}
