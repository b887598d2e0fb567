package msgs

import (
	"errors"

	"github.com/golang/protobuf/proto"

	"github.com/sius/emotion/pkg/tmcl"
)

// Request asks the bridge to execute a command.
type Request struct {
	Seq     uint32 `protobuf:"varint,1,opt,name=seq,proto3" json:"seq,omitempty"`
	Address uint32 `protobuf:"varint,2,opt,name=address,proto3" json:"address,omitempty"`
	Opcode  uint32 `protobuf:"varint,3,opt,name=opcode,proto3" json:"opcode,omitempty"`
	Type    uint32 `protobuf:"varint,4,opt,name=type,proto3" json:"type,omitempty"`
	Motor   uint32 `protobuf:"varint,5,opt,name=motor,proto3" json:"motor,omitempty"`
	Value   int32  `protobuf:"zigzag32,6,opt,name=value,proto3" json:"value,omitempty"`
}

// Reset implements proto.Message.
func (m *Request) Reset() { *m = Request{} }

// String implements proto.Message.
func (m *Request) String() string { return proto.CompactTextString(m) }

// ProtoMessage implements proto.Message.
func (*Request) ProtoMessage() {}

// Reply is the outcome of a Request.
// Result is a tmcl.Result, the reply fields are only set on
// tmcl.ResultOK and Error describes any other outcome.
type Reply struct {
	Seq     uint32 `protobuf:"varint,1,opt,name=seq,proto3" json:"seq,omitempty"`
	Result  int32  `protobuf:"varint,2,opt,name=result,proto3" json:"result,omitempty"`
	Address uint32 `protobuf:"varint,3,opt,name=address,proto3" json:"address,omitempty"`
	Module  uint32 `protobuf:"varint,4,opt,name=module,proto3" json:"module,omitempty"`
	Status  uint32 `protobuf:"varint,5,opt,name=status,proto3" json:"status,omitempty"`
	Opcode  uint32 `protobuf:"varint,6,opt,name=opcode,proto3" json:"opcode,omitempty"`
	Value   int32  `protobuf:"zigzag32,7,opt,name=value,proto3" json:"value,omitempty"`
	Error   string `protobuf:"bytes,8,opt,name=error,proto3" json:"error,omitempty"`
	// Raw is the received frame, also set on checksum errors.
	Raw []byte `protobuf:"bytes,9,opt,name=raw,proto3" json:"raw,omitempty"`
}

// Reset implements proto.Message.
func (m *Reply) Reset() { *m = Reply{} }

// String implements proto.Message.
func (m *Reply) String() string { return proto.CompactTextString(m) }

// ProtoMessage implements proto.Message.
func (*Reply) ProtoMessage() {}

// ErrInvalidRequest indicates a field doesn't fit in a command byte.
var ErrInvalidRequest = errors.New("invalid request")

// NewRequest creates a Request from a command.
func NewRequest(seq uint32, cmd tmcl.Command) *Request {
	return &Request{
		Seq:     seq,
		Address: uint32(cmd.Address),
		Opcode:  uint32(cmd.Opcode),
		Type:    uint32(cmd.Type),
		Motor:   uint32(cmd.Motor),
		Value:   cmd.Value,
	}
}

// Command converts the request into a command.
func (m *Request) Command() (tmcl.Command, error) {
	if m.Address > 0xff || m.Opcode > 0xff || m.Type > 0xff || m.Motor > 0xff {
		return tmcl.Command{}, ErrInvalidRequest
	}
	return tmcl.Command{
		Address: byte(m.Address),
		Opcode:  byte(m.Opcode),
		Type:    byte(m.Type),
		Motor:   byte(m.Motor),
		Value:   m.Value,
	}, nil
}

// NewReply creates the Reply of request seq from the outcome of
// an exchange.
func NewReply(seq uint32, reply tmcl.Reply, err error) *Reply {
	m := &Reply{Seq: seq, Result: int32(tmcl.ResultOf(err))}
	if err != nil {
		m.Error = err.Error()
		var csErr *tmcl.ChecksumError
		if errors.As(err, &csErr) {
			m.Raw = append([]byte(nil), csErr.Frame[:]...)
		}
		return m
	}
	m.Raw = append([]byte(nil), reply.Raw[:]...)
	m.Address = uint32(reply.Address)
	m.Module = uint32(reply.Module)
	m.Status = uint32(reply.Status)
	m.Opcode = uint32(reply.Opcode)
	m.Value = reply.Value
	return m
}

// Reply converts the message back to a tmcl.Reply.
func (m *Reply) Reply() tmcl.Reply {
	r := tmcl.Reply{
		Address: byte(m.Address),
		Module:  byte(m.Module),
		Status:  byte(m.Status),
		Opcode:  byte(m.Opcode),
		Value:   m.Value,
	}
	copy(r.Raw[:], m.Raw)
	return r
}
