package msgs

import (
	"fmt"

	"github.com/golang/protobuf/proto"
)

// TypeIDs
const (
	RequestTypeID uint32 = 0x00540001
	ReplyTypeID   uint32 = 0x00548001
)

// Typed wraps a message with type information.
type Typed struct {
	TypeId  uint32 `protobuf:"varint,1,opt,name=type_id,json=typeId,proto3" json:"type_id,omitempty"`
	Message []byte `protobuf:"bytes,2,opt,name=message,proto3" json:"message,omitempty"`
}

// Reset implements proto.Message.
func (m *Typed) Reset() { *m = Typed{} }

// String implements proto.Message.
func (m *Typed) String() string { return proto.CompactTextString(m) }

// ProtoMessage implements proto.Message.
func (*Typed) ProtoMessage() {}

// ErrUnknownType indicates unknown type id.
type ErrUnknownType struct {
	TypeID uint32
}

// Error implements error.
func (e *ErrUnknownType) Error() string {
	return fmt.Sprintf("unknown type: %x", e.TypeID)
}

func typeIDOf(msg proto.Message) (uint32, error) {
	switch msg.(type) {
	case *Request:
		return RequestTypeID, nil
	case *Reply:
		return ReplyTypeID, nil
	}
	return 0, fmt.Errorf("unsupported message %T", msg)
}

// Encode encodes msg into a Typed envelope.
func Encode(msg proto.Message) ([]byte, error) {
	typeID, err := typeIDOf(msg)
	if err != nil {
		return nil, err
	}
	data, err := proto.Marshal(msg)
	if err != nil {
		return nil, err
	}
	return proto.Marshal(&Typed{TypeId: typeID, Message: data})
}

// Decode decodes a Typed envelope into *Request or *Reply.
func Decode(data []byte) (proto.Message, error) {
	var typed Typed
	if err := proto.Unmarshal(data, &typed); err != nil {
		return nil, err
	}
	var msg proto.Message
	switch typed.TypeId {
	case RequestTypeID:
		msg = &Request{}
	case ReplyTypeID:
		msg = &Reply{}
	default:
		return nil, &ErrUnknownType{TypeID: typed.TypeId}
	}
	if err := proto.Unmarshal(typed.Message, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// DecodeRequest decodes data which must contain a Request.
func DecodeRequest(data []byte) (*Request, error) {
	msg, err := Decode(data)
	if err != nil {
		return nil, err
	}
	req, ok := msg.(*Request)
	if !ok {
		return nil, &ErrUnknownType{TypeID: ReplyTypeID}
	}
	return req, nil
}

// DecodeReply decodes data which must contain a Reply.
func DecodeReply(data []byte) (*Reply, error) {
	msg, err := Decode(data)
	if err != nil {
		return nil, err
	}
	reply, ok := msg.(*Reply)
	if !ok {
		return nil, &ErrUnknownType{TypeID: RequestTypeID}
	}
	return reply, nil
}
