package tmcltest

import (
	"sync"

	"github.com/sius/emotion/pkg/tmcl"
)

// HostAddress is the reply address used by simulated modules.
const HostAddress byte = 2

// Handler computes the reply of a simulated module.
type Handler func(tmcl.Command) tmcl.Reply

// Module simulates a TMCL module behind an in-memory channel.
// Every complete command frame written is answered immediately.
type Module struct {
	Channel
	Handler Handler
	// Tamper, if set, may modify each reply frame before it's queued.
	Tamper func(*tmcl.Frame)
	// Silent drops replies.
	Silent bool

	lock     sync.Mutex
	pending  []byte
	commands []tmcl.Command
}

// NewModule creates a Module. A nil handler answers every command
// with StatusOK and value 0.
func NewModule(handler Handler) *Module {
	if handler == nil {
		handler = func(cmd tmcl.Command) tmcl.Reply {
			return ReplyTo(cmd, tmcl.StatusOK, 0)
		}
	}
	return &Module{Handler: handler}
}

// ReplyTo builds the reply a module sends for cmd.
func ReplyTo(cmd tmcl.Command, status byte, value int32) tmcl.Reply {
	return tmcl.Reply{
		Address: HostAddress,
		Module:  cmd.Address,
		Status:  status,
		Opcode:  cmd.Opcode,
		Value:   value,
	}
}

// Commands returns the commands received so far.
func (m *Module) Commands() []tmcl.Command {
	m.lock.Lock()
	defer m.lock.Unlock()
	return append([]tmcl.Command(nil), m.commands...)
}

// Write implements tmcl.Channel.
func (m *Module) Write(p []byte) (int, error) {
	n, err := m.Channel.Write(p)
	if err != nil {
		return n, err
	}
	m.lock.Lock()
	m.pending = append(m.pending, p[:n]...)
	var frames []tmcl.Frame
	for len(m.pending) >= tmcl.FrameSize {
		var f tmcl.Frame
		copy(f[:], m.pending)
		m.pending = m.pending[tmcl.FrameSize:]
		frames = append(frames, f)
	}
	m.lock.Unlock()

	for _, f := range frames {
		m.answer(f)
	}
	return n, nil
}

func (m *Module) answer(f tmcl.Frame) {
	var reply tmcl.Reply
	cmd, err := tmcl.DecodeCommand(f)
	if err != nil {
		reply = ReplyTo(tmcl.Command{Address: f[0], Opcode: f[1]}, tmcl.StatusWrongChecksum, 0)
	} else {
		m.lock.Lock()
		m.commands = append(m.commands, cmd)
		m.lock.Unlock()
		reply = m.Handler(cmd)
	}
	if m.Silent {
		return
	}
	out := reply.Frame()
	if m.Tamper != nil {
		m.Tamper(&out)
	}
	m.FeedFrame(out)
}
