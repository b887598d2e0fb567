// Package sh provides the interactive TMCL shell.
package sh

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/abiosoft/ishell"

	"github.com/sius/emotion/pkg/channel"
	"github.com/sius/emotion/pkg/channel/serial"
	"github.com/sius/emotion/pkg/motor"
	"github.com/sius/emotion/pkg/tmcl"
)

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool
	OutputJSON  bool
	AutoOpen    bool

	Shell  *ishell.Shell
	Config *Config
	Conn   *Conn
}

// Conn is an opened channel with the selected motor.
type Conn struct {
	Device  string
	Channel *channel.Buffered
	Client  *tmcl.Client
	Motor   *motor.Motor
}

const (
	shellKey       = "$shell"
	unopenedPrompt = "[none] > "
)

var (
	// flags

	evalOnly   bool
	outputJSON bool

	// commands
	commands = []*ishell.Cmd{
		&PortsCmd,
		&OpenCmd,
		&CloseCmd,
		&ModuleCmd,
		&MotorCmd,
		&SendCmd,
		&VersionCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
}

// AddCmds is used by other commands providers during init func.
func AddCmds(cmds ...*ishell.Cmd) {
	commands = append(commands, cmds...)
}

// New creates a new shell.
func New(conf *Config) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,

		Shell:  ishell.New(),
		Config: conf,
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(unopenedPrompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// MustBeOpen wraps command func requires an opened channel.
func MustBeOpen(fn func(c *ishell.Context)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		if ShellFrom(c).Conn == nil {
			c.Err(fmt.Errorf("not opened"))
			return
		}
		fn(c)
	}
}

// MotorFrom gets the selected motor.
func MotorFrom(c *ishell.Context) *motor.Motor {
	return ShellFrom(c).Conn.Motor
}

// ReplyResult is the printable form of an exchange.
type ReplyResult struct {
	Result  string `json:"result"`
	Address byte   `json:"address"`
	Module  byte   `json:"module"`
	Status  byte   `json:"status"`
	Opcode  string `json:"opcode"`
	Value   int32  `json:"value"`
	Error   string `json:"error,omitempty"`
}

// NewReplyResult converts the outcome of an exchange.
func NewReplyResult(reply tmcl.Reply, err error) *ReplyResult {
	r := &ReplyResult{
		Result:  tmcl.ResultOf(err).String(),
		Address: reply.Address,
		Module:  reply.Module,
		Status:  reply.Status,
		Opcode:  tmcl.OpcodeName(reply.Opcode),
		Value:   reply.Value,
	}
	if err != nil {
		r.Error = err.Error()
		if _, ok := err.(*tmcl.StatusError); ok {
			r.Result = tmcl.ResultOK.String()
		}
	}
	return r
}

// String implements fmt.Stringer.
func (r *ReplyResult) String() string {
	if r.Result != tmcl.ResultOK.String() {
		return r.Result + ": " + r.Error
	}
	if r.Status != tmcl.StatusOK {
		return fmt.Sprintf("%s status=%d(%s) value=%d", r.Opcode, r.Status, tmcl.StatusText(r.Status), r.Value)
	}
	return fmt.Sprintf("OK %s value=%d", r.Opcode, r.Value)
}

// Print prints v as JSON or with its String form.
func Print(c *ishell.Context, v fmt.Stringer) {
	if ShellFrom(c).OutputJSON {
		out, err := json.Marshal(v)
		if err != nil {
			c.Err(err)
			return
		}
		c.Println(string(out))
		return
	}
	c.Println(v.String())
}

// DoMotor runs fn with the selected motor and prints the reply.
func DoMotor(c *ishell.Context, fn func(context.Context, *motor.Motor) (tmcl.Reply, error)) error {
	s := ShellFrom(c)
	if s.Conn == nil {
		err := fmt.Errorf("not opened")
		c.Err(err)
		return err
	}
	reply, err := fn(context.Background(), s.Conn.Motor)
	if _, ok := err.(*motor.RangeError); ok {
		c.Err(err)
		return err
	}
	Print(c, NewReplyResult(reply, err))
	return err
}

// Method adapts a motor method expression like (*motor.Motor).Stop
// for DoMotor.
func Method(fn func(*motor.Motor, context.Context) (tmcl.Reply, error)) func(context.Context, *motor.Motor) (tmcl.Reply, error) {
	return func(ctx context.Context, m *motor.Motor) (tmcl.Reply, error) {
		return fn(m, ctx)
	}
}

// Open opens device, or the configured device if empty.
func (s *Shell) Open(device string) error {
	conf := *s.Config
	if device != "" {
		conf.Device = device
	}
	if conf.Device == "" {
		return fmt.Errorf("device not specified")
	}
	ch, err := conf.Open()
	if err != nil {
		return err
	}
	client := tmcl.NewClient(ch)
	if conf.Timeout > 0 {
		client.Timeout = conf.Timeout
	}
	conn := &Conn{
		Device:  conf.Device,
		Channel: ch,
		Client:  client,
		Motor:   motor.New(client, byte(conf.Address), byte(conf.Motor)),
	}
	s.Close()
	s.Conn = conn
	s.updatePrompt()
	return nil
}

// Close closes the current channel.
func (s *Shell) Close() {
	if s.Conn != nil {
		s.Conn.Channel.Close()
		s.Conn = nil
		s.Shell.SetPrompt(unopenedPrompt)
	}
}

func (s *Shell) updatePrompt() {
	if s.Conn == nil {
		s.Shell.SetPrompt(unopenedPrompt)
		return
	}
	m := s.Conn.Motor
	s.Shell.SetPrompt(fmt.Sprintf("%s #%d/%d > ", s.Conn.Device, m.Address, m.Number))
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	if s.AutoOpen && s.Config.Device != "" {
		if s.Interactive {
			s.Shell.Printf("Opening %s ...\n", s.Config.Device)
		}
		if err := s.Open(""); err != nil {
			log.Fatalf("open %q failed: %v", s.Config.Device, err)
		}
		defer s.Close()
	}

	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			log.Fatalln(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	log.Fatalln("command expected")
}

var (
	// PortsCmd lists serial ports.
	PortsCmd = ishell.Cmd{
		Name:    "ports",
		Aliases: []string{"l"},
		Help:    "",
		Func: func(c *ishell.Context) {
			ports, err := serial.Ports()
			if err != nil {
				c.Err(err)
				return
			}
			if ShellFrom(c).OutputJSON {
				if ports == nil {
					ports = []string{}
				}
				out, _ := json.Marshal(ports)
				c.Println(string(out))
				return
			}
			if len(ports) == 0 {
				c.Println("No serial ports found")
				return
			}
			c.Println(strings.Join(ports, "\n"))
		},
	}

	// OpenCmd opens a serial device or relay.
	OpenCmd = ishell.Cmd{
		Name:    "open",
		Aliases: []string{"o"},
		Help:    "[DEVICE|ws://RELAY]",
		Func: func(c *ishell.Context) {
			var device string
			if len(c.Args) > 0 {
				device = c.Args[0]
			}
			if err := ShellFrom(c).Open(device); err != nil {
				c.Err(err)
			}
		},
	}

	// CloseCmd closes the channel.
	CloseCmd = ishell.Cmd{
		Name: "close",
		Help: "",
		Func: func(c *ishell.Context) {
			ShellFrom(c).Close()
		},
	}

	// ModuleCmd selects the module address.
	ModuleCmd = ishell.Cmd{
		Name: "module",
		Help: "ADDRESS",
		Func: MustBeOpen(func(c *ishell.Context) {
			if err := Args(c.Args, 1, "module ADDRESS"); err != nil {
				c.Err(err)
				return
			}
			addr, err := ParseByte("address", c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			s := ShellFrom(c)
			s.Conn.Motor.Address = addr
			s.updatePrompt()
		}),
	}

	// MotorCmd selects the motor number.
	MotorCmd = ishell.Cmd{
		Name: "motor",
		Help: "NUMBER",
		Func: MustBeOpen(func(c *ishell.Context) {
			if err := Args(c.Args, 1, "motor NUMBER"); err != nil {
				c.Err(err)
				return
			}
			n, err := ParseByte("motor", c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			s := ShellFrom(c)
			s.Conn.Motor.Number = n
			s.updatePrompt()
		}),
	}

	// SendCmd sends a raw command.
	SendCmd = ishell.Cmd{
		Name: "send",
		Help: "OPCODE [TYPE [MOTOR [VALUE]]]",
		Func: MustBeOpen(func(c *ishell.Context) {
			cmd, err := ParseCommand(MotorFrom(c), c.Args)
			if err != nil {
				c.Err(err)
				return
			}
			DoMotor(c, func(ctx context.Context, m *motor.Motor) (tmcl.Reply, error) {
				return m.Client.Exchange(ctx, cmd)
			})
		}),
	}

	// VersionCmd queries the firmware version.
	VersionCmd = ishell.Cmd{
		Name: "version",
		Help: "",
		Func: MustBeOpen(func(c *ishell.Context) {
			version, err := MotorFrom(c).FirmwareVersion(context.Background())
			if err != nil {
				c.Err(err)
				return
			}
			if ShellFrom(c).OutputJSON {
				out, _ := json.Marshal(map[string]string{"version": version})
				c.Println(string(out))
				return
			}
			c.Println(version)
		}),
	}
)

// ParseCommand builds a command from send arguments, missing fields
// are taken from m or left zero.
func ParseCommand(m *motor.Motor, args []string) (cmd tmcl.Command, err error) {
	if err = Args(args, 1, "send OPCODE [TYPE [MOTOR [VALUE]]]"); err != nil {
		return
	}
	cmd.Address, cmd.Motor = m.Address, m.Number
	if cmd.Opcode, err = ParseOpcode(args[0]); err != nil {
		return
	}
	if len(args) > 1 {
		if cmd.Type, err = ParseByte("type", args[1]); err != nil {
			return
		}
	}
	if len(args) > 2 {
		if cmd.Motor, err = ParseByte("motor", args[2]); err != nil {
			return
		}
	}
	if len(args) > 3 {
		cmd.Value, err = ParseValue("value", args[3])
	}
	return
}

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	conf := NewConfig()
	if err := conf.Validate(); err != nil {
		log.Fatalln(err)
	}
	s := New(conf)
	s.AutoOpen = true
	s.Run(flag.Args()...)
}
