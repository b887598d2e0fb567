// Package serial opens TMCL channels on serial ports.
package serial

import (
	"fmt"
	"io"
	"time"

	"github.com/golang/glog"
	tarm "github.com/tarm/serial"
	bugst "go.bug.st/serial"

	"github.com/sius/emotion/pkg/channel"
)

// Drivers.
const (
	DriverBugst = "bugst"
	DriverTarm  = "tarm"
)

// Defaults.
const (
	DefaultBaud        = 9600
	DefaultReadTimeout = 50 * time.Millisecond
)

// Config defines the serial port settings.
// The line is always 8 data bits, no parity, 1 stop bit.
type Config struct {
	Device string `toml:"device"`
	Baud   int    `toml:"baud"`
	// Driver selects the serial implementation, "bugst" or "tarm".
	Driver string `toml:"driver"`
	// RTSToggle raises RTS while sending, for RS485 transceivers
	// whose driver enable is wired to RTS.
	RTSToggle   bool          `toml:"rts_toggle"`
	ReadTimeout time.Duration `toml:"read_timeout"`
}

// DefaultConfig returns the default settings for device.
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        DefaultBaud,
		Driver:      DriverBugst,
		RTSToggle:   true,
		ReadTimeout: DefaultReadTimeout,
	}
}

// Validate checks the settings.
func (c *Config) Validate() error {
	if c.Device == "" {
		return fmt.Errorf("serial device not specified")
	}
	if c.Baud <= 0 {
		return fmt.Errorf("invalid baud rate %d", c.Baud)
	}
	switch c.Driver {
	case "", DriverBugst, DriverTarm:
	default:
		return fmt.Errorf("unknown serial driver %q", c.Driver)
	}
	if c.ReadTimeout < 0 {
		return fmt.Errorf("invalid read timeout %s", c.ReadTimeout)
	}
	return nil
}

// Open opens the serial port and starts buffering.
func Open(conf *Config) (*channel.Buffered, error) {
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	var (
		port io.ReadWriteCloser
		err  error
	)
	if conf.Driver == DriverTarm {
		port, err = openTarm(conf)
	} else {
		port, err = openBugst(conf)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", conf.Device, err)
	}
	glog.Infof("serial %s opened: %d 8N1 driver=%s", conf.Device, conf.Baud, conf.driver())
	return channel.NewBuffered(port), nil
}

// Ports lists the serial ports on the system.
func Ports() ([]string, error) {
	return bugst.GetPortsList()
}

func (c *Config) driver() string {
	if c.Driver == "" {
		return DriverBugst
	}
	return c.Driver
}

func (c *Config) readTimeout() time.Duration {
	if c.ReadTimeout == 0 {
		return DefaultReadTimeout
	}
	return c.ReadTimeout
}

func openBugst(conf *Config) (io.ReadWriteCloser, error) {
	port, err := bugst.Open(conf.Device, &bugst.Mode{
		BaudRate: conf.Baud,
		DataBits: 8,
		Parity:   bugst.NoParity,
		StopBits: bugst.OneStopBit,
	})
	if err != nil {
		return nil, err
	}
	if err = port.SetReadTimeout(conf.readTimeout()); err != nil {
		port.Close()
		return nil, err
	}
	if !conf.RTSToggle {
		return port, nil
	}
	if err = port.SetRTS(false); err != nil {
		port.Close()
		return nil, err
	}
	return &rtsPort{port: port}, nil
}

func openTarm(conf *Config) (io.ReadWriteCloser, error) {
	if conf.RTSToggle {
		glog.Warningf("serial %s: driver %s can't toggle RTS", conf.Device, DriverTarm)
	}
	port, err := tarm.OpenPort(&tarm.Config{
		Name:        conf.Device,
		Baud:        conf.Baud,
		Size:        8,
		Parity:      tarm.ParityNone,
		StopBits:    tarm.Stop1,
		ReadTimeout: conf.readTimeout(),
	})
	if err != nil {
		return nil, err
	}
	return &tarmPort{port: port}, nil
}

// rtsControl is the part of a bugst port used for RTS toggling.
type rtsControl interface {
	io.ReadWriteCloser
	SetRTS(bool) error
	Drain() error
}

// rtsPort asserts RTS for the duration of each write.
type rtsPort struct {
	port rtsControl
}

func (p *rtsPort) Read(b []byte) (int, error) {
	return p.port.Read(b)
}

func (p *rtsPort) Write(b []byte) (n int, err error) {
	if err = p.port.SetRTS(true); err != nil {
		return 0, err
	}
	n, err = p.port.Write(b)
	if err == nil {
		err = p.port.Drain()
	}
	if e := p.port.SetRTS(false); err == nil {
		err = e
	}
	return
}

func (p *rtsPort) Close() error {
	return p.port.Close()
}

// tarmPort reports read timeouts as empty reads instead of io.EOF.
type tarmPort struct {
	port io.ReadWriteCloser
}

func (p *tarmPort) Read(b []byte) (int, error) {
	n, err := p.port.Read(b)
	if err == io.EOF && n == 0 {
		return 0, nil
	}
	return n, err
}

func (p *tarmPort) Write(b []byte) (int, error) {
	return p.port.Write(b)
}

func (p *tarmPort) Close() error {
	return p.port.Close()
}
