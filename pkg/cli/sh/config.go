package sh

import (
	"flag"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sius/emotion/pkg/channel"
	"github.com/sius/emotion/pkg/channel/serial"
	"github.com/sius/emotion/pkg/channel/websocket"
	"github.com/sius/emotion/pkg/tmcl"
)

// Config provides the options to reach a module.
type Config struct {
	// Device is a serial device or the ws:// URL of a relay.
	Device  string
	Baud    int
	Driver  string
	NoRTS   bool
	Address uint
	Motor   uint
	Timeout time.Duration
}

var defaultConfig = Config{
	Baud:    serial.DefaultBaud,
	Driver:  serial.DriverBugst,
	Address: 1,
	Timeout: tmcl.DefaultTimeout,
}

func init() {
	if val := os.Getenv("TMCL_DEVICE"); val != "" {
		defaultConfig.Device = val
	}
	if val, err := strconv.Atoi(os.Getenv("TMCL_BAUD")); err == nil {
		defaultConfig.Baud = val
	}
	if val := os.Getenv("TMCL_DRIVER"); val != "" {
		defaultConfig.Driver = val
	}
	if val, err := strconv.ParseUint(os.Getenv("TMCL_ADDRESS"), 0, 8); err == nil {
		defaultConfig.Address = uint(val)
	}
	if val, err := strconv.ParseUint(os.Getenv("TMCL_MOTOR"), 0, 8); err == nil {
		defaultConfig.Motor = uint(val)
	}
}

// SetupFlags sets up command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Device, "device", defaultConfig.Device, "Serial device or ws:// relay URL.")
	flag.IntVar(&defaultConfig.Baud, "baud", defaultConfig.Baud, "Serial baud rate.")
	flag.StringVar(&defaultConfig.Driver, "driver", defaultConfig.Driver, "Serial driver: bugst or tarm.")
	flag.BoolVar(&defaultConfig.NoRTS, "no-rts", defaultConfig.NoRTS, "Don't toggle RTS when sending.")
	flag.UintVar(&defaultConfig.Address, "address", defaultConfig.Address, "Module address.")
	flag.UintVar(&defaultConfig.Motor, "motor", defaultConfig.Motor, "Motor number.")
	flag.DurationVar(&defaultConfig.Timeout, "timeout", defaultConfig.Timeout, "Reply timeout.")
}

// Default gets the default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// IsRelay tells whether Device refers to a websocket relay.
func (c *Config) IsRelay() bool {
	return strings.HasPrefix(c.Device, "ws://") || strings.HasPrefix(c.Device, "wss://")
}

// SerialConfig converts to the serial port settings.
func (c *Config) SerialConfig() *serial.Config {
	conf := serial.DefaultConfig(c.Device)
	conf.Baud = c.Baud
	conf.Driver = c.Driver
	conf.RTSToggle = !c.NoRTS
	return conf
}

// Validate checks the module address and motor number fit a frame byte.
func (c *Config) Validate() error {
	if c.Address > math.MaxUint8 {
		return fmt.Errorf("address %d out of range [0, %d]", c.Address, math.MaxUint8)
	}
	if c.Motor > math.MaxUint8 {
		return fmt.Errorf("motor %d out of range [0, %d]", c.Motor, math.MaxUint8)
	}
	return nil
}

// Open opens the channel to the device.
func (c *Config) Open() (*channel.Buffered, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if c.IsRelay() {
		return websocket.Dial(c.Device)
	}
	return serial.Open(c.SerialConfig())
}
