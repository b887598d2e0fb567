package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/sius/emotion/pkg/bridge"
	"github.com/sius/emotion/pkg/channel/serial"
	"github.com/sius/emotion/pkg/tmcl"
)

// Config is the daemon configuration.
type Config struct {
	Serial  serial.Config `toml:"serial"`
	Timeout time.Duration `toml:"timeout"`
	MQTT    MQTTConfig    `toml:"mqtt"`
	Relay   RelayConfig   `toml:"relay"`
}

// MQTTConfig configures the bridge, disabled without URL.
type MQTTConfig struct {
	// URL is like mqtt://host:1883/topic-prefix/
	URL         string `toml:"url"`
	ID          string `toml:"id"`
	Description string `toml:"description"`
}

// RelayConfig configures the websocket relay, disabled without Listen.
type RelayConfig struct {
	Listen string `toml:"listen"`
	Path   string `toml:"path"`
}

var (
	configFile string

	defaultConfig = Config{
		Serial:  *serial.DefaultConfig(""),
		Timeout: tmcl.DefaultTimeout,
		Relay:   RelayConfig{Path: "/tmcl"},
	}
)

func init() {
	if val := os.Getenv("TMCL_DEVICE"); val != "" {
		defaultConfig.Serial.Device = val
	}
	if val, err := strconv.Atoi(os.Getenv("TMCL_BAUD")); err == nil {
		defaultConfig.Serial.Baud = val
	}
	if val := os.Getenv("TMCL_DRIVER"); val != "" {
		defaultConfig.Serial.Driver = val
	}
	if val := os.Getenv("TMCL_MQTT_URL"); val != "" {
		defaultConfig.MQTT.URL = val
	}
	if val := os.Getenv("TMCL_LISTEN"); val != "" {
		defaultConfig.Relay.Listen = val
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&configFile, "config", configFile, "TOML config file, flags take precedence.")
	flag.StringVar(&defaultConfig.Serial.Device, "device", defaultConfig.Serial.Device, "Serial device.")
	flag.IntVar(&defaultConfig.Serial.Baud, "baud", defaultConfig.Serial.Baud, "Serial baud rate.")
	flag.StringVar(&defaultConfig.Serial.Driver, "driver", defaultConfig.Serial.Driver, "Serial driver: bugst or tarm.")
	flag.BoolVar(&defaultConfig.Serial.RTSToggle, "rts", defaultConfig.Serial.RTSToggle, "Toggle RTS when sending.")
	flag.DurationVar(&defaultConfig.Timeout, "timeout", defaultConfig.Timeout, "Reply timeout.")
	flag.StringVar(&defaultConfig.MQTT.URL, "mqtt", defaultConfig.MQTT.URL, "MQTT broker URL, empty disables the bridge.")
	flag.StringVar(&defaultConfig.MQTT.ID, "id", defaultConfig.MQTT.ID, "Bridge ID, defaults to the machine ID.")
	flag.StringVar(&defaultConfig.Relay.Listen, "listen", defaultConfig.Relay.Listen, "Websocket relay address, empty disables the relay.")
}

// Default gets the default config.
func Default() *Config {
	return &defaultConfig
}

// LoadFile merges the TOML file into c.
func (c *Config) LoadFile(path string) error {
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		return fmt.Errorf("config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("config %s: unknown key %s", path, undecoded[0])
	}
	return nil
}

// Validate checks the config and fills defaults.
func (c *Config) Validate() error {
	if err := c.Serial.Validate(); err != nil {
		return err
	}
	if c.MQTT.URL == "" && c.Relay.Listen == "" {
		return fmt.Errorf("nothing to serve, specify -mqtt or -listen")
	}
	if c.MQTT.URL != "" && c.MQTT.ID == "" {
		c.MQTT.ID = bridge.DefaultID()
	}
	if c.Relay.Path == "" {
		c.Relay.Path = "/"
	}
	return nil
}

// Meta describes the bridge.
func (c *Config) Meta() map[string]string {
	meta := map[string]string{"device": c.Serial.Device}
	if c.MQTT.Description != "" {
		meta["description"] = c.MQTT.Description
	}
	return meta
}
