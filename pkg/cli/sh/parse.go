package sh

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sius/emotion/pkg/motor"
	"github.com/sius/emotion/pkg/tmcl"
)

// ParseByte parses a decimal, 0x hex or 0b binary byte.
func ParseByte(name, s string) (byte, error) {
	v, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, s)
	}
	return byte(v), nil
}

// ParseValue parses a signed 32-bit value.
func ParseValue(name, s string) (int32, error) {
	v, err := strconv.ParseInt(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, s)
	}
	return int32(v), nil
}

// ParseOpcode parses an opcode mnemonic like MVP or a number.
func ParseOpcode(s string) (byte, error) {
	if op, ok := tmcl.OpcodeByName(strings.ToUpper(s)); ok {
		return op, nil
	}
	return ParseByte("opcode", s)
}

// ParseAxisParameter parses an axis parameter name or number.
func ParseAxisParameter(s string) (motor.AxisParameter, error) {
	if p, ok := motor.AxisParameterByName(s); ok {
		return p, nil
	}
	n, err := ParseByte("axis parameter", s)
	return motor.AxisParameter(n), err
}

// ParseBool parses on/off style switches.
func ParseBool(name, s string) (bool, error) {
	switch s {
	case "1", "on", "high", "true":
		return true, nil
	case "0", "off", "low", "false":
		return false, nil
	}
	return false, fmt.Errorf("invalid %s %q", name, s)
}

// Args checks the number of arguments.
func Args(args []string, min int, usage string) error {
	if len(args) < min {
		return fmt.Errorf("usage: %s", usage)
	}
	return nil
}
