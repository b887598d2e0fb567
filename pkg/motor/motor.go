// Package motor drives one axis of a TMCM module.
package motor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sius/emotion/pkg/tmcl"
)

// Limits of command values.
const (
	MinPosition   = -8388608
	MaxPosition   = 8388608
	MinVelocity   = 0
	MaxVelocity   = 8191
	MinCoordinate = 0
	MaxCoordinate = 20

	// MaxVelocityTMCM110 is the velocity limit of TMCM-110 modules.
	MaxVelocityTMCM110 = 2047
)

// RangeError reports a value out of range, nothing is sent.
type RangeError struct {
	Name     string
	Value    int64
	Min, Max int64
}

// Error implements error.
func (e *RangeError) Error() string {
	return fmt.Sprintf("%s %d out of range [%d, %d]", e.Name, e.Value, e.Min, e.Max)
}

func checkRange(name string, value, min, max int64) error {
	if value < min || value > max {
		return &RangeError{Name: name, Value: value, Min: min, Max: max}
	}
	return nil
}

// Motor is a motor of a TMCM module.
// All commands return the reply along with a *tmcl.StatusError
// if the module rejected the command.
type Motor struct {
	Client *tmcl.Client
	// Address is the module address.
	Address byte
	// Number is the motor number on the module.
	Number byte
	// MaxVelocity limits velocity values, 0 uses MaxVelocity.
	MaxVelocity int32
}

// New creates a Motor.
func New(client *tmcl.Client, address, number byte) *Motor {
	return &Motor{Client: client, Address: address, Number: number, MaxVelocity: MaxVelocity}
}

// NewTMCM110 creates a Motor on a TMCM-110 module.
func NewTMCM110(client *tmcl.Client, address, number byte) *Motor {
	m := New(client, address, number)
	m.MaxVelocity = MaxVelocityTMCM110
	return m
}

func (m *Motor) do(ctx context.Context, opcode, typ byte, value int32) (tmcl.Reply, error) {
	return m.Client.Do(ctx, tmcl.Command{
		Address: m.Address,
		Opcode:  opcode,
		Type:    typ,
		Motor:   m.Number,
		Value:   value,
	})
}

func (m *Motor) checkVelocity(velocity int32) error {
	max := m.MaxVelocity
	if max <= 0 {
		max = MaxVelocity
	}
	return checkRange("velocity", int64(velocity), MinVelocity, int64(max))
}

func checkCoordinate(n byte) error {
	return checkRange("coordinate", int64(n), MinCoordinate, MaxCoordinate)
}

// RotateRight rotates with velocity.
func (m *Motor) RotateRight(ctx context.Context, velocity int32) (tmcl.Reply, error) {
	if err := m.checkVelocity(velocity); err != nil {
		return tmcl.Reply{}, err
	}
	return m.do(ctx, tmcl.OpROR, 0, velocity)
}

// RotateLeft rotates with velocity.
func (m *Motor) RotateLeft(ctx context.Context, velocity int32) (tmcl.Reply, error) {
	if err := m.checkVelocity(velocity); err != nil {
		return tmcl.Reply{}, err
	}
	return m.do(ctx, tmcl.OpROL, 0, velocity)
}

// Stop stops the motor.
func (m *Motor) Stop(ctx context.Context) (tmcl.Reply, error) {
	return m.do(ctx, tmcl.OpMST, 0, 0)
}

// MoveAbsolute moves to position.
func (m *Motor) MoveAbsolute(ctx context.Context, position int32) (tmcl.Reply, error) {
	if err := checkRange("position", int64(position), MinPosition, MaxPosition); err != nil {
		return tmcl.Reply{}, err
	}
	return m.do(ctx, tmcl.OpMVP, tmcl.MVPAbsolute, position)
}

// MoveRelative moves by offset.
func (m *Motor) MoveRelative(ctx context.Context, offset int32) (tmcl.Reply, error) {
	if err := checkRange("offset", int64(offset), MinPosition, MaxPosition); err != nil {
		return tmcl.Reply{}, err
	}
	return m.do(ctx, tmcl.OpMVP, tmcl.MVPRelative, offset)
}

// MoveToCoordinate moves to a stored coordinate.
func (m *Motor) MoveToCoordinate(ctx context.Context, n byte) (tmcl.Reply, error) {
	if err := checkCoordinate(n); err != nil {
		return tmcl.Reply{}, err
	}
	return m.do(ctx, tmcl.OpMVP, tmcl.MVPCoordinate, int32(n))
}

// StartReferenceSearch starts the reference search.
func (m *Motor) StartReferenceSearch(ctx context.Context) (tmcl.Reply, error) {
	return m.do(ctx, tmcl.OpRFS, tmcl.RFSStart, 0)
}

// AbortReferenceSearch aborts the reference search.
func (m *Motor) AbortReferenceSearch(ctx context.Context) (tmcl.Reply, error) {
	return m.do(ctx, tmcl.OpRFS, tmcl.RFSStop, 0)
}

// ReferenceSearchStatus queries the reference search.
// The reply value is non-zero while searching.
func (m *Motor) ReferenceSearchStatus(ctx context.Context) (tmcl.Reply, error) {
	return m.do(ctx, tmcl.OpRFS, tmcl.RFSStatus, 0)
}

// SetCoordinate stores position as coordinate n.
func (m *Motor) SetCoordinate(ctx context.Context, n byte, position int32) (tmcl.Reply, error) {
	if err := checkCoordinate(n); err != nil {
		return tmcl.Reply{}, err
	}
	if err := checkRange("position", int64(position), MinPosition, MaxPosition); err != nil {
		return tmcl.Reply{}, err
	}
	return m.do(ctx, tmcl.OpSCO, n, position)
}

// GetCoordinate reads coordinate n.
func (m *Motor) GetCoordinate(ctx context.Context, n byte) (tmcl.Reply, error) {
	if err := checkCoordinate(n); err != nil {
		return tmcl.Reply{}, err
	}
	return m.do(ctx, tmcl.OpGCO, n, 0)
}

// CaptureCoordinate stores the actual position as coordinate n.
func (m *Motor) CaptureCoordinate(ctx context.Context, n byte) (tmcl.Reply, error) {
	if err := checkCoordinate(n); err != nil {
		return tmcl.Reply{}, err
	}
	return m.do(ctx, tmcl.OpCCO, n, 0)
}

// SetOutput sets an output port, the motor number selects the bank.
func (m *Motor) SetOutput(ctx context.Context, port byte, on bool) (tmcl.Reply, error) {
	var value int32
	if on {
		value = 1
	}
	return m.do(ctx, tmcl.OpSIO, port, value)
}

// Input reads an input port, the motor number selects the bank.
func (m *Motor) Input(ctx context.Context, port byte) (tmcl.Reply, error) {
	return m.do(ctx, tmcl.OpGIO, port, 0)
}

// SPIAccess transfers data on an SPI bus.
func (m *Motor) SPIAccess(ctx context.Context, bus byte, data int32) (tmcl.Reply, error) {
	return m.do(ctx, tmcl.OpSAC, bus, data)
}

// SetAxisParameter sets an axis parameter.
func (m *Motor) SetAxisParameter(ctx context.Context, p AxisParameter, value int32) (tmcl.Reply, error) {
	return m.do(ctx, tmcl.OpSAP, byte(p), value)
}

// GetAxisParameter reads an axis parameter.
func (m *Motor) GetAxisParameter(ctx context.Context, p AxisParameter) (tmcl.Reply, error) {
	return m.do(ctx, tmcl.OpGAP, byte(p), 0)
}

// StoreAxisParameter stores an axis parameter into EEPROM.
func (m *Motor) StoreAxisParameter(ctx context.Context, p AxisParameter) (tmcl.Reply, error) {
	return m.do(ctx, tmcl.OpSTAP, byte(p), 0)
}

// RestoreAxisParameter restores an axis parameter from EEPROM.
func (m *Motor) RestoreAxisParameter(ctx context.Context, p AxisParameter) (tmcl.Reply, error) {
	return m.do(ctx, tmcl.OpRSAP, byte(p), 0)
}

// SetGlobalParameter sets a global parameter in bank.
func (m *Motor) SetGlobalParameter(ctx context.Context, bank, n byte, value int32) (tmcl.Reply, error) {
	return m.global(ctx, tmcl.OpSGP, bank, n, value)
}

// GetGlobalParameter reads a global parameter in bank.
func (m *Motor) GetGlobalParameter(ctx context.Context, bank, n byte) (tmcl.Reply, error) {
	return m.global(ctx, tmcl.OpGGP, bank, n, 0)
}

// StoreGlobalParameter stores a global parameter into EEPROM.
func (m *Motor) StoreGlobalParameter(ctx context.Context, bank, n byte) (tmcl.Reply, error) {
	return m.global(ctx, tmcl.OpSTGP, bank, n, 0)
}

// RestoreGlobalParameter restores a global parameter from EEPROM.
func (m *Motor) RestoreGlobalParameter(ctx context.Context, bank, n byte) (tmcl.Reply, error) {
	return m.global(ctx, tmcl.OpRSGP, bank, n, 0)
}

func (m *Motor) global(ctx context.Context, opcode, bank, n byte, value int32) (tmcl.Reply, error) {
	return m.Client.Do(ctx, tmcl.Command{
		Address: m.Address,
		Opcode:  opcode,
		Type:    n,
		Motor:   bank,
		Value:   value,
	})
}

func (m *Motor) param(ctx context.Context, p AxisParameter) (int32, error) {
	reply, err := m.GetAxisParameter(ctx, p)
	if err != nil {
		return 0, err
	}
	return reply.Value, nil
}

// Position returns the actual position.
func (m *Motor) Position(ctx context.Context) (int32, error) {
	return m.param(ctx, ActualPosition)
}

// Speed returns the actual speed.
func (m *Motor) Speed(ctx context.Context) (int32, error) {
	return m.param(ctx, ActualSpeed)
}

func (m *Motor) flag(ctx context.Context, p AxisParameter) (bool, error) {
	v, err := m.param(ctx, p)
	return v == 1, err
}

func (m *Motor) setFlag(ctx context.Context, p AxisParameter, on bool) (tmcl.Reply, error) {
	var value int32
	if on {
		value = 1
	}
	return m.SetAxisParameter(ctx, p, value)
}

// TargetPosition returns the position of the current move.
func (m *Motor) TargetPosition(ctx context.Context) (int32, error) {
	return m.param(ctx, TargetPosition)
}

// TargetSpeed returns the speed of the current rotation.
func (m *Motor) TargetSpeed(ctx context.Context) (int32, error) {
	return m.param(ctx, TargetSpeed)
}

// MaxPositioningSpeed returns the speed limit of moves.
func (m *Motor) MaxPositioningSpeed(ctx context.Context) (int32, error) {
	return m.param(ctx, MaxPositioningSpeed)
}

// MaxAcceleration returns the acceleration limit.
func (m *Motor) MaxAcceleration(ctx context.Context) (int32, error) {
	return m.param(ctx, MaxAcceleration)
}

// AbsMaxCurrent returns the peak coil current.
func (m *Motor) AbsMaxCurrent(ctx context.Context) (byte, error) {
	v, err := m.param(ctx, AbsMaxCurrent)
	return byte(v), err
}

// StandbyCurrent returns the coil current at rest.
func (m *Motor) StandbyCurrent(ctx context.Context) (byte, error) {
	v, err := m.param(ctx, StandbyCurrent)
	return byte(v), err
}

// StepratePrescaler returns the pulse divisor.
func (m *Motor) StepratePrescaler(ctx context.Context) (int32, error) {
	return m.param(ctx, StepratePrescaler)
}

// TargetPositionReached tells whether the last move completed.
func (m *Motor) TargetPositionReached(ctx context.Context) (bool, error) {
	return m.flag(ctx, TargetPositionReached)
}

// ReferenceSwitchStatus tells whether the reference switch is active.
func (m *Motor) ReferenceSwitchStatus(ctx context.Context) (bool, error) {
	return m.flag(ctx, ReferenceSwitchStatus)
}

// RightLimitSwitchStatus tells whether the right limit switch is active.
func (m *Motor) RightLimitSwitchStatus(ctx context.Context) (bool, error) {
	return m.flag(ctx, RightLimitSwitchStatus)
}

// LeftLimitSwitchStatus tells whether the left limit switch is active.
func (m *Motor) LeftLimitSwitchStatus(ctx context.Context) (bool, error) {
	return m.flag(ctx, LeftLimitSwitchStatus)
}

// RightLimitSwitchDisabled tells whether the right limit switch is ignored.
func (m *Motor) RightLimitSwitchDisabled(ctx context.Context) (bool, error) {
	return m.flag(ctx, RightLimitSwitchDisable)
}

// LeftLimitSwitchDisabled tells whether the left limit switch is ignored.
func (m *Motor) LeftLimitSwitchDisabled(ctx context.Context) (bool, error) {
	return m.flag(ctx, LeftLimitSwitchDisable)
}

// DisableRightLimitSwitch ignores or enables the right limit switch.
func (m *Motor) DisableRightLimitSwitch(ctx context.Context, disable bool) (tmcl.Reply, error) {
	return m.setFlag(ctx, RightLimitSwitchDisable, disable)
}

// DisableLeftLimitSwitch ignores or enables the left limit switch.
func (m *Motor) DisableLeftLimitSwitch(ctx context.Context, disable bool) (tmcl.Reply, error) {
	return m.setFlag(ctx, LeftLimitSwitchDisable, disable)
}

// FirmwareVersion returns the firmware version string, like "110V4.17".
// The module answers with text instead of a regular reply, so the
// frame checksum doesn't apply.
func (m *Motor) FirmwareVersion(ctx context.Context) (string, error) {
	reply, err := m.Client.Exchange(ctx, tmcl.Command{
		Address: m.Address,
		Opcode:  tmcl.OpFirmwareVersion,
		Motor:   m.Number,
	})
	raw := reply.Raw
	if err != nil {
		var csErr *tmcl.ChecksumError
		if !errors.As(err, &csErr) {
			return "", err
		}
		raw = csErr.Frame
	}
	return strings.TrimRight(string(raw[1:tmcl.FrameSize]), "\x00 "), nil
}

// FirmwareVersionNumber returns the binary firmware version.
// The upper 16 bits of the value are the module type.
func (m *Motor) FirmwareVersionNumber(ctx context.Context) (int32, error) {
	reply, err := m.do(ctx, tmcl.OpFirmwareVersion, 1, 0)
	return reply.Value, err
}
