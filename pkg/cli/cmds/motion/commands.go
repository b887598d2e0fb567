package motion

import (
	"context"
	"fmt"

	"github.com/abiosoft/ishell"

	"github.com/sius/emotion/pkg/cli/sh"
	"github.com/sius/emotion/pkg/motor"
	"github.com/sius/emotion/pkg/tmcl"
)

func rotateCmd(name, help string, rotate func(*motor.Motor, context.Context, int32) (tmcl.Reply, error)) ishell.Cmd {
	return ishell.Cmd{
		Name: name,
		Help: help,
		Func: sh.MustBeOpen(func(c *ishell.Context) {
			if err := sh.Args(c.Args, 1, name+" VELOCITY"); err != nil {
				c.Err(err)
				return
			}
			v, err := sh.ParseValue("velocity", c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			sh.DoMotor(c, func(ctx context.Context, m *motor.Motor) (tmcl.Reply, error) {
				return rotate(m, ctx, v)
			})
		}),
	}
}

func coordinateCmd(name, help string, fn func(*motor.Motor, context.Context, byte) (tmcl.Reply, error)) ishell.Cmd {
	return ishell.Cmd{
		Name: name,
		Help: help,
		Func: sh.MustBeOpen(func(c *ishell.Context) {
			if err := sh.Args(c.Args, 1, name+" N"); err != nil {
				c.Err(err)
				return
			}
			n, err := sh.ParseByte("coordinate", c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			sh.DoMotor(c, func(ctx context.Context, m *motor.Motor) (tmcl.Reply, error) {
				return fn(m, ctx, n)
			})
		}),
	}
}

var (
	// RotateRightCmd exposes ROR.
	RotateRightCmd = rotateCmd("ror", "VELOCITY", (*motor.Motor).RotateRight)

	// RotateLeftCmd exposes ROL.
	RotateLeftCmd = rotateCmd("rol", "VELOCITY", (*motor.Motor).RotateLeft)

	// StopCmd exposes MST.
	StopCmd = ishell.Cmd{
		Name:    "mst",
		Aliases: []string{"stop"},
		Help:    "",
		Func: sh.MustBeOpen(func(c *ishell.Context) {
			sh.DoMotor(c, sh.Method((*motor.Motor).Stop))
		}),
	}

	// MoveCmd exposes MVP.
	MoveCmd = ishell.Cmd{
		Name: "mvp",
		Help: "abs|rel|coord VALUE",
		Func: sh.MustBeOpen(func(c *ishell.Context) {
			if err := sh.Args(c.Args, 2, "mvp abs|rel|coord VALUE"); err != nil {
				c.Err(err)
				return
			}
			v, err := sh.ParseValue("value", c.Args[1])
			if err != nil {
				c.Err(err)
				return
			}
			var move func(context.Context, *motor.Motor) (tmcl.Reply, error)
			switch c.Args[0] {
			case "abs":
				move = func(ctx context.Context, m *motor.Motor) (tmcl.Reply, error) { return m.MoveAbsolute(ctx, v) }
			case "rel":
				move = func(ctx context.Context, m *motor.Motor) (tmcl.Reply, error) { return m.MoveRelative(ctx, v) }
			case "coord":
				if v < 0 || v > motor.MaxCoordinate {
					c.Err(&motor.RangeError{Name: "coordinate", Value: int64(v), Min: motor.MinCoordinate, Max: motor.MaxCoordinate})
					return
				}
				move = func(ctx context.Context, m *motor.Motor) (tmcl.Reply, error) { return m.MoveToCoordinate(ctx, byte(v)) }
			default:
				c.Err(fmt.Errorf("unknown move type %q", c.Args[0]))
				return
			}
			sh.DoMotor(c, move)
		}),
	}

	// ReferenceSearchCmd exposes RFS.
	ReferenceSearchCmd = ishell.Cmd{
		Name: "rfs",
		Help: "start|stop|status",
		Func: sh.MustBeOpen(func(c *ishell.Context) {
			if err := sh.Args(c.Args, 1, "rfs start|stop|status"); err != nil {
				c.Err(err)
				return
			}
			switch c.Args[0] {
			case "start":
				sh.DoMotor(c, sh.Method((*motor.Motor).StartReferenceSearch))
			case "stop":
				sh.DoMotor(c, sh.Method((*motor.Motor).AbortReferenceSearch))
			case "status":
				sh.DoMotor(c, sh.Method((*motor.Motor).ReferenceSearchStatus))
			default:
				c.Err(fmt.Errorf("unknown rfs type %q", c.Args[0]))
			}
		}),
	}

	// SetCoordinateCmd exposes SCO.
	SetCoordinateCmd = ishell.Cmd{
		Name: "sco",
		Help: "N POSITION",
		Func: sh.MustBeOpen(func(c *ishell.Context) {
			if err := sh.Args(c.Args, 2, "sco N POSITION"); err != nil {
				c.Err(err)
				return
			}
			n, err := sh.ParseByte("coordinate", c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			pos, err := sh.ParseValue("position", c.Args[1])
			if err != nil {
				c.Err(err)
				return
			}
			sh.DoMotor(c, func(ctx context.Context, m *motor.Motor) (tmcl.Reply, error) {
				return m.SetCoordinate(ctx, n, pos)
			})
		}),
	}

	// GetCoordinateCmd exposes GCO.
	GetCoordinateCmd = coordinateCmd("gco", "N", (*motor.Motor).GetCoordinate)

	// CaptureCoordinateCmd exposes CCO.
	CaptureCoordinateCmd = coordinateCmd("cco", "N", (*motor.Motor).CaptureCoordinate)
)

func init() {
	sh.AddCmds(
		&RotateRightCmd,
		&RotateLeftCmd,
		&StopCmd,
		&MoveCmd,
		&ReferenceSearchCmd,
		&SetCoordinateCmd,
		&GetCoordinateCmd,
		&CaptureCoordinateCmd,
	)
}
