package params

import (
	"context"

	"github.com/abiosoft/ishell"

	"github.com/sius/emotion/pkg/cli/sh"
	"github.com/sius/emotion/pkg/motor"
	"github.com/sius/emotion/pkg/tmcl"
)

func axisCmd(name string, fn func(*motor.Motor, context.Context, motor.AxisParameter) (tmcl.Reply, error)) ishell.Cmd {
	return ishell.Cmd{
		Name: name,
		Help: "PARAM",
		Func: sh.MustBeOpen(func(c *ishell.Context) {
			if err := sh.Args(c.Args, 1, name+" PARAM"); err != nil {
				c.Err(err)
				return
			}
			p, err := sh.ParseAxisParameter(c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			sh.DoMotor(c, func(ctx context.Context, m *motor.Motor) (tmcl.Reply, error) {
				return fn(m, ctx, p)
			})
		}),
	}
}

func globalCmd(name string, fn func(*motor.Motor, context.Context, byte, byte) (tmcl.Reply, error)) ishell.Cmd {
	return ishell.Cmd{
		Name: name,
		Help: "BANK N",
		Func: sh.MustBeOpen(func(c *ishell.Context) {
			if err := sh.Args(c.Args, 2, name+" BANK N"); err != nil {
				c.Err(err)
				return
			}
			bank, err := sh.ParseByte("bank", c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			n, err := sh.ParseByte("parameter", c.Args[1])
			if err != nil {
				c.Err(err)
				return
			}
			sh.DoMotor(c, func(ctx context.Context, m *motor.Motor) (tmcl.Reply, error) {
				return fn(m, ctx, bank, n)
			})
		}),
	}
}

var (
	// GetAxisParameterCmd exposes GAP.
	GetAxisParameterCmd = axisCmd("gap", (*motor.Motor).GetAxisParameter)

	// StoreAxisParameterCmd exposes STAP.
	StoreAxisParameterCmd = axisCmd("stap", (*motor.Motor).StoreAxisParameter)

	// RestoreAxisParameterCmd exposes RSAP.
	RestoreAxisParameterCmd = axisCmd("rsap", (*motor.Motor).RestoreAxisParameter)

	// SetAxisParameterCmd exposes SAP.
	SetAxisParameterCmd = ishell.Cmd{
		Name: "sap",
		Help: "PARAM VALUE",
		Func: sh.MustBeOpen(func(c *ishell.Context) {
			if err := sh.Args(c.Args, 2, "sap PARAM VALUE"); err != nil {
				c.Err(err)
				return
			}
			p, err := sh.ParseAxisParameter(c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			v, err := sh.ParseValue("value", c.Args[1])
			if err != nil {
				c.Err(err)
				return
			}
			sh.DoMotor(c, func(ctx context.Context, m *motor.Motor) (tmcl.Reply, error) {
				return m.SetAxisParameter(ctx, p, v)
			})
		}),
	}

	// GetGlobalParameterCmd exposes GGP.
	GetGlobalParameterCmd = globalCmd("ggp", (*motor.Motor).GetGlobalParameter)

	// StoreGlobalParameterCmd exposes STGP.
	StoreGlobalParameterCmd = globalCmd("stgp", (*motor.Motor).StoreGlobalParameter)

	// RestoreGlobalParameterCmd exposes RSGP.
	RestoreGlobalParameterCmd = globalCmd("rsgp", (*motor.Motor).RestoreGlobalParameter)

	// SetGlobalParameterCmd exposes SGP.
	SetGlobalParameterCmd = ishell.Cmd{
		Name: "sgp",
		Help: "BANK N VALUE",
		Func: sh.MustBeOpen(func(c *ishell.Context) {
			if err := sh.Args(c.Args, 3, "sgp BANK N VALUE"); err != nil {
				c.Err(err)
				return
			}
			bank, err := sh.ParseByte("bank", c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			n, err := sh.ParseByte("parameter", c.Args[1])
			if err != nil {
				c.Err(err)
				return
			}
			v, err := sh.ParseValue("value", c.Args[2])
			if err != nil {
				c.Err(err)
				return
			}
			sh.DoMotor(c, func(ctx context.Context, m *motor.Motor) (tmcl.Reply, error) {
				return m.SetGlobalParameter(ctx, bank, n, v)
			})
		}),
	}

	// SetOutputCmd exposes SIO.
	SetOutputCmd = ishell.Cmd{
		Name: "sio",
		Help: "PORT on|off",
		Func: sh.MustBeOpen(func(c *ishell.Context) {
			if err := sh.Args(c.Args, 2, "sio PORT on|off"); err != nil {
				c.Err(err)
				return
			}
			port, err := sh.ParseByte("port", c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			on, err := sh.ParseBool("level", c.Args[1])
			if err != nil {
				c.Err(err)
				return
			}
			sh.DoMotor(c, func(ctx context.Context, m *motor.Motor) (tmcl.Reply, error) {
				return m.SetOutput(ctx, port, on)
			})
		}),
	}

	// InputCmd exposes GIO.
	InputCmd = ishell.Cmd{
		Name: "gio",
		Help: "PORT",
		Func: sh.MustBeOpen(func(c *ishell.Context) {
			if err := sh.Args(c.Args, 1, "gio PORT"); err != nil {
				c.Err(err)
				return
			}
			port, err := sh.ParseByte("port", c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			sh.DoMotor(c, func(ctx context.Context, m *motor.Motor) (tmcl.Reply, error) {
				return m.Input(ctx, port)
			})
		}),
	}
)

func init() {
	sh.AddCmds(
		&GetAxisParameterCmd,
		&SetAxisParameterCmd,
		&StoreAxisParameterCmd,
		&RestoreAxisParameterCmd,
		&GetGlobalParameterCmd,
		&SetGlobalParameterCmd,
		&StoreGlobalParameterCmd,
		&RestoreGlobalParameterCmd,
		&SetOutputCmd,
		&InputCmd,
	)
}
