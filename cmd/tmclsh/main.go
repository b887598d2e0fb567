package main

import (
	"github.com/sius/emotion/pkg/cli/sh"

	_ "github.com/sius/emotion/pkg/cli/cmds/all"
)

//go-build: CGO_ENABLED=0

func init() {
	sh.SetupFlags()
}

func main() {
	sh.Main()
}
