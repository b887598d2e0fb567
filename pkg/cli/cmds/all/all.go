// Package all registers all shell commands.
package all

import (
	_ "github.com/sius/emotion/pkg/cli/cmds/motion"
	_ "github.com/sius/emotion/pkg/cli/cmds/params"
)
