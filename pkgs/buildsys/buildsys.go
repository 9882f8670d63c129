package buildsys

import (
	"strconv"
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// BuildSystem captures the two invocations an extension build delegates to
// an external tool: configure, then compile.
type BuildSystem interface {
	ConfigureCommand() Command
	BuildCommand() Command
}

// Command is one external tool invocation.
type Command struct {
	Name string
	Args []string
}

// Argv returns the full argument vector, program name first.
func (c Command) Argv() []string {
	return append([]string{c.Name}, c.Args...)
}

// String renders the command as a bash command line.
func (c Command) String() string {
	argv := c.Argv()
	quoted := make([]string, len(argv))
	for i, arg := range argv {
		q, err := syntax.Quote(arg, syntax.LangBash)
		if err != nil {
			// Arguments bash cannot represent, such as NUL bytes.
			q = strconv.Quote(arg)
		}
		quoted[i] = q
	}
	return strings.Join(quoted, " ")
}
