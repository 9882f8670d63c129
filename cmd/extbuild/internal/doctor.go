package internal

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/goplus/extbuild/internal/paths"
	"github.com/goplus/extbuild/pkgs/buildsys"
	"github.com/goplus/extbuild/x/cmake"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that a build can run",
	Long: `Doctor checks the toolchain, queries the host library and verifies that the
host headers and libraries are where the build expects them.`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

type check struct {
	w      io.Writer
	failed int
}

func (c *check) ok(what, detail string) {
	fmt.Fprintf(c.w, "%s %s %s\n", SuccessStyle.Render("✓"), what, MutedStyle.Render(detail))
}

func (c *check) warn(what, detail string) {
	fmt.Fprintf(c.w, "%s %s %s\n", WarningStyle.Render("!"), what, MutedStyle.Render(detail))
}

func (c *check) fail(what string, err error) {
	c.failed++
	fmt.Fprintf(c.w, "%s %s: %v\n", ErrorStyle.Render("✗"), what, err)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	c := &check{w: cmd.OutOrStdout()}

	tools := toolchain(a).RequiredTools()
	for _, tool := range tools {
		if path, err := buildsys.LookTool(tool.Name); err == nil {
			c.ok(tool.Name, path)
		} else {
			c.warn(tool.Name, "not found ("+tool.Purpose+")")
		}
	}
	if err := buildsys.CheckTools(tools); err != nil {
		c.fail("toolchain", err)
	}

	report, err := a.queryHost(cmd.Context())
	if err != nil {
		c.fail("host "+a.cfg.Host.Package, err)
		return doctorResult(c)
	}
	c.ok("host "+a.cfg.Host.Package, report.Version)
	if err := report.Facts.Validate(); err != nil {
		c.fail("ABI tag", err)
	} else {
		c.ok("ABI tag", fmt.Sprint(report.Facts.Tag))
	}

	ps, err := paths.Compute(a.workspace, report.Root, paths.Layout{})
	if err == nil {
		err = ps.CheckHost()
	}
	if err != nil {
		c.fail("host artifacts", err)
	} else {
		c.ok("host artifacts", ps.HostInclude+", "+ps.HostLib)
	}
	return doctorResult(c)
}

// toolchain describes the build system a build in a's workspace uses.
func toolchain(a *app) buildsys.ToolChecker {
	sys := cmake.New(a.workspace, ".")
	sys.Generator(a.cfg.Build.Generator)
	return sys
}

func doctorResult(c *check) error {
	if c.failed > 0 {
		return &ExitError{Code: 1, Err: fmt.Errorf("%d check(s) failed", c.failed)}
	}
	return nil
}
