// Package build runs an extension build: it translates the host's ABI facts,
// prepares the workspace and drives the configure and compile steps of the
// external toolchain.
package build

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/goplus/extbuild/internal/abi"
	"github.com/goplus/extbuild/internal/env"
	"github.com/goplus/extbuild/internal/oracle"
	"github.com/goplus/extbuild/internal/paths"
	"github.com/goplus/extbuild/pkgs/buildsys"
	"github.com/goplus/extbuild/x/cmake"
)

var (
	// ErrConfigureFailed classifies a configure step that could not start
	// or exited non-zero.
	ErrConfigureFailed = errors.New("configure step failed")

	// ErrCompileFailed classifies a failed compile step.
	ErrCompileFailed = errors.New("compile step failed")
)

// BuildType is the CMake configuration of every build.
const BuildType = "Debug"

// Request describes one build.
type Request struct {
	// Workspace is the extension's source tree; the CMake project lives at
	// its root.
	Workspace string
	// Host is the oracle report captured before the build. It is not
	// queried again.
	Host oracle.Report
	// Layout overrides the build and artifact directories.
	Layout paths.Layout
	// Extension is the module name the artifact is installed under.
	Extension string
	// Target is the CMake target producing the extension.
	Target string
	// Jobs is passed through to the native build tool.
	Jobs int
	// Generator optionally selects the CMake generator.
	Generator string
	// DryRun prepares directories and plans both steps without running them.
	DryRun bool
}

// Step records one executed tool invocation.
type Step struct {
	Name    string
	Command buildsys.Command
	Outcome *buildsys.Outcome
}

// Result is the outcome of a build.
type Result struct {
	State     State
	History   []State
	Flags     abi.FlagSet
	Paths     *paths.PathSet
	Plan      []buildsys.Command
	Steps     []Step
	Artifacts []string
	DryRun    bool
	Err       error
}

// Options configures a Builder.
type Options struct {
	// Runner executes tool commands. Defaults to an ExecRunner streaming to
	// os.Stdout.
	Runner buildsys.Runner
	Logger *log.Logger
}

// Builder runs builds one at a time.
type Builder struct {
	runner buildsys.Runner
	logger *log.Logger
}

func NewBuilder(opts Options) *Builder {
	b := &Builder{runner: opts.Runner, logger: opts.Logger}
	if b.runner == nil {
		b.runner = &buildsys.ExecRunner{Stdout: os.Stdout}
	}
	if b.logger == nil {
		b.logger = log.New(io.Discard)
	}
	return b
}

type run struct {
	m   *machine
	res *Result
}

func (r *run) advance(to State) error {
	if err := r.m.advance(to); err != nil {
		return err
	}
	r.res.State = r.m.state
	r.res.History = r.m.history
	return nil
}

func (r *run) fail(err error) (*Result, error) {
	// Failed is reachable from every non-terminal state.
	_ = r.advance(Failed)
	r.res.Err = err
	return r.res, err
}

// Build runs the whole configure and compile cycle. The returned Result is
// never nil; on failure its State is Failed and the error is also returned.
// The process working directory is the same on return as on entry.
func (b *Builder) Build(ctx context.Context, req Request) (*Result, error) {
	r := &run{m: newMachine(), res: &Result{DryRun: req.DryRun}}
	r.res.State = r.m.state
	r.res.History = r.m.history

	flags, err := abi.Translate(req.Host.Facts)
	if err != nil {
		return r.fail(err)
	}
	r.res.Flags = flags
	b.logger.Debug("translated ABI facts", "tag", req.Host.Facts.Tag, "flags", flags.CXXFlags())

	ps, err := paths.Resolve(req.Workspace, req.Host.Root, req.Layout)
	if err != nil {
		return r.fail(err)
	}
	r.res.Paths = ps
	if err := r.advance(DirectoriesPrepared); err != nil {
		return r.fail(err)
	}
	b.logger.Debug("prepared directories", "build", ps.BuildDir, "lib", ps.ArtifactDir)

	sys := toolchain(req, ps, flags)
	configure, compile := sys.ConfigureCommand(), sys.BuildCommand()
	r.res.Plan = []buildsys.Command{configure, compile}

	if req.DryRun {
		for _, c := range r.res.Plan {
			b.logger.Info("dry run, skipping", "dir", ps.BuildDir, "cmd", c.String())
		}
		for _, s := range []State{Configured, Built, Done} {
			if err := r.advance(s); err != nil {
				return r.fail(err)
			}
		}
		return r.res, nil
	}

	err = inDir(ps.BuildDir, func() error {
		if err := b.step(ctx, r, "configure", configure, ErrConfigureFailed); err != nil {
			return err
		}
		if err := r.advance(Configured); err != nil {
			return err
		}
		if err := b.step(ctx, r, "compile", compile, ErrCompileFailed); err != nil {
			return err
		}
		return r.advance(Built)
	})
	if err != nil {
		return r.fail(err)
	}

	artifacts, err := findArtifacts(ps.ArtifactDir, req.Extension)
	if err != nil {
		return r.fail(err)
	}
	if len(artifacts) == 0 {
		b.logger.Warn("no extension artifact found", "dir", ps.ArtifactDir, "extension", req.Extension)
	}
	r.res.Artifacts = artifacts
	if err := r.advance(Done); err != nil {
		return r.fail(err)
	}
	return r.res, nil
}

// toolchain assembles the CMake invocation for req.
func toolchain(req Request, ps *paths.PathSet, flags abi.FlagSet) *cmake.CMake {
	c := cmake.New(ps.Workspace, ".")
	c.Generator(req.Generator)
	c.DefineBool("CMAKE_EXPORT_COMPILE_COMMANDS", true)
	c.Define("CMAKE_LIBRARY_OUTPUT_DIRECTORY", ps.ArtifactDir)
	c.BuildType(BuildType)
	c.Define("SAPIEN_INCLUDE_DIR", ps.HostInclude)
	c.Define("SAPIEN_LIBRARY_DIR", ps.HostLib)
	c.Define("CMAKE_CXX_FLAGS", flags.CXXFlags())
	c.Target(req.Target)
	c.Jobs(req.Jobs)
	return c
}

// step runs one tool invocation in the current directory.
func (b *Builder) step(ctx context.Context, r *run, name string, cmd buildsys.Command, kind error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s not started: %w", name, err)
	}
	b.logger.Info("running "+name, "cmd", cmd.String())
	out, err := b.runner.Run(ctx, cmd)
	if out == nil {
		out = &buildsys.Outcome{ExitCode: -1}
	}
	r.res.Steps = append(r.res.Steps, Step{Name: name, Command: cmd, Outcome: out})
	if err != nil {
		return &buildsys.StepError{
			Step:     name,
			Kind:     kind,
			Command:  cmd,
			ExitCode: out.ExitCode,
			Output:   out.Output,
			Err:      err,
		}
	}
	return nil
}

// inDir runs fn with dir as the working directory and restores the previous
// one afterwards, including when fn panics.
func inDir(dir string, fn func() error) (err error) {
	restore, err := env.Chdir(dir)
	if err != nil {
		return fmt.Errorf("%w: %w", paths.ErrWorkspaceSetup, err)
	}
	defer func() {
		if rerr := restore(); rerr != nil && err == nil {
			err = rerr
		}
	}()
	return fn()
}
