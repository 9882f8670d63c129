package internal

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/goplus/extbuild/internal/config"
	"github.com/goplus/extbuild/internal/oracle"
)

// app is the state shared by every command once flags are parsed.
type app struct {
	workspace string
	cfg       *config.Config
	logger    *log.Logger
}

func newApp(cmd *cobra.Command) (*app, error) {
	ws, err := filepath.Abs(workspace)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve workspace: %w", err)
	}
	cfg, path, err := config.Load(config.LoadOptions{Workspace: ws, ConfigFile: cfgFile})
	if err != nil {
		return nil, err
	}
	logger := newLogger(cmd.ErrOrStderr(), verbose)
	if path != "" {
		logger.Debug("loaded config", "file", path)
	}
	return &app{workspace: ws, cfg: cfg, logger: logger}, nil
}

func newLogger(w io.Writer, verbose bool) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{Prefix: "extbuild"})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

// oracle picks the facts file when one is configured and the live host
// otherwise.
func (a *app) oracle() oracle.Oracle {
	if a.cfg.Host.FactsFile != "" {
		return oracle.File{Path: a.cfg.Host.FactsFile}
	}
	return &oracle.Probe{
		Interpreter: a.cfg.Host.Interpreter,
		Package:     a.cfg.Host.Package,
		Binding:     a.cfg.Host.Binding,
	}
}

// queryHost captures the host report once and checks it against
// host.min_version.
func (a *app) queryHost(ctx context.Context) (*oracle.Report, error) {
	report, err := a.oracle().Query(ctx)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("queried host", "package", a.cfg.Host.Package, "version", report.Version, "root", report.Root)
	if err := a.cfg.CheckHostVersion(report.Version); err != nil {
		return nil, err
	}
	return report, nil
}
