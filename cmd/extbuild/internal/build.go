package internal

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/goplus/extbuild/internal/build"
	"github.com/goplus/extbuild/internal/paths"
	"github.com/goplus/extbuild/pkgs/buildsys"
)

var (
	buildDryRun  bool
	buildInplace bool
	buildOutput  string
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the extension against the installed host",
	Long: `Build queries the host library for its ABI, then configures and compiles the
extension with matching compiler flags.`,
	Args: cobra.NoArgs,
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().BoolVarP(&buildDryRun, "dry-run", "n", false, "Prepare directories and print the commands without running them")
	buildCmd.Flags().BoolVarP(&buildInplace, "inplace", "i", false, "Place the extension in the workspace instead of the build directory")
	buildCmd.Flags().StringVarP(&buildOutput, "output", "o", "", "Copy the artifact directory to a path (directory or .zip file)")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	inplace := a.cfg.Build.Inplace || buildInplace
	// Resolve output path to absolute before build (build changes cwd)
	output := buildOutput
	if output != "" {
		if inplace {
			return errors.New("--output cannot be combined with an in-place build")
		}
		if buildDryRun {
			return errors.New("--output cannot be combined with --dry-run")
		}
		if output, err = filepath.Abs(output); err != nil {
			return fmt.Errorf("failed to resolve output path: %w", err)
		}
	}

	if !buildDryRun {
		if err := buildsys.CheckTools(toolchain(a).RequiredTools()); err != nil {
			return err
		}
	}

	report, err := a.queryHost(ctx)
	if err != nil {
		return err
	}
	a.logger.Info("building", "project", a.cfg.Project.Name, "version", a.cfg.Project.Version, "host", report.Version)

	builder := build.NewBuilder(build.Options{
		Runner: &buildsys.ExecRunner{Stdout: cmd.OutOrStdout(), Env: a.cfg.Build.Env},
		Logger: a.logger,
	})
	res, err := builder.Build(ctx, build.Request{
		Workspace: a.workspace,
		Host:      *report,
		Layout: paths.Layout{
			BuildTemp: a.cfg.Build.BuildTemp,
			BuildLib:  a.cfg.Build.BuildLib,
			Inplace:   inplace,
		},
		Extension: a.cfg.Project.Extension,
		Target:    a.cfg.Project.Target,
		Jobs:      a.cfg.Build.Jobs,
		Generator: a.cfg.Build.Generator,
		DryRun:    buildDryRun,
	})
	if err != nil {
		return withExitCode(err)
	}

	w := cmd.OutOrStdout()
	if res.DryRun {
		renderPlan(w, res)
		return nil
	}
	renderResult(w, res)

	if output != "" {
		if err := outputResult(res.Paths.ArtifactDir, output); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		a.logger.Info("wrote output", "path", output)
	}
	return nil
}
