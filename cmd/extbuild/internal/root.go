package internal

import (
	"context"
	"errors"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

// Version is set at link time.
var Version = "dev"

var (
	cfgFile   string
	verbose   bool
	workspace string
)

var rootCmd = &cobra.Command{
	Use:   "extbuild",
	Short: "extbuild builds native extensions against an installed host library",
	Long: `extbuild queries an installed host library for the C++ ABI it was compiled
with, translates the answers into compiler flags and drives CMake to build an
extension module that is binary compatible with it.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is <workspace>/extbuild.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "C", ".", "extension source tree")
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(Version),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}
