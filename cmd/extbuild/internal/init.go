package internal

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/goplus/extbuild/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default extbuild.toml",
	Long:  `Init creates an extbuild.toml with the default settings in the workspace.`,
	Args:  cobra.NoArgs,
	RunE:  runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	ws, err := filepath.Abs(workspace)
	if err != nil {
		return fmt.Errorf("failed to resolve workspace: %w", err)
	}
	path := filepath.Join(ws, config.FileName)
	if err := config.Write(path, config.Default()); err != nil {
		return fmt.Errorf("failed to write %s: %w", config.FileName, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Initialized %s\n", path)
	return nil
}
