package internal

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goplus/extbuild/internal/abi"
	"github.com/goplus/extbuild/internal/oracle"
)

var factsTOML bool

var factsCmd = &cobra.Command{
	Use:   "facts",
	Short: "Show the ABI facts reported by the host",
	Long: `Facts queries the host library and prints the ABI parameters it reports
together with the compiler flags derived from them. With --toml the report is
written in the facts file format accepted by host.facts_file.`,
	Args: cobra.NoArgs,
	RunE: runFacts,
}

func init() {
	factsCmd.Flags().BoolVar(&factsTOML, "toml", false, "Print a facts file instead of a summary")
	rootCmd.AddCommand(factsCmd)
}

func runFacts(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	report, err := a.oracle().Query(cmd.Context())
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if factsTOML {
		data, err := oracle.EncodeReport(report)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	}

	flags, err := abi.Translate(report.Facts)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s %s\n", MutedStyle.Render("Project:"), a.cfg.Project.Name+" "+a.cfg.Project.Version)
	renderReport(w, a.cfg.Host.Package, report, flags.Strings())
	return nil
}
