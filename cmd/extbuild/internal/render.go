package internal

import (
	"fmt"
	"io"

	"github.com/goplus/extbuild/internal/build"
	"github.com/goplus/extbuild/internal/oracle"
)

// renderPlan prints what a build would run, without running it.
func renderPlan(w io.Writer, res *build.Result) {
	fmt.Fprintln(w, TitleStyle.Render("Dry Run"))
	fmt.Fprintln(w)
	renderPaths(w, res)
	fmt.Fprintf(w, "  %s %s\n", LabelStyle.Render("CXX flags:"), res.Flags.CXXFlags())

	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s\n", LabelStyle.Render("Commands (in "+res.Paths.BuildDir+"):"))
	for _, c := range res.Plan {
		fmt.Fprintf(w, "    %s\n", CmdStyle.Render(c.String()))
	}
	fmt.Fprintln(w)
}

// renderResult summarizes a completed build.
func renderResult(w io.Writer, res *build.Result) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, SuccessStyle.Render("Build succeeded"))
	renderPaths(w, res)
	if len(res.Artifacts) == 0 {
		fmt.Fprintf(w, "  %s\n", WarningStyle.Render("no extension artifact found"))
		return
	}
	for _, a := range res.Artifacts {
		fmt.Fprintf(w, "  %s %s\n", LabelStyle.Render("Artifact:"), a)
	}
}

func renderPaths(w io.Writer, res *build.Result) {
	ps := res.Paths
	fmt.Fprintf(w, "  %s %s\n", LabelStyle.Render("Build dir:"), ps.BuildDir)
	fmt.Fprintf(w, "  %s %s\n", LabelStyle.Render("Output dir:"), ps.ArtifactDir)
	fmt.Fprintf(w, "  %s %s\n", LabelStyle.Render("Host include:"), ps.HostInclude)
	fmt.Fprintf(w, "  %s %s\n", LabelStyle.Render("Host libs:"), ps.HostLib)
}

func renderReport(w io.Writer, pkg string, r *oracle.Report, flags []string) {
	fmt.Fprintln(w, TitleStyle.Render(pkg))
	version := r.Version
	if version == "" {
		version = MutedStyle.Render("(unknown)")
	}
	fmt.Fprintf(w, "  %s %s\n", LabelStyle.Render("Version:"), version)
	fmt.Fprintf(w, "  %s %s\n", LabelStyle.Render("Root:"), r.Root)
	fmt.Fprintf(w, "  %s %d\n", LabelStyle.Render("ABI tag:"), r.Facts.Tag)
	fmt.Fprintf(w, "  %s %t\n", LabelStyle.Render("CXX11 ABI:"), r.Facts.CXX11ABI)
	fmt.Fprintf(w, "  %s %t\n", LabelStyle.Render("Smart holder:"), r.Facts.SmartHolder)
	for _, f := range flags {
		fmt.Fprintf(w, "    %s\n", CmdStyle.Render(f))
	}
}
