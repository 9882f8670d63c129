// Package paths locates the host library's headers and compiled libraries and
// lays out the workspace directories an extension build writes to.
package paths

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

var (
	// ErrMissingHostArtifact is returned when the host installation lacks
	// its include or compiled library directory.
	ErrMissingHostArtifact = errors.New("missing host artifact")

	// ErrWorkspaceSetup is returned when a workspace directory cannot be created.
	ErrWorkspaceSetup = errors.New("workspace setup failed")
)

// Layout overrides where build outputs go. Zero values select the defaults
// under <workspace>/build.
type Layout struct {
	BuildTemp string // configure/compile working directory
	BuildLib  string // artifact output directory
	Inplace   bool   // place the artifact in the workspace root
}

// PathSet is the resolved directory layout of one build.
type PathSet struct {
	Workspace   string
	HostInclude string
	HostLib     string
	BuildDir    string
	ArtifactDir string
}

// Resolve computes the directories of a build, checks that the host
// directories exist and creates the workspace ones.
//
// Host headers live in <hostRoot>/include; compiled libraries live next to
// the package, in <dir(hostRoot)>/<base(hostRoot)>.libs.
func Resolve(workspace, hostRoot string, layout Layout) (*PathSet, error) {
	ps, err := Compute(workspace, hostRoot, layout)
	if err != nil {
		return nil, err
	}
	if err := ps.CheckHost(); err != nil {
		return nil, err
	}
	if err := ps.Ensure(); err != nil {
		return nil, err
	}
	return ps, nil
}

// Compute resolves every path to an absolute one without touching the
// filesystem.
func Compute(workspace, hostRoot string, layout Layout) (*PathSet, error) {
	ws, err := filepath.Abs(workspace)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve workspace: %w", err)
	}
	host, err := filepath.Abs(hostRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve host root: %w", err)
	}

	plat := runtime.GOOS + "-" + runtime.GOARCH
	buildDir := filepath.Join(ws, "build", "temp."+plat)
	if layout.BuildTemp != "" {
		buildDir = absUnder(ws, layout.BuildTemp)
	}
	artifactDir := filepath.Join(ws, "build", "lib."+plat)
	switch {
	case layout.Inplace:
		artifactDir = ws
	case layout.BuildLib != "":
		artifactDir = absUnder(ws, layout.BuildLib)
	}

	return &PathSet{
		Workspace:   ws,
		HostInclude: filepath.Join(host, "include"),
		HostLib:     filepath.Join(filepath.Dir(host), filepath.Base(host)+".libs"),
		BuildDir:    buildDir,
		ArtifactDir: artifactDir,
	}, nil
}

// CheckHost verifies that both host directories are present.
func (ps *PathSet) CheckHost() error {
	for _, dir := range []struct{ what, path string }{
		{"include", ps.HostInclude},
		{"library", ps.HostLib},
	} {
		info, err := os.Stat(dir.path)
		if err != nil {
			return fmt.Errorf("%w: failed to locate host %s directory %s: %w", ErrMissingHostArtifact, dir.what, dir.path, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("%w: host %s path %s is not a directory", ErrMissingHostArtifact, dir.what, dir.path)
		}
		if err := readable(dir.path); err != nil {
			return fmt.Errorf("%w: host %s directory %s is not readable: %w", ErrMissingHostArtifact, dir.what, dir.path, err)
		}
	}
	return nil
}

// Ensure creates the build and artifact directories. Existing directories
// are left alone.
func (ps *PathSet) Ensure() error {
	for _, dir := range []string{ps.BuildDir, ps.ArtifactDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%w: %w", ErrWorkspaceSetup, err)
		}
	}
	return nil
}

func absUnder(base, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(base, p)
}
