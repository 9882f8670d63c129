package paths

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// hostInstall creates <root>/site/sapien with the requested host directories
// and returns the package root.
func hostInstall(t *testing.T, include, libs bool) string {
	t.Helper()
	site := filepath.Join(t.TempDir(), "site")
	pkg := filepath.Join(site, "sapien")
	if err := os.MkdirAll(pkg, 0o755); err != nil {
		t.Fatal(err)
	}
	if include {
		if err := os.MkdirAll(filepath.Join(pkg, "include"), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	if libs {
		if err := os.MkdirAll(filepath.Join(site, "sapien.libs"), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	return pkg
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func TestResolveCreatesWorkspace(t *testing.T) {
	host := hostInstall(t, true, true)
	ws := t.TempDir()

	ps, err := Resolve(ws, host, Layout{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	plat := runtime.GOOS + "-" + runtime.GOARCH
	if want := filepath.Join(ws, "build", "temp."+plat); ps.BuildDir != want {
		t.Errorf("BuildDir = %q, want %q", ps.BuildDir, want)
	}
	if want := filepath.Join(ws, "build", "lib."+plat); ps.ArtifactDir != want {
		t.Errorf("ArtifactDir = %q, want %q", ps.ArtifactDir, want)
	}
	if want := filepath.Join(host, "include"); ps.HostInclude != want {
		t.Errorf("HostInclude = %q, want %q", ps.HostInclude, want)
	}
	if want := filepath.Join(filepath.Dir(host), "sapien.libs"); ps.HostLib != want {
		t.Errorf("HostLib = %q, want %q", ps.HostLib, want)
	}
	for _, dir := range []string{ps.BuildDir, ps.ArtifactDir} {
		if !isDir(dir) {
			t.Errorf("%s was not created", dir)
		}
	}

	// A second resolve over existing directories succeeds.
	if _, err := Resolve(ws, host, Layout{}); err != nil {
		t.Errorf("second Resolve: %v", err)
	}
}

func TestResolveMissingHostArtifact(t *testing.T) {
	tests := []struct {
		name          string
		include, libs bool
	}{
		{"no include", false, true},
		{"no libs", true, false},
		{"neither", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host := hostInstall(t, tt.include, tt.libs)
			ws := t.TempDir()
			_, err := Resolve(ws, host, Layout{})
			if !errors.Is(err, ErrMissingHostArtifact) {
				t.Fatalf("err = %v, want ErrMissingHostArtifact", err)
			}
			if isDir(filepath.Join(ws, "build")) {
				t.Error("workspace directories created despite missing host artifact")
			}
		})
	}
}

func TestResolveHostPathIsFile(t *testing.T) {
	host := hostInstall(t, false, true)
	if err := os.WriteFile(filepath.Join(host, "include"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Resolve(t.TempDir(), host, Layout{})
	if !errors.Is(err, ErrMissingHostArtifact) {
		t.Fatalf("err = %v, want ErrMissingHostArtifact", err)
	}
}

func TestResolveWorkspaceSetupError(t *testing.T) {
	host := hostInstall(t, true, true)
	ws := t.TempDir()
	// A regular file where the build tree should go makes MkdirAll fail.
	if err := os.WriteFile(filepath.Join(ws, "build"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Resolve(ws, host, Layout{})
	if !errors.Is(err, ErrWorkspaceSetup) {
		t.Fatalf("err = %v, want ErrWorkspaceSetup", err)
	}
}

func TestComputeLayout(t *testing.T) {
	ws := filepath.Join(string(filepath.Separator), "ws")
	host := filepath.Join(string(filepath.Separator), "site", "sapien")
	abs := filepath.Join(string(filepath.Separator), "out", "lib")

	tests := []struct {
		name         string
		layout       Layout
		wantBuild    string
		wantArtifact string
	}{
		{
			name:         "relative overrides",
			layout:       Layout{BuildTemp: "tmp", BuildLib: "lib"},
			wantBuild:    filepath.Join(ws, "tmp"),
			wantArtifact: filepath.Join(ws, "lib"),
		},
		{
			name:         "absolute lib",
			layout:       Layout{BuildLib: abs},
			wantArtifact: abs,
		},
		{
			name:         "inplace wins over build lib",
			layout:       Layout{BuildLib: "lib", Inplace: true},
			wantArtifact: ws,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ps, err := Compute(ws, host, tt.layout)
			if err != nil {
				t.Fatal(err)
			}
			if tt.wantBuild != "" && ps.BuildDir != tt.wantBuild {
				t.Errorf("BuildDir = %q, want %q", ps.BuildDir, tt.wantBuild)
			}
			if ps.ArtifactDir != tt.wantArtifact {
				t.Errorf("ArtifactDir = %q, want %q", ps.ArtifactDir, tt.wantArtifact)
			}
		})
	}
}

func TestComputeRelativeWorkspace(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	ps, err := Compute(".", "host/sapien", Layout{})
	if err != nil {
		t.Fatal(err)
	}
	if ps.Workspace != wd {
		t.Errorf("Workspace = %q, want %q", ps.Workspace, wd)
	}
	if want := filepath.Join(wd, "host", "sapien.libs"); ps.HostLib != want {
		t.Errorf("HostLib = %q, want %q", ps.HostLib, want)
	}
}
