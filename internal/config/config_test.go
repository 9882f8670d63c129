package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, path, err := Load(LoadOptions{Workspace: t.TempDir()})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if path != "" {
		t.Errorf("path = %q, want empty", path)
	}
	d := Default()
	if cfg.Project != d.Project || cfg.Host != d.Host || cfg.Build.Jobs != d.Build.Jobs {
		t.Errorf("Load = %+v, want defaults %+v", cfg, d)
	}
}

func TestLoadWorkspaceFile(t *testing.T) {
	ws := t.TempDir()
	writeFile(t, filepath.Join(ws, FileName), `
[project]
extension = "my_ext"
target = "my_target"

[host]
min_version = "3.0"
facts_file = "facts.toml"

[build]
jobs = 8
inplace = true

[build.env]
CC = "clang"
`)
	cfg, path, err := Load(LoadOptions{Workspace: ws})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if path != filepath.Join(ws, FileName) {
		t.Errorf("path = %q", path)
	}
	if cfg.Project.Extension != "my_ext" || cfg.Project.Target != "my_target" {
		t.Errorf("Project = %+v", cfg.Project)
	}
	if cfg.Project.Name != "sapien_render_server" {
		t.Errorf("Project.Name = %q, want default", cfg.Project.Name)
	}
	if cfg.Build.Jobs != 8 || !cfg.Build.Inplace {
		t.Errorf("Build = %+v", cfg.Build)
	}
	if got := cfg.Build.Env["CC"]; got != "clang" {
		t.Errorf("Build.Env = %v", cfg.Build.Env)
	}
	if want := filepath.Join(ws, "facts.toml"); cfg.Host.FactsFile != want {
		t.Errorf("FactsFile = %q, want %q", cfg.Host.FactsFile, want)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	ws := t.TempDir()
	writeFile(t, filepath.Join(ws, FileName), "[build]\njobs = 8\n")
	t.Setenv("EXTBUILD_BUILD_JOBS", "2")
	t.Setenv("EXTBUILD_HOST_INTERPRETER", "/usr/bin/python3.11")

	cfg, _, err := Load(LoadOptions{Workspace: ws})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Build.Jobs != 2 {
		t.Errorf("Jobs = %d, want 2", cfg.Build.Jobs)
	}
	if cfg.Host.Interpreter != "/usr/bin/python3.11" {
		t.Errorf("Interpreter = %q", cfg.Host.Interpreter)
	}
}

func TestLoadExplicitFile(t *testing.T) {
	dir := t.TempDir()
	if _, _, err := Load(LoadOptions{ConfigFile: filepath.Join(dir, "missing.toml")}); err == nil {
		t.Error("Load with missing explicit file succeeded")
	}

	path := filepath.Join(dir, "custom.toml")
	writeFile(t, path, "[project]\ntarget = \"other\"\n")
	cfg, got, err := Load(LoadOptions{Workspace: t.TempDir(), ConfigFile: path})
	if err != nil {
		t.Fatal(err)
	}
	if got != path || cfg.Project.Target != "other" {
		t.Errorf("Load = %q %+v", got, cfg.Project)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"zero jobs", "[build]\njobs = 0\n", "build.jobs"},
		{"empty target", "[project]\ntarget = \"\"\n", "project.target"},
		{"bad min version", "[host]\nmin_version = \"latest\"\n", "host.min_version"},
		{"bad toml", "[build\n", "failed to read"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ws := t.TempDir()
			writeFile(t, filepath.Join(ws, FileName), tt.data)
			_, _, err := Load(LoadOptions{Workspace: ws})
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestCheckHostVersion(t *testing.T) {
	tests := []struct {
		min     string
		version string
		ok      bool
	}{
		{"", "", true},
		{"", "anything", true},
		{"3.0", "3.0.0", true},
		{"3.0", "3.1.2", true},
		{"3.0", "2.2.2", false},
		{"3.0.1", "3.0.1.dev20240101", true},
		{"3.0.1", "3.0.0rc1", false},
		{"3.0", "", false},
		{"3.0", "unknown", false},
		{"2.2", "2.2.2.2", true},
	}
	for _, tt := range tests {
		t.Run(tt.min+"/"+tt.version, func(t *testing.T) {
			cfg := Default()
			cfg.Host.MinVersion = tt.min
			err := cfg.CheckHostVersion(tt.version)
			if tt.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrHostVersion) {
				t.Errorf("err = %v, want ErrHostVersion", err)
			}
		})
	}
}

func TestWrite(t *testing.T) {
	ws := t.TempDir()
	path := filepath.Join(ws, FileName)
	cfg := Default()
	cfg.Build.Jobs = 6
	if err := Write(path, cfg); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := Write(path, cfg); err == nil {
		t.Error("Write overwrote an existing file")
	}

	got, _, err := Load(LoadOptions{Workspace: ws})
	if err != nil {
		t.Fatalf("Load written config: %v", err)
	}
	if got.Build.Jobs != 6 || got.Project != cfg.Project {
		t.Errorf("Load = %+v, want %+v", got, cfg)
	}
}
