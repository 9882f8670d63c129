package oracle

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"

	"github.com/goplus/extbuild/internal/abi"
)

//go:embed probe.py
var probeScript string

const (
	DefaultInterpreter = "python3"
	DefaultPackage     = "sapien"
	DefaultBinding     = "pysapien"
)

// Probe queries a live host package by running its interpreter.
type Probe struct {
	Interpreter string // defaults to DefaultInterpreter
	Package     string // defaults to DefaultPackage
	Binding     string // binding submodule exposing the queries, defaults to DefaultBinding
}

type probeOutput struct {
	Root        string `json:"root"`
	Version     string `json:"version"`
	ABIVersion  *int   `json:"abi_version"`
	CXX11ABI    bool   `json:"cxx11_abi"`
	SmartHolder bool   `json:"smart_holder"`
}

// Query runs the probe script and decodes its report.
func (p *Probe) Query(ctx context.Context) (*Report, error) {
	interp := orDefault(p.Interpreter, DefaultInterpreter)
	pkg := orDefault(p.Package, DefaultPackage)
	binding := orDefault(p.Binding, DefaultBinding)

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, interp, "-c", probeScript, pkg, binding)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := lastLine(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%w: query %s with %s: %s", ErrOracleUnavailable, pkg, interp, msg)
		}
		return nil, fmt.Errorf("%w: query %s with %s: %w", ErrOracleUnavailable, pkg, interp, err)
	}
	return decodeProbe(pkg, stdout.Bytes())
}

func decodeProbe(pkg string, data []byte) (*Report, error) {
	var out probeOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("%w: malformed report from %s: %w", ErrOracleUnavailable, pkg, err)
	}
	if out.Root == "" || out.ABIVersion == nil {
		return nil, fmt.Errorf("%w: incomplete report from %s", ErrOracleUnavailable, pkg)
	}
	return &Report{
		Root:    out.Root,
		Version: out.Version,
		Facts: abi.Facts{
			Tag:         *out.ABIVersion,
			SmartHolder: out.SmartHolder,
			CXX11ABI:    out.CXX11ABI,
		},
	}, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// lastLine returns the last non-empty line of s; for a Python traceback
// that is the exception message.
func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
