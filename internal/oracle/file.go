package oracle

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// File is an Oracle backed by a TOML facts file, for builds on machines
// where the host cannot be imported.
//
//	root = "/usr/lib/python3/site-packages/sapien"
//	version = "3.0.0"
//
//	[facts]
//	abi_version = 1017
//	cxx11_abi = true
//	smart_holder = false
//
// A relative root is taken relative to the file's directory.
type File struct {
	Path string
}

// Query parses the facts file.
func (f File) Query(ctx context.Context) (*Report, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOracleUnavailable, err)
	}
	return ParseReport(f.Path, data)
}

// ParseReport decodes a facts file read from path.
func ParseReport(path string, data []byte) (*Report, error) {
	var r Report
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&r); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %w", ErrOracleUnavailable, path, err)
	}
	if r.Root == "" {
		return nil, fmt.Errorf("%w: %s: root not set", ErrOracleUnavailable, path)
	}
	if !filepath.IsAbs(r.Root) {
		r.Root = filepath.Join(filepath.Dir(path), r.Root)
	}
	return &r, nil
}

// EncodeReport renders r in facts file form.
func EncodeReport(r *Report) ([]byte, error) {
	return toml.Marshal(r)
}
