// Package oracle reads the ABI facts an installed host library reports about
// its own compiled runtime.
package oracle

import (
	"context"
	"errors"

	"github.com/goplus/extbuild/internal/abi"
)

// ErrOracleUnavailable is returned when the host library cannot be located
// or does not answer the ABI queries.
var ErrOracleUnavailable = errors.New("host library oracle unavailable")

// Report is everything learned from one oracle query.
type Report struct {
	// Root is the host package installation directory.
	Root string `toml:"root"`
	// Version is the host package version, possibly empty.
	Version string `toml:"version"`
	// Facts are the host's ABI parameters.
	Facts abi.Facts `toml:"facts"`
}

// Oracle answers ABI queries for an installed host library.
type Oracle interface {
	Query(ctx context.Context) (*Report, error)
}

// Static is an Oracle returning a fixed report.
type Static struct {
	Report Report
}

// Query returns a copy of the fixed report.
func (s Static) Query(ctx context.Context) (*Report, error) {
	r := s.Report
	return &r, nil
}
