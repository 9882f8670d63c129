// Package abi translates the ABI facts reported by an installed host library
// into the compiler flags an extension must be built with to link against it.
package abi

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	// MinTag and MaxTag bound the ABI tags a host may report.
	MinTag = 1000
	MaxTag = 9999

	// tagOffset maps the host's four-digit tag onto -fabi-version.
	tagOffset = 1000
)

// ErrInvalidABITag is returned when the host reports a tag outside [MinTag, MaxTag].
var ErrInvalidABITag = errors.New("invalid ABI tag")

// Facts are the ABI parameters a host library was compiled with.
type Facts struct {
	// Tag is the host's flat ABI tag, e.g. 1017.
	Tag int `toml:"abi_version"`
	// SmartHolder reports whether the binding layer uses the smart holder
	// as its default ownership model.
	SmartHolder bool `toml:"smart_holder"`
	// CXX11ABI reports whether the host was compiled with the new libstdc++
	// dual ABI enabled.
	CXX11ABI bool `toml:"cxx11_abi"`
}

// Validate checks that the tag lies in the supported window.
func (f Facts) Validate() error {
	if f.Tag < MinTag || f.Tag > MaxTag {
		return fmt.Errorf("%w: %d not in [%d, %d]", ErrInvalidABITag, f.Tag, MinTag, MaxTag)
	}
	return nil
}

// CompilerABIVersion returns the value for -fabi-version.
func (f Facts) CompilerABIVersion() int {
	return f.Tag - tagOffset
}

// Kind identifies a translated flag.
type Kind int

const (
	ABIVersion Kind = iota
	CXX11ABI
	SmartHolder
)

func (k Kind) String() string {
	switch k {
	case ABIVersion:
		return "compiler-abi-version"
	case CXX11ABI:
		return "dual-abi-stdlib"
	case SmartHolder:
		return "smart-holder"
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Flag is a single compiler flag.
type Flag struct {
	Kind  Kind
	Value string
}

// String returns the flag as the compiler spells it.
func (f Flag) String() string {
	switch f.Kind {
	case ABIVersion:
		return "-fabi-version=" + f.Value
	case CXX11ABI:
		return "-D_GLIBCXX_USE_CXX11_ABI=" + f.Value
	case SmartHolder:
		return "-DPYBIND11_USE_SMART_HOLDER_AS_DEFAULT"
	}
	return ""
}

// FlagSet is the ordered list of flags produced by Translate.
type FlagSet []Flag

// Strings returns the compiler spelling of every flag, in order.
func (s FlagSet) Strings() []string {
	out := make([]string, 0, len(s))
	for _, f := range s {
		out = append(out, f.String())
	}
	return out
}

// CXXFlags joins the flags into a single CMAKE_CXX_FLAGS value.
func (s FlagSet) CXXFlags() string {
	return strings.Join(s.Strings(), " ")
}

// Lookup returns the first flag of the given kind.
func (s FlagSet) Lookup(kind Kind) (Flag, bool) {
	for _, f := range s {
		if f.Kind == kind {
			return f, true
		}
	}
	return Flag{}, false
}

// Count returns how many flags of the given kind the set holds.
func (s FlagSet) Count(kind Kind) int {
	n := 0
	for _, f := range s {
		if f.Kind == kind {
			n++
		}
	}
	return n
}

// Translate maps host facts onto compiler flags.
//
// The ABI version and dual-ABI flags are always present, in that order.
// The smart holder define follows only when the host opted into it; the
// binding layer otherwise uses its default holder and forcing the define
// would break hosts built without it.
func Translate(facts Facts) (FlagSet, error) {
	if err := facts.Validate(); err != nil {
		return nil, err
	}
	cxx11 := "0"
	if facts.CXX11ABI {
		cxx11 = "1"
	}
	flags := FlagSet{
		{Kind: ABIVersion, Value: strconv.Itoa(facts.CompilerABIVersion())},
		{Kind: CXX11ABI, Value: cxx11},
	}
	if facts.SmartHolder {
		flags = append(flags, Flag{Kind: SmartHolder})
	}
	return flags, nil
}
