package abi

import (
	"errors"
	"reflect"
	"strconv"
	"testing"
)

func TestTranslateABIVersion(t *testing.T) {
	for _, tag := range []int{1000, 1001, 1007, 2500, 5000, 9998, 9999} {
		t.Run(strconv.Itoa(tag), func(t *testing.T) {
			flags, err := Translate(Facts{Tag: tag})
			if err != nil {
				t.Fatalf("Translate(%d) error: %v", tag, err)
			}
			f, ok := flags.Lookup(ABIVersion)
			if !ok {
				t.Fatalf("no ABI version flag in %v", flags.Strings())
			}
			if want := strconv.Itoa(tag - 1000); f.Value != want {
				t.Errorf("ABI version = %q, want %q", f.Value, want)
			}
		})
	}
}

func TestTranslateInvalidTag(t *testing.T) {
	for _, tag := range []int{-1, 0, 999, 10000, 123456} {
		t.Run(strconv.Itoa(tag), func(t *testing.T) {
			flags, err := Translate(Facts{Tag: tag, CXX11ABI: true, SmartHolder: true})
			if !errors.Is(err, ErrInvalidABITag) {
				t.Fatalf("Translate(%d) err = %v, want ErrInvalidABITag", tag, err)
			}
			if flags != nil {
				t.Errorf("Translate(%d) flags = %v, want nil", tag, flags)
			}
		})
	}
}

func TestTranslateDeterministic(t *testing.T) {
	facts := Facts{Tag: 1234, SmartHolder: true, CXX11ABI: true}
	first, err := Translate(facts)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10; i++ {
		got, err := Translate(facts)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d: %v, want %v", i, got.Strings(), first.Strings())
		}
	}
}

func TestTranslateSmartHolder(t *testing.T) {
	off, err := Translate(Facts{Tag: 1100})
	if err != nil {
		t.Fatal(err)
	}
	if n := off.Count(SmartHolder); n != 0 {
		t.Errorf("smart holder off: %d holder flags, want 0", n)
	}

	on, err := Translate(Facts{Tag: 1100, SmartHolder: true})
	if err != nil {
		t.Fatal(err)
	}
	again, _ := Translate(Facts{Tag: 1100, SmartHolder: true})
	if n := on.Count(SmartHolder); n != 1 {
		t.Errorf("smart holder on: %d holder flags, want 1", n)
	}
	if n := again.Count(SmartHolder); n != 1 {
		t.Errorf("repeated translation: %d holder flags, want 1", n)
	}
}

func TestTranslateScenarios(t *testing.T) {
	tests := []struct {
		name  string
		facts Facts
		want  []string
	}{
		{
			name:  "dual abi without holder",
			facts: Facts{Tag: 1007, SmartHolder: false, CXX11ABI: true},
			want:  []string{"-fabi-version=7", "-D_GLIBCXX_USE_CXX11_ABI=1"},
		},
		{
			name:  "holder without dual abi",
			facts: Facts{Tag: 2500, SmartHolder: true, CXX11ABI: false},
			want: []string{
				"-fabi-version=1500",
				"-D_GLIBCXX_USE_CXX11_ABI=0",
				"-DPYBIND11_USE_SMART_HOLDER_AS_DEFAULT",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flags, err := Translate(tt.facts)
			if err != nil {
				t.Fatal(err)
			}
			if got := flags.Strings(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("flags = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCXXFlags(t *testing.T) {
	flags, err := Translate(Facts{Tag: 1017, SmartHolder: true, CXX11ABI: true})
	if err != nil {
		t.Fatal(err)
	}
	want := "-fabi-version=17 -D_GLIBCXX_USE_CXX11_ABI=1 -DPYBIND11_USE_SMART_HOLDER_AS_DEFAULT"
	if got := flags.CXXFlags(); got != want {
		t.Errorf("CXXFlags = %q, want %q", got, want)
	}
}

func TestKindString(t *testing.T) {
	if got := CXX11ABI.String(); got != "dual-abi-stdlib" {
		t.Errorf("CXX11ABI.String() = %q", got)
	}
	if got := Kind(42).String(); got != "Kind(42)" {
		t.Errorf("Kind(42).String() = %q", got)
	}
}
