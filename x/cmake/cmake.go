// Package cmake wraps the cmake configure/build workflow.
package cmake

import (
	"strconv"

	"github.com/goplus/extbuild/pkgs/buildsys"
)

type define struct {
	key   string
	value string
}

// CMake describes a CMake-based build as a pair of commands.
type CMake struct {
	sourceDir string
	buildDir  string
	generator string
	buildType string
	target    string
	jobs      int
	defines   []define
}

var (
	_ buildsys.BuildSystem = (*CMake)(nil)
	_ buildsys.ToolChecker = (*CMake)(nil)
)

// New returns a CMake configuring sourceDir into buildDir. An empty buildDir
// means the current working directory.
func New(sourceDir, buildDir string) *CMake {
	return &CMake{sourceDir: sourceDir, buildDir: buildDir}
}

// Generator sets the CMake generator (e.g. "Ninja", "Unix Makefiles").
func (c *CMake) Generator(name string) { c.generator = name }

// BuildType sets CMAKE_BUILD_TYPE and the --config of the build step.
func (c *CMake) BuildType(name string) {
	c.buildType = name
	c.Define("CMAKE_BUILD_TYPE", name)
}

// Target restricts the build step to a single target.
func (c *CMake) Target(name string) { c.target = name }

// Jobs sets the job count passed through to the native build tool.
func (c *CMake) Jobs(n int) { c.jobs = n }

// Define adds a -D<key>=<value> definition. Definitions keep the order of
// their first Define; redefining a key replaces its value in place.
func (c *CMake) Define(key, value string) {
	c.set(define{key: key, value: value})
}

// DefineBool adds a -D<key>=ON/OFF definition.
func (c *CMake) DefineBool(key string, value bool) {
	v := "OFF"
	if value {
		v = "ON"
	}
	c.set(define{key: key, value: v})
}

func (c *CMake) set(d define) {
	for i := range c.defines {
		if c.defines[i].key == d.key {
			c.defines[i] = d
			return
		}
	}
	c.defines = append(c.defines, d)
}

// ConfigureCommand returns "cmake <source> <defines>" when building in the
// working directory, "cmake -S <source> -B <build> <defines>" otherwise.
func (c *CMake) ConfigureCommand() buildsys.Command {
	var args []string
	if c.buildDir == "" || c.buildDir == "." {
		args = append(args, c.sourceDir)
	} else {
		args = append(args, "-S", c.sourceDir, "-B", c.buildDir)
	}
	if c.generator != "" {
		args = append(args, "-G", c.generator)
	}
	args = append(args, c.definesArgs()...)
	return buildsys.Command{Name: "cmake", Args: args}
}

// BuildCommand returns "cmake --build <build> [--config] [--target] [-- -j<n>]".
func (c *CMake) BuildCommand() buildsys.Command {
	buildDir := c.buildDir
	if buildDir == "" {
		buildDir = "."
	}
	args := []string{"--build", buildDir}
	if c.buildType != "" {
		args = append(args, "--config", c.buildType)
	}
	if c.target != "" {
		args = append(args, "--target", c.target)
	}
	if c.jobs > 0 {
		args = append(args, "--", "-j"+strconv.Itoa(c.jobs))
	}
	return buildsys.Command{Name: "cmake", Args: args}
}

func (c *CMake) definesArgs() []string {
	if len(c.defines) == 0 {
		return nil
	}
	args := make([]string, 0, len(c.defines))
	for _, d := range c.defines {
		args = append(args, "-D"+d.key+"="+d.value)
	}
	return args
}

// RequiredTools lists cmake and, for generators that drive it, the native
// build tool.
func (c *CMake) RequiredTools() []buildsys.Tool {
	tools := []buildsys.Tool{{Name: "cmake", Purpose: "CMake build system"}}
	switch c.generator {
	case "Ninja", "Ninja Multi-Config":
		tools = append(tools, buildsys.Tool{Name: "ninja", Purpose: "Ninja build tool"})
	case "", "Unix Makefiles":
		tools = append(tools, buildsys.Tool{Name: "make", Purpose: "native build tool", Optional: true})
	}
	return tools
}
