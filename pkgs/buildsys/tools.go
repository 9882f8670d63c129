package buildsys

import (
	"fmt"
	"os/exec"
	"strings"
)

// Tool is an external program a build system needs on PATH.
type Tool struct {
	Name     string
	Purpose  string
	Optional bool
}

// ToolChecker is implemented by build systems that can list their tools.
type ToolChecker interface {
	RequiredTools() []Tool
}

// LookTool reports the resolved path of a tool.
func LookTool(name string) (string, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("%s not found in PATH", name)
	}
	return path, nil
}

// CheckTools returns an error naming every missing required tool.
func CheckTools(tools []Tool) error {
	var missing []string
	for _, t := range tools {
		if t.Optional {
			continue
		}
		if _, err := LookTool(t.Name); err != nil {
			missing = append(missing, fmt.Sprintf("%s (%s)", t.Name, t.Purpose))
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required tools: %s", strings.Join(missing, ", "))
	}
	return nil
}
