package build

import (
	"fmt"
	"path/filepath"
	"sort"
)

// artifactPatterns are the file names an extension module may be built as:
// plain or tagged with the interpreter's ABI suffix.
var artifactPatterns = []string{
	"%s.so", "%s.*.so",
	"%s.pyd", "%s.*.pyd",
	"%s.dylib",
}

// findArtifacts lists extension files named after ext in dir.
func findArtifacts(dir, ext string) ([]string, error) {
	if ext == "" {
		return nil, nil
	}
	seen := make(map[string]bool)
	var found []string
	for _, pattern := range artifactPatterns {
		matches, err := filepath.Glob(filepath.Join(dir, fmt.Sprintf(pattern, ext)))
		if err != nil {
			return nil, fmt.Errorf("failed to glob artifacts in %s: %w", dir, err)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				found = append(found, m)
			}
		}
	}
	sort.Strings(found)
	return found, nil
}
