// Package env manages the process-wide state a build borrows while it runs:
// the current working directory and the environment handed to tools.
package env

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
)

// ErrBusy is returned by Chdir while another caller holds the working directory.
var ErrBusy = errors.New("working directory is held by another build")

var cwdMu sync.Mutex

// Chdir makes dir the process working directory until restore is called.
// Only one holder is allowed at a time; restore returns to the directory
// that was current before Chdir and releases the hold. restore is safe to
// call more than once.
func Chdir(dir string) (restore func() error, err error) {
	if !cwdMu.TryLock() {
		return nil, ErrBusy
	}
	orig, err := os.Getwd()
	if err != nil {
		cwdMu.Unlock()
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	if err := os.Chdir(dir); err != nil {
		cwdMu.Unlock()
		return nil, err
	}

	var once sync.Once
	var restoreErr error
	restore = func() error {
		once.Do(func() {
			defer cwdMu.Unlock()
			if err := os.Chdir(orig); err != nil {
				restoreErr = fmt.Errorf("failed to restore working directory %s: %w", orig, err)
			}
		})
		return restoreErr
	}
	return restore, nil
}

// Merge overlays override onto a KEY=VALUE environment list. The result is
// sorted by key so identical inputs give identical environments.
func Merge(base []string, override map[string]string) []string {
	envMap := make(map[string]string, len(base)+len(override))
	for _, kv := range base {
		if k, v, ok := strings.Cut(kv, "="); ok {
			envMap[k] = v
		}
	}
	for k, v := range override {
		envMap[k] = v
	}
	keys := make([]string, 0, len(envMap))
	for k := range envMap {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+envMap[k])
	}
	return out
}
