//go:build unix

package paths

import "golang.org/x/sys/unix"

// readable reports whether dir can be listed and entered.
func readable(dir string) error {
	return unix.Access(dir, unix.R_OK|unix.X_OK)
}
