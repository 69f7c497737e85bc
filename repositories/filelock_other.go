//go:build !unix && !windows

package repositories

import "os"

// Platforms without advisory locks rely on O_APPEND writes alone.
func lockFile(f *os.File, exclusive bool) error { return nil }

func unlockFile(f *os.File) error { return nil }
