package model

import (
	"os"
	"path/filepath"
)

// defaultCacheDir places the completion-reply cache under the user cache
// directory, falling back to a relative dir when it cannot be determined.
func defaultCacheDir() string {
	base, err := os.UserCacheDir()
	if err != nil {
		return ".veridoc-cache"
	}
	return filepath.Join(base, "veridoc")
}
