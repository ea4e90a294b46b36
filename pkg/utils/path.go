package utils

import (
	"fmt"
	"os"
	"path/filepath"

	coreconfig "github.com/l0lsec/PodInsights/core/config"
)

// GetImageStoragePath returns the directory where uploaded images live,
// creating it on first use.
func GetImageStoragePath() string {
	path := filepath.Join(coreconfig.Global.Paths.Statics, "images")
	_ = os.MkdirAll(path, 0755)
	return path
}

// GetAudioCachePath returns the scratch directory for downloaded episode
// audio awaiting transcription.
func GetAudioCachePath() string {
	path := filepath.Join(coreconfig.Global.Paths.Statics, "cache", "audio")
	_ = os.MkdirAll(path, 0755)
	return path
}

// EnsureStorageDirectories creates the base storage layout at startup.
func EnsureStorageDirectories() error {
	dirs := []string{
		filepath.Join(coreconfig.Global.Paths.Statics, "images"),
		filepath.Join(coreconfig.Global.Paths.Statics, "cache", "audio"),
	}

	for _, d := range dirs {
		if err := os.MkdirAll(d, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", d, err)
		}
	}
	return nil
}
