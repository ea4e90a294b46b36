package utils

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// LoadConfig loads a .env file from the given path when one exists.
// Missing files are fine; real deployments configure via environment.
func LoadConfig(path string) {
	envFile := filepath.Join(path, ".env")
	if _, err := os.Stat(envFile); err != nil {
		return
	}
	if err := godotenv.Load(envFile); err != nil {
		logrus.WithError(err).Warn("[CONFIG] Failed to load .env file")
	}
}

// CreateFolder creates every given directory, parents included.
func CreateFolder(folders ...string) error {
	for _, folder := range folders {
		if folder == "" {
			continue
		}
		if err := os.MkdirAll(folder, 0755); err != nil {
			return err
		}
	}
	return nil
}

// RemoveFile deletes a file and ignores the case where it is already gone.
func RemoveFile(path string) error {
	err := os.Remove(path)
	if err != nil && os.IsNotExist(err) {
		return nil
	}
	return err
}
