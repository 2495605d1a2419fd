package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

func defaultStoragePath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "ghexplorer")
	}
	return ".ghexplorer"
}

func isMissingFile(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
