package platform

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// File permissions
const (
	DefaultDirPermissions = 0o755
)

// Length of the random suffix appended to download filenames.
const fileSuffixLength = 8

// EnsureDir creates the directory if it does not exist.
func EnsureDir(dirPath string) error {
	if _, err := os.Stat(dirPath); os.IsNotExist(err) {
		return os.MkdirAll(dirPath, DefaultDirPermissions)
	}
	return nil
}

// TempFilePath generates a collision-free destination path inside dir for a
// user's download, combining the user id with a random suffix so concurrent
// downloads by different users never write the same file.
func TempFilePath(dir string, userID int64) string {
	suffix := uuid.NewString()
	suffix = suffix[:fileSuffixLength]
	return filepath.Join(dir, fmt.Sprintf("%d_%s.mp4", userID, suffix))
}

// Remove deletes the file at path. A missing file is not an error, so cleanup
// can be called more than once for the same path.
func Remove(path string) error {
	if path == "" {
		return nil
	}
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
