package cookies

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ytget/ytdl-server/internal/platform"
)

// Bootstrap file constants
const (
	DeployMarkerSuffix = ".deploy"
	JarFilePermissions = 0600
)

// Materialize writes inline cookie content to path when the file is absent or
// when deployID differs from the one recorded by the previous write. It
// returns whether the file was written. Running it twice with the same inputs
// writes at most once.
func Materialize(path, content, deployID string) (bool, error) {
	if strings.TrimSpace(path) == "" || strings.TrimSpace(content) == "" {
		return false, nil
	}

	marker := path + DeployMarkerSuffix
	if platform.FileExists(path) {
		if deployID == "" {
			return false, nil
		}
		previous, err := os.ReadFile(marker)
		if err == nil && strings.TrimSpace(string(previous)) == deployID {
			return false, nil
		}
	}

	if err := writeFileAtomic(path, []byte(content)); err != nil {
		return false, err
	}
	if deployID != "" {
		if err := writeFileAtomic(marker, []byte(deployID+"\n")); err != nil {
			return true, fmt.Errorf("failed to record deploy marker: %w", err)
		}
	}
	return true, nil
}

// writeFileAtomic replaces path with data through a temp file in the same directory
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := platform.CreateDirectoryIfNotExists(dir); err != nil {
		return fmt.Errorf("failed to create cookie directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := tmp.Chmod(JarFilePermissions); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to move %s into place: %w", path, err)
	}
	return nil
}
