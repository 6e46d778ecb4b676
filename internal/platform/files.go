package platform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// File permissions
const (
	DefaultDirPermissions = 0755
)

// Filename limits
const (
	MaxFileNameLength = 100
	FileNameFallback  = "video"
)

// ErrFileNotFound is returned when a served file cannot be resolved
var ErrFileNotFound = errors.New("file not found")

var (
	invalidFileNameChars = regexp.MustCompile(`[<>:"/\\|?*%\x00-\x1f]`)
	repeatedSpaces       = regexp.MustCompile(`\s+`)
)

// CreateDirectoryIfNotExists creates directory if it doesn't exist
func CreateDirectoryIfNotExists(dirPath string) error {
	if _, err := os.Stat(dirPath); os.IsNotExist(err) {
		return os.MkdirAll(dirPath, DefaultDirPermissions)
	}
	return nil
}

// SanitizeFileName makes a user supplied fragment safe to embed in an output
// template. Path separators and template markers are replaced, so the result
// never leaves the download directory.
func SanitizeFileName(name string) string {
	name = repeatedSpaces.ReplaceAllString(name, " ")
	name = invalidFileNameChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, " .")

	if runes := []rune(name); len(runes) > MaxFileNameLength {
		name = strings.TrimRight(string(runes[:MaxFileNameLength]), " .")
	}
	if name == "" {
		return FileNameFallback
	}
	return name
}

// CoerceExtension replaces the extension of path with ext (".mp4" style).
// A path without an extension gets ext appended.
func CoerceExtension(path, ext string) string {
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	current := filepath.Ext(path)
	if strings.EqualFold(current, ext) {
		return path
	}
	return strings.TrimSuffix(path, current) + ext
}

// FileExists returns true if path names an existing regular file
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// ResolveServedFile maps a requested filename to a regular file directly
// inside root. Traversal, nested paths, directories and special files are
// all reported as ErrFileNotFound.
func ResolveServedFile(root, name string) (string, error) {
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || filepath.IsAbs(name) {
		return "", fmt.Errorf("%w: %q", ErrFileNotFound, name)
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}
	candidate := filepath.Join(absRoot, name)

	rel, err := filepath.Rel(absRoot, candidate)
	if err != nil || rel != name {
		return "", fmt.Errorf("%w: %q", ErrFileNotFound, name)
	}

	// Lstat so a symlink planted in the directory is not followed
	info, err := os.Lstat(candidate)
	if err != nil || !info.Mode().IsRegular() {
		return "", fmt.Errorf("%w: %q", ErrFileNotFound, name)
	}
	return candidate, nil
}
