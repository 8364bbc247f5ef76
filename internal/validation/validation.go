// Package validation checks user-supplied paths and formats before work starts.
package validation

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"fjacquet/stock-categorizer/internal/imagefile"
)

// IsValidImagePath checks that path is an existing regular file with one of
// the accepted image extensions.
func IsValidImagePath(path string, exts []string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("path does not exist: %s", path)
	}
	if err != nil {
		return fmt.Errorf("error checking path %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("path %s is not a regular file", path)
	}
	if !imagefile.HasAcceptedExtension(path, exts) {
		return fmt.Errorf("unsupported image type: %s", filepath.Ext(path))
	}
	return nil
}

// IsValidOutputFormat checks if the report format selected by path's
// extension is supported.
func IsValidOutputFormat(path string) error {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv", ".json", ".txt", "":
		return nil
	default:
		return fmt.Errorf("unsupported output format: %s. Supported formats are '.csv', '.json'", ext)
	}
}

// IsValidFilePermissions checks that a secrets file is not readable by
// others.
func IsValidFilePermissions(mode os.FileMode) error {
	if mode&0007 != 0 {
		return fmt.Errorf("file permissions are too permissive: %s. Recommended 0600", mode.String())
	}
	return nil
}
