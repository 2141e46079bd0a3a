package util

import (
	"fmt"
	"path/filepath"

	"github.com/adrg/xdg"
)

const appName = "bayesab"

// GetXDGDataDir returns the XDG data directory for bayesab,
// $XDG_DATA_HOME/bayesab or ~/.local/share/bayesab.
func GetXDGDataDir() string {
	return filepath.Join(xdg.DataHome, appName)
}

// GetXDGConfigDir returns the XDG config directory for bayesab.
func GetXDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, appName)
}

// DataFile returns the path of name inside the data directory, creating the
// directory if needed.
func DataFile(name string) (string, error) {
	path, err := xdg.DataFile(filepath.Join(appName, name))
	if err != nil {
		return "", fmt.Errorf("failed to resolve data file %s: %w", name, err)
	}
	return path, nil
}
