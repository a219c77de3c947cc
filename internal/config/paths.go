// ABOUTME: Standard filesystem paths for osrsdex configuration and data
// ABOUTME: Resolves ~/.osrsdex/ for global and .osrsdex/ for project-local paths

package config

import (
	"os"
	"path/filepath"
)

const (
	globalDirName  = ".osrsdex"
	projectDirName = ".osrsdex"
)

// GlobalDir returns the user-global config directory (~/.osrsdex/).
func GlobalDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", globalDirName)
	}
	return filepath.Join(home, globalDirName)
}

// ProjectDir returns the project-local config directory (.osrsdex/ in cwd).
func ProjectDir(projectRoot string) string {
	return filepath.Join(projectRoot, projectDirName)
}

// GlobalConfigFile returns the path to the global config file.
func GlobalConfigFile() string {
	return filepath.Join(GlobalDir(), "config.json")
}

// ProjectConfigFile returns the path to the project-local config file.
func ProjectConfigFile(projectRoot string) string {
	return filepath.Join(ProjectDir(projectRoot), "config.json")
}

// DefaultDataDir returns the default directory for reference data files
// and the monster snapshot.
func DefaultDataDir() string {
	return filepath.Join(GlobalDir(), "data")
}

// EnsureDir creates a directory and all parents if they don't exist.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0o755)
}
