package env

import (
	"os"
	"path/filepath"
)

var Daemon bool = false
var ListenPort int = 0
var Version string = ""

// (default: %USERPROFILE%/.workshop on Windows, $HOME/.workshop on Linux)
var WorkshopDir string = GetWorkshopDir()

/**
 * Get workshop directory path
 * @returns {string} Returns workshop directory path
 */
func GetWorkshopDir() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".workshop")
}

/**
 * Get virtual environment root
 * @returns {string} Returns the venv root, honoring the WORKSHOP_VENV override
 */
func GetVenvDir() string {
	if dir := os.Getenv("WORKSHOP_VENV"); dir != "" {
		return dir
	}
	return filepath.Join(WorkshopDir, "venv")
}
