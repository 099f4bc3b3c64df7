package infra

import (
	"os"
	"path/filepath"
	"runtime"
)

const AppName = "daytrade-go"

// GetWorkspaceDir returns the root directory for runtime data.
// A local "_workspace" directory takes priority (portable/dev mode);
// otherwise the OS-standard data directory is used.
func GetWorkspaceDir() string {
	localDir := "_workspace"
	if _, err := os.Stat(localDir); err == nil {
		return localDir
	}

	var baseDir string
	switch runtime.GOOS {
	case "windows":
		baseDir = os.Getenv("APPDATA")
		if baseDir == "" {
			baseDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, _ := os.UserHomeDir()
		baseDir = filepath.Join(home, "Library", "Application Support")
	default:
		baseDir = os.Getenv("XDG_DATA_HOME")
		if baseDir == "" {
			home, _ := os.UserHomeDir()
			baseDir = filepath.Join(home, ".local", "share")
		}
	}
	return filepath.Join(baseDir, AppName)
}

// ResolveConfigPath locates config.yaml: an explicit DAYTRADE_CONFIG
// wins, then a file next to the binary, then the workspace dir.
func ResolveConfigPath() string {
	if p := os.Getenv("DAYTRADE_CONFIG"); p != "" {
		return p
	}
	if _, err := os.Stat("config.yaml"); err == nil {
		return "config.yaml"
	}
	return filepath.Join(GetWorkspaceDir(), "config.yaml")
}

// EnsureDir creates a directory (and parents) if missing.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0o755)
}
