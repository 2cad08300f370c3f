package config

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

const (
	// EnvDataDir overrides the data directory.
	EnvDataDir = "PWNEYES_DIR"

	appDirName = "pwneyes"
	dbFileName = "pwneyes.db"
)

// GetDataDir resolves the base directory for the store. PWNEYES_DIR wins,
// then the XDG data home, and finally ~/.local/share.
func GetDataDir() string {
	if explicit := os.Getenv(EnvDataDir); explicit != "" {
		return explicit
	}

	xdg.Reload()

	dataHome := xdg.DataHome
	if dataHome == "" {
		home := xdg.Home
		if home == "" {
			var err error
			home, err = os.UserHomeDir()
			if err != nil {
				return filepath.Join(os.TempDir(), appDirName)
			}
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	return filepath.Join(dataHome, appDirName)
}

// GetDBPath returns the path to the SQLite database file.
func GetDBPath() string {
	return filepath.Join(GetDataDir(), dbFileName)
}

// LockPath returns the lock file guarding the database at dbPath.
func LockPath(dbPath string) string {
	return dbPath + ".lock"
}
