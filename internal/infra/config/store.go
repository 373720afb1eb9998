package config

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/juju/errors"
)

const appDirName = "optitech"

var (
	goos        = runtime.GOOS
	userHomeDir = os.UserHomeDir
)

// Paths is the on-disk layout under the data directory.
type Paths struct {
	Root string
}

// ResolvePaths picks the data directory: OPTITECH_HOME, then
// %LOCALAPPDATA%\OptiTech on Windows, then $XDG_DATA_HOME/optitech or
// ~/.local/share/optitech.
func ResolvePaths() (Paths, error) {
	if root := os.Getenv("OPTITECH_HOME"); root != "" {
		return Paths{Root: filepath.Clean(root)}, nil
	}
	if goos == "windows" {
		if local := os.Getenv("LOCALAPPDATA"); local != "" {
			return Paths{Root: filepath.Join(local, "OptiTech")}, nil
		}
	}
	if data := os.Getenv("XDG_DATA_HOME"); data != "" {
		return Paths{Root: filepath.Join(data, appDirName)}, nil
	}
	home, err := userHomeDir()
	if err != nil {
		return Paths{}, errors.Annotate(err, "resolve data directory")
	}
	return Paths{Root: filepath.Join(home, ".local", "share", appDirName)}, nil
}

func (p Paths) Logs() string         { return filepath.Join(p.Root, "logs") }
func (p Paths) Backups() string      { return filepath.Join(p.Root, "backups") }
func (p Paths) Reports() string      { return filepath.Join(p.Root, "reports") }
func (p Paths) AppLog() string       { return filepath.Join(p.Logs(), "app.log") }
func (p Paths) OperationLog() string { return filepath.Join(p.Root, "operations.log") }
func (p Paths) EnvFile() string      { return filepath.Join(p.Root, "optitech.env") }

// DefaultLedger is the rollback snapshot shared by optimize and restore.
func (p Paths) DefaultLedger() string {
	return filepath.Join(p.Backups(), "service_ledger.json")
}

// Ensure creates the data directory and its subdirectories.
func (p Paths) Ensure() error {
	for _, dir := range []string{p.Root, p.Logs(), p.Backups(), p.Reports()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Annotatef(err, "create %s", dir)
		}
	}
	return nil
}
