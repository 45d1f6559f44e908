package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"

	"github.com/thoreinstein/skillctx/internal/errors"
)

// AppName names the application's configuration and data directories.
const AppName = "skillctx"

// ProjectDir is the project-local corpus directory.
const ProjectDir = ".skillctx"

// ErrHomeDirNotFound indicates the user's home directory could not be determined.
var ErrHomeDirNotFound = errors.New("home directory not found")

// ResolveHome returns the user's home directory.
func ResolveHome() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(ErrHomeDirNotFound, err.Error())
	}
	return home, nil
}

// ConfigHome returns the XDG config home directory.
func ConfigHome() string {
	return xdg.ConfigHome
}

// DataHome returns the XDG data home directory.
func DataHome() string {
	return xdg.DataHome
}

// ConfigDir returns the skillctx configuration directory.
func ConfigDir() string {
	return filepath.Join(ConfigHome(), AppName)
}

// ConfigFile returns the default configuration file path.
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// DataDir returns the skillctx data directory.
func DataDir() string {
	return filepath.Join(DataHome(), AppName)
}

// DefaultCorpusDirs returns the corpus directories used when none are
// configured: the project's .skillctx directory, then the user's skills
// directory under DataDir.
func DefaultCorpusDirs() []string {
	return []string{
		ProjectDir,
		filepath.Join(DataDir(), "skills"),
	}
}

// ExpandHome replaces a leading "~" with the user's home directory.
// Other paths are returned unchanged.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") && !strings.HasPrefix(path, `~\`) {
		return path, nil
	}
	home, err := ResolveHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, path[1:]), nil
}
