package sourcefile

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/halvard/dowse"
)

// nameSlot is the substitution slot each named-file template must contain
// exactly once; it is filled with the namespace's first element.
const nameSlot = "{name}"

// repoMarkers are the version control directories that identify a repository
// root and halt ancestor search.
var repoMarkers = []string{".git", ".hg", ".svn"}

// Search enumerates candidate config file paths for a tool name. It performs
// no I/O on the candidates themselves; only repository markers are probed.
// The zero value checks nothing — start from DefaultSearch.
type Search struct {
	// Manifest is a shared project manifest file name probed in every
	// searched directory. Empty disables the manifest check.
	Manifest string

	// Templates are the named-file patterns probed in every searched
	// directory, each with exactly one {name} slot.
	Templates []string

	// SearchAncestors walks from the working directory up toward the
	// filesystem root.
	SearchAncestors bool

	// StopOnRepoRoot stops the ancestor walk after the first directory
	// containing a repository marker. Only meaningful with SearchAncestors.
	StopOnRepoRoot bool

	// CheckXDGConfigHome probes $XDG_CONFIG_HOME, or $HOME/.config when the
	// variable is unset.
	CheckXDGConfigHome bool

	// CheckAppSupport probes ~/Library/Application Support. No-op off macOS.
	CheckAppSupport bool

	// CheckAppData probes %APPDATA%, or ~/AppData/Roaming when unset.
	// No-op off Windows.
	CheckAppData bool

	// CheckHome probes $HOME itself.
	CheckHome bool

	// PathOverride, when set and returning true, contributes its path as the
	// first candidate, unconditionally.
	PathOverride func() (string, bool)
}

// DefaultSearch returns the standard discovery behavior: manifest plus
// {name}.toml and .{name}.toml from the working directory up to the
// repository root, then the user-level config locations.
func DefaultSearch() Search {
	return Search{
		Manifest:           "pyproject.toml",
		Templates:          []string{"{name}.toml", ".{name}.toml"},
		SearchAncestors:    true,
		StopOnRepoRoot:     true,
		CheckXDGConfigHome: true,
		CheckAppSupport:    true,
		CheckAppData:       true,
		CheckHome:          true,
	}
}

// EnvPathOverride builds a PathOverride hook reading an explicit config file
// path from the named environment variable (e.g., "MYTOOL_CONFIG").
func EnvPathOverride(envVar string) func() (string, bool) {
	return func() (string, bool) {
		path := os.Getenv(envVar)
		return path, path != ""
	}
}

// validate reports template misuse at setup time.
func (s Search) validate() error {
	for _, tmpl := range s.Templates {
		if strings.Count(tmpl, nameSlot) != 1 {
			return dowse.ErrBadTemplate
		}
	}
	return nil
}

// namedFiles fills every template with the tool name.
func (s Search) namedFiles(name string) []string {
	files := make([]string, len(s.Templates))
	for i, tmpl := range s.Templates {
		files[i] = strings.ReplaceAll(tmpl, nameSlot, name)
	}
	return files
}

// Candidates returns the ordered candidate paths for a tool name. The order
// is deterministic: override hook, working directory and its ancestors, XDG
// config dir, OS app-data dir, home directory.
func (s Search) Candidates(name string) ([]string, error) {
	var paths []string

	if s.PathOverride != nil {
		if p, ok := s.PathOverride(); ok {
			paths = append(paths, p)
		}
	}

	named := s.namedFiles(name)

	dir, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	for {
		if s.Manifest != "" {
			paths = append(paths, filepath.Join(dir, s.Manifest))
		}
		for _, f := range named {
			paths = append(paths, filepath.Join(dir, f))
		}
		if !s.SearchAncestors {
			break
		}
		if s.StopOnRepoRoot && hasRepoMarker(dir) {
			break
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	home := os.Getenv("HOME")

	if s.CheckXDGConfigHome {
		xdg := os.Getenv("XDG_CONFIG_HOME")
		if xdg == "" && home != "" {
			xdg = filepath.Join(home, ".config")
		}
		if xdg != "" {
			for _, f := range named {
				paths = append(paths, filepath.Join(xdg, f))
			}
		}
	}

	if s.CheckAppSupport && runtime.GOOS == "darwin" && home != "" {
		dir := filepath.Join(home, "Library", "Application Support")
		for _, f := range named {
			paths = append(paths, filepath.Join(dir, f))
		}
	}

	if s.CheckAppData && runtime.GOOS == "windows" {
		appData := os.Getenv("APPDATA")
		if appData == "" && home != "" {
			appData = filepath.Join(home, "AppData", "Roaming")
		}
		if appData != "" {
			for _, f := range named {
				paths = append(paths, filepath.Join(appData, f))
			}
		}
	}

	if s.CheckHome && home != "" {
		for _, f := range named {
			paths = append(paths, filepath.Join(home, f))
		}
	}

	return paths, nil
}

func hasRepoMarker(dir string) bool {
	for _, marker := range repoMarkers {
		if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
			return true
		}
	}
	return false
}
