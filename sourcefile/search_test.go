package sourcefile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halvard/dowse"
)

// chdir switches the working directory for one test and returns the resolved
// path (symlinks in TempDir evaluated), restoring the original on cleanup.
func chdir(t *testing.T, dir string) string {
	t.Helper()
	orig, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(orig) })

	cwd, err := os.Getwd()
	require.NoError(t, err)
	return cwd
}

// projectSearch keeps only the directory-walk part of discovery so tests can
// assert exact candidate lists.
func projectSearch() Search {
	return Search{
		Manifest:        "pyproject.toml",
		Templates:       []string{"{name}.toml", ".{name}.toml"},
		SearchAncestors: true,
		StopOnRepoRoot:  true,
	}
}

func perDir(dir string) []string {
	return []string{
		filepath.Join(dir, "pyproject.toml"),
		filepath.Join(dir, "mytool.toml"),
		filepath.Join(dir, ".mytool.toml"),
	}
}

func TestSearch_StopsOnRepoRoot(t *testing.T) {
	tmp := t.TempDir()
	sub := filepath.Join(tmp, "root", "sub")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	require.NoError(t, os.Mkdir(filepath.Join(tmp, "root", ".git"), 0o755))

	cwd := chdir(t, sub)
	root := filepath.Dir(cwd)

	paths, err := projectSearch().Candidates("mytool")
	require.NoError(t, err)

	want := append(perDir(cwd), perDir(root)...)
	assert.Equal(t, want, paths, "search must stop at the repository root, never above it")
}

func TestSearch_MarkerInWorkingDirectory(t *testing.T) {
	tmp := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(tmp, ".hg"), 0o755))

	cwd := chdir(t, tmp)

	paths, err := projectSearch().Candidates("mytool")
	require.NoError(t, err)
	assert.Equal(t, perDir(cwd), paths)
}

func TestSearch_NoAncestors(t *testing.T) {
	cwd := chdir(t, t.TempDir())

	s := projectSearch()
	s.SearchAncestors = false
	paths, err := s.Candidates("mytool")
	require.NoError(t, err)
	assert.Equal(t, perDir(cwd), paths)
}

func TestSearch_NoStopKeepsClimbing(t *testing.T) {
	tmp := t.TempDir()
	sub := filepath.Join(tmp, "root", "sub")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	require.NoError(t, os.Mkdir(filepath.Join(tmp, "root", ".git"), 0o755))

	cwd := chdir(t, sub)
	root := filepath.Dir(cwd)

	s := projectSearch()
	s.StopOnRepoRoot = false
	paths, err := s.Candidates("mytool")
	require.NoError(t, err)

	// The walk continues past the marker all the way to the filesystem root.
	want := append(perDir(cwd), perDir(root)...)
	assert.Equal(t, want, paths[:len(want)])
	assert.Greater(t, len(paths), len(want))
}

func TestSearch_NoManifest(t *testing.T) {
	cwd := chdir(t, t.TempDir())

	s := projectSearch()
	s.Manifest = ""
	s.SearchAncestors = false
	paths, err := s.Candidates("mytool")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(cwd, "mytool.toml"),
		filepath.Join(cwd, ".mytool.toml"),
	}, paths)
}

func TestSearch_PathOverrideComesFirst(t *testing.T) {
	chdir(t, t.TempDir())

	s := projectSearch()
	s.SearchAncestors = false
	s.PathOverride = func() (string, bool) { return "/etc/custom.toml", true }

	paths, err := s.Candidates("mytool")
	require.NoError(t, err)
	require.NotEmpty(t, paths)
	assert.Equal(t, "/etc/custom.toml", paths[0])
}

func TestEnvPathOverride(t *testing.T) {
	t.Setenv("MYTOOL_CONFIG", "/tmp/override.toml")
	path, ok := EnvPathOverride("MYTOOL_CONFIG")()
	assert.True(t, ok)
	assert.Equal(t, "/tmp/override.toml", path)

	t.Setenv("MYTOOL_CONFIG", "")
	_, ok = EnvPathOverride("MYTOOL_CONFIG")()
	assert.False(t, ok)
}

func TestSearch_XDGConfigHome(t *testing.T) {
	tmp := t.TempDir()
	xdg := filepath.Join(tmp, "xdg")
	t.Setenv("XDG_CONFIG_HOME", xdg)
	chdir(t, tmp)

	s := Search{
		Templates:          []string{"{name}.toml", ".{name}.toml"},
		CheckXDGConfigHome: true,
	}
	paths, err := s.Candidates("mytool")
	require.NoError(t, err)

	assert.Contains(t, paths, filepath.Join(xdg, "mytool.toml"))
	assert.Contains(t, paths, filepath.Join(xdg, ".mytool.toml"))
}

func TestSearch_XDGFallsBackToHome(t *testing.T) {
	tmp := t.TempDir()
	home := filepath.Join(tmp, "home")
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("HOME", home)
	chdir(t, tmp)

	s := Search{
		Templates:          []string{"{name}.toml"},
		CheckXDGConfigHome: true,
	}
	paths, err := s.Candidates("mytool")
	require.NoError(t, err)
	assert.Contains(t, paths, filepath.Join(home, ".config", "mytool.toml"))
}

func TestSearch_HomeDirectory(t *testing.T) {
	tmp := t.TempDir()
	home := filepath.Join(tmp, "home")
	t.Setenv("HOME", home)
	chdir(t, tmp)

	s := Search{
		Templates: []string{"{name}.toml", ".{name}.toml"},
		CheckHome: true,
	}
	paths, err := s.Candidates("mytool")
	require.NoError(t, err)

	// Home candidates come last, after the directory walk.
	require.GreaterOrEqual(t, len(paths), 2)
	assert.Equal(t, filepath.Join(home, "mytool.toml"), paths[len(paths)-2])
	assert.Equal(t, filepath.Join(home, ".mytool.toml"), paths[len(paths)-1])
}

func TestSearch_UserLocationsOrdered(t *testing.T) {
	tmp := t.TempDir()
	home := filepath.Join(tmp, "home")
	xdg := filepath.Join(tmp, "xdg")
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", xdg)
	chdir(t, tmp)

	s := Search{
		Templates:          []string{"{name}.toml"},
		CheckXDGConfigHome: true,
		CheckHome:          true,
	}
	paths, err := s.Candidates("mytool")
	require.NoError(t, err)

	xdgIdx := indexOf(paths, filepath.Join(xdg, "mytool.toml"))
	homeIdx := indexOf(paths, filepath.Join(home, "mytool.toml"))
	require.GreaterOrEqual(t, xdgIdx, 0)
	require.GreaterOrEqual(t, homeIdx, 0)
	assert.Less(t, xdgIdx, homeIdx, "XDG candidates precede home candidates")
}

func TestSearch_BadTemplate(t *testing.T) {
	s := DefaultSearch()
	s.Templates = []string{"mytool.toml"} // no {name} slot

	_, err := New(dowse.Namespace{"mytool"}, Options{Search: s})
	assert.ErrorIs(t, err, dowse.ErrBadTemplate)

	s.Templates = []string{"{name}-{name}.toml"} // two slots
	_, err = New(dowse.Namespace{"mytool"}, Options{Search: s})
	assert.ErrorIs(t, err, dowse.ErrBadTemplate)
}

func indexOf(paths []string, want string) int {
	for i, p := range paths {
		if p == want {
			return i
		}
	}
	return -1
}
