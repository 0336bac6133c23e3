// Package sourcefile discovers and loads configuration files.
//
// Candidates are probed in a fixed order: an explicit override path, the
// working directory and its ancestors up to the repository root (.git, .hg
// or .svn), then the XDG config dir, the OS app-data dir, and the home
// directory. In each directory the shared manifest (pyproject.toml,
// [tool.<namespace>]) is checked before the tool's own {name}.toml and
// .{name}.toml files. Missing files and missing tables are skipped silently.
//
// Example:
//
//	loader, err := sourcefile.New(dowse.Namespace{"mytool"}, sourcefile.DefaultOptions())
//	factory := dowse.New[Config]().WithLoader(loader)
package sourcefile
