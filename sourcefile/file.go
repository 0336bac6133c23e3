package sourcefile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/halvard/dowse"
	"github.com/halvard/dowse/internal/normalize"
)

// Options configures file loading behavior.
type Options struct {
	// Search enumerates candidate paths. See DefaultSearch.
	Search Search

	// ManifestKey is the reserved top-level table in the shared manifest
	// under which tool configuration nests (manifest → [key.<namespace>]).
	ManifestKey string

	// ConvertHyphens folds hyphens in top-level keys to underscores, so file
	// keys line up with env-derived and struct-derived field names.
	ConvertHyphens bool
}

// DefaultOptions returns the standard file loading behavior.
func DefaultOptions() Options {
	return Options{
		Search:         DefaultSearch(),
		ManifestKey:    "tool",
		ConvertHyphens: true,
	}
}

// Loader discovers and reads config files along the search path. In the
// manifest, data lives under [<key>.<namespace...>]; in a dedicated named
// file the first namespace element is already spent on the file name, so
// only the remaining elements select nested tables.
type Loader struct {
	ns   dowse.Namespace
	opts Options
}

// New creates a file loader for the namespace.
func New(ns dowse.Namespace, opts Options) (*Loader, error) {
	if err := ns.Validate(); err != nil {
		return nil, err
	}
	if err := opts.Search.validate(); err != nil {
		return nil, err
	}
	return &Loader{ns: ns, opts: opts}, nil
}

func (l *Loader) Name() string {
	return "file:" + l.ns[0]
}

// Load yields one record per file found along the search path, in search
// order. Candidate enumeration happens up front (pure path construction);
// each file is opened and parsed only when the consumer pulls it, so
// short-circuiting resolvers stop file I/O early.
func (l *Loader) Load(ctx context.Context, _ dowse.Schema) dowse.RecordIter {
	paths, err := l.opts.Search.Candidates(l.ns[0])
	if err != nil {
		return dowse.ErrorRecords(fmt.Errorf("%s: enumerate candidates: %w", l.Name(), err))
	}
	return &fileIter{ctx: ctx, loader: l, paths: paths}
}

type fileIter struct {
	ctx    context.Context
	loader *Loader
	paths  []string
	pos    int
}

func (it *fileIter) Next() (dowse.SourceRecord, bool, error) {
	for it.pos < len(it.paths) {
		if err := it.ctx.Err(); err != nil {
			return dowse.SourceRecord{}, false, err
		}

		path := it.paths[it.pos]
		it.pos++

		data, found, err := it.loader.loadFile(path)
		if err != nil {
			return dowse.SourceRecord{}, false, err
		}
		if !found {
			continue
		}
		return dowse.SourceRecord{
			Data: data,
			Meta: dowse.Metadata{
				Kind:   dowse.KindFile,
				Loader: it.loader.Name(),
				Path:   path,
			},
		}, true, nil
	}
	return dowse.SourceRecord{}, false, nil
}

// loadFile reads one candidate. Missing files and missing namespace tables
// report found=false; a present-but-wrong-shaped table is a hard error.
func (l *Loader) loadFile(path string) (map[string]any, bool, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read %s: %w", path, err)
	}

	doc, err := parseDocument(path, raw)
	if err != nil {
		return nil, false, err
	}

	var tablePath []string
	if l.opts.Search.Manifest != "" && filepath.Base(path) == l.opts.Search.Manifest {
		tablePath = append([]string{l.opts.ManifestKey}, l.ns...)
	} else {
		tablePath = l.ns[1:]
	}

	table, found, err := navigate(doc, tablePath)
	if err != nil || !found {
		return nil, false, err
	}

	if l.opts.ConvertHyphens {
		folded := make(map[string]any, len(table))
		for k, v := range table {
			folded[normalize.FoldHyphens(k)] = v
		}
		table = folded
	}
	return table, true, nil
}

// navigate descends into nested tables. A missing segment means the file
// simply has no data for this namespace. A segment holding a non-table value
// is a StructureError naming the offending dotted path.
func navigate(doc map[string]any, tablePath []string) (map[string]any, bool, error) {
	var node any = doc
	walked := ""

	for _, segment := range tablePath {
		table, ok := node.(map[string]any)
		if !ok {
			return nil, false, &dowse.StructureError{Path: walked, Type: fmt.Sprintf("%T", node)}
		}
		child, exists := table[segment]
		if !exists {
			return nil, false, nil
		}
		if walked == "" {
			walked = segment
		} else {
			walked += "." + segment
		}
		node = child
	}

	table, ok := node.(map[string]any)
	if !ok {
		return nil, false, &dowse.StructureError{Path: walked, Type: fmt.Sprintf("%T", node)}
	}
	return table, true, nil
}

func parseDocument(path string, raw []byte) (map[string]any, error) {
	doc := make(map[string]any)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("parse YAML %s: %w", path, err)
		}
	case ".json":
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("parse JSON %s: %w", path, err)
		}
	default:
		if err := toml.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("parse TOML %s: %w", path, err)
		}
	}
	return doc, nil
}

var _ dowse.Loader = (*Loader)(nil)
