package sourceenv

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/halvard/dowse"
)

// Options configures environment variable loading.
type Options struct {
	// Transform maps a prefix-stripped variable name to a field name.
	// Default: strings.ToLower.
	Transform func(string) string

	// ConvertTypes coerces raw values to the schema's declared field types.
	// Variables naming unknown fields pass through as raw strings.
	ConvertTypes bool
}

// DefaultOptions returns the standard env loading behavior: lowercase field
// names with type conversion enabled.
func DefaultOptions() Options {
	return Options{ConvertTypes: true}
}

// Loader reads configuration from environment variables whose names start
// with the namespace-derived prefix. Namespace ["foo","bar"] matches
// FOO_BAR_* variables.
type Loader struct {
	ns     dowse.Namespace
	opts   Options
	prefix string
}

// New creates an environment variable loader for the namespace.
func New(ns dowse.Namespace, opts Options) (*Loader, error) {
	if err := ns.Validate(); err != nil {
		return nil, err
	}
	if opts.Transform == nil {
		opts.Transform = strings.ToLower
	}
	return &Loader{
		ns:     ns,
		opts:   opts,
		prefix: Prefix(ns),
	}, nil
}

// Prefix returns the env var prefix for a namespace, e.g. ["foo","bar"]
// yields "FOO_BAR_".
func Prefix(ns dowse.Namespace) string {
	parts := make([]string, len(ns))
	for i, elem := range ns {
		parts[i] = strings.ToUpper(elem)
	}
	return strings.Join(parts, "_") + "_"
}

func (l *Loader) Name() string {
	return "env:" + l.prefix + "*"
}

// Load scans the process environment and yields at most one record holding
// every matching variable. Variables are visited in sorted name order so a
// pass is reproducible regardless of environ layout.
func (l *Loader) Load(_ context.Context, schema dowse.Schema) dowse.RecordIter {
	environ := os.Environ()
	sort.Strings(environ)

	data := make(map[string]any)
	for _, kv := range environ {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, l.prefix) {
			continue
		}

		field := l.opts.Transform(name[len(l.prefix):])
		if field == "" {
			continue
		}

		if l.opts.ConvertTypes {
			if declared, known := schema[field]; known {
				converted, err := dowse.Coerce(value, declared)
				if err != nil {
					var convErr *dowse.ConversionError
					if errors.As(err, &convErr) {
						convErr.Field = field
					}
					return dowse.ErrorRecords(fmt.Errorf("env %s: %w", name, err))
				}
				data[field] = converted
				continue
			}
		}
		data[field] = value
	}

	if len(data) == 0 {
		return dowse.Records()
	}
	return dowse.Records(dowse.SourceRecord{
		Data: data,
		Meta: dowse.Metadata{Kind: dowse.KindEnvironment, Loader: l.Name()},
	})
}

var _ dowse.Loader = (*Loader)(nil)
