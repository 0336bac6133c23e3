package dowse

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/halvard/dowse/internal/normalize"
)

// Factory resolves configuration for T and constructs populated instances.
// Loaders run in the order they were attached (earlier loaders win under
// MergeAll); the resolver defaults to MergeAll. A Factory is built once per
// type and reused; every Build performs a fresh resolution pass.
type Factory[T any] struct {
	loaders  []Loader
	resolver Resolver
	schema   Schema
}

// New creates a Factory for T with no loaders and the MergeAll resolver.
func New[T any]() *Factory[T] {
	return &Factory[T]{
		resolver: MergeAll{},
		schema:   SchemaOf[T](),
	}
}

// WithLoader attaches a source. Loaders yield in attachment order.
func (f *Factory[T]) WithLoader(l Loader) *Factory[T] {
	f.loaders = append(f.loaders, l)
	return f
}

// WithResolver replaces the precedence policy. Default: MergeAll.
func (f *Factory[T]) WithResolver(r Resolver) *Factory[T] {
	f.resolver = r
	return f
}

// Resolve runs every loader, concatenates their record sequences in declared
// order, and folds them with the resolver. The mapping is computed fresh on
// each call; nothing is cached between passes.
func (f *Factory[T]) Resolve(ctx context.Context) (map[string]any, error) {
	if len(f.loaders) == 0 {
		return nil, ErrNoLoaders
	}

	iters := make([]RecordIter, len(f.loaders))
	for i, l := range f.loaders {
		iters[i] = l.Load(ctx, f.schema)
	}

	resolved, err := f.resolver.Resolve(&chainIter{iters: iters}, f.schema)
	if err != nil {
		return nil, err
	}
	return resolved, nil
}

// Build resolves configuration and constructs a T from it. Keys in overrides
// win over every resolved source, regardless of loader order.
func (f *Factory[T]) Build(ctx context.Context, overrides map[string]any) (*T, error) {
	resolved, err := f.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	for k, v := range overrides {
		resolved[k] = v
	}

	cfg := new(T)
	if err := decodeInto(resolved, cfg); err != nil {
		return nil, fmt.Errorf("construct %T: %w", cfg, err)
	}
	return cfg, nil
}

// decodeInto populates target's fields from the resolved mapping. Keys match
// fields by `conf` tag, snake_cased field name, or case-insensitive name.
func decodeInto(resolved map[string]any, target any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          "conf",
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
		),
		MatchName: func(mapKey, fieldName string) bool {
			return strings.EqualFold(mapKey, fieldName) ||
				mapKey == normalize.Snake(fieldName)
		},
	})
	if err != nil {
		return err
	}
	return dec.Decode(resolved)
}

// ValuesLoader adapts an already-parsed mapping, such as the output of a
// command-line argument parser, into a Loader. It yields exactly one record
// when the mapping is non-empty, otherwise none.
type ValuesLoader struct {
	name   string
	values map[string]any
}

// NewValues creates a ValuesLoader. The name identifies the loader in record
// metadata (e.g., "args").
func NewValues(name string, values map[string]any) *ValuesLoader {
	return &ValuesLoader{name: name, values: values}
}

func (l *ValuesLoader) Name() string {
	return l.name
}

// Load yields the wrapped mapping as a single KindValues record. The data is
// copied so callers cannot mutate the loader between passes.
func (l *ValuesLoader) Load(_ context.Context, _ Schema) RecordIter {
	if len(l.values) == 0 {
		return Records()
	}
	data := make(map[string]any, len(l.values))
	for k, v := range l.values {
		data[k] = v
	}
	return Records(SourceRecord{
		Data: data,
		Meta: Metadata{Kind: KindValues, Loader: l.name},
	})
}

var _ Loader = (*ValuesLoader)(nil)

// Describe returns a short diagnostic summary of a factory's wiring, useful
// in error reports from callers embedding dowse.
func (f *Factory[T]) Describe() string {
	names := make([]string, len(f.loaders))
	for i, l := range f.loaders {
		names[i] = l.Name()
	}
	var zero T
	return fmt.Sprintf("%s loaders=[%s] resolver=%T",
		reflect.TypeOf(zero), strings.Join(names, ", "), f.resolver)
}
