// Package simple wires the default resolution stack for the common case: a
// single-element namespace, environment variables overriding discovered
// config files, all sources merged.
package simple

import (
	"context"

	"github.com/halvard/dowse"
	"github.com/halvard/dowse/sourceenv"
	"github.com/halvard/dowse/sourcefile"
)

// Factory builds a dowse.Factory for the tool name with the default loaders:
// env vars first (NAME_*), then discovered files, folded with MergeAll so
// environment values win over file values.
func Factory[T any](name string) (*dowse.Factory[T], error) {
	ns := dowse.Namespace{name}

	env, err := sourceenv.New(ns, sourceenv.DefaultOptions())
	if err != nil {
		return nil, err
	}
	file, err := sourcefile.New(ns, sourcefile.DefaultOptions())
	if err != nil {
		return nil, err
	}

	return dowse.New[T]().
		WithLoader(env).
		WithLoader(file), nil
}

// Load resolves and constructs a T in one call. Keys in overrides win over
// every source.
func Load[T any](ctx context.Context, name string, overrides map[string]any) (*T, error) {
	factory, err := Factory[T](name)
	if err != nil {
		return nil, err
	}
	return factory.Build(ctx, overrides)
}
