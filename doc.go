// Package dowse resolves layered configuration for command-line tools.
//
// Quick Start:
//
//	type Config struct {
//	    VarInt int    `conf:"var_int"`
//	    VarStr string
//	}
//
//	ns := dowse.Namespace{"mytool"}
//	env, _ := sourceenv.New(ns, sourceenv.DefaultOptions())
//	file, _ := sourcefile.New(ns, sourcefile.DefaultOptions())
//
//	cfg, err := dowse.New[Config]().
//	    WithLoader(env).
//	    WithLoader(file).
//	    Build(context.Background(), nil)
//
// Loaders yield (data, metadata) records from env vars, discovered TOML/YAML/
// JSON files, or pre-parsed argument maps; a Resolver folds them into one
// mapping (earlier loaders win under MergeAll), and explicit overrides passed
// to Build always win. See example_test.go for detailed usage.
package dowse
