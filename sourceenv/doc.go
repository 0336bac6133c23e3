// Package sourceenv loads configuration from environment variables.
//
// Namespace ["mytool"] matches MYTOOL_* variables; ["mytool","sub"] matches
// MYTOOL_SUB_*. Stripped names are lowercased (MYTOOL_VAR_INT → var_int) and
// coerced to the target type when the schema declares the field.
//
// Example:
//
//	loader, err := sourceenv.New(dowse.Namespace{"mytool"}, sourceenv.DefaultOptions())
//	factory := dowse.New[Config]().WithLoader(loader)
package sourceenv
