package dowse

import (
	"reflect"
	"strings"

	"github.com/halvard/dowse/internal/normalize"
)

// Schema maps resolved field names to their declared Go types. Loaders use it
// to coerce raw string values; a nil Schema disables coercion entirely
// (values pass through as strings).
type Schema map[string]reflect.Type

// SchemaOf derives the Schema for T's exported struct fields. Field names are
// taken from the `conf` tag when present, otherwise the snake_cased field
// name (VarInt -> var_int). Fields tagged `conf:"-"` are skipped. For
// non-struct types SchemaOf returns nil.
func SchemaOf[T any]() Schema {
	return schemaFor(reflect.TypeOf((*T)(nil)).Elem())
}

func schemaFor(t reflect.Type) Schema {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}

	schema := make(Schema, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		name := field.Tag.Get("conf")
		if name == "-" {
			continue
		}
		// Tags may carry options after a comma (mapstructure syntax).
		if idx := strings.Index(name, ","); idx >= 0 {
			name = name[:idx]
		}
		if name == "" {
			name = normalize.Snake(field.Name)
		}

		schema[name] = field.Type
	}
	return schema
}
