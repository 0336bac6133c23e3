package dowse

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

var (
	durationType  = reflect.TypeOf(time.Duration(0))
	byteSliceType = reflect.TypeOf([]byte(nil))
)

// Coerce converts a raw string from a weakly-typed source (env var, argument)
// into a value of the declared type t. Booleans accept only "true"/"false"
// (case-insensitive); container types are parsed as inline TOML fragments;
// strings and unrecognized types pass through unchanged. A nil t disables
// coercion. Malformed input for a recognized type returns *ConversionError,
// never a silently defaulted value.
func Coerce(raw string, t reflect.Type) (any, error) {
	if t == nil {
		return raw, nil
	}

	if t == durationType {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, &ConversionError{Value: raw, Type: t, Err: err}
		}
		return d, nil
	}

	switch t.Kind() {
	case reflect.String:
		if t == reflect.TypeOf("") {
			return raw, nil
		}
		return reflect.ValueOf(raw).Convert(t).Interface(), nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, t.Bits())
		if err != nil {
			return nil, &ConversionError{Value: raw, Type: t, Err: err}
		}
		v := reflect.New(t).Elem()
		v.SetInt(n)
		return v.Interface(), nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(raw, 10, t.Bits())
		if err != nil {
			return nil, &ConversionError{Value: raw, Type: t, Err: err}
		}
		v := reflect.New(t).Elem()
		v.SetUint(n)
		return v.Interface(), nil

	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(raw, t.Bits())
		if err != nil {
			return nil, &ConversionError{Value: raw, Type: t, Err: err}
		}
		v := reflect.New(t).Elem()
		v.SetFloat(f)
		return v.Interface(), nil

	case reflect.Complex64, reflect.Complex128:
		c, err := strconv.ParseComplex(raw, t.Bits())
		if err != nil {
			return nil, &ConversionError{Value: raw, Type: t, Err: err}
		}
		v := reflect.New(t).Elem()
		v.SetComplex(c)
		return v.Interface(), nil

	case reflect.Bool:
		switch {
		case strings.EqualFold(raw, "true"):
			return true, nil
		case strings.EqualFold(raw, "false"):
			return false, nil
		default:
			return nil, &ConversionError{Value: raw, Type: t, Err: fmt.Errorf("want true or false")}
		}

	case reflect.Slice:
		// Declared byte sequences take the raw UTF-8 bytes of the string.
		if t.Elem().Kind() == reflect.Uint8 {
			if t == byteSliceType {
				return []byte(raw), nil
			}
			return reflect.ValueOf([]byte(raw)).Convert(t).Interface(), nil
		}
		return coerceContainer(raw, t)

	case reflect.Array, reflect.Map:
		return coerceContainer(raw, t)

	default:
		// Unrecognized declared type: pass the string through unchanged.
		return raw, nil
	}
}

// coerceContainer parses raw as an inline TOML fragment (the value side of a
// `key = <value>` line) and rebuilds the result as the declared container.
func coerceContainer(raw string, t reflect.Type) (any, error) {
	var doc map[string]any
	if err := toml.Unmarshal([]byte("v = "+raw+"\n"), &doc); err != nil {
		return nil, &ConversionError{Value: raw, Type: t, Err: err}
	}

	v, err := convertParsed(doc["v"], t)
	if err != nil {
		return nil, &ConversionError{Value: raw, Type: t, Err: err}
	}
	return v.Interface(), nil
}

// convertParsed converts a value decoded from TOML (string, int64, float64,
// bool, []any, map[string]any, ...) to the declared type t.
func convertParsed(val any, t reflect.Type) (reflect.Value, error) {
	if t.Kind() == reflect.Interface && t.NumMethod() == 0 {
		if val == nil {
			return reflect.Zero(t), nil
		}
		return reflect.ValueOf(val), nil
	}
	if val == nil {
		return reflect.Value{}, fmt.Errorf("no value for %s", t)
	}

	rv := reflect.ValueOf(val)
	if rv.Type() == t {
		return rv, nil
	}

	switch t.Kind() {
	case reflect.Slice:
		items, ok := val.([]any)
		if !ok {
			return reflect.Value{}, fmt.Errorf("want array, got %T", val)
		}
		out := reflect.MakeSlice(t, len(items), len(items))
		for i, item := range items {
			ev, err := convertParsed(item, t.Elem())
			if err != nil {
				return reflect.Value{}, err
			}
			out.Index(i).Set(ev)
		}
		return out, nil

	case reflect.Array:
		items, ok := val.([]any)
		if !ok {
			return reflect.Value{}, fmt.Errorf("want array, got %T", val)
		}
		if len(items) != t.Len() {
			return reflect.Value{}, fmt.Errorf("want %d elements, got %d", t.Len(), len(items))
		}
		out := reflect.New(t).Elem()
		for i, item := range items {
			ev, err := convertParsed(item, t.Elem())
			if err != nil {
				return reflect.Value{}, err
			}
			out.Index(i).Set(ev)
		}
		return out, nil

	case reflect.Map:
		if t.Key().Kind() != reflect.String {
			return reflect.Value{}, fmt.Errorf("unsupported map key type %s", t.Key())
		}
		table, ok := val.(map[string]any)
		if !ok {
			return reflect.Value{}, fmt.Errorf("want table, got %T", val)
		}
		out := reflect.MakeMapWithSize(t, len(table))
		for k, item := range table {
			ev, err := convertParsed(item, t.Elem())
			if err != nil {
				return reflect.Value{}, err
			}
			out.SetMapIndex(reflect.ValueOf(k).Convert(t.Key()), ev)
		}
		return out, nil

	default:
		if rv.Type().AssignableTo(t) {
			return rv, nil
		}
		if isNumeric(rv.Kind()) && isNumeric(t.Kind()) {
			return convertNumeric(rv, t)
		}
		return reflect.Value{}, fmt.Errorf("want %s, got %T", t, val)
	}
}

// convertNumeric converts between numeric kinds, rejecting conversions that
// would wrap on overflow or truncate a fractional part. A value fits only if
// converting it back reproduces the original.
func convertNumeric(rv reflect.Value, t reflect.Type) (reflect.Value, error) {
	out := rv.Convert(t)
	if rv.Kind() == reflect.Float64 && math.IsNaN(rv.Float()) {
		return out, nil
	}
	if back := out.Convert(rv.Type()); back.Interface() != rv.Interface() {
		return reflect.Value{}, fmt.Errorf("%v does not fit in %s", rv.Interface(), t)
	}
	return out, nil
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
