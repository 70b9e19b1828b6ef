// Package mask hides sensitive struct fields before values are logged.
//
// A field tagged `mask:"true"` keeps its key but its value is replaced by a
// placeholder naming its kind. Zero values are left as they are so a log
// still shows whether a secret was set at all.
package mask

import (
	"reflect"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

const tagName = "mask"

// Fields flattens a struct into an ordered map keyed by dotted field paths,
// with masked fields replaced. Keys come from the json tag, then the yaml
// tag, then the field name; fields tagged "-" are left out. Values that are
// not structs are returned under the empty key.
func Fields(v any) *orderedmap.OrderedMap[string, any] {
	if v == nil {
		return nil
	}
	out := orderedmap.New[string, any]()
	flatten(out, reflect.ValueOf(v), "")
	return out
}

// Value returns v unchanged unless it is a struct or a pointer to one, in
// which case it returns Fields(v).
func Value(v any) any {
	if v == nil || !expandable(reflect.ValueOf(v)) {
		return v
	}
	return Fields(v)
}

func flatten(out *orderedmap.OrderedMap[string, any], val reflect.Value, prefix string) {
	if val.Kind() == reflect.Pointer {
		if val.IsNil() {
			out.Set(prefix, nil)
			return
		}
		val = val.Elem()
	}

	if val.Kind() != reflect.Struct {
		out.Set(prefix, val.Interface())
		return
	}

	for i := range val.NumField() {
		field := val.Type().Field(i)
		if !field.IsExported() {
			continue
		}

		name, ok := fieldName(field)
		if !ok {
			continue
		}
		if prefix != "" {
			name = prefix + "." + name
		}

		value := val.Field(i)
		switch {
		case strings.EqualFold(field.Tag.Get(tagName), "true"):
			out.Set(name, placeholder(value))
		case expandable(value):
			flatten(out, value, name)
		default:
			out.Set(name, value.Interface())
		}
	}
}

func expandable(val reflect.Value) bool {
	if val.Kind() == reflect.Pointer {
		if val.IsNil() {
			return false
		}
		val = val.Elem()
	}
	return val.Kind() == reflect.Struct
}

func placeholder(val reflect.Value) any {
	switch val.Kind() { //nolint:exhaustive // only nilable kinds need care here
	case reflect.Pointer, reflect.Slice, reflect.Map, reflect.Interface:
		if val.IsNil() {
			return nil
		}
	}
	if val.Kind() == reflect.Pointer {
		val = val.Elem()
	}
	if val.IsZero() {
		return val.Interface()
	}

	kind := val.Kind().String()
	switch val.Kind() { //nolint:exhaustive // grouped below, rest use their own name
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		kind = "int"
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		kind = "uint"
	case reflect.Float32, reflect.Float64:
		kind = "float"
	case reflect.Array:
		kind = "slice"
	}
	return "***masked-" + kind + "***"
}

// fieldName picks the key of a field. It reports false for fields hidden
// with a "-" tag.
func fieldName(field reflect.StructField) (string, bool) {
	for _, key := range []string{"json", "yaml"} {
		tag, ok := field.Tag.Lookup(key)
		if !ok {
			continue
		}
		name, _, _ := strings.Cut(tag, ",")
		if name == "-" {
			return "", false
		}
		if name != "" {
			return name, true
		}
	}
	return field.Name, true
}
