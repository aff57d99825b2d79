package schema

import (
	"reflect"
	"slices"
	"strings"
	"sync"
)

// InvalidKeys is the single entry returned by Keys when the field paths of a
// schema can't be determined.
const InvalidKeys = "<invalid schema keys>"

var keysCache sync.Map // reflect.Type -> []string

// Keys returns the dotted paths of all fields declared by the schema, in
// declaration order. Pointer types are unwrapped, slice and array types
// contribute the paths of their element type, and struct fields are named by
// their `json` tag. Other types declare no paths.
//
// Keys is used for diagnostics only, so it never fails: if the paths can't be
// determined it returns []string{InvalidKeys}.
func Keys(s Schema) (keys []string) {
	defer func() {
		if r := recover(); r != nil {
			keys = []string{InvalidKeys}
		}
	}()

	if s == nil {
		return []string{}
	}
	t := s.Shape()
	if t == nil {
		return []string{}
	}

	if cached, ok := keysCache.Load(t); ok {
		return slices.Clone(cached.([]string)) //nolint:forcetypeassert // Only []string is stored.
	}

	keys = typeKeys(t, map[reflect.Type]bool{})
	keysCache.Store(t, slices.Clone(keys))

	return keys
}

func typeKeys(t reflect.Type, visiting map[reflect.Type]bool) []string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	switch t.Kind() { //nolint:exhaustive // Other kinds declare no paths.
	case reflect.Slice, reflect.Array:
		return typeKeys(t.Elem(), visiting)
	case reflect.Struct:
		// Recursive types are expanded only once per path.
		if visiting[t] {
			return []string{}
		}
		visiting[t] = true
		defer delete(visiting, t)

		keys := []string{}
		for i := range t.NumField() {
			field := t.Field(i)
			name, squash, ok := fieldName(field)
			if !ok {
				continue
			}

			sub := typeKeys(field.Type, visiting)
			switch {
			case squash:
				keys = append(keys, sub...)
			case len(sub) == 0:
				keys = append(keys, name)
			default:
				for _, k := range sub {
					keys = append(keys, name+"."+k)
				}
			}
		}

		return keys
	default:
		return []string{}
	}
}

// fieldName returns the wire name of a struct field, and whether the fields of
// an embedded struct should be promoted to the parent.
func fieldName(field reflect.StructField) (name string, squash, ok bool) {
	name, _, _ = strings.Cut(field.Tag.Get("json"), ",")
	if name == "-" {
		return "", false, false
	}

	if field.Anonymous && name == "" {
		ft := field.Type
		if ft.Kind() == reflect.Pointer {
			ft = ft.Elem()
		}
		if ft.Kind() == reflect.Struct {
			return "", true, true
		}
	}

	if !field.IsExported() {
		return "", false, false
	}

	if name == "" {
		name = field.Name
	}

	return name, false, true
}
