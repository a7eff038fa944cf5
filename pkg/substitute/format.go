package substitute

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"
)

const (
	// Unfilled is the text used for a variable whose value is absent (nil).
	Unfilled = "[To be filled]"
	// NoneSpecified is the text used for an empty list.
	NoneSpecified = "[None specified]"
)

// Format converts a variable value into its template text.
//
//   - nil becomes Unfilled
//   - bool becomes "Yes" or "No"
//   - slices and arrays become one "- item" line per element (NoneSpecified when empty)
//   - maps become one "- key: value" line per entry, sorted by key
//   - everything else uses its string form
//
// A panic raised while formatting (typically from a user String method) is
// returned as an error.
func Format(v any) (s string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("formatting %T: %v", v, r)
		}
	}()
	return format(v), nil
}

func format(v any) string {
	if isNil(v) {
		return Unfilled
	}

	switch val := v.(type) {
	case string:
		return val
	case bool:
		if val {
			return "Yes"
		}
		return "No"
	case []byte:
		return string(val)
	case time.Time:
		return val.Format(time.RFC3339)
	case error:
		return val.Error()
	case fmt.Stringer:
		return val.String()
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		return format(rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		if rv.Len() == 0 {
			return NoneSpecified
		}
		lines := make([]string, rv.Len())
		for i := range rv.Len() {
			lines[i] = "- " + format(rv.Index(i).Interface())
		}
		return strings.Join(lines, "\n")
	case reflect.Map:
		type entry struct{ key, value string }
		entries := make([]entry, 0, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			entries = append(entries, entry{
				key:   fmt.Sprint(iter.Key().Interface()),
				value: format(iter.Value().Interface()),
			})
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].key < entries[j].key })
		lines := make([]string, len(entries))
		for i, e := range entries {
			lines[i] = fmt.Sprintf("- %s: %s", e.key, e.value)
		}
		return strings.Join(lines, "\n")
	}
	return fmt.Sprint(v)
}

// isNil reports whether v is nil or a typed nil pointer or interface.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
