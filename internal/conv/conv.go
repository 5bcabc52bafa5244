package conv

import (
	"reflect"
	"strconv"
)

// AsInt converts numeric values, numeric strings and named numeric types to int.
// It returns 0 for anything else.
func AsInt(value interface{}) int {
	switch actual := value.(type) {
	case nil:
		return 0
	case int:
		return actual
	case int64:
		return int(actual)
	case int32:
		return int(actual)
	case uint64:
		return int(actual)
	case float64:
		return int(actual)
	case float32:
		return int(actual)
	case string:
		if v, err := strconv.Atoi(actual); err == nil {
			return v
		}
		if f, err := strconv.ParseFloat(actual, 64); err == nil {
			return int(f)
		}
		return 0
	}
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Ptr:
		if v.IsNil() {
			return 0
		}
		return AsInt(v.Elem().Interface())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return int(v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int(v.Uint())
	case reflect.Float32, reflect.Float64:
		return int(v.Float())
	}
	return 0
}
