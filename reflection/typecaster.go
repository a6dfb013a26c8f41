package reflection

import (
	"encoding"
	"fmt"
	"math"
	"reflect"
	"regexp"
	"strconv"
	"strings"
)

// TypeCaster casts values to declared scalar types on a best-effort basis.
// It never fails: unconvertible input falls back to the zero-ish result of
// the loose conversion rules below ("abc" as int is 0).
type TypeCaster struct {
	source Source
}

// NewTypeCaster returns a TypeCaster that treats names known to source as
// complex types.
func NewTypeCaster(source Source) *TypeCaster {
	return &TypeCaster{source: source}
}

// CastValueToType casts value to typ. Nil passes through, and so do
// sequences and mappings unless typ names a registered type.
func (c *TypeCaster) CastValueToType(value any, typ string) any {
	if isNil(value) {
		return nil
	}
	if isStructured(value) {
		if _, ok := c.source.Type(typ); !ok {
			return value
		}
	}

	switch typ {
	case "int", "integer":
		return toInt(value)
	case "string":
		return toString(value)
	case "bool", "boolean", "true", "false":
		return toBool(value)
	case "float", "double":
		return toFloat(value)
	}
	return value
}

var leadingNumber = regexp.MustCompile(`^[ \t\n\r\v\f]*[+-]?(?:[0-9]+(?:\.[0-9]*)?|\.[0-9]+)(?:[eE][+-]?[0-9]+)?`)

func isNil(value any) bool {
	if value == nil {
		return true
	}
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}

// isStructured reports whether value is a sequence or mapping.
func isStructured(value any) bool {
	if _, ok := value.(*Data); ok {
		return true
	}
	switch reflect.ValueOf(value).Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return true
	}
	return false
}

func toInt(value any) int {
	v := reflect.Indirect(reflect.ValueOf(value))
	switch v.Kind() {
	case reflect.Bool:
		if v.Bool() {
			return 1
		}
		return 0
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return int(v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return int(v.Uint())
	case reflect.Float32, reflect.Float64:
		return floatToInt(v.Float())
	case reflect.String:
		return stringToInt(v.String())
	case reflect.Slice, reflect.Array, reflect.Map:
		if v.Len() > 0 {
			return 1
		}
		return 0
	case reflect.Invalid:
		return 0
	}
	return 1
}

func floatToInt(f float64) int {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int(f)
}

func stringToInt(s string) int {
	prefix := strings.TrimLeft(leadingNumber.FindString(s), " \t\n\r\v\f")
	if prefix == "" {
		return 0
	}
	if i, err := strconv.ParseInt(prefix, 10, 64); err == nil || isRangeErr(err) {
		return int(i)
	}
	f, _ := strconv.ParseFloat(prefix, 64)
	return floatToInt(f)
}

func isRangeErr(err error) bool {
	ne, ok := err.(*strconv.NumError)
	return ok && ne.Err == strconv.ErrRange
}

func toFloat(value any) float64 {
	v := reflect.Indirect(reflect.ValueOf(value))
	switch v.Kind() {
	case reflect.Float32, reflect.Float64:
		return v.Float()
	case reflect.String:
		prefix := strings.TrimLeft(leadingNumber.FindString(v.String()), " \t\n\r\v\f")
		f, _ := strconv.ParseFloat(prefix, 64)
		return f
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(v.Uint())
	}
	return float64(toInt(value))
}

func toString(value any) string {
	switch s := value.(type) {
	case fmt.Stringer:
		return s.String()
	case encoding.TextMarshaler:
		b, err := s.MarshalText()
		if err != nil {
			return ""
		}
		return string(b)
	}
	v := reflect.Indirect(reflect.ValueOf(value))
	switch v.Kind() {
	case reflect.String:
		return v.String()
	case reflect.Bool:
		if v.Bool() {
			return "1"
		}
		return ""
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(v.Uint(), 10)
	case reflect.Float32:
		return strconv.FormatFloat(v.Float(), 'f', -1, 32)
	case reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'f', -1, 64)
	case reflect.Invalid:
		return ""
	}
	return fmt.Sprint(value)
}

func toBool(value any) bool {
	v := reflect.Indirect(reflect.ValueOf(value))
	switch v.Kind() {
	case reflect.Invalid:
		return false
	case reflect.Bool:
		return v.Bool()
	case reflect.String:
		return v.String() != "" && v.String() != "0"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint() != 0
	case reflect.Float32, reflect.Float64:
		return v.Float() != 0
	case reflect.Slice, reflect.Array, reflect.Map:
		return v.Len() > 0
	}
	return true
}

// filterBool is the lenient boolean reading used by strict coercion:
// "1", "true", "on" and "yes" are true, anything else is false.
func filterBool(value any) bool {
	if b, ok := value.(bool); ok {
		return b
	}
	switch strings.ToLower(strings.TrimSpace(toString(value))) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}

// isNumeric reports whether value is a number or a decimal numeric string.
func isNumeric(value any) bool {
	v := reflect.Indirect(reflect.ValueOf(value))
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return true
	case reflect.String:
		s := strings.TrimSpace(v.String())
		if s == "" || strings.Trim(s, "0123456789+-.eE") != "" {
			return false
		}
		_, err := strconv.ParseFloat(s, 64)
		return err == nil
	}
	return false
}
