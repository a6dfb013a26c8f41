package reflection

import (
	"reflect"
)

// ProcessSimpleAndAnyType coerces value to a declared scalar, any, or array
// of those, failing with ErrTypeMismatch instead of truncating. Unlike
// TypeCaster it validates: numeric types only accept numeric input, and
// booleans are read leniently so "true", "on" and "yes" are true.
//
// Array values are returned as []any with every element converted.
func (p *TypeProcessor) ProcessSimpleAndAnyType(value any, typ string) (any, error) {
	isArray := p.IsArrayType(typ)
	switch {
	case isArray && isSequence(value):
		itemType := p.ArrayItemType(typ)
		v := reflect.ValueOf(value)
		out := make([]any, v.Len())
		for i := range out {
			elem := v.Index(i).Interface()
			converted, ok := settype(elem, itemType)
			if !ok {
				return nil, mismatch(value, typ)
			}
			out[i] = converted
		}
		return out, nil
	case isArray && isNil(value):
		return nil, nil
	case !isArray && !isStructured(value):
		if isNil(value) || p.IsTypeAny(typ) {
			return value, nil
		}
		converted, ok := p.setType(value, typ)
		if !ok {
			return nil, mismatch(value, typ)
		}
		return converted, nil
	case p.IsTypeAny(typ):
		return value, nil
	}
	return nil, mismatch(value, typ)
}

func (p *TypeProcessor) setType(value any, typ string) (any, bool) {
	typ, _ = p.NormalizeType(typ)
	switch typ {
	case NormalizedBooleanType, "bool":
		return filterBool(value), true
	case NormalizedIntType, NormalizedFloatType, NormalizedDoubleType:
		if !isNumeric(value) {
			return nil, false
		}
	}
	return settype(value, typ)
}

// settype is the lenient per-element conversion. It only fails for target
// types it does not know and values that have no string form.
func settype(value any, typ string) (any, bool) {
	if isNil(value) {
		return nil, true
	}
	switch typ {
	case NormalizedIntType, "integer":
		return toInt(value), true
	case NormalizedFloatType, NormalizedDoubleType:
		return toFloat(value), true
	case NormalizedBooleanType, "bool":
		return toBool(value), true
	case NormalizedStringType:
		if isStructured(value) || reflect.Indirect(reflect.ValueOf(value)).Kind() == reflect.Struct && !hasStringForm(value) {
			return nil, false
		}
		return toString(value), true
	case NormalizedAnyType:
		return value, true
	}
	return nil, false
}

func hasStringForm(value any) bool {
	switch value.(type) {
	case interface{ String() string }, interface{ MarshalText() ([]byte, error) }:
		return true
	}
	return false
}

func isSequence(value any) bool {
	if value == nil {
		return false
	}
	switch reflect.ValueOf(value).Kind() {
	case reflect.Slice, reflect.Array:
		return !isNil(value)
	}
	return false
}

func mismatch(value any, typ string) error {
	return Errorf(CodeTypeMismatch,
		"the %q value's type is invalid; the %q type was expected; verify and try again", describeValue(value), typ).
		WithDetail("type", typ)
}

func describeValue(value any) string {
	if isStructured(value) {
		return reflect.TypeOf(value).String()
	}
	return toString(value)
}
