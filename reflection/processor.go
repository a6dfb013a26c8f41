package reflection

import (
	"fmt"
	"reflect"
	"strings"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// DataObjectProcessor converts data objects into Data by calling their
// accessors as described by a MethodsMap.
type DataObjectProcessor struct {
	methods *MethodsMap
	caster  *TypeCaster
	namer   *FieldNamer
}

// NewDataObjectProcessor returns a DataObjectProcessor.
func NewDataObjectProcessor(methods *MethodsMap, caster *TypeCaster, namer *FieldNamer) *DataObjectProcessor {
	if namer == nil {
		namer = NewFieldNamer()
	}
	return &DataObjectProcessor{methods: methods, caster: caster, namer: namer}
}

// BuildOutputDataArray serializes obj as the registered type typeName.
//
// Fields are produced in method-set order. A nil value is left out unless
// the accessor's declared return excludes null. Nested objects, including
// the elements of sequences, are serialized with their declared types.
// An object reached again through its own fields fails with
// ErrCyclicReference.
func (p *DataObjectProcessor) BuildOutputDataArray(obj any, typeName string) (*Data, error) {
	if isNil(obj) {
		return nil, Errorf(CodeUnresolvableType, "cannot serialize a nil %s", typeName)
	}
	return p.build(reflect.ValueOf(obj), typeName, make(map[visit]bool))
}

type visit struct {
	typ reflect.Type
	ptr uintptr
}

func (p *DataObjectProcessor) build(v reflect.Value, typeName string, path map[visit]bool) (*Data, error) {
	for v.Kind() == reflect.Interface && !v.IsNil() {
		v = v.Elem()
	}
	if v.Kind() == reflect.Ptr && !v.IsNil() {
		key := visit{typ: v.Type(), ptr: v.Pointer()}
		if path[key] {
			return nil, Errorf(CodeCyclicReference, "%s at %#x is reached again through its own fields", typeName, key.ptr).
				WithDetail("type", typeName)
		}
		path[key] = true
		defer delete(path, key)
	} else if v.Kind() == reflect.Struct {
		// Addressable copy so pointer methods are callable.
		ptr := reflect.New(v.Type())
		ptr.Elem().Set(v)
		v = ptr
	}

	methods, err := p.methods.Methods(typeName)
	if err != nil {
		return nil, err
	}

	out := NewData()
	for _, name := range methods.Names() {
		valid, err := p.methods.IsMethodValidForDataField(typeName, name)
		if err != nil {
			return nil, err
		}
		if !valid {
			continue
		}
		meta, _ := methods.Get(name)

		value, err := call(v, typeName, name)
		if err != nil {
			return nil, err
		}
		if isNil(value) && !meta.Required {
			continue
		}

		field, err := p.fieldValue(value, meta.Type, path)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", typeName, name, err)
		}
		out.Set(p.namer.FieldNameForMethodName(name), field)
	}
	return out, nil
}

func (p *DataObjectProcessor) fieldValue(value any, returnType string, path map[visit]bool) (any, error) {
	if isNil(value) {
		return nil, nil
	}
	if typeName, ok := p.objectType(value, returnType); ok {
		return p.build(reflect.ValueOf(value), typeName, path)
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if _, ok := value.([]byte); ok {
			break
		}
		elemType := arrayElementType(returnType)
		out := make([]any, rv.Len())
		for i := range out {
			elem, err := p.elementValue(rv.Index(i).Interface(), elemType, path)
			if err != nil {
				return nil, err
			}
			out[i] = elem
		}
		return out, nil
	case reflect.Map:
		elemType := arrayElementType(returnType)
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			elem, err := p.elementValue(iter.Value().Interface(), elemType, path)
			if err != nil {
				return nil, err
			}
			out[fmt.Sprint(iter.Key().Interface())] = elem
		}
		return out, nil
	}
	return p.caster.CastValueToType(value, returnType), nil
}

func (p *DataObjectProcessor) elementValue(value any, elemType string, path map[visit]bool) (any, error) {
	if isNil(value) {
		return nil, nil
	}
	if typeName, ok := p.objectType(value, elemType); ok {
		data, err := p.build(reflect.ValueOf(value), typeName, path)
		if err != nil {
			return nil, err
		}
		value = data
	}
	return p.caster.CastValueToType(value, elemType), nil
}

// objectType reports the registered type to serialize value as. The
// declared type wins; values declared as anyType fall back to the type
// they are registered as.
func (p *DataObjectProcessor) objectType(value any, declared string) (string, bool) {
	t := reflect.TypeOf(value)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return "", false
	}
	source := p.methods.processor.source
	if _, ok := source.Type(declared); ok {
		return declared, true
	}
	if declared != NormalizedAnyType {
		return "", false
	}
	return source.NameOf(t)
}

// arrayElementType strips the array marker: "T[]" and "ArrayOfT" give "T".
// Anything else is its own element type.
func arrayElementType(arrayType string) string {
	if item, ok := strings.CutSuffix(arrayType, "[]"); ok {
		return item
	}
	if item, ok := strings.CutPrefix(arrayType, "ArrayOf"); ok && item != "" {
		return item
	}
	return arrayType
}

// call invokes a zero-argument accessor. A trailing error result is
// returned as the call's error.
func call(v reflect.Value, typeName, name string) (any, error) {
	m := v.MethodByName(name)
	if !m.IsValid() {
		return nil, Errorf(CodeUnresolvableType, "%s does not implement %s.%s", v.Type(), typeName, name)
	}
	results := m.Call(nil)
	if n := len(results); n > 1 && m.Type().Out(n-1) == errorType {
		if err, _ := results[n-1].Interface().(error); err != nil {
			return nil, fmt.Errorf("%s.%s: %w", typeName, name, err)
		}
	}
	return results[0].Interface(), nil
}
