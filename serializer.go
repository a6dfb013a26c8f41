package dataobject

import (
	"fmt"
	"reflect"

	"github.com/broady/dataobject/reflection"
)

// Serializer converts handler results into their wire form. Results whose
// type is registered are walked through their accessors; anything else is
// left for encoding/json.
type Serializer struct {
	catalog   *reflection.Catalog
	types     *reflection.TypeProcessor
	methods   *reflection.MethodsMap
	processor *reflection.DataObjectProcessor
}

// NewSerializer assembles a Serializer from its parts. The parts must share
// the same catalog.
func NewSerializer(catalog *reflection.Catalog, types *reflection.TypeProcessor, methods *reflection.MethodsMap, processor *reflection.DataObjectProcessor) *Serializer {
	return &Serializer{
		catalog:   catalog,
		types:     types,
		methods:   methods,
		processor: processor,
	}
}

// NewDefaultSerializer builds a Serializer and its reflection engine on top
// of catalog.
func NewDefaultSerializer(catalog *reflection.Catalog) *Serializer {
	namer := reflection.NewFieldNamer()
	types := reflection.NewTypeProcessor(catalog, reflection.NewNameFinder())
	methods := reflection.NewMethodsMap(types, namer)
	processor := reflection.NewDataObjectProcessor(methods, reflection.NewTypeCaster(catalog), namer)
	return NewSerializer(catalog, types, methods, processor)
}

// Register adds data object types to the catalog and validates their
// declared contracts up front. Interfaces are only cataloged: they supply
// inherited annotations.
func (s *Serializer) Register(samples ...any) error {
	for _, sample := range samples {
		name, err := s.catalog.Add(sample)
		if err != nil {
			return err
		}
		if err := s.validate(name); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks the declared contracts of every struct type in the
// catalog. Call it after adding docs loaded from source.
func (s *Serializer) Validate() error {
	for _, name := range s.catalog.Names() {
		if err := s.validate(name); err != nil {
			return err
		}
	}
	return nil
}

func (s *Serializer) validate(name string) error {
	t, _ := s.catalog.Type(name)
	if t.Kind() == reflect.Interface {
		return nil
	}
	if _, err := s.types.Register(name); err != nil {
		return fmt.Errorf("register %s: %w", name, err)
	}
	if _, err := s.methods.Methods(name); err != nil {
		return fmt.Errorf("register %s: %w", name, err)
	}
	return nil
}

// Serialize converts v. A registered data object becomes a
// *reflection.Data, a sequence of them a []any.
func (s *Serializer) Serialize(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	rv := reflect.ValueOf(v)
	t := rv.Type()
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() == reflect.Struct {
		name, ok := s.catalog.NameOf(t)
		if !ok {
			return v, nil
		}
		if rv.Kind() == reflect.Ptr && rv.IsNil() {
			return nil, nil
		}
		return s.processor.BuildOutputDataArray(v, name)
	}
	if (rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array) && s.isDataObject(t.Elem()) {
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return []any{}, nil
		}
		out := make([]any, rv.Len())
		for i := range out {
			elem, err := s.Serialize(rv.Index(i).Interface())
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			out[i] = elem
		}
		return out, nil
	}
	return v, nil
}

func (s *Serializer) isDataObject(t reflect.Type) bool {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	_, ok := s.catalog.NameOf(t)
	return ok && t.Kind() == reflect.Struct
}

// TypeName returns the registry name of a registered Go type.
func (s *Serializer) TypeName(t reflect.Type) (string, bool) {
	for t.Kind() == reflect.Ptr || t.Kind() == reflect.Slice {
		t = t.Elem()
	}
	name, ok := s.catalog.NameOf(t)
	if !ok {
		return "", false
	}
	translated, err := s.types.TranslateTypeName(name)
	if err != nil {
		return "", false
	}
	return translated, true
}

// Types returns the complex type registry.
func (s *Serializer) Types() []reflection.ComplexType {
	return s.types.Types()
}

// Type returns one entry of the complex type registry.
func (s *Serializer) Type(name string) (reflection.ComplexType, bool) {
	return s.types.Type(name)
}

// Catalog returns the underlying catalog.
func (s *Serializer) Catalog() *reflection.Catalog {
	return s.catalog
}

// TypeProcessor returns the type registry. It also converts loosely typed
// input with ProcessSimpleAndAnyType.
func (s *Serializer) TypeProcessor() *reflection.TypeProcessor {
	return s.types
}

// Methods returns the accessor metadata cache.
func (s *Serializer) Methods() *reflection.MethodsMap {
	return s.methods
}
