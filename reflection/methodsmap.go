package reflection

import (
	"reflect"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Methods is the accessor metadata of one type, in method-set order.
type Methods struct {
	names []string
	meta  map[string]AccessorMetadata
}

// Names returns the method names in the order the map was built.
func (m *Methods) Names() []string { return m.names }

// Get returns the metadata of a method.
func (m *Methods) Get(name string) (AccessorMetadata, bool) {
	meta, ok := m.meta[name]
	return meta, ok
}

func (m *Methods) Len() int { return len(m.names) }

// ParamMeta describes one parameter of a service method.
type ParamMeta struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	HasDefault bool   `json:"has_default"`
	Default    any    `json:"default,omitempty"`
}

// MethodsMap caches per-type accessor metadata. Each type is derived at most
// once; concurrent callers for the same type wait for the first. Failed
// derivations are not cached, so docs added to the source later are seen on
// the next call.
type MethodsMap struct {
	processor *TypeProcessor
	namer     *FieldNamer

	group singleflight.Group
	mu    sync.RWMutex
	cache map[string]*Methods
}

// NewMethodsMap returns an empty MethodsMap.
func NewMethodsMap(processor *TypeProcessor, namer *FieldNamer) *MethodsMap {
	if namer == nil {
		namer = NewFieldNamer()
	}
	return &MethodsMap{
		processor: processor,
		namer:     namer,
		cache:     make(map[string]*Methods),
	}
}

// Methods returns the accessor metadata of every suitable method of a type.
func (m *MethodsMap) Methods(typeName string) (*Methods, error) {
	if methods, ok := m.lookup(typeName); ok {
		return methods, nil
	}
	v, err, _ := m.group.Do(typeName, func() (any, error) {
		if methods, ok := m.lookup(typeName); ok {
			return methods, nil
		}
		methods, err := m.compute(typeName)
		if err != nil {
			return nil, err
		}
		m.mu.Lock()
		m.cache[typeName] = methods
		m.mu.Unlock()
		return methods, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Methods), nil
}

func (m *MethodsMap) lookup(typeName string) (*Methods, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	methods, ok := m.cache[typeName]
	return methods, ok
}

func (m *MethodsMap) compute(typeName string) (*Methods, error) {
	t, ok := m.processor.source.Type(typeName)
	if !ok {
		return nil, Errorf(CodeUnresolvableType, "the %q type is not registered", typeName)
	}
	methods := &Methods{meta: make(map[string]AccessorMetadata)}
	for i := 0; i < t.NumMethod(); i++ {
		method := t.Method(i)
		if !isSuitableMethod(method) {
			continue
		}
		meta, err := m.processor.ReturnMetadata(typeName, method.Name)
		if err != nil {
			return nil, err
		}
		methods.names = append(methods.names, method.Name)
		methods.meta[method.Name] = meta
	}
	return methods, nil
}

// Metadata returns the cached metadata of one method.
func (m *MethodsMap) Metadata(typeName, methodName string) (AccessorMetadata, error) {
	methods, err := m.Methods(typeName)
	if err != nil {
		return AccessorMetadata{}, err
	}
	meta, ok := methods.Get(methodName)
	if !ok {
		return AccessorMetadata{}, Errorf(CodeMissingReturnAnnotation, "%s has no described method %s", typeName, methodName)
	}
	return meta, nil
}

// ReturnType returns the declared return type of a method.
func (m *MethodsMap) ReturnType(typeName, methodName string) (string, error) {
	meta, err := m.Metadata(typeName, methodName)
	return meta.Type, err
}

// IsMethodValidForDataField reports whether a method backs a data field: it
// is known, takes no required arguments, and is named like an accessor.
func (m *MethodsMap) IsMethodValidForDataField(typeName, methodName string) (bool, error) {
	methods, err := m.Methods(typeName)
	if err != nil {
		return false, err
	}
	meta, ok := methods.Get(methodName)
	if !ok || meta.ParameterCount > 0 {
		return false, nil
	}
	return m.namer.FieldNameForMethodName(methodName) != "", nil
}

// IsMethodReturnValueRequired reports whether the declared return excludes
// null.
func (m *MethodsMap) IsMethodReturnValueRequired(typeName, methodName string) (bool, error) {
	meta, err := m.Metadata(typeName, methodName)
	return meta.Required, err
}

// MethodParams describes the parameters of a service method. Go does not
// keep parameter names, so they come from the method's annotation and
// default to argN. A trailing variadic parameter defaults to an empty slice.
func (m *MethodsMap) MethodParams(typeName, methodName string) ([]ParamMeta, error) {
	source := m.processor.source
	t, ok := source.Type(typeName)
	if !ok {
		return nil, Errorf(CodeUnresolvableType, "the %q type is not registered", typeName)
	}
	method, ok := t.MethodByName(methodName)
	if !ok {
		return nil, Errorf(CodeUnresolvableType, "%s has no method %s", typeName, methodName)
	}
	offset := 1
	if t.Kind() == reflect.Interface {
		offset = 0
	}
	declared := source.Doc(typeName).Methods[methodName].Params

	n := method.Type.NumIn() - offset
	params := make([]ParamMeta, 0, n)
	for i := 0; i < n; i++ {
		typ, err := m.processor.ParamType(typeName, methodName, i)
		if err != nil {
			return nil, err
		}
		p := ParamMeta{Name: paramName(declared, i), Type: typ}
		if method.Type.IsVariadic() && i == n-1 {
			p.HasDefault = true
			p.Default = []any{}
		}
		params = append(params, p)
	}
	return params, nil
}

func paramName(declared []Param, i int) string {
	if i < len(declared) && declared[i].Name != "" {
		return declared[i].Name
	}
	return "arg" + strconv.Itoa(i)
}
