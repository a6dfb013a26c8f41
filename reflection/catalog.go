package reflection

import (
	"reflect"
	"strings"
	"sync"
)

// Source supplies the shape and documentation of named types. [Catalog] is
// the implementation used in production; tests may wrap it.
type Source interface {
	// Type returns the method-set type registered under a qualified name:
	// the interface type itself, or a pointer to a struct type.
	Type(name string) (reflect.Type, bool)

	// Doc returns the documentation registered for a qualified name.
	Doc(name string) TypeDoc

	// NameOf returns the qualified name a type is registered under.
	NameOf(t reflect.Type) (string, bool)

	// Interfaces returns the registered interfaces implemented by the named
	// type, in registration order.
	Interfaces(name string) []string
}

var describerType = reflect.TypeOf((*Describer)(nil)).Elem()

// Catalog is the registry of data object types, keyed by qualified name
// (import path + "." + type name). It is safe for concurrent use.
type Catalog struct {
	mu      sync.RWMutex
	entries map[string]*catalogEntry
	names   map[reflect.Type]string
	order   []string
}

type catalogEntry struct {
	typ reflect.Type
	doc TypeDoc
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		entries: make(map[string]*catalogEntry),
		names:   make(map[reflect.Type]string),
	}
}

// Add registers the type of sample and returns its qualified name. Pass a
// nil pointer to an interface, (*OrderInterface)(nil), to register an
// interface type. Docs given here take precedence over DescribeType.
func (c *Catalog) Add(sample any, docs ...TypeDoc) (string, error) {
	if sample == nil {
		return "", Errorf(CodeUnresolvableType, "cannot register a nil sample")
	}
	return c.AddType(reflect.TypeOf(sample), docs...)
}

// MustAdd is like Add for several samples but panics on error.
// It simplifies package-level registration.
func (c *Catalog) MustAdd(samples ...any) *Catalog {
	for _, s := range samples {
		if _, err := c.Add(s); err != nil {
			panic(err)
		}
	}
	return c
}

// AddType registers t. Pointers are dereferenced; the result must be a named
// struct or interface type.
func (c *Catalog) AddType(t reflect.Type, docs ...TypeDoc) (string, error) {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct && t.Kind() != reflect.Interface {
		return "", Errorf(CodeUnresolvableType, "%s is not a struct or interface type", t)
	}
	if t.Name() == "" || t.PkgPath() == "" {
		return "", Errorf(CodeUnresolvableType, "%s is not a named type", t)
	}

	name := QualifiedName(t)
	methodSet := t
	if t.Kind() == reflect.Struct {
		methodSet = reflect.PointerTo(t)
	}

	var doc TypeDoc
	for _, d := range docs {
		doc = doc.merge(d)
	}
	if t.Kind() == reflect.Struct && methodSet.Implements(describerType) {
		described := reflect.New(t).Interface().(Describer).DescribeType()
		doc = doc.merge(described)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if prev, ok := c.entries[name]; ok {
		if prev.typ != methodSet {
			return "", Errorf(CodeUnresolvableType, "%s is already registered with a different type", name)
		}
		prev.doc = doc.merge(prev.doc)
		return name, nil
	}
	c.entries[name] = &catalogEntry{typ: methodSet, doc: doc}
	c.names[t] = name
	c.names[methodSet] = name
	c.order = append(c.order, name)
	return name, nil
}

// Document merges doc into the documentation of a registered type. Existing
// entries win. It reports whether the type is registered.
func (c *Catalog) Document(name string, doc TypeDoc) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[name]
	if !ok {
		return false
	}
	e.doc = e.doc.merge(doc)
	return true
}

// Names returns the registered qualified names in registration order.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), c.order...)
}

// Type implements Source.
func (c *Catalog) Type(name string) (reflect.Type, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[name]
	if !ok {
		return nil, false
	}
	return e.typ, true
}

// Doc implements Source.
func (c *Catalog) Doc(name string) TypeDoc {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if e, ok := c.entries[name]; ok {
		return e.doc
	}
	return TypeDoc{}
}

// NameOf implements Source.
func (c *Catalog) NameOf(t reflect.Type) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	name, ok := c.names[t]
	return name, ok
}

// Interfaces implements Source.
func (c *Catalog) Interfaces(name string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[name]
	if !ok {
		return nil
	}
	var out []string
	for _, other := range c.order {
		if other == name {
			continue
		}
		it := c.entries[other].typ
		if it.Kind() == reflect.Interface && e.typ.Implements(it) {
			out = append(out, other)
		}
	}
	return out
}

// QualifiedName returns the import path qualified name of a named type,
// e.g. "github.com/acme/shop/sales/api/data.Order".
func QualifiedName(t reflect.Type) string {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.PkgPath() + "." + t.Name()
}

// splitQualifiedName splits a qualified name into its package path and type
// name. The type name follows the last dot after the last slash.
func splitQualifiedName(name string) (pkg, typeName string) {
	slash := strings.LastIndex(name, "/")
	dot := strings.LastIndex(name[slash+1:], ".")
	if dot < 0 {
		return "", name
	}
	dot += slash + 1
	return name[:dot], name[dot+1:]
}
