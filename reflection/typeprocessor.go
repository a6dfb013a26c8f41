package reflection

import (
	"reflect"
	"regexp"
	"slices"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Pre-normalized type spellings.
const (
	StringType  = "str"
	IntType     = "integer"
	BooleanType = "bool"
	AnyType     = "mixed"
)

// Normalized type names.
const (
	NormalizedStringType  = "string"
	NormalizedIntType     = "int"
	NormalizedFloatType   = "float"
	NormalizedDoubleType  = "double"
	NormalizedBooleanType = "boolean"
	NormalizedAnyType     = "anyType"
)

// NullType marks an optional value in a return type list.
const NullType = "null"

var normalizationMap = map[string]string{
	StringType:  NormalizedStringType,
	IntType:     NormalizedIntType,
	BooleanType: NormalizedBooleanType,
	AnyType:     NormalizedAnyType,
	"any":       NormalizedAnyType,
	"int64":     NormalizedIntType,
	"float32":   NormalizedFloatType,
	"float64":   NormalizedDoubleType,
}

var (
	arrayTypePattern = regexp.MustCompile(`(\[\]$|^ArrayOf)`)
	typeNamePattern  = regexp.MustCompile(`^(?:.*?/)?([^/]+)/(?i:api|service)(?:/(?i:api|service))?[/.](.+)$`)
	nonAlphanumeric  = regexp.MustCompile(`[^\p{L}\p{N}]+`)
)

// ComplexType is a registry entry describing a complex type for schema
// consumers.
type ComplexType struct {
	Name          string      `json:"name"`
	Documentation string      `json:"documentation"`
	Parameters    []Parameter `json:"parameters"`
}

// Parameter is a single field of a ComplexType.
type Parameter struct {
	Name          string `json:"name"`
	Type          string `json:"type"`
	Required      bool   `json:"required"`
	Documentation string `json:"documentation"`
}

// Parameter returns the field with the given name.
func (t *ComplexType) Parameter(name string) (Parameter, bool) {
	for _, p := range t.Parameters {
		if p.Name == name {
			return p, true
		}
	}
	return Parameter{}, false
}

// AccessorMetadata describes the declared return of a single method.
type AccessorMetadata struct {
	// Type is the resolved, normalized return type. Empty when the
	// annotation only declares null.
	Type string
	// Required is false when the return type list includes null.
	Required       bool
	Description    string
	ParameterCount int
}

// TypeProcessor normalizes and resolves type names and maintains the flat
// registry of complex types.
type TypeProcessor struct {
	source Source
	names  *NameFinder
	getter Getter

	mu    sync.Mutex
	types map[string]*ComplexType
	order []string
}

// NewTypeProcessor returns a TypeProcessor reading types from source.
func NewTypeProcessor(source Source, names *NameFinder) *TypeProcessor {
	if names == nil {
		names = NewNameFinder()
	}
	return &TypeProcessor{
		source: source,
		names:  names,
		types:  make(map[string]*ComplexType),
	}
}

// Register processes a type name. Complex types, and the complex types
// reachable through their accessors, are added to the registry. It returns
// the registry name of the type: the normalized name for scalars, the
// translated name for complex types, with "[]" kept for arrays. A null type
// yields "".
func (p *TypeProcessor) Register(typ string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var added []string
	name, err := p.register(typ, &added)
	if err != nil {
		for _, n := range added {
			delete(p.types, n)
		}
		p.order = slices.DeleteFunc(p.order, func(n string) bool { return slices.Contains(added, n) })
		return "", err
	}
	return name, nil
}

func (p *TypeProcessor) register(typ string, added *[]string) (string, error) {
	typeName, ok := p.NormalizeType(typ)
	if !ok {
		return "", nil
	}
	if p.IsTypeSimple(typeName) || p.IsTypeAny(typeName) {
		if p.IsArrayType(typeName) {
			return p.ArrayItemType(typeName) + "[]", nil
		}
		return typeName, nil
	}

	itemType := p.ArrayItemType(typ)
	if _, ok := p.source.Type(itemType); !ok {
		return "", Errorf(CodeUnresolvableType,
			"the %q type is not registered and its package must be specified; verify and try again", typ).
			WithDetail("type", typ)
	}
	complexTypeName, err := p.TranslateTypeName(itemType)
	if err != nil {
		return "", err
	}
	if _, ok := p.types[complexTypeName]; !ok {
		if err := p.processComplexType(itemType, complexTypeName, added); err != nil {
			return "", err
		}
	}
	if p.IsArrayType(typ) {
		return complexTypeName + "[]", nil
	}
	return complexTypeName, nil
}

// processComplexType stores the entry before visiting its fields, so types
// that reference themselves find it and stop.
func (p *TypeProcessor) processComplexType(qualifiedName, typeName string, added *[]string) error {
	ct := &ComplexType{Name: typeName}
	p.types[typeName] = ct
	p.order = append(p.order, typeName)
	*added = append(*added, typeName)

	t, _ := p.source.Type(qualifiedName)
	ct.Documentation = p.Description(p.source.Doc(qualifiedName))
	for i := 0; i < t.NumMethod(); i++ {
		if err := p.processMethod(qualifiedName, t, t.Method(i), ct, added); err != nil {
			return err
		}
	}
	return nil
}

// processMethod records the virtual field behind an accessor. Accessors with
// required parameters are left out of the schema.
func (p *TypeProcessor) processMethod(qualifiedName string, t reflect.Type, m reflect.Method, ct *ComplexType, added *[]string) error {
	if isGetter, _ := p.getter.ParseMethodName(m.Name); !isGetter || !isSuitableMethod(m) || requiredParams(t, m) > 0 {
		return nil
	}
	meta, err := p.ReturnMetadata(qualifiedName, m.Name)
	if err != nil {
		return err
	}
	description := meta.Description
	if description == "" {
		description = p.names.FieldDescriptionFromGetterDescription(p.methodSummary(qualifiedName, m.Name))
	}
	fieldType, err := p.register(meta.Type, added)
	if err != nil {
		return err
	}
	ct.Parameters = append(ct.Parameters, Parameter{
		Name:          p.names.FieldNameFromGetterName(m.Name),
		Type:          fieldType,
		Required:      meta.Required,
		Documentation: description,
	})
	return nil
}

func (p *TypeProcessor) methodSummary(typeName, methodName string) string {
	if s := p.source.Doc(typeName).Methods[methodName].Summary; s != "" {
		return s
	}
	if a, _, err := p.returnAnnotation(typeName, methodName); err == nil {
		return a.Summary
	}
	return ""
}

// Types returns a snapshot of the registry in registration order.
func (p *TypeProcessor) Types() []ComplexType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]ComplexType, 0, len(p.order))
	for _, name := range p.order {
		ct := *p.types[name]
		ct.Parameters = slices.Clone(ct.Parameters)
		out = append(out, ct)
	}
	return out
}

// Type returns a registry entry by its translated name.
func (p *TypeProcessor) Type(name string) (ComplexType, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	ct, ok := p.types[name]
	if !ok {
		return ComplexType{}, false
	}
	out := *ct
	out.Parameters = slices.Clone(ct.Parameters)
	return out, true
}

// Description joins the summary and body of a type's documentation.
func (p *TypeProcessor) Description(doc TypeDoc) string {
	return doc.Description()
}

// ReturnMetadata reads the declared return of a method. The annotation is
// taken from the type's own docs, falling back to the first registered
// interface that declares the same method.
func (p *TypeProcessor) ReturnMetadata(typeName, methodName string) (AccessorMetadata, error) {
	t, ok := p.source.Type(typeName)
	if !ok {
		return AccessorMetadata{}, Errorf(CodeUnresolvableType, "the %q type is not registered", typeName)
	}
	m, ok := t.MethodByName(methodName)
	if !ok {
		return AccessorMetadata{}, Errorf(CodeUnresolvableType, "%s has no method %s", typeName, methodName)
	}
	annotation, declaringType, err := p.returnAnnotation(typeName, methodName)
	if err != nil {
		return AccessorMetadata{}, err
	}

	types := annotation.ReturnTypes()
	var returnType string
	for _, typ := range types {
		if typ != NullType {
			returnType = typ
			break
		}
	}
	if returnType != "" {
		returnType = p.normalizeTypeRef(p.ResolveFullyQualified(declaringType, returnType))
	}

	return AccessorMetadata{
		Type:           returnType,
		Required:       !slices.Contains(types, NullType),
		Description:    annotation.Description,
		ParameterCount: requiredParams(t, m),
	}, nil
}

func (p *TypeProcessor) returnAnnotation(typeName, methodName string) (Annotation, string, error) {
	if a, ok := p.source.Doc(typeName).Methods[methodName]; ok && a.Returns != "" {
		return a, typeName, nil
	}
	for _, iface := range p.source.Interfaces(typeName) {
		it, _ := p.source.Type(iface)
		if _, ok := it.MethodByName(methodName); !ok {
			continue
		}
		if a := p.source.Doc(iface).Methods[methodName]; a.Returns != "" {
			return a, iface, nil
		}
		break
	}
	return Annotation{}, "", Errorf(CodeMissingReturnAnnotation,
		"the method's return type must be declared with a return annotation; see %s.%s()", typeName, methodName).
		WithDetail("type", typeName).
		WithDetail("method", methodName)
}

// ParamType resolves the declared type of the index-th parameter of a
// method. The Go signature decides, except for untyped containers ([]any,
// maps) where the parameter annotation supplies the element type.
func (p *TypeProcessor) ParamType(typeName, methodName string, index int) (string, error) {
	t, ok := p.source.Type(typeName)
	if !ok {
		return "", Errorf(CodeUnresolvableType, "the %q type is not registered", typeName)
	}
	m, ok := t.MethodByName(methodName)
	if !ok {
		return "", Errorf(CodeUnresolvableType, "%s has no method %s", typeName, methodName)
	}
	offset := 1
	if t.Kind() == reflect.Interface {
		offset = 0
	}
	if index < 0 || index+offset >= m.Type.NumIn() {
		return "", Errorf(CodeUnresolvableType, "%s.%s has no parameter %d", typeName, methodName, index)
	}

	var declared []string
	if params := p.source.Doc(typeName).Methods[methodName].Params; index < len(params) {
		declared = splitTypes(params[index].Type)
	}
	if len(declared) > 0 && declared[0] == NullType {
		return "", Errorf(CodeAmbiguousParamType,
			"the parameter annotation is incorrect for parameter %d in %s.%s(); the first declared type must not be null, e.g. string|null",
			index, typeName, methodName)
	}

	detected := p.goTypeName(m.Type.In(index + offset))
	switch {
	case detected == "array":
		if len(declared) == 0 {
			return NormalizedAnyType + "[]", nil
		}
		paramType := p.ResolveFullyQualified(typeName, declared[0])
		if strings.Contains(paramType, "[]") {
			return paramType, nil
		}
		return paramType + "[]", nil
	case detected == "" && len(declared) > 0:
		detected = declared[0]
	case detected == "":
		return "", Errorf(CodeUnresolvableType, "cannot determine the type of parameter %d in %s.%s()", index, typeName, methodName)
	}
	return p.ResolveFullyQualified(typeName, detected), nil
}

// goTypeName maps a Go type onto the annotation vocabulary. Untyped
// containers report "array"; unregistered named types report "".
func (p *TypeProcessor) goTypeName(t reflect.Type) string {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Bool:
		return NormalizedBooleanType
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return NormalizedIntType
	case reflect.Float32:
		return NormalizedFloatType
	case reflect.Float64:
		return NormalizedDoubleType
	case reflect.String:
		return NormalizedStringType
	case reflect.Slice, reflect.Array:
		elem := p.goTypeName(t.Elem())
		if elem == "" || elem == "array" || elem == NormalizedAnyType {
			return "array"
		}
		return elem + "[]"
	case reflect.Map:
		return "array"
	case reflect.Interface:
		if t.NumMethod() == 0 {
			return NormalizedAnyType
		}
	}
	name, _ := p.source.NameOf(t)
	return name
}

// NormalizeType maps short spellings onto normalized names. The null type
// normalizes to no type at all (ok is false).
func (p *TypeProcessor) NormalizeType(typ string) (string, bool) {
	if typ == NullType || typ == "" {
		return "", false
	}
	if n, ok := normalizationMap[typ]; ok {
		return n, true
	}
	return typ, true
}

// normalizeTypeRef normalizes a type reference, including the item of an
// array type.
func (p *TypeProcessor) normalizeTypeRef(typ string) string {
	if strings.HasSuffix(typ, "[]") {
		item := strings.TrimSuffix(typ, "[]")
		if n, ok := normalizationMap[item]; ok {
			return n + "[]"
		}
		return typ
	}
	n, _ := p.NormalizeType(typ)
	return n
}

// IsTypeSimple reports whether typ, or its array item, is a scalar.
func (p *TypeProcessor) IsTypeSimple(typ string) bool {
	switch p.normalizedType(typ) {
	case NormalizedStringType, NormalizedIntType, NormalizedFloatType, NormalizedDoubleType, NormalizedBooleanType:
		return true
	}
	return false
}

// IsTypeAny reports whether typ, or its array item, is the any type.
func (p *TypeProcessor) IsTypeAny(typ string) bool {
	return p.normalizedType(typ) == NormalizedAnyType
}

// IsArrayType reports whether typ denotes a sequence: "ComplexType[]",
// "string[]" or "ArrayOfComplexType".
func (p *TypeProcessor) IsArrayType(typ string) bool {
	return arrayTypePattern.MatchString(typ)
}

// ArrayItemType returns the normalized item type of an array type.
func (p *TypeProcessor) ArrayItemType(arrayType string) string {
	item := strings.ReplaceAll(arrayType, "[]", "")
	if rest, ok := strings.CutPrefix(item, "ArrayOf"); ok && rest != "" {
		item = rest
	}
	n, _ := p.NormalizeType(item)
	return n
}

func (p *TypeProcessor) normalizedType(typ string) string {
	typ, _ = p.NormalizeType(typ)
	if p.IsArrayType(typ) {
		typ = p.ArrayItemType(typ)
	}
	return typ
}

// TranslateTypeName translates a qualified type name into its flat registry
// name:
//
//	github.com/acme/shop/sales/api/data.Order => SalesDataOrder
//
// The module element is the one before the first api or service element of
// the package path.
func (p *TypeProcessor) TranslateTypeName(qualifiedName string) (string, error) {
	matches := typeNamePattern.FindStringSubmatch(qualifiedName)
	if matches == nil {
		return "", Errorf(CodeInvalidTypeName,
			"the %q parameter type is invalid; verify the parameter and try again", qualifiedName).
			WithDetail("type", qualifiedName)
	}
	caser := cases.Title(language.Und, cases.NoLower)
	var b strings.Builder
	b.WriteString(caser.String(matches[1]))
	for _, part := range strings.FieldsFunc(matches[2], func(r rune) bool { return r == '/' || r == '.' }) {
		b.WriteString(caser.String(part))
	}
	return nonAlphanumeric.ReplaceAllString(b.String(), ""), nil
}

// IsSimpleType reports whether a raw type reference is a built-in name:
// built-in names are all lower case, type names are not.
func (p *TypeProcessor) IsSimpleType(typeName string) bool {
	return strings.ToLower(typeName) == typeName
}

// BasicTypeName strips array brackets: SomeType[] => SomeType.
func (p *TypeProcessor) BasicTypeName(typeName string) string {
	if i := strings.IndexByte(typeName, '['); i >= 0 {
		return typeName[:i]
	}
	return typeName
}

// IsFullyQualified reports whether a reference carries its import path.
func (p *TypeProcessor) IsFullyQualified(typeName string) bool {
	return strings.Contains(typeName, "/")
}

// AliasMapping returns the package alias table of a registered type.
func (p *TypeProcessor) AliasMapping(typeName string) map[string]string {
	return p.source.Doc(typeName).Uses
}

// ResolveFullyQualified resolves a type reference in the context of the type
// that declares it. References that do not resolve to a registered type are
// returned unchanged.
func (p *TypeProcessor) ResolveFullyQualified(sourceType, typeName string) string {
	typeName = strings.TrimSpace(typeName)
	if p.IsSimpleType(typeName) {
		return typeName
	}
	basicTypeName := p.BasicTypeName(typeName)
	if p.IsFullyQualified(basicTypeName) {
		return typeName
	}

	isArray := p.IsArrayType(typeName)
	namespace, _ := splitQualifiedName(sourceType)
	fq := aliasedTypeName(basicTypeName, namespace, p.AliasMapping(sourceType))
	if _, ok := p.source.Type(fq); ok {
		if isArray {
			return fq + "[]"
		}
		return fq
	}
	return typeName
}

func aliasedTypeName(typeName, namespace string, aliases map[string]string) string {
	prefix, partial := typeName, ""
	if i := strings.IndexByte(typeName, '.'); i >= 0 {
		prefix, partial = typeName[:i], typeName[i:]
	}
	if path, ok := aliases[prefix]; ok && partial != "" {
		return path + partial
	}
	return namespace + "." + typeName
}

// reservedMethods are hooks recognized by the standard library or this
// package; they never describe data fields.
var reservedMethods = map[string]bool{
	"DescribeType":  true,
	"String":        true,
	"GoString":      true,
	"Error":         true,
	"Format":        true,
	"MarshalJSON":   true,
	"UnmarshalJSON": true,
	"MarshalText":   true,
	"UnmarshalText": true,
}

func isSuitableMethod(m reflect.Method) bool {
	return m.IsExported() && !reservedMethods[m.Name] && m.Type.NumOut() > 0
}

// requiredParams counts parameters that must be supplied: all of them but
// the receiver and a trailing variadic.
func requiredParams(t reflect.Type, m reflect.Method) int {
	n := m.Type.NumIn()
	if t.Kind() != reflect.Interface {
		n--
	}
	if m.Type.IsVariadic() {
		n--
	}
	return n
}
