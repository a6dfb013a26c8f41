package reflection

import (
	"regexp"
	"strings"
)

var camelBoundary = regexp.MustCompile(`(.)([A-Z])`)

// FieldNamer determines the keys used in output mappings.
type FieldNamer struct {
	getter Getter
}

// NewFieldNamer returns a FieldNamer.
func NewFieldNamer() *FieldNamer {
	return &FieldNamer{}
}

// FieldNameForMethodName converts an accessor name into a data field key.
// It returns "" for methods that are not accessors.
func (n *FieldNamer) FieldNameForMethodName(methodName string) string {
	isGetter, name := n.getter.ParseMethodName(methodName)
	if !isGetter {
		return ""
	}
	return CamelCaseToSnakeCase(name)
}

// CamelCaseToSnakeCase converts a CamelCase property name into a snake_case
// key, for example DefaultShipping => default_shipping, Postcode => postcode.
//
// Matches do not overlap, so runs of capitals split pairwise: ID => i_d,
// URLPath => u_rl_path. Consumers rely on this exact transform.
func CamelCaseToSnakeCase(name string) string {
	return strings.ToLower(camelBoundary.ReplaceAllString(name, "${1}_${2}"))
}
