package reflection

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// NameFinder derives schema field names and descriptions from accessors.
type NameFinder struct {
	getter Getter
}

// NewNameFinder returns a NameFinder.
func NewNameFinder() *NameFinder {
	return &NameFinder{}
}

// FieldNameFromGetterName converts an accessor name into a field identifier:
// GetDefaultShipping => defaultShipping. Non-accessor names are kept whole.
// Only the first letter is lowered.
func (f *NameFinder) FieldNameFromGetterName(getterName string) string {
	fieldName := getterName
	if isGetter, name := f.getter.ParseMethodName(getterName); isGetter {
		fieldName = name
	}
	return lowerFirst(fieldName)
}

// FieldDescriptionFromGetterDescription turns an accessor summary into a
// field description by dropping its leading word, which is expected to be the
// verb or method name: "GetName returns the name." => "Returns the name.".
func (f *NameFinder) FieldDescriptionFromGetterDescription(shortDescription string) string {
	_, rest, found := strings.Cut(shortDescription, " ")
	if !found {
		return ""
	}
	return upperFirst(rest)
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
