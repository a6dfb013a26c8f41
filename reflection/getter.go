package reflection

import "strings"

// Accessor prefixes, checked in this order.
const (
	IsMethodPrefix  = "is"
	HasMethodPrefix = "has"
	GetterPrefix    = "get"
)

// Getter classifies method names as accessors.
type Getter struct{}

// ParseMethodName reports whether methodName is an accessor and returns the
// property name with the prefix removed. The prefix match ignores the case of
// its first letter so exported Go methods (GetTotal) classify the same way as
// getTotal.
func (Getter) ParseMethodName(methodName string) (isGetter bool, nameWithoutPrefix string) {
	if hasPrefixFold(methodName, IsMethodPrefix) {
		return true, methodName[2:]
	}
	if hasPrefixFold(methodName, HasMethodPrefix) || hasPrefixFold(methodName, GetterPrefix) {
		return true, methodName[3:]
	}
	return false, ""
}

func hasPrefixFold(s, prefix string) bool {
	if len(s) < len(prefix) {
		return false
	}
	return strings.HasPrefix(s, prefix) || strings.HasPrefix(s, strings.ToUpper(prefix[:1])+prefix[1:])
}
