package reflection

import (
	"strings"
)

// Annotation is the declared contract of a single method.
type Annotation struct {
	// Returns is the declared return type list, "|" separated, e.g.
	// "Customer|null" or "OrderItem[]". A "null" entry marks the value
	// optional.
	Returns string

	// Description documents the returned value.
	Description string

	// Summary is the method's short description, e.g. "GetName returns
	// the customer name.". It backs the field description when Description
	// is empty.
	Summary string

	// Params declares the method parameters in order.
	Params []Param
}

// Param is the declared contract of a method parameter.
type Param struct {
	Name string
	// Type is a "|" separated type list. The first entry must not be null.
	Type string
}

// ReturnTypes splits Returns into its trimmed alternatives.
func (a Annotation) ReturnTypes() []string {
	return splitTypes(a.Returns)
}

// TypeDoc documents a registered type and its methods.
type TypeDoc struct {
	// Summary is the short description.
	Summary string

	// Body is the long description.
	Body string

	// Methods maps method names to their annotations.
	Methods map[string]Annotation

	// Uses maps short package aliases to import paths, for resolving
	// references such as "data.Customer".
	Uses map[string]string
}

// Describer is implemented by data objects that document themselves. The
// method is called once on a zero value when the type is registered.
type Describer interface {
	DescribeType() TypeDoc
}

// Description joins the short and long descriptions into a single line.
func (d TypeDoc) Description() string {
	description := strings.TrimRight(d.Summary, " \t\r\n")
	body := strings.NewReplacer("\n", "", "\r", "").Replace(d.Body)
	if body != "" && description != "" {
		description += " "
	}
	return description + strings.TrimLeft(body, " \t")
}

// merge fills whatever d lacks from other. Entries already present in d win.
func (d TypeDoc) merge(other TypeDoc) TypeDoc {
	if d.Summary == "" {
		d.Summary = other.Summary
	}
	if d.Body == "" {
		d.Body = other.Body
	}
	if len(other.Methods) > 0 {
		methods := make(map[string]Annotation, len(d.Methods)+len(other.Methods))
		for name, a := range other.Methods {
			methods[name] = a
		}
		for name, a := range d.Methods {
			if prev, ok := methods[name]; ok {
				a = a.merge(prev)
			}
			methods[name] = a
		}
		d.Methods = methods
	}
	if len(other.Uses) > 0 {
		uses := make(map[string]string, len(d.Uses)+len(other.Uses))
		for alias, path := range other.Uses {
			uses[alias] = path
		}
		for alias, path := range d.Uses {
			uses[alias] = path
		}
		d.Uses = uses
	}
	return d
}

func (a Annotation) merge(other Annotation) Annotation {
	if a.Returns == "" {
		a.Returns = other.Returns
		if a.Description == "" {
			a.Description = other.Description
		}
	}
	if a.Summary == "" {
		a.Summary = other.Summary
	}
	if len(a.Params) == 0 {
		a.Params = other.Params
	}
	return a
}

func splitTypes(list string) []string {
	if strings.TrimSpace(list) == "" {
		return nil
	}
	parts := strings.Split(list, "|")
	types := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			types = append(types, p)
		}
	}
	return types
}
