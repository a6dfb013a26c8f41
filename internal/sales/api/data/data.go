// Package data holds the data objects of the sales service.
//
// Every accessor declares its contract in DescribeType. Doc comments are
// picked up as well when docs are loaded from source.
package data

import "github.com/broady/dataobject/reflection"

// Entity is implemented by every stored object.
type Entity interface {
	// GetId returns the entity id.
	GetId() int
}

// EntityDoc documents Entity. Implementations inherit its annotations.
var EntityDoc = reflection.TypeDoc{
	Summary: "Entity is implemented by every stored object.",
	Methods: map[string]reflection.Annotation{
		"GetId": {Returns: "int", Summary: "GetId returns the entity id."},
	},
}

// Types returns a sample of every data object type, interfaces first.
func Types() []any {
	return []any{
		(*Entity)(nil),
		&Address{},
		&Customer{},
		&OrderItem{},
		&Order{},
	}
}

// AddTo registers Entity with its docs and every data object in c.
func AddTo(c *reflection.Catalog) error {
	if _, err := c.Add((*Entity)(nil), EntityDoc); err != nil {
		return err
	}
	for _, sample := range Types()[1:] {
		if _, err := c.Add(sample); err != nil {
			return err
		}
	}
	return nil
}
