package reflection_test

import (
	"reflect"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/broady/dataobject/reflection"
	"github.com/broady/dataobject/reflection/internal/shop/api/checkout"
	"github.com/broady/dataobject/reflection/internal/shop/api/fixture"
)

const (
	fixturePkg  = "github.com/broady/dataobject/reflection/internal/shop/api/fixture"
	checkoutPkg = "github.com/broady/dataobject/reflection/internal/shop/api/checkout"
)

// newFixtureCatalog registers every type of the fixture package.
func newFixtureCatalog(t *testing.T) *reflection.Catalog {
	t.Helper()
	c := reflection.NewCatalog()
	_, err := c.Add((*fixture.Entity)(nil), fixture.EntityDoc)
	require.NoError(t, err)
	c.MustAdd(
		&fixture.Order{},
		&fixture.Customer{},
		fixture.Address{},
		&fixture.OrderItem{},
		&fixture.Product{},
		fixture.Undocumented{},
		&fixture.Node{},
		fixture.Flaky{},
		fixture.Service{},
	)
	return c
}

// newCheckoutCatalog registers the checkout types with customerReturns as
// the declared return of Order.GetCustomer.
func newCheckoutCatalog(t *testing.T, customerReturns string) *reflection.Catalog {
	t.Helper()
	c := reflection.NewCatalog()
	_, err := c.Add(&checkout.Order{}, reflection.TypeDoc{
		Summary: "Order is a placed order.",
		Methods: map[string]reflection.Annotation{
			"GetId":       {Returns: "int"},
			"GetTotal":    {Returns: "float"},
			"GetCustomer": {Returns: customerReturns},
		},
	})
	require.NoError(t, err)
	_, err = c.Add(&checkout.Customer{}, reflection.TypeDoc{
		Methods: map[string]reflection.Annotation{
			"GetName": {Returns: "string"},
		},
	})
	require.NoError(t, err)
	return c
}

type engine struct {
	source    reflection.Source
	types     *reflection.TypeProcessor
	methods   *reflection.MethodsMap
	processor *reflection.DataObjectProcessor
}

func newEngine(source reflection.Source) *engine {
	types := reflection.NewTypeProcessor(source, reflection.NewNameFinder())
	methods := reflection.NewMethodsMap(types, reflection.NewFieldNamer())
	return &engine{
		source:    source,
		types:     types,
		methods:   methods,
		processor: reflection.NewDataObjectProcessor(methods, reflection.NewTypeCaster(source), reflection.NewFieldNamer()),
	}
}

// countingSource counts lookups made through it.
type countingSource struct {
	reflection.Source

	mu    sync.Mutex
	calls int
}

func (s *countingSource) count() {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
}

func (s *countingSource) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func (s *countingSource) Type(name string) (reflect.Type, bool) {
	s.count()
	return s.Source.Type(name)
}

func (s *countingSource) Doc(name string) reflection.TypeDoc {
	s.count()
	return s.Source.Doc(name)
}

func (s *countingSource) Interfaces(name string) []string {
	s.count()
	return s.Source.Interfaces(name)
}
