package reflection_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/broady/dataobject/reflection"
	"github.com/broady/dataobject/reflection/internal/shop/api/checkout"
	"github.com/broady/dataobject/reflection/internal/shop/api/fixture"
)

func marshal(t *testing.T, d *reflection.Data) string {
	t.Helper()
	b, err := json.Marshal(d)
	require.NoError(t, err)
	return string(b)
}

func TestBuildOutputDataArrayNullableField(t *testing.T) {
	tests := []struct {
		name    string
		returns string
		order   *checkout.Order
		want    string
	}{
		{
			name:    "nullable and null",
			returns: "Customer|null",
			order:   &checkout.Order{ID: 5, Total: 12.5},
			want:    `{"id":5,"total":12.5}`,
		},
		{
			name:    "required and null",
			returns: "Customer",
			order:   &checkout.Order{ID: 5, Total: 12.5},
			want:    `{"customer":null,"id":5,"total":12.5}`,
		},
		{
			name:    "nullable and set",
			returns: "Customer|null",
			order:   &checkout.Order{ID: 5, Total: 12.5, Customer: &checkout.Customer{Name: "Ada"}},
			want:    `{"customer":{"name":"Ada"},"id":5,"total":12.5}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEngine(newCheckoutCatalog(t, tt.returns))
			data, err := e.processor.BuildOutputDataArray(tt.order, checkoutPkg+".Order")
			require.NoError(t, err)
			assert.Equal(t, tt.want, marshal(t, data))
		})
	}
}

func TestBuildOutputDataArrayNested(t *testing.T) {
	e := newEngine(newFixtureCatalog(t))
	order := &fixture.Order{
		ID:    7,
		Total: 20,
		Customer: &fixture.Customer{
			Name:    "Ada",
			Address: fixture.Address{Street: "Main", Postcode: "123"},
		},
		Items: []*fixture.OrderItem{
			{Sku: "A", Qty: "2"},
			{Sku: "B", Qty: "x"},
		},
		Tags:  []string{"gift"},
		Paid:  true,
		Extra: map[string]any{"k": 1},
	}

	data, err := e.processor.BuildOutputDataArray(order, fixturePkg+".Order")
	require.NoError(t, err)
	assert.Equal(t, []string{"customer", "extra", "id", "items", "tags", "total", "paid"}, data.Keys())
	assert.Equal(t,
		`{"customer":{"address":{"postcode":"123","street":"Main"},"name":"Ada"},`+
			`"extra":{"k":1},"id":7,`+
			`"items":[{"qty":2,"sku":"A"},{"qty":0,"sku":"B"}],`+
			`"tags":["gift"],"total":20,"paid":true}`,
		marshal(t, data))

	items, ok := data.Get("items")
	require.True(t, ok)
	for _, item := range items.([]any) {
		nested, ok := item.(*reflection.Data)
		require.True(t, ok)
		assert.Equal(t, []string{"qty", "sku"}, nested.Keys())
	}

	// Serializing again yields the same keys in the same order.
	again, err := e.processor.BuildOutputDataArray(order, fixturePkg+".Order")
	require.NoError(t, err)
	assert.Equal(t, data.Keys(), again.Keys())
}

func TestBuildOutputDataArrayAnyTypeUsesRegisteredType(t *testing.T) {
	e := newEngine(newFixtureCatalog(t))
	order := &fixture.Order{Extra: map[string]any{"buyer": &fixture.Customer{Name: "Bo"}}}

	data, err := e.processor.BuildOutputDataArray(order, fixturePkg+".Order")
	require.NoError(t, err)
	extra, ok := data.Get("extra")
	require.True(t, ok)
	b, err := json.Marshal(extra)
	require.NoError(t, err)
	assert.JSONEq(t, `{"buyer":{"address":{"postcode":"","street":""},"name":"Bo"}}`, string(b))
}

func TestBuildOutputDataArrayStructValue(t *testing.T) {
	e := newEngine(newFixtureCatalog(t))
	data, err := e.processor.BuildOutputDataArray(fixture.Address{Street: "Main", Postcode: "123"}, fixturePkg+".Address")
	require.NoError(t, err)
	assert.Equal(t, `{"postcode":"123","street":"Main"}`, marshal(t, data))
}

func TestBuildOutputDataArrayInheritedAnnotation(t *testing.T) {
	e := newEngine(newFixtureCatalog(t))
	data, err := e.processor.BuildOutputDataArray(&fixture.Product{ID: 1, Title: "Pen"}, fixturePkg+".Product")
	require.NoError(t, err)
	assert.Equal(t, `{"id":1,"title":"Pen"}`, marshal(t, data))
}

func TestBuildOutputDataArrayCycle(t *testing.T) {
	e := newEngine(newFixtureCatalog(t))
	a := &fixture.Node{Name: "a"}
	b := &fixture.Node{Name: "b", Next: a}
	a.Next = b

	_, err := e.processor.BuildOutputDataArray(a, fixturePkg+".Node")
	assert.ErrorIs(t, err, reflection.ErrCyclicReference)

	self := &fixture.Node{Name: "self"}
	self.Next = self
	_, err = e.processor.BuildOutputDataArray(self, fixturePkg+".Node")
	assert.ErrorIs(t, err, reflection.ErrCyclicReference)
}

func TestBuildOutputDataArraySharedReference(t *testing.T) {
	e := newEngine(newFixtureCatalog(t))
	item := &fixture.OrderItem{Sku: "A", Qty: "1"}
	order := &fixture.Order{Items: []*fixture.OrderItem{item, item}}

	data, err := e.processor.BuildOutputDataArray(order, fixturePkg+".Order")
	require.NoError(t, err)
	items, _ := data.Get("items")
	assert.Len(t, items, 2)
}

func TestBuildOutputDataArrayErrors(t *testing.T) {
	e := newEngine(newFixtureCatalog(t))

	_, err := e.processor.BuildOutputDataArray(fixture.Flaky{}, fixturePkg+".Flaky")
	assert.ErrorIs(t, err, fixture.ErrUnavailable)

	_, err = e.processor.BuildOutputDataArray(fixture.Undocumented{}, fixturePkg+".Undocumented")
	assert.ErrorIs(t, err, reflection.ErrMissingReturnAnnotation)

	var order *fixture.Order
	_, err = e.processor.BuildOutputDataArray(order, fixturePkg+".Order")
	assert.ErrorIs(t, err, reflection.ErrUnresolvableType)

	_, err = e.processor.BuildOutputDataArray(&fixture.Product{}, fixturePkg+".Order")
	assert.ErrorIs(t, err, reflection.ErrUnresolvableType)
}
