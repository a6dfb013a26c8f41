package dataobject

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/broady/dataobject/internal/sales/api/data"
	"github.com/broady/dataobject/reflection"
)

func TestSerializer_SerializeOrder(t *testing.T) {
	s := newTestSerializer(t)

	out, err := s.Serialize(sampleOrder())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := json.Marshal(out)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	want := `{"created_at":"2024-05-01T12:00:00Z",` +
		`"custom_attributes":null,` +
		`"customer":{"email":"ada@example.com","firstname":"Ada","id":7,"lastname":"Lovelace","subscribed":false},` +
		`"grand_total":68,` +
		`"id":1,"increment_id":"100000001",` +
		`"items":[{"name":"Joust Duffle Bag","price":34,"qty":2,"row_total":68,"sku":"24-MB01"}],` +
		`"status":"processing","canceled":false}`
	if string(got) != want {
		t.Errorf("unexpected output\n got: %s\nwant: %s", got, want)
	}
}

func TestSerializer_SerializeSlices(t *testing.T) {
	s := newTestSerializer(t)

	out, err := s.Serialize([]*data.Order{sampleOrder(), sampleOrder()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	list, ok := out.([]any)
	if !ok || len(list) != 2 {
		t.Fatalf("expected 2 serialized orders, got %#v", out)
	}
	if _, ok := list[0].(*reflection.Data); !ok {
		t.Errorf("expected *reflection.Data element, got %T", list[0])
	}

	var none []*data.Order
	out, err = s.Serialize(none)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if list, ok := out.([]any); !ok || len(list) != 0 {
		t.Errorf("expected empty list, got %#v", out)
	}
}

func TestSerializer_PassesThroughUnregistered(t *testing.T) {
	s := newTestSerializer(t)

	type plain struct{ Name string }
	tests := []any{plain{Name: "x"}, "text", 5, []string{"a"}, map[string]int{"a": 1}}
	for _, v := range tests {
		out, err := s.Serialize(v)
		if err != nil {
			t.Errorf("Serialize(%#v): unexpected error: %v", v, err)
		}
		if !reflect.DeepEqual(out, v) {
			t.Errorf("Serialize(%#v) = %#v, want unchanged", v, out)
		}
	}

	var order *data.Order
	out, err := s.Serialize(order)
	if err != nil || out != nil {
		t.Errorf("Serialize(nil order) = %#v, %v", out, err)
	}
}

func TestSerializer_RegisterValidatesContracts(t *testing.T) {
	s := NewDefaultSerializer(reflection.NewCatalog())

	type undocumented struct{}
	err := s.Register(&undocumented{})
	if !errors.Is(err, reflection.ErrInvalidTypeName) {
		t.Errorf("expected ErrInvalidTypeName, got %v", err)
	}
}

func TestSerializer_Types(t *testing.T) {
	s := newTestSerializer(t)

	var names []string
	for _, ct := range s.Types() {
		names = append(names, ct.Name)
	}
	want := []string{"SalesDataAddress", "SalesDataCustomer", "SalesDataOrderItem", "SalesDataOrder"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("types = %v, want %v", names, want)
	}

	customer, ok := s.Type("SalesDataCustomer")
	if !ok {
		t.Fatal("expected SalesDataCustomer")
	}
	id, ok := customer.Parameter("id")
	if !ok || id.Type != "int" || id.Documentation != "Returns the entity id." {
		t.Errorf("unexpected id parameter: %+v", id)
	}
	shipping, _ := customer.Parameter("defaultShipping")
	if shipping.Type != "SalesDataAddress" || shipping.Required {
		t.Errorf("unexpected defaultShipping parameter: %+v", shipping)
	}

	name, ok := s.TypeName(reflect.TypeFor[[]*data.Order]())
	if !ok || name != "SalesDataOrder" {
		t.Errorf("TypeName = %q, %v", name, ok)
	}
}
