// Package fixture holds data objects exercising the reflection package.
package fixture

import (
	"errors"

	"github.com/broady/dataobject/reflection"
)

// Entity is implemented by every persisted object.
type Entity interface {
	GetId() int
}

// EntityDoc documents Entity.
var EntityDoc = reflection.TypeDoc{
	Summary: "Entity is a persisted object.",
	Methods: map[string]reflection.Annotation{
		"GetId": {Returns: "int", Summary: "GetId returns the entity id."},
	},
}

type Order struct {
	ID       int
	Total    float64
	Customer *Customer
	Items    []*OrderItem
	Tags     []string
	Paid     bool
	Note     *string
	Extra    map[string]any
}

func (o *Order) GetId() int                     { return o.ID }
func (o *Order) GetTotal() float64              { return o.Total }
func (o *Order) GetCustomer() *Customer         { return o.Customer }
func (o *Order) GetItems() []*OrderItem         { return o.Items }
func (o *Order) GetTags() []string              { return o.Tags }
func (o *Order) IsPaid() bool                   { return o.Paid }
func (o *Order) GetExtra() map[string]any       { return o.Extra }
func (o *Order) GetNote() any                   { return o.Note }
func (o *Order) Reference(prefix string) string { return prefix }

func (*Order) DescribeType() reflection.TypeDoc {
	return reflection.TypeDoc{
		Summary: "Order is a placed order.",
		Body:    "Totals include tax.",
		Methods: map[string]reflection.Annotation{
			"GetId":       {Returns: "int", Summary: "GetId returns the order id."},
			"GetTotal":    {Returns: "float", Description: "Grand total."},
			"GetCustomer": {Returns: "Customer|null", Summary: "GetCustomer returns the buyer."},
			"GetItems":    {Returns: "OrderItem[]"},
			"GetTags":     {Returns: "string[]"},
			"IsPaid":      {Returns: "bool"},
			"GetExtra":    {Returns: "mixed"},
			"GetNote":     {Returns: "string|null"},
			"Reference":   {Returns: "string", Params: []reflection.Param{{Name: "prefix", Type: "string"}}},
		},
	}
}

type Customer struct {
	Name     string
	Referrer *Customer
	Address  Address
}

func (c *Customer) GetName() string        { return c.Name }
func (c *Customer) GetReferrer() *Customer { return c.Referrer }
func (c *Customer) GetAddress() Address    { return c.Address }

func (*Customer) DescribeType() reflection.TypeDoc {
	return reflection.TypeDoc{
		Summary: "Customer places orders.",
		Methods: map[string]reflection.Annotation{
			"GetName":     {Returns: "string"},
			"GetReferrer": {Returns: "Customer|null", Description: "Customer who referred this one."},
			"GetAddress":  {Returns: "Address"},
		},
	}
}

type Address struct {
	Street   string
	Postcode string
}

func (a Address) GetStreet() string   { return a.Street }
func (a Address) GetPostcode() string { return a.Postcode }

func (Address) DescribeType() reflection.TypeDoc {
	return reflection.TypeDoc{
		Methods: map[string]reflection.Annotation{
			"GetStreet":   {Returns: "string"},
			"GetPostcode": {Returns: "string"},
		},
	}
}

type OrderItem struct {
	Sku string
	Qty string
}

func (i *OrderItem) GetSku() string { return i.Sku }

// GetQty returns the raw quantity, cast to int on output.
func (i *OrderItem) GetQty() string { return i.Qty }

func (*OrderItem) DescribeType() reflection.TypeDoc {
	return reflection.TypeDoc{
		Methods: map[string]reflection.Annotation{
			"GetSku": {Returns: "string"},
			"GetQty": {Returns: "int"},
		},
	}
}

// Product inherits its GetId annotation from Entity.
type Product struct {
	ID    int
	Title string
}

func (p *Product) GetId() int       { return p.ID }
func (p *Product) GetTitle() string { return p.Title }

func (*Product) DescribeType() reflection.TypeDoc {
	return reflection.TypeDoc{
		Methods: map[string]reflection.Annotation{
			"GetTitle": {Returns: "string"},
		},
	}
}

// Undocumented has an accessor without a declared return.
type Undocumented struct{}

func (Undocumented) GetValue() string { return "" }

// Node links to another node and may form a cycle.
type Node struct {
	Name string
	Next *Node
}

func (n *Node) GetName() string { return n.Name }
func (n *Node) GetNext() *Node  { return n.Next }

func (*Node) DescribeType() reflection.TypeDoc {
	return reflection.TypeDoc{
		Methods: map[string]reflection.Annotation{
			"GetName": {Returns: "string"},
			"GetNext": {Returns: "Node|null"},
		},
	}
}

// ErrUnavailable is returned by Flaky.GetValue.
var ErrUnavailable = errors.New("unavailable")

// Flaky has an accessor that fails.
type Flaky struct{}

func (Flaky) GetValue() (string, error) { return "", ErrUnavailable }

func (Flaky) DescribeType() reflection.TypeDoc {
	return reflection.TypeDoc{
		Methods: map[string]reflection.Annotation{
			"GetValue": {Returns: "string"},
		},
	}
}

// Service exercises parameter metadata.
type Service struct{}

func (Service) Find(id int, filters []any, opts ...string) (*Order, error) { return nil, nil }
func (Service) Search(query any) []*Order                                  { return nil }
func (Service) Lookup(tags map[string]string) []*Order                     { return nil }

func (Service) DescribeType() reflection.TypeDoc {
	return reflection.TypeDoc{
		Methods: map[string]reflection.Annotation{
			"Find": {
				Returns: "Order",
				Params: []reflection.Param{
					{Name: "id", Type: "int"},
					{Name: "filters", Type: "string"},
					{Name: "opts", Type: "string[]"},
				},
			},
			"Search": {Returns: "Order[]", Params: []reflection.Param{{Name: "query", Type: "null|string"}}},
			"Lookup": {Returns: "Order[]"},
		},
	}
}
