// Package checkout holds minimal data objects documented only through
// explicit docs.
package checkout

type Order struct {
	ID       int
	Total    float64
	Customer *Customer
}

func (o *Order) GetId() int             { return o.ID }
func (o *Order) GetTotal() float64      { return o.Total }
func (o *Order) GetCustomer() *Customer { return o.Customer }

type Customer struct {
	Name string
}

func (c *Customer) GetName() string { return c.Name }
