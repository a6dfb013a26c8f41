package data

import "github.com/broady/dataobject/reflection"

// Customer is a registered buyer.
type Customer struct {
	ID              int
	Email           string
	Firstname       string
	Lastname        string
	DefaultShipping *Address
	Subscribed      bool
}

func (c *Customer) GetId() int                   { return c.ID }
func (c *Customer) GetEmail() string             { return c.Email }
func (c *Customer) GetFirstname() string         { return c.Firstname }
func (c *Customer) GetLastname() string          { return c.Lastname }
func (c *Customer) GetDefaultShipping() *Address { return c.DefaultShipping }
func (c *Customer) IsSubscribed() bool           { return c.Subscribed }

func (*Customer) DescribeType() reflection.TypeDoc {
	return reflection.TypeDoc{
		Summary: "Customer is a registered buyer.",
		Methods: map[string]reflection.Annotation{
			"GetEmail":           {Returns: "string"},
			"GetFirstname":       {Returns: "string"},
			"GetLastname":        {Returns: "string"},
			"GetDefaultShipping": {Returns: "Address|null", Summary: "GetDefaultShipping returns the address orders ship to unless told otherwise."},
			"IsSubscribed":       {Returns: "bool", Description: "Whether the customer receives the newsletter."},
		},
	}
}
