package data

import (
	"fmt"
	"math"
	"time"

	"github.com/broady/dataobject/reflection"
)

// Status is the state of an order.
type Status int

const (
	StatusPending Status = iota
	StatusProcessing
	StatusComplete
	StatusCanceled
)

var statusNames = [...]string{"pending", "processing", "complete", "canceled"}

func (s Status) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// ParseStatus is the inverse of Status.String.
func ParseStatus(name string) (Status, bool) {
	for i, n := range statusNames {
		if n == name {
			return Status(i), true
		}
	}
	return 0, false
}

// OrderItem is a line of an order.
type OrderItem struct {
	Sku   string
	Name  string
	Qty   int
	Price float64
}

func (i *OrderItem) GetSku() string   { return i.Sku }
func (i *OrderItem) GetName() string  { return i.Name }
func (i *OrderItem) GetQty() int      { return i.Qty }
func (i *OrderItem) GetPrice() string { return fmt.Sprintf("%.2f", i.Price) }

// GetRowTotal returns the line total rounded to cents.
func (i *OrderItem) GetRowTotal() float64 {
	return math.Round(i.Price*float64(i.Qty)*100) / 100
}

func (*OrderItem) DescribeType() reflection.TypeDoc {
	return reflection.TypeDoc{
		Summary: "OrderItem is a line of an order.",
		Methods: map[string]reflection.Annotation{
			"GetSku":      {Returns: "string"},
			"GetName":     {Returns: "string"},
			"GetQty":      {Returns: "int"},
			"GetPrice":    {Returns: "float", Description: "Unit price."},
			"GetRowTotal": {Returns: "float", Summary: "GetRowTotal returns the line total rounded to cents."},
		},
	}
}

// Order is a placed order.
type Order struct {
	ID          int
	IncrementID string
	Status      Status
	Customer    *Customer
	Items       []*OrderItem
	Attributes  map[string]any
	Comment     string
	CreatedAt   time.Time
}

func (o *Order) GetId() int                          { return o.ID }
func (o *Order) GetIncrementId() string              { return o.IncrementID }
func (o *Order) GetStatus() Status                   { return o.Status }
func (o *Order) GetCustomer() *Customer              { return o.Customer }
func (o *Order) GetItems() []*OrderItem              { return o.Items }
func (o *Order) GetCustomAttributes() map[string]any { return o.Attributes }
func (o *Order) GetCreatedAt() string                { return o.CreatedAt.UTC().Format(time.RFC3339) }
func (o *Order) IsCanceled() bool                    { return o.Status == StatusCanceled }

func (o *Order) GetComment() *string {
	if o.Comment == "" {
		return nil
	}
	return &o.Comment
}

// GetGrandTotal returns the sum of the row totals.
func (o *Order) GetGrandTotal() float64 {
	var total float64
	for _, item := range o.Items {
		total += item.GetRowTotal()
	}
	return math.Round(total*100) / 100
}

func (*Order) DescribeType() reflection.TypeDoc {
	return reflection.TypeDoc{
		Summary: "Order is a placed order.",
		Body:    "Totals are in the store currency.",
		Methods: map[string]reflection.Annotation{
			"GetId":               {Returns: "int"},
			"GetIncrementId":      {Returns: "string", Description: "Human readable order number."},
			"GetStatus":           {Returns: "string"},
			"GetCustomer":         {Returns: "Customer|null", Summary: "GetCustomer returns the buyer, null for guest orders."},
			"GetItems":            {Returns: "OrderItem[]"},
			"GetCustomAttributes": {Returns: "mixed", Description: "Attributes supplied when the order was placed."},
			"GetCreatedAt":        {Returns: "string"},
			"IsCanceled":          {Returns: "bool"},
			"GetComment":          {Returns: "string|null"},
			"GetGrandTotal":       {Returns: "float"},
		},
	}
}
