// Package sales is an example service exposing orders and customers as data
// objects.
package sales

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/broady/dataobject"
	"github.com/broady/dataobject/internal/sales/api/data"
)

// Coercer validates loosely typed values against declared types.
// *reflection.TypeProcessor implements it.
type Coercer interface {
	ProcessSimpleAndAnyType(value any, typ string) (any, error)
}

// attributeTypes declares the custom attributes an order accepts.
var attributeTypes = map[string]string{
	"gift_wrap":     "boolean",
	"gift_message":  "string",
	"priority":      "int",
	"delivery_date": "string",
	"tags":          "string[]",
}

// Product is a sellable item.
type Product struct {
	Sku   string
	Name  string
	Price float64
}

// Repository is an in-memory order store. It is safe for concurrent use.
type Repository struct {
	coercer Coercer
	now     func() time.Time

	mu        sync.RWMutex
	orders    map[int]*data.Order
	customers map[int]*data.Customer
	products  map[string]Product
	nextID    int
}

// NewRepository returns an empty repository.
func NewRepository(coercer Coercer) *Repository {
	return &Repository{
		coercer:   coercer,
		now:       time.Now,
		orders:    make(map[int]*data.Order),
		customers: make(map[int]*data.Customer),
		products:  make(map[string]Product),
		nextID:    1,
	}
}

// AddCustomer stores a customer.
func (r *Repository) AddCustomer(c *data.Customer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.customers[c.ID] = c
}

// AddProduct stores a product.
func (r *Repository) AddProduct(p Product) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[p.Sku] = p
}

// Seed fills the repository with demo data.
func (r *Repository) Seed() {
	r.AddCustomer(&data.Customer{
		ID:        1,
		Email:     "ada@example.com",
		Firstname: "Ada",
		Lastname:  "Lovelace",
		DefaultShipping: &data.Address{
			Street:    []string{"12 St James's Square"},
			City:      "London",
			Postcode:  "SW1Y 4JH",
			CountryID: "GB",
		},
		Subscribed: true,
	})
	r.AddCustomer(&data.Customer{ID: 2, Email: "grace@example.com", Firstname: "Grace", Lastname: "Hopper"})
	r.AddProduct(Product{Sku: "24-MB01", Name: "Joust Duffle Bag", Price: 34})
	r.AddProduct(Product{Sku: "24-WG02", Name: "Didi Sport Watch", Price: 92})
	r.AddProduct(Product{Sku: "MH01-XS-Black", Name: "Chaz Kangeroo Hoodie", Price: 52.5})
}

// Customer returns a customer by id.
func (r *Repository) Customer(ctx context.Context, id int) (*data.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.customers[id]
	if !ok {
		return nil, dataobject.Errorf(dataobject.CodeNotFound, "customer %d not found", id)
	}
	return c, nil
}

// Order returns an order by id.
func (r *Repository) Order(ctx context.Context, id int) (*data.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, dataobject.Errorf(dataobject.CodeNotFound, "order %d not found", id)
	}
	return o, nil
}

// Orders lists orders by id, optionally filtered by customer and status.
func (r *Repository) Orders(ctx context.Context, customerID int, status *data.Status, limit int) []*data.Order {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*data.Order
	for _, o := range r.orders {
		if customerID != 0 && (o.Customer == nil || o.Customer.ID != customerID) {
			continue
		}
		if status != nil && o.Status != *status {
			continue
		}
		out = append(out, o)
	}
	slices.SortFunc(out, func(a, b *data.Order) int { return a.ID - b.ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// LineInput is a requested order line.
type LineInput struct {
	Sku string
	Qty int
}

// Place creates a pending order. Custom attributes are validated against
// their declared types and stored converted.
func (r *Repository) Place(ctx context.Context, customerID int, lines []LineInput, attributes map[string]any, comment string) (*data.Order, error) {
	converted := make(map[string]any, len(attributes))
	for name, value := range attributes {
		typ, ok := attributeTypes[name]
		if !ok {
			return nil, dataobject.Errorf(dataobject.CodeInvalidArgument, "unknown custom attribute %q", name)
		}
		v, err := r.coercer.ProcessSimpleAndAnyType(value, typ)
		if err != nil {
			return nil, fmt.Errorf("custom attribute %s: %w", name, err)
		}
		converted[name] = v
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var customer *data.Customer
	if customerID != 0 {
		c, ok := r.customers[customerID]
		if !ok {
			return nil, dataobject.Errorf(dataobject.CodeNotFound, "customer %d not found", customerID)
		}
		customer = c
	}

	items := make([]*data.OrderItem, 0, len(lines))
	for _, line := range lines {
		p, ok := r.products[line.Sku]
		if !ok {
			return nil, dataobject.Errorf(dataobject.CodeNotFound, "product %q not found", line.Sku).
				WithDetail("sku", line.Sku)
		}
		items = append(items, &data.OrderItem{Sku: p.Sku, Name: p.Name, Qty: line.Qty, Price: p.Price})
	}

	id := r.nextID
	r.nextID++
	o := &data.Order{
		ID:          id,
		IncrementID: fmt.Sprintf("%09d", 100000000+id),
		Status:      data.StatusPending,
		Customer:    customer,
		Items:       items,
		Comment:     comment,
		CreatedAt:   r.now(),
	}
	if len(converted) > 0 {
		o.Attributes = converted
	}
	r.orders[id] = o
	return o, nil
}

// Cancel cancels a pending or processing order.
func (r *Repository) Cancel(ctx context.Context, id int) (*data.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, dataobject.Errorf(dataobject.CodeNotFound, "order %d not found", id)
	}
	switch o.Status {
	case data.StatusComplete, data.StatusCanceled:
		return nil, dataobject.Errorf(dataobject.CodeConflict, "order %d is %s", id, o.Status)
	}
	// Stored orders are shared with readers and never mutated.
	canceled := *o
	canceled.Status = data.StatusCanceled
	r.orders[id] = &canceled
	return &canceled, nil
}
