package sales

import (
	"context"

	"github.com/broady/dataobject"
	"github.com/broady/dataobject/internal/sales/api/data"
)

type GetOrderRequest struct {
	ID int `json:"id" validate:"required,gt=0"`
}

type ListOrdersRequest struct {
	CustomerID int    `json:"customer_id" validate:"gte=0"`
	Status     string `json:"status" validate:"omitempty,oneof=pending processing complete canceled"`
	Limit      int    `json:"limit" validate:"gte=0,lte=100"`
}

type OrderLine struct {
	Sku string `json:"sku" validate:"required"`
	Qty int    `json:"qty" validate:"required,gt=0"`
}

type PlaceOrderRequest struct {
	CustomerID       int            `json:"customer_id" validate:"gte=0"`
	Items            []OrderLine    `json:"items" validate:"required,min=1,dive"`
	CustomAttributes map[string]any `json:"custom_attributes"`
	Comment          string         `json:"comment" validate:"max=255"`
}

type CancelOrderRequest struct {
	ID int `json:"id" validate:"required,gt=0"`
}

type GetCustomerRequest struct {
	ID int `json:"id" validate:"required,gt=0"`
}

// Handlers adapts a Repository to endpoint functions.
type Handlers struct {
	repo *Repository
}

func NewHandlers(repo *Repository) *Handlers {
	return &Handlers{repo: repo}
}

func (h *Handlers) GetOrder(ctx context.Context, req *GetOrderRequest) (*data.Order, error) {
	return h.repo.Order(ctx, req.ID)
}

func (h *Handlers) ListOrders(ctx context.Context, req *ListOrdersRequest) ([]*data.Order, error) {
	var status *data.Status
	if req.Status != "" {
		s, _ := data.ParseStatus(req.Status)
		status = &s
	}
	return h.repo.Orders(ctx, req.CustomerID, status, req.Limit), nil
}

func (h *Handlers) PlaceOrder(ctx context.Context, req *PlaceOrderRequest) (*data.Order, error) {
	lines := make([]LineInput, len(req.Items))
	for i, item := range req.Items {
		lines[i] = LineInput{Sku: item.Sku, Qty: item.Qty}
	}
	return h.repo.Place(ctx, req.CustomerID, lines, req.CustomAttributes, req.Comment)
}

func (h *Handlers) CancelOrder(ctx context.Context, req *CancelOrderRequest) (*data.Order, error) {
	return h.repo.Cancel(ctx, req.ID)
}

func (h *Handlers) GetCustomer(ctx context.Context, req *GetCustomerRequest) (*data.Customer, error) {
	return h.repo.Customer(ctx, req.ID)
}

// Register mounts the Orders and Customers services on app.
func Register(app *dataobject.App, h *Handlers) {
	orders := app.Service("Orders")
	orders.Register("Get", dataobject.Query(h.GetOrder))
	orders.Register("List", dataobject.Query(h.ListOrders))
	orders.Register("Place", dataobject.Exec(h.PlaceOrder).WithStatus(201))
	orders.Register("Cancel", dataobject.Exec(h.CancelOrder))

	customers := app.Service("Customers")
	customers.Register("Get", dataobject.Query(h.GetCustomer))
}
