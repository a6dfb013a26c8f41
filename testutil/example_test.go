package testutil_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/broady/dataobject"
	"github.com/broady/dataobject/internal/sales/api/data"
	"github.com/broady/dataobject/reflection"
	"github.com/broady/dataobject/testutil"
)

type getCustomerRequest struct {
	ID int `json:"id" validate:"required"`
}

type greeting struct {
	Message string `json:"message"`
}

type greetRequest struct {
	Name string `json:"name" validate:"required"`
}

func newApp(t *testing.T) http.Handler {
	t.Helper()
	catalog := reflection.NewCatalog()
	if err := data.AddTo(catalog); err != nil {
		t.Fatal(err)
	}
	app := dataobject.NewApp(dataobject.NewDefaultSerializer(catalog))
	app.Service("Customers").Register("Get", dataobject.Query(func(ctx context.Context, req getCustomerRequest) (*data.Customer, error) {
		if req.ID != 1 {
			return nil, dataobject.Errorf(dataobject.CodeNotFound, "customer %d not found", req.ID)
		}
		return &data.Customer{ID: 1, Email: "roni_cost@example.com", Firstname: "Veronica", Lastname: "Costello"}, nil
	}))
	app.Service("Greeter").Register("Greet", dataobject.Exec(func(ctx context.Context, req *greetRequest) (*greeting, error) {
		return &greeting{Message: "Hello, " + req.Name}, nil
	}))
	return app.Handler()
}

// TestRequestBuilder demonstrates the fluent API for building requests.
func TestRequestBuilder(t *testing.T) {
	w := testutil.NewRequest().
		POST("/Greeter/Greet").
		WithJSON(&greetRequest{Name: "Alice"}).
		Serve(newApp(t))

	testutil.AssertStatus(t, w, http.StatusOK)
	testutil.AssertJSONResponse(t, w, &greeting{Message: "Hello, Alice"})
}

// TestQueryParameters demonstrates a query endpoint serializing a data object.
func TestQueryParameters(t *testing.T) {
	w := testutil.NewRequest().
		GET("/Customers/Get").
		WithQuery("id", "1").
		Serve(newApp(t))

	testutil.AssertStatus(t, w, http.StatusOK)
	testutil.AssertJSONResponse(t, w, map[string]any{
		"email":      "roni_cost@example.com",
		"firstname":  "Veronica",
		"id":         1,
		"lastname":   "Costello",
		"subscribed": false,
	})
}

// TestErrorResponse demonstrates checking error envelopes.
func TestErrorResponse(t *testing.T) {
	w := testutil.NewRequest().
		GET("/Customers/Get").
		WithQuery("id", "2").
		Serve(newApp(t))

	testutil.AssertStatus(t, w, http.StatusNotFound)
	errResp := testutil.AssertJSONError(t, w, "not_found")
	if errResp.Message != "customer 2 not found" {
		t.Errorf("unexpected message %q", errResp.Message)
	}
}

// TestValidationError demonstrates the details of validation failures.
func TestValidationError(t *testing.T) {
	w := testutil.NewRequest().
		POST("/Greeter/Greet").
		WithJSON(map[string]string{}).
		Serve(newApp(t))

	testutil.AssertStatus(t, w, http.StatusBadRequest)
	errResp := testutil.AssertJSONError(t, w, "invalid_argument")
	if errResp.Details["Name"] != "required" {
		t.Errorf("unexpected details %v", errResp.Details)
	}
}

// TestHeaders demonstrates asserting response headers.
func TestHeaders(t *testing.T) {
	w := testutil.NewRequest().
		Method(http.MethodDelete, "/Customers/Get").
		WithHeader("Authorization", "Bearer token").
		Serve(newApp(t))

	testutil.AssertStatus(t, w, http.StatusMethodNotAllowed)
	testutil.AssertHeader(t, w, "Allow", http.MethodGet)
}
