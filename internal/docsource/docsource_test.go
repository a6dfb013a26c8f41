package docsource

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/broady/dataobject/reflection"
)

// writeModule creates a standalone module named test in a temp directory.
func writeModule(t *testing.T, files map[string]string) string {
	t.Helper()
	// Disable go.work so temp directories work as standalone modules
	t.Setenv("GOWORK", "off")
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module test\n\ngo 1.21\n"), 0o644))
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

const orderSource = `package data

import (
	"time"

	cat "test/catalog"
)

// Order is a placed order.
//
// Totals are in the store
// currency.
type Order struct {
	Created time.Time
	Product *cat.Product
}

// GetCustomer returns the buyer.
//dataobject:return Customer|null the buyer, null for guest orders
func (o *Order) GetCustomer() *Customer { return nil }

//dataobject:return cat.Product
func (o *Order) GetProduct() *cat.Product { return o.Product }

// helper has no doc contract.
func (o *Order) helper() {}

// Customer is a buyer.
type Customer struct{}

// GetName returns the name.
//dataobject:return string
func (Customer) GetName() string { return "" }

type (
	// Entity is stored.
	Entity interface {
		// GetId returns the id.
		//dataobject:return int
		GetId() int
	}
)
`

const catalogSource = `package catalog

// Product is sold.
type Product struct{}

// Find looks products up.
//dataobject:return Product[]
//dataobject:param int id
//dataobject:param string[] skus
func (Product) Find(id int, skus []any) []Product { return nil }
`

func TestLoadDir(t *testing.T) {
	dir := writeModule(t, map[string]string{
		"data/order.go":      orderSource,
		"catalog/product.go": catalogSource,
	})

	result, err := LoadDir("./...", dir)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"test/catalog", "test/data"}, result.Packages)
	assert.Equal(t, []string{"test/catalog.Product", "test/data.Customer", "test/data.Entity", "test/data.Order"}, result.Names())

	order := result.Types["test/data.Order"]
	assert.Equal(t, "Order is a placed order.", order.Summary)
	assert.Equal(t, "Totals are in the store\ncurrency.", order.Body)
	assert.Equal(t, map[string]string{"time": "time", "cat": "test/catalog"}, order.Uses)
	assert.Equal(t, reflection.Annotation{
		Returns:     "Customer|null",
		Description: "the buyer, null for guest orders",
		Summary:     "GetCustomer returns the buyer.",
	}, order.Methods["GetCustomer"])
	assert.Equal(t, "cat.Product", order.Methods["GetProduct"].Returns)
	assert.NotContains(t, order.Methods, "helper")

	assert.Equal(t, "string", result.Types["test/data.Customer"].Methods["GetName"].Returns)

	entity := result.Types["test/data.Entity"]
	assert.Equal(t, "Entity is stored.", entity.Summary)
	assert.Equal(t, reflection.Annotation{Returns: "int", Summary: "GetId returns the id."}, entity.Methods["GetId"])

	find := result.Types["test/catalog.Product"].Methods["Find"]
	assert.Equal(t, "Product[]", find.Returns)
	assert.Equal(t, []reflection.Param{{Name: "id", Type: "int"}, {Name: "skus", Type: "string[]"}}, find.Params)
}

func TestLoadDir_Errors(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		wantErr string
	}{
		{
			name: "unknown directive",
			source: `package data

type T struct{}

//dataobject:returns int
func (T) GetX() int { return 0 }
`,
			wantErr: "unknown directive //dataobject:returns",
		},
		{
			name: "return without type",
			source: `package data

type T struct{}

//dataobject:return
func (T) GetX() int { return 0 }
`,
			wantErr: "needs a type",
		},
		{
			name: "duplicate return",
			source: `package data

type T struct{}

//dataobject:return int
//dataobject:return string
func (T) GetX() int { return 0 }
`,
			wantErr: "duplicate //dataobject:return",
		},
		{
			name: "param without name",
			source: `package data

type T struct{}

//dataobject:param int
func (T) Find(id int) int { return 0 }
`,
			wantErr: "needs a type and a name",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writeModule(t, map[string]string{"data/t.go": tt.source})
			_, err := LoadDir("./data", dir)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadDir_NoPackages(t *testing.T) {
	dir := writeModule(t, map[string]string{"data/t.go": "package data\n"})
	_, err := LoadDir("./missing", dir)
	assert.Error(t, err)
}

func TestResult_Apply(t *testing.T) {
	result, err := Load("../sales/api/data")
	require.NoError(t, err)

	order, ok := result.Types["github.com/broady/dataobject/internal/sales/api/data.Order"]
	require.True(t, ok, "expected Order docs, got %v", result.Names())
	assert.Equal(t, "Order is a placed order.", order.Summary)
	assert.Equal(t, "github.com/broady/dataobject/reflection", order.Uses["reflection"])
	assert.Equal(t, "GetGrandTotal returns the sum of the row totals.", order.Methods["GetGrandTotal"].Summary)

	catalog := reflection.NewCatalog()
	name, err := catalog.Add(&undocumented{})
	require.NoError(t, err)

	docs := &Result{Types: map[string]reflection.TypeDoc{
		name:                  {Summary: "Loaded.", Methods: map[string]reflection.Annotation{"GetX": {Returns: "int"}}},
		"example.com/x.Other": {Summary: "Not registered."},
	}}
	assert.Equal(t, 1, docs.Apply(catalog))
	assert.Equal(t, "Loaded.", catalog.Doc(name).Summary)
	assert.Equal(t, "int", catalog.Doc(name).Methods["GetX"].Returns)
}

type undocumented struct{}

func (undocumented) GetX() int { return 1 }
