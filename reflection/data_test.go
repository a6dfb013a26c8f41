package reflection

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataKeepsInsertionOrder(t *testing.T) {
	nested := NewData()
	nested.Set("name", "Ada")

	d := NewData()
	d.Set("total", 12.5)
	d.Set("id", 5)
	d.Set("customer", nested)
	d.Set("items", []any{nested})
	d.Set("total", 13.0)

	assert.Equal(t, []string{"total", "id", "customer", "items"}, d.Keys())
	assert.Equal(t, 4, d.Len())

	b, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `{"total":13,"id":5,"customer":{"name":"Ada"},"items":[{"name":"Ada"}]}`, string(b))

	assert.Equal(t, map[string]any{
		"total":    13.0,
		"id":       5,
		"customer": map[string]any{"name": "Ada"},
		"items":    []any{map[string]any{"name": "Ada"}},
	}, d.ToMap())
}

func TestDataEmpty(t *testing.T) {
	b, err := json.Marshal(NewData())
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(b))
}
