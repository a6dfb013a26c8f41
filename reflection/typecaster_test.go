package reflection

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type status int

func (s status) String() string {
	if s == 1 {
		return "paid"
	}
	return "pending"
}

func TestCastValueToType(t *testing.T) {
	c := NewTypeCaster(NewCatalog())
	tests := []struct {
		name  string
		value any
		typ   string
		want  any
	}{
		{"numeric string to int", "123", "int", 123},
		{"leading number to int", "12abc", "integer", 12},
		{"garbage to int", "abc", "int", 0},
		{"float to int", 12.9, "int", 12},
		{"bool to int", true, "int", 1},
		{"int to string", 42, "string", "42"},
		{"float to string", 12.5, "string", "12.5"},
		{"true to string", true, "string", "1"},
		{"false to string", false, "string", ""},
		{"stringer to string", status(1), "string", "paid"},
		{"string to float", "12.5", "float", 12.5},
		{"int to double", 3, "double", 3.0},
		{"empty string to bool", "", "boolean", false},
		{"zero string to bool", "0", "bool", false},
		{"false string to bool", "false", "boolean", true},
		{"int to bool", 2, "bool", true},
		{"unknown type", "x", "anyType", "x"},
		{"nil", nil, "int", nil},
		{"sequence passes through", []string{"a"}, "string", []string{"a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.CastValueToType(tt.value, tt.typ))
		})
	}
}

func TestCastNilPointer(t *testing.T) {
	c := NewTypeCaster(NewCatalog())
	var s *string
	assert.Nil(t, c.CastValueToType(s, "string"))

	v := "7"
	assert.Equal(t, 7, c.CastValueToType(&v, "int"))
}

func TestIsNumeric(t *testing.T) {
	for _, v := range []any{1, 1.5, "12", " 12 ", "-1.5e3", uint8(3)} {
		assert.True(t, isNumeric(v), "%#v", v)
	}
	for _, v := range []any{"", "abc", "12abc", "0x1A", true, nil, []int{1}} {
		assert.False(t, isNumeric(v), "%#v", v)
	}
}

func TestFilterBool(t *testing.T) {
	for _, v := range []any{"true", "TRUE", "1", "on", "yes", true, 1} {
		assert.True(t, filterBool(v), "%#v", v)
	}
	for _, v := range []any{"false", "0", "", "off", "no", "maybe", false, 0} {
		assert.False(t, filterBool(v), "%#v", v)
	}
}
