package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestNewProduct_Validation(t *testing.T) {
	_, err := NewProduct("p", " ", decimal.NewFromInt(350), 10)
	require.ErrorIs(t, err, ErrEmptyName)
	_, err = NewProduct("p", "OPC 43", decimal.Zero, 10)
	require.ErrorIs(t, err, ErrInvalidPrice)
	_, err = NewProduct("p", "OPC 43", decimal.NewFromInt(350), -1)
	require.ErrorIs(t, err, ErrNegativeStock)

	p, err := NewProduct("p", "OPC 43", decimal.RequireFromString("350.005"), 10)
	require.NoError(t, err)
	require.Equal(t, "350.01", p.Price.StringFixed(2))
}

func TestReserveAndRestock(t *testing.T) {
	p, err := NewProduct("p", "OPC 43", decimal.NewFromInt(350), 100)
	require.NoError(t, err)

	require.ErrorIs(t, p.Reserve(101), ErrInsufficientStock)
	require.Equal(t, 100, p.Stock)
	require.NoError(t, p.Reserve(100))
	require.Equal(t, 0, p.Stock)
	require.ErrorIs(t, p.Reserve(0), ErrInvalidQuantity)

	require.NoError(t, p.Restock(40))
	require.Equal(t, 40, p.Stock)
}

func TestTagsAndClone(t *testing.T) {
	p, err := NewProduct("p", "PPC", decimal.NewFromInt(340), 10)
	require.NoError(t, err)
	p.SetTags([]string{"RCC", "plastering", "rcc", " "})
	p.SetSpecifications(map[string]string{"fineness": "300 m2/kg"})

	require.Equal(t, []string{"plastering", "rcc"}, p.Tags)
	require.True(t, p.HasTag("Rcc"))
	require.False(t, p.HasTag("masonry"))

	clone := p.Clone()
	clone.Tags[0] = "changed"
	clone.Specifications["fineness"] = "changed"
	require.Equal(t, "plastering", p.Tags[0])
	require.Equal(t, "300 m2/kg", p.Specifications["fineness"])
}
