package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddItemMergesExistingLine(t *testing.T) {
	cart := NewCart("user-1")

	cart.AddItem("F1", 2, decimal.NewFromFloat(10.00))
	cart.AddItem("F1", 3, decimal.NewFromFloat(12.50))

	require.Len(t, cart.Items, 1)
	assert.Equal(t, int32(5), cart.Items[0].Quantity)
	// Merging refreshes the price snapshot to the current one.
	assert.True(t, cart.Items[0].UnitPrice.Equal(decimal.NewFromFloat(12.50)))
}

func TestAddItemZeroQuantityRemoves(t *testing.T) {
	cart := NewCart("user-1")
	cart.AddItem("F1", 2, decimal.NewFromFloat(10.00))

	cart.AddItem("F1", 0, decimal.NewFromFloat(10.00))
	assert.Empty(t, cart.Items)
}

func TestUpdateItem(t *testing.T) {
	cart := NewCart("user-1")
	cart.AddItem("F1", 2, decimal.NewFromFloat(10.00))

	assert.True(t, cart.UpdateItem("F1", 7))
	assert.Equal(t, int32(7), cart.Items[0].Quantity)

	assert.True(t, cart.UpdateItem("F1", 0))
	assert.Empty(t, cart.Items)

	assert.False(t, cart.UpdateItem("F404", 1))
}

func TestRemoveItem(t *testing.T) {
	cart := NewCart("user-1")
	cart.AddItem("F1", 1, decimal.NewFromFloat(5.00))
	cart.AddItem("F2", 1, decimal.NewFromFloat(6.00))

	assert.True(t, cart.RemoveItem("F1"))
	require.Len(t, cart.Items, 1)
	assert.Equal(t, "F2", cart.Items[0].FoodID)

	assert.False(t, cart.RemoveItem("F1"))
}

func TestCartTotals(t *testing.T) {
	cart := NewCart("user-1")
	assert.True(t, cart.IsEmpty())
	assert.Equal(t, int32(0), cart.ItemCount())
	assert.True(t, cart.Total().IsZero())

	cart.AddItem("F1", 2, decimal.NewFromFloat(19.99))
	cart.AddItem("F2", 3, decimal.NewFromFloat(4.50))

	assert.False(t, cart.IsEmpty())
	assert.Equal(t, int32(5), cart.ItemCount())
	assert.True(t, cart.Total().Equal(decimal.NewFromFloat(53.48)), "got %s", cart.Total())
}

func TestClear(t *testing.T) {
	cart := NewCart("user-1")
	cart.AddItem("F1", 2, decimal.NewFromFloat(10.00))

	cart.Clear()
	assert.True(t, cart.IsEmpty())
	assert.NotNil(t, cart.Items)
}
