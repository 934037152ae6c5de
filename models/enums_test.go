package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePetType(t *testing.T) {
	tests := []struct {
		input   string
		want    PetType
		wantErr bool
	}{
		{"puppy", PetTypePuppy, false},
		{"KITTEN", PetTypeKitten, false},
		{" Bunny ", PetTypeBunny, false},
		{"hamster", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := ParsePetType(tt.input)
		if tt.wantErr {
			assert.Error(t, err, "input %q", tt.input)
			continue
		}
		require.NoError(t, err, "input %q", tt.input)
		assert.Equal(t, tt.want, got)
	}
}

func TestParseFoodType(t *testing.T) {
	got, err := ParseFoodType("Supplements")
	require.NoError(t, err)
	assert.Equal(t, FoodTypeSupplements, got)

	_, err = ParseFoodType("frozen")
	assert.ErrorContains(t, err, "dry, wet, treats, supplements")
}

func TestParseFoodStatus(t *testing.T) {
	got, err := ParseFoodStatus("OUT_OF_STOCK")
	require.NoError(t, err)
	assert.Equal(t, StatusOutOfStock, got)

	_, err = ParseFoodStatus("sold_out")
	assert.Error(t, err)
}

func TestEnumJSONRoundTrip(t *testing.T) {
	var p PetType
	require.NoError(t, p.UnmarshalJSON([]byte(`"puppy"`)))
	assert.Equal(t, PetTypePuppy, p)

	var s FoodStatus
	assert.Error(t, s.UnmarshalJSON([]byte(`"unknown"`)))
}
