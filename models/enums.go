// Package models contains the catalog and cart domain types, their
// validation rules, and the event shapes emitted when they change.
package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// PetType identifies which animal a food product is made for.
type PetType string

const (
	PetTypePuppy  PetType = "puppy"
	PetTypeKitten PetType = "kitten"
	PetTypeBunny  PetType = "bunny"
)

// ParsePetType parses a pet type case-insensitively.
func ParsePetType(s string) (PetType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "puppy":
		return PetTypePuppy, nil
	case "kitten":
		return PetTypeKitten, nil
	case "bunny":
		return PetTypeBunny, nil
	default:
		return "", fmt.Errorf("invalid pet type %q: must be one of puppy, kitten, bunny", s)
	}
}

func (p PetType) String() string { return string(p) }

// Valid reports whether the value is one of the known pet types.
func (p PetType) Valid() bool {
	_, err := ParsePetType(string(p))
	return err == nil
}

func (p *PetType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, err := ParsePetType(s)
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// FoodType classifies the product form.
type FoodType string

const (
	FoodTypeDry         FoodType = "dry"
	FoodTypeWet         FoodType = "wet"
	FoodTypeTreats      FoodType = "treats"
	FoodTypeSupplements FoodType = "supplements"
)

// ParseFoodType parses a food type case-insensitively.
func ParseFoodType(s string) (FoodType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "dry":
		return FoodTypeDry, nil
	case "wet":
		return FoodTypeWet, nil
	case "treats":
		return FoodTypeTreats, nil
	case "supplements":
		return FoodTypeSupplements, nil
	default:
		return "", fmt.Errorf("invalid food type %q: must be one of dry, wet, treats, supplements", s)
	}
}

func (f FoodType) String() string { return string(f) }

func (f FoodType) Valid() bool {
	_, err := ParseFoodType(string(f))
	return err == nil
}

func (f *FoodType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, err := ParseFoodType(s)
	if err != nil {
		return err
	}
	*f = v
	return nil
}

// FoodStatus tracks the lifecycle and stock state of a product.
type FoodStatus string

const (
	StatusInStock      FoodStatus = "in_stock"
	StatusOutOfStock   FoodStatus = "out_of_stock"
	StatusDiscontinued FoodStatus = "discontinued"
	StatusPreOrder     FoodStatus = "pre_order"
)

// ParseFoodStatus parses a food status case-insensitively.
func ParseFoodStatus(s string) (FoodStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "in_stock":
		return StatusInStock, nil
	case "out_of_stock":
		return StatusOutOfStock, nil
	case "discontinued":
		return StatusDiscontinued, nil
	case "pre_order":
		return StatusPreOrder, nil
	default:
		return "", fmt.Errorf("invalid food status %q: must be one of in_stock, out_of_stock, discontinued, pre_order", s)
	}
}

func (s FoodStatus) String() string { return string(s) }

func (s *FoodStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v, err := ParseFoodStatus(raw)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// CreationSource records which path created a food item. It travels in
// event metadata so downstream consumers can distinguish seeded data from
// operator-created products.
type CreationSource string

const (
	SourceAdminAPI CreationSource = "admin_api"
	SourceSeeding  CreationSource = "seeding"
	SourceFoodAPI  CreationSource = "food_api"
)

func (c CreationSource) String() string { return string(c) }
