package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateFoodRequest carries the fields needed to add a product.
type CreateFoodRequest struct {
	Name              string           `json:"name"`
	PetType           PetType          `json:"pet_type"`
	FoodType          FoodType         `json:"food_type"`
	Description       string           `json:"description"`
	Price             decimal.Decimal  `json:"price"`
	StockQuantity     int32            `json:"stock_quantity"`
	Ingredients       []string         `json:"ingredients"`
	NutritionalInfo   *NutritionalInfo `json:"nutritional_info,omitempty"`
	FeedingGuidelines *string          `json:"feeding_guidelines,omitempty"`
	ImageURL          *string          `json:"image_url,omitempty"`
}

// Validate checks every field and returns the first failure.
func (r *CreateFoodRequest) Validate() error {
	if err := ValidateName(r.Name); err != nil {
		return err
	}
	if !r.PetType.Valid() {
		return &ValidationError{Kind: ValidationInvalidValue, Field: "pet_type", Value: string(r.PetType), Reason: "unknown pet type"}
	}
	if !r.FoodType.Valid() {
		return &ValidationError{Kind: ValidationInvalidValue, Field: "food_type", Value: string(r.FoodType), Reason: "unknown food type"}
	}
	if err := ValidateDescription(r.Description); err != nil {
		return err
	}
	if err := ValidatePrice(r.Price); err != nil {
		return err
	}
	if err := ValidateStock(r.StockQuantity); err != nil {
		return err
	}
	if err := ValidateIngredients(r.Ingredients); err != nil {
		return err
	}
	if r.FeedingGuidelines != nil {
		if err := ValidateGuidelines(*r.FeedingGuidelines); err != nil {
			return err
		}
	}
	if r.ImageURL != nil {
		if err := ValidateImageURL(*r.ImageURL); err != nil {
			return err
		}
	}
	return nil
}

// UpdateFoodRequest carries a partial update. Nil fields are untouched.
type UpdateFoodRequest struct {
	Name              *string          `json:"name,omitempty"`
	PetType           *PetType         `json:"pet_type,omitempty"`
	FoodType          *FoodType        `json:"food_type,omitempty"`
	Description       *string          `json:"description,omitempty"`
	Price             *decimal.Decimal `json:"price,omitempty"`
	StockQuantity     *int32           `json:"stock_quantity,omitempty"`
	Status            *FoodStatus      `json:"status,omitempty"`
	Ingredients       []string         `json:"ingredients,omitempty"`
	NutritionalInfo   *NutritionalInfo `json:"nutritional_info,omitempty"`
	FeedingGuidelines *string          `json:"feeding_guidelines,omitempty"`
	ImageURL          *string          `json:"image_url,omitempty"`
}

// Validate checks the fields that are present.
func (r *UpdateFoodRequest) Validate() error {
	if r.Name != nil {
		if err := ValidateName(*r.Name); err != nil {
			return err
		}
	}
	if r.PetType != nil && !r.PetType.Valid() {
		return &ValidationError{Kind: ValidationInvalidValue, Field: "pet_type", Value: string(*r.PetType), Reason: "unknown pet type"}
	}
	if r.FoodType != nil && !r.FoodType.Valid() {
		return &ValidationError{Kind: ValidationInvalidValue, Field: "food_type", Value: string(*r.FoodType), Reason: "unknown food type"}
	}
	if r.Description != nil {
		if err := ValidateDescription(*r.Description); err != nil {
			return err
		}
	}
	if r.Price != nil {
		if err := ValidatePrice(*r.Price); err != nil {
			return err
		}
	}
	if r.StockQuantity != nil {
		if err := ValidateStock(*r.StockQuantity); err != nil {
			return err
		}
	}
	if r.Ingredients != nil {
		if err := ValidateIngredients(r.Ingredients); err != nil {
			return err
		}
	}
	if r.FeedingGuidelines != nil {
		if err := ValidateGuidelines(*r.FeedingGuidelines); err != nil {
			return err
		}
	}
	if r.ImageURL != nil {
		if err := ValidateImageURL(*r.ImageURL); err != nil {
			return err
		}
	}
	return nil
}

// AddItemRequest adds a product to a cart.
type AddItemRequest struct {
	FoodID   string `json:"food_id"`
	Quantity int32  `json:"quantity"`
}

func (r *AddItemRequest) Validate() error {
	if err := ValidateFoodID(r.FoodID); err != nil {
		return err
	}
	return ValidateQuantity(r.Quantity)
}

// UpdateItemRequest changes a cart line quantity. Zero removes the line.
type UpdateItemRequest struct {
	Quantity int32 `json:"quantity"`
}

func (r *UpdateItemRequest) Validate() error {
	if r.Quantity == 0 {
		return nil
	}
	return ValidateQuantity(r.Quantity)
}

// FoodFilters narrows catalog listings. Nil fields match everything;
// present predicates must all hold.
type FoodFilters struct {
	PetType            *PetType
	FoodType           *FoodType
	AvailabilityStatus *FoodStatus
	MinPrice           *decimal.Decimal
	MaxPrice           *decimal.Decimal
	InStockOnly        bool
	Query              *string
	ActiveOnly         bool
}

// FoodResponse is the outward-facing product view.
type FoodResponse struct {
	ID                string           `json:"id"`
	Name              string           `json:"name"`
	PetType           PetType          `json:"pet_type"`
	FoodType          FoodType         `json:"food_type"`
	Description       string           `json:"description"`
	Price             decimal.Decimal  `json:"price"`
	StockQuantity     int32            `json:"stock_quantity"`
	Status            FoodStatus       `json:"status"`
	Ingredients       []string         `json:"ingredients,omitempty"`
	NutritionalInfo   *NutritionalInfo `json:"nutritional_info,omitempty"`
	FeedingGuidelines *string          `json:"feeding_guidelines,omitempty"`
	ImageURL          *string          `json:"image_url,omitempty"`
	IsAvailable       bool             `json:"is_available"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

// CartItemResponse is a cart line enriched with catalog data.
type CartItemResponse struct {
	FoodID    string          `json:"food_id"`
	Name      string          `json:"name"`
	ImageURL  string          `json:"image_url"`
	Quantity  int32           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
	AddedAt   time.Time       `json:"added_at"`
}

// CartResponse is the outward-facing cart view.
type CartResponse struct {
	UserID    string             `json:"user_id"`
	Items     []CartItemResponse `json:"items"`
	ItemCount int32              `json:"item_count"`
	Total     decimal.Decimal    `json:"total"`
	UpdatedAt time.Time          `json:"updated_at"`
}
