package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// NutritionalInfo is the declared nutrient breakdown of a product.
// Every field is optional.
type NutritionalInfo struct {
	ProteinPercentage  *decimal.Decimal `json:"protein_percentage,omitempty"`
	FatPercentage      *decimal.Decimal `json:"fat_percentage,omitempty"`
	FiberPercentage    *decimal.Decimal `json:"fiber_percentage,omitempty"`
	MoisturePercentage *decimal.Decimal `json:"moisture_percentage,omitempty"`
	CaloriesPerServing *int32           `json:"calories_per_serving,omitempty"`
}

// Food is the catalog aggregate for a single product.
type Food struct {
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
	IsActive          bool             `json:"is_active"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

// NewFoodID generates a product identifier: "F" followed by the first
// eight hex characters of a random UUID.
func NewFoodID() string {
	return "F" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// NewFood builds a food item from a validated create request. Stock of
// zero yields OutOfStock, anything else InStock.
func NewFood(req *CreateFoodRequest) *Food {
	now := time.Now().UTC()
	status := StatusInStock
	if req.StockQuantity == 0 {
		status = StatusOutOfStock
	}
	return &Food{
		ID:                NewFoodID(),
		Name:              req.Name,
		PetType:           req.PetType,
		FoodType:          req.FoodType,
		Description:       req.Description,
		Price:             req.Price,
		StockQuantity:     req.StockQuantity,
		Status:            status,
		Ingredients:       req.Ingredients,
		NutritionalInfo:   req.NutritionalInfo,
		FeedingGuidelines: req.FeedingGuidelines,
		ImageURL:          req.ImageURL,
		IsActive:          true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// UpdateStock sets the stock level and derives availability from it.
// Discontinued and pre-order items keep their status.
func (f *Food) UpdateStock(quantity int32) {
	f.StockQuantity = quantity
	switch {
	case quantity == 0 && f.Status == StatusInStock:
		f.Status = StatusOutOfStock
	case quantity > 0 && f.Status == StatusOutOfStock:
		f.Status = StatusInStock
	}
	f.touch()
}

// Discontinue soft-deletes the item: it stays in storage but is no
// longer active or purchasable.
func (f *Food) Discontinue() {
	f.IsActive = false
	f.Status = StatusDiscontinued
	f.touch()
}

// SetImage stores the image path and returns the previous one, if any.
func (f *Food) SetImage(path string) *string {
	previous := f.ImageURL
	f.ImageURL = &path
	f.touch()
	return previous
}

// IsAvailable reports whether the item can currently be purchased.
func (f *Food) IsAvailable() bool {
	return f.IsActive && f.Status == StatusInStock && f.StockQuantity > 0
}

// NeedsImageGeneration reports whether the item still lacks an image.
func (f *Food) NeedsImageGeneration() bool {
	return f.ImageURL == nil || *f.ImageURL == ""
}

// ApplyUpdate applies the set fields of a partial update request.
// It returns true when anything changed.
func (f *Food) ApplyUpdate(req *UpdateFoodRequest) bool {
	changed := false
	if req.Name != nil && *req.Name != f.Name {
		f.Name = *req.Name
		changed = true
	}
	if req.PetType != nil && *req.PetType != f.PetType {
		f.PetType = *req.PetType
		changed = true
	}
	if req.FoodType != nil && *req.FoodType != f.FoodType {
		f.FoodType = *req.FoodType
		changed = true
	}
	if req.Description != nil && *req.Description != f.Description {
		f.Description = *req.Description
		changed = true
	}
	if req.Price != nil && !req.Price.Equal(f.Price) {
		f.Price = *req.Price
		changed = true
	}
	if req.Ingredients != nil {
		f.Ingredients = req.Ingredients
		changed = true
	}
	if req.NutritionalInfo != nil {
		f.NutritionalInfo = req.NutritionalInfo
		changed = true
	}
	if req.FeedingGuidelines != nil {
		f.FeedingGuidelines = req.FeedingGuidelines
		changed = true
	}
	if req.ImageURL != nil {
		f.ImageURL = req.ImageURL
		changed = true
	}
	if req.StockQuantity != nil && *req.StockQuantity != f.StockQuantity {
		f.UpdateStock(*req.StockQuantity)
		changed = true
	}
	if req.Status != nil && *req.Status != f.Status {
		f.Status = *req.Status
		changed = true
	}
	if changed {
		f.touch()
	}
	return changed
}

// MatchesFilters reports whether the item satisfies every present
// predicate. The search term matches name, description or any
// ingredient case-insensitively.
func (f *Food) MatchesFilters(filters *FoodFilters) bool {
	if filters == nil {
		return true
	}
	if filters.PetType != nil && f.PetType != *filters.PetType {
		return false
	}
	if filters.FoodType != nil && f.FoodType != *filters.FoodType {
		return false
	}
	if filters.AvailabilityStatus != nil && f.Status != *filters.AvailabilityStatus {
		return false
	}
	if filters.MinPrice != nil && f.Price.LessThan(*filters.MinPrice) {
		return false
	}
	if filters.MaxPrice != nil && f.Price.GreaterThan(*filters.MaxPrice) {
		return false
	}
	if filters.InStockOnly && !f.IsAvailable() {
		return false
	}
	if filters.ActiveOnly && !f.IsActive {
		return false
	}
	if filters.Query != nil && *filters.Query != "" {
		if !f.matchesQuery(*filters.Query) {
			return false
		}
	}
	return true
}

func (f *Food) matchesQuery(query string) bool {
	q := strings.ToLower(query)
	if strings.Contains(strings.ToLower(f.Name), q) ||
		strings.Contains(strings.ToLower(f.Description), q) {
		return true
	}
	for _, ing := range f.Ingredients {
		if strings.Contains(strings.ToLower(ing), q) {
			return true
		}
	}
	return false
}

// ToResponse builds the outward-facing view. Relative image paths are
// joined with the CDN base URL; absolute URLs pass through unchanged.
func (f *Food) ToResponse(cdnBaseURL string) *FoodResponse {
	var image *string
	if f.ImageURL != nil && *f.ImageURL != "" {
		url := *f.ImageURL
		if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") && cdnBaseURL != "" {
			url = strings.TrimSuffix(cdnBaseURL, "/") + "/" + strings.TrimPrefix(url, "/")
		}
		image = &url
	}
	return &FoodResponse{
		ID:                f.ID,
		Name:              f.Name,
		PetType:           f.PetType,
		FoodType:          f.FoodType,
		Description:       f.Description,
		Price:             f.Price,
		StockQuantity:     f.StockQuantity,
		Status:            f.Status,
		Ingredients:       f.Ingredients,
		NutritionalInfo:   f.NutritionalInfo,
		FeedingGuidelines: f.FeedingGuidelines,
		ImageURL:          image,
		IsAvailable:       f.IsAvailable(),
		CreatedAt:         f.CreatedAt,
		UpdatedAt:         f.UpdatedAt,
	}
}

func (f *Food) touch() {
	f.UpdatedAt = time.Now().UTC()
}
