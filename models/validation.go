package models

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Validation limits for food and cart fields.
const (
	NameMinLength        = 1
	NameMaxLength        = 200
	DescriptionMinLength = 10
	DescriptionMaxLength = 1000
	IngredientMaxCount   = 50
	IngredientMaxLength  = 100
	GuidelinesMaxLength  = 500
	StockMax             = 999999
	QuantityMin          = 1
	QuantityMax          = 1000
	UserIDMaxLength      = 100
	ImageURLMaxLength    = 500
)

var (
	// PriceMin and PriceMax bound unit prices, inclusive.
	PriceMin = decimal.NewFromFloat(0.01)
	PriceMax = decimal.NewFromFloat(9999.99)
)

var allowedImageExtensions = []string{".jpg", ".jpeg", ".png", ".webp"}

// ValidateName checks a product name.
func ValidateName(name string) error {
	if name == "" {
		return &ValidationError{Kind: ValidationRequiredField, Field: "name"}
	}
	if len(name) > NameMaxLength {
		return &ValidationError{
			Kind:   ValidationTooLong,
			Field:  "name",
			Reason: fmt.Sprintf("maximum length is %d characters", NameMaxLength),
		}
	}
	for _, r := range name {
		if r < 0x20 && r != '\n' && r != '\r' && r != '\t' {
			return &ValidationError{
				Kind:   ValidationInvalidFormat,
				Field:  "name",
				Reason: "control characters are not allowed",
			}
		}
	}
	return nil
}

// ValidateDescription checks a product description.
func ValidateDescription(desc string) error {
	if desc == "" {
		return &ValidationError{Kind: ValidationRequiredField, Field: "description"}
	}
	if len(desc) < DescriptionMinLength {
		return &ValidationError{
			Kind:   ValidationTooShort,
			Field:  "description",
			Reason: fmt.Sprintf("minimum length is %d characters", DescriptionMinLength),
		}
	}
	if len(desc) > DescriptionMaxLength {
		return &ValidationError{
			Kind:   ValidationTooLong,
			Field:  "description",
			Reason: fmt.Sprintf("maximum length is %d characters", DescriptionMaxLength),
		}
	}
	return nil
}

// ValidatePrice checks a unit price for range and scale.
func ValidatePrice(price decimal.Decimal) error {
	if price.LessThan(PriceMin) || price.GreaterThan(PriceMax) {
		return &ValidationError{
			Kind:   ValidationOutOfRange,
			Field:  "price",
			Value:  price.String(),
			Reason: fmt.Sprintf("must be between %s and %s", PriceMin, PriceMax),
		}
	}
	if price.Exponent() < -2 {
		return &ValidationError{
			Kind:   ValidationInvalidFormat,
			Field:  "price",
			Value:  price.String(),
			Reason: "at most two decimal places are allowed",
		}
	}
	return nil
}

// ValidateStock checks a stock quantity.
func ValidateStock(stock int32) error {
	if stock < 0 || stock > StockMax {
		return &ValidationError{
			Kind:   ValidationOutOfRange,
			Field:  "stock_quantity",
			Value:  fmt.Sprintf("%d", stock),
			Reason: fmt.Sprintf("must be between 0 and %d", StockMax),
		}
	}
	return nil
}

// ValidateIngredients checks an ingredient list: 1 to 50 entries.
func ValidateIngredients(ingredients []string) error {
	if len(ingredients) == 0 {
		return &ValidationError{Kind: ValidationRequiredField, Field: "ingredients"}
	}
	if len(ingredients) > IngredientMaxCount {
		return &ValidationError{
			Kind:   ValidationTooLong,
			Field:  "ingredients",
			Reason: fmt.Sprintf("at most %d ingredients are allowed", IngredientMaxCount),
		}
	}
	seen := make(map[string]struct{}, len(ingredients))
	for _, ing := range ingredients {
		if ing == "" {
			return &ValidationError{
				Kind:   ValidationInvalidValue,
				Field:  "ingredients",
				Reason: "ingredient entries must not be empty",
			}
		}
		if len(ing) > IngredientMaxLength {
			return &ValidationError{
				Kind:   ValidationTooLong,
				Field:  "ingredients",
				Value:  ing,
				Reason: fmt.Sprintf("each ingredient is limited to %d characters", IngredientMaxLength),
			}
		}
		key := strings.ToLower(ing)
		if _, dup := seen[key]; dup {
			return &ValidationError{
				Kind:   ValidationInvalidValue,
				Field:  "ingredients",
				Value:  ing,
				Reason: "duplicate ingredient",
			}
		}
		seen[key] = struct{}{}
	}
	return nil
}

// ValidateGuidelines checks optional feeding guidelines.
func ValidateGuidelines(guidelines string) error {
	if len(guidelines) > GuidelinesMaxLength {
		return &ValidationError{
			Kind:   ValidationTooLong,
			Field:  "feeding_guidelines",
			Reason: fmt.Sprintf("maximum length is %d characters", GuidelinesMaxLength),
		}
	}
	return nil
}

// ValidateFoodID checks the product identifier format: an "F" prefix
// followed by at least one alphanumeric character.
func ValidateFoodID(id string) error {
	if id == "" {
		return &ValidationError{Kind: ValidationRequiredField, Field: "food_id"}
	}
	if len(id) < 2 || id[0] != 'F' {
		return &ValidationError{
			Kind:   ValidationInvalidFormat,
			Field:  "food_id",
			Value:  id,
			Reason: "must start with 'F' followed by alphanumeric characters",
		}
	}
	for _, r := range id[1:] {
		if !isAlphanumeric(r) {
			return &ValidationError{
				Kind:   ValidationInvalidFormat,
				Field:  "food_id",
				Value:  id,
				Reason: "must start with 'F' followed by alphanumeric characters",
			}
		}
	}
	return nil
}

// ValidateUserID checks a cart owner identifier.
func ValidateUserID(userID string) error {
	if userID == "" {
		return &ValidationError{Kind: ValidationRequiredField, Field: "user_id"}
	}
	if len(userID) > UserIDMaxLength {
		return &ValidationError{
			Kind:   ValidationTooLong,
			Field:  "user_id",
			Reason: fmt.Sprintf("maximum length is %d characters", UserIDMaxLength),
		}
	}
	for _, r := range userID {
		if !isAlphanumeric(r) && r != '-' && r != '_' {
			return &ValidationError{
				Kind:   ValidationInvalidFormat,
				Field:  "user_id",
				Value:  userID,
				Reason: "only alphanumeric characters, hyphens and underscores are allowed",
			}
		}
	}
	return nil
}

// ValidateQuantity checks a cart line quantity.
func ValidateQuantity(qty int32) error {
	if qty < QuantityMin || qty > QuantityMax {
		return &ValidationError{
			Kind:   ValidationOutOfRange,
			Field:  "quantity",
			Value:  fmt.Sprintf("%d", qty),
			Reason: fmt.Sprintf("must be between %d and %d", QuantityMin, QuantityMax),
		}
	}
	return nil
}

// ValidateImageURL checks an optional image path or URL.
func ValidateImageURL(url string) error {
	if url == "" {
		return nil
	}
	if len(url) > ImageURLMaxLength {
		return &ValidationError{
			Kind:   ValidationTooLong,
			Field:  "image_url",
			Reason: fmt.Sprintf("maximum length is %d characters", ImageURLMaxLength),
		}
	}
	lower := strings.ToLower(url)
	for _, ext := range allowedImageExtensions {
		if strings.HasSuffix(lower, ext) {
			return nil
		}
	}
	return &ValidationError{
		Kind:   ValidationInvalidFormat,
		Field:  "image_url",
		Value:  url,
		Reason: "must end with .jpg, .jpeg, .png or .webp",
	}
}

func isAlphanumeric(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}
