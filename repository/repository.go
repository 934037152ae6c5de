// Package repository defines persistence interfaces for the catalog and
// cart aggregates plus the DynamoDB and in-memory implementations.
package repository

import (
	"context"

	"github.com/petstorecloud/petfood/models"
)

// FoodRepository stores catalog items.
type FoodRepository interface {
	// FindAll returns the items matching the filters. Nil filters return
	// every item.
	FindAll(ctx context.Context, filters *models.FoodFilters) ([]*models.Food, error)
	// FindByID returns the item or a not-found repository error.
	FindByID(ctx context.Context, id string) (*models.Food, error)
	// FindByPetType returns items for one pet type, name order.
	FindByPetType(ctx context.Context, petType models.PetType) ([]*models.Food, error)
	// FindByFoodType returns items of one food type, price order.
	FindByFoodType(ctx context.Context, foodType models.FoodType) ([]*models.Food, error)
	// Create persists a new item. An existing ID is a constraint violation.
	Create(ctx context.Context, food *models.Food) error
	// Update overwrites an existing item or returns not-found.
	Update(ctx context.Context, food *models.Food) error
	// SoftDelete marks the item discontinued and inactive in place.
	SoftDelete(ctx context.Context, id string) error
	// Delete removes the row permanently.
	Delete(ctx context.Context, id string) error
	// Exists reports whether the ID is present.
	Exists(ctx context.Context, id string) (bool, error)
	// Count returns the number of items matching the filters.
	Count(ctx context.Context, filters *models.FoodFilters) (int64, error)
}

// CartRepository stores shopping carts keyed by user.
type CartRepository interface {
	// FindCart returns the user's cart or a not-found repository error.
	FindCart(ctx context.Context, userID string) (*models.Cart, error)
	// SaveCart upserts the cart. Last writer wins.
	SaveCart(ctx context.Context, cart *models.Cart) error
	// DeleteCart removes the cart row. Deleting an absent cart is not an error.
	DeleteCart(ctx context.Context, userID string) error
	// CartExists reports whether the user has a stored cart.
	CartExists(ctx context.Context, userID string) (bool, error)
	// FindAllCarts returns every stored cart.
	FindAllCarts(ctx context.Context) ([]*models.Cart, error)
	// CountCarts returns the number of stored carts.
	CountCarts(ctx context.Context) (int64, error)
}
