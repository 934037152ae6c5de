package repository

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/petstorecloud/petfood/models"
)

func testFood(id, name string, petType models.PetType, foodType models.FoodType, price float64) *models.Food {
	food := models.NewFood(&models.CreateFoodRequest{
		Name:          name,
		PetType:       petType,
		FoodType:      foodType,
		Description:   "A test product for the repository.",
		Price:         decimal.NewFromFloat(price),
		StockQuantity: 10,
		Ingredients:   []string{"chicken", "rice"},
	})
	food.ID = id
	return food
}

func TestMemoryFoodRepositoryCRUD(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryFoodRepository()

	food := testFood("F1", "Puppy Bites", models.PetTypePuppy, models.FoodTypeDry, 19.99)

	if err := repo.Create(ctx, food); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := repo.Create(ctx, food); err == nil {
		t.Error("expected constraint violation on duplicate create")
	}

	got, err := repo.FindByID(ctx, "F1")
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if got.Name != "Puppy Bites" {
		t.Errorf("got name %q", got.Name)
	}

	// Returned values are copies: mutating them must not affect the store.
	got.Name = "mutated"
	again, _ := repo.FindByID(ctx, "F1")
	if again.Name != "Puppy Bites" {
		t.Errorf("store was mutated through a returned copy")
	}

	if _, err := repo.FindByID(ctx, "F404"); !models.IsNotFound(err) {
		t.Errorf("expected not-found, got %v", err)
	}

	got.Name = "Renamed Bites"
	if err := repo.Update(ctx, got); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	updated, _ := repo.FindByID(ctx, "F1")
	if updated.Name != "Renamed Bites" {
		t.Errorf("update not applied, got %q", updated.Name)
	}

	missing := testFood("F404", "Ghost", models.PetTypePuppy, models.FoodTypeDry, 1.00)
	if err := repo.Update(ctx, missing); !models.IsNotFound(err) {
		t.Errorf("expected not-found on update, got %v", err)
	}

	count, _ := repo.Count(ctx, nil)
	if count != 1 {
		t.Errorf("expected count 1, got %d", count)
	}

	if err := repo.Delete(ctx, "F1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	exists, _ := repo.Exists(ctx, "F1")
	if exists {
		t.Error("item still exists after delete")
	}
}

func TestMemoryFoodRepositoryIndexes(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryFoodRepository()

	_ = repo.Create(ctx, testFood("F1", "Beta Bites", models.PetTypePuppy, models.FoodTypeDry, 19.99))
	_ = repo.Create(ctx, testFood("F2", "Alpha Bites", models.PetTypePuppy, models.FoodTypeWet, 9.99))
	_ = repo.Create(ctx, testFood("F3", "Kitten Mix", models.PetTypeKitten, models.FoodTypeDry, 14.99))

	puppies, err := repo.FindByPetType(ctx, models.PetTypePuppy)
	if err != nil {
		t.Fatalf("FindByPetType failed: %v", err)
	}
	if len(puppies) != 2 {
		t.Fatalf("expected 2 puppy foods, got %d", len(puppies))
	}
	// Name order, matching the index sort key.
	if puppies[0].Name != "Alpha Bites" || puppies[1].Name != "Beta Bites" {
		t.Errorf("wrong order: %s, %s", puppies[0].Name, puppies[1].Name)
	}

	dry, err := repo.FindByFoodType(ctx, models.FoodTypeDry)
	if err != nil {
		t.Fatalf("FindByFoodType failed: %v", err)
	}
	if len(dry) != 2 {
		t.Fatalf("expected 2 dry foods, got %d", len(dry))
	}
	// Price order, matching the index sort key.
	if !dry[0].Price.LessThan(dry[1].Price) {
		t.Errorf("wrong price order: %s, %s", dry[0].Price, dry[1].Price)
	}

	// Changing the pet type moves the item between indexes.
	moved, _ := repo.FindByID(ctx, "F1")
	moved.PetType = models.PetTypeBunny
	if err := repo.Update(ctx, moved); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	puppies, _ = repo.FindByPetType(ctx, models.PetTypePuppy)
	if len(puppies) != 1 {
		t.Errorf("expected 1 puppy food after move, got %d", len(puppies))
	}
	bunnies, _ := repo.FindByPetType(ctx, models.PetTypeBunny)
	if len(bunnies) != 1 {
		t.Errorf("expected 1 bunny food after move, got %d", len(bunnies))
	}
}

func TestMemoryFoodRepositoryFindAllFilters(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryFoodRepository()

	_ = repo.Create(ctx, testFood("F1", "Beta Bites", models.PetTypePuppy, models.FoodTypeDry, 19.99))
	_ = repo.Create(ctx, testFood("F2", "Alpha Bites", models.PetTypePuppy, models.FoodTypeWet, 9.99))
	_ = repo.Create(ctx, testFood("F3", "Kitten Mix", models.PetTypeKitten, models.FoodTypeDry, 14.99))
	_ = repo.SoftDelete(ctx, "F3")

	all, err := repo.FindAll(ctx, nil)
	if err != nil {
		t.Fatalf("FindAll failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 items without filters, got %d", len(all))
	}

	puppy := models.PetTypePuppy
	byPet, _ := repo.FindAll(ctx, &models.FoodFilters{PetType: &puppy})
	if len(byPet) != 2 {
		t.Errorf("expected 2 puppy items, got %d", len(byPet))
	}

	dry := models.FoodTypeDry
	active, _ := repo.FindAll(ctx, &models.FoodFilters{FoodType: &dry, ActiveOnly: true})
	if len(active) != 1 || active[0].ID != "F1" {
		t.Errorf("expected only F1 for active dry, got %+v", active)
	}

	max := decimal.NewFromInt(15)
	cheap, _ := repo.FindAll(ctx, &models.FoodFilters{MaxPrice: &max})
	if len(cheap) != 2 {
		t.Errorf("expected 2 items at or under 15, got %d", len(cheap))
	}

	query := "alpha"
	named, _ := repo.FindAll(ctx, &models.FoodFilters{Query: &query})
	if len(named) != 1 || named[0].ID != "F2" {
		t.Errorf("expected F2 for query, got %+v", named)
	}

	count, _ := repo.Count(ctx, &models.FoodFilters{PetType: &puppy})
	if count != 2 {
		t.Errorf("expected filtered count 2, got %d", count)
	}
}

func TestMemoryFoodRepositorySoftDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryFoodRepository()

	_ = repo.Create(ctx, testFood("F1", "Puppy Bites", models.PetTypePuppy, models.FoodTypeDry, 19.99))

	if err := repo.SoftDelete(ctx, "F1"); err != nil {
		t.Fatalf("SoftDelete failed: %v", err)
	}
	got, _ := repo.FindByID(ctx, "F1")
	if got.IsActive {
		t.Error("item still active after soft delete")
	}
	if got.Status != models.StatusDiscontinued {
		t.Errorf("expected discontinued, got %s", got.Status)
	}

	if err := repo.SoftDelete(ctx, "F404"); !models.IsNotFound(err) {
		t.Errorf("expected not-found, got %v", err)
	}
}

func TestMemoryCartRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryCartRepository()

	if _, err := repo.FindCart(ctx, "user-1"); !models.IsNotFound(err) {
		t.Errorf("expected not-found, got %v", err)
	}

	cart := models.NewCart("user-1")
	cart.AddItem("F1", 2, decimal.NewFromFloat(10.00))
	if err := repo.SaveCart(ctx, cart); err != nil {
		t.Fatalf("SaveCart failed: %v", err)
	}

	got, err := repo.FindCart(ctx, "user-1")
	if err != nil {
		t.Fatalf("FindCart failed: %v", err)
	}
	if len(got.Items) != 1 || got.Items[0].FoodID != "F1" {
		t.Errorf("unexpected cart contents: %+v", got.Items)
	}

	exists, _ := repo.CartExists(ctx, "user-1")
	if !exists {
		t.Error("expected cart to exist")
	}

	count, _ := repo.CountCarts(ctx)
	if count != 1 {
		t.Errorf("expected 1 cart, got %d", count)
	}

	all, _ := repo.FindAllCarts(ctx)
	if len(all) != 1 {
		t.Errorf("expected 1 cart from FindAllCarts, got %d", len(all))
	}

	if err := repo.DeleteCart(ctx, "user-1"); err != nil {
		t.Fatalf("DeleteCart failed: %v", err)
	}
	// Deleting an absent cart is not an error.
	if err := repo.DeleteCart(ctx, "user-1"); err != nil {
		t.Errorf("second delete errored: %v", err)
	}
}
