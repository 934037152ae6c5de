package services

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petstorecloud/petfood/models"
	"github.com/petstorecloud/petfood/repository"
)

func newCartFixture(t *testing.T) (*CartService, *FoodService, *repository.MemoryCartRepository, *repository.MemoryFoodRepository) {
	t.Helper()
	foods := repository.NewMemoryFoodRepository()
	carts := repository.NewMemoryCartRepository()
	cdn := &staticCDN{url: "https://cdn.example.com"}
	cartSvc := NewCartService(carts, foods, cdn, nil)
	foodSvc := NewFoodService(foods, &captureEmitter{}, cdn, nil)
	return cartSvc, foodSvc, carts, foods
}

func seedFood(t *testing.T, svc *FoodService, name string, price float64, stock int32) string {
	t.Helper()
	req := createRequest()
	req.Name = name
	req.Price = decimal.NewFromFloat(price)
	req.StockQuantity = stock
	resp, err := svc.Create(context.Background(), req, models.SourceSeeding)
	require.NoError(t, err)
	return resp.ID
}

func TestGetCartLazyEmpty(t *testing.T) {
	cartSvc, _, carts, _ := newCartFixture(t)
	ctx := context.Background()

	resp, err := cartSvc.GetCart(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", resp.UserID)
	assert.Empty(t, resp.Items)
	assert.True(t, resp.Total.IsZero())

	// The empty cart is not persisted.
	exists, _ := carts.CartExists(ctx, "user-1")
	assert.False(t, exists)
}

func TestAddItem(t *testing.T) {
	cartSvc, foodSvc, _, _ := newCartFixture(t)
	ctx := context.Background()

	foodID := seedFood(t, foodSvc, "Puppy Bites", 19.99, 10)

	resp, err := cartSvc.AddItem(ctx, "user-1", &models.AddItemRequest{FoodID: foodID, Quantity: 2})
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "Puppy Bites", resp.Items[0].Name)
	assert.Equal(t, int32(2), resp.Items[0].Quantity)
	assert.True(t, resp.Total.Equal(decimal.NewFromFloat(39.98)), "got %s", resp.Total)
}

func TestAddItemMergesAndChecksMergedStock(t *testing.T) {
	cartSvc, foodSvc, _, _ := newCartFixture(t)
	ctx := context.Background()

	foodID := seedFood(t, foodSvc, "Puppy Bites", 19.99, 5)

	_, err := cartSvc.AddItem(ctx, "user-1", &models.AddItemRequest{FoodID: foodID, Quantity: 3})
	require.NoError(t, err)

	resp, err := cartSvc.AddItem(ctx, "user-1", &models.AddItemRequest{FoodID: foodID, Quantity: 2})
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, int32(5), resp.Items[0].Quantity)

	// The merged quantity exceeds stock now.
	_, err = cartSvc.AddItem(ctx, "user-1", &models.AddItemRequest{FoodID: foodID, Quantity: 1})
	var se *models.ServiceError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, models.SvcInsufficientStock, se.Kind)
	assert.Equal(t, "Insufficient stock: requested=6, available=5", err.Error())
}

func TestAddItemUnavailableProduct(t *testing.T) {
	cartSvc, foodSvc, _, foods := newCartFixture(t)
	ctx := context.Background()

	_, err := cartSvc.AddItem(ctx, "user-1", &models.AddItemRequest{FoodID: "F404", Quantity: 1})
	var se *models.ServiceError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, models.SvcProductUnavailable, se.Kind)

	// Discontinued items cannot be added either.
	foodID := seedFood(t, foodSvc, "Old Bites", 9.99, 10)
	require.NoError(t, foods.SoftDelete(ctx, foodID))

	_, err = cartSvc.AddItem(ctx, "user-1", &models.AddItemRequest{FoodID: foodID, Quantity: 1})
	require.ErrorAs(t, err, &se)
	assert.Equal(t, models.SvcProductUnavailable, se.Kind)
}

func TestAddItemRefreshesPriceOnMerge(t *testing.T) {
	cartSvc, foodSvc, _, foods := newCartFixture(t)
	ctx := context.Background()

	foodID := seedFood(t, foodSvc, "Puppy Bites", 10.00, 20)

	_, err := cartSvc.AddItem(ctx, "user-1", &models.AddItemRequest{FoodID: foodID, Quantity: 1})
	require.NoError(t, err)

	// Price change lands on the next merge.
	food, err := foods.FindByID(ctx, foodID)
	require.NoError(t, err)
	food.Price = decimal.NewFromFloat(12.00)
	require.NoError(t, foods.Update(ctx, food))

	resp, err := cartSvc.AddItem(ctx, "user-1", &models.AddItemRequest{FoodID: foodID, Quantity: 1})
	require.NoError(t, err)
	assert.True(t, resp.Items[0].UnitPrice.Equal(decimal.NewFromFloat(12.00)))
	assert.True(t, resp.Total.Equal(decimal.NewFromFloat(24.00)), "got %s", resp.Total)
}

func TestUpdateItem(t *testing.T) {
	cartSvc, foodSvc, _, _ := newCartFixture(t)
	ctx := context.Background()

	foodID := seedFood(t, foodSvc, "Puppy Bites", 19.99, 10)
	_, err := cartSvc.AddItem(ctx, "user-1", &models.AddItemRequest{FoodID: foodID, Quantity: 2})
	require.NoError(t, err)

	resp, err := cartSvc.UpdateItem(ctx, "user-1", foodID, &models.UpdateItemRequest{Quantity: 7})
	require.NoError(t, err)
	assert.Equal(t, int32(7), resp.Items[0].Quantity)

	// Stock is re-checked on update.
	_, err = cartSvc.UpdateItem(ctx, "user-1", foodID, &models.UpdateItemRequest{Quantity: 11})
	var se *models.ServiceError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, models.SvcInsufficientStock, se.Kind)

	// Zero removes the line.
	resp, err = cartSvc.UpdateItem(ctx, "user-1", foodID, &models.UpdateItemRequest{Quantity: 0})
	require.NoError(t, err)
	assert.Empty(t, resp.Items)
}

func TestUpdateItemNotInCart(t *testing.T) {
	cartSvc, foodSvc, _, _ := newCartFixture(t)
	ctx := context.Background()

	foodID := seedFood(t, foodSvc, "Puppy Bites", 19.99, 10)
	other := seedFood(t, foodSvc, "Other Bites", 9.99, 10)

	_, err := cartSvc.UpdateItem(ctx, "user-1", foodID, &models.UpdateItemRequest{Quantity: 1})
	assert.True(t, models.IsNotFound(err), "no cart yet: %v", err)

	_, err = cartSvc.AddItem(ctx, "user-1", &models.AddItemRequest{FoodID: foodID, Quantity: 1})
	require.NoError(t, err)

	_, err = cartSvc.UpdateItem(ctx, "user-1", other, &models.UpdateItemRequest{Quantity: 1})
	var se *models.ServiceError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, models.SvcCartItemNotFound, se.Kind)
}

func TestRemoveItemService(t *testing.T) {
	cartSvc, foodSvc, _, _ := newCartFixture(t)
	ctx := context.Background()

	foodID := seedFood(t, foodSvc, "Puppy Bites", 19.99, 10)
	_, err := cartSvc.AddItem(ctx, "user-1", &models.AddItemRequest{FoodID: foodID, Quantity: 2})
	require.NoError(t, err)

	resp, err := cartSvc.RemoveItem(ctx, "user-1", foodID)
	require.NoError(t, err)
	assert.Empty(t, resp.Items)

	_, err = cartSvc.RemoveItem(ctx, "user-1", foodID)
	var se *models.ServiceError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, models.SvcCartItemNotFound, se.Kind)
}

func TestClearCartNoopWhenAbsent(t *testing.T) {
	cartSvc, _, carts, _ := newCartFixture(t)
	ctx := context.Background()

	resp, err := cartSvc.ClearCart(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, resp.Items)

	exists, _ := carts.CartExists(ctx, "user-1")
	assert.False(t, exists, "clearing an absent cart must not create one")
}

func TestDeleteCart(t *testing.T) {
	cartSvc, foodSvc, carts, _ := newCartFixture(t)
	ctx := context.Background()

	err := cartSvc.DeleteCart(ctx, "user-1")
	assert.True(t, models.IsNotFound(err))
	assert.Equal(t, "Cart not found for user: user-1", err.Error())

	foodID := seedFood(t, foodSvc, "Puppy Bites", 19.99, 10)
	_, err = cartSvc.AddItem(ctx, "user-1", &models.AddItemRequest{FoodID: foodID, Quantity: 1})
	require.NoError(t, err)

	require.NoError(t, cartSvc.DeleteCart(ctx, "user-1"))
	exists, _ := carts.CartExists(ctx, "user-1")
	assert.False(t, exists)
}

func TestCartCountTotalEmpty(t *testing.T) {
	cartSvc, foodSvc, _, _ := newCartFixture(t)
	ctx := context.Background()

	empty, err := cartSvc.IsEmpty(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, empty)

	foodID := seedFood(t, foodSvc, "Puppy Bites", 19.99, 10)
	_, err = cartSvc.AddItem(ctx, "user-1", &models.AddItemRequest{FoodID: foodID, Quantity: 3})
	require.NoError(t, err)

	count, err := cartSvc.GetItemCount(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, int32(3), count)

	total, err := cartSvc.GetTotal(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "59.97", total)

	empty, err = cartSvc.IsEmpty(ctx, "user-1")
	require.NoError(t, err)
	assert.False(t, empty)
}

func TestValidateCart(t *testing.T) {
	cartSvc, foodSvc, _, foods := newCartFixture(t)
	ctx := context.Background()

	okID := seedFood(t, foodSvc, "Good Bites", 5.00, 10)
	lowStockID := seedFood(t, foodSvc, "Scarce Bites", 5.00, 10)
	goneID := seedFood(t, foodSvc, "Gone Bites", 5.00, 10)
	discontinuedID := seedFood(t, foodSvc, "Old Bites", 5.00, 10)

	for _, id := range []string{okID, lowStockID, goneID, discontinuedID} {
		_, err := cartSvc.AddItem(ctx, "user-1", &models.AddItemRequest{FoodID: id, Quantity: 5})
		require.NoError(t, err)
	}

	// Catalog drifts after the lines were added.
	scarce, _ := foods.FindByID(ctx, lowStockID)
	scarce.UpdateStock(2)
	require.NoError(t, foods.Update(ctx, scarce))
	require.NoError(t, foods.Delete(ctx, goneID))
	require.NoError(t, foods.SoftDelete(ctx, discontinuedID))

	issues, err := cartSvc.ValidateCart(ctx, "user-1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		"Insufficient stock for Scarce Bites: requested 5, available 2",
		"Product with ID " + goneID + " no longer exists",
		"Product Old Bites is no longer available",
	}, issues)

	// An empty cart validates cleanly.
	issues, err = cartSvc.ValidateCart(ctx, "user-2")
	require.NoError(t, err)
	assert.Empty(t, issues)
}

func TestCartResponsePlaceholdersForVanishedFood(t *testing.T) {
	cartSvc, foodSvc, _, foods := newCartFixture(t)
	ctx := context.Background()

	foodID := seedFood(t, foodSvc, "Puppy Bites", 19.99, 10)
	_, err := cartSvc.AddItem(ctx, "user-1", &models.AddItemRequest{FoodID: foodID, Quantity: 2})
	require.NoError(t, err)

	require.NoError(t, foods.Delete(ctx, foodID))

	resp, err := cartSvc.GetCart(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "Product not found", resp.Items[0].Name)
	assert.Equal(t, "placeholder.jpg", resp.Items[0].ImageURL)
	// The snapshot price still counts toward the total.
	assert.True(t, resp.Total.Equal(decimal.NewFromFloat(39.98)))
}

func TestCartServiceInvalidUserID(t *testing.T) {
	cartSvc, _, _, _ := newCartFixture(t)
	ctx := context.Background()

	_, err := cartSvc.GetCart(ctx, "bad user!")
	assert.True(t, models.IsValidation(err))

	_, err = cartSvc.AddItem(ctx, "", &models.AddItemRequest{FoodID: "F1", Quantity: 1})
	assert.True(t, models.IsValidation(err))
}

func TestCartServiceRepositoryErrorPassthrough(t *testing.T) {
	foods := repository.NewMemoryFoodRepository()
	carts := &failingCartRepo{}
	svc := NewCartService(carts, foods, nil, nil)

	_, err := svc.GetCart(context.Background(), "user-1")
	var se *models.ServiceError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, models.SvcRepository, se.Kind)
}

// failingCartRepo returns a backend error from every operation.
type failingCartRepo struct{}

var errBackend = &models.RepositoryError{Kind: models.RepoBackend, Err: errors.New("boom")}

func (f *failingCartRepo) FindCart(ctx context.Context, userID string) (*models.Cart, error) {
	return nil, errBackend
}
func (f *failingCartRepo) SaveCart(ctx context.Context, cart *models.Cart) error { return errBackend }
func (f *failingCartRepo) DeleteCart(ctx context.Context, userID string) error   { return errBackend }
func (f *failingCartRepo) CartExists(ctx context.Context, userID string) (bool, error) {
	return false, errBackend
}
func (f *failingCartRepo) FindAllCarts(ctx context.Context) ([]*models.Cart, error) {
	return nil, errBackend
}
func (f *failingCartRepo) CountCarts(ctx context.Context) (int64, error) { return 0, errBackend }
