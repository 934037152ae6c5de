package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/petstorecloud/petfood/models"
)

// MemoryFoodRepository is an in-memory FoodRepository with secondary
// indexes mirroring the DynamoDB layout. Safe for concurrent use.
type MemoryFoodRepository struct {
	mu         sync.RWMutex
	foods      map[string]*models.Food
	byPetType  map[models.PetType][]string
	byFoodType map[models.FoodType][]string
}

// NewMemoryFoodRepository builds an empty repository.
func NewMemoryFoodRepository() *MemoryFoodRepository {
	return &MemoryFoodRepository{
		foods:      make(map[string]*models.Food),
		byPetType:  make(map[models.PetType][]string),
		byFoodType: make(map[models.FoodType][]string),
	}
}

func (r *MemoryFoodRepository) FindAll(ctx context.Context, filters *models.FoodFilters) ([]*models.Food, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	foods := make([]*models.Food, 0, len(r.foods))
	for _, f := range r.foods {
		if !f.MatchesFilters(filters) {
			continue
		}
		foods = append(foods, copyFood(f))
	}
	sort.Slice(foods, func(i, j int) bool { return foods[i].ID < foods[j].ID })
	return foods, nil
}

func (r *MemoryFoodRepository) FindByID(ctx context.Context, id string) (*models.Food, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.foods[id]
	if !ok {
		return nil, models.NewRepoNotFound(id)
	}
	return copyFood(f), nil
}

func (r *MemoryFoodRepository) FindByPetType(ctx context.Context, petType models.PetType) ([]*models.Food, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	foods := make([]*models.Food, 0, len(r.byPetType[petType]))
	for _, id := range r.byPetType[petType] {
		foods = append(foods, copyFood(r.foods[id]))
	}
	sort.Slice(foods, func(i, j int) bool { return foods[i].Name < foods[j].Name })
	return foods, nil
}

func (r *MemoryFoodRepository) FindByFoodType(ctx context.Context, foodType models.FoodType) ([]*models.Food, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	foods := make([]*models.Food, 0, len(r.byFoodType[foodType]))
	for _, id := range r.byFoodType[foodType] {
		foods = append(foods, copyFood(r.foods[id]))
	}
	sort.Slice(foods, func(i, j int) bool { return foods[i].Price.LessThan(foods[j].Price) })
	return foods, nil
}

func (r *MemoryFoodRepository) Create(ctx context.Context, food *models.Food) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.foods[food.ID]; exists {
		return &models.RepositoryError{Kind: models.RepoConstraintViolation, Message: "id already exists: " + food.ID}
	}
	r.store(copyFood(food))
	return nil
}

func (r *MemoryFoodRepository) Update(ctx context.Context, food *models.Food) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.foods[food.ID]
	if !ok {
		return models.NewRepoNotFound(food.ID)
	}
	r.unindex(existing)
	r.store(copyFood(food))
	return nil
}

func (r *MemoryFoodRepository) SoftDelete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, ok := r.foods[id]
	if !ok {
		return models.NewRepoNotFound(id)
	}
	f.Discontinue()
	return nil
}

func (r *MemoryFoodRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if f, ok := r.foods[id]; ok {
		r.unindex(f)
		delete(r.foods, id)
	}
	return nil
}

func (r *MemoryFoodRepository) Exists(ctx context.Context, id string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.foods[id]
	return ok, nil
}

func (r *MemoryFoodRepository) Count(ctx context.Context, filters *models.FoodFilters) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var count int64
	for _, f := range r.foods {
		if f.MatchesFilters(filters) {
			count++
		}
	}
	return count, nil
}

// store and unindex maintain the secondary index maps. Callers hold the
// write lock.
func (r *MemoryFoodRepository) store(f *models.Food) {
	r.foods[f.ID] = f
	r.byPetType[f.PetType] = append(r.byPetType[f.PetType], f.ID)
	r.byFoodType[f.FoodType] = append(r.byFoodType[f.FoodType], f.ID)
}

func (r *MemoryFoodRepository) unindex(f *models.Food) {
	r.byPetType[f.PetType] = removeID(r.byPetType[f.PetType], f.ID)
	r.byFoodType[f.FoodType] = removeID(r.byFoodType[f.FoodType], f.ID)
}

func removeID(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func copyFood(f *models.Food) *models.Food {
	c := *f
	if f.Ingredients != nil {
		c.Ingredients = append([]string(nil), f.Ingredients...)
	}
	if f.FeedingGuidelines != nil {
		v := *f.FeedingGuidelines
		c.FeedingGuidelines = &v
	}
	if f.ImageURL != nil {
		v := *f.ImageURL
		c.ImageURL = &v
	}
	if f.NutritionalInfo != nil {
		n := models.NutritionalInfo{}
		if f.NutritionalInfo.ProteinPercentage != nil {
			v := *f.NutritionalInfo.ProteinPercentage
			n.ProteinPercentage = &v
		}
		if f.NutritionalInfo.FatPercentage != nil {
			v := *f.NutritionalInfo.FatPercentage
			n.FatPercentage = &v
		}
		if f.NutritionalInfo.FiberPercentage != nil {
			v := *f.NutritionalInfo.FiberPercentage
			n.FiberPercentage = &v
		}
		if f.NutritionalInfo.MoisturePercentage != nil {
			v := *f.NutritionalInfo.MoisturePercentage
			n.MoisturePercentage = &v
		}
		if f.NutritionalInfo.CaloriesPerServing != nil {
			v := *f.NutritionalInfo.CaloriesPerServing
			n.CaloriesPerServing = &v
		}
		c.NutritionalInfo = &n
	}
	return &c
}

// MemoryCartRepository is an in-memory CartRepository. Safe for
// concurrent use.
type MemoryCartRepository struct {
	mu    sync.RWMutex
	carts map[string]*models.Cart
}

// NewMemoryCartRepository builds an empty repository.
func NewMemoryCartRepository() *MemoryCartRepository {
	return &MemoryCartRepository{carts: make(map[string]*models.Cart)}
}

func (r *MemoryCartRepository) FindCart(ctx context.Context, userID string) (*models.Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.carts[userID]
	if !ok {
		return nil, models.NewRepoNotFound(userID)
	}
	return copyCart(c), nil
}

func (r *MemoryCartRepository) SaveCart(ctx context.Context, cart *models.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.carts[cart.UserID] = copyCart(cart)
	return nil
}

func (r *MemoryCartRepository) DeleteCart(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.carts, userID)
	return nil
}

func (r *MemoryCartRepository) CartExists(ctx context.Context, userID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.carts[userID]
	return ok, nil
}

func (r *MemoryCartRepository) FindAllCarts(ctx context.Context) ([]*models.Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	carts := make([]*models.Cart, 0, len(r.carts))
	for _, c := range r.carts {
		carts = append(carts, copyCart(c))
	}
	sort.Slice(carts, func(i, j int) bool { return carts[i].UserID < carts[j].UserID })
	return carts, nil
}

func (r *MemoryCartRepository) CountCarts(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return int64(len(r.carts)), nil
}

func copyCart(c *models.Cart) *models.Cart {
	copied := *c
	copied.Items = append([]models.CartItem(nil), c.Items...)
	return &copied
}
