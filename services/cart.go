package services

import (
	"context"
	"fmt"

	"github.com/petstorecloud/petfood/models"
	"github.com/petstorecloud/petfood/pkg/logging"
	"github.com/petstorecloud/petfood/repository"
)

const (
	placeholderName  = "Product not found"
	placeholderImage = "placeholder.jpg"
)

// CartService implements the shopping cart operations.
type CartService struct {
	carts  repository.CartRepository
	foods  repository.FoodRepository
	cdn    CDNURLProvider
	logger logging.Logger
}

// NewCartService builds the service. Cdn and logger may be nil.
func NewCartService(carts repository.CartRepository, foods repository.FoodRepository, cdn CDNURLProvider, logger logging.Logger) *CartService {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &CartService{carts: carts, foods: foods, cdn: cdn, logger: logger}
}

// GetCart returns the user's cart. A user without a stored cart gets an
// empty one; nothing is persisted until an item is added.
func (s *CartService) GetCart(ctx context.Context, userID string) (*models.CartResponse, error) {
	if err := models.ValidateUserID(userID); err != nil {
		return nil, &models.ServiceError{Kind: models.SvcValidation, Err: err}
	}

	cart, err := s.findOrEmpty(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.toResponse(ctx, cart)
}

// AddItem adds a product to the cart. The product must exist and be
// purchasable, and stock must cover the merged quantity. An existing
// line merges and refreshes its unit price to the current one.
func (s *CartService) AddItem(ctx context.Context, userID string, req *models.AddItemRequest) (*models.CartResponse, error) {
	if err := models.ValidateUserID(userID); err != nil {
		return nil, &models.ServiceError{Kind: models.SvcValidation, Err: err}
	}
	if err := req.Validate(); err != nil {
		return nil, &models.ServiceError{Kind: models.SvcValidation, Err: err}
	}

	food, err := s.foods.FindByID(ctx, req.FoodID)
	if err != nil {
		if models.IsNotFound(err) {
			return nil, &models.ServiceError{Kind: models.SvcProductUnavailable, ID: req.FoodID}
		}
		return nil, models.WrapRepositoryError(err, "")
	}
	if !food.IsAvailable() {
		return nil, &models.ServiceError{Kind: models.SvcProductUnavailable, ID: req.FoodID}
	}

	cart, err := s.findOrEmpty(ctx, userID)
	if err != nil {
		return nil, err
	}

	merged := req.Quantity
	if line := cart.Item(req.FoodID); line != nil {
		merged += line.Quantity
	}
	if merged > food.StockQuantity {
		return nil, models.NewInsufficientStock(merged, food.StockQuantity)
	}

	cart.AddItem(req.FoodID, req.Quantity, food.Price)

	if err := s.carts.SaveCart(ctx, cart); err != nil {
		return nil, models.WrapRepositoryError(err, "")
	}

	s.logger.Info("Added item to cart", map[string]interface{}{
		"user_id":  userID,
		"food_id":  req.FoodID,
		"quantity": req.Quantity,
	})

	return s.toResponse(ctx, cart)
}

// UpdateItem sets the quantity of a cart line. Quantity zero removes
// the line. Stock is re-checked against the new quantity.
func (s *CartService) UpdateItem(ctx context.Context, userID, foodID string, req *models.UpdateItemRequest) (*models.CartResponse, error) {
	if err := models.ValidateUserID(userID); err != nil {
		return nil, &models.ServiceError{Kind: models.SvcValidation, Err: err}
	}
	if err := req.Validate(); err != nil {
		return nil, &models.ServiceError{Kind: models.SvcValidation, Err: err}
	}

	cart, err := s.carts.FindCart(ctx, userID)
	if err != nil {
		if models.IsNotFound(err) {
			return nil, models.NewCartNotFound(userID)
		}
		return nil, models.WrapRepositoryError(err, "")
	}

	if cart.Item(foodID) == nil {
		return nil, &models.ServiceError{Kind: models.SvcCartItemNotFound, ID: foodID}
	}

	if req.Quantity > 0 {
		food, err := s.foods.FindByID(ctx, foodID)
		if err != nil {
			if models.IsNotFound(err) {
				return nil, &models.ServiceError{Kind: models.SvcProductUnavailable, ID: foodID}
			}
			return nil, models.WrapRepositoryError(err, "")
		}
		if req.Quantity > food.StockQuantity {
			return nil, models.NewInsufficientStock(req.Quantity, food.StockQuantity)
		}
	}

	cart.UpdateItem(foodID, req.Quantity)

	if err := s.carts.SaveCart(ctx, cart); err != nil {
		return nil, models.WrapRepositoryError(err, "")
	}

	return s.toResponse(ctx, cart)
}

// RemoveItem drops a line from the cart.
func (s *CartService) RemoveItem(ctx context.Context, userID, foodID string) (*models.CartResponse, error) {
	if err := models.ValidateUserID(userID); err != nil {
		return nil, &models.ServiceError{Kind: models.SvcValidation, Err: err}
	}

	cart, err := s.carts.FindCart(ctx, userID)
	if err != nil {
		if models.IsNotFound(err) {
			return nil, models.NewCartNotFound(userID)
		}
		return nil, models.WrapRepositoryError(err, "")
	}

	if !cart.RemoveItem(foodID) {
		return nil, &models.ServiceError{Kind: models.SvcCartItemNotFound, ID: foodID}
	}

	if err := s.carts.SaveCart(ctx, cart); err != nil {
		return nil, models.WrapRepositoryError(err, "")
	}

	return s.toResponse(ctx, cart)
}

// ClearCart empties the cart. Clearing an absent cart is a no-op.
func (s *CartService) ClearCart(ctx context.Context, userID string) (*models.CartResponse, error) {
	if err := models.ValidateUserID(userID); err != nil {
		return nil, &models.ServiceError{Kind: models.SvcValidation, Err: err}
	}

	cart, err := s.carts.FindCart(ctx, userID)
	if err != nil {
		if models.IsNotFound(err) {
			return s.toResponse(ctx, models.NewCart(userID))
		}
		return nil, models.WrapRepositoryError(err, "")
	}

	cart.Clear()
	if err := s.carts.SaveCart(ctx, cart); err != nil {
		return nil, models.WrapRepositoryError(err, "")
	}

	return s.toResponse(ctx, cart)
}

// DeleteCart removes the stored cart. A missing cart is an error, unlike
// ClearCart.
func (s *CartService) DeleteCart(ctx context.Context, userID string) error {
	if err := models.ValidateUserID(userID); err != nil {
		return &models.ServiceError{Kind: models.SvcValidation, Err: err}
	}

	exists, err := s.carts.CartExists(ctx, userID)
	if err != nil {
		return models.WrapRepositoryError(err, "")
	}
	if !exists {
		return models.NewCartNotFound(userID)
	}

	return s.carts.DeleteCart(ctx, userID)
}

// GetItemCount returns the sum of line quantities.
func (s *CartService) GetItemCount(ctx context.Context, userID string) (int32, error) {
	cart, err := s.findOrEmpty(ctx, userID)
	if err != nil {
		return 0, err
	}
	return cart.ItemCount(), nil
}

// GetTotal returns the cart total at snapshot prices.
func (s *CartService) GetTotal(ctx context.Context, userID string) (string, error) {
	cart, err := s.findOrEmpty(ctx, userID)
	if err != nil {
		return "", err
	}
	return cart.Total().StringFixed(2), nil
}

// IsEmpty reports whether the cart has no lines.
func (s *CartService) IsEmpty(ctx context.Context, userID string) (bool, error) {
	cart, err := s.findOrEmpty(ctx, userID)
	if err != nil {
		return false, err
	}
	return cart.IsEmpty(), nil
}

// ValidateCart checks every line against the current catalog and
// returns human-readable issues. An empty slice means the cart is
// ready for checkout.
func (s *CartService) ValidateCart(ctx context.Context, userID string) ([]string, error) {
	cart, err := s.findOrEmpty(ctx, userID)
	if err != nil {
		return nil, err
	}

	var issues []string
	for i := range cart.Items {
		line := &cart.Items[i]
		food, err := s.foods.FindByID(ctx, line.FoodID)
		if err != nil {
			if models.IsNotFound(err) {
				issues = append(issues, fmt.Sprintf("Product with ID %s no longer exists", line.FoodID))
				continue
			}
			return nil, models.WrapRepositoryError(err, "")
		}
		if !food.IsAvailable() {
			issues = append(issues, fmt.Sprintf("Product %s is no longer available", food.Name))
			continue
		}
		if line.Quantity > food.StockQuantity {
			issues = append(issues, fmt.Sprintf("Insufficient stock for %s: requested %d, available %d",
				food.Name, line.Quantity, food.StockQuantity))
		}
	}
	return issues, nil
}

func (s *CartService) findOrEmpty(ctx context.Context, userID string) (*models.Cart, error) {
	cart, err := s.carts.FindCart(ctx, userID)
	if err != nil {
		if models.IsNotFound(err) {
			return models.NewCart(userID), nil
		}
		return nil, models.WrapRepositoryError(err, "")
	}
	return cart, nil
}

// toResponse enriches cart lines with catalog data. Lines whose product
// vanished render with placeholder fields rather than failing the read.
func (s *CartService) toResponse(ctx context.Context, cart *models.Cart) (*models.CartResponse, error) {
	cdnURL := s.resolveCDN(ctx)

	items := make([]models.CartItemResponse, 0, len(cart.Items))
	for i := range cart.Items {
		line := &cart.Items[i]
		item := models.CartItemResponse{
			FoodID:    line.FoodID,
			Name:      placeholderName,
			ImageURL:  placeholderImage,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			LineTotal: line.LineTotal(),
			AddedAt:   line.AddedAt,
		}

		food, err := s.foods.FindByID(ctx, line.FoodID)
		if err == nil {
			resp := food.ToResponse(cdnURL)
			item.Name = resp.Name
			if resp.ImageURL != nil {
				item.ImageURL = *resp.ImageURL
			}
		} else if !models.IsNotFound(err) {
			return nil, models.WrapRepositoryError(err, "")
		}

		items = append(items, item)
	}

	return &models.CartResponse{
		UserID:    cart.UserID,
		Items:     items,
		ItemCount: cart.ItemCount(),
		Total:     cart.Total(),
		UpdatedAt: cart.UpdatedAt,
	}, nil
}

func (s *CartService) resolveCDN(ctx context.Context) string {
	if s.cdn == nil {
		return ""
	}
	url, err := s.cdn.CDNBaseURL(ctx)
	if err != nil {
		s.logger.Warn("Failed to resolve CDN base URL", map[string]interface{}{
			"error": err.Error(),
		})
		return ""
	}
	return url
}
