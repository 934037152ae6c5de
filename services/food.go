package services

import (
	"context"

	"github.com/petstorecloud/petfood/models"
	"github.com/petstorecloud/petfood/pkg/logging"
	"github.com/petstorecloud/petfood/repository"
)

// Emitter publishes catalog change events.
type Emitter interface {
	Emit(ctx context.Context, event *models.FoodEvent) error
}

// CDNURLProvider supplies the base URL for product images.
type CDNURLProvider interface {
	CDNBaseURL(ctx context.Context) (string, error)
}

// FoodService implements the catalog operations.
type FoodService struct {
	repo    repository.FoodRepository
	emitter Emitter
	cdn     CDNURLProvider
	logger  logging.Logger
}

// NewFoodService builds the service. Emitter, cdn and logger may be nil.
func NewFoodService(repo repository.FoodRepository, emitter Emitter, cdn CDNURLProvider, logger logging.Logger) *FoodService {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &FoodService{repo: repo, emitter: emitter, cdn: cdn, logger: logger}
}

// List returns catalog items matching the filters.
func (s *FoodService) List(ctx context.Context, filters models.FoodFilters) ([]*models.FoodResponse, error) {
	foods, err := s.repo.FindAll(ctx, &filters)
	if err != nil {
		return nil, models.WrapRepositoryError(err, "")
	}

	cdnURL := s.cdnBaseURL(ctx)
	responses := make([]*models.FoodResponse, 0, len(foods))
	for _, f := range foods {
		s.requestImageIfMissing(ctx, f)
		responses = append(responses, f.ToResponse(cdnURL))
	}
	return responses, nil
}

// Get returns one catalog item.
func (s *FoodService) Get(ctx context.Context, id string) (*models.FoodResponse, error) {
	food, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, models.WrapRepositoryError(err, id)
	}
	s.requestImageIfMissing(ctx, food)
	return food.ToResponse(s.cdnBaseURL(ctx)), nil
}

// requestImageIfMissing re-publishes the creation event for an item that
// still has no image, so the image pipeline gets another chance to fill
// it in. Reads never fail on a publish error.
func (s *FoodService) requestImageIfMissing(ctx context.Context, food *models.Food) {
	if !food.NeedsImageGeneration() {
		return
	}
	s.publish(ctx, models.NewFoodItemCreated(food, models.SourceFoodAPI))
}

// Create validates and stores a new item, then publishes FoodItemCreated.
func (s *FoodService) Create(ctx context.Context, req *models.CreateFoodRequest, source models.CreationSource) (*models.FoodResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, &models.ServiceError{Kind: models.SvcValidation, Err: err}
	}

	food := models.NewFood(req)

	exists, err := s.repo.Exists(ctx, food.ID)
	if err != nil {
		return nil, models.WrapRepositoryError(err, "")
	}
	if exists {
		return nil, &models.ServiceError{
			Kind: models.SvcRepository,
			Err:  &models.RepositoryError{Kind: models.RepoConstraintViolation, Message: "id already exists: " + food.ID},
		}
	}

	if err := s.repo.Create(ctx, food); err != nil {
		return nil, models.WrapRepositoryError(err, "")
	}

	s.publish(ctx, models.NewFoodItemCreated(food, source))

	s.logger.Info("Created food item", map[string]interface{}{
		"food_id": food.ID,
		"name":    food.Name,
		"source":  source.String(),
	})

	return food.ToResponse(s.cdnBaseURL(ctx)), nil
}

// Update applies a partial update and publishes FoodItemUpdated.
func (s *FoodService) Update(ctx context.Context, id string, req *models.UpdateFoodRequest) (*models.FoodResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, &models.ServiceError{Kind: models.SvcValidation, Err: err}
	}

	food, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, models.WrapRepositoryError(err, id)
	}

	previousImage := food.ImageURL
	if food.ApplyUpdate(req) {
		if err := s.repo.Update(ctx, food); err != nil {
			return nil, models.WrapRepositoryError(err, id)
		}
		s.publish(ctx, models.NewFoodItemUpdated(food, previousImage))
	}

	return food.ToResponse(s.cdnBaseURL(ctx)), nil
}

// UpdateImage stores a generated image path for the item and publishes
// FoodItemUpdated with the new and previous paths.
func (s *FoodService) UpdateImage(ctx context.Context, id, imagePath string) (*models.FoodResponse, error) {
	if err := models.ValidateImageURL(imagePath); err != nil {
		return nil, &models.ServiceError{Kind: models.SvcValidation, Err: err}
	}

	food, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, models.WrapRepositoryError(err, id)
	}

	previous := food.SetImage(imagePath)
	if err := s.repo.Update(ctx, food); err != nil {
		return nil, models.WrapRepositoryError(err, id)
	}

	s.publish(ctx, models.NewFoodItemUpdated(food, previous))

	return food.ToResponse(s.cdnBaseURL(ctx)), nil
}

// Delete soft-deletes the item and publishes ItemDiscontinued. The row
// stays in storage, marked inactive and discontinued.
func (s *FoodService) Delete(ctx context.Context, id string) error {
	food, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return models.WrapRepositoryError(err, id)
	}

	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return models.WrapRepositoryError(err, id)
	}

	food.Discontinue()
	s.publish(ctx, models.NewItemDiscontinued(food))

	s.logger.Info("Discontinued food item", map[string]interface{}{
		"food_id": id,
	})
	return nil
}

// Search returns active items whose name or description contains the
// query.
func (s *FoodService) Search(ctx context.Context, query string) ([]*models.FoodResponse, error) {
	return s.List(ctx, models.FoodFilters{Query: &query, ActiveOnly: true})
}

// GetByPetType returns items for one pet type via the pet type index.
func (s *FoodService) GetByPetType(ctx context.Context, petType models.PetType) ([]*models.FoodResponse, error) {
	if !petType.Valid() {
		return nil, &models.ServiceError{
			Kind: models.SvcValidation,
			Err:  &models.ValidationError{Kind: models.ValidationInvalidValue, Field: "pet_type", Value: string(petType), Reason: "unknown pet type"},
		}
	}
	foods, err := s.repo.FindByPetType(ctx, petType)
	if err != nil {
		return nil, models.WrapRepositoryError(err, "")
	}
	return s.toResponses(ctx, foods), nil
}

// GetByFoodType returns items of one food type via the food type index.
func (s *FoodService) GetByFoodType(ctx context.Context, foodType models.FoodType) ([]*models.FoodResponse, error) {
	if !foodType.Valid() {
		return nil, &models.ServiceError{
			Kind: models.SvcValidation,
			Err:  &models.ValidationError{Kind: models.ValidationInvalidValue, Field: "food_type", Value: string(foodType), Reason: "unknown food type"},
		}
	}
	foods, err := s.repo.FindByFoodType(ctx, foodType)
	if err != nil {
		return nil, models.WrapRepositoryError(err, "")
	}
	return s.toResponses(ctx, foods), nil
}

// IsAvailable reports whether the item can currently be purchased.
func (s *FoodService) IsAvailable(ctx context.Context, id string) (bool, error) {
	food, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if models.IsNotFound(err) {
			return false, nil
		}
		return false, models.WrapRepositoryError(err, id)
	}
	return food.IsAvailable(), nil
}

// Count returns the number of catalog items matching the filters.
func (s *FoodService) Count(ctx context.Context, filters *models.FoodFilters) (int64, error) {
	count, err := s.repo.Count(ctx, filters)
	if err != nil {
		return 0, models.WrapRepositoryError(err, "")
	}
	return count, nil
}

func (s *FoodService) toResponses(ctx context.Context, foods []*models.Food) []*models.FoodResponse {
	cdnURL := s.cdnBaseURL(ctx)
	responses := make([]*models.FoodResponse, 0, len(foods))
	for _, f := range foods {
		responses = append(responses, f.ToResponse(cdnURL))
	}
	return responses
}

// publish sends the event and logs failures without surfacing them.
// Catalog writes succeed even when the bus is down.
func (s *FoodService) publish(ctx context.Context, event *models.FoodEvent) {
	if s.emitter == nil {
		return
	}
	if err := s.emitter.Emit(ctx, event); err != nil {
		s.logger.Error("Failed to publish event", map[string]interface{}{
			"event_type": string(event.EventType),
			"food_id":    event.FoodID,
			"error":      err.Error(),
		})
	}
}

// cdnBaseURL resolves the image CDN base, falling back to relative
// paths when the parameter lookup fails.
func (s *FoodService) cdnBaseURL(ctx context.Context) string {
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
