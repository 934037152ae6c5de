package models

import (
	"encoding/json"
	"time"
)

// FoodEventType names the catalog change events published to the bus.
type FoodEventType string

const (
	EventFoodItemCreated  FoodEventType = "FoodItemCreated"
	EventFoodItemUpdated  FoodEventType = "FoodItemUpdated"
	EventItemDiscontinued FoodEventType = "ItemDiscontinued"
)

// FoodEvent is the detail body of a catalog change event.
type FoodEvent struct {
	EventType FoodEventType     `json:"event_type"`
	FoodID    string            `json:"food_id"`
	Name      string            `json:"name"`
	PetType   PetType           `json:"pet_type"`
	FoodType  FoodType          `json:"food_type"`
	Timestamp time.Time         `json:"timestamp"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// NewFoodItemCreated builds the creation event. Metadata records where
// the item came from and whether an image still has to be generated.
func NewFoodItemCreated(food *Food, source CreationSource) *FoodEvent {
	metadata := map[string]string{
		"creation_source": source.String(),
	}
	if food.NeedsImageGeneration() {
		metadata["image_required"] = "true"
	}
	return newFoodEvent(EventFoodItemCreated, food, metadata)
}

// NewFoodItemUpdated builds the update event. When an image path changed,
// the new and previous paths ride along in metadata.
func NewFoodItemUpdated(food *Food, previousImage *string) *FoodEvent {
	metadata := map[string]string{}
	if food.NeedsImageGeneration() {
		metadata["image_required"] = "true"
	} else if food.ImageURL != nil {
		metadata["image_path"] = *food.ImageURL
	}
	if previousImage != nil && *previousImage != "" {
		metadata["previous_image_path"] = *previousImage
	}
	return newFoodEvent(EventFoodItemUpdated, food, metadata)
}

// NewItemDiscontinued builds the soft-delete event. The stored image
// path rides along so consumers can clean the asset up.
func NewItemDiscontinued(food *Food) *FoodEvent {
	metadata := map[string]string{
		"cleanup_type": "soft_delete",
		"reason":       "cleanup_operation",
	}
	if food.ImageURL != nil && *food.ImageURL != "" {
		metadata["image_path"] = *food.ImageURL
	}
	return newFoodEvent(EventItemDiscontinued, food, metadata)
}

func newFoodEvent(eventType FoodEventType, food *Food, metadata map[string]string) *FoodEvent {
	return &FoodEvent{
		EventType: eventType,
		FoodID:    food.ID,
		Name:      food.Name,
		PetType:   food.PetType,
		FoodType:  food.FoodType,
		Timestamp: time.Now().UTC(),
		Metadata:  metadata,
	}
}

// EventPayload is the bus-level envelope for a FoodEvent.
type EventPayload struct {
	Source     string
	DetailType string
	Detail     string
	Resources  []string
	Time       time.Time
}

// ToPayload wraps the event in its bus envelope with the given source.
func (e *FoodEvent) ToPayload(source string) (*EventPayload, error) {
	detail, err := json.Marshal(e)
	if err != nil {
		return nil, err
	}
	return &EventPayload{
		Source:     source,
		DetailType: string(e.EventType),
		Detail:     string(detail),
		Resources:  []string{"food/" + e.FoodID},
		Time:       e.Timestamp,
	}, nil
}

// EventConfig controls event publishing.
type EventConfig struct {
	BusName    string        `json:"bus_name" env:"PETFOOD_EVENTS_BUS_NAME" default:"default"`
	Source     string        `json:"source" env:"PETFOOD_EVENTS_SOURCE" default:"petfood.service"`
	MaxRetries int           `json:"max_retries" env:"PETFOOD_EVENTS_MAX_RETRIES" default:"3"`
	Timeout    time.Duration `json:"timeout" env:"PETFOOD_EVENTS_TIMEOUT" default:"30s"`
	Enabled    bool          `json:"enabled" env:"PETFOOD_EVENTS_ENABLED" default:"true"`
}

// DefaultEventConfig returns the publishing defaults.
func DefaultEventConfig() EventConfig {
	return EventConfig{
		BusName:    "default",
		Source:     "petfood.service",
		MaxRetries: 3,
		Timeout:    30 * time.Second,
		Enabled:    true,
	}
}
