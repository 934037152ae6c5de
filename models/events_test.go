package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFoodItemCreatedMetadata(t *testing.T) {
	food := NewFood(testCreateRequest())

	event := NewFoodItemCreated(food, SourceAdminAPI)
	assert.Equal(t, EventFoodItemCreated, event.EventType)
	assert.Equal(t, food.ID, event.FoodID)
	assert.Equal(t, "admin_api", event.Metadata["creation_source"])
	assert.Equal(t, "true", event.Metadata["image_required"])

	food.SetImage("images/puppy.jpg")
	event = NewFoodItemCreated(food, SourceSeeding)
	assert.Equal(t, "seeding", event.Metadata["creation_source"])
	assert.NotContains(t, event.Metadata, "image_required")
}

func TestNewFoodItemUpdatedMetadata(t *testing.T) {
	food := NewFood(testCreateRequest())

	event := NewFoodItemUpdated(food, nil)
	assert.Equal(t, "true", event.Metadata["image_required"])

	previous := food.SetImage("images/puppy-v2.jpg")
	event = NewFoodItemUpdated(food, previous)
	assert.Equal(t, "images/puppy-v2.jpg", event.Metadata["image_path"])
	assert.NotContains(t, event.Metadata, "previous_image_path")

	old := "images/puppy-v1.jpg"
	event = NewFoodItemUpdated(food, &old)
	assert.Equal(t, "images/puppy-v1.jpg", event.Metadata["previous_image_path"])
}

func TestNewItemDiscontinuedMetadata(t *testing.T) {
	food := NewFood(testCreateRequest())
	food.Discontinue()

	event := NewItemDiscontinued(food)
	assert.Equal(t, EventItemDiscontinued, event.EventType)
	assert.Equal(t, "soft_delete", event.Metadata["cleanup_type"])
	assert.Equal(t, "cleanup_operation", event.Metadata["reason"])
	// No image was ever generated, so there is nothing to clean up.
	assert.NotContains(t, event.Metadata, "image_path")

	food.SetImage("images/puppy.jpg")
	event = NewItemDiscontinued(food)
	assert.Equal(t, "images/puppy.jpg", event.Metadata["image_path"])
}

func TestToPayload(t *testing.T) {
	food := NewFood(testCreateRequest())
	event := NewFoodItemCreated(food, SourceFoodAPI)

	payload, err := event.ToPayload("petfood.service")
	require.NoError(t, err)

	assert.Equal(t, "petfood.service", payload.Source)
	assert.Equal(t, "FoodItemCreated", payload.DetailType)
	assert.Equal(t, []string{"food/" + food.ID}, payload.Resources)
	assert.Equal(t, event.Timestamp, payload.Time)

	var detail map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(payload.Detail), &detail))
	assert.Equal(t, food.ID, detail["food_id"])
	assert.Equal(t, "puppy", detail["pet_type"])
}

func TestDefaultEventConfig(t *testing.T) {
	cfg := DefaultEventConfig()
	assert.Equal(t, "default", cfg.BusName)
	assert.Equal(t, "petfood.service", cfg.Source)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.True(t, cfg.Enabled)
}
