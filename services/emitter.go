// Package services implements the catalog and cart business operations
// and event publishing.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	ebtypes "github.com/aws/aws-sdk-go-v2/service/eventbridge/types"

	"github.com/petstorecloud/petfood/models"
	"github.com/petstorecloud/petfood/pkg/logging"
)

var (
	// ErrEmitterDisabled is returned when publishing is switched off.
	ErrEmitterDisabled = errors.New("event emitter is disabled")
	// ErrMaxRetriesExceeded is returned when every delivery attempt failed.
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")
)

// EventBridgeAPI is the slice of the EventBridge client the emitter uses.
type EventBridgeAPI interface {
	PutEvents(ctx context.Context, params *eventbridge.PutEventsInput, optFns ...func(*eventbridge.Options)) (*eventbridge.PutEventsOutput, error)
}

// SleepFunc waits for the given duration or until the context is done.
// Injectable so tests can run without real delays.
type SleepFunc func(ctx context.Context, d time.Duration) error

func defaultSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Backoff returns the delay before retry attempt n (1-based):
// 100ms doubling per attempt.
func Backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return 100 * time.Millisecond * (1 << (attempt - 1))
}

// EventEmitter publishes catalog change events with bounded retries.
type EventEmitter struct {
	client EventBridgeAPI
	config models.EventConfig
	logger logging.Logger
	sleep  SleepFunc
}

// NewEventEmitter validates the config and builds an emitter. Logger
// may be nil.
func NewEventEmitter(client EventBridgeAPI, config models.EventConfig, logger logging.Logger) (*EventEmitter, error) {
	if config.BusName == "" {
		return nil, &models.ServiceError{Kind: models.SvcConfiguration, Message: "event bus name must not be empty"}
	}
	if config.Source == "" {
		return nil, &models.ServiceError{Kind: models.SvcConfiguration, Message: "event source must not be empty"}
	}
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &EventEmitter{
		client: client,
		config: config,
		logger: logger,
		sleep:  defaultSleep,
	}, nil
}

// SetSleep replaces the delay function. Intended for tests.
func (e *EventEmitter) SetSleep(sleep SleepFunc) {
	e.sleep = sleep
}

// Emit publishes the event, retrying transient failures with
// exponential backoff. A response reporting failed entries counts as a
// failed attempt. The caller decides whether delivery failure matters;
// domain writes are never rolled back on emit failure.
func (e *EventEmitter) Emit(ctx context.Context, event *models.FoodEvent) error {
	if !e.config.Enabled {
		return ErrEmitterDisabled
	}

	payload, err := event.ToPayload(e.config.Source)
	if err != nil {
		return &models.ServiceError{Kind: models.SvcExternalService, Message: "encoding event detail", Err: err}
	}

	if e.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.config.Timeout)
		defer cancel()
	}

	// MaxRetries is the total attempt budget, not the number of retries
	// after the first try.
	var lastErr error
	maxAttempts := e.config.MaxRetries
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		lastErr = e.putEvent(ctx, payload)
		if lastErr == nil {
			e.logger.Debug("Published event", map[string]interface{}{
				"event_type": string(event.EventType),
				"food_id":    event.FoodID,
				"attempt":    attempt,
			})
			return nil
		}

		e.logger.Warn("Event publish attempt failed", map[string]interface{}{
			"event_type": string(event.EventType),
			"food_id":    event.FoodID,
			"attempt":    attempt,
			"error":      lastErr.Error(),
		})

		if attempt == maxAttempts {
			break
		}
		if err := e.sleep(ctx, Backoff(attempt)); err != nil {
			return fmt.Errorf("event publish canceled after %d attempts: %w", attempt, err)
		}
	}

	return fmt.Errorf("event publish failed after %d attempts: %w: %v", maxAttempts, ErrMaxRetriesExceeded, lastErr)
}

func (e *EventEmitter) putEvent(ctx context.Context, payload *models.EventPayload) error {
	out, err := e.client.PutEvents(ctx, &eventbridge.PutEventsInput{
		Entries: []ebtypes.PutEventsRequestEntry{
			{
				EventBusName: aws.String(e.config.BusName),
				Source:       aws.String(payload.Source),
				DetailType:   aws.String(payload.DetailType),
				Detail:       aws.String(payload.Detail),
				Resources:    payload.Resources,
				Time:         aws.Time(payload.Time),
			},
		},
	})
	if err != nil {
		return err
	}
	if out.FailedEntryCount > 0 {
		for _, entry := range out.Entries {
			if entry.ErrorCode != nil {
				return fmt.Errorf("event bus rejected entry: %s: %s",
					aws.ToString(entry.ErrorCode), aws.ToString(entry.ErrorMessage))
			}
		}
		return fmt.Errorf("event bus rejected %d entries", out.FailedEntryCount)
	}
	return nil
}
