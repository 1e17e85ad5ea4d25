package services

import (
	"context"
	"fmt"
	"log/slog"

	"tempo/internal/amqp"
	"tempo/internal/core"
	"tempo/internal/storage"
	"tempo/internal/store"
)

// ActivityService is the sqlite-backed record store with change
// notifications: every successful mutation also publishes an AMQP message
// for the summary worker. Publish errors never fail the request - the
// write already landed, and the worker's periodic reconciliation catches
// up on missed messages.
type ActivityService struct {
	storage    *storage.SQLiteRepository
	amqpClient *amqp.Client
}

var _ store.Store = (*ActivityService)(nil)

func NewActivityService(storage *storage.SQLiteRepository, amqpClient *amqp.Client) *ActivityService {
	return &ActivityService{
		storage:    storage,
		amqpClient: amqpClient,
	}
}

// Query implements store.Store.
func (s *ActivityService) Query(ctx context.Context, owner string, date core.Date) ([]core.Activity, error) {
	return s.storage.Query(ctx, owner, date)
}

// Insert implements store.Store and publishes a created message.
func (s *ActivityService) Insert(ctx context.Context, n core.NewActivity) (core.Activity, error) {
	a, err := s.storage.Insert(ctx, n)
	if err != nil {
		return core.Activity{}, fmt.Errorf("insert activity: %w", err)
	}

	s.publishChange(ctx, a.Owner, a.Date, a.ID, amqp.ChangeCreated)
	return a, nil
}

// Update implements store.Store and publishes an updated message.
func (s *ActivityService) Update(ctx context.Context, id string, p core.Patch) error {
	// The message needs the row's (owner, date); resolve it before the write.
	owner, date, err := s.storage.ResolveActivity(ctx, id)
	if err != nil {
		return err
	}

	if err := s.storage.Update(ctx, id, p); err != nil {
		return err
	}

	s.publishChange(ctx, owner, date, id, amqp.ChangeUpdated)
	return nil
}

// Delete implements store.Store and publishes a deleted message.
func (s *ActivityService) Delete(ctx context.Context, id string) error {
	owner, date, err := s.storage.ResolveActivity(ctx, id)
	if err != nil {
		return err
	}

	if err := s.storage.Delete(ctx, id); err != nil {
		return err
	}

	s.publishChange(ctx, owner, date, id, amqp.ChangeDeleted)
	return nil
}

func (s *ActivityService) publishChange(ctx context.Context, owner string, date core.Date, id, change string) {
	if s.amqpClient == nil {
		slog.DebugContext(ctx, "AMQP client not available, skipping change message",
			"activity_id", id, "change", change)
		return
	}

	if err := s.amqpClient.PublishActivityChange(ctx, owner, date.String(), id, change); err != nil {
		slog.ErrorContext(ctx, "Failed to publish change message",
			"activity_id", id, "change", change, "error", err)
	}
}

// Close closes both storage and AMQP connections.
func (s *ActivityService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close activity service: %v", errs)
	}

	return nil
}
