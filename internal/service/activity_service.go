package service

import (
	"context"
	"time"

	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// recordTimeout bounds the background write of one audit event.
const recordTimeout = 5 * time.Second

// activityService implements ActivityService.
type activityService struct {
	activityRepo repository.ActivityRepository
	logger       zerolog.Logger
}

// NewActivityService creates a new activity service.
func NewActivityService(activityRepo repository.ActivityRepository, logger zerolog.Logger) ActivityService {
	return &activityService{
		activityRepo: activityRepo,
		logger:       logger.With().Str("service", "activity").Logger(),
	}
}

// Record emits an audit event asynchronously. A failed write is logged and
// otherwise ignored: auditing never fails the operation being audited.
func (s *activityService) Record(ctx context.Context, actor *model.User, action, entityType, entityID string, details map[string]any) {
	entry := &model.ActivityLog{
		ID:         uuid.New(),
		Username:   "Anonymous",
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    details,
		Timestamp:  time.Now(),
	}
	if actor != nil {
		id := actor.ID
		entry.UserID = &id
		entry.Username = actor.Username
	}
	if meta, ok := model.RequestMetaFrom(ctx); ok {
		entry.IPAddress = meta.IPAddress
		entry.UserAgent = meta.UserAgent
	}

	// Detached from the request context so a finished request cannot cancel
	// the audit write.
	go func() {
		writeCtx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		defer cancel()

		if err := s.activityRepo.Insert(writeCtx, entry); err != nil {
			s.logger.Error().Err(err).Str("action", action).Msg("failed to record activity")
		}
	}()
}

// RecordSystem stores a system-originated event synchronously.
func (s *activityService) RecordSystem(ctx context.Context, action string, details map[string]any) error {
	entry := &model.ActivityLog{
		ID:         uuid.New(),
		Username:   "system",
		Action:     action,
		EntityType: "system",
		Details:    details,
		Timestamp:  time.Now(),
	}

	if err := s.activityRepo.Insert(ctx, entry); err != nil {
		s.logger.Error().Err(err).Str("action", action).Msg("failed to record system activity")
		return err
	}

	return nil
}

// List retrieves audit entries newest first.
func (s *activityService) List(ctx context.Context, limit, offset int) ([]model.ActivityLog, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 500 {
		limit = 500
	}
	if offset < 0 {
		offset = 0
	}

	return s.activityRepo.List(ctx, limit, offset)
}
