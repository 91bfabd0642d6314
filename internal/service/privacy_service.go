package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/marcuseden/slavajewlery-sub001/internal/config"
	"github.com/marcuseden/slavajewlery-sub001/internal/models"
	"github.com/marcuseden/slavajewlery-sub001/internal/repository"
)

// PrivacyStore is the data-subject-request surface of the database: one
// aggregation for export, one transaction for anonymize, and the pending
// request row.
type PrivacyStore interface {
	Export(ctx context.Context, userID string) (models.ExportDocument, error)
	Anonymize(ctx context.Context, userID string) error
	UpsertDeletionRequest(ctx context.Context, req models.DeletionRequest) error
	GetDeletionRequest(ctx context.Context, userID string) (models.DeletionRequest, error)
	CancelDeletionRequest(ctx context.Context, userID string) error
	ListDue(ctx context.Context, now time.Time) ([]string, error)
}

type DeletionOutcome struct {
	DeletedAt    *time.Time
	ScheduledFor *time.Time
}

type DeletionStatus struct {
	Requested    bool
	ScheduledFor *time.Time
	CanCancel    bool
}

type PrivacyService struct {
	store PrivacyStore
	cfg   config.PrivacyConfig
	log   zerolog.Logger
	now   func() time.Time
}

func NewPrivacyService(store PrivacyStore, cfg config.PrivacyConfig, log zerolog.Logger) *PrivacyService {
	return &PrivacyService{
		store: store,
		cfg:   cfg,
		log:   log,
		now:   time.Now,
	}
}

// Export materializes the whole document before returning; a failed
// aggregation yields no partial export.
func (s *PrivacyService) Export(ctx context.Context, userID string) (models.ExportDocument, error) {
	return s.store.Export(ctx, userID)
}

// RequestDeletion either anonymizes right away (explicit-consent flows) or
// records a request that executes after the grace period.
func (s *PrivacyService) RequestDeletion(ctx context.Context, userID string, immediate bool, reason string) (DeletionOutcome, error) {
	if immediate {
		if err := s.store.Anonymize(ctx, userID); err != nil {
			return DeletionOutcome{}, fmt.Errorf("anonymize: %w", err)
		}
		deletedAt := s.now().UTC()
		s.log.Info().Str("user_id", userID).Msg("account anonymized immediately")
		return DeletionOutcome{DeletedAt: &deletedAt}, nil
	}

	scheduledFor := s.now().UTC().Add(s.cfg.GracePeriod)
	err := s.store.UpsertDeletionRequest(ctx, models.DeletionRequest{
		UserID:       userID,
		Reason:       reason,
		ScheduledFor: scheduledFor,
	})
	if err != nil {
		return DeletionOutcome{}, fmt.Errorf("schedule deletion: %w", err)
	}

	s.log.Info().Str("user_id", userID).Time("scheduled_for", scheduledFor).Msg("account deletion scheduled")
	return DeletionOutcome{ScheduledFor: &scheduledFor}, nil
}

// CancelDeletion clears a pending request. Cancelling twice is a no-op.
func (s *PrivacyService) CancelDeletion(ctx context.Context, userID string) error {
	return s.store.CancelDeletionRequest(ctx, userID)
}

// Status is side-effect free.
func (s *PrivacyService) Status(ctx context.Context, userID string) (DeletionStatus, error) {
	req, err := s.store.GetDeletionRequest(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrDeletionRequestNotFound) {
			return DeletionStatus{}, nil
		}
		return DeletionStatus{}, err
	}
	if req.ExecutedAt != nil {
		return DeletionStatus{Requested: true}, nil
	}

	scheduled := req.ScheduledFor
	return DeletionStatus{
		Requested:    true,
		ScheduledFor: &scheduled,
		CanCancel:    scheduled.After(s.now()),
	}, nil
}

// ExecuteDue anonymizes every account whose grace period has passed. One
// failing account does not stop the sweep.
func (s *PrivacyService) ExecuteDue(ctx context.Context) (int, error) {
	due, err := s.store.ListDue(ctx, s.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("list due deletions: %w", err)
	}

	executed := 0
	var firstErr error
	for _, userID := range due {
		if err := s.store.Anonymize(ctx, userID); err != nil {
			s.log.Error().Err(err).Str("user_id", userID).Msg("scheduled anonymization failed")
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		executed++
	}
	return executed, firstErr
}
