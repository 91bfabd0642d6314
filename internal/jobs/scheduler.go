package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/marcuseden/slavajewlery-sub001/internal/service"
)

// Scheduler runs the periodic sweeps: reclaiming expired share links and
// executing deletion requests whose grace period has passed.
type Scheduler struct {
	cron    *cron.Cron
	shares  *service.ShareService
	privacy *service.PrivacyService
	log     zerolog.Logger
}

func NewScheduler(shares *service.ShareService, privacy *service.PrivacyService, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithSeconds()),
		shares:  shares,
		privacy: privacy,
		log:     log,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("0 30 3 * * *", s.purgeExpiredShares); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc("0 0 * * * *", s.executeDueDeletions); err != nil { // hourly
		return err
	}

	s.cron.Start()
	return nil
}

// Stop waits for running jobs to finish, up to a short grace window.
func (s *Scheduler) Stop() {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-time.After(5 * time.Second):
	}
}

func (s *Scheduler) purgeExpiredShares() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	purged, err := s.shares.PurgeExpired(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("share link purge failed")
		return
	}
	if purged > 0 {
		s.log.Info().Int64("purged", purged).Msg("expired share links purged")
	}
}

func (s *Scheduler) executeDueDeletions() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	executed, err := s.privacy.ExecuteDue(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("deletion sweep failed")
	}
	if executed > 0 {
		s.log.Info().Int("executed", executed).Msg("scheduled deletions executed")
	}
}
