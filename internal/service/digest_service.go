package service

import (
	"context"
	"fmt"

	"studybot_backend/internal/repository"
	"studybot_backend/pkg/monitoring"
	"studybot_backend/pkg/notifier"

	"go.uber.org/zap"
)

// DigestService sends the daily suggestion: the catalog's most recent item,
// one notification per subscribed profile. It only reads from both stores.
type DigestService struct {
	CatalogRepo *repository.CatalogRepository
	ProfileRepo *repository.ProfileRepository
	Notifier    notifier.Notifier
	Log         *zap.Logger
}

func NewDigestService(catalogRepo *repository.CatalogRepository, profileRepo *repository.ProfileRepository, n notifier.Notifier, log *zap.Logger) *DigestService {
	return &DigestService{
		CatalogRepo: catalogRepo,
		ProfileRepo: profileRepo,
		Notifier:    n,
		Log:         log,
	}
}

// RunOnce performs one digest round and returns the number of notifications
// delivered. An empty catalog or subscriber list is a quiet no-op.
func (s *DigestService) RunOnce(ctx context.Context) (int, error) {
	subscribers := s.ProfileRepo.DailySubscribers()
	if len(subscribers) == 0 {
		return 0, nil
	}

	latest := s.CatalogRepo.TopLatest(1)
	if len(latest) == 0 {
		return 0, nil
	}
	pick := latest[0]
	message := fmt.Sprintf("Daily pick: %s (Class %s, %s, %s) %s",
		pick.Title, pick.Class, pick.Subject, pick.Category, pick.URL)

	sent := 0
	for _, uid := range subscribers {
		if err := s.Notifier.Send(ctx, uid, message); err != nil {
			s.Log.Warn("daily digest delivery failed", zap.String("user_id", uid), zap.Error(err))
			continue
		}
		monitoring.DigestDelivered.Inc()
		sent++
	}
	s.Log.Info("daily digest dispatched", zap.Int("sent", sent), zap.String("item_id", pick.ID))
	return sent, nil
}
