package service

import (
	"context"
	"fmt"

	"studybot_backend/internal/model"
	"studybot_backend/internal/repository"
	"studybot_backend/pkg/notifier"

	"go.uber.org/zap"
)

type ProfileService struct {
	ProfileRepo *repository.ProfileRepository
	CatalogRepo *repository.CatalogRepository
	Notifier    notifier.Notifier
	Log         *zap.Logger
}

func NewProfileService(profileRepo *repository.ProfileRepository, catalogRepo *repository.CatalogRepository, n notifier.Notifier, log *zap.Logger) *ProfileService {
	return &ProfileService{
		ProfileRepo: profileRepo,
		CatalogRepo: catalogRepo,
		Notifier:    n,
		Log:         log,
	}
}

func (s *ProfileService) GetLanguage(userID string) (model.UILanguage, error) {
	return s.ProfileRepo.GetLanguage(userID)
}

func (s *ProfileService) SetLanguage(userID string, lang model.UILanguage) error {
	if !model.UILanguageSupported(lang) {
		return fmt.Errorf("unsupported language %q", lang)
	}
	return s.ProfileRepo.SetLanguage(userID, lang)
}

// AddBookmark validates the item exists, records the bookmark and awards a
// point. Bookmarking an already-bookmarked item is a quiet success with no
// extra point.
func (s *ProfileService) AddBookmark(userID, itemID string) error {
	if _, err := s.CatalogRepo.Get(itemID); err != nil {
		return err
	}
	ids, err := s.ProfileRepo.ListBookmarks(userID)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if id == itemID {
			return nil
		}
	}
	if err := s.ProfileRepo.Bookmark(userID, itemID); err != nil {
		return err
	}
	return s.ProfileRepo.AddPoints(userID, PointsBookmark)
}

func (s *ProfileService) RemoveBookmark(userID, itemID string) error {
	return s.ProfileRepo.Unbookmark(userID, itemID)
}

// Bookmarks resolves the user's bookmark ids against the catalog. Ids whose
// item has since been deleted are silently dropped; the stale bookmark is
// left in place in case the item is re-ingested under the same id.
func (s *ProfileService) Bookmarks(userID string) ([]model.Item, error) {
	ids, err := s.ProfileRepo.ListBookmarks(userID)
	if err != nil {
		return nil, err
	}
	out := make([]model.Item, 0, len(ids))
	for _, id := range ids {
		it, err := s.CatalogRepo.Get(id)
		if err != nil {
			continue
		}
		out = append(out, it)
	}
	return out, nil
}

func (s *ProfileService) SetDaily(userID string, enabled bool) error {
	return s.ProfileRepo.SetDaily(userID, enabled)
}

func (s *ProfileService) Points(userID string) (int, error) {
	return s.ProfileRepo.Points(userID)
}

func (s *ProfileService) Leaderboard(limit int) []model.LeaderboardEntry {
	return s.ProfileRepo.Leaderboard(limit)
}

// Broadcast sends message to every daily subscriber and returns the number
// of successful deliveries. Per-user failures are logged and skipped.
func (s *ProfileService) Broadcast(ctx context.Context, message string) (int, error) {
	if message == "" {
		return 0, fmt.Errorf("empty broadcast message")
	}
	sent := 0
	for _, uid := range s.ProfileRepo.DailySubscribers() {
		if err := s.Notifier.Send(ctx, uid, message); err != nil {
			s.Log.Warn("broadcast delivery failed", zap.String("user_id", uid), zap.Error(err))
			continue
		}
		sent++
	}
	return sent, nil
}
