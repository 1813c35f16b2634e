package repository

import (
	"os"
	"sort"
	"sync"

	"studybot_backend/internal/model"
	"studybot_backend/pkg/monitoring"

	"go.uber.org/zap"
)

// ProfileRepository owns all user profiles, keyed by the platform user id in
// string form. Profiles are created lazily with defaults on first reference;
// no operation deletes one. Same persistence contract as the catalog: every
// mutation rewrites the whole document under the mutex.
type ProfileRepository struct {
	mu       sync.RWMutex
	path     string
	profiles map[string]*model.Profile
	log      *zap.Logger
}

// NewProfileRepository loads the profile document from path. Malformed or
// missing data starts the store empty; that is logged, never surfaced.
func NewProfileRepository(path string, log *zap.Logger) (*ProfileRepository, error) {
	r := &ProfileRepository{
		path:     path,
		profiles: make(map[string]*model.Profile),
		log:      log,
	}

	var doc map[string]*model.Profile
	if err := readDocument(path, &doc); err != nil {
		if !os.IsNotExist(err) {
			log.Error("failed to load profiles, starting fresh", zap.String("path", path), zap.Error(err))
		}
	} else {
		for uid, p := range doc {
			if p.Bookmarks == nil {
				p.Bookmarks = []string{}
			}
			r.profiles[uid] = p
		}
	}

	return r, nil
}

// persist rewrites the backing document. Callers hold the write lock.
func (r *ProfileRepository) persist() error {
	return writeDocument(r.path, r.profiles)
}

// ensure returns the profile for userID, creating the default one if
// absent. Callers hold the write lock. The second result reports whether a
// profile was created and therefore needs persisting.
func (r *ProfileRepository) ensure(userID string) (*model.Profile, bool) {
	if p, ok := r.profiles[userID]; ok {
		return p, false
	}
	p := model.NewProfile()
	r.profiles[userID] = p
	return p, true
}

// Ensure creates the default profile for userID if it does not exist yet.
// Idempotent; every read-style accessor goes through it as well, so a
// profile is never absent once referenced.
func (r *ProfileRepository) Ensure(userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, created := r.ensure(userID); created {
		monitoring.StoreOpCounter.WithLabelValues("profile", "create").Inc()
		return r.persist()
	}
	return nil
}

// Exists reports whether a profile has been materialized for userID.
func (r *ProfileRepository) Exists(userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.profiles[userID]
	return ok
}

// GetLanguage returns the user's UI language, creating the profile with the
// default language when first referenced.
func (r *ProfileRepository) GetLanguage(userID string) (model.UILanguage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, created := r.ensure(userID)
	if created {
		if err := r.persist(); err != nil {
			return "", err
		}
	}
	return p.Lang, nil
}

func (r *ProfileRepository) SetLanguage(userID string, lang model.UILanguage) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, _ := r.ensure(userID)
	p.Lang = lang
	monitoring.StoreOpCounter.WithLabelValues("profile", "set_language").Inc()
	return r.persist()
}

// AddPoints adds delta to the running total. The store accepts any delta,
// including negative, and applies no floor; monotonicity is a property of
// the calling flows, not enforced here.
func (r *ProfileRepository) AddPoints(userID string, delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, _ := r.ensure(userID)
	p.Points += delta
	monitoring.StoreOpCounter.WithLabelValues("profile", "add_points").Inc()
	return r.persist()
}

func (r *ProfileRepository) Points(userID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, created := r.ensure(userID)
	if created {
		if err := r.persist(); err != nil {
			return 0, err
		}
	}
	return p.Points, nil
}

func (r *ProfileRepository) SetDaily(userID string, enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, _ := r.ensure(userID)
	p.Daily = enabled
	monitoring.StoreOpCounter.WithLabelValues("profile", "set_daily").Inc()
	return r.persist()
}

func (r *ProfileRepository) GetDaily(userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, created := r.ensure(userID)
	if created {
		if err := r.persist(); err != nil {
			return false, err
		}
	}
	return p.Daily, nil
}

// DailySubscribers returns the ids of every user with the daily flag set,
// sorted for deterministic dispatch order.
func (r *ProfileRepository) DailySubscribers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0)
	for uid, p := range r.profiles {
		if p.Daily {
			out = append(out, uid)
		}
	}
	sort.Strings(out)
	return out
}

// Bookmark appends itemID to the user's bookmark list if not already
// present. Idempotent. The id is not checked against the catalog here.
func (r *ProfileRepository) Bookmark(userID, itemID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, _ := r.ensure(userID)
	for _, id := range p.Bookmarks {
		if id == itemID {
			return nil
		}
	}
	p.Bookmarks = append(p.Bookmarks, itemID)
	monitoring.StoreOpCounter.WithLabelValues("profile", "bookmark").Inc()
	return r.persist()
}

// Unbookmark removes itemID from the list; removing an absent entry is a
// no-op.
func (r *ProfileRepository) Unbookmark(userID, itemID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, _ := r.ensure(userID)
	for i, id := range p.Bookmarks {
		if id == itemID {
			p.Bookmarks = append(p.Bookmarks[:i], p.Bookmarks[i+1:]...)
			monitoring.StoreOpCounter.WithLabelValues("profile", "unbookmark").Inc()
			return r.persist()
		}
	}
	return nil
}

// ListBookmarks returns the raw bookmarked item ids in insertion order.
// Resolution against the catalog is the caller's job.
func (r *ProfileRepository) ListBookmarks(userID string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, created := r.ensure(userID)
	if created {
		if err := r.persist(); err != nil {
			return nil, err
		}
	}
	out := make([]string, len(p.Bookmarks))
	copy(out, p.Bookmarks)
	return out, nil
}

// GetQuizSession returns a copy of the user's active session, nil when there
// is none. Copying keeps callers from mutating stored state outside the
// mutex; writes go back through SetQuizSession.
func (r *ProfileRepository) GetQuizSession(userID string) (*model.QuizSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, created := r.ensure(userID)
	if created {
		if err := r.persist(); err != nil {
			return nil, err
		}
	}
	return p.Quiz.Clone(), nil
}

// SetQuizSession stores a copy of the session; nil clears it. The store does
// not interpret session contents.
func (r *ProfileRepository) SetQuizSession(userID string, s *model.QuizSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, _ := r.ensure(userID)
	p.Quiz = s.Clone()
	monitoring.StoreOpCounter.WithLabelValues("profile", "set_quiz").Inc()
	return r.persist()
}

// Leaderboard returns the top users by points, descending, ties broken by
// user id so the ranking is stable.
func (r *ProfileRepository) Leaderboard(limit int) []model.LeaderboardEntry {
	r.mu.RLock()
	out := make([]model.LeaderboardEntry, 0, len(r.profiles))
	for uid, p := range r.profiles {
		out = append(out, model.LeaderboardEntry{UserID: uid, Points: p.Points})
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Points != out[j].Points {
			return out[i].Points > out[j].Points
		}
		return out[i].UserID < out[j].UserID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Snapshot returns a copy of the full profile document, for backups.
func (r *ProfileRepository) Snapshot() map[string]model.Profile {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]model.Profile, len(r.profiles))
	for uid, p := range r.profiles {
		cp := *p
		cp.Bookmarks = append([]string(nil), p.Bookmarks...)
		cp.Quiz = p.Quiz.Clone()
		out[uid] = cp
	}
	return out
}
