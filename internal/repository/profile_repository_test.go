package repository

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"studybot_backend/internal/model"

	"go.uber.org/zap"
)

func newTestProfiles(t *testing.T) *ProfileRepository {
	t.Helper()
	path := filepath.Join(t.TempDir(), "users.json")
	repo, err := NewProfileRepository(path, zap.NewNop())
	if err != nil {
		t.Fatalf("NewProfileRepository: %v", err)
	}
	return repo
}

func TestLazyProfileCreation(t *testing.T) {
	repo := newTestProfiles(t)

	if repo.Exists("u1") {
		t.Fatalf("profile should not exist before first reference")
	}

	lang, err := repo.GetLanguage("u1")
	if err != nil {
		t.Fatalf("GetLanguage: %v", err)
	}
	if lang != model.UIHindi {
		t.Fatalf("default language: want=%q got=%q", model.UIHindi, lang)
	}
	if !repo.Exists("u1") {
		t.Fatalf("profile should be materialized after first reference")
	}

	// Defaults across the new profile.
	pts, err := repo.Points("u1")
	if err != nil {
		t.Fatalf("Points: %v", err)
	}
	if pts != 0 {
		t.Fatalf("default points: want=0 got=%d", pts)
	}
	daily, err := repo.GetDaily("u1")
	if err != nil {
		t.Fatalf("GetDaily: %v", err)
	}
	if daily {
		t.Fatalf("daily should default to disabled")
	}
	marks, err := repo.ListBookmarks("u1")
	if err != nil {
		t.Fatalf("ListBookmarks: %v", err)
	}
	if len(marks) != 0 {
		t.Fatalf("default bookmarks: want=0 got=%d", len(marks))
	}
}

func TestLazyCreationPersists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "users.json")
	repo, err := NewProfileRepository(path, zap.NewNop())
	if err != nil {
		t.Fatalf("NewProfileRepository: %v", err)
	}
	if _, err := repo.Points("u1"); err != nil {
		t.Fatalf("Points: %v", err)
	}

	reloaded, err := NewProfileRepository(path, zap.NewNop())
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !reloaded.Exists("u1") {
		t.Fatalf("lazily created profile should survive reload")
	}
}

func TestCorruptProfilesStartFresh(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	if err := os.WriteFile(path, []byte("]["), 0644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}
	repo, err := NewProfileRepository(path, zap.NewNop())
	if err != nil {
		t.Fatalf("NewProfileRepository: %v", err)
	}
	if repo.Exists("anyone") {
		t.Fatalf("store should start empty after corrupt load")
	}
}

func TestSetLanguageRoundTrip(t *testing.T) {
	repo := newTestProfiles(t)

	if err := repo.SetLanguage("u1", model.UIEnglish); err != nil {
		t.Fatalf("SetLanguage: %v", err)
	}
	lang, err := repo.GetLanguage("u1")
	if err != nil {
		t.Fatalf("GetLanguage: %v", err)
	}
	if lang != model.UIEnglish {
		t.Fatalf("language: want=%q got=%q", model.UIEnglish, lang)
	}
}

func TestPointsAccumulate(t *testing.T) {
	repo := newTestProfiles(t)

	for _, delta := range []int{1, 2, 1} {
		if err := repo.AddPoints("u1", delta); err != nil {
			t.Fatalf("AddPoints: %v", err)
		}
	}
	pts, err := repo.Points("u1")
	if err != nil {
		t.Fatalf("Points: %v", err)
	}
	if pts != 4 {
		t.Fatalf("points: want=4 got=%d", pts)
	}

	// The store applies any delta; no floor.
	if err := repo.AddPoints("u1", -10); err != nil {
		t.Fatalf("AddPoints negative: %v", err)
	}
	pts, _ = repo.Points("u1")
	if pts != -6 {
		t.Fatalf("points after negative delta: want=-6 got=%d", pts)
	}
}

func TestBookmarkSetSemantics(t *testing.T) {
	repo := newTestProfiles(t)

	for _, id := range []string{"a", "b", "a"} {
		if err := repo.Bookmark("u1", id); err != nil {
			t.Fatalf("Bookmark: %v", err)
		}
	}
	marks, err := repo.ListBookmarks("u1")
	if err != nil {
		t.Fatalf("ListBookmarks: %v", err)
	}
	if len(marks) != 2 || marks[0] != "a" || marks[1] != "b" {
		t.Fatalf("bookmarks: want=[a b] got=%v", marks)
	}

	if err := repo.Unbookmark("u1", "a"); err != nil {
		t.Fatalf("Unbookmark: %v", err)
	}
	if err := repo.Unbookmark("u1", "ghost"); err != nil {
		t.Fatalf("Unbookmark absent: %v", err)
	}
	marks, _ = repo.ListBookmarks("u1")
	if len(marks) != 1 || marks[0] != "b" {
		t.Fatalf("bookmarks after remove: want=[b] got=%v", marks)
	}
}

func TestDailySubscribers(t *testing.T) {
	repo := newTestProfiles(t)

	if err := repo.SetDaily("u3", true); err != nil {
		t.Fatalf("SetDaily: %v", err)
	}
	if err := repo.SetDaily("u1", true); err != nil {
		t.Fatalf("SetDaily: %v", err)
	}
	if err := repo.SetDaily("u2", false); err != nil {
		t.Fatalf("SetDaily: %v", err)
	}

	subs := repo.DailySubscribers()
	if len(subs) != 2 || subs[0] != "u1" || subs[1] != "u3" {
		t.Fatalf("subscribers: want=[u1 u3] got=%v", subs)
	}

	if err := repo.SetDaily("u3", false); err != nil {
		t.Fatalf("SetDaily off: %v", err)
	}
	subs = repo.DailySubscribers()
	if len(subs) != 1 || subs[0] != "u1" {
		t.Fatalf("subscribers after opt-out: want=[u1] got=%v", subs)
	}
}

func TestLeaderboardOrdering(t *testing.T) {
	repo := newTestProfiles(t)

	points := map[string]int{"alice": 5, "bob": 9, "carol": 5, "dave": 1}
	for uid, p := range points {
		if err := repo.AddPoints(uid, p); err != nil {
			t.Fatalf("AddPoints: %v", err)
		}
	}

	board := repo.Leaderboard(3)
	if len(board) != 3 {
		t.Fatalf("leaderboard size: want=3 got=%d", len(board))
	}
	wantOrder := []string{"bob", "alice", "carol"}
	for i, want := range wantOrder {
		if board[i].UserID != want {
			t.Fatalf("leaderboard: want=%v got=%v", wantOrder, board)
		}
	}
}

func TestQuizSessionRoundTrip(t *testing.T) {
	repo := newTestProfiles(t)

	s, err := repo.GetQuizSession("u1")
	if err != nil {
		t.Fatalf("GetQuizSession: %v", err)
	}
	if s != nil {
		t.Fatalf("fresh profile should have no session")
	}

	session := &model.QuizSession{
		Subject: "Maths",
		Questions: []model.QuizQuestion{
			{Prompt: "2+2?", Options: []string{"3", "4"}, Answer: 1},
		},
	}
	if err := repo.SetQuizSession("u1", session); err != nil {
		t.Fatalf("SetQuizSession: %v", err)
	}
	got, err := repo.GetQuizSession("u1")
	if err != nil {
		t.Fatalf("GetQuizSession: %v", err)
	}
	if got == nil || got.Subject != "Maths" || len(got.Questions) != 1 {
		t.Fatalf("session round trip: got=%+v", got)
	}

	if err := repo.SetQuizSession("u1", nil); err != nil {
		t.Fatalf("clear session: %v", err)
	}
	got, _ = repo.GetQuizSession("u1")
	if got != nil {
		t.Fatalf("session should be cleared")
	}
}

// The store hands out copies of the quiz session; mutating either side of
// the exchange must not touch stored state outside the mutex.
func TestQuizSessionCopiedOut(t *testing.T) {
	repo := newTestProfiles(t)

	session := &model.QuizSession{
		Subject: "Maths",
		Questions: []model.QuizQuestion{
			{Prompt: "2+2?", Options: []string{"3", "4"}, Answer: 1},
		},
	}
	if err := repo.SetQuizSession("u1", session); err != nil {
		t.Fatalf("SetQuizSession: %v", err)
	}

	// Mutating the caller's value after storing changes nothing.
	session.Score = 99
	session.Questions[0].Prompt = "mutated"
	got, err := repo.GetQuizSession("u1")
	if err != nil {
		t.Fatalf("GetQuizSession: %v", err)
	}
	if got.Score != 0 || got.Questions[0].Prompt != "2+2?" {
		t.Fatalf("stored session aliases the caller's value: %+v", got)
	}

	// Mutating a fetched value changes nothing either.
	got.Index = 5
	got.Questions[0].Answer = 0
	again, _ := repo.GetQuizSession("u1")
	if again.Index != 0 || again.Questions[0].Answer != 1 {
		t.Fatalf("fetched session aliases stored state: %+v", again)
	}
}

// Meaningful under -race: every mutation must run its read-modify-write
// under the store mutex.
func TestConcurrentProfileMutations(t *testing.T) {
	repo := newTestProfiles(t)

	const workers = 8
	const rounds = 25

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < rounds; i++ {
				if err := repo.AddPoints("u1", 1); err != nil {
					t.Errorf("AddPoints: %v", err)
				}
				if err := repo.Bookmark("u1", fmt.Sprintf("item-%d-%d", w, i)); err != nil {
					t.Errorf("Bookmark: %v", err)
				}
				if err := repo.SetDaily("u1", i%2 == 0); err != nil {
					t.Errorf("SetDaily: %v", err)
				}
				if _, err := repo.GetQuizSession("u1"); err != nil {
					t.Errorf("GetQuizSession: %v", err)
				}
			}
		}(w)
	}
	wg.Wait()

	pts, err := repo.Points("u1")
	if err != nil {
		t.Fatalf("Points: %v", err)
	}
	if pts != workers*rounds {
		t.Fatalf("points: want=%d got=%d", workers*rounds, pts)
	}
	marks, err := repo.ListBookmarks("u1")
	if err != nil {
		t.Fatalf("ListBookmarks: %v", err)
	}
	if len(marks) != workers*rounds {
		t.Fatalf("bookmarks: want=%d got=%d", workers*rounds, len(marks))
	}
}

func TestProfileSnapshotIsDetached(t *testing.T) {
	repo := newTestProfiles(t)
	if err := repo.Bookmark("u1", "a"); err != nil {
		t.Fatalf("Bookmark: %v", err)
	}

	snap := repo.Snapshot()
	p := snap["u1"]
	p.Bookmarks[0] = "mutated"

	marks, _ := repo.ListBookmarks("u1")
	if marks[0] != "a" {
		t.Fatalf("snapshot mutation leaked into store: got=%v", marks)
	}
}
