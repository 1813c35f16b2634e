package repository

import (
	"os"
	"path/filepath"
	"testing"

	"studybot_backend/internal/model"
	"studybot_backend/internal/util"

	"go.uber.org/zap"
)

func newTestCatalog(t *testing.T, seed bool) *CatalogRepository {
	t.Helper()
	path := filepath.Join(t.TempDir(), "materials.json")
	repo, err := NewCatalogRepository(path, seed, zap.NewNop())
	if err != nil {
		t.Fatalf("NewCatalogRepository: %v", err)
	}
	return repo
}

func ingestOne(t *testing.T, repo *CatalogRepository, rec model.ItemRecord) {
	t.Helper()
	applied, rejected, err := repo.BulkIngest([]model.ItemRecord{rec})
	if err != nil {
		t.Fatalf("BulkIngest: %v", err)
	}
	if applied != 1 || len(rejected) != 0 {
		t.Fatalf("BulkIngest: applied=%d rejected=%v", applied, rejected)
	}
}

func TestSeedingCoversAllAxes(t *testing.T) {
	repo := newTestCatalog(t, true)

	want := 0
	for _, class := range model.SupportedClasses {
		want += len(model.ClassSubjects[class]) * len(model.Categories) * len(model.Languages)
	}
	if got := repo.Count(); got != want {
		t.Fatalf("seeded item count: want=%d got=%d", want, got)
	}

	// The seeded document must be reloadable.
	reloaded, err := NewCatalogRepository(repo.path, false, zap.NewNop())
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got := reloaded.Count(); got != want {
		t.Fatalf("reloaded item count: want=%d got=%d", want, got)
	}
}

func TestEmptyWithoutSeed(t *testing.T) {
	repo := newTestCatalog(t, false)
	if got := repo.Count(); got != 0 {
		t.Fatalf("unseeded catalog count: want=0 got=%d", got)
	}
}

func TestCorruptDocumentStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "materials.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}
	repo, err := NewCatalogRepository(path, false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewCatalogRepository: %v", err)
	}
	if got := repo.Count(); got != 0 {
		t.Fatalf("count after corrupt load: want=0 got=%d", got)
	}
}

func TestUpsertIdempotence(t *testing.T) {
	repo := newTestCatalog(t, false)

	rec := model.ItemRecord{ID: "x1", Class: "10", Subject: "Maths", Category: "Notes", Title: "Algebra", URL: "https://example.com/a"}
	ingestOne(t, repo, rec)
	rec.Title = "Algebra v2"
	ingestOne(t, repo, rec)

	if got := repo.Count(); got != 1 {
		t.Fatalf("count after double ingest: want=1 got=%d", got)
	}
	it, err := repo.Get("x1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if it.Title != "Algebra v2" {
		t.Fatalf("last write wins: want=%q got=%q", "Algebra v2", it.Title)
	}
}

func TestIngestDefaulting(t *testing.T) {
	repo := newTestCatalog(t, false)

	ingestOne(t, repo, model.ItemRecord{Class: "9", Subject: "Science", Category: "Notes", Title: "Cells", URL: "https://example.com/c"})

	items := repo.TopLatest(0)
	if len(items) != 1 {
		t.Fatalf("items: want=1 got=%d", len(items))
	}
	it := items[0]
	if it.ID == "" {
		t.Fatalf("id should be generated")
	}
	if it.Lang != model.DefaultLanguage {
		t.Fatalf("lang default: want=%q got=%q", model.DefaultLanguage, it.Lang)
	}
	if it.MediaType != model.MediaLink {
		t.Fatalf("media_type default: want=%q got=%q", model.MediaLink, it.MediaType)
	}
	if it.AddedAt == "" {
		t.Fatalf("added_at should be defaulted")
	}
	if it.Views != 0 || it.Downloads != 0 {
		t.Fatalf("counters default: want=0/0 got=%d/%d", it.Views, it.Downloads)
	}
}

func TestIngestSkipsBadRecords(t *testing.T) {
	repo := newTestCatalog(t, false)

	applied, rejected, err := repo.BulkIngest([]model.ItemRecord{
		{ID: "ok", Class: "10", Subject: "Maths", Category: "Notes", Title: "Good", URL: "https://example.com/g"},
		{ID: "no-title", Class: "10", Subject: "Maths", Category: "Notes", URL: "https://example.com/n"},
		{ID: "bad-class", Class: "13", Subject: "Maths", Category: "Notes", Title: "Bad", URL: "https://example.com/b"},
	})
	if err != nil {
		t.Fatalf("BulkIngest: %v", err)
	}
	if applied != 1 {
		t.Fatalf("applied: want=1 got=%d", applied)
	}
	if len(rejected) != 2 {
		t.Fatalf("rejected: want=2 got=%v", rejected)
	}
	if rejected[0].Index != 1 || rejected[1].Index != 2 {
		t.Fatalf("rejected indexes: got=%v", rejected)
	}
	if got := repo.Count(); got != 1 {
		t.Fatalf("count: want=1 got=%d", got)
	}
}

func TestCounterMonotonicityAndAbsentNoop(t *testing.T) {
	repo := newTestCatalog(t, false)
	ingestOne(t, repo, model.ItemRecord{ID: "x1", Class: "10", Subject: "Maths", Category: "Notes", Title: "T", URL: "https://example.com/t"})

	for i := 0; i < 3; i++ {
		if err := repo.IncrementView("x1"); err != nil {
			t.Fatalf("IncrementView: %v", err)
		}
	}
	if err := repo.IncrementDownload("x1"); err != nil {
		t.Fatalf("IncrementDownload: %v", err)
	}
	it, _ := repo.Get("x1")
	if it.Views != 3 || it.Downloads != 1 {
		t.Fatalf("counters: want=3/1 got=%d/%d", it.Views, it.Downloads)
	}

	if err := repo.IncrementView("ghost"); err != nil {
		t.Fatalf("IncrementView absent id: %v", err)
	}
	if err := repo.IncrementDownload("ghost"); err != nil {
		t.Fatalf("IncrementDownload absent id: %v", err)
	}
	if got := repo.Count(); got != 1 {
		t.Fatalf("count after absent increments: want=1 got=%d", got)
	}
}

// Browsing surfaces recency; search surfaces popularity. Both assertions use
// the same colliding fixture so the asymmetry is visible.
func TestListItemsVersusSearchOrdering(t *testing.T) {
	repo := newTestCatalog(t, false)

	_, _, err := repo.BulkIngest([]model.ItemRecord{
		{ID: "A", Class: "10", Subject: "Maths", Category: "Notes", Title: "Maths A", URL: "https://example.com/a", AddedAt: "2024-01-01T00:00:00Z", Views: 3},
		{ID: "B", Class: "10", Subject: "Maths", Category: "Notes", Title: "Maths B", URL: "https://example.com/b", AddedAt: "2024-02-01T00:00:00Z", Views: 7},
	})
	if err != nil {
		t.Fatalf("BulkIngest: %v", err)
	}

	list := repo.ListItems("10", "Maths", "Notes", "")
	if len(list) != 2 || list[0].ID != "B" || list[1].ID != "A" {
		t.Fatalf("ListItems order: want=[B A] got=%v", itemIDs(list))
	}

	search := repo.Search("Maths", "")
	if len(search) != 2 || search[0].ID != "B" || search[1].ID != "A" {
		t.Fatalf("Search order: want=[B A] got=%v", itemIDs(search))
	}
}

func TestListItemsRecencyBeatsPopularity(t *testing.T) {
	repo := newTestCatalog(t, false)

	_, _, err := repo.BulkIngest([]model.ItemRecord{
		{ID: "old-popular", Class: "10", Subject: "Maths", Category: "Notes", Title: "Old", URL: "https://example.com/o", AddedAt: "2024-01-01T00:00:00Z", Views: 100, Downloads: 50},
		{ID: "new-quiet", Class: "10", Subject: "Maths", Category: "Notes", Title: "New", URL: "https://example.com/n", AddedAt: "2024-03-01T00:00:00Z"},
		{ID: "tie-views", Class: "10", Subject: "Maths", Category: "Notes", Title: "Tie", URL: "https://example.com/t", AddedAt: "2024-01-01T00:00:00Z", Views: 100, Downloads: 60},
	})
	if err != nil {
		t.Fatalf("BulkIngest: %v", err)
	}

	got := itemIDs(repo.ListItems("10", "Maths", "Notes", ""))
	want := []string{"new-quiet", "tie-views", "old-popular"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ListItems order: want=%v got=%v", want, got)
		}
	}
}

func TestSearchGroupsByNavigationThenPopularity(t *testing.T) {
	repo := newTestCatalog(t, false)

	_, _, err := repo.BulkIngest([]model.ItemRecord{
		{ID: "c12", Class: "12", Subject: "Physics", Category: "Notes", Title: "Waves", URL: "https://example.com/1", Views: 99},
		{ID: "c10-hot", Class: "10", Subject: "Science", Category: "Notes", Title: "Waves", URL: "https://example.com/2", Views: 5},
		{ID: "c10-cold", Class: "10", Subject: "Science", Category: "Notes", Title: "Waves again", URL: "https://example.com/3", Views: 1},
	})
	if err != nil {
		t.Fatalf("BulkIngest: %v", err)
	}

	got := itemIDs(repo.Search("waves", ""))
	// Class ascending groups first ("10" < "12" as strings), popularity
	// orders within the group.
	want := []string{"c10-hot", "c10-cold", "c12"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Search order: want=%v got=%v", want, got)
		}
	}
}

func TestSearchMatchesTitleSubjectCategory(t *testing.T) {
	repo := newTestCatalog(t, false)

	_, _, err := repo.BulkIngest([]model.ItemRecord{
		{ID: "t", Class: "10", Subject: "Science", Category: "Notes", Title: "Optics basics", URL: "https://example.com/1"},
		{ID: "s", Class: "10", Subject: "Optics", Category: "Notes", Title: "Other", URL: "https://example.com/2"},
		{ID: "c", Class: "10", Subject: "Science", Category: "Optics papers", Title: "Misc", URL: "https://example.com/3"},
		{ID: "none", Class: "10", Subject: "Science", Category: "Notes", Title: "Plain", URL: "https://example.com/4"},
	})
	if err != nil {
		t.Fatalf("BulkIngest: %v", err)
	}

	got := repo.Search("optics", "")
	if len(got) != 3 {
		t.Fatalf("Search matches: want=3 got=%d (%v)", len(got), itemIDs(got))
	}
	for _, it := range got {
		if it.ID == "none" {
			t.Fatalf("Search matched non-matching item")
		}
	}
}

func TestSearchLanguageFilter(t *testing.T) {
	repo := newTestCatalog(t, false)

	_, _, err := repo.BulkIngest([]model.ItemRecord{
		{ID: "en", Class: "10", Subject: "Maths", Category: "Notes", Title: "Algebra", URL: "https://example.com/1", Lang: "English"},
		{ID: "hi", Class: "10", Subject: "Maths", Category: "Notes", Title: "Algebra", URL: "https://example.com/2", Lang: "Hindi"},
	})
	if err != nil {
		t.Fatalf("BulkIngest: %v", err)
	}

	got := repo.Search("algebra", "Hindi")
	if len(got) != 1 || got[0].ID != "hi" {
		t.Fatalf("language-filtered search: want=[hi] got=%v", itemIDs(got))
	}
}

func TestStructuredSearchAndSemantics(t *testing.T) {
	repo := newTestCatalog(t, false)

	_, _, err := repo.BulkIngest([]model.ItemRecord{
		{ID: "hit", Class: "12", Subject: "Physics", Category: "Notes", Title: "Electrostatics Fields", URL: "https://example.com/1", Lang: "English"},
		{ID: "wrong-class", Class: "11", Subject: "Physics", Category: "Notes", Title: "Electrostatics Intro", URL: "https://example.com/2", Lang: "English"},
		{ID: "wrong-keyword", Class: "12", Subject: "Physics", Category: "Notes", Title: "Optics", URL: "https://example.com/3", Lang: "English"},
	})
	if err != nil {
		t.Fatalf("BulkIngest: %v", err)
	}

	got := repo.StructuredSearch(SearchParams{Class: "12", Subject: "physics", Keyword: "electrostatics"})
	if len(got) != 1 || got[0].ID != "hit" {
		t.Fatalf("StructuredSearch: want=[hit] got=%v", itemIDs(got))
	}

	// No constraints matches everything.
	if got := repo.StructuredSearch(SearchParams{}); len(got) != 3 {
		t.Fatalf("unconstrained StructuredSearch: want=3 got=%d", len(got))
	}
}

func TestSubjectAndCategoryFallbacks(t *testing.T) {
	repo := newTestCatalog(t, false)

	subs := repo.ListSubjects("11")
	if len(subs) != len(model.ClassSubjects["11"]) {
		t.Fatalf("subject fallback: want=%d got=%d", len(model.ClassSubjects["11"]), len(subs))
	}

	cats := repo.ListCategories("11", "Physics")
	if len(cats) != len(model.Categories) {
		t.Fatalf("category fallback: want=%d got=%d", len(model.Categories), len(cats))
	}

	// Once data exists, listings derive from it, sorted.
	_, _, err := repo.BulkIngest([]model.ItemRecord{
		{ID: "1", Class: "11", Subject: "Zoology", Category: "Notes", Title: "T", URL: "https://example.com/1"},
		{ID: "2", Class: "11", Subject: "Botany", Category: "Notes", Title: "T", URL: "https://example.com/2"},
	})
	if err != nil {
		t.Fatalf("BulkIngest: %v", err)
	}
	subs = repo.ListSubjects("11")
	if len(subs) != 2 || subs[0] != "Botany" || subs[1] != "Zoology" {
		t.Fatalf("stored subjects: want=[Botany Zoology] got=%v", subs)
	}
}

func TestDeleteDistinguishesAbsent(t *testing.T) {
	repo := newTestCatalog(t, false)
	ingestOne(t, repo, model.ItemRecord{ID: "x1", Class: "10", Subject: "Maths", Category: "Notes", Title: "T", URL: "https://example.com/t"})

	if err := repo.Delete("x1"); err != nil {
		t.Fatalf("Delete existing: %v", err)
	}
	if err := repo.Delete("x1"); err != util.ErrItemNotFound {
		t.Fatalf("Delete absent: want=ErrItemNotFound got=%v", err)
	}
	if got := repo.Count(); got != 0 {
		t.Fatalf("count after delete: want=0 got=%d", got)
	}
}

func TestTopLatestAndTopViewed(t *testing.T) {
	repo := newTestCatalog(t, false)

	_, _, err := repo.BulkIngest([]model.ItemRecord{
		{ID: "a", Class: "10", Subject: "Maths", Category: "Notes", Title: "A", URL: "https://example.com/a", AddedAt: "2024-01-01T00:00:00Z", Views: 9},
		{ID: "b", Class: "10", Subject: "Maths", Category: "Notes", Title: "B", URL: "https://example.com/b", AddedAt: "2024-02-01T00:00:00Z", Views: 1},
		{ID: "c", Class: "10", Subject: "Maths", Category: "Notes", Title: "C", URL: "https://example.com/c", AddedAt: "2024-03-01T00:00:00Z", Views: 5},
	})
	if err != nil {
		t.Fatalf("BulkIngest: %v", err)
	}

	latest := itemIDs(repo.TopLatest(2))
	if latest[0] != "c" || latest[1] != "b" {
		t.Fatalf("TopLatest: want=[c b] got=%v", latest)
	}

	viewed := itemIDs(repo.TopViewed(2))
	if viewed[0] != "a" || viewed[1] != "c" {
		t.Fatalf("TopViewed: want=[a c] got=%v", viewed)
	}
}

func itemIDs(items []model.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}
