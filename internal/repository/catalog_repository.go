package repository

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"studybot_backend/internal/model"
	"studybot_backend/internal/util"
	"studybot_backend/pkg/monitoring"

	"go.uber.org/zap"
)

// catalogDocument is the on-disk shape of the catalog: one object holding
// the full ordered item list.
type catalogDocument struct {
	Items []model.Item `json:"items"`
}

// RecordError reports one rejected record of a bulk-ingest batch.
type RecordError struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

// SearchParams is a structured search: every non-empty constraint must hold.
// Keyword matches the title only, case-insensitively.
type SearchParams struct {
	Class    string
	Subject  string
	Category string
	Lang     string
	Keyword  string
}

// CatalogRepository owns all catalog items. Every mutation rewrites the
// whole backing document synchronously; the mutex serializes each
// load-mutate-persist sequence, which gin's concurrent handlers require.
type CatalogRepository struct {
	mu    sync.RWMutex
	path  string
	items map[string]model.Item
	log   *zap.Logger
}

// NewCatalogRepository loads the catalog from path. Malformed or missing
// data degrades to an empty collection; if the collection is empty and seed
// is set, the deterministic sample set is written so navigation has content
// on first run.
func NewCatalogRepository(path string, seed bool, log *zap.Logger) (*CatalogRepository, error) {
	r := &CatalogRepository{
		path:  path,
		items: make(map[string]model.Item),
		log:   log,
	}

	var doc catalogDocument
	if err := readDocument(path, &doc); err != nil {
		if !os.IsNotExist(err) {
			log.Error("failed to load catalog, starting empty", zap.String("path", path), zap.Error(err))
		}
	} else {
		for _, it := range doc.Items {
			r.items[it.ID] = it
		}
	}

	if len(r.items) == 0 && seed {
		r.seedSampleData()
		if err := r.persist(); err != nil {
			return nil, fmt.Errorf("persist seeded catalog: %w", err)
		}
		log.Info("seeded catalog with sample data", zap.Int("items", len(r.items)))
	}

	return r, nil
}

// seedSampleData fills the catalog with one item per combination of the
// fixed class/subject/category/language axes.
func (r *CatalogRepository) seedSampleData() {
	now := model.NowISO()
	for _, class := range model.SupportedClasses {
		for _, subject := range model.ClassSubjects[class] {
			for _, category := range model.Categories {
				for _, lang := range model.Languages {
					it := model.Item{
						ID:        fmt.Sprintf("%s_%s_%s_%s", class, subject, category, lang),
						Class:     class,
						Subject:   subject,
						Category:  category,
						Title:     fmt.Sprintf("Class %s %s %s (%s)", class, subject, category, lang),
						Lang:      lang,
						URL:       fmt.Sprintf("https://example.com/%s/%s/%s/%s", class, subject, category, lang),
						AddedAt:   now,
						MediaType: model.MediaLink,
					}
					r.items[it.ID] = it
				}
			}
		}
	}
}

// persist rewrites the backing document. Callers hold the write lock.
// Items are ordered by id so the document is byte-stable across rewrites.
func (r *CatalogRepository) persist() error {
	doc := catalogDocument{Items: make([]model.Item, 0, len(r.items))}
	for _, it := range r.items {
		doc.Items = append(doc.Items, it)
	}
	sort.Slice(doc.Items, func(i, j int) bool { return doc.Items[i].ID < doc.Items[j].ID })
	return writeDocument(r.path, doc)
}

// Count returns the number of stored items.
func (r *CatalogRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

// Get looks up one item by id.
func (r *CatalogRepository) Get(id string) (model.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	it, ok := r.items[id]
	if !ok {
		return model.Item{}, util.ErrItemNotFound
	}
	return it, nil
}

// ListClasses returns the fixed supported class set.
func (r *CatalogRepository) ListClasses() []string {
	out := make([]string, len(model.SupportedClasses))
	copy(out, model.SupportedClasses)
	return out
}

// ListSubjects returns the distinct subjects stored for class, sorted
// alphabetically, falling back to the static reference mapping when the
// catalog has nothing for that class.
func (r *CatalogRepository) ListSubjects(class string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	for _, it := range r.items {
		if it.Class == class {
			seen[it.Subject] = true
		}
	}
	if len(seen) == 0 {
		out := make([]string, len(model.ClassSubjects[class]))
		copy(out, model.ClassSubjects[class])
		return out
	}
	out := make([]string, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// ListCategories is symmetric to ListSubjects, with the static category
// list as fallback.
func (r *CatalogRepository) ListCategories(class, subject string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	for _, it := range r.items {
		if it.Class == class && it.Subject == subject {
			seen[it.Category] = true
		}
	}
	if len(seen) == 0 {
		out := make([]string, len(model.Categories))
		copy(out, model.Categories)
		return out
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// ListItems filters on exact class/subject/category (and lang when
// non-empty) and orders newest first, with views then downloads breaking
// ties among equally recent items.
func (r *CatalogRepository) ListItems(class, subject, category, lang string) []model.Item {
	r.mu.RLock()
	out := make([]model.Item, 0)
	for _, it := range r.items {
		if it.Class == class && it.Subject == subject && it.Category == category &&
			(lang == "" || it.Lang == lang) {
			out = append(out, it)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.AddedAt != b.AddedAt {
			return a.AddedAt > b.AddedAt
		}
		if a.Views != b.Views {
			return a.Views > b.Views
		}
		if a.Downloads != b.Downloads {
			return a.Downloads > b.Downloads
		}
		return a.ID < b.ID
	})
	return out
}

// TopLatest returns all items newest first, truncated to limit.
func (r *CatalogRepository) TopLatest(limit int) []model.Item {
	r.mu.RLock()
	out := make([]model.Item, 0, len(r.items))
	for _, it := range r.items {
		out = append(out, it)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].AddedAt != out[j].AddedAt {
			return out[i].AddedAt > out[j].AddedAt
		}
		return out[i].ID < out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// TopViewed returns items by engagement, views then downloads descending.
func (r *CatalogRepository) TopViewed(limit int) []model.Item {
	r.mu.RLock()
	out := make([]model.Item, 0, len(r.items))
	for _, it := range r.items {
		out = append(out, it)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Views != out[j].Views {
			return out[i].Views > out[j].Views
		}
		if out[i].Downloads != out[j].Downloads {
			return out[i].Downloads > out[j].Downloads
		}
		return out[i].ID < out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// IncrementView bumps the view counter. An absent id is a no-op, not an
// error.
func (r *CatalogRepository) IncrementView(id string) error {
	return r.increment(id, "view", func(it *model.Item) { it.Views++ })
}

// IncrementDownload bumps the download counter; absent id is a no-op.
func (r *CatalogRepository) IncrementDownload(id string) error {
	return r.increment(id, "download", func(it *model.Item) { it.Downloads++ })
}

func (r *CatalogRepository) increment(id, op string, bump func(*model.Item)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	it, ok := r.items[id]
	if !ok {
		return nil
	}
	bump(&it)
	r.items[id] = it
	monitoring.StoreOpCounter.WithLabelValues("catalog", op).Inc()
	return r.persist()
}

// searchOrder sorts results into grouped navigation order (class, subject,
// category ascending) with popularity (views, downloads descending) inside
// each group. ListItems orders by recency instead.
func searchOrder(out []model.Item) {
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Class != b.Class {
			return a.Class < b.Class
		}
		if a.Subject != b.Subject {
			return a.Subject < b.Subject
		}
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		if a.Views != b.Views {
			return a.Views > b.Views
		}
		if a.Downloads != b.Downloads {
			return a.Downloads > b.Downloads
		}
		return a.ID < b.ID
	})
}

// Search matches query as a case-insensitive substring of title, subject,
// or category, with an optional exact language filter.
func (r *CatalogRepository) Search(query, lang string) []model.Item {
	q := strings.ToLower(strings.TrimSpace(query))

	r.mu.RLock()
	out := make([]model.Item, 0)
	for _, it := range r.items {
		if lang != "" && it.Lang != lang {
			continue
		}
		if strings.Contains(strings.ToLower(it.Title), q) ||
			strings.Contains(strings.ToLower(it.Subject), q) ||
			strings.Contains(strings.ToLower(it.Category), q) {
			out = append(out, it)
		}
	}
	r.mu.RUnlock()

	searchOrder(out)
	return out
}

// StructuredSearch applies every supplied constraint (logical AND). Class
// is exact; subject, category and lang are case-insensitive exact; keyword
// is a case-insensitive substring of the title.
func (r *CatalogRepository) StructuredSearch(p SearchParams) []model.Item {
	keyword := strings.ToLower(p.Keyword)

	r.mu.RLock()
	out := make([]model.Item, 0)
	for _, it := range r.items {
		if p.Class != "" && it.Class != p.Class {
			continue
		}
		if p.Subject != "" && !strings.EqualFold(it.Subject, p.Subject) {
			continue
		}
		if p.Category != "" && !strings.EqualFold(it.Category, p.Category) {
			continue
		}
		if p.Lang != "" && !strings.EqualFold(it.Lang, p.Lang) {
			continue
		}
		if keyword != "" && !strings.Contains(strings.ToLower(it.Title), keyword) {
			continue
		}
		out = append(out, it)
	}
	r.mu.RUnlock()

	searchOrder(out)
	return out
}

// BulkIngest validates and upserts each record (last write wins on id).
// Records that fail validation are skipped and reported; the batch persists
// once at the end. Returns the number of records applied.
func (r *CatalogRepository) BulkIngest(records []model.ItemRecord) (int, []RecordError, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	applied := 0
	var rejected []RecordError
	for i, rec := range records {
		it, err := rec.ToItem()
		if err != nil {
			rejected = append(rejected, RecordError{Index: i, Reason: err.Error()})
			continue
		}
		r.items[it.ID] = it
		applied++
	}

	if applied > 0 {
		monitoring.StoreOpCounter.WithLabelValues("catalog", "ingest").Inc()
		if err := r.persist(); err != nil {
			return applied, rejected, err
		}
	}
	return applied, rejected, nil
}

// Delete removes the item, reporting ErrItemNotFound when absent so the
// caller can tell the outcomes apart.
func (r *CatalogRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return util.ErrItemNotFound
	}
	delete(r.items, id)
	monitoring.StoreOpCounter.WithLabelValues("catalog", "delete").Inc()
	return r.persist()
}

// Snapshot returns the full document as stored on disk, for backups.
func (r *CatalogRepository) Snapshot() []model.Item {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.Item, 0, len(r.items))
	for _, it := range r.items {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
