package service

import (
	"regexp"
	"strings"

	"studybot_backend/internal/model"
	"studybot_backend/internal/repository"
)

// Point awards for engagement, matching the bot's original economy.
const (
	PointsView     = 1
	PointsDownload = 2
	PointsSearch   = 1
	PointsBookmark = 1
)

type CatalogService struct {
	CatalogRepo *repository.CatalogRepository
	ProfileRepo *repository.ProfileRepository
}

func NewCatalogService(catalogRepo *repository.CatalogRepository, profileRepo *repository.ProfileRepository) *CatalogService {
	return &CatalogService{CatalogRepo: catalogRepo, ProfileRepo: profileRepo}
}

func (s *CatalogService) ListClasses() []string {
	return s.CatalogRepo.ListClasses()
}

func (s *CatalogService) ListSubjects(class string) []string {
	return s.CatalogRepo.ListSubjects(class)
}

func (s *CatalogService) ListCategories(class, subject string) []string {
	return s.CatalogRepo.ListCategories(class, subject)
}

func (s *CatalogService) ListItems(class, subject, category, lang string) []model.Item {
	return s.CatalogRepo.ListItems(class, subject, category, lang)
}

func (s *CatalogService) Latest(limit int) []model.Item {
	return s.CatalogRepo.TopLatest(limit)
}

func (s *CatalogService) MostViewed(limit int) []model.Item {
	return s.CatalogRepo.TopViewed(limit)
}

// OpenItem records a view and awards the viewer a point, then returns the
// item with its fresh counter.
func (s *CatalogService) OpenItem(id, userID string) (model.Item, error) {
	if _, err := s.CatalogRepo.Get(id); err != nil {
		return model.Item{}, err
	}
	if err := s.CatalogRepo.IncrementView(id); err != nil {
		return model.Item{}, err
	}
	if userID != "" {
		if err := s.ProfileRepo.AddPoints(userID, PointsView); err != nil {
			return model.Item{}, err
		}
	}
	return s.CatalogRepo.Get(id)
}

// MarkDownloaded records a download and awards points.
func (s *CatalogService) MarkDownloaded(id, userID string) (model.Item, error) {
	if _, err := s.CatalogRepo.Get(id); err != nil {
		return model.Item{}, err
	}
	if err := s.CatalogRepo.IncrementDownload(id); err != nil {
		return model.Item{}, err
	}
	if userID != "" {
		if err := s.ProfileRepo.AddPoints(userID, PointsDownload); err != nil {
			return model.Item{}, err
		}
	}
	return s.CatalogRepo.Get(id)
}

// Search runs a free-text search; a non-empty userID earns a search point.
func (s *CatalogService) Search(query, lang, userID string) ([]model.Item, error) {
	results := s.CatalogRepo.Search(query, lang)
	if userID != "" {
		if err := s.ProfileRepo.AddPoints(userID, PointsSearch); err != nil {
			return nil, err
		}
	}
	return results, nil
}

// StructuredSearch applies the parsed constraints; same point award as
// free-text search.
func (s *CatalogService) StructuredSearch(p repository.SearchParams, userID string) ([]model.Item, error) {
	results := s.CatalogRepo.StructuredSearch(p)
	if userID != "" {
		if err := s.ProfileRepo.AddPoints(userID, PointsSearch); err != nil {
			return nil, err
		}
	}
	return results, nil
}

func (s *CatalogService) Ingest(records []model.ItemRecord) (int, []repository.RecordError, error) {
	return s.CatalogRepo.BulkIngest(records)
}

func (s *CatalogService) Delete(id string) error {
	return s.CatalogRepo.Delete(id)
}

var smartTokenRe = regexp.MustCompile(`(\w+)=(\S+)`)

// ParseSmartQuery turns a "class=12 subject=physics electrostatics" style
// query into structured constraints. key=value pairs fill the known fields;
// words left over become the keyword when none was given explicitly.
func ParseSmartQuery(q string) repository.SearchParams {
	var p repository.SearchParams
	for _, m := range smartTokenRe.FindAllStringSubmatch(q, -1) {
		switch strings.ToLower(m[1]) {
		case "class":
			p.Class = m[2]
		case "subject":
			p.Subject = m[2]
		case "category":
			p.Category = m[2]
		case "lang":
			p.Lang = m[2]
		case "keyword":
			p.Keyword = m[2]
		}
	}
	if p.Keyword == "" {
		leftover := strings.TrimSpace(smartTokenRe.ReplaceAllString(q, ""))
		if leftover != "" {
			p.Keyword = strings.Join(strings.Fields(leftover), " ")
		}
	}
	return p
}
