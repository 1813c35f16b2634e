package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type MediaType string

const (
	MediaLink  MediaType = "link"
	MediaPDF   MediaType = "pdf"
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
)

// SupportedClasses is the fixed set of class levels served by the catalog.
// ListClasses returns this set unconditionally; it is not derived from data.
var SupportedClasses = []string{"9", "10", "11", "12"}

// Categories is the static reference list used when a (class, subject) pair
// has no stored items yet.
var Categories = []string{
	"Notes",
	"PYQs",
	"Sample Papers",
	"Syllabus",
	"Formulas",
	"NCERT Solutions",
	"Important Questions",
}

// ClassSubjects maps each class to its conventional subjects. Like
// Categories, it is the fallback when the catalog holds nothing for a class.
var ClassSubjects = map[string][]string{
	"9":  {"Maths", "Science", "English", "Hindi", "Social Science"},
	"10": {"Maths", "Science", "English", "Hindi", "Social Science"},
	"11": {"Physics", "Chemistry", "Maths", "Biology", "English", "Hindi", "Accounts", "Business Studies", "Economics"},
	"12": {"Physics", "Chemistry", "Maths", "Biology", "English", "Hindi", "Accounts", "Business Studies", "Economics"},
}

// Languages are the content language tags; DefaultLanguage is applied to
// ingest records that omit one.
var Languages = []string{"English", "Hindi"}

const DefaultLanguage = "English"

// Item is a single piece of study content. AddedAt is kept as the ISO-8601
// string form it is stored in; string comparison preserves chronological
// order for UTC timestamps of equal precision.
type Item struct {
	ID        string    `json:"id"`
	Class     string    `json:"class"`
	Subject   string    `json:"subject"`
	Category  string    `json:"category"`
	Title     string    `json:"title"`
	Lang      string    `json:"lang"`
	URL       string    `json:"url"`
	AddedAt   string    `json:"added_at"`
	Views     int       `json:"views"`
	Downloads int       `json:"downloads"`
	MediaType MediaType `json:"media_type"`
}

// ItemRecord is a raw bulk-ingest record as supplied by an administrator.
// Optional fields are defaulted by ToItem.
type ItemRecord struct {
	ID        string `json:"id"`
	Class     string `json:"class"`
	Subject   string `json:"subject"`
	Category  string `json:"category"`
	Title     string `json:"title"`
	Lang      string `json:"lang"`
	URL       string `json:"url"`
	AddedAt   string `json:"added_at"`
	Views     int    `json:"views"`
	Downloads int    `json:"downloads"`
	MediaType string `json:"media_type"`
}

// ClassSupported reports whether class is one of SupportedClasses.
func ClassSupported(class string) bool {
	for _, c := range SupportedClasses {
		if c == class {
			return true
		}
	}
	return false
}

// NowISO returns the current UTC time in the catalog's timestamp format.
func NowISO() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// ToItem validates the record and fills defaults: id (generated), lang,
// media_type, added_at. Counters below zero are clamped to zero so a bad
// record cannot seed a decreasing counter.
func (r ItemRecord) ToItem() (Item, error) {
	if r.Title == "" {
		return Item{}, fmt.Errorf("missing title")
	}
	if r.URL == "" {
		return Item{}, fmt.Errorf("missing url")
	}
	if !ClassSupported(r.Class) {
		return Item{}, fmt.Errorf("unsupported class %q", r.Class)
	}

	it := Item{
		ID:        r.ID,
		Class:     r.Class,
		Subject:   r.Subject,
		Category:  r.Category,
		Title:     r.Title,
		Lang:      r.Lang,
		URL:       r.URL,
		AddedAt:   r.AddedAt,
		Views:     r.Views,
		Downloads: r.Downloads,
		MediaType: MediaType(r.MediaType),
	}
	if it.ID == "" {
		it.ID = uuid.New().String()
	}
	if it.Lang == "" {
		it.Lang = DefaultLanguage
	}
	if it.MediaType == "" {
		it.MediaType = MediaLink
	}
	if it.AddedAt == "" {
		it.AddedAt = NowISO()
	}
	if it.Views < 0 {
		it.Views = 0
	}
	if it.Downloads < 0 {
		it.Downloads = 0
	}
	return it, nil
}
