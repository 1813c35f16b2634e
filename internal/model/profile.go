package model

// UILanguage is a user's interface language preference.
type UILanguage string

const (
	UIHindi   UILanguage = "hi"
	UIEnglish UILanguage = "en"
)

// DefaultUILanguage is applied when a profile is created lazily.
const DefaultUILanguage = UIHindi

// UILanguageSupported reports whether lang is one of the two UI languages.
func UILanguageSupported(lang UILanguage) bool {
	return lang == UIHindi || lang == UIEnglish
}

// Profile is the per-user persisted state. A profile exists for every user
// id ever referenced; stores create it with these defaults on first touch.
// Bookmarks holds catalog item ids in insertion order with no duplicates;
// the ids are opaque here and resolved against the catalog at read time.
type Profile struct {
	Lang      UILanguage   `json:"lang"`
	Bookmarks []string     `json:"bookmarks"`
	Points    int          `json:"points"`
	Daily     bool         `json:"daily"`
	Quiz      *QuizSession `json:"quiz,omitempty"`
}

// NewProfile returns the default profile created on first reference.
func NewProfile() *Profile {
	return &Profile{
		Lang:      DefaultUILanguage,
		Bookmarks: []string{},
	}
}

// QuizQuestion is one question frozen into a session at start time.
// Answer is the index into Options of the correct choice.
type QuizQuestion struct {
	Prompt  string   `json:"prompt"`
	Options []string `json:"options"`
	Answer  int      `json:"answer"`
}

// QuizSession is a user's in-progress quiz. Index advances from 0 to
// len(Questions); reaching the count is the terminal state. A nil
// *QuizSession on the profile means no active session.
type QuizSession struct {
	Subject   string         `json:"subject"`
	Index     int            `json:"index"`
	Score     int            `json:"score"`
	Questions []QuizQuestion `json:"questions"`
}

// Finished reports whether the session has consumed all its questions.
func (s *QuizSession) Finished() bool {
	return s.Index >= len(s.Questions)
}

// Clone returns a deep copy of the session, questions included. Nil in,
// nil out.
func (s *QuizSession) Clone() *QuizSession {
	if s == nil {
		return nil
	}
	cp := *s
	cp.Questions = append([]QuizQuestion(nil), s.Questions...)
	return &cp
}

// LeaderboardEntry is one row of the points leaderboard.
type LeaderboardEntry struct {
	UserID string `json:"user_id"`
	Points int    `json:"points"`
}
