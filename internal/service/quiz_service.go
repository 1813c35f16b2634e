package service

import (
	"encoding/json"
	"os"
	"sort"
	"strings"

	"studybot_backend/internal/model"
	"studybot_backend/internal/repository"
	"studybot_backend/internal/util"

	"go.uber.org/zap"
)

// Point awards for the quiz flow: one per correct answer as it happens,
// plus twice the final score when the session terminates.
const (
	PointsQuizCorrect     = 1
	PointsQuizFinishScale = 2
)

// defaultQuizBank holds the built-in per-subject question sets.
var defaultQuizBank = map[string][]model.QuizQuestion{
	"Maths": {
		{Prompt: "What is the value of (a+b)^2?", Options: []string{"a^2 + b^2", "a^2 + 2ab + b^2", "2ab", "a^2 - 2ab + b^2"}, Answer: 1},
	},
	"Physics": {
		{Prompt: "SI unit of force?", Options: []string{"Newton", "Joule", "Pascal", "Watt"}, Answer: 0},
	},
	"Chemistry": {
		{Prompt: "Atomic number represents?", Options: []string{"Neutrons", "Protons", "Electrons in last shell", "Mass number"}, Answer: 1},
	},
	"Biology": {
		{Prompt: "Powerhouse of the cell?", Options: []string{"Nucleus", "Mitochondria", "Ribosome", "Chloroplast"}, Answer: 1},
	},
	"English": {
		{Prompt: "Choose the correct tense: 'She ____ to school.'", Options: []string{"go", "goes", "gone", "going"}, Answer: 1},
	},
	"Social Science": {
		{Prompt: "India became Republic in?", Options: []string{"1947", "1950", "1952", "1962"}, Answer: 1},
	},
}

// QuizQuestionView is a question as shown to the user: no answer index.
type QuizQuestionView struct {
	Subject string   `json:"subject"`
	Index   int      `json:"index"`
	Total   int      `json:"total"`
	Prompt  string   `json:"prompt"`
	Options []string `json:"options"`
}

// AnswerResult reports the outcome of one submitted answer.
type AnswerResult struct {
	Correct      bool `json:"correct"`
	Finished     bool `json:"finished"`
	Score        int  `json:"score"`
	Index        int  `json:"index"`
	Total        int  `json:"total"`
	PointsEarned int  `json:"points_earned"`
}

type QuizService struct {
	ProfileRepo *repository.ProfileRepository
	bank        map[string][]model.QuizQuestion
}

func NewQuizService(profileRepo *repository.ProfileRepository) *QuizService {
	return &QuizService{ProfileRepo: profileRepo, bank: defaultQuizBank}
}

// NewQuizServiceWithBankFile overlays the built-in bank with subjects from a
// JSON file mapping subject to question list. A missing or unreadable file
// falls back to the built-in bank; a subject with no questions is dropped.
func NewQuizServiceWithBankFile(profileRepo *repository.ProfileRepository, path string, log *zap.Logger) *QuizService {
	s := NewQuizService(profileRepo)

	raw, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Error("failed to read quiz bank file", zap.String("path", path), zap.Error(err))
		}
		return s
	}
	var extra map[string][]model.QuizQuestion
	if err := json.Unmarshal(raw, &extra); err != nil {
		log.Error("failed to parse quiz bank file", zap.String("path", path), zap.Error(err))
		return s
	}

	bank := make(map[string][]model.QuizQuestion, len(defaultQuizBank)+len(extra))
	for subj, qs := range defaultQuizBank {
		bank[subj] = qs
	}
	for subj, qs := range extra {
		if len(qs) == 0 {
			delete(bank, subj)
			continue
		}
		bank[subj] = qs
	}
	s.bank = bank
	log.Info("quiz bank loaded", zap.String("path", path), zap.Int("subjects", len(bank)))
	return s
}

// Subjects lists the subjects a quiz exists for, sorted.
func (s *QuizService) Subjects() []string {
	out := make([]string, 0, len(s.bank))
	for subj := range s.bank {
		out = append(out, subj)
	}
	sort.Strings(out)
	return out
}

func (s *QuizService) lookupBank(subject string) (string, []model.QuizQuestion, bool) {
	for subj, qs := range s.bank {
		if strings.EqualFold(subj, subject) {
			return subj, qs, true
		}
	}
	return "", nil, false
}

// StartQuiz creates a fresh session for the subject, freezing the question
// set at start. Any prior session for the user is replaced and its progress
// discarded.
func (s *QuizService) StartQuiz(userID, subject string) (*QuizQuestionView, error) {
	canonical, bank, ok := s.lookupBank(subject)
	if !ok {
		return nil, util.ErrQuizSubjectUnknown
	}

	questions := make([]model.QuizQuestion, len(bank))
	copy(questions, bank)

	session := &model.QuizSession{
		Subject:   canonical,
		Questions: questions,
	}
	if err := s.ProfileRepo.SetQuizSession(userID, session); err != nil {
		return nil, err
	}
	return s.view(session), nil
}

// CurrentQuestion returns the question at the session's index.
func (s *QuizService) CurrentQuestion(userID string) (*QuizQuestionView, error) {
	session, err := s.ProfileRepo.GetQuizSession(userID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, util.ErrNoActiveQuiz
	}
	if session.Finished() {
		return nil, util.ErrQuizFinished
	}
	return s.view(session), nil
}

func (s *QuizService) view(session *model.QuizSession) *QuizQuestionView {
	q := session.Questions[session.Index]
	return &QuizQuestionView{
		Subject: session.Subject,
		Index:   session.Index,
		Total:   len(session.Questions),
		Prompt:  q.Prompt,
		Options: q.Options,
	}
}

// SubmitAnswer grades the option against the current question and advances
// the session. A correct answer scores one and earns a point immediately;
// consuming the final question terminates the session and awards
// 2 x correct_count on top. The index never moves past the question count.
func (s *QuizService) SubmitAnswer(userID string, option int) (*AnswerResult, error) {
	session, err := s.ProfileRepo.GetQuizSession(userID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, util.ErrNoActiveQuiz
	}
	if session.Finished() {
		return nil, util.ErrQuizFinished
	}

	q := session.Questions[session.Index]
	if option < 0 || option >= len(q.Options) {
		return nil, util.ErrBadOption
	}

	result := &AnswerResult{Total: len(session.Questions)}
	if option == q.Answer {
		result.Correct = true
		session.Score++
		result.PointsEarned += PointsQuizCorrect
	}
	session.Index++

	if err := s.ProfileRepo.SetQuizSession(userID, session); err != nil {
		return nil, err
	}

	result.Score = session.Score
	result.Index = session.Index
	result.Finished = session.Finished()
	if result.Finished {
		result.PointsEarned += PointsQuizFinishScale * session.Score
	}

	if result.PointsEarned > 0 {
		if err := s.ProfileRepo.AddPoints(userID, result.PointsEarned); err != nil {
			return nil, err
		}
	}
	return result, nil
}
