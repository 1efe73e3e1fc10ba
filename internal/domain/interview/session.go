package interview

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// State is the position of a session in the interview lifecycle.
type State string

const (
	StateNotStarted     State = "not_started"
	StateInProgress     State = "in_progress"
	StateAwaitingReport State = "awaiting_report"
	StateReported       State = "reported"
)

var (
	ErrInvalidTransition = errors.New("invalid session transition")
	ErrNoPendingQuestion = errors.New("no question is pending")
	ErrEmptyAnswer       = errors.New("answer is empty")
	ErrInvalidTarget     = errors.New("invalid target question count")
)

// Session is the interview state owned by one browser session. All
// operations are plain bookkeeping: whenever a transition needs a new
// question it says so, and the caller generates it and hands it back
// through SetQuestion.
type Session struct {
	ID                  string
	State               State
	Profile             CandidateProfile
	TargetQuestionCount int
	CurrentQuestionNo   int
	CurrentQuestion     string
	Records             []Record
	ReportText          string
	UpdatedAt           time.Time
}

// New creates a session that has not been started. An empty id gets a
// random one.
func New(id string) *Session {
	if id == "" {
		id = uuid.NewString()
	}
	s := &Session{ID: id}
	s.Reset()
	return s
}

// Reset wipes everything except the ID and returns the session to NotStarted.
func (s *Session) Reset() {
	s.State = StateNotStarted
	s.Profile = CandidateProfile{}
	s.TargetQuestionCount = DefaultQuestions
	s.CurrentQuestionNo = 1
	s.CurrentQuestion = ""
	s.Records = nil
	s.ReportText = ""
	s.touch()
}

// Start begins the interview. From NotStarted it snapshots the profile and
// target and asks for question 1. While in progress it only asks for a
// question when none is pending (e.g. the previous generation failed);
// profile and target passed on such calls are ignored.
func (s *Session) Start(profile CandidateProfile, target int) (needQuestion bool, err error) {
	switch s.State {
	case StateNotStarted:
		profile = profile.Normalize()
		if err := profile.Validate(); err != nil {
			return false, err
		}
		if target < MinQuestions || target > MaxQuestions {
			return false, fmt.Errorf("%w: %d (must be between %d and %d)", ErrInvalidTarget, target, MinQuestions, MaxQuestions)
		}
		s.Profile = profile
		s.TargetQuestionCount = target
		s.State = StateInProgress
		s.CurrentQuestionNo = 1
		s.CurrentQuestion = ""
		s.Records = nil
		s.ReportText = ""
		s.touch()
		return true, nil
	case StateInProgress:
		return s.CurrentQuestion == "", nil
	default:
		return false, fmt.Errorf("%w: cannot start from %s", ErrInvalidTransition, s.State)
	}
}

// SetQuestion installs the generated text as the current question.
func (s *Session) SetQuestion(text string) error {
	if s.State != StateInProgress {
		return fmt.Errorf("%w: no question expected in %s", ErrInvalidTransition, s.State)
	}
	if s.CurrentQuestion != "" {
		return fmt.Errorf("%w: question %d already pending", ErrInvalidTransition, s.CurrentQuestionNo)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return errors.New("question text is empty")
	}
	s.CurrentQuestion = text
	s.touch()
	return nil
}

// SaveAnswer records the answer to the pending question. An empty or
// whitespace-only answer is rejected without any change.
func (s *Session) SaveAnswer(answer string) (needQuestion bool, err error) {
	if err := s.requirePending(); err != nil {
		return false, err
	}
	if strings.TrimSpace(answer) == "" {
		return false, ErrEmptyAnswer
	}
	return s.record(answer, "", NoScore), nil
}

// Skip records the pending question as skipped.
func (s *Session) Skip() (needQuestion bool, err error) {
	if err := s.requirePending(); err != nil {
		return false, err
	}
	return s.record(SkippedAnswer, SkippedEvaluation, NoScore), nil
}

func (s *Session) requirePending() error {
	if s.State != StateInProgress {
		return fmt.Errorf("%w: interview is %s", ErrInvalidTransition, s.State)
	}
	if s.CurrentQuestion == "" {
		return ErrNoPendingQuestion
	}
	return nil
}

// record appends the pending question and advances. It returns true when
// another question has to be generated.
func (s *Session) record(answer, evaluation string, score int) bool {
	s.Records = append(s.Records, Record{
		QuestionNo: s.CurrentQuestionNo,
		Question:   s.CurrentQuestion,
		Answer:     answer,
		Evaluation: evaluation,
		Score:      score,
	})
	s.CurrentQuestion = ""
	s.touch()

	if s.CurrentQuestionNo < s.TargetQuestionCount {
		s.CurrentQuestionNo++
		return true
	}
	s.State = StateAwaitingReport
	return false
}

// CanGenerateReport returns nil when the session is ready for its report.
func (s *Session) CanGenerateReport() error {
	if s.State != StateAwaitingReport {
		return fmt.Errorf("%w: report requires a finished interview, session is %s", ErrInvalidTransition, s.State)
	}
	if len(s.Records) == 0 {
		return fmt.Errorf("%w: no answers recorded", ErrInvalidTransition)
	}
	return nil
}

// PendingEvaluations returns the indexes of answered records that still
// need an evaluation, in question order.
func (s *Session) PendingEvaluations() []int {
	var idx []int
	for i, r := range s.Records {
		if r.NeedsEvaluation() {
			idx = append(idx, i)
		}
	}
	return idx
}

// SetEvaluation fills in the evaluation of record i.
func (s *Session) SetEvaluation(i int, evaluation string, score int) error {
	if err := s.CanGenerateReport(); err != nil {
		return err
	}
	if i < 0 || i >= len(s.Records) {
		return fmt.Errorf("record index %d out of range", i)
	}
	if s.Records[i].Skipped() {
		return fmt.Errorf("record %d was skipped", s.Records[i].QuestionNo)
	}
	s.Records[i].Evaluation = evaluation
	s.Records[i].Score = score
	s.touch()
	return nil
}

// CompleteReport stores the narrative report and moves to Reported.
func (s *Session) CompleteReport(text string) error {
	if err := s.CanGenerateReport(); err != nil {
		return err
	}
	s.ReportText = strings.TrimSpace(text)
	s.State = StateReported
	s.touch()
	return nil
}

// Progress is the "Question n of N" label, empty when nothing is pending.
func (s *Session) Progress() string {
	if s.CurrentQuestion == "" {
		return ""
	}
	return fmt.Sprintf("Question %d of %d", s.CurrentQuestionNo, s.TargetQuestionCount)
}

func (s *Session) touch() {
	s.UpdatedAt = time.Now().UTC()
}
