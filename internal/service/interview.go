// internal/service/interview.go
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/remaimber-it/interview-coach/internal/domain/interview"
	"github.com/remaimber-it/interview-coach/internal/llm"
	"github.com/remaimber-it/interview-coach/internal/prompts"
	"github.com/remaimber-it/interview-coach/internal/resume"
	"github.com/remaimber-it/interview-coach/internal/scoring"
	"github.com/remaimber-it/interview-coach/internal/store"
	"github.com/remaimber-it/interview-coach/internal/worker"
)

// InterviewService runs interview transitions for browser sessions. Each
// transition loads the session, applies the state change, performs the
// model calls it needs and persists the result. Calls for the same session
// are serialised; different sessions never wait on each other.
type InterviewService struct {
	store   store.Store
	gateway llm.Gateway
	prompts *prompts.Builder
	archive resume.Archive
	logger  *slog.Logger

	// evaluationWorkers bounds concurrent evaluation calls per report.
	evaluationWorkers int

	mu    sync.Mutex
	locks map[string]*sessionLock // sessionID → lock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

// NewInterviewService creates an InterviewService. A nil builder uses the
// default prompts and a nil archive discards uploads.
func NewInterviewService(s store.Store, g llm.Gateway, p *prompts.Builder, a resume.Archive, logger *slog.Logger) *InterviewService {
	if p == nil {
		p = prompts.Default
	}
	if a == nil {
		a = resume.NopArchive{}
	}
	return &InterviewService{
		store:   s,
		gateway: g,
		prompts: p,
		archive: a,
		logger:  logger,

		evaluationWorkers: 1,
		locks:             make(map[string]*sessionLock),
	}
}

// SetEvaluationWorkers sets how many evaluations of one report may run at
// once. Values below one mean one.
func (is *InterviewService) SetEvaluationWorkers(n int) {
	if n < 1 {
		n = 1
	}
	is.evaluationWorkers = n
}

// GatewayStatus returns nil when model calls can be made.
func (is *InterviewService) GatewayStatus() (name string, err error) {
	return is.gateway.Name(), llm.Ready(is.gateway)
}

// lock serialises work on one session and returns the matching unlock.
func (is *InterviewService) lock(sessionID string) func() {
	is.mu.Lock()
	l, ok := is.locks[sessionID]
	if !ok {
		l = &sessionLock{}
		is.locks[sessionID] = l
	}
	l.refs++
	is.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		is.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(is.locks, sessionID)
		}
		is.mu.Unlock()
	}
}

// load returns the stored session or a fresh one for an unknown ID.
func (is *InterviewService) load(ctx context.Context, sessionID string) (*interview.Session, error) {
	sess, err := is.store.GetSession(ctx, sessionID)
	if errors.Is(err, store.ErrNotFound) {
		return interview.New(sessionID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return sess, nil
}

func (is *InterviewService) save(ctx context.Context, sess *interview.Session) error {
	if err := is.store.SaveSession(ctx, sess); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// ============================================================================
// Transitions
// ============================================================================

// Get returns the session, creating it on first use.
func (is *InterviewService) Get(ctx context.Context, sessionID string) (*interview.Session, error) {
	unlock := is.lock(sessionID)
	defer unlock()

	sess, err := is.store.GetSession(ctx, sessionID)
	if err == nil {
		return sess, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("load session: %w", err)
	}

	sess = interview.New(sessionID)
	if err := is.save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Start begins the interview, or regenerates the pending question after a
// failed generation. When question generation fails the session is still
// saved and returned together with the error.
func (is *InterviewService) Start(ctx context.Context, sessionID string, profile interview.CandidateProfile, target int) (*interview.Session, error) {
	unlock := is.lock(sessionID)
	defer unlock()

	sess, err := is.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	need, err := sess.Start(profile, target)
	if err != nil {
		return sess, err
	}
	if need {
		if err := is.nextQuestion(ctx, sess); err != nil {
			return sess, is.saveAfter(ctx, sess, err)
		}
	}
	return sess, is.save(ctx, sess)
}

// SaveAnswer records the answer to the pending question and fetches the
// next one. The answer is kept even when the next question cannot be
// generated.
func (is *InterviewService) SaveAnswer(ctx context.Context, sessionID, answer string) (*interview.Session, error) {
	return is.advance(ctx, sessionID, func(sess *interview.Session) (bool, error) {
		return sess.SaveAnswer(answer)
	})
}

// Skip records the pending question as skipped and fetches the next one.
func (is *InterviewService) Skip(ctx context.Context, sessionID string) (*interview.Session, error) {
	return is.advance(ctx, sessionID, (*interview.Session).Skip)
}

func (is *InterviewService) advance(ctx context.Context, sessionID string, step func(*interview.Session) (bool, error)) (*interview.Session, error) {
	unlock := is.lock(sessionID)
	defer unlock()

	sess, err := is.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	need, err := step(sess)
	if err != nil {
		return sess, err
	}
	if need {
		if err := is.nextQuestion(ctx, sess); err != nil {
			return sess, is.saveAfter(ctx, sess, err)
		}
	}
	return sess, is.save(ctx, sess)
}

// GenerateReport evaluates every answered question that has no evaluation
// yet, then requests the summary. With the default single worker the
// evaluations run one call at a time in question order. A failed
// evaluation is recorded as such and does not stop the report; a failed
// summary leaves the session awaiting its report so it can be retried
// without re-evaluating.
func (is *InterviewService) GenerateReport(ctx context.Context, sessionID string) (*interview.Session, error) {
	unlock := is.lock(sessionID)
	defer unlock()

	sess, err := is.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := sess.CanGenerateReport(); err != nil {
		return sess, err
	}

	pending := sess.PendingEvaluations()
	jobs := make([]worker.Job[evaluation], len(pending))
	for n, i := range pending {
		profile, r := sess.Profile, sess.Records[i]
		jobs[n] = func(ctx context.Context) evaluation {
			return is.evaluate(ctx, sess.ID, profile, r)
		}
	}
	for n, ev := range worker.Run(ctx, is.evaluationWorkers, jobs) {
		if err := sess.SetEvaluation(pending[n], ev.text, ev.score); err != nil {
			return sess, err
		}
	}

	p, err := is.prompts.Summary(sess.Profile, sess.Records)
	if err != nil {
		return sess, is.saveAfter(ctx, sess, err)
	}
	summary, err := is.gateway.Generate(ctx, toRequest(p))
	if err != nil {
		is.logGatewayError("summary", sess.ID, err)
		return sess, is.saveAfter(ctx, sess, fmt.Errorf("generate summary: %w", err))
	}

	if err := sess.CompleteReport(summary); err != nil {
		return sess, err
	}
	return sess, is.save(ctx, sess)
}

type evaluation struct {
	text  string
	score int
}

func (is *InterviewService) evaluate(ctx context.Context, sessionID string, profile interview.CandidateProfile, r interview.Record) evaluation {
	failed := evaluation{text: interview.FailedEvaluation, score: interview.NoScore}

	p, err := is.prompts.Evaluation(profile, r.Question, r.Answer)
	if err != nil {
		is.logger.Error("evaluation prompt failed", "session_id", sessionID, "question_no", r.QuestionNo, "error", err)
		return failed
	}

	text, err := is.gateway.Generate(ctx, toRequest(p))
	if err != nil {
		is.logGatewayError("evaluation", sessionID, err, "question_no", r.QuestionNo)
		return failed
	}

	text = strings.TrimSpace(text)
	score := scoring.ExtractScore(text)
	if score == scoring.NoScore {
		is.logger.Warn("evaluation has no score", "session_id", sessionID, "question_no", r.QuestionNo)
	}
	return evaluation{text: text, score: score}
}

// Reset discards all interview state of the session.
func (is *InterviewService) Reset(ctx context.Context, sessionID string) (*interview.Session, error) {
	unlock := is.lock(sessionID)
	defer unlock()

	if err := is.store.DeleteSession(ctx, sessionID); err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("reset session: %w", err)
	}
	sess := interview.New(sessionID)
	return sess, is.save(ctx, sess)
}

// ============================================================================
// Skill extraction
// ============================================================================

// ExtractSkills reads an uploaded resume and asks the model for a
// comma-separated skill list.
func (is *InterviewService) ExtractSkills(ctx context.Context, sessionID string, doc resume.Document) (string, error) {
	text, err := resume.Extract(doc)
	if err != nil {
		return "", err
	}

	if key, err := is.archive.Put(ctx, sessionID, doc); err != nil {
		is.logger.Warn("resume archive failed", "session_id", sessionID, "error", err)
	} else if key != "" {
		is.logger.Info("resume archived", "session_id", sessionID, "key", key)
	}

	p, err := is.prompts.SkillExtraction(text)
	if err != nil {
		return "", err
	}
	skills, err := is.gateway.Generate(ctx, toRequest(p))
	if err != nil {
		is.logGatewayError("skill extraction", sessionID, err)
		return "", fmt.Errorf("extract skills: %w", err)
	}
	return strings.TrimSpace(skills), nil
}

// ============================================================================
// Helpers
// ============================================================================

func (is *InterviewService) nextQuestion(ctx context.Context, sess *interview.Session) error {
	p, err := is.prompts.Question(sess.Profile, sess.CurrentQuestionNo)
	if err != nil {
		return err
	}

	text, err := is.gateway.Generate(ctx, toRequest(p))
	if err != nil {
		is.logGatewayError("question", sess.ID, err, "question_no", sess.CurrentQuestionNo)
		return fmt.Errorf("generate question %d: %w", sess.CurrentQuestionNo, err)
	}
	if strings.TrimSpace(text) == "" {
		err := &llm.Error{Kind: llm.KindEmpty, Op: "generate question", Err: errors.New("model returned a blank question")}
		is.logGatewayError("question", sess.ID, err, "question_no", sess.CurrentQuestionNo)
		return fmt.Errorf("generate question %d: %w", sess.CurrentQuestionNo, err)
	}
	return sess.SetQuestion(text)
}

// saveAfter persists progress made before cause and returns cause, or the
// save error if persisting failed too.
func (is *InterviewService) saveAfter(ctx context.Context, sess *interview.Session, cause error) error {
	if err := is.save(ctx, sess); err != nil {
		is.logger.Error("failed to save session", "session_id", sess.ID, "error", err)
		return errors.Join(cause, err)
	}
	return cause
}

func (is *InterviewService) logGatewayError(op, sessionID string, err error, attrs ...any) {
	kind, _ := llm.KindOf(err)
	args := append([]any{"op", op, "session_id", sessionID, "kind", string(kind), "error", err}, attrs...)
	is.logger.Error("model call failed", args...)
}

func toRequest(p prompts.Prompt) llm.Request {
	return llm.Request{
		System:      p.System,
		User:        p.User,
		Temperature: p.Temperature,
		MaxTokens:   p.MaxTokens,
	}
}

// ============================================================================
// Export
// ============================================================================

// Export is a self-contained snapshot of a session for download.
type Export struct {
	SessionID  string
	State      interview.State
	Profile    interview.CandidateProfile
	Target     int
	Records    []interview.Record
	Scores     scoring.Report
	Report     string
	Transcript string
	ExportedAt time.Time
}

// Export snapshots the session with its score table and transcript.
func (is *InterviewService) Export(ctx context.Context, sessionID string) (*Export, error) {
	unlock := is.lock(sessionID)
	defer unlock()

	sess, err := is.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	return &Export{
		SessionID:  sess.ID,
		State:      sess.State,
		Profile:    sess.Profile,
		Target:     sess.TargetQuestionCount,
		Records:    sess.Records,
		Scores:     scoring.Aggregate(sess.Records),
		Report:     sess.ReportText,
		Transcript: prompts.Transcript(sess.Records),
		ExportedAt: time.Now().UTC(),
	}, nil
}
