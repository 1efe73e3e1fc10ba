package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/remaimber-it/interview-coach/internal/domain/interview"
	"github.com/remaimber-it/interview-coach/internal/llm"
	"github.com/remaimber-it/interview-coach/internal/resume"
	"github.com/remaimber-it/interview-coach/internal/store"
)

// fakeGateway replays scripted replies in order and logs every request.
type fakeGateway struct {
	mu      sync.Mutex
	replies []reply
	calls   []llm.Request
}

type reply struct {
	text string
	err  error
}

func (f *fakeGateway) Generate(_ context.Context, req llm.Request) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req)
	if len(f.replies) == 0 {
		return "", &llm.Error{Kind: llm.KindEmpty, Op: "fake", Err: errors.New("no scripted reply")}
	}
	r := f.replies[0]
	f.replies = f.replies[1:]
	return r.text, r.err
}

func (f *fakeGateway) Name() string { return "fake" }

func (f *fakeGateway) script(replies ...reply) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies = append(f.replies, replies...)
}

func (f *fakeGateway) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func ok(text string) reply { return reply{text: text} }

func fail(kind llm.Kind) reply {
	return reply{err: &llm.Error{Kind: kind, Op: "fake", Err: errors.New("boom")}}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(g llm.Gateway) (*InterviewService, store.Store) {
	st := store.NewMemory()
	return NewInterviewService(st, g, nil, nil, discardLogger()), st
}

func profile() interview.CandidateProfile {
	return interview.CandidateProfile{
		Name:          "Pavan",
		Role:          "Python Developer Intern",
		Experience:    interview.ExperienceFresher,
		Skills:        "Python, SQL",
		InterviewType: interview.TypeMixed,
	}
}

func TestGet_CreatesSession(t *testing.T) {
	svc, st := newTestService(&fakeGateway{})

	sess, err := svc.Get(context.Background(), "browser-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if sess.ID != "browser-1" || sess.State != interview.StateNotStarted {
		t.Errorf("unexpected session %+v", sess)
	}
	if _, err := st.GetSession(context.Background(), "browser-1"); err != nil {
		t.Errorf("session not persisted: %v", err)
	}
}

func TestStart_GeneratesFirstQuestion(t *testing.T) {
	g := &fakeGateway{}
	g.script(ok("  What is a Python decorator?\n"))
	svc, _ := newTestService(g)

	sess, err := svc.Start(context.Background(), "s", profile(), 3)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if sess.CurrentQuestion != "What is a Python decorator?" {
		t.Errorf("CurrentQuestion = %q", sess.CurrentQuestion)
	}
	if sess.CurrentQuestionNo != 1 || sess.State != interview.StateInProgress {
		t.Errorf("unexpected session %+v", sess)
	}
	if g.callCount() != 1 {
		t.Fatalf("calls = %d, want 1", g.callCount())
	}
	if !strings.Contains(g.calls[0].User, "Question number: 1") || g.calls[0].Temperature != 0.6 {
		t.Errorf("unexpected question request %+v", g.calls[0])
	}
}

func TestStart_InvalidProfileMakesNoCall(t *testing.T) {
	g := &fakeGateway{}
	svc, _ := newTestService(g)

	p := profile()
	p.Name = ""
	_, err := svc.Start(context.Background(), "s", p, 3)
	if !errors.Is(err, interview.ErrInvalidProfile) {
		t.Fatalf("expected ErrInvalidProfile, got %v", err)
	}
	if g.callCount() != 0 {
		t.Errorf("calls = %d, want 0", g.callCount())
	}
}

func TestStart_FailedGenerationCanBeRetried(t *testing.T) {
	g := &fakeGateway{}
	g.script(fail(llm.KindTransport), ok("Question one?"))
	svc, _ := newTestService(g)
	ctx := context.Background()

	sess, err := svc.Start(ctx, "s", profile(), 3)
	if kind, _ := llm.KindOf(err); kind != llm.KindTransport {
		t.Fatalf("expected transport error, got %v", err)
	}
	if sess.State != interview.StateInProgress || sess.CurrentQuestion != "" {
		t.Errorf("unexpected session after failure %+v", sess)
	}

	sess, err = svc.Start(ctx, "s", profile(), 3)
	if err != nil {
		t.Fatalf("retry Start: %v", err)
	}
	if sess.CurrentQuestion != "Question one?" || sess.CurrentQuestionNo != 1 {
		t.Errorf("unexpected session after retry %+v", sess)
	}
}

func TestStart_BlankQuestionIsEmptyGatewayError(t *testing.T) {
	g := &fakeGateway{}
	g.script(ok("  \n "), ok("Question one?"))
	svc, st := newTestService(g)
	ctx := context.Background()

	sess, err := svc.Start(ctx, "s", profile(), 3)
	if kind, _ := llm.KindOf(err); kind != llm.KindEmpty {
		t.Fatalf("expected empty error, got %v", err)
	}
	if sess == nil || sess.State != interview.StateInProgress || sess.CurrentQuestion != "" {
		t.Fatalf("unexpected session after blank question %+v", sess)
	}
	if stored, err := st.GetSession(ctx, "s"); err != nil || stored.State != interview.StateInProgress {
		t.Errorf("progress not saved: %+v, %v", stored, err)
	}

	sess, err = svc.Start(ctx, "s", profile(), 3)
	if err != nil {
		t.Fatalf("retry Start: %v", err)
	}
	if sess.CurrentQuestion != "Question one?" {
		t.Errorf("CurrentQuestion = %q", sess.CurrentQuestion)
	}
}

func TestStart_UnconfiguredGateway(t *testing.T) {
	svc, _ := newTestService(&llm.Unconfigured{Reason: "GROQ_API_KEY is not set"})

	_, err := svc.Start(context.Background(), "s", profile(), 3)
	if kind, _ := llm.KindOf(err); kind != llm.KindConfig {
		t.Fatalf("expected config error, got %v", err)
	}
	if _, err := svc.GatewayStatus(); err == nil {
		t.Error("GatewayStatus should report the missing key")
	}
}

func TestSaveAnswer_EmptyIsRejected(t *testing.T) {
	g := &fakeGateway{}
	g.script(ok("Q1?"))
	svc, _ := newTestService(g)
	ctx := context.Background()
	svc.Start(ctx, "s", profile(), 3)

	sess, err := svc.SaveAnswer(ctx, "s", "   ")
	if !errors.Is(err, interview.ErrEmptyAnswer) {
		t.Fatalf("expected ErrEmptyAnswer, got %v", err)
	}
	if len(sess.Records) != 0 || sess.CurrentQuestion != "Q1?" {
		t.Errorf("session changed on empty answer: %+v", sess)
	}
	if g.callCount() != 1 {
		t.Errorf("calls = %d, want 1", g.callCount())
	}
}

func TestSaveAnswer_NextQuestionFailureKeepsAnswer(t *testing.T) {
	g := &fakeGateway{}
	g.script(ok("Q1?"), fail(llm.KindAPI), ok("Q2?"))
	svc, _ := newTestService(g)
	ctx := context.Background()
	svc.Start(ctx, "s", profile(), 3)

	sess, err := svc.SaveAnswer(ctx, "s", "my answer")
	if err == nil {
		t.Fatal("expected error from question generation")
	}
	if len(sess.Records) != 1 || sess.Records[0].Answer != "my answer" {
		t.Errorf("answer not kept: %+v", sess.Records)
	}
	if sess.CurrentQuestionNo != 2 || sess.CurrentQuestion != "" {
		t.Errorf("unexpected counter state %+v", sess)
	}

	sess, err = svc.Start(ctx, "s", profile(), 3)
	if err != nil {
		t.Fatalf("Start retry: %v", err)
	}
	if sess.CurrentQuestion != "Q2?" {
		t.Errorf("CurrentQuestion = %q, want Q2?", sess.CurrentQuestion)
	}
}

// runInterview answers, skips, answers a three question interview.
func runInterview(t *testing.T, svc *InterviewService, g *fakeGateway, id string) {
	t.Helper()
	ctx := context.Background()
	g.script(ok("Q1?"), ok("Q2?"), ok("Q3?"))

	if _, err := svc.Start(ctx, id, profile(), 3); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := svc.SaveAnswer(ctx, id, "first answer"); err != nil {
		t.Fatalf("SaveAnswer: %v", err)
	}
	if _, err := svc.Skip(ctx, id); err != nil {
		t.Fatalf("Skip: %v", err)
	}
	sess, err := svc.SaveAnswer(ctx, id, "third answer")
	if err != nil {
		t.Fatalf("SaveAnswer: %v", err)
	}
	if sess.State != interview.StateAwaitingReport {
		t.Fatalf("State = %q, want awaiting_report", sess.State)
	}
}

func TestGenerateReport_FullInterview(t *testing.T) {
	g := &fakeGateway{}
	svc, _ := newTestService(g)
	ctx := context.Background()
	runInterview(t, svc, g, "s")

	g.script(
		ok("SCORE: 8\nSTRENGTHS: clear"),
		ok("SCORE: 6/10\nWEAKNESSES: shallow"),
		ok("Overall: Hire"),
	)
	before := g.callCount()

	sess, err := svc.GenerateReport(ctx, "s")
	if err != nil {
		t.Fatalf("GenerateReport: %v", err)
	}
	if g.callCount()-before != 3 {
		t.Errorf("report calls = %d, want 2 evaluations + 1 summary", g.callCount()-before)
	}
	if sess.State != interview.StateReported || sess.ReportText != "Overall: Hire" {
		t.Errorf("unexpected session %+v", sess)
	}

	gotScores := []int{sess.Records[0].Score, sess.Records[1].Score, sess.Records[2].Score}
	if gotScores[0] != 8 || gotScores[1] != -1 || gotScores[2] != 6 {
		t.Errorf("scores = %v, want [8 -1 6]", gotScores)
	}
	if sess.Records[1].Evaluation != interview.SkippedEvaluation {
		t.Errorf("skipped evaluation = %q", sess.Records[1].Evaluation)
	}

	summary := g.calls[len(g.calls)-1]
	if !strings.Contains(summary.User, "Question 2: Q2?\nCandidate answer: (Skipped)") {
		t.Errorf("summary transcript missing skipped record:\n%s", summary.User)
	}
	if !strings.Contains(summary.User, "Candidate answer: third answer") {
		t.Errorf("summary transcript missing answer 3:\n%s", summary.User)
	}

	exp, err := svc.Export(ctx, "s")
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if exp.Scores.Average == nil || *exp.Scores.Average != 7 {
		t.Errorf("average = %v, want 7", exp.Scores.Average)
	}
}

func TestGenerateReport_FailedEvaluationContinues(t *testing.T) {
	g := &fakeGateway{}
	svc, _ := newTestService(g)
	runInterview(t, svc, g, "s")

	g.script(fail(llm.KindTransport), ok("SCORE: 9"), ok("summary"))

	sess, err := svc.GenerateReport(context.Background(), "s")
	if err != nil {
		t.Fatalf("GenerateReport: %v", err)
	}
	if sess.Records[0].Evaluation != interview.FailedEvaluation || sess.Records[0].Score != -1 {
		t.Errorf("record 1 = %+v, want failed evaluation", sess.Records[0])
	}
	if sess.Records[2].Score != 9 {
		t.Errorf("record 3 score = %d, want 9", sess.Records[2].Score)
	}
	if sess.State != interview.StateReported {
		t.Errorf("State = %q, want reported", sess.State)
	}
}

func TestGenerateReport_SummaryFailureIsRetryable(t *testing.T) {
	g := &fakeGateway{}
	svc, _ := newTestService(g)
	ctx := context.Background()
	runInterview(t, svc, g, "s")

	g.script(ok("SCORE: 7"), ok("SCORE: 5"), fail(llm.KindAPI))
	sess, err := svc.GenerateReport(ctx, "s")
	if kind, _ := llm.KindOf(err); kind != llm.KindAPI {
		t.Fatalf("expected api error, got %v", err)
	}
	if sess.State != interview.StateAwaitingReport {
		t.Errorf("State = %q, want awaiting_report", sess.State)
	}

	g.script(ok("final summary"))
	before := g.callCount()
	sess, err = svc.GenerateReport(ctx, "s")
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if g.callCount()-before != 1 {
		t.Errorf("retry made %d calls, want only the summary", g.callCount()-before)
	}
	if sess.Records[0].Score != 7 || sess.Records[2].Score != 5 {
		t.Errorf("scores lost on retry: %+v", sess.Records)
	}
	if sess.ReportText != "final summary" {
		t.Errorf("ReportText = %q", sess.ReportText)
	}
}

// answerGateway answers evaluation requests by looking at the answer text,
// so results do not depend on call order.
type answerGateway struct {
	fakeGateway
}

func (a *answerGateway) Generate(ctx context.Context, req llm.Request) (string, error) {
	switch {
	case strings.Contains(req.User, "Candidate answer:\nfirst answer"):
		return "SCORE: 4", nil
	case strings.Contains(req.User, "Candidate answer:\nthird answer"):
		return "SCORE: 10", nil
	}
	return a.fakeGateway.Generate(ctx, req)
}

func TestGenerateReport_ParallelEvaluationsKeepQuestionOrder(t *testing.T) {
	g := &answerGateway{}
	svc := NewInterviewService(store.NewMemory(), g, nil, nil, discardLogger())
	svc.SetEvaluationWorkers(4)
	runInterview(t, svc, &g.fakeGateway, "s")

	g.script(ok("summary"))
	sess, err := svc.GenerateReport(context.Background(), "s")
	if err != nil {
		t.Fatalf("GenerateReport: %v", err)
	}
	if sess.Records[0].Score != 4 || sess.Records[1].Score != -1 || sess.Records[2].Score != 10 {
		t.Errorf("scores = [%d %d %d], want [4 -1 10]",
			sess.Records[0].Score, sess.Records[1].Score, sess.Records[2].Score)
	}
	if sess.ReportText != "summary" {
		t.Errorf("ReportText = %q", sess.ReportText)
	}
}

func TestGenerateReport_BeforeFinishing(t *testing.T) {
	g := &fakeGateway{}
	g.script(ok("Q1?"))
	svc, _ := newTestService(g)
	ctx := context.Background()
	svc.Start(ctx, "s", profile(), 3)

	_, err := svc.GenerateReport(ctx, "s")
	if !errors.Is(err, interview.ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestReset(t *testing.T) {
	g := &fakeGateway{}
	svc, st := newTestService(g)
	ctx := context.Background()
	runInterview(t, svc, g, "s")

	sess, err := svc.Reset(ctx, "s")
	if err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if sess.State != interview.StateNotStarted || len(sess.Records) != 0 || sess.ID != "s" {
		t.Errorf("unexpected session %+v", sess)
	}

	stored, err := st.GetSession(ctx, "s")
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if stored.State != interview.StateNotStarted || len(stored.Records) != 0 || stored.CurrentQuestionNo != 1 {
		t.Errorf("stored session not reset: %+v", stored)
	}
}

func TestReset_UnknownSession(t *testing.T) {
	svc, st := newTestService(&fakeGateway{})

	sess, err := svc.Reset(context.Background(), "never-seen")
	if err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if sess.ID != "never-seen" || sess.State != interview.StateNotStarted {
		t.Errorf("unexpected session %+v", sess)
	}
	if _, err := st.GetSession(context.Background(), "never-seen"); err != nil {
		t.Errorf("fresh session not persisted: %v", err)
	}
}

func TestSessionsAreIndependent(t *testing.T) {
	g := &fakeGateway{}
	svc, _ := newTestService(g)
	ctx := context.Background()

	g.script(ok("A1?"))
	svc.Start(ctx, "a", profile(), 3)
	g.script(ok("B1?"), ok("B2?"))
	svc.Start(ctx, "b", profile(), 5)
	svc.SaveAnswer(ctx, "b", "answer")

	a, _ := svc.Get(ctx, "a")
	b, _ := svc.Get(ctx, "b")
	if len(a.Records) != 0 || a.CurrentQuestion != "A1?" || a.TargetQuestionCount != 3 {
		t.Errorf("session a affected: %+v", a)
	}
	if len(b.Records) != 1 || b.CurrentQuestion != "B2?" {
		t.Errorf("unexpected session b: %+v", b)
	}
}

func TestStart_ConcurrentCallsGenerateOnce(t *testing.T) {
	g := &fakeGateway{}
	g.script(ok("Q1?"), ok("unexpected"))
	svc, _ := newTestService(g)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			svc.Start(context.Background(), "s", profile(), 3)
		}()
	}
	wg.Wait()

	if g.callCount() != 1 {
		t.Errorf("calls = %d, want 1", g.callCount())
	}
	sess, _ := svc.Get(context.Background(), "s")
	if sess.CurrentQuestion != "Q1?" {
		t.Errorf("CurrentQuestion = %q", sess.CurrentQuestion)
	}
}

type recordingArchive struct {
	keys []string
}

func (r *recordingArchive) Put(_ context.Context, sessionID string, d resume.Document) (string, error) {
	key := sessionID + "/" + d.Filename
	r.keys = append(r.keys, key)
	return key, nil
}

func TestExtractSkills(t *testing.T) {
	g := &fakeGateway{}
	g.script(ok(" Python, SQL, Git \n"))
	archive := &recordingArchive{}
	svc := NewInterviewService(store.NewMemory(), g, nil, archive, discardLogger())

	skills, err := svc.ExtractSkills(context.Background(), "s", resume.Document{
		Filename: "cv.txt",
		Data:     []byte("Worked with Python and SQL. Uses Git daily."),
	})
	if err != nil {
		t.Fatalf("ExtractSkills: %v", err)
	}
	if skills != "Python, SQL, Git" {
		t.Errorf("skills = %q", skills)
	}
	if len(archive.keys) != 1 {
		t.Errorf("archive keys = %v", archive.keys)
	}
	if !strings.Contains(g.calls[0].User, "Worked with Python and SQL.") || g.calls[0].MaxTokens != 300 {
		t.Errorf("unexpected request %+v", g.calls[0])
	}
}

func TestExtractSkills_BadDocumentMakesNoCall(t *testing.T) {
	g := &fakeGateway{}
	svc, _ := newTestService(g)

	_, err := svc.ExtractSkills(context.Background(), "s", resume.Document{Filename: "cv.txt", Data: []byte("   ")})
	if !errors.Is(err, resume.ErrEmptyDocument) {
		t.Errorf("expected ErrEmptyDocument, got %v", err)
	}
	if g.callCount() != 0 {
		t.Errorf("calls = %d, want 0", g.callCount())
	}
}

func TestCleanupIdle(t *testing.T) {
	svc, st := newTestService(&fakeGateway{})
	ctx := context.Background()
	svc.Get(ctx, "s")

	removed, err := svc.CleanupIdle(ctx, -1)
	if err != nil {
		t.Fatalf("CleanupIdle: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if _, err := st.GetSession(ctx, "s"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected session gone, got %v", err)
	}
}
