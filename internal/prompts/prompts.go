package prompts

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/remaimber-it/interview-coach/internal/domain/interview"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// templates is parsed once at package init; each file is addressed by name.
var templates = template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))

// Generation parameters per task.
const (
	skillTemperature    = 0.2
	skillMaxTokens      = 300
	questionTemperature = 0.6
	questionMaxTokens   = 400
	evalTemperature     = 0.4
	evalMaxTokens       = 600
	summaryTemperature  = 0.4
	summaryMaxTokens    = 800
)

// earlyQuestions is how many opening questions are kept easier.
const earlyQuestions = 2

// TranscriptSeparator closes every block of the summary transcript.
const TranscriptSeparator = "-----------------------------"

// Prompt is a ready-to-send model request.
type Prompt struct {
	System      string
	User        string
	Temperature float64
	MaxTokens   int
}

// Builder renders prompts with a fixed set of system prompts.
type Builder struct {
	system System
}

// NewBuilder returns a Builder using s, with empty fields defaulted.
func NewBuilder(s System) *Builder {
	return &Builder{system: s.Merge()}
}

// Default is a Builder with the built-in system prompts.
var Default = NewBuilder(System{})

// SkillExtraction asks for a comma-separated skill list from resume text.
func (b *Builder) SkillExtraction(resumeText string) (Prompt, error) {
	user, err := render("skill_extraction.tmpl", struct{ Resume string }{resumeText})
	if err != nil {
		return Prompt{}, err
	}
	return Prompt{
		System:      b.system.SkillExtractor,
		User:        user,
		Temperature: skillTemperature,
		MaxTokens:   skillMaxTokens,
	}, nil
}

// Question asks for question number questionNo of an interview for p.
func (b *Builder) Question(p interview.CandidateProfile, questionNo int) (Prompt, error) {
	data := struct {
		interview.CandidateProfile
		QuestionNo int
		Early      bool
	}{p, questionNo, questionNo <= earlyQuestions}

	user, err := render("question.tmpl", data)
	if err != nil {
		return Prompt{}, err
	}
	return Prompt{
		System:      b.system.Interviewer,
		User:        user,
		Temperature: questionTemperature,
		MaxTokens:   questionMaxTokens,
	}, nil
}

// Evaluation asks for a structured evaluation of one answer.
func (b *Builder) Evaluation(p interview.CandidateProfile, question, answer string) (Prompt, error) {
	data := struct {
		interview.CandidateProfile
		Question string
		Answer   string
	}{p, question, answer}

	user, err := render("evaluation.tmpl", data)
	if err != nil {
		return Prompt{}, err
	}
	return Prompt{
		System:      b.system.Evaluator,
		User:        user,
		Temperature: evalTemperature,
		MaxTokens:   evalMaxTokens,
	}, nil
}

// Summary asks for the overall report over all records.
func (b *Builder) Summary(p interview.CandidateProfile, records []interview.Record) (Prompt, error) {
	data := struct {
		interview.CandidateProfile
		Transcript string
	}{p, Transcript(records)}

	user, err := render("summary.tmpl", data)
	if err != nil {
		return Prompt{}, err
	}
	return Prompt{
		System:      b.system.Summary,
		User:        user,
		Temperature: summaryTemperature,
		MaxTokens:   summaryMaxTokens,
	}, nil
}

// Transcript renders records in order, one block per question.
func Transcript(records []interview.Record) string {
	var sb strings.Builder
	for i, r := range records {
		fmt.Fprintf(&sb, "Question %d: %s\n", i+1, r.Question)
		fmt.Fprintf(&sb, "Candidate answer: %s\n", r.Answer)
		fmt.Fprintf(&sb, "Evaluation:\n%s\n\n", r.Evaluation)
		sb.WriteString(TranscriptSeparator)
		sb.WriteString("\n")
	}
	return sb.String()
}

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render prompt %s: %w", name, err)
	}
	return buf.String(), nil
}
