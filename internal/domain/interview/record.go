package interview

const (
	// SkippedAnswer is stored as the answer of a skipped question.
	SkippedAnswer = "(Skipped)"

	// SkippedEvaluation is the fixed evaluation of a skipped question.
	SkippedEvaluation = "Not evaluated (skipped by interviewer)."

	// FailedEvaluation replaces the evaluation when the model call failed.
	FailedEvaluation = "Evaluation failed."

	// NoScore marks a record as unscored, skipped or failed.
	NoScore = -1
)

// Record is one asked question with its answer and, after report
// generation, its evaluation.
type Record struct {
	QuestionNo int
	Question   string
	Answer     string
	Evaluation string
	Score      int
}

// Skipped reports whether the question was skipped rather than answered.
func (r Record) Skipped() bool {
	return r.Answer == SkippedAnswer
}

// NeedsEvaluation is true for answered records that have not been evaluated yet.
func (r Record) NeedsEvaluation() bool {
	return !r.Skipped() && r.Evaluation == ""
}

// Status is the label shown in the answered/skipped overview.
func (r Record) Status() string {
	if r.Skipped() {
		return "Skipped"
	}
	return "Answered"
}
