package scoring

import (
	"math"
	"testing"

	"github.com/remaimber-it/interview-coach/internal/domain/interview"
)

func rec(no, score int, skipped bool) interview.Record {
	r := interview.Record{QuestionNo: no, Question: "q", Answer: "a", Evaluation: "e", Score: score}
	if skipped {
		r.Answer = interview.SkippedAnswer
		r.Evaluation = interview.SkippedEvaluation
	}
	return r
}

func TestAggregate_MixedScores(t *testing.T) {
	records := []interview.Record{
		rec(1, 8, false),
		rec(2, -1, true),
		rec(3, 6, false),
		rec(4, -1, false), // failed evaluation
		rec(5, 9, false),
	}

	got := Aggregate(records)

	if len(got.Rows) != 5 {
		t.Fatalf("rows = %d, want 5", len(got.Rows))
	}
	if got.Valid != 3 {
		t.Errorf("Valid = %d, want 3", got.Valid)
	}
	if got.Average == nil {
		t.Fatal("expected an average")
	}
	if math.Abs(*got.Average-23.0/3.0) > 1e-9 {
		t.Errorf("Average = %f, want %f", *got.Average, 23.0/3.0)
	}
	if got.Rows[1].Answered != "Skipped" || got.Rows[3].Answered != "Yes" {
		t.Errorf("unexpected answered column: %+v", got.Rows)
	}
	if got.Rows[3].Score != -1 {
		t.Errorf("failed evaluation row score = %d, want -1", got.Rows[3].Score)
	}
}

func TestAggregate_AllSkipped(t *testing.T) {
	got := Aggregate([]interview.Record{rec(1, -1, true), rec(2, -1, true), rec(3, -1, true)})

	if got.Average != nil {
		t.Errorf("Average = %v, want nil", *got.Average)
	}
	if got.Valid != 0 {
		t.Errorf("Valid = %d, want 0", got.Valid)
	}
	for _, r := range got.Rows {
		if r.Answered != "Skipped" || r.Score != -1 {
			t.Errorf("unexpected row %+v", r)
		}
	}
}

func TestAggregate_Empty(t *testing.T) {
	got := Aggregate(nil)
	if len(got.Rows) != 0 || got.Average != nil {
		t.Errorf("unexpected report %+v", got)
	}
}
