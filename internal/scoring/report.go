package scoring

import "github.com/remaimber-it/interview-coach/internal/domain/interview"

// Row is one line of the score table.
type Row struct {
	QuestionNo int    `json:"question_no"`
	Score      int    `json:"score"`
	Answered   string `json:"answered"`
}

// Report is the per-question score table plus the average over the
// questions that received a valid score.
type Report struct {
	Rows    []Row    `json:"rows"`
	Average *float64 `json:"average"`
	Valid   int      `json:"valid"`
}

// Aggregate builds the score table in record order. Skipped and failed
// evaluations (score -1) appear in the table but not in the average;
// Average is nil when no record has a valid score.
func Aggregate(records []interview.Record) Report {
	report := Report{Rows: make([]Row, 0, len(records))}

	sum := 0
	for _, r := range records {
		answered := "Yes"
		if r.Skipped() {
			answered = "Skipped"
		}
		report.Rows = append(report.Rows, Row{
			QuestionNo: r.QuestionNo,
			Score:      r.Score,
			Answered:   answered,
		})
		if r.Score >= 0 {
			sum += r.Score
			report.Valid++
		}
	}

	if report.Valid > 0 {
		avg := float64(sum) / float64(report.Valid)
		report.Average = &avg
	}
	return report
}
