package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/remaimber-it/interview-coach/internal/identity"
	"github.com/remaimber-it/interview-coach/internal/scoring"
)

// ── Request / Response types ────────────────────────────────────────────────

type ExportData struct {
	Version    string         `json:"version" example:"1.0"`
	ExportedAt string         `json:"exported_at"`
	SessionID  string         `json:"session_id"`
	State      string         `json:"state"`
	Profile    ProfileView    `json:"profile"`
	Target     int            `json:"target_question_count"`
	Records    []RecordView   `json:"records"`
	Scores     scoring.Report `json:"scores"`
	Report     string         `json:"report,omitempty"`
	Transcript string         `json:"transcript"`
}

// ── Handlers ────────────────────────────────────────────────────────────────

// exportInterview downloads the session as JSON.
// @Summary      Export the interview
// @Description  Profile, records, score table, report and the plain-text transcript as a JSON attachment.
// @Tags         Interview
// @Produce      json
// @Success      200  {object}  ExportData
// @Failure      404  {object}  ErrorResponse
// @Router       /api/interview/export [get]
func (h *Handler) exportInterview(w http.ResponseWriter, r *http.Request) {
	exp, err := h.interviews.Export(r.Context(), identity.SessionIDFromContext(r.Context()))
	if err != nil {
		h.handleError(w, r, err, nil)
		return
	}

	data := ExportData{
		Version:    "1.0",
		ExportedAt: exp.ExportedAt.Format(time.RFC3339),
		SessionID:  exp.SessionID,
		State:      string(exp.State),
		Profile: ProfileView{
			Name:          exp.Profile.Name,
			Role:          exp.Profile.Role,
			Experience:    string(exp.Profile.Experience),
			Skills:        exp.Profile.Skills,
			InterviewType: string(exp.Profile.InterviewType),
		},
		Target:     exp.Target,
		Records:    make([]RecordView, len(exp.Records)),
		Scores:     exp.Scores,
		Report:     exp.Report,
		Transcript: exp.Transcript,
	}
	for i, rec := range exp.Records {
		data.Records[i] = RecordView{
			QuestionNo: rec.QuestionNo,
			Question:   rec.Question,
			Answer:     rec.Answer,
			Evaluation: rec.Evaluation,
			Score:      rec.Score,
			Status:     rec.Status(),
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=interview-%s.json", exp.ExportedAt.Format("20060102-150405")))
	json.NewEncoder(w).Encode(data)
}
