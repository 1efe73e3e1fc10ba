package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/remaimber-it/interview-coach/internal/domain/interview"
	"github.com/remaimber-it/interview-coach/internal/identity"
	"github.com/remaimber-it/interview-coach/internal/resume"
	"github.com/remaimber-it/interview-coach/internal/scoring"
)

// ── Request / Response types ────────────────────────────────────────────────

type ProfileView struct {
	Name          string `json:"name" example:"Pavan"`
	Role          string `json:"role" example:"Python Developer Intern"`
	Experience    string `json:"experience" example:"Fresher"`
	Skills        string `json:"skills" example:"Python, SQL, Git"`
	InterviewType string `json:"interview_type" example:"Mixed"`
}

type RecordView struct {
	QuestionNo int    `json:"question_no" example:"1"`
	Question   string `json:"question"`
	Answer     string `json:"answer"`
	Evaluation string `json:"evaluation,omitempty"`
	Score      int    `json:"score" example:"7"`
	Status     string `json:"status" example:"Answered"`
}

type SessionView struct {
	SessionID           string          `json:"session_id"`
	State               string          `json:"state" example:"in_progress"`
	Profile             ProfileView     `json:"profile"`
	TargetQuestionCount int             `json:"target_question_count" example:"5"`
	CurrentQuestionNo   int             `json:"current_question_no" example:"2"`
	CurrentQuestion     string          `json:"current_question,omitempty"`
	Progress            string          `json:"progress,omitempty" example:"Question 2 of 5"`
	Records             []RecordView    `json:"records"`
	CanGenerateReport   bool            `json:"can_generate_report"`
	Scores              *scoring.Report `json:"scores,omitempty"`
	Report              string          `json:"report,omitempty"`
}

type StartRequest struct {
	Name          string `json:"name" example:"Pavan"`
	Role          string `json:"role" example:"Python Developer Intern"`
	Experience    string `json:"experience" example:"Fresher"`
	Skills        string `json:"skills" example:"Python, SQL, Git"`
	InterviewType string `json:"interview_type" example:"Mixed"`
	NumQuestions  *int   `json:"num_questions,omitempty" example:"5"`
}

type AnswerRequest struct {
	Answer string `json:"answer" example:"A decorator wraps a function..."`
}

type SkillsResponse struct {
	Skills string `json:"skills" example:"Python, SQL, Git"`
}

type OptionsResponse struct {
	ExperienceLevels []string `json:"experience_levels"`
	InterviewTypes   []string `json:"interview_types"`
	MinQuestions     int      `json:"min_questions" example:"3"`
	MaxQuestions     int      `json:"max_questions" example:"10"`
	DefaultQuestions int      `json:"default_questions" example:"5"`
}

func newSessionView(s *interview.Session) SessionView {
	view := SessionView{
		SessionID: s.ID,
		State:     string(s.State),
		Profile: ProfileView{
			Name:          s.Profile.Name,
			Role:          s.Profile.Role,
			Experience:    string(s.Profile.Experience),
			Skills:        s.Profile.Skills,
			InterviewType: string(s.Profile.InterviewType),
		},
		TargetQuestionCount: s.TargetQuestionCount,
		CurrentQuestionNo:   s.CurrentQuestionNo,
		CurrentQuestion:     s.CurrentQuestion,
		Progress:            s.Progress(),
		Records:             make([]RecordView, len(s.Records)),
		CanGenerateReport:   s.CanGenerateReport() == nil,
		Report:              s.ReportText,
	}
	for i, r := range s.Records {
		view.Records[i] = RecordView{
			QuestionNo: r.QuestionNo,
			Question:   r.Question,
			Answer:     r.Answer,
			Evaluation: r.Evaluation,
			Score:      r.Score,
			Status:     r.Status(),
		}
	}
	if s.State == interview.StateReported {
		scores := scoring.Aggregate(s.Records)
		view.Scores = &scores
	}
	return view
}

func (h *Handler) respondSession(w http.ResponseWriter, r *http.Request, sess *interview.Session, err error) {
	if err != nil {
		h.handleError(w, r, err, sess)
		return
	}
	respondJSON(w, http.StatusOK, newSessionView(sess))
}

// ── Handlers ────────────────────────────────────────────────────────────────

// getInterview returns the browser's interview session.
// @Summary      Get the current interview
// @Description  Returns the interview session bound to the session cookie, creating it on first use.
// @Tags         Interview
// @Produce      json
// @Success      200  {object}  SessionView
// @Failure      500  {object}  ErrorResponse
// @Router       /api/interview [get]
func (h *Handler) getInterview(w http.ResponseWriter, r *http.Request) {
	sess, err := h.interviews.Get(r.Context(), identity.SessionIDFromContext(r.Context()))
	h.respondSession(w, r, sess, err)
}

// options lists the accepted profile values.
// @Summary      Profile options
// @Tags         Interview
// @Produce      json
// @Success      200  {object}  OptionsResponse
// @Router       /api/interview/options [get]
func (h *Handler) options(w http.ResponseWriter, r *http.Request) {
	resp := OptionsResponse{
		MinQuestions:     interview.MinQuestions,
		MaxQuestions:     interview.MaxQuestions,
		DefaultQuestions: interview.DefaultQuestions,
	}
	for _, b := range interview.ExperienceBands {
		resp.ExperienceLevels = append(resp.ExperienceLevels, string(b))
	}
	for _, t := range interview.InterviewTypes {
		resp.InterviewTypes = append(resp.InterviewTypes, string(t))
	}
	respondJSON(w, http.StatusOK, resp)
}

// startInterview starts the interview or regenerates a missing question.
// @Summary      Start the interview
// @Description  Snapshots the profile and generates question 1. While an interview is running without a pending question (after a failed generation) it regenerates the question; otherwise it is a no-op.
// @Tags         Interview
// @Accept       json
// @Produce      json
// @Param        body  body      StartRequest  true  "Candidate profile"
// @Success      200   {object}  SessionView
// @Failure      400   {object}  ErrorResponse  "incomplete profile"
// @Failure      409   {object}  ErrorResponse  "interview already finished"
// @Failure      502   {object}  ErrorResponse  "model call failed"
// @Failure      503   {object}  ErrorResponse  "model not configured"
// @Router       /api/interview/start [post]
func (h *Handler) startInterview(w http.ResponseWriter, r *http.Request) {
	var req StartRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	target := interview.DefaultQuestions
	if req.NumQuestions != nil {
		target = *req.NumQuestions
	}
	profile := interview.CandidateProfile{
		Name:          req.Name,
		Role:          req.Role,
		Experience:    interview.ExperienceBand(req.Experience),
		Skills:        req.Skills,
		InterviewType: interview.InterviewType(req.InterviewType),
	}

	sess, err := h.interviews.Start(r.Context(), identity.SessionIDFromContext(r.Context()), profile, target)
	h.respondSession(w, r, sess, err)
}

// submitAnswer saves the answer to the current question.
// @Summary      Answer the current question
// @Tags         Interview
// @Accept       json
// @Produce      json
// @Param        body  body      AnswerRequest  true  "Answer"
// @Success      200   {object}  SessionView
// @Failure      400   {object}  ErrorResponse  "empty answer"
// @Failure      409   {object}  ErrorResponse  "no question pending"
// @Failure      502   {object}  ErrorResponse  "next question could not be generated; the answer was saved"
// @Router       /api/interview/answer [post]
func (h *Handler) submitAnswer(w http.ResponseWriter, r *http.Request) {
	var req AnswerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	sess, err := h.interviews.SaveAnswer(r.Context(), identity.SessionIDFromContext(r.Context()), req.Answer)
	h.respondSession(w, r, sess, err)
}

// skipQuestion skips the current question.
// @Summary      Skip the current question
// @Tags         Interview
// @Produce      json
// @Success      200  {object}  SessionView
// @Failure      409  {object}  ErrorResponse  "no question pending"
// @Failure      502  {object}  ErrorResponse
// @Router       /api/interview/skip [post]
func (h *Handler) skipQuestion(w http.ResponseWriter, r *http.Request) {
	sess, err := h.interviews.Skip(r.Context(), identity.SessionIDFromContext(r.Context()))
	h.respondSession(w, r, sess, err)
}

// generateReport evaluates the answers and writes the final report.
// @Summary      Generate the final report
// @Description  Evaluates every answered question, then writes the overall summary and recommendation.
// @Tags         Interview
// @Produce      json
// @Success      200  {object}  SessionView
// @Failure      409  {object}  ErrorResponse  "interview not finished"
// @Failure      502  {object}  ErrorResponse  "summary failed; retry allowed"
// @Failure      503  {object}  ErrorResponse
// @Router       /api/interview/report [post]
func (h *Handler) generateReport(w http.ResponseWriter, r *http.Request) {
	sess, err := h.interviews.GenerateReport(r.Context(), identity.SessionIDFromContext(r.Context()))
	h.respondSession(w, r, sess, err)
}

// resetInterview clears the session.
// @Summary      Reset the interview
// @Tags         Interview
// @Produce      json
// @Success      200  {object}  SessionView
// @Router       /api/interview/reset [post]
func (h *Handler) resetInterview(w http.ResponseWriter, r *http.Request) {
	sess, err := h.interviews.Reset(r.Context(), identity.SessionIDFromContext(r.Context()))
	h.respondSession(w, r, sess, err)
}

// extractSkills reads an uploaded resume and returns the skills found.
// @Summary      Extract skills from a resume
// @Tags         Interview
// @Accept       multipart/form-data
// @Produce      json
// @Param        resume  formData  file  true  "Resume (.txt, .pdf or .docx)"
// @Success      200     {object}  SkillsResponse
// @Failure      400     {object}  ErrorResponse
// @Failure      413     {object}  ErrorResponse
// @Failure      502     {object}  ErrorResponse
// @Failure      503     {object}  ErrorResponse
// @Router       /api/interview/extract-skills [post]
func (h *Handler) extractSkills(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, resume.MaxSize+(1<<20))
	file, header, err := r.FormFile("resume")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.handleError(w, r, fmt.Errorf("%w: upload exceeds %d bytes", resume.ErrTooLarge, tooLarge.Limit), nil)
			return
		}
		respondError(w, http.StatusBadRequest, "missing resume file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, resume.MaxSize+1))
	if err != nil {
		respondError(w, http.StatusBadRequest, "failed to read resume file")
		return
	}

	skills, err := h.interviews.ExtractSkills(r.Context(), identity.SessionIDFromContext(r.Context()), resume.Document{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	})
	if err != nil {
		h.handleError(w, r, err, nil)
		return
	}
	respondJSON(w, http.StatusOK, SkillsResponse{Skills: skills})
}
