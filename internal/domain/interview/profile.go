package interview

import (
	"errors"
	"fmt"
	"strings"
)

type ExperienceBand string

const (
	ExperienceFresher     ExperienceBand = "Fresher"
	ExperienceUnderOne    ExperienceBand = "0–1 years"
	ExperienceOneToThree  ExperienceBand = "1–3 years"
	ExperienceThreeToFive ExperienceBand = "3–5 years"
	ExperienceFivePlus    ExperienceBand = "5+ years"
)

// ExperienceBands lists the bands in the order the UI offers them.
var ExperienceBands = []ExperienceBand{
	ExperienceFresher,
	ExperienceUnderOne,
	ExperienceOneToThree,
	ExperienceThreeToFive,
	ExperienceFivePlus,
}

type InterviewType string

const (
	TypeTechnical  InterviewType = "Technical"
	TypeBehavioral InterviewType = "HR / Behavioral"
	TypeMixed      InterviewType = "Mixed"
)

var InterviewTypes = []InterviewType{TypeTechnical, TypeBehavioral, TypeMixed}

const (
	MinQuestions     = 3
	MaxQuestions     = 10
	DefaultQuestions = 5
)

// ErrInvalidProfile is returned when a profile is not ready for an interview.
var ErrInvalidProfile = errors.New("invalid candidate profile")

// CandidateProfile is the candidate/job metadata a session is built around.
type CandidateProfile struct {
	Name          string
	Role          string
	Experience    ExperienceBand
	Skills        string
	InterviewType InterviewType
}

// Normalize trims free-text fields and fills enum defaults.
func (p CandidateProfile) Normalize() CandidateProfile {
	p.Name = strings.TrimSpace(p.Name)
	p.Role = strings.TrimSpace(p.Role)
	p.Skills = strings.TrimSpace(p.Skills)
	if p.Experience == "" {
		p.Experience = ExperienceFresher
	}
	if p.InterviewType == "" {
		p.InterviewType = TypeMixed
	}
	// The ASCII hyphen is accepted as an alias of the en dash.
	p.Experience = ExperienceBand(strings.ReplaceAll(string(p.Experience), "-", "–"))
	return p
}

// Validate reports whether the profile can start an interview: name, role and
// skills must be filled in and both enums must hold a known value.
func (p CandidateProfile) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("%w: candidate name is required", ErrInvalidProfile)
	}
	if p.Role == "" {
		return fmt.Errorf("%w: job role is required", ErrInvalidProfile)
	}
	if p.Skills == "" {
		return fmt.Errorf("%w: skills are required", ErrInvalidProfile)
	}
	if !validBand(p.Experience) {
		return fmt.Errorf("%w: unknown experience level %q", ErrInvalidProfile, p.Experience)
	}
	if !validType(p.InterviewType) {
		return fmt.Errorf("%w: unknown interview type %q", ErrInvalidProfile, p.InterviewType)
	}
	return nil
}

func validBand(b ExperienceBand) bool {
	for _, known := range ExperienceBands {
		if b == known {
			return true
		}
	}
	return false
}

func validType(t InterviewType) bool {
	for _, known := range InterviewTypes {
		if t == known {
			return true
		}
	}
	return false
}
