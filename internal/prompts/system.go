package prompts

// System holds the system prompt of each task. Any field can be replaced
// from configuration; empty fields fall back to the defaults.
type System struct {
	Interviewer    string `yaml:"interviewer"`
	Evaluator      string `yaml:"evaluator"`
	Summary        string `yaml:"summary"`
	SkillExtractor string `yaml:"skill_extractor"`
}

const interviewerSystem = `You are an expert technical interviewer and HR interviewer.
You create clear, focused interview questions for software and non-software roles.
Ask one question at a time. Do NOT answer the question yourself.`

const evaluatorSystem = `You are an expert interview evaluator and hiring manager.
You evaluate candidate answers for job roles and give:
- A score from 1 to 10
- Strengths
- Weaknesses
- Improvement suggestions

ALWAYS respond in this exact structure:

SCORE: <number from 1 to 10>

STRENGTHS:
<bullet points or short paragraph>

WEAKNESSES:
<bullet points or short paragraph>

IMPROVEMENT_TIPS:
<bullet points or short paragraph>`

const summarySystem = `You are an expert hiring manager summarizing an interview.
Based on the interview history, give:

1. Overall summary (5-8 lines)
2. Key strengths (list)
3. Key weaknesses (list)
4. Recommended level (e.g., Intern / Junior / Mid-level / Senior)
5. Final recommendation: Strong Hire / Hire / Neutral / No Hire (with 1-2 line reason)`

const skillExtractorSystem = `You are an assistant that reads resume text and extracts the key technical and professional skills.
Return ONLY a concise, comma-separated list of skills. Do not add explanations.`

// DefaultSystem returns the built-in system prompts.
func DefaultSystem() System {
	return System{
		Interviewer:    interviewerSystem,
		Evaluator:      evaluatorSystem,
		Summary:        summarySystem,
		SkillExtractor: skillExtractorSystem,
	}
}

// Merge returns s with every empty field taken from DefaultSystem.
func (s System) Merge() System {
	d := DefaultSystem()
	if s.Interviewer == "" {
		s.Interviewer = d.Interviewer
	}
	if s.Evaluator == "" {
		s.Evaluator = d.Evaluator
	}
	if s.Summary == "" {
		s.Summary = d.Summary
	}
	if s.SkillExtractor == "" {
		s.SkillExtractor = d.SkillExtractor
	}
	return s
}
