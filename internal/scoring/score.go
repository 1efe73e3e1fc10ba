package scoring

import (
	"strconv"
	"strings"
	"unicode"
)

// NoScore is returned when an evaluation carries no usable score.
const NoScore = -1

const (
	minScore = 1
	maxScore = 10
)

// ExtractScore finds the "SCORE: <n>" line in evaluator output and returns n.
//
// The first line whose trimmed, upper-cased text starts with SCORE decides.
// The value is the leading run of digits of the first token after the colon,
// so "SCORE: 7/10" yields 7. Anything unparsable or outside 1..10 yields
// NoScore.
func ExtractScore(text string) int {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(strings.ToUpper(line), "SCORE") {
			continue
		}
		return parseScoreLine(line)
	}
	return NoScore
}

func parseScoreLine(line string) int {
	_, value, ok := strings.Cut(line, ":")
	if !ok {
		return NoScore
	}
	fields := strings.Fields(value)
	if len(fields) == 0 {
		return NoScore
	}

	token := fields[0]
	end := strings.IndexFunc(token, func(r rune) bool { return !unicode.IsDigit(r) || r > unicode.MaxASCII })
	if end == -1 {
		end = len(token)
	}
	if end == 0 {
		return NoScore
	}

	n, err := strconv.Atoi(token[:end])
	if err != nil || n < minScore || n > maxScore {
		return NoScore
	}
	return n
}
