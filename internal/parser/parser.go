// Package parser turns free-form model output into a headline and analysis.
// Parse never fails: output that is not the requested JSON object is read
// with a labelled-line scanner, and anything else falls back to placeholders.
package parser

import (
	"encoding/json"
	"regexp"
	"strings"
)

// DefaultHeadline is used when no headline can be extracted
const DefaultHeadline = "Trending Update"

// Tier records which strategy produced a Result
type Tier int

const (
	// TierStructured means the output was the requested JSON object
	TierStructured Tier = iota
	// TierFallback means the labelled-line scanner or the placeholders were used
	TierFallback
)

func (t Tier) String() string {
	switch t {
	case TierStructured:
		return "structured"
	case TierFallback:
		return "fallback"
	default:
		return "unknown"
	}
}

// Result is a parsed headline and analysis
type Result struct {
	Headline string
	Analysis string
	Tier     Tier
}

var (
	openFencePattern     = regexp.MustCompile("(?i)^```(?:json)?\\s*")
	closeFencePattern    = regexp.MustCompile("\\s*```$")
	headlineLabelPattern = regexp.MustCompile(`(?i)headline:?`)
)

type structured struct {
	Headline string `json:"headline"`
	Analysis string `json:"analysis"`
}

// Parse extracts {headline, analysis} from raw model output
func Parse(raw string) Result {
	if r, ok := parseStructured(raw); ok {
		return r
	}
	return parseLines(raw)
}

func parseStructured(raw string) (Result, bool) {
	// Only the fence wrapping the whole output is removed
	cleaned := strings.TrimSpace(raw)
	cleaned = openFencePattern.ReplaceAllString(cleaned, "")
	cleaned = strings.TrimSpace(closeFencePattern.ReplaceAllString(cleaned, ""))
	if cleaned == "" {
		return Result{}, false
	}

	var s structured
	if err := json.Unmarshal([]byte(cleaned), &s); err != nil {
		return Result{}, false
	}
	if strings.TrimSpace(s.Headline) == "" || strings.TrimSpace(s.Analysis) == "" {
		return Result{}, false
	}
	return Result{Headline: s.Headline, Analysis: s.Analysis, Tier: TierStructured}, true
}

func parseLines(raw string) Result {
	var (
		headline   string
		analysis   []string
		inAnalysis bool
	)

	for _, line := range strings.Split(raw, "\n") {
		lower := strings.ToLower(line)
		switch {
		case strings.Contains(lower, "headline:"):
			loc := headlineLabelPattern.FindStringIndex(line)
			headline = cleanLabelled(line[:loc[0]] + line[loc[1]:])
		case strings.Contains(lower, "analysis:"):
			// The label line only switches modes; the analysis is what follows
			inAnalysis = true
		case inAnalysis:
			analysis = append(analysis, line)
		}
	}

	r := Result{
		Headline: headline,
		Analysis: strings.TrimSpace(strings.Join(analysis, "\n")),
		Tier:     TierFallback,
	}
	if r.Headline == "" {
		r.Headline = DefaultHeadline
	}
	if r.Analysis == "" {
		r.Analysis = raw
	}
	return r
}

// cleanLabelled trims whitespace and the markdown emphasis models wrap labels in
func cleanLabelled(s string) string {
	return strings.Trim(s, " \t\r*#_\"")
}
