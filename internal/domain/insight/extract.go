// Package insight turns unstructured interaction logs into structured
// records: heuristic classification and keyword extraction, plus the session
// context projection.
package insight

import (
	"strings"

	"github.com/hyperfocal/ledgermind/internal/ledger"
)

// Interaction categories, in classification priority order.
const (
	CategoryPlanning       = "planning"
	CategoryImplementation = "implementation"
	CategoryDebugging      = "debugging"
	CategoryDecision       = "decision"
	CategoryAnalysis       = "analysis"
)

// Classification keyword families. Matching is case-insensitive substring
// matching against small fixed vocabularies: a coarse indexing aid, not
// semantic understanding.
var categoryFamilies = []struct {
	category string
	terms    []string
}{
	{CategoryPlanning, []string{"plan", "roadmap", "strategy", "next steps", "prioritize"}},
	{CategoryImplementation, []string{"implement", "build", "create", "deploy", "develop", "launch"}},
	{CategoryDebugging, []string{"error", "bug", "debug", "broken", "failing", "fix", "crash"}},
	{CategoryDecision, []string{"decide", "decided", "decision", "choose", "chose", "should we"}},
}

var (
	taskTerms       = []string{"need to", "todo", "task", "implement", "build", "fix"}
	technologyTerms = []string{"stripe", "api", "database", "python", "golang", "docker", "aws", "sqlite", "webhook", "javascript"}
	decisionTerms   = []string{"decided", "decision", "chose", "going with", "will use"}
	blockerTerms    = []string{"blocked", "blocker", "stuck", "error", "issue", "problem", "failing"}

	urgencyTerms    = []string{"urgent", "critical", "asap", "immediately", "emergency"}
	revenueTerms    = []string{"revenue", "profit", "money", "sales", "pricing", "customer"}
	completionTerms = []string{"done", "completed", "finished", "shipped", "launched"}
)

// Result is the structured output of extraction over one interaction pair.
type Result struct {
	Category   string
	Extracted  ledger.Extraction
	Importance float64
}

// Extract classifies an interaction pair and pulls out keyword-family hits.
// It is a pure function of its two inputs.
func Extract(userMessage, response string) Result {
	text := strings.ToLower(userMessage + " " + response)

	result := Result{Category: CategoryAnalysis}
	for _, family := range categoryFamilies {
		if matchAny(text, family.terms) {
			result.Category = family.category
			break
		}
	}

	result.Extracted = ledger.Extraction{
		Tasks:        matches(text, taskTerms),
		Technologies: matches(text, technologyTerms),
		Decisions:    matches(text, decisionTerms),
		Blockers:     matches(text, blockerTerms),
	}
	result.Importance = importance(text, result.Extracted)
	return result
}

// importance scores an interaction from fixed increments, capped at 1.0.
func importance(text string, ex ledger.Extraction) float64 {
	score := 0.3
	if matchAny(text, urgencyTerms) {
		score += 0.3
	}
	if matchAny(text, revenueTerms) {
		score += 0.2
	}
	if len(ex.Decisions) > 0 {
		score += 0.2
	}
	if len(ex.Blockers) > 0 {
		score += 0.2
	}
	if matchAny(text, completionTerms) {
		score += 0.1
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}

func matchAny(text string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}

func matches(text string, terms []string) []string {
	var hits []string
	for _, term := range terms {
		if strings.Contains(text, term) {
			hits = append(hits, term)
		}
	}
	return hits
}
