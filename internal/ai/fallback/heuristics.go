// Package fallback provides the deterministic stand-ins for the model-backed
// collaborators and the guard that switches to them when a model call fails.
package fallback

import (
	"context"
	"fmt"
	"strings"

	"github.com/spigell/interviewer/internal/ai"
	"github.com/spigell/interviewer/internal/skills"
	"github.com/spigell/interviewer/internal/textutil"
)

// GenericBehavioralQuestion is asked when no tailored behavioral question is available.
const GenericBehavioralQuestion = "Tell me about a time when you faced an unexpected challenge at work. " +
	"How did you take ownership of the situation and resolve it?"

// UnavailableSummary stands in for the narrative when no summarizer answered.
const UnavailableSummary = "AI analysis unavailable. See detailed scores below."

const bimBehavioralQuestion = "Tell me about a time you identified a coordination or clash issue " +
	"that was outside your assigned scope in a BIM project. How did you handle it and what was the outcome?"

var fillerTemplates = []string{
	"Explain a core concept in %s.",
	"Describe a real-world problem you solved using %s.",
	"What challenges do you face when working in %s?",
	"How do you handle performance optimization in %s?",
	"Describe a time you had to debug a complex %s issue.",
	"What are the key differences between versions of %s?",
}

var (
	exampleMarkers     = []string{"for example", "for instance", "such as", "like", "e.g."}
	explanationMarkers = []string{"because", "therefore", "thus", "so", "since", "which means"}
	technicalMarkers   = []string{"api", "database", "system", "design", "algorithm", "architecture"}
	projectMarkers     = []string{"project", "built", "developed", "created", "implemented", "designed"}
)

// Heuristics implements every collaborator contract without a model.
// Results depend only on the input.
type Heuristics struct {
	catalogue *skills.Catalogue
}

// NewHeuristics returns heuristics that detect skills with the given catalogue.
func NewHeuristics(catalogue *skills.Catalogue) *Heuristics {
	if catalogue == nil {
		catalogue = skills.Default()
	}
	return &Heuristics{catalogue: catalogue}
}

// FillQuestions returns exactly quota questions: the usable returned ones first,
// then filler built from the templates for skill, skipping duplicates.
func FillQuestions(returned []string, skill string, quota int) []string {
	if quota <= 0 {
		return []string{}
	}

	out := make([]string, 0, quota)
	seen := make(map[string]struct{}, quota)
	add := func(q string) {
		q = strings.TrimSpace(q)
		if q == "" || len(out) >= quota {
			return
		}
		key := strings.ToLower(q)
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		out = append(out, q)
	}

	for _, q := range returned {
		add(q)
	}

	skill = strings.TrimSpace(skill)
	if skill == "" {
		skill = "your field"
	}
	for _, tmpl := range fillerTemplates {
		add(fmt.Sprintf(tmpl, skill))
	}
	for i := 1; len(out) < quota; i++ {
		add(fmt.Sprintf("Walk me through another %s problem you have solved (%d).", skill, i))
	}
	return out
}

// BehavioralQuestion returns the fixed behavioral question for a domain.
func BehavioralQuestion(domain string) string {
	if domain == "aec_bim" {
		return bimBehavioralQuestion
	}
	return GenericBehavioralQuestion
}

func (h *Heuristics) GenerateQuestions(_ context.Context, domain string, _ ai.Level, count int) ([]string, error) {
	return FillQuestions(nil, domain, count), nil
}

func (h *Heuristics) GenerateBehavioralQuestion(_ context.Context, profile ai.SkillProfile) (string, error) {
	return BehavioralQuestion(profile.PrimarySkill), nil
}

// EvaluateAnswer scores an answer by its length and by example, explanation and terminology markers.
func (h *Heuristics) EvaluateAnswer(_ context.Context, question, answer string) (*ai.Rubric, error) {
	words := textutil.WordCount(answer)

	score := 5.0
	switch {
	case words >= 100 && words <= 250:
		score = 7
	case words >= 50 && words < 100:
		score = 6
	case words < 50:
		score = 4
	case words > 300:
		score = 6
	}

	hasExamples := containsAnyWord(answer, exampleMarkers)
	if hasExamples {
		score++
	}
	if containsAnyWord(answer, technicalMarkers) {
		score++
	}
	if containsAnyWord(answer, explanationMarkers) {
		score++
	}

	q := strings.ToLower(question)
	switch {
	case strings.Contains(q, "debug") && containsAnyWord(answer, []string{"log", "logs", "monitor", "analyze", "profile"}):
		score++
	case strings.Contains(q, "design") && containsAnyWord(answer, []string{"scalable", "architecture", "components", "trade-off"}):
		score++
	case strings.Contains(q, "difference between") && containsAnyWord(answer, []string{"vs", "versus", "while", "whereas", "on the other hand"}):
		score++
	}

	rubric := ai.UniformRubric(score)

	if words >= 100 {
		rubric.Strengths = append(rubric.Strengths, "Provides detailed explanations")
	} else {
		rubric.Weaknesses = append(rubric.Weaknesses, "Could provide more detail")
	}
	if hasExamples {
		rubric.Strengths = append(rubric.Strengths, "Uses practical examples")
	} else {
		rubric.Weaknesses = append(rubric.Weaknesses, "Lacks concrete examples")
	}

	return &rubric, nil
}

// AnalyzeIntroduction detects catalogue skills and grades the introduction by its length.
func (h *Heuristics) AnalyzeIntroduction(_ context.Context, text string) (*ai.IntroAnalysis, error) {
	detected := h.catalogue.Extract(text)
	words := textutil.WordCount(text)

	analysis := &ai.IntroAnalysis{
		Skills:    detected,
		WordCount: words,
	}

	switch {
	case words < 100:
		analysis.Experience, analysis.Confidence = ai.ExperienceJunior, ai.ConfidenceLow
	case words < 250:
		analysis.Experience, analysis.Confidence = ai.ExperienceMid, ai.ConfidenceMedium
	default:
		analysis.Experience, analysis.Confidence = ai.ExperienceSenior, ai.ConfidenceHigh
	}

	lower := strings.ToLower(text)
	for _, marker := range projectMarkers {
		if strings.Contains(lower, marker) {
			analysis.ProjectsMentioned++
		}
	}

	analysis.Communication = ai.CommunicationAdequate
	if words < 50 || words > 500 {
		analysis.Communication = ai.CommunicationWeak
	}

	score := 6
	if len(detected) >= 3 {
		score++
	}
	if analysis.ProjectsMentioned >= 2 {
		score++
	}
	if words >= 150 && words <= 400 {
		score++
	}
	if analysis.Communication == ai.CommunicationAdequate {
		score++
	}
	analysis.IntroScore = clampInt(score)

	return analysis, nil
}

func containsAnyWord(text string, words []string) bool {
	for _, w := range words {
		if textutil.ContainsWord(text, w) {
			return true
		}
	}
	return false
}

func clampInt(v int) int {
	if v < ai.MinScore {
		return ai.MinScore
	}
	if v > ai.MaxScore {
		return ai.MaxScore
	}
	return v
}
