// Package llm implements the interview collaborators on top of a chat completion backend.
package llm

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/spigell/interviewer/internal/ai"
	"github.com/spigell/interviewer/internal/skills"
	"github.com/spigell/interviewer/internal/textutil"
)

// Generator sends one system and one user message to a model and returns its text reply.
type Generator interface {
	GenerateContent(ctx context.Context, system, message string) (string, error)
	Model() string
}

var (
	//go:embed prompts/questions.md
	questionsTemplate string
	//go:embed prompts/behavioral.md
	behavioralTemplate string
	//go:embed prompts/evaluation.md
	evaluationTemplate string
	//go:embed prompts/intro.md
	introTemplate string
	//go:embed prompts/summary.md
	summaryTemplate string
)

const (
	questionsSystem  = "You are an expert technical interviewer."
	evaluationSystem = "You are a technical interviewer evaluating answers. Be fair but critical."
	introSystem      = "You are a technical recruiter."
	summarySystem    = "You are an HR analyst providing interview feedback."

	defaultMaxLogLength = 200
	maxPromptSkills     = 6
	maxSummaryAnswer    = 100
)

var focusAreas = []string{
	"performance and optimization",
	"security and best practices",
	"architecture and design",
	"debugging and troubleshooting",
	"modern features and updates",
}

// Assistant implements ai.QuestionGenerator, ai.Evaluator, ai.IntroAnalyzer and ai.Summarizer.
type Assistant struct {
	generator Generator
	catalogue *skills.Catalogue
	logger    *zap.Logger
	maxLogLen int
	focus     func() string
}

func New(generator Generator, catalogue *skills.Catalogue, logger *zap.Logger, maxLogLength int) (*Assistant, error) {
	if generator == nil {
		return nil, errors.New("content generator is required")
	}
	if catalogue == nil {
		catalogue = skills.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &Assistant{
		generator: generator,
		catalogue: catalogue,
		logger:    logger,
		maxLogLen: maxLogLength,
		focus: func() string {
			return focusAreas[rand.IntN(len(focusAreas))]
		},
	}, nil
}

// Collaborators exposes the assistant through every collaborator slot.
func (a *Assistant) Collaborators() ai.Collaborators {
	return ai.Collaborators{
		Questions:  a,
		Evaluator:  a,
		Intro:      a,
		Summarizer: a,
	}
}

func (a *Assistant) GenerateQuestions(ctx context.Context, domain string, level ai.Level, count int) ([]string, error) {
	if count <= 0 {
		return []string{}, nil
	}

	prompt := render(questionsTemplate, map[string]string{
		"LEVEL":  string(level),
		"DOMAIN": domain,
		"SKILLS": a.skillsText(domain),
		"COUNT":  strconv.Itoa(count),
		"FOCUS":  a.focus(),
	})

	raw, err := a.generate(ctx, "questions", questionsSystem, prompt)
	if err != nil {
		return nil, err
	}

	questions := parseQuestions(raw)
	if len(questions) > count {
		questions = questions[:count]
	}
	return questions, nil
}

func (a *Assistant) GenerateBehavioralQuestion(ctx context.Context, profile ai.SkillProfile) (string, error) {
	skillsText := strings.Join(profile.Skills, ", ")
	if skillsText == "" {
		skillsText = a.skillsText(profile.PrimarySkill)
	}

	prompt := render(behavioralTemplate, map[string]string{
		"DOMAIN":   profile.PrimarySkill,
		"SKILLS":   skillsText,
		"LEVEL":    string(profile.Experience),
		"PROJECTS": strconv.Itoa(profile.ProjectsMentioned),
	})

	raw, err := a.generate(ctx, "behavioral", questionsSystem, prompt)
	if err != nil {
		return "", err
	}

	question := cleanQuestion(firstLine(raw))
	if question == "" {
		return "", errors.New("model returned an empty behavioral question")
	}
	return question, nil
}

func (a *Assistant) EvaluateAnswer(ctx context.Context, question, answer string) (*ai.Rubric, error) {
	prompt := render(evaluationTemplate, map[string]string{
		"QUESTION":   question,
		"ANSWER":     answer,
		"WORD_COUNT": strconv.Itoa(textutil.WordCount(answer)),
	})

	raw, err := a.generate(ctx, "evaluation", evaluationSystem, prompt)
	if err != nil {
		return nil, err
	}
	return parseRubric(raw)
}

func (a *Assistant) AnalyzeIntroduction(ctx context.Context, text string) (*ai.IntroAnalysis, error) {
	prompt := render(introTemplate, map[string]string{
		"INTRODUCTION": text,
	})

	raw, err := a.generate(ctx, "intro", introSystem, prompt)
	if err != nil {
		return nil, err
	}

	analysis, err := parseIntro(raw)
	if err != nil {
		return nil, err
	}
	analysis.WordCount = textutil.WordCount(text)
	return analysis, nil
}

func (a *Assistant) Summarize(ctx context.Context, transcript ai.Transcript) (string, error) {
	var history strings.Builder
	for i, ex := range transcript.Exchanges {
		fmt.Fprintf(&history, "Q%d: %s\nA%d: %s\n", i+1, ex.Question, i+1, textutil.TruncateForLog(ex.Answer, maxSummaryAnswer))
	}

	skillsList := transcript.Skills
	if len(skillsList) > 5 {
		skillsList = skillsList[:5]
	}

	prompt := render(summaryTemplate, map[string]string{
		"SKILLS":  strings.Join(skillsList, ", "),
		"LEVEL":   string(transcript.Experience),
		"HISTORY": strings.TrimSpace(history.String()),
	})

	raw, err := a.generate(ctx, "summary", summarySystem, prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(raw), nil
}

func (a *Assistant) generate(ctx context.Context, task, system, prompt string) (string, error) {
	a.logger.Debug("llm generate content request",
		zap.String("task", task),
		zap.String("model", a.generator.Model()),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", textutil.TruncateForLog(prompt, a.maxLogLen)),
	)

	raw, err := a.generator.GenerateContent(ctx, system, prompt)
	if err != nil {
		return "", fmt.Errorf("%s: %w", task, err)
	}

	a.logger.Debug("llm generate content response",
		zap.String("task", task),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", textutil.TruncateForLog(raw, a.maxLogLen)),
	)
	return raw, nil
}

func (a *Assistant) skillsText(domain string) string {
	keywords := a.catalogue.Keywords(domain)
	if len(keywords) == 0 {
		return domain
	}
	if len(keywords) > maxPromptSkills {
		keywords = keywords[:maxPromptSkills]
	}
	return strings.Join(keywords, ", ")
}

func render(template string, values map[string]string) string {
	pairs := make([]string, 0, 2*len(values))
	for key, value := range values {
		pairs = append(pairs, "{{"+key+"}}", value)
	}
	return strings.TrimSpace(strings.NewReplacer(pairs...).Replace(template))
}
