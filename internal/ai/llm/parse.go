package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/spigell/interviewer/internal/ai"
)

var numbering = regexp.MustCompile(`^\s*(?:[-*•]|\d+[.)])\s*`)

// parseQuestions accepts either the JSON schema from the prompt or a plain list
// with one question per line.
func parseQuestions(raw string) []string {
	cleaned := extractJSON(raw)

	var payload struct {
		Questions []string `mapstructure:"questions"`
	}
	if data, err := decodeObject(cleaned); err == nil {
		if err := weakDecode(data, &payload); err == nil && len(payload.Questions) > 0 {
			return cleanQuestions(payload.Questions)
		}
	}

	var list []string
	if err := json.Unmarshal([]byte(cleaned), &list); err == nil {
		return cleanQuestions(list)
	}

	lines := make([]string, 0)
	for _, line := range strings.Split(raw, "\n") {
		if strings.HasSuffix(strings.TrimSpace(line), "?") {
			lines = append(lines, line)
		}
	}
	return cleanQuestions(lines)
}

func cleanQuestions(in []string) []string {
	out := make([]string, 0, len(in))
	for _, q := range in {
		if q = cleanQuestion(q); q != "" {
			out = append(out, q)
		}
	}
	return out
}

func cleanQuestion(q string) string {
	q = numbering.ReplaceAllString(strings.TrimSpace(q), "")
	q = strings.Trim(q, "\"'` ")
	return strings.TrimSpace(q)
}

func firstLine(raw string) string {
	for _, line := range strings.Split(strings.TrimSpace(raw), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}

func parseRubric(raw string) (*ai.Rubric, error) {
	data, err := decodeObject(extractJSON(raw))
	if err != nil {
		return nil, fmt.Errorf("parse evaluation response: %w", err)
	}

	rubric := &ai.Rubric{}
	if err := weakDecode(data, rubric); err != nil {
		return nil, fmt.Errorf("decode evaluation response: %w", err)
	}

	if _, ok := data["overall"]; !ok {
		rubric.Overall = (rubric.TechnicalAccuracy + rubric.Completeness + rubric.Clarity + rubric.Depth + rubric.Practicality) / 5
	}
	rubric.Clamp()
	return rubric, nil
}

func parseIntro(raw string) (*ai.IntroAnalysis, error) {
	data, err := decodeObject(extractJSON(raw))
	if err != nil {
		return nil, fmt.Errorf("parse introduction response: %w", err)
	}

	analysis := &ai.IntroAnalysis{}
	if err := weakDecode(data, analysis); err != nil {
		return nil, fmt.Errorf("decode introduction response: %w", err)
	}
	analysis.Experience = ai.Level(strings.ToLower(strings.TrimSpace(string(analysis.Experience))))
	analysis.Confidence = ai.Level(strings.ToLower(strings.TrimSpace(string(analysis.Confidence))))
	analysis.Communication = ai.Level(strings.ToLower(strings.TrimSpace(string(analysis.Communication))))
	return analysis, nil
}

func decodeObject(cleaned string) (map[string]any, error) {
	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, err
	}
	return data, nil
}

func weakDecode(input any, output any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           output,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(input)
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	raw = strings.TrimSpace(raw)

	if !strings.HasPrefix(raw, "{") && !strings.HasPrefix(raw, "[") {
		start := strings.Index(raw, "{")
		end := strings.LastIndex(raw, "}")
		if start != -1 && end > start {
			raw = raw[start : end+1]
		}
	}
	return raw
}
