package llm

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"
	"time"

	"banquet-planner/internal/recipe"
	"banquet-planner/internal/shared"
)

//go:embed extractor_prompt.md
var extractorPrompt string

var extractorTemplate = template.Must(template.New("extractor").Parse(extractorPrompt))

// IngredientExtractor asks a language model to structure ingredient lines
// that the rule-based parser could not read.
type IngredientExtractor struct {
	textGen TextGenerator
}

// NewIngredientExtractor creates an IngredientExtractor.
func NewIngredientExtractor(textGen TextGenerator) *IngredientExtractor {
	return &IngredientExtractor{textGen: textGen}
}

// Extract structures lines in one request. It returns exactly one ingredient
// per input line or an error.
func (e *IngredientExtractor) Extract(ctx context.Context, recipeName string, lines []string) ([]recipe.IngredientLine, shared.ExecutionMeta, error) {
	start := time.Now()
	meta := shared.ExecutionMeta{Name: "IngredientExtractor", Items: len(lines)}
	if len(lines) == 0 {
		return nil, meta, nil
	}

	var buf bytes.Buffer
	if err := extractorTemplate.Execute(&buf, struct {
		Recipe string
		Lines  []string
	}{recipeName, lines}); err != nil {
		return nil, meta, fmt.Errorf("failed to build extractor prompt: %w", err)
	}

	resp, err := e.textGen.GenerateContent(ctx, buf.String())
	if err != nil {
		return nil, meta, fmt.Errorf("failed to get LLM response: %w", err)
	}
	meta.Usage = resp.Usage
	meta.Latency = time.Since(start)

	var out []recipe.IngredientLine
	if err := json.Unmarshal([]byte(stripCodeFence(resp.Content)), &out); err != nil {
		return nil, meta, fmt.Errorf("failed to unmarshal LLM response: %w", err)
	}
	if len(out) != len(lines) {
		return nil, meta, fmt.Errorf("LLM returned %d ingredients for %d lines", len(out), len(lines))
	}
	for i := range out {
		out[i].Name = strings.TrimSpace(out[i].Name)
		out[i].Unit = strings.TrimSpace(out[i].Unit)
		if err := out[i].Validate(); err != nil {
			return nil, meta, fmt.Errorf("LLM result for %q: %w", lines[i], err)
		}
	}
	return out, meta, nil
}

// stripCodeFence removes a surrounding ```json fence some models add.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
