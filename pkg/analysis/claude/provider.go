// Package claude implements the analysis provider on top of the Anthropic
// Claude API. Each pipeline sub-call is one structured-output completion.
package claude

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/helpflow/triago/pkg/models"
)

const (
	defaultModel     = "claude-sonnet-4-20250514"
	defaultMaxTokens = 1024
)

// Provider runs the four analysis sub-calls against the Claude API.
type Provider struct {
	client    anthropic.Client
	model     anthropic.Model
	maxTokens int64
	logger    *slog.Logger
}

// NewProvider creates a Claude analysis provider. An empty model selects the
// default.
func NewProvider(apiKey, model string, logger *slog.Logger) *Provider {
	if model == "" {
		model = defaultModel
	}

	return &Provider{
		client:    anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:     anthropic.Model(model),
		maxTokens: defaultMaxTokens,
		logger:    logger.With("module", "analysis"),
	}
}

const patternsSystem = `You analyze support tickets against previously resolved tickets.
Identify recurring patterns and how many distinct solution approaches the similar tickets used.
Respond with JSON only, no prose, matching:
{"patterns": ["..."], "summary": "...", "solution_clusters": 1, "confidence": 0.0}`

func (p *Provider) AnalyzePatterns(ctx context.Context, actx models.AnalysisContext) (models.PatternAnalysis, error) {
	var out models.PatternAnalysis

	err := p.complete(ctx, patternsSystem, actx, &out)
	if err != nil {
		return models.PatternAnalysis{}, fmt.Errorf("pattern analysis: %w", err)
	}

	return out, nil
}

const rootCauseSystem = `You determine the most likely root cause of a support ticket, using the
ticket, similar resolved tickets and knowledge base articles provided.
Respond with JSON only, no prose, matching:
{"root_cause": "...", "evidence": "...", "confidence": 0.0}`

func (p *Provider) AnalyzeRootCause(ctx context.Context, actx models.AnalysisContext) (models.RootCauseAnalysis, error) {
	var out models.RootCauseAnalysis

	err := p.complete(ctx, rootCauseSystem, actx, &out)
	if err != nil {
		return models.RootCauseAnalysis{}, fmt.Errorf("root cause analysis: %w", err)
	}

	return out, nil
}

const solutionSystem = `You write a resolution for a support ticket, grounded in the similar
resolved tickets and knowledge base articles provided. Reference article ids you relied on.
Respond with JSON only, no prose, matching:
{"resolution": "...", "steps": ["..."], "article_ids": ["..."], "confidence": 0.0}`

func (p *Provider) GenerateSolution(ctx context.Context, actx models.AnalysisContext) (models.SolutionProposal, error) {
	var out models.SolutionProposal

	err := p.complete(ctx, solutionSystem, actx, &out)
	if err != nil {
		return models.SolutionProposal{}, fmt.Errorf("solution generation: %w", err)
	}

	return out, nil
}

const confidenceSystem = `You assess how confident an automated system should be in the analysis
below before acting on it. Penalize missing evidence, divergent solutions and fallback payloads.
Respond with JSON only, no prose, matching:
{"overall_confidence": 0.0, "reasoning": "..."}`

func (p *Provider) AssessConfidence(ctx context.Context, result models.AnalysisResult) (models.ConfidenceAssessment, error) {
	var out models.ConfidenceAssessment

	err := p.complete(ctx, confidenceSystem, result, &out)
	if err != nil {
		return models.ConfidenceAssessment{}, fmt.Errorf("confidence assessment: %w", err)
	}

	return out, nil
}

// complete sends one completion with the payload encoded as the user message
// and decodes the JSON answer into out.
func (p *Provider) complete(ctx context.Context, system string, payload, out any) error {
	input, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode input: %w", err)
	}

	message, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     p.model,
		MaxTokens: p.maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(string(input))),
		},
	})
	if err != nil {
		return fmt.Errorf("claude api: %w", err)
	}

	text := textContent(message)
	if text == "" {
		return fmt.Errorf("claude api: empty completion")
	}

	err = json.Unmarshal([]byte(stripFences(text)), out)
	if err != nil {
		return fmt.Errorf("decode completion: %w", err)
	}

	return nil
}

func textContent(message *anthropic.Message) string {
	var builder strings.Builder

	for _, block := range message.Content {
		if block.Type == "text" {
			builder.WriteString(block.Text)
		}
	}

	return builder.String()
}

// stripFences removes a markdown code fence around a JSON answer, which the
// model occasionally adds despite the instructions.
func stripFences(text string) string {
	text = strings.TrimSpace(text)

	if !strings.HasPrefix(text, "```") {
		return text
	}

	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")

	return strings.TrimSpace(text)
}
