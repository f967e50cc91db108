// Package generator turns gated evidence into user-facing prose.
package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kaabil/faqrag/internal/domain/rag"
	"github.com/kaabil/faqrag/internal/infra/llm/chatgpt"
	"github.com/kaabil/faqrag/pkg/metrics"
)

// ChatGPTGenerator produces answers via the chat completions API, grounded
// exclusively on the evidence it is handed.
type ChatGPTGenerator struct {
	client      *chatgpt.Client
	model       string
	temperature float32
	prompt      string
}

var _ rag.Generator = (*ChatGPTGenerator)(nil)

// NewChatGPTGenerator constructs the generator. prompt is the system prompt
// that instructs the model to answer only from the provided evidence.
func NewChatGPTGenerator(client *chatgpt.Client, model string, temperature float32, prompt string) *ChatGPTGenerator {
	return &ChatGPTGenerator{
		client:      client,
		model:       model,
		temperature: temperature,
		prompt:      prompt,
	}
}

// Generate asks the model for an answer built from the accepted evidence.
func (g *ChatGPTGenerator) Generate(ctx context.Context, query string, evidence []rag.RetrievedEvidence) (string, *metrics.TokenUsage, error) {
	resp, err := g.client.CreateChatCompletion(ctx, chatgpt.ChatCompletionRequest{
		Model:       g.model,
		Temperature: g.temperature,
		Messages: []chatgpt.Message{
			{Role: "system", Content: g.prompt},
			{Role: "user", Content: fmt.Sprintf("Contexto (evidencia):\n%s\n\nPregunta del usuario: %s", buildContext(evidence), query)},
		},
	})
	if err != nil {
		return "", nil, err
	}
	if len(resp.Choices) == 0 {
		return "", nil, errors.New("chat completion returned no choices")
	}

	usage := &metrics.TokenUsage{
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), usage, nil
}

// buildContext renders the evidence as labelled sections for the prompt.
func buildContext(evidence []rag.RetrievedEvidence) string {
	sections := make([]string, 0, len(evidence))
	for _, ev := range evidence {
		var lines []string
		lines = append(lines, "Categoría: "+orDefault(ev.Record.Category, "Información"))
		if q := strings.TrimSpace(ev.Record.Question); q != "" {
			lines = append(lines, "Pregunta relacionada: "+q)
		}
		if a := strings.TrimSpace(ev.Record.AnswerText); a != "" {
			lines = append(lines, "Respuesta sugerida: "+a)
		}
		sections = append(sections, strings.Join(lines, "\n"))
	}
	return strings.Join(sections, "\n\n")
}

func orDefault(v, fallback string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	return v
}
