package assistants

import (
	"context"
	"fmt"
	"strings"

	openaisdk "github.com/openai/openai-go"

	contractx "github.com/fieldline/sales-copilot/agent/contract"
)

// selectorImpl echoes the route line that best matches the rep's message.
// It runs a single-shot completion through the raw SDK client; the matcher
// owns retries and fuzzy scoring.
type selectorImpl struct {
	client       *openaisdk.Client
	model        string
	systemPrompt string
}

var _ contractx.LineSelector = (*selectorImpl)(nil)

func newSelector(client *openaisdk.Client, model, systemPrompt string) (*selectorImpl, error) {
	if client == nil {
		return nil, fmt.Errorf("%w: openrouter client is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("%w: selector model is required", contractx.ErrValidation)
	}
	return &selectorImpl{
		client:       client,
		model:        strings.TrimSpace(model),
		systemPrompt: systemPrompt,
	}, nil
}

func (s *selectorImpl) SelectLine(ctx context.Context, userMessage string, candidates []string) (string, error) {
	if len(candidates) == 0 {
		return "", fmt.Errorf("%w: no candidate lines", contractx.ErrValidation)
	}

	content := fmt.Sprintf("User message: %s\n\nRetailer Route:\n%s",
		userMessage, strings.Join(candidates, "\n"))

	resp, err := s.client.Chat.Completions.New(ctx, openaisdk.ChatCompletionNewParams{
		Model: openaisdk.ChatModel(s.model),
		Messages: []openaisdk.ChatCompletionMessageParamUnion{
			openaisdk.SystemMessage(s.systemPrompt),
			openaisdk.UserMessage(content),
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: selector completion: %v", contractx.ErrModelInvoke, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: selector returned no choices", contractx.ErrModelInvoke)
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
