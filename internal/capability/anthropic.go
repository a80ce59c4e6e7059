package capability

import (
	"context"
	"fmt"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	appErrors "github.com/cinerate/cinerate-api/pkg/errors"
)

// AnthropicRewriter implements Rewriter against the Anthropic Messages
// API. Calls are blocking with a single attempt; a timeout surfaces as
// an ExternalServiceError, never a silent retry.
type AnthropicRewriter struct {
	client  anthropic.Client
	model   string
	timeout time.Duration
}

// NewAnthropicRewriter builds the rewriter.
func NewAnthropicRewriter(apiKey, model string, timeout time.Duration) *AnthropicRewriter {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &AnthropicRewriter{
		client:  anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:   model,
		timeout: timeout,
	}
}

const rewriteSystemPrompt = "You rewrite screenplay scenes. Apply the user's instruction to the scene text. " +
	"Return only the rewritten scene text with no commentary."

// Rewrite asks the model for a replacement scene text.
func (r *AnthropicRewriter) Rewrite(ctx context.Context, sceneText, instruction string, preserveStyle bool) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	prompt := fmt.Sprintf("Instruction: %s\n\nScene:\n%s", instruction, sceneText)
	if preserveStyle {
		prompt = "Preserve the original formatting and writing style.\n" + prompt
	}

	message, err := r.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(r.model),
		MaxTokens: 4096,
		System: []anthropic.TextBlockParam{
			{Text: rewriteSystemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrExternalService.Code,
			appErrors.ErrExternalService.Status, "rewrite capability failed")
	}

	for _, block := range message.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", appErrors.Clone(appErrors.ErrExternalService, "rewrite capability returned no text")
}
