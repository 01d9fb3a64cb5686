package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/dtnitsch/studybot/models"
	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const systemPrompt = "You create study materials. Reply with raw JSON only, no markdown."

// OpenAIProvider uses chat completions on OpenAI or any compatible endpoint.
type OpenAIProvider struct {
	model string
	opts  []option.RequestOption
}

func NewOpenAIProvider(cfg models.OpenAIConfig, opts HTTPOptions) *OpenAIProvider {
	reqOpts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(opts.client()),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.BaseURL))
	}
	model := cfg.Model
	if model == "" {
		model = models.DefaultOpenAIModel
	}
	return &OpenAIProvider{model: model, opts: reqOpts}
}

func (p *OpenAIProvider) Name() string   { return ProviderOpenAI }
func (p *OpenAIProvider) Source() string { return models.SourceOpenAIAPI }

func (p *OpenAIProvider) Complete(ctx context.Context, req Request) (string, error) {
	client := openai.NewClient(p.opts...)

	resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(p.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(req.Prompt),
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai: empty choices")
	}
	return resp.Choices[0].Message.Content, nil
}
