package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/dtnitsch/studybot/models"
	"github.com/tidwall/gjson"
)

// AnthropicProvider calls the Messages API with the user's own key.
type AnthropicProvider struct {
	model     string
	maxTokens int
	client    anthropic.Client
}

func NewAnthropicProvider(cfg models.AnthropicConfig, opts HTTPOptions) *AnthropicProvider {
	reqOpts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(opts.client()),
		option.WithMaxRetries(0),
	}
	if base := strings.TrimRight(cfg.BaseURL, "/"); base != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(base+"/"))
	}

	p := &AnthropicProvider{
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		client:    anthropic.NewClient(reqOpts...),
	}
	if p.model == "" {
		p.model = models.DefaultAnthropicModel
	}
	if p.maxTokens <= 0 {
		p.maxTokens = models.DefaultMaxTokens
	}
	return p
}

func (p *AnthropicProvider) Name() string   { return ProviderAnthropic }
func (p *AnthropicProvider) Source() string { return models.SourceClaudeAPI }

func (p *AnthropicProvider) Complete(ctx context.Context, req Request) (string, error) {
	msg, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: int64(p.maxTokens),
		System:    []anthropic.TextBlockParam{{Text: systemPrompt}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	})
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("anthropic error %d: %s", apiErr.StatusCode, apiErrorMessage(apiErr))
		}
		return "", fmt.Errorf("anthropic request failed: %w", err)
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	if b.Len() == 0 {
		return "", errors.New("anthropic returned empty content")
	}
	return b.String(), nil
}

func apiErrorMessage(err *anthropic.Error) string {
	if msg := gjson.Get(err.RawJSON(), "error.message").String(); msg != "" {
		return msg
	}
	return http.StatusText(err.StatusCode)
}
