// Package llm talks to remote text-generation endpoints and turns their
// answers into study materials.
package llm

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/dtnitsch/studybot/models"
)

// Provider names accepted in the providers list.
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderProxy     = "proxy"
	ProviderMock      = "mock"
)

// HTTPOptions is shared by the remote providers.
type HTTPOptions struct {
	Timeout time.Duration
	// Client overrides the default client, mostly for tests.
	Client *http.Client
}

func (o HTTPOptions) client() *http.Client {
	if o.Client != nil {
		return o.Client
	}
	timeout := o.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

// PromptKind tells a provider which of the three prompts it is answering.
type PromptKind string

const (
	KindFlashcards PromptKind = "flashcards"
	KindSummary    PromptKind = "summary"
	KindQuiz       PromptKind = "quiz"
)

type Request struct {
	Prompt string
	Kind   PromptKind
}

// Provider completes one prompt and returns the raw response text.
type Provider interface {
	Name() string
	// Source is the StudyMetadata.Source value for materials it produced.
	Source() string
	Complete(ctx context.Context, req Request) (string, error)
}

// ProviderRef is one entry of a "name|name:alias" providers list.
type ProviderRef struct {
	Raw   string
	Name  string
	Alias string
}

// ParseProviderList splits raw on "|". Empty entries are dropped.
func ParseProviderList(raw string) []ProviderRef {
	parts := strings.Split(raw, "|")
	out := make([]ProviderRef, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		ref := ProviderRef{Raw: p}
		if name, alias, ok := strings.Cut(p, ":"); ok {
			ref.Name = strings.ToLower(strings.TrimSpace(name))
			ref.Alias = strings.TrimSpace(alias)
		} else {
			ref.Name = strings.ToLower(p)
		}
		out = append(out, ref)
	}
	return out
}

// BuildProviders constructs providers from cfg in list order. Providers that
// need a key and have none are skipped, so "anthropic|proxy" without a key
// goes straight to the proxy.
func BuildProviders(cfg *models.Config, opts HTTPOptions) ([]Provider, error) {
	var out []Provider
	for _, ref := range ParseProviderList(cfg.Providers) {
		switch ref.Name {
		case ProviderAnthropic:
			c := cfg.Anthropic
			c.APIKey = resolveKey(ref, c.APIKey)
			if c.APIKey == "" {
				continue
			}
			out = append(out, NewAnthropicProvider(c, opts))
		case ProviderOpenAI:
			c := cfg.OpenAI
			c.APIKey = resolveKey(ref, c.APIKey)
			if c.APIKey == "" {
				continue
			}
			out = append(out, NewOpenAIProvider(c, opts))
		case ProviderProxy:
			if cfg.Proxy.URL == "" {
				continue
			}
			out = append(out, NewProxyProvider(cfg.Proxy.URL, opts))
		case ProviderMock:
			out = append(out, NewMockProvider())
		case "none", "off":
			return nil, nil
		default:
			return nil, fmt.Errorf("unsupported provider: %s", ref.Raw)
		}
	}
	return out, nil
}

// resolveKey prefers STUDYBOT_<NAME>_KEY_<ALIAS> for aliased entries such as
// "openai:work".
func resolveKey(ref ProviderRef, fallback string) string {
	if ref.Alias != "" {
		if v := os.Getenv("STUDYBOT_" + strings.ToUpper(ref.Name) + "_KEY_" + strings.ToUpper(ref.Alias)); v != "" {
			return v
		}
	}
	return fallback
}
