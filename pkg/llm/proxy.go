package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/dtnitsch/studybot/models"
	"github.com/tidwall/gjson"
)

// ProxyProvider posts {prompt, type} to the shared studybot endpoint. Calls
// through it count against the monthly free tier.
type ProxyProvider struct {
	url    string
	client *http.Client
}

func NewProxyProvider(url string, opts HTTPOptions) *ProxyProvider {
	return &ProxyProvider{url: url, client: opts.client()}
}

func (p *ProxyProvider) Name() string   { return ProviderProxy }
func (p *ProxyProvider) Source() string { return models.SourceProxyAPI }

// Complete returns the "result" field when present, else the whole body. A
// structured result is returned as its raw JSON.
func (p *ProxyProvider) Complete(ctx context.Context, req Request) (string, error) {
	payload, err := json.Marshal(map[string]string{
		"prompt": req.Prompt,
		"type":   string(req.Kind),
	})
	if err != nil {
		return "", fmt.Errorf("proxy: encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("proxy: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("proxy request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("proxy: read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("proxy error: %d", resp.StatusCode)
	}

	result := gjson.GetBytes(body, "result")
	switch {
	case !result.Exists() || result.Type == gjson.Null:
		return string(body), nil
	case result.Type == gjson.String:
		return result.String(), nil
	default:
		return result.Raw, nil
	}
}
