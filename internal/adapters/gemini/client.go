// Package gemini implementa o cliente do endpoint generateContent da API Gemini.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/skystoreemd-lab/Monte-ai/internal/core/domain"
	"github.com/skystoreemd-lab/Monte-ai/internal/core/ports"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com"
	DefaultModel   = "gemini-1.5-flash"
	DefaultTimeout = 30 * time.Second

	maxOutputTokens = 2048
	temperature     = 0.7

	// maxErrorBody limita quanto de uma resposta de erro é guardado para log.
	maxErrorBody = 512
	// maxResponseBody limita a leitura de uma resposta de sucesso.
	maxResponseBody = 8 << 20
)

type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

type Client struct {
	apiKey   string
	endpoint string
	timeout  time.Duration
	maxBody  int64
	http     *http.Client
}

var _ ports.Generator = (*Client)(nil)

func NewClient(cfg Config) *Client {
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		apiKey:   strings.TrimSpace(cfg.APIKey),
		endpoint: fmt.Sprintf("%s/v1beta/models/%s:generateContent", base, url.PathEscape(model)),
		timeout:  timeout,
		maxBody:  maxResponseBody,
		http:     &http.Client{},
	}
}

func (c *Client) Configured() bool {
	return c.apiKey != ""
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	MaxOutputTokens int     `json:"maxOutputTokens"`
	Temperature     float64 `json:"temperature"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Generate envia uma requisição de turno único. A chamada não herda o
// cancelamento do chamador e é limitada apenas pelo timeout do cliente.
func (c *Client) Generate(ctx context.Context, message string) (string, error) {
	if !c.Configured() {
		return "", domain.ErrMissingAPIKey
	}

	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: message}}}},
		GenerationConfig: generationConfig{
			MaxOutputTokens: maxOutputTokens,
			Temperature:     temperature,
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: encode request: %v", domain.ErrUpstream, err)
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"?key="+url.QueryEscape(c.apiKey), bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: build request: %v", domain.ErrUpstream, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrUpstream, redactKey(err.Error(), c.apiKey))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", domain.ErrUpstreamRateLimited
	case resp.StatusCode == http.StatusUnauthorized:
		return "", domain.ErrUpstreamAuth
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", fmt.Errorf("%w: status %d: %s", domain.ErrUpstream, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var apiResp generateResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, c.maxBody)).Decode(&apiResp); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", domain.ErrUpstream, err)
	}

	if len(apiResp.Candidates) == 0 || len(apiResp.Candidates[0].Content.Parts) == 0 {
		return "", domain.ErrGenerationFailed
	}
	reply := apiResp.Candidates[0].Content.Parts[0].Text
	if reply == "" {
		return "", domain.ErrGenerationFailed
	}

	return reply, nil
}

// redactKey remove a chave da API dos erros de transporte, que embutem a URL.
func redactKey(msg, key string) string {
	if key == "" {
		return msg
	}
	msg = strings.ReplaceAll(msg, url.QueryEscape(key), "REDACTED")
	return strings.ReplaceAll(msg, key, "REDACTED")
}
