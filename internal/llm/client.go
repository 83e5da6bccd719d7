package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jonathan/insight-journal/internal/types"
	"google.golang.org/genai"
)

// ErrEmptyPrompt is returned when a client is asked to generate from a blank prompt.
var ErrEmptyPrompt = errors.New("prompt is empty")

// GenerateOptions selects the model tier and whether the request is grounded in search.
type GenerateOptions struct {
	Tier      ModelTier
	Grounding bool
}

// Result is a successful generation. Text may be empty; callers substitute placeholders.
type Result struct {
	Text      string
	Citations []types.Citation
}

// Client is an abstraction over LLM providers
type Client interface {
	// Generate sends a single prompt and returns the response text with any citations.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (*Result, error)
	// Close releases any resources held by the client
	Close() error
}

// NewClient creates a new LLM client based on configuration
func NewClient(ctx context.Context, config *Config, apiKey string) (Client, error) {
	if config == nil {
		config = DefaultConfig()
	}

	switch config.Provider {
	case ProviderGemini, "":
		return NewGeminiClient(ctx, config, apiKey)
	default:
		return nil, fmt.Errorf("unsupported provider %q", config.Provider)
	}
}

// GeminiClient implements Client for Google Gemini
type GeminiClient struct {
	client *genai.Client
	config *Config
}

// NewGeminiClient creates a new Gemini client
func NewGeminiClient(ctx context.Context, config *Config, apiKey string) (*GeminiClient, error) {
	return newGeminiClient(ctx, config, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
}

func newGeminiClient(ctx context.Context, config *Config, cc *genai.ClientConfig) (*GeminiClient, error) {
	if cc.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{
		client: client,
		config: config,
	}, nil
}

// Generate calls the model for opts.Tier. Grounded requests enable Google Search
// and return the web sources the answer was grounded on.
func (c *GeminiClient) Generate(ctx context.Context, prompt string, opts GenerateOptions) (*Result, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, ErrEmptyPrompt
	}

	modelName := c.config.GetModel(opts.Tier)
	if modelName == "" {
		return nil, fmt.Errorf("no model configured for tier %s", opts.Tier)
	}

	resp, err := c.client.Models.GenerateContent(ctx, modelName, genai.Text(prompt), generateConfig(c.config.Temperature, opts.Grounding))
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	result := &Result{
		Text:      responseText(resp),
		Citations: []types.Citation{},
	}
	if opts.Grounding {
		result.Citations = groundingCitations(resp)
	}
	return result, nil
}

// Close is a no-op; the genai client holds no resources beyond its HTTP client.
func (c *GeminiClient) Close() error {
	return nil
}

func generateConfig(temperature float32, grounding bool) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(temperature),
	}
	if grounding {
		cfg.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	}
	return cfg
}

// responseText joins the text parts of the first candidate, skipping thoughts.
// A response without text is a successful empty result, not an error.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}

	candidate := resp.Candidates[0]
	if candidate == nil || candidate.Content == nil {
		return ""
	}

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		sb.WriteString(part.Text)
	}
	return sb.String()
}

// groundingCitations reads the web sources of the first candidate's grounding
// metadata. Empty URIs are kept here and dropped by the extractor.
func groundingCitations(resp *genai.GenerateContentResponse) []types.Citation {
	citations := []types.Citation{}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return citations
	}

	meta := resp.Candidates[0].GroundingMetadata
	if meta == nil {
		return citations
	}

	for _, chunk := range meta.GroundingChunks {
		if chunk == nil || chunk.Web == nil {
			continue
		}
		citations = append(citations, types.Citation{URI: chunk.Web.URI, Title: chunk.Web.Title})
	}
	return citations
}
