package embedding

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "text-embedding-3-small"
)

// OpenAIProvider is the one concrete, swappable Provider this module ships.
type OpenAIProvider struct {
	client openai.Client
	model  string
}

// NewOpenAIProvider constructs a Provider backed by the OpenAI embeddings
// endpoint.
func NewOpenAIProvider(apiKey, baseURL, model string) (*OpenAIProvider, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("openai embeddings require api_key")
	}
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	client := openai.NewClient(option.WithAPIKey(apiKey), option.WithBaseURL(baseURL))
	return &OpenAIProvider{client: client, model: model}, nil
}

func (p *OpenAIProvider) Model() string { return p.model }

func (p *OpenAIProvider) EmbedQuery(ctx context.Context, text string) ([]float64, error) {
	results, err := p.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

func (p *OpenAIProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	resp, err := p.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(p.model),
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: texts,
		},
		EncodingFormat: openai.EmbeddingNewParamsEncodingFormatFloat,
	})
	if err != nil {
		return nil, err
	}
	out := make([][]float64, 0, len(resp.Data))
	for _, entry := range resp.Data {
		out = append(out, NormalizeEmbedding(entry.Embedding))
	}
	return out, nil
}
