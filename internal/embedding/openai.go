package embedding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const (
	// DefaultBaseURL is the public OpenAI API endpoint.
	DefaultBaseURL = "https://api.openai.com/v1"
	// DefaultModel is used when no embedding model is configured.
	DefaultModel = "text-embedding-ada-002"
	// DefaultTimeout bounds a single embeddings request.
	DefaultTimeout = 30 * time.Second
)

// OpenAIConfig configures an OpenAIEmbedder. Any OpenAI-compatible endpoint
// that serves POST {BaseURL}/embeddings works.
type OpenAIConfig struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// OpenAIEmbedder calls the embeddings endpoint once per Embed call.
type OpenAIEmbedder struct {
	client *openai.Client
	model  string
}

// NewOpenAIEmbedder creates an embedder for cfg, filling in defaults for empty fields.
func NewOpenAIEmbedder(cfg OpenAIConfig) *OpenAIEmbedder {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = cfg.BaseURL
	clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	return &OpenAIEmbedder{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
	}
}

// Model returns the embedding model identifier sent with each request.
func (e *OpenAIEmbedder) Model() string {
	return e.model
}

// Embed requests the float embedding of text. Failures are returned as *ProviderError,
// except caller cancellation which is returned as a wrapped context.Canceled.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input:          text,
		Model:          openai.EmbeddingModel(e.model),
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, fmt.Errorf("embedding request canceled: %w", err)
		}
		kind, status := classify(err)
		return nil, &ProviderError{Kind: kind, StatusCode: status, Model: e.model, Err: err}
	}
	if len(resp.Data) == 0 {
		return nil, &ProviderError{Kind: KindMalformed, Model: e.model, Err: errors.New("response has no data")}
	}
	if len(resp.Data[0].Embedding) == 0 {
		return nil, &ProviderError{Kind: KindMalformed, Model: e.model, Err: errors.New("data[0].embedding is empty")}
	}
	return resp.Data[0].Embedding, nil
}

func classify(err error) (ErrorKind, int) {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return KindStatus, apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return KindStatus, reqErr.HTTPStatusCode
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout, 0
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return KindTimeout, 0
		}
		return KindNetwork, 0
	}
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) ||
		errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return KindMalformed, 0
	}
	return KindNetwork, 0
}
