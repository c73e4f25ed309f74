package embedding

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type embeddingsRequest struct {
	Input          string `json:"input"`
	Model          string `json:"model"`
	EncodingFormat string `json:"encoding_format"`
}

func newProviderServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func TestOpenAIEmbedder_Embed(t *testing.T) {
	var got embeddingsRequest
	var auth, path string
	srv := newProviderServer(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		auth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		writeJSON(w, http.StatusOK, `{"object":"list","data":[{"object":"embedding","index":0,"embedding":[0.1,0.2,0.3]}],"model":"test-model"}`)
	})

	e := NewOpenAIEmbedder(OpenAIConfig{BaseURL: srv.URL + "/v1", APIKey: "test-key", Model: "test-model"})
	vec, err := e.Embed(context.Background(), "Luxury hotel with pool")
	if err != nil {
		t.Fatal(err)
	}
	if len(vec) != 3 || vec[0] != 0.1 || vec[2] != 0.3 {
		t.Errorf("vector: got %v", vec)
	}
	if path != "/v1/embeddings" {
		t.Errorf("path: got %s", path)
	}
	if auth != "Bearer test-key" {
		t.Errorf("authorization: got %q", auth)
	}
	if got.Input != "Luxury hotel with pool" || got.Model != "test-model" || got.EncodingFormat != "float" {
		t.Errorf("request body: got %+v", got)
	}
}

func TestOpenAIEmbedder_Defaults(t *testing.T) {
	e := NewOpenAIEmbedder(OpenAIConfig{})
	if e.Model() != DefaultModel {
		t.Errorf("model: got %s, want %s", e.Model(), DefaultModel)
	}
}

func TestOpenAIEmbedder_Errors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantKind   ErrorKind
		wantStatus int
		retryable  bool
	}{
		{"server error", http.StatusInternalServerError, `{"error":{"message":"boom","type":"server_error"}}`, KindStatus, 500, true},
		{"bad gateway plain body", http.StatusBadGateway, `upstream down`, KindStatus, 502, true},
		{"unauthorized", http.StatusUnauthorized, `{"error":{"message":"bad key","type":"invalid_request_error"}}`, KindStatus, 401, false},
		{"rate limited", http.StatusTooManyRequests, `{"error":{"message":"slow down","type":"rate_limit"}}`, KindStatus, 429, true},
		{"empty data", http.StatusOK, `{"object":"list","data":[]}`, KindMalformed, 0, false},
		{"empty vector", http.StatusOK, `{"object":"list","data":[{"index":0,"embedding":[]}]}`, KindMalformed, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newProviderServer(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.status, tt.body)
			})
			e := NewOpenAIEmbedder(OpenAIConfig{BaseURL: srv.URL, APIKey: "k", Model: "m"})
			vec, err := e.Embed(context.Background(), "text")
			if vec != nil {
				t.Errorf("expected nil vector on error, got %v", vec)
			}
			var pe *ProviderError
			if !errors.As(err, &pe) {
				t.Fatalf("expected *ProviderError, got %T: %v", err, err)
			}
			if pe.Kind != tt.wantKind {
				t.Errorf("kind: got %s, want %s", pe.Kind, tt.wantKind)
			}
			if pe.StatusCode != tt.wantStatus {
				t.Errorf("status: got %d, want %d", pe.StatusCode, tt.wantStatus)
			}
			if pe.Retryable() != tt.retryable {
				t.Errorf("retryable: got %v, want %v", pe.Retryable(), tt.retryable)
			}
		})
	}
}

func TestOpenAIEmbedder_Timeout(t *testing.T) {
	srv := newProviderServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	e := NewOpenAIEmbedder(OpenAIConfig{BaseURL: srv.URL, Model: "m", Timeout: 50 * time.Millisecond})
	_, err := e.Embed(context.Background(), "text")
	var pe *ProviderError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *ProviderError, got %T: %v", err, err)
	}
	if pe.Kind != KindTimeout {
		t.Errorf("kind: got %s, want timeout", pe.Kind)
	}
	if !pe.Retryable() {
		t.Error("timeouts should be retryable")
	}
}

func TestOpenAIEmbedder_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	e := NewOpenAIEmbedder(OpenAIConfig{BaseURL: url, Model: "m"})
	_, err := e.Embed(context.Background(), "text")
	var pe *ProviderError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *ProviderError, got %T: %v", err, err)
	}
	if pe.Kind != KindNetwork {
		t.Errorf("kind: got %s, want network", pe.Kind)
	}
}

func TestOpenAIEmbedder_Canceled(t *testing.T) {
	srv := newProviderServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"data":[{"embedding":[1]}]}`)
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	e := NewOpenAIEmbedder(OpenAIConfig{BaseURL: srv.URL, Model: "m"})
	_, err := e.Embed(ctx, "text")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if IsRetryable(err) {
		t.Error("cancellation must not be retryable")
	}
}
