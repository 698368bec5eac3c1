package model

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultHubBaseURL       = "https://huggingface.co"
	defaultInferenceBaseURL = "https://api-inference.huggingface.co"
	defaultProbeTimeout     = 10 * time.Second
)

// Repository is the local translation model repository collaborator.
// Existence can be probed by name before attempting a load.
type Repository interface {
	// Exists probes whether the named model is available. Probe timeouts and
	// transport errors are treated as "not found", never as fatal.
	Exists(ctx context.Context, name string) bool

	// Load yields a reusable TextModel for the named model.
	Load(ctx context.Context, name string) (TextModel, error)
}

// HubRepository probes a model hub's metadata API and serves loads through
// its hosted inference endpoint.
type HubRepository struct {
	hubBaseURL       string
	inferenceBaseURL string
	token            string
	httpClient       *http.Client
}

// HubOption customizes the repository client.
type HubOption func(*HubRepository)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) HubOption {
	return func(r *HubRepository) {
		if client != nil {
			r.httpClient = client
		}
	}
}

// WithHubBaseURL overrides the metadata API endpoint.
func WithHubBaseURL(u string) HubOption {
	return func(r *HubRepository) {
		if strings.TrimSpace(u) != "" {
			r.hubBaseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithInferenceBaseURL overrides the inference endpoint.
func WithInferenceBaseURL(u string) HubOption {
	return func(r *HubRepository) {
		if strings.TrimSpace(u) != "" {
			r.inferenceBaseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithToken sets the bearer token used for hub and inference calls.
func WithToken(token string) HubOption {
	return func(r *HubRepository) {
		r.token = strings.TrimSpace(token)
	}
}

func NewHubRepository(opts ...HubOption) *HubRepository {
	repo := &HubRepository{
		hubBaseURL:       defaultHubBaseURL,
		inferenceBaseURL: defaultInferenceBaseURL,
		httpClient:       &http.Client{Timeout: defaultProbeTimeout},
	}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

func (r *HubRepository) Exists(ctx context.Context, name string) bool {
	url := fmt.Sprintf("%s/api/models/%s", r.hubBaseURL, name)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false
	}
	r.authorize(req)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode == http.StatusOK
}

func (r *HubRepository) Load(ctx context.Context, name string) (TextModel, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("load model: empty name")
	}
	return &hostedModel{repo: r, name: name}, nil
}

func (r *HubRepository) authorize(req *http.Request) {
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}
}

// hostedModel runs texts through the hub's inference endpoint.
type hostedModel struct {
	repo *HubRepository
	name string
}

func (m *hostedModel) Name() string { return m.name }

type inferenceRequest struct {
	Inputs string `json:"inputs"`
}

type inferenceResult struct {
	TranslationText string `json:"translation_text"`
	GeneratedText   string `json:"generated_text"`
}

func (m *hostedModel) Generate(ctx context.Context, text string) (string, error) {
	payload, err := json.Marshal(inferenceRequest{Inputs: text})
	if err != nil {
		return "", fmt.Errorf("encode inference request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s", m.repo.inferenceBaseURL, m.name)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build inference request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	m.repo.authorize(req)

	resp, err := m.repo.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("model %s: %w", m.name, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("model %s: read response: %w", m.name, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("model %s: status %d: %s", m.name, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var results []inferenceResult
	if err := json.Unmarshal(body, &results); err != nil {
		return "", fmt.Errorf("model %s: parse response: %w", m.name, err)
	}
	if len(results) == 0 {
		return "", fmt.Errorf("model %s: empty response", m.name)
	}

	out := results[0].TranslationText
	if out == "" {
		out = results[0].GeneratedText
	}
	if strings.TrimSpace(out) == "" {
		return "", fmt.Errorf("model %s: blank translation", m.name)
	}
	return strings.TrimSpace(out), nil
}
