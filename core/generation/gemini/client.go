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
	"sync"
	"time"

	"github.com/jinzhu/copier"
	"github.com/vaanilabs/vaani-core/core/generation"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultModel   = "gemini-1.5-flash"
)

var (
	ErrMissingAPIKey = generation.ErrMissingAPIKey
	ErrNoResponse    = generation.ErrNoResponse
)

// StatusError carries the numeric status of a non-success HTTP response.
type StatusError struct {
	Code int
}

func (e StatusError) Error() string {
	return fmt.Sprintf("generation request failed with status %d", e.Code)
}

// Client issues cancellable requests against the remote generation endpoint
// and re-segments replies into speakable fragments.
//
// At most one request is in flight: starting a new one cancels the previous
// token, and the cancelled request's fragments are silently dropped rather
// than surfaced as errors.
type Client struct {
	httpClient *http.Client
	baseURL    string
	model      string
	apiKey     string

	config  generation.Config
	pacing  generation.Pacing
	segment func(string) []generation.Fragment

	mu           sync.Mutex
	cancelActive context.CancelFunc
}

type ClientOption func(*Client)

func WithModel(model string) ClientOption {
	return func(c *Client) { c.model = model }
}

func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) { c.baseURL = strings.TrimRight(baseURL, "/") }
}

func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = httpClient }
}

func WithConfig(config generation.Config) ClientOption {
	return func(c *Client) { c.config = config }
}

func WithPacing(pacing generation.Pacing) ClientOption {
	return func(c *Client) { c.pacing = pacing }
}

// WithWordWindowSegmentation switches re-segmentation from sentence splits to
// fixed-size word windows with flush-on-sentence-boundary.
func WithWordWindowSegmentation(windowSize int) ClientOption {
	return func(c *Client) {
		c.segment = func(text string) []generation.Fragment {
			return generation.SplitWordWindows(text, windowSize)
		}
	}
}

func NewClient(apiKey string, opts ...ClientOption) *Client {
	client := &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport,
				otelhttp.WithSpanNameFormatter(func(operationName string, request *http.Request) string {
					return operationName + " " + request.URL.Path
				}),
			),
		},
		baseURL: defaultBaseURL,
		model:   defaultModel,
		apiKey:  apiKey,
		config:  generation.DefaultConfig(),
		pacing:  generation.DefaultPacing(),
		segment: generation.SplitSentences,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

type requestBody struct {
	Contents         []content       `json:"contents"`
	GenerationConfig genConfig       `json:"generationConfig"`
	SafetySettings   []safetySetting `json:"safetySettings"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type genConfig struct {
	Temperature     float64  `json:"temperature"`
	TopP            float64  `json:"topP"`
	TopK            int      `json:"topK"`
	MaxOutputTokens int      `json:"maxOutputTokens"`
	StopSequences   []string `json:"stopSequences"`
}

type safetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

type responseBody struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Generate starts a generation request for the given prompt, cancelling any
// request still in flight. The returned stream performs the call lazily when
// its fragments are first iterated.
func (c *Client) Generate(ctx context.Context, prompt string) generation.Stream {
	c.mu.Lock()
	if c.cancelActive != nil {
		c.cancelActive()
	}
	ctx, cancel := context.WithCancel(ctx)
	c.cancelActive = cancel
	c.mu.Unlock()

	return &Stream{client: c, ctx: ctx, prompt: prompt}
}

// Cancel aborts the in-flight request, if any. Cancelled requests never
// surface errors through their stream.
func (c *Client) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancelActive != nil {
		c.cancelActive()
		c.cancelActive = nil
	}
}

// Stream delivers the re-segmented reply as ordered fragments.
type Stream struct {
	client *Client
	ctx    context.Context
	prompt string

	mu   sync.Mutex
	text string
}

// Text returns the fully decoded reply once iteration has finished.
func (s *Stream) Text() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.text
}

// Fragments iterates the reply's fragments in emission order, inserting the
// configured pacing delay between consecutive fragments. Iteration ends
// silently if the request was cancelled; any other failure is yielded once
// with a zero fragment.
func (s *Stream) Fragments(yield func(generation.Fragment, error) bool) {
	ctx, span := tracer.Start(s.ctx, "generate reply")
	defer span.End()
	span.SetAttributes(attribute.String("request.model", s.client.model))

	text, err := s.client.fetch(ctx, s.prompt)
	if err != nil {
		if ctx.Err() != nil {
			// Superseded or explicitly cancelled: suppressed, not an error.
			span.AddEvent("request cancelled")
			return
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		yield(generation.Fragment{}, err)
		return
	}

	s.mu.Lock()
	s.text = text
	s.mu.Unlock()

	fragments := s.client.segment(text)
	span.SetAttributes(attribute.Int("response.fragments", len(fragments)))

	for i, fragment := range fragments {
		if ctx.Err() != nil {
			span.AddEvent("fragment emission cancelled")
			return
		}

		if !yield(fragment, nil) {
			return
		}

		if delay := s.client.pacing.FragmentDelay; delay > 0 && i < len(fragments)-1 {
			select {
			case <-ctx.Done():
				span.AddEvent("fragment emission cancelled")
				return
			case <-time.After(delay):
			}
		}
	}
}

func (c *Client) fetch(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", ErrMissingAPIKey
	}

	var config genConfig
	if err := copier.Copy(&config, &c.config); err != nil {
		return "", fmt.Errorf("failed to snapshot generation config: %w", err)
	}

	body := requestBody{
		Contents:         []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: config,
		SafetySettings:   []safetySetting{},
	}

	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("error marshalling JSON: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		c.baseURL, c.model, url.QueryEscape(c.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("error creating HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if errorBody, readErr := io.ReadAll(resp.Body); readErr == nil && len(errorBody) > 0 {
			logger.Warn("generation endpoint returned error body", "status", resp.StatusCode, "body", string(errorBody))
		}
		return "", StatusError{Code: resp.StatusCode}
	}

	var decoded responseBody
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("error unmarshalling JSON: %w", err)
	}

	if len(decoded.Candidates) == 0 || len(decoded.Candidates[0].Content.Parts) == 0 {
		return "", ErrNoResponse
	}

	text := strings.TrimSpace(decoded.Candidates[0].Content.Parts[0].Text)
	if text == "" {
		return "", ErrNoResponse
	}

	return text, nil
}
