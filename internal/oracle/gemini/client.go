// Package gemini implements the intent oracle, the todo synthesizer and the
// list suggestion call on top of the Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"github.com/colonyops/tally/internal/core/config"
	"github.com/colonyops/tally/internal/core/logging"
	"github.com/colonyops/tally/internal/core/voice"
)

// Call names identify a call site in logs and metrics.
const (
	CallIntent    = "intent"
	CallSynthesis = "synthesis"
	CallSuggest   = "suggest"
)

// generator is the subset of genai.Models used by the client.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Observer is notified after every call with its name, latency and error.
type Observer func(call string, elapsed time.Duration, err error)

// Option configures a Client.
type Option func(*Client)

// WithObserver registers fn to be called after every oracle request.
func WithObserver(fn Observer) Option {
	return func(c *Client) { c.observe = fn }
}

// Client talks to Gemini. It is safe for concurrent use.
type Client struct {
	models      generator
	model       string
	temperature float32
	timeouts    map[string]time.Duration
	prompts     config.PromptsConfig
	routes      []string
	observe     Observer
	log         zerolog.Logger
}

// New creates a Client using the API key from cfg.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*Client, error) {
	if cfg.Oracle.APIKey == "" {
		return nil, errors.New("gemini api key is required (set GEMINI_API_KEY)")
	}

	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.Oracle.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return newClient(gc.Models, cfg, opts...), nil
}

func newClient(models generator, cfg *config.Config, opts ...Option) *Client {
	c := &Client{
		models:      models,
		model:       cfg.Oracle.Model,
		temperature: cfg.Oracle.Temperature,
		timeouts: map[string]time.Duration{
			CallIntent:    cfg.Oracle.VoiceTimeout,
			CallSynthesis: cfg.Oracle.SynthesisTimeout,
			CallSuggest:   cfg.Oracle.SuggestTimeout,
		},
		prompts: cfg.Prompts,
		routes:  voice.MergeRoutes(cfg.Routes),
		observe: func(string, time.Duration, error) {},
		log:     logging.Component("gemini"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// generate runs one request under the call site's timeout and returns the
// response text. Errors are always *voice.Error.
func (c *Client) generate(ctx context.Context, call string, parts []*genai.Part, instruction string, schema *genai.Schema) (string, error) {
	if timeout := c.timeouts[call]; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(instruction, genai.RoleUser),
		Temperature:       genai.Ptr(c.temperature),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    schema,
	}

	start := time.Now()
	resp, err := c.models.GenerateContent(ctx, c.model, contents, cfg)
	elapsed := time.Since(start)

	if err == nil {
		err = checkResponse(resp)
	}
	if err != nil {
		verr := classify(ctx, err)
		c.observe(call, elapsed, verr)
		c.log.Warn().Err(err).Str("call", call).Dur("elapsed", elapsed).Str("kind", string(verr.Kind)).Msg("oracle call failed")
		return "", verr
	}

	c.observe(call, elapsed, nil)
	c.log.Debug().Str("call", call).Dur("elapsed", elapsed).Msg("oracle call complete")

	return stripFence(resp.Text()), nil
}

// checkResponse rejects answers that carry no usable text.
func checkResponse(resp *genai.GenerateContentResponse) error {
	if resp == nil {
		return voice.Errorf(voice.KindMalformedResponse, "empty response")
	}
	if fb := resp.PromptFeedback; fb != nil && fb.BlockReason != "" {
		return voice.Errorf(voice.KindServiceError, "prompt blocked: %s", fb.BlockReason)
	}
	if strings.TrimSpace(resp.Text()) == "" {
		return voice.Errorf(voice.KindMalformedResponse, "response has no text")
	}
	return nil
}

// classify maps a transport error onto the pipeline taxonomy.
func classify(ctx context.Context, err error) *voice.Error {
	var verr *voice.Error
	if errors.As(err, &verr) {
		return verr
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(ctx.Err(), context.DeadlineExceeded):
		return voice.NewError(voice.KindTimeout, err)
	case errors.Is(err, context.Canceled):
		return voice.NewError(voice.KindCancelled, err)
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return voice.NewError(voice.KindServiceError, fmt.Errorf("gemini %d %s: %s", apiErr.Code, apiErr.Status, apiErr.Message))
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return voice.NewError(voice.KindServiceError, fmt.Errorf("gemini %d %s: %s", apiErrPtr.Code, apiErrPtr.Status, apiErrPtr.Message))
	}

	return voice.NewError(voice.KindServiceError, err)
}

// stripFence removes a markdown code fence some models wrap JSON in.
func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
