package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"google.golang.org/genai"

	"github.com/colonyops/tally/internal/core/config"
	"github.com/colonyops/tally/internal/core/voice"
)

var synthesisSchema = &genai.Schema{
	Type: genai.TypeArray,
	Items: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"text":     {Type: genai.TypeString},
			"done":     {Type: genai.TypeBoolean},
			"notes":    {Type: genai.TypeString},
			"category": {Type: genai.TypeString},
			"date":     {Type: genai.TypeString, Description: "YYYY-MM-DD"},
			"time":     {Type: genai.TypeString, Description: "HH:MM"},
			"url":      {Type: genai.TypeString},
			"email":    {Type: genai.TypeString},
			"address":  {Type: genai.TypeString},
			"number":   {Type: genai.TypeNumber},
			"amount":   {Type: genai.TypeNumber},
			"rating":   {Type: genai.TypeInteger},
		},
		Required: []string{"text", "done"},
	},
}

// Synthesize asks Gemini for one typed record per phrase. The records are
// decoded but not validated.
func (c *Client) Synthesize(ctx context.Context, req voice.SynthesisRequest) ([]voice.SynthesizedTodo, error) {
	now := req.Now
	if now.IsZero() {
		now = time.Now()
	}

	samples := make([]string, len(req.Samples))
	for i, t := range req.Samples {
		samples[i] = formatSample(t)
	}

	instruction, err := render(c.prompts.Synthesis, defaultSynthesisPrompt, config.SynthesisPromptData{
		Today:    now.Format(time.DateOnly),
		ListName: req.List.Name,
		Purpose:  req.List.Purpose,
		Type:     req.List.Type,
		Template: req.List.Template,
		Phrases:  req.Phrases,
		Samples:  samples,
	})
	if err != nil {
		return nil, voice.NewError(voice.KindServiceError, err)
	}

	payload, err := json.Marshal(req.Phrases)
	if err != nil {
		return nil, voice.NewError(voice.KindServiceError, fmt.Errorf("encode phrases: %w", err))
	}

	text, err := c.generate(ctx, CallSynthesis, []*genai.Part{genai.NewPartFromText(string(payload))}, instruction, synthesisSchema)
	if err != nil {
		return nil, err
	}

	var todos []voice.SynthesizedTodo
	if err := json.Unmarshal([]byte(text), &todos); err != nil {
		return nil, voice.NewError(voice.KindMalformedResponse, fmt.Errorf("decode synthesis: %w", err))
	}

	return todos, nil
}
