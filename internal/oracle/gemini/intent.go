package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"google.golang.org/genai"

	"github.com/colonyops/tally/internal/core/config"
	"github.com/colonyops/tally/internal/core/snapshot"
	"github.com/colonyops/tally/internal/core/voice"
)

var intentSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"transcription": {Type: genai.TypeString},
		"message":       {Type: genai.TypeString},
		"action": {
			Type:     genai.TypeObject,
			Nullable: genai.Ptr(true),
			Properties: map[string]*genai.Schema{
				"type":   {Type: genai.TypeString, Enum: actionEnum()},
				"target": {Type: genai.TypeString},
				"data": {
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"texts":    {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
						"text":     {Type: genai.TypeString},
						"listName": {Type: genai.TypeString},
						"notes":    {Type: genai.TypeString},
						"template": {Type: genai.TypeString},
						"purpose":  {Type: genai.TypeString},
						"category": {Type: genai.TypeString},
						"date":     {Type: genai.TypeString},
						"time":     {Type: genai.TypeString},
						"url":      {Type: genai.TypeString},
						"email":    {Type: genai.TypeString},
						"address":  {Type: genai.TypeString},
						"number":   {Type: genai.TypeNumber},
						"amount":   {Type: genai.TypeNumber},
						"rating":   {Type: genai.TypeInteger},
						"done":     {Type: genai.TypeBoolean},
					},
				},
			},
			Required: []string{"type", "target"},
		},
	},
	Required: []string{"transcription", "message"},
}

func actionEnum() []string {
	types := voice.ActionTypes()
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = string(t)
	}
	return out
}

// wireResponse mirrors voice.RawResponse with pointers so missing required
// keys can be told apart from empty ones.
type wireResponse struct {
	Transcription *string `json:"transcription"`
	Message       *string `json:"message"`
	Action        *struct {
		Type   *string        `json:"type"`
		Target *string        `json:"target"`
		Data   map[string]any `json:"data"`
	} `json:"action"`
}

// ResolveIntent sends the utterance and serialized context to Gemini and
// returns the structured answer without interpreting it.
func (c *Client) ResolveIntent(ctx context.Context, req voice.IntentRequest) (voice.RawResponse, error) {
	now := req.Now
	if now.IsZero() {
		now = time.Now()
	}

	instruction, err := render(c.prompts.Intent, defaultIntentPrompt, config.IntentPromptData{
		Today:           now.Format(time.DateOnly),
		Now:             now.Format("15:04"),
		Actions:         actionEnum(),
		Routes:          c.routes,
		PrimaryListID:   req.Desk.PrimaryListID,
		SecondaryListID: req.Desk.SecondaryListID,
	})
	if err != nil {
		return voice.RawResponse{}, voice.NewError(voice.KindServiceError, err)
	}

	doc := req.Context
	if doc == "" {
		doc = snapshot.EmptyRoot
	}

	parts := []*genai.Part{
		genai.NewPartFromText(doc),
		genai.NewPartFromBytes(req.Audio, req.MIMEType),
	}

	text, err := c.generate(ctx, CallIntent, parts, instruction, intentSchema)
	if err != nil {
		return voice.RawResponse{}, err
	}

	return parseIntent(text)
}

func parseIntent(text string) (voice.RawResponse, error) {
	var wire wireResponse
	if err := json.Unmarshal([]byte(text), &wire); err != nil {
		return voice.RawResponse{}, voice.NewError(voice.KindMalformedResponse, fmt.Errorf("decode intent: %w", err))
	}
	if wire.Transcription == nil || wire.Message == nil {
		return voice.RawResponse{}, voice.Errorf(voice.KindMalformedResponse, "intent is missing transcription or message")
	}

	resp := voice.RawResponse{
		Transcription: *wire.Transcription,
		Message:       *wire.Message,
	}
	if wire.Action == nil {
		return resp, nil
	}
	if wire.Action.Type == nil || wire.Action.Target == nil {
		return voice.RawResponse{}, voice.Errorf(voice.KindMalformedResponse, "action is missing type or target")
	}

	resp.Action = &voice.RawAction{
		Type:   *wire.Action.Type,
		Target: *wire.Action.Target,
		Data:   wire.Action.Data,
	}
	return resp, nil
}
