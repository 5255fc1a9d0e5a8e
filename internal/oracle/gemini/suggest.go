package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"google.golang.org/genai"

	"github.com/colonyops/tally/internal/core/config"
	"github.com/colonyops/tally/internal/core/voice"
)

// Suggestion is a list proposed from a photo.
type Suggestion struct {
	Name     string   `json:"name"`
	Purpose  string   `json:"purpose"`
	Template string   `json:"template"`
	Items    []string `json:"items"`
}

var suggestSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"name":     {Type: genai.TypeString},
		"purpose":  {Type: genai.TypeString},
		"template": {Type: genai.TypeString},
		"items":    {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
	},
	Required: []string{"name", "items"},
}

// SuggestList proposes a list for the photo in image. templates names the
// catalog entries the answer may refer to; anything else is cleared.
func (c *Client) SuggestList(ctx context.Context, image []byte, mimeType string, templates []string) (Suggestion, error) {
	if len(image) == 0 {
		return Suggestion{}, voice.Errorf(voice.KindCorruptCapture, "empty image")
	}

	instruction, err := render(c.prompts.Suggest, defaultSuggestPrompt, config.SuggestPromptData{Templates: templates})
	if err != nil {
		return Suggestion{}, voice.NewError(voice.KindServiceError, err)
	}

	text, err := c.generate(ctx, CallSuggest, []*genai.Part{genai.NewPartFromBytes(image, mimeType)}, instruction, suggestSchema)
	if err != nil {
		return Suggestion{}, err
	}

	var s Suggestion
	if err := json.Unmarshal([]byte(text), &s); err != nil {
		return Suggestion{}, voice.NewError(voice.KindMalformedResponse, fmt.Errorf("decode suggestion: %w", err))
	}

	s.Name = strings.TrimSpace(s.Name)
	if s.Name == "" {
		return Suggestion{}, voice.Errorf(voice.KindMalformedResponse, "suggestion has no name")
	}
	if !slices.Contains(templates, s.Template) {
		s.Template = ""
	}

	items := s.Items[:0]
	for _, item := range s.Items {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	s.Items = items

	return s, nil
}
