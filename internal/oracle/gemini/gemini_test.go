package gemini

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/colonyops/tally/internal/core/config"
	"github.com/colonyops/tally/internal/core/list"
	"github.com/colonyops/tally/internal/core/voice"
)

type fakeCall struct {
	model    string
	contents []*genai.Content
	config   *genai.GenerateContentConfig
}

type fakeGenerator struct {
	mu    sync.Mutex
	text  string
	err   error
	block bool
	calls []fakeCall
}

func (f *fakeGenerator) GenerateContent(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.mu.Lock()
	f.calls = append(f.calls, fakeCall{model: model, contents: contents, config: cfg})
	text, err, block := f.text, f.err, f.block
	f.mu.Unlock()

	if block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if err != nil {
		return nil, err
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: genai.NewContentFromText(text, genai.RoleModel)}},
	}, nil
}

func (f *fakeGenerator) lastCall(t *testing.T) fakeCall {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.calls)
	return f.calls[len(f.calls)-1]
}

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	return &cfg
}

func instructionText(c fakeCall) string {
	if c.config == nil || c.config.SystemInstruction == nil || len(c.config.SystemInstruction.Parts) == 0 {
		return ""
	}
	return c.config.SystemInstruction.Parts[0].Text
}

func TestResolveIntent(t *testing.T) {
	gen := &fakeGenerator{text: `{"transcription":"add milk","message":"Adding milk","action":{"type":"create_todo","target":"lst_1","data":{"texts":["milk"]}}}`}
	client := newClient(gen, testConfig())

	resp, err := client.ResolveIntent(context.Background(), voice.IntentRequest{
		Audio:    []byte("audio-bytes"),
		MIMEType: "audio/webm",
		Context:  `<context><list id="lst_1"/></context>`,
		Desk:     voice.Desk{PrimaryListID: "lst_1"},
		Now:      time.Date(2025, 6, 1, 14, 30, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	assert.Equal(t, "add milk", resp.Transcription)
	require.NotNil(t, resp.Action)
	assert.Equal(t, "create_todo", resp.Action.Type)
	assert.Equal(t, "lst_1", resp.Action.Target)
	assert.Equal(t, []any{"milk"}, resp.Action.Data["texts"])

	call := gen.lastCall(t)
	assert.Equal(t, config.DefaultModel, call.model)
	assert.Equal(t, "application/json", call.config.ResponseMIMEType)
	assert.Same(t, intentSchema, call.config.ResponseSchema)

	require.Len(t, call.contents, 1)
	parts := call.contents[0].Parts
	require.Len(t, parts, 2)
	assert.Contains(t, parts[0].Text, `<list id="lst_1"/>`)
	require.NotNil(t, parts[1].InlineData)
	assert.Equal(t, "audio/webm", parts[1].InlineData.MIMEType)
	assert.Equal(t, []byte("audio-bytes"), parts[1].InlineData.Data)

	instr := instructionText(call)
	assert.Contains(t, instr, "Today is 2025-06-01 and the time is 14:30")
	assert.Contains(t, instr, "lst_1")
	assert.Contains(t, instr, "- show_todo")
}

func TestResolveIntent_EmptyContext(t *testing.T) {
	gen := &fakeGenerator{text: `{"transcription":"hi","message":"hello"}`}
	client := newClient(gen, testConfig())

	resp, err := client.ResolveIntent(context.Background(), voice.IntentRequest{Audio: []byte("x"), MIMEType: "audio/wav"})
	require.NoError(t, err)
	assert.Nil(t, resp.Action)
	assert.Equal(t, "<context/>", gen.lastCall(t).contents[0].Parts[0].Text)
}

func TestParseIntent(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantErr bool
		action  bool
	}{
		{name: "no action", text: `{"transcription":"a","message":"b"}`},
		{name: "null action", text: `{"transcription":"a","message":"b","action":null}`},
		{name: "with action", text: `{"transcription":"a","message":"b","action":{"type":"navigate","target":"/settings"}}`, action: true},
		{name: "empty target kept", text: `{"transcription":"a","message":"b","action":{"type":"navigate","target":""}}`, action: true},
		{name: "not json", text: `I think you said milk`, wantErr: true},
		{name: "missing message", text: `{"transcription":"a"}`, wantErr: true},
		{name: "action missing target", text: `{"transcription":"a","message":"b","action":{"type":"navigate"}}`, wantErr: true},
		{name: "action missing type", text: `{"transcription":"a","message":"b","action":{"target":"x"}}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := parseIntent(tt.text)
			if tt.wantErr {
				assert.ErrorIs(t, err, voice.ErrMalformedResponse)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.action, resp.Action != nil)
		})
	}
}

func TestGenerate_ErrorMapping(t *testing.T) {
	t.Run("timeout", func(t *testing.T) {
		cfg := testConfig()
		cfg.Oracle.VoiceTimeout = 20 * time.Millisecond
		client := newClient(&fakeGenerator{block: true}, cfg)

		_, err := client.ResolveIntent(context.Background(), voice.IntentRequest{Audio: []byte("x"), MIMEType: "audio/wav"})
		assert.ErrorIs(t, err, voice.ErrTimeout)
	})

	t.Run("caller cancels", func(t *testing.T) {
		client := newClient(&fakeGenerator{block: true}, testConfig())
		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			time.Sleep(10 * time.Millisecond)
			cancel()
		}()

		_, err := client.ResolveIntent(ctx, voice.IntentRequest{Audio: []byte("x"), MIMEType: "audio/wav"})
		assert.ErrorIs(t, err, voice.ErrCancelled)
	})

	t.Run("api error", func(t *testing.T) {
		gen := &fakeGenerator{err: genai.APIError{Code: 503, Status: "UNAVAILABLE", Message: "overloaded"}}
		client := newClient(gen, testConfig())

		_, err := client.ResolveIntent(context.Background(), voice.IntentRequest{Audio: []byte("x"), MIMEType: "audio/wav"})
		require.ErrorIs(t, err, voice.ErrServiceError)
		assert.Contains(t, err.Error(), "503")
	})

	t.Run("transport error", func(t *testing.T) {
		client := newClient(&fakeGenerator{err: errors.New("connection reset")}, testConfig())

		_, err := client.ResolveIntent(context.Background(), voice.IntentRequest{Audio: []byte("x"), MIMEType: "audio/wav"})
		assert.ErrorIs(t, err, voice.ErrServiceError)
	})

	t.Run("blank text", func(t *testing.T) {
		client := newClient(&fakeGenerator{text: "  "}, testConfig())

		_, err := client.ResolveIntent(context.Background(), voice.IntentRequest{Audio: []byte("x"), MIMEType: "audio/wav"})
		assert.ErrorIs(t, err, voice.ErrMalformedResponse)
	})
}

func TestObserver(t *testing.T) {
	var (
		calls []string
		errs  []error
	)
	gen := &fakeGenerator{text: `{"transcription":"a","message":"b"}`}
	client := newClient(gen, testConfig(), WithObserver(func(call string, _ time.Duration, err error) {
		calls = append(calls, call)
		errs = append(errs, err)
	}))

	_, err := client.ResolveIntent(context.Background(), voice.IntentRequest{Audio: []byte("x"), MIMEType: "audio/wav"})
	require.NoError(t, err)

	gen.err = errors.New("boom")
	_, err = client.Synthesize(context.Background(), voice.SynthesisRequest{Phrases: []string{"milk"}})
	require.Error(t, err)

	assert.Equal(t, []string{CallIntent, CallSynthesis}, calls)
	assert.NoError(t, errs[0])
	assert.ErrorIs(t, errs[1], voice.ErrServiceError)
}

func TestPromptOverride(t *testing.T) {
	cfg := testConfig()
	cfg.Prompts.Intent = "custom for {{ .PrimaryListID | default \"nobody\" }}"
	gen := &fakeGenerator{text: `{"transcription":"a","message":"b"}`}
	client := newClient(gen, cfg)

	_, err := client.ResolveIntent(context.Background(), voice.IntentRequest{Audio: []byte("x"), MIMEType: "audio/wav"})
	require.NoError(t, err)
	assert.Equal(t, "custom for nobody", instructionText(gen.lastCall(t)))
}

func TestSynthesize(t *testing.T) {
	gen := &fakeGenerator{text: "```json\n" + `[{"text":"Milk","done":false,"amount":2},{"text":"Eggs","done":false,"rating":4}]` + "\n```"}
	client := newClient(gen, testConfig())

	todos, err := client.Synthesize(context.Background(), voice.SynthesisRequest{
		Phrases: []string{"two milk", "eggs"},
		List:    list.Descriptor{ID: "lst_1", Name: "Groceries", Purpose: "weekly shop"},
		Samples: []list.Todo{{Text: "Bread", Category: "bakery"}},
	})
	require.NoError(t, err)
	require.Len(t, todos, 2)
	assert.Equal(t, "Milk", todos[0].Text)
	require.NotNil(t, todos[0].Amount)
	assert.InDelta(t, 2.0, *todos[0].Amount, 0.0001)
	require.NotNil(t, todos[1].Rating)
	assert.Equal(t, 4, *todos[1].Rating)

	call := gen.lastCall(t)
	assert.Same(t, synthesisSchema, call.config.ResponseSchema)
	assert.Equal(t, `["two milk","eggs"]`, call.contents[0].Parts[0].Text)

	instr := instructionText(call)
	assert.Contains(t, instr, `"Groceries"`)
	assert.Contains(t, instr, "weekly shop")
	assert.Contains(t, instr, "- Bread | category=bakery")
}

func TestSynthesize_Malformed(t *testing.T) {
	client := newClient(&fakeGenerator{text: `{"text":"not an array"}`}, testConfig())

	_, err := client.Synthesize(context.Background(), voice.SynthesisRequest{Phrases: []string{"milk"}})
	assert.ErrorIs(t, err, voice.ErrMalformedResponse)
}

func TestSuggestList(t *testing.T) {
	gen := &fakeGenerator{text: `{"name":" Pantry ","purpose":"what is in the cupboard","template":"made-up","items":["rice"," ","beans"]}`}
	client := newClient(gen, testConfig())

	s, err := client.SuggestList(context.Background(), []byte("jpeg"), "image/jpeg", []string{"shopping", "pantry"})
	require.NoError(t, err)
	assert.Equal(t, "Pantry", s.Name)
	assert.Empty(t, s.Template, "unknown templates are cleared")
	assert.Equal(t, []string{"rice", "beans"}, s.Items)

	instr := instructionText(gen.lastCall(t))
	assert.Contains(t, instr, "- pantry")
}

func TestSuggestList_EmptyImage(t *testing.T) {
	client := newClient(&fakeGenerator{}, testConfig())

	_, err := client.SuggestList(context.Background(), nil, "image/jpeg", nil)
	assert.ErrorIs(t, err, voice.ErrCorruptCapture)
}

func TestStripFence(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripFence("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripFence(` {"a":1} `))
}

func TestNew_RequiresKey(t *testing.T) {
	_, err := New(context.Background(), testConfig())
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "GEMINI_API_KEY"))
}

// TestLive exercises the real API when a key is available.
func TestLive(t *testing.T) {
	key := os.Getenv("GEMINI_API_KEY")
	if key == "" {
		t.Skip("GEMINI_API_KEY not set")
	}

	cfg := testConfig()
	cfg.Oracle.APIKey = key
	client, err := New(context.Background(), cfg)
	require.NoError(t, err)

	todos, err := client.Synthesize(context.Background(), voice.SynthesisRequest{
		Phrases: []string{"buy milk"},
		List:    list.Descriptor{Name: "Groceries"},
	})
	require.NoError(t, err)
	assert.Len(t, todos, 1)
}
