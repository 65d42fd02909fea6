package provider

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"
	"google.golang.org/genai"
)

// mockTranslator implements Translator for testing
type mockTranslator struct {
	reply string
	err   error
	calls int
}

func (m *mockTranslator) Translate(ctx context.Context, text, source, target string) (string, error) {
	m.calls++
	return m.reply, m.err
}

func (m *mockTranslator) Name() string { return "mock" }

// mockSpeaker implements Speaker for testing
type mockSpeaker struct {
	err   error
	calls int
}

func (m *mockSpeaker) GenerateAudio(ctx context.Context, text, voice, outputFile string) error {
	m.calls++
	return m.err
}

func (m *mockSpeaker) Name() string   { return "mock" }
func (m *mockSpeaker) Format() string { return "mp3" }

type fakeChat struct {
	req  openai.ChatCompletionRequest
	resp openai.ChatCompletionResponse
	err  error
}

func (f *fakeChat) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.req = req
	return f.resp, f.err
}

type fakeSpeech struct {
	req  openai.CreateSpeechRequest
	body string
	err  error
}

func (f *fakeSpeech) CreateSpeech(ctx context.Context, req openai.CreateSpeechRequest) (openai.RawResponse, error) {
	f.req = req
	if f.err != nil {
		return openai.RawResponse{}, f.err
	}
	return openai.RawResponse{ReadCloser: io.NopCloser(strings.NewReader(f.body))}, nil
}

type fakeGenerator struct {
	model string
	resp  *genai.GenerateContentResponse
	err   error
}

func (f *fakeGenerator) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model = model
	return f.resp, f.err
}

type fakeInvoker struct {
	input *lambda.InvokeInput
	out   *lambda.InvokeOutput
	err   error
}

func (f *fakeInvoker) Invoke(ctx context.Context, params *lambda.InvokeInput, optFns ...func(*lambda.Options)) (*lambda.InvokeOutput, error) {
	f.input = params
	return f.out, f.err
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.TranslationProvider != "openai" || cfg.SpeechProvider != "openai" {
		t.Errorf("unexpected default providers: %q / %q", cfg.TranslationProvider, cfg.SpeechProvider)
	}
	if cfg.BreakerFailures == 0 || cfg.BreakerTimeout == 0 {
		t.Error("breaker defaults should be set")
	}
}

func TestFactoryErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		speech bool
		errMsg string
	}{
		{"unknown translator", func(c *Config) { c.TranslationProvider = "babelfish" }, false, "unknown translation provider: babelfish"},
		{"openai translator without key", func(c *Config) {}, false, "OpenAI API key is required"},
		{"gemini without key", func(c *Config) { c.TranslationProvider = "gemini" }, false, "Gemini API key is required"},
		{"lambda without function", func(c *Config) { c.TranslationProvider = "lambda" }, false, "translator Lambda function name is required"},
		{"unknown speaker", func(c *Config) { c.SpeechProvider = "parrot" }, true, "unknown speech provider: parrot"},
		{"openai speaker without key", func(c *Config) {}, true, "OpenAI API key is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			var err error
			if tt.speech {
				_, _, err = NewSpeaker(cfg)
			} else {
				_, _, err = NewTranslator(context.Background(), cfg)
			}
			if err == nil || err.Error() != tt.errMsg {
				t.Errorf("error = %v, want %q", err, tt.errMsg)
			}
		})
	}
}

func TestNewTranslatorWithKey(t *testing.T) {
	cfg := DefaultConfig()
	cfg.OpenAIKey = "test-key"
	tr, health, err := NewTranslator(context.Background(), cfg)
	if err != nil {
		t.Fatalf("NewTranslator failed: %v", err)
	}
	if tr.Name() != "openai" || health.Name() != "openai" {
		t.Errorf("unexpected names %q / %q", tr.Name(), health.Name())
	}
	if health.State() != gobreaker.StateClosed.String() {
		t.Errorf("State() = %q, want closed", health.State())
	}
}

func TestOpenAITranslator(t *testing.T) {
	chat := &fakeChat{resp: openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Content: "  vanakkam \n"}}},
	}}
	tr := &OpenAITranslator{client: chat, model: "gpt-4o-mini"}

	got, err := tr.Translate(context.Background(), "hello", "auto", "ta")
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if got != "vanakkam" {
		t.Errorf("Translate = %q, want trimmed reply", got)
	}
	if chat.req.Model != "gpt-4o-mini" {
		t.Errorf("model = %q", chat.req.Model)
	}
	prompt := chat.req.Messages[len(chat.req.Messages)-1].Content
	if !strings.Contains(prompt, "hello") || !strings.Contains(prompt, `"ta"`) || !strings.Contains(prompt, "detected source language") {
		t.Errorf("unexpected prompt %q", prompt)
	}

	chat.resp = openai.ChatCompletionResponse{}
	if _, err := tr.Translate(context.Background(), "hello", "en", "ta"); err == nil || err.Error() != "no translation returned" {
		t.Errorf("expected no translation error, got %v", err)
	}

	chat.err = errors.New("quota exceeded")
	if _, err := tr.Translate(context.Background(), "hello", "en", "ta"); err == nil || !strings.Contains(err.Error(), "quota exceeded") {
		t.Errorf("expected wrapped API error, got %v", err)
	}
}

func TestOpenAISpeaker(t *testing.T) {
	speech := &fakeSpeech{body: "ID3-fake-mp3"}
	sp := &OpenAISpeaker{client: speech, model: "gpt-4o-mini-tts", voice: "alloy"}
	out := filepath.Join(t.TempDir(), "out.mp3")

	if err := sp.GenerateAudio(context.Background(), "hello", "ta", out); err != nil {
		t.Fatalf("GenerateAudio failed: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil || string(data) != "ID3-fake-mp3" {
		t.Errorf("output = %q, err = %v", data, err)
	}
	if !strings.Contains(speech.req.Instructions, `"ta"`) {
		t.Errorf("instructions should mention the language: %q", speech.req.Instructions)
	}
	if speech.req.ResponseFormat != openai.SpeechResponseFormatMp3 {
		t.Errorf("response format = %q", speech.req.ResponseFormat)
	}

	speech.body = ""
	if err := sp.GenerateAudio(context.Background(), "hello", "ta", out); err == nil {
		t.Error("expected error for empty audio")
	}

	speech.err = errors.New("unsupported text")
	if err := sp.GenerateAudio(context.Background(), "hello", "ta", out); err == nil || !strings.Contains(err.Error(), "unsupported text") {
		t.Errorf("expected wrapped API error, got %v", err)
	}
}

func TestGeminiTranslator(t *testing.T) {
	gen := &fakeGenerator{resp: &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: []*genai.Part{{Text: " namaste "}}}}},
	}}
	tr := &GeminiTranslator{models: gen, model: "gemini-2.0-flash"}

	got, err := tr.Translate(context.Background(), "hello", "en", "hi")
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if got != "namaste" || gen.model != "gemini-2.0-flash" {
		t.Errorf("Translate = %q (model %q)", got, gen.model)
	}

	gen.resp = &genai.GenerateContentResponse{}
	if _, err := tr.Translate(context.Background(), "hello", "en", "hi"); err == nil {
		t.Error("expected error when no candidates are returned")
	}

	gen.err = errors.New("permission denied")
	if _, err := tr.Translate(context.Background(), "hello", "en", "hi"); err == nil || !strings.Contains(err.Error(), "permission denied") {
		t.Errorf("expected wrapped API error, got %v", err)
	}
}

func TestLambdaTranslator(t *testing.T) {
	payload, _ := json.Marshal(lambdaResponse{Translations: []string{"hola"}})
	inv := &fakeInvoker{out: &lambda.InvokeOutput{Payload: payload}}
	tr := &LambdaTranslator{client: inv, functionName: "translator"}

	got, err := tr.Translate(context.Background(), "hello", "en", "es")
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if got != "hola" {
		t.Errorf("Translate = %q, want hola", got)
	}
	if aws.ToString(inv.input.FunctionName) != "translator" {
		t.Errorf("FunctionName = %q", aws.ToString(inv.input.FunctionName))
	}
	var sent lambdaRequest
	if err := json.Unmarshal(inv.input.Payload, &sent); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}
	if len(sent.Texts) != 1 || sent.Texts[0] != "hello" || sent.SourceLang != "en" || sent.TargetLang != "es" {
		t.Errorf("unexpected payload %+v", sent)
	}

	tests := []struct {
		name string
		out  *lambda.InvokeOutput
		err  error
	}{
		{"invoke error", nil, errors.New("throttled")},
		{"function error", &lambda.InvokeOutput{FunctionError: aws.String("Unhandled")}, nil},
		{"bad payload", &lambda.InvokeOutput{Payload: []byte("not json")}, nil},
		{"translator error", &lambda.InvokeOutput{Payload: []byte(`{"error":"no translator for xx"}`)}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := &LambdaTranslator{client: &fakeInvoker{out: tt.out, err: tt.err}, functionName: "translator"}
			if _, err := tr.Translate(context.Background(), "hello", "en", "es"); err == nil {
				t.Error("expected error")
			}
		})
	}

	empty := &LambdaTranslator{client: &fakeInvoker{out: &lambda.InvokeOutput{Payload: []byte(`{"translations":[]}`)}}, functionName: "translator"}
	if got, err := empty.Translate(context.Background(), "hello", "en", "es"); err != nil || got != "" {
		t.Errorf("empty translations should yield empty text, got %q, %v", got, err)
	}
}

func TestBreakerTranslatorOpensAfterFailures(t *testing.T) {
	inner := &mockTranslator{err: errors.New("down")}
	b := NewBreakerTranslator(inner, 2, time.Minute)

	for i := 0; i < 2; i++ {
		if _, err := b.Translate(context.Background(), "x", "en", "ta"); err == nil {
			t.Fatal("expected provider error")
		}
	}
	if b.State() != gobreaker.StateOpen.String() {
		t.Fatalf("State() = %q, want open", b.State())
	}

	_, err := b.Translate(context.Background(), "x", "en", "ta")
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("expected ErrOpenState, got %v", err)
	}
	if inner.calls != 2 {
		t.Errorf("inner calls = %d, want 2 (open breaker must not call through)", inner.calls)
	}
}

func TestBreakerIgnoresCancellation(t *testing.T) {
	inner := &mockTranslator{err: context.Canceled}
	b := NewBreakerTranslator(inner, 1, time.Minute)
	for i := 0; i < 3; i++ {
		_, _ = b.Translate(context.Background(), "x", "en", "ta")
	}
	if b.State() != gobreaker.StateClosed.String() {
		t.Errorf("State() = %q, cancellations should not trip the breaker", b.State())
	}
}

func TestBreakerSpeaker(t *testing.T) {
	inner := &mockSpeaker{}
	b := NewBreakerSpeaker(inner, 1, time.Minute)
	if err := b.GenerateAudio(context.Background(), "x", "en", "out.mp3"); err != nil {
		t.Fatalf("GenerateAudio failed: %v", err)
	}
	if b.Format() != "mp3" || b.Name() != "mock" {
		t.Errorf("unexpected Format/Name %q/%q", b.Format(), b.Name())
	}

	inner.err = errors.New("tts down")
	_ = b.GenerateAudio(context.Background(), "x", "en", "out.mp3")
	if b.State() != gobreaker.StateOpen.String() {
		t.Errorf("State() = %q, want open", b.State())
	}
}

func TestThrottledTranslatorHonoursContext(t *testing.T) {
	inner := &mockTranslator{reply: "ok"}
	tr := NewThrottledTranslator(inner, 0.001, 1)

	if _, err := tr.Translate(context.Background(), "x", "en", "ta"); err != nil {
		t.Fatalf("first call should use the burst token: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := tr.Translate(ctx, "x", "en", "ta"); err == nil {
		t.Error("second call should fail waiting for quota within the deadline")
	}
	if inner.calls != 1 {
		t.Errorf("inner calls = %d, want 1", inner.calls)
	}
}

func TestThrottleDisabled(t *testing.T) {
	inner := &mockSpeaker{}
	sp := NewThrottledSpeaker(inner, 0, 0)
	for i := 0; i < 50; i++ {
		if err := sp.GenerateAudio(context.Background(), "x", "en", "out.mp3"); err != nil {
			t.Fatalf("call %d failed: %v", i, err)
		}
	}
	if inner.calls != 50 {
		t.Errorf("inner calls = %d, want 50", inner.calls)
	}
}

func TestESpeakSpeakerMissingBinary(t *testing.T) {
	if _, err := NewESpeakSpeaker("definitely-not-an-espeak-binary"); err == nil {
		t.Error("expected error for missing binary")
	}
}
