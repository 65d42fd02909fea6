package provider

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sashabaranov/go-openai"
)

type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type speechCreator interface {
	CreateSpeech(ctx context.Context, req openai.CreateSpeechRequest) (openai.RawResponse, error)
}

func newOpenAIClient(cfg Config) (*openai.Client, error) {
	if cfg.OpenAIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	clientCfg := openai.DefaultConfig(cfg.OpenAIKey)
	if cfg.OpenAIBaseURL != "" {
		clientCfg.BaseURL = cfg.OpenAIBaseURL
	}
	return openai.NewClientWithConfig(clientCfg), nil
}

// OpenAITranslator translates with a chat completion model.
type OpenAITranslator struct {
	client chatCompleter
	model  string
}

func NewOpenAITranslator(cfg Config) (*OpenAITranslator, error) {
	client, err := newOpenAIClient(cfg)
	if err != nil {
		return nil, err
	}
	return &OpenAITranslator{client: client, model: cfg.OpenAIModel}, nil
}

func (t *OpenAITranslator) Translate(ctx context.Context, text, source, target string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: t.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are a translation engine. Preserve meaning, tone and formatting.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: translationPrompt(text, source, target),
			},
		},
		Temperature: 0.2,
	}

	resp, err := t.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no translation returned")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func (t *OpenAITranslator) Name() string {
	return "openai"
}

// OpenAISpeaker renders speech with the OpenAI TTS endpoint. The language
// code is passed as a voice instruction; the voice itself is fixed by config.
type OpenAISpeaker struct {
	client speechCreator
	model  string
	voice  string
}

func NewOpenAISpeaker(cfg Config) (*OpenAISpeaker, error) {
	client, err := newOpenAIClient(cfg)
	if err != nil {
		return nil, err
	}
	return &OpenAISpeaker{client: client, model: cfg.OpenAITTSModel, voice: cfg.OpenAITTSVoice}, nil
}

func (s *OpenAISpeaker) GenerateAudio(ctx context.Context, text, voice, outputFile string) error {
	req := openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(s.model),
		Input:          text,
		Voice:          openai.SpeechVoice(s.voice),
		ResponseFormat: openai.SpeechResponseFormatMp3,
	}
	if s.model == "gpt-4o-mini-tts" {
		req.Instructions = fmt.Sprintf("Speak the text in the language with code %q, clearly and at a natural pace.", voice)
	}

	response, err := s.client.CreateSpeech(ctx, req)
	if err != nil {
		return fmt.Errorf("OpenAI TTS API error: %w", err)
	}
	defer response.Close()

	out, err := os.OpenFile(outputFile, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0o600)
	if err != nil {
		return fmt.Errorf("failed to open output file: %w", err)
	}
	defer out.Close()

	written, err := io.Copy(out, response)
	if err != nil {
		return fmt.Errorf("failed to write audio file: %w", err)
	}
	if written == 0 {
		return fmt.Errorf("no audio data received from OpenAI")
	}
	return nil
}

func (s *OpenAISpeaker) Name() string {
	return "openai"
}

func (s *OpenAISpeaker) Format() string {
	return "mp3"
}
