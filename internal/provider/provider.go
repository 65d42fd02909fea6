// Package provider holds the external capabilities the service depends on:
// text translation and speech synthesis. Concrete adapters talk to OpenAI,
// Gemini, an AWS Lambda translator or a local espeak-ng binary; decorators
// add a circuit breaker and an outbound rate limit around any of them.
package provider

import (
	"context"
	"fmt"
	"time"
)

// Translator translates text from source to target. source may be "auto".
type Translator interface {
	Translate(ctx context.Context, text, source, target string) (string, error)
	Name() string
}

// Speaker renders text spoken with voice into outputFile.
type Speaker interface {
	GenerateAudio(ctx context.Context, text, voice, outputFile string) error
	Name() string
	// Format is the audio container written by GenerateAudio, e.g. "mp3".
	Format() string
}

// HealthReporter is implemented by decorators that track provider health.
type HealthReporter interface {
	Name() string
	State() string
}

type Config struct {
	TranslationProvider string // "openai", "gemini" or "lambda"
	SpeechProvider      string // "openai" or "espeak"

	OpenAIKey      string
	OpenAIBaseURL  string
	OpenAIModel    string
	OpenAITTSModel string
	OpenAITTSVoice string

	GeminiKey   string
	GeminiModel string

	AWSRegion        string
	TranslatorLambda string

	ESpeakBinary string

	RequestsPerSecond float64
	Burst             int
	BreakerFailures   uint32
	BreakerTimeout    time.Duration
}

func DefaultConfig() Config {
	return Config{
		TranslationProvider: "openai",
		SpeechProvider:      "openai",
		OpenAIModel:         "gpt-4o-mini",
		OpenAITTSModel:      "gpt-4o-mini-tts",
		OpenAITTSVoice:      "alloy",
		GeminiModel:         "gemini-2.0-flash",
		ESpeakBinary:        "espeak-ng",
		RequestsPerSecond:   10,
		Burst:               20,
		BreakerFailures:     5,
		BreakerTimeout:      30 * time.Second,
	}
}

// NewTranslator builds the configured translation adapter wrapped in a
// circuit breaker and an outbound throttle. The breaker is returned
// separately so callers can report its state.
func NewTranslator(ctx context.Context, cfg Config) (Translator, HealthReporter, error) {
	var (
		base Translator
		err  error
	)
	switch cfg.TranslationProvider {
	case "openai":
		base, err = NewOpenAITranslator(cfg)
	case "gemini":
		base, err = NewGeminiTranslator(ctx, cfg)
	case "lambda":
		base, err = NewLambdaTranslator(ctx, cfg)
	default:
		return nil, nil, fmt.Errorf("unknown translation provider: %s", cfg.TranslationProvider)
	}
	if err != nil {
		return nil, nil, err
	}

	breaker := NewBreakerTranslator(base, cfg.BreakerFailures, cfg.BreakerTimeout)
	return NewThrottledTranslator(breaker, cfg.RequestsPerSecond, cfg.Burst), breaker, nil
}

// NewSpeaker builds the configured speech adapter with the same decorators as
// NewTranslator.
func NewSpeaker(cfg Config) (Speaker, HealthReporter, error) {
	var (
		base Speaker
		err  error
	)
	switch cfg.SpeechProvider {
	case "openai":
		base, err = NewOpenAISpeaker(cfg)
	case "espeak":
		base, err = NewESpeakSpeaker(cfg.ESpeakBinary)
	default:
		return nil, nil, fmt.Errorf("unknown speech provider: %s", cfg.SpeechProvider)
	}
	if err != nil {
		return nil, nil, err
	}

	breaker := NewBreakerSpeaker(base, cfg.BreakerFailures, cfg.BreakerTimeout)
	return NewThrottledSpeaker(breaker, cfg.RequestsPerSecond, cfg.Burst), breaker, nil
}

func describeSource(source string) string {
	if source == "" || source == "auto" {
		return "the detected source language"
	}
	return fmt.Sprintf("the language with code %q", source)
}

func translationPrompt(text, source, target string) string {
	return fmt.Sprintf("Translate the following text from %s to the language with code %q. "+
		"Respond with only the translation, nothing else.\n\n%s", describeSource(source), target, text)
}
