package provider

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// newOutboundLimiter returns a token bucket for calls to a provider. A
// non-positive rps disables throttling.
func newOutboundLimiter(rps float64, burst int) *rate.Limiter {
	if rps <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

// ThrottledTranslator caps the request rate sent to the wrapped translator,
// shared across all clients. Waiting honours ctx.
type ThrottledTranslator struct {
	next    Translator
	limiter *rate.Limiter
}

func NewThrottledTranslator(next Translator, rps float64, burst int) *ThrottledTranslator {
	return &ThrottledTranslator{next: next, limiter: newOutboundLimiter(rps, burst)}
}

func (t *ThrottledTranslator) Translate(ctx context.Context, text, source, target string) (string, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("waiting for %s quota: %w", t.next.Name(), err)
	}
	return t.next.Translate(ctx, text, source, target)
}

func (t *ThrottledTranslator) Name() string {
	return t.next.Name()
}

type ThrottledSpeaker struct {
	next    Speaker
	limiter *rate.Limiter
}

func NewThrottledSpeaker(next Speaker, rps float64, burst int) *ThrottledSpeaker {
	return &ThrottledSpeaker{next: next, limiter: newOutboundLimiter(rps, burst)}
}

func (t *ThrottledSpeaker) GenerateAudio(ctx context.Context, text, voice, outputFile string) error {
	if err := t.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("waiting for %s quota: %w", t.next.Name(), err)
	}
	return t.next.GenerateAudio(ctx, text, voice, outputFile)
}

func (t *ThrottledSpeaker) Name() string {
	return t.next.Name()
}

func (t *ThrottledSpeaker) Format() string {
	return t.next.Format()
}
