package provider

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"

	util "github.com/CodeAndHammer/tradukilo/internal/util"
)

func newCircuitBreaker(name string, failures uint32, timeout time.Duration) *gobreaker.CircuitBreaker {
	if failures == 0 {
		failures = 5
	}
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		// A caller that gave up says nothing about the provider's health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			util.LogWarn("Circuit breaker %s changed state: %s -> %s", name, from, to)
		},
	})
}

// BreakerTranslator stops calling a translator that keeps failing.
type BreakerTranslator struct {
	next Translator
	cb   *gobreaker.CircuitBreaker
}

func NewBreakerTranslator(next Translator, failures uint32, timeout time.Duration) *BreakerTranslator {
	return &BreakerTranslator{
		next: next,
		cb:   newCircuitBreaker("translate:"+next.Name(), failures, timeout),
	}
}

func (b *BreakerTranslator) Translate(ctx context.Context, text, source, target string) (string, error) {
	out, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.Translate(ctx, text, source, target)
	})
	if err != nil {
		return "", err
	}
	return out.(string), nil
}

func (b *BreakerTranslator) Name() string {
	return b.next.Name()
}

func (b *BreakerTranslator) State() string {
	return b.cb.State().String()
}

// BreakerSpeaker stops calling a speaker that keeps failing.
type BreakerSpeaker struct {
	next Speaker
	cb   *gobreaker.CircuitBreaker
}

func NewBreakerSpeaker(next Speaker, failures uint32, timeout time.Duration) *BreakerSpeaker {
	return &BreakerSpeaker{
		next: next,
		cb:   newCircuitBreaker("speech:"+next.Name(), failures, timeout),
	}
}

func (b *BreakerSpeaker) GenerateAudio(ctx context.Context, text, voice, outputFile string) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, b.next.GenerateAudio(ctx, text, voice, outputFile)
	})
	return err
}

func (b *BreakerSpeaker) Name() string {
	return b.next.Name()
}

func (b *BreakerSpeaker) Format() string {
	return b.next.Format()
}

func (b *BreakerSpeaker) State() string {
	return b.cb.State().String()
}
