// Package translate validates translation requests, calls the translation
// provider and records successful results in the history store.
package translate

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	apperror "github.com/CodeAndHammer/tradukilo/internal/apperror"
	constants "github.com/CodeAndHammer/tradukilo/internal/constants"
	"github.com/CodeAndHammer/tradukilo/internal/history"
	models "github.com/CodeAndHammer/tradukilo/internal/models"
	"github.com/CodeAndHammer/tradukilo/internal/provider"
	util "github.com/CodeAndHammer/tradukilo/internal/util"
)

type Orchestrator struct {
	provider provider.Translator
	history  *history.Store
	now      func() time.Time
}

func NewOrchestrator(p provider.Translator, store *history.Store) *Orchestrator {
	return &Orchestrator{provider: p, history: store, now: time.Now}
}

// Validate checks the request text. The first failing rule wins.
func Validate(req models.TranslationRequest) error {
	if strings.TrimSpace(req.Text) == "" {
		return apperror.Validation(constants.ErrorCodeEmptyText, "empty text")
	}
	if utf8.RuneCountInString(req.Text) > constants.MaxTextLength {
		return apperror.Validation(constants.ErrorCodeTooLong, "too long")
	}
	return nil
}

// Translate runs one translation. Validation failures never reach the
// provider; provider failures and empty replies come back as ProviderError.
// Only a usable translation is recorded in history, and the returned text is
// never truncated.
func (o *Orchestrator) Translate(ctx context.Context, req models.TranslationRequest) (models.TranslationResult, error) {
	if err := Validate(req); err != nil {
		return models.TranslationResult{}, err
	}

	translated, err := o.callProvider(ctx, req)
	if err != nil {
		util.LogCtx(ctx).Warnw("translate: provider failed",
			"provider", o.provider.Name(), "source", req.SourceLang, "target", req.TargetLang, "err", err)
		return models.TranslationResult{}, apperror.Provider(constants.ErrorCodeProvider, err.Error(), err)
	}
	if strings.TrimSpace(translated) == "" {
		util.LogCtx(ctx).Warnw("translate: provider returned no text",
			"provider", o.provider.Name(), "source", req.SourceLang, "target", req.TargetLang)
		return models.TranslationResult{}, apperror.Provider(constants.ErrorCodeProvider, constants.NoTranslationAvailable, nil)
	}

	o.history.Record(history.NewEntry(req.Text, translated, req.SourceLang, req.TargetLang, o.now()))
	util.LogCtx(ctx).Infow("translate: success",
		"provider", o.provider.Name(), "source", req.SourceLang, "target", req.TargetLang, "chars", utf8.RuneCountInString(req.Text))

	return models.TranslationResult{TranslatedText: translated}, nil
}

func (o *Orchestrator) callProvider(ctx context.Context, req models.TranslationRequest) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("translation provider panicked: %v", r)
		}
	}()
	return o.provider.Translate(ctx, req.Text, req.SourceLang, req.TargetLang)
}

func (o *Orchestrator) ProviderName() string {
	return o.provider.Name()
}
