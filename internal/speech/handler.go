// Package speech turns text into a short-lived audio artifact. Each call
// owns its own temp file, which is removed before Synthesize returns no
// matter how the call ends.
package speech

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	apperror "github.com/CodeAndHammer/tradukilo/internal/apperror"
	constants "github.com/CodeAndHammer/tradukilo/internal/constants"
	"github.com/CodeAndHammer/tradukilo/internal/provider"
	util "github.com/CodeAndHammer/tradukilo/internal/util"
)

// Artifact is a rendered audio payload. Reader is only valid inside the
// deliver callback passed to Synthesize.
type Artifact struct {
	Reader      io.Reader
	Size        int64
	ContentType string
	Voice       string
}

type Handler struct {
	speaker provider.Speaker
	tempDir string
}

// NewHandler returns a handler writing temp artifacts to tempDir, or to the
// system temp directory when tempDir is empty.
func NewHandler(speaker provider.Speaker, tempDir string) *Handler {
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	return &Handler{speaker: speaker, tempDir: tempDir}
}

// Synthesize renders text in the voice mapped from languageCode and hands the
// result to deliver. Provider failures come back as apperror SynthesisError;
// an error from deliver is returned wrapped. Text is passed through verbatim.
func (h *Handler) Synthesize(ctx context.Context, text, languageCode string, deliver func(Artifact) error) error {
	voice := VoiceFor(languageCode)
	if voice != languageCode {
		util.LogCtx(ctx).Debugw("speech: mapped language to voice", "lang", languageCode, "voice", voice)
	}

	path, release, err := h.acquire()
	if err != nil {
		return apperror.Synthesis(constants.ErrorCodeSynthesis, "could not allocate audio storage", err)
	}
	defer release()

	if err := h.render(ctx, text, voice, path); err != nil {
		util.LogCtx(ctx).Warnw("speech: provider failed", "provider", h.speaker.Name(), "voice", voice, "err", err)
		return apperror.Synthesis(constants.ErrorCodeSynthesis, err.Error(), err)
	}

	f, err := os.Open(path)
	if err != nil {
		return apperror.Synthesis(constants.ErrorCodeSynthesis, "could not read rendered audio", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return apperror.Synthesis(constants.ErrorCodeSynthesis, "could not read rendered audio", err)
	}
	if info.Size() == 0 {
		return apperror.Synthesis(constants.ErrorCodeSynthesis, "no audio produced", nil)
	}

	if err := deliver(Artifact{
		Reader:      f,
		Size:        info.Size(),
		ContentType: contentType(h.speaker.Format()),
		Voice:       voice,
	}); err != nil {
		return fmt.Errorf("failed to transmit audio: %w", err)
	}
	return nil
}

// acquire reserves a uniquely named temp file and returns a release func that
// deletes it. Deletion failures are logged, never returned.
func (h *Handler) acquire() (string, func(), error) {
	if err := util.EnsureDir(h.tempDir); err != nil {
		return "", nil, err
	}
	path := filepath.Join(h.tempDir, fmt.Sprintf("speech-%s.%s", uuid.NewString(), h.speaker.Format()))
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return "", nil, fmt.Errorf("failed to create temp artifact: %w", err)
	}
	if err := f.Close(); err != nil {
		util.LogWarn("Failed to close temp artifact %s: %v", path, err)
	}

	release := func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			util.LogWarn("Failed to remove temp artifact %s: %v", path, err)
		}
	}
	return path, release, nil
}

func (h *Handler) render(ctx context.Context, text, voice, path string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("speech provider panicked: %v", r)
		}
	}()
	return h.speaker.GenerateAudio(ctx, text, voice, path)
}

func (h *Handler) ProviderName() string {
	return h.speaker.Name()
}

func contentType(format string) string {
	switch format {
	case "wav":
		return "audio/wav"
	case "ogg", "opus":
		return "audio/ogg"
	default:
		return "audio/mpeg"
	}
}
