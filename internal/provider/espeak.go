package provider

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// ESpeakSpeaker renders speech with a local espeak-ng binary. It writes WAV.
type ESpeakSpeaker struct {
	binary string
}

func NewESpeakSpeaker(binary string) (*ESpeakSpeaker, error) {
	if binary == "" {
		binary = "espeak-ng"
	}
	path, err := exec.LookPath(binary)
	if err != nil {
		return nil, fmt.Errorf("%s is not installed or not in PATH: %w", binary, err)
	}
	return &ESpeakSpeaker{binary: path}, nil
}

func (e *ESpeakSpeaker) GenerateAudio(ctx context.Context, text, voice, outputFile string) error {
	// "--" stops option parsing so text starting with "-" is spoken, not parsed.
	cmd := exec.CommandContext(ctx, e.binary, "-v", voice, "-w", outputFile, "--", text)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("espeak-ng failed: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}

func (e *ESpeakSpeaker) Name() string {
	return "espeak-ng"
}

func (e *ESpeakSpeaker) Format() string {
	return "wav"
}
