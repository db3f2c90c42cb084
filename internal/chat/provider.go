package chat

import (
	"context"
	"errors"
	"iter"
)

// GenerationConfig is the pinned text-generation setup for every turn.
type GenerationConfig struct {
	SystemInstruction string
	Temperature       float32
	TopP              float32
	TopK              float32
	MaxOutputTokens   int32
	ThinkingBudget    int32
}

func defaultGenerationConfig(instruction string) GenerationConfig {
	return GenerationConfig{
		SystemInstruction: instruction,
		Temperature:       0,
		TopP:              1,
		TopK:              1,
		MaxOutputTokens:   maxOutputTokens,
		ThinkingBudget:    0,
	}
}

// TextGenerator streams text fragments for a prompt. The sequence ends after
// the first error.
type TextGenerator interface {
	Stream(ctx context.Context, prompt string, cfg GenerationConfig) iter.Seq2[string, error]
}

// Speech is raw 16-bit little-endian mono PCM.
type Speech struct {
	PCM        []byte
	SampleRate int
}

type Synthesizer interface {
	Synthesize(ctx context.Context, text string) (*Speech, error)
}

var (
	ErrEmptyMessage = errors.New("message is required")
	ErrNoAudio      = errors.New("no audio in speech response")
	ErrEmptySpeech  = errors.New("text is required")
)
