package chat

import (
	"context"
	"fmt"
	"iter"

	"portfolio-api/internal/audio"

	"google.golang.org/genai"
)

var genaiGenerateContentStreamHook = func(c *genai.Client, ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) iter.Seq2[*genai.GenerateContentResponse, error] {
	return c.Models.GenerateContentStream(ctx, model, contents, cfg)
}

var genaiGenerateContentHook = func(c *genai.Client, ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	return c.Models.GenerateContent(ctx, model, contents, cfg)
}

// GeminiText streams answers from a Gemini model.
type GeminiText struct {
	Client *genai.Client
	Model  string
}

func (g *GeminiText) Stream(ctx context.Context, prompt string, cfg GenerationConfig) iter.Seq2[string, error] {
	gc := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(cfg.Temperature),
		TopP:            genai.Ptr(cfg.TopP),
		TopK:            genai.Ptr(cfg.TopK),
		MaxOutputTokens: cfg.MaxOutputTokens,
		ThinkingConfig:  &genai.ThinkingConfig{ThinkingBudget: genai.Ptr(cfg.ThinkingBudget)},
	}
	if cfg.SystemInstruction != "" {
		gc.SystemInstruction = genai.NewContentFromText(cfg.SystemInstruction, genai.RoleUser)
	}

	return func(yield func(string, error) bool) {
		for resp, err := range genaiGenerateContentStreamHook(g.Client, ctx, g.Model, genai.Text(prompt), gc) {
			if err != nil {
				yield("", fmt.Errorf("generation error: %w", err))
				return
			}
			if resp == nil {
				continue
			}
			if t := resp.Text(); t != "" {
				if !yield(t, nil) {
					return
				}
			}
		}
	}
}

// GeminiSpeech synthesizes speech with a Gemini TTS model and a prebuilt voice.
type GeminiSpeech struct {
	Client *genai.Client
	Model  string
	Voice  string
}

func (g *GeminiSpeech) Synthesize(ctx context.Context, text string) (*Speech, error) {
	if text == "" {
		return nil, ErrEmptySpeech
	}

	cfg := &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: g.Voice},
			},
		},
	}

	resp, err := genaiGenerateContentHook(g.Client, ctx, g.Model, genai.Text(text), cfg)
	if err != nil {
		return nil, fmt.Errorf("speech generation error: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, ErrNoAudio
	}

	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil || part.InlineData == nil || len(part.InlineData.Data) == 0 {
			continue
		}
		pcm := part.InlineData.Data
		if len(pcm)%2 == 1 {
			pcm = pcm[:len(pcm)-1]
		}
		rate := audio.ParseRateFromMime(part.InlineData.MIMEType)
		if rate == 0 {
			rate = audio.SampleRate
		}
		return &Speech{PCM: pcm, SampleRate: rate}, nil
	}
	return nil, ErrNoAudio
}
