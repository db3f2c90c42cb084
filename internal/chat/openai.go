package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"

	"portfolio-api/internal/audio"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIText streams chat completions. TopK has no OpenAI equivalent and is
// ignored.
type OpenAIText struct {
	Client *openai.Client
	Model  string
}

func (o *OpenAIText) Stream(ctx context.Context, prompt string, cfg GenerationConfig) iter.Seq2[string, error] {
	msgs := make([]openai.ChatCompletionMessage, 0, 2)
	if cfg.SystemInstruction != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: cfg.SystemInstruction})
	}
	msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: prompt})

	req := openai.ChatCompletionRequest{
		Model:       o.Model,
		Messages:    msgs,
		Temperature: cfg.Temperature,
		TopP:        cfg.TopP,
		MaxTokens:   int(cfg.MaxOutputTokens),
		Stream:      true,
	}

	return func(yield func(string, error) bool) {
		stream, err := o.Client.CreateChatCompletionStream(ctx, req)
		if err != nil {
			yield("", fmt.Errorf("generation error: %w", err))
			return
		}
		defer stream.Close()

		for {
			resp, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield("", fmt.Errorf("generation stream error: %w", err))
				return
			}
			if len(resp.Choices) == 0 {
				continue
			}
			if chunk := resp.Choices[0].Delta.Content; chunk != "" {
				if !yield(chunk, nil) {
					return
				}
			}
		}
	}
}

// OpenAISpeech requests raw pcm output, which is 24 kHz 16-bit mono.
type OpenAISpeech struct {
	Client *openai.Client
	Model  string
	Voice  string
}

func (o *OpenAISpeech) Synthesize(ctx context.Context, text string) (*Speech, error) {
	if text == "" {
		return nil, ErrEmptySpeech
	}

	model := openai.SpeechModel(o.Model)
	if model == "" {
		model = openai.TTSModel1
	}
	voice := openai.SpeechVoice(o.Voice)
	if voice == "" {
		voice = openai.VoiceAlloy
	}

	resp, err := o.Client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          model,
		Input:          text,
		Voice:          voice,
		ResponseFormat: openai.SpeechResponseFormatPcm,
	})
	if err != nil {
		return nil, fmt.Errorf("speech request error: %w", err)
	}
	defer resp.Close()

	pcm, err := readAllHook(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to read speech response: %w", err)
	}
	if len(pcm)%2 == 1 {
		pcm = pcm[:len(pcm)-1]
	}
	if len(pcm) == 0 {
		return nil, ErrNoAudio
	}
	return &Speech{PCM: pcm, SampleRate: audio.SampleRate}, nil
}
