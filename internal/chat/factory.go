package chat

import (
	"context"
	"fmt"
	"strings"

	"portfolio-api/config"

	openai "github.com/sashabaranov/go-openai"
	"google.golang.org/genai"
)

var newGenAIClientHook = genai.NewClient

const (
	ProviderGemini = "gemini"
	ProviderVertex = "vertex"
	ProviderOpenAI = "openai"

	SpeechBackendGenAI      = "genai"
	SpeechBackendVertexREST = "vertex-rest"
	SpeechBackendOpenAI     = "openai"
)

// NewProviders builds the text and speech backends selected by cfg.
func NewProviders(ctx context.Context, cfg config.Config) (TextGenerator, Synthesizer, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))

	switch provider {
	case ProviderOpenAI:
		if cfg.OpenAIKey == "" {
			return nil, nil, fmt.Errorf("OPENAI_API_KEY is required for the openai provider")
		}
		client := openai.NewClient(cfg.OpenAIKey)
		text := &OpenAIText{Client: client, Model: openAIModel(cfg.TextModel, openai.GPT4oMini)}

		switch strings.ToLower(cfg.SpeechBackend) {
		case SpeechBackendVertexREST:
			return text, vertexSpeech(cfg), nil
		default:
			return text, &OpenAISpeech{
				Client: client,
				Model:  openAIModel(cfg.SpeechModel, ""),
				Voice:  openAIVoice(cfg.SpeechVoice),
			}, nil
		}

	case ProviderGemini, ProviderVertex, "":
		cc := &genai.ClientConfig{}
		if provider != ProviderVertex && cfg.GeminiKey != "" {
			cc.Backend = genai.BackendGeminiAPI
			cc.APIKey = cfg.GeminiKey
		} else {
			cc.Backend = genai.BackendVertexAI
			cc.Project = cfg.VertexProject
			cc.Location = cfg.VertexLocation
		}
		client, err := newGenAIClientHook(ctx, cc)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create genai client: %w", err)
		}
		text := &GeminiText{Client: client, Model: cfg.TextModel}

		switch strings.ToLower(cfg.SpeechBackend) {
		case SpeechBackendVertexREST:
			return text, vertexSpeech(cfg), nil
		case SpeechBackendOpenAI:
			if cfg.OpenAIKey == "" {
				return nil, nil, fmt.Errorf("OPENAI_API_KEY is required for openai speech")
			}
			return text, &OpenAISpeech{Client: openai.NewClient(cfg.OpenAIKey), Voice: openAIVoice(cfg.SpeechVoice)}, nil
		default:
			return text, &GeminiSpeech{Client: client, Model: cfg.SpeechModel, Voice: cfg.SpeechVoice}, nil
		}
	}

	return nil, nil, fmt.Errorf("unknown chat provider %q", cfg.Provider)
}

func vertexSpeech(cfg config.Config) *VertexSpeech {
	return &VertexSpeech{
		ProjectID: cfg.VertexProject,
		Location:  cfg.VertexLocation,
		Model:     cfg.SpeechModel,
		Voice:     cfg.SpeechVoice,
	}
}

// Gemini model names are the config defaults; they mean nothing to OpenAI.
func openAIModel(name, fallback string) string {
	if name == "" || strings.HasPrefix(strings.ToLower(name), "gemini") {
		return fallback
	}
	return name
}

// openAIVoice drops Gemini prebuilt voice names such as "Kore".
func openAIVoice(name string) string {
	switch strings.ToLower(name) {
	case "alloy", "ash", "ballad", "coral", "echo", "fable", "onyx", "nova", "sage", "shimmer", "verse":
		return strings.ToLower(name)
	}
	return ""
}
