package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"portfolio-api/internal/audio"

	"github.com/tidwall/gjson"
	"golang.org/x/oauth2/google"
)

var (
	defaultHTTPClientHook = func(ctx context.Context) (*http.Client, error) {
		return google.DefaultClient(ctx, "https://www.googleapis.com/auth/cloud-platform")
	}
	httpDoHook = func(c *http.Client, req *http.Request) (*http.Response, error) {
		return c.Do(req)
	}
	readAllHook = io.ReadAll
)

// VertexSpeech calls the Vertex AI generateContent REST endpoint with
// Application Default Credentials.
type VertexSpeech struct {
	ProjectID string
	Location  string
	Model     string
	Voice     string
}

type vertexPart struct {
	Text string `json:"text"`
}

type vertexContent struct {
	Role  string       `json:"role"`
	Parts []vertexPart `json:"parts"`
}

type vertexRequest struct {
	Contents         []vertexContent `json:"contents"`
	GenerationConfig map[string]any  `json:"generationConfig"`
}

func (v *VertexSpeech) endpoint(project, location string) string {
	host := "aiplatform.googleapis.com"
	if location != "global" {
		host = location + "-aiplatform.googleapis.com"
	}
	return fmt.Sprintf("https://%s/v1/projects/%s/locations/%s/publishers/google/models/%s:generateContent",
		host, project, location, v.Model)
}

func (v *VertexSpeech) Synthesize(ctx context.Context, text string) (*Speech, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptySpeech
	}

	project := v.ProjectID
	if project == "" {
		project = os.Getenv("GOOGLE_CLOUD_PROJECT")
	}
	if project == "" {
		return nil, fmt.Errorf("missing project id")
	}
	location := v.Location
	if location == "" {
		location = "global"
	}

	body, err := json.Marshal(vertexRequest{
		Contents: []vertexContent{{Role: "user", Parts: []vertexPart{{Text: text}}}},
		GenerationConfig: map[string]any{
			"responseModalities": []string{"AUDIO"},
			"speechConfig": map[string]any{
				"voiceConfig": map[string]any{
					"prebuiltVoiceConfig": map[string]string{"voiceName": v.Voice},
				},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tts request: %w", err)
	}

	client, err := defaultHTTPClientHook(ctx)
	if err != nil {
		return nil, fmt.Errorf("adc auth error: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.endpoint(project, location), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build tts request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpDoHook(client, req)
	if err != nil {
		return nil, fmt.Errorf("vertex tts request error: %w", err)
	}
	defer resp.Body.Close()

	raw, err := readAllHook(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read tts response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("vertex tts failed (%d): %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var (
		data string
		mime string
	)
	gjson.GetBytes(raw, "candidates.0.content.parts").ForEach(func(_, part gjson.Result) bool {
		if d := part.Get("inlineData.data").String(); d != "" {
			data = d
			mime = part.Get("inlineData.mimeType").String()
			return false
		}
		return true
	})
	if data == "" {
		return nil, ErrNoAudio
	}

	pcm, err := audio.DecodePCM(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode tts audio: %w", err)
	}
	rate := audio.ParseRateFromMime(mime)
	if rate == 0 {
		rate = audio.SampleRate
	}
	return &Speech{PCM: pcm, SampleRate: rate}, nil
}
