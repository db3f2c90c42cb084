package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPath     string

	JWTSecret         string
	AdminEmail        string
	AdminPasswordHash string

	AllowedOrigins []string

	// Chat providers
	Provider       string
	GeminiKey      string
	VertexProject  string
	VertexLocation string
	OpenAIKey      string
	TextModel      string
	SpeechModel    string
	SpeechVoice    string
	SpeechBackend  string

	HistoryWindow int
	TextTimeout   time.Duration
	AudioTimeout  time.Duration

	ContentFile         string
	SpeechArchiveBucket string
}

const (
	defaultTextModel    = "gemini-3-flash-preview"
	defaultSpeechModel  = "gemini-2.5-flash-preview-tts"
	defaultSpeechVoice  = "Kore"
	defaultTextTimeout  = 20 * time.Second
	defaultAudioTimeout = 30 * time.Second
)

// LoadConfig reads settings from the environment. A .env file in the working
// directory is loaded first when present; real environment variables win.
func LoadConfig() Config {
	_ = godotenv.Load()

	return Config{
		DBDriver:   envOr("DB_DRIVER", "postgres"),
		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     os.Getenv("DB_PORT"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBPath:     envOr("DB_PATH", "portfolio.db"),

		JWTSecret:         os.Getenv("JWT_SECRET"),
		AdminEmail:        os.Getenv("ADMIN_EMAIL"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),

		AllowedOrigins: splitList(envOr("ALLOWED_ORIGINS", "http://localhost:3000")),

		Provider:       envOr("CHAT_PROVIDER", "gemini"),
		GeminiKey:      os.Getenv("GEMINI_KEY"),
		VertexProject:  os.Getenv("GOOGLE_CLOUD_PROJECT"),
		VertexLocation: envOr("GOOGLE_CLOUD_LOCATION", "global"),
		OpenAIKey:      os.Getenv("OPENAI_API_KEY"),
		TextModel:      envOr("CHAT_TEXT_MODEL", defaultTextModel),
		SpeechModel:    envOr("CHAT_SPEECH_MODEL", defaultSpeechModel),
		SpeechVoice:    envOr("CHAT_SPEECH_VOICE", defaultSpeechVoice),
		SpeechBackend:  envOr("CHAT_SPEECH_BACKEND", "genai"),

		HistoryWindow: envInt("CHAT_HISTORY_WINDOW", 1),
		TextTimeout:   envDuration("CHAT_TEXT_TIMEOUT", defaultTextTimeout),
		AudioTimeout:  envDuration("CHAT_AUDIO_TIMEOUT", defaultAudioTimeout),

		ContentFile:         envOr("CONTENT_FILE", "content.yaml"),
		SpeechArchiveBucket: os.Getenv("SPEECH_ARCHIVE_BUCKET"),
	}
}

// DSN builds the postgres connection string.
func (c Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=disable"
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

// envDuration accepts Go durations ("15s") or plain seconds ("15").
func envDuration(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil && n > 0 {
		return time.Duration(n) * time.Second
	}
	return fallback
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
