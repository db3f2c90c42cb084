package cache

import (
	"time"

	"portfolio-api/internal/audio"
)

// MaxKeyLength is the rune length a normalized prompt is truncated to.
// Prompts that share this prefix share a cache entry.
const MaxKeyLength = 100

// Entry is a previously computed reply. Audio is base64 PCM16LE and is
// omitted when synthesis failed. Rate is the clip's sample rate in Hz.
type Entry struct {
	Text  string `json:"text"`
	Audio string `json:"audio,omitempty"`
	Rate  int    `json:"rate,omitempty"`
}

func (e Entry) HasAudio() bool { return e.Audio != "" }

// SampleRate falls back to the default output rate for entries written
// before the rate was recorded.
func (e Entry) SampleRate() int {
	if e.Rate <= 0 {
		return audio.SampleRate
	}
	return e.Rate
}

// Record is the row backing one cached reply.
type Record struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	SessionID string    `gorm:"size:64;not null;uniqueIndex:idx_chat_cache_session_key" json:"session_id"`
	Key       string    `gorm:"column:cache_key;size:512;not null;uniqueIndex:idx_chat_cache_session_key" json:"key"`
	Value     string    `gorm:"type:text;not null" json:"value"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Record) TableName() string {
	return "chat_cache"
}
