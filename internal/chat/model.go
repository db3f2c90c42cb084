package chat

import (
	"encoding/json"
	"strings"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage is one transcript line. The SPA labels assistant lines
// "model", which is accepted as an alias.
type ChatMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

func (r *Role) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "user":
		*r = RoleUser
	default:
		*r = RoleAssistant
	}
	return nil
}

type ChatRequest struct {
	Message string        `json:"message"`
	History []ChatMessage `json:"history"`
}

type TTSRequest struct {
	Text string `json:"text"`
}

// TurnState tracks one turn through the coordinator.
type TurnState int

const (
	StateIdle TurnState = iota
	StateCacheHit
	StateStreaming
	StateTextComplete
	StateAudioPending
	StateAudioComplete
	StateAudioFailed
	StateErrored
	StateDone
)

var turnStateNames = [...]string{
	StateIdle:          "idle",
	StateCacheHit:      "cache_hit",
	StateStreaming:     "streaming",
	StateTextComplete:  "text_complete",
	StateAudioPending:  "audio_pending",
	StateAudioComplete: "audio_complete",
	StateAudioFailed:   "audio_failed",
	StateErrored:       "errored",
	StateDone:          "done",
}

func (s TurnState) String() string {
	if s < 0 || int(s) >= len(turnStateNames) {
		return "unknown"
	}
	return turnStateNames[s]
}

func (s TurnState) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

const (
	FallbackMessage = "Alex hơi bận, thử lại nhé!"

	personaInstruction = "Bạn là Alex, trợ lý của Hiệp. Trả lời hóm hỉnh, SIÊU NGẮN (dưới 12 từ). Xưng Alex, gọi Bạn."

	DefaultHistoryWindow = 1
	maxOutputTokens      = 60
)

// SystemLog service/actions written per turn.
const (
	logService        = "chat"
	actionTurn        = "CHAT_TURN"
	actionCacheHit    = "CACHE_HIT"
	actionFallback    = "CHAT_FALLBACK"
	actionTTSFailed   = "TTS_FAILED"
	actionCacheClear  = "CACHE_CLEAR"
	actionArchiveFail = "ARCHIVE_FAILED"
)
