package chat

import (
	"context"

	"portfolio-api/internal/logs"
	"portfolio-api/internal/profile"
	"portfolio-api/internal/util"
)

// SnapshotSource supplies the biographical context for the system instruction.
type SnapshotSource interface {
	Snapshot(ctx context.Context) (string, error)
}

type LogServicePort interface {
	Log(entry logs.SystemLog, payload any) error
}

// SpeechArchive stores synthesized clips as WAV objects.
type SpeechArchive interface {
	Archive(ctx context.Context, object string, wav []byte) error
}

// ChatServiceAPI is what the transports need from the coordinator.
type ChatServiceAPI interface {
	Send(ctx context.Context, session, message string, history []ChatMessage, onChunk func(string)) (*Turn, error)
	Synthesize(ctx context.Context, text string) (*Speech, error)
	CachedSpeech(ctx context.Context, session, message string) (clip string, rate int, ok bool)
	ClearSession(ctx context.Context, session string) error
	ReleaseSession(session string)
}

var (
	_ SnapshotSource = (*profile.ProfileService)(nil)
	_ LogServicePort = (*logs.LogService)(nil)
	_ SpeechArchive  = (*util.GCSArchive)(nil)
	_ ChatServiceAPI = (*Coordinator)(nil)
)
