package chat

import (
	"context"
	"sync"
	"time"

	"portfolio-api/internal/audio"
)

// Turn is one submitted message. Text fields are final once Send returns;
// the audio handle resolves later, exactly once.
type Turn struct {
	Session string
	Seq     uint64
	Message string

	Text     string
	Cached   bool
	Fallback bool
	// Partial is set when the stream failed after emitting text.
	Partial bool
	Err     error

	mu          sync.Mutex
	states      []TurnState
	audioClip   string
	audioRate   int
	stale       bool
	textDoneAt  time.Time
	audioDoneAt time.Time
	audioDone   chan struct{}
}

func newTurn(session string, seq uint64, message string) *Turn {
	return &Turn{
		Session:   session,
		Seq:       seq,
		Message:   message,
		states:    []TurnState{StateIdle},
		audioDone: make(chan struct{}),
	}
}

func (t *Turn) setState(s TurnState) {
	t.mu.Lock()
	t.states = append(t.states, s)
	t.mu.Unlock()
}

func (t *Turn) State() TurnState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.states[len(t.states)-1]
}

// Transitions returns every state the turn has passed through, in order.
func (t *Turn) Transitions() []TurnState {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]TurnState, len(t.states))
	copy(out, t.states)
	return out
}

func (t *Turn) markTextDone() {
	t.mu.Lock()
	t.textDoneAt = time.Now()
	t.mu.Unlock()
}

// resolveAudio settles the audio handle. clip is base64 PCM or "".
func (t *Turn) resolveAudio(clip string, rate int, stale bool) {
	t.mu.Lock()
	t.audioClip = clip
	t.audioRate = rate
	t.stale = stale
	t.audioDoneAt = time.Now()
	t.mu.Unlock()
	close(t.audioDone)
}

// AudioDone is closed when the audio handle resolves.
func (t *Turn) AudioDone() <-chan struct{} {
	return t.audioDone
}

// Audio waits for the audio handle. ok is false when there is no clip: the
// synthesis failed, the text was empty, or a newer turn superseded this one.
func (t *Turn) Audio(ctx context.Context) (clip string, ok bool, err error) {
	select {
	case <-t.audioDone:
	case <-ctx.Done():
		return "", false, ctx.Err()
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.audioClip, t.audioClip != "", nil
}

// Stale reports whether the audio was withheld because a newer turn started
// in the same session.
func (t *Turn) Stale() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stale
}

// SampleRate is the rate of the resolved clip in Hz.
func (t *Turn) SampleRate() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.audioRate <= 0 {
		return audio.SampleRate
	}
	return t.audioRate
}

func (t *Turn) TextCompletedAt() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.textDoneAt
}

func (t *Turn) AudioResolvedAt() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.audioDoneAt
}
