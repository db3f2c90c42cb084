package chat

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"portfolio-api/internal/audio"
	"portfolio-api/internal/cache"
	"portfolio-api/internal/logs"
	"portfolio-api/internal/util"
)

const (
	defaultTextTimeout  = 20 * time.Second
	defaultAudioTimeout = 30 * time.Second

	maxSessionPathRunes = 64
)

// Coordinator runs chat turns: cache lookup, streamed text, then speech
// synthesis in the background.
type Coordinator struct {
	Text    TextGenerator
	Speech  Synthesizer
	Cache   *cache.ResponseCache
	Profile SnapshotSource

	// Optional.
	Logs    LogServicePort
	Archive SpeechArchive

	HistoryWindow int
	TextTimeout   time.Duration
	AudioTimeout  time.Duration

	mu   sync.Mutex
	seqs map[string]uint64
	wg   sync.WaitGroup
}

// window is the number of prior messages sent with a prompt. Zero sends
// none; a negative value means unset.
func (c *Coordinator) window() int {
	if c.HistoryWindow < 0 {
		return DefaultHistoryWindow
	}
	return c.HistoryWindow
}

func (c *Coordinator) textTimeout() time.Duration {
	if c.TextTimeout <= 0 {
		return defaultTextTimeout
	}
	return c.TextTimeout
}

func (c *Coordinator) audioTimeout() time.Duration {
	if c.AudioTimeout <= 0 {
		return defaultAudioTimeout
	}
	return c.AudioTimeout
}

func (c *Coordinator) nextSeq(session string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.seqs == nil {
		c.seqs = make(map[string]uint64)
	}
	c.seqs[session]++
	return c.seqs[session]
}

// ReleaseSession forgets a session's turn sequence. Audio still pending for
// it resolves as stale.
func (c *Coordinator) ReleaseSession(session string) {
	c.mu.Lock()
	delete(c.seqs, session)
	c.mu.Unlock()
}

func (c *Coordinator) latestSeq(session string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seqs[session]
}

// Send runs one turn. onChunk receives every text fragment in order, all
// before Send returns. The only error is ErrEmptyMessage; provider failures
// surface as FallbackMessage or as a missing clip on the audio handle.
func (c *Coordinator) Send(ctx context.Context, session, message string, history []ChatMessage, onChunk func(string)) (*Turn, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, ErrEmptyMessage
	}
	if onChunk == nil {
		onChunk = func(string) {}
	}

	t := newTurn(session, c.nextSeq(session), message)

	if e, ok := c.Cache.Lookup(ctx, session, message); ok {
		t.setState(StateCacheHit)
		t.Text = e.Text
		t.Cached = true
		onChunk(e.Text)
		t.markTextDone()
		t.resolveAudio(e.Audio, e.SampleRate(), false)
		t.setState(StateDone)
		c.logTurn(t, "INFO", actionCacheHit, "answer served from cache", map[string]any{"has_audio": e.HasAudio()})
		return t, nil
	}

	t.setState(StateStreaming)
	text, emitted, err := c.streamText(ctx, message, history, onChunk)
	t.Err = err

	if err != nil && !emitted {
		t.setState(StateErrored)
		t.Text = FallbackMessage
		t.Fallback = true
		onChunk(FallbackMessage)
		t.markTextDone()
		t.resolveAudio("", 0, false)
		log.Printf("chat turn failed (session=%s seq=%d): %v", session, t.Seq, err)
		c.logTurn(t, "ERROR", actionFallback, "text generation failed", map[string]any{"error": err.Error()})
		return t, nil
	}

	t.Text = text
	t.Partial = err != nil
	t.setState(StateTextComplete)
	t.markTextDone()

	if text == "" {
		t.resolveAudio("", 0, false)
		t.setState(StateDone)
		c.logTurn(t, "WARN", actionTurn, "model returned no text", nil)
		return t, nil
	}

	meta := map[string]any{"chars": len([]rune(text))}
	if t.Partial {
		meta["partial"] = true
		meta["error"] = err.Error()
	}
	c.logTurn(t, "INFO", actionTurn, util.ClampRunes(message, 100), meta)

	t.setState(StateAudioPending)
	c.wg.Add(1)
	go c.synthesize(context.WithoutCancel(ctx), t, !t.Partial)

	return t, nil
}

func (c *Coordinator) streamText(ctx context.Context, message string, history []ChatMessage, onChunk func(string)) (string, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, c.textTimeout())
	defer cancel()

	snapshot := ""
	if c.Profile != nil {
		s, err := c.Profile.Snapshot(ctx)
		if err != nil {
			log.Printf("profile snapshot unavailable: %v", err)
		}
		snapshot = s
	}

	prompt := BuildPrompt(history, message, c.window())
	cfg := defaultGenerationConfig(systemInstruction(snapshot))

	var b strings.Builder
	emitted := false
	for chunk, err := range c.Text.Stream(ctx, prompt, cfg) {
		if err != nil {
			return b.String(), emitted, err
		}
		if chunk == "" {
			continue
		}
		b.WriteString(chunk)
		emitted = true
		onChunk(chunk)
	}
	if err := ctx.Err(); err != nil {
		return b.String(), emitted, fmt.Errorf("generation timed out: %w", err)
	}
	return b.String(), emitted, nil
}

func (c *Coordinator) synthesize(ctx context.Context, t *Turn, cacheable bool) {
	defer c.wg.Done()

	sctx, cancel := context.WithTimeout(ctx, c.audioTimeout())
	speech, err := c.Speech.Synthesize(sctx, t.Text)
	cancel()

	clip, rate := "", 0
	if err == nil {
		clip, rate = base64.StdEncoding.EncodeToString(speech.PCM), speech.SampleRate
		if _, derr := audio.Decode(clip); derr != nil {
			err = fmt.Errorf("invalid speech payload: %w", derr)
			clip, rate = "", 0
		}
	}

	if err != nil {
		t.setState(StateAudioFailed)
		log.Printf("speech synthesis failed (session=%s seq=%d): %v", t.Session, t.Seq, err)
		c.logTurn(t, "WARN", actionTTSFailed, "speech unavailable", map[string]any{"error": err.Error()})
	} else {
		t.setState(StateAudioComplete)
	}

	if cacheable {
		c.Cache.Store(ctx, t.Session, t.Message, cache.Entry{Text: t.Text, Audio: clip, Rate: rate})
	}
	if clip != "" && c.Archive != nil {
		c.archive(ctx, t, speech)
	}

	stale := c.latestSeq(t.Session) != t.Seq
	if stale {
		t.resolveAudio("", 0, true)
	} else {
		t.resolveAudio(clip, rate, false)
	}
	t.setState(StateDone)
}

func (c *Coordinator) archive(ctx context.Context, t *Turn, speech *Speech) {
	ctx, cancel := context.WithTimeout(ctx, c.audioTimeout())
	defer cancel()

	sum := sha256.Sum256([]byte(cache.NormalizeKey(t.Message) + "\x00" + t.Text))
	object := archiveObjectName(t.Session, sum[:])
	wav := audio.EncodeWAV(speech.PCM, speech.SampleRate, audio.Channels, audio.BitsPerSample)
	if err := c.Archive.Archive(ctx, object, wav); err != nil {
		log.Printf("speech archive upload failed (%s): %v", object, err)
		c.logTurn(t, "WARN", actionArchiveFail, "speech archive upload failed", map[string]any{"object": object, "error": err.Error()})
	}
}

// archiveObjectName groups clips by session. Session ids come from a client
// cookie, so they are sanitized before becoming part of an object path.
func archiveObjectName(session string, digest []byte) string {
	return "speech/" + util.SanitizePart(util.ClampRunes(session, maxSessionPathRunes)) + "/" + hex.EncodeToString(digest) + ".wav"
}

// Synthesize speaks arbitrary text without touching the cache.
func (c *Coordinator) Synthesize(ctx context.Context, text string) (*Speech, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptySpeech
	}
	ctx, cancel := context.WithTimeout(ctx, c.audioTimeout())
	defer cancel()
	return c.Speech.Synthesize(ctx, text)
}

// CachedSpeech returns the cached clip for a message and its sample rate.
func (c *Coordinator) CachedSpeech(ctx context.Context, session, message string) (string, int, bool) {
	e, ok := c.Cache.Lookup(ctx, session, message)
	if !ok || !e.HasAudio() {
		return "", 0, false
	}
	return e.Audio, e.SampleRate(), true
}

func (c *Coordinator) ClearSession(ctx context.Context, session string) error {
	if err := c.Cache.Clear(ctx, session); err != nil {
		return err
	}
	c.ReleaseSession(session)

	sid := session
	c.log(logs.SystemLog{Level: "INFO", Service: logService, Action: actionCacheClear, Message: "session cache cleared", SessionID: &sid}, nil)
	return nil
}

// Wait blocks until background synthesis has finished.
func (c *Coordinator) Wait() {
	c.wg.Wait()
}

func (c *Coordinator) logTurn(t *Turn, level, action, msg string, meta map[string]any) {
	if c.Logs == nil {
		return
	}
	if meta == nil {
		meta = map[string]any{}
	}
	meta["seq"] = t.Seq
	sid := t.Session
	c.log(logs.SystemLog{Level: level, Service: logService, Action: action, Message: msg, SessionID: &sid}, meta)
}

func (c *Coordinator) log(entry logs.SystemLog, meta any) {
	if c.Logs == nil {
		return
	}
	if err := c.Logs.Log(entry, meta); err != nil {
		fmt.Printf("Failed to insert log: %v\n", err)
	}
}
