package cache

import (
	"context"
	"log"
	"strings"

	"github.com/bytedance/sonic"
)

var (
	marshalHook   = sonic.Marshal
	unmarshalHook = sonic.Unmarshal
)

// NormalizeKey lower-cases and trims a prompt, then truncates it to
// MaxKeyLength runes.
func NormalizeKey(message string) string {
	k := strings.TrimSpace(strings.ToLower(message))
	r := []rune(k)
	if len(r) > MaxKeyLength {
		return string(r[:MaxKeyLength])
	}
	return k
}

// ResponseCache maps normalized prompts to finished replies. It never
// surfaces storage errors: failed reads are misses and failed writes are
// dropped.
type ResponseCache struct {
	store Store
}

func NewResponseCache(store Store) *ResponseCache {
	return &ResponseCache{store: store}
}

func (c *ResponseCache) Lookup(ctx context.Context, session, message string) (Entry, bool) {
	key := NormalizeKey(message)
	if key == "" {
		return Entry{}, false
	}

	raw, ok, err := c.store.Get(ctx, session, key)
	if err != nil {
		log.Printf("chat cache read failed (session=%s): %v", session, err)
		return Entry{}, false
	}
	if !ok {
		return Entry{}, false
	}

	var e Entry
	if err := unmarshalHook([]byte(raw), &e); err != nil {
		log.Printf("chat cache entry corrupted (session=%s key=%q): %v", session, key, err)
		return Entry{}, false
	}
	if e.Text == "" {
		return Entry{}, false
	}
	return e, true
}

// Store writes an entry. It reports whether the write landed so callers can
// log it; a false return is not an error condition.
func (c *ResponseCache) Store(ctx context.Context, session, message string, e Entry) bool {
	key := NormalizeKey(message)
	if key == "" || e.Text == "" {
		return false
	}

	b, err := marshalHook(e)
	if err != nil {
		log.Printf("chat cache encode failed: %v", err)
		return false
	}
	if err := c.store.Set(ctx, session, key, string(b)); err != nil {
		log.Printf("chat cache write dropped (session=%s): %v", session, err)
		return false
	}
	return true
}

func (c *ResponseCache) Clear(ctx context.Context, session string) error {
	return c.store.DeleteSession(ctx, session)
}
