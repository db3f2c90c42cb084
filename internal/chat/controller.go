package chat

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"sync"

	"portfolio-api/internal/audio"
	"portfolio-api/internal/middlewares"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

type ChatController struct {
	ChatService ChatServiceAPI
	Upgrader    websocket.Upgrader
}

func NewChatController(cs ChatServiceAPI, allowedOrigins []string) *ChatController {
	return &ChatController{
		ChatService: cs,
		Upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if a == "*" || strings.EqualFold(a, origin) {
				return true
			}
		}
		return false
	}
}

// POST /api/chat
func (cc *ChatController) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var b strings.Builder
	turn, err := cc.ChatService.Send(c.Request.Context(), middlewares.SessionID(c), req.Message, req.History, func(chunk string) {
		b.WriteString(chunk)
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"answer":   b.String(),
		"turn":     turn.Seq,
		"cached":   turn.Cached,
		"fallback": turn.Fallback,
		"state":    turn.State(),
	})
}

// POST /api/chat/stream
func (cc *ChatController) Stream(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": ErrEmptyMessage.Error()})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	ctx := c.Request.Context()
	turn, err := cc.ChatService.Send(ctx, middlewares.SessionID(c), req.Message, req.History, func(chunk string) {
		c.SSEvent("chunk", gin.H{"text": chunk})
		c.Writer.Flush()
	})
	if err != nil {
		c.SSEvent("error", gin.H{"error": err.Error()})
		c.Writer.Flush()
		return
	}

	c.SSEvent("done", gin.H{
		"answer":   turn.Text,
		"turn":     turn.Seq,
		"cached":   turn.Cached,
		"fallback": turn.Fallback,
	})
	c.Writer.Flush()

	clip, ok, err := turn.Audio(ctx)
	if err != nil {
		return // client went away
	}
	c.SSEvent("audio", audioPayload(turn, clip, ok))
	c.Writer.Flush()
}

func audioPayload(turn *Turn, clip string, ok bool) gin.H {
	out := gin.H{"turn": turn.Seq, "available": ok}
	if ok {
		out["audio"] = clip
		out["sample_rate"] = turn.SampleRate()
	}
	if turn.Stale() {
		out["stale"] = true
	}
	return out
}

type wsFrame struct {
	Type       string `json:"type"`
	Turn       uint64 `json:"turn,omitempty"`
	Text       string `json:"text,omitempty"`
	Cached     bool   `json:"cached,omitempty"`
	Fallback   bool   `json:"fallback,omitempty"`
	Available  bool   `json:"available,omitempty"`
	Stale      bool   `json:"stale,omitempty"`
	Audio      string `json:"audio,omitempty"`
	SampleRate int    `json:"sample_rate,omitempty"`
	Error      string `json:"error,omitempty"`
}

type wsWriter struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (w *wsWriter) send(f wsFrame) error {
	b, err := sonic.Marshal(f)
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.conn.WriteMessage(websocket.TextMessage, b)
}

// GET /api/chat/ws
func (cc *ChatController) WebSocket(c *gin.Context) {
	conn, err := cc.Upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	session := middlewares.SessionID(c)
	if session == "" || middlewares.SessionIssued(c) {
		if session == "" {
			session = uuid.NewString()
		}
		// Nobody can reuse a connection-scoped session once it closes.
		defer cc.ChatService.ReleaseSession(session)
	}

	ctx := c.Request.Context()
	w := &wsWriter{conn: conn}
	var pending sync.WaitGroup
	defer pending.Wait()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("websocket read error: %v", err)
			}
			return
		}

		var req ChatRequest
		if err := sonic.Unmarshal(data, &req); err != nil {
			_ = w.send(wsFrame{Type: "error", Error: "invalid message payload"})
			continue
		}

		turn, err := cc.ChatService.Send(ctx, session, req.Message, req.History, func(chunk string) {
			_ = w.send(wsFrame{Type: "chunk", Text: chunk})
		})
		if err != nil {
			_ = w.send(wsFrame{Type: "error", Error: err.Error()})
			continue
		}

		_ = w.send(wsFrame{Type: "done", Turn: turn.Seq, Text: turn.Text, Cached: turn.Cached, Fallback: turn.Fallback})

		pending.Add(1)
		go func(t *Turn) {
			defer pending.Done()
			clip, ok, err := t.Audio(ctx)
			if err != nil {
				return
			}
			f := wsFrame{Type: "audio", Turn: t.Seq, Available: ok, Stale: t.Stale()}
			if ok {
				f.Audio = clip
				f.SampleRate = t.SampleRate()
			}
			_ = w.send(f)
		}(turn)
	}
}

// GET /api/chat/speech?message=
func (cc *ChatController) Speech(c *gin.Context) {
	message := strings.TrimSpace(c.Query("message"))
	if message == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": ErrEmptyMessage.Error()})
		return
	}

	clip, rate, ok := cc.ChatService.CachedSpeech(c.Request.Context(), middlewares.SessionID(c), message)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no cached speech for this message"})
		return
	}

	pcm, err := audio.DecodePCM(clip)
	if err != nil {
		log.Printf("cached speech is not playable: %v", err)
		c.JSON(http.StatusNotFound, gin.H{"error": "no cached speech for this message"})
		return
	}

	c.Data(http.StatusOK, "audio/wav", audio.EncodeWAV(pcm, rate, audio.Channels, audio.BitsPerSample))
}

// POST /api/chat/tts
func (cc *ChatController) TTS(c *gin.Context) {
	var req TTSRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	speech, err := cc.ChatService.Synthesize(c.Request.Context(), req.Text)
	if err != nil {
		if errors.Is(err, ErrEmptySpeech) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Data(http.StatusOK, "audio/wav", audio.EncodeWAV(speech.PCM, speech.SampleRate, audio.Channels, audio.BitsPerSample))
}

// DELETE /api/chat/cache
func (cc *ChatController) ClearCache(c *gin.Context) {
	if err := cc.ChatService.ClearSession(c.Request.Context(), middlewares.SessionID(c)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "chat cache cleared"})
}
