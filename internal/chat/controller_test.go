package chat

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"portfolio-api/internal/middlewares"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

func setupChatRouter(h *harness) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r, h.c, []string{"http://localhost:5173"})
	return r
}

func doJSON(r *gin.Engine, method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	res := httptest.NewRecorder()
	r.ServeHTTP(res, req)
	return res
}

func sessionCookie(t *testing.T, res *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range res.Result().Cookies() {
		if c.Name == middlewares.SessionCookie {
			return c
		}
	}
	t.Fatalf("no session cookie in response, headers=%v", res.Header())
	return nil
}

func TestChatController_Chat_200(t *testing.T) {
	h := newHarness("Chào ", "Bạn!")
	r := setupChatRouter(h)

	res := doJSON(r, http.MethodPost, "/api/chat", `{"message":"Xin chào","history":[{"role":"model","content":"hi"}]}`)
	h.c.Wait()
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", res.Code, res.Body.String())
	}

	var out struct {
		Answer   string `json:"answer"`
		Turn     uint64 `json:"turn"`
		Cached   bool   `json:"cached"`
		Fallback bool   `json:"fallback"`
	}
	if err := json.Unmarshal(res.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Answer != "Chào Bạn!" || out.Turn != 1 || out.Cached || out.Fallback {
		t.Fatalf("unexpected body %+v", out)
	}
	if h.text.prompts[0] != "A: hi\nU: Xin chào" {
		t.Fatalf("history not forwarded: %q", h.text.prompts[0])
	}
	sessionCookie(t, res)
}

func TestChatController_Chat_400(t *testing.T) {
	h := newHarness("x")
	r := setupChatRouter(h)

	if res := doJSON(r, http.MethodPost, "/api/chat", `{"message":"   "}`); res.Code != http.StatusBadRequest {
		t.Fatalf("blank message: expected 400, got %d", res.Code)
	}
	if res := doJSON(r, http.MethodPost, "/api/chat", `{bad`); res.Code != http.StatusBadRequest {
		t.Fatalf("bad json: expected 400, got %d", res.Code)
	}
	if h.text.Calls() != 0 {
		t.Fatal("no generation expected")
	}
}

func TestChatController_Chat_FallbackIs200(t *testing.T) {
	h := newHarness()
	h.text.err = errors.New("down")
	r := setupChatRouter(h)

	res := doJSON(r, http.MethodPost, "/api/chat", `{"message":"hi"}`)
	h.c.Wait()
	if res.Code != http.StatusOK || !strings.Contains(res.Body.String(), `"fallback":true`) {
		t.Fatalf("expected 200 fallback, got %d body=%s", res.Code, res.Body.String())
	}
}

func TestChatController_Stream_SSE(t *testing.T) {
	h := newHarness("Chào ", "Bạn!")
	r := setupChatRouter(h)

	res := doJSON(r, http.MethodPost, "/api/chat/stream", `{"message":"Xin chào"}`)
	h.c.Wait()
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if ct := res.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		t.Fatalf("content-type=%q", ct)
	}

	body := res.Body.String()
	iChunk := strings.Index(body, "event:chunk")
	iDone := strings.Index(body, "event:done")
	iAudio := strings.Index(body, "event:audio")
	if iChunk < 0 || iDone < iChunk || iAudio < iDone {
		t.Fatalf("events out of order:\n%s", body)
	}
	if strings.Count(body, "event:chunk") != 2 {
		t.Fatalf("expected two chunk events:\n%s", body)
	}
	if !strings.Contains(body, `"available":true`) || !strings.Contains(body, `"sample_rate":24000`) {
		t.Fatalf("audio event missing clip:\n%s", body)
	}
}

func TestChatController_Stream_400(t *testing.T) {
	h := newHarness("x")
	r := setupChatRouter(h)

	if res := doJSON(r, http.MethodPost, "/api/chat/stream", `{"message":""}`); res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestChatController_Speech(t *testing.T) {
	h := newHarness("reply")
	h.speech.rate = 48000
	r := setupChatRouter(h)

	first := doJSON(r, http.MethodPost, "/api/chat", `{"message":"Xin chào"}`)
	h.c.Wait()
	cookie := sessionCookie(t, first)

	res := doJSON(r, http.MethodGet, "/api/chat/speech?message="+url.QueryEscape("xin chào"), "", cookie)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", res.Code, res.Body.String())
	}
	if res.Header().Get("Content-Type") != "audio/wav" || !bytes.HasPrefix(res.Body.Bytes(), []byte("RIFF")) {
		t.Fatalf("expected wav body, got %q", res.Header().Get("Content-Type"))
	}
	if rate := binary.LittleEndian.Uint32(res.Body.Bytes()[24:28]); rate != 48000 {
		t.Fatalf("expected the synthesized sample rate in the WAV header, got %d", rate)
	}

	if res := doJSON(r, http.MethodGet, "/api/chat/speech?message=other", "", cookie); res.Code != http.StatusNotFound {
		t.Fatalf("uncached: expected 404, got %d", res.Code)
	}
	if res := doJSON(r, http.MethodGet, "/api/chat/speech?message=xin+ch%C3%A0o", ""); res.Code != http.StatusNotFound {
		t.Fatalf("other session: expected 404, got %d", res.Code)
	}
	if res := doJSON(r, http.MethodGet, "/api/chat/speech", "", cookie); res.Code != http.StatusBadRequest {
		t.Fatalf("missing message: expected 400, got %d", res.Code)
	}
}

func TestChatController_TTS(t *testing.T) {
	h := newHarness()
	r := setupChatRouter(h)

	res := doJSON(r, http.MethodPost, "/api/chat/tts", `{"text":"xin chào"}`)
	if res.Code != http.StatusOK || !bytes.HasPrefix(res.Body.Bytes(), []byte("RIFF")) {
		t.Fatalf("expected wav, got %d", res.Code)
	}

	if res := doJSON(r, http.MethodPost, "/api/chat/tts", `{"text":" "}`); res.Code != http.StatusBadRequest {
		t.Fatalf("blank text: expected 400, got %d", res.Code)
	}
	if res := doJSON(r, http.MethodPost, "/api/chat/tts", `nope`); res.Code != http.StatusBadRequest {
		t.Fatalf("bad json: expected 400, got %d", res.Code)
	}

	h.speech.err = errors.New("tts down")
	if res := doJSON(r, http.MethodPost, "/api/chat/tts", `{"text":"x"}`); res.Code != http.StatusInternalServerError {
		t.Fatalf("provider error: expected 500, got %d", res.Code)
	}
}

func TestChatController_ClearCache(t *testing.T) {
	h := newHarness("reply")
	r := setupChatRouter(h)

	first := doJSON(r, http.MethodPost, "/api/chat", `{"message":"hi"}`)
	h.c.Wait()
	cookie := sessionCookie(t, first)
	if h.store.Len(cookie.Value) != 1 {
		t.Fatalf("expected cached reply for session")
	}

	res := doJSON(r, http.MethodDelete, "/api/chat/cache", "", cookie)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if h.store.Len(cookie.Value) != 0 {
		t.Fatal("session cache should be empty")
	}
}

func dialWS(t *testing.T, srv *httptest.Server, origin string, cookies ...*http.Cookie) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	u := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/chat/ws"
	hdr := http.Header{}
	if origin != "" {
		hdr.Set("Origin", origin)
	}
	for _, c := range cookies {
		hdr.Add("Cookie", (&http.Cookie{Name: c.Name, Value: c.Value}).String())
	}
	return websocket.DefaultDialer.Dial(u, hdr)
}

func trackedSessions(h *harness) int {
	h.c.mu.Lock()
	defer h.c.mu.Unlock()
	return len(h.c.seqs)
}

// chatOverWS sends one message and reads frames up to its audio frame.
func chatOverWS(t *testing.T, conn *websocket.Conn, message string) {
	t.Helper()
	if err := conn.WriteJSON(ChatRequest{Message: message}); err != nil {
		t.Fatalf("write: %v", err)
	}
	for {
		if f := readFrame(t, conn); f.Type == "audio" {
			return
		}
	}
}

func readFrame(t *testing.T, conn *websocket.Conn) wsFrame {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var f wsFrame
	if err := conn.ReadJSON(&f); err != nil {
		t.Fatalf("read frame: %v", err)
	}
	return f
}

func TestChatController_WebSocket(t *testing.T) {
	h := newHarness("Chào ", "Bạn!")
	srv := httptest.NewServer(setupChatRouter(h))
	defer srv.Close()

	conn, _, err := dialWS(t, srv, "http://localhost:5173")
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"message":"Xin chào"}`)); err != nil {
		t.Fatalf("write: %v", err)
	}

	var text strings.Builder
	var done, audioFrame *wsFrame
	for audioFrame == nil {
		f := readFrame(t, conn)
		switch f.Type {
		case "chunk":
			if done != nil {
				t.Fatal("chunk after done")
			}
			text.WriteString(f.Text)
		case "done":
			done = &f
		case "audio":
			if done == nil {
				t.Fatal("audio before done")
			}
			audioFrame = &f
		default:
			t.Fatalf("unexpected frame %+v", f)
		}
	}
	if text.String() != "Chào Bạn!" || done.Text != "Chào Bạn!" || done.Turn != 1 {
		t.Fatalf("text=%q done=%+v", text.String(), done)
	}
	if !audioFrame.Available || audioFrame.Audio == "" || audioFrame.SampleRate != 24000 {
		t.Fatalf("audio frame=%+v", audioFrame)
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`not json`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if f := readFrame(t, conn); f.Type != "error" {
		t.Fatalf("expected error frame, got %+v", f)
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"message":" "}`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if f := readFrame(t, conn); f.Type != "error" || f.Error != ErrEmptyMessage.Error() {
		t.Fatalf("expected empty message error, got %+v", f)
	}

	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	h.c.Wait()
}

func TestChatController_WebSocket_ReleasesMintedSessionOnClose(t *testing.T) {
	h := newHarness("reply")
	srv := httptest.NewServer(setupChatRouter(h))
	defer srv.Close()

	conn, _, err := dialWS(t, srv, "http://localhost:5173")
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	chatOverWS(t, conn, "hi")
	if n := trackedSessions(h); n != 1 {
		t.Fatalf("expected one tracked session, got %d", n)
	}

	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for trackedSessions(h) != 0 {
		if time.Now().After(deadline) {
			t.Fatal("session sequence still tracked after the socket closed")
		}
		time.Sleep(10 * time.Millisecond)
	}
	h.c.Wait()
}

func TestChatController_WebSocket_KeepsCookieSession(t *testing.T) {
	h := newHarness("reply")
	r := setupChatRouter(h)
	srv := httptest.NewServer(r)
	defer srv.Close()

	first := doJSON(r, http.MethodPost, "/api/chat", `{"message":"first"}`)
	h.c.Wait()
	cookie := sessionCookie(t, first)

	conn, _, err := dialWS(t, srv, "http://localhost:5173", cookie)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	chatOverWS(t, conn, "second")
	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	conn.Close()
	h.c.Wait()

	// The HTTP turn and the socket turn share the cookie session.
	time.Sleep(50 * time.Millisecond)
	if got := h.c.latestSeq(cookie.Value); got != 2 {
		t.Fatalf("expected the cookie session to keep its sequence, got %d", got)
	}
}

func TestChatController_WebSocket_RejectsForeignOrigin(t *testing.T) {
	h := newHarness("x")
	srv := httptest.NewServer(setupChatRouter(h))
	defer srv.Close()

	conn, resp, err := dialWS(t, srv, "https://evil.example")
	if err == nil {
		conn.Close()
		t.Fatal("expected handshake to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %+v", resp)
	}
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"https://hiep.dev"})
	cases := map[string]bool{
		"":                 true,
		"https://hiep.dev": true,
		"HTTPS://HIEP.DEV": true,
		"https://evil.dev": false,
	}
	for origin, want := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if origin != "" {
			req.Header.Set("Origin", origin)
		}
		if got := check(req); got != want {
			t.Fatalf("origin %q: got %v want %v", origin, got, want)
		}
	}
	if !originChecker([]string{"*"})(httptest.NewRequest(http.MethodGet, "/", nil)) {
		t.Fatal("wildcard should allow all")
	}
}
