package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"portfolio-api/internal/logs"

	"github.com/gin-gonic/gin"
)

type mockAdminService struct {
	token   string
	exp     time.Time
	authErr error

	exportName string
	exportData []byte
	exportErr  error

	purged   int64
	purgeErr error

	summary   *ReloadSummary
	reloadErr error

	speech    []string
	speechErr error
}

func (m *mockAdminService) Authenticate(string, string) (string, time.Time, error) {
	return m.token, m.exp, m.authErr
}
func (m *mockAdminService) ExportCache(context.Context) (string, []byte, error) {
	return m.exportName, m.exportData, m.exportErr
}
func (m *mockAdminService) PurgeCache(context.Context) (int64, error) { return m.purged, m.purgeErr }
func (m *mockAdminService) ReloadContent() (*ReloadSummary, error)   { return m.summary, m.reloadErr }
func (m *mockAdminService) ListSpeech(context.Context) ([]string, error) {
	return m.speech, m.speechErr
}

type recordingLogs struct{ entries []logs.SystemLog }

func (r *recordingLogs) Log(e logs.SystemLog, _ any) error {
	r.entries = append(r.entries, e)
	return nil
}

func (r *recordingLogs) has(action string) bool {
	for _, e := range r.entries {
		if e.Action == action {
			return true
		}
	}
	return false
}

func setupController(svc AdminServiceAPI) (*gin.Engine, *recordingLogs) {
	gin.SetMode(gin.TestMode)
	rec := &recordingLogs{}
	ac := &AdminController{AdminService: svc, LS: rec}

	r := gin.New()
	r.POST("/login", ac.Login)
	r.POST("/logout", ac.Logout)
	r.GET("/cache/export", ac.ExportCache)
	r.DELETE("/cache", ac.PurgeCache)
	r.POST("/content/reload", ac.ReloadContent)
	r.GET("/speech", ac.ListSpeech)
	return r, rec
}

func serve(r *gin.Engine, method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
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

func findCookie(res *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range res.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestAdminController_Login(t *testing.T) {
	svc := &mockAdminService{token: "signed.jwt.token", exp: time.Now().Add(time.Hour)}
	r, rec := setupController(svc)

	res := serve(r, http.MethodPost, "/login", `{"email":"hiep@example.com","password":"x"}`)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", res.Code, res.Body.String())
	}
	c := findCookie(res, "access_token")
	if c == nil || c.Value != "signed.jwt.token" || !c.HttpOnly {
		t.Fatalf("access cookie=%+v", c)
	}
	if !rec.has(actionLogin) {
		t.Fatal("expected login log entry")
	}
}

func TestAdminController_Login_Failures(t *testing.T) {
	r, rec := setupController(&mockAdminService{authErr: ErrInvalidCredentials})

	if res := serve(r, http.MethodPost, "/login", `{"email":"not-an-email","password":"x"}`); res.Code != http.StatusBadRequest {
		t.Fatalf("bad email: expected 400, got %d", res.Code)
	}
	res := serve(r, http.MethodPost, "/login", `{"email":"hiep@example.com","password":"wrong"}`)
	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.Code)
	}
	if findCookie(res, "access_token") != nil {
		t.Fatal("no cookie on failed login")
	}
	if !rec.has(actionLoginFailed) {
		t.Fatal("expected failed login log entry")
	}

	r, _ = setupController(&mockAdminService{authErr: ErrAdminNotConfigured})
	if res := serve(r, http.MethodPost, "/login", `{"email":"hiep@example.com","password":"x"}`); res.Code != http.StatusServiceUnavailable {
		t.Fatalf("unconfigured: expected 503, got %d", res.Code)
	}
}

func TestAdminController_Logout(t *testing.T) {
	r, _ := setupController(&mockAdminService{})
	res := serve(r, http.MethodPost, "/logout", "")
	c := findCookie(res, "access_token")
	if res.Code != http.StatusOK || c == nil || c.MaxAge >= 0 {
		t.Fatalf("expected cleared cookie, got %d %+v", res.Code, c)
	}
}

func TestAdminController_ExportCache(t *testing.T) {
	r, rec := setupController(&mockAdminService{exportName: "chat_cache_x.xlsx", exportData: []byte("PK")})

	res := serve(r, http.MethodGet, "/cache/export", "")
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if res.Header().Get("Content-Type") != xlsxContentType {
		t.Fatalf("content-type=%q", res.Header().Get("Content-Type"))
	}
	if !strings.Contains(res.Header().Get("Content-Disposition"), `filename="chat_cache_x.xlsx"`) {
		t.Fatalf("disposition=%q", res.Header().Get("Content-Disposition"))
	}
	if !rec.has(actionCacheExport) {
		t.Fatal("expected export log entry")
	}

	r, _ = setupController(&mockAdminService{exportErr: errors.New("db down")})
	if res := serve(r, http.MethodGet, "/cache/export", ""); res.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", res.Code)
	}
}

func TestAdminController_PurgeCache(t *testing.T) {
	r, rec := setupController(&mockAdminService{purged: 7})

	res := serve(r, http.MethodDelete, "/cache", "")
	if res.Code != http.StatusOK || !strings.Contains(res.Body.String(), `"deleted":7`) {
		t.Fatalf("got %d body=%s", res.Code, res.Body.String())
	}
	if !rec.has(actionCachePurge) {
		t.Fatal("expected purge log entry")
	}

	r, _ = setupController(&mockAdminService{purgeErr: errors.New("locked")})
	if res := serve(r, http.MethodDelete, "/cache", ""); res.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", res.Code)
	}
}

func TestAdminController_ReloadContent(t *testing.T) {
	r, rec := setupController(&mockAdminService{summary: &ReloadSummary{Projects: 3, Skills: 5}})

	res := serve(r, http.MethodPost, "/content/reload", "")
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	var out struct {
		Data ReloadSummary `json:"data"`
	}
	if err := json.Unmarshal(res.Body.Bytes(), &out); err != nil || out.Data.Projects != 3 || out.Data.Skills != 5 {
		t.Fatalf("body=%s err=%v", res.Body.String(), err)
	}
	if !rec.has(actionContentLoad) {
		t.Fatal("expected reload log entry")
	}

	r, _ = setupController(&mockAdminService{reloadErr: errors.New("yaml: bad")})
	if res := serve(r, http.MethodPost, "/content/reload", ""); res.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", res.Code)
	}
}

func TestAdminController_ListSpeech(t *testing.T) {
	r, _ := setupController(&mockAdminService{speech: []string{"speech/a.wav", "speech/b.wav"}})
	res := serve(r, http.MethodGet, "/speech", "")
	if res.Code != http.StatusOK || !strings.Contains(res.Body.String(), `"total":2`) {
		t.Fatalf("got %d body=%s", res.Code, res.Body.String())
	}

	r, _ = setupController(&mockAdminService{speechErr: ErrArchiveDisabled})
	if res := serve(r, http.MethodGet, "/speech", ""); res.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.Code)
	}

	r, _ = setupController(&mockAdminService{speechErr: errors.New("403")})
	if res := serve(r, http.MethodGet, "/speech", ""); res.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", res.Code)
	}
}

func TestRegisterRoutes_LoginUnlocksAdminRoutes(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	gin.SetMode(gin.TestMode)

	db := newTestDB(t)
	if err := db.AutoMigrate(&logs.SystemLog{}); err != nil {
		t.Fatalf("migrate logs: %v", err)
	}
	ls := &logs.LogService{DB: db}

	svc := &AdminService{
		Cache:        &fakeLister{},
		Email:        testAdminEmail,
		PasswordHash: mustHash(t, testPassword),
		JWTSecret:    testSecret,
	}
	r := gin.New()
	RegisterRoutes(r, svc, ls)

	if res := serve(r, http.MethodDelete, "/api/admin/cache", ""); res.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous purge: expected 401, got %d", res.Code)
	}

	login := serve(r, http.MethodPost, "/api/admin/login", `{"email":"hiep@example.com","password":"`+testPassword+`"}`)
	if login.Code != http.StatusOK {
		t.Fatalf("login: %d %s", login.Code, login.Body.String())
	}
	cookie := findCookie(login, "access_token")
	if cookie == nil {
		t.Fatal("missing access cookie")
	}

	if res := serve(r, http.MethodDelete, "/api/admin/cache", "", cookie); res.Code != http.StatusOK {
		t.Fatalf("purge with token: expected 200, got %d body=%s", res.Code, res.Body.String())
	}

	res := serve(r, http.MethodPost, "/api/admin/logs", `{"service":"admin"}`, cookie)
	if res.Code != http.StatusOK {
		t.Fatalf("logs: expected 200, got %d body=%s", res.Code, res.Body.String())
	}
	var out struct {
		Data  []logs.SystemLog `json:"data"`
		Total int64            `json:"total"`
	}
	if err := json.Unmarshal(res.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode logs: %v", err)
	}
	if out.Total != 2 {
		t.Fatalf("expected login + purge entries, got %d: %+v", out.Total, out.Data)
	}

	if res := serve(r, http.MethodGet, "/api/admin/speech", "", cookie); res.Code != http.StatusNotFound {
		t.Fatalf("speech without archive: expected 404, got %d", res.Code)
	}
}
