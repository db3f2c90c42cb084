package admin

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"portfolio-api/internal/cache"
	"portfolio-api/internal/profile"
	"portfolio-api/internal/util"

	"github.com/glebarez/sqlite"
	"github.com/golang-jwt/jwt/v5"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	testAdminEmail = "hiep@example.com"
	testPassword   = "s3cret-pass"
	testSecret     = "test-secret"
)

var testDBSeq uint64

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	id := atomic.AddUint64(&testDBSeq, 1)
	dsn := fmt.Sprintf("file:admin_test_%d?mode=memory&cache=shared", id)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	if err := db.AutoMigrate(&cache.Record{}); err != nil {
		t.Fatalf("migrate db: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func mustHash(t *testing.T, pw string) string {
	t.Helper()
	h, err := util.HashPassword(pw)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return h
}

type fakeLister struct {
	records []cache.Record
	err     error
	purged  int64
}

func (f *fakeLister) List(context.Context) ([]cache.Record, error) { return f.records, f.err }
func (f *fakeLister) DeleteAll(context.Context) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	n := int64(len(f.records))
	f.records = nil
	f.purged += n
	return n, nil
}

type fakeReloader struct {
	path    string
	content *profile.Content
	err     error
}

func (f *fakeReloader) Reload(path string) (*profile.Content, error) {
	f.path = path
	return f.content, f.err
}

type fakeArchiveLister struct {
	prefix string
	names  []string
	err    error
}

func (f *fakeArchiveLister) List(_ context.Context, prefix string) ([]string, error) {
	f.prefix = prefix
	return f.names, f.err
}

func TestAuthenticate_Success(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	old := nowHook
	nowHook = func() time.Time { return fixed }
	t.Cleanup(func() { nowHook = old })

	s := &AdminService{Email: testAdminEmail, PasswordHash: mustHash(t, testPassword), JWTSecret: testSecret, TokenTTL: time.Hour}

	token, exp, err := s.Authenticate("  HIEP@example.com ", testPassword)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if !exp.Equal(fixed.Add(time.Hour)) {
		t.Fatalf("exp=%v", exp)
	}

	claims := jwt.MapClaims{}
	_, err = jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	}, jwt.WithoutClaimsValidation())
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims["role"] != "admin" || claims["sub"] != testAdminEmail {
		t.Fatalf("claims=%v", claims)
	}
	if int64(claims["exp"].(float64)) != fixed.Add(time.Hour).Unix() {
		t.Fatalf("exp claim=%v", claims["exp"])
	}
}

func TestAuthenticate_Rejects(t *testing.T) {
	hash := mustHash(t, testPassword)
	s := &AdminService{Email: testAdminEmail, PasswordHash: hash, JWTSecret: testSecret}

	if _, _, err := s.Authenticate(testAdminEmail, "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password: %v", err)
	}
	if _, _, err := s.Authenticate("someone@else.com", testPassword); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong email: %v", err)
	}

	for _, bad := range []*AdminService{
		{PasswordHash: hash, JWTSecret: testSecret},
		{Email: testAdminEmail, JWTSecret: testSecret},
		{Email: testAdminEmail, PasswordHash: hash},
	} {
		if _, _, err := bad.Authenticate(testAdminEmail, testPassword); !errors.Is(err, ErrAdminNotConfigured) {
			t.Fatalf("expected ErrAdminNotConfigured, got %v", err)
		}
	}
}

func TestExportCache_Workbook(t *testing.T) {
	db := newTestDB(t)
	store := &cache.GormStore{DB: db}
	rc := cache.NewResponseCache(store)
	ctx := context.Background()

	rc.Store(ctx, "s1", "Xin chào", cache.Entry{Text: "Chào Bạn!", Audio: "AQA="})
	rc.Store(ctx, "s2", "Bạn là ai?", cache.Entry{Text: "Alex đây!"})
	if err := store.Set(ctx, "s3", "broken", "{not json"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	s := &AdminService{Cache: store}
	name, data, err := s.ExportCache(ctx)
	if err != nil {
		t.Fatalf("ExportCache: %v", err)
	}
	if len(name) < len("chat_cache_.xlsx") || name[len(name)-5:] != ".xlsx" {
		t.Fatalf("filename=%q", name)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(cacheSheet)
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected header + 3 rows, got %d: %v", len(rows), rows)
	}
	if rows[0][0] != "session_id" || rows[0][2] != "text" {
		t.Fatalf("header=%v", rows[0])
	}
	if rows[1][0] != "s1" || rows[1][1] != "xin chào" || rows[1][2] != "Chào Bạn!" {
		t.Fatalf("row 1=%v", rows[1])
	}
	if rows[2][2] != "Alex đây!" {
		t.Fatalf("row 2=%v", rows[2])
	}
	if rows[3][2] != "(unreadable entry)" {
		t.Fatalf("row 3=%v", rows[3])
	}
}

func TestExportCache_ListError(t *testing.T) {
	s := &AdminService{Cache: &fakeLister{err: errors.New("db down")}}
	if _, _, err := s.ExportCache(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestPurgeCache(t *testing.T) {
	db := newTestDB(t)
	store := &cache.GormStore{DB: db}
	ctx := context.Background()
	_ = store.Set(ctx, "s1", "a", `{"text":"x"}`)
	_ = store.Set(ctx, "s2", "b", `{"text":"y"}`)

	s := &AdminService{Cache: store}
	n, err := s.PurgeCache(ctx)
	if err != nil || n != 2 {
		t.Fatalf("PurgeCache = %d, %v", n, err)
	}
	if rows, _ := store.List(ctx); len(rows) != 0 {
		t.Fatalf("expected empty cache, got %d rows", len(rows))
	}
}

func TestReloadContent(t *testing.T) {
	r := &fakeReloader{content: &profile.Content{
		Projects:  []profile.Project{{Name: "a"}, {Name: "b"}},
		Skills:    []profile.Skill{{Name: "Go"}},
		Templates: []profile.Template{{Name: "AvantVN"}},
	}}
	s := &AdminService{Content: r, ContentFile: "content.yaml"}

	sum, err := s.ReloadContent()
	if err != nil {
		t.Fatalf("ReloadContent: %v", err)
	}
	if r.path != "content.yaml" || sum.Projects != 2 || sum.Skills != 1 || sum.Experiences != 0 || sum.Templates != 1 {
		t.Fatalf("summary=%+v path=%q", sum, r.path)
	}

	r.err = errors.New("yaml: bad")
	if _, err := s.ReloadContent(); err == nil {
		t.Fatal("expected reload error")
	}

	if _, err := (&AdminService{Content: r}).ReloadContent(); err == nil {
		t.Fatal("expected error without content file")
	}
}

func TestListSpeech(t *testing.T) {
	if _, err := (&AdminService{}).ListSpeech(context.Background()); !errors.Is(err, ErrArchiveDisabled) {
		t.Fatalf("expected ErrArchiveDisabled, got %v", err)
	}

	a := &fakeArchiveLister{names: []string{"speech/a.wav"}}
	names, err := (&AdminService{Archive: a}).ListSpeech(context.Background())
	if err != nil || len(names) != 1 || a.prefix != "speech/" {
		t.Fatalf("names=%v err=%v prefix=%q", names, err, a.prefix)
	}

	empty, err := (&AdminService{Archive: &fakeArchiveLister{}}).ListSpeech(context.Background())
	if err != nil || empty == nil {
		t.Fatalf("expected empty non-nil slice, got %v, %v", empty, err)
	}

	if _, err := (&AdminService{Archive: &fakeArchiveLister{err: errors.New("403")}}).ListSpeech(context.Background()); err == nil {
		t.Fatal("expected list error")
	}
}
