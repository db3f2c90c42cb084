package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"portfolio-api/internal/cache"
	"portfolio-api/internal/middlewares"
	"portfolio-api/internal/util"

	"github.com/bytedance/sonic"
	"github.com/golang-jwt/jwt/v5"
	"github.com/xuri/excelize/v2"
)

const (
	defaultTokenTTL = 12 * time.Hour
	cacheSheet      = "Cache"
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var nowHook = time.Now

type AdminService struct {
	Cache       cache.Lister
	Content     ContentReloader
	ContentFile string
	// Archive is nil when no bucket is configured.
	Archive ArchiveLister

	Email        string
	PasswordHash string
	JWTSecret    string
	TokenTTL     time.Duration
}

// Authenticate checks the single configured admin account and returns a
// signed access token.
func (s *AdminService) Authenticate(email, password string) (string, time.Time, error) {
	if s.Email == "" || s.PasswordHash == "" || s.JWTSecret == "" {
		return "", time.Time{}, ErrAdminNotConfigured
	}
	if !strings.EqualFold(strings.TrimSpace(email), s.Email) {
		return "", time.Time{}, ErrInvalidCredentials
	}
	if err := util.VerifyPassword(password, s.PasswordHash); err != nil {
		return "", time.Time{}, ErrInvalidCredentials
	}

	ttl := s.TokenTTL
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	exp := nowHook().Add(ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  s.Email,
		"role": middlewares.RoleAdmin,
		"exp":  exp.Unix(),
	})
	signed, err := token.SignedString([]byte(s.JWTSecret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, exp, nil
}

// ExportCache renders every cached reply as an xlsx workbook.
func (s *AdminService) ExportCache(ctx context.Context) (string, []byte, error) {
	records, err := s.Cache.List(ctx)
	if err != nil {
		return "", nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", cacheSheet); err != nil {
		return "", nil, err
	}
	_ = f.SetSheetRow(cacheSheet, "A1", &[]interface{}{"session_id", "key", "text", "has_audio", "updated_at"})

	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		_ = f.SetCellStyle(cacheSheet, "A1", "E1", style)
	}
	_ = f.SetColWidth(cacheSheet, "A", "A", 40)
	_ = f.SetColWidth(cacheSheet, "B", "C", 60)
	_ = f.SetColWidth(cacheSheet, "E", "E", 22)

	for i, rec := range records {
		var e cache.Entry
		if err := sonic.UnmarshalString(rec.Value, &e); err != nil {
			e = cache.Entry{Text: "(unreadable entry)"}
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return "", nil, err
		}
		row := []interface{}{rec.SessionID, rec.Key, e.Text, e.HasAudio(), rec.UpdatedAt.UTC().Format(time.RFC3339)}
		if err := f.SetSheetRow(cacheSheet, cell, &row); err != nil {
			return "", nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return "", nil, fmt.Errorf("failed to render workbook: %w", err)
	}

	filename := fmt.Sprintf("chat_cache_%s.xlsx", nowHook().Format("20060102_150405"))
	return filename, buf.Bytes(), nil
}

func (s *AdminService) PurgeCache(ctx context.Context) (int64, error) {
	return s.Cache.DeleteAll(ctx)
}

func (s *AdminService) ReloadContent() (*ReloadSummary, error) {
	if s.ContentFile == "" {
		return nil, errors.New("content file is not configured")
	}
	c, err := s.Content.Reload(s.ContentFile)
	if err != nil {
		return nil, err
	}
	return &ReloadSummary{
		Projects:     len(c.Projects),
		Skills:       len(c.Skills),
		Experiences:  len(c.Experiences),
		Templates:    len(c.Templates),
		Testimonials: len(c.Testimonials),
	}, nil
}

func (s *AdminService) ListSpeech(ctx context.Context) ([]string, error) {
	if s.Archive == nil {
		return nil, ErrArchiveDisabled
	}
	names, err := s.Archive.List(ctx, speechObjectPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list speech archive: %w", err)
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}
