package admin

import (
	"context"
	"time"

	"portfolio-api/internal/cache"
	"portfolio-api/internal/logs"
	"portfolio-api/internal/profile"
	"portfolio-api/internal/util"
)

type AdminServiceAPI interface {
	Authenticate(email, password string) (token string, expires time.Time, err error)
	ExportCache(ctx context.Context) (filename string, out []byte, err error)
	PurgeCache(ctx context.Context) (int64, error)
	ReloadContent() (*ReloadSummary, error)
	ListSpeech(ctx context.Context) ([]string, error)
}

type ContentReloader interface {
	Reload(path string) (*profile.Content, error)
}

type ArchiveLister interface {
	List(ctx context.Context, prefix string) ([]string, error)
}

type LogWriter interface {
	Log(entry logs.SystemLog, payload any) error
}

var (
	_ AdminServiceAPI = (*AdminService)(nil)
	_ ContentReloader = (*profile.ProfileService)(nil)
	_ ArchiveLister   = (*util.GCSArchive)(nil)
	_ cache.Lister    = (*cache.GormStore)(nil)
	_ LogWriter       = (*logs.LogService)(nil)
)
