package contact

import (
	"context"

	"portfolio-api/internal/logs"
)

type ContactServiceAPI interface {
	Submit(ctx context.Context, req ContactRequest) (*ContactReply, error)
}

type LogWriter interface {
	Log(entry logs.SystemLog, payload any) error
}

var (
	_ ContactServiceAPI = (*ContactService)(nil)
	_ LogWriter         = (*logs.LogService)(nil)
)
