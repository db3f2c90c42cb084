package admin

import "errors"

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type ReloadSummary struct {
	Projects     int `json:"projects"`
	Skills       int `json:"skills"`
	Experiences  int `json:"experiences"`
	Templates    int `json:"templates"`
	Testimonials int `json:"testimonials"`
}

const (
	logService = "admin"

	actionLogin        = "ADMIN_LOGIN"
	actionLoginFailed  = "ADMIN_LOGIN_FAILED"
	actionCachePurge   = "ADMIN_CACHE_PURGE"
	actionCacheExport  = "ADMIN_CACHE_EXPORT"
	actionContentLoad  = "CONTENT_RELOAD"
	speechObjectPrefix = "speech/"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAdminNotConfigured = errors.New("admin login is not configured")
	ErrArchiveDisabled    = errors.New("speech archive is not configured")
)
