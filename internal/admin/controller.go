package admin

import (
	"errors"
	"fmt"
	"net/http"

	"portfolio-api/internal/logs"

	"github.com/gin-gonic/gin"
)

type AdminController struct {
	AdminService AdminServiceAPI
	LS           LogWriter
}

func (ac *AdminController) log(entry logs.SystemLog, payload any) {
	if ac.LS == nil {
		return
	}
	if err := ac.LS.Log(entry, payload); err != nil {
		fmt.Printf("Failed to insert log: %v\n", err)
	}
}

func (ac *AdminController) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, exp, err := ac.AdminService.Authenticate(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrAdminNotConfigured) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
			return
		}
		ac.log(logs.SystemLog{
			Level:   "WARN",
			Service: logService,
			Action:  actionLoginFailed,
			Message: fmt.Sprintf("Failed admin login for %s", req.Email),
		}, nil)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Oops! We couldn’t log you in. Please check your email and password and try again."})
		return
	}

	http.SetCookie(c.Writer, &http.Cookie{
		Name:     "access_token",
		Value:    token,
		Path:     "/",
		Expires:  exp,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})

	ac.log(logs.SystemLog{
		Level:   "INFO",
		Service: logService,
		Action:  actionLogin,
		Message: fmt.Sprintf("Admin logged in with email: %s", req.Email),
	}, nil)

	c.JSON(http.StatusOK, gin.H{
		"message":    "Login successful",
		"expires_at": exp.UTC(),
	})
}

func (ac *AdminController) Logout(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     "access_token",
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
		MaxAge:   -1,
	})
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// GET /api/admin/cache/export
func (ac *AdminController) ExportCache(c *gin.Context) {
	filename, data, err := ac.AdminService.ExportCache(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ac.log(logs.SystemLog{
		Level:   "INFO",
		Service: logService,
		Action:  actionCacheExport,
		Message: fmt.Sprintf("Cache exported by %s", c.GetString("adminEmail")),
	}, gin.H{"filename": filename, "bytes": len(data)})

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, xlsxContentType, data)
}

// DELETE /api/admin/cache
func (ac *AdminController) PurgeCache(c *gin.Context) {
	n, err := ac.AdminService.PurgeCache(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ac.log(logs.SystemLog{
		Level:   "INFO",
		Service: logService,
		Action:  actionCachePurge,
		Message: fmt.Sprintf("Cache purged by %s", c.GetString("adminEmail")),
	}, gin.H{"deleted": n})

	c.JSON(http.StatusOK, gin.H{"message": "cache purged", "deleted": n})
}

// POST /api/admin/content/reload
func (ac *AdminController) ReloadContent(c *gin.Context) {
	summary, err := ac.AdminService.ReloadContent()
	if err != nil {
		ac.log(logs.SystemLog{
			Level:   "ERROR",
			Service: logService,
			Action:  actionContentLoad,
			Message: "Content reload failed",
		}, gin.H{"error": err.Error()})
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ac.log(logs.SystemLog{
		Level:   "INFO",
		Service: logService,
		Action:  actionContentLoad,
		Message: fmt.Sprintf("Content reloaded by %s", c.GetString("adminEmail")),
	}, summary)

	c.JSON(http.StatusOK, gin.H{"message": "content reloaded", "data": summary})
}

// GET /api/admin/speech
func (ac *AdminController) ListSpeech(c *gin.Context) {
	names, err := ac.AdminService.ListSpeech(c.Request.Context())
	if err != nil {
		if errors.Is(err, ErrArchiveDisabled) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": names, "total": len(names)})
}
