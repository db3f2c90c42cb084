package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	SessionCookie    = "portfolio_sid"
	sessionKey       = "sessionID"
	sessionIssuedKey = "sessionIssued"
)

var newSessionIDHook = uuid.NewString

// SessionMiddleware pins every chat request to a browser session. The cookie
// has no max-age so it ends with the browser session.
func SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, err := c.Cookie(SessionCookie)
		if err != nil || !validSessionID(sid) {
			sid = newSessionIDHook()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(SessionCookie, sid, 0, "/", "", false, true)
			c.Set(sessionIssuedKey, true)
		}

		c.Set(sessionKey, sid)
		c.Next()
	}
}

// SessionID returns the id set by SessionMiddleware, or "" outside it.
func SessionID(c *gin.Context) string {
	return c.GetString(sessionKey)
}

// SessionIssued reports whether the session was minted for this request
// because the client sent no usable cookie.
func SessionIssued(c *gin.Context) bool {
	return c.GetBool(sessionIssuedKey)
}

func validSessionID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
