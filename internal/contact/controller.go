package contact

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type ContactController struct {
	Service ContactServiceAPI
}

// POST /api/contact
func (cc *ContactController) Submit(c *gin.Context) {
	var req ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reply, err := cc.Service.Submit(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrEmptySubmission) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, reply)
}
