package logs

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type LogController struct {
	LogService *LogService
}

type logPage struct {
	Data       []SystemLog   `json:"data"`
	Page       int           `json:"page"`
	PageSize   int           `json:"page_size"`
	Total      int64         `json:"total"`
	TotalPages int           `json:"total_pages"`
	Aggregates LogAggregates `json:"aggregates"`
}

// GetLogs pages through turn and admin events. An empty body is a valid
// filter and returns the most recent page.
func (lc *LogController) GetLogs(c *gin.Context) {
	var filter LogFilterInput
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&filter); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	normalizePage(&filter)

	rows, aggs, total, pages, err := lc.LogService.GetLogs(filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if rows == nil {
		rows = []SystemLog{}
	}

	c.JSON(http.StatusOK, logPage{
		Data:       rows,
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		Total:      total,
		TotalPages: pages,
		Aggregates: aggs,
	})
}
