package logs

import (
	"encoding/json"
	"math"
	"strings"
	"time"

	"portfolio-api/internal/util"

	"gorm.io/gorm"
)

const maxMessageRunes = 2000

type LogService struct {
	DB *gorm.DB
}

func (ls *LogService) Log(log SystemLog, metadata interface{}) error {
	row := SystemLog{
		Level:     log.Level,
		Service:   log.Service,
		SessionID: log.SessionID,
		Action:    log.Action,
		Message:   util.ClampRunes(log.Message, maxMessageRunes),
		CreatedAt: time.Now(),
	}
	// Metadata that fails to marshal is dropped, the row is still written.
	if metadata != nil {
		if b, err := json.Marshal(metadata); err == nil {
			meta := string(b)
			row.Metadata = &meta
		}
	}
	return ls.DB.Create(&row).Error
}

// recentWindow bounds unfiltered queries so the admin view opens on recent turns.
const recentWindow = 30 * 24 * time.Hour

func normalizePage(input *LogFilterInput) {
	if input.Page <= 0 {
		input.Page = 1
	}
	if input.PageSize <= 0 || input.PageSize > 100 {
		input.PageSize = 20
	}
}

func (ls *LogService) filtered(input LogFilterInput) (*gorm.DB, error) {
	q := ls.DB.Model(&SystemLog{})

	exact := []struct {
		column string
		value  *string
	}{
		{"logs.level", input.Level},
		{"logs.service", input.Service},
		{"logs.action", input.Action},
		{"logs.session_id", input.SessionID},
	}
	for _, f := range exact {
		if v := trimmed(f.value); v != "" {
			q = q.Where(f.column+" = ?", v)
		}
	}

	if input.StartDate == nil && input.EndDate == nil {
		q = q.Where("logs.created_at >= ?", time.Now().Add(-recentWindow))
	} else {
		start, hasStart, endExclusive, hasEnd, err := util.ParseDateRange(input.StartDate, input.EndDate)
		if err != nil {
			return nil, err
		}
		if hasStart {
			q = q.Where("logs.created_at >= ?", start)
		}
		if hasEnd {
			q = q.Where("logs.created_at < ?", endExclusive)
		}
	}

	// LOWER + LIKE keeps search portable between postgres and sqlite.
	if v := trimmed(input.Search); v != "" {
		like := "%" + strings.ToLower(v) + "%"
		cols := []string{"logs.level", "logs.service", "logs.action", "logs.message", "COALESCE(logs.session_id,'')"}
		conds := make([]string, len(cols))
		args := make([]any, len(cols))
		for i, col := range cols {
			conds[i] = "LOWER(" + col + ") LIKE ?"
			args[i] = like
		}
		q = q.Where(strings.Join(conds, " OR "), args...)
	}
	return q, nil
}

func (ls *LogService) GetLogs(input LogFilterInput) ([]SystemLog, LogAggregates, int64, int, error) {
	normalizePage(&input)

	base, err := ls.filtered(input)
	if err != nil {
		return nil, LogAggregates{}, 0, 0, err
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, LogAggregates{}, 0, 0, err
	}
	totalPages := max(1, int(math.Ceil(float64(total)/float64(input.PageSize))))

	var rows []SystemLog
	err = base.Session(&gorm.Session{}).
		Order("logs.created_at DESC, logs.id DESC").
		Limit(input.PageSize).
		Offset((input.Page - 1) * input.PageSize).
		Find(&rows).Error
	if err != nil {
		return nil, LogAggregates{}, 0, 0, err
	}

	aggs, err := ls.getAggregatesFromBase(base)
	if err != nil {
		return nil, LogAggregates{}, 0, 0, err
	}
	return rows, aggs, total, totalPages, nil
}

func (ls *LogService) getAggregatesFromBase(base *gorm.DB) (LogAggregates, error) {
	limit := 12

	group := func(expr string) ([]AggItem, error) {
		var out []AggItem
		if err := base.Session(&gorm.Session{}).
			Select(expr + " AS label, COUNT(*) AS count").
			Group("label").
			Order("count DESC").
			Limit(limit).
			Scan(&out).Error; err != nil {
			return nil, err
		}
		if out == nil {
			out = []AggItem{}
		}
		return out, nil
	}

	var (
		aggs LogAggregates
		err  error
	)
	if aggs.ByAction, err = group("logs.action"); err != nil {
		return LogAggregates{}, err
	}
	if aggs.ByLevel, err = group("logs.level"); err != nil {
		return LogAggregates{}, err
	}
	if aggs.BySession, err = group("COALESCE(NULLIF(TRIM(logs.session_id), ''), 'No session')"); err != nil {
		return LogAggregates{}, err
	}
	return aggs, nil
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
