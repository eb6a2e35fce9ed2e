package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	gormlogger "gorm.io/gorm/logger"

	"github.com/gsindri/kaupa-skil-sub004/pkg/logger"
)

// queryLog sends gorm output through the service logger. Only failed and slow
// statements are reported; record-not-found is a normal lookup miss.
type queryLog struct {
	logg   *logger.Logger
	slow   time.Duration
	silent bool
}

func newQueryLog(logg *logger.Logger, slow time.Duration) *queryLog {
	return &queryLog{logg: logg, slow: slow, silent: logg == nil}
}

func (q *queryLog) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	cp := *q
	cp.silent = q.logg == nil || level == gormlogger.Silent
	return &cp
}

func (q *queryLog) Info(ctx context.Context, msg string, args ...any) {
	if !q.silent {
		q.logg.Debug(ctx, fmt.Sprintf(msg, args...))
	}
}

func (q *queryLog) Warn(ctx context.Context, msg string, args ...any) {
	if !q.silent {
		q.logg.Warn(ctx, fmt.Sprintf(msg, args...))
	}
}

func (q *queryLog) Error(ctx context.Context, msg string, args ...any) {
	if !q.silent {
		q.logg.Error(ctx, "db.error", fmt.Errorf(msg, args...))
	}
}

func (q *queryLog) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if q.silent {
		return
	}
	elapsed := time.Since(begin)
	failed := err != nil && !errors.Is(err, gormlogger.ErrRecordNotFound)
	slow := q.slow > 0 && elapsed > q.slow
	if !failed && !slow {
		return
	}

	sql, rows := fc()
	ctx = q.logg.WithFields(ctx, map[string]any{
		"sql":        sql,
		"rows":       rows,
		"elapsed_ms": elapsed.Milliseconds(),
	})
	if failed {
		q.logg.Error(ctx, "db.query_failed", err)
		return
	}
	q.logg.Warn(ctx, "db.slow_query")
}
