package logger

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func TestGormLogger_Trace(t *testing.T) {
	query := func() (string, int64) { return "SELECT * FROM invoices", 2 }

	t.Run("error", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		l := NewGormLogger(zap.New(core), gormlogger.Error)
		l.Trace(context.Background(), time.Now(), query, errors.New("boom"))
		assert.Equal(t, 1, recorded.FilterMessage("SQL Error").Len())
	})

	t.Run("record not found is ignored", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		l := NewGormLogger(zap.New(core), gormlogger.Error)
		l.Trace(context.Background(), time.Now(), query, gormlogger.ErrRecordNotFound)
		assert.Zero(t, recorded.Len())
	})

	t.Run("slow query", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		l := NewGormLogger(zap.New(core), gormlogger.Warn, WithSlowThreshold(time.Nanosecond))
		l.Trace(context.Background(), time.Now().Add(-time.Second), query, nil)
		require.Equal(t, 1, recorded.Len())
		assert.Contains(t, recorded.All()[0].Message, "SLOW SQL")
	})

	t.Run("long statements are clipped", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		l := NewGormLogger(zap.New(core), gormlogger.Info, WithMaxSQLLength(16))
		insert := func() (string, int64) {
			return "INSERT INTO invoices (notes) VALUES ('Net 30. Late payments accrue 1.5% monthly interest.')", 1
		}
		l.Trace(context.Background(), time.Now(), insert, nil)

		require.Equal(t, 1, recorded.Len())
		sql := recorded.All()[0].ContextMap()["sql"].(string)
		assert.True(t, strings.HasPrefix(sql, "INSERT INTO invo"))
		assert.Contains(t, sql, "bytes truncated")
	})

	t.Run("not found is reported when asked", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		l := NewGormLogger(zap.New(core), gormlogger.Info, WithIgnoreRecordNotFoundError(false))
		l.Trace(context.Background(), time.Now(), query, gormlogger.ErrRecordNotFound)
		assert.Equal(t, 1, recorded.FilterMessage("SQL Error").Len())
	})

	t.Run("silent", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		l := NewGormLogger(zap.New(core), gormlogger.Silent)
		l.Trace(context.Background(), time.Now(), query, nil)
		assert.Zero(t, recorded.Len())
	})

	t.Run("correlation fields", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		l := NewGormLogger(zap.New(core), gormlogger.Info)
		ctx := context.WithValue(context.Background(), RequestIDKey, "req-9")
		ctx = context.WithValue(ctx, OwnerIDKey, "local")
		l.Trace(ctx, time.Now(), query, nil)

		require.Equal(t, 1, recorded.Len())
		fields := recorded.All()[0].ContextMap()
		assert.Equal(t, "req-9", fields["request_id"])
		assert.Equal(t, "local", fields["owner_id"])
	})
}

func TestGormLogger_LogMode(t *testing.T) {
	l := NewGormLogger(zap.NewNop(), gormlogger.Warn)
	info := l.LogMode(gormlogger.Info).(*GormLogger)
	assert.Equal(t, gormlogger.Info, info.logLevel)
	assert.Equal(t, gormlogger.Warn, l.logLevel)
}

func TestMapGormLogLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, MapGormLogLevel("silent"))
	assert.Equal(t, gormlogger.Error, MapGormLogLevel("error"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel("warn"))
	assert.Equal(t, gormlogger.Info, MapGormLogLevel("debug"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel("other"))
}

var _ gormlogger.Interface = (*GormLogger)(nil)
