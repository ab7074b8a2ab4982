package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func TestConfigForEnv(t *testing.T) {
	assert.Equal(t, Config{Level: "info", Format: "json"}, ConfigForEnv("production", "info"))
	assert.Equal(t, Config{Level: "debug", Format: "console"}, ConfigForEnv("development", "debug"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("WARNING"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("loud"))
}

func TestFromContext(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	FromContext(context.Background(), base).Info("plain")
	FromContext(WithRequestID(context.Background(), "req-9"), base).Info("tagged")

	entries := logs.AllUntimed()
	require.Len(t, entries, 2)
	assert.NotContains(t, entries[0].ContextMap(), "request_id")
	assert.Equal(t, "req-9", entries[1].ContextMap()["request_id"])
}

func TestGormLogger_Trace(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	gl := NewGormLogger(zap.New(core), gormlogger.Warn)
	ctx := WithRequestID(context.Background(), "req-1")
	stmt := func() (string, int64) { return "UPDATE products SET stock_quantity = 0", 1 }

	// 速いクエリはWarnでは出さない
	gl.Trace(ctx, time.Now(), stmt, nil)
	assert.Equal(t, 0, logs.Len())

	gl.Trace(ctx, time.Now().Add(-time.Second), stmt, nil)
	gl.Trace(ctx, time.Now(), stmt, errors.New("deadlock"))
	gl.Trace(ctx, time.Now(), stmt, gormlogger.ErrRecordNotFound)

	entries := logs.TakeAll()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, "req-1", entries[1].ContextMap()["request_id"])

	gl.LogMode(gormlogger.Silent).Trace(ctx, time.Now(), stmt, errors.New("deadlock"))
	assert.Equal(t, 0, logs.Len())
}
