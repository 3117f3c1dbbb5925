package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/tracelog"
	"go.uber.org/zap"
)

type zapTracer struct {
	logger *zap.Logger
}

func NewZapTracer(l *zap.Logger) tracelog.Logger {
	return &zapTracer{logger: l}
}

func (t *zapTracer) Log(ctx context.Context, level tracelog.LogLevel, msg string, data map[string]any) {
	fields := make([]zap.Field, 0, 4)
	if v, ok := data["sql"]; ok {
		fields = append(fields, zap.Any("sql", v))
	}
	if v, ok := data["time"]; ok {
		fields = append(fields, zap.String("time", fmt.Sprint(v)))
	}
	if v, ok := data["err"]; ok {
		if err, isErr := v.(error); isErr {
			fields = append(fields, zap.Error(err))
		}
	}

	switch level {
	case tracelog.LogLevelTrace, tracelog.LogLevelDebug:
		t.logger.Debug(msg, fields...)
	case tracelog.LogLevelInfo:
		t.logger.Info(msg, fields...)
	case tracelog.LogLevelWarn:
		t.logger.Warn(msg, fields...)
	case tracelog.LogLevelError:
		t.logger.Error(msg, fields...)
	}
}
