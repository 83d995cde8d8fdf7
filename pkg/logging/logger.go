package logging

import (
	"context"

	"go.uber.org/zap"
)

type loggerKey struct{}
type traceIDKey struct{}

const requestID = "request_id"

var (
	loggerKeyInstance  = loggerKey{}
	traceIDKeyInstance = traceIDKey{}
)

type Logger struct {
	l *zap.Logger
}

func New(zapLogger *zap.Logger) *Logger {
	return &Logger{zapLogger}
}

func ContextWithLogger(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, loggerKeyInstance, logger)
}

func GetFromContext(ctx context.Context) (*Logger, bool) {
	logger, ok := ctx.Value(loggerKeyInstance).(*Logger)
	return logger, ok
}

func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKeyInstance, traceID)
}

func TraceID(ctx context.Context) (string, bool) {
	traceID, ok := ctx.Value(traceIDKeyInstance).(string)
	return traceID, ok
}

func (l *Logger) Debug(ctx context.Context, msg string, fields ...zap.Field) {
	l.l.Debug(msg, fieldsWithTraceID(ctx, fields)...)
}

func (l *Logger) Info(ctx context.Context, msg string, fields ...zap.Field) {
	l.l.Info(msg, fieldsWithTraceID(ctx, fields)...)
}

func (l *Logger) Warn(ctx context.Context, msg string, fields ...zap.Field) {
	l.l.Warn(msg, fieldsWithTraceID(ctx, fields)...)
}

func (l *Logger) Error(ctx context.Context, msg string, fields ...zap.Field) {
	l.l.Error(msg, fieldsWithTraceID(ctx, fields)...)
}

func (l *Logger) Fatal(ctx context.Context, msg string, fields ...zap.Field) {
	l.l.Fatal(msg, fieldsWithTraceID(ctx, fields)...)
}

func (l *Logger) Sync() error {
	return l.l.Sync()
}

func fieldsWithTraceID(ctx context.Context, fields []zap.Field) []zap.Field {
	if traceID, ok := TraceID(ctx); ok {
		fields = append(fields, zap.String(requestID, traceID))
	}
	return fields
}
